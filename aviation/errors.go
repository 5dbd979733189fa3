// aviation/errors.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "fmt"

// FormatError reports a coordinate or altitude token that matched none of
// the recognized notations, or one whose value is out of range.
type FormatError struct {
	Token string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%q: %v", e.Token, e.Err)
	}
	return fmt.Sprintf("%q: unrecognized format", e.Token)
}

func (e *FormatError) Unwrap() error { return e.Err }

// GeometryError reports a boundary from which no valid closed ring can be
// constructed.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "cannot construct ring: " + e.Reason
}
