// aviation/coords.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "github.com/mmp/luftrom/math"

// ParseCoordinate parses a textual position as found in boundary
// descriptions. On failure the offending token is preserved in the
// returned FormatError.
func ParseCoordinate(s string) (math.Point2LL, error) {
	p, err := math.ParseLatLong([]byte(s))
	if err != nil {
		return math.Point2LL{}, &FormatError{Token: s, Err: err}
	}
	return p, nil
}
