// parser/source.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package parser

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// SourceFailure reports that a source document could not be read at all,
// as opposed to the per-record warnings raised while parsing one that
// could. A failed source never aborts the run; the caller decides how
// much missing input it can tolerate.
type SourceFailure struct {
	Path string
	Err  error
}

func (e *SourceFailure) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *SourceFailure) Unwrap() error {
	return e.Err
}

// ReadSource reads the plain text of a source document. Archived
// snapshots are stored zstd-compressed; a ".zst" suffix selects
// transparent decompression.
func ReadSource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &SourceFailure{Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return "", &SourceFailure{Path: path, Err: err}
		}
		defer zr.Close()
		r = zr
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", &SourceFailure{Path: path, Err: err}
	}
	return string(b), nil
}
