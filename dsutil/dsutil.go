// Package dsutil provides the small filesystem-safety helper the engine
// needs for loading a module stylesheet: open the file, read it whole,
// and close it before the caller does anything else with the bytes, so a
// stylesheet is never left open across a compile. Adapted from the
// teacher's dsutil package, which wrote a dataset's components out to a
// directory (WriteDir) against a content-addressed cafs.Filestore; this
// package instead reads a single file in, against the plainer
// qri-io/qfs.Filesystem abstraction the rest of this engine already uses
// for stylesheet loading (see document.go).
package dsutil

import (
	"context"
	"errors"
	"io"

	"github.com/qri-io/qfs"
)

// ReadAndClose opens path on fs, reads it to completion, and closes it
// before returning -- the "module stylesheet opened once, closed before
// apply" resource-safety rule (SPEC_FULL.md §5). The file is always
// closed, even when the read fails.
func ReadAndClose(ctx context.Context, fs qfs.Filesystem, path string) ([]byte, error) {
	f, err := fs.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	raw, readErr := readAll(f)
	closeErr := f.Close()
	if readErr != nil {
		return nil, readErr
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return raw, nil
}

func readAll(f qfs.File) ([]byte, error) {
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, err
		}
	}
}
