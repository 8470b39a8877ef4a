// Package fsutil holds the filesystem mechanics of relocating library
// files: same-volume detection (so a move can be an instant rename) and
// plain byte copies for everything that is not rewritten in transit.
package fsutil

import (
	"fmt"
	"io"
	"os"
)

// CopyFile copies src to a newly created dst, failing if dst already
// exists. The partially written file is removed on error.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("fsutil: open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("fsutil: create target: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("fsutil: copy: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("fsutil: close target: %w", err)
	}
	return nil
}
