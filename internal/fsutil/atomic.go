// Package fsutil writes output files so that a failed write never leaves a
// complete-looking file behind.
package fsutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteFileAtomic streams fill into a temporary file next to path, syncs it and
// renames it over path. On any error the temporary file is removed and path is
// left untouched.
func WriteFileAtomic(path string, fill func(w io.Writer) error) error {
	tempPath := path + ".partial"
	tempFile, err := os.OpenFile(tempPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	fail := func(err error) error {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)

		return err
	}

	bw := bufio.NewWriterSize(tempFile, 64*1024)
	if err := fill(bw); err != nil {
		return fail(err)
	}

	if err := bw.Flush(); err != nil {
		return fail(fmt.Errorf("flush %s: %w", tempPath, err))
	}

	if err := tempFile.Sync(); err != nil {
		return fail(err)
	}

	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	return nil
}
