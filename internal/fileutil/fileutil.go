// Package fileutil provides small file helpers shared by the daemon and CLI.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrTooLarge reports that a streamed file exceeded the configured bound.
var ErrTooLarge = errors.New("file exceeds size limit")

// ReadPrefix reads at most max leading bytes of the file at path. A file
// shorter than max yields its full contents.
func ReadPrefix(path string, max int) ([]byte, error) {
	if max <= 0 {
		return nil, fmt.Errorf("read prefix of %s: non-positive limit %d", path, max)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, max)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read prefix of %s: %w", path, err)
	}
	return buf[:n], nil
}

// WriteStream copies r into a new file at dst, refusing to write more than
// maxBytes. It returns the number of bytes written and removes the partial
// file when the limit is exceeded or the copy fails.
func WriteStream(dst string, r io.Reader, maxBytes int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", dst, err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	// Read one byte past the limit so overflow is detectable.
	written, err := io.Copy(out, io.LimitReader(r, maxBytes+1))
	closeErr := out.Close()
	switch {
	case err != nil:
		_ = os.Remove(dst)
		return 0, fmt.Errorf("write %s: %w", dst, err)
	case closeErr != nil:
		_ = os.Remove(dst)
		return 0, fmt.Errorf("close %s: %w", dst, closeErr)
	case maxBytes > 0 && written > maxBytes:
		_ = os.Remove(dst)
		return 0, ErrTooLarge
	}
	return written, nil
}
