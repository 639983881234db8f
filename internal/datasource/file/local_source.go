// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Local is a filesystem data source that opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a new Local data source bound to the provided filesystem
// path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading.
//
// Behavior:
//   - If the context is already done, Open returns the context error without
//     touching the filesystem.
//   - A directory is rejected with an error matching fs.ErrInvalid.
//   - Filesystem errors are wrapped with the path and still satisfy
//     errors.Is(err, fs.ErrNotExist) / fs.ErrPermission.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, unwrapPath(err))
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", l.path, unwrapPath(err))
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: is a directory: %w", l.path, fs.ErrInvalid)
	}
	return f, nil
}

// unwrapPath drops the *fs.PathError layer so the path is not repeated in
// the message.
func unwrapPath(err error) error {
	if pe, ok := err.(*fs.PathError); ok {
		return pe.Err
	}
	return err
}
