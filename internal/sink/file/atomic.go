// Package file writes output documents to the local filesystem without ever
// exposing a partially written file at the destination path.
package file

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultPerm is the mode given to newly created destination files.
const DefaultPerm fs.FileMode = 0o644

// Atomic writes a whole document to path via a temporary sibling file that
// is renamed into place once fully written and synced.
type Atomic struct {
	path string
	perm fs.FileMode
}

// NewAtomic returns a sink for path. A zero perm selects DefaultPerm.
func NewAtomic(path string, perm fs.FileMode) *Atomic {
	if perm == 0 {
		perm = DefaultPerm
	}
	return &Atomic{path: path, perm: perm}
}

// Write stores data at the destination. On failure the destination is left
// as it was and the temporary file is removed.
func (a *Atomic) Write(data []byte) (err error) {
	dir, base := filepath.Split(a.path)
	if dir == "" {
		dir = "."
	}
	if base == "" {
		return fmt.Errorf("write %s: destination is a directory", a.path)
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", a.path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", a.path, err)
	}
	if err = tmp.Chmod(a.perm); err != nil {
		return fmt.Errorf("chmod %s: %w", a.path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", a.path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", a.path, err)
	}
	if err = os.Rename(tmpName, a.path); err != nil {
		return fmt.Errorf("rename into %s: %w", a.path, err)
	}
	return nil
}
