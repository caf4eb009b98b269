package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nplreport/internal/config"
)

// AtomicFile is a temporary file that replaces its target on Commit
type AtomicFile struct {
	*os.File
	path string
	done bool
}

// Create opens a temporary file in the directory of path, creating the
// directory when needed. The temporary name keeps the extension of path.
func Create(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	f, err := os.CreateTemp(dir, "."+stem+"-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	return &AtomicFile{File: f, path: path}, nil
}

// Path returns the final destination
func (f *AtomicFile) Path() string {
	return f.path
}

// Commit closes the temporary file and renames it onto the destination
func (f *AtomicFile) Commit() error {
	if f.done {
		return fmt.Errorf("file %s already committed or aborted", f.path)
	}
	f.done = true

	tmp := f.File.Name()
	if err := f.File.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, config.FilePermissions); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", f.path, err)
	}
	return nil
}

// Abort discards the temporary file. It is safe to call after Commit.
func (f *AtomicFile) Abort() {
	if f.done {
		return
	}
	f.done = true
	_ = f.File.Close()
	_ = os.Remove(f.File.Name())
}
