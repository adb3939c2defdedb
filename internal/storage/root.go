// Package storage manages the local asset tree served under /assets and its
// optional object-store mirror.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a path resolves outside the asset root.
var ErrOutsideRoot = errors.New("path resolves outside the asset root")

// Root is a directory that every asset path is confined to.
type Root struct {
	dir string
}

// NewRoot creates the directory if needed and returns a Root anchored at its
// absolute, symlink-free location.
func NewRoot(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve asset root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create asset root: %w", err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return &Root{dir: abs}, nil
}

// Dir returns the absolute root directory.
func (r *Root) Dir() string {
	return r.dir
}

// Resolve joins rel onto the root and returns the absolute path. Both
// "/recipes/a.png" and "recipes/a.png" name the same file.
func (r *Root) Resolve(rel string) (string, error) {
	if strings.ContainsRune(rel, 0) {
		return "", ErrOutsideRoot
	}
	abs := filepath.Join(r.dir, filepath.FromSlash(rel))
	if !r.contains(abs) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}

func (r *Root) contains(abs string) bool {
	return abs == r.dir || strings.HasPrefix(abs, r.dir+string(filepath.Separator))
}

// resolveExisting is Resolve plus a check that symlinks along the path do not
// lead out of the root.
func (r *Root) resolveExisting(rel string) (string, error) {
	abs, err := r.Resolve(rel)
	if err != nil {
		return "", err
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	if !r.contains(real) {
		return "", ErrOutsideRoot
	}
	return real, nil
}

// Stat returns file info for rel.
func (r *Root) Stat(rel string) (fs.FileInfo, error) {
	abs, err := r.resolveExisting(rel)
	if err != nil {
		return nil, err
	}
	return os.Stat(abs)
}

// Exists reports whether rel names an existing regular file.
func (r *Root) Exists(rel string) bool {
	info, err := r.Stat(rel)
	return err == nil && info.Mode().IsRegular()
}

// Open opens rel for reading.
func (r *Root) Open(rel string) (*os.File, error) {
	abs, err := r.resolveExisting(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(abs)
}

// ReadFile reads the whole of rel.
func (r *Root) ReadFile(rel string) ([]byte, error) {
	abs, err := r.resolveExisting(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

// WriteFile writes data to rel through a temporary file and a rename so
// readers never observe a partial file.
func (r *Root) WriteFile(rel string, data []byte) error {
	abs, err := r.Resolve(rel)
	if err != nil {
		return err
	}
	if abs == r.dir {
		return fmt.Errorf("write %s: %w", rel, fs.ErrInvalid)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// RemoveAll deletes rel and everything below it. The root itself cannot be
// removed.
func (r *Root) RemoveAll(rel string) error {
	abs, err := r.Resolve(rel)
	if err != nil {
		return err
	}
	if abs == r.dir {
		return ErrOutsideRoot
	}
	return os.RemoveAll(abs)
}
