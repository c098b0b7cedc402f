// Package filesystem provides the file handles and the file browser used to
// find configuration files across the application and its modules.
package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// File is a handle on a path. It does not hold the file open.
type File struct {
	path string
}

// NewFile creates a handle on path.
func NewFile(path string) File {
	return File{path: filepath.Clean(path)}
}

// Path returns the path of the handle.
func (f File) Path() string { return f.path }

func (f File) String() string { return f.path }

// Name returns the last element of the path.
func (f File) Name() string { return filepath.Base(f.path) }

// Exists reports whether something exists at the path.
func (f File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// IsDirectory reports whether the path is a directory.
func (f File) IsDirectory() bool {
	info, err := os.Stat(f.path)
	return err == nil && info.IsDir()
}

// Read returns the content of the file.
func (f File) Read() ([]byte, error) {
	return os.ReadFile(f.path)
}

// Write replaces the content of the file.
func (f File) Write(data []byte) error {
	return os.WriteFile(f.path, data, 0o644)
}

// Delete removes the file. It reports whether a file was removed.
func (f File) Delete() (bool, error) {
	err := os.Remove(f.path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Parent returns the handle of the containing directory.
func (f File) Parent() File {
	return File{path: filepath.Dir(f.path)}
}

// Child returns the handle of name inside f.
func (f File) Child(name string) File {
	return NewFile(filepath.Join(f.path, name))
}

// Create creates f as a directory, with missing parents.
func (f File) Create() error {
	return os.MkdirAll(f.path, 0o755)
}

// Children returns the entries of a directory sorted by name.
func (f File) Children() ([]File, error) {
	entries, err := os.ReadDir(f.path)
	if err != nil {
		return nil, err
	}
	out := make([]File, 0, len(entries))
	for _, e := range entries {
		out = append(out, f.Child(e.Name()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, nil
}

// Absolute returns the handle with an absolute path.
func (f File) Absolute() File {
	abs, err := filepath.Abs(f.path)
	if err != nil {
		return f
	}
	return File{path: abs}
}
