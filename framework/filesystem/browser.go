package filesystem

import (
	"path/filepath"
	"sync"
)

// Browser finds the files of a logical path, like "config/dependencies.yaml",
// in the application directory and every include directory.
type Browser interface {
	// Files returns the existing candidates in discovery order: the most
	// specific directory first.
	Files(path string) []File
	// File returns the first candidate, if any.
	File(path string) (File, bool)
	// ApplicationDirectory returns the directory of the application.
	ApplicationDirectory() File
}

// DirectoryBrowser searches the application directory, then the include
// directories in the order they were added.
type DirectoryBrowser struct {
	mu          sync.RWMutex
	application File
	includes    []File
}

// NewDirectoryBrowser creates a browser rooted at the application directory.
func NewDirectoryBrowser(application string) *DirectoryBrowser {
	return &DirectoryBrowser{application: NewFile(application)}
}

// AddIncludeDirectory appends a directory to the search path. Directories
// already on the path are ignored.
func (b *DirectoryBrowser) AddIncludeDirectory(dir File) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if dir.path == b.application.path {
		return
	}
	for _, existing := range b.includes {
		if existing.path == dir.path {
			return
		}
	}
	b.includes = append(b.includes, dir)
}

// IncludeDirectories returns the include directories in search order.
func (b *DirectoryBrowser) IncludeDirectories() []File {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]File(nil), b.includes...)
}

func (b *DirectoryBrowser) ApplicationDirectory() File {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.application
}

// SetApplicationDirectory replaces the application directory.
func (b *DirectoryBrowser) SetApplicationDirectory(dir File) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.application = dir
}

func (b *DirectoryBrowser) Files(path string) []File {
	b.mu.RLock()
	dirs := append([]File{b.application}, b.includes...)
	b.mu.RUnlock()

	var out []File
	for _, dir := range dirs {
		f := NewFile(filepath.Join(dir.path, path))
		if f.Exists() && !f.IsDirectory() {
			out = append(out, f)
		}
	}
	return out
}

func (b *DirectoryBrowser) File(path string) (File, bool) {
	files := b.Files(path)
	if len(files) == 0 {
		return File{}, false
	}
	return files[0], true
}
