package system

import (
	"fmt"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-bootstrap/framework/filesystem"
)

// Initializer prepares a system before its configuration is read, typically
// by adding include directories to the file browser.
type Initializer interface {
	Initialize(s *System) error
}

// InitializerFunc adapts a function to Initializer.
type InitializerFunc func(s *System) error

func (f InitializerFunc) Initialize(s *System) error { return f(s) }

// ModuleFile marks a directory as module. Its optional level orders the
// modules: higher levels are searched first.
//
//	# modules/mail/module.yaml
//	level: 10
const ModuleFile = "module.yaml"

// Module is a directory added to the file browser.
type Module struct {
	Directory filesystem.File `yaml:"-"`
	Level     int             `yaml:"level"`
}

// DirectoryInitializer adds every module found in the sub-directories of
// Directory. A relative Directory is resolved against the application
// directory; a missing one adds nothing.
type DirectoryInitializer struct {
	Directory string
}

func (i *DirectoryInitializer) Initialize(s *System) error {
	modules, err := i.Modules(s.Browser().ApplicationDirectory())
	if err != nil {
		return err
	}
	for _, m := range modules {
		s.Browser().AddIncludeDirectory(m.Directory)
	}
	return nil
}

// Modules returns the modules below Directory in search order: by level,
// highest first, then by name.
func (i *DirectoryInitializer) Modules(application filesystem.File) ([]Module, error) {
	dir := filesystem.NewFile(i.Directory)
	if !filepath.IsAbs(i.Directory) {
		dir = application.Child(i.Directory)
	}
	if !dir.IsDirectory() {
		return nil, nil
	}

	children, err := dir.Absolute().Children()
	if err != nil {
		return nil, fmt.Errorf("system: could not read modules in %s: %w", dir, err)
	}

	var modules []Module
	for _, child := range children {
		file := child.Child(ModuleFile)
		if !child.IsDirectory() || !file.Exists() {
			continue
		}
		data, err := file.Read()
		if err != nil {
			return nil, fmt.Errorf("system: could not read %s: %w", file, err)
		}
		m := Module{Directory: child}
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("system: could not parse %s: %w", file, err)
		}
		modules = append(modules, m)
	}

	sort.SliceStable(modules, func(a, b int) bool { return modules[a].Level > modules[b].Level })
	return modules, nil
}
