package io

import (
	"errors"
	"path"

	"github.com/km-arc/go-bootstrap/framework/config/parser"
	"github.com/km-arc/go-bootstrap/framework/dependency"
	"github.com/km-arc/go-bootstrap/framework/filesystem"
)

// ParserIO reads definition files from every directory of a file browser.
//
// For each file name, the discovered files are read in reverse discovery
// order, so the application directory is read last and may extend or
// replace what modules define. With an environment set, the files in
// <path>/<environment>/ are read after all base files.
type ParserIO struct {
	browser     filesystem.Browser
	path        string
	files       []string
	parser      parser.Parser
	environment string
}

// NewParserIO creates a reader for files inside path. The parser is chosen
// per file by extension unless one is set with SetParser.
func NewParserIO(browser filesystem.Browser, path string, files ...string) *ParserIO {
	return &ParserIO{browser: browser, path: path, files: files}
}

// SetParser forces p for every file.
func (io *ParserIO) SetParser(p parser.Parser) { io.parser = p }

// SetEnvironment sets the name of the environment overlay directory.
func (io *ParserIO) SetEnvironment(env string) { io.environment = env }

// Environment returns the environment overlay name.
func (io *ParserIO) Environment() string { return io.environment }

// Registry reads all definition files into a new registry. Any error aborts
// the load; no partial registry is returned.
func (io *ParserIO) Registry() (*dependency.Registry, error) {
	r := &reader{registry: dependency.NewRegistry()}
	for _, file := range io.Files() {
		if err := io.readFile(r, file); err != nil {
			return nil, err
		}
	}
	return r.registry, nil
}

// Files returns the definition files in the order they are read.
func (io *ParserIO) Files() []filesystem.File {
	var out []filesystem.File
	dirs := []string{io.path}
	if io.environment != "" {
		dirs = append(dirs, path.Join(io.path, io.environment))
	}
	for _, dir := range dirs {
		for _, name := range io.files {
			found := io.browser.Files(path.Join(dir, name))
			for i := len(found) - 1; i >= 0; i-- {
				out = append(out, found[i])
			}
		}
	}
	return out
}

func (io *ParserIO) readFile(r *reader, file filesystem.File) error {
	data, err := file.Read()
	if err != nil {
		return &dependency.ParseError{File: file.Path(), Err: err}
	}

	p := io.parser
	if p == nil {
		p = parser.ForFile(file.Path())
	}
	rec, err := p.Parse(data)
	if err != nil {
		perr := &dependency.ParseError{File: file.Path(), Err: err}
		var syntax *parser.SyntaxError
		if errors.As(err, &syntax) {
			perr.Line = syntax.Line
		}
		return perr
	}
	return r.file(file.Path(), rec)
}
