// Package parser decodes configuration and dependency files into ordered
// Records.
//
//	p := parser.ForFile("config/dependencies.yaml") // YAML, also reads .json
//	rec, err := p.Parse(data)
//	deps, _ := rec.Get("dependencies")
package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Parser turns file content into a top-level Record.
type Parser interface {
	Parse(data []byte) (*Record, error)
}

// SyntaxError is returned when content cannot be decoded.
type SyntaxError struct {
	Line int // 0 when unknown
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// ForFile returns the parser for the extension of name: XML for .xml, YAML
// for everything else (.yaml, .yml and .json; JSON documents are YAML).
func ForFile(name string) Parser {
	if strings.EqualFold(filepath.Ext(name), ".xml") {
		return NewXML()
	}
	return NewYAML()
}

var lineRe = regexp.MustCompile(`line (\d+)`)

// lineOf extracts the first line number mentioned in an error message.
func lineOf(err error) int {
	m := lineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
