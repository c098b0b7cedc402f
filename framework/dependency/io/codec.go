package io

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-bootstrap/framework/dependency"
)

// CacheVersion is the layout version of encoded registries. Files of
// another version are not decoded.
const CacheVersion = 1

const cacheHeader = "# Code generated by bootstrap; DO NOT EDIT.\n"

// ErrCorruptCache is returned by Decode for content that is not a complete
// encoded registry.
var ErrCorruptCache = errors.New("dependency: corrupt cache")

// ── Wire types ────────────────────────────────────────────────────────────────

type cacheFile struct {
	Version     int              `yaml:"version"`
	Checksum    string           `yaml:"checksum"`
	Definitions []definitionNode `yaml:"definitions"`
	Index       []indexNode      `yaml:"index"`
}

// cacheBody is the checksummed part of a cache file.
type cacheBody struct {
	Definitions []definitionNode `yaml:"definitions"`
	Index       []indexNode      `yaml:"index"`
}

type definitionNode struct {
	Class      string     `yaml:"class,omitempty"`
	Factory    *callNode  `yaml:"factory,omitempty"`
	ID         string     `yaml:"id,omitempty"`
	Interfaces []string   `yaml:"interfaces"`
	Calls      []callNode `yaml:"calls,omitempty"`
	Tags       []string   `yaml:"tags,omitempty"`
}

type callNode struct {
	Interface string         `yaml:"interface,omitempty"`
	Method    string         `yaml:"method"`
	ID        string         `yaml:"id,omitempty"`
	Arguments []argumentNode `yaml:"arguments,omitempty"`
}

type argumentNode struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Properties []propertyNode `yaml:"properties,omitempty"`
}

type propertyNode struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type indexNode struct {
	Interface   string `yaml:"interface"`
	Definitions []int  `yaml:"definitions,flow"`
}

// ── Encode ────────────────────────────────────────────────────────────────────

// Encode serializes reg. The output depends only on the content and order
// of reg, so encoding an unchanged registry yields identical bytes.
func Encode(reg *dependency.Registry) ([]byte, error) {
	body := cacheBody{}
	positions := make(map[*dependency.Definition]int)

	for _, iface := range reg.Interfaces() {
		entry := indexNode{Interface: iface}
		for _, d := range reg.Definitions(iface) {
			pos, ok := positions[d]
			if !ok {
				pos = len(body.Definitions)
				positions[d] = pos
				body.Definitions = append(body.Definitions, encodeDefinition(d))
			}
			entry.Definitions = append(entry.Definitions, pos)
		}
		body.Index = append(body.Index, entry)
	}

	sum, err := checksum(body)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(cacheFile{
		Version:     CacheVersion,
		Checksum:    sum,
		Definitions: body.Definitions,
		Index:       body.Index,
	})
	if err != nil {
		return nil, fmt.Errorf("dependency: could not encode registry: %w", err)
	}
	return append([]byte(cacheHeader), data...), nil
}

func encodeDefinition(d *dependency.Definition) definitionNode {
	n := definitionNode{
		Class:      d.ClassName(),
		ID:         d.ID(),
		Interfaces: d.Interfaces(),
		Tags:       d.Tags(),
	}
	if f := d.Factory(); f != nil {
		c := encodeCall(&f.Call)
		c.Interface = f.Interface()
		n.Factory = &c
	}
	for _, c := range d.Calls() {
		n.Calls = append(n.Calls, encodeCall(c))
	}
	return n
}

func encodeCall(c *dependency.Call) callNode {
	n := callNode{Method: c.Method(), ID: c.ID()}
	for _, a := range c.Arguments() {
		arg := argumentNode{Name: a.Name(), Type: a.Type()}
		for _, p := range a.Properties() {
			arg.Properties = append(arg.Properties, propertyNode{Key: p.Key, Value: p.Value})
		}
		n.Arguments = append(n.Arguments, arg)
	}
	return n
}

func checksum(body cacheBody) (string, error) {
	data, err := yaml.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("dependency: could not encode registry: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ── Decode ────────────────────────────────────────────────────────────────────

// Decode rebuilds a registry from the output of Encode. Any fault in data
// yields an error wrapping ErrCorruptCache.
func Decode(data []byte) (*dependency.Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrCorruptCache)
	}

	var file cacheFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	if file.Version != CacheVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrCorruptCache, file.Version, CacheVersion)
	}
	sum, err := checksum(cacheBody{Definitions: file.Definitions, Index: file.Index})
	if err != nil {
		return nil, err
	}
	if sum != file.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptCache)
	}

	defs := make([]*dependency.Definition, len(file.Definitions))
	for i, n := range file.Definitions {
		d, err := dependency.New(decodeSpec(n))
		if err != nil {
			return nil, fmt.Errorf("%w: definition %d: %v", ErrCorruptCache, i, err)
		}
		defs[i] = d
	}

	reg := dependency.NewRegistry()
	for _, entry := range file.Index {
		for _, pos := range entry.Definitions {
			if pos < 0 || pos >= len(defs) {
				return nil, fmt.Errorf("%w: %s refers to definition %d", ErrCorruptCache, entry.Interface, pos)
			}
			if _, ok := reg.Definition(entry.Interface, defs[pos].ID()); ok {
				return nil, fmt.Errorf("%w: %s has id %q twice", ErrCorruptCache, entry.Interface, defs[pos].ID())
			}
			if err := reg.Insert(entry.Interface, defs[pos]); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
			}
		}
	}
	return reg, nil
}

func decodeSpec(n definitionNode) dependency.Spec {
	spec := dependency.Spec{
		ClassName:  n.Class,
		ID:         n.ID,
		Interfaces: n.Interfaces,
		Tags:       n.Tags,
	}
	if n.Factory != nil {
		spec.Factory = dependency.NewConstructCall(n.Factory.Interface, n.Factory.Method, n.Factory.ID, decodeArguments(n.Factory.Arguments)...)
	}
	for _, c := range n.Calls {
		spec.Calls = append(spec.Calls, dependency.NewCall(c.Method, c.ID, decodeArguments(c.Arguments)...))
	}
	return spec
}

func decodeArguments(nodes []argumentNode) []*dependency.Argument {
	out := make([]*dependency.Argument, 0, len(nodes))
	for _, n := range nodes {
		props := make([]dependency.Property, 0, len(n.Properties))
		for _, p := range n.Properties {
			props = append(props, dependency.Property{Key: p.Key, Value: p.Value})
		}
		out = append(out, dependency.NewArgument(n.Name, n.Type, props...))
	}
	return out
}
