package parser

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML decodes YAML (and JSON) documents, keeping mapping key order.
type YAML struct{}

// NewYAML creates a YAML parser.
func NewYAML() *YAML { return &YAML{} }

// Parse decodes data; an empty document yields an empty record.
func (p *YAML) Parse(data []byte) (*Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SyntaxError{Line: lineOf(err), Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewRecord(), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &SyntaxError{Line: root.Line, Err: errors.New("top level value is not a mapping")}
	}
	v, err := (&converter{expanding: make(map[*yaml.Node]bool)}).convert(root)
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

// maxAliases bounds how many aliases one document may expand.
const maxAliases = 10000

// converter turns a node tree into records, expanding aliases. An alias
// that refers to a node it is nested in is an error.
type converter struct {
	expanding map[*yaml.Node]bool
	aliases   int
}

func (c *converter) convert(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		c.aliases++
		if c.aliases > maxAliases {
			return nil, &SyntaxError{Line: n.Line, Err: fmt.Errorf("more than %d aliases", maxAliases)}
		}
		if n.Alias == nil || c.expanding[n.Alias] {
			return nil, &SyntaxError{Line: n.Line, Err: fmt.Errorf("alias *%s refers to itself", n.Value)}
		}
		return c.convert(n.Alias)
	case yaml.MappingNode:
		c.expanding[n] = true
		defer delete(c.expanding, n)
		rec := NewRecord()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, &SyntaxError{Line: key.Line, Err: errors.New("mapping key is not a scalar")}
			}
			v, err := c.convert(val)
			if err != nil {
				return nil, err
			}
			rec.Set(key.Value, v)
		}
		return rec, nil
	case yaml.SequenceNode:
		c.expanding[n] = true
		defer delete(c.expanding, n)
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!str" {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &SyntaxError{Line: n.Line, Err: err}
		}
		return v, nil
	}
	return nil, &SyntaxError{Line: n.Line, Err: fmt.Errorf("unsupported node kind %d", n.Kind)}
}
