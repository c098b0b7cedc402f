package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
)

// XML decodes the XML dependency format into the same records the YAML
// parser produces for dependency files:
//
//	<container>
//	    <dependency interface="app.Mailer" class="app.SmtpMailer" id="smtp">
//	        <interface name="app.Transport"/>
//	        <call method="__construct">
//	            <argument name="host" type="parameter">
//	                <property name="key" value="mail.host"/>
//	            </argument>
//	        </call>
//	        <tag name="mail"/>
//	    </dependency>
//	</container>
//
// Unknown attributes and elements of a dependency are kept as record keys so
// the dependency reader can reject them.
type XML struct{}

// NewXML creates an XML dependency parser.
func NewXML() *XML { return &XML{} }

type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []xmlNode  `xml:",any"`
}

func (n xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Parse decodes data; a document without dependency elements yields an
// empty record.
func (p *XML) Parse(data []byte) (*Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewRecord(), nil
	}

	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		var syntax *xml.SyntaxError
		if errors.As(err, &syntax) {
			return nil, &SyntaxError{Line: syntax.Line, Err: err}
		}
		return nil, &SyntaxError{Err: err}
	}

	var deps []any
	for _, n := range root.Nodes {
		if n.XMLName.Local == "dependency" {
			deps = append(deps, dependencyRecord(n))
		}
	}

	rec := NewRecord()
	if deps != nil {
		rec.Set("dependencies", deps)
	}
	return rec, nil
}

func dependencyRecord(n xmlNode) *Record {
	rec := NewRecord()
	var interfaces, calls, tags []any

	for _, a := range n.Attrs {
		switch a.Name.Local {
		case "interface":
			interfaces = append(interfaces, a.Value)
		default:
			if a.Value != "" {
				rec.Set(a.Name.Local, a.Value)
			}
		}
	}

	for _, child := range n.Nodes {
		switch child.XMLName.Local {
		case "interface":
			if name, ok := child.attr("name"); ok {
				interfaces = append(interfaces, name)
			}
		case "tag":
			if name, ok := child.attr("name"); ok {
				tags = append(tags, name)
			}
		case "call":
			calls = append(calls, callRecord(child, "method"))
		case "factory":
			rec.Set("factory", callRecord(child, "interface", "method", "id"))
		default:
			rec.Set(child.XMLName.Local, child.XMLName.Local)
		}
	}

	if interfaces != nil {
		rec.Set("interfaces", interfaces)
	}
	if calls != nil {
		rec.Set("calls", calls)
	}
	if tags != nil {
		rec.Set("tags", tags)
	}
	return rec
}

func callRecord(n xmlNode, attrs ...string) *Record {
	rec := NewRecord()
	for _, name := range attrs {
		if v, ok := n.attr(name); ok && v != "" {
			rec.Set(name, v)
		}
	}
	if id, ok := n.attr("id"); ok && id != "" {
		rec.Set("id", id)
	}

	var args []any
	for _, child := range n.Nodes {
		if child.XMLName.Local != "argument" {
			continue
		}
		arg := NewRecord()
		if v, ok := child.attr("name"); ok {
			arg.Set("name", v)
		}
		if v, ok := child.attr("type"); ok {
			arg.Set("type", v)
		}
		props := NewRecord()
		for _, p := range child.Nodes {
			if p.XMLName.Local != "property" {
				continue
			}
			name, _ := p.attr("name")
			value, _ := p.attr("value")
			props.Set(name, value)
		}
		if props.Len() > 0 {
			arg.Set("properties", props)
		}
		args = append(args, arg)
	}
	if args != nil {
		rec.Set("arguments", args)
	}
	return rec
}
