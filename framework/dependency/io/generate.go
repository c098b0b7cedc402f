package io

import (
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"
	"text/template"

	"github.com/km-arc/go-bootstrap/framework/dependency"
)

// GenerateSource renders Go source for package pkg with a function fn that
// rebuilds reg without reading any file:
//
//	src, err := io.GenerateSource(reg, "compiled", "Registry")
//	// compiled.Registry() *dependency.Registry, served with io.Static(compiled.Registry)
func GenerateSource(reg *dependency.Registry, pkg, fn string) ([]byte, error) {
	if !token.IsIdentifier(pkg) {
		return nil, fmt.Errorf("dependency: invalid package name %q", pkg)
	}
	if !token.IsIdentifier(fn) {
		return nil, fmt.Errorf("dependency: invalid function name %q", fn)
	}

	data := sourceData{Package: pkg, Func: fn}
	positions := make(map[*dependency.Definition]int)
	for _, iface := range reg.Interfaces() {
		for _, d := range reg.Definitions(iface) {
			pos, ok := positions[d]
			if !ok {
				pos = len(data.Definitions)
				positions[d] = pos
				data.Definitions = append(data.Definitions, specLiteral(d))
			}
			data.Inserts = append(data.Inserts, insert{Interface: strconv.Quote(iface), Var: pos})
		}
	}

	var sb strings.Builder
	if err := sourceTpl.Execute(&sb, data); err != nil {
		return nil, fmt.Errorf("dependency: could not render source: %w", err)
	}
	src, err := format.Source([]byte(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("dependency: could not format source: %w", err)
	}
	return src, nil
}

type sourceData struct {
	Package     string
	Func        string
	Definitions []string
	Inserts     []insert
}

type insert struct {
	Interface string
	Var       int
}

var sourceTpl = template.Must(template.New("registry").Parse(`// Code generated by bootstrap dependencies generate; DO NOT EDIT.

package {{.Package}}

import "github.com/km-arc/go-bootstrap/framework/dependency"

// {{.Func}} returns the compiled dependency registry.
func {{.Func}}() *dependency.Registry {
	reg := dependency.NewRegistry()
{{- if .Inserts}}
	insert := func(iface string, d *dependency.Definition) {
		if err := reg.Insert(iface, d); err != nil {
			panic(err)
		}
	}
{{- end}}
{{range $i, $d := .Definitions}}
	d{{$i}} := dependency.MustNew({{$d}})
{{- end}}
{{range .Inserts}}
	insert({{.Interface}}, d{{.Var}})
{{- end}}

	return reg
}
`))

// ── Literals ──────────────────────────────────────────────────────────────────

func specLiteral(d *dependency.Definition) string {
	var b strings.Builder
	b.WriteString("dependency.Spec{\n")
	if d.ClassName() != "" {
		fmt.Fprintf(&b, "ClassName: %s,\n", strconv.Quote(d.ClassName()))
	}
	if f := d.Factory(); f != nil {
		fmt.Fprintf(&b, "Factory: dependency.NewConstructCall(%s, %s, %s%s),\n",
			strconv.Quote(f.Interface()), strconv.Quote(f.Method()), strconv.Quote(f.ID()), argumentList(f.Arguments()))
	}
	if d.ID() != "" {
		fmt.Fprintf(&b, "ID: %s,\n", strconv.Quote(d.ID()))
	}
	fmt.Fprintf(&b, "Interfaces: %s,\n", stringSlice(d.Interfaces()))
	if calls := d.Calls(); len(calls) > 0 {
		b.WriteString("Calls: []*dependency.Call{\n")
		for _, c := range calls {
			fmt.Fprintf(&b, "dependency.NewCall(%s, %s%s),\n",
				strconv.Quote(c.Method()), strconv.Quote(c.ID()), argumentList(c.Arguments()))
		}
		b.WriteString("},\n")
	}
	if tags := d.Tags(); len(tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s,\n", stringSlice(tags))
	}
	b.WriteString("}")
	return b.String()
}

// argumentList renders the variadic tail of a call constructor.
func argumentList(args []*dependency.Argument) string {
	var b strings.Builder
	for _, a := range args {
		fmt.Fprintf(&b, ",\ndependency.NewArgument(%s, %s", strconv.Quote(a.Name()), strconv.Quote(a.Type()))
		for _, p := range a.Properties() {
			fmt.Fprintf(&b, ", dependency.Property{Key: %s, Value: %s}", strconv.Quote(p.Key), strconv.Quote(p.Value))
		}
		b.WriteString(")")
	}
	if len(args) > 0 {
		b.WriteString(",\n")
	}
	return b.String()
}

func stringSlice(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}
