package io

import (
	"errors"
	"fmt"

	"github.com/km-arc/go-bootstrap/framework/config/parser"
	"github.com/km-arc/go-bootstrap/framework/dependency"
)

// Keys of a definition record.
const (
	keyDependencies = "dependencies"
	keyClass        = "class"
	keyFactory      = "factory"
	keyID           = "id"
	keyExtends      = "extends"
	keyInterfaces   = "interfaces"
	keyInterface    = "interface"
	keyCalls        = "calls"
	keyMethod       = "method"
	keyArguments    = "arguments"
	keyName         = "name"
	keyType         = "type"
	keyProperties   = "properties"
	keyTags         = "tags"
)

// reader folds definition records into a registry, one file at a time.
// Records are read in order so extends sees everything added before it.
type reader struct {
	registry *dependency.Registry
}

func (r *reader) file(source string, rec *parser.Record) error {
	v, ok := rec.Get(keyDependencies)
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return &dependency.DefinitionError{Field: keyDependencies, Reason: "not a list", Source: source}
	}

	for i, item := range list {
		record, ok := item.(*parser.Record)
		if !ok {
			return &dependency.DefinitionError{
				Field: keyDependencies, Reason: fmt.Sprintf("entry %d is not a record", i), Source: source,
			}
		}
		d, err := r.definition(source, record.Clone())
		if err != nil {
			return err
		}
		r.registry.Add(d)
	}
	return nil
}

// definition consumes the known keys of rec; leftovers are an error.
func (r *reader) definition(source string, rec *parser.Record) (*dependency.Definition, error) {
	spec := dependency.Spec{Source: source}

	var err error
	if spec.ClassName, err = takeString(rec, keyClass); err != nil {
		return nil, fieldError(spec, keyClass, err)
	}
	if spec.ID, err = takeString(rec, keyID); err != nil {
		return nil, fieldError(spec, keyID, err)
	}
	if v, ok := rec.Take(keyFactory); ok {
		if spec.Factory, err = factory(v); err != nil {
			return nil, fieldError(spec, keyFactory, err)
		}
	}
	if spec.Interfaces, err = takeStrings(rec, keyInterfaces); err != nil {
		return nil, fieldError(spec, keyInterfaces, err)
	}
	if spec.Tags, err = takeStrings(rec, keyTags); err != nil {
		return nil, fieldError(spec, keyTags, err)
	}
	if v, ok := rec.Take(keyArguments); ok {
		args, err := arguments(v)
		if err != nil {
			return nil, fieldError(spec, keyArguments, err)
		}
		spec.Calls = append(spec.Calls, dependency.NewCall(dependency.Constructor, "", args...))
	}
	if v, ok := rec.Take(keyCalls); ok {
		cs, err := calls(v)
		if err != nil {
			return nil, fieldError(spec, keyCalls, err)
		}
		spec.Calls = append(spec.Calls, cs...)
	}
	extends, err := takeString(rec, keyExtends)
	if err != nil {
		return nil, fieldError(spec, keyExtends, err)
	}

	if rec.Len() > 0 {
		return nil, &dependency.UnknownPropertyError{
			ClassName: spec.ClassName, ID: spec.ID, Keys: rec.Keys(), Source: source,
		}
	}

	if extends == "" {
		return dependency.New(spec)
	}

	iface := target(spec)
	base, ok := r.registry.Definition(iface, extends)
	if !ok {
		return nil, &dependency.DefinitionNotFoundError{Interface: iface, ID: extends, Source: source}
	}
	return base.Extend(spec)
}

// target returns the interface an extends record looks up its base under.
func target(spec dependency.Spec) string {
	switch {
	case len(spec.Interfaces) > 0:
		return spec.Interfaces[0]
	case spec.ClassName != "":
		return spec.ClassName
	case spec.Factory != nil:
		return spec.Factory.Interface()
	}
	return ""
}

// ── Nested records ────────────────────────────────────────────────────────────

func factory(v any) (*dependency.ConstructCall, error) {
	rec, ok := v.(*parser.Record)
	if !ok {
		return nil, errors.New("not a record")
	}
	rec = rec.Clone()
	iface, err := takeString(rec, keyInterface)
	if err != nil {
		return nil, err
	}
	method, err := takeString(rec, keyMethod)
	if err != nil {
		return nil, err
	}
	id, err := takeString(rec, keyID)
	if err != nil {
		return nil, err
	}
	var args []*dependency.Argument
	if v, ok := rec.Take(keyArguments); ok {
		if args, err = arguments(v); err != nil {
			return nil, err
		}
	}
	if rec.Len() > 0 {
		return nil, fmt.Errorf("unknown keys %v", rec.Keys())
	}
	return dependency.NewConstructCall(iface, method, id, args...), nil
}

func calls(v any) ([]*dependency.Call, error) {
	list, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, errors.New("not a list")
	}

	out := make([]*dependency.Call, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case string:
			out = append(out, dependency.NewCall(t, ""))
		case *parser.Record:
			rec := t.Clone()
			method, err := takeString(rec, keyMethod)
			if err != nil {
				return nil, err
			}
			if method == "" {
				return nil, errors.New("method is not set")
			}
			id, err := takeString(rec, keyID)
			if err != nil {
				return nil, err
			}
			var args []*dependency.Argument
			if v, ok := rec.Take(keyArguments); ok {
				if args, err = arguments(v); err != nil {
					return nil, fmt.Errorf("call %s: %w", method, err)
				}
			}
			if rec.Len() > 0 {
				return nil, fmt.Errorf("call %s: unknown keys %v", method, rec.Keys())
			}
			out = append(out, dependency.NewCall(method, id, args...))
		default:
			return nil, errors.New("call is not a string or a record")
		}
	}
	return out, nil
}

func arguments(v any) ([]*dependency.Argument, error) {
	list, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, errors.New("arguments is not a list")
	}

	out := make([]*dependency.Argument, 0, len(list))
	for _, item := range list {
		rec, ok := item.(*parser.Record)
		if !ok {
			return nil, errors.New("argument is not a record")
		}
		rec = rec.Clone()
		name, err := takeString(rec, keyName)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, errors.New("argument name not set")
		}
		typ, err := takeString(rec, keyType)
		if err != nil {
			return nil, fmt.Errorf("argument $%s: %w", name, err)
		}
		if typ == "" {
			return nil, fmt.Errorf("type of argument $%s not set", name)
		}

		var props []dependency.Property
		if pv, ok := rec.Take(keyProperties); ok && pv != nil {
			p, ok := pv.(*parser.Record)
			if !ok {
				return nil, fmt.Errorf("properties of argument $%s is not a record", name)
			}
			for _, key := range p.Keys() {
				value, _ := p.Get(key)
				props = append(props, dependency.Property{Key: key, Value: scalar(value)})
			}
		}
		if rec.Len() > 0 {
			return nil, fmt.Errorf("argument $%s: unknown keys %v", name, rec.Keys())
		}
		out = append(out, dependency.NewArgument(name, typ, props...))
	}
	return out, nil
}

// ── Scalars ───────────────────────────────────────────────────────────────────

func takeString(rec *parser.Record, key string) (string, error) {
	v, ok := rec.Take(key)
	if !ok || v == nil {
		return "", nil
	}
	switch t := v.(type) {
	case *parser.Record, []any:
		return "", fmt.Errorf("%s is not a string", key)
	default:
		return scalar(t), nil
	}
}

// takeStrings accepts a single string or a list of strings.
func takeStrings(rec *parser.Record, key string) ([]string, error) {
	v, ok := rec.Take(key)
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if _, ok := item.(*parser.Record); ok {
				return nil, fmt.Errorf("%s is not a string or a list", key)
			}
			out = append(out, scalar(item))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s is not a string or a list", key)
	}
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func fieldError(spec dependency.Spec, field string, err error) error {
	return &dependency.DefinitionError{
		ClassName: spec.ClassName, ID: spec.ID, Field: field, Reason: err.Error(), Source: spec.Source,
	}
}
