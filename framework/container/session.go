package container

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/km-arc/go-bootstrap/framework/dependency"
	"github.com/km-arc/go-bootstrap/framework/dependency/argument"
)

// session is the state of one top-level Get or Invoke: the stack of
// instances being built, used to detect cycles. Resolvers receive the
// session as their injector so nested lookups share the stack.
type session struct {
	c     *Container
	stack []string
}

func (s *session) get(iface, id string) (any, error) {
	c := s.c
	iface = c.canonicalName(iface)
	k := key(iface, id)

	if inst, ok := c.instance(k); ok {
		return inst, nil
	}
	if b, ok := c.binding(k); ok {
		inst := b.factory(c)
		if b.singleton {
			inst = c.store(k, inst)
		}
		c.fireAfterResolving(iface, id, inst)
		return inst, nil
	}

	d, ok := s.definition(iface, id)
	if !ok {
		return nil, &NotFoundError{Interface: iface, ID: id}
	}
	dk := key(iface, d.ID())
	if inst, ok := c.instance(dk); ok {
		return inst, nil
	}

	for i, building := range s.stack {
		if building == dk {
			chain := append(append([]string(nil), s.stack[i:]...), dk)
			return nil, &CircularDependencyError{Chain: chain}
		}
	}

	s.stack = append(s.stack, dk)
	inst, err := s.build(d)
	s.stack = s.stack[:len(s.stack)-1]
	if err != nil {
		return nil, &BuildError{Interface: iface, ID: d.ID(), Err: err}
	}

	inst = c.store(dk, inst)
	c.fireAfterResolving(iface, d.ID(), inst)
	return inst, nil
}

func (s *session) definition(iface, id string) (*dependency.Definition, bool) {
	if id == "" {
		return s.c.registry.Default(iface)
	}
	return s.c.registry.Definition(iface, id)
}

// build constructs the instance of d, then runs its calls in order.
func (s *session) build(d *dependency.Definition) (any, error) {
	var inst any

	if f := d.Factory(); f != nil {
		factory, err := s.get(f.Interface(), f.ID())
		if err != nil {
			return nil, err
		}
		args, err := s.arguments(f.Arguments())
		if err != nil {
			return nil, err
		}
		inst, err = s.callMethod(factory, s.className(f.Interface(), f.ID()), f.Method(), args)
		if err != nil {
			return nil, fmt.Errorf("factory %s: %w", f, err)
		}
	} else {
		ctor, ok := s.c.constructor(d.ClassName())
		if !ok {
			return nil, fmt.Errorf("%w for class [%s]", ErrUnknownClass, d.ClassName())
		}
		args, err := s.arguments(d.ConstructorArguments())
		if err != nil {
			return nil, err
		}
		if inst, err = call(ctor, args); err != nil {
			return nil, fmt.Errorf("constructor of [%s]: %w", d.ClassName(), err)
		}
	}

	for _, c := range d.Calls() {
		if c.Method() == dependency.Constructor {
			continue
		}
		args, err := s.arguments(c.Arguments())
		if err != nil {
			return nil, err
		}
		if _, err = s.callMethod(inst, d.ClassName(), c.Method(), args); err != nil {
			return nil, fmt.Errorf("call %s: %w", c.Method(), err)
		}
	}
	return inst, nil
}

// arguments resolves declared arguments; references are built recursively.
func (s *session) arguments(args []*dependency.Argument) ([]any, error) {
	out := make([]any, 0, len(args))
	for _, a := range args {
		v, err := s.c.resolvers.Resolve(a, s)
		if err != nil {
			return nil, fmt.Errorf("argument $%s: %w", a.Name(), err)
		}
		if ref, ok := v.(argument.Reference); ok {
			if v, err = s.get(ref.Interface, ref.ID); err != nil {
				return nil, fmt.Errorf("argument $%s: %w", a.Name(), err)
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// className returns the class of the definition behind iface and id, empty
// for bindings and factory definitions.
func (s *session) className(iface, id string) string {
	if d, ok := s.definition(s.c.canonicalName(iface), id); ok {
		return d.ClassName()
	}
	return ""
}

// Invoke implements argument.Injector.
func (s *session) Invoke(callable dependency.Callable, args ...any) (any, error) {
	switch callable.Kind {
	case dependency.Function:
		fn, ok := s.c.function(callable.Method)
		if !ok {
			return nil, fmt.Errorf("%w: function %s", ErrUnknownMethod, callable.Method)
		}
		return call(fn, args)
	case dependency.Static:
		fn, ok := s.c.static(callable.Class, callable.Method)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, callable)
		}
		return call(fn, args)
	default:
		inst, err := s.get(callable.Class, callable.ID)
		if err != nil {
			return nil, err
		}
		return s.callMethod(inst, s.className(callable.Class, callable.ID), callable.Method, args)
	}
}

// callMethod calls a bound method of className, or else the exported
// method of inst with the same name.
func (s *session) callMethod(inst any, className, method string, args []any) (any, error) {
	if fn, ok := s.c.method(className, method); ok {
		return call(fn, append([]any{inst}, args...))
	}
	v := reflect.ValueOf(inst)
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: %s on nil instance", ErrUnknownMethod, method)
	}
	m := v.MethodByName(exported(method))
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %T has no method %s", ErrUnknownMethod, inst, method)
	}
	return call(m, args)
}

func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// ── Reflective calls ──────────────────────────────────────────────────────────

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// call invokes fn with args converted to its parameter types. Missing
// trailing arguments are zero values. A trailing error result is returned
// as error; the first other result is the value.
func call(fn reflect.Value, args []any) (any, error) {
	t := fn.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	} else if len(args) > fixed {
		return nil, fmt.Errorf("%w: %d arguments for %d parameters", ErrArgument, len(args), fixed)
	}

	in := make([]reflect.Value, 0, max(len(args), fixed))
	for i := 0; i < fixed; i++ {
		if i >= len(args) {
			in = append(in, reflect.Zero(t.In(i)))
			continue
		}
		v, err := convert(args[i], t.In(i))
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		in = append(in, v)
	}
	if t.IsVariadic() {
		elem := t.In(fixed).Elem()
		for i := fixed; i < len(args); i++ {
			v, err := convert(args[i], elem)
			if err != nil {
				return nil, fmt.Errorf("parameter %d: %w", i+1, err)
			}
			in = append(in, v)
		}
	}

	out := fn.Call(in)
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

// convert fits a resolved value to parameter type t. Definition values are
// strings, so strings are parsed into numbers and booleans.
func convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	if s, ok := v.(string); ok {
		switch t.Kind() {
		case reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%w: %q is not a bool", ErrArgument, s)
			}
			return reflect.ValueOf(b).Convert(t), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i, err := strconv.ParseInt(strings.TrimSpace(s), 10, t.Bits())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%w: %q is not an integer", ErrArgument, s)
			}
			return reflect.ValueOf(i).Convert(t), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u, err := strconv.ParseUint(strings.TrimSpace(s), 10, t.Bits())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%w: %q is not an unsigned integer", ErrArgument, s)
			}
			return reflect.ValueOf(u).Convert(t), nil
		case reflect.Float32, reflect.Float64:
			f, err := strconv.ParseFloat(strings.TrimSpace(s), t.Bits())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%w: %q is not a number", ErrArgument, s)
			}
			return reflect.ValueOf(f).Convert(t), nil
		}
	}

	if t.Kind() == reflect.String {
		return reflect.ValueOf(fmt.Sprint(v)).Convert(t), nil
	}
	if isNumber(rv.Kind()) && isNumber(t.Kind()) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %T does not fit %s", ErrArgument, v, t)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
