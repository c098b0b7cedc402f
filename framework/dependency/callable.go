package dependency

import (
	"fmt"
	"strings"
)

// CallableKind selects how a Callable is invoked.
type CallableKind int

const (
	// Function calls a registered function by name.
	Function CallableKind = iota
	// Static calls a class level method that needs no instance.
	Static
	// Instance calls a method on the instance of an interface (and id).
	Instance
)

func (k CallableKind) String() string {
	switch k {
	case Static:
		return "static"
	case Instance:
		return "instance"
	default:
		return "function"
	}
}

// Callable is a parsed reference to something the injector can call.
//
//	Class::method        → Static
//	Interface->method    → Instance (default id)
//	Interface#id->method → Instance
//	function             → Function
type Callable struct {
	Kind   CallableKind
	Class  string // class for Static, interface for Instance
	ID     string
	Method string // method, or function name for Function
}

// ParseCallable parses the string form of a callable.
func ParseCallable(s string) (Callable, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Callable{}, fmt.Errorf("%w: empty string", ErrInvalidCallable)
	}

	if target, method, ok := strings.Cut(s, "->"); ok {
		if target == "" || method == "" {
			return Callable{}, fmt.Errorf("%w: %q", ErrInvalidCallable, s)
		}
		iface, id, _ := strings.Cut(target, "#")
		if iface == "" {
			return Callable{}, fmt.Errorf("%w: %q", ErrInvalidCallable, s)
		}
		return Callable{Kind: Instance, Class: iface, ID: id, Method: method}, nil
	}

	if class, method, ok := strings.Cut(s, "::"); ok {
		if class == "" || method == "" {
			return Callable{}, fmt.Errorf("%w: %q", ErrInvalidCallable, s)
		}
		return Callable{Kind: Static, Class: class, Method: method}, nil
	}

	if strings.ContainsAny(s, "#:>") {
		return Callable{}, fmt.Errorf("%w: %q", ErrInvalidCallable, s)
	}
	return Callable{Kind: Function, Method: s}, nil
}

// String renders the callable back to its string form.
func (c Callable) String() string {
	switch c.Kind {
	case Static:
		return c.Class + "::" + c.Method
	case Instance:
		if c.ID != "" {
			return c.Class + "#" + c.ID + "->" + c.Method
		}
		return c.Class + "->" + c.Method
	default:
		return c.Method
	}
}
