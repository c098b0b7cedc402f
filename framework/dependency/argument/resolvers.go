package argument

import (
	"fmt"

	"github.com/km-arc/go-bootstrap/framework/dependency"
)

// ── DependencyResolver ────────────────────────────────────────────────────────

// DependencyResolver refers to another instance. The id may be a parameter
// reference:
//
//	properties: {interface: app.Mailer, id: "%mail.driver|smtp%"}
type DependencyResolver struct {
	Config Config
}

// Resolve returns a Reference to the instance the container builds.
func (r *DependencyResolver) Resolve(arg *dependency.Argument, _ Injector) (any, error) {
	iface, ok := arg.Property(PropertyInterface)
	if !ok || iface == "" {
		return nil, &dependency.MissingKeyError{Argument: arg.Name(), Key: PropertyInterface}
	}
	id, _ := arg.Property(PropertyID)
	return Reference{Interface: iface, ID: DependencyID(id, r.Config)}, nil
}

// DependencyID interpolates a dependency id.
func DependencyID(id string, cfg Config) string {
	if id == "" {
		return ""
	}
	return InterpolateString(id, cfg)
}

// ── ParameterResolver ─────────────────────────────────────────────────────────

// ParameterResolver reads a parameter by key, with an optional default.
//
//	properties: {key: mail.port, default: "25"}
type ParameterResolver struct {
	Config Config
}

// Resolve returns the parameter value, or the default when it is unset.
func (r *ParameterResolver) Resolve(arg *dependency.Argument, _ Injector) (any, error) {
	key, ok := arg.Property(PropertyKey)
	if !ok || key == "" {
		return nil, &dependency.MissingKeyError{Argument: arg.Name(), Key: PropertyKey}
	}

	var def any
	if d, ok := arg.Property(PropertyDefault); ok {
		def = Interpolate(d, r.Config)
	}
	if r.Config == nil {
		return def, nil
	}
	return r.Config.Get(key, def), nil
}

// ── CallResolver ──────────────────────────────────────────────────────────────

// CallResolver uses the result of a call as value. The target is given as
// one string or as separate properties:
//
//	properties: {call: "app.Clock#utc->now"}
//	properties: {interface: app.Clock, id: utc, method: now}
//	properties: {class: app.Clock, method: now}
//	properties: {function: hostname}
type CallResolver struct {
	Config Config
}

// Resolve invokes the callable through inj and returns its result.
func (r *CallResolver) Resolve(arg *dependency.Argument, inj Injector) (any, error) {
	callable, err := r.Callable(arg)
	if err != nil {
		return nil, err
	}
	if inj == nil {
		return nil, fmt.Errorf("dependency: no injector to call %s for argument $%s", callable, arg.Name())
	}
	return inj.Invoke(callable)
}

// Callable builds the call target of arg.
func (r *CallResolver) Callable(arg *dependency.Argument) (dependency.Callable, error) {
	var (
		callable dependency.Callable
		err      error
	)

	if s, ok := arg.Property(PropertyCall); ok {
		callable, err = dependency.ParseCallable(s)
		if err != nil {
			return callable, fmt.Errorf("argument $%s: %w", arg.Name(), err)
		}
	} else if fn, ok := arg.Property(PropertyFunction); ok {
		callable = dependency.Callable{Kind: dependency.Function, Method: fn}
	} else {
		method, ok := arg.Property(PropertyMethod)
		if !ok || method == "" {
			return callable, &dependency.MissingKeyError{Argument: arg.Name(), Key: PropertyMethod}
		}
		if iface, ok := arg.Property(PropertyInterface); ok {
			id, _ := arg.Property(PropertyID)
			callable = dependency.Callable{Kind: dependency.Instance, Class: iface, ID: id, Method: method}
		} else if class, ok := arg.Property(PropertyClass); ok {
			callable = dependency.Callable{Kind: dependency.Static, Class: class, Method: method}
		} else {
			return callable, &dependency.MissingKeyError{Argument: arg.Name(), Key: PropertyInterface}
		}
	}

	if callable.Kind == dependency.Instance {
		callable.ID = DependencyID(callable.ID, r.Config)
	}
	return callable, nil
}

// ── ScalarResolver ────────────────────────────────────────────────────────────

// ScalarResolver passes the value property, interpolated.
type ScalarResolver struct {
	Config Config
}

// Resolve returns the interpolated value property.
func (r *ScalarResolver) Resolve(arg *dependency.Argument, _ Injector) (any, error) {
	v, ok := arg.Property(PropertyValue)
	if !ok {
		return nil, &dependency.MissingKeyError{Argument: arg.Name(), Key: PropertyValue}
	}
	return Interpolate(v, r.Config), nil
}

// ── ArrayResolver ─────────────────────────────────────────────────────────────

// ArrayResolver passes all properties as a map, each value interpolated.
type ArrayResolver struct {
	Config Config
}

// Resolve returns all properties, interpolated, as a map.
func (r *ArrayResolver) Resolve(arg *dependency.Argument, _ Injector) (any, error) {
	props := arg.Properties()
	out := make(map[string]any, len(props))
	for _, p := range props {
		out[p.Key] = Interpolate(p.Value, r.Config)
	}
	return out, nil
}
