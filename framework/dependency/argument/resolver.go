// Package argument turns declared call arguments into values.
//
// Each argument names a resolver type; the Set maps types to Resolvers:
//
//	set := argument.Defaults(params)
//	set.Register("env", myEnvResolver) // custom types need no change here
//	v, err := set.Resolve(arg, injector)
//
// A Resolver returns either a final value or a Reference that the injector
// resolves to an instance.
package argument

import (
	"sort"
	"sync"

	"github.com/km-arc/go-bootstrap/framework/dependency"
)

// Resolver types registered by Defaults.
const (
	TypeDependency = "dependency"
	TypeParameter  = "parameter"
	TypeCall       = "call"
	TypeScalar     = "scalar"
	TypeArray      = "array"
)

// Property names read by the default resolvers.
const (
	PropertyInterface = "interface"
	PropertyID        = "id"
	PropertyKey       = "key"
	PropertyDefault   = "default"
	PropertyValue     = "value"
	PropertyCall      = "call"
	PropertyFunction  = "function"
	PropertyClass     = "class"
	PropertyMethod    = "method"
)

// Reference asks the injector for the instance of Interface with ID.
type Reference struct {
	Interface string
	ID        string
}

// Injector is the part of the instantiation engine resolvers call back into.
type Injector interface {
	Invoke(callable dependency.Callable, args ...any) (any, error)
}

// Resolver produces the value of an argument.
type Resolver interface {
	Resolve(arg *dependency.Argument, inj Injector) (any, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(arg *dependency.Argument, inj Injector) (any, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(arg *dependency.Argument, inj Injector) (any, error) {
	return f(arg, inj)
}

// ── Set ───────────────────────────────────────────────────────────────────────

// Set maps argument types to resolvers. Safe for concurrent use.
type Set struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{resolvers: make(map[string]Resolver)}
}

// Defaults creates a set with the dependency, parameter, call, scalar and
// array resolvers reading parameters from cfg.
func Defaults(cfg Config) *Set {
	s := NewSet()
	s.Register(TypeDependency, &DependencyResolver{Config: cfg})
	s.Register(TypeParameter, &ParameterResolver{Config: cfg})
	s.Register(TypeCall, &CallResolver{Config: cfg})
	s.Register(TypeScalar, &ScalarResolver{Config: cfg})
	s.Register(TypeArray, &ArrayResolver{Config: cfg})
	return s
}

// Register binds r to typ, replacing any earlier resolver.
func (s *Set) Register(typ string, r Resolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolvers[typ] = r
}

// Resolver returns the resolver of typ.
func (s *Set) Resolver(typ string) (Resolver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resolvers[typ]
	return r, ok
}

// Types returns the registered types, sorted.
func (s *Set) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.resolvers))
	for typ := range s.resolvers {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Resolve hands arg to the resolver of its type.
func (s *Set) Resolve(arg *dependency.Argument, inj Injector) (any, error) {
	r, ok := s.Resolver(arg.Type())
	if !ok {
		return nil, &dependency.UnknownArgumentTypeError{Argument: arg.Name(), Type: arg.Type()}
	}
	return r.Resolve(arg, inj)
}
