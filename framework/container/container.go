package container

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/km-arc/go-bootstrap/framework/dependency"
	"github.com/km-arc/go-bootstrap/framework/dependency/argument"
)

// ResolverInterface is the interface under which definitions of custom
// argument resolvers are declared. RegisterResolvers registers each of them
// with its id as argument type.
const ResolverInterface = "argument.Resolver"

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) any

// binding holds a registered factory and whether it is a singleton.
type binding struct {
	factory   Factory
	singleton bool
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container builds instances from the definitions of a dependency registry.
//
// It supports:
//   - Get / GetAll / GetByTag for definitions, each built once per (interface, id)
//   - Class / Function to bind Go constructors, methods and functions to the
//     names used in definition files
//   - Bind / Singleton / Instance / Alias for services built in Go
//   - Invoke for the callables of call arguments
type Container struct {
	mu sync.RWMutex

	registry  *dependency.Registry
	resolvers *argument.Set

	// interface#id → factory binding
	bindings map[string]*binding

	// interface#id → resolved instance
	instances map[string]any

	// alias → interface (canonical key)
	aliases map[string]string

	// class name → constructor and methods
	classes map[string]*class

	// function name → func value
	functions map[string]reflect.Value

	// resolved callbacks: []func(interface, id, instance)
	afterResolving []func(string, string, any)
}

// New creates a container over reg, resolving arguments with resolvers.
// A nil reg is an empty registry; nil resolvers are argument.Defaults(nil).
func New(reg *dependency.Registry, resolvers *argument.Set) *Container {
	if reg == nil {
		reg = dependency.NewRegistry()
	}
	if resolvers == nil {
		resolvers = argument.Defaults(nil)
	}
	c := &Container{
		registry:  reg,
		resolvers: resolvers,
		bindings:  make(map[string]*binding),
		instances: make(map[string]any),
		aliases:   make(map[string]string),
		classes:   make(map[string]*class),
		functions: make(map[string]reflect.Value),
	}
	c.Instance("container", c)
	return c
}

// Registry returns the registry the container builds from.
func (c *Container) Registry() *dependency.Registry { return c.registry }

// Resolvers returns the argument resolver set.
func (c *Container) Resolvers() *argument.Set { return c.resolvers }

func key(iface, id string) string {
	if id == "" {
		return iface
	}
	return iface + "#" + id
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Get) factory.
//
//	c.Bind("clock", func(c *container.Container) any { return time.Now })
func (c *Container) Bind(abstract string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind(abstract, factory, false)
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	c.Singleton("logger", func(c *container.Container) any {
//	    return logging.New(container.Resolve[*config.Config](c, "config"))
//	})
func (c *Container) Singleton(abstract string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bind(abstract, factory, true)
}

// bind is the internal registration helper (must hold mu.Lock).
func (c *Container) bind(abstract string, factory Factory, singleton bool) {
	k := c.canonical(abstract)
	delete(c.instances, k)
	c.bindings[k] = &binding{factory: factory, singleton: singleton}
}

// Instance registers a pre-built value as the default instance of abstract.
//
//	c.Instance("config", cfg)
func (c *Container) Instance(abstract string, instance any) {
	c.InstanceNamed(abstract, "", instance)
}

// InstanceNamed registers a pre-built value for abstract with id. It takes
// precedence over any definition of the same pair.
//
//	c.InstanceNamed("mail.Transport", "smtp", transport)
func (c *Container) InstanceNamed(abstract, id string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(c.canonical(abstract), id)
	delete(c.bindings, k)
	c.instances[k] = instance
}

// Alias registers an alternative name for an abstract.
//
//	c.Alias("mail.Mailer", "mailer")
func (c *Container) Alias(abstract, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.aliases[alias] = c.canonical(abstract)
}

// Function registers fn under name for function callables.
//
//	c.Function("hostname", os.Hostname)
func (c *Container) Function(name string, fn any) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("container: function [%s] is %T, not a func", name, fn))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.functions[name] = v
}

// RegisterResolvers builds the definitions declared under ResolverInterface
// and registers each as argument resolver for its id.
func (c *Container) RegisterResolvers() error {
	for _, d := range c.registry.Definitions(ResolverInterface) {
		if d.ID() == "" {
			return fmt.Errorf("container: resolver definition %s has no id", d)
		}
		inst, err := c.Get(ResolverInterface, d.ID())
		if err != nil {
			return err
		}
		r, ok := inst.(argument.Resolver)
		if !ok {
			return fmt.Errorf("container: %s resolved to %T, not an argument resolver", d, inst)
		}
		c.resolvers.Register(d.ID(), r)
	}
	return nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get returns the instance of iface with id. An empty id selects the
// default: the binding or instance without id, else the definition the
// registry names as default.
//
//	mailer, err := c.Get("mail.Mailer", "")
func (c *Container) Get(iface, id string) (any, error) {
	return (&session{c: c}).get(iface, id)
}

// GetAll returns the instances of every definition of iface, in registry
// order.
func (c *Container) GetAll(iface string) ([]any, error) {
	return c.getEach(iface, c.registry.Definitions(c.canonicalName(iface)))
}

// GetByTag returns the instances of the definitions of iface carrying tag.
func (c *Container) GetByTag(iface, tag string) ([]any, error) {
	return c.getEach(iface, c.registry.Tagged(c.canonicalName(iface), tag))
}

func (c *Container) getEach(iface string, defs []*dependency.Definition) ([]any, error) {
	out := make([]any, 0, len(defs))
	for _, d := range defs {
		inst, err := c.Get(iface, d.ID())
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// Invoke calls callable with args. Instance callables are called on the
// instance of their interface and id.
//
//	now, err := c.Invoke(dependency.Callable{Kind: dependency.Instance, Class: "app.Clock", Method: "now"})
func (c *Container) Invoke(callable dependency.Callable, args ...any) (any, error) {
	return (&session{c: c}).Invoke(callable, args...)
}

// Make resolves the default instance of abstract and panics when it cannot.
//
//	logger := c.Make("logger").(*zap.Logger)
func (c *Container) Make(abstract string) any {
	inst, err := c.Get(abstract, "")
	if err != nil {
		panic(err)
	}
	return inst
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if a binding, instance or definition exists for
// abstract.
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	k := c.canonical(abstract)
	_, hasBinding := c.bindings[k]
	_, hasInstance := c.instances[k]
	c.mu.RUnlock()
	return hasBinding || hasInstance || c.registry.Has(k)
}

// Resolved returns true if the default instance of abstract has been built.
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Forget removes the binding and the instance of abstract.
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.canonical(abstract)
	delete(c.bindings, k)
	delete(c.instances, k)
}

// Bindings returns the keys of all bindings and instances (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	return out
}

// canonical resolves an alias to its canonical key (must hold mu).
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

func (c *Container) canonicalName(abstract string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.canonical(abstract)
}

func (c *Container) instance(k string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.instances[k]
	return inst, ok
}

func (c *Container) binding(k string) (*binding, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bindings[k]
	return b, ok
}

// store caches inst under k unless another build got there first, and
// returns the cached value.
func (c *Container) store(k string, inst any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.instances[k]; ok {
		return existing
	}
	c.instances[k] = inst
	return inst
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after an instance is built.
func (c *Container) AfterResolving(cb func(iface, id string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(iface, id string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(iface, id, instance)
	}
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
//
//	// Instead of: p := c.Make("parameters").(*config.Parameters)
//	// Write:      p := container.Resolve[*config.Parameters](c, "parameters")
func Resolve[T any](c *Container, abstract string) T {
	instance := c.Make(abstract)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), abstract, instance))
	}
	return typed
}

// Lookup is like Resolve for an interface and id, returning errors instead
// of panicking.
func Lookup[T any](c *Container, iface, id string) (T, error) {
	var zero T
	instance, err := c.Get(iface, id)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: [%s] resolved to %T, not %T", key(iface, id), instance, zero)
	}
	return typed, nil
}
