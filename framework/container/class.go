package container

import (
	"fmt"
	"reflect"
)

// class holds the Go functions bound to a class name of the definition
// files.
type class struct {
	name        string
	constructor reflect.Value
	methods     map[string]reflect.Value
	statics     map[string]reflect.Value
}

// ClassBuilder implements the fluent class binding API.
//
//	c.Class("mail.SmtpTransport").
//	    Constructs(mail.NewSmtpTransport).
//	    Method("setTimeout", (*mail.SmtpTransport).SetTimeout).
//	    Static("fromEnv", mail.TransportFromEnv)
//
// Methods without a binding are looked up on the instance by their exported
// name, so setTimeout also finds SetTimeout.
type ClassBuilder struct {
	container *Container
	class     *class
}

// Class starts or continues the binding of name.
func (c *Container) Class(name string) *ClassBuilder {
	c.mu.Lock()
	defer c.mu.Unlock()
	cl, ok := c.classes[name]
	if !ok {
		cl = &class{
			name:    name,
			methods: make(map[string]reflect.Value),
			statics: make(map[string]reflect.Value),
		}
		c.classes[name] = cl
	}
	return &ClassBuilder{container: c, class: cl}
}

// Constructs sets the constructor. It receives the constructor arguments
// in declaration order and returns the instance, optionally with an error.
func (b *ClassBuilder) Constructs(fn any) *ClassBuilder {
	v := mustFunc(b.class.name, "constructor", fn)
	b.container.mu.Lock()
	defer b.container.mu.Unlock()
	b.class.constructor = v
	return b
}

// Method binds a method; fn receives the instance followed by the call
// arguments.
func (b *ClassBuilder) Method(name string, fn any) *ClassBuilder {
	v := mustFunc(b.class.name, name, fn)
	if v.Type().NumIn() == 0 {
		panic(fmt.Sprintf("container: method %s of [%s] takes no instance", name, b.class.name))
	}
	b.container.mu.Lock()
	defer b.container.mu.Unlock()
	b.class.methods[name] = v
	return b
}

// Static binds a class level function used by static callables.
func (b *ClassBuilder) Static(name string, fn any) *ClassBuilder {
	v := mustFunc(b.class.name, name, fn)
	b.container.mu.Lock()
	defer b.container.mu.Unlock()
	b.class.statics[name] = v
	return b
}

func mustFunc(className, name string, fn any) reflect.Value {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("container: %s of [%s] is %T, not a func", name, className, fn))
	}
	return v
}

// lookups (hold no lock on entry)

func (c *Container) constructor(className string) (reflect.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cl, ok := c.classes[className]
	if !ok || !cl.constructor.IsValid() {
		return reflect.Value{}, false
	}
	return cl.constructor, true
}

func (c *Container) method(className, name string) (reflect.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cl, ok := c.classes[className]
	if !ok {
		return reflect.Value{}, false
	}
	m, ok := cl.methods[name]
	return m, ok
}

func (c *Container) static(className, name string) (reflect.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cl, ok := c.classes[className]
	if !ok {
		return reflect.Value{}, false
	}
	m, ok := cl.statics[name]
	return m, ok
}

func (c *Container) function(name string) (reflect.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.functions[name]
	return fn, ok
}
