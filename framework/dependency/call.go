package dependency

// Constructor is the method name of the primary construction call of a
// class definition.
const Constructor = "__construct"

// ── Argument ──────────────────────────────────────────────────────────────────

// Property is a single resolver-specific key/value pair of an Argument.
type Property struct {
	Key   string
	Value string
}

// Argument describes one formal parameter of a Call: its name, the resolver
// type that produces its value and the properties handed to that resolver.
//
//	// dependencies.yaml
//	// arguments:
//	//   - name: mailer
//	//     type: dependency
//	//     properties: {interface: Mailer, id: "%mail.driver|smtp%"}
//	dependency.NewArgument("mailer", "dependency",
//	    dependency.Property{Key: "interface", Value: "Mailer"},
//	    dependency.Property{Key: "id", Value: "%mail.driver|smtp%"})
type Argument struct {
	name       string
	typ        string
	properties []Property
}

// NewArgument creates an argument. Properties keep their order; a repeated
// key replaces the earlier value.
func NewArgument(name, typ string, properties ...Property) *Argument {
	a := &Argument{name: name, typ: typ}
	for _, p := range properties {
		a.setProperty(p.Key, p.Value)
	}
	return a
}

// Name returns the parameter name the argument is passed as.
func (a *Argument) Name() string { return a.name }

// Type returns the resolver type tag.
func (a *Argument) Type() string { return a.typ }

// Properties returns a copy of the properties in declaration order.
func (a *Argument) Properties() []Property {
	out := make([]Property, len(a.properties))
	copy(out, a.properties)
	return out
}

// Property returns the value of a property and whether it is set.
func (a *Argument) Property(key string) (string, bool) {
	for _, p := range a.properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func (a *Argument) setProperty(key, value string) {
	for i, p := range a.properties {
		if p.Key == key {
			a.properties[i].Value = value
			return
		}
	}
	a.properties = append(a.properties, Property{Key: key, Value: value})
}

func (a *Argument) clone() *Argument {
	return &Argument{name: a.name, typ: a.typ, properties: a.Properties()}
}

// ── Call ──────────────────────────────────────────────────────────────────────

// Call is a method invocation with ordered arguments. The id distinguishes
// calls with the same method name.
type Call struct {
	method    string
	id        string
	arguments []*Argument
}

// NewCall creates a call of method with the given arguments.
func NewCall(method, id string, arguments ...*Argument) *Call {
	c := &Call{method: method, id: id}
	for _, a := range arguments {
		c.addArgument(a)
	}
	return c
}

// Method returns the name of the invoked method.
func (c *Call) Method() string { return c.method }

// ID returns the call id, empty unless the call must be told apart from
// another call of the same method.
func (c *Call) ID() string { return c.id }

// Arguments returns the arguments in invocation order.
func (c *Call) Arguments() []*Argument {
	out := make([]*Argument, len(c.arguments))
	copy(out, c.arguments)
	return out
}

// addArgument appends an argument. An argument with the same name replaces
// the earlier one in place.
func (c *Call) addArgument(a *Argument) {
	for i, existing := range c.arguments {
		if existing.name == a.name {
			c.arguments[i] = a
			return
		}
	}
	c.arguments = append(c.arguments, a)
}

func (c *Call) clone() *Call {
	out := &Call{method: c.method, id: c.id, arguments: make([]*Argument, len(c.arguments))}
	for i, a := range c.arguments {
		out.arguments[i] = a.clone()
	}
	return out
}

// ── ConstructCall ─────────────────────────────────────────────────────────────

// ConstructCall is a factory: the instance registered for Interface (with
// the call id as instance id) is asked to produce the definition's value by
// calling Method.
type ConstructCall struct {
	Call
	iface string
}

// NewConstructCall creates a factory call on the instance of iface with id.
func NewConstructCall(iface, method, id string, arguments ...*Argument) *ConstructCall {
	return &ConstructCall{Call: *NewCall(method, id, arguments...), iface: iface}
}

// Interface returns the interface of the factory instance.
func (c *ConstructCall) Interface() string { return c.iface }

// String renders the factory as Interface#id->method.
func (c *ConstructCall) String() string {
	s := c.iface
	if c.id != "" {
		s += "#" + c.id
	}
	return s + "->" + c.method
}

func (c *ConstructCall) clone() *ConstructCall {
	return &ConstructCall{Call: *c.Call.clone(), iface: c.iface}
}
