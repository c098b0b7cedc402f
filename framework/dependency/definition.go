package dependency

// Spec holds the declared parts of a definition while it is being read.
// Exactly one of ClassName and Factory must be set.
type Spec struct {
	ClassName  string
	Factory    *ConstructCall
	ID         string
	Interfaces []string
	Calls      []*Call
	Tags       []string
	// Source names the file the spec was read from, for error messages.
	Source string
}

// Definition describes how to construct one component: a class name or a
// factory call, the post-construction calls, the interfaces it satisfies and
// its tags. A Definition is not modified once built; Extend returns an
// independent copy.
type Definition struct {
	className  string
	factory    *ConstructCall
	id         string
	interfaces []string
	calls      []*Call
	tags       []string
}

// New validates spec and builds a Definition from it.
//
// Interfaces default to the class name. A factory definition without
// interfaces fails with MissingInterfaceError.
func New(spec Spec) (*Definition, error) {
	if err := checkSource(spec); err != nil {
		return nil, err
	}

	d := &Definition{
		className: spec.ClassName,
		id:        spec.ID,
	}
	if spec.Factory != nil {
		d.factory = spec.Factory.clone()
	}
	for _, c := range spec.Calls {
		d.calls = append(d.calls, c.clone())
	}
	d.tags = appendUnique(d.tags, spec.Tags...)
	d.interfaces = appendUnique(d.interfaces, spec.Interfaces...)

	if len(d.interfaces) == 0 {
		if d.factory != nil {
			return nil, &MissingInterfaceError{Factory: d.factory.String(), ID: d.id, Source: spec.Source}
		}
		d.interfaces = []string{d.className}
	}
	return d, nil
}

// MustNew is like New but panics on an invalid spec. Generated registries use
// it; their specs were validated when the source files were read.
func MustNew(spec Spec) *Definition {
	d, err := New(spec)
	if err != nil {
		panic(err)
	}
	return d
}

// Extend returns a copy of d with the overrides of spec applied:
//   - the id is always replaced
//   - ClassName or Factory, when set, replace the construction source
//   - Interfaces, when set, replace the inherited interfaces
//   - a constructor call replaces the inherited constructor call
//   - a call with a non-empty id replaces the inherited call with that id
//   - other calls are appended, Tags are added
//
// d itself is never changed.
func (d *Definition) Extend(spec Spec) (*Definition, error) {
	if spec.ClassName != "" && spec.Factory != nil {
		return nil, &DefinitionError{
			ClassName: spec.ClassName, ID: spec.ID, Field: "class",
			Reason: "class and factory are mutually exclusive", Source: spec.Source,
		}
	}

	out := d.clone()
	out.id = spec.ID
	switch {
	case spec.ClassName != "":
		out.className = spec.ClassName
		out.factory = nil
	case spec.Factory != nil:
		if err := checkCall(&spec.Factory.Call, spec); err != nil {
			return nil, err
		}
		out.className = ""
		out.factory = spec.Factory.clone()
	}
	if len(spec.Interfaces) > 0 {
		out.interfaces = appendUnique(nil, spec.Interfaces...)
	}
	for _, c := range spec.Calls {
		if err := checkCall(c, spec); err != nil {
			return nil, err
		}
		out.override(c.clone())
	}
	out.tags = appendUnique(out.tags, spec.Tags...)
	return out, nil
}

// ClassName returns the class to construct, empty for factory definitions.
func (d *Definition) ClassName() string { return d.className }

// Factory returns a copy of the construct call, nil for class definitions.
func (d *Definition) Factory() *ConstructCall {
	if d.factory == nil {
		return nil
	}
	return d.factory.clone()
}

// ID returns the identifier; empty is the default definition.
func (d *Definition) ID() string { return d.id }

// Interfaces returns the interfaces in declaration order.
func (d *Definition) Interfaces() []string { return append([]string(nil), d.interfaces...) }

// Calls returns copies of all calls, including the constructor call, in
// order.
func (d *Definition) Calls() []*Call {
	out := make([]*Call, 0, len(d.calls))
	for _, c := range d.calls {
		out = append(out, c.clone())
	}
	return out
}

// Tags returns the tags in declaration order.
func (d *Definition) Tags() []string { return append([]string(nil), d.tags...) }

// ConstructorArguments returns the arguments of the first constructor call.
func (d *Definition) ConstructorArguments() []*Argument {
	for _, c := range d.calls {
		if c.method == Constructor {
			return c.Arguments()
		}
	}
	return nil
}

// HasInterface reports whether d is registered under iface.
func (d *Definition) HasInterface(iface string) bool {
	return contains(d.interfaces, iface)
}

// HasTag reports whether d carries tag.
func (d *Definition) HasTag(tag string) bool {
	return contains(d.tags, tag)
}

// String identifies the definition in messages.
func (d *Definition) String() string {
	s := d.className
	if d.factory != nil {
		s = d.factory.String()
	}
	if d.id != "" {
		s += " #" + d.id
	}
	return s
}

func (d *Definition) clone() *Definition {
	out := &Definition{
		className:  d.className,
		id:         d.id,
		interfaces: d.Interfaces(),
		tags:       d.Tags(),
	}
	if d.factory != nil {
		out.factory = d.factory.clone()
	}
	for _, c := range d.calls {
		out.calls = append(out.calls, c.clone())
	}
	return out
}

// override replaces the call c stands for, or appends c.
func (d *Definition) override(c *Call) {
	for i, existing := range d.calls {
		if (existing.method == Constructor && c.method == Constructor) ||
			(c.id != "" && existing.id == c.id) {
			d.calls[i] = c
			return
		}
	}
	d.calls = append(d.calls, c)
}

// checkCall rejects arguments without name or type.
func checkCall(c *Call, spec Spec) error {
	for _, a := range c.arguments {
		if a.name == "" || a.typ == "" {
			return &DefinitionError{
				ClassName: spec.ClassName, ID: spec.ID, Field: "arguments",
				Reason: "argument of " + c.method + " without name or type", Source: spec.Source,
			}
		}
	}
	return nil
}

func checkSource(spec Spec) error {
	if spec.Factory != nil {
		if err := checkCall(&spec.Factory.Call, spec); err != nil {
			return err
		}
	}
	for _, c := range spec.Calls {
		if err := checkCall(c, spec); err != nil {
			return err
		}
	}
	switch {
	case spec.ClassName != "" && spec.Factory != nil:
		return &DefinitionError{
			ClassName: spec.ClassName, ID: spec.ID, Field: "class",
			Reason: "class and factory are mutually exclusive", Source: spec.Source,
		}
	case spec.ClassName == "" && spec.Factory == nil:
		return &DefinitionError{
			ID: spec.ID, Field: "class",
			Reason: "a class or a factory is required", Source: spec.Source,
		}
	case spec.Factory != nil && (spec.Factory.iface == "" || spec.Factory.method == ""):
		return &DefinitionError{
			ID: spec.ID, Field: "factory",
			Reason: "interface and method are required", Source: spec.Source,
		}
	}
	return nil
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
