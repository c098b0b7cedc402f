package dependency

// Description is the plain form of a Definition listed by the CLI and the
// admin routes.
type Description struct {
	ID         string                `json:"id,omitempty" yaml:"id,omitempty"`
	Class      string                `json:"class,omitempty" yaml:"class,omitempty"`
	Factory    string                `json:"factory,omitempty" yaml:"factory,omitempty"`
	Interfaces []string              `json:"interfaces" yaml:"interfaces,flow"`
	Tags       []string              `json:"tags,omitempty" yaml:"tags,flow,omitempty"`
	Calls      []CallDescription     `json:"calls,omitempty" yaml:"calls,omitempty"`
	Arguments  []ArgumentDescription `json:"factory_arguments,omitempty" yaml:"factory_arguments,omitempty"`
}

type CallDescription struct {
	Method    string                `json:"method" yaml:"method"`
	ID        string                `json:"id,omitempty" yaml:"id,omitempty"`
	Arguments []ArgumentDescription `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

type ArgumentDescription struct {
	Name       string            `json:"name" yaml:"name"`
	Type       string            `json:"type" yaml:"type"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,flow,omitempty"`
}

// Describe returns the plain form of d.
func Describe(d *Definition) Description {
	out := Description{
		ID:         d.id,
		Class:      d.className,
		Interfaces: d.Interfaces(),
		Tags:       d.Tags(),
	}
	if d.factory != nil {
		out.Factory = d.factory.String()
		out.Arguments = describeArguments(d.factory.arguments)
	}
	for _, c := range d.calls {
		out.Calls = append(out.Calls, CallDescription{
			Method:    c.method,
			ID:        c.id,
			Arguments: describeArguments(c.arguments),
		})
	}
	return out
}

func describeArguments(args []*Argument) []ArgumentDescription {
	var out []ArgumentDescription
	for _, a := range args {
		ad := ArgumentDescription{Name: a.name, Type: a.typ}
		if len(a.properties) > 0 {
			ad.Properties = make(map[string]string, len(a.properties))
			for _, p := range a.properties {
				ad.Properties[p.Key] = p.Value
			}
		}
		out = append(out, ad)
	}
	return out
}
