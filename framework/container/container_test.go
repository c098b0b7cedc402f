package container_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/km-arc/go-bootstrap/framework/config"
	"github.com/km-arc/go-bootstrap/framework/container"
	"github.com/km-arc/go-bootstrap/framework/dependency"
	"github.com/km-arc/go-bootstrap/framework/dependency/argument"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type Transport struct {
	Host    string
	Port    int
	Timeout int
}

func (t *Transport) SetTimeout(seconds int) { t.Timeout = seconds }

func (t *Transport) Address() string { return fmt.Sprintf("%s:%d", t.Host, t.Port) }

type Mailer struct {
	Transport *Transport
	From      string
	Logging   bool
}

type ConnectionFactory struct{ DSN string }

func (f *ConnectionFactory) Connect(name string) (string, error) {
	if name == "" {
		return "", errors.New("no name")
	}
	return f.DSN + "/" + name, nil
}

func prop(k, v string) dependency.Property { return dependency.Property{Key: k, Value: v} }

func newContainer(t *testing.T, specs ...dependency.Spec) *container.Container {
	t.Helper()
	reg := dependency.NewRegistry()
	for _, spec := range specs {
		d, err := dependency.New(spec)
		if err != nil {
			t.Fatal(err)
		}
		reg.Add(d)
	}
	params := config.NewParameters(map[string]any{
		"mail": map[string]any{"host": "smtp.example.com", "from": "noreply@example.com"},
	})
	c := container.New(reg, argument.Defaults(params))

	c.Class("Transport").Constructs(func(host string, port int) *Transport {
		return &Transport{Host: host, Port: port}
	})
	c.Class("Mailer").
		Constructs(func(t *Transport, from string) *Mailer { return &Mailer{Transport: t, From: from} }).
		Method("enableLogging", func(m *Mailer) { m.Logging = true })
	c.Class("ConnectionFactory").Constructs(func(dsn string) *ConnectionFactory { return &ConnectionFactory{DSN: dsn} })
	return c
}

var transportSpec = dependency.Spec{
	ClassName:  "Transport",
	ID:         "smtp",
	Interfaces: []string{"Transport"},
	Calls: []*dependency.Call{
		dependency.NewCall(dependency.Constructor, "",
			dependency.NewArgument("host", "parameter", prop("key", "mail.host")),
			dependency.NewArgument("port", "scalar", prop("value", "25")),
		),
		dependency.NewCall("setTimeout", "", dependency.NewArgument("seconds", "scalar", prop("value", "30"))),
	},
	Tags: []string{"network"},
}

var mailerSpec = dependency.Spec{
	ClassName: "Mailer",
	Calls: []*dependency.Call{
		dependency.NewCall(dependency.Constructor, "",
			dependency.NewArgument("transport", "dependency", prop("interface", "Transport"), prop("id", "%mail.transport|smtp%")),
			dependency.NewArgument("from", "parameter", prop("key", "mail.from")),
		),
		dependency.NewCall("enableLogging", ""),
	},
}

// ── Get ──────────────────────────────────────────────────────────────────────

func TestGet_BuildsDefinition(t *testing.T) {
	c := newContainer(t, transportSpec, mailerSpec)

	inst, err := c.Get("Mailer", "")
	if err != nil {
		t.Fatal(err)
	}
	m := inst.(*Mailer)

	if m.From != "noreply@example.com" {
		t.Errorf("From: got %q, want %q", m.From, "noreply@example.com")
	}
	if !m.Logging {
		t.Error("bound method enableLogging should have run")
	}
	if got := m.Transport.Address(); got != "smtp.example.com:25" {
		t.Errorf("Address: got %q, want %q", got, "smtp.example.com:25")
	}
	if m.Transport.Timeout != 30 {
		t.Errorf("Timeout: got %d, want 30 (exported method fallback)", m.Transport.Timeout)
	}
}

func TestGet_SingletonPerInterfaceAndID(t *testing.T) {
	c := newContainer(t, transportSpec, mailerSpec)

	a, _ := c.Get("Transport", "smtp")
	b, _ := c.Get("Transport", "")
	m, _ := c.Get("Mailer", "")

	if a != b {
		t.Error("default lookup should share the instance of its definition")
	}
	if m.(*Mailer).Transport != a {
		t.Error("dependency argument should receive the shared instance")
	}
}

func TestGet_NotFound(t *testing.T) {
	c := newContainer(t)

	_, err := c.Get("Missing", "x")

	var target *container.NotFoundError
	if !errors.As(err, &target) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if target.Interface != "Missing" || target.ID != "x" {
		t.Errorf("got %+v", target)
	}
	if !errors.Is(err, container.ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
}

func TestGet_UnknownClass(t *testing.T) {
	c := newContainer(t, dependency.Spec{ClassName: "Unbound"})

	_, err := c.Get("Unbound", "")
	if !errors.Is(err, container.ErrUnknownClass) {
		t.Errorf("expected ErrUnknownClass, got %v", err)
	}
}

func TestGet_CircularDependency(t *testing.T) {
	c := newContainer(t,
		dependency.Spec{ClassName: "Transport", Calls: []*dependency.Call{
			dependency.NewCall(dependency.Constructor, "", dependency.NewArgument("host", "dependency", prop("interface", "Mailer"))),
		}},
		dependency.Spec{ClassName: "Mailer", Calls: []*dependency.Call{
			dependency.NewCall(dependency.Constructor, "", dependency.NewArgument("transport", "dependency", prop("interface", "Transport"))),
		}},
	)

	_, err := c.Get("Mailer", "")
	if !errors.Is(err, container.ErrCircularDependency) {
		t.Fatalf("expected ErrCircularDependency, got %v", err)
	}
	if !strings.Contains(err.Error(), "Mailer -> Transport -> Mailer") {
		t.Errorf("error should show the chain, got %q", err.Error())
	}
}

func TestGet_FactoryDefinition(t *testing.T) {
	c := newContainer(t,
		dependency.Spec{ClassName: "ConnectionFactory", ID: "main", Calls: []*dependency.Call{
			dependency.NewCall(dependency.Constructor, "", dependency.NewArgument("dsn", "scalar", prop("value", "db://host"))),
		}},
		dependency.Spec{
			Factory:    dependency.NewConstructCall("ConnectionFactory", "connect", "main", dependency.NewArgument("name", "scalar", prop("value", "app"))),
			Interfaces: []string{"Connection"},
		},
	)

	conn, err := c.Get("Connection", "")
	if err != nil {
		t.Fatal(err)
	}
	if conn != "db://host/app" {
		t.Errorf("got %q, want %q", conn, "db://host/app")
	}
}

func TestGet_FactoryErrorIsReturned(t *testing.T) {
	c := newContainer(t,
		dependency.Spec{ClassName: "ConnectionFactory", Calls: []*dependency.Call{
			dependency.NewCall(dependency.Constructor, "", dependency.NewArgument("dsn", "scalar", prop("value", "db://host"))),
		}},
		dependency.Spec{
			Factory:    dependency.NewConstructCall("ConnectionFactory", "connect", ""),
			Interfaces: []string{"Connection"},
		},
	)

	_, err := c.Get("Connection", "")
	if err == nil || !strings.Contains(err.Error(), "no name") {
		t.Errorf("expected the factory error, got %v", err)
	}
}

func TestGet_ConvertsScalarStrings(t *testing.T) {
	c := newContainer(t, dependency.Spec{ClassName: "Transport", Calls: []*dependency.Call{
		dependency.NewCall(dependency.Constructor, "",
			dependency.NewArgument("host", "scalar", prop("value", "h")),
			dependency.NewArgument("port", "scalar", prop("value", "not a number")),
		),
	}})

	_, err := c.Get("Transport", "")
	if !errors.Is(err, container.ErrArgument) {
		t.Errorf("expected ErrArgument, got %v", err)
	}
}

// ── GetAll / GetByTag ────────────────────────────────────────────────────────

func TestGetAllAndGetByTag(t *testing.T) {
	backup := transportSpec
	backup.ID = "backup"
	backup.Tags = nil
	c := newContainer(t, transportSpec, backup)

	all, err := c.GetAll("Transport")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("GetAll: got %d, want 2", len(all))
	}

	tagged, err := c.GetByTag("Transport", "network")
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 1 || tagged[0] != all[0] {
		t.Errorf("GetByTag: got %v, want the smtp transport only", tagged)
	}
}

// ── Bindings ─────────────────────────────────────────────────────────────────

func TestBindings_TakePrecedenceAndFeedArguments(t *testing.T) {
	c := newContainer(t, mailerSpec)
	override := &Transport{Host: "bound"}
	c.InstanceNamed("Transport", "smtp", override)

	m, err := container.Lookup[*Mailer](c, "Mailer", "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Transport != override {
		t.Error("dependency argument should resolve the registered instance")
	}
}

func TestBindings_SingletonAndTransient(t *testing.T) {
	c := container.New(nil, nil)
	calls := 0
	c.Singleton("once", func(c *container.Container) any { calls++; return calls })
	c.Bind("every", func(c *container.Container) any { calls++; return calls })

	c.Make("once")
	c.Make("once")
	c.Make("every")
	c.Make("every")

	if calls != 3 {
		t.Errorf("factory calls: got %d, want 3", calls)
	}
	if !c.Resolved("once") || c.Resolved("every") {
		t.Error("only the singleton should be cached")
	}
}

func TestAlias(t *testing.T) {
	c := newContainer(t, transportSpec, mailerSpec)
	c.Alias("Mailer", "mailer")

	a := c.Make("mailer")
	b := c.Make("Mailer")
	if a != b {
		t.Error("alias should resolve the same instance")
	}
	if !c.Bound("mailer") {
		t.Error("alias of a definition should be bound")
	}
}

func TestMake_PanicsWhenMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Make should panic for a missing abstract")
		}
	}()
	container.New(nil, nil).Make("missing")
}

func TestResolve_Generic(t *testing.T) {
	c := container.New(nil, nil)
	c.Instance("name", "bootstrap")

	if got := container.Resolve[string](c, "name"); got != "bootstrap" {
		t.Errorf("got %q, want %q", got, "bootstrap")
	}
	if got := container.Resolve[*container.Container](c, "container"); got != c {
		t.Error("container should be bound to itself")
	}
}

// ── Invoke ───────────────────────────────────────────────────────────────────

func TestInvoke(t *testing.T) {
	c := newContainer(t, transportSpec)
	c.Function("join", func(parts ...string) string { return strings.Join(parts, "-") })
	c.Class("Transport").Static("defaultPort", func() int { return 587 })

	tests := []struct {
		name     string
		callable dependency.Callable
		args     []any
		want     any
	}{
		{"function", dependency.Callable{Kind: dependency.Function, Method: "join"}, []any{"a", "b"}, "a-b"},
		{"static", dependency.Callable{Kind: dependency.Static, Class: "Transport", Method: "defaultPort"}, nil, 587},
		{"instance", dependency.Callable{Kind: dependency.Instance, Class: "Transport", ID: "smtp", Method: "address"}, nil, "smtp.example.com:25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Invoke(tt.callable, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := c.Invoke(dependency.Callable{Kind: dependency.Function, Method: "missing"}); !errors.Is(err, container.ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestCallArgument_InvokesThroughContainer(t *testing.T) {
	c := newContainer(t, transportSpec, dependency.Spec{ClassName: "Mailer", Calls: []*dependency.Call{
		dependency.NewCall(dependency.Constructor, "",
			dependency.NewArgument("transport", "dependency", prop("interface", "Transport")),
			dependency.NewArgument("from", "call", prop("call", "Transport#smtp->address")),
		),
	}})

	m, err := container.Lookup[*Mailer](c, "Mailer", "")
	if err != nil {
		t.Fatal(err)
	}
	if m.From != "smtp.example.com:25" {
		t.Errorf("From: got %q, want %q", m.From, "smtp.example.com:25")
	}
}

// ── Custom resolvers ─────────────────────────────────────────────────────────

type upperResolver struct{}

func (upperResolver) Resolve(arg *dependency.Argument, _ argument.Injector) (any, error) {
	v, _ := arg.Property("value")
	return strings.ToUpper(v), nil
}

func TestRegisterResolvers(t *testing.T) {
	c := newContainer(t,
		dependency.Spec{ClassName: "UpperResolver", ID: "upper", Interfaces: []string{container.ResolverInterface}},
		dependency.Spec{ClassName: "Greeting", Calls: []*dependency.Call{
			dependency.NewCall(dependency.Constructor, "", dependency.NewArgument("text", "upper", prop("value", "shout"))),
		}},
	)
	c.Class("UpperResolver").Constructs(func() upperResolver { return upperResolver{} })
	c.Class("Greeting").Constructs(func(text string) string { return text })

	if _, err := c.Get("Greeting", ""); err == nil {
		t.Fatal("argument type upper should be unknown before RegisterResolvers")
	}
	if err := c.RegisterResolvers(); err != nil {
		t.Fatal(err)
	}
	got, err := container.Lookup[string](c, "Greeting", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "SHOUT" {
		t.Errorf("got %q, want %q", got, "SHOUT")
	}
}

func TestAfterResolving(t *testing.T) {
	c := newContainer(t, transportSpec)
	var seen []string
	c.AfterResolving(func(iface, id string, _ any) { seen = append(seen, iface+"#"+id) })

	c.Get("Transport", "")
	c.Get("Transport", "smtp")

	if len(seen) != 1 || seen[0] != "Transport#smtp" {
		t.Errorf("got %v, want one callback for Transport#smtp", seen)
	}
}
