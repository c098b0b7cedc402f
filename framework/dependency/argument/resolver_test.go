package argument_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-bootstrap/framework/config"
	"github.com/km-arc/go-bootstrap/framework/dependency"
	"github.com/km-arc/go-bootstrap/framework/dependency/argument"
)

type recordingInjector struct {
	calls []dependency.Callable
}

func (r *recordingInjector) Invoke(c dependency.Callable, _ ...any) (any, error) {
	r.calls = append(r.calls, c)
	return "result of " + c.String(), nil
}

func params() *config.Parameters {
	return config.NewParameters(map[string]any{
		"mail": map[string]any{"driver": "sendmail", "port": 465},
	})
}

// ── Interpolation ─────────────────────────────────────────────────────────────

func TestInterpolate(t *testing.T) {
	p := params()

	tests := []struct {
		in   string
		want any
	}{
		{"literal", "literal"},
		{"%mail.driver%", "sendmail"},
		{"%mail.port%", 465},
		{"%mode|prod%", "prod"},
		{"%mode%", nil},
		{"%", "%"},
		{"%%", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, argument.Interpolate(tt.in, p))
		})
	}
}

func TestInterpolateString(t *testing.T) {
	p := params()
	assert.Equal(t, "465", argument.InterpolateString("%mail.port%", p))
	assert.Equal(t, "", argument.InterpolateString("%missing%", p))
	assert.Equal(t, "x", argument.InterpolateString("%missing|x%", nil))
}

// ── Set ───────────────────────────────────────────────────────────────────────

func TestSet_UnknownType(t *testing.T) {
	set := argument.Defaults(params())
	_, err := set.Resolve(dependency.NewArgument("x", "service"), nil)

	var target *dependency.UnknownArgumentTypeError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "service", target.Type)
	assert.ErrorIs(t, err, dependency.ErrInvalidDefinition)
}

func TestSet_CustomResolver(t *testing.T) {
	set := argument.Defaults(params())
	set.Register("env", argument.ResolverFunc(func(arg *dependency.Argument, _ argument.Injector) (any, error) {
		return "env:" + arg.Name(), nil
	}))

	v, err := set.Resolve(dependency.NewArgument("home", "env"), nil)
	require.NoError(t, err)
	assert.Equal(t, "env:home", v)
	assert.Equal(t, []string{"array", "call", "dependency", "env", "parameter", "scalar"}, set.Types())
}

// ── Dependency ────────────────────────────────────────────────────────────────

func TestDependencyResolver(t *testing.T) {
	set := argument.Defaults(params())

	tests := []struct {
		name string
		id   string
		want argument.Reference
	}{
		{"literal id", "smtp", argument.Reference{Interface: "app.Mailer", ID: "smtp"}},
		{"no id", "", argument.Reference{Interface: "app.Mailer"}},
		{"parameter id", "%mail.driver%", argument.Reference{Interface: "app.Mailer", ID: "sendmail"}},
		{"parameter default", "%mode|prod%", argument.Reference{Interface: "app.Mailer", ID: "prod"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props := []dependency.Property{{Key: "interface", Value: "app.Mailer"}}
			if tt.id != "" {
				props = append(props, dependency.Property{Key: "id", Value: tt.id})
			}
			v, err := set.Resolve(dependency.NewArgument("mailer", "dependency", props...), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestDependencyResolver_MissingInterface(t *testing.T) {
	_, err := argument.Defaults(nil).Resolve(dependency.NewArgument("mailer", "dependency"), nil)

	var target *dependency.MissingKeyError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "interface", target.Key)
}

// ── Parameter ─────────────────────────────────────────────────────────────────

func TestParameterResolver(t *testing.T) {
	set := argument.Defaults(params())

	v, err := set.Resolve(dependency.NewArgument("port", "parameter",
		dependency.Property{Key: "key", Value: "mail.port"}), nil)
	require.NoError(t, err)
	assert.Equal(t, 465, v)

	v, err = set.Resolve(dependency.NewArgument("user", "parameter",
		dependency.Property{Key: "key", Value: "mail.user"},
		dependency.Property{Key: "default", Value: "root"}), nil)
	require.NoError(t, err)
	assert.Equal(t, "root", v)

	v, err = set.Resolve(dependency.NewArgument("user", "parameter",
		dependency.Property{Key: "key", Value: "mail.user"}), nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = set.Resolve(dependency.NewArgument("user", "parameter"), nil)
	assert.ErrorIs(t, err, dependency.ErrInvalidDefinition)
}

// ── Call ──────────────────────────────────────────────────────────────────────

func TestCallResolver_Targets(t *testing.T) {
	tests := []struct {
		name  string
		props []dependency.Property
		want  dependency.Callable
	}{
		{
			"call string",
			[]dependency.Property{{Key: "call", Value: "app.Clock#utc->now"}},
			dependency.Callable{Kind: dependency.Instance, Class: "app.Clock", ID: "utc", Method: "now"},
		},
		{
			"function",
			[]dependency.Property{{Key: "function", Value: "hostname"}},
			dependency.Callable{Kind: dependency.Function, Method: "hostname"},
		},
		{
			"static",
			[]dependency.Property{{Key: "class", Value: "app.Clock"}, {Key: "method", Value: "now"}},
			dependency.Callable{Kind: dependency.Static, Class: "app.Clock", Method: "now"},
		},
		{
			"instance with parameter id",
			[]dependency.Property{{Key: "interface", Value: "app.Mailer"}, {Key: "id", Value: "%mail.driver%"}, {Key: "method", Value: "transport"}},
			dependency.Callable{Kind: dependency.Instance, Class: "app.Mailer", ID: "sendmail", Method: "transport"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inj := &recordingInjector{}
			v, err := argument.Defaults(params()).Resolve(dependency.NewArgument("x", "call", tt.props...), inj)
			require.NoError(t, err)
			require.Len(t, inj.calls, 1)
			assert.Equal(t, tt.want, inj.calls[0])
			assert.Equal(t, "result of "+tt.want.String(), v)
		})
	}
}

func TestCallResolver_Errors(t *testing.T) {
	set := argument.Defaults(nil)
	inj := &recordingInjector{}

	_, err := set.Resolve(dependency.NewArgument("x", "call"), inj)
	assert.ErrorIs(t, err, dependency.ErrInvalidDefinition)

	_, err = set.Resolve(dependency.NewArgument("x", "call", dependency.Property{Key: "method", Value: "now"}), inj)
	assert.ErrorIs(t, err, dependency.ErrInvalidDefinition)

	_, err = set.Resolve(dependency.NewArgument("x", "call", dependency.Property{Key: "call", Value: "a->"}), inj)
	assert.ErrorIs(t, err, dependency.ErrInvalidCallable)

	_, err = set.Resolve(dependency.NewArgument("x", "call", dependency.Property{Key: "function", Value: "f"}), nil)
	assert.Error(t, err)
	assert.Empty(t, inj.calls)
}

// ── Scalar / Array ────────────────────────────────────────────────────────────

func TestScalarAndArrayResolvers(t *testing.T) {
	set := argument.Defaults(params())

	v, err := set.Resolve(dependency.NewArgument("driver", "scalar", dependency.Property{Key: "value", Value: "%mail.driver%"}), nil)
	require.NoError(t, err)
	assert.Equal(t, "sendmail", v)

	_, err = set.Resolve(dependency.NewArgument("driver", "scalar"), nil)
	assert.ErrorIs(t, err, dependency.ErrInvalidDefinition)

	v, err = set.Resolve(dependency.NewArgument("opts", "array",
		dependency.Property{Key: "port", Value: "%mail.port%"},
		dependency.Property{Key: "tls", Value: "yes"}), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"port": 465, "tls": "yes"}, v)
}
