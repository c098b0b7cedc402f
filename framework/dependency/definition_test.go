package dependency_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-bootstrap/framework/dependency"
)

func baseDefinition(t *testing.T) *dependency.Definition {
	t.Helper()
	d, err := dependency.New(dependency.Spec{
		ClassName:  "Foo",
		ID:         "A",
		Interfaces: []string{"I"},
		Calls: []*dependency.Call{
			dependency.NewCall("setLogger", "",
				dependency.NewArgument("logger", "dependency",
					dependency.Property{Key: "interface", Value: "Log"})),
		},
		Tags: []string{"t1"},
	})
	require.NoError(t, err)
	return d
}

func TestNew_DefaultsInterfaceToClassName(t *testing.T) {
	d, err := dependency.New(dependency.Spec{ClassName: "Foo"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Foo"}, d.Interfaces())
	assert.Equal(t, "", d.ID())
	assert.Nil(t, d.Factory())
}

func TestNew_FactoryWithoutInterfaceFails(t *testing.T) {
	_, err := dependency.New(dependency.Spec{
		Factory: dependency.NewConstructCall("Builder", "build", ""),
		ID:      "x",
	})

	var missing *dependency.MissingInterfaceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Builder->build", missing.Factory)
	assert.True(t, errors.Is(err, dependency.ErrInvalidDefinition))
}

func TestNew_ClassAndFactoryAreExclusive(t *testing.T) {
	_, err := dependency.New(dependency.Spec{
		ClassName:  "Foo",
		Factory:    dependency.NewConstructCall("Builder", "build", ""),
		Interfaces: []string{"I"},
	})

	var defErr *dependency.DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "class", defErr.Field)
}

func TestNew_RequiresASource(t *testing.T) {
	_, err := dependency.New(dependency.Spec{ID: "x"})
	require.ErrorIs(t, err, dependency.ErrInvalidDefinition)
}

func TestNew_DeduplicatesInterfacesAndTags(t *testing.T) {
	d, err := dependency.New(dependency.Spec{
		ClassName:  "Foo",
		Interfaces: []string{"I", "J", "I"},
		Tags:       []string{"a", "a", "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"I", "J"}, d.Interfaces())
	assert.Equal(t, []string{"a", "b"}, d.Tags())
}

func TestExtend_InheritsAndOverrides(t *testing.T) {
	base := baseDefinition(t)

	ext, err := base.Extend(dependency.Spec{ID: "B", ClassName: "Bar"})
	require.NoError(t, err)

	assert.Equal(t, "Bar", ext.ClassName())
	assert.Equal(t, "B", ext.ID())
	assert.Equal(t, []string{"I"}, ext.Interfaces())
	assert.Equal(t, []string{"t1"}, ext.Tags())
	require.Len(t, ext.Calls(), 1)
	assert.Equal(t, "setLogger", ext.Calls()[0].Method())

	// the base is untouched
	assert.Equal(t, "Foo", base.ClassName())
	assert.Equal(t, "A", base.ID())
}

func TestExtend_AppendsCallsAndTags(t *testing.T) {
	base := baseDefinition(t)

	ext, err := base.Extend(dependency.Spec{
		ID:    "B",
		Calls: []*dependency.Call{dependency.NewCall("boot", "")},
		Tags:  []string{"t2", "t1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Foo", ext.ClassName())
	assert.Equal(t, []string{"t1", "t2"}, ext.Tags())
	require.Len(t, ext.Calls(), 2)
	assert.Equal(t, "boot", ext.Calls()[1].Method())

	assert.Len(t, base.Calls(), 1)
	assert.Equal(t, []string{"t1"}, base.Tags())
}

func TestExtend_CloneIsDeep(t *testing.T) {
	base := baseDefinition(t)
	ext, err := base.Extend(dependency.Spec{ID: "B"})
	require.NoError(t, err)

	assert.NotSame(t, base.Calls()[0], ext.Calls()[0])
	assert.Equal(t, base.Calls()[0].Arguments()[0].Name(), ext.Calls()[0].Arguments()[0].Name())
}

func TestExtend_ConstructorReplacesInherited(t *testing.T) {
	base, err := dependency.New(dependency.Spec{
		ClassName: "Foo",
		ID:        "base",
		Calls: []*dependency.Call{
			dependency.NewCall(dependency.Constructor, "",
				dependency.NewArgument("size", "scalar", dependency.Property{Key: "value", Value: "1"})),
			dependency.NewCall("init", ""),
		},
	})
	require.NoError(t, err)

	ext, err := base.Extend(dependency.Spec{
		ID: "big",
		Calls: []*dependency.Call{
			dependency.NewCall(dependency.Constructor, "",
				dependency.NewArgument("size", "scalar", dependency.Property{Key: "value", Value: "99"})),
		},
	})
	require.NoError(t, err)

	require.Len(t, ext.Calls(), 2)
	assert.Equal(t, dependency.Constructor, ext.Calls()[0].Method())
	assert.Equal(t, "init", ext.Calls()[1].Method())
	args := ext.ConstructorArguments()
	require.Len(t, args, 1)
	value, _ := args[0].Property("value")
	assert.Equal(t, "99", value)

	value, _ = base.ConstructorArguments()[0].Property("value")
	assert.Equal(t, "1", value)
}

func TestExtend_CallWithIDReplacesInherited(t *testing.T) {
	base, err := dependency.New(dependency.Spec{
		ClassName: "Foo",
		Calls: []*dependency.Call{
			dependency.NewCall("addRoute", "home",
				dependency.NewArgument("path", "scalar", dependency.Property{Key: "value", Value: "/"})),
			dependency.NewCall("addRoute", "about",
				dependency.NewArgument("path", "scalar", dependency.Property{Key: "value", Value: "/about"})),
		},
	})
	require.NoError(t, err)

	ext, err := base.Extend(dependency.Spec{
		ID: "B",
		Calls: []*dependency.Call{
			dependency.NewCall("addRoute", "home",
				dependency.NewArgument("path", "scalar", dependency.Property{Key: "value", Value: "/start"})),
			dependency.NewCall("addRoute", ""),
		},
	})
	require.NoError(t, err)

	calls := ext.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "home", calls[0].ID())
	value, _ := calls[0].Arguments()[0].Property("value")
	assert.Equal(t, "/start", value)
	assert.Equal(t, "about", calls[1].ID())
	assert.Equal(t, "", calls[2].ID())
}

func TestDefinition_AccessorsReturnCopies(t *testing.T) {
	d, err := dependency.New(dependency.Spec{
		Factory:    dependency.NewConstructCall("Builder", "build", "main", dependency.NewArgument("name", "scalar")),
		Interfaces: []string{"I"},
		Calls:      []*dependency.Call{dependency.NewCall("boot", "", dependency.NewArgument("fast", "scalar"))},
	})
	require.NoError(t, err)
	reg := dependency.NewRegistry()
	reg.Add(d)

	args := d.Calls()[0].Arguments()
	args[0] = dependency.NewArgument("other", "scalar")
	assert.NotSame(t, d.Calls()[0], d.Calls()[0])
	assert.NotSame(t, d.Factory(), d.Factory())

	stored, ok := reg.Default("I")
	require.True(t, ok)
	assert.Equal(t, "fast", stored.Calls()[0].Arguments()[0].Name())
	assert.Len(t, stored.Factory().Arguments(), 1)
}

func TestNew_RejectsArgumentWithoutNameOrType(t *testing.T) {
	tests := []struct {
		name string
		spec dependency.Spec
	}{
		{"call argument without name", dependency.Spec{
			ClassName: "Foo",
			Calls:     []*dependency.Call{dependency.NewCall("boot", "", dependency.NewArgument("", "scalar"))},
		}},
		{"constructor argument without type", dependency.Spec{
			ClassName: "Foo",
			Calls:     []*dependency.Call{dependency.NewCall(dependency.Constructor, "", dependency.NewArgument("size", ""))},
		}},
		{"factory argument without name", dependency.Spec{
			Factory:    dependency.NewConstructCall("Builder", "build", "", dependency.NewArgument("", "scalar")),
			Interfaces: []string{"I"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dependency.New(tt.spec)

			var defErr *dependency.DefinitionError
			require.ErrorAs(t, err, &defErr)
			assert.Equal(t, "arguments", defErr.Field)
			assert.ErrorIs(t, err, dependency.ErrInvalidDefinition)
		})
	}
}

func TestExtend_FactoryReplacesClass(t *testing.T) {
	base := baseDefinition(t)

	ext, err := base.Extend(dependency.Spec{
		ID:      "B",
		Factory: dependency.NewConstructCall("Builder", "build", "main"),
	})
	require.NoError(t, err)

	assert.Equal(t, "", ext.ClassName())
	require.NotNil(t, ext.Factory())
	assert.Equal(t, "Builder#main->build", ext.Factory().String())
}

func TestExtend_InterfacesReplaceInherited(t *testing.T) {
	base := baseDefinition(t)

	ext, err := base.Extend(dependency.Spec{ID: "B", Interfaces: []string{"J"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"J"}, ext.Interfaces())
	assert.Equal(t, []string{"I"}, base.Interfaces())
}

func TestArgument_PropertiesKeepOrder(t *testing.T) {
	a := dependency.NewArgument("x", "parameter",
		dependency.Property{Key: "key", Value: "a"},
		dependency.Property{Key: "default", Value: "b"},
		dependency.Property{Key: "key", Value: "c"},
	)

	assert.Equal(t, []dependency.Property{{Key: "key", Value: "c"}, {Key: "default", Value: "b"}}, a.Properties())

	v, ok := a.Property("default")
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = a.Property("missing")
	assert.False(t, ok)
}

func TestDefinition_ConstructorArguments(t *testing.T) {
	d, err := dependency.New(dependency.Spec{
		ClassName: "Foo",
		Calls: []*dependency.Call{
			dependency.NewCall("setUp", ""),
			dependency.NewCall(dependency.Constructor, "",
				dependency.NewArgument("a", "scalar"), dependency.NewArgument("b", "scalar")),
		},
	})
	require.NoError(t, err)

	args := d.ConstructorArguments()
	require.Len(t, args, 2)
	assert.Equal(t, "a", args[0].Name())
	assert.Equal(t, "b", args[1].Name())
}
