package dependency_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-bootstrap/framework/dependency"
)

func mustDefinition(t *testing.T, class, id string, ifaces ...string) *dependency.Definition {
	t.Helper()
	d, err := dependency.New(dependency.Spec{ClassName: class, ID: id, Interfaces: ifaces})
	require.NoError(t, err)
	return d
}

func ids(defs []*dependency.Definition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.ID())
	}
	return out
}

func TestRegistry_AddUnderEveryInterface(t *testing.T) {
	reg := dependency.NewRegistry()
	d := mustDefinition(t, "Foo", "x", "I", "J")
	reg.Add(d)

	for _, iface := range []string{"I", "J"} {
		got, ok := reg.Definition(iface, "x")
		require.True(t, ok, iface)
		assert.Same(t, d, got)
	}
	assert.Equal(t, []string{"I", "J"}, reg.Interfaces())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_ReplaceKeepsPosition(t *testing.T) {
	reg := dependency.NewRegistry()
	reg.Add(mustDefinition(t, "Foo", "a", "I"))
	reg.Add(mustDefinition(t, "Foo", "b", "I"))
	reg.Add(mustDefinition(t, "Bar", "a", "I"))

	defs := reg.Definitions("I")
	assert.Equal(t, []string{"a", "b"}, ids(defs))
	assert.Equal(t, "Bar", defs[0].ClassName())
}

func TestRegistry_Default(t *testing.T) {
	reg := dependency.NewRegistry()
	reg.Add(mustDefinition(t, "Foo", "a", "I"))
	reg.Add(mustDefinition(t, "Foo", "b", "I"))

	d, ok := reg.Default("I")
	require.True(t, ok)
	assert.Equal(t, "b", d.ID(), "last definition without a default id")

	reg.Add(mustDefinition(t, "Foo", "", "I"))
	d, ok = reg.Default("I")
	require.True(t, ok)
	assert.Equal(t, "", d.ID())

	_, ok = reg.Default("Unknown")
	assert.False(t, ok)
}

func TestRegistry_InsertRejectsForeignInterface(t *testing.T) {
	reg := dependency.NewRegistry()
	d := mustDefinition(t, "Foo", "", "I")

	require.NoError(t, reg.Insert("I", d))
	require.ErrorIs(t, reg.Insert("J", d), dependency.ErrInvalidDefinition)
	assert.False(t, reg.Has("J"))
}

func TestRegistry_Tagged(t *testing.T) {
	reg := dependency.NewRegistry()
	tagged, err := dependency.New(dependency.Spec{ClassName: "Foo", ID: "a", Interfaces: []string{"I"}, Tags: []string{"cli"}})
	require.NoError(t, err)
	reg.Add(tagged)
	reg.Add(mustDefinition(t, "Foo", "b", "I"))

	assert.Equal(t, []string{"a"}, ids(reg.Tagged("I", "cli")))
	assert.Empty(t, reg.Tagged("I", "web"))
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	reg := dependency.NewRegistry()
	for _, id := range []string{"a", "b", "c"} {
		reg.Add(mustDefinition(t, "Foo", id, "I", "J"))
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = reg.Definitions("I")
				_, _ = reg.Definition("J", "b")
				_ = reg.Len()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, reg.Len())
}
