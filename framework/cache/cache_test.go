package cache_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-bootstrap/framework/cache"
	"github.com/km-arc/go-bootstrap/framework/config"
	"github.com/km-arc/go-bootstrap/framework/dependency"
	depio "github.com/km-arc/go-bootstrap/framework/dependency/io"
	"github.com/km-arc/go-bootstrap/framework/filesystem"
)

func dependencyControl(t *testing.T, enabled bool) (*cache.DependencyControl, *depio.CachedIO, *config.Parameters) {
	t.Helper()
	src := depio.Static(func() *dependency.Registry {
		reg := dependency.NewRegistry()
		reg.Add(dependency.MustNew(dependency.Spec{ClassName: "mail.Mailer"}))
		return reg
	})
	cached := depio.NewCachedIO(src, filesystem.NewFile(filepath.Join(t.TempDir(), "dev", "dependencies.yaml")), nil)
	params := config.NewParameters(nil)
	if enabled {
		params.Set(cache.ParamDependencies, true)
	}
	return cache.NewDependencyControl(cached, params), cached, params
}

func TestDependencyControl_Toggle(t *testing.T) {
	control, _, params := dependencyControl(t, false)

	assert.Equal(t, "dependencies", control.Name())
	assert.True(t, control.CanToggle())
	assert.False(t, control.IsEnabled())

	require.NoError(t, control.Enable())
	assert.True(t, control.IsEnabled())
	assert.True(t, params.GetBool(cache.ParamDependencies, false))

	require.NoError(t, control.Disable())
	assert.False(t, control.IsEnabled())
	assert.Nil(t, params.Get(cache.ParamDependencies, nil))
}

func TestDependencyControl_WarmOnlyWhenEnabled(t *testing.T) {
	control, cached, _ := dependencyControl(t, false)

	require.NoError(t, control.Warm())
	assert.False(t, cached.File().Exists(), "disabled control must not write")

	require.NoError(t, control.Enable())
	require.NoError(t, control.Warm())
	reg, ok := cached.Cached()
	require.True(t, ok)
	assert.True(t, reg.Has("mail.Mailer"))

	require.NoError(t, control.Clear())
	assert.False(t, cached.File().Exists())
}

func TestParameterControl(t *testing.T) {
	disabled := cache.NewParameterControl(nil)
	assert.False(t, disabled.IsEnabled())
	assert.NoError(t, disabled.Warm())
	assert.NoError(t, disabled.Clear())

	root := t.TempDir()
	browser := filesystem.NewDirectoryBrowser(root)
	file := filesystem.NewFile(filepath.Join(root, "cache", "parameters.yaml"))
	cached := config.NewCachedParameterIO(config.NewParserParameterIO(browser, "parameters.yaml", "config"), file, nil)
	control := cache.NewParameterControl(cached)

	assert.Equal(t, "parameters", control.Name())
	assert.False(t, control.CanToggle())
	assert.True(t, control.IsEnabled())

	require.NoError(t, control.Warm())
	assert.True(t, file.Exists())
	require.NoError(t, control.Clear())
	assert.False(t, file.Exists())
}

// ── Pool ─────────────────────────────────────────────────────────────────────

type stubControl struct {
	name    string
	enabled bool
	err     error
	warmed  int
	cleared int
}

func (c *stubControl) Name() string    { return c.name }
func (c *stubControl) CanToggle() bool { return false }
func (c *stubControl) IsEnabled() bool { return c.enabled }
func (c *stubControl) Enable() error   { return nil }
func (c *stubControl) Disable() error  { return nil }
func (c *stubControl) Warm() error     { c.warmed++; return c.err }
func (c *stubControl) Clear() error    { c.cleared++; return c.err }

func TestPool_RegistrationOrderAndReplace(t *testing.T) {
	pool := cache.NewPool(nil)
	a := &stubControl{name: "a"}
	b := &stubControl{name: "b", enabled: true}
	pool.Add(a)
	pool.Add(b)
	replacement := &stubControl{name: "a", enabled: true}
	pool.Add(replacement)

	got, ok := pool.Control("a")
	require.True(t, ok)
	assert.Same(t, replacement, got)
	assert.Equal(t, []cache.Status{
		{Name: "a", Enabled: true},
		{Name: "b", Enabled: true},
	}, pool.Status())
}

func TestPool_WarmAndClear(t *testing.T) {
	pool := cache.NewPool(nil)
	a, b := &stubControl{name: "a"}, &stubControl{name: "b"}
	pool.Add(a)
	pool.Add(b)

	require.NoError(t, pool.Warm())
	require.NoError(t, pool.Clear("b"))

	assert.Equal(t, 1, a.warmed)
	assert.Equal(t, 1, b.warmed)
	assert.Equal(t, 0, a.cleared)
	assert.Equal(t, 1, b.cleared)

	err := pool.Warm("missing")
	assert.ErrorIs(t, err, cache.ErrUnknownControl)
}

func TestPool_CombinesFailures(t *testing.T) {
	pool := cache.NewPool(nil)
	boom := errors.New("boom")
	failing := &stubControl{name: "failing", err: boom}
	healthy := &stubControl{name: "healthy"}
	pool.Add(failing)
	pool.Add(healthy)

	err := pool.Clear()

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, healthy.cleared, "later controls still run")
}
