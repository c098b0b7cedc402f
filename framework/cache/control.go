// Package cache holds the controls of the caches kept by the system and the
// pool that runs them by name.
package cache

import (
	"github.com/km-arc/go-bootstrap/framework/config"
	"github.com/km-arc/go-bootstrap/framework/dependency/io"
)

// Control manages one cache.
type Control interface {
	// Name identifies the control in the pool.
	Name() string
	// CanToggle reports whether Enable and Disable have effect.
	CanToggle() bool
	IsEnabled() bool
	Enable() error
	Disable() error
	// Warm fills the cache. It does nothing when the cache is disabled.
	Warm() error
	// Clear removes the cached content.
	Clear() error
}

// ParamDependencies is the parameter that turns the dependency cache on.
const ParamDependencies = "system.dependencies.cache"

// ── DependencyControl ─────────────────────────────────────────────────────────

// DependencyControl controls the cache of the dependency definitions.
// Toggling sets ParamDependencies, read when the system selects its
// dependency IO.
type DependencyControl struct {
	io     *io.CachedIO
	params *config.Parameters
}

// NewDependencyControl creates the control of cached.
func NewDependencyControl(cached *io.CachedIO, params *config.Parameters) *DependencyControl {
	return &DependencyControl{io: cached, params: params}
}

func (c *DependencyControl) Name() string    { return "dependencies" }
func (c *DependencyControl) CanToggle() bool { return true }

func (c *DependencyControl) IsEnabled() bool {
	return c.io != nil && c.params.GetBool(ParamDependencies, false)
}

func (c *DependencyControl) Enable() error {
	c.params.Set(ParamDependencies, true)
	return nil
}

// Disable removes ParamDependencies.
func (c *DependencyControl) Disable() error {
	c.params.Set(ParamDependencies, nil)
	return nil
}

func (c *DependencyControl) Warm() error {
	if !c.IsEnabled() {
		return nil
	}
	_, err := c.io.Warm()
	return err
}

func (c *DependencyControl) Clear() error {
	if c.io == nil {
		return nil
	}
	_, err := c.io.Clear()
	return err
}

// ── ParameterControl ──────────────────────────────────────────────────────────

// ParameterControl controls the cache of the merged parameters. It is
// enabled when the parameters are read through a cache.
type ParameterControl struct {
	io *config.CachedParameterIO
}

// NewParameterControl creates the control of cached, which may be nil.
func NewParameterControl(cached *config.CachedParameterIO) *ParameterControl {
	return &ParameterControl{io: cached}
}

func (c *ParameterControl) Name() string    { return "parameters" }
func (c *ParameterControl) CanToggle() bool { return false }
func (c *ParameterControl) IsEnabled() bool { return c.io != nil }
func (c *ParameterControl) Enable() error   { return nil }
func (c *ParameterControl) Disable() error  { return nil }

func (c *ParameterControl) Warm() error {
	if !c.IsEnabled() {
		return nil
	}
	_, err := c.io.Warm()
	return err
}

func (c *ParameterControl) Clear() error {
	if !c.IsEnabled() {
		return nil
	}
	_, err := c.io.Clear()
	return err
}
