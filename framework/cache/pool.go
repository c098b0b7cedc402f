package cache

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrUnknownControl is returned for a name no control is registered under.
var ErrUnknownControl = errors.New("cache: unknown control")

// Status is the state of one control, as listed by the CLI and the admin
// routes.
type Status struct {
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled"`
	CanToggle bool   `json:"can_toggle"`
}

// Pool holds cache controls by name, in registration order.
type Pool struct {
	mu       sync.RWMutex
	controls []Control
	logger   *zap.Logger
}

// NewPool creates an empty pool.
func NewPool(logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{logger: logger}
}

// Add registers c. A control with the same name is replaced in place.
func (p *Pool) Add(c Control) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.controls {
		if existing.Name() == c.Name() {
			p.controls[i] = c
			return
		}
	}
	p.controls = append(p.controls, c)
}

// Control returns the control registered under name.
func (p *Pool) Control(name string) (Control, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.controls {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Controls returns the controls in registration order.
func (p *Pool) Controls() []Control {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Control(nil), p.controls...)
}

// Status lists the state of every control.
func (p *Pool) Status() []Status {
	controls := p.Controls()
	out := make([]Status, 0, len(controls))
	for _, c := range controls {
		out = append(out, Status{Name: c.Name(), Enabled: c.IsEnabled(), CanToggle: c.CanToggle()})
	}
	return out
}

// Warm warms the named controls, or all of them when no name is given.
// Every control is attempted; the failures are combined.
func (p *Pool) Warm(names ...string) error {
	return p.each("warm", names, Control.Warm)
}

// Clear clears the named controls, or all of them when no name is given.
func (p *Pool) Clear(names ...string) error {
	return p.each("clear", names, Control.Clear)
}

// Enable enables the named control.
func (p *Pool) Enable(name string) error {
	return p.each("enable", []string{name}, Control.Enable)
}

// Disable disables the named control.
func (p *Pool) Disable(name string) error {
	return p.each("disable", []string{name}, Control.Disable)
}

func (p *Pool) each(action string, names []string, fn func(Control) error) error {
	controls, err := p.selected(names)
	if err != nil {
		return err
	}

	var errs error
	for _, c := range controls {
		if err := fn(c); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cache: %s %s: %w", action, c.Name(), err))
			continue
		}
		p.logger.Info("cache "+action, zap.String("control", c.Name()), zap.Bool("enabled", c.IsEnabled()))
	}
	return errs
}

func (p *Pool) selected(names []string) ([]Control, error) {
	if len(names) == 0 {
		return p.Controls(), nil
	}
	out := make([]Control, 0, len(names))
	for _, name := range names {
		c, ok := p.Control(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownControl, name)
		}
		out = append(out, c)
	}
	return out, nil
}
