package dependency

import (
	"fmt"
	"sync"
)

// group holds the definitions of one interface keyed by id, in insertion
// order.
type group struct {
	ids  []string
	defs map[string]*Definition
}

func (g *group) put(d *Definition) {
	if _, ok := g.defs[d.id]; !ok {
		g.ids = append(g.ids, d.id)
	}
	g.defs[d.id] = d
}

// Registry indexes definitions by interface, then by id.
//
// A definition is reachable under every one of its interfaces. Adding a
// definition for an existing (interface, id) pair replaces the earlier one
// in place, so later layers override earlier ones without changing the
// enumeration order.
//
// Registries are filled while loading and only read afterwards; all methods
// are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	interfaces []string
	groups     map[string]*group
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]*group)}
}

// ── Registration ──────────────────────────────────────────────────────────────

// Add registers d under each of its interfaces, keyed by its id.
func (r *Registry) Add(d *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, iface := range d.interfaces {
		r.group(iface).put(d)
	}
}

// Insert registers d under a single interface. It fails when iface is not
// one of d's interfaces. Decoders use it to rebuild an exact group order.
func (r *Registry) Insert(iface string, d *Definition) error {
	if !d.HasInterface(iface) {
		return fmt.Errorf("%w: %s does not implement %s", ErrInvalidDefinition, d, iface)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.group(iface).put(d)
	return nil
}

// group returns the group of iface, creating it (must hold mu.Lock).
func (r *Registry) group(iface string) *group {
	g, ok := r.groups[iface]
	if !ok {
		g = &group{defs: make(map[string]*Definition)}
		r.groups[iface] = g
		r.interfaces = append(r.interfaces, iface)
	}
	return g
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// Definitions returns the definitions of iface in insertion order.
func (r *Registry) Definitions(iface string) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[iface]
	if !ok {
		return nil
	}
	out := make([]*Definition, 0, len(g.ids))
	for _, id := range g.ids {
		out = append(out, g.defs[id])
	}
	return out
}

// Definition returns the definition of iface with id.
func (r *Registry) Definition(iface, id string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[iface]
	if !ok {
		return nil, false
	}
	d, ok := g.defs[id]
	return d, ok
}

// Default returns the definition used when iface is requested without id:
// the definition with the empty id, or else the last one added.
func (r *Registry) Default(iface string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[iface]
	if !ok || len(g.ids) == 0 {
		return nil, false
	}
	if d, ok := g.defs[""]; ok {
		return d, true
	}
	return g.defs[g.ids[len(g.ids)-1]], true
}

// Tagged returns the definitions of iface that carry tag.
func (r *Registry) Tagged(iface, tag string) []*Definition {
	var out []*Definition
	for _, d := range r.Definitions(iface) {
		if d.HasTag(tag) {
			out = append(out, d)
		}
	}
	return out
}

// Interfaces returns all interface names in the order they were first seen.
func (r *Registry) Interfaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.interfaces...)
}

// Each calls fn for every (interface, definition) pair in enumeration order.
// A definition with several interfaces is visited once per interface.
func (r *Registry) Each(fn func(iface string, d *Definition)) {
	for _, iface := range r.Interfaces() {
		for _, d := range r.Definitions(iface) {
			fn(iface, d)
		}
	}
}

// Len returns the number of distinct definitions.
func (r *Registry) Len() int {
	seen := make(map[*Definition]struct{})
	r.Each(func(_ string, d *Definition) { seen[d] = struct{}{} })
	return len(seen)
}

// Has reports whether any definition is registered for iface.
func (r *Registry) Has(iface string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.groups[iface]
	return ok
}
