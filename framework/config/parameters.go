package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Separator splits parameter keys into their path.
const Separator = "."

// Parameters is the key/value store of application parameters. Keys are
// dotted paths into a tree of maps:
//
//	p.Set("system.dependencies.cache", true)
//	p.Get("system.dependencies", nil) // map[string]any{"cache": true}
//
// Safe for concurrent use.
type Parameters struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewParameters creates a store holding values. Dotted keys in values are
// expanded into nested maps.
func NewParameters(values map[string]any) *Parameters {
	p := &Parameters{values: make(map[string]any)}
	for _, leaf := range Flatten(values) {
		p.set(leaf.Key, leaf.Value)
	}
	return p
}

// Get returns the value at key, or def when it is not set.
func (p *Parameters) Get(key string, def any) any {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var cur any = p.values
	for _, token := range strings.Split(key, Separator) {
		m, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		if cur, ok = m[token]; !ok {
			return def
		}
	}
	if cur == nil {
		return def
	}
	return copyValue(cur)
}

// GetString returns the value at key formatted as a string.
func (p *Parameters) GetString(key, def string) string {
	v := p.Get(key, nil)
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// GetBool returns the value at key as a boolean. Strings are parsed with
// strconv.ParseBool; unparsable values yield def.
func (p *Parameters) GetBool(key string, def bool) bool {
	switch v := p.Get(key, nil).(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	case int:
		return v != 0
	default:
		return def
	}
}

// Set stores value at key. A nil value removes the key.
func (p *Parameters) Set(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set(key, value)
}

func (p *Parameters) set(key string, value any) {
	tokens := strings.Split(key, Separator)
	m := p.values
	for _, token := range tokens[:len(tokens)-1] {
		next, ok := m[token].(map[string]any)
		if !ok {
			if value == nil {
				return
			}
			next = make(map[string]any)
			m[token] = next
		}
		m = next
	}

	last := tokens[len(tokens)-1]
	if value == nil {
		delete(m, last)
		return
	}
	if nested, ok := value.(map[string]any); ok {
		for _, leaf := range Flatten(nested) {
			p.set(key+Separator+leaf.Key, leaf.Value)
		}
		return
	}
	m[last] = value
}

// All returns a deep copy of the parameter tree.
func (p *Parameters) All() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyValue(p.values).(map[string]any)
}

// ── helpers ─────────────────────────────────────────────────────────────────

// Leaf is a flattened parameter.
type Leaf struct {
	Key   string
	Value any
}

// Flatten returns the leaves of a parameter tree with dotted keys, sorted by
// key so the result is deterministic.
func Flatten(values map[string]any) []Leaf {
	var out []Leaf
	flatten("", values, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func flatten(prefix string, values map[string]any, out *[]Leaf) {
	for k, v := range values {
		key := k
		if prefix != "" {
			key = prefix + Separator + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			flatten(key, nested, out)
			continue
		}
		*out = append(*out, Leaf{Key: key, Value: v})
	}
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
