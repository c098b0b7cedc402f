package parser

// Record is an ordered set of key/value pairs decoded from a structured
// file. Values are strings, booleans, numbers, nil, []any or *Record.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores value under key, appending the key when it is new.
func (r *Record) Set(key string, value any) *Record {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
	return r
}

// Get returns the value of key and whether it is set.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Take returns the value of key and removes it from the record.
func (r *Record) Take(key string) (any, bool) {
	v, ok := r.values[key]
	if !ok {
		return nil, false
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Keys returns the keys in decoding order.
func (r *Record) Keys() []string { return append([]string(nil), r.keys...) }

// Len returns the number of keys.
func (r *Record) Len() int { return len(r.keys) }

// Map converts the record, recursively, into plain maps and slices.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		out[k] = plain(r.values[k])
	}
	return out
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := NewRecord()
	for _, k := range r.keys {
		out.Set(k, cloneValue(r.values[k]))
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
