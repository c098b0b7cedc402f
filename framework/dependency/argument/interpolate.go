package argument

import (
	"fmt"
	"strings"
)

// Delimiter marks a string as a parameter reference: %key% or %key|default%.
const Delimiter = "%"

// Config is the read side of the parameter store.
type Config interface {
	Get(key string, def any) any
}

// ParseParameter splits a delimited parameter reference into its key and
// default. ok is false when s is not a reference.
//
//	ParseParameter("%mail.host|localhost%") // "mail.host", "localhost", true, true
//	ParseParameter("%mail.host%")           // "mail.host", "", false, true
//	ParseParameter("mail.host")             // "", "", false, false
func ParseParameter(s string) (key, def string, hasDefault, ok bool) {
	if len(s) < 2*len(Delimiter) || !strings.HasPrefix(s, Delimiter) || !strings.HasSuffix(s, Delimiter) {
		return "", "", false, false
	}
	inner := s[len(Delimiter) : len(s)-len(Delimiter)]
	key, def, hasDefault = strings.Cut(inner, "|")
	return key, def, hasDefault, true
}

// Interpolate resolves s against cfg when it is a parameter reference and
// returns s unchanged otherwise. A reference without default to an unset
// key yields nil.
func Interpolate(s string, cfg Config) any {
	key, def, hasDefault, ok := ParseParameter(s)
	if !ok {
		return s
	}
	var fallback any
	if hasDefault {
		fallback = def
	}
	if cfg == nil {
		return fallback
	}
	return cfg.Get(key, fallback)
}

// InterpolateString is Interpolate with the result formatted as a string;
// nil becomes the empty string.
func InterpolateString(s string, cfg Config) string {
	switch v := Interpolate(s, cfg).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
