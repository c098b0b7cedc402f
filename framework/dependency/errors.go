package dependency

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by DefinitionNotFoundError.
	ErrNotFound = errors.New("dependency: definition not found")
	// ErrInvalidDefinition is matched by every declarative validation error.
	ErrInvalidDefinition = errors.New("dependency: invalid definition")
	// ErrInvalidCallable is returned by ParseCallable for malformed strings.
	ErrInvalidCallable = errors.New("dependency: invalid callable")
)

// ── Load errors ───────────────────────────────────────────────────────────────

// ParseError is returned when a definition file cannot be decoded.
type ParseError struct {
	File string
	Line int // 0 when unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("dependency: could not parse %s (line %d): %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("dependency: could not parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DefinitionNotFoundError is returned when an extends target is not in the
// registry at the point it is referenced.
type DefinitionNotFoundError struct {
	Interface string
	ID        string
	Source    string
}

func (e *DefinitionNotFoundError) Error() string {
	return fmt.Sprintf("dependency: could not extend %s with id %q: extended definition not set%s",
		e.Interface, e.ID, source(e.Source))
}

func (e *DefinitionNotFoundError) Is(target error) bool { return target == ErrNotFound }

// MissingInterfaceError is returned for a factory definition without explicit
// interfaces.
type MissingInterfaceError struct {
	Factory string
	ID      string
	Source  string
}

func (e *MissingInterfaceError) Error() string {
	return fmt.Sprintf("dependency: definition with factory %s and id %q has no interfaces%s",
		e.Factory, e.ID, source(e.Source))
}

func (e *MissingInterfaceError) Is(target error) bool { return target == ErrInvalidDefinition }

// UnknownPropertyError is returned when a definition record holds keys that
// are not part of the definition format.
type UnknownPropertyError struct {
	ClassName string
	ID        string
	Keys      []string
	Source    string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("dependency: could not add definition for %s with id %q: provided properties are invalid (%s)%s",
		e.ClassName, e.ID, strings.Join(e.Keys, ", "), source(e.Source))
}

func (e *UnknownPropertyError) Is(target error) bool { return target == ErrInvalidDefinition }

// DefinitionError covers the remaining structural faults of a definition
// record: wrong value kinds, missing method names, conflicting sources.
type DefinitionError struct {
	ClassName string
	ID        string
	Field     string
	Reason    string
	Source    string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("dependency: could not read %s for %s with id %q: %s%s",
		e.Field, e.ClassName, e.ID, e.Reason, source(e.Source))
}

func (e *DefinitionError) Is(target error) bool { return target == ErrInvalidDefinition }

// ── Resolution errors ─────────────────────────────────────────────────────────

// MissingKeyError is returned by a resolver when a required argument property
// is absent.
type MissingKeyError struct {
	Argument string
	Key      string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("dependency: no %s property set for argument $%s", e.Key, e.Argument)
}

func (e *MissingKeyError) Is(target error) bool { return target == ErrInvalidDefinition }

// UnknownArgumentTypeError is returned when no resolver is registered for an
// argument type.
type UnknownArgumentTypeError struct {
	Argument string
	Type     string
}

func (e *UnknownArgumentTypeError) Error() string {
	return fmt.Sprintf("dependency: no resolver registered for type %q of argument $%s", e.Type, e.Argument)
}

func (e *UnknownArgumentTypeError) Is(target error) bool { return target == ErrInvalidDefinition }

// ── Cache errors ──────────────────────────────────────────────────────────────

// CacheWriteError is returned when a generated cache file cannot be written.
type CacheWriteError struct {
	Path string
	Err  error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("dependency: could not write cache %s: %v", e.Path, e.Err)
}

func (e *CacheWriteError) Unwrap() error { return e.Err }

func source(s string) string {
	if s == "" {
		return ""
	}
	return " (in " + s + ")"
}
