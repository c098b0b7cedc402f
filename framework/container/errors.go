package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by NotFoundError.
	ErrNotFound = errors.New("container: not found")
	// ErrCircularDependency is returned when an instance needs itself to be
	// built.
	ErrCircularDependency = errors.New("container: circular dependency")
	// ErrUnknownClass is returned for a definition whose class has no
	// registered constructor.
	ErrUnknownClass = errors.New("container: no constructor registered")
	// ErrUnknownMethod is returned when a call names a method the instance
	// does not have.
	ErrUnknownMethod = errors.New("container: unknown method")
	// ErrArgument is returned when a resolved value does not fit a parameter.
	ErrArgument = errors.New("container: invalid argument")
)

// NotFoundError is returned when neither a binding nor a definition exists
// for an interface and id.
type NotFoundError struct {
	Interface string
	ID        string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("container: no binding or definition registered for [%s]", e.Interface)
	}
	return fmt.Sprintf("container: no binding or definition registered for [%s] with id %q", e.Interface, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// CircularDependencyError holds the chain of instances that loops.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return "container: circular dependency: " + strings.Join(e.Chain, " -> ")
}

func (e *CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

// BuildError wraps a failure while building the instance of a definition.
type BuildError struct {
	Interface string
	ID        string
	Err       error
}

func (e *BuildError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("container: could not build [%s]: %v", e.Interface, e.Err)
	}
	return fmt.Sprintf("container: could not build [%s] with id %q: %v", e.Interface, e.ID, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
