package nasc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrScopeDisposed is returned when resolving through a scope that has been disposed.
	ErrScopeDisposed = errors.New("scope has been disposed")

	// ErrContainerClosed is returned when using a container after Close.
	ErrContainerClosed = errors.New("container has been closed")

	errNilServiceType = errors.New("service type cannot be nil")
)

// ServiceNotRegisteredError is returned when a requested service has no registration.
// GetService treats it as an absent result; GetRequiredService returns it.
type ServiceNotRegisteredError struct {
	Type reflect.Type
}

func (e *ServiceNotRegisteredError) Error() string {
	return fmt.Sprintf("service not registered for type %v. Did you forget to register it?", e.Type)
}

// DuplicateRegistrationError is returned by strict containers when a service type is registered twice.
type DuplicateRegistrationError struct {
	Type reflect.Type
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("service already registered for type %v", e.Type)
}

// InvalidRegistrationError is returned when a registration has invalid parameters.
type InvalidRegistrationError struct {
	Reason string
}

func (e *InvalidRegistrationError) Error() string {
	return fmt.Sprintf("invalid registration: %s", e.Reason)
}

// ResolutionError is returned when instance construction fails.
type ResolutionError struct {
	Type    reflect.Type
	Cause   error
	Context string
}

func (e *ResolutionError) Error() string {
	typeStr := "unknown"
	if e.Type != nil {
		typeStr = e.Type.String()
	}

	contextStr := ""
	if e.Context != "" {
		contextStr = fmt.Sprintf(": %s", e.Context)
	}

	causeStr := ""
	if e.Cause != nil {
		causeStr = fmt.Sprintf(": %v", e.Cause)
	}

	return fmt.Sprintf("failed to resolve %s%s%s", typeStr, contextStr, causeStr)
}

// Unwrap returns the underlying cause error.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// CircularDependencyError indicates a type was requested while it was already under construction.
type CircularDependencyError struct {
	// Type is the service that was requested a second time.
	Type reflect.Type
	// Path is the resolution chain, ending with Type.
	Path []reflect.Type
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("circular dependency detected for %v", e.Type)
	}
	parts := make([]string, len(e.Path))
	for i, t := range e.Path {
		parts[i] = t.String()
	}
	return fmt.Sprintf("circular dependency detected for %v: %s", e.Type, strings.Join(parts, " -> "))
}

// UnresolvableConstructorError is returned when no constructor candidate could have all of its
// parameters resolved and the implementation has no parameterless construction.
type UnresolvableConstructorError struct {
	ServiceType        reflect.Type
	ImplementationType reflect.Type
	// Causes holds the parameter failure of each rejected candidate, in attempt order.
	Causes []error
}

func (e *UnresolvableConstructorError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no constructor of %v could be satisfied for %v", e.ImplementationType, e.ServiceType)
	if len(e.Causes) == 0 {
		b.WriteString(" (no constructors and no parameterless construction)")
		return b.String()
	}
	for i, err := range e.Causes {
		fmt.Fprintf(&b, "; candidate %d: %v", i+1, err)
	}
	return b.String()
}

func (e *UnresolvableConstructorError) Unwrap() []error {
	return e.Causes
}

// ValidationError aggregates every failure found by ValidateAll.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %v", e.Errors[0])
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		b.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return b.String()
}

func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// CleanupError aggregates the cleanup failures of a container teardown.
type CleanupError struct {
	Errors []error
}

func (e *CleanupError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("cleanup encountered %d error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *CleanupError) Unwrap() []error {
	return e.Errors
}
