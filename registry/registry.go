// Package registry provides thread-safe storage and retrieval of service descriptors.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Descriptor is the registration record for one abstract service type.
type Descriptor struct {
	// ServiceType is the abstract type being registered (e.g., Logger interface)
	ServiceType reflect.Type

	// ImplementationType is the concrete type produced for the service.
	// Nil for factory registrations.
	ImplementationType reflect.Type

	// Lifetime defines how instances are managed
	// Values: "singleton", "transient", "scoped"
	Lifetime string

	// Factory stores the creation function for factory registrations.
	Factory interface{}

	// Constructors stores the parsed constructor candidates for type registrations.
	Constructors interface{}

	// Parameterless reports whether the implementation may be built from its zero value
	// when no constructor candidate succeeds.
	Parameterless bool

	// Instance is the pre-built value when HasInstance is set.
	Instance    interface{}
	HasInstance bool
}

// Kind describes how the descriptor produces instances.
func (d *Descriptor) Kind() string {
	switch {
	case d.HasInstance:
		return "instance"
	case d.Factory != nil:
		return "factory"
	default:
		return "type"
	}
}

// Registry provides thread-safe storage for descriptors.
// It uses a map with reflect.Type keys for O(1) lookup performance.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[reflect.Type]*Descriptor
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{
		descriptors: make(map[reflect.Type]*Descriptor),
	}
}

// Register stores a descriptor in the registry.
// An existing descriptor for the same service type is never replaced;
// the call returns a DuplicateDescriptorError instead.
//
// This method is goroutine-safe.
func (r *Registry) Register(descriptor *Descriptor) error {
	if descriptor == nil {
		return fmt.Errorf("descriptor cannot be nil")
	}
	if descriptor.ServiceType == nil {
		return fmt.Errorf("descriptor service type cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.descriptors[descriptor.ServiceType]; exists {
		return &DuplicateDescriptorError{Type: descriptor.ServiceType, Existing: existing}
	}

	r.descriptors[descriptor.ServiceType] = descriptor
	return nil
}

// Lookup retrieves the descriptor registered for serviceType.
//
// This method is goroutine-safe.
func (r *Registry) Lookup(serviceType reflect.Type) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptor, exists := r.descriptors[serviceType]
	return descriptor, exists
}

// Has checks if a descriptor exists for the given type.
func (r *Registry) Has(serviceType reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.descriptors[serviceType]
	return exists
}

// Types returns every registered service type, ordered by type name.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	types := make([]reflect.Type, 0, len(r.descriptors))
	for t := range r.descriptors {
		types = append(types, t)
	}
	r.mu.RUnlock()

	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	return types
}

// Descriptors returns a snapshot of every descriptor, ordered by service type name.
func (r *Registry) Descriptors() []Descriptor {
	types := r.Types()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(types))
	for _, t := range types {
		if d, ok := r.descriptors[t]; ok {
			out = append(out, *d)
		}
	}
	return out
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}

// Reset removes every descriptor.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors = make(map[reflect.Type]*Descriptor)
}

// DuplicateDescriptorError is returned when a descriptor already exists for the service type.
type DuplicateDescriptorError struct {
	Type     reflect.Type
	Existing *Descriptor
}

func (e *DuplicateDescriptorError) Error() string {
	return fmt.Sprintf("descriptor already exists for type %v", e.Type)
}
