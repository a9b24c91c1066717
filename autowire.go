package nasc

import (
	"reflect"

	"github.com/pkg/errors"
)

// autowire populates the `inject` fields of a freshly allocated struct.
// Dependencies resolve on the current chain, so a field that leads back to a
// type under construction is reported as a cycle.
//
// Example:
//
//	type Service struct {
//	    Logger Logger `inject:""`
//	    Cache  Cache  `inject:"optional"`
//	}
func (r *resolution) autowire(instance reflect.Value) error {
	elem := instance.Elem()
	for _, field := range r.container.fields.injectable(elem.Type()) {
		value, err := r.resolveParam(field.typ)
		if err != nil {
			if field.options.optional && isNotRegistered(err, field.typ) {
				continue
			}
			return errors.WithMessagef(err, "field %s of %v", field.name, instance.Type())
		}
		elem.Field(field.index).Set(value)
	}
	return nil
}

// AutoWire injects dependencies into the `inject` fields of an existing struct.
// target must be a non-nil pointer to a struct.
//
// Supported tag options:
//   - `inject:""` - required, fails when the service cannot be resolved
//   - `inject:"optional"` - skipped when the service is not registered
//   - `inject:"-"` - ignored
func (c *Container) AutoWire(target interface{}) error {
	return c.autoWire(nil, target)
}

// AutoWire injects dependencies into target, resolving scoped services in this scope.
func (s *Scope) AutoWire(target interface{}) error {
	if s.Disposed() {
		return ErrScopeDisposed
	}
	return s.container.autoWire(s, target)
}

func (c *Container) autoWire(scope *Scope, target interface{}) error {
	if target == nil {
		return errors.New("cannot auto-wire nil instance")
	}

	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Ptr || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return errors.Errorf("AutoWire requires a non-nil pointer to struct, got %T", target)
	}
	if c.closed.Load() {
		return ErrContainerClosed
	}

	return c.newResolution(scope).autowire(value)
}
