package nasc

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"github.com/toutaio/toutago-nasc-container/registry"
)

// ImplementationSpec names a concrete type together with its constructor candidates.
// Create one with Implementation.
type ImplementationSpec struct {
	typ          reflect.Type
	constructors []interface{}
}

// Implementation describes a concrete implementation type and, optionally, the
// constructors that may build it. impl is a type token: a pointer to a struct
// such as &Impl{} or (*Impl)(nil), or a reflect.Type of such a pointer.
//
// Constructors are tried from most to fewest parameters. When none of them can
// be satisfied the container falls back to a zero value of the struct with its
// `inject` fields populated.
//
// Example:
//
//	container.RegisterTransient((*Notifier)(nil),
//	    nasc.Implementation(&EmailNotifier{}, NewEmailNotifierWithSMTP, NewEmailNotifier))
func Implementation(impl interface{}, constructors ...interface{}) *ImplementationSpec {
	var t reflect.Type
	switch v := impl.(type) {
	case nil:
	case reflect.Type:
		t = v
	default:
		t = reflect.TypeOf(impl)
	}
	return &ImplementationSpec{typ: t, constructors: constructors}
}

// Key returns the service type for T. It is the usual way to name a service
// without a type token.
//
//	container.RegisterSingleton(nasc.Key[Logger](), NewConsoleLogger)
func Key[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// serviceTypeOf turns a service token into the type it registers or resolves.
// A nil pointer to an interface names the interface. A reflect.Type names
// itself. Any other value names its own dynamic type.
func serviceTypeOf(service interface{}) (reflect.Type, error) {
	switch v := service.(type) {
	case nil:
		return nil, errNilServiceType
	case reflect.Type:
		return v, nil
	}

	t := reflect.TypeOf(service)
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		return t.Elem(), nil
	}
	return t, nil
}

// describe classifies an implementation and builds its registry descriptor.
func describe(serviceType reflect.Type, implementation interface{}, lifetime Lifetime) (*registry.Descriptor, error) {
	if !lifetime.valid() {
		return nil, &InvalidRegistrationError{Reason: fmt.Sprintf("unknown lifetime %q", lifetime)}
	}

	d := &registry.Descriptor{
		ServiceType: serviceType,
		Lifetime:    string(lifetime),
	}

	switch impl := implementation.(type) {
	case nil:
		return nil, &InvalidRegistrationError{Reason: "implementation cannot be nil"}

	case FactoryFunc:
		if impl == nil {
			return nil, &InvalidRegistrationError{Reason: "factory cannot be nil"}
		}
		d.Factory = impl
		return d, nil

	case func(Resolver) (interface{}, error):
		if impl == nil {
			return nil, &InvalidRegistrationError{Reason: "factory cannot be nil"}
		}
		d.Factory = FactoryFunc(impl)
		return d, nil

	case *ImplementationSpec:
		if err := checkStructPointer(impl.typ, serviceType); err != nil {
			return nil, err
		}
		ctors, err := parseConstructors(serviceType, impl.constructors)
		if err != nil {
			return nil, &InvalidRegistrationError{Reason: err.Error()}
		}
		d.ImplementationType = impl.typ
		d.Constructors = ctors
		d.Parameterless = true
		return d, nil
	}

	implType := reflect.TypeOf(implementation)
	if implType.Kind() == reflect.Func {
		ctors, err := parseConstructors(serviceType, []interface{}{implementation})
		if err != nil {
			return nil, &InvalidRegistrationError{Reason: err.Error()}
		}
		d.ImplementationType = ctors[0].returnType
		d.Constructors = ctors
		return d, nil
	}

	if err := checkStructPointer(implType, serviceType); err != nil {
		return nil, err
	}
	d.ImplementationType = implType
	d.Parameterless = true
	return d, nil
}

// describeInstance builds the descriptor of a pre-built singleton.
func describeInstance(serviceType reflect.Type, instance interface{}) (*registry.Descriptor, error) {
	if isNilValue(reflect.ValueOf(instance)) {
		return nil, &InvalidRegistrationError{Reason: "instance cannot be nil"}
	}
	instanceType := reflect.TypeOf(instance)
	if !instanceType.AssignableTo(serviceType) {
		return nil, &InvalidRegistrationError{
			Reason: fmt.Sprintf("instance of type %v is not assignable to %v", instanceType, serviceType),
		}
	}
	return &registry.Descriptor{
		ServiceType:        serviceType,
		ImplementationType: instanceType,
		Lifetime:           string(LifetimeSingleton),
		Instance:           instance,
		HasInstance:        true,
	}, nil
}

func checkStructPointer(implType, serviceType reflect.Type) error {
	if implType == nil {
		return &InvalidRegistrationError{Reason: "implementation type cannot be nil"}
	}
	if implType.Kind() != reflect.Ptr || implType.Elem().Kind() != reflect.Struct {
		return &InvalidRegistrationError{
			Reason: fmt.Sprintf("implementation must be a factory, a constructor, or a pointer to struct, got %v", implType),
		}
	}
	if !implType.AssignableTo(serviceType) {
		return &InvalidRegistrationError{
			Reason: fmt.Sprintf("type %v does not implement %v", implType, serviceType),
		}
	}
	return nil
}

// wrapRegistration adds the service type to a registration failure.
func wrapRegistration(err error, serviceType reflect.Type) error {
	if err == nil {
		return nil
	}
	return errors.WithMessagef(err, "registering %v", serviceType)
}
