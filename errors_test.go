package nasc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceNotRegisteredError(t *testing.T) {
	err := &ServiceNotRegisteredError{Type: Key[Logger]()}
	assert.Equal(t, "service not registered for type nasc.Logger. Did you forget to register it?", err.Error())
}

func TestDuplicateRegistrationError(t *testing.T) {
	err := &DuplicateRegistrationError{Type: Key[Logger]()}
	assert.Equal(t, "service already registered for type nasc.Logger", err.Error())
}

func TestInvalidRegistrationError(t *testing.T) {
	err := &InvalidRegistrationError{Reason: "implementation cannot be nil"}
	assert.Equal(t, "invalid registration: implementation cannot be nil", err.Error())
}

func TestResolutionError(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	tests := []struct {
		name string
		err  *ResolutionError
		want string
	}{
		{"full", &ResolutionError{Type: Key[Database](), Context: "factory failed", Cause: cause},
			"failed to resolve nasc.Database: factory failed: dial tcp: refused"},
		{"no context", &ResolutionError{Type: Key[Database](), Cause: cause},
			"failed to resolve nasc.Database: dial tcp: refused"},
		{"no type", &ResolutionError{Context: "factory failed"},
			"failed to resolve unknown: factory failed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}

	wrapped := fmt.Errorf("boot: %w", &ResolutionError{Type: Key[Database](), Cause: cause})
	assert.ErrorIs(t, wrapped, cause)
}

func TestCircularDependencyError(t *testing.T) {
	a, b := Key[CycleA](), Key[CycleB]()

	err := &CircularDependencyError{Type: a, Path: []reflect.Type{a, b, a}}
	assert.Equal(t, "circular dependency detected for nasc.CycleA: nasc.CycleA -> nasc.CycleB -> nasc.CycleA", err.Error())

	bare := &CircularDependencyError{Type: a}
	assert.Equal(t, "circular dependency detected for nasc.CycleA", bare.Error())
}

func TestUnresolvableConstructorError(t *testing.T) {
	missing := &ServiceNotRegisteredError{Type: Key[Database]()}
	err := &UnresolvableConstructorError{
		ServiceType:        Key[Notifier](),
		ImplementationType: reflect.TypeOf(&EmailNotifier{}),
		Causes:             []error{missing},
	}

	assert.True(t, strings.HasPrefix(err.Error(), "no constructor of *nasc.EmailNotifier could be satisfied for nasc.Notifier; candidate 1:"))

	var notRegistered *ServiceNotRegisteredError
	assert.True(t, errors.As(err, &notRegistered))

	empty := &UnresolvableConstructorError{ServiceType: Key[Notifier](), ImplementationType: reflect.TypeOf(&EmailNotifier{})}
	assert.Contains(t, empty.Error(), "no constructors and no parameterless construction")
}

func TestValidationError(t *testing.T) {
	one := &ValidationError{Errors: []error{errors.New("a broke")}}
	assert.Equal(t, "validation failed: a broke", one.Error())

	two := &ValidationError{Errors: []error{errors.New("a broke"), errors.New("b broke")}}
	assert.Equal(t, "validation failed with 2 errors:\n  1. a broke\n  2. b broke\n", two.Error())

	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}

func TestCleanupError(t *testing.T) {
	boom := errors.New("boom")
	err := &CleanupError{Errors: []error{boom, errors.New("bang")}}

	assert.Equal(t, "cleanup encountered 2 error(s): boom; bang", err.Error())
	assert.ErrorIs(t, err, boom)
}
