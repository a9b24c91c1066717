package nasc

import (
	"fmt"
)

// Get resolves T through r. ok is false when T is not registered.
//
//	log, ok, err := nasc.Get[Logger](container)
func Get[T any](r Resolver) (value T, ok bool, err error) {
	instance, err := r.GetService(Key[T]())
	if err != nil || instance == nil {
		return value, false, err
	}
	value, err = assertAs[T](instance)
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}

// Required resolves T through r and fails when T is not registered.
//
//	repo, err := nasc.Required[UserRepository](scope)
func Required[T any](r Resolver) (T, error) {
	instance, err := r.GetRequiredService(Key[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return assertAs[T](instance)
}

// MustResolve resolves T through r and panics on failure.
func MustResolve[T any](r Resolver) T {
	value, err := Required[T](r)
	if err != nil {
		panic(err)
	}
	return value
}

func assertAs[T any](instance interface{}) (T, error) {
	value, ok := instance.(T)
	if !ok {
		return value, &ResolutionError{
			Type:    Key[T](),
			Context: fmt.Sprintf("resolved %T is not a %v", instance, Key[T]()),
		}
	}
	return value, nil
}
