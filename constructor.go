package nasc

import (
	"reflect"
	"sort"

	"github.com/pkg/errors"
)

// ConstructorFunc represents a constructor function type.
// Supported signatures:
//   - func() T
//   - func() (T, error)
//   - func(Dep1) T
//   - func(Dep1) (T, error)
//   - func(Dep1, Dep2, ...) T
//   - func(Dep1, Dep2, ...) (T, error)
//
// Parameters of type Resolver, *Container and *Scope are supplied by the
// container itself; every other parameter is resolved as a service.
type ConstructorFunc interface{}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// constructorInfo holds metadata about a constructor function.
type constructorInfo struct {
	fn           reflect.Value
	fnType       reflect.Type
	paramTypes   []reflect.Type
	returnsError bool
	returnType   reflect.Type
	numParams    int
}

// parseConstructor analyzes a constructor function and extracts metadata.
func parseConstructor(constructor ConstructorFunc) (*constructorInfo, error) {
	if constructor == nil {
		return nil, errors.New("constructor cannot be nil")
	}

	fnValue := reflect.ValueOf(constructor)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, errors.Errorf("constructor must be a function, got %v", fnType.Kind())
	}
	if fnValue.IsNil() {
		return nil, errors.New("constructor cannot be a nil function")
	}
	if fnType.IsVariadic() {
		return nil, errors.Errorf("constructor %v must not be variadic", fnType)
	}

	numOut := fnType.NumOut()
	if numOut == 0 || numOut > 2 {
		return nil, errors.Errorf("constructor must return (T) or (T, error), got %d return values", numOut)
	}

	returnsError := false
	if numOut == 2 {
		if fnType.Out(1) != errorType {
			return nil, errors.Errorf("constructor's second return value must be error, got %v", fnType.Out(1))
		}
		returnsError = true
	}

	numParams := fnType.NumIn()
	paramTypes := make([]reflect.Type, numParams)
	for i := 0; i < numParams; i++ {
		paramTypes[i] = fnType.In(i)
	}

	return &constructorInfo{
		fn:           fnValue,
		fnType:       fnType,
		paramTypes:   paramTypes,
		returnsError: returnsError,
		returnType:   fnType.Out(0),
		numParams:    numParams,
	}, nil
}

// parseConstructors parses every candidate and orders them by descending
// parameter count. Candidates with equal counts keep their declaration order.
func parseConstructors(serviceType reflect.Type, constructors []interface{}) ([]*constructorInfo, error) {
	infos := make([]*constructorInfo, 0, len(constructors))
	for i, ctor := range constructors {
		info, err := parseConstructor(ctor)
		if err != nil {
			return nil, errors.Wrapf(err, "constructor %d", i)
		}
		if !info.returnType.AssignableTo(serviceType) {
			return nil, errors.Errorf("constructor %d returns %v which is not assignable to %v", i, info.returnType, serviceType)
		}
		infos = append(infos, info)
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].numParams > infos[j].numParams
	})
	return infos, nil
}

// call invokes the constructor with already-resolved arguments.
func (info *constructorInfo) call(args []reflect.Value) (interface{}, error) {
	results := info.fn.Call(args)

	if info.returnsError {
		if errValue := results[1]; !errValue.IsNil() {
			return nil, errValue.Interface().(error)
		}
	}

	instance := results[0]
	if isNilValue(instance) {
		return nil, errors.Errorf("constructor %v returned a nil instance", info.fnType)
	}
	return instance.Interface(), nil
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
