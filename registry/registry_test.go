package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// Test types for registry tests
type testInterface interface {
	DoSomething()
}

type testImplementation struct{}

func (t *testImplementation) DoSomething() {}

type otherImplementation struct{}

func (o *otherImplementation) DoSomething() {}

var interfaceType = reflect.TypeOf((*testInterface)(nil)).Elem()

func TestNew(t *testing.T) {
	reg := New()
	if reg == nil {
		t.Fatal("New() returned nil")
	}
	if reg.descriptors == nil {
		t.Error("Registry.descriptors is nil")
	}
	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d descriptors", reg.Len())
	}
}

func TestRegister_Success(t *testing.T) {
	reg := New()

	err := reg.Register(&Descriptor{
		ServiceType:        interfaceType,
		ImplementationType: reflect.TypeOf(&testImplementation{}),
		Lifetime:           "singleton",
	})
	if err != nil {
		t.Errorf("Register() returned error: %v", err)
	}
	if !reg.Has(interfaceType) {
		t.Error("Descriptor not found after Register()")
	}
}

func TestRegister_DuplicateKeepsFirst(t *testing.T) {
	reg := New()
	first := &Descriptor{
		ServiceType:        interfaceType,
		ImplementationType: reflect.TypeOf(&testImplementation{}),
	}
	second := &Descriptor{
		ServiceType:        interfaceType,
		ImplementationType: reflect.TypeOf(&otherImplementation{}),
	}

	if err := reg.Register(first); err != nil {
		t.Fatalf("First Register() failed: %v", err)
	}

	err := reg.Register(second)
	var dupErr *DuplicateDescriptorError
	if !errors.As(err, &dupErr) {
		t.Fatalf("Expected DuplicateDescriptorError, got %T", err)
	}
	if dupErr.Existing != first {
		t.Error("DuplicateDescriptorError should reference the stored descriptor")
	}

	got, _ := reg.Lookup(interfaceType)
	if got != first {
		t.Error("second registration replaced the first descriptor")
	}
}

func TestRegister_Invalid(t *testing.T) {
	reg := New()
	if err := reg.Register(nil); err == nil {
		t.Error("Register(nil) should return error")
	}
	if err := reg.Register(&Descriptor{}); err == nil {
		t.Error("Register() without service type should return error")
	}
}

func TestLookup(t *testing.T) {
	reg := New()

	if _, ok := reg.Lookup(interfaceType); ok {
		t.Error("Lookup() found a descriptor in an empty registry")
	}

	expected := &Descriptor{ServiceType: interfaceType, Lifetime: "transient"}
	_ = reg.Register(expected)

	got, ok := reg.Lookup(interfaceType)
	if !ok || got != expected {
		t.Errorf("Lookup() = %v, %v; want stored descriptor", got, ok)
	}
}

func TestTypes_Sorted(t *testing.T) {
	reg := New()
	_ = reg.Register(&Descriptor{ServiceType: reflect.TypeOf("")})
	_ = reg.Register(&Descriptor{ServiceType: reflect.TypeOf(0)})
	_ = reg.Register(&Descriptor{ServiceType: interfaceType})

	types := reg.Types()
	if len(types) != 3 {
		t.Fatalf("expected 3 types, got %d", len(types))
	}
	for i := 1; i < len(types); i++ {
		if types[i-1].String() > types[i].String() {
			t.Errorf("types not sorted: %v before %v", types[i-1], types[i])
		}
	}

	snapshot := reg.Descriptors()
	if len(snapshot) != 3 || snapshot[0].ServiceType != types[0] {
		t.Errorf("Descriptors() snapshot does not follow Types() order")
	}
}

func TestReset(t *testing.T) {
	reg := New()
	_ = reg.Register(&Descriptor{ServiceType: interfaceType})

	reg.Reset()

	if reg.Has(interfaceType) || reg.Len() != 0 {
		t.Error("Reset() left descriptors behind")
	}
	if err := reg.Register(&Descriptor{ServiceType: interfaceType}); err != nil {
		t.Errorf("Register() after Reset() failed: %v", err)
	}
}

func TestDescriptorKind(t *testing.T) {
	cases := map[string]*Descriptor{
		"instance": {HasInstance: true, Instance: 1},
		"factory":  {Factory: func() {}},
		"type":     {ImplementationType: reflect.TypeOf(&testImplementation{})},
	}
	for want, d := range cases {
		if got := d.Kind(); got != want {
			t.Errorf("Kind() = %q, want %q", got, want)
		}
	}
}

func TestConcurrentReads(t *testing.T) {
	reg := New()
	_ = reg.Register(&Descriptor{
		ServiceType:        interfaceType,
		ImplementationType: reflect.TypeOf(&testImplementation{}),
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := reg.Lookup(interfaceType); !ok {
				t.Error("Concurrent Lookup() failed")
			}
			if !reg.Has(interfaceType) {
				t.Error("Concurrent Has() returned false")
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	reg := New()
	var wg sync.WaitGroup

	_ = reg.Register(&Descriptor{ServiceType: interfaceType})

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			typeName := fmt.Sprintf("TestType%d", i)
			structType := reflect.StructOf([]reflect.StructField{
				{
					Name: "Field" + typeName,
					Type: reflect.TypeOf(""),
					Tag:  reflect.StructTag(fmt.Sprintf("json:%q", typeName)),
				},
			})

			if err := reg.Register(&Descriptor{ServiceType: structType}); err != nil {
				t.Errorf("Goroutine %d: Register() failed: %v", i, err)
			}
		}()
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Has(interfaceType)
			_, _ = reg.Lookup(interfaceType)
		}()
	}

	wg.Wait()

	if reg.Len() != 11 {
		t.Errorf("expected 11 descriptors, got %d", reg.Len())
	}
}

func TestDuplicateDescriptorError_Error(t *testing.T) {
	err := &DuplicateDescriptorError{Type: interfaceType}
	want := "descriptor already exists for type registry.testInterface"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
