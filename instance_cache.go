package nasc

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
)

var errCacheClosed = errors.New("instance cache closed")

// instanceSlot holds one cached instance. ready is set only after value is
// published, so readers that observe ready never take the lock.
type instanceSlot struct {
	mu    sync.Mutex
	ready atomic.Bool
	value interface{}
}

// instanceCache holds lazily created instances keyed by service type.
// It backs both the container-wide singletons and every scope.
//
// Construction for one type is serialized on that type's slot only, so
// resolving unrelated types never contends. A failed construction is not
// cached and the next request retries it.
type instanceCache struct {
	slots sync.Map // reflect.Type -> *instanceSlot

	mu     sync.Mutex
	order  []interface{} // creation order, for reverse cleanup
	closed bool
	gen    uint64 // bumped by drain; builds started earlier are not cached
}

func newInstanceCache() *instanceCache {
	return &instanceCache{}
}

// getOrCreate returns the cached instance for t or builds it exactly once.
// It returns errCacheClosed together with the built instance when the cache
// was closed while build ran; the caller owns that instance. A build that
// outlives a plain drain is returned without being cached or tracked.
func (ic *instanceCache) getOrCreate(t reflect.Type, build func() (interface{}, error)) (interface{}, error) {
	v, ok := ic.slots.Load(t)
	if !ok {
		v, _ = ic.slots.LoadOrStore(t, &instanceSlot{})
	}
	slot := v.(*instanceSlot)

	if slot.ready.Load() {
		return slot.value, nil
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.ready.Load() {
		return slot.value, nil
	}

	ic.mu.Lock()
	gen := ic.gen
	ic.mu.Unlock()

	value, err := build()
	if err != nil {
		return nil, err
	}

	ic.mu.Lock()
	if ic.closed {
		ic.mu.Unlock()
		return value, errCacheClosed
	}
	if ic.gen != gen {
		// Drained while building: the slot is gone, hand the value back untracked.
		ic.mu.Unlock()
		return value, nil
	}
	ic.order = append(ic.order, value)
	ic.mu.Unlock()

	slot.value = value
	slot.ready.Store(true)
	return value, nil
}

// lookup returns an already published instance without building it.
func (ic *instanceCache) lookup(t reflect.Type) (interface{}, bool) {
	v, ok := ic.slots.Load(t)
	if !ok {
		return nil, false
	}
	slot := v.(*instanceSlot)
	if !slot.ready.Load() {
		return nil, false
	}
	return slot.value, true
}

// drain empties the cache and returns its instances in creation order.
// With close set, later constructions are handed back to their caller
// instead of being cached.
func (ic *instanceCache) drain(close bool) []interface{} {
	ic.mu.Lock()
	order := ic.order
	ic.order = nil
	ic.gen++
	if close {
		ic.closed = true
	}
	ic.mu.Unlock()

	ic.slots.Range(func(key, _ interface{}) bool {
		ic.slots.Delete(key)
		return true
	})
	return order
}

// len returns the number of cached instances.
func (ic *instanceCache) len() int {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return len(ic.order)
}
