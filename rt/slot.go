package rt

import (
	"sync"
	"unsafe"

	"github.com/wippyai/wit-bindgen-go/errors"
)

// slot is the heap box behind a locally defined resource. Its address is the
// representation token handed to the boundary.
type slot[V any] struct {
	value V
	full  bool
}

// Dropper is implemented by representation values that release something
// when the boundary destroys their resource.
type Dropper interface {
	Drop()
}

// slots keeps every registered box reachable. The boundary only holds the
// token as an integer, which the garbage collector cannot see.
var slots = struct {
	m  map[uintptr]any
	mu sync.Mutex
}{m: make(map[uintptr]any)}

func box[V any](v V) uintptr {
	s := &slot[V]{value: v, full: true}
	rep := uintptr(unsafe.Pointer(s))

	slots.mu.Lock()
	slots.m[rep] = s
	slots.mu.Unlock()
	return rep
}

func lookup[V any](rep uintptr) *slot[V] {
	slots.mu.Lock()
	v := slots.m[rep]
	slots.mu.Unlock()

	s, ok := v.(*slot[V])
	if checked && !ok {
		fail(errors.UnknownRep(rep))
	}
	return s
}

// take empties the slot. Populated to empty happens at most once.
func (s *slot[V]) take(rep uintptr) V {
	slots.mu.Lock()
	full := s.full
	v := s.value
	var zero V
	s.value = zero
	s.full = false
	slots.mu.Unlock()

	if checked && !full {
		fail(errors.EmptySlot(rep))
	}
	return v
}

// Lift resolves a representation token to the value it boxes without
// transferring ownership. The pointer serves both shared and mutable borrows
// and stays valid until the value is taken back or destroyed.
//
// In the unchecked tier an empty slot is not detected and the pointer refers
// to a zero value; relying on it is undefined behavior.
func Lift[V any](rep uintptr) *V {
	s := lookup[V](rep)
	if checked {
		slots.mu.Lock()
		full := s.full
		slots.mu.Unlock()
		if !full {
			fail(errors.EmptySlot(rep))
		}
	}
	return &s.value
}

// Dtor destroys the box behind rep on the boundary's command. Generated
// [dtor] exports call it once the last handle to a local resource is dropped.
// A value still present in the slot is released through Dropper.
func Dtor[V any](rep uintptr) {
	slots.mu.Lock()
	v, ok := slots.m[rep]
	delete(slots.m, rep)
	slots.mu.Unlock()

	s, typed := v.(*slot[V])
	if checked && (!ok || !typed) {
		fail(errors.UnknownRep(rep))
	}
	if s == nil || !s.full {
		return
	}

	val := s.value
	var zero V
	s.value = zero
	s.full = false
	if d, ok := any(val).(Dropper); ok {
		d.Drop()
	}
}

// LiveSlots returns the number of registered representation slots.
func LiveSlots() int {
	slots.mu.Lock()
	defer slots.mu.Unlock()
	return len(slots.m)
}
