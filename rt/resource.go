package rt

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/wippyai/wit-bindgen-go/errors"
)

// Sentinel is the handle value meaning "no handle": already transferred
// elsewhere or destroyed. Live handles are in [0, Sentinel).
const Sentinel uint32 = math.MaxUint32

// WasmResource is implemented by every resource type. Drop destroys the
// boundary-side resource identified by handle and is called at most once per
// live handle.
type WasmResource interface {
	Drop(handle uint32)
}

// LocalResource is implemented by resource types defined by this component.
// New registers a representation token with the boundary and returns a fresh
// handle; Rep resolves a handle to the token originally passed to New.
type LocalResource interface {
	WasmResource
	New(rep uintptr) uint32
	Rep(handle uint32) uintptr
}

// Resource owns one handle of resource type T. It has two states: live,
// and taken once the handle has moved out (terminal). A Resource must not be
// copied after first use.
type Resource[T WasmResource] struct {
	handle atomic.Uint32
}

// FromHandle wraps a handle received from the boundary. Passing Sentinel is a
// caller bug, checked only in the checked tier.
func FromHandle[T WasmResource](handle uint32) *Resource[T] {
	if checked && handle == Sentinel {
		fail(errors.SentinelHandle("FromHandle"))
	}
	r := &Resource[T]{}
	r.handle.Store(handle)
	return r
}

// NewResource moves v into a fresh representation slot, registers the slot's
// token with the boundary and wraps the resulting handle.
func NewResource[T LocalResource, V any](v V) *Resource[T] {
	var t T
	rep := box(v)
	return FromHandle[T](t.New(rep))
}

// TakeHandle transfers ownership of the handle to the caller, who becomes
// responsible for dropping or re-wrapping it. Later calls return Sentinel,
// and Drop becomes a no-op. Among concurrent callers exactly one receives
// the live handle.
func (r *Resource[T]) TakeHandle() uint32 {
	return r.handle.Swap(Sentinel)
}

// Handle returns the current handle without transferring ownership, for
// passing the resource by borrow.
func (r *Resource[T]) Handle() uint32 {
	return r.handle.Load()
}

// Live reports whether r still owns a handle.
func (r *Resource[T]) Live() bool {
	return r.handle.Load() != Sentinel
}

// Drop releases the handle through T's drop intrinsic. It takes the handle at
// the moment of destruction, so it races safely with TakeHandle and calling
// it again is harmless.
func (r *Resource[T]) Drop() {
	h := r.handle.Swap(Sentinel)
	if h == Sentinel {
		return
	}
	var t T
	t.Drop(h)
}

// String formats the resource by its handle.
func (r *Resource[T]) String() string {
	return fmt.Sprintf("Resource{handle: %d}", r.handle.Load())
}

// IntoInner takes ownership of a local resource's value back into Go and
// drops the resource. The slot is left empty, so the destructor the boundary
// runs afterwards finds nothing to release.
//
// A second take-back of the same slot panics in the checked tier. In the
// unchecked tier it is undefined behavior.
func IntoInner[V any, T LocalResource](r *Resource[T]) V {
	var t T
	rep := t.Rep(liveHandle(r, "IntoInner"))
	v := lookup[V](rep).take(rep)
	r.Drop()
	return v
}

// Borrow resolves a handle of a local resource to its value without taking
// ownership. See Lift for the lifetime of the returned pointer.
func Borrow[V any, T LocalResource](r *Resource[T]) *V {
	var t T
	return Lift[V](t.Rep(liveHandle(r, "Borrow")))
}

func liveHandle[T WasmResource](r *Resource[T], op string) uint32 {
	h := r.handle.Load()
	if checked && h == Sentinel {
		fail(errors.SentinelHandle(op))
	}
	return h
}
