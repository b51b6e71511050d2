// Package rt is the runtime support layer called by generated component bindings.
//
// Generated glue code uses this package for four things:
//
//	Resource[T]       owning wrapper around a cross-boundary resource handle
//	Realloc/Dealloc   the cabi_realloc allocator shim and its companion free
//	*Lift             conversion of canonical wire values into Go values
//	RunCtorsOnce      guard run at the top of every exported entry point
//
// # Capabilities
//
// Every resource type implements WasmResource, which drops a handle on the
// far side of the boundary. Resources defined by this component additionally
// implement LocalResource, which registers a new handle for a representation
// token and resolves a handle back to its token. Intrinsics are invoked on the
// zero value of the type parameter, so binding types are stateless:
//
//	type Counter struct{}
//
//	func (Counter) Drop(h uint32)             { counterDrop(h) }
//	func (Counter) New(rep uintptr) uint32    { return counterNew(rep) }
//	func (Counter) Rep(h uint32) uintptr      { return counterRep(h) }
//
//	res := rt.NewResource[Counter](&state{})
//	h := res.TakeHandle() // ownership moves to the caller
//
// # Tiers
//
// The build tag wit_unchecked selects the unchecked tier for the whole package.
// In the default checked tier, malformed wire values, sentinel handles, empty
// representation slots and allocator contract violations panic with an
// *errors.Error. In the unchecked tier those checks are compiled out: wire data
// is trusted to have been validated by the component host, and violating that
// trust is undefined behavior. The two tiers are never mixed in one binary.
//
// All panics raised here are process-fatal. They indicate a bug in
// the generated glue or a misbehaving host, not a recoverable condition.
//
// # Exports
//
// On GOOS=wasip1 the package exports cabi_realloc and cabi_free. Build with the
// wit_no_realloc tag to supply a different allocator.
package rt
