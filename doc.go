// Package witbindgen is the runtime support layer for Go bindings generated
// from WIT worlds under the WebAssembly Component Model canonical ABI.
//
// Generated code imports the guest runtime and never deals with the
// boundary directly. The host-side packages let Go programs act as the other
// side of that boundary, either natively in tests or through wazero.
//
// # Packages
//
//	witbindgen/          Root package with Memory and Allocator interfaces
//	├── rt/              Guest runtime: resources, cabi_realloc, lifters, ctors guard
//	├── resource/        Handle tables implementing [resource-new]/[resource-rep]/[resource-drop]
//	├── host/            wazero host modules, cabi_realloc calls, WIT-typed flat lifting
//	├── errors/          Structured error types shared by all packages
//	└── cmd/cabi-probe/  Checks the cabi_realloc export of a core module
//
// # Resources
//
// A generated resource type is a stateless struct whose methods forward to
// the boundary intrinsics:
//
//	type Blob struct{}
//
//	func (Blob) New(rep uintptr) uint32 { return blobNew(uint32(rep)) }
//	func (Blob) Rep(handle uint32) uintptr { return uintptr(blobRep(handle)) }
//	func (Blob) Drop(handle uint32) { blobDrop(handle) }
//
//	r := rt.NewResource[Blob](blobState{data: data})
//	defer r.Drop()
//
// # Checked and Unchecked Builds
//
// By default every lifter validates its input and the allocator and slot
// registry assert their contracts, panicking with an *errors.Error on
// failure. Building with -tags wit_unchecked removes all of these checks at
// once. Invalid input in an unchecked build is undefined behavior.
//
// # Thread Safety
//
// Resource handles are atomic and may be taken from any goroutine. Tables,
// the slot registry and the block registry are mutex-guarded.
package witbindgen
