// Package host runs the host side of the canonical ABI boundary on wazero.
//
// Bind instantiates a host module with the resource intrinsics a guest
// imports for each exported resource type, backed by resource tables.
// FindAllocator resolves a guest's cabi_realloc export and calls it under the
// allocator policy table. LiftFlat and LiftString turn core values and guest
// memory into Go values, returning structured errors where the guest runtime
// would trap.
package host
