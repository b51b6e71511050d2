//go:build wasip1 && !wit_no_realloc

package rt

import "unsafe"

// The component host locates these by name; the names and signatures are
// fixed by the canonical ABI.

//go:wasmexport cabi_realloc
func cabiRealloc(oldPtr unsafe.Pointer, oldLen, align, newLen uintptr) unsafe.Pointer {
	return Realloc(oldPtr, oldLen, align, newLen)
}

//go:wasmexport cabi_free
func cabiFree(ptr unsafe.Pointer, size, align uintptr) {
	Dealloc(ptr, size, align)
}
