package rt

import (
	"sync"
	"unsafe"

	"github.com/wippyai/wit-bindgen-go/errors"
	"github.com/wippyai/wit-bindgen-go/internal/canon"
)

// MaxAlloc bounds a single allocation request.
const MaxAlloc = 1 << 30

const wordSize = 8

// block is a live allocation. buf keeps the backing array reachable while
// the boundary holds only its address.
type block struct {
	buf  []uint64
	size uintptr
}

var blocks = struct {
	live map[uintptr]block
	mu   sync.Mutex
}{live: make(map[uintptr]block)}

// Realloc implements the canonical ABI realloc contract:
//
//	old_len  new_len  result
//	0        0        align itself, a non-dereferenceable sentinel
//	0        >0       fresh block of new_len bytes at align
//	>0       >0       new block holding min(old_len, new_len) old bytes
//	>0       0        caller contract violation, checked tier only
//
// Failure to allocate is fatal: the checked tier reports size and alignment,
// the unchecked tier aborts without formatting.
func Realloc(oldPtr unsafe.Pointer, oldLen, align, newLen uintptr) unsafe.Pointer {
	if oldLen == 0 {
		if newLen == 0 {
			return unsafe.Add(unsafe.Pointer(nil), align)
		}
		return alloc(newLen, align)
	}
	if checked {
		if newLen == 0 {
			fail(errors.Contract(errors.PhaseAlloc, "non-zero old_len requires non-zero new_len"))
		}
		blocks.mu.Lock()
		b, ok := blocks.live[uintptr(oldPtr)]
		blocks.mu.Unlock()
		checkBlock(b, ok, oldLen)
	}

	ptr := alloc(newLen, align)
	n := min(oldLen, newLen)
	copy(unsafe.Slice((*byte)(ptr), n), unsafe.Slice((*byte)(oldPtr), n))
	release(oldPtr, oldLen)
	return ptr
}

// Dealloc releases a block obtained from Realloc. size and align must be the
// values the block was allocated with; the shim does not track them for the
// caller. A zero size is a no-op, mirroring the zero-length sentinel.
func Dealloc(ptr unsafe.Pointer, size, align uintptr) {
	if size == 0 {
		return
	}
	if checked && !canon.PowerOfTwo(align) {
		fail(errors.Contract(errors.PhaseAlloc, "dealloc with invalid alignment"))
	}
	release(ptr, size)
}

// Blocks returns the number of live allocations.
func Blocks() int {
	blocks.mu.Lock()
	defer blocks.mu.Unlock()
	return len(blocks.live)
}

func alloc(size, align uintptr) unsafe.Pointer {
	if !canon.PowerOfTwo(align) || size > MaxAlloc || align > MaxAlloc {
		allocFailed(size, align)
	}

	// Slices of uint64 are word aligned; larger alignments over-allocate and
	// round the address up.
	var pad uintptr
	if align > wordSize {
		pad = align - wordSize
	}
	buf := make([]uint64, (size+pad+wordSize-1)/wordSize)
	base := unsafe.Pointer(unsafe.SliceData(buf))
	ptr := unsafe.Add(base, canon.AlignTo(uintptr(base), align)-uintptr(base))

	blocks.mu.Lock()
	blocks.live[uintptr(ptr)] = block{buf: buf, size: size}
	blocks.mu.Unlock()
	return ptr
}

func release(ptr unsafe.Pointer, size uintptr) {
	blocks.mu.Lock()
	b, ok := blocks.live[uintptr(ptr)]
	delete(blocks.live, uintptr(ptr))
	blocks.mu.Unlock()

	if checked {
		checkBlock(b, ok, size)
	}
}

// checkBlock fails unless the registry held a block of exactly size bytes.
func checkBlock(b block, ok bool, size uintptr) {
	if !ok {
		fail(errors.Contract(errors.PhaseAlloc, "pointer was not allocated by cabi_realloc"))
	}
	if b.size != size {
		fail(errors.New(errors.PhaseAlloc, errors.KindContract).
			Value(size).
			Detail("block of %d bytes passed as %d bytes", b.size, size).
			Build())
	}
}

func allocFailed(size, align uintptr) {
	if checked {
		fail(errors.AllocationFailed(size, align))
	}
	abort()
}
