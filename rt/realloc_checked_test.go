//go:build !wit_unchecked

package rt

import (
	"testing"
	"unsafe"

	"github.com/wippyai/wit-bindgen-go/errors"
)

func TestRealloc_NonZeroToZeroRejected(t *testing.T) {
	p := Realloc(nil, 0, 8, 8)
	defer Dealloc(p, 8, 8)

	mustPanic(t, errors.KindContract, func() {
		Realloc(p, 8, 8, 0)
	})
}

func TestRealloc_AllocationFailure(t *testing.T) {
	tests := []struct {
		name        string
		size, align uintptr
	}{
		{"too large", MaxAlloc + 1, 8},
		{"bad alignment", 16, 3},
		{"zero alignment", 16, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustPanic(t, errors.KindAllocation, func() {
				Realloc(nil, 0, tt.align, tt.size)
			})
		})
	}
}

func TestDealloc_Contract(t *testing.T) {
	p := Realloc(nil, 0, 8, 24)

	mustPanic(t, errors.KindContract, func() {
		var x uint64
		Dealloc(unsafe.Pointer(&x), 8, 8)
	})
	mustPanic(t, errors.KindContract, func() {
		Dealloc(p, 24, 3)
	})
	mustPanic(t, errors.KindContract, func() {
		Dealloc(p, 16, 8)
	})
}

func TestRealloc_ForeignOldBlock(t *testing.T) {
	var x [16]byte
	before := Blocks()

	mustPanic(t, errors.KindContract, func() {
		Realloc(unsafe.Pointer(&x[0]), 16, 8, 32)
	})
	if got := Blocks(); got != before {
		t.Errorf("Blocks = %d after rejected realloc, want %d", got, before)
	}
}

func TestRealloc_OldLenMismatch(t *testing.T) {
	p := Realloc(nil, 0, 8, 8)
	defer Dealloc(p, 8, 8)
	before := Blocks()

	tests := []struct {
		name   string
		oldLen uintptr
	}{
		{"longer", 64},
		{"shorter", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustPanic(t, errors.KindContract, func() {
				Realloc(p, tt.oldLen, 8, 128)
			})
			if got := Blocks(); got != before {
				t.Errorf("Blocks = %d after rejected realloc, want %d", got, before)
			}
		})
	}
}
