package rt

import (
	"unsafe"

	"github.com/wippyai/wit-bindgen-go/errors"
	"github.com/wippyai/wit-bindgen-go/internal/canon"
)

// The lifters below trust their input in the unchecked tier. Invalid input
// there is undefined behavior.

// StringLift converts received string bytes to a string. The unchecked tier
// aliases b without copying, so the caller must hand over b and not reuse it.
func StringLift(b []byte) string {
	if checked {
		s, err := canon.String(b)
		if err != nil {
			fail(err)
		}
		return s
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// CharLift converts a code point to a rune, rejecting surrogates and values
// above U+10FFFF.
func CharLift(code uint32) rune {
	if checked {
		r, err := canon.Char(code)
		if err != nil {
			fail(err)
		}
		return r
	}
	return rune(code)
}

// BoolLift converts a bool byte. Only 0 and 1 are valid.
func BoolLift(v uint8) bool {
	if checked {
		b, err := canon.Bool(v)
		if err != nil {
			fail(err)
		}
		return b
	}
	return *(*bool)(unsafe.Pointer(&v))
}

// InvalidEnumDiscriminant is called by generated decoders when a closed
// enumeration or variant carries a tag outside its declared cases. It never
// returns.
func InvalidEnumDiscriminant[T any]() T {
	if checked {
		fail(errors.New(errors.PhaseLift, errors.KindInvalidEnum).
			Detail("invalid enum discriminant").
			Build())
	}
	panic("unreachable")
}

// EnumLift converts a discriminant of an enum with n cases. The range check
// only exists in the checked tier.
func EnumLift[T ~uint8 | ~uint16 | ~uint32](disc uint32, n int) T {
	if checked && disc >= uint32(n) {
		return InvalidEnumDiscriminant[T]()
	}
	return T(disc)
}
