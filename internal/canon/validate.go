package canon

import (
	"unicode/utf8"

	"github.com/wippyai/wit-bindgen-go/errors"
)

const (
	MaxScalar     = 0x10FFFF
	SurrogateLow  = 0xD800
	SurrogateHigh = 0xDFFF
)

// ValidChar rejects surrogates (0xD800-0xDFFF) and values above 0x10FFFF.
func ValidChar(code uint32) bool {
	if code >= SurrogateLow && code <= SurrogateHigh {
		return false
	}
	return code <= MaxScalar
}

// Char returns code as a rune, or an error if it is not a Unicode scalar value.
func Char(code uint32) (rune, error) {
	if !ValidChar(code) {
		return 0, errors.InvalidChar(code)
	}
	return rune(code), nil
}

// Bool accepts only 0 and 1.
func Bool(v uint8) (bool, error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.InvalidBool(v)
	}
}

// String validates data as UTF-8 and copies it into a Go string.
func String(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.InvalidUTF8(data)
	}
	return string(data), nil
}

// Discriminant checks disc against a closed set of n cases.
func Discriminant(witType string, disc uint32, n int) error {
	if n <= 0 || disc >= uint32(n) {
		return errors.InvalidDiscriminant(witType, disc, n)
	}
	return nil
}

// DiscriminantSize returns the byte width of a discriminant for n cases.
func DiscriminantSize(n int) uint32 {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}

// PowerOfTwo reports whether align is a non-zero power of two.
func PowerOfTwo(align uintptr) bool {
	return align != 0 && align&(align-1) == 0
}

// AlignTo rounds offset up to align, which must be a power of two.
func AlignTo(offset, align uintptr) uintptr {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
