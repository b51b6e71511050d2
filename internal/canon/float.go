package canon

import "math"

const (
	CanonicalNaN32 = 0x7fc00000
	CanonicalNaN64 = 0x7ff8000000000000
)

// F32 replaces any NaN payload with the canonical quiet NaN.
func F32(bits uint32) float32 {
	f := math.Float32frombits(bits)
	if f != f {
		return math.Float32frombits(CanonicalNaN32)
	}
	return f
}

// F64 replaces any NaN payload with the canonical quiet NaN.
func F64(bits uint64) float64 {
	f := math.Float64frombits(bits)
	if f != f {
		return math.Float64frombits(CanonicalNaN64)
	}
	return f
}
