package rt

// I32 is the set of Go types lowered to a core i32.
type I32 interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32
}

// I64 is the set of Go types lowered to a core i64.
type I64 interface {
	~int64 | ~uint64 | ~int | ~uint | ~uintptr
}

// AsI32 reinterprets v as an i32. Unsigned values keep their bit pattern.
func AsI32[V I32](v V) int32 {
	return int32(v)
}

// AsI64 reinterprets v as an i64. Unsigned values keep their bit pattern.
func AsI64[V I64](v V) int64 {
	return int64(v)
}

func AsF32[V ~float32](v V) float32 {
	return float32(v)
}

func AsF64[V ~float64](v V) float64 {
	return float64(v)
}

// BoolAsI32 lowers a bool to 0 or 1.
func BoolAsI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
