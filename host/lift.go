package host

import (
	"math"

	witbindgen "github.com/wippyai/wit-bindgen-go"
	"github.com/wippyai/wit-bindgen-go/errors"
	"github.com/wippyai/wit-bindgen-go/internal/canon"
	"github.com/wippyai/wit-bindgen-go/resource"
	"go.bytecodealliance.org/wit"
)

// MaxStringSize caps LiftString reads.
const MaxStringSize = 1 << 28

// LiftFlat lifts a value passed as a single core value. Integers take the
// low bits of the core value, floats have NaN payloads canonicalized, and
// bool, char and enum are validated. Strings and aggregates that span more
// than one core value return KindUnsupported.
func LiftFlat(t wit.Type, flat uint64) (any, error) {
	switch t := t.(type) {
	case wit.Bool:
		if v := uint32(flat); v <= 1 {
			return v == 1, nil
		}
		return nil, errors.New(errors.PhaseLift, errors.KindInvalidBool).
			WitType("bool").
			Value(uint32(flat)).
			Detail("bool must be 0 or 1, got %d", uint32(flat)).
			Build()
	case wit.U8:
		return uint8(flat), nil
	case wit.S8:
		return int8(flat), nil
	case wit.U16:
		return uint16(flat), nil
	case wit.S16:
		return int16(flat), nil
	case wit.U32:
		return uint32(flat), nil
	case wit.S32:
		return int32(flat), nil
	case wit.U64:
		return flat, nil
	case wit.S64:
		return int64(flat), nil
	case wit.F32:
		return canon.F32(uint32(flat)), nil
	case wit.F64:
		return canon.F64(flat), nil
	case wit.Char:
		r, err := canon.Char(uint32(flat))
		if err != nil {
			return nil, err
		}
		return r, nil
	case *wit.TypeDef:
		return liftTypeDef(t, flat)
	default:
		return nil, errors.New(errors.PhaseLift, errors.KindUnsupported).
			Detail("%T is not a single core value", t).
			Build()
	}
}

func liftTypeDef(t *wit.TypeDef, flat uint64) (any, error) {
	switch kind := t.Kind.(type) {
	case *wit.Enum:
		disc := uint32(flat)
		if err := canon.Discriminant(typeName(t, "enum"), disc, len(kind.Cases)); err != nil {
			return nil, err
		}
		return kind.Cases[disc].Name, nil
	case *wit.Flags:
		n := len(kind.Flags)
		if n > 32 {
			return nil, errors.Unsupported(errors.PhaseLift, "flags with more than 32 members")
		}
		if n == 32 {
			return uint32(flat), nil
		}
		return uint32(flat) & (1<<n - 1), nil
	case *wit.Own, *wit.Borrow:
		h := resource.Handle(uint32(flat))
		if h == resource.Sentinel || h == 0 {
			return nil, errors.InvalidHandle(uint32(h), "is not a live handle")
		}
		return h, nil
	case wit.Type:
		return LiftFlat(kind, flat)
	default:
		return nil, errors.New(errors.PhaseLift, errors.KindUnsupported).
			WitType(typeName(t, "typedef")).
			Detail("%T is not a single core value", kind).
			Build()
	}
}

func typeName(t *wit.TypeDef, fallback string) string {
	if t.Name != nil {
		return *t.Name
	}
	return fallback
}

// LiftString reads length bytes of guest text at ptr and validates them as
// UTF-8. The result is a copy and stays valid after the memory changes.
func LiftString(mem witbindgen.Memory, ptr, length uint32) (string, error) {
	if length == 0 {
		return "", nil
	}
	if length > MaxStringSize {
		return "", errors.New(errors.PhaseLift, errors.KindOutOfBounds).
			WitType("string").
			Detail("string size %d exceeds maximum %d", length, MaxStringSize).
			Build()
	}
	if uint64(ptr)+uint64(length) > math.MaxUint32 {
		return "", errors.OutOfBounds(errors.PhaseLift, ptr, length)
	}
	data, err := mem.Read(ptr, length)
	if err != nil {
		return "", err
	}
	return canon.String(data)
}
