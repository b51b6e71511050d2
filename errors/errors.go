package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLift     Phase = "lift"     // wire value to Go value
	PhaseAlloc    Phase = "alloc"    // cabi_realloc and dealloc
	PhaseResource Phase = "resource" // handle and slot lifecycle
	PhaseInit     Phase = "init"     // constructor guard
	PhaseHost     Phase = "host"     // host-side boundary wiring
	PhaseLoad     Phase = "load"     // module loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidUTF8       Kind = "invalid_utf8"
	KindInvalidChar       Kind = "invalid_char"
	KindInvalidBool       Kind = "invalid_bool"
	KindInvalidEnum       Kind = "invalid_enum"
	KindAllocation        Kind = "allocation"
	KindContract          Kind = "contract"
	KindSentinelHandle    Kind = "sentinel_handle"
	KindEmptySlot         Kind = "empty_slot"
	KindUnknownRep        Kind = "unknown_rep"
	KindInvalidHandle     Kind = "invalid_handle"
	KindOutstandingBorrow Kind = "outstanding_borrow"
	KindClosed            Kind = "closed"
	KindNotFound          Kind = "not_found"
	KindSignature         Kind = "signature"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindUnsupported       Kind = "unsupported"
	KindAlreadyRun        Kind = "already_run"
	KindInvalidData       Kind = "invalid_data"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	WitType string
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.WitType != "" {
		b.WriteString(": WIT type ")
		b.WriteString(e.WitType)
	}

	if e.Detail != "" {
		if e.WitType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// WitType sets the WIT type name
func (b *Builder) WitType(t string) *Builder {
	b.err.WitType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:   PhaseLift,
		Kind:    KindInvalidUTF8,
		WitType: "string",
		Detail:  fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidChar creates an error for a code point that is not a Unicode scalar value
func InvalidChar(code uint32) *Error {
	return &Error{
		Phase:   PhaseLift,
		Kind:    KindInvalidChar,
		WitType: "char",
		Detail:  fmt.Sprintf("invalid Unicode scalar value: 0x%X", code),
		Value:   code,
	}
}

// InvalidBool creates an error for a bool byte other than 0 or 1
func InvalidBool(v uint8) *Error {
	return &Error{
		Phase:   PhaseLift,
		Kind:    KindInvalidBool,
		WitType: "bool",
		Detail:  fmt.Sprintf("invalid bool discriminant %d", v),
		Value:   v,
	}
}

// InvalidDiscriminant creates an invalid discriminant error for variants/enums
func InvalidDiscriminant(witType string, disc uint32, cases int) *Error {
	return &Error{
		Phase:   PhaseLift,
		Kind:    KindInvalidEnum,
		WitType: witType,
		Detail:  fmt.Sprintf("invalid enum discriminant %d (%d cases)", disc, cases),
		Value:   disc,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size, align uintptr) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// Contract creates a caller contract violation error
func Contract(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindContract,
		Detail: detail,
	}
}

// SentinelHandle creates an error for a handle that equals the "no handle" sentinel
func SentinelHandle(op string) *Error {
	return &Error{
		Phase:  PhaseResource,
		Kind:   KindSentinelHandle,
		Detail: fmt.Sprintf("%s: handle is the sentinel (already taken)", op),
	}
}

// EmptySlot creates an error for access to a representation slot whose value was taken back
func EmptySlot(rep uintptr) *Error {
	return &Error{
		Phase:  PhaseResource,
		Kind:   KindEmptySlot,
		Detail: fmt.Sprintf("representation 0x%x already taken back", rep),
		Value:  rep,
	}
}

// UnknownRep creates an error for a representation token that was never registered
func UnknownRep(rep uintptr) *Error {
	return &Error{
		Phase:  PhaseResource,
		Kind:   KindUnknownRep,
		Detail: fmt.Sprintf("representation 0x%x is not registered", rep),
		Value:  rep,
	}
}

// InvalidHandle creates an error for a handle not present in a table
func InvalidHandle(handle uint32, detail string) *Error {
	return &Error{
		Phase:  PhaseResource,
		Kind:   KindInvalidHandle,
		Detail: fmt.Sprintf("handle %d %s", handle, detail),
		Value:  handle,
	}
}

// OutstandingBorrow creates an error for a drop attempted while borrows are active
func OutstandingBorrow(handle uint32, borrows int32) *Error {
	return &Error{
		Phase:  PhaseResource,
		Kind:   KindOutstandingBorrow,
		Detail: fmt.Sprintf("handle %d has %d active borrows", handle, borrows),
		Value:  handle,
	}
}

// OutOfBounds creates an out of bounds memory access error
func OutOfBounds(phase Phase, offset, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("memory access out of bounds: offset=%d, length=%d", offset, length),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Signature creates an error for an export whose core signature differs from the expected one
func Signature(name, want, got string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindSignature,
		Detail: fmt.Sprintf("%s: want %s, got %s", name, want, got),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
