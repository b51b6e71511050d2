// Package errors provides structured error types for the bindings runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending value, the WIT type name when one applies,
// a human-readable detail and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLift, errors.KindInvalidBool).
//		WitType("bool").
//		Value(v).
//		Detail("invalid bool discriminant %d", v).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidUTF8(data)
//	err := errors.AllocationFailed(size, align)
//
// Guest-side code in package rt panics with these values, since every contract
// violation there is fatal. Host-side code returns them. Both support errors.Is/As.
package errors
