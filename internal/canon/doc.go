// Package canon validates canonical ABI wire values.
//
// The checks here are shared by the guest runtime, which panics on failure in
// the checked tier, and by host-side lifting, which returns the error.
package canon
