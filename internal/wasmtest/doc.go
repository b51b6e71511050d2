// Package wasmtest builds core modules that stand in for compiled guests in
// tests of the host boundary: allocators with configurable misbehavior and
// modules that import resource intrinsics and export destructors.
package wasmtest
