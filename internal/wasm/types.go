package wasm

import "slices"

// ValType is a core value type encoding.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	default:
		return "unknown"
	}
}

// Module is a core module in encoding order. Imported functions come first
// in the function index space, followed by Funcs.
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []uint32 // type index per defined function
	Memories []Limits
	Globals  []Global
	Exports  []Export
	Code     []FuncBody
}

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is a function import.
type Import struct {
	Module  string
	Name    string
	TypeIdx uint32
}

// Limits of a memory in pages.
type Limits struct {
	Max *uint32
	Min uint32
}

type Global struct {
	Init    []byte // constant expression including OpEnd
	Type    ValType
	Mutable bool
}

// Export names a function, memory or global.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// FuncBody is a function's locals and bytecode, which must end in OpEnd.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte
}

// LocalEntry declares Count locals of one type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// NumImportedFuncs returns the index of the first defined function.
func (m *Module) NumImportedFuncs() uint32 {
	return uint32(len(m.Imports))
}

// AddType returns the index of ft, appending it when not already present.
func (m *Module) AddType(ft FuncType) uint32 {
	for i, t := range m.Types {
		if typesEqual(t, ft) {
			return uint32(i)
		}
	}
	m.Types = append(m.Types, ft)
	return uint32(len(m.Types) - 1)
}

func typesEqual(a, b FuncType) bool {
	return slices.Equal(a.Params, b.Params) && slices.Equal(a.Results, b.Results)
}
