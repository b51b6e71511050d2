package wasmtest

import "github.com/wippyai/wit-bindgen-go/internal/wasm"

// Exported globals of a Resources guest.
const (
	GlobalLastDtor  = "last-dtor"
	GlobalDtorCalls = "dtor-calls"
)

// Resources describes a guest that imports the resource intrinsics of each
// type from Module and re-exports them as "new:<type>", "rep:<type>" and
// "drop:<type>", so tests can drive the boundary through a real import.
type Resources struct {
	Module string
	Types  []string
	// Dtors lists the types given a [dtor] export. Every call stores its
	// rep in last-dtor and increments dtor-calls.
	Dtors []string
	// BadDtor names a type whose [dtor] export has signature (i64)->(i32).
	BadDtor string
}

// Build encodes the guest.
func (r Resources) Build() []byte {
	m := &wasm.Module{
		Globals: []wasm.Global{
			{Type: wasm.ValI32, Mutable: true, Init: wasm.ConstI32(-1)},
			{Type: wasm.ValI32, Mutable: true, Init: wasm.ConstI32(0)},
		},
		Exports: []wasm.Export{
			{Name: GlobalLastDtor, Kind: wasm.KindGlobal, Idx: 0},
			{Name: GlobalDtorCalls, Kind: wasm.KindGlobal, Idx: 1},
		},
	}

	unary := m.AddType(wasm.FuncType{Params: i32, Results: i32})
	sink := m.AddType(wasm.FuncType{Params: i32})

	for _, name := range r.Types {
		m.Imports = append(m.Imports,
			wasm.Import{Module: r.Module, Name: "[resource-new]" + name, TypeIdx: unary},
			wasm.Import{Module: r.Module, Name: "[resource-rep]" + name, TypeIdx: unary},
			wasm.Import{Module: r.Module, Name: "[resource-drop]" + name, TypeIdx: sink},
		)
	}

	for i, name := range r.Types {
		base := uint32(3 * i)
		forward := func(idx uint32) []byte {
			c := []byte{wasm.OpLocalGet, 0, wasm.OpCall}
			c = append(c, wasm.U32(idx)...)
			return append(c, wasm.OpEnd)
		}
		define(m, "new:"+name, wasm.FuncType{Params: i32, Results: i32}, nil, forward(base))
		define(m, "rep:"+name, wasm.FuncType{Params: i32, Results: i32}, nil, forward(base+1))
		define(m, "drop:"+name, wasm.FuncType{Params: i32}, nil, forward(base+2))
	}

	for _, name := range r.Dtors {
		define(m, "[dtor]"+name, wasm.FuncType{Params: i32}, nil, []byte{
			wasm.OpGlobalGet, 1, wasm.OpI32Const, 1, wasm.OpI32Add, wasm.OpGlobalSet, 1,
			wasm.OpLocalGet, 0, wasm.OpGlobalSet, 0,
			wasm.OpEnd,
		})
	}

	if r.BadDtor != "" {
		define(m, "[dtor]"+r.BadDtor, wasm.FuncType{Params: []wasm.ValType{wasm.ValI64}, Results: i32}, nil,
			[]byte{wasm.OpI32Const, 0, wasm.OpEnd})
	}
	return m.Encode()
}
