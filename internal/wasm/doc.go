// Package wasm encodes core WebAssembly modules.
//
// It covers the sections the canonical ABI boundary needs: types, function
// imports, functions, one memory, globals, exports and code. Function bodies
// are raw bytecode built from the opcode constants:
//
//	m := &wasm.Module{
//	    Types: []wasm.FuncType{{Results: []wasm.ValType{wasm.ValI32}}},
//	    Funcs: []uint32{0},
//	    Exports: []wasm.Export{{Name: "answer", Kind: wasm.KindFunc, Idx: 0}},
//	    Code: []wasm.FuncBody{{Code: []byte{wasm.OpI32Const, 42, wasm.OpEnd}}},
//	}
//	bin := m.Encode()
package wasm
