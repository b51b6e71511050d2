package wasmtest

import "github.com/wippyai/wit-bindgen-go/internal/wasm"

// Exported globals of an Allocator guest.
const (
	GlobalReallocCalls = "realloc-calls"
	GlobalFreeCalls    = "free-calls"
)

// HeapBase is the address of the first block a bump allocator returns for
// alignments up to 16.
const HeapBase = 16

var (
	i32   = []wasm.ValType{wasm.ValI32}
	i32x3 = []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32}
	i32x4 = []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32, wasm.ValI32}
)

// Allocator describes a guest with one page of memory and a cabi_realloc
// export. The zero value is a correct bump allocator that copies the old
// block on reallocation and returns align for zero-size requests.
type Allocator struct {
	// Result, when set, is returned for every non-zero request.
	Result *uint32
	// Zero, when set, is returned for zero-size requests instead of align.
	Zero *uint32
	// Free exports cabi_free, which counts its calls.
	Free bool
	// BadRealloc exports cabi_realloc as (i32)->(i32).
	BadRealloc bool
	// BadFree exports cabi_free as (i32)->(i32).
	BadFree bool
}

// Ptr returns a pointer to v, for the Result and Zero fields.
func Ptr(v uint32) *uint32 {
	return &v
}

// Build encodes the guest.
func (a Allocator) Build() []byte {
	m := &wasm.Module{
		Memories: []wasm.Limits{{Min: 1}},
		Globals: []wasm.Global{
			{Type: wasm.ValI32, Mutable: true, Init: wasm.ConstI32(HeapBase)}, // next free byte
			{Type: wasm.ValI32, Mutable: true, Init: wasm.ConstI32(0)},
			{Type: wasm.ValI32, Mutable: true, Init: wasm.ConstI32(0)},
		},
		Exports: []wasm.Export{
			{Name: "memory", Kind: wasm.KindMemory, Idx: 0},
			{Name: GlobalReallocCalls, Kind: wasm.KindGlobal, Idx: 1},
			{Name: GlobalFreeCalls, Kind: wasm.KindGlobal, Idx: 2},
		},
	}

	if a.BadRealloc {
		define(m, "cabi_realloc", wasm.FuncType{Params: i32, Results: i32}, nil,
			[]byte{wasm.OpI32Const, 0, wasm.OpEnd})
	} else {
		define(m, "cabi_realloc", wasm.FuncType{Params: i32x4, Results: i32},
			[]wasm.LocalEntry{{Count: 1, ValType: wasm.ValI32}}, a.reallocCode())
	}

	switch {
	case a.BadFree:
		define(m, "cabi_free", wasm.FuncType{Params: i32, Results: i32}, nil,
			[]byte{wasm.OpI32Const, 0, wasm.OpEnd})
	case a.Free:
		define(m, "cabi_free", wasm.FuncType{Params: i32x3}, nil, []byte{
			wasm.OpGlobalGet, 2, wasm.OpI32Const, 1, wasm.OpI32Add, wasm.OpGlobalSet, 2,
			wasm.OpEnd,
		})
	}
	return m.Encode()
}

// reallocCode takes (old_ptr, old_len, align, new_len) in locals 0-3 and
// uses local 4 for the result.
func (a Allocator) reallocCode() []byte {
	c := []byte{
		wasm.OpGlobalGet, 1, wasm.OpI32Const, 1, wasm.OpI32Add, wasm.OpGlobalSet, 1,
		wasm.OpLocalGet, 3, wasm.OpI32Eqz, wasm.OpIf, wasm.BlockTypeEmpty,
	}
	if a.Zero != nil {
		c = append(c, wasm.OpI32Const)
		c = append(c, wasm.I32(int32(*a.Zero))...)
	} else {
		c = append(c, wasm.OpLocalGet, 2)
	}
	c = append(c, wasm.OpReturn, wasm.OpEnd)

	if a.Result != nil {
		c = append(c, wasm.OpI32Const)
		c = append(c, wasm.I32(int32(*a.Result))...)
		return append(c, wasm.OpEnd)
	}

	return append(c,
		// ptr = (next + align - 1) & -align
		wasm.OpGlobalGet, 0, wasm.OpLocalGet, 2, wasm.OpI32Add,
		wasm.OpI32Const, 1, wasm.OpI32Sub,
		wasm.OpI32Const, 0, wasm.OpLocalGet, 2, wasm.OpI32Sub,
		wasm.OpI32And, wasm.OpLocalSet, 4,
		// next = ptr + new_len
		wasm.OpLocalGet, 4, wasm.OpLocalGet, 3, wasm.OpI32Add, wasm.OpGlobalSet, 0,
		// memory.copy(ptr, old_ptr, min(old_len, new_len))
		wasm.OpLocalGet, 4, wasm.OpLocalGet, 0,
		wasm.OpLocalGet, 1, wasm.OpLocalGet, 3,
		wasm.OpLocalGet, 1, wasm.OpLocalGet, 3, wasm.OpI32LtU, wasm.OpSelect,
		wasm.OpPrefixFC, wasm.OpMemoryCopyFC, 0, 0,
		wasm.OpLocalGet, 4,
		wasm.OpEnd,
	)
}

// Memory returns a module that only exports one page of memory.
func Memory() []byte {
	m := &wasm.Module{
		Memories: []wasm.Limits{{Min: 1}},
		Exports:  []wasm.Export{{Name: "memory", Kind: wasm.KindMemory, Idx: 0}},
	}
	return m.Encode()
}

// define appends a function and exports it under name.
func define(m *wasm.Module, name string, ft wasm.FuncType, locals []wasm.LocalEntry, code []byte) uint32 {
	idx := m.NumImportedFuncs() + uint32(len(m.Funcs))
	m.Funcs = append(m.Funcs, m.AddType(ft))
	m.Code = append(m.Code, wasm.FuncBody{Locals: locals, Code: code})
	m.Exports = append(m.Exports, wasm.Export{Name: name, Kind: wasm.KindFunc, Idx: idx})
	return idx
}
