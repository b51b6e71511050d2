package host

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero/api"
	witbindgen "github.com/wippyai/wit-bindgen-go"
	"github.com/wippyai/wit-bindgen-go/errors"
	"github.com/wippyai/wit-bindgen-go/internal/canon"
	"go.uber.org/zap"
)

// Guest allocator exports.
const (
	CabiRealloc = "cabi_realloc"
	CabiFree    = "cabi_free"
)

var (
	reallocParams  = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}
	reallocResults = []api.ValueType{api.ValueTypeI32}
	freeParams     = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}
)

var _ witbindgen.Reallocator = (*Allocator)(nil)

// Allocator calls a guest's cabi_realloc export.
type Allocator struct {
	ctx     context.Context
	realloc api.Function
	free    api.Function
	mem     api.Memory
	log     *zap.Logger
}

// FindAllocator resolves cabi_realloc in mod and checks its core signature.
// cabi_free is optional; without it Free is a no-op.
func FindAllocator(mod api.Module) (*Allocator, error) {
	defs := mod.ExportedFunctionDefinitions()

	def, ok := defs[CabiRealloc]
	if !ok {
		return nil, errors.NotFound(errors.PhaseHost, "export", CabiRealloc)
	}
	if err := checkSignature(def, reallocParams, reallocResults); err != nil {
		return nil, err
	}

	a := &Allocator{
		ctx:     context.Background(),
		realloc: mod.ExportedFunction(CabiRealloc),
		mem:     mod.Memory(),
		log:     Logger(),
	}

	if def, ok := defs[CabiFree]; ok {
		if err := checkSignature(def, freeParams, nil); err != nil {
			return nil, err
		}
		a.free = mod.ExportedFunction(CabiFree)
	}
	return a, nil
}

// WithContext returns a copy whose Alloc, Free and Realloc calls use ctx.
func (a *Allocator) WithContext(ctx context.Context) *Allocator {
	c := *a
	c.ctx = ctx
	return &c
}

// HasFree reports whether the guest exports cabi_free.
func (a *Allocator) HasFree() bool {
	return a.free != nil
}

// Call invokes cabi_realloc and checks the result against the policy table:
// the pointer is aligned, a (0, 0) request returns align itself, and the
// block fits in memory. Shrinking a live block to zero is rejected before
// the call.
func (a *Allocator) Call(ctx context.Context, oldPtr, oldLen, align, newLen uint32) (uint32, error) {
	if !canon.PowerOfTwo(uintptr(align)) {
		return 0, errors.AllocationFailed(uintptr(newLen), uintptr(align))
	}
	if oldLen > 0 && newLen == 0 {
		return 0, errors.Contract(errors.PhaseAlloc,
			fmt.Sprintf("cabi_realloc(%d, %d, %d, 0) frees a live block; use cabi_free", oldPtr, oldLen, align))
	}

	results, err := a.realloc.Call(ctx, uint64(oldPtr), uint64(oldLen), uint64(align), uint64(newLen))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseAlloc, errors.KindAllocation, err, "cabi_realloc trapped")
	}
	ptr := uint32(results[0])

	if ptr%align != 0 {
		return 0, errors.Contract(errors.PhaseAlloc,
			fmt.Sprintf("cabi_realloc returned %d, not aligned to %d", ptr, align))
	}
	if oldLen == 0 && newLen == 0 && ptr != align {
		return 0, errors.Contract(errors.PhaseAlloc,
			fmt.Sprintf("cabi_realloc(0, 0, %d, 0) returned %d, want %d", align, ptr, align))
	}
	if newLen > 0 {
		if ptr == 0 {
			return 0, errors.AllocationFailed(uintptr(newLen), uintptr(align))
		}
		if a.mem != nil && uint64(ptr)+uint64(newLen) > uint64(a.mem.Size()) {
			return 0, errors.OutOfBounds(errors.PhaseAlloc, ptr, newLen)
		}
	}
	return ptr, nil
}

// Realloc implements witbindgen.Reallocator.
func (a *Allocator) Realloc(oldPtr, oldLen, align, newLen uint32) (uint32, error) {
	return a.Call(a.ctx, oldPtr, oldLen, align, newLen)
}

// Alloc requests a fresh block.
func (a *Allocator) Alloc(size, align uint32) (uint32, error) {
	return a.Call(a.ctx, 0, 0, align, size)
}

// Free releases a block through cabi_free. Failures are logged.
func (a *Allocator) Free(ptr, size, align uint32) {
	if a.free == nil || size == 0 {
		return
	}
	if _, err := a.free.Call(a.ctx, uint64(ptr), uint64(size), uint64(align)); err != nil {
		a.log.Warn("cabi_free failed",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

func checkSignature(def api.FunctionDefinition, params, results []api.ValueType) error {
	if slices.Equal(def.ParamTypes(), params) && slices.Equal(def.ResultTypes(), results) {
		return nil
	}
	return errors.Signature(def.Name(),
		signature(params, results),
		signature(def.ParamTypes(), def.ResultTypes()))
}

func signature(params, results []api.ValueType) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(api.ValueTypeName(p))
	}
	b.WriteString(")->(")
	for i, r := range results {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(api.ValueTypeName(r))
	}
	b.WriteByte(')')
	return b.String()
}
