package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/wit-bindgen-go/errors"
	"github.com/wippyai/wit-bindgen-go/host"
)

type guest struct {
	runtime wazero.Runtime
	mod     api.Module
}

func (g *guest) Close(ctx context.Context) error {
	return g.runtime.Close(ctx)
}

// load instantiates a reactor or library module with WASI preview1 available
// and runs _initialize when the module exports it.
func load(ctx context.Context, data []byte, log *zap.Logger) (*guest, error) {
	r := wazero.NewRuntime(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		r.Close(ctx)
		return nil, errors.Load("instantiate WASI", err)
	}

	compiled, err := r.CompileModule(ctx, data)
	if err != nil {
		r.Close(ctx)
		return nil, errors.Load("compile", err)
	}

	for _, imp := range compiled.ImportedFunctions() {
		mod, name, _ := imp.Import()
		log.Debug("import", zap.String("module", mod), zap.String("name", name))
	}

	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithStartFunctions())
	if err != nil {
		r.Close(ctx)
		return nil, errors.Load("instantiate", err)
	}

	if initFn := mod.ExportedFunction("_initialize"); initFn != nil {
		if _, err := initFn.Call(ctx); err != nil {
			r.Close(ctx)
			return nil, errors.Load("_initialize", err)
		}
		log.Debug("ran _initialize")
	}

	return &guest{runtime: r, mod: mod}, nil
}

// Row is one request of the policy table and what the guest returned.
// Advisory rows are reported but never fail the check.
type Row struct {
	Err      error
	Name     string
	Want     string
	OldPtr   uint32
	OldLen   uint32
	Align    uint32
	NewLen   uint32
	Ptr      uint32
	OK       bool
	Advisory bool
}

// Report collects the outcome of checkAllocator.
type Report struct {
	Rows      []Row
	HasFree   bool
	HasMemory bool
	Preserved bool
}

// Failed reports whether any row deviated from the policy.
func (r *Report) Failed() bool {
	for _, row := range r.Rows {
		if !row.OK && !row.Advisory {
			return true
		}
	}
	return r.HasMemory && !r.Preserved
}

func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "cabi_free: %v\n\n", r.HasFree)
	for _, row := range r.Rows {
		status := "ok"
		switch {
		case row.OK:
		case row.Advisory:
			status = "warn"
		default:
			status = "FAIL"
		}
		fmt.Fprintf(w, "  %-4s %-22s cabi_realloc(%d, %d, %d, %d)", status, row.Name,
			row.OldPtr, row.OldLen, row.Align, row.NewLen)
		if row.Err != nil {
			fmt.Fprintf(w, " -> error: %v", row.Err)
		} else {
			fmt.Fprintf(w, " -> %d", row.Ptr)
		}
		fmt.Fprintf(w, "  (want %s)\n", row.Want)
	}
	if r.HasMemory {
		fmt.Fprintf(w, "\ncontents preserved on grow: %v\n", r.Preserved)
	}
}

// checkAllocator walks the policy table: zero-size request, fresh
// allocation and growth of that block go through host.Allocator. Shrinking
// the grown block to zero is a caller contract violation the host never
// sends, so that row calls the raw export and only advises: a guest should
// trap or hand back align.
func checkAllocator(ctx context.Context, mod api.Module, align, size uint32) (*Report, error) {
	if size == 0 {
		return nil, errors.New(errors.PhaseAlloc, errors.KindInvalidData).
			Detail("allocation size must be non-zero").
			Build()
	}

	a, err := host.FindAllocator(mod)
	if err != nil {
		return nil, err
	}
	a = a.WithContext(ctx)
	mem := host.WrapMemory(mod.Memory())

	report := &Report{HasFree: a.HasFree(), HasMemory: mem != nil}

	zero := Row{Name: "zero-size", Align: align, Want: fmt.Sprintf("%d", align)}
	zero.Ptr, zero.Err = a.Call(ctx, 0, 0, align, 0)
	zero.OK = zero.Err == nil && zero.Ptr == align
	report.Rows = append(report.Rows, zero)

	fresh := Row{Name: "fresh allocation", Align: align, NewLen: size, Want: "aligned block"}
	fresh.Ptr, fresh.Err = a.Call(ctx, 0, 0, align, size)
	fresh.OK = fresh.Err == nil
	report.Rows = append(report.Rows, fresh)
	if !fresh.OK {
		return report, nil
	}

	pattern := bytes.Repeat([]byte{0xA5}, int(size))
	if mem != nil {
		if err := mem.Write(fresh.Ptr, pattern); err != nil {
			return nil, err
		}
	}

	grow := Row{Name: "grow", OldPtr: fresh.Ptr, OldLen: size, Align: align, NewLen: 2 * size, Want: "aligned block"}
	grow.Ptr, grow.Err = a.Call(ctx, fresh.Ptr, size, align, 2*size)
	grow.OK = grow.Err == nil
	report.Rows = append(report.Rows, grow)
	if !grow.OK {
		return report, nil
	}

	if mem != nil {
		got, err := mem.Read(grow.Ptr, size)
		if err != nil {
			return nil, err
		}
		report.Preserved = bytes.Equal(got, pattern)
	}

	shrink := Row{
		Name:     "shrink to zero",
		OldPtr:   grow.Ptr,
		OldLen:   2 * size,
		Align:    align,
		Want:     fmt.Sprintf("trap or %d", align),
		Advisory: true,
	}
	results, err := mod.ExportedFunction(host.CabiRealloc).Call(ctx, uint64(grow.Ptr), uint64(2*size), uint64(align), 0)
	if err != nil {
		shrink.Err = err
		shrink.OK = true
		a.Free(grow.Ptr, 2*size, align)
	} else {
		shrink.Ptr = uint32(results[0])
		shrink.OK = shrink.Ptr == align
	}
	report.Rows = append(report.Rows, shrink)
	return report, nil
}
