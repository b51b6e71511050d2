package host

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/wit-bindgen-go/errors"
	"github.com/wippyai/wit-bindgen-go/internal/wasmtest"
)

type dtorLog struct {
	reps []uintptr
	mu   sync.Mutex
}

func (l *dtorLog) record(_ context.Context, rep uintptr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reps = append(l.reps, rep)
}

func (l *dtorLog) get() []uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.reps)
}

// bindGuest binds types and instantiates a guest that imports their
// intrinsics from the boundary module.
func bindGuest(t *testing.T, opts Options, guest wasmtest.Resources, types ...ResourceType) (context.Context, *Boundary, api.Module) {
	t.Helper()
	ctx, r := newRuntime(t)
	b, err := Bind(ctx, r, opts, types...)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	t.Cleanup(func() { b.Close(ctx) })

	guest.Module = b.Module().Name()
	for _, rt := range types {
		guest.Types = append(guest.Types, rt.Name)
	}
	return ctx, b, instantiate(t, ctx, r, guest.Build())
}

func call(t *testing.T, ctx context.Context, mod api.Module, name string, args ...uint64) []uint64 {
	t.Helper()
	res, err := callErr(ctx, mod, name, args...)
	if err != nil {
		t.Fatalf("%s%v: %v", name, args, err)
	}
	return res
}

func callErr(ctx context.Context, mod api.Module, name string, args ...uint64) ([]uint64, error) {
	fn := mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseHost, "export", name)
	}
	return fn.Call(ctx, args...)
}

func TestBind_NewRepDrop(t *testing.T) {
	var log dtorLog
	ctx, b, guest := bindGuest(t, Options{}, wasmtest.Resources{},
		ResourceType{Name: "counter", Dtor: log.record})

	if got := b.Module().Name(); got != DefaultModuleName {
		t.Errorf("module name = %q, want %q", got, DefaultModuleName)
	}

	h := call(t, ctx, guest, "new:counter", 42)[0]
	if h == 0 || uint32(h) == ^uint32(0) {
		t.Fatalf("[resource-new] returned %d", h)
	}
	if rep := call(t, ctx, guest, "rep:counter", h)[0]; rep != 42 {
		t.Errorf("[resource-rep] = %d, want 42", rep)
	}

	table, ok := b.Table("counter")
	if !ok {
		t.Fatal("Table(counter) missing")
	}
	if table.Len() != 1 {
		t.Errorf("table.Len = %d after new", table.Len())
	}

	call(t, ctx, guest, "drop:counter", h)
	if got := log.get(); !slices.Equal(got, []uintptr{42}) {
		t.Errorf("dtor reps = %v, want [42]", got)
	}
	if table.Len() != 0 {
		t.Errorf("table.Len = %d after drop", table.Len())
	}
}

func TestBind_DistinctHandles(t *testing.T) {
	ctx, _, guest := bindGuest(t, Options{}, wasmtest.Resources{}, ResourceType{Name: "counter"})

	seen := map[uint64]bool{}
	for rep := uint64(1); rep <= 8; rep++ {
		h := call(t, ctx, guest, "new:counter", rep*10)[0]
		if seen[h] {
			t.Fatalf("handle %d issued twice", h)
		}
		seen[h] = true
		if got := call(t, ctx, guest, "rep:counter", h)[0]; got != rep*10 {
			t.Errorf("rep(%d) = %d, want %d", h, got, rep*10)
		}
	}
}

func TestBind_InvalidHandleTraps(t *testing.T) {
	ctx, _, guest := bindGuest(t, Options{}, wasmtest.Resources{}, ResourceType{Name: "counter"})

	if _, err := callErr(ctx, guest, "rep:counter", 9); err == nil {
		t.Error("[resource-rep] of an unissued handle should trap")
	}

	h := call(t, ctx, guest, "new:counter", 1)[0]
	call(t, ctx, guest, "drop:counter", h)
	if _, err := callErr(ctx, guest, "drop:counter", h); err == nil {
		t.Error("second [resource-drop] should trap")
	}
	if _, err := callErr(ctx, guest, "rep:counter", h); err == nil {
		t.Error("[resource-rep] after drop should trap")
	}
}

func TestBind_GuestDtor(t *testing.T) {
	ctx, b, guest := bindGuest(t,
		Options{ModuleName: InterfaceModule("test:files/types")},
		wasmtest.Resources{Dtors: []string{"file"}},
		ResourceType{Name: "file"},
		ResourceType{Name: "dir"},
	)

	if got := b.Module().Name(); got != "[export]test:files/types" {
		t.Errorf("module name = %q", got)
	}
	if got := b.Names(); !slices.Equal(got, []string{"dir", "file"}) {
		t.Errorf("Names = %v", got)
	}
	if err := b.Attach(guest); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	h := call(t, ctx, guest, "new:file", 7)[0]
	call(t, ctx, guest, "drop:file", h)
	if n := global(t, guest, wasmtest.GlobalDtorCalls); n != 1 {
		t.Errorf("guest dtor calls = %d, want 1", n)
	}
	if rep := global(t, guest, wasmtest.GlobalLastDtor); rep != 7 {
		t.Errorf("guest dtor rep = %d, want 7", rep)
	}

	// dir has no [dtor] export; dropping only releases the handle.
	h = call(t, ctx, guest, "new:dir", 3)[0]
	call(t, ctx, guest, "drop:dir", h)
	if n := global(t, guest, wasmtest.GlobalDtorCalls); n != 1 {
		t.Errorf("guest dtor calls = %d after dir drop", n)
	}
}

func TestBind_AttachSignature(t *testing.T) {
	_, b, guest := bindGuest(t, Options{}, wasmtest.Resources{BadDtor: "file"},
		ResourceType{Name: "file"})

	wantKind(t, b.Attach(guest), errors.KindSignature)
}

func TestBind_InvalidTypes(t *testing.T) {
	ctx, r := newRuntime(t)

	_, err := Bind(ctx, r, Options{}, ResourceType{Name: ""})
	wantKind(t, err, errors.KindInvalidData)

	_, err = Bind(ctx, r, Options{}, ResourceType{Name: "a"}, ResourceType{Name: "a"})
	wantKind(t, err, errors.KindInvalidData)
}

func TestBoundary_Close(t *testing.T) {
	var log dtorLog
	ctx, b, guest := bindGuest(t, Options{}, wasmtest.Resources{},
		ResourceType{Name: "counter", Dtor: log.record})

	call(t, ctx, guest, "new:counter", 5)
	call(t, ctx, guest, "new:counter", 6)

	if err := b.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got := log.get()
	slices.Sort(got)
	if !slices.Equal(got, []uintptr{5, 6}) {
		t.Errorf("dtor reps after Close = %v, want [5 6]", got)
	}
}
