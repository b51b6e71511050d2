package host

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/wit-bindgen-go/errors"
	"github.com/wippyai/wit-bindgen-go/internal/wasmtest"
)

// memoryModule is a core module that only exports one page of memory.
var memoryModule = wasmtest.Memory()

func newRuntime(t *testing.T) (context.Context, wazero.Runtime) {
	t.Helper()
	ctx := context.Background()
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	t.Cleanup(func() { r.Close(ctx) })
	return ctx, r
}

// instantiate compiles bin as a guest module named "guest".
func instantiate(t *testing.T, ctx context.Context, r wazero.Runtime, bin []byte) api.Module {
	t.Helper()
	mod, err := r.InstantiateWithConfig(ctx, bin, wazero.NewModuleConfig().WithName("guest"))
	if err != nil {
		t.Fatalf("instantiate guest: %v", err)
	}
	return mod
}

// global reads an exported i32 global of mod.
func global(t *testing.T, mod api.Module, name string) uint32 {
	t.Helper()
	g := mod.ExportedGlobal(name)
	if g == nil {
		t.Fatalf("global %q missing", name)
	}
	return uint32(g.Get())
}

func wantKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	if e.Kind != kind {
		t.Fatalf("kind = %s, want %s (%v)", e.Kind, kind, err)
	}
}
