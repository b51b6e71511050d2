package host

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/wit-bindgen-go/errors"
	"github.com/wippyai/wit-bindgen-go/resource"
	"go.uber.org/zap"
)

// Intrinsic name prefixes, followed by the resource type name.
const (
	PrefixNew  = "[resource-new]"
	PrefixRep  = "[resource-rep]"
	PrefixDrop = "[resource-drop]"
	PrefixDtor = "[dtor]"
)

var i32 = []api.ValueType{api.ValueTypeI32}

// ResourceType is a resource exported by the guest.
type ResourceType struct {
	Name string

	// Dtor runs on the rep when the last handle is dropped. When nil the
	// guest's [dtor]<name> export is called once Attach has resolved it.
	Dtor resource.Destructor
}

// Boundary is the host module serving resource intrinsics to one guest.
type Boundary struct {
	module api.Module
	store  *resource.Store
	log    *zap.Logger
	dtors  map[string]api.Function
	types  []ResourceType
	mu     sync.RWMutex
}

// Bind instantiates the intrinsics host module in r. It must run before the
// guest is instantiated, since the guest imports from it.
func Bind(ctx context.Context, r wazero.Runtime, opts Options, types ...ResourceType) (*Boundary, error) {
	opts = opts.withDefaults()

	b := &Boundary{
		store: resource.NewStore(),
		log:   opts.Logger.With(zap.String("module", opts.ModuleName)),
		dtors: make(map[string]api.Function),
		types: types,
	}

	seen := make(map[string]bool, len(types))
	builder := r.NewHostModuleBuilder(opts.ModuleName)
	for _, rt := range types {
		if rt.Name == "" {
			return nil, errors.New(errors.PhaseHost, errors.KindInvalidData).
				Detail("resource type without a name").
				Build()
		}
		if seen[rt.Name] {
			return nil, errors.New(errors.PhaseHost, errors.KindInvalidData).
				Detail("resource type %q bound twice", rt.Name).
				Build()
		}
		seen[rt.Name] = true

		table := b.store.Table(rt.Name, b.destructor(rt))

		builder.NewFunctionBuilder().
			WithGoModuleFunction(newFunc(table), i32, i32).
			Export(PrefixNew + rt.Name)
		builder.NewFunctionBuilder().
			WithGoModuleFunction(repFunc(table), i32, i32).
			Export(PrefixRep + rt.Name)
		builder.NewFunctionBuilder().
			WithGoModuleFunction(dropFunc(table), i32, nil).
			Export(PrefixDrop + rt.Name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "instantiate "+opts.ModuleName)
	}
	b.module = mod
	b.log.Debug("resource intrinsics bound", zap.Int("types", len(types)))
	return b, nil
}

// Errors from the table panic and wazero turns them into a trap of the
// calling guest function.
func newFunc(t *resource.Table) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		h, err := t.New(uintptr(uint32(stack[0])))
		if err != nil {
			panic(err)
		}
		stack[0] = uint64(h)
	}
}

func repFunc(t *resource.Table) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		rep, err := t.Rep(resource.Handle(uint32(stack[0])))
		if err != nil {
			panic(err)
		}
		stack[0] = uint64(uint32(rep))
	}
}

func dropFunc(t *resource.Table) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		if err := t.Drop(ctx, resource.Handle(uint32(stack[0]))); err != nil {
			panic(err)
		}
	}
}

func (b *Boundary) destructor(rt ResourceType) resource.Destructor {
	if rt.Dtor != nil {
		return rt.Dtor
	}
	name := rt.Name
	return func(ctx context.Context, rep uintptr) {
		b.mu.RLock()
		fn := b.dtors[name]
		b.mu.RUnlock()

		if fn == nil {
			b.log.Debug("no destructor attached", zap.String("resource", name), zap.Uintptr("rep", rep))
			return
		}
		if _, err := fn.Call(ctx, uint64(uint32(rep))); err != nil {
			b.log.Warn("destructor failed",
				zap.String("resource", name),
				zap.Uintptr("rep", rep),
				zap.Error(err))
		}
	}
}

// Attach resolves the [dtor]<name> exports of the instantiated guest for
// every type bound without a Go destructor. A missing export is allowed;
// dropping such a resource only releases its handle.
func (b *Boundary) Attach(guest api.Module) error {
	defs := guest.ExportedFunctionDefinitions()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, rt := range b.types {
		if rt.Dtor != nil {
			continue
		}
		export := PrefixDtor + rt.Name
		def, ok := defs[export]
		if !ok {
			b.log.Debug("guest exports no destructor", zap.String("resource", rt.Name))
			continue
		}
		if err := checkSignature(def, i32, nil); err != nil {
			return err
		}
		b.dtors[rt.Name] = guest.ExportedFunction(export)
	}
	return nil
}

// Table returns the handle table of a bound type.
func (b *Boundary) Table(name string) (*resource.Table, bool) {
	return b.store.Lookup(name)
}

// Names returns the bound type names in sorted order.
func (b *Boundary) Names() []string {
	return b.store.Names()
}

// Module returns the instantiated host module.
func (b *Boundary) Module() api.Module {
	return b.module
}

// Close destroys the remaining handles, then closes the host module.
func (b *Boundary) Close(ctx context.Context) error {
	err := b.store.Close(ctx)
	if cerr := b.module.Close(ctx); err == nil {
		err = cerr
	}
	return err
}
