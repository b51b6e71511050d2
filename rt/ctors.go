package rt

import (
	"sync"
	"sync/atomic"

	"github.com/wippyai/wit-bindgen-go/errors"
	"go.uber.org/zap"
)

// ctorGuard runs the static initializers required by exported entry points
// once per instance.
type ctorGuard struct {
	fn      func()
	once    sync.Once
	mu      sync.Mutex
	started bool // guarded by mu; set before the hook is invoked
	ran     atomic.Bool
}

var ctors = &ctorGuard{}

// SetCtors installs the loader-provided initializer hook, such as an import
// of __wasm_call_ctors on targets whose linker defers constructors. It fails
// once the guard has started firing.
func SetCtors(fn func()) error {
	ctors.mu.Lock()
	defer ctors.mu.Unlock()

	if ctors.started {
		return errors.New(errors.PhaseInit, errors.KindAlreadyRun).
			Detail("constructors already ran").
			Build()
	}
	ctors.fn = fn
	return nil
}

// RunCtorsOnce is the first statement of every exported entry point. The hook
// runs exactly once no matter which entry point is called first or how often;
// concurrent first calls wait for it to finish. A hook that panics still
// spends the guard and is not retried.
func RunCtorsOnce() {
	if ctors.ran.Load() {
		return
	}
	ctors.once.Do(func() {
		ctors.mu.Lock()
		ctors.started = true
		fn := ctors.fn
		ctors.mu.Unlock()

		defer ctors.ran.Store(true)
		if fn != nil {
			fn()
		}
		Logger().Debug("constructors ran", zap.Bool("hook", fn != nil))
	})
}

// CtorsRan reports whether the guard has fired.
func CtorsRan() bool {
	return ctors.ran.Load()
}
