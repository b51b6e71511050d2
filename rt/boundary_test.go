package rt

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wippyai/wit-bindgen-go/resource"
)

// counter is a locally defined resource whose intrinsics go to a
// resource.Table standing in for the component host.
type counter struct{}

type counterState struct {
	closed *atomic.Int32
	n      int
}

func (s counterState) Drop() {
	if s.closed != nil {
		s.closed.Add(1)
	}
}

var counters = newCounterBoundary()

type counterBoundary struct {
	table   *resource.Table
	drops   atomic.Int32
	lastRep atomic.Uintptr
}

func newCounterBoundary() *counterBoundary {
	return &counterBoundary{
		table: resource.NewTable(func(_ context.Context, rep uintptr) {
			Dtor[counterState](rep)
		}),
	}
}

// resetCounters installs a fresh boundary for the duration of a test.
func resetCounters(t *testing.T) *counterBoundary {
	t.Helper()
	counters = newCounterBoundary()
	t.Cleanup(func() { counters.table.Close(context.Background()) })
	return counters
}

func (counter) New(rep uintptr) uint32 {
	counters.lastRep.Store(rep)
	h, err := counters.table.New(rep)
	if err != nil {
		panic(err)
	}
	return uint32(h)
}

func (counter) Rep(handle uint32) uintptr {
	rep, err := counters.table.Rep(resource.Handle(handle))
	if err != nil {
		panic(err)
	}
	return rep
}

func (counter) Drop(handle uint32) {
	counters.drops.Add(1)
	if err := counters.table.Drop(context.Background(), resource.Handle(handle)); err != nil {
		panic(err)
	}
}

// remote is an imported resource: only the drop intrinsic exists.
type remote struct{}

var remoteDrops = struct {
	handles []uint32
	mu      sync.Mutex
}{}

func (remote) Drop(handle uint32) {
	remoteDrops.mu.Lock()
	defer remoteDrops.mu.Unlock()
	remoteDrops.handles = append(remoteDrops.handles, handle)
}

func resetRemote() {
	remoteDrops.mu.Lock()
	defer remoteDrops.mu.Unlock()
	remoteDrops.handles = nil
}

func remoteDropped() []uint32 {
	remoteDrops.mu.Lock()
	defer remoteDrops.mu.Unlock()
	return append([]uint32(nil), remoteDrops.handles...)
}
