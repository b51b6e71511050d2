package rt

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestFromHandle_DropOnce(t *testing.T) {
	resetRemote()

	r := FromHandle[remote](5)
	if !r.Live() {
		t.Fatal("fresh resource should be live")
	}
	r.Drop()
	r.Drop()

	got := remoteDropped()
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("drop intrinsic calls = %v, want [5]", got)
	}
	if r.Live() {
		t.Fatal("dropped resource should not be live")
	}
}

func TestTakeHandle(t *testing.T) {
	resetRemote()

	r := FromHandle[remote](7)
	if h := r.Handle(); h != 7 {
		t.Fatalf("Handle() = %d, want 7", h)
	}
	if h := r.Handle(); h != 7 {
		t.Fatalf("Handle() is not a pure read: %d", h)
	}

	if h := r.TakeHandle(); h != 7 {
		t.Fatalf("TakeHandle() = %d, want 7", h)
	}
	if h := r.TakeHandle(); h != Sentinel {
		t.Fatalf("second TakeHandle() = %d, want sentinel", h)
	}

	r.Drop()
	if got := remoteDropped(); len(got) != 0 {
		t.Fatalf("Drop after TakeHandle called intrinsic: %v", got)
	}
}

func TestTakeHandle_ZeroIsLive(t *testing.T) {
	resetRemote()

	r := FromHandle[remote](0)
	r.Drop()
	if got := remoteDropped(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("handle 0 should be dropped like any live handle, got %v", got)
	}
}

func TestTakeHandle_Concurrent(t *testing.T) {
	r := FromHandle[remote](42)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.TakeHandle() != Sentinel {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if n := wins.Load(); n != 1 {
		t.Fatalf("%d callers observed the live handle, want 1", n)
	}
}

func TestTakeHandle_RacesDrop(t *testing.T) {
	resetRemote()

	const n = 200
	taken := make([]uint32, n)
	for i := 0; i < n; i++ {
		r := FromHandle[remote](uint32(i))
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			taken[i] = r.TakeHandle()
		}()
		go func() {
			defer wg.Done()
			r.Drop()
		}()
		wg.Wait()
	}

	dropped := make(map[uint32]int)
	for _, h := range remoteDropped() {
		dropped[h]++
	}
	for i := 0; i < n; i++ {
		h := uint32(i)
		switch {
		case taken[i] == h && dropped[h] != 0:
			t.Fatalf("handle %d both taken and dropped", h)
		case taken[i] == Sentinel && dropped[h] != 1:
			t.Fatalf("handle %d dropped %d times, want 1", h, dropped[h])
		case taken[i] != h && taken[i] != Sentinel:
			t.Fatalf("TakeHandle returned foreign handle %d", taken[i])
		}
	}
}

func TestResource_String(t *testing.T) {
	r := FromHandle[remote](3)
	if s := r.String(); s != "Resource{handle: 3}" {
		t.Fatalf("String() = %q", s)
	}
	r.TakeHandle()
	if s := r.String(); s != "Resource{handle: 4294967295}" {
		t.Fatalf("String() after take = %q", s)
	}
}

func TestNewResource_RepRoundTrip(t *testing.T) {
	b := resetCounters(t)
	before := LiveSlots()

	r := NewResource[counter](counterState{n: 1})
	if LiveSlots() != before+1 {
		t.Fatalf("LiveSlots() = %d, want %d", LiveSlots(), before+1)
	}

	rep := counter{}.Rep(r.Handle())
	if rep != b.lastRep.Load() {
		t.Fatalf("Rep() = %#x, want token passed to New %#x", rep, b.lastRep.Load())
	}
	if got := Lift[counterState](rep).n; got != 1 {
		t.Fatalf("Lift().n = %d, want 1", got)
	}
	r.Drop()
}

func TestIntoInner(t *testing.T) {
	b := resetCounters(t)
	before := LiveSlots()
	var closed atomic.Int32

	r := NewResource[counter](counterState{n: 1, closed: &closed})
	Borrow[counterState](r).n++

	v := IntoInner[counterState](r)
	if v.n != 2 {
		t.Fatalf("IntoInner().n = %d, want 2", v.n)
	}
	if r.Live() {
		t.Fatal("resource should be taken after IntoInner")
	}
	if n := b.drops.Load(); n != 1 {
		t.Fatalf("drop intrinsic ran %d times, want 1", n)
	}
	if LiveSlots() != before {
		t.Fatalf("slot leaked: LiveSlots() = %d, want %d", LiveSlots(), before)
	}
	if closed.Load() != 0 {
		t.Fatal("value taken back must not be released by the destructor")
	}
	if b.table.Len() != 0 {
		t.Fatalf("boundary still holds %d handles", b.table.Len())
	}
}

func TestDrop_LocalRunsDestructor(t *testing.T) {
	b := resetCounters(t)
	before := LiveSlots()
	var closed atomic.Int32

	r := NewResource[counter](counterState{closed: &closed})
	r.Drop()

	if closed.Load() != 1 {
		t.Fatalf("value released %d times, want 1", closed.Load())
	}
	if LiveSlots() != before {
		t.Fatal("destructor should unregister the slot")
	}
	if b.drops.Load() != 1 {
		t.Fatalf("drop intrinsic ran %d times, want 1", b.drops.Load())
	}
}

func TestTakeHandle_Rewrap(t *testing.T) {
	b := resetCounters(t)

	r := NewResource[counter](counterState{n: 9})
	h := r.TakeHandle()
	r.Drop()
	if b.drops.Load() != 0 {
		t.Fatal("Drop after TakeHandle must not reach the boundary")
	}

	r2 := FromHandle[counter](h)
	if v := IntoInner[counterState](r2); v.n != 9 {
		t.Fatalf("IntoInner().n = %d, want 9", v.n)
	}
	if b.drops.Load() != 1 {
		t.Fatalf("drop intrinsic ran %d times, want 1", b.drops.Load())
	}
}
