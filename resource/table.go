package resource

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/wippyai/wit-bindgen-go/errors"
	"go.uber.org/zap"
)

var (
	ErrClosed            = stderrors.New("resource table closed")
	ErrOutstandingBorrow = &errors.Error{Phase: errors.PhaseResource, Kind: errors.KindOutstandingBorrow}
	ErrInvalidHandle     = &errors.Error{Phase: errors.PhaseResource, Kind: errors.KindInvalidHandle}
)

// Table manages the handles of a single resource type.
type Table struct {
	dtor      Destructor
	entries   []entry
	freeList  []Handle
	observers []Observer
	mu        sync.Mutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	rep   uintptr
	lend  int32
	valid bool
}

// NewTable creates an empty table. dtor may be nil for resources whose
// representation needs no reclaiming.
func NewTable(dtor Destructor) *Table {
	return &Table{
		dtor:     dtor,
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// New registers rep and returns a fresh handle for it.
func (t *Table) New(rep uintptr) (Handle, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}

	e := entry{rep: rep, valid: true}

	var h Handle
	if n := len(t.freeList); n > 0 {
		h = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[h-1] = e
	} else {
		if Handle(len(t.entries)+1) >= Sentinel {
			t.mu.Unlock()
			return 0, errors.New(errors.PhaseResource, errors.KindAllocation).
				Detail("handle space exhausted").
				Build()
		}
		t.entries = append(t.entries, e)
		h = Handle(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: h, Rep: rep})
	return h, nil
}

// Rep returns the representation registered for h.
func (t *Table) Rep(h Handle) (uintptr, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, err := t.lookup(h)
	if err != nil {
		return 0, err
	}
	return e.rep, nil
}

// Drop destroys h and runs the destructor for its representation. Dropping a
// handle that is lent out, already dropped or never issued is an error.
func (t *Table) Drop(ctx context.Context, h Handle) error {
	t.mu.Lock()
	e, err := t.lookup(h)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if e.lend > 0 {
		t.mu.Unlock()
		return errors.OutstandingBorrow(uint32(h), e.lend)
	}

	rep := e.rep
	*e = entry{}
	t.freeList = append(t.freeList, h)
	t.mu.Unlock()

	if t.dtor != nil {
		t.dtor(ctx, rep)
	}
	t.notify(Event{Type: EventDropped, Handle: h, Rep: rep})
	return nil
}

// Borrow lends h out. It cannot be dropped until EndBorrow is called.
func (t *Table) Borrow(h Handle) error {
	t.mu.Lock()
	e, err := t.lookup(h)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	e.lend++
	rep := e.rep
	t.mu.Unlock()

	t.notify(Event{Type: EventBorrowed, Handle: h, Rep: rep})
	return nil
}

// EndBorrow returns a borrow of h. Must be called once per Borrow.
func (t *Table) EndBorrow(h Handle) error {
	t.mu.Lock()
	e, err := t.lookup(h)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if e.lend <= 0 {
		t.mu.Unlock()
		return errors.InvalidHandle(uint32(h), "has no active borrows")
	}
	e.lend--
	rep := e.rep
	t.mu.Unlock()

	t.notify(Event{Type: EventBorrowReturned, Handle: h, Rep: rep})
	return nil
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries) - len(t.freeList)
}

// Each iterates over live handles until fn returns false.
func (t *Table) Each(fn func(Handle, uintptr) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, e := range t.entries {
		if e.valid && !fn(Handle(i+1), e.rep) {
			return
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer. o must be comparable, such as a pointer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()

	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close destroys every live handle, running the destructor for each, and
// stops accepting new ones. Borrows are ignored at this point.
func (t *Table) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true

	var reps []uintptr
	for _, e := range t.entries {
		if e.valid {
			reps = append(reps, e.rep)
		}
	}
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	if len(reps) > 0 {
		Logger().Debug("closing table with live handles", zap.Int("live", len(reps)))
	}
	if t.dtor != nil {
		for _, rep := range reps {
			t.dtor(ctx, rep)
		}
	}
	return nil
}

// lookup must be called with t.mu held.
func (t *Table) lookup(h Handle) (*entry, error) {
	if h == 0 || int(h) > len(t.entries) {
		return nil, errors.InvalidHandle(uint32(h), "was never issued")
	}
	e := &t.entries[h-1]
	if !e.valid {
		return nil, errors.InvalidHandle(uint32(h), "is already dropped")
	}
	return e, nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()

	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
