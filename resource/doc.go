// Package resource implements the boundary side of component resources.
//
// A Table plays the role of the component host for one resource type: it
// issues handles for representation tokens, resolves handles back to tokens
// and runs the type's destructor when the last owning handle is dropped.
// These are the resource.new, resource.rep and resource.drop intrinsics
// that guest bindings import.
//
//	table := resource.NewTable(func(ctx context.Context, rep uintptr) {
//	    // reclaim whatever rep points at
//	})
//
//	h, err := table.New(rep)
//	rep, err = table.Rep(h)
//	err = table.Drop(ctx, h) // destructor runs here
//
// # Handles
//
// Handle 0 is reserved and never issued, and neither is the all-ones value
// guest runtimes use as their "no handle" sentinel. Freed handles are reused.
//
// # Borrows
//
// Borrow marks a handle as lent for the duration of a call. A lent handle
// cannot be dropped until every borrow has been returned with EndBorrow.
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("%v handle=%d rep=%#x", e.Type, e.Handle, e.Rep)
//	}))
//
// A Store groups one Table per resource type name.
package resource
