package gc

// tracer_parallel.go implements the parallel tracer (spec.md §4.8): a set
// of goroutines sharing one Injector, each stealing whatever work is
// available and pushing every edge it finds -- not just the roots --
// straight back onto that same shared, stealable queue.

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// TraceParallel marks every object reachable from roots live using
// numWorkers goroutines sharing one Injector. It returns once every worker
// has quiesced: the injector is empty and no worker is still processing
// an item that might push more work onto it.
func TraceParallel(roots []Address, space *ImmixSpace, freelist *FreelistSpace, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}

	injector := NewInjector[Address]()

	for _, r := range roots {
		enqueueEdgeInjector(r, space, freelist, injector)
	}

	active := &atomic.Int64{}
	active.Store(int64(numWorkers))

	group := new(errgroup.Group)

	for i := 0; i < numWorkers; i++ {
		group.Go(func() error {
			runTraceWorker(injector, active, space, freelist)
			return nil
		})
	}

	_ = group.Wait()
}

// runTraceWorker is one parallel tracer goroutine's main loop: steal an
// item from the shared injector, trace it, push any children it finds back
// onto the injector, and repeat until every worker has run out of work.
func runTraceWorker(injector *Injector[Address], active *atomic.Int64, space *ImmixSpace, freelist *FreelistSpace) {
	for {
		addr, ok := injector.Steal()
		if !ok {
			active.Add(-1)

			for {
				if !injector.IsEmpty() {
					active.Add(1)
					break
				}

				if active.Load() <= 0 {
					return
				}
			}

			continue
		}

		traceOne(addr, space, freelist, func(child Address) {
			enqueueEdgeInjector(child, space, freelist, injector)
		})
	}
}

// enqueueEdgeInjector routes a found reference (root or child) into the
// shared injector, or the freelist space's lazy mark.
func enqueueEdgeInjector(addr Address, space *ImmixSpace, freelist *FreelistSpace, injector *Injector[Address]) {
	if space.AddrInSpace(addr) {
		if space.TraceMap.IsUntracedAndValid(addr) {
			injector.Push(addr)
		}

		return
	}

	if freelist != nil {
		freelist.MarkLive(addr)
	}
}
