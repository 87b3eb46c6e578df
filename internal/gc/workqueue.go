package gc

// workqueue.go implements the injector queue shared by the Immix space's
// usable/used block queues and the parallel tracer's work list.
//
// The original collector (jmeggitt/immix-rust) used crossbeam::deque::Injector,
// a genuinely lock-free MPMC queue, plus a per-worker Worker deque that owns
// a private end and can be stolen from. The Go ecosystem pack retrieved for
// this project carries no equivalent off-the-shelf lock-free deque (neither
// golang.org/x/sync nor the rest of the corpus vendors one), so Injector
// here is a mutex-guarded queue that keeps the same push/steal vocabulary
// and call sites the spec describes -- multiple goroutines may push and
// steal concurrently, just serialized behind a short critical section
// rather than CAS loops. The parallel tracer (tracer_parallel.go) pushes
// every edge it finds, not just the initial roots, onto this one shared
// queue (spec.md §4.8): there is deliberately no private per-worker deque
// standing between a worker and the pool other workers steal from, since an
// unstealable private deque would let a single busy worker starve idle
// peers on exactly the few-root workloads this collector's own benchmarks
// exercise. See DESIGN.md for the full trade-off note.

import "sync"

// Injector is a concurrent, unordered work queue of T. It's used both as the
// Immix space's usable/used block queues (§4.3) and as the parallel tracer's
// shared pool of pending object references (§4.8).
type Injector[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewInjector creates an empty injector.
func NewInjector[T any]() *Injector[T] {
	return &Injector[T]{}
}

// Push adds an item to the queue.
func (q *Injector[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// Steal removes and returns one item, or ok=false if the queue was empty.
func (q *Injector[T]) Steal() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return item, false
	}

	last := len(q.items) - 1
	item = q.items[last]

	var zero T
	q.items[last] = zero // avoid retaining a stale reference
	q.items = q.items[:last]

	return item, true
}

// Len returns the number of items currently queued.
func (q *Injector[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// IsEmpty reports whether the queue currently holds no items.
func (q *Injector[T]) IsEmpty() bool {
	return q.Len() == 0
}
