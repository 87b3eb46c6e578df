package gc

// coordinator.go implements the process-wide GC coordinator: mutator
// registry, controller election, the stop-the-world barrier, and the
// trace/sweep/flip orchestration run by whichever mutator becomes
// controller.

import (
	"sync"
	"sync/atomic"

	"github.com/smoynes/immix/internal/log"
)

const noController = -1

// Coordinator is process-wide collector state. There is normally exactly
// one per running collector; the ABI entry points described in spec.md §6
// would construct it once at gc_init and hand out a shared reference to
// every mutator.
type Coordinator struct {
	space    *ImmixSpace
	freelist *FreelistSpace

	registryMu sync.RWMutex
	mutators   []*Mutator

	controllerID atomic.Int64

	stwMu      sync.Mutex
	stwCond    *sync.Cond
	stwWaiting int

	roots   []Address
	rootsMu sync.RWMutex

	gcCount atomic.Uint64

	parallel bool
	workers  int

	log *log.Logger
}

// New wires together an Immix space, a freelist space, and a Coordinator,
// per a parsed Config. It corresponds to the ABI's gc_init, minus the
// C-calling-convention plumbing that's out of scope here.
func New(cfg Config) (*Coordinator, error) {
	space, err := NewImmixSpace(cfg.ImmixBytes)
	if err != nil {
		return nil, err
	}

	freelist := NewFreelistSpace(cfg.FreelistBytes)

	c := &Coordinator{
		space:    space,
		freelist: freelist,
		parallel: cfg.Workers > 1,
		workers:  cfg.Workers,
		log:      log.DefaultLogger(),
	}
	c.controllerID.Store(noController)
	c.stwCond = sync.NewCond(&c.stwMu)

	space.SetOnExhausted(c.TriggerGC)

	return c, nil
}

// Space returns the Immix space, mostly for tests and CLI reporting.
func (c *Coordinator) Space() *ImmixSpace { return c.space }

// Freelist returns the freelist space, mostly for tests and CLI reporting.
func (c *Coordinator) Freelist() *FreelistSpace { return c.freelist }

// GCCount returns the number of completed collections.
func (c *Coordinator) GCCount() uint64 { return c.gcCount.Load() }

// NewMutator registers a new mutator and returns an owning handle.
func (c *Coordinator) NewMutator() *Mutator {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()

	m := newMutator(len(c.mutators), c.space, c.freelist, c)
	c.mutators = append(c.mutators, m)

	return m
}

func (c *Coordinator) deregister(m *Mutator) {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()

	for i, other := range c.mutators {
		if other == m {
			c.mutators = append(c.mutators[:i], c.mutators[i+1:]...)
			break
		}
	}
}

// NumMutators reports the number of currently registered mutators.
func (c *Coordinator) NumMutators() int {
	c.registryMu.RLock()
	defer c.registryMu.RUnlock()

	return len(c.mutators)
}

// TriggerGC sets every registered mutator's take-yield flag. It's called
// both by ImmixSpace.GetNextUsableBlock on an empty usable queue and by a
// mutator allocating a large object under freelist pressure.
func (c *Coordinator) TriggerGC() {
	c.registryMu.RLock()
	defer c.registryMu.RUnlock()

	for _, m := range c.mutators {
		m.takeYield.Store(true)
	}
}

// syncBarrier implements the yieldpoint slow path (spec.md §4.7). The first
// mutator to reach it becomes the controller and runs the collection; every
// other mutator parks until the controller signals resume.
func (c *Coordinator) syncBarrier(self *Mutator) {
	elected := c.controllerID.CompareAndSwap(noController, int64(self.id))

	c.prepareForGC(self)
	c.stackScan(self)

	if !elected {
		c.stwMu.Lock()
		c.stwWaiting++
		self.stillBlocked.Store(true)

		for self.stillBlocked.Load() {
			c.stwCond.Wait()
		}

		c.stwMu.Unlock()

		self.reset()

		return
	}

	c.waitForAllMutators()
	c.runCollection()

	self.reset()
}

// prepareForGC releases the mutator's held block so the sweep can consider
// it along with every other used block.
func (c *Coordinator) prepareForGC(m *Mutator) {
	if m.block != nil {
		c.space.ReturnUsedBlock(m.block)
		m.block = nil
		m.cursor = NullAddress
		m.limit = NullAddress
		m.line = 0
	}
}

// waitForAllMutators spins until every other registered mutator has parked
// at the barrier.
func (c *Coordinator) waitForAllMutators() {
	target := c.NumMutators() - 1

	for {
		c.stwMu.Lock()
		waiting := c.stwWaiting
		c.stwMu.Unlock()

		if waiting >= target {
			return
		}
	}
}

// runCollection traces from the accumulated roots, sweeps both spaces,
// flips the mark state, and releases every waiting mutator.
func (c *Coordinator) runCollection() {
	c.rootsMu.Lock()
	roots := c.roots
	c.roots = nil
	c.rootsMu.Unlock()

	if c.parallel {
		TraceParallel(roots, c.space, c.freelist, c.workers)
	} else {
		Trace(roots, c.space, c.freelist)
	}

	c.space.Sweep()
	c.freelist.Sweep()

	c.gcCount.Add(1)
	c.space.TraceMap.FlipMarkState()

	c.stwMu.Lock()
	c.controllerID.Store(noController)
	c.stwWaiting = 0

	c.registryMu.RLock()
	for _, m := range c.mutators {
		m.stillBlocked.Store(false)
	}
	c.registryMu.RUnlock()

	c.stwCond.Broadcast()
	c.stwMu.Unlock()

	c.log.Debug("gc complete", "count", c.gcCount.Load())
}

// AddRoot appends addr to the shared roots vector. It's called by the
// conservative scanner (roots.go) from each mutator's own syncBarrier call,
// before that mutator parks or runs the collection; rootsMu serializes
// those calls.
func (c *Coordinator) AddRoot(addr Address) {
	c.rootsMu.Lock()
	c.roots = append(c.roots, addr)
	c.rootsMu.Unlock()
}
