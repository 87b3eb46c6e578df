package gc

// mutator.go implements the per-thread bump allocator: the fast path that
// almost every allocation takes, and the two slow paths that fall back to
// hole-finding within a held block and then to acquiring a new block from
// the Immix space.

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/smoynes/immix/internal/log"
)

// Mutator is one thread's private allocation state. It is not safe for
// concurrent use; each goroutine that allocates must have its own.
type Mutator struct {
	id int

	space     *ImmixSpace
	freelist  *FreelistSpace
	coord     *Coordinator

	cursor Address
	limit  Address
	line   int
	block  *Block

	takeYield   atomic.Bool
	stillBlocked atomic.Bool

	lowWaterMark Address
	conservative []Address

	// capturedSP and capturedRegs hold the mutator's own stack pointer and
	// callee-saved registers, as read synchronously by Yieldpoint just
	// before it joins the stop-the-world barrier. See roots.go.
	capturedSP   Address
	capturedRegs calleeSavedRegisters

	log *log.Logger
}

// largeObjectThreshold is the size, in bytes, above which Alloc routes to
// the freelist space instead of the Immix space.
const largeObjectThreshold = BytesInLine * 4

func newMutator(id int, space *ImmixSpace, freelist *FreelistSpace, coord *Coordinator) *Mutator {
	return &Mutator{
		id:       id,
		space:    space,
		freelist: freelist,
		coord:    coord,
		log:      log.DefaultLogger(),
	}
}

// CaptureLowWaterMark records an address on the calling goroutine's stack as
// the low-water mark: the topmost address conservative stack scanning will
// walk up to. Spec's ABI exposes this as the separate set_low_water_mark
// entry point; callers must invoke it from the same goroutine that will go
// on to allocate through this mutator, as close to its outermost frame as
// practical.
//
// It also locks the calling goroutine to its current OS thread for the
// mutator's lifetime (paired with UnlockOSThread in Destroy). Every later
// conservative scan of this mutator's stack (roots.go) reads the thread's
// registers and stack pointer synchronously, from this same goroutine, at
// its own Yieldpoint call -- pinning it here is what keeps the goroutine,
// and the stack the low-water mark was measured against, from migrating to
// a different OS thread in between.
func (m *Mutator) CaptureLowWaterMark() {
	runtime.LockOSThread()

	var mark int
	m.lowWaterMark = FromPointer(unsafe.Pointer(&mark))
}

// SetLowWaterMark overrides the captured low-water mark directly; mostly
// useful for tests that want to control the conservative scan's range.
func (m *Mutator) SetLowWaterMark(addr Address) {
	m.lowWaterMark = addr
}

// LowWaterMark returns the captured low-water mark.
func (m *Mutator) LowWaterMark() Address {
	return m.lowWaterMark
}

// ID returns the mutator's registry index.
func (m *Mutator) ID() int { return m.id }

// Alloc returns an address of size bytes aligned to align, or an error if
// the freelist space is exhausted for a large object. Small/medium
// allocations never fail outright: the slow path loops, triggering
// collections, until a block is available.
func (m *Mutator) Alloc(size, align uintptr) (Address, error) {
	if size > largeObjectThreshold {
		return m.allocLarge(size, align)
	}

	return m.allocFast(size, align), nil
}

func (m *Mutator) allocFast(size, align uintptr) Address {
	cursor := m.cursor.AlignUp(align)
	end := cursor.Plus(size)

	if end <= m.limit {
		m.cursor = end
		return cursor
	}

	return m.tryAllocFromLocal(size, align)
}

// tryAllocFromLocal searches the held block's remaining lines for a hole
// large enough to retry the fast path in.
func (m *Mutator) tryAllocFromLocal(size, align uintptr) Address {
	if m.block != nil && m.line < LinesInBlock {
		lines := m.block.Lines()

		if start, ok := lines.GetNextAvailableLine(m.line); ok {
			stop := lines.GetNextUnavailableLine(start)

			m.cursor = m.block.Start().Plus(uintptr(start) * BytesInLine)
			m.limit = m.block.Start().Plus(uintptr(stop) * BytesInLine)
			m.line = stop

			for i := start; i < stop; i++ {
				lines.Set(i, LineFreshAlloc)
			}

			return m.allocFast(size, align)
		}
	}

	return m.allocFromGlobal(size, align)
}

// allocFromGlobal releases the currently-held block (if any) and loops,
// yielding and requesting a fresh usable block, until one is adopted.
func (m *Mutator) allocFromGlobal(size, align uintptr) Address {
	if m.block != nil {
		m.space.ReturnUsedBlock(m.block)
		m.block = nil
	}

	for {
		m.Yieldpoint()

		block, ok := m.space.GetNextUsableBlock()
		if !ok {
			continue
		}

		m.block = block
		m.cursor = block.Start()
		m.limit = block.Start()
		m.line = 0

		return m.allocFast(size, align)
	}
}

func (m *Mutator) allocLarge(size, align uintptr) (Address, error) {
	addr, ok := m.freelist.Alloc(size, align)
	if ok {
		return addr, nil
	}

	m.coord.TriggerGC()
	m.Yieldpoint()

	addr, ok = m.freelist.Alloc(size, align)
	if !ok {
		return NullAddress, ErrOutOfMemory
	}

	return addr, nil
}

// InitObject writes the encoding byte for addr's alloc-map slot. It must be
// called before addr becomes reachable from any root.
func (m *Mutator) InitObject(addr Address, encodeByte byte) {
	m.space.AllocMap.Set(addr, encodeByte)
}

// Yieldpoint is the only sanctioned suspension point for a mutator. The
// fast path is a single relaxed load; the slow path captures this
// goroutine's own stack pointer and callee-saved registers -- the
// conservative scan's raw material, see roots.go -- and joins the
// stop-the-world barrier.
func (m *Mutator) Yieldpoint() {
	if !m.takeYield.Load() {
		return
	}

	m.capturedSP = Address(archStackPointer())
	m.capturedRegs = archCalleeSavedRegisters()

	m.coord.syncBarrier(m)
}

// reset clears transient per-cycle mutator state after a collection. It
// does not touch the block, cursor or limit: prepareForGC already released
// the held block before the collection, so the next allocation takes the
// slow path and acquires a block from the space.
func (m *Mutator) reset() {
	m.takeYield.Store(false)
	m.stillBlocked.Store(false)
}

// Destroy returns any held block, unregisters the mutator, and releases the
// OS thread lock CaptureLowWaterMark took.
func (m *Mutator) Destroy() {
	if m.block != nil {
		m.space.ReturnUsedBlock(m.block)
		m.block = nil
	}

	m.coord.deregister(m)
	runtime.UnlockOSThread()
}
