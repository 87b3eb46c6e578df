package gc

// sidetable.go contains the address-indexed side tables that annotate every
// pointer-aligned slot of a contiguous address range: the alloc map (plain
// bytes, mutator-owned) and the trace map (atomic cells, collector-owned).

import (
	"fmt"
	"sync/atomic"
)

// AddressMap associates one T per pointer-aligned slot of a contiguous
// address range [start, end). It's used for the alloc map, where exactly one
// goroutine -- the mutator that owns the containing block -- ever writes a
// given slot, and the whole map is read-only during a collection.
type AddressMap[T any] struct {
	start Address
	end   Address
	cells []T
}

// NewAddressMap allocates a zero-initialized AddressMap covering [start, end).
func NewAddressMap[T any](start, end Address) *AddressMap[T] {
	if end < start || !start.Aligned(PointerSize) {
		panic("gc: NewAddressMap: bad range")
	}

	n := end.Diff(start) / PointerSize

	return &AddressMap[T]{
		start: start,
		end:   end,
		cells: make([]T, n),
	}
}

func (m *AddressMap[T]) index(addr Address) int {
	if debugAssertions {
		if addr < m.start || addr >= m.end || !addr.Aligned(PointerSize) {
			panic(fmt.Sprintf("gc: AddressMap: %s out of range [%s, %s)", addr, m.start, m.end))
		}
	}

	return int(addr.Diff(m.start) / PointerSize)
}

// Get returns the cell for addr.
func (m *AddressMap[T]) Get(addr Address) T {
	return m.cells[m.index(addr)]
}

// Set writes the cell for addr.
func (m *AddressMap[T]) Set(addr Address, value T) {
	m.cells[m.index(addr)] = value
}

// InRange reports whether addr falls within the mapped range.
func (m *AddressMap[T]) InRange(addr Address) bool {
	return addr >= m.start && addr < m.end
}

// TraceMap has the same shape as an AddressMap[uint32] but its cells are
// read and written atomically, and it holds the collector's current mark
// state: a cell equal to the mark state means "traced this cycle."
//
// A real byte-sized atomic would halve TraceMap's footprint, but the
// standard library's sync/atomic only exposes 32- and 64-bit (and pointer
// and bool) atomics -- there's no portable AtomicU8 the way Rust's
// std::sync::atomic::AtomicU8 provides. Since each cell only ever holds 0 or
// 1, a uint32 wastes bytes but keeps this file free of unsafe bit-packing
// tricks; see DESIGN.md.
type TraceMap struct {
	start Address
	end   Address
	cells []atomic.Uint32

	markState atomic.Uint32
}

// NewTraceMap allocates a TraceMap covering [start, end), with the initial
// mark state set to 1 so that the all-zero cells of a freshly allocated map
// start out "untraced."
func NewTraceMap(start, end Address) *TraceMap {
	if end < start || !start.Aligned(PointerSize) {
		panic("gc: NewTraceMap: bad range")
	}

	n := end.Diff(start) / PointerSize

	tm := &TraceMap{
		start: start,
		end:   end,
		cells: make([]atomic.Uint32, n),
	}
	tm.markState.Store(1)

	return tm
}

func (tm *TraceMap) index(addr Address) int {
	if debugAssertions {
		if addr < tm.start || addr >= tm.end || !addr.Aligned(PointerSize) {
			panic(fmt.Sprintf("gc: TraceMap: %s out of range [%s, %s)", addr, tm.start, tm.end))
		}
	}

	return int(addr.Diff(tm.start) / PointerSize)
}

// MarkState returns the collector's current mark state, 0 or 1.
func (tm *TraceMap) MarkState() uint32 {
	return tm.markState.Load()
}

// FlipMarkState inverts the mark state. Called once, by the controller, at
// the end of every collection; it logically invalidates every previous
// trace-map entry without having to physically clear the map.
func (tm *TraceMap) FlipMarkState() {
	tm.markState.Store(tm.markState.Load() ^ 1)
}

// IsTraced reports whether addr's cell equals the current mark state.
func (tm *TraceMap) IsTraced(addr Address) bool {
	return tm.cells[tm.index(addr)].Load() == tm.markState.Load()
}

// IsUntracedAndValid reports whether addr is in range and its cell does not
// equal the current mark state -- i.e. it is a candidate to push onto the
// tracer's work list.
func (tm *TraceMap) IsUntracedAndValid(addr Address) bool {
	if addr < tm.start || addr >= tm.end || !addr.Aligned(PointerSize) {
		return false
	}

	return tm.cells[tm.index(addr)].Load() != tm.markState.Load()
}

// MarkAsTraced stores the current mark state into addr's cell.
func (tm *TraceMap) MarkAsTraced(addr Address) {
	tm.cells[tm.index(addr)].Store(tm.markState.Load())
}

// debugAssertions gates the bounds/alignment checks the spec requires only
// in debug builds. It's a var, not a const, so tests can flip it. It
// defaults to true, and nothing in the package sets it to false.
var debugAssertions = true
