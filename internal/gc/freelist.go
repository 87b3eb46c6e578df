package gc

// freelist.go implements the side-space for large objects: a plain linked
// list of host-allocated nodes with a tri-state mark for lazy, two-cycle
// sweep demotion (spec.md §4.4; see DESIGN.md for the FreshAlloc/Live
// demotion asymmetry this was resolved against).

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/smoynes/immix/internal/log"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type NodeMark -output nodemark_string.go

// NodeMark is a freelist node's lazy-sweep state.
type NodeMark uint8

const (
	// NodeFreshAlloc means the node was allocated since the last sweep
	// and has not yet been traced.
	NodeFreshAlloc NodeMark = iota

	// NodeLive means the node was traced during the most recent
	// collection.
	NodeLive

	// NodePrevLive means the node was Live at the previous sweep and has
	// not been retraced since. A sweep that still finds it PrevLive drops
	// it, exactly as it drops a FreshAlloc node.
	NodePrevLive
)

// FreeListNode is one large object's bookkeeping entry.
type FreeListNode struct {
	addr Address
	size uintptr
	mark NodeMark

	// data keeps the backing allocation reachable from Go's own
	// collector for as long as this node is tracked; there's no manual
	// free to pair with the host allocation the spec describes.
	data []byte
}

// Address returns the node's backing allocation.
func (n *FreeListNode) Address() Address { return n.addr }

// Size returns the node's allocation size in bytes.
func (n *FreeListNode) Size() uintptr { return n.size }

func (n *FreeListNode) String() string {
	return fmt.Sprintf("FreeListNode(%s, %d bytes, %s)", n.addr, n.size, n.mark)
}

// FreelistSpace tracks large objects that don't fit the Immix space's
// per-block allocation discipline. Each allocation goes through the host
// allocator directly; the space just tracks liveness for its own sweep.
type FreelistSpace struct {
	mu       sync.Mutex
	nodes    []*FreeListNode
	capacity uintptr
	used     uintptr

	log *log.Logger
}

// NewFreelistSpace creates an empty freelist space with the given capacity
// in bytes.
func NewFreelistSpace(capacity uintptr) *FreelistSpace {
	return &FreelistSpace{
		capacity: capacity,
		log:      log.DefaultLogger(),
	}
}

// Alloc allocates size bytes, aligned to align, through the host allocator
// and tracks the result as a new FreshAlloc node. It returns ok=false
// without allocating if the space's capacity would be exceeded.
func (f *FreelistSpace) Alloc(size, align uintptr) (Address, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.used+size > f.capacity {
		return NullAddress, false
	}

	buf := make([]byte, size+align)
	raw := FromPointer(unsafe.Pointer(unsafe.SliceData(buf)))
	addr := raw.AlignUp(align)

	node := &FreeListNode{addr: addr, size: size, mark: NodeFreshAlloc, data: buf}
	f.nodes = append(f.nodes, node)
	f.used += size

	return addr, true
}

// MarkLive sets the node containing addr to Live, if one is found. It's the
// freelist analog of TraceMap.MarkAsTraced and is called by the tracer when
// a traced reference falls outside the Immix space.
func (f *FreelistSpace) MarkLive(addr Address) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.nodes {
		if addr >= n.addr && addr < n.addr.Plus(n.size) {
			n.mark = NodeLive
			return true
		}
	}

	return false
}

// Contains reports whether addr falls within any tracked node.
func (f *FreelistSpace) Contains(addr Address) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.nodes {
		if addr >= n.addr && addr < n.addr.Plus(n.size) {
			return true
		}
	}

	return false
}

// Used returns the current total size of all tracked nodes.
func (f *FreelistSpace) Used() uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.used
}

// Sweep walks every node: Live nodes demote to PrevLive and are retained;
// PrevLive and FreshAlloc nodes are dropped. used is recomputed as the sum
// of retained sizes. A sweep therefore keeps a node only if it was marked
// Live since the previous sweep; a node that the collection before this
// sweep did not trace is dropped, whether it is FreshAlloc or PrevLive.
// This is the reference implementation's rule (see DESIGN.md).
func (f *FreelistSpace) Sweep() {
	f.mu.Lock()
	defer f.mu.Unlock()

	retained := f.nodes[:0]
	var used uintptr

	for _, n := range f.nodes {
		switch n.mark {
		case NodeLive:
			n.mark = NodePrevLive
			retained = append(retained, n)
			used += n.size
		case NodePrevLive, NodeFreshAlloc:
			// dropped: once no node references n.data, it becomes
			// collectible by Go's own garbage collector.
		}
	}

	f.nodes = retained
	f.used = used

	f.log.Debug("freelist sweep", "retained", len(retained), "used", used)
}

// NumNodes reports how many nodes are currently tracked, mostly for tests.
func (f *FreelistSpace) NumNodes() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.nodes)
}
