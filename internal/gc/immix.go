package gc

// immix.go implements the Immix space: a large, mmap'd, naturally aligned
// region carved into fixed-size blocks, plus the two block queues
// (mutex-guarded Injectors, see workqueue.go) and the line-granular sweep.

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/smoynes/immix/internal/log"
)

// ImmixSpace is a contiguous, SpaceAlign-aligned range of memory managed as
// a sequence of Blocks.
type ImmixSpace struct {
	start Address
	end   Address

	// AllocMap is written only by the owning mutator of a slot, between
	// the call to Alloc and the object becoming reachable; it is
	// read-only for the duration of a collection.
	AllocMap *AddressMap[byte]

	// TraceMap is written only during a collection.
	TraceMap *TraceMap

	lineMarkTable *LineMarkTable

	totalBlocks int

	mapping []byte // the raw anonymous mapping; unmapped on Close

	usableBlocks *Injector[*Block]
	usedBlocks   *Injector[*Block]

	// checkedOut counts blocks a mutator currently holds: taken from
	// usableBlocks via GetNextUsableBlock but not yet given back through
	// ReturnUsedBlock. Sweep needs this to account for every block in the
	// space, since a held block sits in neither queue.
	checkedOut atomic.Int64

	// onExhausted is called by GetNextUsableBlock when the usable queue
	// is empty. It's wired up by the Coordinator at construction time so
	// that this package's layers stay decoupled: the space doesn't need
	// to import, or know the shape of, the thing that schedules a GC.
	onExhausted func()

	log *log.Logger
}

// NewImmixSpace acquires an anonymous mapping of spaceSize+SpaceAlign bytes,
// carves out the naturally aligned spaceSize-byte region inside it, and
// partitions that region into BytesInBlock blocks, all initially Usable.
func NewImmixSpace(spaceSize uintptr) (*ImmixSpace, error) {
	if spaceSize == 0 || spaceSize%BytesInBlock != 0 {
		return nil, fmt.Errorf("%w: immix space size %d is not a multiple of block size %d",
			ErrConfig, spaceSize, BytesInBlock)
	}

	mapping, err := unix.Mmap(-1, 0, int(spaceSize+SpaceAlign),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %w", ErrConfig, err)
	}

	base := FromPointer(unsafe.Pointer(unsafe.SliceData(mapping)))
	start := base.AlignUp(SpaceAlign)
	end := start.Plus(spaceSize)

	space := &ImmixSpace{
		start:         start,
		end:           end,
		mapping:       mapping,
		lineMarkTable: NewLineMarkTable(start, end),
		TraceMap:      NewTraceMap(start, end),
		AllocMap:      NewAddressMap[byte](start, end),
		usableBlocks:  NewInjector[*Block](),
		usedBlocks:    NewInjector[*Block](),
		log:           log.DefaultLogger(),
	}

	space.initBlocks()

	return space, nil
}

func (s *ImmixSpace) initBlocks() {
	id := 0
	blockStart := s.start
	line := 0

	for blockStart.Plus(BytesInBlock) <= s.end {
		block := &Block{
			id:    id,
			state: BlockUsable,
			start: blockStart,
			lines: s.lineMarkTable.TakeSlice(line, LinesInBlock),
		}
		s.usableBlocks.Push(block)

		id++
		blockStart = blockStart.Plus(BytesInBlock)
		line += LinesInBlock
	}

	s.totalBlocks = id
}

// SetOnExhausted wires the callback invoked when the usable queue runs dry.
func (s *ImmixSpace) SetOnExhausted(fn func()) {
	s.onExhausted = fn
}

// Start returns the space's first valid address.
func (s *ImmixSpace) Start() Address { return s.start }

// End returns the address just past the space's last valid byte.
func (s *ImmixSpace) End() Address { return s.end }

// TotalBlocks returns the number of blocks the space was carved into.
func (s *ImmixSpace) TotalBlocks() int { return s.totalBlocks }

// AddrInSpace reports whether addr falls within [start, end).
func (s *ImmixSpace) AddrInSpace(addr Address) bool {
	return addr >= s.start && addr < s.end
}

// LineMarkTable returns the space-wide line-mark table, mostly for tests and
// debug printing.
func (s *ImmixSpace) LineMarkTable() *LineMarkTable { return s.lineMarkTable }

// MarkLineLive delegates to the space-wide line-mark table.
func (s *ImmixSpace) MarkLineLive(addr Address) {
	s.lineMarkTable.MarkLineLive(addr)
}

// GetNextUsableBlock pops a block from the usable queue. If the queue is
// empty, it triggers a GC and returns ok=false; the caller (the mutator's
// slow allocation path) is expected to yield and retry.
func (s *ImmixSpace) GetNextUsableBlock() (*Block, bool) {
	if block, ok := s.usableBlocks.Steal(); ok {
		s.checkedOut.Add(1)
		return block, true
	}

	s.log.Debug("usable block queue empty, requesting GC")

	if s.onExhausted != nil {
		s.onExhausted()
	}

	return nil, false
}

// ReturnUsedBlock pushes a block, no longer held by any mutator, onto the
// used queue.
func (s *ImmixSpace) ReturnUsedBlock(block *Block) {
	s.checkedOut.Add(-1)
	s.usedBlocks.Push(block)
}

// Sweep drains the used queue. Every block with at least one non-Live,
// non-ConservLive line is reset (those lines become Free) and returned to
// the usable queue; a block with no free line is marked Full and returned to
// the used queue. It panics if every block in the space turns out full --
// per spec.md §7, exhaustion after a sweep is a fatal condition with no
// recovery.
func (s *ImmixSpace) Sweep() {
	var (
		freeLines    int
		usableCount  int
		fullCount    int
		liveBlocks   []*Block
	)

	for {
		block, ok := s.usedBlocks.Steal()
		if !ok {
			break
		}

		hasFreeLines := false
		lines := block.Lines()

		for i := 0; i < lines.Len(); i++ {
			if lines.Get(i) != LineLive && lines.Get(i) != LineConservLive {
				hasFreeLines = true
				lines.Set(i, LineFree)

				freeLines++
			}
		}

		if hasFreeLines {
			block.SetState(BlockUsable)
			usableCount++
			s.usableBlocks.Push(block)
		} else {
			block.SetState(BlockFull)
			fullCount++
			liveBlocks = append(liveBlocks, block)
		}
	}

	for _, block := range liveBlocks {
		s.usedBlocks.Push(block)
	}

	s.log.Debug("immix sweep",
		"free_lines", freeLines,
		"usable_blocks", usableCount,
		"full_blocks", fullCount,
		"total_blocks", s.totalBlocks,
	)

	if fullCount == s.totalBlocks {
		panic("gc: out of memory in Immix space: every block is full")
	}

	// Sweep only drains the used queue, so fullCount+usableCount alone only
	// accounts for blocks a mutator had already returned. Blocks nobody has
	// taken yet are still sitting in usableBlocks, and blocks a mutator is
	// still actively bump-allocating into are checked out of both queues;
	// both have to be added back in before every block in the space is
	// accounted for. usableBlocks also holds the usableCount blocks this
	// sweep just pushed back, so those are subtracted from its length.
	stillUsable := s.usableBlocks.Len() - usableCount
	checkedOut := int(s.checkedOut.Load())

	if debugAssertions && fullCount+usableCount+stillUsable+checkedOut != s.totalBlocks {
		panic("gc: immix sweep: full+usable+still-usable+checked-out != total")
	}
}

// Close releases the space's backing mapping. It must not be called while
// any mutator still holds a block.
func (s *ImmixSpace) Close() error {
	if s.mapping == nil {
		return nil
	}

	err := unix.Munmap(s.mapping)
	s.mapping = nil

	return err
}

func (s *ImmixSpace) String() string {
	return fmt.Sprintf("ImmixSpace(start=%s, end=%s, blocks=%d)", s.start, s.end, s.totalBlocks)
}
