package gc

// linemark.go contains the line-mark table: one byte per 256-byte line of
// the Immix space, sliced into non-overlapping per-block views at block
// initialization.

//go:generate go run golang.org/x/tools/cmd/stringer -type LineMark -output linemark_string.go

// LineMark is the reclamation state of a single line.
type LineMark uint8

const (
	// LineFree means the line holds no live data and is available to the
	// bump allocator.
	LineFree LineMark = iota

	// LineLive means the line holds at least one word identified as live
	// by the current trace.
	LineLive

	// LineFreshAlloc means the line was just handed to a mutator by the
	// bump allocator and hasn't been traced yet this cycle; it survives a
	// sweep unless a later GC finds it untouched.
	LineFreshAlloc

	// LineConservLive means the line immediately follows a LineLive line
	// and is conservatively assumed to hold the tail of an object that
	// spans the line boundary.
	LineConservLive

	// LinePrevLive is unused by the line-mark table itself but is kept to
	// mirror the five-state enumeration in spec.md's data model; the Immix
	// space never assigns it. It is reserved for symmetry with
	// FreelistSpace's NodeMark and documents that line states, unlike
	// freelist marks, don't need a two-cycle demotion: sweep resets
	// anything not Live/ConservLive straight back to Free.
	LinePrevLive
)

// LineMarkTable is one array of line marks spanning an entire Immix space,
// indexed by (addr-spaceStart)/BytesInLine. Non-overlapping sub-slices of it
// are handed out to individual blocks at space-initialization time; after
// that, a block only ever touches its own slice, and the tracer/sweeper only
// touch slices of blocks already removed from mutator use, so no further
// synchronization is needed between these parties (see spec.md §5).
type LineMarkTable struct {
	spaceStart Address
	marks      []LineMark
}

// NewLineMarkTable allocates a table covering the line range of [start, end).
func NewLineMarkTable(start, end Address) *LineMarkTable {
	n := end.Diff(start) / BytesInLine
	return &LineMarkTable{
		spaceStart: start,
		marks:      make([]LineMark, n),
	}
}

// TakeSlice returns a view over [lineStart, lineStart+length) lines. The
// caller (ImmixSpace.initBlocks) is responsible for slices not overlapping.
func (t *LineMarkTable) TakeSlice(lineStart, length int) LineMarkTableSlice {
	return LineMarkTableSlice(t.marks[lineStart : lineStart+length])
}

// MarkLineLive marks the line containing addr Live, and conservatively marks
// the following line ConservLive if it isn't already Live, since an object
// may straddle the line boundary.
func (t *LineMarkTable) MarkLineLive(addr Address) {
	i := addr.Diff(t.spaceStart) / BytesInLine
	t.marks[i] = LineLive

	if i+1 < len(t.marks) && t.marks[i+1] != LineLive {
		t.marks[i+1] = LineConservLive
	}
}

// LineMarkTableSlice is a block's private view into the space-wide line-mark
// table.
type LineMarkTableSlice []LineMark

// Get returns the mark of line index i within the slice.
func (s LineMarkTableSlice) Get(i int) LineMark {
	return s[i]
}

// Set sets the mark of line index i within the slice.
func (s LineMarkTableSlice) Set(i int, mark LineMark) {
	s[i] = mark
}

// Len returns the number of lines in the slice.
func (s LineMarkTableSlice) Len() int {
	return len(s)
}

// GetNextAvailableLine returns the smallest line index >= cur that is Free,
// or ok=false if there is none.
func (s LineMarkTableSlice) GetNextAvailableLine(cur int) (idx int, ok bool) {
	for i := cur; i < len(s); i++ {
		if s[i] == LineFree {
			return i, true
		}
	}

	return 0, false
}

// GetNextUnavailableLine returns the smallest line index >= cur that is not
// Free, or len(s) if every remaining line is Free.
func (s LineMarkTableSlice) GetNextUnavailableLine(cur int) int {
	i := cur
	for i < len(s) && s[i] == LineFree {
		i++
	}

	return i
}
