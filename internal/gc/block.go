package gc

// block.go defines the Immix block: the unit of ownership handed between
// mutators and the space's two queues.

import "fmt"

//go:generate go run golang.org/x/tools/cmd/stringer -type BlockMark -output blockmark_string.go

const (
	// LogBytesInLine is log2(BytesInLine).
	LogBytesInLine = 8

	// BytesInLine is the size of a line, the unit of reclamation within a
	// block.
	BytesInLine = 1 << LogBytesInLine // 256

	// LinesInBlock is the number of lines in a block.
	LinesInBlock = 256

	// LogBytesInBlock is log2(BytesInBlock).
	LogBytesInBlock = LogBytesInLine + 8 // 16

	// BytesInBlock is the size of a block, the unit of ownership between
	// the space and a mutator.
	BytesInBlock = 1 << LogBytesInBlock // 65536

	// SpaceAlign is the alignment of an Immix space's usable start address.
	SpaceAlign = 1 << 19
)

// BlockMark is a block's queue-membership state.
type BlockMark uint8

const (
	// BlockUsable means the block has at least one free line and sits on
	// the space's usable queue.
	BlockUsable BlockMark = iota

	// BlockFull means every line in the block is Live or ConservLive and
	// the block sits on the space's used queue.
	BlockFull
)

// Block is a BytesInBlock contiguous region of an Immix space, always fully
// inside exactly one space, owned by at most one mutator (while being
// allocated into) or by one of the space's two queues (while idle).
type Block struct {
	id    int
	start Address
	state BlockMark
	lines LineMarkTableSlice
}

// ID returns the block's index within its space.
func (b *Block) ID() int {
	return b.id
}

// Start returns the block's first address.
func (b *Block) Start() Address {
	return b.start
}

// State returns the block's queue-membership state.
func (b *Block) State() BlockMark {
	return b.state
}

// SetState sets the block's queue-membership state.
func (b *Block) SetState(mark BlockMark) {
	b.state = mark
}

// Lines returns the block's private line-mark slice.
func (b *Block) Lines() LineMarkTableSlice {
	return b.lines
}

// GetNextAvailableLine delegates to the block's line-mark slice.
func (b *Block) GetNextAvailableLine(cur int) (int, bool) {
	return b.lines.GetNextAvailableLine(cur)
}

// GetNextUnavailableLine delegates to the block's line-mark slice.
func (b *Block) GetNextUnavailableLine(cur int) int {
	return b.lines.GetNextUnavailableLine(cur)
}

func (b *Block) String() string {
	return fmt.Sprintf("Block#%d(%s @ %s)", b.id, b.state, b.start)
}
