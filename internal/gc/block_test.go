package gc

import (
	"strings"
	"testing"
)

func TestBlockAccessors(tt *testing.T) {
	tt.Parallel()

	lines := LineMarkTableSlice(make([]LineMark, LinesInBlock))
	block := &Block{id: 3, start: Address(0x70000), state: BlockUsable, lines: lines}

	if block.ID() != 3 {
		tt.Errorf("ID: want 3, got %d", block.ID())
	}

	if block.Start() != Address(0x70000) {
		tt.Errorf("Start: want 0x70000, got %s", block.Start())
	}

	if block.State() != BlockUsable {
		tt.Errorf("State: want Usable, got %s", block.State())
	}

	block.SetState(BlockFull)

	if block.State() != BlockFull {
		tt.Errorf("SetState: want Full, got %s", block.State())
	}

	if block.Lines().Len() != LinesInBlock {
		tt.Errorf("Lines: want %d, got %d", LinesInBlock, block.Lines().Len())
	}

	if !strings.Contains(block.String(), "Block#3") {
		tt.Errorf("String: want it to mention Block#3, got %q", block.String())
	}
}

func TestBlockMarkStringer(tt *testing.T) {
	tt.Parallel()

	if got := BlockUsable.String(); got != "Usable" {
		tt.Errorf("BlockUsable.String(): want Usable, got %q", got)
	}

	if got := BlockFull.String(); got != "Full" {
		tt.Errorf("BlockFull.String(): want Full, got %q", got)
	}
}

func TestBlockSizeConstants(tt *testing.T) {
	tt.Parallel()

	if BytesInBlock != LinesInBlock*BytesInLine {
		tt.Errorf("BytesInBlock should equal LinesInBlock*BytesInLine: %d != %d*%d",
			BytesInBlock, LinesInBlock, BytesInLine)
	}

	if 1<<LogBytesInBlock != BytesInBlock {
		tt.Errorf("LogBytesInBlock mismatch: 1<<%d != %d", LogBytesInBlock, BytesInBlock)
	}
}
