package gc

import "testing"

func TestLineMarkTableMarkLineLive(tt *testing.T) {
	tt.Parallel()

	start := Address(0x10000)
	end := start.Plus(BytesInLine * 8)
	table := NewLineMarkTable(start, end)

	table.MarkLineLive(start.Plus(BytesInLine * 2))

	slice := table.TakeSlice(0, 8)

	if slice.Get(2) != LineLive {
		tt.Errorf("line 2: want Live, got %s", slice.Get(2))
	}

	if slice.Get(3) != LineConservLive {
		tt.Errorf("line 3: want ConservLive, got %s", slice.Get(3))
	}
}

func TestLineMarkTableConservLiveDoesNotOverwriteLive(tt *testing.T) {
	tt.Parallel()

	start := Address(0x10000)
	end := start.Plus(BytesInLine * 8)
	table := NewLineMarkTable(start, end)

	table.MarkLineLive(start.Plus(BytesInLine * 3))
	table.MarkLineLive(start.Plus(BytesInLine * 2))

	slice := table.TakeSlice(0, 8)

	if slice.Get(3) != LineLive {
		tt.Errorf("line 3: want to remain Live, got %s", slice.Get(3))
	}
}

func TestLineMarkTableSliceHoleFinding(tt *testing.T) {
	tt.Parallel()

	slice := LineMarkTableSlice(make([]LineMark, 8))
	slice.Set(2, LineLive)
	slice.Set(3, LineLive)

	idx, ok := slice.GetNextAvailableLine(0)
	if !ok || idx != 0 {
		tt.Fatalf("GetNextAvailableLine(0): want (0, true), got (%d, %v)", idx, ok)
	}

	stop := slice.GetNextUnavailableLine(idx)
	if stop != 2 {
		tt.Fatalf("GetNextUnavailableLine(0): want 2, got %d", stop)
	}

	idx, ok = slice.GetNextAvailableLine(2)
	if !ok || idx != 4 {
		tt.Fatalf("GetNextAvailableLine(2): want (4, true), got (%d, %v)", idx, ok)
	}
}

func TestLineMarkTableSliceAllUsed(tt *testing.T) {
	tt.Parallel()

	slice := LineMarkTableSlice(make([]LineMark, 4))
	for i := 0; i < slice.Len(); i++ {
		slice.Set(i, LineLive)
	}

	if _, ok := slice.GetNextAvailableLine(0); ok {
		tt.Errorf("GetNextAvailableLine: want false when no line is free")
	}

	if stop := slice.GetNextUnavailableLine(0); stop != slice.Len() {
		tt.Errorf("GetNextUnavailableLine: want %d, got %d", slice.Len(), stop)
	}
}

func TestLineMarkStringer(tt *testing.T) {
	tt.Parallel()

	cases := map[LineMark]string{
		LineFree:        "Free",
		LineLive:        "Live",
		LineFreshAlloc:  "FreshAlloc",
		LineConservLive: "ConservLive",
		LinePrevLive:    "PrevLive",
	}

	for mark, want := range cases {
		if got := mark.String(); got != want {
			tt.Errorf("%d.String(): want %q, got %q", mark, want, got)
		}
	}
}
