package gc

import "testing"

func newTestCoordinator(tt *testing.T, blocks int) *Coordinator {
	tt.Helper()

	cfg := Config{
		ImmixBytes:    uintptr(blocks) * BytesInBlock,
		FreelistBytes: 1 << 20,
		Workers:       1,
	}

	c, err := New(cfg)
	if err != nil {
		tt.Fatalf("New: %v", err)
	}

	tt.Cleanup(func() {
		if err := c.Space().Close(); err != nil {
			tt.Errorf("Close: %v", err)
		}
	})

	return c
}

func TestMutatorAllocFastPath(tt *testing.T) {
	tt.Parallel()

	c := newTestCoordinator(tt, 2)
	m := c.NewMutator()

	a, err := m.Alloc(24, 8)
	if err != nil {
		tt.Fatalf("Alloc: %v", err)
	}

	b, err := m.Alloc(24, 8)
	if err != nil {
		tt.Fatalf("Alloc: %v", err)
	}

	if a == b {
		tt.Errorf("two successive allocations returned the same address")
	}

	if !a.Aligned(8) || !b.Aligned(8) {
		tt.Errorf("allocations must be aligned to the requested alignment: %s, %s", a, b)
	}

	if b != a.Plus(24) {
		tt.Errorf("bump allocator should pack successive allocations: want %s, got %s", a.Plus(24), b)
	}
}

func TestMutatorAllocAcrossLines(tt *testing.T) {
	tt.Parallel()

	c := newTestCoordinator(tt, 2)
	m := c.NewMutator()

	var last Address

	for i := 0; i < 4000; i++ {
		addr, err := m.Alloc(24, 8)
		if err != nil {
			tt.Fatalf("Alloc #%d: %v", i, err)
		}

		if !addr.Aligned(8) {
			tt.Fatalf("Alloc #%d: %s not aligned", i, addr)
		}

		if !c.space.AddrInSpace(addr) {
			tt.Fatalf("Alloc #%d: %s not in space", i, addr)
		}

		last = addr
	}

	_ = last
}

func TestMutatorInitObjectSetsObjectStartBit(tt *testing.T) {
	tt.Parallel()

	c := newTestCoordinator(tt, 1)
	m := c.NewMutator()

	addr, err := m.Alloc(24, 8)
	if err != nil {
		tt.Fatalf("Alloc: %v", err)
	}

	encoded := Encode(true, true, 0b000001)
	m.InitObject(addr, encoded)

	if !IsObjectStart(c.space.AllocMap.Get(addr)) {
		tt.Errorf("expected the object-start bit to be set after InitObject")
	}
}

func TestMutatorDestroyReturnsHeldBlock(tt *testing.T) {
	tt.Parallel()

	c := newTestCoordinator(tt, 1)
	m := c.NewMutator()

	if _, err := m.Alloc(24, 8); err != nil {
		tt.Fatalf("Alloc: %v", err)
	}

	if m.block == nil {
		tt.Fatalf("expected mutator to hold a block after allocating")
	}

	m.Destroy()

	if m.block != nil {
		tt.Errorf("expected Destroy to release the held block")
	}

	if c.NumMutators() != 0 {
		tt.Errorf("expected Destroy to deregister the mutator")
	}
}
