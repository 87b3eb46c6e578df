package gc

import (
	"testing"
	"unsafe"
)

func TestIsConservativeRootFiltersInvalidCandidates(tt *testing.T) {
	tt.Parallel()

	space := newTestImmixSpace(tt, 1)

	objAddr := space.Start()
	space.AllocMap.Set(objAddr, Encode(true, true, 0b000001))

	cases := []struct {
		name string
		addr Address
		want bool
	}{
		{"valid object start", objAddr, true},
		{"misaligned", objAddr.Plus(1), false},
		{"out of range", space.End().Plus(BytesInBlock), false},
		{"in range but not an object start", objAddr.Plus(PointerSize), false},
	}

	for _, c := range cases {
		tt.Run(c.name, func(tt *testing.T) {
			if got := isConservativeRoot(c.addr, space); got != c.want {
				tt.Errorf("isConservativeRoot(%s): want %v, got %v", c.addr, c.want, got)
			}
		})
	}
}

// TestStackScanFindsDeclaredAndStackCandidates exercises both halves of the
// conservative scan together: a word handed in through SetConservativeRoots,
// and a word sitting in real stack memory between a captured SP and a
// low-water mark, the way Yieldpoint and CaptureLowWaterMark leave it.
func TestStackScanFindsDeclaredAndStackCandidates(tt *testing.T) {
	tt.Parallel()

	c := newTestCoordinator(tt, 1)
	m := c.NewMutator()

	declaredAddr := c.Space().Start()
	c.Space().AllocMap.Set(declaredAddr, Encode(true, true, 0b000001))
	m.SetConservativeRoots([]Address{declaredAddr})

	// Lay out a local word that looks like a valid object reference, then
	// capture a stack range that covers it, mimicking what
	// CaptureLowWaterMark + Yieldpoint do in real use.
	stackAddr := c.Space().Start().Plus(BytesInLine)
	c.Space().AllocMap.Set(stackAddr, Encode(true, true, 0b000001))

	var slot Address = stackAddr

	slotAddr := FromPointer(unsafe.Pointer(&slot))

	m.SetLowWaterMark(slotAddr.Plus(PointerSize))
	m.capturedSP = slotAddr

	c.stackScan(m)

	foundDeclared, foundStack := false, false

	for _, r := range c.roots {
		if r == declaredAddr {
			foundDeclared = true
		}

		if r == stackAddr {
			foundStack = true
		}
	}

	if !foundDeclared {
		tt.Errorf("expected declared root %s to be scanned in", declaredAddr)
	}

	if !foundStack {
		tt.Errorf("expected stack-resident candidate %s to be scanned in", stackAddr)
	}
}

func TestStackScanSkipsInvertedRange(tt *testing.T) {
	tt.Parallel()

	c := newTestCoordinator(tt, 1)
	m := c.NewMutator()

	m.capturedSP = Address(0x2000)
	m.SetLowWaterMark(Address(0x1000)) // mark < sp: nothing to scan

	c.stackScan(m)

	if len(c.roots) != 0 {
		tt.Errorf("expected no roots from an inverted stack range, got %d", len(c.roots))
	}
}

func TestYieldpointCapturesStackPointer(tt *testing.T) {
	tt.Parallel()

	c := newTestCoordinator(tt, 1)
	m := c.NewMutator()
	m.CaptureLowWaterMark()
	defer m.Destroy()

	c.TriggerGC()
	m.Yieldpoint()

	if m.capturedSP.IsZero() {
		tt.Errorf("expected Yieldpoint to capture a non-zero stack pointer")
	}
}
