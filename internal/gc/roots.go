package gc

// roots.go implements conservative root identification: scanning a
// mutator's own machine stack and registers, plus any explicitly declared
// candidate words, and keeping the ones that look like valid object
// references.
//
// The reference implementation walks a native thread's raw stack memory
// between its low-water mark and its current stack pointer, plus a fixed
// list of callee-saved registers, entirely in inline assembly, with the
// collecting thread reading another thread's state directly. Go's runtime
// owns and moves goroutine stacks (they grow and get relocated across
// calls) and exposes no portable way for one goroutine to read another's
// live register file or stack bounds, so that cross-thread read doesn't
// translate directly.
//
// Instead, every mutator scans itself: archStackPointer and
// archCalleeSavedRegisters (roots_amd64.s / roots_arm64.s) are small
// assembly stubs that read the calling goroutine's own stack pointer and
// non-volatile registers, called synchronously from Yieldpoint's slow path
// (mutator.go) at the moment the mutator is about to suspend at the
// barrier -- never from any other goroutine. CaptureLowWaterMark pins the
// mutator to its OS thread with runtime.LockOSThread so the goroutine (and
// its stack) can't migrate between the low-water mark being recorded and
// the scan that later walks up to it. The controller (coordinator.go)
// still filters every word this turns up -- stack, register, or
// explicitly declared -- through isConservativeRoot before trusting it,
// exactly as the reference implementation filters its own raw scan. See
// DESIGN.md.

// calleeSavedRegisters holds a snapshot of an architecture's non-volatile
// registers, captured by archCalleeSavedRegisters.
type calleeSavedRegisters [6]uintptr

// SetConservativeRoots replaces the mutator's declared set of candidate
// root words, in addition to the stack and register scan every mutator
// already gets for free at its next Yieldpoint. Used for references a
// caller wants scanned that live somewhere other than this goroutine's own
// stack or registers -- a global table slot, for instance.
func (m *Mutator) SetConservativeRoots(words []Address) {
	m.conservative = words
}

// conservativeCandidates returns the mutator's currently declared candidate
// words.
func (m *Mutator) conservativeCandidates() []Address {
	return m.conservative
}

// stackScan conservatively scans self: its declared candidate words, its
// captured stack range [capturedSP, lowWaterMark), and its captured
// callee-saved registers, filtering for addresses that are pointer-aligned,
// land inside the Immix space, and whose alloc-map byte has the
// object-start bit set. Matches are appended to the shared roots vector.
func (c *Coordinator) stackScan(self *Mutator) {
	for _, addr := range self.conservativeCandidates() {
		if isConservativeRoot(addr, c.space) {
			c.AddRoot(addr)
		}
	}

	c.scanStackRange(self)
	c.scanRegisters(self)
}

// scanStackRange walks self's captured stack, one pointer-sized word at a
// time, from its current stack pointer up to its low-water mark -- the
// range of frames pushed since CaptureLowWaterMark ran. An empty or
// inverted range (no low-water mark captured, or the stack is shallower
// than the mark) is skipped rather than scanned.
func (c *Coordinator) scanStackRange(self *Mutator) {
	sp, mark := self.capturedSP, self.lowWaterMark

	if sp.IsZero() || mark.IsZero() || mark < sp {
		return
	}

	for addr := sp; addr < mark; addr = addr.Plus(PointerSize) {
		candidate := LoadAddress(addr)
		if isConservativeRoot(candidate, c.space) {
			c.AddRoot(candidate)
		}
	}
}

// scanRegisters treats each of self's captured callee-saved registers as a
// candidate reference -- this is what keeps scenario 6 (a reference held
// only in a register across a Yieldpoint) alive.
func (c *Coordinator) scanRegisters(self *Mutator) {
	for _, reg := range self.capturedRegs {
		candidate := Address(reg)
		if isConservativeRoot(candidate, c.space) {
			c.AddRoot(candidate)
		}
	}
}

// isConservativeRoot reports whether addr looks like a valid object
// reference into space: pointer-aligned, in range, and marked as an object
// start in the alloc map.
func isConservativeRoot(addr Address, space *ImmixSpace) bool {
	if !addr.Aligned(PointerSize) {
		return false
	}

	if !space.AddrInSpace(addr) {
		return false
	}

	return IsObjectStart(space.AllocMap.Get(addr))
}
