package gc

// tracer.go implements the single-threaded, depth-first mark tracer
// (spec.md §4.8). See tracer_parallel.go for the work-stealing variant.

// Trace marks every object reachable from roots live: it sets the trace-map
// bit, marks the containing line live, and walks the object's reference
// bitmap to find more work, repeating until the work list is empty.
// Out-of-space roots are handed to the freelist space instead of queued.
func Trace(roots []Address, space *ImmixSpace, freelist *FreelistSpace) {
	var work []Address

	for _, r := range roots {
		enqueueEdge(r, space, freelist, &work)
	}

	for len(work) > 0 {
		n := len(work) - 1
		addr := work[n]
		work = work[:n]

		traceOne(addr, space, freelist, func(child Address) {
			enqueueEdge(child, space, freelist, &work)
		})
	}
}

// enqueueEdge routes a candidate reference to the Immix work list, the
// freelist space's lazy mark, or nowhere (if it's out of range entirely).
func enqueueEdge(addr Address, space *ImmixSpace, freelist *FreelistSpace, work *[]Address) {
	if space.AddrInSpace(addr) {
		if space.TraceMap.IsUntracedAndValid(addr) {
			*work = append(*work, addr)
		}

		return
	}

	if freelist != nil {
		freelist.MarkLive(addr)
	}
}

// traceOne marks addr traced and its line live, then decodes its alloc-map
// byte(s), invoking push for every non-zero reference word found. It walks
// forward in six-word strides while the short-encode bit is clear; a
// short-encoded object whose reference bitmap isn't one of the closed set
// of recognized patterns is a caller encoding bug and panics, matching
// spec.md §9's prohibition on a silent "walk every word" fallback.
func traceOne(addr Address, space *ImmixSpace, freelist *FreelistSpace, push func(Address)) {
	space.TraceMap.MarkAsTraced(addr)
	space.MarkLineLive(addr)

	base := addr

	for {
		encodeByte := space.AllocMap.Get(base)
		refBits := RefBits(encodeByte)
		shortEncode := IsShortEncode(encodeByte)

		if shortEncode {
			if err := ValidateRefBits(refBits); err != nil {
				panic(err)
			}
		}

		for i := 0; i < RefBitsLen; i++ {
			if refBits&(1<<uint(i)) == 0 {
				continue
			}

			wordAddr := base.Plus(uintptr(i) * PointerSize)
			value := LoadAddress(wordAddr)

			if value.IsZero() {
				continue
			}

			push(value)
		}

		if shortEncode {
			return
		}

		base = base.Plus(uintptr(RefBitsLen) * PointerSize)
	}
}
