/*
Package gc implements a tracing, mark-region garbage collector modelled on the
Immix design described by Blackburn & McKinley.

With the reason for the project to learn more about memory management, the
design mimics the original allocator closely: a large mmap-backed heap is
partitioned into fixed-size blocks, blocks are partitioned into fixed-size
lines, and a thread-local bump allocator fills the holes between dead lines
rather than compacting them away.

# Heap layout #

The Immix space is one contiguous, naturally-aligned mapping, carved into
64 KiB blocks. Each block is further divided into 256-byte lines, the unit
of reclamation: a sweep frees individual dead lines within a block without
moving any live data, so a block that is mostly garbage can still be reused
immediately for new bump allocation in its holes.

	+==============================================================+
	|                      Immix space (mmap)                      |
	+========+========+========+========+========+========+========+
	| block  | block  | block  | block  | block  | block  |  ...   |
	+--------+--------+--------+--------+--------+--------+--------+
	|l|l|l|l|...                                                   |  <- 256 lines/block
	+--------+--------+--------+--------+--------+--------+--------+

Large objects that don't fit comfortably in the line-granular space are
instead allocated from a side FreelistSpace backed directly by the host
allocator and tracked with a tri-state mark for lazy, two-cycle sweeping.

# Collection #

Collection is stop-the-world: when any allocation path runs out of blocks,
every mutator is made to notice at its next Yieldpoint, one of them is
elected controller, roots are scanned conservatively from the stack and
machine registers, live objects are traced and their containing lines
marked live, both spaces are swept, and the mark state bit is flipped to
invalidate the previous generation's trace-map entries without having to
clear them.

# Object encoding #

The collector does not place a header ahead of an object's payload. Instead,
callers write a single encoding byte into the alloc map at the object's
start address (see AllocMap, Encode, and the ObjStartBit, ShortEncodeBit
and RefBitsMask constants) before the object can become reachable from any
root. The byte records whether the slot begins an object and a six-bit bitmap of
which of the object's first six words are themselves heap references.
*/
package gc
