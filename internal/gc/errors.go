package gc

import "errors"

// Sentinel errors returned by the collector's public entry points. Callers
// should compare against these with errors.Is rather than matching on
// message text.
var (
	// ErrOutOfMemory is returned when a large-object allocation cannot be
	// satisfied by the freelist space even after a collection. Exhaustion
	// of the Immix space is not reported through it: ImmixSpace.Sweep
	// panics when every block is full.
	ErrOutOfMemory = errors.New("gc: out of memory")

	// ErrBadEncoding is returned when a reference-bitmap byte doesn't
	// match any of the closed set of patterns the tracer understands.
	ErrBadEncoding = errors.New("gc: unrecognized object encoding")

	// ErrConfig is returned when a Config value can't be turned into a
	// running collector: a bad HEAP_SIZE string, a space size that isn't
	// block-aligned, or a failed mmap.
	ErrConfig = errors.New("gc: invalid configuration")
)
