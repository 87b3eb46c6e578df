package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/smoynes/immix/internal/cli"
	"github.com/smoynes/immix/internal/gc"
	"github.com/smoynes/immix/internal/log"
)

// Exhaust runs the single-thread allocation-exhaustion benchmark: allocate a
// large number of small, identically-shaped objects from one mutator and
// report how many collections it took.
func Exhaust() cli.Command {
	return &exhaust{
		count: 50_000_000,
		size:  24,
	}
}

type exhaust struct {
	count int
	size  int
	debug bool
}

func (exhaust) Description() string {
	return "allocate many small objects from a single mutator"
}

func (e exhaust) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
exhaust [ -count N ] [ -size BYTES ] [ -debug ]

Allocate count objects of size bytes each from one mutator, with no held
references, and report how many collections ran.`)

	return err
}

func (e *exhaust) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("exhaust", flag.ExitOnError)

	fs.IntVar(&e.count, "count", e.count, "number of objects to allocate")
	fs.IntVar(&e.size, "size", e.size, "size in bytes of each object")
	fs.BoolVar(&e.debug, "debug", false, "enable debug logging")

	return fs
}

func (e exhaust) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	if e.debug {
		log.LogLevel.Set(log.Debug)
	}

	cfg, err := gc.ConfigFromEnv()
	if err != nil {
		fmt.Fprintln(out, "config error:", err)
		return 2
	}

	coord, err := gc.New(cfg)
	if err != nil {
		fmt.Fprintln(out, "init error:", err)
		return 2
	}

	defer coord.Space().Close()

	mutator := coord.NewMutator()
	mutator.CaptureLowWaterMark()
	defer mutator.Destroy()

	start := time.Now()
	allocated := 0

	encodeByte := gc.Encode(true, true, 0b000011)

	for i := 0; i < e.count; i++ {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "exhaust: cancelled:", ctx.Err())
			return 1
		default:
		}

		addr, err := mutator.Alloc(uintptr(e.size), gc.PointerSize)
		if err != nil {
			fmt.Fprintln(out, "alloc error:", err)
			return 2
		}

		mutator.InitObject(addr, encodeByte)
		allocated += e.size
	}

	elapsed := time.Since(start)

	fmt.Fprintf(out, "allocated %d objects, %d bytes total, in %s\n", e.count, allocated, elapsed)
	fmt.Fprintf(out, "collections: %d\n", coord.GCCount())

	if coord.GCCount() == 0 {
		fmt.Fprintln(out, "warning: expected at least one collection")
		return 1
	}

	return 0
}
