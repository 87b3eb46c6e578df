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

// Chase builds a long linked chain of objects, keeps the head alive as a
// root, forces a collection, and reports whether the collection ran. It does
// not inspect the trace state of the chain's objects.
func Chase() cli.Command {
	return &chase{count: 1_000_000}
}

type chase struct {
	count int
	debug bool
}

func (chase) Description() string {
	return "allocate and trace a linked chain of objects"
}

func (c chase) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
chase [ -count N ] [ -debug ]

Allocate a chain of N objects, each holding the address of the next, rooted
at the head, then force a collection and report whether it ran.`)

	return err
}

func (c *chase) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("chase", flag.ExitOnError)

	fs.IntVar(&c.count, "count", c.count, "length of the chain to build")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging")

	return fs
}

const chaseObjectSize = 24

func (c chase) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	if c.debug {
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

	encodeByte := gc.Encode(true, true, 0b000001)

	addrs := make([]gc.Address, c.count)

	start := time.Now()

	for i := 0; i < c.count; i++ {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "chase: cancelled:", ctx.Err())
			return 1
		default:
		}

		addr, err := mutator.Alloc(chaseObjectSize, gc.PointerSize)
		if err != nil {
			fmt.Fprintln(out, "alloc error:", err)
			return 2
		}

		mutator.InitObject(addr, encodeByte)
		addrs[i] = addr

		if i > 0 {
			gc.StoreAddress(addrs[i-1], addr)
		}
	}

	gc.StoreAddress(addrs[c.count-1], gc.NullAddress)

	head := addrs[0]
	mutator.SetConservativeRoots([]gc.Address{head})

	before := coord.GCCount()
	coord.TriggerGC()
	mutator.Yieldpoint()

	fmt.Fprintf(out, "built chain of %d objects in %s\n", c.count, time.Since(start))
	fmt.Fprintf(out, "collections: %d -> %d\n", before, coord.GCCount())

	if coord.GCCount() == before {
		fmt.Fprintln(out, "warning: expected the forced collection to run")
		return 1
	}

	return 0
}
