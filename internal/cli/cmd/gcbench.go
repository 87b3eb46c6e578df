package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/smoynes/immix/internal/cli"
	"github.com/smoynes/immix/internal/gc"
	"github.com/smoynes/immix/internal/log"
)

// GCBench runs a variant of Hans Boehm's binary-tree allocator benchmark:
// stretch a short-lived tree to pressure the heap, then build a long-lived
// tree held for the whole run, then repeatedly build and discard trees of
// increasing depth.
func GCBench() cli.Command {
	return &gcbench{maxDepth: 16}
}

type gcbench struct {
	maxDepth int
	debug    bool
}

func (gcbench) Description() string {
	return "run the binary-tree allocation benchmark"
}

func (b gcbench) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
gcbench [ -depth N ] [ -debug ]

Stretch the heap with a depth-(N+2) tree, hold a depth-N tree for the whole
run, then build and discard trees of depth 4, 6, ..., N.`)

	return err
}

func (b *gcbench) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("gcbench", flag.ExitOnError)

	fs.IntVar(&b.maxDepth, "depth", b.maxDepth, "depth of the long-lived tree")
	fs.BoolVar(&b.debug, "debug", false, "enable debug logging")

	return fs
}

// treeNodeSize is two pointer-sized slots: left and right children.
const treeNodeSize = 2 * gc.PointerSize

const treeNodeEncoding = 0b000011

// buildTree allocates a complete binary tree of the given depth and returns
// its root. Depth 0 is a single leaf (both children null).
func buildTree(m *gc.Mutator, depth int) (gc.Address, error) {
	root, err := m.Alloc(treeNodeSize, gc.PointerSize)
	if err != nil {
		return gc.NullAddress, err
	}

	m.InitObject(root, gc.Encode(true, true, treeNodeEncoding))

	if depth == 0 {
		gc.StoreAddress(root, gc.NullAddress)
		gc.StoreAddress(root.Plus(gc.PointerSize), gc.NullAddress)

		return root, nil
	}

	left, err := buildTree(m, depth-1)
	if err != nil {
		return gc.NullAddress, err
	}

	right, err := buildTree(m, depth-1)
	if err != nil {
		return gc.NullAddress, err
	}

	gc.StoreAddress(root, left)
	gc.StoreAddress(root.Plus(gc.PointerSize), right)

	return root, nil
}

// progress reports depth-by-depth construction progress: a single
// rewritten line on an interactive terminal, one line per depth otherwise.
func progress(out io.Writer, depth int) {
	if f, ok := out.(*os.File); ok && cli.IsTerminal(f) {
		fmt.Fprintf(out, "\rcompleted top-down construction of depth %d", depth)
		return
	}

	fmt.Fprintf(out, "completed top-down construction of depth %d\n", depth)
}

func (b gcbench) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	if b.debug {
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

	fmt.Fprintf(out, "stretching memory with a tree of depth %d\n", b.maxDepth+2)

	if _, err := buildTree(mutator, b.maxDepth+2); err != nil {
		fmt.Fprintln(out, "alloc error:", err)
		return 2
	}

	mutator.SetConservativeRoots(nil)

	longLived, err := buildTree(mutator, b.maxDepth)
	if err != nil {
		fmt.Fprintln(out, "alloc error:", err)
		return 2
	}

	for depth := 4; depth <= b.maxDepth; depth += 2 {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "gcbench: cancelled:", ctx.Err())
			return 1
		default:
		}

		mutator.SetConservativeRoots([]gc.Address{longLived})

		if _, err := buildTree(mutator, depth); err != nil {
			fmt.Fprintln(out, "alloc error:", err)
			return 2
		}

		progress(out, depth)
	}

	if f, ok := out.(*os.File); ok && cli.IsTerminal(f) {
		fmt.Fprintln(out)
	}

	mutator.SetConservativeRoots([]gc.Address{longLived})
	coord.TriggerGC()
	mutator.Yieldpoint()

	fmt.Fprintf(out, "gcbench completed in %s, collections: %d\n", time.Since(start), coord.GCCount())

	if coord.GCCount() == 0 {
		fmt.Fprintln(out, "warning: expected at least one collection")
		return 1
	}

	return 0
}
