package main_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/smoynes/immix/internal/cli"
	"github.com/smoynes/immix/internal/cli/cmd"
	"github.com/smoynes/immix/internal/log"
)

// timeout bounds how long any single benchmark command may run under test;
// a real run against a small heap should finish in well under a second.
const timeout = 5 * time.Second

func runCommand(tt *testing.T, command cli.Command, args []string) (int, string) {
	tt.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fs := command.FlagSet()
	if err := fs.Parse(args); err != nil {
		tt.Fatalf("parse flags: %v", err)
	}

	var out bytes.Buffer

	code := command.Run(ctx, fs.Args(), &out, log.DefaultLogger())

	return code, out.String()
}

func TestExhaustCommandSmallRun(tt *testing.T) {
	prev, had := os.LookupEnv("HEAP_SIZE")
	os.Setenv("HEAP_SIZE", "16M")

	tt.Cleanup(func() {
		if had {
			os.Setenv("HEAP_SIZE", prev)
		} else {
			os.Unsetenv("HEAP_SIZE")
		}
	})

	// 1,000,000 objects of 24 bytes exceed the Immix share of a 16M heap, so
	// at least one collection runs, which exhaust requires for exit 0.
	code, out := runCommand(tt, cmd.Exhaust(), []string{"-count", "1000000", "-size", "24"})

	if code != 0 {
		tt.Errorf("exhaust: want exit 0, got %d; output:\n%s", code, out)
	}
}

func TestChaseCommandSmallRun(tt *testing.T) {
	prev, had := os.LookupEnv("HEAP_SIZE")
	os.Setenv("HEAP_SIZE", "16M")

	tt.Cleanup(func() {
		if had {
			os.Setenv("HEAP_SIZE", prev)
		} else {
			os.Unsetenv("HEAP_SIZE")
		}
	})

	code, out := runCommand(tt, cmd.Chase(), []string{"-count", "10000"})

	if code != 0 {
		tt.Errorf("chase: want exit 0, got %d; output:\n%s", code, out)
	}
}

func TestGCBenchCommandSmallRun(tt *testing.T) {
	prev, had := os.LookupEnv("HEAP_SIZE")
	os.Setenv("HEAP_SIZE", "32M")

	tt.Cleanup(func() {
		if had {
			os.Setenv("HEAP_SIZE", prev)
		} else {
			os.Unsetenv("HEAP_SIZE")
		}
	})

	code, out := runCommand(tt, cmd.GCBench(), []string{"-depth", "8"})

	if code != 0 {
		tt.Errorf("gcbench: want exit 0, got %d; output:\n%s", code, out)
	}
}
