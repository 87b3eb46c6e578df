// Command immix is the command-line interface to the collector's allocation
// benchmark suite.
package main

import (
	"context"
	"os"

	"github.com/smoynes/immix/internal/cli"
	"github.com/smoynes/immix/internal/cli/cmd"
)

var (
	commands = []cli.Command{
		cmd.Exhaust(),
		cmd.Chase(),
		cmd.GCBench(),
	}
)

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
