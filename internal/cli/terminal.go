package cli

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether out is an interactive terminal. Commands that
// print incremental progress (gcbench's depth-by-depth construction, for
// instance) use this to decide between a single rewritten status line and
// plain, fully-logged output suitable for redirection into a file or CI
// log.
func IsTerminal(out *os.File) bool {
	return term.IsTerminal(int(out.Fd()))
}
