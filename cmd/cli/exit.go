package main

import (
	"fmt"
	"os"

	"github.com/diagcheck/diagcheck/pkg/ui"
)

// exitWithError prints a formatted error message and exits with the
// user-error code.
func exitWithError(format string, args ...any) {
	ui.PrintError(fmt.Sprintf(format, args...))
	os.Exit(3)
}

// exitWithUsage prints an error message followed by a usage hint, then exits.
func exitWithUsage(msg, usage string) {
	ui.PrintError(msg)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage:", usage)
	os.Exit(3)
}
