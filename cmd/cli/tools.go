package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/diagcheck/diagcheck/pkg/defaults"
	"github.com/diagcheck/diagcheck/pkg/diag"
	"github.com/diagcheck/diagcheck/pkg/normalize"
	"github.com/diagcheck/diagcheck/pkg/output/exitcode"
	"github.com/diagcheck/diagcheck/pkg/snapshot"
)

// runRender reads a compiler JSON diagnostic stream from stdin (or a
// file) and prints the human-readable rendering on stdout.
func runRender() {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	input := fs.String("input", "", "Read the JSON stream from a file instead of stdin")
	fs.Parse(os.Args[2:])
	if *input == "" && fs.NArg() > 0 {
		*input = fs.Arg(0)
	}

	var src io.Reader = os.Stdin
	if *input != "" && *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			exitWithError("Cannot read diagnostic stream: %v", err)
		}
		defer f.Close()
		src = f
	}

	diags, err := diag.DecodeJSON(src)
	if err != nil {
		exitWithError("Cannot decode diagnostic stream: %v", err)
	}
	fmt.Print(diag.NewRenderer().RenderAll(diags))
}

// runDiff normalizes and compares two stderr files and prints the
// unified diff. Exit code follows run semantics: 0 identical, 1 drift.
func runDiff() {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	contextLines := fs.Int("context", defaults.DiffContextLines, "Context lines around each hunk")
	fs.Parse(os.Args[2:])
	if fs.NArg() != 2 {
		exitWithUsage("Expected two stderr files", "diagcheck diff <expected.stderr> <actual.stderr>")
	}

	read := func(path string) string {
		raw, err := os.ReadFile(path)
		if err != nil {
			exitWithError("Cannot read %s: %v", path, err)
		}
		norm, err := normalize.New(filepath.Dir(path)).Apply(string(raw))
		if err != nil {
			exitWithError("Cannot normalize %s: %v", path, err)
		}
		return norm
	}

	diff := snapshot.Compare(read(fs.Arg(0)), read(fs.Arg(1)))
	if diff.Identical {
		return
	}
	fmt.Print(diff.Unified(*contextLines))
	os.Exit(int(exitcode.Mismatches))
}
