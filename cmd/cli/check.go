package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/diagcheck/diagcheck/pkg/duration"
	"github.com/diagcheck/diagcheck/pkg/manifest"
	"github.com/diagcheck/diagcheck/pkg/output/exitcode"
	"github.com/diagcheck/diagcheck/pkg/snapshot"
	"github.com/diagcheck/diagcheck/pkg/toolchain"
	"github.com/diagcheck/diagcheck/pkg/ui"
)

// suiteArg resolves the suite directory from a subcommand flag set.
func suiteArg(fs *flag.FlagSet, suiteFlag string, usage string) string {
	if suiteFlag != "" {
		return suiteFlag
	}
	if fs.NArg() > 0 {
		return fs.Arg(0)
	}
	exitWithUsage("Suite directory is required", usage)
	return ""
}

// runCheck validates a suite without compiling: manifest shape,
// orphaned snapshots, unknown directives, and assertion-free cases.
func runCheck() {
	ui.PrintSection("Suite Validation")

	fs := flag.NewFlagSet("check", flag.ExitOnError)
	suiteFlag := fs.String("suite", "", "Test suite directory")
	noColor := fs.Bool("nc", false, "Disable colored output")
	fs.Parse(os.Args[2:])
	ui.SetNoColor(*noColor)

	dir := suiteArg(fs, *suiteFlag, "diagcheck check <suite-dir>")

	man, err := manifest.LoadDir(dir)
	if err != nil {
		exitWithError("Cannot load suite manifest: %v", err)
	}

	v := manifest.NewValidator()
	result := v.Validate(man)
	if result.Valid {
		suiteResult, err := v.ValidateSuite(dir, man)
		if err != nil {
			exitWithError("Suite validation failed: %v", err)
		}
		result.Errors = append(result.Errors, suiteResult.Errors...)
		result.Warnings = append(result.Warnings, suiteResult.Warnings...)
		result.Valid = result.Valid && suiteResult.Valid
	}

	for _, w := range result.Warnings {
		ui.PrintWarning(w)
	}
	for _, e := range result.Errors {
		ui.PrintError(e)
	}

	if !result.Valid {
		ui.PrintError(fmt.Sprintf("Suite is invalid: %d errors, %d warnings", len(result.Errors), len(result.Warnings)))
		os.Exit(int(exitcode.Configuration))
	}
	ui.PrintSuccess(fmt.Sprintf("Suite is valid (%d warnings)", len(result.Warnings)))
}

// runList prints the discovered cases without compiling.
func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	suiteFlag := fs.String("suite", "", "Test suite directory")
	filter := fs.String("filter", "", "Glob filter on case names")
	fs.Parse(os.Args[2:])

	dir := suiteArg(fs, *suiteFlag, "diagcheck list <suite-dir>")

	man, err := manifest.LoadDir(dir)
	if err != nil {
		exitWithError("Cannot load suite manifest: %v", err)
	}
	cases, err := manifest.Discover(dir, man)
	if err != nil {
		exitWithError("Case discovery failed: %v", err)
	}
	cases = filterCases(cases, *filter)

	blessed := 0
	for _, c := range cases {
		marker := " "
		if _, err := snapshot.Load(c.SnapshotPath("")); !errors.Is(err, snapshot.ErrNotBlessed) {
			marker = "*"
			blessed++
		}
		if c.Skip {
			fmt.Printf("%s %s (skip: %s)\n", marker, c.Name, c.SkipReason)
			continue
		}
		fmt.Printf("%s %s\n", marker, c.Name)
	}
	fmt.Printf("\n%d cases, %d with snapshots (* = blessed)\n", len(cases), blessed)
}

// runDetect probes the configured compiler and prints its version line.
func runDetect() {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	suiteFlag := fs.String("suite", "", "Test suite directory")
	compiler := fs.String("compiler", "", "Compiler command (overrides the manifest)")
	fs.Parse(os.Args[2:])

	man := manifest.Default()
	dir := *suiteFlag
	if dir == "" && fs.NArg() > 0 {
		dir = fs.Arg(0)
	}
	if dir != "" {
		loaded, err := manifest.LoadDir(dir)
		if err != nil {
			exitWithError("Cannot load suite manifest: %v", err)
		}
		man = loaded
	}
	if *compiler != "" {
		man.Compiler.Command = *compiler
	}

	tc := toolchain.New(man.Compiler.Command, man.Compiler.Args...)
	ctx, cancel := context.WithTimeout(context.Background(), duration.ToolProbe)
	defer cancel()

	version, err := tc.Detect(ctx)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Compiler %q not usable: %v", man.Compiler.Command, err))
		os.Exit(int(exitcode.ToolMissing))
	}
	fmt.Println(version)
}
