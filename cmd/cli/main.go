// Command diagcheck runs compiler diagnostic snapshot suites: it
// compiles each UI test case, normalizes the emitted diagnostics, and
// compares them against blessed .stderr snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/diagcheck/diagcheck/pkg/ui"
)

func main() {
	// Check for subcommands
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(3)
	}

	switch os.Args[1] {
	case "run":
		// Remove "run" from args and continue with normal execution
		os.Args = append(os.Args[:1], os.Args[2:]...)
		runSuite()
	case "bless", "update":
		// Bless is run with snapshot rewriting forced on
		os.Args = blessArgs(os.Args)
		runSuite()
	case "check", "validate":
		runCheck()
	case "list", "ls":
		runList()
	case "detect":
		runDetect()
	case "render":
		runRender()
	case "diff":
		runDiff()
	case "-h", "--help", "help":
		printUsage()
		os.Exit(0)
	case "-v", "--version", "version":
		ui.PrintMiniBanner()
		os.Exit(0)
	default:
		// Assume it's a flag or suite path for the default "run" command
		runSuite()
	}
}

// blessArgs rewrites a bless invocation into run arguments. The -bless
// flag goes before the user's arguments: flag parsing stops at the
// first positional, so a trailing flag after the suite path is ignored.
func blessArgs(args []string) []string {
	return append([]string{args[0], "-bless"}, args[2:]...)
}

func printUsage() {
	ui.PrintBanner()

	fmt.Println(ui.SectionStyle.Render("USAGE"))
	fmt.Println()
	fmt.Println("  diagcheck [command] [flags] <suite-dir>")
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("COMMANDS"))
	fmt.Println()
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("run    "), "Compile every case and compare output against snapshots (default)")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("bless  "), "Re-run the suite and rewrite snapshots from actual output")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("check  "), "Validate the suite: manifest, orphaned snapshots, directives")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("list   "), "List discovered cases without compiling")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("detect "), "Probe the configured compiler and print its version")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("render "), "Render a JSON diagnostic stream from stdin as human-readable text")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("diff   "), "Normalize and diff two .stderr files")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("version"), "Print version information")
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("COMMON FLAGS"))
	fmt.Println()
	fmt.Println("  -suite <dir>        Suite directory (or pass it positionally)")
	fmt.Println("  -filter <glob>      Only run cases whose name matches the glob")
	fmt.Println("  -revision <name>    Only run the named revision of revisioned cases")
	fmt.Println("  -compiler <cmd>     Override the compiler command from suite.yaml")
	fmt.Println("  -c <n>              Parallel compile jobs (default: 8)")
	fmt.Println("  -rl <n>             Max compile invocations per second (default: unlimited)")
	fmt.Println("  -timeout <sec>      Per-case compile timeout (default: 30)")
	fmt.Println("  -strict             Treat annotation warnings as failures")
	fmt.Println("  -bless              Rewrite snapshots from actual output")
	fmt.Println("  -dry-run            Discover and plan without compiling; with -bless,")
	fmt.Println("                      compile and report planned snapshot rewrites without writing")
	fmt.Println("  -o <file>           Write results to a file")
	fmt.Println("  -format <fmt>       console, json, jsonl, junit (default: console)")
	fmt.Println("  -report <file>      Render a report (markdown or text) after the run")
	fmt.Println("  -v                  Also print passing cases")
	fmt.Println("  -s                  Silent mode")
	fmt.Println("  -nc                 Disable colors")
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("EXAMPLES"))
	fmt.Println()
	fmt.Println("  diagcheck tests/ui")
	fmt.Println("  diagcheck run -filter 'const-fn/*' -v tests/ui")
	fmt.Println("  diagcheck bless -filter object-safety/bare tests/ui")
	fmt.Println("  diagcheck check tests/ui")
	fmt.Println("  diagcheck run -format junit -o results.xml tests/ui")
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("EXIT CODES"))
	fmt.Println()
	fmt.Println("  0  all cases matched    3  invalid configuration")
	fmt.Println("  1  snapshot mismatches  4  compiler not found")
	fmt.Println("  2  tool errors          5  interrupted")
	fmt.Println()
}
