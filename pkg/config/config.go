// Package config holds the command-line configuration for a diagcheck
// run and the flag parsing that produces it.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/diagcheck/diagcheck/pkg/defaults"
	"github.com/diagcheck/diagcheck/pkg/duration"
)

// Config holds all runtime configuration for a suite run.
type Config struct {
	// Suite settings
	SuiteDir string // Root directory of the test suite
	Filter   string // Glob filter applied to case names
	Revision string // Run only this revision of revisioned cases

	// Compiler settings
	Compiler     string        // Override the compiler command from the manifest
	CompileFlags string        // Extra flags appended to every compile
	Timeout      time.Duration // Per-case compile timeout

	// Execution settings
	Concurrency int  // Parallel compile jobs
	RateLimit   int  // Max compile invocations per second (0 = unlimited)
	MaxErrors   int  // Abort the run after this many tool errors (0 = never)
	Strict      bool // Treat annotation warnings as failures
	DryRun      bool // Discover and plan without compiling
	Bless       bool // Rewrite snapshots from actual output

	// Output settings
	OutputFile   string // Results file path (empty = stdout)
	OutputFormat string // console, json, jsonl, junit
	ReportFile   string // Optional rendered report path
	ReportTmpl   string // Custom report template path
	Verbose      bool   // Print passing cases as well as failures
	Silent       bool   // Suppress banner and progress output
	NoColor      bool   // Disable ANSI styling
}

// validFormats lists the writer formats accepted by -format.
var validFormats = map[string]bool{
	"console": true,
	"json":    true,
	"jsonl":   true,
	"junit":   true,
}

// ParseFlags parses command-line flags and returns a validated Config.
// The suite directory may be given either positionally or via -suite.
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	// Suite flags
	flag.StringVar(&cfg.SuiteDir, "suite", "", "Test suite directory")
	flag.StringVar(&cfg.Filter, "filter", "", "Glob filter on case names (e.g. const-fn/*)")
	flag.StringVar(&cfg.Revision, "revision", "", "Run only the named revision")

	// Compiler flags
	flag.StringVar(&cfg.Compiler, "compiler", "", "Compiler command (overrides the manifest)")
	flag.StringVar(&cfg.CompileFlags, "compile-flags", "", "Extra compile flags, space separated")
	timeout := flag.Int("timeout", int(duration.CompileDefault.Seconds()), "Per-case compile timeout in seconds")

	// Execution flags
	flag.IntVar(&cfg.Concurrency, "concurrency", defaults.ConcurrencyMedium, "Number of parallel compile jobs")
	flag.IntVar(&cfg.Concurrency, "c", defaults.ConcurrencyMedium, "Number of parallel compile jobs (alias)")
	flag.IntVar(&cfg.RateLimit, "rate-limit", 0, "Max compile invocations per second (0 = unlimited)")
	flag.IntVar(&cfg.RateLimit, "rl", 0, "Max compile invocations per second (alias)")
	flag.IntVar(&cfg.MaxErrors, "max-errors", defaults.ErrorThreshold, "Abort after this many tool errors (0 = never)")
	flag.BoolVar(&cfg.Strict, "strict", false, "Treat annotation warnings as failures")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Discover and plan without compiling")
	flag.BoolVar(&cfg.Bless, "bless", false, "Rewrite snapshots from actual compiler output")

	// Output flags
	flag.StringVar(&cfg.OutputFile, "output", "", "Results file path (default stdout)")
	flag.StringVar(&cfg.OutputFile, "o", "", "Results file path (alias)")
	flag.StringVar(&cfg.OutputFormat, "format", "console", "Output format: console, json, jsonl, junit")
	flag.StringVar(&cfg.ReportFile, "report", "", "Write a rendered report to this path")
	flag.StringVar(&cfg.ReportTmpl, "report-template", "", "Custom report template file")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Print passing cases as well as failures")
	flag.BoolVar(&cfg.Verbose, "v", false, "Print passing cases as well as failures (alias)")
	flag.BoolVar(&cfg.Silent, "silent", false, "Suppress banner and progress output")
	flag.BoolVar(&cfg.Silent, "s", false, "Suppress banner and progress output (alias)")
	flag.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&cfg.NoColor, "nc", false, "Disable colored output (alias)")

	flag.Parse()

	cfg.Timeout = time.Duration(*timeout) * time.Second

	if cfg.SuiteDir == "" && flag.NArg() > 0 {
		cfg.SuiteDir = flag.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for missing or contradictory values.
func (c *Config) Validate() error {
	if c.SuiteDir == "" {
		return fmt.Errorf("%w: suite directory (positional argument or -suite)", ErrMissingRequired)
	}
	if !validFormats[c.OutputFormat] {
		return fmt.Errorf("%w: unknown output format %q (valid: console, json, jsonl, junit)", ErrInvalidConfig, c.OutputFormat)
	}
	if c.OutputFormat == "junit" && c.OutputFile == "" {
		return fmt.Errorf("%w: junit format requires -output", ErrInvalidConfig)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if c.Concurrency > defaults.ConcurrencyMax {
		c.Concurrency = defaults.ConcurrencyMax
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit cannot be negative", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
