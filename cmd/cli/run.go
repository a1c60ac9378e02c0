package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/diagcheck/diagcheck/pkg/config"
	"github.com/diagcheck/diagcheck/pkg/defaults"
	"github.com/diagcheck/diagcheck/pkg/diag"
	"github.com/diagcheck/diagcheck/pkg/diagparse"
	"github.com/diagcheck/diagcheck/pkg/duration"
	"github.com/diagcheck/diagcheck/pkg/manifest"
	"github.com/diagcheck/diagcheck/pkg/normalize"
	"github.com/diagcheck/diagcheck/pkg/output"
	"github.com/diagcheck/diagcheck/pkg/output/exitcode"
	"github.com/diagcheck/diagcheck/pkg/regexcache"
	"github.com/diagcheck/diagcheck/pkg/report"
	"github.com/diagcheck/diagcheck/pkg/runner"
	"github.com/diagcheck/diagcheck/pkg/snapshot"
	"github.com/diagcheck/diagcheck/pkg/testfile"
	"github.com/diagcheck/diagcheck/pkg/toolchain"
	"github.com/diagcheck/diagcheck/pkg/ui"
	"github.com/diagcheck/diagcheck/pkg/verdict"
)

// revisionOutcome is one compiled revision of a case, paired with the
// exit class so the exit code manager can see tool-missing failures.
type revisionOutcome struct {
	result *output.CaseResult
	class  toolchain.Class
}

// suiteRun carries the per-run state shared by all case tasks.
type suiteRun struct {
	cfg    *config.Config
	man    *manifest.Manifest
	tc     *toolchain.Toolchain
	outDir string
	strict bool
}

func runSuite() {
	// Parse CLI flags first to check for silent mode
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERR] Configuration error: %v\n", err)
		os.Exit(int(exitcode.Configuration))
	}

	ui.SetSilent(cfg.Silent)
	ui.SetNoColor(cfg.NoColor)
	if !cfg.Silent {
		ui.PrintBanner()
	}

	man, err := manifest.LoadDir(cfg.SuiteDir)
	if err != nil {
		exitWithError("Cannot load suite manifest: %v", err)
	}
	if !man.Meta.Enabled {
		ui.PrintWarning(fmt.Sprintf("Suite %q is disabled in its manifest", man.Meta.Name))
		os.Exit(int(exitcode.Success))
	}

	// CLI overrides win over the manifest
	if cfg.Compiler != "" {
		man.Compiler.Command = cfg.Compiler
		man.Compiler.Args = nil
	}
	if cfg.CompileFlags != "" {
		man.Compiler.Flags = append(man.Compiler.Flags, strings.Fields(cfg.CompileFlags)...)
	}

	timeout := cfg.Timeout
	if man.Compiler.Timeout != "" && cfg.Timeout == duration.CompileDefault {
		timeout, err = man.CompileTimeout()
		if err != nil {
			exitWithError("%v", err)
		}
	}

	// Bad suite-level normalize patterns should fail before any
	// compile is spent on them.
	var patterns []string
	for _, rule := range man.NormalizeRules() {
		patterns = append(patterns, rule.Pattern)
	}
	if errs := regexcache.Precompile(patterns...); len(errs) > 0 {
		exitWithError("Invalid normalization pattern: %v", errs[0])
	}

	cases, err := manifest.Discover(cfg.SuiteDir, man)
	if err != nil {
		exitWithError("Case discovery failed: %v", err)
	}
	cases = filterCases(cases, cfg.Filter)
	if len(cases) == 0 {
		exitWithError("%v (suite %s, filter %q)", runner.ErrNoCases, cfg.SuiteDir, cfg.Filter)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exitMgr := exitcode.New(exitcode.Config{
		ExitOnError:    cfg.MaxErrors > 0,
		ErrorThreshold: cfg.MaxErrors,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr)
		ui.PrintWarning("Interrupt received, shutting down gracefully...")
		exitMgr.SetInterrupted()
		cancel()
	}()

	tc := toolchain.New(man.Compiler.Command, man.Compiler.Args...)
	tc.Flags = man.Compiler.Flags

	probeCtx, probeCancel := context.WithTimeout(ctx, duration.ToolProbe)
	version, err := tc.Detect(probeCtx)
	probeCancel()
	if err != nil {
		if errors.Is(err, toolchain.ErrToolMissing) {
			exitMgr.SetToolMissing()
			ui.PrintError(fmt.Sprintf("Compiler %q not found: %v", man.Compiler.Command, err))
			code, _ := exitMgr.ExitCode()
			os.Exit(int(code))
		}
		ui.PrintWarning(fmt.Sprintf("Compiler version probe failed: %v", err))
		version = man.Compiler.Command
	}

	mode := "run"
	switch {
	case cfg.Bless && cfg.DryRun:
		mode = "bless (dry-run)"
	case cfg.Bless:
		mode = "bless"
	case cfg.DryRun:
		mode = "dry-run"
	}
	if !cfg.Silent {
		options := map[string]string{
			"Suite":       cfg.SuiteDir,
			"Compiler":    version,
			"Mode":        mode,
			"Cases":       fmt.Sprintf("%d", len(cases)),
			"Concurrency": fmt.Sprintf("%d", cfg.Concurrency),
			"Timeout":     timeout.String(),
			"Format":      cfg.OutputFormat,
		}
		if cfg.RateLimit > 0 {
			options["Rate Limit"] = fmt.Sprintf("%d job/sec", cfg.RateLimit)
		}
		if cfg.Strict || man.Strict {
			options["Strict"] = "enabled"
		}
		if cfg.Bless {
			options["Bless"] = "enabled"
		}
		if cfg.OutputFile != "" {
			options["Output"] = cfg.OutputFile
		}
		ui.PrintConfigBanner(options)
	}

	// A dry-run bless still compiles so it can report planned snapshot
	// rewrites; a plain dry-run stops at discovery.
	if cfg.DryRun && !cfg.Bless {
		runDryRun(cases, cfg.Revision)
		os.Exit(int(exitcode.Success))
	}

	outDir, err := os.MkdirTemp("", "diagcheck-*")
	if err != nil {
		exitWithError("Cannot create scratch directory: %v", err)
	}
	defer os.RemoveAll(outDir)

	writer, err := output.NewWriterWithOptions(cfg.OutputFile, cfg.OutputFormat, output.WriterOptions{
		Verbose: cfg.Verbose,
		Silent:  cfg.Silent,
		Suite:   man.Meta.Name,
	})
	if err != nil {
		exitWithError("Cannot create output writer: %v", err)
	}

	sr := &suiteRun{
		cfg:    cfg,
		man:    man,
		tc:     tc,
		outDir: outDir,
		strict: cfg.Strict || man.Strict,
	}

	r := runner.NewRunner[[]*revisionOutcome]()
	r.Concurrency = cfg.Concurrency
	r.RateLimit = cfg.RateLimit
	r.Timeout = timeout
	r.MaxErrors = cfg.MaxErrors

	progress := ui.NewProgress(ui.ProgressConfig{Total: len(cases), ShowETA: true})
	progress.Start()

	summary := output.NewExecutionResults()
	var allResults []*output.CaseResult

	record := func(cr *output.CaseResult) {
		if err := writer.Write(cr); err != nil {
			ui.PrintWarning(fmt.Sprintf("Write failed for %s: %v", cr.Name, err))
		}
		summary.Record(cr)
		exitMgr.Record(cr.Verdict)
		progress.Record(string(cr.Verdict))
		allResults = append(allResults, cr)
	}

	r.RunWithCallback(ctx, cases, sr.runCase, func(res runner.Result[[]*revisionOutcome]) {
		if res.Error != nil {
			record(&output.CaseResult{
				ID:           res.Case.ID,
				Name:         res.Case.Name,
				File:         res.Case.File,
				Verdict:      verdict.Error,
				Reasons:      []string{res.Error.Error()},
				ErrorMessage: res.Error.Error(),
				DurationMs:   res.Duration.Milliseconds(),
				Timestamp:    time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		for _, oc := range res.Data {
			if oc.class == toolchain.ClassToolMissing {
				exitMgr.SetToolMissing()
			}
			record(oc.result)
		}
	})

	progress.Stop()
	summary.Finalize()
	if err := writer.Close(); err != nil {
		ui.PrintWarning(fmt.Sprintf("Closing output writer: %v", err))
	}

	if cw, ok := writer.(*output.ConsoleWriter); ok && !cfg.Silent {
		cw.WriteSummary(summary)
	}
	ui.PrintFinalProgress(summary.TotalCases, summary.Duration,
		summary.Passed, summary.Mismatched, summary.Errored, summary.Skipped)

	if cfg.ReportFile != "" {
		writeReport(cfg, man, version, allResults, summary)
	}

	code, desc := exitMgr.ExitCode()
	if code != exitcode.Success && !cfg.Silent {
		ui.PrintHelp(desc)
	}
	os.Exit(int(code))
}

// runCase compiles every revision of one case and evaluates the
// results. Harness failures are returned as errors so the runner's
// error threshold sees them; compiler outcomes become verdicts.
func (s *suiteRun) runCase(ctx context.Context, c *manifest.Case) ([]*revisionOutcome, error) {
	now := func() string { return time.Now().UTC().Format(time.RFC3339) }

	if c.Skip {
		eval := verdict.Skip(c.SkipReason)
		return []*revisionOutcome{{result: &output.CaseResult{
			ID: c.ID, Name: c.Name, File: c.File,
			Verdict: eval.Verdict, Reasons: eval.Reasons, Timestamp: now(),
		}}}, nil
	}

	tf, err := testfile.Load(c.File)
	if err != nil {
		return nil, err
	}

	if tf.IgnoreTest {
		eval := verdict.Skip(strings.Join(tf.IgnoreReasons, "; "))
		return []*revisionOutcome{{result: &output.CaseResult{
			ID: c.ID, Name: c.Name, File: c.File,
			Verdict: eval.Verdict, Reasons: eval.Reasons, Timestamp: now(),
		}}}, nil
	}

	var outcomes []*revisionOutcome
	for _, rev := range revisionsToRun(tf, s.cfg.Revision) {
		oc, err := s.runRevision(ctx, c, tf, rev)
		if err != nil {
			return nil, err
		}
		oc.result.Timestamp = now()
		outcomes = append(outcomes, oc)
	}
	return outcomes, nil
}

func (s *suiteRun) runRevision(ctx context.Context, c *manifest.Case, tf *testfile.File, rev string) (*revisionOutcome, error) {
	edition := tf.Edition
	if edition == "" {
		edition = s.man.Compiler.Edition
	}

	flags := make([]string, 0, len(tf.CompileFlags)+len(c.Flags))
	flags = append(flags, tf.CompileFlags...)
	flags = append(flags, tf.RevisionFlags[rev]...)
	flags = append(flags, c.Flags...)

	res, err := s.tc.Compile(ctx, toolchain.Job{
		File:     c.File,
		Flags:    flags,
		Edition:  edition,
		Revision: rev,
		JSON:     true,
		OutDir:   s.outDir,
	})
	if err != nil {
		return nil, err
	}

	diags, rendered := decodeOutput(res.Stderr)
	diag.Sort(diags)

	normalized, err := s.normalizer(c, tf).Apply(rendered)
	if err != nil {
		return nil, fmt.Errorf("normalizing output of %s: %w", c.Name, err)
	}

	spath := c.SnapshotPath(rev)
	expected, err := snapshot.Load(spath)
	if err != nil && !errors.Is(err, snapshot.ErrNotBlessed) {
		return nil, err
	}

	diff := snapshot.Compare(expected, normalized)
	match := testfile.Match(tf.AnnotationsFor(rev), diags, c.Strict || s.strict)

	eval := verdict.Evaluate(verdict.Input{
		Mode:          tf.Mode,
		Class:         res.Class,
		Diff:          diff,
		Match:         match,
		ErrorPatterns: tf.ErrorPatterns,
		Stderr:        rendered,
	})

	eval, err = s.applyBless(spath, normalized, eval)
	if err != nil {
		return nil, err
	}

	cr := &output.CaseResult{
		ID:          c.ID,
		Name:        c.Name,
		File:        c.File,
		Revision:    rev,
		Verdict:     eval.Verdict,
		Reasons:     eval.Reasons,
		DurationMs:  res.Duration.Milliseconds(),
		ExitCode:    res.ExitCode,
		Diagnostics: len(diags),
		Codes:       diag.Codes(diags),
	}
	if eval.Diff != nil && !eval.Diff.Identical {
		unified := eval.Diff.Unified(defaults.DiffContextLines)
		truncated := eval.Diff.Truncate(unified, defaults.MaxDiffLines)
		cr.Diff = truncated
		cr.DiffTruncated = truncated != unified
		cr.ExpectedHash = snapshot.Fingerprint(expected)
		cr.ActualHash = snapshot.Fingerprint(normalized)
	}
	return &revisionOutcome{result: cr, class: res.Class}, nil
}

// applyBless rewrites a drifted snapshot, or in dry-run mode reports
// the planned action without writing. Annotation failures stay failures
// because the source assertions, not the snapshot, are wrong.
func (s *suiteRun) applyBless(spath, normalized string, eval *verdict.Evaluation) (*verdict.Evaluation, error) {
	if !s.cfg.Bless || (eval.Verdict != verdict.Pass && eval.Verdict != verdict.SnapshotMismatch) {
		return eval, nil
	}
	action := snapshot.PlanBless(spath, normalized)
	if action == snapshot.BlessUnchanged {
		return eval, nil
	}
	if s.cfg.DryRun {
		planned := *eval
		planned.Reasons = append(append([]string(nil), eval.Reasons...),
			fmt.Sprintf("would bless (%s)", action))
		return &planned, nil
	}
	if err := snapshot.Bless(spath, normalized); err != nil {
		return nil, err
	}
	return &verdict.Evaluation{
		Verdict: verdict.Pass,
		Reasons: []string{fmt.Sprintf("blessed (%s)", action)},
	}, nil
}

// normalizer builds the output normalizer: built-in rules,
// then suite-level rules, then the case's own normalize-stderr-test
// headers.
func (s *suiteRun) normalizer(c *manifest.Case, tf *testfile.File) *normalize.Normalizer {
	rules := s.man.NormalizeRules()
	for _, r := range tf.Normalize {
		rules = append(rules, normalize.Rule{Pattern: r.Pattern, Replacement: r.Replacement})
	}
	return normalize.New(filepath.Dir(c.File)).WithRules(rules...)
}

// decodeOutput extracts diagnostics from compiler stderr. JSON streams
// are decoded and their rendered text reassembled; plain-text output is
// parsed with the stderr document parser instead.
func decodeOutput(stderr string) ([]diag.Diagnostic, string) {
	diags, err := diag.DecodeJSON(strings.NewReader(stderr))
	if err != nil || len(diags) == 0 {
		if strings.TrimSpace(stderr) == "" {
			return nil, ""
		}
		parsed := diagparse.Parse(stderr)
		return parsed.Diagnostics, stderr
	}

	allRendered := true
	var b strings.Builder
	for _, d := range diags {
		if d.Rendered == "" {
			allRendered = false
			break
		}
		b.WriteString(d.Rendered)
	}
	if allRendered {
		return diags, b.String()
	}
	return diags, diag.NewRenderer().RenderAll(diags)
}

// revisionsToRun expands a case into its revision runs. A -revision
// filter selects one revision of revisioned cases and leaves plain
// cases untouched.
func revisionsToRun(tf *testfile.File, only string) []string {
	if !tf.HasRevisions() {
		return []string{""}
	}
	if only == "" {
		return tf.Revisions
	}
	for _, rev := range tf.Revisions {
		if rev == only {
			return []string{rev}
		}
	}
	return nil
}

// filterCases applies the -filter glob against case names.
func filterCases(cases []*manifest.Case, glob string) []*manifest.Case {
	if glob == "" {
		return cases
	}
	var out []*manifest.Case
	for _, c := range cases {
		if ok, err := filepath.Match(glob, c.Name); err == nil && ok {
			out = append(out, c)
			continue
		}
		// Allow matching any name segment so "bare" finds
		// object-safety/bare.
		if ok, _ := filepath.Match(glob, filepath.Base(c.Name)); ok {
			out = append(out, c)
		}
	}
	return out
}

// runDryRun prints what a run would do without compiling anything.
func runDryRun(cases []*manifest.Case, revision string) {
	for _, c := range cases {
		if c.Skip {
			fmt.Printf("skip  %s (%s)\n", c.Name, c.SkipReason)
			continue
		}
		tf, err := testfile.Load(c.File)
		if err != nil {
			fmt.Printf("error %s: %v\n", c.Name, err)
			continue
		}
		if tf.IgnoreTest {
			fmt.Printf("skip  %s (%s)\n", c.Name, strings.Join(tf.IgnoreReasons, "; "))
			continue
		}
		for _, rev := range revisionsToRun(tf, revision) {
			name := c.Name
			if rev != "" {
				name += "#" + rev
			}
			if _, err := snapshot.Load(c.SnapshotPath(rev)); errors.Is(err, snapshot.ErrNotBlessed) {
				fmt.Printf("run   %s (no snapshot, expects empty output)\n", name)
			} else {
				fmt.Printf("run   %s\n", name)
			}
		}
	}
	fmt.Printf("\n%d cases discovered\n", len(cases))
}

// writeReport renders the post-run report file.
func writeReport(cfg *config.Config, man *manifest.Manifest, compiler string, results []*output.CaseResult, summary *output.ExecutionResults) {
	rcfg := report.Config{TemplatePath: cfg.ReportTmpl}
	if cfg.ReportTmpl == "" {
		rcfg.BuiltIn = report.Suggest(cfg.ReportFile)
	}
	gen, err := report.New(rcfg)
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("Report template error: %v", err))
		return
	}
	data := &report.Data{
		RunID:    summary.RunID,
		Suite:    man.Meta.Name,
		Compiler: compiler,
		Results:  results,
		Summary:  summary,
	}
	if err := gen.WriteFile(cfg.ReportFile, data); err != nil {
		ui.PrintWarning(fmt.Sprintf("Report write failed: %v", err))
		return
	}
	ui.PrintSuccess(fmt.Sprintf("Report written to %s", cfg.ReportFile))
}
