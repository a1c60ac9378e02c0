// Package verdict evaluates one executed case into a final outcome.
// Evaluation order is fixed: execution problems first, then the
// expectation mode, then the snapshot, then inline annotations. A case
// that times out gets no snapshot opinion; its output is garbage.
package verdict

import (
	"fmt"
	"strings"

	"github.com/diagcheck/diagcheck/pkg/snapshot"
	"github.com/diagcheck/diagcheck/pkg/testfile"
	"github.com/diagcheck/diagcheck/pkg/toolchain"
)

// Verdict is the final outcome of one case.
type Verdict string

const (
	Pass               Verdict = "pass"
	SnapshotMismatch   Verdict = "snapshot-mismatch"
	AnnotationMismatch Verdict = "annotation-mismatch"
	UnexpectedSuccess  Verdict = "unexpected-success"
	UnexpectedFailure  Verdict = "unexpected-failure"
	Error              Verdict = "error"
	Timeout            Verdict = "timeout"
	Skipped            Verdict = "skipped"
)

// Failed reports whether the verdict counts against the run.
func (v Verdict) Failed() bool {
	return v != Pass && v != Skipped
}

// Mismatch reports whether the verdict is an assertion failure rather
// than a tool problem. Exit code mapping treats the two differently.
func (v Verdict) Mismatch() bool {
	switch v {
	case SnapshotMismatch, AnnotationMismatch, UnexpectedSuccess, UnexpectedFailure:
		return true
	}
	return false
}

// Input collects everything known about one executed case.
type Input struct {
	Mode  testfile.Mode
	Class toolchain.Class

	// Diff compares the blessed snapshot against normalized output.
	Diff *snapshot.Diff

	// Match is the inline annotation result, nil when the case has no
	// annotations.
	Match *testfile.MatchResult

	// ErrorPatterns are free-text assertions checked against Stderr.
	ErrorPatterns []string
	Stderr        string
}

// Evaluation is a verdict with its human-readable reasons.
type Evaluation struct {
	Verdict Verdict
	Reasons []string
	Diff    *snapshot.Diff
}

// Skip builds the evaluation for a case excluded before execution.
func Skip(reason string) *Evaluation {
	e := &Evaluation{Verdict: Skipped}
	if reason != "" {
		e.Reasons = []string{reason}
	}
	return e
}

// Fail builds the evaluation for a case the harness itself could not
// execute.
func Fail(err error) *Evaluation {
	return &Evaluation{Verdict: Error, Reasons: []string{err.Error()}}
}

// Evaluate produces the verdict for one executed case.
func Evaluate(in Input) *Evaluation {
	e := &Evaluation{Diff: in.Diff}

	switch in.Class {
	case toolchain.ClassTimeout:
		e.Verdict = Timeout
		e.Reasons = append(e.Reasons, "compile did not finish in time")
		return e
	case toolchain.ClassToolMissing:
		e.Verdict = Error
		e.Reasons = append(e.Reasons, "compiler could not be started")
		return e
	case toolchain.ClassCrashed:
		e.Verdict = Error
		e.Reasons = append(e.Reasons, "compiler crashed")
		return e
	}

	if v, reason := checkMode(in.Mode, in.Class); v != Pass {
		e.Verdict = v
		e.Reasons = append(e.Reasons, reason)
		return e
	}

	if in.Diff != nil && !in.Diff.Identical {
		e.Verdict = SnapshotMismatch
		e.Reasons = append(e.Reasons, fmt.Sprintf(
			"output differs from snapshot (-%d/+%d lines)",
			in.Diff.RemovedCount, in.Diff.AddedCount))
		return e
	}

	if in.Match != nil && !in.Match.OK() {
		e.Verdict = AnnotationMismatch
		e.Reasons = append(e.Reasons, annotationReasons(in.Match)...)
		return e
	}

	if missing := missingPatterns(in.ErrorPatterns, in.Stderr); len(missing) > 0 {
		e.Verdict = AnnotationMismatch
		for _, p := range missing {
			e.Reasons = append(e.Reasons, fmt.Sprintf("error pattern %q not found in output", p))
		}
		return e
	}

	e.Verdict = Pass
	return e
}

// checkMode validates the exit class against the case's expectation.
func checkMode(mode testfile.Mode, class toolchain.Class) (Verdict, string) {
	switch mode {
	case testfile.ModeCheckPass:
		if class == toolchain.ClassCompileError {
			return UnexpectedFailure, "check-pass case failed to compile"
		}
	default:
		// check-fail and build-fail both require rejection.
		if class == toolchain.ClassSuccess {
			return UnexpectedSuccess, fmt.Sprintf("%s case compiled cleanly", mode)
		}
	}
	return Pass, ""
}

func annotationReasons(m *testfile.MatchResult) []string {
	var reasons []string
	for _, a := range m.Unmatched {
		reasons = append(reasons, "not reported: "+a.String())
	}
	for _, d := range m.Unexpected {
		loc := ""
		if s, ok := d.PrimarySpan(); ok {
			loc = " at " + s.Location()
		}
		reasons = append(reasons, fmt.Sprintf("unexpected %s%s: %s", d.Level, loc, d.Message))
	}
	return reasons
}

func missingPatterns(patterns []string, stderr string) []string {
	var missing []string
	for _, p := range patterns {
		if !strings.Contains(stderr, p) {
			missing = append(missing, p)
		}
	}
	return missing
}
