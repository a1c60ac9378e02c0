package testfile

import (
	"strings"

	"github.com/diagcheck/diagcheck/pkg/diag"
)

// MatchResult reports how a set of annotations lined up with the
// diagnostics a compile actually produced.
type MatchResult struct {
	// Matched counts annotations satisfied by a diagnostic.
	Matched int

	// Unmatched are annotations no diagnostic satisfied.
	Unmatched []Annotation

	// Unexpected are error-level diagnostics no annotation claimed.
	// Warnings, notes and helps land here only in strict mode.
	Unexpected []diag.Diagnostic
}

// OK reports whether every annotation matched and nothing unexpected
// was emitted.
func (r *MatchResult) OK() bool {
	return len(r.Unmatched) == 0 && len(r.Unexpected) == 0
}

// flatDiag is a matchable diagnostic with its resolved primary line.
type flatDiag struct {
	d       diag.Diagnostic
	line    int
	top     bool
	claimed bool
}

// Match checks annotations against diagnostics. Children (notes, helps)
// are matchable individually; a child with no span of its own inherits
// the parent's primary line, mirroring how the rendered output reads.
// In strict mode every diagnostic must be claimed by an annotation; the
// default only requires that for error-level diagnostics.
func Match(anns []Annotation, diags []diag.Diagnostic, strict bool) *MatchResult {
	var flat []flatDiag
	for _, d := range diags {
		line := 0
		if span, ok := d.PrimarySpan(); ok {
			line = span.LineStart
		}
		flat = append(flat, flatDiag{d: d, line: line, top: true})
		for _, c := range d.Children {
			childLine := line
			if span, ok := c.PrimarySpan(); ok {
				childLine = span.LineStart
			}
			flat = append(flat, flatDiag{d: c, line: childLine})
		}
	}

	res := &MatchResult{}
	for _, ann := range anns {
		if i := findMatch(flat, ann); i >= 0 {
			flat[i].claimed = true
			res.Matched++
		} else {
			res.Unmatched = append(res.Unmatched, ann)
		}
	}

	for _, fd := range flat {
		if fd.claimed {
			continue
		}
		if fd.top && isSummary(fd.d) {
			continue
		}
		if fd.d.IsError() || strict {
			res.Unexpected = append(res.Unexpected, fd.d)
		}
	}
	return res
}

// findMatch returns the index of the first unclaimed diagnostic the
// annotation satisfies, or -1.
func findMatch(flat []flatDiag, ann Annotation) int {
	for i, fd := range flat {
		if fd.claimed {
			continue
		}
		if fd.d.Level != ann.Level {
			continue
		}
		if fd.line != ann.Line {
			continue
		}
		if ann.Code != "" && fd.d.Code != ann.Code {
			continue
		}
		if ann.Message != "" && !strings.Contains(fd.d.Message, ann.Message) {
			continue
		}
		return i
	}
	return -1
}

// isSummary recognizes the span-less "aborting due to" / "N warnings
// emitted" diagnostics the JSON stream carries; annotations never claim
// them and they are not failures.
func isSummary(d diag.Diagnostic) bool {
	if len(d.Spans) > 0 {
		return false
	}
	return strings.HasPrefix(d.Message, "aborting due to ") ||
		strings.HasSuffix(d.Message, "warning emitted") ||
		strings.HasSuffix(d.Message, "warnings emitted")
}
