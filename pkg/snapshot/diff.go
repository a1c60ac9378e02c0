package snapshot

import (
	"fmt"
	"strings"

	"github.com/diagcheck/diagcheck/pkg/defaults"
)

// LineKind classifies one line of a diff.
type LineKind byte

const (
	// Context is a line present on both sides.
	Context LineKind = ' '
	// Removed is an expected line the actual output lacks.
	Removed LineKind = '-'
	// Added is an actual line the snapshot lacks.
	Added LineKind = '+'
)

// Line is one line of a computed diff.
type Line struct {
	Kind LineKind
	Text string
}

// Diff is the comparison of a snapshot against actual output.
type Diff struct {
	Identical bool

	// ExpectedHash and ActualHash fingerprint both sides.
	ExpectedHash string
	ActualHash   string

	// Lines is the full edit script (context, removed, added).
	Lines []Line

	// RemovedCount and AddedCount summarize the edit script.
	RemovedCount int
	AddedCount   int
}

// Compare diffs expected snapshot content against actual output.
// Both inputs must already be normalized.
func Compare(expected, actual string) *Diff {
	d := &Diff{
		ExpectedHash: Fingerprint(expected),
		ActualHash:   Fingerprint(actual),
	}
	if expected == actual {
		d.Identical = true
		return d
	}

	d.Lines = diffLines(splitLines(expected), splitLines(actual))
	for _, l := range d.Lines {
		switch l.Kind {
		case Removed:
			d.RemovedCount++
		case Added:
			d.AddedCount++
		}
	}
	return d
}

// Unified renders the diff as unified-style hunks with the given number
// of context lines. Returns "" for identical inputs.
func (d *Diff) Unified(context int) string {
	if d.Identical || len(d.Lines) == 0 {
		return ""
	}
	if context < 0 {
		context = defaults.DiffContextLines
	}

	// Mark lines within `context` of a change as visible.
	visible := make([]bool, len(d.Lines))
	for i, l := range d.Lines {
		if l.Kind == Context {
			continue
		}
		lo := i - context
		if lo < 0 {
			lo = 0
		}
		hi := i + context
		if hi >= len(d.Lines) {
			hi = len(d.Lines) - 1
		}
		for j := lo; j <= hi; j++ {
			visible[j] = true
		}
	}

	var b strings.Builder
	skipping := false
	for i, l := range d.Lines {
		if !visible[i] {
			if !skipping {
				b.WriteString("...\n")
				skipping = true
			}
			continue
		}
		skipping = false
		fmt.Fprintf(&b, "%c%s\n", l.Kind, l.Text)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Truncate caps the unified rendering at maxLines, appending an
// elision marker. Console output uses this; file writers keep the full
// diff.
func (d *Diff) Truncate(unified string, maxLines int) string {
	lines := strings.Split(unified, "\n")
	if maxLines <= 0 || len(lines) <= maxLines {
		return unified
	}
	omitted := len(lines) - maxLines
	return strings.Join(lines[:maxLines], "\n") + fmt.Sprintf("\n... (%d more lines)", omitted)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// diffLines computes a line-level LCS edit script. Snapshot files are
// small (hundreds of lines), so the quadratic table is fine.
func diffLines(a, b []string) []Line {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var out []Line
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			out = append(out, Line{Context, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			out = append(out, Line{Removed, a[i]})
			i++
		default:
			out = append(out, Line{Added, b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		out = append(out, Line{Removed, a[i]})
	}
	for ; j < m; j++ {
		out = append(out, Line{Added, b[j]})
	}
	return out
}
