// Package diagparse parses rendered compiler stderr back into structured
// diagnostics. It is the fallback path for compilers invoked without a
// JSON error format, and the basis for structural snapshot comparison and
// annotation matching against human-readable output.
package diagparse

import (
	"strconv"
	"strings"

	"github.com/diagcheck/diagcheck/pkg/diag"
	"github.com/diagcheck/diagcheck/pkg/regexcache"
)

var (
	headerRe = regexcache.MustGet(`^(error|warning|note|help)(\[([A-Za-z0-9]+)\])?: (.*)$`)
	arrowRe  = regexcache.MustGet(`^\s*--> (.*):(\d+):(\d+)$`)
	gutterRe = regexcache.MustGet(`^(\s*\d+|\s*LL|\s*)\s?\|`)
	inlineRe = regexcache.MustGet(`^\s*\|?\s*= (note|help): (.*)$`)

	abortRe    = regexcache.MustGet(`^error: aborting due to (\d+ previous errors?|previous error)(; (\d+) warnings? emitted)?$`)
	emittedRe  = regexcache.MustGet(`^warning: (\d+) warnings? emitted$`)
	explainRe  = regexcache.MustGet("^For more information about (this error|an error), try `.+`\\.$")
	detailedRe = regexcache.MustGet(`^Some errors have detailed explanations: .+\.$`)
)

// Parsed is the result of parsing a stderr document.
type Parsed struct {
	// Diagnostics are the top-level diagnostics, with notes and helps
	// attached as children of the diagnostic they follow.
	Diagnostics []diag.Diagnostic

	// ErrorsClaimed is the error count stated by the "aborting due to"
	// summary line, 0 when absent.
	ErrorsClaimed int

	// WarningsClaimed is the warning count stated by a summary line.
	WarningsClaimed int

	// HasSummary reports whether any summary line was present.
	HasSummary bool

	// Unrecognized collects non-blank lines the parser could not place.
	Unrecognized []string
}

// Inconsistent reports whether the summary's claimed counts disagree with
// the diagnostics actually parsed. Fixtures that claim "aborting due to 2
// previous errors" but contain three error blocks are corrupt.
func (p *Parsed) Inconsistent() bool {
	if !p.HasSummary {
		return false
	}
	errors, warnings := diag.Count(p.Diagnostics)
	if p.ErrorsClaimed > 0 && p.ErrorsClaimed != errors {
		return true
	}
	return p.WarningsClaimed > 0 && p.WarningsClaimed != warnings
}

// Parse parses a rendered stderr document.
func Parse(text string) *Parsed {
	p := &Parsed{}

	// cur is the top-level diagnostic being built; child is the pending
	// note/help sub-diagnostic, whose spans arrive on following lines.
	var cur *diag.Diagnostic
	var child *diag.Diagnostic

	flushChild := func() {
		if child != nil && cur != nil {
			cur.Children = append(cur.Children, *child)
		}
		child = nil
	}
	flush := func() {
		flushChild()
		if cur != nil {
			p.Diagnostics = append(p.Diagnostics, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, " \t\r")
		if trimmed == "" {
			continue
		}

		// Summary and trailer lines end the diagnostic section.
		if m := abortRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			p.HasSummary = true
			p.ErrorsClaimed = parseCount(m[1])
			if m[3] != "" {
				p.WarningsClaimed, _ = strconv.Atoi(m[3])
			}
			continue
		}
		if m := emittedRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			p.HasSummary = true
			p.WarningsClaimed, _ = strconv.Atoi(m[1])
			continue
		}
		if explainRe.MatchString(trimmed) || detailedRe.MatchString(trimmed) {
			flush()
			continue
		}

		if strings.HasPrefix(trimmed, "error: internal compiler error: ") {
			flush()
			cur = diag.New(diag.LevelICE, strings.TrimPrefix(trimmed, "error: internal compiler error: "))
			continue
		}

		if m := headerRe.FindStringSubmatch(trimmed); m != nil {
			level := diag.ParseLevel(m[1])
			d := diag.Diagnostic{Level: level, Code: m[3], Message: m[4]}
			if level == diag.LevelNote || level == diag.LevelHelp {
				// Free-standing note/help blocks belong to the
				// preceding diagnostic.
				if cur != nil {
					flushChild()
					child = &d
					continue
				}
			}
			flush()
			cur = &d
			continue
		}

		if m := arrowRe.FindStringSubmatch(trimmed); m != nil {
			line, _ := strconv.Atoi(m[2])
			col, _ := strconv.Atoi(m[3])
			span := diag.Span{
				File:      m[1],
				LineStart: line,
				LineEnd:   line,
				ColStart:  col,
				ColEnd:    col,
			}
			target := cur
			if child != nil {
				target = child
			}
			if target != nil {
				span.Primary = len(target.Spans) == 0
				target.Spans = append(target.Spans, span)
			}
			continue
		}

		if m := inlineRe.FindStringSubmatch(trimmed); m != nil {
			target := cur
			if child != nil {
				target = child
			}
			if target != nil {
				target.Children = append(target.Children, diag.Diagnostic{
					Level:   diag.ParseLevel(m[1]),
					Message: m[2],
				})
			}
			continue
		}

		// Quoted source, caret rows, and bare gutter bars carry no
		// structure we keep.
		if gutterRe.MatchString(line) {
			continue
		}

		p.Unrecognized = append(p.Unrecognized, trimmed)
	}
	flush()
	return p
}

// parseCount handles both "3 previous errors" and the legacy singular
// "previous error" form.
func parseCount(s string) int {
	if s == "previous error" {
		return 1
	}
	n, err := strconv.Atoi(strings.Fields(s)[0])
	if err != nil {
		return 1
	}
	return n
}
