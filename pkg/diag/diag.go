// Package diag defines the structured model for compiler diagnostics:
// severity levels, codes, source spans, and the parent/child nesting used
// by notes and helps. It is the common currency between the JSON decoder,
// the human-format parser, the renderer, and verdict evaluation.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Level is the severity of a diagnostic.
type Level string

const (
	// LevelError is a hard error; compilation cannot proceed.
	LevelError Level = "error"
	// LevelWarning is a lint or deprecation warning.
	LevelWarning Level = "warning"
	// LevelNote is an informational sub-diagnostic.
	LevelNote Level = "note"
	// LevelHelp is a suggestion sub-diagnostic.
	LevelHelp Level = "help"
	// LevelFailureNote is a trailing note attached to a failure summary.
	LevelFailureNote Level = "failure-note"
	// LevelICE is an internal compiler error.
	LevelICE Level = "error: internal compiler error"
)

// knownLevels maps wire strings to levels, including JSON-format aliases.
var knownLevels = map[string]Level{
	"error":                          LevelError,
	"warning":                        LevelWarning,
	"note":                           LevelNote,
	"help":                           LevelHelp,
	"failure-note":                   LevelFailureNote,
	"error: internal compiler error": LevelICE,
}

// ParseLevel converts a wire string into a Level.
// Unknown strings are returned as-is so callers can still compare them.
func ParseLevel(s string) Level {
	if lv, ok := knownLevels[strings.TrimSpace(s)]; ok {
		return lv
	}
	return Level(s)
}

// IsError reports whether the level fails a compilation.
func (l Level) IsError() bool {
	return l == LevelError || l == LevelICE
}

// Span identifies a region of source code referenced by a diagnostic.
// Lines and columns are 1-based; column arithmetic is in runes.
type Span struct {
	File      string `json:"file"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	ColStart  int    `json:"column_start"`
	ColEnd    int    `json:"column_end"`
	Primary   bool   `json:"is_primary"`
	Label     string `json:"label,omitempty"`
}

// Width returns the number of columns the span covers on its first line.
// A degenerate span still underlines at least one column.
func (s Span) Width() int {
	w := s.ColEnd - s.ColStart
	if w < 1 {
		return 1
	}
	return w
}

// Location formats the span start as file:line:col.
func (s Span) Location() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.LineStart, s.ColStart)
}

// Diagnostic is a single error, warning, note or help, with optional
// source spans and child sub-diagnostics.
type Diagnostic struct {
	Level    Level        `json:"level"`
	Message  string       `json:"message"`
	Code     string       `json:"code,omitempty"`
	Spans    []Span       `json:"spans,omitempty"`
	Children []Diagnostic `json:"children,omitempty"`

	// Rendered carries the compiler's own human rendering when the
	// diagnostic came from a JSON stream. Empty otherwise.
	Rendered string `json:"rendered,omitempty"`
}

// New constructs a diagnostic with no spans.
func New(level Level, message string) *Diagnostic {
	return &Diagnostic{Level: level, Message: message}
}

// Errorf constructs an error diagnostic with a formatted message.
func Errorf(code, format string, args ...any) *Diagnostic {
	return &Diagnostic{Level: LevelError, Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithSpan appends a span and returns the diagnostic for chaining.
func (d *Diagnostic) WithSpan(s Span) *Diagnostic {
	d.Spans = append(d.Spans, s)
	return d
}

// WithNote appends a span-less note child.
func (d *Diagnostic) WithNote(message string) *Diagnostic {
	d.Children = append(d.Children, Diagnostic{Level: LevelNote, Message: message})
	return d
}

// WithHelp appends a span-less help child.
func (d *Diagnostic) WithHelp(message string) *Diagnostic {
	d.Children = append(d.Children, Diagnostic{Level: LevelHelp, Message: message})
	return d
}

// PrimarySpan returns the first primary span, falling back to the first
// span of any kind. ok is false for span-less diagnostics.
func (d *Diagnostic) PrimarySpan() (Span, bool) {
	for _, s := range d.Spans {
		if s.Primary {
			return s, true
		}
	}
	if len(d.Spans) > 0 {
		return d.Spans[0], true
	}
	return Span{}, false
}

// IsError reports whether the diagnostic fails a compilation.
func (d *Diagnostic) IsError() bool {
	return d.Level.IsError()
}

// Header formats the "level[code]: message" first line.
func (d *Diagnostic) Header() string {
	if d.Code != "" {
		return fmt.Sprintf("%s[%s]: %s", d.Level, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Level, d.Message)
}

// Count tallies errors and warnings in a batch. Children are not counted;
// the compiler's summary lines count top-level diagnostics only.
func Count(diags []Diagnostic) (errors, warnings int) {
	for _, d := range diags {
		switch {
		case d.IsError():
			errors++
		case d.Level == LevelWarning:
			warnings++
		}
	}
	return errors, warnings
}

// Codes returns the distinct diagnostic codes of a batch, sorted.
func Codes(diags []Diagnostic) []string {
	seen := map[string]bool{}
	for _, d := range diags {
		if d.Code != "" && !seen[d.Code] {
			seen[d.Code] = true
		}
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Sort orders diagnostics by primary span (file, line, column), with
// span-less diagnostics last in stable order. Used to make comparisons
// independent of compiler emission order.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		si, iok := diags[i].PrimarySpan()
		sj, jok := diags[j].PrimarySpan()
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		if si.File != sj.File {
			return si.File < sj.File
		}
		if si.LineStart != sj.LineStart {
			return si.LineStart < sj.LineStart
		}
		return si.ColStart < sj.ColStart
	})
}
