package testfile

import (
	"fmt"
	"strings"

	"github.com/diagcheck/diagcheck/pkg/diag"
	"github.com/diagcheck/diagcheck/pkg/regexcache"
)

// annotationRe matches the //~ expectation comment forms:
//
//	//~ ERROR message          diagnostic on this line
//	//~^ ERROR message         one line up (stackable: ^^^)
//	//~v ERROR message         one line down (stackable: vvv)
//	//~| ERROR message         same line as the previous annotation
//	//[rev]~ ERROR message     only for the named revision(s)
//	//~ ERROR[E0038] message   with a required diagnostic code
var annotationRe = regexcache.MustGet(
	`//(?:\[([^\]]+)\])?~(\^+|v+|\|)?\s*(ERROR|WARNING|WARN|NOTE|HELP)(?:\[([A-Za-z0-9]+)\])?:?\s*(.*)$`)

// Annotation is one inline diagnostic expectation.
type Annotation struct {
	// Line is the 1-based source line the diagnostic must point at,
	// after resolving ^/v/| adjusters.
	Line int

	// SourceLine is the line the annotation comment itself sits on.
	SourceLine int

	Level     diag.Level
	Code      string   // required code, empty = any
	Message   string   // substring the diagnostic message must contain
	Revisions []string // nil = applies to all revisions
}

// AppliesTo reports whether the annotation is active for a revision.
func (a Annotation) AppliesTo(revision string) bool {
	if len(a.Revisions) == 0 {
		return true
	}
	for _, r := range a.Revisions {
		if r == revision {
			return true
		}
	}
	return false
}

// String formats the annotation for failure reports.
func (a Annotation) String() string {
	code := ""
	if a.Code != "" {
		code = "[" + a.Code + "]"
	}
	return fmt.Sprintf("line %d: %s%s: %s", a.Line, a.Level, code, a.Message)
}

// parseAnnotations extracts //~ expectations from the source lines.
func (f *File) parseAnnotations(lines []string) error {
	prevTarget := 0
	for i, line := range lines {
		m := annotationRe.FindStringSubmatch(line)
		if m == nil {
			if strings.Contains(line, "//~") {
				return fmt.Errorf("line %d: malformed annotation %q", i+1, strings.TrimSpace(line))
			}
			continue
		}

		sourceLine := i + 1
		target := sourceLine
		switch adjust := m[2]; {
		case strings.HasPrefix(adjust, "^"):
			target = sourceLine - len(adjust)
		case strings.HasPrefix(adjust, "v"):
			target = sourceLine + len(adjust)
		case adjust == "|":
			if prevTarget == 0 {
				return fmt.Errorf("line %d: //~| with no previous annotation", sourceLine)
			}
			target = prevTarget
		}
		if target < 1 {
			return fmt.Errorf("line %d: annotation points above the start of the file", sourceLine)
		}

		ann := Annotation{
			Line:       target,
			SourceLine: sourceLine,
			Level:      annotationLevel(m[3]),
			Code:       m[4],
			Message:    strings.TrimSpace(m[5]),
		}
		if m[1] != "" {
			ann.Revisions = strings.Split(m[1], ",")
		}
		f.Annotations = append(f.Annotations, ann)
		prevTarget = target
	}
	return nil
}

func annotationLevel(kind string) diag.Level {
	switch kind {
	case "ERROR":
		return diag.LevelError
	case "WARN", "WARNING":
		return diag.LevelWarning
	case "NOTE":
		return diag.LevelNote
	case "HELP":
		return diag.LevelHelp
	}
	return diag.Level(strings.ToLower(kind))
}
