// Package testfile parses UI test source files: the //@ header directives
// that configure how a case is compiled and judged, and the //~ inline
// annotations that declare which diagnostics the compiler must emit.
package testfile

import (
	"fmt"
	"os"
	"strings"
)

// Mode is the expectation mode of a test case.
type Mode string

const (
	// ModeCheckFail expects the compiler to reject the file (default).
	ModeCheckFail Mode = "check-fail"
	// ModeCheckPass expects a clean type-check with no errors.
	ModeCheckPass Mode = "check-pass"
	// ModeBuildFail expects failure during codegen rather than checking.
	ModeBuildFail Mode = "build-fail"
)

// File is a parsed UI test source.
type File struct {
	Path string

	Mode          Mode
	Edition       string
	CompileFlags  []string
	RevisionFlags map[string][]string // compile-flags scoped to one revision
	Revisions     []string
	ErrorPatterns []string
	Normalize     []NormalizeRule
	IgnoreTest    bool
	IgnoreReasons []string // matched ignore-*/only-* conditions

	Annotations []Annotation

	// UnknownDirectives holds //@ lines with unrecognized names, kept for
	// `diagcheck check` to report.
	UnknownDirectives []string
}

// NormalizeRule is a user normalization from a normalize-stderr-test
// header: a regex and its replacement.
type NormalizeRule struct {
	Pattern     string
	Replacement string
}

// Load reads and parses a test source file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading test source: %w", err)
	}
	f, err := Parse(path, string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse parses test source content. Directive errors (malformed
// normalize rules) are returned; unknown directive names are collected on
// the File instead so a run can proceed while `check` still flags them.
func Parse(path, content string) (*File, error) {
	f := &File{
		Path: path,
		Mode: ModeCheckFail,
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if err := f.parseDirective(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	if err := f.parseAnnotations(lines); err != nil {
		return nil, err
	}
	return f, nil
}

// HasRevisions reports whether the case expands into per-revision runs.
func (f *File) HasRevisions() bool {
	return len(f.Revisions) > 0
}

// AnnotationsFor returns the annotations active for one revision. An
// empty revision returns only unscoped annotations.
func (f *File) AnnotationsFor(revision string) []Annotation {
	var out []Annotation
	for _, a := range f.Annotations {
		if a.AppliesTo(revision) {
			out = append(out, a)
		}
	}
	return out
}
