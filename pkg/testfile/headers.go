package testfile

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/diagcheck/diagcheck/pkg/regexcache"
)

var (
	directiveRe = regexcache.MustGet(`^//@\s*(?:\[([^\]]+)\]\s*)?([A-Za-z][A-Za-z0-9_-]*)\s*(?::\s*(.*))?$`)
	normalizeRe = regexcache.MustGet(`^"(.*)"\s*->\s*"(.*)"$`)
)

// parseDirective handles a single //@ header line. Non-directive lines
// are ignored. Revision-scoped directives ([rev] prefix) currently apply
// only to compile-flags.
func (f *File) parseDirective(line string) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "//@") {
		return nil
	}
	m := directiveRe.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("malformed directive %q", line)
	}
	revision, name, value := m[1], m[2], m[3]

	switch name {
	case "check-fail":
		f.Mode = ModeCheckFail
	case "check-pass":
		f.Mode = ModeCheckPass
	case "build-fail":
		f.Mode = ModeBuildFail
	case "edition":
		f.Edition = strings.TrimSpace(value)
	case "compile-flags":
		if revision != "" {
			if f.RevisionFlags == nil {
				f.RevisionFlags = make(map[string][]string)
			}
			f.RevisionFlags[revision] = append(f.RevisionFlags[revision], strings.Fields(value)...)
		} else {
			f.CompileFlags = append(f.CompileFlags, strings.Fields(value)...)
		}
	case "revisions":
		f.Revisions = append(f.Revisions, strings.Fields(value)...)
	case "error-pattern":
		f.ErrorPatterns = append(f.ErrorPatterns, strings.TrimSpace(value))
	case "normalize-stderr-test":
		nm := normalizeRe.FindStringSubmatch(strings.TrimSpace(value))
		if nm == nil {
			return fmt.Errorf(`normalize-stderr-test wants "regex" -> "replacement", got %q`, value)
		}
		if _, err := regexcache.Get(nm[1]); err != nil {
			return fmt.Errorf("normalize-stderr-test pattern: %w", err)
		}
		f.Normalize = append(f.Normalize, NormalizeRule{Pattern: nm[1], Replacement: nm[2]})
	case "ignore-test":
		f.IgnoreTest = true
		f.IgnoreReasons = append(f.IgnoreReasons, "ignore-test")
	default:
		switch {
		case strings.HasPrefix(name, "ignore-"):
			cond := strings.TrimPrefix(name, "ignore-")
			if platformMatches(cond) {
				f.IgnoreTest = true
				f.IgnoreReasons = append(f.IgnoreReasons, name)
			}
		case strings.HasPrefix(name, "only-"):
			cond := strings.TrimPrefix(name, "only-")
			if !platformMatches(cond) {
				f.IgnoreTest = true
				f.IgnoreReasons = append(f.IgnoreReasons, name)
			}
		default:
			f.UnknownDirectives = append(f.UnknownDirectives, name)
		}
	}
	return nil
}

// platformMatches evaluates an ignore-/only- condition against the host.
// Conditions are GOOS values, GOARCH values, or the wordsize forms 32bit
// and 64bit.
func platformMatches(cond string) bool {
	switch cond {
	case runtime.GOOS, runtime.GOARCH:
		return true
	case "32bit":
		return strings.Contains(runtime.GOARCH, "386") || runtime.GOARCH == "arm"
	case "64bit":
		return strings.Contains(runtime.GOARCH, "64")
	case "unix":
		return runtime.GOOS != "windows"
	}
	return false
}
