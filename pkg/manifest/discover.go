package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/diagcheck/diagcheck/pkg/defaults"
)

// Case is one discovered test source with its manifest-derived
// settings applied.
type Case struct {
	ID   string
	Name string // relative path without extension, forward slashes
	Dir  string // suite root
	File string // full source path

	Flags      []string
	Strict     bool
	Skip       bool
	SkipReason string
}

// SnapshotPath returns the snapshot file for this case. Revisioned
// cases keep one snapshot per revision (case.rev.stderr).
func (c *Case) SnapshotPath(revision string) string {
	base := strings.TrimSuffix(c.File, filepath.Ext(c.File))
	if revision == "" {
		return base + defaults.SnapshotExt
	}
	return base + "." + revision + defaults.SnapshotExt
}

// Discover walks a suite directory and produces its cases, sorted by
// name. Hidden directories and auxiliary/ subtrees (support files for
// multi-file tests) are skipped.
func Discover(root string, m *Manifest) ([]*Case, error) {
	if m == nil {
		m = Default()
	}

	var cases []*Case
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "auxiliary") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != m.SourceExt {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(strings.TrimSuffix(rel, m.SourceExt))

		c := &Case{
			ID:     sanitizeID(name),
			Name:   name,
			Dir:    root,
			File:   path,
			Strict: m.Strict,
		}
		applyOverrides(c, m.Overrides)
		cases = append(cases, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering cases in %s: %w", root, err)
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].Name < cases[j].Name })
	return cases, nil
}

// applyOverrides applies every override whose glob matches the case
// name, in manifest order.
func applyOverrides(c *Case, overrides []Override) {
	for _, o := range overrides {
		if !matchesCase(c.Name, o.Cases) {
			continue
		}
		c.Flags = append(c.Flags, o.Flags...)
		if o.Skip {
			c.Skip = true
			c.SkipReason = o.SkipReason
		}
	}
}

func matchesCase(name string, globs []string) bool {
	for _, g := range globs {
		if g == name {
			return true
		}
		if ok, err := filepath.Match(g, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Orphans returns snapshot files under root that no test source owns.
// An orphan usually means a test was renamed without moving its
// expected output.
func Orphans(root string, m *Manifest) ([]string, error) {
	if m == nil {
		m = Default()
	}

	var orphans []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, defaults.SnapshotExt) {
			return nil
		}

		base := strings.TrimSuffix(path, defaults.SnapshotExt)
		if sourceExists(base + m.SourceExt) {
			return nil
		}
		// Revisioned snapshot: case.rev.stderr owns case.rs.
		if i := strings.LastIndex(base, "."); i > 0 && sourceExists(base[:i]+m.SourceExt) {
			return nil
		}
		orphans = append(orphans, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning snapshots in %s: %w", root, err)
	}
	return orphans, nil
}

func sourceExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
