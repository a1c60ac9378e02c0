// Package manifest loads suite manifests and discovers test cases. A
// suite is a directory tree of compiler test sources with checked-in
// snapshots, optionally configured by a suite.yaml at its root.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/diagcheck/diagcheck/pkg/defaults"
	"github.com/diagcheck/diagcheck/pkg/duration"
	"github.com/diagcheck/diagcheck/pkg/jsonutil"
	"github.com/diagcheck/diagcheck/pkg/normalize"
	"github.com/diagcheck/diagcheck/pkg/regexcache"
)

// Meta contains suite metadata.
type Meta struct {
	Name        string `yaml:"name" json:"name"`
	Author      string `yaml:"author,omitempty" json:"author,omitempty"`
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Compiler configures how test sources are compiled. Args is an argv
// template; {file} and {flags} placeholders are expanded per case.
type Compiler struct {
	Command string   `yaml:"command,omitempty" json:"command,omitempty"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
	Flags   []string `yaml:"flags,omitempty" json:"flags,omitempty"`
	Edition string   `yaml:"edition,omitempty" json:"edition,omitempty"`
	Timeout string   `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// NormalizeRule mirrors normalize.Rule with manifest serialization tags.
type NormalizeRule struct {
	Pattern     string `yaml:"pattern" json:"pattern"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

// Override applies per-case settings. Cases is a list of path globs
// matched against the case name (relative path without extension).
type Override struct {
	Cases      []string `yaml:"cases" json:"cases"`
	Flags      []string `yaml:"flags,omitempty" json:"flags,omitempty"`
	Skip       bool     `yaml:"skip,omitempty" json:"skip,omitempty"`
	SkipReason string   `yaml:"skip_reason,omitempty" json:"skip_reason,omitempty"`
}

// Manifest is the suite.yaml document.
type Manifest struct {
	Meta      Meta            `yaml:"meta" json:"meta"`
	Compiler  Compiler        `yaml:"compiler,omitempty" json:"compiler,omitempty"`
	Strict    bool            `yaml:"strict,omitempty" json:"strict,omitempty"`
	SourceExt string          `yaml:"source_ext,omitempty" json:"source_ext,omitempty"`
	Normalize []NormalizeRule `yaml:"normalize,omitempty" json:"normalize,omitempty"`
	Overrides []Override      `yaml:"overrides,omitempty" json:"overrides,omitempty"`
}

// Default returns the manifest used when a suite has no suite.yaml.
func Default() *Manifest {
	return &Manifest{
		Meta:      Meta{Name: "ui", Enabled: true},
		Compiler:  Compiler{Command: "rustc"},
		SourceExt: defaults.SourceExt,
	}
}

// CompileTimeout parses the compiler timeout, falling back to the
// default when unset.
func (m *Manifest) CompileTimeout() (time.Duration, error) {
	if m.Compiler.Timeout == "" {
		return duration.CompileDefault, nil
	}
	d, err := time.ParseDuration(m.Compiler.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid compiler timeout %q: %w", m.Compiler.Timeout, err)
	}
	return d, nil
}

// NormalizeRules converts manifest rules to the normalizer's form.
func (m *Manifest) NormalizeRules() []normalize.Rule {
	if len(m.Normalize) == 0 {
		return nil
	}
	rules := make([]normalize.Rule, len(m.Normalize))
	for i, r := range m.Normalize {
		rules[i] = normalize.Rule{Pattern: r.Pattern, Replacement: r.Replacement}
	}
	return rules
}

// Load reads a manifest file. YAML is the primary format; .json files
// are accepted for generated suites.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	m := Default()
	if strings.HasSuffix(path, ".json") {
		err = jsonutil.Unmarshal(data, m)
	} else {
		err = yaml.Unmarshal(data, m)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if m.SourceExt == "" {
		m.SourceExt = defaults.SourceExt
	}
	return m, nil
}

// LoadDir loads the manifest for a suite directory, returning the
// default manifest when no suite.yaml exists.
func LoadDir(dir string) (*Manifest, error) {
	path := filepath.Join(dir, defaults.ManifestFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes a manifest file, choosing the format by extension.
func Save(m *Manifest, path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".json") {
		data, err = jsonutil.MarshalIndent(m, "  ")
	} else {
		data, err = yaml.Marshal(m)
	}
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, defaults.FileModeSnapshot)
}

// sanitizeID creates a safe case ID from a relative path.
func sanitizeID(name string) string {
	re := regexcache.MustGet(`[^a-zA-Z0-9-_]`)
	id := re.ReplaceAllString(name, "-")

	re = regexcache.MustGet(`-+`)
	id = re.ReplaceAllString(id, "-")

	return strings.ToLower(strings.Trim(id, "-"))
}
