package manifest

import (
	"fmt"

	"github.com/diagcheck/diagcheck/pkg/testfile"
)

// Validator checks manifests and suite trees for problems before a run.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *ValidationResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a manifest document.
func (v *Validator) Validate(m *Manifest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if m.Meta.Name == "" {
		result.errorf("meta.name is required")
	}
	if m.Compiler.Command == "" && len(m.Compiler.Args) == 0 {
		result.errorf("compiler.command or compiler.args is required")
	}
	if _, err := m.CompileTimeout(); err != nil {
		result.errorf("%v", err)
	}
	for i, o := range m.Overrides {
		if len(o.Cases) == 0 {
			result.errorf("overrides[%d].cases is required", i)
		}
		if o.SkipReason != "" && !o.Skip {
			result.warnf("overrides[%d] has skip_reason without skip", i)
		}
	}

	return result
}

// ValidateSuite checks the manifest together with the suite tree:
// orphaned snapshots and unknown directives are errors, empty suites
// and check-fail tests with nothing to assert are warnings.
func (v *Validator) ValidateSuite(root string, m *Manifest) (*ValidationResult, error) {
	result := v.Validate(m)

	cases, err := Discover(root, m)
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		result.warnf("no test sources found under %s", root)
	}

	orphans, err := Orphans(root, m)
	if err != nil {
		return nil, err
	}
	for _, o := range orphans {
		result.errorf("orphaned snapshot %s has no test source", o)
	}

	for _, c := range cases {
		if c.Skip {
			continue
		}
		tf, err := testfile.Load(c.File)
		if err != nil {
			result.errorf("%s: %v", c.Name, err)
			continue
		}
		for _, d := range tf.UnknownDirectives {
			result.errorf("%s: unknown directive %q", c.Name, d)
		}
		if tf.Mode == testfile.ModeCheckFail && len(tf.Annotations) == 0 && len(tf.ErrorPatterns) == 0 && !tf.IgnoreTest {
			result.warnf("%s: check-fail test asserts no errors", c.Name)
		}
	}

	return result, nil
}
