package output

import (
	"github.com/diagcheck/diagcheck/pkg/verdict"
)

// CaseResult represents a single executed case, flattened for writers.
// Revisioned cases produce one result per revision.
type CaseResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	File     string `json:"file"`
	Revision string `json:"revision,omitempty"`

	Verdict verdict.Verdict `json:"verdict"`
	Reasons []string        `json:"reasons,omitempty"`

	DurationMs int64  `json:"duration_ms"`
	ExitCode   int    `json:"exit_code"`
	Timestamp  string `json:"timestamp,omitempty"`

	// Diff is the unified snapshot diff for mismatches.
	Diff          string `json:"diff,omitempty"`
	DiffTruncated bool   `json:"diff_truncated,omitempty"`

	// ExpectedHash and ActualHash fingerprint the snapshot sides, for
	// deduplicating identical failures across revisions.
	ExpectedHash string `json:"expected_hash,omitempty"`
	ActualHash   string `json:"actual_hash,omitempty"`

	// Diagnostics counts top-level diagnostics the compiler emitted.
	Diagnostics int `json:"diagnostics,omitempty"`

	// Codes lists the distinct diagnostic codes seen, sorted.
	Codes []string `json:"codes,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
}

// Failed reports whether this result counts against the run.
func (r *CaseResult) Failed() bool {
	return r.Verdict.Failed()
}

// Writer is the interface for result output formats.
type Writer interface {
	Write(result *CaseResult) error
	Close() error
}
