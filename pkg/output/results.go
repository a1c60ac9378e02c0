package output

import (
	"path"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diagcheck/diagcheck/pkg/verdict"
)

// LatencyStats holds compile-time distribution statistics.
type LatencyStats struct {
	Min int64 `json:"min_ms"`
	Max int64 `json:"max_ms"`
	Avg int64 `json:"avg_ms"`
}

// ExecutionResults holds aggregate results from one suite run.
type ExecutionResults struct {
	RunID string `json:"run_id"`

	TotalCases int `json:"total_cases"`
	Passed     int `json:"passed"`
	Mismatched int `json:"mismatched"`
	Errored    int `json:"errored"`
	Skipped    int `json:"skipped"`

	// VerdictBreakdown counts per fine-grained verdict.
	VerdictBreakdown map[verdict.Verdict]int `json:"verdict_breakdown"`

	// DirStats maps suite subdirectories to failure counts, so a run
	// over tests/ui points at the family that regressed.
	DirStats map[string]int `json:"dir_stats,omitempty"`

	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Duration       time.Duration `json:"duration"`
	CasesPerSec    float64       `json:"cases_per_sec"`
	LatencyStats   LatencyStats  `json:"latency_stats"`
	latencies      []int64
	mu             sync.Mutex
}

// NewExecutionResults creates an aggregate with a fresh run ID.
func NewExecutionResults() *ExecutionResults {
	return &ExecutionResults{
		RunID:            uuid.NewString(),
		VerdictBreakdown: make(map[verdict.Verdict]int),
		DirStats:         make(map[string]int),
		StartTime:        time.Now(),
	}
}

// Record folds one case result into the aggregate. Safe for concurrent
// use.
func (e *ExecutionResults) Record(r *CaseResult) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.TotalCases++
	e.VerdictBreakdown[r.Verdict]++

	switch {
	case r.Verdict == verdict.Pass:
		e.Passed++
	case r.Verdict == verdict.Skipped:
		e.Skipped++
	case r.Verdict.Mismatch():
		e.Mismatched++
	default:
		e.Errored++
	}

	if r.Failed() {
		e.DirStats[path.Dir(r.Name)]++
	}
	e.latencies = append(e.latencies, r.DurationMs)
}

// Finalize computes derived statistics. Call once, after the last
// Record.
func (e *ExecutionResults) Finalize() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.EndTime = time.Now()
	e.Duration = e.EndTime.Sub(e.StartTime)
	if secs := e.Duration.Seconds(); secs > 0 {
		e.CasesPerSec = float64(e.TotalCases) / secs
	}

	if len(e.latencies) == 0 {
		return
	}
	sorted := make([]int64, len(e.latencies))
	copy(sorted, e.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum int64
	for _, l := range sorted {
		sum += l
	}
	e.LatencyStats = LatencyStats{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / int64(len(sorted)),
	}
}

// Failures returns the total of mismatched and errored cases.
func (e *ExecutionResults) Failures() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Mismatched + e.Errored
}
