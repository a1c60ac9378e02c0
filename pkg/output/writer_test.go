package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagcheck/diagcheck/pkg/jsonutil"
	"github.com/diagcheck/diagcheck/pkg/verdict"
)

func sampleResult(name string, v verdict.Verdict) *CaseResult {
	r := &CaseResult{
		ID:         strings.ReplaceAll(name, "/", "-"),
		Name:       name,
		File:       name + ".rs",
		Verdict:    v,
		DurationMs: 42,
	}
	if v == verdict.SnapshotMismatch {
		r.Reasons = []string{"output differs from snapshot (-1/+1 lines)"}
		r.Diff = "-error: old\n+error: new"
	}
	return r
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	_, err := NewWriter("", "yaml")
	assert.Error(t, err)
}

func TestNewWriter_JUnitRequiresFile(t *testing.T) {
	_, err := NewWriter("", "junit")
	assert.Error(t, err)
}

func TestJSONWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	w, err := NewWriter(path, "json")
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleResult("ui/const-fn/loops", verdict.Pass)))
	require.NoError(t, w.Write(sampleResult("ui/object-safety/bare", verdict.SnapshotMismatch)))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var results []*CaseResult
	require.NoError(t, jsonutil.Unmarshal(data, &results))
	require.Len(t, results, 2)
	assert.Equal(t, verdict.SnapshotMismatch, results[1].Verdict)
	assert.Contains(t, results[1].Diff, "+error: new")
}

func TestJSONLWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	w, err := NewWriter(path, "jsonl")
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleResult("a", verdict.Pass)))
	require.NoError(t, w.Write(sampleResult("b", verdict.Error)))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var r CaseResult
		require.NoError(t, jsonutil.Unmarshal([]byte(line), &r))
	}
}

func TestConsoleWriter_FailuresOnly(t *testing.T) {
	var buf bytes.Buffer
	w := NewConsoleWriter(&buf, false)

	require.NoError(t, w.Write(sampleResult("ui/passing", verdict.Pass)))
	require.NoError(t, w.Write(sampleResult("ui/broken", verdict.SnapshotMismatch)))
	require.NoError(t, w.Close())

	out := buf.String()
	assert.NotContains(t, out, "ui/passing")
	assert.Contains(t, out, "ui/broken")
	assert.Contains(t, out, "output differs from snapshot")
	assert.Contains(t, out, "+error: new")
}

func TestConsoleWriter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	w := NewConsoleWriter(&buf, true)

	require.NoError(t, w.Write(sampleResult("ui/passing", verdict.Pass)))
	assert.Contains(t, buf.String(), "ui/passing")
}

func TestConsoleWriter_Revision(t *testing.T) {
	var buf bytes.Buffer
	w := NewConsoleWriter(&buf, true)

	r := sampleResult("ui/gated", verdict.Pass)
	r.Revision = "stock"
	require.NoError(t, w.Write(r))
	assert.Contains(t, buf.String(), "ui/gated#stock")
}

func TestConsoleWriter_Summary(t *testing.T) {
	var buf bytes.Buffer
	w := NewConsoleWriter(&buf, false)

	e := NewExecutionResults()
	e.Record(sampleResult("ui/a", verdict.Pass))
	e.Record(sampleResult("ui/b", verdict.SnapshotMismatch))
	e.Record(sampleResult("ui/c", verdict.Timeout))
	e.Finalize()
	w.WriteSummary(e)

	out := buf.String()
	assert.Contains(t, out, "cases:")
	assert.Contains(t, out, "failures by directory")
	assert.Contains(t, out, "ui")
}
