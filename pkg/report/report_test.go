package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagcheck/diagcheck/pkg/output"
	"github.com/diagcheck/diagcheck/pkg/verdict"
)

func sampleData() *Data {
	summary := output.NewExecutionResults()
	results := []*output.CaseResult{
		{Name: "ui/const-fn/loops", Verdict: verdict.Pass, DurationMs: 12},
		{
			Name:    "ui/object-safety/bare",
			Verdict: verdict.SnapshotMismatch,
			Reasons: []string{"output differs from snapshot (-1/+2 lines)"},
			Diff:    "-error: old\n+error: new",
		},
		{
			Name:     "ui/const-trait/gated",
			Revision: "stock",
			Verdict:  verdict.Timeout,
			Reasons:  []string{"compile did not finish in time"},
		},
	}
	for _, r := range results {
		summary.Record(r)
	}
	summary.Finalize()

	return &Data{
		RunID:    summary.RunID,
		Suite:    "ui",
		Compiler: "rustc 1.99.0-nightly",
		Results:  results,
		Summary:  summary,
	}
}

func TestNew_NoTemplate(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNew_UnknownBuiltIn(t *testing.T) {
	_, err := New(Config{BuiltIn: "pdf"})
	assert.Error(t, err)
}

func TestNew_BadTemplate(t *testing.T) {
	_, err := New(Config{TemplateString: "{{ .Broken"})
	assert.Error(t, err)
}

func TestRender_Markdown(t *testing.T) {
	g, err := New(Config{BuiltIn: "markdown"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Render(&buf, sampleData()))

	out := buf.String()
	assert.Contains(t, out, "# ui snapshot report")
	assert.Contains(t, out, "rustc 1.99.0-nightly")
	assert.Contains(t, out, "## Failures")
	assert.Contains(t, out, "[xx] ui/object-safety/bare")
	assert.Contains(t, out, "[!!] ui/const-trait/gated#stock")
	assert.Contains(t, out, "```diff\n-error: old\n+error: new\n```")
	assert.NotContains(t, out, "ui/const-fn/loops")
}

func TestRender_MarkdownAllPassing(t *testing.T) {
	summary := output.NewExecutionResults()
	r := &output.CaseResult{Name: "ui/a", Verdict: verdict.Pass}
	summary.Record(r)
	summary.Finalize()

	g, err := New(Config{BuiltIn: "markdown"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Render(&buf, &Data{
		Suite:   "ui",
		Results: []*output.CaseResult{r},
		Summary: summary,
	}))
	assert.Contains(t, buf.String(), "All cases matched their snapshots.")
}

func TestRender_TextSummary(t *testing.T) {
	g, err := New(Config{BuiltIn: "text-summary"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Render(&buf, sampleData()))

	out := buf.String()
	assert.Contains(t, out, "cases: 3")
	assert.Contains(t, out, "snapshot-mismatch")
	assert.Contains(t, out, "ui/object-safety/bare")
}

func TestRender_SprigFunctions(t *testing.T) {
	g, err := New(Config{TemplateString: `{{ .Suite | upper }}: {{ len .Results }}`})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.Render(&buf, sampleData()))
	assert.Equal(t, "UI: 3", buf.String())
}

func TestWriteFile_AndTemplatePath(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "custom.tmpl")
	require.NoError(t, os.WriteFile(tmplPath, []byte("run {{ .RunID }}"), 0o644))

	g, err := New(Config{TemplatePath: tmplPath})
	require.NoError(t, err)

	data := sampleData()
	outPath := filepath.Join(dir, "report.md")
	require.NoError(t, g.WriteFile(outPath, data))

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "run "+data.RunID, string(content))
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "text-summary", Suggest("out.txt"))
	assert.Equal(t, "markdown", Suggest("out.md"))
	assert.Equal(t, "markdown", Suggest(""))
}
