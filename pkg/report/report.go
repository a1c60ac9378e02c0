// Package report renders run results through Go templates. The
// built-in markdown report is what CI jobs attach to a failed pipeline;
// custom templates cover everything else.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/diagcheck/diagcheck/pkg/output"
)

// Config selects the template source: a file, an inline string, or a
// built-in name.
type Config struct {
	TemplatePath   string
	TemplateString string
	BuiltIn        string
}

// builtInTemplates contains pre-defined report formats.
var builtInTemplates = map[string]string{
	"markdown": `# {{ .Suite }} snapshot report

Run {{ .RunID }} | {{ .Generated }} | {{ .Compiler }}

| | |
|---|---|
| Cases | {{ .Summary.TotalCases }} |
| Passed | {{ .Summary.Passed }} |
| Mismatched | {{ .Summary.Mismatched }} |
| Errored | {{ .Summary.Errored }} |
| Skipped | {{ .Summary.Skipped }} |
| Duration | {{ printf "%.1f" .Summary.Duration.Seconds }}s |
{{ $failures := failed .Results }}
{{- if $failures }}
## Failures
{{ range $failures }}
### {{ verdictIcon (printf "%s" .Verdict) }} {{ caseTitle . }}

{{ range .Reasons }}- {{ . }}
{{ end }}
{{- if .Diff }}
` + "```diff\n{{ .Diff }}\n```" + `
{{ end }}
{{- end }}
{{- else }}
All cases matched their snapshots.
{{- end }}
`,

	"text-summary": `{{ .Suite }} run {{ .RunID }}
generated: {{ .Generated }}
cases: {{ .Summary.TotalCases }}  passed: {{ .Summary.Passed }}  mismatched: {{ .Summary.Mismatched }}  errored: {{ .Summary.Errored }}  skipped: {{ .Summary.Skipped }}
{{- range failed .Results }}
{{ printf "%-20s" (printf "%s" .Verdict) }} {{ caseTitle . }}
{{- end }}
`,
}

// Data is the template input.
type Data struct {
	RunID     string
	Suite     string
	Compiler  string
	Generated string
	Results   []*output.CaseResult
	Summary   *output.ExecutionResults
}

// Generator renders reports from run results.
// Sprig functions and diagcheck-specific functions are available in
// templates.
type Generator struct {
	cfg  Config
	tmpl *template.Template
}

// New creates a report generator. It parses the template immediately
// and returns an error if the template is invalid.
func New(cfg Config) (*Generator, error) {
	g := &Generator{cfg: cfg}
	if err := g.parseTemplate(); err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}
	return g, nil
}

// parseTemplate parses the template from config (path, string, or
// built-in).
func (g *Generator) parseTemplate() error {
	var content string

	switch {
	case g.cfg.TemplatePath != "":
		data, err := os.ReadFile(g.cfg.TemplatePath)
		if err != nil {
			return fmt.Errorf("reading template file: %w", err)
		}
		content = string(data)

	case g.cfg.TemplateString != "":
		content = g.cfg.TemplateString

	case g.cfg.BuiltIn != "":
		c, ok := builtInTemplates[g.cfg.BuiltIn]
		if !ok {
			return fmt.Errorf("unknown built-in template: %s (available: markdown, text-summary)", g.cfg.BuiltIn)
		}
		content = c

	default:
		return fmt.Errorf("no template specified: set TemplatePath, TemplateString, or BuiltIn")
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["failed"] = tmplFailed
	funcMap["verdictIcon"] = tmplVerdictIcon
	funcMap["caseTitle"] = tmplCaseTitle

	tmpl, err := template.New("report").Funcs(funcMap).Parse(content)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}
	g.tmpl = tmpl
	return nil
}

// Render executes the template into w.
func (g *Generator) Render(w io.Writer, data *Data) error {
	if data.Generated == "" {
		data.Generated = time.Now().UTC().Format(time.RFC3339)
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile renders the report into a file.
func (g *Generator) WriteFile(path string, data *Data) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := g.Render(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Suggest returns the built-in name for a report path, defaulting to
// markdown.
func Suggest(path string) string {
	if strings.HasSuffix(path, ".txt") {
		return "text-summary"
	}
	return "markdown"
}

// tmplFailed filters results down to the ones that count against the
// run.
func tmplFailed(results []*output.CaseResult) []*output.CaseResult {
	var failed []*output.CaseResult
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// tmplVerdictIcon maps a verdict to a marker that survives plain-text
// rendering.
func tmplVerdictIcon(verdict string) string {
	switch verdict {
	case "pass":
		return "[ok]"
	case "error", "timeout":
		return "[!!]"
	case "skipped":
		return "[--]"
	default:
		return "[xx]"
	}
}

// tmplCaseTitle renders the case name with its revision suffix.
func tmplCaseTitle(r *output.CaseResult) string {
	if r.Revision != "" {
		return r.Name + "#" + r.Revision
	}
	return r.Name
}
