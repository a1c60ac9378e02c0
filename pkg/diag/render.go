package diag

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Source supplies quoted source lines to the renderer. Line returns the
// 1-based line of a file and reports whether it was available.
type Source interface {
	Line(file string, line int) (string, bool)
}

// MapSource is an in-memory Source keyed by file name. Intended for tests
// and for rendering diagnostics whose files no longer exist on disk.
type MapSource map[string][]string

func (m MapSource) Line(file string, line int) (string, bool) {
	lines, ok := m[file]
	if !ok || line < 1 || line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// FileSource reads and caches source files from disk. Safe for concurrent
// use by renderer goroutines.
type FileSource struct {
	mu    sync.Mutex
	files map[string][]string
}

// NewFileSource returns an empty file-backed Source.
func NewFileSource() *FileSource {
	return &FileSource{files: make(map[string][]string)}
}

func (f *FileSource) Line(file string, line int) (string, bool) {
	f.mu.Lock()
	lines, ok := f.files[file]
	if !ok {
		data, err := os.ReadFile(file)
		if err != nil {
			// Negative-cache misses so a missing file is stat'd once.
			f.files[file] = nil
			f.mu.Unlock()
			return "", false
		}
		lines = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		f.files[file] = lines
	}
	f.mu.Unlock()
	if lines == nil || line < 1 || line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// Renderer produces the human-readable diagnostic format: header line,
// arrow line, line-number gutter with quoted source and caret underlines,
// and trailing note/help annotations.
type Renderer struct {
	// Source supplies quoted source lines. When nil, or when a line is
	// unavailable, the source/caret rows are omitted.
	Source Source

	// Anonymize replaces line numbers in the gutter with the placeholder
	// "LL", the form used by checked-in snapshots so that unrelated edits
	// do not churn every expected file.
	Anonymize bool

	// ExplainCommand is the tool named in the explain trailer
	// (default "rustc").
	ExplainCommand string
}

// NewRenderer returns a renderer with snapshot-style defaults:
// anonymized gutters and file-backed source loading.
func NewRenderer() *Renderer {
	return &Renderer{
		Source:         NewFileSource(),
		Anonymize:      true,
		ExplainCommand: "rustc",
	}
}

// Render formats a single diagnostic block, without a trailing blank line.
func (r *Renderer) Render(d *Diagnostic) string {
	return r.renderBlock(d, true)
}

// RenderAll formats a batch of diagnostics the way a compiler run prints
// them: each block separated by a blank line, then the summary line(s)
// and the explain trailer. The result ends with a single newline.
func (r *Renderer) RenderAll(diags []Diagnostic) string {
	var blocks []string
	for i := range diags {
		blocks = append(blocks, r.Render(&diags[i]))
	}

	errors, warnings := Count(diags)
	if warnings > 0 && errors == 0 {
		blocks = append(blocks, fmt.Sprintf("warning: %s emitted", plural(warnings, "warning")))
	}
	if errors > 0 {
		summary := fmt.Sprintf("error: aborting due to %s", plural(errors, "previous error"))
		if warnings > 0 {
			summary += fmt.Sprintf("; %s emitted", plural(warnings, "warning"))
		}
		blocks = append(blocks, summary)
	}

	if trailer := r.explainTrailer(diags); trailer != "" {
		blocks = append(blocks, trailer)
	}

	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// explainTrailer builds the "--explain" footer from the error codes
// present in the batch.
func (r *Renderer) explainTrailer(diags []Diagnostic) string {
	var codes []string
	seen := map[string]bool{}
	for _, d := range diags {
		if d.IsError() && d.Code != "" && !seen[d.Code] {
			seen[d.Code] = true
			codes = append(codes, d.Code)
		}
	}
	sort.Strings(codes)

	tool := r.ExplainCommand
	if tool == "" {
		tool = "rustc"
	}
	switch len(codes) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("For more information about this error, try `%s --explain %s`.", tool, codes[0])
	default:
		return fmt.Sprintf("Some errors have detailed explanations: %s.\nFor more information about an error, try `%s --explain %s`.",
			strings.Join(codes, ", "), tool, codes[0])
	}
}

// renderBlock formats one diagnostic block without a trailing newline.
// Children with spans are emitted as sub-blocks directly beneath the
// parent; span-less children become "= note:" rows inside the gutter.
func (r *Renderer) renderBlock(d *Diagnostic, allowSub bool) string {
	var b strings.Builder
	b.WriteString(d.Header())
	b.WriteByte('\n')

	primary, hasSpan := d.PrimarySpan()
	var inline []Diagnostic   // span-less children -> "= note:" rows
	var subBlock []Diagnostic // spanned children -> their own blocks
	for _, c := range d.Children {
		if len(c.Spans) == 0 {
			inline = append(inline, c)
		} else {
			subBlock = append(subBlock, c)
		}
	}

	if hasSpan {
		width := r.gutterWidth(d.Spans)
		pad := strings.Repeat(" ", width)

		fmt.Fprintf(&b, "%s--> %s\n", pad, primary.Location())
		fmt.Fprintf(&b, "%s |\n", pad)
		r.renderSpanRows(&b, d.Spans, width)
		if len(inline) > 0 {
			fmt.Fprintf(&b, "%s |\n", pad)
			for _, c := range inline {
				fmt.Fprintf(&b, "%s = %s: %s\n", pad, c.Level, c.Message)
			}
		}
	} else {
		for _, c := range inline {
			fmt.Fprintf(&b, "  = %s: %s\n", c.Level, c.Message)
		}
	}

	out := strings.TrimSuffix(b.String(), "\n")
	if allowSub {
		for i := range subBlock {
			out += "\n" + r.renderBlock(&subBlock[i], false)
		}
	}
	return out
}

// renderSpanRows quotes each source line touched by the spans and draws
// the caret row beneath it: '^' for primary spans, '-' for secondary.
func (r *Renderer) renderSpanRows(b *strings.Builder, spans []Span, width int) {
	pad := strings.Repeat(" ", width)

	// Group spans by (file, start line), keeping first-seen order by line.
	type lineKey struct {
		file string
		line int
	}
	groups := map[lineKey][]Span{}
	var order []lineKey
	for _, s := range spans {
		k := lineKey{s.File, s.LineStart}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], s)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].file != order[j].file {
			return order[i].file < order[j].file
		}
		return order[i].line < order[j].line
	})

	for _, k := range order {
		src, haveSrc := "", false
		if r.Source != nil {
			src, haveSrc = r.Source.Line(k.file, k.line)
		}
		if !haveSrc {
			continue
		}
		fmt.Fprintf(b, "%s | %s\n", r.lineLabel(k.line, width), src)
		fmt.Fprintf(b, "%s | %s\n", pad, caretRow(groups[k]))
	}
}

// caretRow draws the annotation row for all spans that share a line.
// The label of the last labeled span is appended after the markers.
func caretRow(spans []Span) string {
	sort.Slice(spans, func(i, j int) bool { return spans[i].ColStart < spans[j].ColStart })

	var row []rune
	label := ""
	for _, s := range spans {
		marker := '-'
		if s.Primary {
			marker = '^'
		}
		start := s.ColStart - 1
		if start < 0 {
			start = 0
		}
		for len(row) < start {
			row = append(row, ' ')
		}
		for i := 0; i < s.Width(); i++ {
			idx := start + i
			for len(row) <= idx {
				row = append(row, ' ')
			}
			if row[idx] == ' ' {
				row[idx] = marker
			}
		}
		if s.Label != "" {
			label = s.Label
		}
	}

	out := string(row)
	if label != "" {
		out += " " + label
	}
	return out
}

// gutterWidth is the width of the line-number column: 2 for anonymized
// "LL" gutters, otherwise the digit count of the largest quoted line.
func (r *Renderer) gutterWidth(spans []Span) int {
	if r.Anonymize {
		return 2
	}
	max := 1
	for _, s := range spans {
		if s.LineStart > max {
			max = s.LineStart
		}
		if s.LineEnd > max {
			max = s.LineEnd
		}
	}
	return len(fmt.Sprint(max))
}

func (r *Renderer) lineLabel(line, width int) string {
	if r.Anonymize {
		return "LL"
	}
	return fmt.Sprintf("%*d", width, line)
}

// plural formats "1 previous error" / "3 previous errors".
func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
