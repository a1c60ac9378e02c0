package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/diagcheck/diagcheck/pkg/jsonutil"
	"github.com/diagcheck/diagcheck/pkg/ui"
)

// WriterOptions configures writer behavior.
type WriterOptions struct {
	Verbose bool
	Silent  bool
	Suite   string
}

// NewWriter creates the appropriate writer based on format.
func NewWriter(outputFile, format string) (Writer, error) {
	return NewWriterWithOptions(outputFile, format, WriterOptions{})
}

// NewWriterWithOptions creates a writer with custom options.
func NewWriterWithOptions(outputFile, format string, opts WriterOptions) (Writer, error) {
	switch format {
	case "json":
		return newJSONWriter(outputFile)
	case "jsonl":
		return newJSONLWriter(outputFile)
	case "junit":
		if outputFile == "" {
			return nil, fmt.Errorf("junit format requires an output file (-o results.xml)")
		}
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		return NewJUnitWriter(f, JUnitOptions{SuiteName: opts.Suite}), nil
	case "console", "":
		return &ConsoleWriter{out: os.Stdout, verbose: opts.Verbose, silent: opts.Silent}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// JSONWriter buffers results and writes one indented JSON document on
// Close.
type JSONWriter struct {
	file    *os.File
	results []*CaseResult
	mu      sync.Mutex
}

func newJSONWriter(path string) (*JSONWriter, error) {
	if path == "" {
		return &JSONWriter{file: os.Stdout}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONWriter{file: file, results: make([]*CaseResult, 0)}, nil
}

func (w *JSONWriter) Write(result *CaseResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.results = append(w.results, result)
	return nil
}

func (w *JSONWriter) Close() (retErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != os.Stdout {
		defer func() {
			if err := w.file.Close(); err != nil && retErr == nil {
				retErr = err
			}
		}()
	}

	data, err := jsonutil.MarshalIndent(w.results, "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.file.Write(data)
	return err
}

// JSONLWriter streams newline-delimited JSON, one result per line.
type JSONLWriter struct {
	file *os.File
	mu   sync.Mutex
}

func newJSONLWriter(path string) (*JSONLWriter, error) {
	if path == "" {
		return &JSONLWriter{file: os.Stdout}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONLWriter{file: file}, nil
}

func (w *JSONLWriter) Write(result *CaseResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := jsonutil.MarshalWrite(w.file, result); err != nil {
		return err
	}
	_, err := w.file.Write([]byte{'\n'})
	return err
}

func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != os.Stdout {
		return w.file.Close()
	}
	return nil
}

// ConsoleWriter writes results to the terminal with verdict colors.
// Passing cases print only in verbose mode; failures always print,
// with their reasons and a styled diff.
type ConsoleWriter struct {
	out     io.Writer
	verbose bool
	silent  bool
	mu      sync.Mutex
}

// NewConsoleWriter creates a console writer targeting w.
func NewConsoleWriter(w io.Writer, verbose bool) *ConsoleWriter {
	return &ConsoleWriter{out: w, verbose: verbose}
}

func (w *ConsoleWriter) Write(result *CaseResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.silent {
		return nil
	}
	if !result.Failed() && !w.verbose {
		return nil
	}

	name := result.Name
	if result.Revision != "" {
		name += "#" + result.Revision
	}

	badge := ui.VerdictStyle(string(result.Verdict)).Render(string(result.Verdict))
	fmt.Fprintf(w.out, "[%s] %s (%dms)\n", badge, name, result.DurationMs)

	for _, reason := range result.Reasons {
		fmt.Fprintf(w.out, "    %s\n", ui.SanitizeString(reason))
	}
	if result.ErrorMessage != "" {
		fmt.Fprintf(w.out, "    %s\n", ui.SanitizeString(result.ErrorMessage))
	}

	if result.Diff != "" {
		fmt.Fprintln(w.out)
		for _, line := range strings.Split(result.Diff, "\n") {
			fmt.Fprintf(w.out, "    %s\n", ui.DiffLineStyle(line).Render(ui.SanitizeString(line)))
		}
		if result.DiffTruncated {
			fmt.Fprintf(w.out, "    %s\n", ui.HelpStyle.Render("(diff truncated)"))
		}
		fmt.Fprintln(w.out)
	}
	return nil
}

func (w *ConsoleWriter) Close() error {
	return nil
}

// WriteSummary prints the aggregate run summary to the console.
func (w *ConsoleWriter) WriteSummary(e *ExecutionResults) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.silent {
		return
	}

	fmt.Fprintln(w.out)
	fmt.Fprintf(w.out, "%s %s",
		ui.StatLabelStyle.Render("cases:"),
		ui.StatValueStyle.Render(fmt.Sprintf("%d", e.TotalCases)))
	fmt.Fprintf(w.out, "  %s %s",
		ui.StatLabelStyle.Render("passed:"),
		ui.PassStyle.Render(fmt.Sprintf("%d", e.Passed)))
	fmt.Fprintf(w.out, "  %s %s",
		ui.StatLabelStyle.Render("mismatched:"),
		ui.MismatchStyle.Render(fmt.Sprintf("%d", e.Mismatched)))
	fmt.Fprintf(w.out, "  %s %s",
		ui.StatLabelStyle.Render("errored:"),
		ui.ErrorStyle.Render(fmt.Sprintf("%d", e.Errored)))
	fmt.Fprintf(w.out, "  %s %s\n",
		ui.StatLabelStyle.Render("skipped:"),
		ui.SkippedStyle.Render(fmt.Sprintf("%d", e.Skipped)))

	fmt.Fprintf(w.out, "%s %.1fs (%.1f cases/s)\n",
		ui.StatLabelStyle.Render("duration:"),
		e.Duration.Seconds(), e.CasesPerSec)

	if len(e.DirStats) > 0 {
		fmt.Fprintln(w.out, ui.SectionStyle.Render("failures by directory"))
		for dir, n := range e.DirStats {
			fmt.Fprintf(w.out, "  %-40s %d\n", dir, n)
		}
	}
}
