package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/diagcheck/diagcheck/pkg/defaults"
	"github.com/diagcheck/diagcheck/pkg/verdict"
)

// Compile-time interface check.
var _ Writer = (*JUnitWriter)(nil)

// JUnitWriter writes results in JUnit XML format.
// JUnit XML is a standard format for CI systems including Jenkins,
// GitLab CI, GitHub Actions, Azure DevOps, and CircleCI.
// Results are buffered and written as a complete document on Close.
// The writer is safe for concurrent use.
type JUnitWriter struct {
	w         io.Writer
	mu        sync.Mutex
	opts      JUnitOptions
	results   []junitTestCase
	startTime time.Time
}

// JUnitOptions configures the JUnit XML writer.
type JUnitOptions struct {
	// SuiteName is the name of the test suite (default: "diagcheck").
	SuiteName string

	// Package is the classname prefix for test cases.
	Package string

	// Hostname is the hostname for the test suite.
	Hostname string
}

// JUnit XML structures.

type junitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	TestSuites []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	Hostname  string          `xml:"hostname,attr,omitempty"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Error     *junitError   `xml:"error,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

type junitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// NewJUnitWriter creates a JUnit XML writer that writes to w on Close.
// The writer is safe for concurrent use.
func NewJUnitWriter(w io.Writer, opts JUnitOptions) *JUnitWriter {
	if opts.SuiteName == "" {
		opts.SuiteName = defaults.ToolName
	}
	if opts.Package == "" {
		opts.Package = defaults.ToolName
	}
	return &JUnitWriter{
		w:         w,
		opts:      opts,
		results:   make([]junitTestCase, 0),
		startTime: time.Now(),
	}
}

// Write converts a case result to a JUnit test case.
// Mapping:
//   - pass → success (no child element)
//   - snapshot/annotation mismatches, unexpected outcomes → <failure>
//   - error, timeout → <error>
//   - skipped → <skipped>
func (jw *JUnitWriter) Write(result *CaseResult) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	name := result.Name
	if result.Revision != "" {
		name += "#" + result.Revision
	}
	testCase := junitTestCase{
		Name:      name,
		ClassName: jw.opts.Package + "." + classname(result.Name),
		Time:      float64(result.DurationMs) / 1000.0,
	}

	switch {
	case result.Verdict.Mismatch():
		testCase.Failure = &junitFailure{
			Message: strings.Join(result.Reasons, "; "),
			Type:    string(result.Verdict),
			Content: result.Diff,
		}
	case result.Verdict == verdict.Timeout:
		testCase.Error = &junitError{
			Message: "compile timed out",
			Type:    "timeout",
			Content: strings.Join(result.Reasons, "; "),
		}
	case result.Verdict == verdict.Error:
		testCase.Error = &junitError{
			Message: "tool failure",
			Type:    "error",
			Content: errorContent(result),
		}
	case result.Verdict == verdict.Skipped:
		testCase.Skipped = &junitSkipped{Message: strings.Join(result.Reasons, "; ")}
	}

	jw.results = append(jw.results, testCase)
	return nil
}

// classname maps a case path onto a dotted classname; the directory is
// the grouping unit CI dashboards show.
func classname(name string) string {
	dir := "root"
	if i := strings.LastIndex(name, "/"); i >= 0 {
		dir = strings.ReplaceAll(name[:i], "/", ".")
	}
	return dir
}

func errorContent(result *CaseResult) string {
	if result.ErrorMessage != "" {
		return result.ErrorMessage
	}
	return strings.Join(result.Reasons, "; ")
}

// Close writes all buffered results as a complete JUnit XML document.
// If the underlying writer implements io.Closer, it will be closed.
func (jw *JUnitWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	failures, errs, skipped := 0, 0, 0
	for _, tc := range jw.results {
		if tc.Failure != nil {
			failures++
		}
		if tc.Error != nil {
			errs++
		}
		if tc.Skipped != nil {
			skipped++
		}
	}

	suite := junitTestSuite{
		Name:      jw.opts.SuiteName,
		Tests:     len(jw.results),
		Failures:  failures,
		Errors:    errs,
		Skipped:   skipped,
		Time:      time.Since(jw.startTime).Seconds(),
		Timestamp: jw.startTime.Format(time.RFC3339),
		Hostname:  jw.opts.Hostname,
		TestCases: jw.results,
	}

	doc := junitTestSuites{TestSuites: []junitTestSuite{suite}}

	if _, err := jw.w.Write([]byte(xml.Header)); err != nil {
		return fmt.Errorf("junit: write header: %w", err)
	}

	encoder := xml.NewEncoder(jw.w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("junit: encode: %w", err)
	}

	if closer, ok := jw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
