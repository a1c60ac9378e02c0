package diag

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/diagcheck/diagcheck/pkg/jsonutil"
)

// wireDiagnostic mirrors the compiler's --error-format=json objects.
// Only the fields diagcheck consumes are declared; unknown fields are
// ignored by the decoder.
type wireDiagnostic struct {
	MessageType string     `json:"$message_type"`
	Message     string     `json:"message"`
	Level       string     `json:"level"`
	Code        *wireCode  `json:"code"`
	Spans       []wireSpan `json:"spans"`
	Children    []wireDiagnostic `json:"children"`
	Rendered    string     `json:"rendered"`
}

type wireCode struct {
	Code string `json:"code"`
}

type wireSpan struct {
	FileName    string `json:"file_name"`
	LineStart   int    `json:"line_start"`
	LineEnd     int    `json:"line_end"`
	ColumnStart int    `json:"column_start"`
	ColumnEnd   int    `json:"column_end"`
	IsPrimary   bool   `json:"is_primary"`
	Label       string `json:"label"`
}

// DecodeJSON parses a JSON diagnostic stream (one object per line, as the
// compiler writes to stderr with --error-format=json) into diagnostics.
// Objects whose $message_type is not "diagnostic" (artifact notifications,
// future-incompat reports) are skipped; objects without the field are
// treated as diagnostics for older toolchains.
func DecodeJSON(r io.Reader) ([]Diagnostic, error) {
	var diags []Diagnostic

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || !strings.HasPrefix(line, "{") {
			// Compilers mix plain-text ICE backtraces into the stream.
			continue
		}

		var wire wireDiagnostic
		if err := jsonutil.Unmarshal([]byte(line), &wire); err != nil {
			return nil, fmt.Errorf("decoding diagnostic on line %d: %w", lineNo, err)
		}
		if wire.MessageType != "" && wire.MessageType != "diagnostic" {
			continue
		}
		diags = append(diags, fromWire(wire))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading diagnostic stream: %w", err)
	}
	return diags, nil
}

func fromWire(w wireDiagnostic) Diagnostic {
	d := Diagnostic{
		Level:    ParseLevel(w.Level),
		Message:  w.Message,
		Rendered: w.Rendered,
	}
	if w.Code != nil {
		d.Code = w.Code.Code
	}
	for _, s := range w.Spans {
		d.Spans = append(d.Spans, Span{
			File:      s.FileName,
			LineStart: s.LineStart,
			LineEnd:   s.LineEnd,
			ColStart:  s.ColumnStart,
			ColEnd:    s.ColumnEnd,
			Primary:   s.IsPrimary,
			Label:     s.Label,
		})
	}
	for _, c := range w.Children {
		d.Children = append(d.Children, fromWire(c))
	}
	return d
}
