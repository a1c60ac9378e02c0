// Package jsonutil provides a high-performance JSON encoding/decoding wrapper.
// It uses github.com/go-json-experiment/json which is 2-3x faster than
// encoding/json. The compiler's --error-format=json stream is decoded once
// per test case, so this sits on the hot path of every suite run.
//
// The API matches the standard library for easy migration.
//
// Usage:
//
//	import "github.com/diagcheck/diagcheck/pkg/jsonutil"
//
//	// Instead of: json.Unmarshal(data, &v)
//	err := jsonutil.Unmarshal(data, &v)
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// MarshalIndent returns the indented JSON encoding of v.
func MarshalIndent(v any, indent string) ([]byte, error) {
	return json.Marshal(v, jsontext.WithIndent(indent))
}

// MarshalWrite encodes v to w. Streaming writers use this to skip the
// intermediate byte slice on every result line.
func MarshalWrite(w io.Writer, v any) error {
	return json.MarshalWrite(w, v)
}
