// Package iohelper provides helper functions for I/O operations,
// particularly for safely capturing compiler output streams with limits.
package iohelper

import (
	"io"
	"log/slog"
)

// Standard capture size limits for different use cases
const (
	// SmallMaxOutputSize is for version probes and short banners (8KB)
	SmallMaxOutputSize int64 = 8 * 1024

	// DefaultMaxOutputSize is for typical diagnostic output (1MB)
	DefaultMaxOutputSize int64 = 1024 * 1024

	// LargeMaxOutputSize is for pathological error cascades (10MB)
	LargeMaxOutputSize int64 = 10 * 1024 * 1024
)

// ReadCapped reads from an io.Reader with a size limit.
// If r is nil, returns an empty slice and no error.
// This prevents memory exhaustion from runaway diagnostic floods
// (a single macro error can expand into megabytes of notes).
//
// Usage:
//
//	stderr, err := iohelper.ReadCapped(pipe, iohelper.DefaultMaxOutputSize)
func ReadCapped(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadCappedOrLog reads with the default limit and logs instead of
// returning the error. Returns whatever was read before the failure.
func ReadCappedOrLog(r io.Reader, logger *slog.Logger) []byte {
	data, err := ReadCapped(r, DefaultMaxOutputSize)
	if err != nil && logger != nil {
		logger.Warn("output capture failed", slog.String("error", err.Error()))
	}
	return data
}

// Truncated reports whether data hit the given cap. Callers use this to
// flag results whose diffs may be incomplete.
func Truncated(data []byte, maxSize int64) bool {
	return int64(len(data)) >= maxSize
}
