// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.CompileDefault)
//
// DO NOT use hardcoded time.Duration values like `30 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// COMPILE JOB TIMEOUTS
// ============================================================================

const (
	// CompileQuick is for tiny single-file check builds (10s)
	CompileQuick = 10 * time.Second

	// CompileDefault is the per-case compile timeout (30s) - the default
	CompileDefault = 30 * time.Second

	// CompileSlow is for debug-assertions or heavily-flagged builds (2min)
	CompileSlow = 2 * time.Minute

	// ToolProbe bounds the compiler version probe (5s)
	ToolProbe = 5 * time.Second
)

// ============================================================================
// RUN-LEVEL TIMEOUTS
// ============================================================================

const (
	// SuiteSmall bounds a run of a small suite (5min)
	SuiteSmall = 5 * time.Minute

	// SuiteDefault bounds a full suite run (30min)
	SuiteDefault = 30 * time.Minute
)

// ============================================================================
// UI INTERVALS
// ============================================================================

const (
	// ProgressTick is the console progress refresh interval (250ms)
	ProgressTick = 250 * time.Millisecond

	// StatsInterval is the periodic stats log interval (5s)
	StatsInterval = 5 * time.Second
)
