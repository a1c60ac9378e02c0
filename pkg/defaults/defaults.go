// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all runtime configuration defaults.
//
// Usage:
//
//	config.Concurrency = defaults.ConcurrencyMedium
//	os.WriteFile(path, data, defaults.FileModeSnapshot)
//
// DO NOT use hardcoded values like `Concurrency: 8` anywhere.
// Instead, reference the appropriate constant from this package.
package defaults

// ToolName is the canonical name used in reports, JUnit suites and banners.
const ToolName = "diagcheck"

// Version is the current diagcheck version
const Version = "0.9.2"

// ============================================================================
// CONCURRENCY SETTINGS
// ============================================================================
//
// Compiler invocations are CPU-bound local processes, not network calls.
// Keep defaults close to typical core counts.
// ============================================================================

const (
	// ConcurrencySerial runs one compile job at a time (1)
	ConcurrencySerial = 1

	// ConcurrencyLow is for memory-hungry compilers (4)
	ConcurrencyLow = 4

	// ConcurrencyMedium is the standard worker count (8)
	ConcurrencyMedium = 8

	// ConcurrencyHigh is for large suites on big machines (16)
	ConcurrencyHigh = 16

	// ConcurrencyMax is the hard ceiling for worker pools (32)
	ConcurrencyMax = 32
)

// ============================================================================
// SUITE LAYOUT
// ============================================================================

const (
	// ManifestFile is the suite manifest filename looked up in the suite root.
	ManifestFile = "suite.yaml"

	// SourceExt is the default test source extension.
	SourceExt = ".rs"

	// SnapshotExt is the expected-output snapshot extension.
	SnapshotExt = ".stderr"
)

// ============================================================================
// FILE MODES
// ============================================================================

const (
	// FileModeSnapshot is the mode for blessed snapshot files (0644)
	FileModeSnapshot = 0o644

	// FileModeReport is the mode for generated reports (0644)
	FileModeReport = 0o644

	// DirMode is the mode for created directories (0755)
	DirMode = 0o755
)

// ============================================================================
// OUTPUT LIMITS
// ============================================================================

const (
	// MaxDiffLines caps the number of diff lines shown per case on the console.
	MaxDiffLines = 200

	// DiffContextLines is the number of unchanged context lines around a hunk.
	DiffContextLines = 3

	// ErrorThreshold is the number of tool errors that flips the exit code.
	ErrorThreshold = 10
)
