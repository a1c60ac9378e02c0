// Package exitcode provides semantic exit codes for CI integration.
// Exit codes communicate run outcomes to automation pipelines.
//
// Exit codes:
//   - 0: Success (every case matched)
//   - 1: Mismatches detected
//   - 2: Too many tool errors
//   - 3: Invalid configuration or usage
//   - 4: Compiler not found
//   - 5: Run interrupted
package exitcode

import (
	"fmt"
	"sync"

	"github.com/diagcheck/diagcheck/pkg/defaults"
	"github.com/diagcheck/diagcheck/pkg/verdict"
)

// Code represents a semantic exit code for CI pipelines.
type Code int

const (
	// Success indicates every case matched its expectations.
	Success Code = defaults.ExitSuccess
	// Mismatches indicates one or more cases diverged from their
	// snapshots or annotations.
	Mismatches Code = defaults.ExitMismatch
	// Errors indicates too many tool errors occurred during the run.
	Errors Code = defaults.ExitErrors
	// Configuration indicates invalid configuration was provided.
	Configuration Code = defaults.ExitUserError
	// ToolMissing indicates the compiler binary was unavailable.
	ToolMissing Code = defaults.ExitToolMissing
	// Interrupted indicates the run was interrupted (e.g., SIGINT).
	Interrupted Code = defaults.ExitInterrupted
)

// codeStrings maps exit codes to short machine-readable names.
var codeStrings = map[Code]string{
	Success:       "success",
	Mismatches:    "mismatches_detected",
	Errors:        "too_many_errors",
	Configuration: "invalid_configuration",
	ToolMissing:   "compiler_missing",
	Interrupted:   "run_interrupted",
}

// codeDescriptions provides detailed descriptions for exit codes.
var codeDescriptions = map[Code]string{
	Success:       "Run completed with every case matching its expectations",
	Mismatches:    "One or more cases diverged from their snapshots",
	Errors:        "Run terminated due to too many tool errors",
	Configuration: "Invalid configuration provided",
	ToolMissing:   "Compiler binary could not be found or started",
	Interrupted:   "Run was interrupted by user or signal",
}

// Config holds configuration for the exit code manager.
type Config struct {
	// MismatchCode is the exit code to return when mismatches are
	// detected. Default: 1.
	MismatchCode int

	// ExitOnError determines whether to exit with an error code once
	// too many tool errors accumulate.
	ExitOnError bool

	// ErrorThreshold is the number of tool errors that triggers an
	// error exit. Default: 10.
	ErrorThreshold int
}

// DefaultConfig returns the default exit code configuration.
func DefaultConfig() Config {
	return Config{
		MismatchCode:   int(Mismatches),
		ExitOnError:    true,
		ErrorThreshold: defaults.ErrorThreshold,
	}
}

// Manager tracks run outcomes and determines the appropriate exit code.
type Manager struct {
	cfg        Config
	mismatches int
	errors     int
	mu         sync.Mutex

	// Special state flags
	configError bool
	toolMissing bool
	interrupted bool
}

// New creates a new exit code manager with the given configuration.
func New(cfg Config) *Manager {
	if cfg.MismatchCode == 0 {
		cfg.MismatchCode = int(Mismatches)
	}
	if cfg.ErrorThreshold == 0 {
		cfg.ErrorThreshold = defaults.ErrorThreshold
	}
	return &Manager{cfg: cfg}
}

// Record folds one case verdict into the exit state. Timeouts count as
// errors for threshold purposes.
func (m *Manager) Record(v verdict.Verdict) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case v.Mismatch():
		m.mismatches++
	case v == verdict.Error, v == verdict.Timeout:
		m.errors++
	}
}

// SetConfigError marks that a configuration error occurred.
func (m *Manager) SetConfigError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configError = true
}

// SetToolMissing marks that the compiler was unavailable.
func (m *Manager) SetToolMissing() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolMissing = true
}

// SetInterrupted marks that the run was interrupted.
func (m *Manager) SetInterrupted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interrupted = true
}

// ExitCode returns the appropriate exit code based on recorded
// outcomes. The returned string provides a human-readable reason.
//
// Priority order (highest to lowest):
//  1. Interrupted
//  2. Configuration error
//  3. Compiler missing
//  4. Too many errors (if ExitOnError enabled)
//  5. Mismatches detected
//  6. Success
func (m *Manager) ExitCode() (Code, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.interrupted {
		return Interrupted, codeDescriptions[Interrupted]
	}
	if m.configError {
		return Configuration, codeDescriptions[Configuration]
	}
	if m.toolMissing {
		return ToolMissing, codeDescriptions[ToolMissing]
	}
	if m.cfg.ExitOnError && m.errors >= m.cfg.ErrorThreshold {
		return Errors, fmt.Sprintf("%s (threshold: %d, actual: %d)",
			codeDescriptions[Errors], m.cfg.ErrorThreshold, m.errors)
	}
	if m.mismatches > 0 {
		return Code(m.cfg.MismatchCode), fmt.Sprintf("%s (count: %d)",
			codeDescriptions[Mismatches], m.mismatches)
	}
	return Success, codeDescriptions[Success]
}

// Stats returns the current mismatch and error counts.
func (m *Manager) Stats() (mismatches, errors int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mismatches, m.errors
}

// Reset clears all recorded outcomes and state flags.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mismatches = 0
	m.errors = 0
	m.configError = false
	m.toolMissing = false
	m.interrupted = false
}

// CodeString returns the string representation of an exit code.
func CodeString(code Code) string {
	if s, ok := codeStrings[code]; ok {
		return s
	}
	return fmt.Sprintf("unknown_code_%d", code)
}

// CodeDescription returns a detailed description of an exit code.
func CodeDescription(code Code) string {
	if s, ok := codeDescriptions[code]; ok {
		return s
	}
	return fmt.Sprintf("unknown exit code %d", code)
}
