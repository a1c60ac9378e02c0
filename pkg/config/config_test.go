package config

import (
	"errors"
	"flag"
	"os"
	"testing"
	"time"
)

// resetFlags resets the flag package for each test
func resetFlags() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
}

// TestConfigDefaults verifies default values are set correctly
func TestConfigDefaults(t *testing.T) {
	resetFlags()

	// Save and restore os.Args
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "tests/ui"}

	cfg, err := ParseFlags()
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	// Check defaults
	if cfg.SuiteDir != "tests/ui" {
		t.Errorf("SuiteDir: got %q, want 'tests/ui'", cfg.SuiteDir)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency default: got %d, want 8", cfg.Concurrency)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("RateLimit default: got %d, want 0", cfg.RateLimit)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout default: got %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxErrors != 10 {
		t.Errorf("MaxErrors default: got %d, want 10", cfg.MaxErrors)
	}
	if cfg.OutputFormat != "console" {
		t.Errorf("OutputFormat default: got %q, want 'console'", cfg.OutputFormat)
	}
	if cfg.Bless {
		t.Error("Bless default: got true, want false")
	}
}

// TestConfigSuiteFlag verifies -suite works like the positional argument
func TestConfigSuiteFlag(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-suite", "tests/ui"}

	cfg, err := ParseFlags()
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.SuiteDir != "tests/ui" {
		t.Errorf("SuiteDir via -suite: got %q, want 'tests/ui'", cfg.SuiteDir)
	}
}

// TestConfigConcurrencyAlias verifies -c alias
func TestConfigConcurrencyAlias(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-c", "4", "tests/ui"}

	cfg, err := ParseFlags()
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency via -c: got %d, want 4", cfg.Concurrency)
	}
}

// TestConfigRateLimitAlias verifies -rl alias
func TestConfigRateLimitAlias(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-rl", "5", "tests/ui"}

	cfg, err := ParseFlags()
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.RateLimit != 5 {
		t.Errorf("RateLimit via -rl: got %d, want 5", cfg.RateLimit)
	}
}

// TestConfigTimeoutConversion verifies seconds become a Duration
func TestConfigTimeoutConversion(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-timeout", "120", "tests/ui"}

	cfg, err := ParseFlags()
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Timeout != 2*time.Minute {
		t.Errorf("Timeout: got %v, want 2m", cfg.Timeout)
	}
}

// TestConfigMissingSuite verifies the suite directory is required
func TestConfigMissingSuite(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd"}

	_, err := ParseFlags()
	if !errors.Is(err, ErrMissingRequired) {
		t.Errorf("expected ErrMissingRequired, got %v", err)
	}
}

// TestConfigBadFormat verifies unknown formats are rejected
func TestConfigBadFormat(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-format", "yaml", "tests/ui"}

	_, err := ParseFlags()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

// TestConfigJUnitNeedsOutput verifies junit requires a file path
func TestConfigJUnitNeedsOutput(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-format", "junit", "tests/ui"}

	_, err := ParseFlags()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

// TestConfigBlessDryRun verifies the modes combine: a dry-run bless
// previews snapshot rewrites without writing them
func TestConfigBlessDryRun(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-bless", "-dry-run", "tests/ui"}

	cfg, err := ParseFlags()
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !cfg.Bless || !cfg.DryRun {
		t.Errorf("Bless=%v DryRun=%v, want both true", cfg.Bless, cfg.DryRun)
	}
}

// TestConfigConcurrencyCapped verifies concurrency is clamped to the ceiling
func TestConfigConcurrencyCapped(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-c", "500", "tests/ui"}

	cfg, err := ParseFlags()
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Concurrency != 32 {
		t.Errorf("Concurrency cap: got %d, want 32", cfg.Concurrency)
	}
}

// TestConfigZeroConcurrency verifies zero workers is rejected
func TestConfigZeroConcurrency(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-c", "0", "tests/ui"}

	_, err := ParseFlags()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
