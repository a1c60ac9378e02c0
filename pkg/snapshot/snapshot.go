// Package snapshot loads, compares, and blesses expected-output files.
// A snapshot is the canonical stderr of one test case (one .stderr file
// per case, or per revision); comparison is line-based and produces
// unified-diff style hunks for reporting.
package snapshot

import (
	"errors"
	"fmt"
	"os"

	"github.com/spaolacci/murmur3"

	"github.com/diagcheck/diagcheck/pkg/defaults"
)

// ErrNotBlessed is returned by Load when no snapshot exists for a case.
// Callers treat it as "expect empty output".
var ErrNotBlessed = errors.New("no snapshot recorded")

// Load reads a snapshot file. A missing file returns ErrNotBlessed and
// empty content, which compares equal to empty compiler output.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotBlessed, path)
		}
		return "", fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	return string(data), nil
}

// Bless writes normalized output as the new snapshot. Empty output
// removes the file: a passing case must not leave a stale .stderr
// behind.
func Bless(path, content string) error {
	if content == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale snapshot %s: %w", path, err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(content), defaults.FileModeSnapshot); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// BlessAction describes what a bless would do to one snapshot.
type BlessAction string

const (
	BlessCreate    BlessAction = "create"
	BlessUpdate    BlessAction = "update"
	BlessRemove    BlessAction = "remove"
	BlessUnchanged BlessAction = "unchanged"
)

// PlanBless reports the action a bless of path with content would take,
// without writing. Used by dry-run mode.
func PlanBless(path, content string) BlessAction {
	existing, err := Load(path)
	switch {
	case errors.Is(err, ErrNotBlessed):
		if content == "" {
			return BlessUnchanged
		}
		return BlessCreate
	case err != nil:
		return BlessUpdate
	case content == "":
		return BlessRemove
	case existing == content:
		return BlessUnchanged
	default:
		return BlessUpdate
	}
}

// Fingerprint returns a 128-bit murmur3 hash of snapshot content,
// formatted as hex. Used for cheap change detection in JSONL output and
// for deduplicating identical failures across revisions.
func Fingerprint(content string) string {
	h1, h2 := murmur3.Sum128([]byte(content))
	return fmt.Sprintf("%016x%016x", h1, h2)
}
