package runner

import "errors"

// Sentinel errors for runner failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrTooManyErrors aborts a run once tool failures exceed the
	// configured threshold. A broken toolchain fails every case the
	// same way; finishing the suite would only repeat the message.
	ErrTooManyErrors = errors.New("runner: too many tool errors")

	// ErrNoCases indicates a run was requested for an empty suite.
	ErrNoCases = errors.New("runner: no cases to run")
)
