package defaults

// Exit codes for the CLI.
const (
	ExitSuccess     = 0 // Clean exit, all cases passed
	ExitMismatch    = 1 // Snapshot or annotation mismatches found
	ExitErrors      = 2 // Too many tool errors
	ExitUserError   = 3 // Invalid arguments or configuration
	ExitToolMissing = 4 // Compiler binary not found or not runnable
	ExitInterrupted = 5 // Run interrupted by signal
)
