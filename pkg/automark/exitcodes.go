// Package automark provides public constants for scripts and tools that
// drive the automark CLI.
package automark

// Exit codes returned by the automark CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure (unreadable folder, report too wide, upload failed).
	ExitFailure = 1

	// ExitConfigError indicates an invalid configuration or test specification.
	ExitConfigError = 2

	// ExitEnvError indicates an environment problem such as a missing interpreter.
	ExitEnvError = 3
)
