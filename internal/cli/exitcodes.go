package cli

import "github.com/yaklabco/gopatch/pkg/runner"

// Exit codes for gopatch.
const (
	// ExitSuccess indicates successful execution with all patches applied.
	ExitSuccess = 0

	// ExitPatchErrors indicates the run completed but some patches failed.
	ExitPatchErrors = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCodeFromResult determines the exit code based on the run result.
func ExitCodeFromResult(result *runner.Result) int {
	if result == nil {
		return ExitSuccess
	}

	if result.Stats.FilesFailed > 0 {
		return ExitPatchErrors
	}

	return ExitSuccess
}
