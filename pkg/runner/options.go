// Package runner provides multi-file patch application orchestration.
package runner

import "github.com/yaklabco/gopatch/pkg/config"

// Options controls multi-file patch application behavior.
type Options struct {
	// WorkingDir is the base directory target paths are resolved against.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Config is the resolved configuration for this run.
	Config *config.Config
}

// effectiveWorkingDir returns the directory to resolve targets against.
func (o Options) effectiveWorkingDir() string {
	if o.WorkingDir == "" {
		return "."
	}
	return o.WorkingDir
}
