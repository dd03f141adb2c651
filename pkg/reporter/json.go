package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/gopatch/pkg/runner"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	DryRun  bool             `json:"dryRun,omitempty"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single patch's result.
type JSONFileResult struct {
	Path          string `json:"path"`
	Status        string `json:"status"`
	HunksApplied  int    `json:"hunksApplied,omitempty"`
	FuzzyFallback bool   `json:"fuzzyFallback,omitempty"`
	Additions     int    `json:"additions,omitempty"`
	Deletions     int    `json:"deletions,omitempty"`
	BackupCreated bool   `json:"backupCreated,omitempty"`
	SkipReason    string `json:"skipReason,omitempty"`
	Error         string `json:"error,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	PatchesTotal   int `json:"patchesTotal"`
	FilesPatched   int `json:"filesPatched"`
	FilesFailed    int `json:"filesFailed"`
	FilesSkipped   int `json:"filesSkipped"`
	FilesUnchanged int `json:"filesUnchanged"`
	FilesCreated   int `json:"filesCreated"`
	FilesDeleted   int `json:"filesDeleted"`
	HunksApplied   int `json:"hunksApplied"`
	FuzzyFallbacks int `json:"fuzzyFallbacks"`
	Additions      int `json:"additions"`
	Deletions      int `json:"deletions"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.FilesFailed, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: "1.0.0",
		DryRun:  r.opts.DryRun,
		Files:   make([]JSONFileResult, 0),
	}

	if result == nil {
		return output
	}

	if len(result.Files) > 0 {
		output.Files = make([]JSONFileResult, 0, len(result.Files))
	}

	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Path: file.Path,
		}

		switch {
		case file.Error != nil:
			fileResult.Status = "failed"
			fileResult.Error = file.Error.Error()

		case file.Result == nil:
			fileResult.Status = "unknown"

		case file.Result.Skipped:
			fileResult.Status = "skipped"
			fileResult.SkipReason = file.Result.SkipReason

		case file.Result.Deleted:
			fileResult.Status = "deleted"

		case file.Result.Created:
			fileResult.Status = "created"

		case file.Result.Modified:
			fileResult.Status = "patched"

		default:
			fileResult.Status = "unchanged"
		}

		if pr := file.Result; pr != nil {
			fileResult.HunksApplied = pr.HunksApplied
			fileResult.FuzzyFallback = pr.FuzzyFallback
			fileResult.BackupCreated = pr.BackupCreated
			if pr.Diff != nil {
				fileResult.Additions = pr.Diff.Additions
				fileResult.Deletions = pr.Diff.Deletions
			}
		}

		output.Files = append(output.Files, fileResult)
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		PatchesTotal:   stats.PatchesTotal,
		FilesPatched:   stats.FilesPatched,
		FilesFailed:    stats.FilesFailed,
		FilesSkipped:   stats.FilesSkipped,
		FilesUnchanged: stats.FilesUnchanged,
		FilesCreated:   stats.FilesCreated,
		FilesDeleted:   stats.FilesDeleted,
		HunksApplied:   stats.HunksApplied,
		FuzzyFallbacks: stats.FuzzyFallbacks,
		Additions:      stats.Additions,
		Deletions:      stats.Deletions,
	}

	return output
}
