package runner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-enry/go-enry/v2"

	"github.com/yaklabco/gopatch/pkg/apply"
	"github.com/yaklabco/gopatch/pkg/config"
	"github.com/yaklabco/gopatch/pkg/diff"
	"github.com/yaklabco/gopatch/pkg/fsutil"
	"github.com/yaklabco/gopatch/pkg/patch"
)

// Pipeline error types for categorization.
var (
	// ErrFileNotFound indicates the target file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrBinaryFile indicates the target is a binary file, which cannot
	// be patched line by line.
	ErrBinaryFile = errors.New("binary file")

	// ErrTargetExists indicates a file-creation patch targets a path
	// that already exists.
	ErrTargetExists = errors.New("target already exists")

	// ErrApplyFailure indicates the patch could not be applied.
	ErrApplyFailure = errors.New("apply failure")

	// ErrWriteFailure indicates a write error.
	ErrWriteFailure = errors.New("write failure")
)

// PipelineResult contains the result of applying a single patch through
// the safety pipeline.
type PipelineResult struct {
	// Path is the resolved target file path.
	Path string

	// OriginalInfo is the file state before processing. Nil for
	// file-creation patches.
	OriginalInfo *fsutil.FileInfo

	// Modified is true if the patch changed the content.
	Modified bool

	// PatchedContent is the new content after applying the patch
	// (nil if not modified).
	PatchedContent []byte

	// Diff describes the applied change (nil when nothing changed).
	Diff *diff.Diff

	// Skipped is true if the target was skipped (e.g. ignored by
	// configuration or modified during processing).
	Skipped bool

	// SkipReason explains why the target was skipped.
	SkipReason string

	// BackupCreated is true if a backup was created for this file.
	BackupCreated bool

	// Written is true if the file was written to disk.
	Written bool

	// Created is true if the target file was newly created.
	Created bool

	// Deleted is true if the target file was removed.
	Deleted bool

	// HunksApplied is the number of hunks applied to the target.
	HunksApplied int

	// FuzzyFallback is true if strict application failed and the
	// content-anchored matcher succeeded.
	FuzzyFallback bool
}

// Summary returns a human-readable summary of the pipeline result.
func (pr *PipelineResult) Summary() string {
	switch {
	case pr.Skipped:
		return "skipped: " + pr.SkipReason
	case pr.Deleted:
		return "deleted"
	case pr.Created:
		return "created"
	case pr.Written:
		if pr.FuzzyFallback {
			return "patched (fuzzy)"
		}
		return "patched"
	case pr.Modified:
		return "changes pending"
	default:
		return "unchanged"
	}
}

// PipelineOptions controls safety pipeline behavior.
type PipelineOptions struct {
	// Strategy selects the hunk matching strategy.
	Strategy config.Strategy

	// DryRun computes diffs without writing files.
	DryRun bool

	// Backup configures backup behavior.
	Backup fsutil.BackupConfig

	// IgnoreGlobs are patterns for target paths to skip.
	IgnoreGlobs []string

	// StrictRaceDetection uses hash comparison for modification detection.
	// When false, only mod time and size are checked.
	StrictRaceDetection bool
}

// DefaultPipelineOptions returns sensible defaults.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Strategy:            config.StrategyAuto,
		DryRun:              false,
		Backup:              fsutil.DefaultBackupConfig(),
		StrictRaceDetection: true,
	}
}

// Pipeline orchestrates the safe application of a single patch.
type Pipeline struct{}

// NewPipeline creates a new safety pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// ProcessPatch runs the full safety pipeline for a single patch.
//
// The pipeline performs the following steps:
//  1. Check the target against the ignore patterns.
//  2. Read and hash the target file (or start empty for creations).
//  3. Refuse binary targets.
//  4. Apply the patch using the configured strategy.
//  5. Compute the resulting diff.
//  6. Check for concurrent modifications (skip dry-run).
//  7. Create backup (if enabled).
//  8. Write the patched content atomically, or remove the target for
//     file-deletion patches.
func (p *Pipeline) ProcessPatch(
	ctx context.Context,
	path string,
	pt *patch.Patch,
	opts PipelineOptions,
) (*PipelineResult, error) {
	result := &PipelineResult{
		Path: path,
	}

	// Step 1: Ignore patterns.
	if matchesAnyGlob(pt.TargetPath(), opts.IgnoreGlobs) {
		result.Skipped = true
		result.SkipReason = "ignored by configuration"
		return result, nil
	}

	// Step 2: Read the original content.
	var originalContent []byte
	var info *fsutil.FileInfo

	if pt.IsCreate() {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrTargetExists, path)
		}
	} else {
		var err error
		originalContent, info, err = fsutil.ReadFile(ctx, path)
		if err != nil {
			return nil, categorizeError(err)
		}
		result.OriginalInfo = info

		// Step 3: Binary check.
		if enry.IsBinary(originalContent) {
			return nil, fmt.Errorf("%w: %s", ErrBinaryFile, path)
		}
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("processing cancelled: %w", ctx.Err())
	default:
	}

	// Step 4: Apply the patch.
	patched, fuzzy, err := applyWithStrategy(pt, string(originalContent), opts.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApplyFailure, err)
	}
	result.FuzzyFallback = fuzzy
	result.HunksApplied = len(pt.Hunks)
	result.Created = pt.IsCreate()

	if patched == string(originalContent) && !pt.IsCreate() && !pt.IsDelete() {
		return result, nil
	}

	result.Modified = true
	result.PatchedContent = []byte(patched)

	// Step 5: Diff for reporting.
	result.Diff = diff.Compute(pt.TargetPath(), string(originalContent), patched)

	// Step 6: Dry-run stops before any writes.
	if opts.DryRun {
		return result, nil
	}

	// Step 7: Check for concurrent modifications before writing.
	if info != nil {
		modified, err := p.checkModified(ctx, info, opts.StrictRaceDetection)
		if err != nil {
			return nil, err
		}
		if modified {
			result.Skipped = true
			result.SkipReason = "file modified during processing"
			return result, nil
		}
	}

	// Step 8: Create backup if enabled.
	if opts.Backup.Enabled && info != nil {
		created, err := fsutil.CreateBackup(ctx, path, opts.Backup)
		if err != nil {
			return nil, fmt.Errorf("create backup: %w", err)
		}
		result.BackupCreated = created
	}

	// Step 9: Write or remove the target.
	if pt.IsDelete() {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
		}
		result.Deleted = true
		result.Written = true
		return result, nil
	}

	mode := fsutil.DefaultFileMode
	if info != nil {
		mode = info.Mode
	}
	if err := fsutil.WriteAtomic(ctx, path, []byte(patched), mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true

	return result, nil
}

// applyWithStrategy applies a patch using the given strategy. The second
// return value reports whether a fuzzy fallback was used.
func applyWithStrategy(pt *patch.Patch, content string, strategy config.Strategy) (string, bool, error) {
	switch strategy {
	case config.StrategyStrict:
		out, err := apply.Apply(pt, content)
		return out, false, err

	case config.StrategyFuzzy:
		out, err := apply.FindReplace(pt, content)
		return out, false, err

	default: // auto
		out, err := apply.Apply(pt, content)
		if err == nil {
			return out, false, nil
		}
		out, ferr := apply.FindReplace(pt, content)
		if ferr != nil {
			// Report the strict error; it carries the line detail.
			return "", false, err
		}
		return out, true, nil
	}
}

// checkModified checks if a file has been modified since it was read.
func (p *Pipeline) checkModified(ctx context.Context, info *fsutil.FileInfo, strict bool) (bool, error) {
	var modified bool
	var err error

	if strict {
		modified, err = fsutil.CheckModified(ctx, info)
	} else {
		modified, err = fsutil.CheckModifiedQuick(ctx, info)
	}

	if err != nil {
		return false, fmt.Errorf("check modified: %w", err)
	}
	return modified, nil
}

// categorizeError wraps an error with the appropriate pipeline error type.
// It uses errors.Is for robust error detection rather than string matching.
func categorizeError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, fsutil.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}

	if errors.Is(err, fsutil.ErrPermissionDenied) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	return err
}

// IsPipelineError checks if an error is a known pipeline error type.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrBinaryFile) ||
		errors.Is(err, ErrTargetExists) ||
		errors.Is(err, ErrApplyFailure) ||
		errors.Is(err, ErrWriteFailure)
}

// BackupConfigFromConfig creates an fsutil.BackupConfig from config.Config.
func BackupConfigFromConfig(cfg *config.Config) fsutil.BackupConfig {
	if cfg == nil {
		return fsutil.DefaultBackupConfig()
	}
	return fsutil.BackupConfig{
		Enabled: cfg.Backups.Enabled && !cfg.NoBackups,
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
}

// PipelineOptionsFromConfig creates PipelineOptions from config.Config.
func PipelineOptionsFromConfig(cfg *config.Config) PipelineOptions {
	if cfg == nil {
		return DefaultPipelineOptions()
	}

	strategy := cfg.Strategy
	if !strategy.IsValid() {
		strategy = config.StrategyAuto
	}

	return PipelineOptions{
		Strategy:            strategy,
		DryRun:              cfg.DryRun,
		Backup:              BackupConfigFromConfig(cfg),
		IgnoreGlobs:         cfg.Ignore,
		StrictRaceDetection: !cfg.QuickRace,
	}
}
