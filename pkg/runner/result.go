package runner

// FileOutcome wraps a PipelineResult with the patch's target path.
type FileOutcome struct {
	// Path is the patch target path as declared in the patch headers.
	Path string

	// Result contains the pipeline result for this patch.
	// May be nil if the patch encountered an error during processing.
	Result *PipelineResult

	// Error is set if the patch could not be applied.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// PatchesTotal is the total number of patches processed.
	PatchesTotal int

	// FilesPatched is the number of files successfully modified
	// (including creations and deletions).
	FilesPatched int

	// FilesFailed is the number of patches that could not be applied.
	FilesFailed int

	// FilesSkipped is the number of targets skipped (ignored paths or
	// concurrent modification).
	FilesSkipped int

	// FilesUnchanged is the number of targets whose content the patch
	// left untouched.
	FilesUnchanged int

	// FilesCreated is the number of files newly created.
	FilesCreated int

	// FilesDeleted is the number of files removed.
	FilesDeleted int

	// HunksApplied is the total number of hunks applied across all files.
	HunksApplied int

	// FuzzyFallbacks is the number of patches applied via the
	// content-anchored matcher after strict application failed.
	FuzzyFallbacks int

	// Additions is the total number of lines added across all files.
	Additions int

	// Deletions is the total number of lines removed across all files.
	Deletions int
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed patch, ordered
	// deterministically (patch order in the input).
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasFailures reports whether any patch failed to apply.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesFailed > 0
}

// HasChanges reports whether any file was (or would be) modified.
func (r *Result) HasChanges() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesPatched > 0
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesFailed++
		return
	}

	pr := outcome.Result
	if pr == nil {
		return
	}

	switch {
	case pr.Skipped:
		r.Stats.FilesSkipped++
	case pr.Modified:
		r.Stats.FilesPatched++
	default:
		r.Stats.FilesUnchanged++
	}

	if pr.Created {
		r.Stats.FilesCreated++
	}
	if pr.Deleted {
		r.Stats.FilesDeleted++
	}
	if pr.FuzzyFallback {
		r.Stats.FuzzyFallbacks++
	}

	if pr.Modified && !pr.Skipped {
		r.Stats.HunksApplied += pr.HunksApplied
		if pr.Diff != nil {
			r.Stats.Additions += pr.Diff.Additions
			r.Stats.Deletions += pr.Diff.Deletions
		}
	}
}
