// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPatch      = "patch"
	FieldTarget     = "target"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldStrategy = "strategy"
	FieldDryRun   = "dry_run"
	FieldJobs     = "jobs"
	FieldFormat   = "format"

	// Statistics fields.
	FieldFilesTotal    = "files_total"
	FieldFilesPatched  = "files_patched"
	FieldFilesFailed   = "files_failed"
	FieldFilesSkipped  = "files_skipped"
	FieldHunksApplied  = "hunks_applied"
	FieldFuzzyMatches  = "fuzzy_matches"
	FieldBackupCreated = "backup_created"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
