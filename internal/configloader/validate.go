package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gopatch/pkg/config"
	"github.com/yaklabco/gopatch/pkg/fsutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "backups.mode").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// knownBackupModes lists valid backup mode values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownBackupModes = map[fsutil.BackupMode]bool{
	fsutil.BackupModeSidecar: true,
	fsutil.BackupModeNone:    true,
}

// Validate checks a resolved configuration for invalid values.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}

	if cfg == nil {
		result.Errors = append(result.Errors, ValidationError{
			Message: "configuration is nil",
		})
		return result
	}

	if cfg.Strategy != "" && !cfg.Strategy.IsValid() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "strategy",
			Value:   cfg.Strategy,
			Message: fmt.Sprintf("invalid strategy %q; valid values: strict, fuzzy, auto", cfg.Strategy),
		})
	}

	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "format",
			Value:   cfg.Format,
			Message: fmt.Sprintf("invalid format %q; valid values: text, json, diff", cfg.Format),
		})
	}

	if cfg.Backups.Mode != "" && !knownBackupModes[fsutil.BackupMode(cfg.Backups.Mode)] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "backups.mode",
			Value:   cfg.Backups.Mode,
			Message: fmt.Sprintf("invalid backup mode %q; valid values: sidecar, none", cfg.Backups.Mode),
		})
	}

	if cfg.Jobs < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "jobs",
			Value:   cfg.Jobs,
			Message: "jobs must be zero or positive",
		})
	}

	return result
}
