// Package config defines core configuration types for gopatch.
// These types are pure data structures with no dependency on the
// loader or the CLI layer.
package config

// Strategy selects how hunks are matched against target files.
type Strategy string

const (
	// StrategyStrict anchors every hunk at its declared line numbers
	// and fails on any mismatch.
	StrategyStrict Strategy = "strict"

	// StrategyFuzzy locates each hunk by content, searching outward
	// from the declared position.
	StrategyFuzzy Strategy = "fuzzy"

	// StrategyAuto tries strict application first and falls back to
	// fuzzy matching when it fails.
	StrategyAuto Strategy = "auto"
)

// IsValid returns true if the strategy is one of the known values.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyStrict, StrategyFuzzy, StrategyAuto:
		return true
	default:
		return false
	}
}

// OutputFormat specifies the output format for results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatDiff OutputFormat = "diff"
)

// IsValid returns true if the format is one of the known values.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatDiff:
		return true
	default:
		return false
	}
}

// BackupsConfig controls backup behavior when patching files.
type BackupsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Mode    string `mapstructure:"mode" yaml:"mode"` // "sidecar" or "none"
}

// Config is the root configuration structure for gopatch.
type Config struct {
	// Strategy selects the hunk matching strategy.
	Strategy Strategy `mapstructure:"strategy" yaml:"strategy"`

	// Backups configures backup behavior when writing patched files.
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups"`

	// Ignore contains glob patterns for target paths to skip.
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`

	// CLI-level options (not persisted to config files).

	// DryRun reports what would change without writing anything.
	DryRun bool `mapstructure:"-" yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `mapstructure:"-" yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `mapstructure:"-" yaml:"-"`

	// Dir is the directory target paths are resolved against.
	Dir string `mapstructure:"-" yaml:"-"`

	// NoBackups disables backup creation regardless of Backups.Enabled.
	NoBackups bool `mapstructure:"-" yaml:"-"`

	// QuickRace downgrades concurrent-modification detection to mod
	// time and size checks, skipping the content hash comparison.
	QuickRace bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Strategy: StrategyAuto,
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
		Ignore: nil,
		Format: FormatText,
		Dir:    ".",
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}
