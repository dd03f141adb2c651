package configloader

import "github.com/yaklabco/gopatch/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	// Start with a shallow copy of base
	result := *base

	// Scalars: override overwrites base if set (non-zero value)
	if override.Strategy != "" {
		result.Strategy = override.Strategy
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Dir != "" {
		result.Dir = override.Dir
	}

	// Booleans: false is the zero value, so only true propagates.
	// CLI --dry-run can set it, a config file cannot unset it.
	if override.DryRun {
		result.DryRun = override.DryRun
	}
	if override.NoBackups {
		result.NoBackups = override.NoBackups
	}
	if override.QuickRace {
		result.QuickRace = override.QuickRace
	}

	// Backups: merge individual fields
	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	// Enabled can only be detected when true; the NoBackups CLI flag
	// exists for the opposite direction.
	if override.Backups.Enabled {
		result.Backups.Enabled = override.Backups.Enabled
	}

	// Slices: override replaces base entirely if non-nil
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	return &result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
