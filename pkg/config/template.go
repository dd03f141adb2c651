package config

// GenerateTemplate creates a commented starter configuration file.
func GenerateTemplate() []byte {
	return []byte(`# gopatch configuration
# See: https://github.com/yaklabco/gopatch

# Hunk matching strategy: strict, fuzzy, or auto.
#   strict - anchor hunks at their declared line numbers, fail on mismatch
#   fuzzy  - locate hunks by content, searching outward from the declared position
#   auto   - strict first, fuzzy fallback
strategy: auto

# Backup configuration. A sidecar copy of each target is written
# before it is modified.
backups:
  enabled: true
  mode: sidecar

# Target paths to skip (glob patterns)
# ignore:
#   - "vendor/**"
#   - "node_modules/**"
`)
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# gopatch configuration
# See: https://github.com/yaklabco/gopatch`
}
