package runner

import (
	"path/filepath"
	"strings"
)

// matchesAnyGlob reports whether the target path matches any of the
// ignore patterns.
func matchesAnyGlob(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchGlob(path, pattern) {
			return true
		}
	}
	return false
}

// matchGlob matches a path against a glob pattern.
// It supports patterns like "*.go", "docs/**", "vendor/**", etc.
func matchGlob(path, pattern string) bool {
	// Normalize path separators for matching.
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	// Handle ** patterns for recursive matching.
	if strings.Contains(pattern, "**") {
		return matchDoubleStarPattern(path, pattern)
	}

	// Standard filepath.Match for simple patterns.
	matched, matchErr := filepath.Match(pattern, path)
	if matchErr != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try matching against just the filename.
	matched, matchErr = filepath.Match(pattern, filepath.Base(path))
	if matchErr != nil {
		return false
	}
	return matched
}

// matchDoubleStarPattern handles ** glob patterns.
func matchDoubleStarPattern(path, pattern string) bool {
	parts := strings.Split(pattern, "**")

	if len(parts) == 1 {
		// No ** found, shouldn't happen but handle gracefully.
		matched, matchErr := filepath.Match(pattern, path)
		if matchErr != nil {
			return false
		}
		return matched
	}

	// Handle common patterns:
	// "**/foo" - matches foo anywhere
	// "foo/**" - matches anything under foo
	// "**/foo/**" - matches foo directory anywhere

	if parts[0] == "" && len(parts) == 2 {
		// Pattern starts with **/, e.g., "**/vendor"
		suffix := strings.TrimPrefix(parts[1], "/")
		if suffix == "" {
			// Just "**" matches everything.
			return true
		}

		if strings.HasSuffix(path, suffix) {
			return true
		}

		// Check if any path component matches.
		pathParts := strings.Split(path, "/")
		for _, part := range pathParts {
			matched, matchErr := filepath.Match(suffix, part)
			if matchErr == nil && matched {
				return true
			}
		}

		// Check if suffix matches a subpath.
		return strings.Contains(path, suffix)
	}

	if parts[1] == "" || parts[1] == "/" {
		// Pattern ends with /**, e.g., "vendor/**"
		prefix := strings.TrimSuffix(parts[0], "/")
		if prefix == "" {
			return true
		}
		return strings.HasPrefix(path, prefix+"/") || path == prefix
	}

	// Complex pattern with ** in the middle.
	// Simplified: check if prefix matches start and suffix matches end.
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix != "" && !strings.HasPrefix(path, prefix) {
		return false
	}

	if suffix != "" && !strings.HasSuffix(path, suffix) {
		matched, matchErr := filepath.Match(suffix, filepath.Base(path))
		if matchErr != nil || !matched {
			return false
		}
	}

	return true
}
