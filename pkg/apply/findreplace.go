package apply

import (
	"strings"

	"github.com/yaklabco/gopatch/pkg/patch"
)

// FindReplace applies p to content by searching for each hunk's
// old-content block instead of trusting its declared line numbers.
//
// For every hunk, the Context and Remove lines form the block expected
// to exist in the text and the Context and Add lines form its
// replacement. Every window of the working lines is compared against
// the old block; among matching offsets the one with the smallest
// absolute distance to the hunk's declared start is chosen, the
// earliest offset winning ties. The declared start is taken as a
// 0-based anchor here, preserving the behavior tools downstream
// already depend on.
//
// Hunks are processed in order against a working copy that carries
// earlier hunks' edits, so hunk order is significant. A hunk whose old
// block appears nowhere yields ErrHunkNotFound.
//
// The result joins the working lines with "\n" and applies no
// trailing-terminator adjustment; callers needing exact
// trailing-newline fidelity must post-process.
func FindReplace(p *patch.Patch, content string) (string, error) {
	working := splitLines(content)

	for hi := range p.Hunks {
		h := &p.Hunks[hi]
		oldLines := h.OldLines()
		newLines := h.NewLines()
		target := h.OldRange.Start

		// A pure-insertion hunk has a zero-length old block, which
		// matches everywhere at distance zero. Policy: insert at the
		// anchor, clamped into the working range.
		if len(oldLines) == 0 {
			idx := min(max(target, 0), len(working))
			working = spliceLines(working, idx, idx, newLines)
			continue
		}

		bestIndex := -1
		bestDistance := 0
		for i := 0; i+len(oldLines) <= len(working); i++ {
			if !windowEqual(working[i:i+len(oldLines)], oldLines) {
				continue
			}
			distance := target - i
			if distance < 0 {
				distance = -distance
			}
			if bestIndex < 0 || distance < bestDistance {
				bestIndex = i
				bestDistance = distance
			}
		}
		if bestIndex < 0 {
			return "", ErrHunkNotFound
		}
		working = spliceLines(working, bestIndex, bestIndex+len(oldLines), newLines)
	}

	return strings.Join(working, "\n"), nil
}

// windowEqual reports element-wise equality of two equal-length line
// slices.
func windowEqual(window, block []string) bool {
	for i := range block {
		if window[i] != block[i] {
			return false
		}
	}
	return true
}

// spliceLines replaces lines[start:end] with replacement, returning a
// new slice. The window and replacement may differ in length.
func spliceLines(lines []string, start, end int, replacement []string) []string {
	out := make([]string, 0, len(lines)-(end-start)+len(replacement))
	out = append(out, lines[:start]...)
	out = append(out, replacement...)
	out = append(out, lines[end:]...)
	return out
}
