// Package apply applies parsed unified-diff patches to text.
//
// Two strategies are provided. Apply trusts each hunk's declared line
// numbers and verifies every context and removed line at its exact
// position, failing fast on any drift. FindReplace ignores declared
// positions except as an anchor and instead searches the text for each
// hunk's old-content block, picking the occurrence nearest the anchor.
//
// Both functions are pure: they read the patch and input, never mutate
// either, and return a freshly built string. Errors abort the whole
// call; there is no partial application.
package apply

import (
	"strings"

	"github.com/yaklabco/gopatch/pkg/patch"
)

// Apply applies p to content strictly at each hunk's declared line
// position.
//
// The input is walked in lockstep with the hunks: lines before a hunk
// are copied verbatim, then every Context and Remove line is checked
// for exact equality against the input at its declared position.
// Context lines are copied through, Add lines are emitted without
// consuming input, and Remove lines consume input without emitting.
//
// The result joins lines with "\n" and, when non-empty and
// p.EndNewline is set, gains a trailing terminator. A mismatch yields
// a *ContextMismatchError; reading past the end of the input yields a
// *LineOutOfBoundsError.
func Apply(p *patch.Patch, content string) (string, error) {
	lines := splitLines(content)
	result := make([]string, 0, len(lines))
	current := 0

	for hi := range p.Hunks {
		h := &p.Hunks[hi]

		// Convert the 1-based start to a 0-based index; a declared
		// start of 0 is treated the same as 1.
		start := h.OldRange.Start - 1
		if h.OldRange.Start <= 0 {
			start = 0
		}

		// Copy unchanged lines before the hunk.
		for current < start {
			if current >= len(lines) {
				return "", &LineOutOfBoundsError{Line: current + 1, TotalLines: len(lines)}
			}
			result = append(result, lines[current])
			current++
		}

		hunkOldLine := current
		for _, l := range h.Lines {
			switch l.Kind {
			case patch.Context:
				if hunkOldLine >= len(lines) {
					return "", &LineOutOfBoundsError{Line: hunkOldLine + 1, TotalLines: len(lines)}
				}
				if lines[hunkOldLine] != l.Text {
					return "", &ContextMismatchError{
						Line:     hunkOldLine + 1,
						Expected: l.Text,
						Actual:   lines[hunkOldLine],
					}
				}
				result = append(result, l.Text)
				hunkOldLine++

			case patch.Add:
				result = append(result, l.Text)

			case patch.Remove:
				if hunkOldLine >= len(lines) {
					return "", &LineOutOfBoundsError{Line: hunkOldLine + 1, TotalLines: len(lines)}
				}
				if lines[hunkOldLine] != l.Text {
					return "", &ContextMismatchError{
						Line:     hunkOldLine + 1,
						Expected: l.Text,
						Actual:   lines[hunkOldLine],
					}
				}
				hunkOldLine++
			}
		}
		current = hunkOldLine
	}

	// Copy any remaining lines after the last hunk.
	result = append(result, lines[current:]...)

	out := strings.Join(result, "\n")
	if out != "" && p.EndNewline {
		out += "\n"
	}
	return out, nil
}

// splitLines splits content into lines. A trailing terminator does not
// produce a trailing empty element, so "" and "a\n" yield 0 and 1
// lines respectively.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
