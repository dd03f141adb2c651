// Package diff computes unified diffs between two versions of a text.
// The runner uses it to show what an applied patch changed; the
// appliers themselves never call it.
package diff

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gopatch/pkg/patch"
)

// contextSize is the number of context lines kept around changes.
const contextSize = 3

// Diff is a computed unified diff between original and modified
// content, expressed with the same hunk model the appliers consume.
type Diff struct {
	// Path is the file path for the diff header.
	Path string

	// Hunks contains the computed hunks in file order.
	Hunks []patch.Hunk

	// Additions is the number of lines added.
	Additions int

	// Deletions is the number of lines removed.
	Deletions int

	// EndNewline records whether the modified content ends with a
	// line terminator.
	EndNewline bool
}

// Compute builds a unified diff between original and modified content.
// Returns nil when the contents are line-identical.
func Compute(path, original, modified string) *Diff {
	oldLines := splitLines(original)
	newLines := splitLines(modified)

	if linesEqual(oldLines, newLines) {
		return nil
	}

	hunks := computeHunks(oldLines, newLines)
	if len(hunks) == 0 {
		return nil
	}

	var additions, deletions int
	for _, h := range hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case patch.Add:
				additions++
			case patch.Remove:
				deletions++
			}
		}
	}

	return &Diff{
		Path:       path,
		Hunks:      hunks,
		Additions:  additions,
		Deletions:  deletions,
		EndNewline: modified == "" || strings.HasSuffix(modified, "\n"),
	}
}

// HasChanges reports whether the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// ToPatch converts the diff into an applyable Patch for path.
func (d *Diff) ToPatch() *patch.Patch {
	if d == nil {
		return nil
	}
	return &patch.Patch{
		Old:        patch.File{Path: d.Path},
		New:        patch.File{Path: d.Path},
		Hunks:      d.Hunks,
		EndNewline: d.EndNewline,
	}
}

// String renders the diff in unified format with ---/+++ headers.
func (d *Diff) String() string {
	if d == nil || len(d.Hunks) == 0 {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", path)
	fmt.Fprintf(&b, "+++ b/%s\n", path)

	for _, h := range d.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
			h.OldRange.Start, h.OldRange.Count,
			h.NewRange.Start, h.NewRange.Count)
		for _, l := range h.Lines {
			b.WriteString(l.Kind.String())
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// splitLines splits content into lines, dropping the element a
// trailing terminator would otherwise produce.
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

// linesEqual compares two line slices for equality.
func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// lineOp is a single diff operation before hunk grouping.
type lineOp struct {
	kind patch.LineKind
	text string
}

// computeHunks builds context-trimmed hunks from an LCS-based line
// diff of the two sides.
func computeHunks(oldLines, newLines []string) []patch.Hunk {
	lcs := longestCommonSubsequence(oldLines, newLines)
	ops := buildOps(oldLines, newLines, lcs)
	if len(ops) == 0 {
		return nil
	}
	return groupIntoHunks(ops)
}

// buildOps walks both sides against the LCS, emitting context lines
// where both match the subsequence and add/remove lines elsewhere.
func buildOps(oldLines, newLines, lcs []string) []lineOp {
	var ops []lineOp
	oldIdx, newIdx, lcsIdx := 0, 0, 0

	for oldIdx < len(oldLines) || newIdx < len(newLines) {
		if lcsIdx < len(lcs) &&
			oldIdx < len(oldLines) && newIdx < len(newLines) &&
			oldLines[oldIdx] == lcs[lcsIdx] && newLines[newIdx] == lcs[lcsIdx] {
			ops = append(ops, lineOp{kind: patch.Context, text: oldLines[oldIdx]})
			oldIdx++
			newIdx++
			lcsIdx++
			continue
		}

		for oldIdx < len(oldLines) && (lcsIdx >= len(lcs) || oldLines[oldIdx] != lcs[lcsIdx]) {
			ops = append(ops, lineOp{kind: patch.Remove, text: oldLines[oldIdx]})
			oldIdx++
		}

		for newIdx < len(newLines) && (lcsIdx >= len(lcs) || newLines[newIdx] != lcs[lcsIdx]) {
			ops = append(ops, lineOp{kind: patch.Add, text: newLines[newIdx]})
			newIdx++
		}
	}

	return ops
}

// groupIntoHunks merges nearby change ranges and trims context to
// contextSize lines on each side.
func groupIntoHunks(ops []lineOp) []patch.Hunk {
	type changeRange struct {
		start, end int
	}

	var ranges []changeRange
	inChange := false
	rangeStart := 0

	for i, op := range ops {
		isChange := op.kind != patch.Context
		if isChange && !inChange {
			rangeStart = i
			inChange = true
		} else if !isChange && inChange {
			ranges = append(ranges, changeRange{rangeStart, i})
			inChange = false
		}
	}
	if inChange {
		ranges = append(ranges, changeRange{rangeStart, len(ops)})
	}
	if len(ranges) == 0 {
		return nil
	}

	var hunks []patch.Hunk
	for ri := 0; ri < len(ranges); {
		mergeEnd := ri + 1
		for mergeEnd < len(ranges) {
			gap := ranges[mergeEnd].start - ranges[mergeEnd-1].end
			if gap > contextSize*2 {
				break
			}
			mergeEnd++
		}

		hunk := buildHunk(ops, ranges[ri].start, ranges[mergeEnd-1].end)
		if len(hunk.Lines) > 0 {
			hunks = append(hunks, hunk)
		}
		ri = mergeEnd
	}

	return hunks
}

// buildHunk expands a change range by contextSize lines and computes
// the hunk's old/new ranges.
func buildHunk(ops []lineOp, changeStart, changeEnd int) patch.Hunk {
	start := changeStart - contextSize
	if start < 0 {
		start = 0
	}
	end := changeEnd + contextSize
	if end > len(ops) {
		end = len(ops)
	}

	oldStart, newStart := 1, 1
	for i := range start {
		if ops[i].kind != patch.Add {
			oldStart++
		}
		if ops[i].kind != patch.Remove {
			newStart++
		}
	}

	hunk := patch.Hunk{
		OldRange: patch.Range{Start: oldStart},
		NewRange: patch.Range{Start: newStart},
	}

	for i := start; i < end; i++ {
		op := ops[i]
		hunk.Lines = append(hunk.Lines, patch.Line{Kind: op.kind, Text: op.text})
		switch op.kind {
		case patch.Context:
			hunk.OldRange.Count++
			hunk.NewRange.Count++
		case patch.Remove:
			hunk.OldRange.Count++
		case patch.Add:
			hunk.NewRange.Count++
		}
	}

	return hunk
}

// longestCommonSubsequence computes the LCS of two line slices with a
// standard dynamic-programming table.
func longestCommonSubsequence(oldLines, newLines []string) []string {
	oldLen, newLen := len(oldLines), len(newLines)
	if oldLen == 0 || newLen == 0 {
		return nil
	}

	dp := make([][]int, oldLen+1)
	for i := range dp {
		dp[i] = make([]int, newLen+1)
	}

	for row := 1; row <= oldLen; row++ {
		for col := 1; col <= newLen; col++ {
			if oldLines[row-1] == newLines[col-1] {
				dp[row][col] = dp[row-1][col-1] + 1
			} else {
				dp[row][col] = max(dp[row-1][col], dp[row][col-1])
			}
		}
	}

	lcsLen := dp[oldLen][newLen]
	if lcsLen == 0 {
		return nil
	}

	lcs := make([]string, lcsLen)
	row, col, idx := oldLen, newLen, lcsLen-1
	for row > 0 && col > 0 {
		switch {
		case oldLines[row-1] == newLines[col-1]:
			lcs[idx] = oldLines[row-1]
			row--
			col--
			idx--
		case dp[row-1][col] > dp[row][col-1]:
			row--
		default:
			col--
		}
	}

	return lcs
}
