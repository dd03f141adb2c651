package patch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseError describes a malformed unified diff.
type ParseError struct {
	// Line is the 1-based line in the diff text where parsing failed.
	Line int

	// Message explains what was expected.
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse patch: line %d: %s", e.Line, e.Message)
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// hunkHeaderRegex matches "@@ -start[,count] +start[,count] @@ hint".
var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(.*)$`)

// noNewlineMarker is the unified-diff marker for a missing trailing
// terminator on the preceding line.
const noNewlineMarker = `\ No newline at end of file`

// Parse parses a single-file unified diff. It returns an error if the
// text contains headers for more than one file.
func Parse(text string) (*Patch, error) {
	patches, err := ParseMultiple(text)
	if err != nil {
		return nil, err
	}
	if len(patches) != 1 {
		return nil, parseErrorf(1, "expected a single file diff, found %d", len(patches))
	}
	return &patches[0], nil
}

// ParseMultiple parses a concatenation of unified diffs, one Patch per
// file. Lines outside any recognized structure (git headers, index
// lines, commit messages) are skipped.
func ParseMultiple(text string) ([]Patch, error) {
	lines := strings.Split(text, "\n")

	var patches []Patch
	var cur *Patch
	var hunk *Hunk

	// Remaining lines the current hunk's header promised. Body lines
	// are only consumed while a hunk is open; this keeps stray +/-
	// lines in surrounding prose from being misread as edits.
	oldLeft, newLeft := 0, 0

	flushHunk := func() {
		if cur != nil && hunk != nil {
			cur.Hunks = append(cur.Hunks, *hunk)
		}
		hunk = nil
	}
	flushFile := func() {
		flushHunk()
		if cur != nil {
			patches = append(patches, *cur)
		}
		cur = nil
	}

	for i, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		lineno := i + 1

		switch {
		case strings.HasPrefix(line, "--- "):
			// A new old-file header may also terminate the previous
			// file. Inside an open hunk a leading "---" is ambiguous
			// with a removal; the body counters disambiguate.
			if hunk != nil && oldLeft > 0 {
				hunk.Lines = append(hunk.Lines, Line{Kind: Remove, Text: line[1:]})
				oldLeft--
				continue
			}
			flushFile()
			path, meta := splitHeaderPath(strings.TrimPrefix(line, "--- "))
			cur = &Patch{Old: File{Path: path, Meta: meta}, EndNewline: true}

		case strings.HasPrefix(line, "+++ "):
			if hunk != nil && newLeft > 0 {
				hunk.Lines = append(hunk.Lines, Line{Kind: Add, Text: line[1:]})
				newLeft--
				continue
			}
			if cur == nil {
				return nil, parseErrorf(lineno, "+++ header without preceding --- header")
			}
			path, meta := splitHeaderPath(strings.TrimPrefix(line, "+++ "))
			cur.New = File{Path: path, Meta: meta}

		case strings.HasPrefix(line, "@@ "):
			if cur == nil {
				return nil, parseErrorf(lineno, "hunk header before file headers")
			}
			flushHunk()
			h, err := parseHunkHeader(line, lineno)
			if err != nil {
				return nil, err
			}
			hunk = h
			oldLeft = h.OldRange.Count
			newLeft = h.NewRange.Count

		case line == noNewlineMarker:
			if cur != nil {
				cur.EndNewline = false
			}

		case hunk != nil && (oldLeft > 0 || newLeft > 0):
			kind, text, err := parseBodyLine(line, lineno)
			if err != nil {
				return nil, err
			}
			switch kind {
			case Context:
				oldLeft--
				newLeft--
			case Remove:
				oldLeft--
			case Add:
				newLeft--
			}
			hunk.Lines = append(hunk.Lines, Line{Kind: kind, Text: text})

		default:
			// Outside hunk bodies: git metadata, index lines, and
			// surrounding prose are ignored.
		}
	}
	flushFile()

	if len(patches) == 0 {
		return nil, parseErrorf(1, "no file headers found")
	}
	return patches, nil
}

// parseHunkHeader parses "@@ -s,c +s,c @@ hint" into an empty hunk.
func parseHunkHeader(line string, lineno int) (*Hunk, error) {
	m := hunkHeaderRegex.FindStringSubmatch(line)
	if m == nil {
		return nil, parseErrorf(lineno, "malformed hunk header %q", line)
	}

	oldStart, _ := strconv.Atoi(m[1])
	newStart, _ := strconv.Atoi(m[3])
	oldCount, newCount := 1, 1
	if m[2] != "" {
		oldCount, _ = strconv.Atoi(m[2])
	}
	if m[4] != "" {
		newCount, _ = strconv.Atoi(m[4])
	}

	return &Hunk{
		OldRange:  Range{Start: oldStart, Count: oldCount},
		NewRange:  Range{Start: newStart, Count: newCount},
		RangeHint: strings.TrimSpace(m[5]),
	}, nil
}

// parseBodyLine classifies a hunk body line by its prefix. A fully
// empty line counts as an empty context line; some tools emit those
// instead of a single space.
func parseBodyLine(line string, lineno int) (LineKind, string, error) {
	if line == "" {
		return Context, "", nil
	}
	switch line[0] {
	case ' ':
		return Context, line[1:], nil
	case '+':
		return Add, line[1:], nil
	case '-':
		return Remove, line[1:], nil
	default:
		return Context, "", parseErrorf(lineno, "unexpected hunk body line %q", line)
	}
}

// splitHeaderPath splits a ---/+++ header remainder into path and
// optional tab-separated metadata, stripping git's a/ and b/ prefixes.
func splitHeaderPath(s string) (path, meta string) {
	path = s
	if idx := strings.IndexByte(s, '\t'); idx >= 0 {
		path, meta = s[:idx], s[idx+1:]
	}
	path = strings.TrimSpace(path)
	if path != DevNull {
		if rest, ok := strings.CutPrefix(path, "a/"); ok {
			path = rest
		} else if rest, ok := strings.CutPrefix(path, "b/"); ok {
			path = rest
		}
	}
	return path, meta
}
