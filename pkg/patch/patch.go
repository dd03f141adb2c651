// Package patch defines the unified-diff data model and parser.
// A Patch is an ordered sequence of hunks describing context, added,
// and removed lines against a single logical file.
package patch

// LineKind indicates the role of a line within a hunk.
type LineKind int

const (
	// Context is a line present unchanged in both the original and
	// resulting text.
	Context LineKind = iota

	// Add is a line present only in the resulting text.
	Add

	// Remove is a line present only in the original text.
	Remove
)

// String returns the single-character unified-diff prefix for the kind.
func (k LineKind) String() string {
	switch k {
	case Add:
		return "+"
	case Remove:
		return "-"
	default:
		return " "
	}
}

// Line is a single tagged line within a hunk.
type Line struct {
	// Kind is the role of this line (Context, Add, or Remove).
	Kind LineKind

	// Text is the line content without the diff prefix or terminator.
	Text string
}

// Range describes a contiguous span of lines in a file.
type Range struct {
	// Start is the 1-based first line of the span.
	Start int

	// Count is the number of lines covered.
	Count int
}

// File identifies one side of a patch. The appliers treat both fields
// as opaque pass-through context.
type File struct {
	// Path is the file path from the ---/+++ header.
	Path string

	// Meta is the optional tab-separated metadata (typically a
	// timestamp) following the path in the header.
	Meta string
}

// Hunk is one contiguous edit region within a patch.
//
// Invariants assumed by the appliers: the Context/Remove subsequence of
// Lines, read in order, equals the original-text slice the hunk
// targets, and the Context/Add subsequence equals the resulting slice.
type Hunk struct {
	// OldRange locates the hunk in the original file.
	OldRange Range

	// NewRange locates the hunk in the resulting file. It is not
	// consulted during application.
	NewRange Range

	// RangeHint is the free-text label trailing the @@ header, if any.
	RangeHint string

	// Lines holds the hunk body in order.
	Lines []Line
}

// OldLines returns the text of the Context and Remove lines in order:
// the exact block the hunk expects to find in the original text.
func (h *Hunk) OldLines() []string {
	out := make([]string, 0, len(h.Lines))
	for _, l := range h.Lines {
		if l.Kind == Context || l.Kind == Remove {
			out = append(out, l.Text)
		}
	}
	return out
}

// NewLines returns the text of the Context and Add lines in order: the
// block that replaces the old block once the hunk is applied.
func (h *Hunk) NewLines() []string {
	out := make([]string, 0, len(h.Lines))
	for _, l := range h.Lines {
		if l.Kind == Context || l.Kind == Add {
			out = append(out, l.Text)
		}
	}
	return out
}

// Patch is a parsed unified diff for a single logical file.
//
// Hunks are ordered by ascending OldRange.Start and do not overlap in
// the original text. A Patch is immutable once constructed; the
// appliers only read it.
type Patch struct {
	// Old identifies the original file.
	Old File

	// New identifies the resulting file.
	New File

	// Hunks holds the edits in original-file order.
	Hunks []Hunk

	// EndNewline records whether the resulting text ends with a line
	// terminator. A trailing "\ No newline at end of file" marker in
	// the diff clears it.
	EndNewline bool
}

// TargetPath returns the path a patch applies to, preferring the new
// path and falling back to the old one when the new side is /dev/null.
func (p *Patch) TargetPath() string {
	if p.New.Path != "" && p.New.Path != DevNull {
		return p.New.Path
	}
	return p.Old.Path
}

// IsCreate reports whether the patch creates a new file.
func (p *Patch) IsCreate() bool {
	return p.Old.Path == DevNull
}

// IsDelete reports whether the patch deletes the file.
func (p *Patch) IsDelete() bool {
	return p.New.Path == DevNull
}

// Invert returns a new Patch that undoes this one: files and ranges are
// swapped and every Add becomes a Remove and vice versa. Applying the
// inverted patch to patched text yields the original text.
func (p *Patch) Invert() *Patch {
	inv := &Patch{
		Old:        p.New,
		New:        p.Old,
		Hunks:      make([]Hunk, len(p.Hunks)),
		EndNewline: p.EndNewline,
	}
	for i, h := range p.Hunks {
		lines := make([]Line, len(h.Lines))
		for j, l := range h.Lines {
			switch l.Kind {
			case Add:
				lines[j] = Line{Kind: Remove, Text: l.Text}
			case Remove:
				lines[j] = Line{Kind: Add, Text: l.Text}
			default:
				lines[j] = l
			}
		}
		inv.Hunks[i] = Hunk{
			OldRange:  h.NewRange,
			NewRange:  h.OldRange,
			RangeHint: h.RangeHint,
			Lines:     lines,
		}
	}
	return inv
}

// DevNull is the path unified diffs use for an absent file side.
const DevNull = "/dev/null"
