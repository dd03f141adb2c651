package apply_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/gopatch/pkg/apply"
	"github.com/yaklabco/gopatch/pkg/patch"
)

// singleHunk builds a one-hunk patch for tests that don't care about
// header metadata.
func singleHunk(oldStart, oldCount int, endNewline bool, lines ...patch.Line) *patch.Patch {
	return &patch.Patch{
		EndNewline: endNewline,
		Hunks: []patch.Hunk{{
			OldRange: patch.Range{Start: oldStart, Count: oldCount},
			NewRange: patch.Range{Start: oldStart, Count: oldCount},
			Lines:    lines,
		}},
	}
}

func ctx(text string) patch.Line { return patch.Line{Kind: patch.Context, Text: text} }
func add(text string) patch.Line { return patch.Line{Kind: patch.Add, Text: text} }
func rem(text string) patch.Line { return patch.Line{Kind: patch.Remove, Text: text} }

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		patch   *patch.Patch
		want    string
	}{
		{
			name:    "replace single line",
			content: "line 1\nline 2\nline 3\n",
			patch: singleHunk(1, 3, true,
				ctx("line 1"),
				rem("line 2"),
				add("new line 2"),
				ctx("line 3"),
			),
			want: "line 1\nnew line 2\nline 3\n",
		},
		{
			name:    "interleaved additions",
			content: "A\nB\nC\n",
			patch: singleHunk(1, 3, true,
				ctx("A"),
				add("X"),
				ctx("B"),
				add("Y"),
				ctx("C"),
			),
			want: "A\nX\nB\nY\nC\n",
		},
		{
			name:    "removals with surrounding context",
			content: "A\nB\nC\nD\n",
			patch: singleHunk(1, 4, true,
				ctx("A"),
				rem("B"),
				rem("C"),
				ctx("D"),
			),
			want: "A\nD\n",
		},
		{
			name:    "hunk in the middle copies surrounding text",
			content: "a\nb\nc\nd\ne\n",
			patch: singleHunk(3, 1, true,
				rem("c"),
				add("C"),
			),
			want: "a\nb\nC\nd\ne\n",
		},
		{
			name:    "zero hunks returns input unchanged",
			content: "a\nb\n",
			patch:   &patch.Patch{EndNewline: true},
			want:    "a\nb\n",
		},
		{
			name:    "zero hunks without end newline drops terminator",
			content: "a\nb\n",
			patch:   &patch.Patch{EndNewline: false},
			want:    "a\nb",
		},
		{
			name:    "start zero treated as start one",
			content: "x\ny\n",
			patch: singleHunk(0, 1, true,
				rem("x"),
				add("z"),
			),
			want: "z\ny\n",
		},
		{
			name:    "empty hunk is a no-op splice",
			content: "a\nb\n",
			patch:   singleHunk(2, 0, true),
			want:    "a\nb\n",
		},
		{
			name:    "pure insertion hunk",
			content: "a\nb\n",
			patch: singleHunk(2, 0, true,
				add("between"),
			),
			want: "a\nbetween\nb\n",
		},
		{
			name:    "empty input with addition",
			content: "",
			patch: singleHunk(1, 0, true,
				add("first"),
			),
			want: "first\n",
		},
		{
			name:    "delete everything yields empty output despite end newline",
			content: "only\n",
			patch: singleHunk(1, 1, true,
				rem("only"),
			),
			want: "",
		},
		{
			name:    "multiple hunks in ascending order",
			content: "1\n2\n3\n4\n5\n6\n",
			patch: &patch.Patch{
				EndNewline: true,
				Hunks: []patch.Hunk{
					{
						OldRange: patch.Range{Start: 2, Count: 1},
						Lines:    []patch.Line{rem("2"), add("two")},
					},
					{
						OldRange: patch.Range{Start: 5, Count: 1},
						Lines:    []patch.Line{rem("5"), add("five")},
					},
				},
			},
			want: "1\ntwo\n3\n4\nfive\n6\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := apply.Apply(tt.patch, tt.content)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApply_LineOutOfBounds(t *testing.T) {
	t.Parallel()

	// Two context lines match, then a removal targets a line past the
	// end of the two-line input.
	p := singleHunk(1, 3, true,
		ctx("A"),
		ctx("B"),
		rem("C"),
		add("D"),
	)

	_, err := apply.Apply(p, "A\nB\n")
	if err == nil {
		t.Fatal("Apply() succeeded, want LineOutOfBoundsError")
	}

	var oob *apply.LineOutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("Apply() error = %T, want *LineOutOfBoundsError", err)
	}
	if oob.Line != 3 {
		t.Errorf("Line = %d, want 3", oob.Line)
	}
	if oob.TotalLines != 2 {
		t.Errorf("TotalLines = %d, want 2", oob.TotalLines)
	}
}

func TestApply_LineOutOfBoundsBeforeHunk(t *testing.T) {
	t.Parallel()

	// The hunk start lies beyond the input, so the verbatim copy loop
	// runs out of lines before the hunk body is reached.
	p := singleHunk(10, 1, true,
		rem("x"),
		add("y"),
	)

	_, err := apply.Apply(p, "a\nb\n")
	var oob *apply.LineOutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("Apply() error = %v, want *LineOutOfBoundsError", err)
	}
	if oob.Line != 3 || oob.TotalLines != 2 {
		t.Errorf("got line %d of %d, want line 3 of 2", oob.Line, oob.TotalLines)
	}
}

func TestApply_ContextMismatch(t *testing.T) {
	t.Parallel()

	p := singleHunk(1, 3, true,
		ctx("A"),
		rem("X"),
		add("Y"),
		ctx("C"),
	)

	_, err := apply.Apply(p, "A\nB\nC\n")
	if err == nil {
		t.Fatal("Apply() succeeded, want ContextMismatchError")
	}

	var mismatch *apply.ContextMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Apply() error = %T, want *ContextMismatchError", err)
	}
	if mismatch.Line != 2 {
		t.Errorf("Line = %d, want 2", mismatch.Line)
	}
	if mismatch.Expected != "X" {
		t.Errorf("Expected = %q, want %q", mismatch.Expected, "X")
	}
	if mismatch.Actual != "B" {
		t.Errorf("Actual = %q, want %q", mismatch.Actual, "B")
	}
}

func TestApply_ContextMismatchOnContextLine(t *testing.T) {
	t.Parallel()

	p := singleHunk(1, 2, true,
		ctx("not here"),
		rem("b"),
	)

	_, err := apply.Apply(p, "a\nb\n")
	var mismatch *apply.ContextMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Apply() error = %v, want *ContextMismatchError", err)
	}
	if mismatch.Line != 1 || mismatch.Actual != "a" {
		t.Errorf("got line %d actual %q, want line 1 actual %q", mismatch.Line, mismatch.Actual, "a")
	}
}

func TestApply_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	p := singleHunk(1, 1, true,
		rem("a"),
		add("z"),
	)
	wantLines := len(p.Hunks[0].Lines)

	content := "a\nb\n"
	if _, err := apply.Apply(p, content); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if content != "a\nb\n" {
		t.Error("Apply modified input content")
	}
	if len(p.Hunks[0].Lines) != wantLines {
		t.Error("Apply modified the patch")
	}
}

func TestApply_FromParsedPatch(t *testing.T) {
	t.Parallel()

	patchText := `--- old.txt
+++ new.txt
@@ -1,3 +1,3 @@
 line 1
-line 2
+new line 2
 line 3
`
	p, err := patch.Parse(patchText)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got, err := apply.Apply(p, "line 1\nline 2\nline 3\n")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if want := "line 1\nnew line 2\nline 3\n"; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
}

func TestApply_InvertRoundTrip(t *testing.T) {
	t.Parallel()

	p, err := patch.Parse(`--- a/f.txt
+++ b/f.txt
@@ -1,4 +1,4 @@
 alpha
-beta
+bravo
+charlie
-gamma
 delta
`)
	if err != nil {
		t.Fatal(err)
	}

	original := "alpha\nbeta\ngamma\ndelta\n"

	patched, err := apply.Apply(p, original)
	if err != nil {
		t.Fatal(err)
	}
	if patched != "alpha\nbravo\ncharlie\ndelta\n" {
		t.Fatalf("unexpected patched content: %q", patched)
	}

	restored, err := apply.Apply(p.Invert(), patched)
	if err != nil {
		t.Fatal(err)
	}
	if restored != original {
		t.Errorf("inverted patch did not restore original: %q", restored)
	}
}
