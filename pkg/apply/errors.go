package apply

import (
	"errors"
	"fmt"
)

// ErrHunkNotFound is returned by FindReplace when no window of the
// working text matches a hunk's expected old-content block. There is
// no well-defined position to blame, so it carries none.
var ErrHunkNotFound = errors.New("hunk not found")

// LineOutOfBoundsError reports that application needed to read or
// match a line beyond the end of the input.
type LineOutOfBoundsError struct {
	// Line is the 1-based offending position.
	Line int

	// TotalLines is the input's line count.
	TotalLines int
}

func (e *LineOutOfBoundsError) Error() string {
	return fmt.Sprintf("line %d is out of bounds (file has %d lines)", e.Line, e.TotalLines)
}

// ContextMismatchError reports that a context or removed line did not
// equal the input at its expected position.
type ContextMismatchError struct {
	// Line is the 1-based position of the mismatch.
	Line int

	// Expected is the line text the patch declared.
	Expected string

	// Actual is the line text found in the input.
	Actual string
}

func (e *ContextMismatchError) Error() string {
	return fmt.Sprintf("context mismatch at line %d: expected %q, got %q", e.Line, e.Expected, e.Actual)
}
