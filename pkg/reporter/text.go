package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/yaklabco/gopatch/internal/ui/pretty"
	"github.com/yaklabco/gopatch/pkg/runner"
)

// defaultTermWidth is used when the output is not a terminal.
const defaultTermWidth = 80

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
	width  int
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
		width:  terminalWidth(opts.Writer),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Dim.Render("No patches to apply."))
		}
		return 0, nil
	}

	for _, file := range result.Files {
		r.reportFile(file)
	}

	if r.opts.ShowSummary {
		r.writeSummary(result.Stats)
	}

	return result.Stats.FilesFailed, nil
}

// reportFile writes one line per processed patch.
func (r *TextReporter) reportFile(file runner.FileOutcome) {
	path := r.styles.FilePath.Render(r.displayPath(file.Path))

	if file.Error != nil {
		fmt.Fprintf(r.bw, "%s: %s\n",
			path,
			r.styles.Failure.Render(fmt.Sprintf("error: %v", file.Error)),
		)
		return
	}

	pr := file.Result
	if pr == nil {
		return
	}

	switch {
	case pr.Skipped:
		fmt.Fprintf(r.bw, "%s: %s\n", path,
			r.styles.Skipped.Render("skipped: "+pr.SkipReason))

	case !pr.Modified:
		if r.opts.ShowUnchanged {
			fmt.Fprintf(r.bw, "%s: %s\n", path, r.styles.Dim.Render("unchanged"))
		}

	default:
		var verb string
		switch {
		case pr.Deleted:
			verb = "deleted"
		case pr.Created:
			verb = "created"
		case pr.FuzzyFallback:
			verb = "patched (fuzzy)"
		default:
			verb = "patched"
		}
		if r.opts.DryRun {
			verb = "would be " + verb
		}
		line := fmt.Sprintf("%s: %s", path, r.styles.Success.Render(verb))
		if pr.Diff != nil {
			line += r.styles.Detail.Render(
				fmt.Sprintf(" (+%d -%d)", pr.Diff.Additions, pr.Diff.Deletions))
		}
		fmt.Fprintln(r.bw, line)
	}
}

// writeSummary writes the aggregate line, preceded by a separator rule.
func (r *TextReporter) writeSummary(stats runner.Stats) {
	width := r.width
	if width > defaultTermWidth {
		width = defaultTermWidth
	}
	fmt.Fprintln(r.bw, r.styles.Dim.Render(strings.Repeat("─", width)))

	var parts []string
	parts = append(parts, fmt.Sprintf("%d patched", stats.FilesPatched))
	if stats.FilesFailed > 0 {
		parts = append(parts, r.styles.Failure.Render(fmt.Sprintf("%d failed", stats.FilesFailed)))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, r.styles.Skipped.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesUnchanged > 0 {
		parts = append(parts, fmt.Sprintf("%d unchanged", stats.FilesUnchanged))
	}
	if stats.FuzzyFallbacks > 0 {
		parts = append(parts, fmt.Sprintf("%d fuzzy", stats.FuzzyFallbacks))
	}

	line := fmt.Sprintf("%s %s",
		r.styles.SummaryTitle.Render(fmt.Sprintf("%d patches:", stats.PatchesTotal)),
		strings.Join(parts, ", "))

	if stats.HunksApplied > 0 {
		line += r.styles.Detail.Render(fmt.Sprintf(" | %d hunks, +%d -%d",
			stats.HunksApplied, stats.Additions, stats.Deletions))
	}

	fmt.Fprintln(r.bw, line)
}

// displayPath makes an absolute path relative to the working directory
// when that produces a shorter, local path.
func (r *TextReporter) displayPath(path string) string {
	if r.opts.WorkingDir == "" {
		return path
	}
	rel, err := filepath.Rel(r.opts.WorkingDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// terminalWidth attempts to get the terminal width from the writer.
func terminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
