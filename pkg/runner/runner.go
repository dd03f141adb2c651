package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/yaklabco/gopatch/pkg/patch"
)

// Runner orchestrates multi-file patch application using a Pipeline.
type Runner struct {
	// Pipeline handles per-patch processing with safety guarantees.
	Pipeline *Pipeline
}

// New creates a new Runner with the given pipeline.
func New(pipeline *Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// workItem pairs a patch with its position in the input, so results can
// be reassembled in input order.
type workItem struct {
	index int
	patch *patch.Patch
}

// Run applies the given patches concurrently and returns a deterministic
// collection of FileOutcome values and aggregate stats.
//
// The runner:
//   - Resolves each patch target against the working directory
//   - Applies patches concurrently using a worker pool
//   - Aggregates results into a single Result with statistics
//   - Respects context cancellation
func (r *Runner) Run(ctx context.Context, patches []*patch.Patch, opts Options) (*Result, error) {
	result := &Result{
		Files: make([]FileOutcome, 0, len(patches)),
	}
	result.Stats.PatchesTotal = len(patches)

	if len(patches) == 0 {
		return result, nil
	}

	workDir := opts.effectiveWorkingDir()

	// Determine job count.
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	// Don't use more workers than patches.
	if jobs > len(patches) {
		jobs = len(patches)
	}

	pipelineOpts := PipelineOptionsFromConfig(opts.Config)

	workCh := make(chan workItem)
	outCh := make(chan indexedOutcome)

	var wg sync.WaitGroup

	// Start workers.
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, workDir, pipelineOpts)
		}()
	}

	// Feed work in a separate goroutine.
	go func() {
		defer close(workCh)
		for i, pt := range patches {
			select {
			case <-ctx.Done():
				return
			case workCh <- workItem{index: i, patch: pt}:
			}
		}
	}()

	// Close outCh when all workers are done.
	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Collect results. Workers may complete out of order, so outcomes
	// are keyed by input position.
	outcomes := make(map[int]FileOutcome, len(patches))

	for out := range outCh {
		outcomes[out.index] = out.outcome
	}

	// Build result in input order.
	for i := range patches {
		if outcome, ok := outcomes[i]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

type indexedOutcome struct {
	index   int
	outcome FileOutcome
}

// worker applies patches from workCh and sends outcomes to outCh.
func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan workItem,
	outCh chan<- indexedOutcome,
	workDir string,
	opts PipelineOptions,
) {
	for item := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		target := item.patch.TargetPath()
		outcome := FileOutcome{Path: target}

		path := target
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		pr, err := r.Pipeline.ProcessPatch(ctx, path, item.patch, opts)
		if err != nil {
			outcome.Error = err
		} else {
			outcome.Result = pr
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- indexedOutcome{index: item.index, outcome: outcome}:
		}
	}
}
