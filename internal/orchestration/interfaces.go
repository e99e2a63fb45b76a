package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/saxpy/internal/metrics"
	"github.com/agbru/saxpy/internal/saxpy"
)

// RunResult encapsulates the outcome of one kernel run.
// It serves as the shared domain type between orchestration and presentation layers.
type RunResult struct {
	// Mode is the accumulation mode used (e.g., "merge").
	Mode saxpy.Accumulation
	// Result holds the final vector and averages. It is nil if an error occurred.
	Result *saxpy.Result
	// Duration is the kernel's elapsed time, or the time until failure.
	Duration time.Duration
	// Memory is the runtime memory growth observed across the run.
	Memory metrics.MemorySnapshot
	// Err contains any error that occurred during the run.
	Err error
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	N          int
	Threads    int
	Iterations int
	Verbose    bool
	Debug      bool
}

// ProgressUpdate is a progress sample for one run.
type ProgressUpdate struct {
	// RunIndex identifies the run within the batch.
	RunIndex int
	// Value is the completed fraction (0.0 to 1.0).
	Value float64
}

// ProgressReporter defines the interface for displaying run progress.
// It decouples the orchestration layer from the presentation layer.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed, then
	// calls wg.Done. It runs in its own goroutine.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numRuns int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numRuns int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numRuns int, out io.Writer) {
	f(wg, progressChan, numRuns, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter defines the interface for presenting run results.
type ResultPresenter interface {
	// PresentComparisonTable displays the per-mode summary table.
	PresentComparisonTable(results []RunResult, out io.Writer)

	// PresentResult displays the final result of one run.
	PresentResult(result RunResult, opts PresentationOptions, out io.Writer)
}

// ErrorHandler handles run errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
