package orchestration

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/saxpy/internal/errors"
	"github.com/agbru/saxpy/internal/logging"
	"github.com/agbru/saxpy/internal/memory"
	"github.com/agbru/saxpy/internal/metrics"
	"github.com/agbru/saxpy/internal/saxpy"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces dropped samples when the UI is slow to
// consume updates.
const ProgressBufferMultiplier = 16

// ProgressSampleInterval is how often a running kernel's progress is sampled.
const ProgressSampleInterval = 50 * time.Millisecond

// AverageTolerance is the relative tolerance applied when comparing averages
// produced with different summation orders.
const AverageTolerance = 1e-9

// RunSpec describes a batch of runs sharing the same inputs.
type RunSpec struct {
	N          int
	Seed       uint64
	Threads    int
	Iterations int
	// Modes are run sequentially, each on a fresh workload from Seed.
	Modes []saxpy.Accumulation
	// GCMode is passed to memory.NewGCController for every run.
	GCMode string
	// Logger receives kernel and GC events. Nil means no logging.
	Logger logging.Logger
	// Metrics, when set, records every run.
	Metrics *metrics.KernelMetrics
}

// ExecuteRuns runs the kernel once per mode in spec.Modes and returns one
// result per mode, in the same order. Runs are sequential so that their
// timings do not interfere. Progress samples are sent to reporter while the
// batch runs; ExecuteRuns returns only after the reporter has finished.
func ExecuteRuns(ctx context.Context, spec RunSpec, reporter ProgressReporter, out io.Writer) []RunResult {
	results := make([]RunResult, len(spec.Modes))
	progressChan := make(chan ProgressUpdate, max(1, len(spec.Modes))*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(spec.Modes), out)

	for i, mode := range spec.Modes {
		if err := ctx.Err(); err != nil {
			results[i] = RunResult{Mode: mode, Err: err}
			continue
		}
		results[i] = executeRun(ctx, spec, mode, i, progressChan)
		recordMetrics(spec, results[i])
	}

	close(progressChan)
	displayWg.Wait()
	return results
}

func executeRun(ctx context.Context, spec RunSpec, mode saxpy.Accumulation, idx int, progressChan chan<- ProgressUpdate) RunResult {
	logger := spec.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	res := RunResult{Mode: mode}

	kernel, err := saxpy.NewKernel(saxpy.Params{
		N:            spec.N,
		Threads:      spec.Threads,
		Iterations:   spec.Iterations,
		Accumulation: mode,
	}, saxpy.WithLogger(logger))
	if err != nil {
		res.Err = err
		return res
	}
	if err := kernel.Initialize(ctx, saxpy.NewRandomWorkload(spec.N, spec.Seed)); err != nil {
		res.Err = err
		return res
	}

	gc := memory.NewGCController(spec.GCMode, spec.N)
	gc.SetLogger(zerologOf(logger))
	collector := metrics.NewMemoryCollector()

	done := make(chan struct{})
	var samplerWg sync.WaitGroup
	samplerWg.Add(1)
	go func() {
		defer samplerWg.Done()
		sampleProgress(kernel.Progress(), idx, progressChan, done)
	}()

	before := collector.Snapshot()
	gc.Begin()
	start := time.Now()
	result, err := kernel.Execute(ctx)
	failedAfter := time.Since(start)
	gc.End()
	res.Memory = collector.Snapshot().Sub(before)

	close(done)
	samplerWg.Wait()
	trySend(progressChan, ProgressUpdate{RunIndex: idx, Value: kernel.Progress().Fraction()})

	if err != nil {
		res.Err = err
		res.Duration = failedAfter
		return res
	}
	res.Result = result
	res.Duration = result.Elapsed
	return res
}

// sampleProgress forwards p's completed fraction until done is closed.
func sampleProgress(p *saxpy.Progress, idx int, progressChan chan<- ProgressUpdate, done <-chan struct{}) {
	ticker := time.NewTicker(ProgressSampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			trySend(progressChan, ProgressUpdate{RunIndex: idx, Value: p.Fraction()})
		}
	}
}

// trySend never blocks a run on a slow display.
func trySend(ch chan<- ProgressUpdate, u ProgressUpdate) {
	select {
	case ch <- u:
	default:
	}
}

func zerologOf(l logging.Logger) zerolog.Logger {
	if z, ok := l.(*logging.ZerologAdapter); ok {
		return z.Zerolog()
	}
	return zerolog.Nop()
}

func recordMetrics(spec RunSpec, r RunResult) {
	if spec.Metrics == nil {
		return
	}
	if r.Err != nil {
		spec.Metrics.ObserveFailure(string(r.Mode))
		return
	}
	last := 0.0
	if n := len(r.Result.Averages); n > 0 {
		last = r.Result.Averages[n-1]
	}
	spec.Metrics.ObserveRun(string(r.Mode), spec.N, spec.Threads, spec.Iterations, r.Duration, last)
}

// CompareResults checks that two results agree: the final vectors must be
// bit-identical and the averages equal within AverageTolerance. The error
// wraps apperrors.ErrMismatch.
func CompareResults(want, got *saxpy.Result) error {
	if len(want.Y) != len(got.Y) {
		return fmt.Errorf("%w: vector lengths %d and %d", apperrors.ErrMismatch, len(want.Y), len(got.Y))
	}
	for i := range want.Y {
		if math.Float64bits(want.Y[i]) != math.Float64bits(got.Y[i]) {
			return fmt.Errorf("%w: Y[%d] = %v, expected %v", apperrors.ErrMismatch, i, got.Y[i], want.Y[i])
		}
	}
	if len(want.Averages) != len(got.Averages) {
		return fmt.Errorf("%w: %d averages, expected %d", apperrors.ErrMismatch, len(got.Averages), len(want.Averages))
	}
	for it := range want.Averages {
		if !withinTolerance(want.Averages[it], got.Averages[it]) {
			return fmt.Errorf("%w: average of iteration %d = %v, expected %v",
				apperrors.ErrMismatch, it, got.Averages[it], want.Averages[it])
		}
	}
	return nil
}

func withinTolerance(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= AverageTolerance*scale
}

// Verify recomputes the run sequentially from the same seed and compares
// the result against it.
func Verify(spec RunSpec, result *saxpy.Result) error {
	w := saxpy.NewRandomWorkload(spec.N, spec.Seed)
	ref := &saxpy.Result{Averages: saxpy.Reference(w, spec.Iterations), Y: w.Y}
	if err := CompareResults(ref, result); err != nil {
		return apperrors.WrapError(err, "verification against sequential reference")
	}
	return nil
}

// AnalyzeResults processes the results of a batch and reports on them.
//
// It sorts the results by execution time, presents the comparison table
// when more than one mode ran, checks the successful runs agree, and
// presents the fastest one. Any failed run makes the batch fail, since a
// failed run yields no result.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeResults(results []RunResult, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var best *RunResult
	var firstFailure *RunResult
	for i := range results {
		if results[i].Err != nil {
			if firstFailure == nil {
				firstFailure = &results[i]
			}
		} else if best == nil {
			best = &results[i]
		}
	}

	if len(results) > 1 {
		presenter.PresentComparisonTable(results, out)
	}

	if firstFailure != nil {
		if len(results) > 1 {
			fmt.Fprintf(out, "\nGlobal Status: Failure. The %s run did not complete.\n", firstFailure.Mode)
		}
		return errHandler.HandleError(firstFailure.Err, firstFailure.Duration, out)
	}
	if best == nil {
		return apperrors.ExitErrorGeneric
	}

	for _, res := range results {
		if err := CompareResults(best.Result, res.Result); err != nil {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! The %s and %s runs disagree: %v\n", best.Mode, res.Mode, err)
			return apperrors.ExitErrorMismatch
		}
	}
	if len(results) > 1 {
		fmt.Fprintf(out, "\nGlobal Status: Success. All accumulation modes agree.\n")
	}

	presenter.PresentResult(*best, opts, out)
	return apperrors.ExitSuccess
}
