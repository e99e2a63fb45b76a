package saxpy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/saxpy/internal/errors"
	"github.com/agbru/saxpy/internal/logging"
)

// MaxN is the largest supported vector size.
const MaxN = 1<<31 - 1

var tracer = otel.Tracer("github.com/agbru/saxpy/internal/saxpy")

// ErrPhase is returned when a Kernel operation is called in the wrong phase.
var ErrPhase = errors.New("kernel operation called out of order")

// Phase is the lifecycle state of a Kernel.
type Phase int

const (
	PhaseConfiguring Phase = iota
	PhaseInitialized
	PhaseRunning
	PhaseFinalizing
	PhaseDone
	PhaseFailed
)

var phaseNames = [...]string{"configuring", "initialized", "running", "finalizing", "done", "failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Params are the scalar inputs of a run.
type Params struct {
	// N is the vector length.
	N int
	// Threads is the number of workers, one per partition range.
	Threads int
	// Iterations is the number of SAXPY rounds each worker performs.
	Iterations int
	// Accumulation selects how per-iteration sums are combined.
	// The zero value means AccumulateMerge.
	Accumulation Accumulation
}

// Validate checks the parameters, returning a ValidationError for the first
// offending field.
func (p Params) Validate() error {
	switch {
	case p.N < 0 || p.N > MaxN:
		return apperrors.ValidationError{Field: "n", Message: fmt.Sprintf("must be in [0, %d], got %d", MaxN, p.N)}
	case p.Threads <= 0:
		return apperrors.ValidationError{Field: "threads", Message: fmt.Sprintf("must be positive, got %d", p.Threads)}
	case p.Iterations < 0:
		return apperrors.ValidationError{Field: "iterations", Message: fmt.Sprintf("must not be negative, got %d", p.Iterations)}
	}
	if p.Accumulation != "" {
		if _, err := ParseAccumulation(string(p.Accumulation)); err != nil {
			return err
		}
	}
	return nil
}

// Result is the outcome of a completed run.
type Result struct {
	// Y is the final vector. It aliases the workload's Y.
	Y []float64
	// Averages holds the mean of Y after each iteration.
	Averages []float64
	// Bounds are the partition boundaries the workers ran on.
	Bounds []int
	// Accumulation is the mode used to combine the sums.
	Accumulation Accumulation
	// Elapsed covers starting the workers, joining them and finalizing the
	// averages. Workload setup is excluded.
	Elapsed time.Duration
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithLogger sets the logger used for phase transitions.
func WithLogger(l logging.Logger) Option {
	return func(k *Kernel) { k.logger = l }
}

// withStartHook installs a function called by every worker before it starts
// computing. A non-nil error aborts that worker.
func withStartHook(hook func(worker int) error) Option {
	return func(k *Kernel) { k.startHook = hook }
}

// Kernel drives one run through Configuring, Initialized, Running,
// Finalizing and Done. A Kernel is single-use.
type Kernel struct {
	params    Params
	phase     Phase
	logger    logging.Logger
	startHook func(worker int) error

	work     *Workload
	bounds   []int
	ranges   []Range
	acc      *Accumulator
	progress *Progress
}

// NewKernel validates params and returns a Kernel in PhaseConfiguring.
func NewKernel(params Params, opts ...Option) (*Kernel, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Accumulation == "" {
		params.Accumulation = AccumulateMerge
	}
	k := &Kernel{
		params:   params,
		phase:    PhaseConfiguring,
		logger:   logging.NewNopLogger(),
		progress: NewProgress(params.Threads, params.Iterations),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Params returns the validated parameters.
func (k *Kernel) Params() Params { return k.params }

// Phase returns the current lifecycle phase.
func (k *Kernel) Phase() Phase { return k.phase }

// Progress returns the iteration tracker, readable while Execute runs.
func (k *Kernel) Progress() *Progress { return k.progress }

// Bounds returns the partition boundaries, or nil before Initialize.
func (k *Kernel) Bounds() []int { return k.bounds }

func (k *Kernel) enter(from, to Phase) error {
	if k.phase != from {
		return fmt.Errorf("%w: cannot move to %s from %s", ErrPhase, to, k.phase)
	}
	k.logger.Debug("kernel phase", logging.String("from", from.String()), logging.String("to", to.String()))
	k.phase = to
	return nil
}

// Initialize binds the workload, computes the partition and allocates the
// accumulator.
func (k *Kernel) Initialize(ctx context.Context, w *Workload) error {
	_, span := tracer.Start(ctx, "saxpy.Initialize")
	defer span.End()

	if k.phase != PhaseConfiguring {
		return k.enter(PhaseConfiguring, PhaseInitialized)
	}
	if w == nil || w.Len() != k.params.N || len(w.Y) != k.params.N {
		got := -1
		if w != nil {
			got = w.Len()
		}
		return apperrors.ValidationError{Field: "workload", Message: fmt.Sprintf("length %d does not match n=%d", got, k.params.N)}
	}
	bounds, err := Partition(k.params.N, k.params.Threads)
	if err != nil {
		return err
	}
	acc, err := NewAccumulator(k.params.Accumulation, k.params.Threads, k.params.Iterations)
	if err != nil {
		return err
	}
	k.work, k.bounds, k.ranges, k.acc = w, bounds, Ranges(bounds), acc

	span.SetAttributes(
		attribute.Int("saxpy.n", k.params.N),
		attribute.Int("saxpy.threads", k.params.Threads),
		attribute.Int("saxpy.iterations", k.params.Iterations),
	)
	return k.enter(PhaseConfiguring, PhaseInitialized)
}

// Execute starts one worker per range, waits for all of them and finalizes
// the averages. If a worker fails, the remaining workers are still joined
// before the error is returned and no result is produced.
func (k *Kernel) Execute(ctx context.Context) (*Result, error) {
	ctx, span := tracer.Start(ctx, "saxpy.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("saxpy.accumulation", string(k.params.Accumulation)))

	if err := k.enter(PhaseInitialized, PhaseRunning); err != nil {
		return nil, err
	}

	start := time.Now()
	var g errgroup.Group
	for id, r := range k.ranges {
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = apperrors.WorkerError{Worker: id, Cause: fmt.Errorf("panic: %v", rec)}
				}
			}()
			if k.startHook != nil {
				if hookErr := k.startHook(id); hookErr != nil {
					return apperrors.WorkerError{Worker: id, Cause: hookErr}
				}
			}
			runWorker(id, r, k.params.Iterations, k.work, k.acc, k.progress)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		k.phase = PhaseFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, "worker failed")
		k.logger.Error("kernel run aborted", err, logging.Duration("elapsed", time.Since(start)))
		return nil, apperrors.KernelError{Phase: PhaseRunning.String(), Cause: err}
	}

	if err := k.enter(PhaseRunning, PhaseFinalizing); err != nil {
		return nil, err
	}
	_, finSpan := tracer.Start(ctx, "saxpy.Finalize")
	avgs := Finalize(k.acc.Sums(), k.params.N)
	finSpan.End()
	elapsed := time.Since(start)

	if err := k.enter(PhaseFinalizing, PhaseDone); err != nil {
		return nil, err
	}
	k.logger.Debug("kernel run complete",
		logging.Int("threads", k.params.Threads),
		logging.Int("iterations", k.params.Iterations),
		logging.Duration("elapsed", elapsed),
	)
	return &Result{
		Y:            k.work.Y,
		Averages:     avgs,
		Bounds:       k.bounds,
		Accumulation: k.params.Accumulation,
		Elapsed:      elapsed,
	}, nil
}

// Run validates params, initializes a kernel on w and executes it.
func Run(ctx context.Context, params Params, w *Workload, opts ...Option) (*Result, error) {
	k, err := NewKernel(params, opts...)
	if err != nil {
		return nil, err
	}
	if err := k.Initialize(ctx, w); err != nil {
		return nil, err
	}
	return k.Execute(ctx)
}
