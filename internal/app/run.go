package app

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/saxpy/internal/cli"
	apperrors "github.com/agbru/saxpy/internal/errors"
	"github.com/agbru/saxpy/internal/logging"
	"github.com/agbru/saxpy/internal/memory"
	"github.com/agbru/saxpy/internal/metrics"
	"github.com/agbru/saxpy/internal/orchestration"
	"github.com/agbru/saxpy/internal/saxpy"
	"github.com/agbru/saxpy/internal/sysmon"
	"github.com/agbru/saxpy/internal/tui"
	"github.com/agbru/saxpy/internal/ui"
)

// availableMemory is replaced in tests.
var availableMemory = sysmon.AvailableMemory

// runBatch runs the selected accumulation modes and handles everything that
// follows: verification, the output file, the metrics file and the history.
func (a *Application) runBatch(ctx context.Context, out io.Writer) int {
	cfg := a.Config
	modes, err := a.modes()
	if err != nil {
		return apperrors.HandleError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}

	est := memory.EstimateRun(cfg.N, cfg.Threads, cfg.Iterations, slices.Contains(modes, saxpy.AccumulateMerge))
	if code := a.checkMemory(est); code != apperrors.ExitSuccess {
		return code
	}

	runID := uuid.New()
	a.Logger.Info("batch started",
		logging.String("run_id", runID.String()),
		logging.Int("size", cfg.N),
		logging.Int("threads", cfg.Threads),
		logging.Int("iterations", cfg.Iterations),
		logging.Uint64("seed", cfg.Seed))

	interactive := !cfg.Quiet && !cfg.TUI
	if interactive {
		cli.PrintExecutionConfig(cfg, sysmon.DescribeHost(), out)
		if cfg.Verbose {
			fmt.Fprintf(out, "Memory estimate: %s\n", est)
		}
		if cfg.Debug {
			cli.DisplayWorkload(saxpy.NewRandomWorkload(cfg.N, cfg.Seed), out)
		}
		cli.PrintExecutionMode(modes, out)
	}

	spec := orchestration.RunSpec{
		N:          cfg.N,
		Seed:       cfg.Seed,
		Threads:    cfg.Threads,
		Iterations: cfg.Iterations,
		Modes:      modes,
		GCMode:     cfg.GCMode,
		Logger:     a.Logger,
	}
	if cfg.MetricsFile != "" {
		spec.Metrics = metrics.NewKernelMetrics()
	}
	opts := orchestration.PresentationOptions{
		N:          cfg.N,
		Threads:    cfg.Threads,
		Iterations: cfg.Iterations,
		Verbose:    cfg.Verbose,
		Debug:      cfg.Debug,
	}

	startedAt := time.Now()
	var (
		results  []orchestration.RunResult
		exitCode int
	)
	switch {
	case cfg.TUI:
		outcome := tui.Run(ctx, spec, opts, Version)
		results, exitCode = outcome.Results, outcome.ExitCode
		if exitCode != apperrors.ExitSuccess {
			fmt.Fprintf(a.ErrWriter, "Run failed with exit code %d.\n", exitCode)
		}
	case cfg.Quiet:
		results = orchestration.ExecuteRuns(ctx, spec, orchestration.NullProgressReporter{}, io.Discard)
		exitCode = orchestration.AnalyzeResults(results, opts, quietPresenter{}, quietPresenter{}, a.ErrWriter)
	default:
		results = orchestration.ExecuteRuns(ctx, spec, cli.CLIProgressReporter{}, out)
		exitCode = orchestration.AnalyzeResults(results, opts, cli.CLIResultPresenter{}, cli.CLIResultPresenter{}, out)
	}

	best := bestResult(results)
	if exitCode == apperrors.ExitSuccess && best != nil {
		if cfg.Quiet {
			cli.DisplayQuietResult(out, *best)
		}
		if cfg.Verify {
			exitCode = a.verify(spec, best, out)
		}
		if exitCode == apperrors.ExitSuccess {
			exitCode = a.saveResult(runID, best, out)
		}
	}

	if code := a.writeMetrics(spec.Metrics); exitCode == apperrors.ExitSuccess {
		exitCode = code
	}
	if code := a.recordHistory(ctx, runID, startedAt, results); exitCode == apperrors.ExitSuccess {
		exitCode = code
	}

	a.Logger.Info("batch finished",
		logging.String("run_id", runID.String()),
		logging.Int("exit_code", exitCode),
		logging.Duration("wall", time.Since(startedAt)))
	return exitCode
}

// modes resolves the configured mode names.
func (a *Application) modes() ([]saxpy.Accumulation, error) {
	names := a.Config.Modes(saxpy.Accumulations())
	modes := make([]saxpy.Accumulation, 0, len(names))
	for _, name := range names {
		m, err := saxpy.ParseAccumulation(name)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

// checkMemory refuses runs whose footprint exceeds --memory-limit or the
// memory the OS reports as available.
func (a *Application) checkMemory(est memory.Estimate) int {
	var limit uint64
	if a.Config.MemoryLimit != "" {
		l, err := memory.ParseLimit(a.Config.MemoryLimit)
		if err != nil {
			return apperrors.HandleError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
		}
		limit = l
	}
	if err := memory.Check(est, limit, availableMemory()); err != nil {
		a.Logger.Error("memory check failed", err, logging.Uint64("estimate", est.TotalBytes))
		return apperrors.HandleError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	return apperrors.ExitSuccess
}

// verify compares the best run with the sequential reference.
func (a *Application) verify(spec orchestration.RunSpec, best *orchestration.RunResult, out io.Writer) int {
	if err := orchestration.Verify(spec, best.Result); err != nil {
		return apperrors.HandleError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	if !a.Config.Quiet {
		fmt.Fprintf(out, "Verification against sequential reference: %sOK%s\n", ui.ColorGreen(), ui.ColorReset())
	}
	return apperrors.ExitSuccess
}

func (a *Application) saveResult(runID uuid.UUID, best *orchestration.RunResult, out io.Writer) int {
	if a.Config.OutputFile == "" {
		return apperrors.ExitSuccess
	}
	err := cli.WriteResultToFile(*best, cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		RunID:      runID.String(),
		Seed:       a.Config.Seed,
		N:          a.Config.N,
		Threads:    a.Config.Threads,
		Iterations: a.Config.Iterations,
	})
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if !a.Config.Quiet {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), a.Config.OutputFile, ui.ColorReset())
	}
	return apperrors.ExitSuccess
}

func (a *Application) writeMetrics(m *metrics.KernelMetrics) int {
	if m == nil {
		return apperrors.ExitSuccess
	}
	if err := m.WriteTextfile(a.Config.MetricsFile); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// bestResult returns the fastest successful run, or nil.
func bestResult(results []orchestration.RunResult) *orchestration.RunResult {
	var best *orchestration.RunResult
	for i := range results {
		if results[i].Err != nil || results[i].Result == nil {
			continue
		}
		if best == nil || results[i].Duration < best.Duration {
			best = &results[i]
		}
	}
	return best
}

// quietPresenter reports failures only.
type quietPresenter struct{ cli.CLIResultPresenter }

func (quietPresenter) PresentComparisonTable([]orchestration.RunResult, io.Writer) {}

func (quietPresenter) PresentResult(orchestration.RunResult, orchestration.PresentationOptions, io.Writer) {
}
