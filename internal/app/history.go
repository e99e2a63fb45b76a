package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/saxpy/internal/cli"
	apperrors "github.com/agbru/saxpy/internal/errors"
	"github.com/agbru/saxpy/internal/format"
	"github.com/agbru/saxpy/internal/logging"
	"github.com/agbru/saxpy/internal/orchestration"
	"github.com/agbru/saxpy/internal/store"
)

// recordHistory stores one row per run of the batch. The first run reuses
// the batch id so that it matches the output file header.
func (a *Application) recordHistory(ctx context.Context, runID uuid.UUID, startedAt time.Time, results []orchestration.RunResult) int {
	if a.Config.HistoryDB == "" || len(results) == 0 {
		return apperrors.ExitSuccess
	}
	st, err := store.Open(a.Config.HistoryDB)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error opening history: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	defer st.Close()

	// Recording must survive a cancelled batch.
	ctx = context.WithoutCancel(ctx)
	for i, res := range results {
		run := store.Run{
			StartedAt:  startedAt,
			Mode:       string(res.Mode),
			N:          a.Config.N,
			Seed:       a.Config.Seed,
			Threads:    a.Config.Threads,
			Iterations: a.Config.Iterations,
			Elapsed:    res.Duration,
			Status:     store.StatusSuccess,
		}
		if i == 0 {
			run.ID = runID
		}
		if res.Err != nil {
			run.Status = store.StatusFailure
			run.Error = res.Err.Error()
		} else if res.Result != nil && len(res.Result.Averages) > 0 {
			run.LastAverage = res.Result.Averages[len(res.Result.Averages)-1]
		}
		id, err := st.Record(ctx, run)
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error recording history: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		a.Logger.Debug("run recorded", logging.String("id", id.String()), logging.String("mode", run.Mode))
	}
	return apperrors.ExitSuccess
}

// runHistoryList prints the most recent runs of --history and exits.
func (a *Application) runHistoryList(ctx context.Context, out io.Writer) int {
	st, err := store.Open(a.Config.HistoryDB)
	if err != nil {
		return apperrors.HandleError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	defer st.Close()

	runs, err := st.Recent(ctx, a.Config.HistoryList)
	if err != nil {
		return apperrors.HandleError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs recorded in %s.\n", a.Config.HistoryDB)
		return apperrors.ExitSuccess
	}
	DisplayHistory(runs, out)
	return apperrors.ExitSuccess
}

// DisplayHistory writes runs as an aligned table.
func DisplayHistory(runs []store.Run, out io.Writer) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tMODE\tP\tSEED\tTHREADS\tITERS\tTIME\tLAST AVG\tSTATUS")
	for _, r := range runs {
		status := r.Status
		if r.Error != "" {
			status += ": " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%f\t%s\n",
			r.ID.String()[:8], r.StartedAt.Local().Format(time.DateTime), r.Mode, r.N, r.Seed,
			r.Threads, r.Iterations, format.FormatMilliseconds(r.Elapsed), r.LastAverage, status)
	}
	tw.Flush()
}
