package cli

import (
	"fmt"
	"io"

	"github.com/agbru/saxpy/internal/format"
	"github.com/agbru/saxpy/internal/orchestration"
	"github.com/agbru/saxpy/internal/ui"
)

// TailLength is the number of trailing values shown for Y and the averages.
const TailLength = 3

// DisplayResult prints the outcome of a run: execution time and the last
// values of Y and of the averages. With Verbose it adds the worker ranges
// and a throughput summary box; with Debug it dumps the final vector.
func DisplayResult(res orchestration.RunResult, opts orchestration.PresentationOptions, out io.Writer) {
	r := res.Result
	fmt.Fprintf(out, "\n--- Results (%s%s%s accumulation) ---\n", ui.ColorGreen(), res.Mode, ui.ColorReset())
	if opts.Debug {
		fmt.Fprintf(out, "RES: final vector Y= %s\n", format.FormatVector(r.Y))
	}
	if opts.Verbose {
		PrintRanges(r.Bounds, out)
	}
	fmt.Fprintf(out, "Execution time: %s%s%s\n", ui.ColorYellow(), format.FormatMilliseconds(r.Elapsed), ui.ColorReset())
	fmt.Fprintf(out, "Last %d values of Y: %s\n", min(TailLength, len(r.Y)), format.FormatTail(r.Y, TailLength))
	fmt.Fprintf(out, "Last %d values of Y_avgs: %s\n", min(TailLength, len(r.Averages)), format.FormatTail(r.Averages, TailLength))

	if opts.Verbose {
		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.SummaryBox("Run summary", summaryRows(res, opts)))
	}
}

func summaryRows(res orchestration.RunResult, opts orchestration.PresentationOptions) [][2]string {
	updates := float64(opts.N) * float64(opts.Iterations)
	rows := [][2]string{
		{"Accumulation", string(res.Mode)},
		{"Workers", fmt.Sprintf("%d", opts.Threads)},
		{"Element updates", fmt.Sprintf("%.0f", updates)},
		{"Elapsed", format.FormatExecutionDuration(res.Result.Elapsed)},
	}
	if secs := res.Result.Elapsed.Seconds(); secs > 0 {
		// One multiply and one add per update.
		rows = append(rows, [2]string{"Throughput", fmt.Sprintf("%.3f GFLOP/s", 2*updates/secs/1e9)})
	}
	return rows
}

// FormatQuietResult formats the last averages on one line for scripting.
func FormatQuietResult(res orchestration.RunResult) string {
	return format.FormatTail(res.Result.Averages, TailLength)
}

// DisplayQuietResult outputs a result in quiet mode (minimal output).
func DisplayQuietResult(out io.Writer, res orchestration.RunResult) {
	fmt.Fprintln(out, FormatQuietResult(res))
}
