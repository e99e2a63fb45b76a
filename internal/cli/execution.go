package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/saxpy/internal/config"
	"github.com/agbru/saxpy/internal/format"
	"github.com/agbru/saxpy/internal/saxpy"
	"github.com/agbru/saxpy/internal/sysmon"
	"github.com/agbru/saxpy/internal/ui"
)

// PrintExecutionConfig displays the run parameters and the host they run on.
//
// Parameters:
//   - cfg: The application configuration.
//   - host: The host description from sysmon.DescribeHost.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, host sysmon.Host, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "p = %s%d%s, seed = %s%d%s, n_threads = %s%d%s, max_iters = %s%d%s\n",
		ui.ColorCyan(), cfg.N, ui.ColorReset(),
		ui.ColorCyan(), cfg.Seed, ui.ColorReset(),
		ui.ColorCyan(), cfg.Threads, ui.ColorReset(),
		ui.ColorCyan(), cfg.Iterations, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), host.LogicalCPUs, ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	if host.ModelName != "" {
		fmt.Fprintf(out, "CPU: %s\n", host.ModelName)
	}
	if len(host.Features) > 0 {
		fmt.Fprintf(out, "CPU features: %s\n", strings.Join(host.Features, " "))
	}
	if cfg.Threads > host.LogicalCPUs && host.LogicalCPUs > 0 {
		fmt.Fprintf(out, "%sNote:%s %d workers share %d logical processors.\n",
			ui.ColorYellow(), ui.ColorReset(), cfg.Threads, host.LogicalCPUs)
	}
}

// PrintExecutionMode displays whether a single mode runs or all modes are compared.
func PrintExecutionMode(modes []saxpy.Accumulation, out io.Writer) {
	var modeDesc string
	if len(modes) > 1 {
		names := make([]string, len(modes))
		for i, m := range modes {
			names[i] = string(m)
		}
		modeDesc = fmt.Sprintf("Sequential comparison of the %s accumulation modes", strings.Join(names, ", "))
	} else if len(modes) == 1 {
		modeDesc = fmt.Sprintf("Single run with %s%s%s accumulation (%s)",
			ui.ColorGreen(), modes[0], ui.ColorReset(), modes[0].Describe())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

// PrintRanges lists the half-open index range assigned to each worker.
func PrintRanges(bounds []int, out io.Writer) {
	fmt.Fprintf(out, "Worker ranges:\n")
	for k, r := range saxpy.Ranges(bounds) {
		fmt.Fprintf(out, "  worker %3d: %s (%d elements)\n", k, r, r.Len())
	}
}

// DisplayWorkload dumps the input vectors and scalar, as shown with --debug.
func DisplayWorkload(w *saxpy.Workload, out io.Writer) {
	fmt.Fprintf(out, "vector X= %s\n", format.FormatVector(w.X))
	fmt.Fprintf(out, "vector Y= %s\n", format.FormatVector(w.Y))
	fmt.Fprintf(out, "a= %f\n", w.A)
}
