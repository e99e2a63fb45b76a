// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agbru/saxpy/internal/format"
	"github.com/agbru/saxpy/internal/orchestration"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// RunID identifies the run in the file header.
	RunID string
	// Seed, N, Threads and Iterations are echoed in the header.
	Seed       uint64
	N          int
	Threads    int
	Iterations int
}

// WriteResultToFile writes a header and every per-iteration average, one
// per line, to config.OutputFile. Missing directories are created.
//
// Returns:
//   - error: An error if the file cannot be written.
func WriteResultToFile(res orchestration.RunResult, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# SAXPY Run Result\n")
	fmt.Fprintf(w, "# Run: %s\n", config.RunID)
	fmt.Fprintf(w, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "# Accumulation: %s\n", res.Mode)
	fmt.Fprintf(w, "# p = %d, seed = %d, n_threads = %d, max_iters = %d\n",
		config.N, config.Seed, config.Threads, config.Iterations)
	fmt.Fprintf(w, "# Execution time: %s\n", format.FormatMilliseconds(res.Result.Elapsed))
	fmt.Fprintf(w, "# iteration\taverage\n")
	for it, avg := range res.Result.Averages {
		fmt.Fprintf(w, "%d\t%s\n", it, strconv.FormatFloat(avg, 'g', -1, 64))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}
