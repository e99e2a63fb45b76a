// Package config parses and validates the command-line configuration.
//
// Values are resolved with the priority: CLI flags > SAXPY_* environment
// variables > YAML run profile (--config) > defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/saxpy/internal/errors"
	"github.com/agbru/saxpy/internal/memory"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "SAXPY_"

// ModeAll runs every registered accumulation mode and compares them.
const ModeAll = "all"

// MaxN is the largest accepted vector size, the range of a 32-bit signed
// integer.
const MaxN = 1<<31 - 1

// Defaults.
const (
	DefaultN          = 10_000_000
	DefaultSeed       = 1
	DefaultThreads    = 16
	DefaultIterations = 1000
	DefaultMode       = "merge"
	DefaultGCMode     = "auto"
	DefaultLogLevel   = "warn"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// N is the vector length (-p).
	N int
	// Seed initializes the random generator (-s).
	Seed uint64
	// Threads is the number of workers (-n).
	Threads int
	// Iterations is the number of SAXPY rounds (-i).
	Iterations int
	// Mode is an accumulation mode name or "all".
	Mode string
	// GCMode controls the garbage collector during the parallel phase.
	GCMode string
	// MemoryLimit caps the estimated footprint, e.g. "4G". Empty means no cap.
	MemoryLimit string
	// Verify compares the result with the sequential reference.
	Verify bool
	// Debug dumps X, Y and a before the run and Y after it.
	Debug bool
	// Quiet prints only the last averages.
	Quiet bool
	// Verbose prints the per-worker ranges and extra statistics.
	Verbose bool
	// NoColor disables ANSI colors.
	NoColor bool
	// TUI launches the interactive progress view.
	TUI bool
	// OutputFile receives the full list of averages.
	OutputFile string
	// MetricsFile receives Prometheus metrics in text format.
	MetricsFile string
	// HistoryDB is the SQLite database recording runs.
	HistoryDB string
	// HistoryList prints the last K recorded runs and exits.
	HistoryList int
	// ConfigFile is the YAML run profile.
	ConfigFile string
	// LogLevel is a zerolog level name.
	LogLevel string
}

// Defaults returns the configuration used when nothing is specified.
func Defaults() AppConfig {
	return AppConfig{
		N:          DefaultN,
		Seed:       DefaultSeed,
		Threads:    DefaultThreads,
		Iterations: DefaultIterations,
		Mode:       DefaultMode,
		GCMode:     DefaultGCMode,
		LogLevel:   DefaultLogLevel,
	}
}

// Modes expands Mode into the list of accumulation modes to run.
func (c AppConfig) Modes(available []string) []string {
	if strings.EqualFold(c.Mode, ModeAll) {
		return slices.Clone(available)
	}
	return []string{strings.ToLower(c.Mode)}
}

// Validate checks the semantic validity of the configuration.
func (c AppConfig) Validate(availableModes []string) error {
	switch {
	case c.N <= 0 || c.N > MaxN:
		return apperrors.NewConfigError("problem size -p must be in [1, %d], got %d", MaxN, c.N)
	case c.Threads <= 0:
		return apperrors.NewConfigError("thread count -n must be positive, got %d", c.Threads)
	case c.Iterations <= 0:
		return apperrors.NewConfigError("iteration count -i must be positive, got %d", c.Iterations)
	case c.HistoryList < 0:
		return apperrors.NewConfigError("--history-list must not be negative, got %d", c.HistoryList)
	case c.HistoryList > 0 && c.HistoryDB == "":
		return apperrors.NewConfigError("--history-list requires --history")
	case c.Quiet && c.TUI:
		return apperrors.NewConfigError("--quiet and --tui are mutually exclusive")
	}

	mode := strings.ToLower(c.Mode)
	if mode != ModeAll && !slices.Contains(availableModes, mode) {
		return apperrors.NewConfigError("unknown accumulation mode %q (available: %s, %s)",
			c.Mode, strings.Join(availableModes, ", "), ModeAll)
	}
	if !slices.Contains(memory.GCModes(), c.GCMode) {
		return apperrors.NewConfigError("unknown --gc-mode %q (available: %s)",
			c.GCMode, strings.Join(memory.GCModes(), ", "))
	}
	if c.MemoryLimit != "" {
		if _, err := memory.ParseLimit(c.MemoryLimit); err != nil {
			return err
		}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid --log-level %q", c.LogLevel)
	}
	return nil
}

// ParseConfig parses the command-line arguments, applies the run profile and
// environment overrides, and validates the result. On a parse error the
// usage text is written to errorWriter. flag.ErrHelp is returned unwrapped
// for --help.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableModes []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	config := Defaults()

	fs.IntVar(&config.N, "p", config.N, "Problem size: number of vector elements (alias: --size).")
	fs.IntVar(&config.N, "size", config.N, "Problem size (alias of -p).")
	fs.Uint64Var(&config.Seed, "s", config.Seed, "Seed of the random generator (alias: --seed).")
	fs.Uint64Var(&config.Seed, "seed", config.Seed, "Seed (alias of -s).")
	fs.IntVar(&config.Threads, "n", config.Threads, "Number of worker threads (alias: --threads).")
	fs.IntVar(&config.Threads, "threads", config.Threads, "Number of worker threads (alias of -n).")
	fs.IntVar(&config.Iterations, "i", config.Iterations, "Number of iterations (alias: --iterations).")
	fs.IntVar(&config.Iterations, "iterations", config.Iterations, "Number of iterations (alias of -i).")
	fs.StringVar(&config.Mode, "mode", config.Mode,
		fmt.Sprintf("Accumulation mode: %s, or %s to compare them.", strings.Join(availableModes, ", "), ModeAll))
	fs.StringVar(&config.GCMode, "gc-mode", config.GCMode,
		fmt.Sprintf("Garbage collector control while workers run: %s.", strings.Join(memory.GCModes(), ", ")))
	fs.StringVar(&config.MemoryLimit, "memory-limit", "", "Refuse runs whose estimated footprint exceeds this size (e.g. 512M, 8G).")
	fs.BoolVar(&config.Verify, "verify", false, "Compare the result with a sequential reference run.")
	fs.BoolVar(&config.Debug, "debug", false, "Print X, Y and a before the run and Y after it.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the last averages.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (alias of --quiet).")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print per-worker ranges and run statistics.")
	fs.BoolVar(&config.Verbose, "v", false, "Verbose mode (alias of --verbose).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&config.TUI, "tui", false, "Show an interactive progress view.")
	fs.StringVar(&config.OutputFile, "output", "", "Write every iteration average to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file (alias of --output).")
	fs.StringVar(&config.MetricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file.")
	fs.StringVar(&config.HistoryDB, "history", "", "Record runs in this SQLite database.")
	fs.IntVar(&config.HistoryList, "history-list", 0, "Print the last K runs recorded in --history and exit.")
	fs.StringVar(&config.ConfigFile, "config", "", "YAML run profile providing default values.")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level: debug, info, warn, error.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.NewConfigError("%v", err)
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if !isFlagSet(fs, "config") {
		config.ConfigFile = getEnvString("CONFIG", config.ConfigFile)
	}
	if config.ConfigFile != "" {
		profile, err := LoadFile(config.ConfigFile)
		if err != nil {
			return AppConfig{}, err
		}
		profile.apply(&config, fs)
	}
	applyEnvOverrides(&config, fs)

	config.Mode = strings.ToLower(config.Mode)
	if err := config.Validate(availableModes); err != nil {
		fmt.Fprintf(errorWriter, "Error: %v\n", err)
		return AppConfig{}, err
	}
	return config, nil
}
