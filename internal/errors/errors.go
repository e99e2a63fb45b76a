package apperrors

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0 // Indicates successful execution.
	ExitErrorGeneric  = 1 // Indicates a generic error.
	ExitErrorMismatch = 3 // Indicates diverging results between accumulation modes or the reference.
	ExitErrorConfig   = 4 // Indicates a configuration error.
	ExitErrorMemory   = 5 // Indicates the vectors could not be allocated.
	ExitErrorWorker   = 6 // Indicates a worker failed to start or crashed.
)

// ErrInvalidArgument is the sentinel matched by errors.Is for every
// ValidationError. It corresponds to the InvalidArgument error class.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrMismatch is returned when two results that must agree do not, such as
// two accumulation modes or a run and its sequential reference.
var ErrMismatch = errors.New("results mismatch")

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents an invalid argument handed to the kernel, such as
// a negative vector size or a non-positive thread count.
type ValidationError struct {
	// Field is the name of the argument that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// Is reports ErrInvalidArgument as a match so callers can test the error
// class without knowing the field.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// MemoryError represents an allocation that cannot be satisfied, either
// because it exceeds the configured limit or the memory available on the host.
type MemoryError struct {
	// Requested is the number of bytes the run needs.
	Requested uint64
	// Available is the number of bytes currently available on the host (0 if unknown).
	Available uint64
	// Limit is the configured memory limit in bytes (0 if none).
	Limit uint64
}

// Error returns a formatted message describing the memory error.
func (e MemoryError) Error() string {
	return fmt.Sprintf("memory error: requested %d bytes, available %d bytes (limit: %d)", e.Requested, e.Available, e.Limit)
}

// WorkerError reports that a worker could not be started or terminated
// abnormally. The run is aborted once every other worker has been joined.
type WorkerError struct {
	// Worker is the index of the failed worker.
	Worker int
	// Cause is the recovered panic or start failure.
	Cause error
}

// Error returns a formatted message naming the failed worker.
func (e WorkerError) Error() string {
	return fmt.Sprintf("worker %d failed: %v", e.Worker, e.Cause)
}

// Unwrap returns the underlying cause.
func (e WorkerError) Unwrap() error { return e.Cause }

// KernelError encapsulates a failure of the parallel phase while preserving
// the original cause.
type KernelError struct {
	// Phase is the kernel phase in which the failure happened.
	Phase string
	// Cause is the underlying error that triggered this kernel error.
	Cause error
}

// Error returns the phase and the message of the underlying cause.
func (e KernelError) Error() string {
	return fmt.Sprintf("kernel failed while %s: %v", e.Phase, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e KernelError) Unwrap() error { return e.Cause }

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// ExitCodeFor maps an error to the process exit code of its class.
// A nil error maps to ExitSuccess.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		configErr ConfigError
		memErr    MemoryError
		workerErr WorkerError
	)
	switch {
	case errors.As(err, &configErr), errors.Is(err, ErrInvalidArgument):
		return ExitErrorConfig
	case errors.Is(err, ErrMismatch):
		return ExitErrorMismatch
	case errors.As(err, &memErr):
		return ExitErrorMemory
	case errors.As(err, &workerErr):
		return ExitErrorWorker
	default:
		return ExitErrorGeneric
	}
}

// ColorProvider supplies the escape sequences used to highlight error output.
// A nil ColorProvider disables colors.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// HandleError prints a human-readable description of a run failure and
// returns the matching exit code. A nil error prints nothing.
//
// Parameters:
//   - err: The failure to report.
//   - duration: How long the run took before failing (0 if it never started).
//   - out: The writer for the report.
//   - colors: Escape sequences for highlighting, or nil.
//
// Returns:
//   - int: The exit code for err.
func HandleError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	red, yellow, reset := "", "", ""
	if colors != nil {
		red, yellow, reset = colors.Red(), colors.Yellow(), colors.Reset()
	}

	code := ExitCodeFor(err)
	switch code {
	case ExitErrorConfig:
		fmt.Fprintf(out, "%sInvalid configuration:%s %v\n", red, reset, err)
	case ExitErrorMemory:
		fmt.Fprintf(out, "%sAllocation failure:%s %v\n", red, reset, err)
	case ExitErrorWorker:
		fmt.Fprintf(out, "%sWorker failure:%s %v\n", red, reset, err)
	case ExitErrorMismatch:
		fmt.Fprintf(out, "%sInconsistent results:%s %v\n", red, reset, err)
	default:
		fmt.Fprintf(out, "%sError:%s %v\n", red, reset, err)
	}
	if duration > 0 {
		fmt.Fprintf(out, "Run aborted after %s%s%s.\n", yellow, duration, reset)
	}
	return code
}
