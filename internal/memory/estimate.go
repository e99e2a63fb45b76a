package memory

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/agbru/saxpy/internal/errors"
	"github.com/agbru/saxpy/internal/format"
)

const float64Size = 8

// Estimate is the predicted memory footprint of a run.
type Estimate struct {
	// VectorBytes covers X and Y.
	VectorBytes uint64
	// AccumulatorBytes covers the per-iteration slots: one row per worker in
	// merge mode, plus the finalized averages.
	AccumulatorBytes uint64
	// TotalBytes is the sum of the above.
	TotalBytes uint64
}

// EstimateRun predicts the bytes needed for an n-element run with the given
// threads and iterations. perWorkerRows selects the merge layout (one row of
// iterations slots per worker) instead of a single shared row.
func EstimateRun(n, threads, iterations int, perWorkerRows bool) Estimate {
	rows := uint64(1)
	if perWorkerRows {
		rows = uint64(threads)
	}
	est := Estimate{
		VectorBytes:      2 * uint64(n) * float64Size,
		AccumulatorBytes: (rows + 1) * uint64(iterations) * float64Size,
	}
	est.TotalBytes = est.VectorBytes + est.AccumulatorBytes
	return est
}

// String renders the estimate for display.
func (e Estimate) String() string {
	return fmt.Sprintf("%s (vectors %s, accumulator %s)",
		format.FormatBytes(e.TotalBytes), format.FormatBytes(e.VectorBytes), format.FormatBytes(e.AccumulatorBytes))
}

// ParseLimit parses a memory limit such as "512MB", "2G" or "1048576".
// Units are binary (K = 1024) and case-insensitive; a trailing "B" or "iB"
// is optional.
func ParseLimit(s string) (uint64, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return 0, apperrors.NewConfigError("empty memory limit")
	}
	v = strings.TrimSuffix(v, "B")
	v = strings.TrimSuffix(v, "I")

	mult := uint64(1)
	switch {
	case strings.HasSuffix(v, "K"):
		mult = 1 << 10
	case strings.HasSuffix(v, "M"):
		mult = 1 << 20
	case strings.HasSuffix(v, "G"):
		mult = 1 << 30
	case strings.HasSuffix(v, "T"):
		mult = 1 << 40
	}
	if mult > 1 {
		v = v[:len(v)-1]
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, apperrors.NewConfigError("invalid memory limit %q", s)
	}
	return n * mult, nil
}

// Check returns a MemoryError when the estimate exceeds limit or available.
// A zero limit or zero available means "unknown" and is not enforced.
func Check(est Estimate, limit, available uint64) error {
	if (limit > 0 && est.TotalBytes > limit) || (available > 0 && est.TotalBytes > available) {
		return apperrors.MemoryError{Requested: est.TotalBytes, Available: available, Limit: limit}
	}
	return nil
}
