package saxpy

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	apperrors "github.com/agbru/saxpy/internal/errors"
)

// Accumulation selects how the per-iteration sums of the workers are combined.
type Accumulation string

const (
	// AccumulateMerge gives every worker a private row of I slots and sums
	// the rows in worker order after the join. Results are reproducible for
	// a fixed thread count.
	AccumulateMerge Accumulation = "merge"
	// AccumulateAtomic lets every worker add into the same I shared slots
	// with a compare-and-swap loop. Summation follows arrival order, so the
	// last bits of the means can vary from run to run.
	AccumulateAtomic Accumulation = "atomic"
)

var accumulations = map[Accumulation]string{
	AccumulateMerge:  "per-worker rows merged after join",
	AccumulateAtomic: "shared slots with atomic add",
}

// Accumulations returns the names of every accumulation mode, sorted.
func Accumulations() []string {
	names := make([]string, 0, len(accumulations))
	for a := range accumulations {
		names = append(names, string(a))
	}
	sort.Strings(names)
	return names
}

// ParseAccumulation resolves a mode name.
func ParseAccumulation(name string) (Accumulation, error) {
	a := Accumulation(name)
	if _, ok := accumulations[a]; !ok {
		return "", apperrors.ValidationError{
			Field:   "accumulation",
			Message: fmt.Sprintf("unknown mode %q (available: %v)", name, Accumulations()),
		}
	}
	return a, nil
}

// Describe returns a short human-readable description of the mode.
func (a Accumulation) Describe() string {
	return accumulations[a]
}

// Accumulator collects one partial sum per worker per iteration.
// Add is safe for concurrent use by distinct workers; Sums must only be
// called once every worker has returned.
type Accumulator struct {
	mode       Accumulation
	iterations int
	rows       [][]float64
	shared     []atomic.Uint64
}

// NewAccumulator allocates the slots for the given number of workers and
// iterations.
func NewAccumulator(mode Accumulation, workers, iterations int) (*Accumulator, error) {
	if workers <= 0 {
		return nil, apperrors.ValidationError{Field: "threads", Message: fmt.Sprintf("must be positive, got %d", workers)}
	}
	if iterations < 0 {
		return nil, apperrors.ValidationError{Field: "iterations", Message: fmt.Sprintf("must not be negative, got %d", iterations)}
	}
	acc := &Accumulator{mode: mode, iterations: iterations}
	switch mode {
	case AccumulateMerge:
		backing := make([]float64, workers*iterations)
		acc.rows = make([][]float64, workers)
		for k := range acc.rows {
			acc.rows[k] = backing[k*iterations : (k+1)*iterations : (k+1)*iterations]
		}
	case AccumulateAtomic:
		acc.shared = make([]atomic.Uint64, iterations)
	default:
		_, err := ParseAccumulation(string(mode))
		return nil, err
	}
	return acc, nil
}

// Mode returns the accumulation mode.
func (a *Accumulator) Mode() Accumulation { return a.mode }

// Add records the partial sum of worker for iteration it.
func (a *Accumulator) Add(worker, it int, sum float64) {
	if a.mode == AccumulateMerge {
		a.rows[worker][it] += sum
		return
	}
	slot := &a.shared[it]
	for {
		old := slot.Load()
		next := math.Float64bits(math.Float64frombits(old) + sum)
		if slot.CompareAndSwap(old, next) {
			return
		}
	}
}

// Sums returns the combined sum of Y for every iteration.
func (a *Accumulator) Sums() []float64 {
	sums := make([]float64, a.iterations)
	if a.mode == AccumulateMerge {
		for _, row := range a.rows {
			for it, v := range row {
				sums[it] += v
			}
		}
		return sums
	}
	for it := range a.shared {
		sums[it] = math.Float64frombits(a.shared[it].Load())
	}
	return sums
}

// Finalize turns per-iteration sums into means by dividing each slot by n,
// in place, and returns sums. With n == 0 there is nothing to average and the
// slots are left at zero.
func Finalize(sums []float64, n int) []float64 {
	if n == 0 {
		return sums
	}
	d := float64(n)
	for it := range sums {
		sums[it] /= d
	}
	return sums
}
