package saxpy

import (
	"fmt"
	"math/rand/v2"

	apperrors "github.com/agbru/saxpy/internal/errors"
)

// Workload holds the operands of the kernel. X and A are read-only during a
// run; Y is updated in place, each worker touching only its own range.
type Workload struct {
	X []float64
	Y []float64
	A float64
}

// NewWorkload wraps existing vectors. X and Y must have the same length.
func NewWorkload(x, y []float64, a float64) (*Workload, error) {
	if len(x) != len(y) {
		return nil, apperrors.ValidationError{
			Field:   "y",
			Message: fmt.Sprintf("length %d does not match x length %d", len(y), len(x)),
		}
	}
	return &Workload{X: x, Y: y, A: a}, nil
}

// NewRandomWorkload allocates two n-element vectors and fills them from a PCG
// stream seeded with seed. X[i] and Y[i] are drawn alternately, then A, all
// uniform in [0, 1). The same seed always yields the same workload.
func NewRandomWorkload(n int, seed uint64) *Workload {
	rng := rand.New(rand.NewPCG(seed, seed))
	w := &Workload{
		X: make([]float64, n),
		Y: make([]float64, n),
	}
	for i := range n {
		w.X[i] = rng.Float64()
		w.Y[i] = rng.Float64()
	}
	w.A = rng.Float64()
	return w
}

// Len returns the number of elements in the workload.
func (w *Workload) Len() int { return len(w.X) }

// Clone returns a deep copy of the workload.
func (w *Workload) Clone() *Workload {
	return &Workload{
		X: append([]float64(nil), w.X...),
		Y: append([]float64(nil), w.Y...),
		A: w.A,
	}
}

// Reference runs the kernel as a plain sequential double loop over iterations
// and indices, updating w.Y in place, and returns the per-iteration means.
// It is the single-thread baseline the parallel kernel is checked against.
func Reference(w *Workload, iterations int) []float64 {
	avgs := make([]float64, iterations)
	for it := range iterations {
		var sum float64
		for i := range w.Y {
			w.Y[i] += float64(w.A * w.X[i])
			sum += w.Y[i]
		}
		avgs[it] = sum
	}
	return Finalize(avgs, w.Len())
}
