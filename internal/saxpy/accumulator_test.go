package saxpy

import (
	"errors"
	"math"
	"slices"
	"sync"
	"testing"

	apperrors "github.com/agbru/saxpy/internal/errors"
)

func TestParseAccumulation(t *testing.T) {
	t.Parallel()
	for _, name := range Accumulations() {
		a, err := ParseAccumulation(name)
		if err != nil {
			t.Errorf("ParseAccumulation(%q) failed: %v", name, err)
		}
		if a.Describe() == "" {
			t.Errorf("mode %q has no description", name)
		}
	}
	if _, err := ParseAccumulation("racy"); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown mode, got %v", err)
	}
	if !slices.Equal(Accumulations(), []string{"atomic", "merge"}) {
		t.Errorf("Accumulations() = %v", Accumulations())
	}
}

func TestAccumulator_ConcurrentAdds(t *testing.T) {
	t.Parallel()
	const workers, iterations = 32, 50

	for _, mode := range []Accumulation{AccumulateMerge, AccumulateAtomic} {
		t.Run(string(mode), func(t *testing.T) {
			t.Parallel()
			acc, err := NewAccumulator(mode, workers, iterations)
			if err != nil {
				t.Fatal(err)
			}

			var wg sync.WaitGroup
			barrier := make(chan struct{})
			wg.Add(workers)
			for w := range workers {
				go func() {
					defer wg.Done()
					<-barrier
					for it := range iterations {
						acc.Add(w, it, float64(it+1))
					}
				}()
			}
			close(barrier)
			wg.Wait()

			// Small integers are exact in float64, so order cannot matter.
			for it, got := range acc.Sums() {
				if want := float64(workers * (it + 1)); got != want {
					t.Errorf("slot %d = %v, want %v", it, got, want)
				}
			}
		})
	}
}

func TestNewAccumulator_Invalid(t *testing.T) {
	t.Parallel()
	if _, err := NewAccumulator(AccumulateMerge, 0, 10); err == nil {
		t.Error("expected error for zero workers")
	}
	if _, err := NewAccumulator("shared", 2, 10); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown mode, got %v", err)
	}
}

func TestFinalize(t *testing.T) {
	t.Parallel()
	got := Finalize([]float64{8, 16, 2}, 4)
	if !slices.Equal(got, []float64{2, 4, 0.5}) {
		t.Errorf("Finalize = %v", got)
	}
	zero := Finalize([]float64{0, 0}, 0)
	for _, v := range zero {
		if math.IsNaN(v) {
			t.Error("Finalize with n = 0 must not produce NaN")
		}
	}
}
