package saxpy

import (
	"fmt"

	apperrors "github.com/agbru/saxpy/internal/errors"
)

// Range is the half-open index interval [Lo, Hi) owned by one worker.
type Range struct {
	Lo, Hi int
}

// Len returns the number of elements in the range.
func (r Range) Len() int { return r.Hi - r.Lo }

// Empty reports whether the range holds no elements.
func (r Range) Empty() bool { return r.Hi <= r.Lo }

// String formats the range as [lo, hi).
func (r Range) String() string { return fmt.Sprintf("[%d, %d)", r.Lo, r.Hi) }

// Partition computes the t+1 boundaries that split n elements into t
// contiguous ranges. Boundary k is floor(n*k/t), so range sizes differ by at
// most one and worker 0 receives the lowest indices. When t > n some ranges
// are empty.
//
// The product n*k is formed in 64 bits so that n up to 2^31-1 with large
// thread counts cannot overflow on 32-bit platforms.
func Partition(n, t int) ([]int, error) {
	if t <= 0 {
		return nil, apperrors.ValidationError{Field: "threads", Message: fmt.Sprintf("must be positive, got %d", t)}
	}
	if n < 0 {
		return nil, apperrors.ValidationError{Field: "n", Message: fmt.Sprintf("must not be negative, got %d", n)}
	}
	bounds := make([]int, t+1)
	for k := 1; k < t; k++ {
		bounds[k] = int(int64(n) * int64(k) / int64(t))
	}
	bounds[t] = n
	return bounds, nil
}

// Ranges converts partition boundaries into the ranges they delimit.
func Ranges(bounds []int) []Range {
	if len(bounds) < 2 {
		return nil
	}
	ranges := make([]Range, len(bounds)-1)
	for k := range ranges {
		ranges[k] = Range{Lo: bounds[k], Hi: bounds[k+1]}
	}
	return ranges
}
