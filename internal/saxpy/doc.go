// Package saxpy implements the iterative parallel SAXPY kernel.
//
// A Kernel splits an N-element workload into T contiguous index ranges
// (Partition), runs one worker goroutine per range for I iterations of
// Y[i] += a*X[i], and collects the per-iteration sum of Y through an
// Accumulator. After every worker has been joined the sums are divided by N
// to give the per-iteration mean of Y.
//
// Workers own disjoint sub-slices of Y, so the vector is updated without
// locks. The only state written by several workers is the accumulator, which
// is either merged after the join (AccumulateMerge) or combined with atomic
// compare-and-swap adds (AccumulateAtomic).
package saxpy
