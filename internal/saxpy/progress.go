package saxpy

import "sync/atomic"

// workerCounter is padded to a cache line so that neighbouring workers do
// not contend on the same line when ticking.
type workerCounter struct {
	done atomic.Int64
	_    [56]byte
}

// Progress counts completed iterations per worker. It is written by the
// workers and may be read concurrently by a display goroutine.
// A nil *Progress ignores all updates.
type Progress struct {
	counters   []workerCounter
	iterations int
}

// NewProgress creates a tracker for the given workers and iterations.
func NewProgress(workers, iterations int) *Progress {
	return &Progress{
		counters:   make([]workerCounter, workers),
		iterations: iterations,
	}
}

func (p *Progress) tick(worker int) {
	if p == nil {
		return
	}
	p.counters[worker].done.Add(1)
}

func (p *Progress) complete(worker int) {
	if p == nil {
		return
	}
	p.counters[worker].done.Store(int64(p.iterations))
}

// Workers returns the number of tracked workers.
func (p *Progress) Workers() int {
	if p == nil {
		return 0
	}
	return len(p.counters)
}

// WorkerFraction returns the completed fraction (0.0 to 1.0) of one worker.
func (p *Progress) WorkerFraction(worker int) float64 {
	if p == nil || worker < 0 || worker >= len(p.counters) {
		return 0
	}
	if p.iterations == 0 {
		return 1
	}
	return float64(p.counters[worker].done.Load()) / float64(p.iterations)
}

// Fraction returns the completed fraction (0.0 to 1.0) across all workers.
func (p *Progress) Fraction() float64 {
	if p == nil || len(p.counters) == 0 {
		return 0
	}
	if p.iterations == 0 {
		return 1
	}
	var done int64
	for k := range p.counters {
		done += p.counters[k].done.Load()
	}
	return float64(done) / float64(int64(p.iterations)*int64(len(p.counters)))
}
