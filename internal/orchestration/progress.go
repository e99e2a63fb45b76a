package orchestration

import "time"

// ProgressAggregator merges the progress samples of a batch into a single
// overall fraction with an ETA. Both CLI and TUI use this to avoid
// duplicating the aggregation logic.
type ProgressAggregator struct {
	values  []float64
	started time.Time
	now     func() time.Time
}

// NewProgressAggregator creates a new aggregator for the given number
// of runs. Returns nil if numRuns <= 0.
func NewProgressAggregator(numRuns int) *ProgressAggregator {
	if numRuns <= 0 {
		return nil
	}
	return &ProgressAggregator{
		values:  make([]float64, numRuns),
		started: time.Now(),
		now:     time.Now,
	}
}

// AggregatedProgress holds the result of processing a single progress update.
type AggregatedProgress struct {
	// RunIndex is the index of the run that sent the update.
	RunIndex int
	// Value is the raw progress value from the update (0.0 to 1.0).
	Value float64
	// AverageProgress is the aggregated average across all runs.
	AverageProgress float64
	// ETA is the estimated time remaining, 0 when unknown.
	ETA time.Duration
}

// Update processes a single progress update and returns the aggregated result.
// Out-of-range indices are ignored.
func (a *ProgressAggregator) Update(update ProgressUpdate) AggregatedProgress {
	if update.RunIndex >= 0 && update.RunIndex < len(a.values) {
		a.values[update.RunIndex] = min(max(update.Value, 0), 1)
	}
	return AggregatedProgress{
		RunIndex:        update.RunIndex,
		Value:           update.Value,
		AverageProgress: a.CalculateAverage(),
		ETA:             a.GetETA(),
	}
}

// CalculateAverage returns the current average progress without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	var total float64
	for _, v := range a.values {
		total += v
	}
	return total / float64(len(a.values))
}

// GetETA extrapolates the remaining time from the elapsed time and the
// average progress.
func (a *ProgressAggregator) GetETA() time.Duration {
	p := a.CalculateAverage()
	if p <= 0 || p >= 1 {
		return 0
	}
	elapsed := a.now().Sub(a.started)
	return time.Duration(float64(elapsed) * (1 - p) / p)
}

// NumRuns returns the number of runs being tracked.
func (a *ProgressAggregator) NumRuns() int {
	return len(a.values)
}

// IsMultiRun returns true if tracking more than one run.
func (a *ProgressAggregator) IsMultiRun() bool {
	return len(a.values) > 1
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}
