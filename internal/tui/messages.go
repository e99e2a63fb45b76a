package tui

import (
	"time"

	"github.com/agbru/saxpy/internal/orchestration"
)

// ProgressMsg carries an aggregated progress sample.
type ProgressMsg struct {
	RunIndex        int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// ProgressDoneMsg signals that the progress channel was closed.
type ProgressDoneMsg struct{}

// ComparisonResultsMsg carries every run of a multi-mode batch.
type ComparisonResultsMsg struct {
	Results []orchestration.RunResult
}

// FinalResultMsg carries the run selected for presentation.
type FinalResultMsg struct {
	Result  orchestration.RunResult
	Options orchestration.PresentationOptions
}

// ErrorMsg reports a failed batch.
type ErrorMsg struct {
	Err      error
	Duration time.Duration
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// SysStatsMsg carries a host CPU and memory sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// RunCompleteMsg is sent when the batch has been analyzed.
type RunCompleteMsg struct {
	ExitCode   int
	Results    []orchestration.RunResult
	Generation uint64
}

// ContextCancelledMsg is sent when the session context ends.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
