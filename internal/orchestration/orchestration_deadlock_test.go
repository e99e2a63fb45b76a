package orchestration

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/agbru/saxpy/internal/saxpy"
)

// slowReporter consumes updates far slower than they are produced.
func slowReporter(wg *sync.WaitGroup, ch <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	for range ch {
		time.Sleep(5 * time.Millisecond)
	}
}

func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("ExecuteRuns did not return: possible deadlock")
	}
}

func TestExecuteRuns_NoDeadlockWithSlowReporter(t *testing.T) {
	t.Parallel()
	spec := RunSpec{
		N:          50_000,
		Seed:       1,
		Threads:    8,
		Iterations: 200,
		Modes:      []saxpy.Accumulation{saxpy.AccumulateMerge, saxpy.AccumulateAtomic, saxpy.AccumulateMerge},
		GCMode:     "disabled",
	}
	runWithTimeout(t, 30*time.Second, func() {
		results := ExecuteRuns(context.Background(), spec, ProgressReporterFunc(slowReporter), io.Discard)
		for _, r := range results {
			if r.Err != nil {
				t.Errorf("unexpected error: %v", r.Err)
			}
		}
	})
}

func TestExecuteRuns_NoDeadlockWithManyThreads(t *testing.T) {
	t.Parallel()
	spec := RunSpec{
		N:          3,
		Seed:       1,
		Threads:    256,
		Iterations: 50,
		Modes:      []saxpy.Accumulation{saxpy.AccumulateAtomic},
		GCMode:     "disabled",
	}
	runWithTimeout(t, 10*time.Second, func() {
		results := ExecuteRuns(context.Background(), spec, NullProgressReporter{}, io.Discard)
		if results[0].Err != nil {
			t.Errorf("unexpected error: %v", results[0].Err)
		}
	})
}
