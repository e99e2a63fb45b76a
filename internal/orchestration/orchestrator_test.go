package orchestration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	apperrors "github.com/agbru/saxpy/internal/errors"
	"github.com/agbru/saxpy/internal/metrics"
	"github.com/agbru/saxpy/internal/saxpy"
)

// MockResultPresenter records what it was asked to present.
type MockResultPresenter struct {
	tableRows int
	presented *RunResult
}

func (m *MockResultPresenter) PresentComparisonTable(results []RunResult, _ io.Writer) {
	m.tableRows = len(results)
}

func (m *MockResultPresenter) PresentResult(result RunResult, _ PresentationOptions, _ io.Writer) {
	m.presented = &result
}

type mockErrorHandler struct{}

func (mockErrorHandler) HandleError(err error, _ time.Duration, _ io.Writer) int {
	return apperrors.ExitCodeFor(err)
}

func smallSpec(modes ...saxpy.Accumulation) RunSpec {
	return RunSpec{N: 64, Seed: 3, Threads: 4, Iterations: 5, Modes: modes, GCMode: "disabled"}
}

func TestExecuteRuns(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		spec      RunSpec
		expectErr []bool
	}{
		{"single merge", smallSpec(saxpy.AccumulateMerge), []bool{false}},
		{"all modes", smallSpec(saxpy.AccumulateAtomic, saxpy.AccumulateMerge), []bool{false, false}},
		{"invalid threads", RunSpec{N: 8, Threads: 0, Iterations: 1, Modes: []saxpy.Accumulation{saxpy.AccumulateMerge}}, []bool{true}},
		{"unknown mode", RunSpec{N: 8, Threads: 2, Iterations: 1, Modes: []saxpy.Accumulation{"racy"}}, []bool{true}},
		{"no modes", RunSpec{N: 8, Threads: 2, Iterations: 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results := ExecuteRuns(context.Background(), tt.spec, NullProgressReporter{}, io.Discard)
			if len(results) != len(tt.expectErr) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.expectErr))
			}
			for i, res := range results {
				if res.Mode != tt.spec.Modes[i] {
					t.Errorf("result %d mode = %q, want %q", i, res.Mode, tt.spec.Modes[i])
				}
				if (res.Err != nil) != tt.expectErr[i] {
					t.Errorf("result %d err = %v, expectErr %v", i, res.Err, tt.expectErr[i])
				}
				if res.Err == nil && len(res.Result.Averages) != tt.spec.Iterations {
					t.Errorf("result %d has %d averages, want %d", i, len(res.Result.Averages), tt.spec.Iterations)
				}
			}
		})
	}
}

func TestExecuteRuns_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := ExecuteRuns(ctx, smallSpec(saxpy.AccumulateMerge), NullProgressReporter{}, io.Discard)
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", results[0].Err)
	}
}

func TestExecuteRuns_ProgressReachesCompletion(t *testing.T) {
	t.Parallel()
	var (
		mu   sync.Mutex
		last = map[int]float64{}
	)
	reporter := ProgressReporterFunc(func(wg *sync.WaitGroup, ch <-chan ProgressUpdate, _ int, _ io.Writer) {
		defer wg.Done()
		for u := range ch {
			mu.Lock()
			last[u.RunIndex] = u.Value
			mu.Unlock()
		}
	})

	ExecuteRuns(context.Background(), smallSpec(saxpy.AccumulateMerge, saxpy.AccumulateAtomic), reporter, io.Discard)

	mu.Lock()
	defer mu.Unlock()
	for idx := 0; idx < 2; idx++ {
		if last[idx] != 1.0 {
			t.Errorf("run %d final progress = %v, want 1.0", idx, last[idx])
		}
	}
}

func TestExecuteRuns_RecordsMetrics(t *testing.T) {
	t.Parallel()
	m := metrics.NewKernelMetrics()
	spec := smallSpec(saxpy.AccumulateMerge, "racy")
	spec.Metrics = m

	ExecuteRuns(context.Background(), spec, NullProgressReporter{}, io.Discard)

	count, err := testutil.GatherAndCount(m.Registry(), "saxpy_runs_total")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected a success and a failure series, got %d", count)
	}
}

func TestCompareResults(t *testing.T) {
	t.Parallel()
	base := &saxpy.Result{Y: []float64{1, 2}, Averages: []float64{1.5, 3}}

	tests := []struct {
		name    string
		other   *saxpy.Result
		wantErr bool
	}{
		{"identical", &saxpy.Result{Y: []float64{1, 2}, Averages: []float64{1.5, 3}}, false},
		{"average within tolerance", &saxpy.Result{Y: []float64{1, 2}, Averages: []float64{1.5 * (1 + 1e-12), 3}}, false},
		{"average beyond tolerance", &saxpy.Result{Y: []float64{1, 2}, Averages: []float64{1.5001, 3}}, true},
		{"vector differs", &saxpy.Result{Y: []float64{1, 2.0000001}, Averages: []float64{1.5, 3}}, true},
		{"length differs", &saxpy.Result{Y: []float64{1}, Averages: []float64{1.5, 3}}, true},
		{"iterations differ", &saxpy.Result{Y: []float64{1, 2}, Averages: []float64{1.5}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CompareResults(base, tt.other)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CompareResults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.ErrMismatch) {
				t.Errorf("error should wrap ErrMismatch: %v", err)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()
	spec := smallSpec(saxpy.AccumulateMerge)
	results := ExecuteRuns(context.Background(), spec, NullProgressReporter{}, io.Discard)
	if results[0].Err != nil {
		t.Fatal(results[0].Err)
	}
	if err := Verify(spec, results[0].Result); err != nil {
		t.Errorf("parallel run should match the sequential reference: %v", err)
	}

	tampered := *results[0].Result
	tampered.Y = append([]float64(nil), tampered.Y...)
	tampered.Y[0]++
	if err := Verify(spec, &tampered); apperrors.ExitCodeFor(err) != apperrors.ExitErrorMismatch {
		t.Errorf("tampered result should fail verification with a mismatch, got %v", err)
	}
}

func TestAnalyzeResults(t *testing.T) {
	t.Parallel()
	good := func(mode saxpy.Accumulation, d time.Duration, y float64) RunResult {
		return RunResult{Mode: mode, Duration: d, Result: &saxpy.Result{Y: []float64{y}, Averages: []float64{y}}}
	}

	t.Run("single success presents without table", func(t *testing.T) {
		t.Parallel()
		p := &MockResultPresenter{}
		code := AnalyzeResults([]RunResult{good("merge", time.Millisecond, 4)}, PresentationOptions{}, p, mockErrorHandler{}, io.Discard)
		if code != apperrors.ExitSuccess {
			t.Errorf("code = %d, want success", code)
		}
		if p.tableRows != 0 {
			t.Error("single run should not print a comparison table")
		}
		if p.presented == nil || p.presented.Mode != "merge" {
			t.Error("the run should be presented")
		}
	})

	t.Run("fastest consistent result is presented", func(t *testing.T) {
		t.Parallel()
		p := &MockResultPresenter{}
		var buf bytes.Buffer
		results := []RunResult{good("merge", 3*time.Millisecond, 4), good("atomic", time.Millisecond, 4)}
		code := AnalyzeResults(results, PresentationOptions{}, p, mockErrorHandler{}, &buf)
		if code != apperrors.ExitSuccess {
			t.Errorf("code = %d, want success", code)
		}
		if p.tableRows != 2 {
			t.Errorf("table rows = %d, want 2", p.tableRows)
		}
		if p.presented.Mode != "atomic" {
			t.Errorf("presented %q, want the fastest (atomic)", p.presented.Mode)
		}
		if !strings.Contains(buf.String(), "Success") {
			t.Errorf("expected success status, got %q", buf.String())
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		t.Parallel()
		results := []RunResult{good("merge", time.Millisecond, 4), good("atomic", time.Millisecond, 5)}
		code := AnalyzeResults(results, PresentationOptions{}, &MockResultPresenter{}, mockErrorHandler{}, io.Discard)
		if code != apperrors.ExitErrorMismatch {
			t.Errorf("code = %d, want %d", code, apperrors.ExitErrorMismatch)
		}
	})

	t.Run("worker failure fails the batch", func(t *testing.T) {
		t.Parallel()
		failed := RunResult{Mode: "atomic", Err: apperrors.KernelError{Phase: "running", Cause: apperrors.WorkerError{Worker: 1, Cause: errors.New("boom")}}}
		p := &MockResultPresenter{}
		code := AnalyzeResults([]RunResult{failed, good("merge", time.Millisecond, 4)}, PresentationOptions{}, p, mockErrorHandler{}, io.Discard)
		if code != apperrors.ExitErrorWorker {
			t.Errorf("code = %d, want %d", code, apperrors.ExitErrorWorker)
		}
		if p.presented != nil {
			t.Error("no result should be presented when a run failed")
		}
	})
}
