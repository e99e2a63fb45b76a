package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/saxpy/internal/errors"
	"github.com/agbru/saxpy/internal/orchestration"
	"github.com/agbru/saxpy/internal/saxpy"
)

func testSpec() orchestration.RunSpec {
	return orchestration.RunSpec{
		N:          4,
		Seed:       1,
		Threads:    2,
		Iterations: 2,
		Modes:      []saxpy.Accumulation{saxpy.AccumulateMerge, saxpy.AccumulateAtomic},
	}
}

// newTestModel builds a model whose batch command never runs a kernel.
func newTestModel(t *testing.T) (Model, *int) {
	t.Helper()
	starts := 0
	m := NewModel(context.Background(), testSpec(), orchestration.PresentationOptions{}, "v1.0.0")
	m.start = func(sender, context.Context, orchestration.RunSpec, orchestration.PresentationOptions, uint64) tea.Cmd {
		starts++
		return nil
	}
	t.Cleanup(func() { m.cancel() })
	return m, &starts
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewBeforeWindowSize(t *testing.T) {
	m, _ := newTestModel(t)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}

func TestInitStartsBatch(t *testing.T) {
	m, starts := newTestModel(t)
	if cmd := m.Init(); cmd == nil {
		t.Fatal("Init returned nil command")
	}
	if *starts != 1 {
		t.Errorf("start called %d times, want 1", *starts)
	}
}

func TestProgressUpdatesRunBar(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, ProgressMsg{RunIndex: 1, Value: 0.5, AverageProgress: 0.25, ETA: time.Second})

	if m.progress[1] != 0.5 {
		t.Errorf("progress[1] = %v, want 0.5", m.progress[1])
	}
	if m.average != 0.25 {
		t.Errorf("average = %v, want 0.25", m.average)
	}
	view := m.View()
	for _, want := range []string{"merge", "atomic", "50.00%", "overall", "ETA"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestProgressOutOfRangeIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, ProgressMsg{RunIndex: 7, Value: 1})
	for i, v := range m.progress {
		if v != 0 {
			t.Errorf("progress[%d] = %v, want 0", i, v)
		}
	}
}

func TestPauseFreezesProgress(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.paused {
		t.Fatal("space did not pause")
	}
	m, _ = update(t, m, ProgressMsg{RunIndex: 0, Value: 0.9})
	if m.progress[0] != 0 {
		t.Errorf("progress updated while paused: %v", m.progress[0])
	}
	m, _ = update(t, m, runes("p"))
	if m.paused {
		t.Error("p did not resume")
	}
}

func TestRunCompleteStaleGenerationIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m.generation = 2
	m, _ = update(t, m, RunCompleteMsg{ExitCode: apperrors.ExitErrorMismatch, Generation: 1})
	if m.done {
		t.Error("stale RunCompleteMsg marked the model done")
	}
	m, _ = update(t, m, RunCompleteMsg{ExitCode: apperrors.ExitErrorMismatch, Generation: 2})
	if !m.done || m.exitCode != apperrors.ExitErrorMismatch {
		t.Errorf("done=%v exitCode=%d, want true/%d", m.done, m.exitCode, apperrors.ExitErrorMismatch)
	}
}

func TestResetOnlyWhenDone(t *testing.T) {
	m, starts := newTestModel(t)

	m, cmd := update(t, m, runes("r"))
	if cmd != nil || m.generation != 0 || *starts != 0 {
		t.Fatalf("reset while running: generation=%d starts=%d", m.generation, *starts)
	}

	m, _ = update(t, m, RunCompleteMsg{ExitCode: apperrors.ExitSuccess, Generation: 0})
	m.progress[0] = 1
	m, cmd = update(t, m, runes("r"))
	if cmd == nil {
		t.Fatal("reset after completion returned nil command")
	}
	if m.generation != 1 || m.done || *starts != 1 {
		t.Errorf("after reset: generation=%d done=%v starts=%d", m.generation, m.done, *starts)
	}
	if m.progress[0] != 0 {
		t.Error("reset did not clear progress")
	}
}

func TestQuitWhileRunning(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("quit returned nil command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not produce tea.QuitMsg")
	}
	if m.exitCode != apperrors.ExitErrorGeneric {
		t.Errorf("exitCode = %d, want %d", m.exitCode, apperrors.ExitErrorGeneric)
	}
	if m.ctx.Err() == nil {
		t.Error("quit did not cancel the context")
	}
}

func TestQuitAfterCompletionKeepsExitCode(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, RunCompleteMsg{ExitCode: apperrors.ExitSuccess})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if m.exitCode != apperrors.ExitSuccess {
		t.Errorf("exitCode = %d, want %d", m.exitCode, apperrors.ExitSuccess)
	}
}

func TestContextCancelledQuits(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := update(t, m, ContextCancelledMsg{Err: context.Canceled})
	if cmd == nil {
		t.Fatal("ContextCancelledMsg returned nil command")
	}
	if !m.done || m.exitCode != apperrors.ExitErrorGeneric {
		t.Errorf("done=%v exitCode=%d", m.done, m.exitCode)
	}
}

func TestSysStatsFeedSparklines(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100})
	m, _ = update(t, m, SysStatsMsg{CPUPercent: 42, MemPercent: 10})
	if m.cpu.Last() != 42 || m.mem.Last() != 10 {
		t.Errorf("cpu=%v mem=%v", m.cpu.Last(), m.mem.Last())
	}
	if !strings.Contains(m.View(), "CPU") {
		t.Error("View() missing CPU sparkline")
	}
}

func TestResultView(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120})
	res := orchestration.RunResult{
		Mode: saxpy.AccumulateMerge,
		Result: &saxpy.Result{
			Y:        []float64{4, 4, 4, 4},
			Averages: []float64{2, 4},
			Elapsed:  time.Millisecond,
		},
	}
	m, _ = update(t, m, FinalResultMsg{Result: res})
	m, _ = update(t, m, RunCompleteMsg{ExitCode: apperrors.ExitSuccess})

	view := m.View()
	for _, want := range []string{"merge accumulation", "4.000000, 4.000000, 4.000000", "2.000000, 4.000000", "done in"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestErrorView(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120})
	m, _ = update(t, m, ErrorMsg{Err: errors.New("worker 1 crashed")})
	m, _ = update(t, m, RunCompleteMsg{ExitCode: apperrors.ExitErrorWorker})

	view := m.View()
	if !strings.Contains(view, "worker 1 crashed") || !strings.Contains(view, "failed") {
		t.Errorf("View() = %q, want error and failed status", view)
	}
}

func TestRenderBarClamps(t *testing.T) {
	t.Parallel()
	for _, p := range []float64{-1, 0, 0.5, 1, 2} {
		if got := renderBar(p, 10); strings.Count(got, "█")+strings.Count(got, "░") != 10 {
			t.Errorf("renderBar(%v) = %q, want 10 cells", p, got)
		}
	}
}
