package tui

import "testing"

func TestHistoryWindow(t *testing.T) {
	t.Parallel()
	h := NewHistory(3)
	for _, v := range []float64{10, 20, 30, 40} {
		h.Add(v)
	}
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if h.Last() != 40 {
		t.Errorf("Last() = %v, want 40", h.Last())
	}
	if got := h.samples[0]; got != 20 {
		t.Errorf("oldest sample = %v, want 20", got)
	}
}

func TestHistorySparkline(t *testing.T) {
	t.Parallel()
	h := NewHistory(5)
	for _, v := range []float64{0, 100, -5, 150, 50} {
		h.Add(v)
	}
	want := "▁█▁█▄"
	if got := h.Sparkline(); got != want {
		t.Errorf("Sparkline() = %q, want %q", got, want)
	}
}

func TestHistoryReset(t *testing.T) {
	t.Parallel()
	h := NewHistory(0)
	h.Add(1)
	h.Add(2)
	if h.Len() != 1 {
		t.Errorf("limit clamped to 1, Len() = %d", h.Len())
	}
	h.Reset()
	if h.Len() != 0 || h.Last() != 0 || h.Sparkline() != "" {
		t.Error("Reset did not clear the history")
	}
}
