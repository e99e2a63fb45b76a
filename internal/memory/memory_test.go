package memory

import (
	"bytes"
	"errors"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/saxpy/internal/errors"
)

func TestEstimateRun(t *testing.T) {
	t.Parallel()
	merge := EstimateRun(1000, 4, 10, true)
	if merge.VectorBytes != 16000 {
		t.Errorf("VectorBytes = %d, want 16000", merge.VectorBytes)
	}
	if merge.AccumulatorBytes != 5*10*8 {
		t.Errorf("AccumulatorBytes = %d, want 400", merge.AccumulatorBytes)
	}
	if merge.TotalBytes != 16400 {
		t.Errorf("TotalBytes = %d, want 16400", merge.TotalBytes)
	}

	shared := EstimateRun(1000, 4, 10, false)
	if shared.AccumulatorBytes != 2*10*8 {
		t.Errorf("shared AccumulatorBytes = %d, want 160", shared.AccumulatorBytes)
	}
	if !strings.Contains(merge.String(), "vectors 15.6 KB") {
		t.Errorf("String() = %q", merge.String())
	}
}

func TestParseLimit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"1048576", 1 << 20, false},
		{"512MB", 512 << 20, false},
		{"512mb", 512 << 20, false},
		{"2G", 2 << 30, false},
		{"4GiB", 4 << 30, false},
		{"8K", 8 << 10, false},
		{" 1TB ", 1 << 40, false},
		{"", 0, true},
		{"lots", 0, true},
		{"-5MB", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLimit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLimit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("ParseLimit(%q) should return ConfigError, got %T", tt.in, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()
	est := Estimate{TotalBytes: 1000}
	tests := []struct {
		name             string
		limit, available uint64
		wantErr          bool
	}{
		{"no limits", 0, 0, false},
		{"fits both", 2000, 4000, false},
		{"exceeds limit", 500, 4000, true},
		{"exceeds available", 0, 999, true},
	}
	for _, tt := range tests {
		err := Check(est, tt.limit, tt.available)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Check error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && apperrors.ExitCodeFor(err) != apperrors.ExitErrorMemory {
			t.Errorf("%s: expected memory exit code for %v", tt.name, err)
		}
	}
}

func TestNewGCController_Modes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		mode   string
		n      int
		active bool
	}{
		{"aggressive", 10, true},
		{"auto", GCAutoThreshold - 1, false},
		{"auto", GCAutoThreshold, true},
		{"disabled", GCAutoThreshold * 10, false},
		{"bogus", GCAutoThreshold * 10, false},
	}
	for _, tt := range tests {
		if got := NewGCController(tt.mode, tt.n).Active(); got != tt.active {
			t.Errorf("NewGCController(%q, %d).Active() = %v, want %v", tt.mode, tt.n, got, tt.active)
		}
	}
}

// TestGCController_BeginEndRestores must not run in parallel: it toggles the
// process-wide GC percent.
func TestGCController_BeginEndRestores(t *testing.T) {
	before := debug.SetGCPercent(100)
	defer debug.SetGCPercent(before)

	var buf bytes.Buffer
	gc := NewGCController("aggressive", 0)
	gc.SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	gc.Begin()
	if pct := debug.SetGCPercent(-1); pct != -1 {
		t.Errorf("GC percent during Begin = %d, want -1", pct)
	}
	gc.End()

	if pct := debug.SetGCPercent(100); pct != 100 {
		t.Errorf("GC percent after End = %d, want 100", pct)
	}
	if !strings.Contains(buf.String(), "gc suspended") || !strings.Contains(buf.String(), "gc restored") {
		t.Errorf("expected begin and end log events, got %s", buf.String())
	}
	_ = gc.Stats()
}
