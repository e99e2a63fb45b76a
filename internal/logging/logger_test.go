package logging

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// TestFieldHelpers tests the Field constructor functions.
func TestFieldHelpers(t *testing.T) {
	testErr := errors.New("worker crashed")
	tests := []struct {
		name  string
		field Field
		key   string
		value any
	}{
		{"String", String("mode", "merge"), "mode", "merge"},
		{"Int", Int("threads", 16), "threads", 16},
		{"Uint64", Uint64("seed", 18446744073709551615), "seed", uint64(18446744073709551615)},
		{"Float64", Float64("a", 0.25), "a", 0.25},
		{"Duration", Duration("elapsed", time.Second), "elapsed", time.Second},
		{"Err", Err(testErr), "error", testErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.key {
				t.Errorf("Key = %q, want %q", tt.field.Key, tt.key)
			}
			if tt.field.Value != tt.value {
				t.Errorf("Value = %v, want %v", tt.field.Value, tt.value)
			}
		})
	}

	t.Run("Err with nil error", func(t *testing.T) {
		f := Err(nil)
		if f.Value != nil {
			t.Errorf("Err(nil).Value = %v, want nil", f.Value)
		}
	})
}

// TestNewLogger checks that the component tag and message reach the output.
func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "kernel")

	logger.Info("phase changed", String("phase", "running"), Int("workers", 4))
	output := buf.String()

	for _, want := range []string{`"component":"kernel"`, "phase changed", "running", `"workers":4`} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got: %s", want, output)
		}
	}
}

// TestZerologAdapter_Error tests the Error method.
func TestZerologAdapter_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fields   []Field
		contains []string
	}{
		{
			name:     "with error",
			err:      errors.New("allocation failed"),
			contains: []string{"run failed", "allocation failed", "error"},
		},
		{
			name:     "with nil error",
			contains: []string{"run failed", "error"},
		},
		{
			name:     "with error and fields",
			err:      errors.New("boom"),
			fields:   []Field{Int("worker", 3), Float64("progress", 0.5)},
			contains: []string{"boom", `"worker":3`, "0.5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewLogger(&buf, "test").Error("run failed", tt.err, tt.fields...)

			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("output should contain %q, got: %s", want, output)
				}
			}
		})
	}
}

// TestZerologAdapter_Debug verifies debug events honour the logger level.
func TestZerologAdapter_Debug(t *testing.T) {
	var buf bytes.Buffer
	NewZerologAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel)).Debug("partitioned", Int("ranges", 8))
	if !strings.Contains(buf.String(), "partitioned") {
		t.Errorf("debug output should contain message, got: %s", buf.String())
	}

	buf.Reset()
	NewZerologAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel)).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug event should be filtered at info level, got: %s", buf.String())
	}
}

// TestZerologAdapter_applyFields tests field application with all supported types.
func TestZerologAdapter_applyFields(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		contains string
	}{
		{"string field", Field{Key: "str", Value: "atomic"}, "atomic"},
		{"int field", Field{Key: "num", Value: 42}, "42"},
		{"int64 field", Field{Key: "big", Value: int64(9223372036854775807)}, "9223372036854775807"},
		{"uint64 field", Field{Key: "huge", Value: uint64(18446744073709551615)}, "18446744073709551615"},
		{"float64 field", Field{Key: "avg", Value: 3.14}, "3.14"},
		{"error field", Field{Key: "err", Value: errors.New("oops")}, "oops"},
		{"bool field", Field{Key: "verify", Value: true}, "true"},
		{"interface field", Field{Key: "range", Value: struct{ Lo, Hi int }{Lo: 2, Hi: 7}}, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewLogger(&buf, "test").Info("test", tt.field)
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("applyFields should handle %s, output: %s", tt.name, buf.String())
			}
		})
	}
}

func TestZerologAdapter_PrintfPrintln(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")

	logger.Printf("N=%d T=%d", 1000, 4)
	logger.Println("iterations", 10)

	output := buf.String()
	if !strings.Contains(output, "N=1000 T=4") {
		t.Errorf("Printf should format message, got: %s", output)
	}
	if !strings.Contains(output, "iterations 10") {
		t.Errorf("Println should join arguments, got: %s", output)
	}
}

// TestStdLoggerAdapter covers every level of the stdlib adapter.
func TestStdLoggerAdapter(t *testing.T) {
	tests := []struct {
		name     string
		log      func(Logger)
		contains []string
	}{
		{
			name:     "info",
			log:      func(l Logger) { l.Info("run started", String("mode", "merge")) },
			contains: []string{"[INFO]", "run started", "mode=merge"},
		},
		{
			name:     "debug",
			log:      func(l Logger) { l.Debug("worker done", Int("worker", 2)) },
			contains: []string{"[DEBUG]", "worker done", "worker=2"},
		},
		{
			name:     "error",
			log:      func(l Logger) { l.Error("run failed", errors.New("boom"), Int("threads", 4)) },
			contains: []string{"[ERROR]", "run failed", "boom", "threads=4"},
		},
		{
			name:     "printf",
			log:      func(l Logger) { l.Printf("value is %d", 123) },
			contains: []string{"value is 123"},
		},
		{
			name:     "println",
			log:      func(l Logger) { l.Println("a", "b") },
			contains: []string{"a b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewStdLoggerAdapter(log.New(&buf, "", 0)))
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output should contain %q, got: %s", want, buf.String())
				}
			}
		})
	}
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("discarded")
	if logger.Zerolog().GetLevel() != zerolog.Disabled {
		t.Errorf("nop logger level = %v, want disabled", logger.Zerolog().GetLevel())
	}
}
