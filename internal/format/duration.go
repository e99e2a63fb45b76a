package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Millisecond).String()
}

// FormatMilliseconds renders d as fractional milliseconds with six decimals,
// the unit benchmark reports are compared in.
func FormatMilliseconds(d time.Duration) string {
	return fmt.Sprintf("%f ms", float64(d.Nanoseconds())/1e6)
}
