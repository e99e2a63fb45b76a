package format

import (
	"strconv"
	"strings"
)

// FormatVector renders values as "[ v0, v1, ... ]" with six decimals, the
// layout of the debug dump.
func FormatVector(values []float64) string {
	var b strings.Builder
	b.Grow(len(values)*10 + 4)
	b.WriteString("[ ")
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(v, 'f', 6, 64))
	}
	b.WriteString(" ]")
	return b.String()
}

// FormatTail renders up to the last k values separated by ", " with six
// decimals.
func FormatTail(values []float64, k int) string {
	parts := make([]string, 0, k)
	for _, v := range Tail(values, k) {
		parts = append(parts, strconv.FormatFloat(v, 'f', 6, 64))
	}
	return strings.Join(parts, ", ")
}

// Tail returns the last k elements of values, or all of them if there are
// fewer than k.
func Tail(values []float64, k int) []float64 {
	if k <= 0 {
		return nil
	}
	if len(values) <= k {
		return values
	}
	return values[len(values)-k:]
}
