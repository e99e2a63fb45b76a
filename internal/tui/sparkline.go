package tui

// sparkRunes maps levels 0..7 to Unicode block elements.
var sparkRunes = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// History keeps the most recent percentage samples in a fixed-size window.
type History struct {
	samples []float64
	limit   int
}

// NewHistory creates a history keeping at most limit samples.
func NewHistory(limit int) *History {
	return &History{limit: max(limit, 1)}
}

// Add appends a sample, dropping the oldest when the window is full.
func (h *History) Add(v float64) {
	if len(h.samples) == h.limit {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:h.limit-1]
	}
	h.samples = append(h.samples, v)
}

// Last returns the most recent sample, or 0 if there is none.
func (h *History) Last() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	return h.samples[len(h.samples)-1]
}

// Len returns the number of samples held.
func (h *History) Len() int { return len(h.samples) }

// Sparkline renders the samples (0..100) as block characters.
func (h *History) Sparkline() string {
	runes := make([]rune, len(h.samples))
	for i, v := range h.samples {
		level := int(min(max(v, 0), 100) / 100 * 7)
		runes[i] = sparkRunes[level]
	}
	return string(runes)
}

// Reset drops every sample.
func (h *History) Reset() { h.samples = h.samples[:0] }
