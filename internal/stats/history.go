package stats

// DefaultHistorySize is the number of samples the chart shows.
const DefaultHistorySize = 60

// History is a fixed-capacity FIFO of RateSample backed by a ring buffer.
// Appending to a full history evicts the oldest sample.
// It is not safe for concurrent use.
type History struct {
	buf   []RateSample
	start int
	size  int
}

// NewHistory creates a history holding at most capacity samples.
// A non-positive capacity falls back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{buf: make([]RateSample, capacity)}
}

// Push appends s, evicting the oldest sample when full.
func (h *History) Push(s RateSample) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = s
		h.size++
		return
	}
	h.buf[h.start] = s
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of samples held.
func (h *History) Len() int { return h.size }

// Cap returns the maximum number of samples held.
func (h *History) Cap() int { return len(h.buf) }

// Samples returns a copy of the held samples, oldest first.
func (h *History) Samples() []RateSample {
	out := make([]RateSample, h.size)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Latest returns the newest sample and false when the history is empty.
func (h *History) Latest() (RateSample, bool) {
	if h.size == 0 {
		return RateSample{}, false
	}
	return h.buf[(h.start+h.size-1)%len(h.buf)], true
}

// Clear drops every sample.
func (h *History) Clear() {
	h.start, h.size = 0, 0
}
