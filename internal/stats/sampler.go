package stats

import (
	"math"
	"time"

	"github.com/shini4i/bandwidth-monitor/internal/netstat"
)

// TickResult is what one Sampler.Tick produced.
type TickResult struct {
	// Sample is the delta appended to the history.
	Sample RateSample
	// History is a copy of the window after the append, oldest first.
	History []RateSample
	// Baseline is true when no previous reading existed and the delta is zero.
	Baseline bool
	// CounterReset is true when a counter went backwards and was clamped.
	CounterReset bool
}

// Sampler derives per-interval deltas from successive counter snapshots.
// It is passive: the caller decides the cadence. It is not safe for
// concurrent use and is meant to be owned by a single goroutine.
type Sampler struct {
	iface       string
	prev        netstat.Snapshot
	hasBaseline bool
	history     *History

	sessionSent uint64
	sessionRecv uint64
}

// NewSampler creates a sampler for iface keeping capacity samples.
func NewSampler(iface string, capacity int) *Sampler {
	return &Sampler{
		iface:   iface,
		history: NewHistory(capacity),
	}
}

// Interface returns the interface the sampler is currently tracking.
func (s *Sampler) Interface() string { return s.iface }

// Reset switches the sampler to iface. The next tick becomes a baseline so no
// delta is ever computed across two interfaces' counters. Session totals restart;
// the history window is kept so the chart keeps scrolling.
func (s *Sampler) Reset(iface string) {
	s.iface = iface
	s.prev = netstat.Snapshot{}
	s.hasBaseline = false
	s.sessionSent = 0
	s.sessionRecv = 0
}

// Prime stores snap as the reference reading without recording a sample, so
// the first Tick after it already reports a real delta.
func (s *Sampler) Prime(snap netstat.Snapshot, present bool) {
	s.prev = snap
	s.hasBaseline = present
}

// Tick records the reading taken at now.
// When present is false the interface could not be found: a zero sample is
// recorded and the baseline dropped, so the reading after it reappears is not
// compared against stale counters.
func (s *Sampler) Tick(snap netstat.Snapshot, present bool, now time.Time) TickResult {
	var res TickResult

	switch {
	case !present:
		s.hasBaseline = false
		res.Baseline = true
	case !s.hasBaseline:
		s.prev = snap
		s.hasBaseline = true
		res.Baseline = true
	default:
		up, upReset := counterDelta(s.prev.BytesSent, snap.BytesSent)
		down, downReset := counterDelta(s.prev.BytesRecv, snap.BytesRecv)
		res.Sample.Upload = up
		res.Sample.Download = down
		res.CounterReset = upReset || downReset
		s.prev = snap
		s.sessionSent += uint64(up)
		s.sessionRecv += uint64(down)
	}

	res.Sample.Timestamp = now
	s.history.Push(res.Sample)
	res.History = s.history.Samples()
	return res
}

// History returns a copy of the current window, oldest first.
func (s *Sampler) History() []RateSample {
	return s.history.Samples()
}

// Capacity returns the window size.
func (s *Sampler) Capacity() int {
	return s.history.Cap()
}

// SessionTotals returns the bytes sent and received since the last Reset.
func (s *Sampler) SessionTotals() (sent, recv uint64) {
	return s.sessionSent, s.sessionRecv
}

// counterDelta returns cur-prev, or 0 with reset=true when the counter went
// backwards (wraparound or the OS reset it).
func counterDelta(prev, cur uint64) (delta int64, reset bool) {
	if cur < prev {
		return 0, true
	}
	d := cur - prev
	if d > math.MaxInt64 {
		return math.MaxInt64, false
	}
	return int64(d), false
}
