// Package monitor runs the periodic sampling loop for one selected interface
// and hands formatted results to the presentation layer.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/shini4i/bandwidth-monitor/internal/netstat"
	"github.com/shini4i/bandwidth-monitor/internal/stats"
)

// DefaultPollInterval is the default interval between counter reads.
const DefaultPollInterval = time.Second

// Options configures a Session.
type Options struct {
	// Interface is monitored initially; empty selects the system-wide total.
	Interface string
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	// HistorySize defaults to stats.DefaultHistorySize.
	HistorySize int
	// Clock defaults to the wall clock.
	Clock clock.Clock
}

// Session owns the timer, the sampler state and the sink for one monitoring run.
// The sampler is touched only by the polling goroutine while the session runs.
type Session struct {
	id       string
	provider netstat.Provider
	sink     Sink
	clock    clock.Clock
	interval time.Duration
	sampler  *stats.Sampler

	mu        sync.RWMutex
	iface     string
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	switchCh  chan string
	startTime time.Time
}

// NewSession creates a stopped session.
func NewSession(provider netstat.Provider, sink Sink, opts Options) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = stats.DefaultHistorySize
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	return &Session{
		id:       uuid.NewString(),
		provider: provider,
		sink:     sink,
		clock:    opts.Clock,
		interval: opts.PollInterval,
		sampler:  stats.NewSampler(opts.Interface, opts.HistorySize),
		iface:    opts.Interface,
		switchCh: make(chan string),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Interface returns the selected interface name.
func (s *Session) Interface() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.iface
}

// Interfaces lists the interfaces that can be selected.
func (s *Session) Interfaces(ctx context.Context) ([]string, error) {
	return s.provider.Interfaces(ctx)
}

// IsRunning returns true if the session is actively polling.
func (s *Session) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Start looks up the selected interface, takes the reference reading and
// begins polling. Starting a running session is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	iface := s.iface
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done
	s.startTime = s.clock.Now()
	s.mu.Unlock()

	s.sampler.Reset(iface)
	s.announce(ctx, iface)
	s.sampler.Prime(s.read(ctx, iface))

	ticker := s.clock.Ticker(s.interval)
	go s.pollLoop(ctx, ticker, done)

	slog.Info("Monitor session started",
		"session", s.id,
		"interface", iface,
		"backend", s.provider.Name(),
		"interval", s.interval)
	return nil
}

// Stop halts polling and waits for the polling goroutine to exit.
// It must not be called from a Sink callback.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	slog.Info("Monitor session stopped", "session", s.id)
}

// SelectInterface switches the monitored interface. The address lookup is
// re-issued once and the next tick only re-establishes the baseline. While
// stopped the lookup runs immediately on the caller's goroutine.
func (s *Session) SelectInterface(name string) {
	s.mu.Lock()
	if s.iface == name {
		s.mu.Unlock()
		return
	}
	s.iface = name
	running, done := s.running, s.done
	s.mu.Unlock()

	slog.Info("Monitored interface changed", "session", s.id, "interface", name)

	if !running {
		// The sampler is idle, so the lookup can run on the caller's goroutine.
		s.announce(context.Background(), name)
		return
	}
	select {
	case s.switchCh <- name:
	case <-done:
	}
}

// pollLoop runs the main polling loop.
func (s *Session) pollLoop(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case name := <-s.switchCh:
			s.sampler.Reset(name)
			s.mu.Lock()
			s.startTime = s.clock.Now()
			s.mu.Unlock()
			s.announce(ctx, name)
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick reads the counters, updates the sampler and emits a frame.
func (s *Session) tick(ctx context.Context) {
	iface := s.sampler.Interface()
	snap, present := s.read(ctx, iface)
	now := s.clock.Now()

	res := s.sampler.Tick(snap, present, now)
	if res.CounterReset {
		slog.Debug("Interface counter went backwards", "session", s.id, "interface", iface)
	}

	s.mu.RLock()
	started := s.startTime
	s.mu.RUnlock()

	sessionTx, sessionRx := s.sampler.SessionTotals()
	seconds := s.interval.Seconds()

	st := stats.NetworkStats{
		Interface:      iface,
		RxBytes:        snap.BytesRecv,
		TxBytes:        snap.BytesSent,
		RxBytesPerSec:  float64(res.Sample.Download) / seconds,
		TxBytesPerSec:  float64(res.Sample.Upload) / seconds,
		SessionRxBytes: sessionRx,
		SessionTxBytes: sessionTx,
		Present:        present,
		Baseline:       res.Baseline,
		Interval:       s.interval,
		Duration:       now.Sub(started),
		Timestamp:      now,
	}

	s.sink.ShowFrame(NewFrame(st, res.History, s.sampler.Capacity()))
}

// read returns the counters of iface; failures degrade to a missing interface.
func (s *Session) read(ctx context.Context, iface string) (netstat.Snapshot, bool) {
	snap, ok, err := s.provider.Counters(ctx, iface)
	if err != nil {
		slog.Debug("Failed to read interface counters", "session", s.id, "interface", iface, "error", err)
		return netstat.Snapshot{}, false
	}
	if !ok {
		slog.Debug("Interface not found", "session", s.id, "interface", iface)
	}
	return snap, ok
}

// announce performs the static address lookup and forwards it to the sink.
func (s *Session) announce(ctx context.Context, iface string) {
	info, err := s.provider.AddressInfo(ctx, iface)
	if err != nil {
		slog.Warn("Failed to look up interface address", "session", s.id, "interface", iface, "error", err)
		info = netstat.UnknownAddress(iface)
	}
	s.sink.ShowInterface(info)
}
