package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shini4i/bandwidth-monitor/internal/netstat"
)

type sessionFixture struct {
	provider *fakeProvider
	sink     *recordingSink
	clock    *clock.Mock
	session  *Session
}

func newSessionFixture(t *testing.T, iface string) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		provider: newFakeProvider(),
		sink:     &recordingSink{},
		clock:    clock.NewMock(),
	}
	f.provider.set("eth0", 1000, 5000)
	f.provider.set("wlan0", 7_000_000, 9_000_000)
	f.provider.addrs["wlan0"] = netstat.AddressInfo{Name: "wlan0", IPv4: "192.168.1.5", Netmask: "255.255.255.0", Up: true}

	f.session = NewSession(f.provider, f.sink, Options{
		Interface: iface,
		Clock:     f.clock,
	})
	t.Cleanup(f.session.Stop)
	return f
}

// step advances the mock clock by one interval and waits for the resulting frame.
func (f *sessionFixture) step(t *testing.T) Frame {
	t.Helper()

	want := f.sink.frameCount() + 1
	f.clock.Add(DefaultPollInterval)
	require.Eventually(t, func() bool { return f.sink.frameCount() >= want },
		time.Second, time.Millisecond, "no frame after tick")
	return f.sink.lastFrame()
}

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession(newFakeProvider(), &recordingSink{}, Options{})

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, DefaultPollInterval, s.interval)
	assert.Equal(t, 60, s.sampler.Capacity())
	assert.False(t, s.IsRunning())
	assert.Empty(t, s.Interface())
}

func TestSession_StartAnnouncesAndPrimes(t *testing.T) {
	f := newSessionFixture(t, "wlan0")

	require.NoError(t, f.session.Start(context.Background()))
	assert.True(t, f.session.IsRunning())

	shown := f.sink.shownInterfaces()
	require.Len(t, shown, 1)
	assert.Equal(t, "192.168.1.5", shown[0].IPv4)
	assert.Equal(t, 0, f.sink.frameCount(), "no frame before the first tick")

	f.provider.set("wlan0", 7_000_512, 9_002_048)
	frame := f.step(t)

	assert.False(t, frame.Stats.Baseline, "first tick after start reports a real delta")
	assert.Equal(t, 512.0, frame.Stats.TxBytesPerSec)
	assert.Equal(t, 2048.0, frame.Stats.RxBytesPerSec)
	assert.Equal(t, "↑ 512.00 B/s | ↓ 2.00 KB/s", frame.Tooltip)
	assert.Len(t, frame.Upload, 60)
	assert.Len(t, frame.Download, 60)
}

func TestSession_StartTwiceIsNoop(t *testing.T) {
	f := newSessionFixture(t, "eth0")

	require.NoError(t, f.session.Start(context.Background()))
	require.NoError(t, f.session.Start(context.Background()))

	assert.Len(t, f.sink.shownInterfaces(), 1)
}

func TestSession_DeltasFollowCounters(t *testing.T) {
	f := newSessionFixture(t, "eth0")
	require.NoError(t, f.session.Start(context.Background()))

	sent, recv := uint64(1000), uint64(5000)
	for i := uint64(1); i <= 5; i++ {
		sent += i * 100
		recv += i * 1000
		f.provider.set("eth0", sent, recv)

		frame := f.step(t)
		assert.Equal(t, float64(i*100), frame.Stats.TxBytesPerSec)
		assert.Equal(t, float64(i*1000), frame.Stats.RxBytesPerSec)
		assert.Equal(t, sent, frame.Stats.TxBytes)
		assert.Equal(t, recv, frame.Stats.RxBytes)
	}

	frame := f.sink.lastFrame()
	assert.Equal(t, uint64(1500), frame.Stats.SessionTxBytes)
	assert.Equal(t, uint64(15000), frame.Stats.SessionRxBytes)
	assert.Equal(t, 5*time.Second, frame.Stats.Duration)
	assert.Equal(t, "5s", frame.Duration)
}

func TestSession_SelectInterfaceResetsBaseline(t *testing.T) {
	f := newSessionFixture(t, "eth0")
	require.NoError(t, f.session.Start(context.Background()))

	f.provider.set("eth0", 1100, 5100)
	f.step(t)

	f.session.SelectInterface("wlan0")
	assert.Equal(t, "wlan0", f.session.Interface())
	require.Eventually(t, func() bool { return len(f.sink.shownInterfaces()) == 2 },
		time.Second, time.Millisecond)
	assert.Equal(t, "wlan0", f.sink.shownInterfaces()[1].Name)
	assert.Equal(t, []string{"eth0", "wlan0"}, f.provider.addressLookups())

	frame := f.step(t)
	assert.Equal(t, "wlan0", frame.Stats.Interface)
	assert.True(t, frame.Stats.Baseline)
	assert.Zero(t, frame.Stats.TxBytesPerSec, "no delta across two interfaces")
	assert.Zero(t, frame.Stats.RxBytesPerSec)

	f.provider.set("wlan0", 7_000_100, 9_000_300)
	frame = f.step(t)
	assert.Equal(t, 100.0, frame.Stats.TxBytesPerSec)
	assert.Equal(t, 300.0, frame.Stats.RxBytesPerSec)
}

func TestSession_SelectSameInterfaceIsNoop(t *testing.T) {
	f := newSessionFixture(t, "eth0")
	require.NoError(t, f.session.Start(context.Background()))

	f.session.SelectInterface("eth0")
	assert.Equal(t, []string{"eth0"}, f.provider.addressLookups())
}

func TestSession_SelectInterfaceWhileStopped(t *testing.T) {
	f := newSessionFixture(t, "eth0")

	f.session.SelectInterface("wlan0")

	shown := f.sink.shownInterfaces()
	require.Len(t, shown, 1, "address is shown for the new selection without starting")
	assert.Equal(t, "192.168.1.5", shown[0].IPv4)

	require.NoError(t, f.session.Start(context.Background()))

	assert.Equal(t, []string{"wlan0", "wlan0"}, f.provider.addressLookups())
	f.provider.set("wlan0", 7_000_010, 9_000_020)
	frame := f.step(t)
	assert.Equal(t, 10.0, frame.Stats.TxBytesPerSec)
}

func TestSession_MissingInterfaceDegradesToZero(t *testing.T) {
	f := newSessionFixture(t, "usb0")
	require.NoError(t, f.session.Start(context.Background()))

	frame := f.step(t)
	assert.False(t, frame.Stats.Present)
	assert.Zero(t, frame.Stats.TxBytesPerSec)
	assert.Zero(t, frame.Stats.RxBytesPerSec)
	assert.Equal(t, "0.00 B", frame.SentTotal)
	assert.Equal(t, netstat.NotAvailable, f.sink.shownInterfaces()[0].IPv4)

	// The interface appears: the first reading is only a baseline.
	f.provider.set("usb0", 50_000, 60_000)
	frame = f.step(t)
	assert.True(t, frame.Stats.Present)
	assert.Zero(t, frame.Stats.TxBytesPerSec)

	f.provider.set("usb0", 50_100, 60_100)
	frame = f.step(t)
	assert.Equal(t, 100.0, frame.Stats.TxBytesPerSec)

	f.provider.remove("usb0")
	frame = f.step(t)
	assert.False(t, frame.Stats.Present)
	assert.Zero(t, frame.Stats.TxBytesPerSec)
}

func TestSession_ReadErrorsDegradeToZero(t *testing.T) {
	f := newSessionFixture(t, "eth0")
	require.NoError(t, f.session.Start(context.Background()))

	f.provider.setFailRead(true)
	frame := f.step(t)
	assert.False(t, frame.Stats.Present)
	assert.Zero(t, frame.Stats.RxBytesPerSec)

	f.provider.setFailRead(false)
	f.provider.set("eth0", 2000, 6000)
	frame = f.step(t)
	assert.True(t, frame.Stats.Baseline)
	assert.Zero(t, frame.Stats.RxBytesPerSec, "recovery reading must not produce a spike")
}

func TestSession_HistoryWindowIsBounded(t *testing.T) {
	f := newSessionFixture(t, "eth0")
	f.session = NewSession(f.provider, f.sink, Options{Interface: "eth0", Clock: f.clock, HistorySize: 5})
	t.Cleanup(f.session.Stop)
	require.NoError(t, f.session.Start(context.Background()))

	sent := uint64(1000)
	for i := 1; i <= 8; i++ {
		sent += uint64(i) * bytesPerMB
		f.provider.set("eth0", sent, 5000)
		f.step(t)
	}

	frame := f.sink.lastFrame()
	assert.Equal(t, []float64{4, 5, 6, 7, 8}, frame.Upload)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, frame.Download)
}

func TestSession_Stop(t *testing.T) {
	f := newSessionFixture(t, "eth0")
	require.NoError(t, f.session.Start(context.Background()))

	f.session.Stop()
	assert.False(t, f.session.IsRunning())

	f.clock.Add(5 * DefaultPollInterval)
	assert.Equal(t, 0, f.sink.frameCount(), "no frames after stop")

	// Safe to call multiple times, and selection still works while stopped.
	f.session.Stop()
	f.session.SelectInterface("wlan0")
	assert.Equal(t, "wlan0", f.session.Interface())
}

func TestSession_ContextCancelStopsPolling(t *testing.T) {
	f := newSessionFixture(t, "eth0")
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.session.Start(ctx))

	cancel()
	f.session.mu.RLock()
	done := f.session.done
	f.session.mu.RUnlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("polling goroutine did not exit after cancel")
	}
}

func TestSession_RestartReprimes(t *testing.T) {
	f := newSessionFixture(t, "eth0")
	require.NoError(t, f.session.Start(context.Background()))

	f.provider.set("eth0", 1100, 5200)
	f.step(t)
	f.session.Stop()

	// Traffic while paused must not appear as a burst after resuming.
	f.provider.set("eth0", 900_000, 800_000)
	require.NoError(t, f.session.Start(context.Background()))
	assert.True(t, f.session.IsRunning())

	f.provider.set("eth0", 900_100, 800_300)
	frame := f.step(t)

	assert.Equal(t, 100.0, frame.Stats.TxBytesPerSec)
	assert.Equal(t, 300.0, frame.Stats.RxBytesPerSec)
	assert.Equal(t, uint64(100), frame.Stats.SessionTxBytes, "session totals restart on resume")
	assert.Len(t, f.sink.shownInterfaces(), 2, "address is looked up again on resume")
}
