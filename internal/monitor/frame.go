package monitor

import (
	"fmt"
	"time"

	"github.com/shini4i/bandwidth-monitor/internal/netstat"
	"github.com/shini4i/bandwidth-monitor/internal/stats"
)

const bytesPerMB = 1024 * 1024

// Frame is everything the presentation layer shows for one tick.
type Frame struct {
	Stats stats.NetworkStats

	// SentTotal and RecvTotal format the interface's cumulative counters.
	SentTotal string
	RecvTotal string
	// SessionSent and SessionRecv format the traffic since monitoring started.
	SessionSent string
	SessionRecv string

	UploadRate   string
	DownloadRate string
	Duration     string

	// Tooltip is the one-line summary shown on the tray icon.
	Tooltip string

	// Upload and Download are the chart series in MB/s, oldest first. They
	// always hold exactly one point per history slot; missing slots are zero.
	Upload   []float64
	Download []float64
}

// Sink receives what the session produces. Calls arrive on the session
// goroutine; implementations that touch a UI toolkit must hop threads.
type Sink interface {
	// ShowFrame is called once per tick.
	ShowFrame(Frame)
	// ShowInterface is called when the monitored interface is (re)selected.
	ShowInterface(netstat.AddressInfo)
}

// MultiSink fans every call out to each sink in order.
type MultiSink []Sink

// ShowFrame implements Sink.
func (m MultiSink) ShowFrame(f Frame) {
	for _, s := range m {
		s.ShowFrame(f)
	}
}

// ShowInterface implements Sink.
func (m MultiSink) ShowInterface(info netstat.AddressInfo) {
	for _, s := range m {
		s.ShowInterface(info)
	}
}

// NewFrame formats st and turns history into fixed-length chart series.
func NewFrame(st stats.NetworkStats, history []stats.RateSample, capacity int) Frame {
	up := stats.FormatRate(st.TxBytesPerSec)
	down := stats.FormatRate(st.RxBytesPerSec)

	f := Frame{
		Stats:        st,
		SentTotal:    stats.FormatBytes(float64(st.TxBytes)),
		RecvTotal:    stats.FormatBytes(float64(st.RxBytes)),
		SessionSent:  stats.FormatBytes(float64(st.SessionTxBytes)),
		SessionRecv:  stats.FormatBytes(float64(st.SessionRxBytes)),
		UploadRate:   up,
		DownloadRate: down,
		Duration:     stats.FormatDuration(st.Duration),
		Tooltip:      fmt.Sprintf("↑ %s | ↓ %s", up, down),
	}
	f.Upload, f.Download = Series(history, capacity, st.Interval)
	return f
}

// Series converts per-interval samples into MB/s values, left-padded with
// zeros to capacity points. Only the newest capacity samples are used.
func Series(history []stats.RateSample, capacity int, interval time.Duration) (upload, download []float64) {
	if capacity < len(history) {
		history = history[len(history)-capacity:]
	}
	seconds := interval.Seconds()
	if seconds <= 0 {
		seconds = 1
	}

	upload = make([]float64, capacity)
	download = make([]float64, capacity)
	offset := capacity - len(history)
	for i, s := range history {
		upload[offset+i] = float64(s.Upload) / seconds / bytesPerMB
		download[offset+i] = float64(s.Download) / seconds / bytesPerMB
	}
	return upload, download
}
