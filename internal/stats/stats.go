// Package stats turns successive byte-counter snapshots into per-interval
// throughput samples and keeps a sliding window of them.
package stats

import "time"

// RateSample is the traffic observed during one sampling interval.
// Both fields are non-negative: counter resets are clamped to zero.
type RateSample struct {
	// Upload is the number of bytes sent during the interval.
	Upload int64
	// Download is the number of bytes received during the interval.
	Download int64

	// Timestamp is when the closing snapshot was taken.
	Timestamp time.Time
}

// NetworkStats contains the traffic figures produced by one sampling tick.
type NetworkStats struct {
	// Interface is the monitored interface name; empty for the system-wide total.
	Interface string

	// RxBytes is the interface's cumulative received counter.
	RxBytes uint64
	// TxBytes is the interface's cumulative transmitted counter.
	TxBytes uint64

	// RxBytesPerSec is the current receive rate in bytes per second.
	RxBytesPerSec float64
	// TxBytesPerSec is the current transmit rate in bytes per second.
	TxBytesPerSec float64

	// SessionRxBytes is the total bytes received since monitoring started.
	SessionRxBytes uint64
	// SessionTxBytes is the total bytes transmitted since monitoring started.
	SessionTxBytes uint64

	// Present is false while the interface cannot be found.
	Present bool
	// Baseline is true when this tick only established a reference reading.
	Baseline bool

	// Interval is the sampling period the rates are computed over.
	Interval time.Duration

	// Duration is the time elapsed since monitoring started.
	Duration time.Duration

	// Timestamp is when these statistics were collected.
	Timestamp time.Time
}
