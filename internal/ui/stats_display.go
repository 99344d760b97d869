package ui

import (
	"fmt"
	"sync/atomic"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/shini4i/bandwidth-monitor/internal/monitor"
	"github.com/shini4i/bandwidth-monitor/internal/netstat"
)

// dimmedOpacity is applied to secondary labels.
const dimmedOpacity = 0.7

// StatsDisplay shows the byte totals and current rates of the monitored interface.
type StatsDisplay struct {
	widget *gtk.Box

	// Total labels
	sentLabel *gtk.Label
	recvLabel *gtk.Label

	// Rate labels
	rxRateLabel *gtk.Label
	txRateLabel *gtk.Label

	// Duration label
	durationLabel *gtk.Label

	sessionTotals atomic.Bool
}

// NewStatsDisplay creates a new traffic stats display widget.
func NewStatsDisplay(sessionTotals bool) *StatsDisplay {
	sd := &StatsDisplay{}
	sd.sessionTotals.Store(sessionTotals)
	sd.setupWidget()
	return sd
}

// setupWidget creates the stats display UI.
// Layout:
//
//	Sent: 1.20 GB        Recv: 8.31 GB
//	↓ 5.20 KB/s  ↑ 1.10 KB/s  │  1h 23m
func (sd *StatsDisplay) setupWidget() {
	sd.widget = gtk.NewBox(gtk.OrientationVertical, 6)
	sd.widget.SetMarginTop(4)
	sd.widget.SetMarginBottom(4)

	totals := gtk.NewBox(gtk.OrientationHorizontal, 24)
	totals.SetHomogeneous(true)

	sd.sentLabel = gtk.NewLabel(totalText("Sent", ""))
	sd.sentLabel.SetXAlign(0)
	sd.sentLabel.AddCSSClass("heading")
	totals.Append(sd.sentLabel)

	sd.recvLabel = gtk.NewLabel(totalText("Recv", ""))
	sd.recvLabel.SetXAlign(0)
	sd.recvLabel.AddCSSClass("heading")
	totals.Append(sd.recvLabel)

	sd.widget.Append(totals)

	rates := gtk.NewBox(gtk.OrientationHorizontal, 8)
	rates.SetHAlign(gtk.AlignStart)

	sd.rxRateLabel = gtk.NewLabel("↓ 0.00 B/s")
	sd.rxRateLabel.SetOpacity(dimmedOpacity)
	rates.Append(sd.rxRateLabel)

	sd.txRateLabel = gtk.NewLabel("↑ 0.00 B/s")
	sd.txRateLabel.SetOpacity(dimmedOpacity)
	rates.Append(sd.txRateLabel)

	sep := gtk.NewSeparator(gtk.OrientationVertical)
	sep.SetMarginStart(4)
	sep.SetMarginEnd(4)
	rates.Append(sep)

	sd.durationLabel = gtk.NewLabel("0s")
	sd.durationLabel.SetOpacity(dimmedOpacity)
	sd.durationLabel.SetTooltipText("Time since monitoring of this interface started")
	rates.Append(sd.durationLabel)

	sd.widget.Append(rates)
}

// SetSessionTotals chooses between interface counters and session totals
// for the Sent/Recv labels. Takes effect on the next frame.
func (sd *StatsDisplay) SetSessionTotals(enabled bool) {
	sd.sessionTotals.Store(enabled)
}

// SetFrame updates the displayed statistics.
func (sd *StatsDisplay) SetFrame(f monitor.Frame) {
	sent, recv := frameTotals(f, sd.sessionTotals.Load())
	glib.IdleAdd(func() {
		sd.sentLabel.SetLabel(totalText("Sent", sent))
		sd.recvLabel.SetLabel(totalText("Recv", recv))

		sd.rxRateLabel.SetLabel(fmt.Sprintf("↓ %s", f.DownloadRate))
		sd.txRateLabel.SetLabel(fmt.Sprintf("↑ %s", f.UploadRate))

		sd.durationLabel.SetLabel(f.Duration)
	})
}

// Widget returns the root GTK widget for the stats display.
func (sd *StatsDisplay) Widget() gtk.Widgetter {
	return sd.widget
}

// frameTotals picks the Sent/Recv strings for the current display mode.
// A missing interface shows no totals at all.
func frameTotals(f monitor.Frame, session bool) (sent, recv string) {
	if !f.Stats.Present {
		return "", ""
	}
	if session {
		return f.SessionSent, f.SessionRecv
	}
	return f.SentTotal, f.RecvTotal
}

func totalText(label, value string) string {
	if value == "" {
		value = netstat.NotAvailable
	}
	return label + ": " + value
}
