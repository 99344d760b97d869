package ui

import (
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/shini4i/bandwidth-monitor/internal/netstat"
)

// InterfaceDisplay shows the static address details of the monitored interface.
type InterfaceDisplay struct {
	widget *gtk.Grid

	ipLabel    *gtk.Label
	maskLabel  *gtk.Label
	stateLabel *gtk.Label
}

// NewInterfaceDisplay creates the IP/Mask/state widget.
func NewInterfaceDisplay() *InterfaceDisplay {
	d := &InterfaceDisplay{}
	d.setupWidget()
	return d
}

func (d *InterfaceDisplay) setupWidget() {
	d.widget = gtk.NewGrid()
	d.widget.SetRowSpacing(4)
	d.widget.SetColumnSpacing(12)

	addRow := func(row int, title string) *gtk.Label {
		key := gtk.NewLabel(title)
		key.SetXAlign(0)
		key.SetOpacity(dimmedOpacity)
		d.widget.Attach(key, 0, row, 1, 1)

		value := gtk.NewLabel(netstat.NotAvailable)
		value.SetXAlign(0)
		value.SetSelectable(true)
		d.widget.Attach(value, 1, row, 1, 1)
		return value
	}

	d.ipLabel = addRow(0, "IP:")
	d.maskLabel = addRow(1, "Mask:")
	d.stateLabel = addRow(2, "State:")
}

// SetInfo updates the labels from a lookup result.
func (d *InterfaceDisplay) SetInfo(info netstat.AddressInfo) {
	state := interfaceState(info)
	glib.IdleAdd(func() {
		d.ipLabel.SetLabel(info.IPv4)
		d.maskLabel.SetLabel(info.Netmask)
		d.stateLabel.SetLabel(state)

		if info.Up {
			d.stateLabel.RemoveCSSClass("dim-label")
		} else {
			d.stateLabel.AddCSSClass("dim-label")
		}
	})
}

// Widget returns the root GTK widget.
func (d *InterfaceDisplay) Widget() gtk.Widgetter {
	return d.widget
}

// interfaceState describes the link state for the State label.
func interfaceState(info netstat.AddressInfo) string {
	switch {
	case info.Name == "":
		return "All interfaces"
	case info.Up:
		return "Up"
	default:
		return "Down"
	}
}
