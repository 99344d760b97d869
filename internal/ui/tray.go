// Package ui provides the GTK4/libadwaita user interface and the system tray
// for bandwidth-monitor.
package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/systray"

	"github.com/shini4i/bandwidth-monitor/internal/monitor"
	"github.com/shini4i/bandwidth-monitor/internal/netstat"
)

const trayTitle = "Bandwidth Monitor"

var (
	// ErrTrayAlreadyRunning is returned when attempting to modify callbacks after Run() has been called.
	ErrTrayAlreadyRunning = errors.New("cannot modify callbacks after TrayIcon.Run() is called")
	// ErrTrayRunTwice is returned when Run() is called more than once.
	ErrTrayRunTwice = errors.New("TrayIcon.Run() called twice")
	// ErrTrayMissingCallbacks is returned when Run() is called without all required callbacks set.
	ErrTrayMissingCallbacks = errors.New("all callbacks (OnShow, OnQuit) must be set before calling Run()")
)

// TrayIcon manages the system tray icon and menu. It implements monitor.Sink.
type TrayIcon struct {
	mu sync.RWMutex

	// State
	iface   string
	present bool
	tooltip string

	// Menu items
	menuStatus      *systray.MenuItem
	menuTrafficRate *systray.MenuItem
	menuShow        *systray.MenuItem
	menuQuit        *systray.MenuItem

	// Callbacks - must be set before Run() is called
	onShow func()
	onQuit func()

	// Icons (set once in NewTrayIcon, read-only after initialization)
	iconActive  []byte
	iconOffline []byte

	// Done channel to signal goroutine termination
	done chan struct{}

	// Lifecycle flags
	running   bool
	ready     bool
	closeOnce sync.Once
}

var _ monitor.Sink = (*TrayIcon)(nil)

// NewTrayIcon creates a new system tray icon manager.
func NewTrayIcon() *TrayIcon {
	return &TrayIcon{
		present:     true,
		tooltip:     trayTitle,
		iconActive:  iconActivePNG,
		iconOffline: iconOfflinePNG,
		done:        make(chan struct{}),
	}
}

// OnShow registers a callback for when Show Window is clicked in tray.
// Must be called before Run(). Returns ErrTrayAlreadyRunning if called after Run().
func (t *TrayIcon) OnShow(callback func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return ErrTrayAlreadyRunning
	}
	t.onShow = callback
	return nil
}

// OnQuit registers a callback for when Exit is clicked in tray.
// Must be called before Run(). Returns ErrTrayAlreadyRunning if called after Run().
func (t *TrayIcon) OnQuit(callback func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return ErrTrayAlreadyRunning
	}
	t.onQuit = callback
	return nil
}

// ShowFrame updates the tooltip, rate item and icon from a sampled frame.
func (t *TrayIcon) ShowFrame(f monitor.Frame) {
	t.mu.Lock()
	changed := t.present != f.Stats.Present
	t.present = f.Stats.Present
	t.tooltip = f.Tooltip
	ready := t.ready
	t.mu.Unlock()

	if !ready {
		return
	}

	systray.SetTooltip(f.Tooltip)
	t.menuTrafficRate.SetTitle(rateTitle(f))
	if changed {
		t.updateIcon()
		t.updateStatus()
	}
}

// ShowInterface updates the status item with the monitored interface.
func (t *TrayIcon) ShowInterface(info netstat.AddressInfo) {
	t.mu.Lock()
	t.iface = info.Name
	ready := t.ready
	t.mu.Unlock()

	if ready {
		t.updateStatus()
	}
}

// Run starts the system tray icon. This should be called in a goroutine
// as it blocks until the tray is closed. Both callbacks (OnShow, OnQuit)
// must be registered before calling Run().
// Returns ErrTrayMissingCallbacks if any callback is not set.
// Returns ErrTrayRunTwice if called more than once.
func (t *TrayIcon) Run() error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrTrayRunTwice
	}

	if t.onShow == nil || t.onQuit == nil {
		t.mu.Unlock()
		return ErrTrayMissingCallbacks
	}

	t.running = true
	t.mu.Unlock()

	systray.Run(t.onReady, t.onExit)
	return nil
}

// Quit closes the system tray icon and terminates the click handler goroutine.
// Safe to call multiple times.
func (t *TrayIcon) Quit() {
	t.closeOnce.Do(func() {
		close(t.done)
		systray.Quit()
	})
}

// onReady is called when the tray is ready to be configured.
func (t *TrayIcon) onReady() {
	t.mu.RLock()
	tooltip := t.tooltip
	t.mu.RUnlock()

	systray.SetIcon(t.iconActive)
	systray.SetTitle(trayTitle)
	systray.SetTooltip(tooltip)

	t.menuStatus = systray.AddMenuItem("", "Monitored interface")
	t.menuStatus.Disable()

	t.menuTrafficRate = systray.AddMenuItem(rateTitle(monitor.Frame{}), "Current traffic rates")
	t.menuTrafficRate.Disable()

	systray.AddSeparator()

	t.menuShow = systray.AddMenuItem("Show Window", "Show the main window")
	t.menuQuit = systray.AddMenuItem("Exit", "Quit the application")

	t.mu.Lock()
	t.ready = true
	t.mu.Unlock()

	t.updateIcon()
	t.updateStatus()

	go t.handleMenuClicks()

	slog.Info("System tray initialized")
}

// onExit is called when the tray is being closed.
func (t *TrayIcon) onExit() {
	slog.Info("System tray closed")
}

// handleMenuClicks processes menu item clicks.
func (t *TrayIcon) handleMenuClicks() {
	for {
		select {
		case <-t.done:
			return
		case _, ok := <-t.menuShow.ClickedCh:
			if !ok {
				return
			}
			if t.onShow != nil {
				t.onShow()
			}
		case _, ok := <-t.menuQuit.ClickedCh:
			if !ok {
				return
			}
			if t.onQuit != nil {
				t.onQuit()
			}
		}
	}
}

// updateIcon greys the icon out while the interface is missing.
func (t *TrayIcon) updateIcon() {
	t.mu.RLock()
	present := t.present
	t.mu.RUnlock()

	if present {
		systray.SetIcon(t.iconActive)
	} else {
		systray.SetIcon(t.iconOffline)
	}
}

func (t *TrayIcon) updateStatus() {
	t.mu.RLock()
	iface := t.iface
	present := t.present
	t.mu.RUnlock()

	t.menuStatus.SetTitle(statusTitle(iface, present))
}

// statusTitle renders the tray status line.
func statusTitle(iface string, present bool) string {
	if iface == "" {
		iface = "all interfaces"
	}
	if !present {
		return fmt.Sprintf("Interface: %s (unavailable)", iface)
	}
	return "Interface: " + iface
}

// rateTitle renders the tray rate line.
func rateTitle(f monitor.Frame) string {
	up, down := f.UploadRate, f.DownloadRate
	if up == "" {
		up = "0.00 B/s"
	}
	if down == "" {
		down = "0.00 B/s"
	}
	return fmt.Sprintf("↓ %s  ↑ %s", down, up)
}
