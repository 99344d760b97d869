package ui

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/shini4i/bandwidth-monitor/internal/chart"
	"github.com/shini4i/bandwidth-monitor/internal/config"
	"github.com/shini4i/bandwidth-monitor/internal/monitor"
	"github.com/shini4i/bandwidth-monitor/internal/netstat"
)

const (
	windowDefaultWidth  = 800
	windowDefaultHeight = 640

	allInterfacesLabel = "All interfaces"
)

// MainWindowDeps holds the dependencies required by MainWindow.
type MainWindowDeps struct {
	Session       *monitor.Session
	ConfigManager *config.Manager
	// Ctx bounds interface enumeration.
	Ctx context.Context
}

// MainWindow shows the interface selector, address details, totals and the
// throughput chart. It implements monitor.Sink.
type MainWindow struct {
	window *adw.ApplicationWindow
	deps   *MainWindowDeps

	// UI components
	interfaceRow     *adw.ComboRow
	interfaceDisplay *InterfaceDisplay
	statsDisplay     *StatsDisplay
	chartPicture     *gtk.Picture

	// State, GTK thread only
	interfaceNames []string
	populating     bool

	// visible is read on the session goroutine to skip chart rendering.
	visible    atomic.Bool
	present    atomic.Bool
	chartOpts  chart.Options
	renderFail atomic.Bool
}

var _ monitor.Sink = (*MainWindow)(nil)

// NewMainWindow creates a new main window instance.
func NewMainWindow(app *adw.Application, deps *MainWindowDeps) *MainWindow {
	cfg := deps.ConfigManager.GetConfig()
	w := &MainWindow{
		deps: deps,
		chartOpts: chart.Options{
			Width:      chart.DefaultWidth,
			Height:     chart.DefaultHeight,
			MinCeiling: cfg.ChartMinMBps,
		},
	}

	w.present.Store(true)

	w.setupWindow(app)
	w.setupLayout(cfg.ShowSessionTotals)
	w.setupCallbacks()
	w.loadInterfaces()

	return w
}

// setupWindow creates and configures the application window.
func (w *MainWindow) setupWindow(app *adw.Application) {
	w.window = adw.NewApplicationWindow(&app.Application)
	w.window.SetTitle("Bandwidth Monitor")
	w.window.SetDefaultSize(windowDefaultWidth, windowDefaultHeight)

	// Handle window close: hide instead of quit (app stays in tray)
	w.window.ConnectCloseRequest(func() bool {
		w.visible.Store(false)
		glib.IdleAdd(func() {
			w.window.SetVisible(false)
		})
		return true // Prevent default close behavior
	})
}

// setupLayout builds the header bar and the single content column.
func (w *MainWindow) setupLayout(sessionTotals bool) {
	headerBar := adw.NewHeaderBar()

	refreshButton := gtk.NewButtonFromIconName("view-refresh-symbolic")
	refreshButton.SetTooltipText("Refresh Interface List")
	refreshButton.ConnectClicked(w.loadInterfaces)
	headerBar.PackStart(refreshButton)

	pauseButton := gtk.NewToggleButton()
	pauseButton.SetIconName("media-playback-pause-symbolic")
	pauseButton.SetTooltipText("Pause Monitoring")
	pauseButton.ConnectToggled(func() {
		w.setPaused(pauseButton.Active())
	})
	headerBar.PackStart(pauseButton)

	menuButton := gtk.NewMenuButton()
	menuButton.SetIconName("open-menu-symbolic")
	menuButton.SetMenuModel(w.createMainMenu())
	headerBar.PackEnd(menuButton)

	contentBox := gtk.NewBox(gtk.OrientationVertical, 12)
	contentBox.SetMarginTop(12)
	contentBox.SetMarginBottom(12)
	contentBox.SetMarginStart(12)
	contentBox.SetMarginEnd(12)

	// Interface selector
	interfaceGroup := adw.NewPreferencesGroup()
	w.interfaceRow = adw.NewComboRow()
	w.interfaceRow.SetTitle("Interface")
	interfaceGroup.Add(w.interfaceRow)
	contentBox.Append(interfaceGroup)

	w.interfaceDisplay = NewInterfaceDisplay()
	contentBox.Append(w.interfaceDisplay.Widget())

	contentBox.Append(gtk.NewSeparator(gtk.OrientationHorizontal))

	w.statsDisplay = NewStatsDisplay(sessionTotals)
	contentBox.Append(w.statsDisplay.Widget())

	w.chartPicture = gtk.NewPicture()
	w.chartPicture.SetCanShrink(true)
	w.chartPicture.SetContentFit(gtk.ContentFitContain)
	w.chartPicture.SetVExpand(true)
	w.chartPicture.SetHExpand(true)
	contentBox.Append(w.chartPicture)

	toolbarView := adw.NewToolbarView()
	toolbarView.AddTopBar(headerBar)
	toolbarView.SetContent(contentBox)

	w.window.SetContent(toolbarView)
}

// createMainMenu creates the application menu model.
func (w *MainWindow) createMainMenu() *gio.Menu {
	menu := gio.NewMenu()

	menu.Append("Preferences", "app.preferences")
	menu.Append("About", "app.about")
	menu.Append("Quit", "app.quit")

	return menu
}

// setupCallbacks wires the interface selector to the session.
func (w *MainWindow) setupCallbacks() {
	w.interfaceRow.NotifyProperty("selected", func() {
		if w.populating {
			return
		}
		idx := int(w.interfaceRow.Selected())
		if idx < 0 || idx >= len(w.interfaceNames) {
			return
		}
		w.selectInterface(w.interfaceNames[idx])
	})
}

// loadInterfaces repopulates the selector, keeping the current selection.
func (w *MainWindow) loadInterfaces() {
	names, err := w.deps.Session.Interfaces(w.deps.Ctx)
	if err != nil {
		slog.Warn("Failed to list network interfaces", "error", err)
	}

	current := w.deps.Session.Interface()
	entries, labels := selectorEntries(names, current)
	w.interfaceNames = entries

	w.populating = true
	w.interfaceRow.SetModel(gtk.NewStringList(labels))
	w.interfaceRow.SetSelected(uint(selectorIndex(w.interfaceNames, current)))
	w.populating = false
}

// selectInterface switches the session and remembers the choice.
func (w *MainWindow) selectInterface(name string) {
	if name == w.deps.Session.Interface() {
		return
	}
	w.deps.Session.SelectInterface(name)

	if err := w.deps.ConfigManager.UpdateField(func(cfg *config.Config) {
		cfg.Interface = storedInterface(name)
	}); err != nil {
		slog.Warn("Failed to save selected interface", "interface", name, "error", err)
	}
}

// setPaused stops or restarts sampling. A restart takes a fresh reference
// reading, so the paused period never shows up as one large delta.
func (w *MainWindow) setPaused(paused bool) {
	if paused {
		w.deps.Session.Stop()
		slog.Info("Monitoring paused")
		return
	}
	if err := w.deps.Session.Start(w.deps.Ctx); err != nil {
		slog.Error("Failed to resume monitoring", "error", err)
	}
}

// ShowFrame updates the totals and, while the window is shown, the chart.
// Called on the session goroutine.
func (w *MainWindow) ShowFrame(f monitor.Frame) {
	w.statsDisplay.SetFrame(f)

	if reappeared(w.present.Swap(f.Stats.Present), f.Stats.Present) {
		// Drop the "(unavailable)" suffix from the selector row.
		glib.IdleAdd(w.loadInterfaces)
	}

	if !w.visible.Load() {
		return
	}

	png, err := chart.Render(f.Upload, f.Download, w.chartOpts)
	if err != nil {
		// Log once per failure streak; the chart redraws every tick.
		if !w.renderFail.Swap(true) {
			slog.Warn("Failed to render throughput chart", "error", err)
		}
		return
	}
	w.renderFail.Store(false)

	glib.IdleAdd(func() {
		texture, err := gdk.NewTextureFromBytes(glib.NewBytes(png))
		if err != nil {
			slog.Warn("Failed to load chart image", "error", err)
			return
		}
		w.chartPicture.SetPaintable(texture)
	})
}

// ShowInterface updates the address details. Called on the session goroutine.
func (w *MainWindow) ShowInterface(info netstat.AddressInfo) {
	w.interfaceDisplay.SetInfo(info)
}

// SetSessionTotals switches the Sent/Recv labels between interface
// counters and session totals.
func (w *MainWindow) SetSessionTotals(enabled bool) {
	w.statsDisplay.SetSessionTotals(enabled)
}

// Present shows the main window.
func (w *MainWindow) Present() {
	w.visible.Store(true)
	w.window.Present()
}

// Window returns the underlying GTK window.
func (w *MainWindow) Window() *adw.ApplicationWindow {
	return w.window
}

// selectorEntries returns the interface names backing the selector rows and
// their labels. The first row is always the system-wide total. A remembered
// interface that is currently missing is kept so the selection survives.
func selectorEntries(names []string, current string) (entries, labels []string) {
	entries = []string{""}
	labels = []string{allInterfacesLabel}

	found := current == ""
	for _, name := range names {
		if name == current {
			found = true
		}
		entries = append(entries, name)
		labels = append(labels, name)
	}
	if !found {
		entries = append(entries, current)
		labels = append(labels, current+" (unavailable)")
	}
	return entries, labels
}

// selectorIndex returns the row of name, or 0 (all interfaces) if absent.
func selectorIndex(entries []string, name string) int {
	for i, e := range entries {
		if e == name {
			return i
		}
	}
	return 0
}

// reappeared reports whether the monitored interface just came back.
func reappeared(wasPresent, present bool) bool {
	return !wasPresent && present
}
