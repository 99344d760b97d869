package ui

import (
	"context"
	"log/slog"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/shini4i/bandwidth-monitor/internal/config"
	"github.com/shini4i/bandwidth-monitor/internal/monitor"
	"github.com/shini4i/bandwidth-monitor/internal/netstat"
)

const (
	// AppID is the application identifier following reverse DNS notation.
	AppID = "com.github.shini4i.bandwidth-monitor"
)

// Version is the application version, set at build time via ldflags.
var Version = "dev"

// App represents the main application controller.
// It manages the GTK application lifecycle and wires together all components.
type App struct {
	app    *adw.Application
	window *MainWindow
	tray   *TrayIcon

	// Services
	configManager *config.Manager
	provider      netstat.Provider
	session       *monitor.Session

	activated bool

	// sinks is filled in before the session starts and never changes afterwards.
	sinks monitor.MultiSink

	// Application-level context for the monitor session
	ctx       context.Context
	ctxCancel context.CancelFunc
}

var _ monitor.Sink = (*App)(nil)

// NewApp creates a new application instance from the persisted configuration.
func NewApp() (*App, error) {
	configManager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	cfg := configManager.GetConfig()

	provider, err := netstat.NewProvider(cfg.CounterBackend)
	if err != nil {
		return nil, err
	}
	slog.Debug("Counter backend selected", "backend", provider.Name())

	ctx, cancel := context.WithCancel(context.Background())

	names, err := provider.Interfaces(ctx)
	if err != nil {
		slog.Warn("Failed to list network interfaces", "error", err)
	}
	iface := startupInterface(cfg.Interface, names)

	a := &App{
		configManager: configManager,
		provider:      provider,
		ctx:           ctx,
		ctxCancel:     cancel,
	}
	a.session = monitor.NewSession(provider, a, monitor.Options{
		Interface:    iface,
		PollInterval: cfg.PollInterval(),
		HistorySize:  cfg.HistorySize,
	})

	return a, nil
}

// Run starts the GTK application and blocks until it exits.
// Returns the exit code from the GTK application.
func (a *App) Run(args []string) int {
	a.app = adw.NewApplication(AppID, gio.ApplicationFlagsNone)

	a.app.ConnectActivate(func() {
		a.onActivate()
	})

	a.app.ConnectShutdown(func() {
		a.onShutdown()
	})

	return a.app.Run(args)
}

// onActivate is called when the application is activated. A second launch
// activates the running instance, which just presents the window.
func (a *App) onActivate() {
	if a.activated {
		a.window.Present()
		return
	}
	a.activated = true

	a.registerActions()

	if a.tray == nil {
		a.initTray()
	}
	a.ensureWindow()

	// Keep app running even when window is hidden (tray mode)
	a.app.Hold()

	a.sinks = monitor.MultiSink{a.tray, a.window}
	if err := a.session.Start(a.ctx); err != nil {
		slog.Error("Failed to start monitor session", "error", err)
	}

	if a.configManager.GetConfig().StartHidden {
		slog.Info("Starting in tray-only mode")
		return
	}
	a.window.Present()
}

// ShowFrame implements monitor.Sink.
func (a *App) ShowFrame(f monitor.Frame) {
	a.sinks.ShowFrame(f)
}

// ShowInterface implements monitor.Sink.
func (a *App) ShowInterface(info netstat.AddressInfo) {
	a.sinks.ShowInterface(info)
}

// registerActions registers the application-level actions for menu items.
func (a *App) registerActions() {
	aboutAction := gio.NewSimpleAction("about", nil)
	aboutAction.ConnectActivate(func(param *glib.Variant) {
		a.ShowAboutDialog()
	})
	a.app.AddAction(aboutAction)

	prefsAction := gio.NewSimpleAction("preferences", nil)
	prefsAction.ConnectActivate(func(param *glib.Variant) {
		a.ShowPreferencesDialog()
	})
	a.app.AddAction(prefsAction)

	quitAction := gio.NewSimpleAction("quit", nil)
	quitAction.ConnectActivate(func(param *glib.Variant) {
		a.Quit()
	})
	a.app.AddAction(quitAction)

	a.registerAccelerators()
}

// registerAccelerators sets up keyboard shortcuts for common actions.
func (a *App) registerAccelerators() {
	// Quit: Ctrl+Q
	a.app.SetAccelsForAction("app.quit", []string{"<Control>q"})

	// Preferences: Ctrl+comma (standard GNOME shortcut)
	a.app.SetAccelsForAction("app.preferences", []string{"<Control>comma"})
}

// GetSession returns the monitor session.
func (a *App) GetSession() *monitor.Session {
	return a.session
}

// GetConfigManager returns the config manager instance.
func (a *App) GetConfigManager() *config.Manager {
	return a.configManager
}

// Quit terminates the application gracefully.
func (a *App) Quit() {
	if a.app != nil {
		a.app.Quit()
	}
}

// ShowAboutDialog displays the application's about dialog.
func (a *App) ShowAboutDialog() {
	a.ensureWindow()

	about := adw.NewAboutDialog()
	about.SetApplicationName("Bandwidth Monitor")
	about.SetApplicationIcon("network-transmit-receive-symbolic")
	about.SetDeveloperName("shini4i")
	about.SetVersion(Version)
	about.SetWebsite("https://github.com/shini4i/bandwidth-monitor")
	about.SetIssueURL("https://github.com/shini4i/bandwidth-monitor/issues")
	about.SetLicenseType(gtk.LicenseGPL30)
	about.SetComments("Network throughput in the system tray")

	about.Present(a.window.window)
}

// ShowPreferencesDialog displays the application preferences window.
func (a *App) ShowPreferencesDialog() {
	a.ensureWindow()

	prefs := NewPreferencesWindow(a.window)

	cfg := a.configManager.GetConfig()
	prefs.SetStartHidden(cfg.StartHidden)
	prefs.SetSessionTotals(cfg.ShowSessionTotals)

	prefs.OnStartHiddenChanged(func(enabled bool) {
		a.updateConfigField(func(cfg *config.Config) {
			cfg.StartHidden = enabled
		})
		slog.Info("Start hidden setting changed", "enabled", enabled)
	})

	prefs.OnSessionTotalsChanged(func(enabled bool) {
		a.window.SetSessionTotals(enabled)
		a.updateConfigField(func(cfg *config.Config) {
			cfg.ShowSessionTotals = enabled
		})
		slog.Info("Session totals setting changed", "enabled", enabled)
	})

	prefs.Present()
}

// updateConfigField atomically updates a single config field and persists the change.
func (a *App) updateConfigField(mutator func(cfg *config.Config)) {
	if err := a.configManager.UpdateField(mutator); err != nil {
		slog.Error("Failed to persist config change", "error", err)
	}
}

// initTray initializes the system tray icon and its callbacks.
func (a *App) initTray() {
	a.tray = NewTrayIcon()

	// Errors are logged only: callbacks are always set before Run.
	if err := a.tray.OnShow(func() {
		glib.IdleAdd(func() {
			a.ensureWindow()
			a.window.Present()
		})
	}); err != nil {
		slog.Error("Failed to register tray OnShow callback", "error", err)
	}

	if err := a.tray.OnQuit(func() {
		glib.IdleAdd(func() {
			a.Quit()
		})
	}); err != nil {
		slog.Error("Failed to register tray OnQuit callback", "error", err)
	}

	// Start tray in background (error logged but not fatal - tray is optional)
	go func() {
		if err := a.tray.Run(); err != nil {
			slog.Error("Tray icon error", "error", err)
		}
	}()
}

// onShutdown handles application shutdown, cleaning up resources.
func (a *App) onShutdown() {
	slog.Info("Application shutting down")

	a.session.Stop()

	if a.ctxCancel != nil {
		a.ctxCancel()
	}

	if a.tray != nil {
		a.tray.Quit()
	}

	slog.Info("Shutdown complete")
}

// ensureWindow creates the main window if it doesn't exist.
func (a *App) ensureWindow() {
	if a.window == nil {
		a.window = NewMainWindow(a.app, &MainWindowDeps{
			Session:       a.session,
			ConfigManager: a.configManager,
			Ctx:           a.ctx,
		})
	}
}

// startupInterface resolves the configured interface against the interfaces
// present now. A remembered interface is kept even while it is missing.
func startupInterface(configured string, names []string) string {
	switch configured {
	case config.AllInterfaces:
		return ""
	case "":
		return netstat.DefaultInterface(names)
	default:
		return configured
	}
}

// storedInterface maps a selection back to its config representation.
func storedInterface(name string) string {
	if name == "" {
		return config.AllInterfaces
	}
	return name
}
