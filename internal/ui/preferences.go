package ui

import (
	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
)

// PreferencesWindow shows application preferences.
type PreferencesWindow struct {
	window *adw.PreferencesWindow

	// Settings widgets
	startHiddenSwitch   *adw.SwitchRow
	sessionTotalsSwitch *adw.SwitchRow

	// Callbacks
	onStartHiddenChanged   func(enabled bool)
	onSessionTotalsChanged func(enabled bool)

	// Track previous state to detect changes
	prevStartHidden   bool
	prevSessionTotals bool
}

// NewPreferencesWindow creates a new preferences window.
func NewPreferencesWindow(parent *MainWindow) *PreferencesWindow {
	pw := &PreferencesWindow{}
	pw.setupWindow(parent)
	return pw
}

// setupWindow creates the preferences window UI.
func (pw *PreferencesWindow) setupWindow(parent *MainWindow) {
	pw.window = adw.NewPreferencesWindow()
	pw.window.SetTitle("Preferences")
	pw.window.SetModal(true)
	pw.window.SetDefaultSize(400, 300)

	if parent != nil && parent.window != nil {
		pw.window.SetTransientFor(&parent.window.Window)
	}

	generalPage := adw.NewPreferencesPage()
	generalPage.SetTitle("General")
	generalPage.SetIconName("preferences-system-symbolic")

	behaviorGroup := adw.NewPreferencesGroup()
	behaviorGroup.SetTitle("Behavior")

	pw.startHiddenSwitch = adw.NewSwitchRow()
	pw.startHiddenSwitch.SetTitle("Start Hidden")
	pw.startHiddenSwitch.SetSubtitle("Only show the tray icon when the application starts")
	pw.startHiddenSwitch.SetActive(true)
	pw.prevStartHidden = true
	behaviorGroup.Add(pw.startHiddenSwitch)

	displayGroup := adw.NewPreferencesGroup()
	displayGroup.SetTitle("Display")

	pw.sessionTotalsSwitch = adw.NewSwitchRow()
	pw.sessionTotalsSwitch.SetTitle("Session Totals")
	pw.sessionTotalsSwitch.SetSubtitle("Show traffic since monitoring started instead of interface counters")
	pw.sessionTotalsSwitch.SetActive(false)
	pw.prevSessionTotals = false
	displayGroup.Add(pw.sessionTotalsSwitch)

	generalPage.Add(behaviorGroup)
	generalPage.Add(displayGroup)
	pw.window.Add(generalPage)

	pw.window.ConnectCloseRequest(func() bool {
		pw.handleClose()
		return false // Allow close
	})
}

// handleClose is called when the preferences window is closed.
func (pw *PreferencesWindow) handleClose() {
	if pw.startHiddenSwitch.Active() != pw.prevStartHidden {
		if pw.onStartHiddenChanged != nil {
			pw.onStartHiddenChanged(pw.startHiddenSwitch.Active())
		}
	}

	if pw.sessionTotalsSwitch.Active() != pw.prevSessionTotals {
		if pw.onSessionTotalsChanged != nil {
			pw.onSessionTotalsChanged(pw.sessionTotalsSwitch.Active())
		}
	}
}

// Present shows the preferences window.
func (pw *PreferencesWindow) Present() {
	pw.window.Present()
}

// SetStartHidden sets the start-hidden toggle state.
func (pw *PreferencesWindow) SetStartHidden(enabled bool) {
	pw.startHiddenSwitch.SetActive(enabled)
	pw.prevStartHidden = enabled
}

// SetSessionTotals sets the session-totals toggle state.
func (pw *PreferencesWindow) SetSessionTotals(enabled bool) {
	pw.sessionTotalsSwitch.SetActive(enabled)
	pw.prevSessionTotals = enabled
}

// OnStartHiddenChanged registers a callback for start-hidden changes.
func (pw *PreferencesWindow) OnStartHiddenChanged(callback func(enabled bool)) {
	pw.onStartHiddenChanged = callback
}

// OnSessionTotalsChanged registers a callback for session-totals changes.
func (pw *PreferencesWindow) OnSessionTotalsChanged(callback func(enabled bool)) {
	pw.onSessionTotalsChanged = callback
}
