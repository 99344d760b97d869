// Package main provides the entry point for bandwidth-monitor.
// bandwidth-monitor is a GTK4/libadwaita system tray application that shows
// the upload and download throughput of a network interface.
package main

import (
	"log/slog"
	"os"

	"github.com/shini4i/bandwidth-monitor/internal/logging"
	"github.com/shini4i/bandwidth-monitor/internal/ui"
)

func main() {
	// Initialize structured logging
	logging.SetupFromEnv()

	app, err := ui.NewApp()
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	if code := app.Run(os.Args); code > 0 {
		os.Exit(code)
	}
}
