// Package config manages the persisted monitor preferences.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shini4i/bandwidth-monitor/internal/fileutil"
)

const (
	// AppName is the application identifier used for XDG paths.
	AppName = "bandwidth-monitor"
	// ConfigFileName is the name of the main configuration file.
	ConfigFileName = "config.json"

	// DefaultPollIntervalMS is the sampling cadence in milliseconds.
	DefaultPollIntervalMS = 1000
	// DefaultHistorySize is the number of samples kept for the chart.
	DefaultHistorySize = 60
	// DefaultChartMinMBps is the lower bound of the chart's Y axis ceiling.
	DefaultChartMinMBps = 10.0

	minPollIntervalMS = 100
	minHistorySize    = 2
	maxHistorySize    = 3600
)

// Counter backends accepted by CounterBackend.
const (
	BackendAuto     = "auto"
	BackendSysfs    = "sysfs"
	BackendGopsutil = "gopsutil"
)

// AllInterfaces is stored in Interface when the system-wide total was chosen.
const AllInterfaces = "*"

// Config represents the application configuration.
type Config struct {
	// Interface is the monitored interface. Empty picks one at startup;
	// AllInterfaces selects the system-wide total.
	Interface         string  `json:"interface,omitempty"`
	PollIntervalMS    int     `json:"poll_interval_ms"`
	HistorySize       int     `json:"history_size"`
	CounterBackend    string  `json:"counter_backend"`
	ChartMinMBps      float64 `json:"chart_min_mbps"`
	StartHidden       bool    `json:"start_hidden"`
	ShowSessionTotals bool    `json:"show_session_totals"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PollIntervalMS: DefaultPollIntervalMS,
		HistorySize:    DefaultHistorySize,
		CounterBackend: BackendAuto,
		ChartMinMBps:   DefaultChartMinMBps,
		StartHidden:    true,
	}
}

// PollInterval returns PollIntervalMS as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.PollIntervalMS < minPollIntervalMS {
		return fmt.Errorf("poll interval must be at least %dms", minPollIntervalMS)
	}
	if c.HistorySize < minHistorySize || c.HistorySize > maxHistorySize {
		return fmt.Errorf("history size must be between %d and %d", minHistorySize, maxHistorySize)
	}
	switch c.CounterBackend {
	case BackendAuto, BackendSysfs, BackendGopsutil:
	default:
		return fmt.Errorf("unknown counter backend %q", c.CounterBackend)
	}
	if c.ChartMinMBps <= 0 {
		return errors.New("chart scale must be positive")
	}
	return nil
}

// Paths holds the resolved configuration locations.
type Paths struct {
	ConfigDir  string
	ConfigFile string
}

// GetPaths returns the configuration paths following the XDG Base Directory layout.
func GetPaths() (*Paths, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	configDir := filepath.Join(configHome, AppName)
	return &Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, ConfigFileName),
	}, nil
}

// EnsurePaths creates the configuration directory.
func (p *Paths) EnsurePaths() error {
	if err := os.MkdirAll(p.ConfigDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// Load reads the configuration from disk.
// A missing file yields the defaults; fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to disk atomically.
func Save(path string, cfg *Config) error {
	if err := fileutil.WriteJSON(path, cfg, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Manager provides high-level configuration management.
// It is safe for concurrent use from multiple goroutines.
type Manager struct {
	paths  *Paths
	config *Config
	mu     sync.RWMutex
}

// NewManager creates a new configuration manager.
// It ensures the configuration directory exists and loads the configuration.
// An invalid file on disk is replaced by defaults in memory rather than failing startup.
func NewManager() (*Manager, error) {
	paths, err := GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	if err := paths.EnsurePaths(); err != nil {
		return nil, fmt.Errorf("failed to create config directories: %w", err)
	}

	cfg, err := Load(paths.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}

	return &Manager{
		paths:  paths,
		config: cfg,
	}, nil
}

// GetConfig returns a copy of the current configuration.
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// GetConfigDir returns the path to the configuration directory.
func (m *Manager) GetConfigDir() string {
	return m.paths.ConfigDir
}

// SaveConfig saves the current configuration to disk.
func (m *Manager) SaveConfig() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Save(m.paths.ConfigFile, m.config)
}

// UpdateConfig replaces the configuration and saves it.
func (m *Manager) UpdateConfig(cfg *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := cfg.Validate(); err != nil {
		return err
	}
	stored := *cfg
	m.config = &stored
	return Save(m.paths.ConfigFile, m.config)
}

// UpdateField atomically updates fields using a mutator function.
// If validation fails, the original config is preserved.
func (m *Manager) UpdateField(mutator func(cfg *Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	configCopy := *m.config
	mutator(&configCopy)
	if err := configCopy.Validate(); err != nil {
		return err
	}

	*m.config = configCopy
	return Save(m.paths.ConfigFile, m.config)
}
