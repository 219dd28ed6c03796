// Package config provides configuration management for doze with Viper integration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// File permission constants
const (
	dirPerm  = 0755 // Standard directory permissions (rwxr-xr-x)
	filePerm = 0644 // Standard file permissions (rw-r--r--)
)

// Default idle times, in milliseconds.
const (
	defaultScreenOffTime        = 15 * 60 * 1000
	defaultSuspendOnBatteryTime = 15 * 60 * 1000
	defaultSuspendOnACTime      = 30 * 60 * 1000
)

// Well-known action names resolvable through ActionCommand.
const (
	ActionLockScreen = "lock_screen"
	ActionSuspend    = "suspend"
)

// Config represents the complete configuration for doze.
type Config struct {
	Idle    IdleConfig    `mapstructure:"idle" yaml:"idle"`
	Actions Actions       `mapstructure:"actions" yaml:"actions"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Actions maps symbolic action names to the shell commands they run.
type Actions map[string]string

// Command resolves an action name to its shell command. An absent or
// empty mapping means "do nothing".
func (a Actions) Command(name string) (string, bool) {
	cmd, ok := a[name]
	if !ok || cmd == "" {
		return "", false
	}
	return cmd, true
}

// IdleConfig holds the idle timeouts. All values are non-negative
// millisecond counts; a nil pointer means the timer never triggers.
type IdleConfig struct {
	ScreenOffTime        *uint32 `mapstructure:"screen_off_time" yaml:"screen_off_time"`
	SuspendOnBatteryTime *uint32 `mapstructure:"suspend_on_battery_time" yaml:"suspend_on_battery_time"`
	SuspendOnACTime      *uint32 `mapstructure:"suspend_on_ac_time" yaml:"suspend_on_ac_time"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ScreenOff returns the screen-off timeout, if enabled.
func (c IdleConfig) ScreenOff() (time.Duration, bool) {
	return msOption(c.ScreenOffTime)
}

// SuspendOnBattery returns the on-battery suspend timeout, if enabled.
func (c IdleConfig) SuspendOnBattery() (time.Duration, bool) {
	return msOption(c.SuspendOnBatteryTime)
}

// SuspendOnAC returns the on-AC suspend timeout, if enabled.
func (c IdleConfig) SuspendOnAC() (time.Duration, bool) {
	return msOption(c.SuspendOnACTime)
}

func msOption(ms *uint32) (time.Duration, bool) {
	if ms == nil {
		return 0, false
	}
	return time.Duration(*ms) * time.Millisecond, true
}

// ActionCommand resolves a symbolic action name to a shell command.
func (c *Config) ActionCommand(name string) (string, bool) {
	return c.Actions.Command(name)
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	// Configure Viper - supports yaml, json, toml automatically
	v.SetConfigName("config") // Will find config.yaml, config.json, config.toml, etc.

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory for development

	// Set up environment variable support
	v.SetEnvPrefix("DOZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"idle.screen_off_time":         "IDLE_SCREEN_OFF_TIME",
		"idle.suspend_on_battery_time": "IDLE_SUSPEND_ON_BATTERY_TIME",
		"idle.suspend_on_ac_time":      "IDLE_SUSPEND_ON_AC_TIME",
		"logging.level":                "LOGGING_LEVEL",
		"logging.format":               "LOGGING_FORMAT",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, "DOZE_"+env); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setDefaults()

	// Read config file if it exists
	if err := m.viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create default one
			if err := m.createDefaultConfig(); err != nil {
				return fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	m.config = config
	return nil
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

// Watch starts watching the config file for changes and reloads automatically.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil // Already watching
	}

	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		if err := m.reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to reload config: %v\n", err)
			return
		}

		m.mu.RLock()
		config := m.config
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()

		for _, callback := range callbacks {
			callback(config)
		}
	})

	m.watching = true
	return nil
}

// OnConfigChange registers a callback function to be called when config changes.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
}

// reload reloads the configuration.
func (m *Manager) reload() error {
	if err := m.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to re-read config file: %w", err)
	}

	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
	return nil
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	m.viper.SetDefault("idle.screen_off_time", defaultScreenOffTime)
	m.viper.SetDefault("idle.suspend_on_battery_time", defaultSuspendOnBatteryTime)
	m.viper.SetDefault("idle.suspend_on_ac_time", defaultSuspendOnACTime)

	m.viper.SetDefault("actions", map[string]string{
		ActionLockScreen: "loginctl lock-session",
		ActionSuspend:    "systemctl suspend",
	})

	m.viper.SetDefault("logging.level", "info")
	m.viper.SetDefault("logging.format", "console")
}

// createDefaultConfig writes a config file populated with the defaults.
func (m *Manager) createDefaultConfig() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.yaml")
	if err := m.viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

// GetConfigDir returns the doze configuration directory.
func GetConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config directory: %w", err)
	}
	return filepath.Join(base, "doze"), nil
}
