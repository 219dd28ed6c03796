package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := &Manager{viper: viper.New()}
	m.setDefaults()

	cfg := &Config{}
	require.NoError(t, m.viper.Unmarshal(cfg))
	m.config = cfg
	return m
}

func TestDefaults(t *testing.T) {
	m := newTestManager(t)
	cfg := m.Get()

	d, ok := cfg.Idle.ScreenOff()
	require.True(t, ok)
	assert.Equal(t, 15*time.Minute, d)

	d, ok = cfg.Idle.SuspendOnBattery()
	require.True(t, ok)
	assert.Equal(t, 15*time.Minute, d)

	d, ok = cfg.Idle.SuspendOnAC()
	require.True(t, ok)
	assert.Equal(t, 30*time.Minute, d)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestDefaultActions(t *testing.T) {
	m := newTestManager(t)
	cfg := m.Get()

	cmd, ok := cfg.ActionCommand(ActionLockScreen)
	require.True(t, ok)
	assert.Equal(t, "loginctl lock-session", cmd)

	cmd, ok = cfg.ActionCommand(ActionSuspend)
	require.True(t, ok)
	assert.Equal(t, "systemctl suspend", cmd)
}

func TestActionCommandMissingOrEmpty(t *testing.T) {
	cfg := &Config{Actions: map[string]string{ActionSuspend: ""}}

	_, ok := cfg.ActionCommand(ActionSuspend)
	assert.False(t, ok, "empty mapping means do nothing")

	_, ok = cfg.ActionCommand(ActionLockScreen)
	assert.False(t, ok, "absent mapping means do nothing")
}

func TestActionsCommandLookup(t *testing.T) {
	actions := Actions{
		ActionSuspend:    "systemctl suspend",
		ActionLockScreen: "",
	}

	cmd, ok := actions.Command(ActionSuspend)
	require.True(t, ok)
	assert.Equal(t, "systemctl suspend", cmd)

	_, ok = actions.Command(ActionLockScreen)
	assert.False(t, ok)
	_, ok = actions.Command("hibernate")
	assert.False(t, ok)
}

func TestIdleConfigNilMeansDisabled(t *testing.T) {
	var idle IdleConfig

	_, ok := idle.ScreenOff()
	assert.False(t, ok)
	_, ok = idle.SuspendOnBattery()
	assert.False(t, ok)
	_, ok = idle.SuspendOnAC()
	assert.False(t, ok)
}

func TestMillisecondConversion(t *testing.T) {
	ms := uint32(600000)
	idle := IdleConfig{ScreenOffTime: &ms}

	d, ok := idle.ScreenOff()
	require.True(t, ok)
	assert.Equal(t, 10*time.Minute, d)
}

func TestZeroTimeoutIsEnabled(t *testing.T) {
	// Zero is a valid, immediate timeout, distinct from disabled.
	ms := uint32(0)
	idle := IdleConfig{ScreenOffTime: &ms}

	d, ok := idle.ScreenOff()
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), d)
}

func TestGetReturnsCopy(t *testing.T) {
	m := newTestManager(t)

	first := m.Get()
	first.Logging.Level = "debug"

	assert.Equal(t, "info", m.Get().Logging.Level)
}

func TestOnConfigChangeRegistration(t *testing.T) {
	m := newTestManager(t)

	called := 0
	m.OnConfigChange(func(*Config) { called++ })
	m.OnConfigChange(func(*Config) { called++ })

	assert.Len(t, m.callbacks, 2)
	assert.Zero(t, called, "callbacks only fire on file change")
}
