package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/doze/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View configuration status and the effective idle timeouts.`,
}

var configStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the config file location and effective settings",
	RunE:  runConfigStatus,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configStatusCmd)
}

func runConfigStatus(_ *cobra.Command, _ []string) error {
	dir, err := config.GetConfigDir()
	if err != nil {
		return err
	}

	manager, err := config.NewManager()
	if err != nil {
		return err
	}
	if err := manager.Load(); err != nil {
		return err
	}
	cfg := manager.Get()

	fmt.Printf("Config file: %s\n\n", filepath.Join(dir, "config.yaml"))
	fmt.Printf("  screen_off_time:         %s\n", formatTimeout(cfg.Idle.ScreenOff))
	fmt.Printf("  suspend_on_battery_time: %s\n", formatTimeout(cfg.Idle.SuspendOnBattery))
	fmt.Printf("  suspend_on_ac_time:      %s\n", formatTimeout(cfg.Idle.SuspendOnAC))
	fmt.Println()
	for name, command := range cfg.Actions {
		fmt.Printf("  action %-12s %s\n", name+":", command)
	}
	return nil
}

func formatTimeout(get func() (time.Duration, bool)) string {
	d, ok := get()
	if !ok {
		return "disabled"
	}
	return d.String()
}
