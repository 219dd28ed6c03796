// Package cmd provides Cobra CLI commands for doze.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/doze/internal/daemon"
)

// BuildInfo carries build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var buildInfo = BuildInfo{
	Version:   "dev",
	Commit:    "unknown",
	BuildDate: "unknown",
}

var rootCmd = &cobra.Command{
	Use:   "doze",
	Short: "Idle management daemon for wlroots-based Wayland compositors",
	Long: `Doze - a session idle daemon for Wayland.

Doze watches the compositor's idle signal and drives display power,
a fade-to-black transition, screen locking and system suspend. It
exports org.freedesktop.ScreenSaver on the session bus so applications
can inhibit idle behavior, and follows the power source via UPower to
pick between the on-battery and on-AC suspend timeouts.

Requires a compositor supporting ext-idle-notify-v1, wlr-layer-shell
and wlr-output-power-management (Sway, Hyprland, River, Niri, etc.).

Running doze without a subcommand starts the daemon.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return daemon.Run(cmd.Context())
	},
	SilenceUsage: true,
}

// SetBuildInfo records the build metadata from main.
func SetBuildInfo(info BuildInfo) {
	buildInfo = info
}

// ExecuteContext runs the root command with the given context; commands
// observe its cancellation through cmd.Context().
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the idle daemon",
	Long:  `Run the idle daemon in the foreground. Equivalent to invoking doze with no subcommand.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return daemon.Run(cmd.Context())
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("doze %s (commit %s, built %s)\n",
			buildInfo.Version, buildInfo.Commit, buildInfo.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
