package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/doze/internal/cli/cmd"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetBuildInfo(cmd.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.ExecuteContext(ctx)
}
