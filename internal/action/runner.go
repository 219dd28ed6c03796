// Package action spawns the external commands doze is configured to run
// for system actions such as locking the screen or suspending.
package action

import (
	"os/exec"

	"github.com/rs/zerolog"
)

// Runner executes action commands fire-and-forget: the caller never
// blocks on the child process, and completion status is only logged.
type Runner struct {
	log zerolog.Logger
}

// NewRunner creates a runner logging through the given logger.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{log: log}
}

// Spawn starts the command through the shell and returns immediately.
// Spawn and exit failures are logged with the command, never escalated
// and never retried.
func (r *Runner) Spawn(name, command string) {
	cmd := exec.Command("/bin/sh", "-c", command)
	if err := cmd.Start(); err != nil {
		r.log.Error().Err(err).Str("action", name).Str("command", command).
			Msg("action spawn failed")
		return
	}

	r.log.Info().Str("action", name).Str("command", command).Int("pid", cmd.Process.Pid).
		Msg("action spawned")

	go func() {
		if err := cmd.Wait(); err != nil {
			r.log.Warn().Err(err).Str("action", name).Str("command", command).
				Msg("action exited with error")
			return
		}
		r.log.Debug().Str("action", name).Msg("action completed")
	}()
}
