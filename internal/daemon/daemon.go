// Package daemon composes the doze daemon: configuration, logging, the
// Wayland session, the idle orchestrator and the bus-facing background
// tasks.
package daemon

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/doze/internal/action"
	"github.com/bnema/doze/internal/config"
	"github.com/bnema/doze/internal/idle"
	"github.com/bnema/doze/internal/logging"
	"github.com/bnema/doze/internal/power"
	"github.com/bnema/doze/internal/screensaver"
	"github.com/bnema/doze/internal/wayland"
)

// Run starts the daemon and blocks until ctx is cancelled or the Wayland
// session fails. The bus integrations (screensaver service, power-source
// watcher) are optional: their failure is logged and the idle, fade and
// power logic keeps running without them.
func Run(ctx context.Context) error {
	bootLog := logging.NewFromEnv()
	bootLog.Debug().Msg("loading configuration")

	manager, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("config manager: %w", err)
	}
	if err := manager.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := manager.Get()

	logger := logging.New(logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		TimeFormat: time.RFC3339,
	})
	ctx = logging.WithContext(ctx, logger)

	events := idle.NewEventQueue()
	post := func(ev idle.Event) { events <- ev }

	// A failed protocol binding is fatal: without the compositor-side
	// extensions there is nothing to orchestrate.
	session, err := wayland.Connect(post, logger.With().Str("component", "wayland").Logger())
	if err != nil {
		return fmt.Errorf("wayland session: %w", err)
	}
	defer session.Close()

	runner := action.NewRunner(logger.With().Str("component", "action").Logger())
	orch := idle.New(session, runner, cfg, events,
		logger.With().Str("component", "orchestrator").Logger())

	manager.OnConfigChange(func(c *config.Config) {
		post(idle.ConfigUpdated{Config: c})
	})
	if err := manager.Watch(); err != nil {
		logger.Warn().Err(err).Msg("config watch failed, hot reload disabled")
	}

	// Bus integrations run as background tasks. They feed the
	// orchestrator exclusively through the event queue and take only
	// themselves down on failure.
	registry := screensaver.NewRegistry(func(inhibited bool) {
		post(idle.InhibitChanged{Inhibited: inhibited})
	}, logger.With().Str("component", "screensaver").Logger())

	go func() {
		service, err := screensaver.NewService(registry,
			logger.With().Str("component", "screensaver").Logger())
		if err != nil {
			logger.Warn().Err(err).Msg("screensaver service unavailable")
			return
		}
		defer service.Close()
		if err := service.WatchDisconnects(ctx); err != nil && ctx.Err() == nil {
			logger.Warn().Err(err).Msg("screensaver disconnect watch stopped")
		}
	}()

	go func() {
		pctx := logging.WithComponent(ctx, "power")
		err := power.Watch(pctx, func(onBattery bool) {
			post(idle.BatteryChanged{OnBattery: onBattery})
		})
		if err != nil && ctx.Err() == nil {
			logging.FromContext(pctx).Warn().Err(err).Msg("power source watch stopped, assuming AC")
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return orch.Run(gctx)
	})
	g.Go(func() error {
		return session.Run(gctx)
	})
	g.Go(func() error {
		// Closing the connection unblocks the dispatch loop when the
		// daemon is asked to stop.
		<-gctx.Done()
		session.Close()
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
