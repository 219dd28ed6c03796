// Package wayland binds doze to the compositor: it discovers the
// required protocol globals, forwards protocol events into the
// orchestrator's event channel, and implements the backend interfaces
// the orchestrator drives its effects through.
package wayland

import (
	"context"
	"fmt"
	"strings"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	ext_idle_notify "github.com/rajveermalviya/go-wayland/wayland/staging/ext-idle-notify-v1"
	"github.com/rs/zerolog"

	"github.com/bnema/doze/internal/idle"
	"github.com/bnema/doze/internal/proto/wlr_layer_shell"
	"github.com/bnema/doze/internal/proto/wlr_output_power_management"
	"github.com/bnema/doze/internal/proto/wp_single_pixel_buffer"
	"github.com/bnema/doze/internal/proto/wp_viewporter"
)

// wl_output is bound at most at this version; nothing newer is needed.
const outputBindVersion = 3

// global is a registry announcement for one of the singletons we bind.
type global struct {
	name    uint32
	version uint32
}

// Session owns the Wayland connection and every global protocol object.
// After Connect returns, all requests are issued by the orchestrator
// goroutine; the dispatch goroutine (Run) only decodes events and posts
// them through post.
type Session struct {
	display  *client.Display
	registry *client.Registry

	compositor    *client.Compositor
	seat          *client.Seat
	pointer       *client.Pointer
	idleNotifier  *ext_idle_notify.IdleNotifier
	layerShell    *wlr_layer_shell.ZwlrLayerShellV1
	viewporter    *wp_viewporter.WpViewporter
	bufferManager *wp_single_pixel_buffer.WpSinglePixelBufferManagerV1
	powerManager  *wlr_output_power_management.ZwlrOutputPowerManagerV1

	post func(idle.Event)
	log  zerolog.Logger
}

// Connect establishes the Wayland connection and binds every required
// global. A missing required global is fatal: the daemon cannot run
// without the compositor-side extensions. Displays present at startup
// and hotplugged later are both delivered as OutputAdded events.
func Connect(post func(idle.Event), log zerolog.Logger) (*Session, error) {
	display, err := client.Connect("")
	if err != nil {
		return nil, fmt.Errorf("wayland connect: %w", err)
	}

	registry, err := display.GetRegistry()
	if err != nil {
		display.Context().Close()
		return nil, fmt.Errorf("get registry: %w", err)
	}

	s := &Session{
		display:  display,
		registry: registry,
		post:     post,
		log:      log,
	}

	if err := s.bindGlobals(); err != nil {
		display.Context().Close()
		return nil, err
	}

	return s, nil
}

func (s *Session) bindGlobals() error {
	globals := map[string]global{}

	s.registry.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		switch e.Interface {
		case "wl_compositor", "wl_seat", "ext_idle_notifier_v1",
			"zwlr_layer_shell_v1", "wp_viewporter",
			"wp_single_pixel_buffer_manager_v1",
			"zwlr_output_power_manager_v1":
			// Singletons; first announcement wins.
			if _, ok := globals[e.Interface]; !ok {
				globals[e.Interface] = global{name: e.Name, version: e.Version}
			}
		case "wl_output":
			s.post(idle.OutputAdded{Name: e.Name, Version: e.Version})
		}
	})
	s.registry.SetGlobalRemoveHandler(func(e client.RegistryGlobalRemoveEvent) {
		// Only outputs are tracked by global name; the orchestrator
		// ignores names it does not know.
		s.post(idle.OutputRemoved{Name: e.Name})
	})

	// First roundtrip collects the announcements.
	if err := s.roundTrip(); err != nil {
		return err
	}

	var missing []string
	require := func(iface string) (global, bool) {
		g, ok := globals[iface]
		if !ok {
			missing = append(missing, iface)
		}
		return g, ok
	}

	ctx := s.display.Context()
	if g, ok := require("wl_compositor"); ok {
		s.compositor = client.NewCompositor(ctx)
		if err := s.registry.Bind(g.name, "wl_compositor", g.version, s.compositor); err != nil {
			return fmt.Errorf("bind wl_compositor: %w", err)
		}
	}
	if g, ok := require("wl_seat"); ok {
		s.seat = client.NewSeat(ctx)
		if err := s.registry.Bind(g.name, "wl_seat", g.version, s.seat); err != nil {
			return fmt.Errorf("bind wl_seat: %w", err)
		}
	}
	if g, ok := require("ext_idle_notifier_v1"); ok {
		s.idleNotifier = ext_idle_notify.NewIdleNotifier(ctx)
		if err := s.registry.Bind(g.name, "ext_idle_notifier_v1", g.version, s.idleNotifier); err != nil {
			return fmt.Errorf("bind ext_idle_notifier_v1: %w", err)
		}
	}
	if g, ok := require("zwlr_layer_shell_v1"); ok {
		s.layerShell = wlr_layer_shell.NewZwlrLayerShellV1(ctx)
		if err := s.registry.Bind(g.name, "zwlr_layer_shell_v1", g.version, s.layerShell); err != nil {
			return fmt.Errorf("bind zwlr_layer_shell_v1: %w", err)
		}
	}
	if g, ok := require("wp_viewporter"); ok {
		s.viewporter = wp_viewporter.NewWpViewporter(ctx)
		if err := s.registry.Bind(g.name, "wp_viewporter", g.version, s.viewporter); err != nil {
			return fmt.Errorf("bind wp_viewporter: %w", err)
		}
	}
	if g, ok := require("wp_single_pixel_buffer_manager_v1"); ok {
		s.bufferManager = wp_single_pixel_buffer.NewWpSinglePixelBufferManagerV1(ctx)
		if err := s.registry.Bind(g.name, "wp_single_pixel_buffer_manager_v1", g.version, s.bufferManager); err != nil {
			return fmt.Errorf("bind wp_single_pixel_buffer_manager_v1: %w", err)
		}
	}
	if g, ok := require("zwlr_output_power_manager_v1"); ok {
		s.powerManager = wlr_output_power_management.NewZwlrOutputPowerManagerV1(ctx)
		if err := s.registry.Bind(g.name, "zwlr_output_power_manager_v1", g.version, s.powerManager); err != nil {
			return fmt.Errorf("bind zwlr_output_power_manager_v1: %w", err)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("compositor does not support required protocols: %s",
			strings.Join(missing, ", "))
	}

	pointer, err := s.seat.GetPointer()
	if err != nil {
		return fmt.Errorf("get pointer: %w", err)
	}
	s.pointer = pointer
	pointer.SetEnterHandler(func(e client.PointerEnterEvent) {
		// The only surfaces in this client are fade overlays, so the
		// cursor is hidden whenever it enters one.
		s.post(idle.PointerEntered{Serial: e.Serial})
	})

	// Second roundtrip flushes the binds and surfaces protocol errors.
	return s.roundTrip()
}

// roundTrip blocks until the compositor has processed all outstanding
// requests.
func (s *Session) roundTrip() error {
	callback, err := s.display.Sync()
	if err != nil {
		return fmt.Errorf("display sync: %w", err)
	}
	defer func() {
		if err := callback.Destroy(); err != nil {
			s.log.Debug().Err(err).Msg("sync callback destroy failed")
		}
	}()

	done := false
	callback.SetDoneHandler(func(client.CallbackDoneEvent) {
		done = true
	})

	for !done {
		if err := s.display.Context().Dispatch(); err != nil {
			return fmt.Errorf("wayland dispatch: %w", err)
		}
	}
	return nil
}

// Run dispatches protocol events until ctx is cancelled or the
// connection fails. Handlers only decode and post; all state lives with
// the orchestrator.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.display.Context().Dispatch(); err != nil {
			return fmt.Errorf("wayland dispatch: %w", err)
		}
	}
}

// Close shuts down the Wayland connection. Any blocked Dispatch call
// returns with an error, unblocking Run.
func (s *Session) Close() {
	s.display.Context().Close()
}
