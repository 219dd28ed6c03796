package wayland

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	ext_idle_notify "github.com/rajveermalviya/go-wayland/wayland/staging/ext-idle-notify-v1"

	"github.com/bnema/doze/internal/idle"
	"github.com/bnema/doze/internal/proto/wlr_layer_shell"
	"github.com/bnema/doze/internal/proto/wlr_output_power_management"
	"github.com/bnema/doze/internal/proto/wp_viewporter"
)

// Compile-time interface checks.
var (
	_ idle.Backend      = (*Session)(nil)
	_ idle.TimerHandle  = (*idleTimer)(nil)
	_ idle.OutputDevice = (*outputDevice)(nil)
	_ idle.FadeHandle   = (*fadeHandle)(nil)
)

// NewIdleTimer subscribes to idle notifications on the seat. The handlers
// tag every event with the subscription's purpose and generation so the
// orchestrator can drop events from superseded subscriptions.
func (s *Session) NewIdleTimer(timeout time.Duration, purpose idle.Purpose, gen uint64) (idle.TimerHandle, error) {
	notification, err := s.idleNotifier.GetIdleNotification(uint32(timeout/time.Millisecond), s.seat)
	if err != nil {
		return nil, fmt.Errorf("get idle notification: %w", err)
	}

	notification.SetIdledHandler(func(ext_idle_notify.IdleNotificationIdledEvent) {
		s.post(idle.TimerFired{Purpose: purpose, Gen: gen, Idled: true})
	})
	notification.SetResumedHandler(func(ext_idle_notify.IdleNotificationResumedEvent) {
		s.post(idle.TimerFired{Purpose: purpose, Gen: gen, Idled: false})
	})

	return &idleTimer{notification: notification}, nil
}

// BindOutput binds a display global and creates its power-mode control.
func (s *Session) BindOutput(name, version uint32) (idle.OutputDevice, error) {
	if version > outputBindVersion {
		version = outputBindVersion
	}

	output := client.NewOutput(s.display.Context())
	if err := s.registry.Bind(name, "wl_output", version, output); err != nil {
		return nil, fmt.Errorf("bind wl_output %d: %w", name, err)
	}

	power, err := s.powerManager.GetOutputPower(output)
	if err != nil {
		if derr := output.Release(); derr != nil {
			s.log.Debug().Err(derr).Uint32("output", name).Msg("output destroy failed")
		}
		return nil, fmt.Errorf("get output power: %w", err)
	}

	return &outputDevice{session: s, name: name, output: output, power: power}, nil
}

// HideCursor hides the pointer cursor for the given enter serial.
func (s *Session) HideCursor(serial uint32) error {
	return s.pointer.SetCursor(serial, nil, 0, 0)
}

type idleTimer struct {
	notification *ext_idle_notify.IdleNotification
}

func (t *idleTimer) Destroy() error {
	return t.notification.Destroy()
}

type outputDevice struct {
	session *Session
	name    uint32
	output  *client.Output
	power   *wlr_output_power_management.ZwlrOutputPowerV1
}

func (d *outputDevice) SetPower(on bool) error {
	mode := uint32(wlr_output_power_management.ZwlrOutputPowerV1ModeOff)
	if on {
		mode = wlr_output_power_management.ZwlrOutputPowerV1ModeOn
	}
	return d.power.SetMode(mode)
}

// CreateFade builds the full-screen overlay for this output: a surface
// with the layer_surface role on the overlay layer, anchored to all
// edges, with a viewport that will stretch a 1x1 black buffer across the
// whole output. The initial commit has no buffer attached; the first
// frame is drawn after the compositor's configure.
func (d *outputDevice) CreateFade() (idle.FadeHandle, error) {
	s := d.session

	surface, err := s.compositor.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}

	layerSurface, err := s.layerShell.GetLayerSurface(surface, d.output,
		wlr_layer_shell.ZwlrLayerShellV1LayerOverlay, "fade-to-black")
	if err != nil {
		if derr := surface.Destroy(); derr != nil {
			s.log.Debug().Err(derr).Msg("surface destroy failed")
		}
		return nil, fmt.Errorf("get layer surface: %w", err)
	}

	f := &fadeHandle{
		session:      s,
		output:       d.name,
		surface:      surface,
		layerSurface: layerSurface,
	}

	if err := layerSurface.SetAnchor(wlr_layer_shell.ZwlrLayerSurfaceV1AnchorAll); err != nil {
		return nil, errors.Join(fmt.Errorf("set anchor: %w", err), f.Destroy())
	}
	if err := layerSurface.SetExclusiveZone(-1); err != nil {
		return nil, errors.Join(fmt.Errorf("set exclusive zone: %w", err), f.Destroy())
	}

	viewport, err := s.viewporter.GetViewport(surface)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("get viewport: %w", err), f.Destroy())
	}
	f.viewport = viewport

	layerSurface.SetConfigureHandler(func(e wlr_layer_shell.ZwlrLayerSurfaceV1ConfigureEvent) {
		s.post(idle.FadeConfigured{
			Output: d.name,
			Serial: e.Serial,
			Width:  e.Width,
			Height: e.Height,
		})
	})

	if err := surface.Commit(); err != nil {
		return nil, errors.Join(fmt.Errorf("commit: %w", err), f.Destroy())
	}

	return f, nil
}

// Release destroys the power-mode control and the output binding.
func (d *outputDevice) Release() error {
	return errors.Join(d.power.Destroy(), d.output.Release())
}

type fadeHandle struct {
	session      *Session
	output       uint32
	surface      *client.Surface
	layerSurface *wlr_layer_shell.ZwlrLayerSurfaceV1
	viewport     *wp_viewporter.WpViewport
}

// Configure acknowledges the compositor's configure and sizes the
// viewport to cover the output.
func (f *fadeHandle) Configure(serial, width, height uint32) error {
	if err := f.layerSurface.AckConfigure(serial); err != nil {
		return fmt.Errorf("ack configure: %w", err)
	}
	if err := f.viewport.SetDestination(int32(width), int32(height)); err != nil {
		return fmt.Errorf("set destination: %w", err)
	}
	return nil
}

// Frame attaches a black single-pixel buffer at the given alpha, requests
// the next frame callback and commits. The buffer is destroyed right
// after the commit; the compositor keeps its content.
func (f *fadeHandle) Frame(alpha uint32) error {
	s := f.session

	buffer, err := s.bufferManager.CreateU32RgbaBuffer(0, 0, 0, alpha)
	if err != nil {
		return fmt.Errorf("create buffer: %w", err)
	}

	if err := f.surface.Attach(buffer, 0, 0); err != nil {
		return fmt.Errorf("attach: %w", err)
	}

	callback, err := f.surface.Frame()
	if err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	callback.SetDoneHandler(func(client.CallbackDoneEvent) {
		if err := callback.Destroy(); err != nil {
			s.log.Debug().Err(err).Msg("frame callback destroy failed")
		}
		s.post(idle.FrameDone{Output: f.output})
	})

	if err := f.surface.Damage(0, 0, math.MaxInt32, math.MaxInt32); err != nil {
		return fmt.Errorf("damage: %w", err)
	}
	if err := f.surface.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return buffer.Destroy()
}

// Destroy releases every protocol object the fade owns.
func (f *fadeHandle) Destroy() error {
	var errs []error
	if f.viewport != nil {
		errs = append(errs, f.viewport.Destroy())
	}
	errs = append(errs, f.layerSurface.Destroy(), f.surface.Destroy())
	return errors.Join(errs...)
}
