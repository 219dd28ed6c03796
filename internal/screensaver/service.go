package screensaver

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/rs/zerolog"
)

const (
	busName   = "org.freedesktop.ScreenSaver"
	ifaceName = "org.freedesktop.ScreenSaver"

	objectPath = "/org/freedesktop/ScreenSaver"
	// Some clients (notably Firefox) look for this path instead of the
	// spec one, so both are exported.
	legacyPath = "/ScreenSaver"

	introspectIface = "org.freedesktop.DBus.Introspectable"
)

var introNode = introspect.Node{
	Interfaces: []introspect.Interface{
		introspect.IntrospectData,
		{
			Name: ifaceName,
			Methods: []introspect.Method{
				{
					Name: "Inhibit",
					Args: []introspect.Arg{
						{Name: "application_name", Type: "s", Direction: "in"},
						{Name: "reason_for_inhibit", Type: "s", Direction: "in"},
						{Name: "cookie", Type: "u", Direction: "out"},
					},
				},
				{
					Name: "UnInhibit",
					Args: []introspect.Arg{
						{Name: "cookie", Type: "u", Direction: "in"},
					},
				},
			},
		},
	},
}

// Service exports the inhibitor registry on the session bus as
// org.freedesktop.ScreenSaver.
type Service struct {
	conn     *dbus.Conn
	registry *Registry
	log      zerolog.Logger
}

// NewService connects to the session bus, claims the well-known name
// (replacing any existing owner) and exports the ScreenSaver interface on
// both object paths.
func NewService(registry *Registry, log zerolog.Logger) (*Service, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus connect failed: %w", err)
	}

	s := &Service{conn: conn, registry: registry, log: log}

	reply, err := conn.RequestName(busName, dbus.NameFlagReplaceExisting|dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name %q: %w", busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("request name %q: not the primary owner", busName)
	}

	for _, path := range []dbus.ObjectPath{objectPath, legacyPath} {
		if err := conn.Export(s, path, ifaceName); err != nil {
			conn.Close()
			return nil, fmt.Errorf("export %q on %q: %w", ifaceName, path, err)
		}
		if err := conn.Export(introspect.NewIntrospectable(&introNode), path, introspectIface); err != nil {
			conn.Close()
			return nil, fmt.Errorf("export %q on %q: %w", introspectIface, path, err)
		}
	}

	log.Info().Str("name", busName).Msg("screensaver service exported")
	return s, nil
}

// Inhibit handles org.freedesktop.ScreenSaver.Inhibit. The sender's
// unique bus name becomes the inhibitor's owner identity.
func (s *Service) Inhibit(from dbus.Sender, applicationName, reasonForInhibit string) (uint32, *dbus.Error) {
	cookie := s.registry.Inhibit(applicationName, reasonForInhibit, string(from))
	return cookie, nil
}

// UnInhibit handles org.freedesktop.ScreenSaver.UnInhibit. Unknown
// cookies are not an error.
func (s *Service) UnInhibit(from dbus.Sender, cookie uint32) *dbus.Error {
	s.registry.UnInhibit(cookie)
	return nil
}

// WatchDisconnects reconciles the registry against client disconnects:
// when a unique name loses its owner, every inhibitor that client held is
// released in one batch. Blocks until ctx is cancelled or the bus
// connection fails.
func (s *Service) WatchDisconnects(ctx context.Context) error {
	if err := s.conn.AddMatchSignal(
		dbus.WithMatchSender("org.freedesktop.DBus"),
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	); err != nil {
		return fmt.Errorf("add NameOwnerChanged match: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	s.conn.Signal(signals)
	defer s.conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return fmt.Errorf("session bus signal stream closed")
			}
			if sig.Name != "org.freedesktop.DBus.NameOwnerChanged" || len(sig.Body) != 3 {
				continue
			}
			name, _ := sig.Body[0].(string)
			newOwner, _ := sig.Body[2].(string)
			if newOwner == "" {
				s.registry.DropOwner(name)
			}
		}
	}
}

// Close releases the bus name and connection.
func (s *Service) Close() error {
	if _, err := s.conn.ReleaseName(busName); err != nil {
		s.log.Debug().Err(err).Msg("release bus name failed")
	}
	return s.conn.Close()
}
