// Package power watches the system power source over D-Bus. It feeds the
// orchestrator the UPower OnBattery property and its change
// notifications.
package power

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/bnema/doze/internal/logging"
)

const (
	upowerDest = "org.freedesktop.UPower"
	upowerPath = "/org/freedesktop/UPower"

	onBatteryProp = "org.freedesktop.UPower.OnBattery"

	propsIface  = "org.freedesktop.DBus.Properties"
	propsSignal = propsIface + ".PropertiesChanged"
)

// Watch connects to the system bus, reports the current OnBattery value
// through post, then forwards every change until ctx is cancelled or the
// connection fails. Logs through the logger attached to ctx. Runs as a
// background task: a returned error takes down only this watcher, not
// the daemon.
func Watch(ctx context.Context, post func(onBattery bool)) error {
	log := logging.FromContext(ctx)

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("system bus connect failed: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(upowerDest, upowerPath)

	variant, err := obj.GetProperty(onBatteryProp)
	if err != nil {
		return fmt.Errorf("get OnBattery: %w", err)
	}
	onBattery, ok := variant.Value().(bool)
	if !ok {
		return fmt.Errorf("OnBattery has unexpected type %T", variant.Value())
	}
	log.Info().Bool("on_battery", onBattery).Msg("power source")
	post(onBattery)

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(upowerPath),
		dbus.WithMatchInterface(propsIface),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		return fmt.Errorf("add PropertiesChanged match: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return fmt.Errorf("system bus signal stream closed")
			}
			if sig.Name != propsSignal || len(sig.Body) < 2 {
				continue
			}
			iface, _ := sig.Body[0].(string)
			if iface != upowerDest {
				continue
			}
			changed, _ := sig.Body[1].(map[string]dbus.Variant)
			variant, ok := changed["OnBattery"]
			if !ok {
				continue
			}
			if value, ok := variant.Value().(bool); ok {
				post(value)
			}
		}
	}
}
