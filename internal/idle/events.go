// Package idle implements the idle-orchestration engine: per-purpose idle
// timers, the fade-to-black transition, output power transitions, delayed
// screen locking and suspend.
//
// All state in this package is owned by a single reactor goroutine
// (Orchestrator.Run). Protocol callbacks and bus listeners never mutate it
// directly; they post typed events onto the orchestrator's channel.
package idle

import (
	"github.com/bnema/doze/internal/config"
)

// Purpose identifies which idle timer a subscription or event serves.
type Purpose int

const (
	// PurposeScreenOff drives the fade-to-black and display power-off.
	PurposeScreenOff Purpose = iota
	// PurposeSuspend drives the system suspend action.
	PurposeSuspend

	numPurposes
)

func (p Purpose) String() string {
	switch p {
	case PurposeScreenOff:
		return "screen-off"
	case PurposeSuspend:
		return "suspend"
	default:
		return "unknown"
	}
}

// Event is a message drained by the orchestrator reactor. All state
// mutation happens in the order events are dequeued.
type Event interface {
	isEvent()
}

// TimerFired reports an Idled or Resumed transition on an idle-timer
// subscription. Gen tags the subscription generation that produced it;
// events from superseded generations are dropped.
type TimerFired struct {
	Purpose Purpose
	Gen     uint64
	Idled   bool
}

// OutputAdded reports a new display announced by the compositor.
type OutputAdded struct {
	Name    uint32
	Version uint32
}

// OutputRemoved reports a display retracted by the compositor.
type OutputRemoved struct {
	Name uint32
}

// FadeConfigured reports a configure event on an output's fade surface.
type FadeConfigured struct {
	Output uint32
	Serial uint32
	Width  uint32
	Height uint32
}

// FrameDone reports a frame-completion callback on an output's fade
// surface. It paces the fade animation to the display pipeline.
type FrameDone struct {
	Output uint32
}

// PointerEntered reports the pointer entering one of our surfaces. The
// cursor is hidden in response.
type PointerEntered struct {
	Serial uint32
}

// BatteryChanged reports a power-source transition from the UPower task.
type BatteryChanged struct {
	OnBattery bool
}

// InhibitChanged reports an aggregate screensaver-inhibition transition
// (0 to non-0 inhibitors, or back).
type InhibitChanged struct {
	Inhibited bool
}

// ConfigUpdated delivers a freshly reloaded configuration.
type ConfigUpdated struct {
	Config *config.Config
}

// lockDue fires when the post-fade lock delay elapses.
type lockDue struct{}

func (TimerFired) isEvent()     {}
func (OutputAdded) isEvent()    {}
func (OutputRemoved) isEvent()  {}
func (FadeConfigured) isEvent() {}
func (FrameDone) isEvent()      {}
func (PointerEntered) isEvent() {}
func (BatteryChanged) isEvent() {}
func (InhibitChanged) isEvent() {}
func (ConfigUpdated) isEvent()  {}
func (lockDue) isEvent()        {}
