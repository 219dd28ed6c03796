package idle

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/doze/internal/config"
)

// lockDelay separates "displays off" from "session locked" so the fade
// is visually complete before the lock screen appears.
const lockDelay = 500 * time.Millisecond

const eventQueueSize = 64

// ActionRunner invokes an external system action. Invocations are
// fire-and-forget: the orchestrator never waits on them.
type ActionRunner interface {
	Spawn(name, command string)
}

// Orchestrator is the reactor-driven idle controller. It owns every piece
// of idle-related state and mediates all display, power, lock and suspend
// effects. Run drains the event channel on a single goroutine; nothing
// else mutates orchestrator state.
type Orchestrator struct {
	backend Backend
	runner  ActionRunner
	events  chan Event

	outputs *outputRegistry
	timers  timerSet
	state   State
	actions config.Actions

	// afterFunc schedules the one-shot lock delay; replaced in tests.
	afterFunc func(time.Duration, func()) *time.Timer
	now       func() time.Time

	log zerolog.Logger
}

// NewEventQueue creates the channel the orchestrator drains. It is
// created independently of the orchestrator so that event producers (the
// Wayland session in particular, which reports initial outputs while
// connecting) can exist before the orchestrator does.
func NewEventQueue() chan Event {
	return make(chan Event, eventQueueSize)
}

// New creates an orchestrator over the given backend, initialized from
// cfg, draining events.
func New(backend Backend, runner ActionRunner, cfg *config.Config, events chan Event, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		backend:   backend,
		runner:    runner,
		events:    events,
		outputs:   newOutputRegistry(log),
		timers:    timerSet{backend: backend, log: log},
		state:     State{Idle: cfg.Idle},
		actions:   cfg.Actions,
		afterFunc: time.AfterFunc,
		now:       time.Now,
		log:       log,
	}
}

// Post enqueues an event for the reactor. Safe to call from any
// goroutine; this channel is the single synchronization boundary between
// the background tasks and orchestrator state.
func (o *Orchestrator) Post(ev Event) {
	o.events <- ev
}

// Run drains the event queue until ctx is cancelled, applying every
// state-mutating effect in dequeue order. It performs the initial timer
// recomputation before processing events.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.recompute()

	for {
		select {
		case <-ctx.Done():
			o.shutdown()
			return ctx.Err()
		case ev := <-o.events:
			o.handle(ev)
		}
	}
}

func (o *Orchestrator) handle(ev Event) {
	switch ev := ev.(type) {
	case TimerFired:
		o.handleTimer(ev)
	case OutputAdded:
		o.addOutput(ev.Name, ev.Version)
	case OutputRemoved:
		o.outputs.remove(ev.Name)
	case FadeConfigured:
		o.handleConfigure(ev)
	case FrameDone:
		o.handleFrame(ev.Output)
	case PointerEntered:
		if err := o.backend.HideCursor(ev.Serial); err != nil {
			o.log.Debug().Err(err).Msg("hide cursor failed")
		}
	case BatteryChanged:
		if o.state.OnBattery == ev.OnBattery {
			return
		}
		o.state.OnBattery = ev.OnBattery
		o.log.Info().Bool("on_battery", ev.OnBattery).Msg("power source changed")
		o.recompute()
	case InhibitChanged:
		if o.state.Inhibited == ev.Inhibited {
			return
		}
		o.state.Inhibited = ev.Inhibited
		o.log.Info().Bool("inhibited", ev.Inhibited).Msg("screensaver inhibition changed")
		o.recompute()
	case ConfigUpdated:
		o.state.Idle = ev.Config.Idle
		o.actions = ev.Config.Actions
		o.log.Info().Msg("configuration reloaded")
		o.recompute()
	case lockDue:
		o.runAction(config.ActionLockScreen)
	}
}

func (o *Orchestrator) handleTimer(ev TimerFired) {
	if !o.timers.current(ev.Purpose, ev.Gen) {
		// Event from a subscription generation that has been superseded;
		// delivery order across destroy/recreate is not guaranteed.
		o.log.Debug().Stringer("purpose", ev.Purpose).Uint64("gen", ev.Gen).
			Msg("dropping stale idle timer event")
		return
	}

	switch ev.Purpose {
	case PurposeScreenOff:
		if ev.Idled {
			o.screenOffIdle()
		} else {
			o.screenOffResume()
		}
	case PurposeSuspend:
		// Suspend is a fire-once action, not a held state; Resumed is a
		// no-op.
		if ev.Idled {
			o.log.Info().Msg("suspend timer fired")
			o.runAction(config.ActionSuspend)
		}
	}
}

// screenOffIdle starts a fade-to-black on every output. The first frame
// is rendered once the compositor configures the surface.
func (o *Orchestrator) screenOffIdle() {
	o.log.Info().Msg("screen-off timer fired, starting fade")
	for _, out := range o.outputs.outputs {
		if out.fade != nil {
			continue
		}
		handle, err := out.dev.CreateFade()
		if err != nil {
			o.log.Error().Err(err).Uint32("output", out.name).Msg("fade surface creation failed")
			continue
		}
		out.fade = newFadeSurface(handle, o.now())
	}
}

// screenOffResume drops any in-flight fade immediately and forces every
// output back on.
func (o *Orchestrator) screenOffResume() {
	o.log.Info().Msg("activity resumed, powering outputs on")
	for _, out := range o.outputs.outputs {
		o.dropFade(out)
		if err := out.dev.SetPower(true); err != nil {
			o.log.Warn().Err(err).Uint32("output", out.name).Msg("output power-on failed")
		}
	}
}

func (o *Orchestrator) handleConfigure(ev FadeConfigured) {
	out, ok := o.outputs.get(ev.Output)
	if !ok || out.fade == nil {
		return
	}
	if err := out.fade.handle.Configure(ev.Serial, ev.Width, ev.Height); err != nil {
		o.log.Warn().Err(err).Uint32("output", ev.Output).Msg("fade configure failed")
		return
	}
	if !out.fade.configured {
		out.fade.configured = true
		if err := out.fade.renderFrame(o.now()); err != nil {
			o.log.Warn().Err(err).Uint32("output", ev.Output).Msg("fade first frame failed")
		}
	}
}

// handleFrame advances one output's fade on a frame-completion callback.
// When the fade window has elapsed the output is powered off; when the
// last fade across all outputs completes, the delayed lock is scheduled.
func (o *Orchestrator) handleFrame(name uint32) {
	out, ok := o.outputs.get(name)
	if !ok || out.fade == nil {
		return
	}

	now := o.now()
	if out.fade.done(now) {
		if err := out.dev.SetPower(false); err != nil {
			o.log.Warn().Err(err).Uint32("output", name).Msg("output power-off failed")
		}
		o.dropFade(out)
		if o.outputs.liveFades() == 0 {
			o.scheduleLock()
		}
		return
	}

	if err := out.fade.renderFrame(now); err != nil {
		o.log.Warn().Err(err).Uint32("output", name).Msg("fade frame failed")
	}
}

func (o *Orchestrator) addOutput(name, version uint32) {
	if _, ok := o.outputs.get(name); ok {
		return
	}
	dev, err := o.backend.BindOutput(name, version)
	if err != nil {
		o.log.Error().Err(err).Uint32("output", name).Msg("output bind failed")
		return
	}
	o.outputs.add(name, dev)
}

func (o *Orchestrator) dropFade(out *Output) {
	if out.fade == nil {
		return
	}
	if err := out.fade.destroy(); err != nil {
		o.log.Warn().Err(err).Uint32("output", out.name).Msg("fade teardown failed")
	}
	out.fade = nil
}

// scheduleLock arms the one-shot delayed lock action. The timer is never
// re-armed after firing.
func (o *Orchestrator) scheduleLock() {
	o.log.Info().Dur("delay", lockDelay).Msg("all outputs off, scheduling lock")
	o.afterFunc(lockDelay, func() {
		o.Post(lockDue{})
	})
}

// recompute reconciles the idle-timer subscriptions with current state.
// A recreated screen-off subscription is forced back to not-idle: the
// protocol only reports Resumed after a prior Idled, so leftover idle
// state must not survive a recreation.
func (o *Orchestrator) recompute() {
	changed := o.timers.recompute(o.state)
	if changed[PurposeScreenOff] {
		o.screenOffResume()
	}
}

func (o *Orchestrator) runAction(name string) {
	command, ok := o.actions.Command(name)
	if !ok {
		o.log.Debug().Str("action", name).Msg("no command configured for action")
		return
	}
	o.runner.Spawn(name, command)
}

// shutdown releases every protocol resource the orchestrator owns.
func (o *Orchestrator) shutdown() {
	o.timers.destroyAll()
	for name := range o.outputs.outputs {
		o.outputs.remove(name)
	}
}
