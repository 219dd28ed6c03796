package idle

import (
	"time"

	"github.com/rs/zerolog"
)

// State aggregates the inputs the idle timeouts derive from.
type State struct {
	OnBattery bool
	Inhibited bool
	Idle      IdleTimes
}

// IdleTimes is the configured timeout set the orchestrator consumes.
type IdleTimes interface {
	ScreenOff() (time.Duration, bool)
	SuspendOnBattery() (time.Duration, bool)
	SuspendOnAC() (time.Duration, bool)
}

// screenOffTarget derives the screen-off timeout from the current state.
func screenOffTarget(st State) (time.Duration, bool) {
	if st.Inhibited || st.Idle == nil {
		return 0, false
	}
	return st.Idle.ScreenOff()
}

// suspendTarget derives the suspend timeout from the current state.
func suspendTarget(st State) (time.Duration, bool) {
	if st.Inhibited || st.Idle == nil {
		return 0, false
	}
	if st.OnBattery {
		return st.Idle.SuspendOnBattery()
	}
	return st.Idle.SuspendOnAC()
}

func target(p Purpose, st State) (time.Duration, bool) {
	if p == PurposeScreenOff {
		return screenOffTarget(st)
	}
	return suspendTarget(st)
}

// subscription is one purpose's live idle-notification subscription, if
// any. gen counts recreations so that events from a destroyed
// subscription can be told apart from the current one.
type subscription struct {
	handle  TimerHandle
	timeout time.Duration
	live    bool
	gen     uint64
}

// timerSet owns the per-purpose idle-timer subscriptions.
type timerSet struct {
	backend Backend
	subs    [numPurposes]subscription
	log     zerolog.Logger
}

// recompute reconciles each purpose's subscription with the timeout the
// given state calls for. A subscription is destroyed and recreated
// exactly when its target timeout changed, including transitions to and
// from "no timer". Returns which purposes churned; the caller must treat
// a churned purpose as not idle until the new subscription says
// otherwise.
func (ts *timerSet) recompute(st State) [numPurposes]bool {
	var changed [numPurposes]bool

	for p := PurposeScreenOff; p < numPurposes; p++ {
		want, enabled := target(p, st)
		sub := &ts.subs[p]

		if sub.live == enabled && (!enabled || sub.timeout == want) {
			continue
		}

		if sub.live {
			if err := sub.handle.Destroy(); err != nil {
				ts.log.Warn().Err(err).Stringer("purpose", p).Msg("idle timer: destroy failed")
			}
			sub.handle = nil
			sub.live = false
		}
		sub.gen++

		if enabled {
			handle, err := ts.backend.NewIdleTimer(want, p, sub.gen)
			if err != nil {
				ts.log.Error().Err(err).Stringer("purpose", p).Dur("timeout", want).
					Msg("idle timer: create failed")
			} else {
				sub.handle = handle
				sub.timeout = want
				sub.live = true
				ts.log.Debug().Stringer("purpose", p).Dur("timeout", want).
					Msg("idle timer: subscribed")
			}
		} else {
			ts.log.Debug().Stringer("purpose", p).Msg("idle timer: disabled")
		}
		changed[p] = true
	}

	return changed
}

// current reports whether an event tagged with the given generation comes
// from the purpose's live subscription.
func (ts *timerSet) current(p Purpose, gen uint64) bool {
	return ts.subs[p].live && ts.subs[p].gen == gen
}

// destroyAll releases every live subscription.
func (ts *timerSet) destroyAll() {
	for p := PurposeScreenOff; p < numPurposes; p++ {
		sub := &ts.subs[p]
		if !sub.live {
			continue
		}
		if err := sub.handle.Destroy(); err != nil {
			ts.log.Warn().Err(err).Stringer("purpose", p).Msg("idle timer: destroy failed")
		}
		sub.handle = nil
		sub.live = false
		sub.gen++
	}
}
