// Package screensaver implements the org.freedesktop.ScreenSaver service:
// an inhibitor registry exposed over the session bus, with disconnect
// reconciliation and an aggregate "any inhibitor active" signal.
package screensaver

import (
	"sync"

	"github.com/rs/zerolog"
)

// Inhibitor is one caller-held lease suppressing idle behavior.
type Inhibitor struct {
	AppName string
	Reason  string
	// Owner is the unique bus name of the client holding the lease.
	Owner string
}

// Registry tracks active inhibitors keyed by cookie. It is safe for
// concurrent use: bus method calls and disconnect reconciliation both act
// on it from different goroutines.
//
// The notify callback fires exactly on 0-to-non-0 and non-0-to-0
// transitions of the registry size, never on intermediate counts. It is
// invoked under the registry lock so transitions are reported in the
// order they happened; it must not call back into the registry.
type Registry struct {
	mu         sync.Mutex
	inhibitors map[uint32]Inhibitor
	lastCookie uint32
	notify     func(inhibited bool)
	log        zerolog.Logger
}

// NewRegistry creates an empty registry. notify may be nil.
func NewRegistry(notify func(inhibited bool), log zerolog.Logger) *Registry {
	return &Registry{
		inhibitors: make(map[uint32]Inhibitor),
		notify:     notify,
		log:        log,
	}
}

// Inhibit records a new inhibitor and returns its cookie. Cookies are
// assigned from a monotonic counter and never reused while their
// inhibitor is alive.
func (r *Registry) Inhibit(appName, reason, owner string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastCookie++
	cookie := r.lastCookie
	wasEmpty := len(r.inhibitors) == 0
	r.inhibitors[cookie] = Inhibitor{AppName: appName, Reason: reason, Owner: owner}

	r.log.Info().Uint32("cookie", cookie).Str("app", appName).Str("reason", reason).
		Str("owner", owner).Msg("inhibit")

	if wasEmpty {
		r.emit(true)
	}
	return cookie
}

// UnInhibit removes the inhibitor with the given cookie. Unknown and
// already-released cookies are silently ignored.
func (r *Registry) UnInhibit(cookie uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.inhibitors[cookie]; !ok {
		r.log.Debug().Uint32("cookie", cookie).Msg("uninhibit: unknown cookie")
		return
	}
	delete(r.inhibitors, cookie)

	r.log.Info().Uint32("cookie", cookie).Msg("uninhibit")
	if len(r.inhibitors) == 0 {
		r.emit(false)
	}
}

// DropOwner removes every inhibitor held by the given client in one
// batch. Called when the client disconnects from the bus; the aggregate
// signal fires at most once.
func (r *Registry) DropOwner(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for cookie, inh := range r.inhibitors {
		if inh.Owner == owner {
			delete(r.inhibitors, cookie)
			dropped++
		}
	}
	if dropped == 0 {
		return
	}

	r.log.Info().Str("owner", owner).Int("dropped", dropped).
		Msg("client disconnected, releasing its inhibitors")
	if len(r.inhibitors) == 0 {
		r.emit(false)
	}
}

// Inhibited reports whether at least one inhibitor is active.
func (r *Registry) Inhibited() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inhibitors) > 0
}

func (r *Registry) emit(inhibited bool) {
	if r.notify != nil {
		r.notify(inhibited)
	}
}
