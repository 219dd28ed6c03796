package idle

import "time"

// TimerHandle is a live idle-notification subscription. Destroy releases
// the underlying protocol resource immediately.
type TimerHandle interface {
	Destroy() error
}

// FadeHandle is the protocol-facing side of a fade-to-black overlay: a
// full-screen surface on the overlay layer with a viewport that stretches
// a single black pixel across the whole output.
type FadeHandle interface {
	// Configure acknowledges a configure event and sizes the viewport.
	Configure(serial, width, height uint32) error
	// Frame attaches a black buffer at the given alpha, commits, and
	// requests the next frame-completion callback.
	Frame(alpha uint32) error
	// Destroy releases the viewport, layer surface and surface.
	Destroy() error
}

// OutputDevice is a bound display together with its power-mode control.
type OutputDevice interface {
	SetPower(on bool) error
	CreateFade() (FadeHandle, error)
	// Release destroys the power-mode control and the output binding.
	Release() error
}

// Backend creates protocol resources on behalf of the orchestrator. The
// Wayland session implements it; tests substitute fakes.
type Backend interface {
	// NewIdleTimer subscribes to idle notifications at the given timeout.
	// Events it produces are tagged with purpose and gen.
	NewIdleTimer(timeout time.Duration, purpose Purpose, gen uint64) (TimerHandle, error)
	// BindOutput binds a display announced under the given registry name.
	BindOutput(name, version uint32) (OutputDevice, error)
	// HideCursor hides the pointer cursor for the given enter serial.
	HideCursor(serial uint32) error
}
