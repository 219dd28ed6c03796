package idle

import (
	"math"
	"time"
)

// FadeDuration is how long the fade-to-black transition runs before the
// output is powered off.
const FadeDuration = 2 * time.Second

// FadeSurface tracks one output's fade-to-black overlay while the output
// transitions to idle. The animation is driven by frame-completion
// callbacks, so it ticks as fast as the display pipeline delivers frames.
type FadeSurface struct {
	handle     FadeHandle
	started    time.Time
	configured bool
}

func newFadeSurface(handle FadeHandle, now time.Time) *FadeSurface {
	return &FadeSurface{
		handle:  handle,
		started: now,
	}
}

// done reports whether the fade window has elapsed.
func (f *FadeSurface) done(now time.Time) bool {
	return now.Sub(f.started) > FadeDuration
}

// alpha computes the eased overlay opacity for the given instant.
func (f *FadeSurface) alpha(now time.Time) uint32 {
	t := float64(now.Sub(f.started)) / float64(FadeDuration)
	return uint32(easeInOut(t) * math.MaxUint32)
}

// renderFrame draws the next animation frame and requests another
// frame-completion callback.
func (f *FadeSurface) renderFrame(now time.Time) error {
	return f.handle.Frame(f.alpha(now))
}

func (f *FadeSurface) destroy() error {
	return f.handle.Destroy()
}

// easeInOut is a quadratic ease-in-out over [0, 1], clamped outside it.
func easeInOut(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 2 * t * t
	default:
		return (4-2*t)*t - 1
	}
}
