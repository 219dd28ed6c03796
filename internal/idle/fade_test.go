package idle

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEaseInOutBounds(t *testing.T) {
	assert.Equal(t, 0.0, easeInOut(-1))
	assert.Equal(t, 0.0, easeInOut(0))
	assert.Equal(t, 0.5, easeInOut(0.5))
	assert.Equal(t, 1.0, easeInOut(1))
	assert.Equal(t, 1.0, easeInOut(2))
}

func TestEaseInOutMonotonic(t *testing.T) {
	prev := easeInOut(0)
	for i := 1; i <= 100; i++ {
		v := easeInOut(float64(i) / 100)
		assert.GreaterOrEqual(t, v, prev, "easing must not decrease at t=%d/100", i)
		prev = v
	}
}

func TestFadeAlphaProgression(t *testing.T) {
	start := time.Unix(0, 0)
	f := newFadeSurface(nil, start)

	assert.Equal(t, uint32(0), f.alpha(start))

	mid := f.alpha(start.Add(FadeDuration / 2))
	assert.Equal(t, uint32(math.MaxUint32/2), mid)

	assert.Equal(t, uint32(math.MaxUint32), f.alpha(start.Add(FadeDuration)))
	assert.Equal(t, uint32(math.MaxUint32), f.alpha(start.Add(2*FadeDuration)))
}

func TestFadeDone(t *testing.T) {
	start := time.Unix(0, 0)
	f := newFadeSurface(nil, start)

	assert.False(t, f.done(start))
	assert.False(t, f.done(start.Add(FadeDuration)), "final frame still renders at full opacity")
	assert.True(t, f.done(start.Add(FadeDuration+time.Millisecond)))
}
