package screensaver

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() (*Registry, *[]bool) {
	signals := &[]bool{}
	r := NewRegistry(func(inhibited bool) {
		*signals = append(*signals, inhibited)
	}, zerolog.Nop())
	return r, signals
}

func TestCookiesAreMonotonic(t *testing.T) {
	r, _ := newTestRegistry()

	first := r.Inhibit("firefox", "video playback", ":1.10")
	second := r.Inhibit("mpv", "video playback", ":1.20")

	assert.Equal(t, uint32(1), first)
	assert.Equal(t, uint32(2), second)

	// A released cookie is not reused.
	r.UnInhibit(second)
	third := r.Inhibit("mpv", "video playback", ":1.20")
	assert.Equal(t, uint32(3), third)
}

func TestAggregateSignalFiresOnlyOnBoundaryTransitions(t *testing.T) {
	r, signals := newTestRegistry()

	c1 := r.Inhibit("firefox", "video", ":1.10")
	c2 := r.Inhibit("mpv", "video", ":1.20")
	require.Equal(t, []bool{true}, *signals, "only the 0-to-1 transition signals")

	r.UnInhibit(c1)
	require.Equal(t, []bool{true}, *signals, "2-to-1 stays silent")

	r.UnInhibit(c2)
	assert.Equal(t, []bool{true, false}, *signals)
	assert.False(t, r.Inhibited())
}

func TestUnInhibitUnknownCookieIsANoOp(t *testing.T) {
	r, signals := newTestRegistry()

	r.UnInhibit(99)
	assert.Empty(t, *signals)

	cookie := r.Inhibit("firefox", "video", ":1.10")
	r.UnInhibit(cookie)
	r.UnInhibit(cookie)
	assert.Equal(t, []bool{true, false}, *signals, "double release signals once")
}

func TestDropOwnerRemovesOnlyThatOwner(t *testing.T) {
	r, signals := newTestRegistry()

	r.Inhibit("firefox", "video", ":1.10")
	r.Inhibit("firefox", "download", ":1.10")
	kept := r.Inhibit("mpv", "video", ":1.20")

	r.DropOwner(":1.10")
	assert.True(t, r.Inhibited(), "other client's inhibitor survives")
	assert.Equal(t, []bool{true}, *signals)

	r.UnInhibit(kept)
	assert.Equal(t, []bool{true, false}, *signals)
}

func TestDropOwnerSignalsAtMostOnce(t *testing.T) {
	r, signals := newTestRegistry()

	r.Inhibit("firefox", "video", ":1.10")
	r.Inhibit("firefox", "download", ":1.10")

	r.DropOwner(":1.10")
	assert.Equal(t, []bool{true, false}, *signals)

	// Dropping an owner with no inhibitors is silent.
	r.DropOwner(":1.10")
	r.DropOwner(":1.99")
	assert.Equal(t, []bool{true, false}, *signals)
}

func TestNilNotifyIsAllowed(t *testing.T) {
	r := NewRegistry(nil, zerolog.Nop())

	cookie := r.Inhibit("firefox", "video", ":1.10")
	assert.True(t, r.Inhibited())
	r.UnInhibit(cookie)
	assert.False(t, r.Inhibited())
}
