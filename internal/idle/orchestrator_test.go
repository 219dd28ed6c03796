package idle

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/doze/internal/config"
)

type fakeTimer struct {
	timeout   time.Duration
	purpose   Purpose
	gen       uint64
	destroyed bool
}

func (t *fakeTimer) Destroy() error {
	t.destroyed = true
	return nil
}

type fakeFade struct {
	frames    []uint32
	destroyed bool
}

func (f *fakeFade) Configure(serial, width, height uint32) error { return nil }

func (f *fakeFade) Frame(alpha uint32) error {
	f.frames = append(f.frames, alpha)
	return nil
}

func (f *fakeFade) Destroy() error {
	f.destroyed = true
	return nil
}

type fakeOutput struct {
	name     uint32
	power    []bool
	fades    []*fakeFade
	released bool
}

func (o *fakeOutput) SetPower(on bool) error {
	o.power = append(o.power, on)
	return nil
}

func (o *fakeOutput) CreateFade() (FadeHandle, error) {
	f := &fakeFade{}
	o.fades = append(o.fades, f)
	return f, nil
}

func (o *fakeOutput) Release() error {
	o.released = true
	return nil
}

func (o *fakeOutput) lastPower() bool {
	return len(o.power) > 0 && o.power[len(o.power)-1]
}

type fakeBackend struct {
	timers  []*fakeTimer
	outputs map[uint32]*fakeOutput
	hidden  []uint32
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{outputs: make(map[uint32]*fakeOutput)}
}

func (b *fakeBackend) NewIdleTimer(timeout time.Duration, purpose Purpose, gen uint64) (TimerHandle, error) {
	t := &fakeTimer{timeout: timeout, purpose: purpose, gen: gen}
	b.timers = append(b.timers, t)
	return t, nil
}

func (b *fakeBackend) BindOutput(name, version uint32) (OutputDevice, error) {
	o := &fakeOutput{name: name}
	b.outputs[name] = o
	return o, nil
}

func (b *fakeBackend) HideCursor(serial uint32) error {
	b.hidden = append(b.hidden, serial)
	return nil
}

// live returns the non-destroyed timers, in creation order.
func (b *fakeBackend) live() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range b.timers {
		if !t.destroyed {
			out = append(out, t)
		}
	}
	return out
}

type fakeRunner struct {
	spawned []string
}

func (r *fakeRunner) Spawn(name, command string) {
	r.spawned = append(r.spawned, name)
}

type testHarness struct {
	orch    *Orchestrator
	backend *fakeBackend
	runner  *fakeRunner
	now     time.Time
	locks   []func()
}

func u32(v uint32) *uint32 { return &v }

func testConfig() *config.Config {
	return &config.Config{
		Idle: config.IdleConfig{
			ScreenOffTime:        u32(600000),
			SuspendOnBatteryTime: u32(900000),
			SuspendOnACTime:      u32(1200000),
		},
		Actions: map[string]string{
			config.ActionLockScreen: "loginctl lock-session",
			config.ActionSuspend:    "systemctl suspend",
		},
	}
}

func newHarness(t *testing.T, cfg *config.Config) *testHarness {
	t.Helper()
	h := &testHarness{
		backend: newFakeBackend(),
		runner:  &fakeRunner{},
		now:     time.Unix(1000, 0),
	}
	h.orch = New(h.backend, h.runner, cfg, NewEventQueue(), zerolog.Nop())
	h.orch.now = func() time.Time { return h.now }
	h.orch.afterFunc = func(_ time.Duration, f func()) *time.Timer {
		h.locks = append(h.locks, f)
		return nil
	}
	return h
}

// timer returns the live subscription for the given purpose, failing the
// test if there is not exactly one.
func (h *testHarness) timer(t *testing.T, p Purpose) *fakeTimer {
	t.Helper()
	var found *fakeTimer
	for _, tm := range h.backend.live() {
		if tm.purpose == p {
			require.Nil(t, found, "multiple live subscriptions for %s", p)
			found = tm
		}
	}
	require.NotNil(t, found, "no live subscription for %s", p)
	return found
}

func (h *testHarness) fire(t *testing.T, p Purpose, idled bool) {
	t.Helper()
	tm := h.timer(t, p)
	h.orch.handle(TimerFired{Purpose: p, Gen: tm.gen, Idled: idled})
}

func TestRecomputeCreatesSubscriptions(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.recompute()

	assert.Equal(t, 600000*time.Millisecond, h.timer(t, PurposeScreenOff).timeout)
	assert.Equal(t, 1200000*time.Millisecond, h.timer(t, PurposeSuspend).timeout)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.recompute()
	created := len(h.backend.timers)

	h.orch.recompute()
	h.orch.recompute()

	assert.Len(t, h.backend.timers, created, "no churn on unchanged state")
	assert.Len(t, h.backend.live(), 2)
}

func TestInhibitDestroysAndRecreatesSubscriptions(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.recompute()

	h.orch.handle(InhibitChanged{Inhibited: true})
	assert.Empty(t, h.backend.live(), "inhibited: both targets become none")

	h.orch.handle(InhibitChanged{Inhibited: false})
	assert.Equal(t, 600000*time.Millisecond, h.timer(t, PurposeScreenOff).timeout)
	assert.Equal(t, 1200000*time.Millisecond, h.timer(t, PurposeSuspend).timeout)
}

func TestBatteryTogglesOnlySuspendSubscription(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.recompute()
	screenOff := h.timer(t, PurposeScreenOff)

	h.orch.handle(BatteryChanged{OnBattery: true})

	assert.False(t, screenOff.destroyed, "screen-off subscription untouched")
	assert.Equal(t, 900000*time.Millisecond, h.timer(t, PurposeSuspend).timeout)

	h.orch.handle(BatteryChanged{OnBattery: false})
	assert.Equal(t, 1200000*time.Millisecond, h.timer(t, PurposeSuspend).timeout)
}

func TestDisabledTimerIsNeverCreated(t *testing.T) {
	cfg := testConfig()
	cfg.Idle.ScreenOffTime = nil
	h := newHarness(t, cfg)
	h.orch.recompute()

	for _, tm := range h.backend.live() {
		assert.NotEqual(t, PurposeScreenOff, tm.purpose)
	}
	h.timer(t, PurposeSuspend)
}

func TestStaleGenerationEventsAreDropped(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.handle(OutputAdded{Name: 1, Version: 4})
	h.orch.recompute()
	stale := h.timer(t, PurposeScreenOff)

	// Toggle inhibition to supersede the subscription.
	h.orch.handle(InhibitChanged{Inhibited: true})
	h.orch.handle(InhibitChanged{Inhibited: false})

	h.orch.handle(TimerFired{Purpose: PurposeScreenOff, Gen: stale.gen, Idled: true})
	assert.Empty(t, h.backend.outputs[1].fades, "event from superseded generation must not start a fade")
}

func TestScreenOffFadeAcrossTwoOutputs(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.handle(OutputAdded{Name: 1, Version: 4})
	h.orch.handle(OutputAdded{Name: 2, Version: 4})
	h.orch.recompute()

	// The initial recompute churns the subscription, which forces every
	// output on.
	out1, out2 := h.backend.outputs[1], h.backend.outputs[2]
	require.Equal(t, []bool{true}, out1.power)

	h.fire(t, PurposeScreenOff, true)

	require.Len(t, out1.fades, 1)
	require.Len(t, out2.fades, 1)

	// First frame renders at opacity zero once the compositor configures.
	h.orch.handle(FadeConfigured{Output: 1, Serial: 7, Width: 1920, Height: 1080})
	h.orch.handle(FadeConfigured{Output: 2, Serial: 8, Width: 1280, Height: 720})
	require.Equal(t, []uint32{0}, out1.fades[0].frames)

	// Mid-fade frames render increasing opacity.
	h.now = h.now.Add(FadeDuration / 2)
	h.orch.handle(FrameDone{Output: 1})
	h.orch.handle(FrameDone{Output: 2})
	require.Len(t, out1.fades[0].frames, 2)
	assert.Greater(t, out1.fades[0].frames[1], uint32(0))

	// Past the fade window, each output powers off as its fade completes.
	h.now = h.now.Add(FadeDuration)
	h.orch.handle(FrameDone{Output: 1})
	assert.True(t, out1.fades[0].destroyed)
	assert.Equal(t, []bool{true, false}, out1.power)
	assert.Empty(t, h.locks, "lock not scheduled until the last fade completes")

	h.orch.handle(FrameDone{Output: 2})
	assert.Equal(t, []bool{true, false}, out2.power)
	require.Len(t, h.locks, 1, "exactly one delayed lock action")

	h.orch.handle(lockDue{})
	assert.Equal(t, []string{config.ActionLockScreen}, h.runner.spawned)
}

func TestResumeDropsFadesImmediately(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.handle(OutputAdded{Name: 1, Version: 4})
	h.orch.handle(OutputAdded{Name: 2, Version: 4})
	h.orch.recompute()

	h.fire(t, PurposeScreenOff, true)
	h.fire(t, PurposeScreenOff, false)

	for _, out := range h.backend.outputs {
		assert.True(t, out.fades[0].destroyed, "output %d fade dropped", out.name)
		assert.True(t, out.lastPower(), "output %d forced on", out.name)
	}
	assert.Empty(t, h.locks, "resume must not schedule a lock")

	// A stale frame callback for the dropped fade is ignored.
	h.orch.handle(FrameDone{Output: 1})
	assert.Len(t, h.backend.outputs[1].fades, 1)
}

func TestIdleNeverCreatesSecondFadePerOutput(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.handle(OutputAdded{Name: 1, Version: 4})
	h.orch.recompute()

	h.fire(t, PurposeScreenOff, true)
	h.fire(t, PurposeScreenOff, true)

	assert.Len(t, h.backend.outputs[1].fades, 1)
}

func TestSuspendFiresActionOnce(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.recompute()

	h.fire(t, PurposeSuspend, true)
	assert.Equal(t, []string{config.ActionSuspend}, h.runner.spawned)

	// Resumed is a no-op for suspend: it is an action, not a held state.
	h.fire(t, PurposeSuspend, false)
	assert.Len(t, h.runner.spawned, 1)
}

func TestRecomputeForcesScreenOffNotIdle(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.handle(OutputAdded{Name: 1, Version: 4})
	h.orch.recompute()

	h.fire(t, PurposeScreenOff, true)
	out := h.backend.outputs[1]
	require.Len(t, out.fades, 1)

	// Changing the screen-off timeout recreates the subscription; the
	// fresh subscription must be assumed not idle, so the fade is
	// dropped and the output forced on.
	cfg := testConfig()
	cfg.Idle.ScreenOffTime = u32(300000)
	h.orch.handle(ConfigUpdated{Config: cfg})

	assert.True(t, out.fades[0].destroyed)
	assert.True(t, out.lastPower())
	assert.Equal(t, 300000*time.Millisecond, h.timer(t, PurposeScreenOff).timeout)
}

func TestOutputRemovalTearsDownFadeFirst(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.handle(OutputAdded{Name: 1, Version: 4})
	h.orch.recompute()
	h.fire(t, PurposeScreenOff, true)

	out := h.backend.outputs[1]
	h.orch.handle(OutputRemoved{Name: 1})

	assert.True(t, out.fades[0].destroyed)
	assert.True(t, out.released)

	// Events for the dead output are ignored.
	h.orch.handle(FrameDone{Output: 1})
	h.orch.handle(FadeConfigured{Output: 1, Serial: 9, Width: 1, Height: 1})
}

func TestActionWithoutMappingDoesNothing(t *testing.T) {
	cfg := testConfig()
	cfg.Actions = map[string]string{config.ActionSuspend: ""}
	h := newHarness(t, cfg)
	h.orch.recompute()

	// Both an absent mapping and an empty command mean "do nothing".
	h.fire(t, PurposeSuspend, true)
	h.orch.handle(lockDue{})
	assert.Empty(t, h.runner.spawned)
}

func TestPointerEnterHidesCursor(t *testing.T) {
	h := newHarness(t, testConfig())
	h.orch.handle(PointerEntered{Serial: 42})
	assert.Equal(t, []uint32{42}, h.backend.hidden)
}
