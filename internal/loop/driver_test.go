package loop

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/invaders/internal/game"
)

type fakeRenderer struct {
	fail    []bool // Per-call failure plan; calls past the end succeed
	panics  bool
	calls   int
	reduced int
	last    game.Snapshot
}

func (r *fakeRenderer) Render(snap game.Snapshot) error {
	r.last = snap
	call := r.calls
	r.calls++
	if r.panics {
		panic("boom")
	}
	if call < len(r.fail) && r.fail[call] {
		return errors.New("write failed")
	}
	return nil
}

func (r *fakeRenderer) SetReduced(on bool) {
	if on {
		r.reduced++
	}
}

type recordingObserver struct {
	ticks     int
	renders   int
	faults    []string
	fallbacks int
	finished  []string
}

func (o *recordingObserver) ObserveTick(time.Duration)   { o.ticks++ }
func (o *recordingObserver) ObserveRender(time.Duration) { o.renders++ }
func (o *recordingObserver) PhaseFault(p string)         { o.faults = append(o.faults, p) }
func (o *recordingObserver) RenderFallback()             { o.fallbacks++ }
func (o *recordingObserver) GameFinished(s string)       { o.finished = append(o.finished, s) }

func newSession(t *testing.T) *game.Session {
	t.Helper()
	s, err := game.NewSession(game.DefaultConfig(),
		game.WithRand(rand.New(rand.NewPCG(1, 2))),
		game.WithPlayerName("tester"),
	)
	require.NoError(t, err)
	return s
}

func TestFrameClampsLongDeltas(t *testing.T) {
	s := newSession(t)
	s.Start()
	require.Equal(t, game.StateCountdown, s.State())

	r := &fakeRenderer{}
	var published []game.Snapshot
	d := NewDriver(s, r, WithPublisher(func(snap game.Snapshot) { published = append(published, snap) }))

	require.NoError(t, d.Frame(10*time.Second))
	assert.Equal(t, game.StateCountdown, s.State(), "a stalled frame must not skip the countdown")
	require.Len(t, published, 1)
	assert.Equal(t, game.StateCountdown, published[0].State)
	assert.Equal(t, 1, r.calls)
}

func TestFrameRecoversInvalidDelta(t *testing.T) {
	s := newSession(t)
	obs := &recordingObserver{}
	d := NewDriver(s, &fakeRenderer{}, WithObserver(obs))

	err := d.Frame(-time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, game.ErrInvalidDelta)
	assert.Equal(t, []string{faultDelta}, obs.faults)
	assert.Equal(t, 1, obs.renders, "render still runs after an update fault")

	require.NoError(t, d.Frame(16*time.Millisecond))
}

func TestRepeatedRenderFaultsReduceGraphics(t *testing.T) {
	s := newSession(t)
	r := &fakeRenderer{fail: []bool{true, true, true, true}}
	obs := &recordingObserver{}
	d := NewDriver(s, r, WithObserver(obs))

	for i := 0; i < 2; i++ {
		assert.Error(t, d.Frame(16*time.Millisecond))
	}
	assert.False(t, d.Reduced())

	assert.Error(t, d.Frame(16*time.Millisecond))
	assert.True(t, d.Reduced())
	assert.Equal(t, 1, r.reduced)
	assert.Equal(t, 1, obs.fallbacks)

	assert.Error(t, d.Frame(16*time.Millisecond))
	assert.NoError(t, d.Frame(16*time.Millisecond))
	assert.Equal(t, 1, r.reduced, "fallback happens once")
}

func TestRenderFaultCountResetsOnSuccess(t *testing.T) {
	s := newSession(t)
	r := &fakeRenderer{fail: []bool{true, true, false, true, true}}
	d := NewDriver(s, r)

	for i := 0; i < 5; i++ {
		_ = d.Frame(16 * time.Millisecond)
	}
	assert.False(t, d.Reduced())
	assert.Zero(t, r.reduced)
}

func TestRenderPanicIsAFault(t *testing.T) {
	s := newSession(t)
	r := &fakeRenderer{panics: true}
	d := NewDriver(s, r)

	var err error
	require.NotPanics(t, func() { err = d.Frame(16 * time.Millisecond) })
	assert.ErrorContains(t, err, "render panicked")
}

func TestGameFinishedReportedOnce(t *testing.T) {
	s := newSession(t)
	obs := &recordingObserver{}
	d := NewDriver(s, &fakeRenderer{}, WithObserver(obs))

	d.checkFinished(game.StatePlaying)
	d.checkFinished(game.StateGameOver)
	d.checkFinished(game.StateGameOver)
	d.checkFinished(game.StateIdle)
	d.checkFinished(game.StateWon)

	assert.Equal(t, []string{"game-over", "won"}, obs.finished)
}
