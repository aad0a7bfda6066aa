package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/invaders/internal/object"
)

func TestFormationReversesAtRightEdge(t *testing.T) {
	audio := &recordingAudio{}
	s := newTestSession(t, WithAudio(audio))
	startPlaying(t, s)

	// Rightmost edge at fieldWidth-5: the next 10 unit step would cross.
	edge := object.NewInvader(s.cfg.FieldWidth-5-object.InvaderWidth, 200)
	other := object.NewInvader(300, 200)
	dead := object.NewInvader(700, 100)
	dead.MarkDestroyed()
	s.invaders = []*object.Invader{edge, other, dead}

	require.NoError(t, s.stepFormation(ctxMs(s, 500)))

	assert.Equal(t, -1, s.direction)
	assert.InDelta(t, 230, edge.Y, 1e-9)
	assert.InDelta(t, 230, other.Y, 1e-9)
	assert.InDelta(t, 100, dead.Y, 1e-9, "dead invaders never move")
	assert.InDelta(t, s.cfg.FieldWidth-5-object.InvaderWidth, edge.X, 1e-9, "no sideways move on descent")
	assert.Equal(t, 1, edge.Frame)

	assert.InDelta(t, 400, s.moveInterval, 1e-9)
	assert.InDelta(t, 675, s.shootInterval, 1e-9)
	assert.InDelta(t, 1.2, audio.speed, 1e-9)
	assert.Equal(t, 1, audio.count(CueInvaderStep))
	assert.Equal(t, StatePlaying, s.State())
}

func TestFormationMovesSideways(t *testing.T) {
	s := newTestSession(t)
	startPlaying(t, s)
	first := s.invaders[0]
	x, y := first.X, first.Y

	require.NoError(t, s.stepFormation(ctxMs(s, 499)))
	assert.InDelta(t, x, first.X, 1e-9, "accumulator below interval")

	require.NoError(t, s.stepFormation(ctxMs(s, 1)))
	assert.InDelta(t, x+10, first.X, 1e-9)
	assert.InDelta(t, y, first.Y, 1e-9)
	assert.Zero(t, s.moveAcc)
	assert.InDelta(t, 500, s.moveInterval, 1e-9)
}

func TestFormationReversesAtLeftEdge(t *testing.T) {
	s := newTestSession(t)
	startPlaying(t, s)
	s.direction = -1
	inv := object.NewInvader(10, 150)
	s.invaders = []*object.Invader{inv}

	require.NoError(t, s.stepFormation(ctxMs(s, 500)))
	assert.Equal(t, 1, s.direction)
	assert.InDelta(t, 180, inv.Y, 1e-9)
}

func TestFormationIgnoresDeadInvadersForExtents(t *testing.T) {
	s := newTestSession(t)
	startPlaying(t, s)
	alive := object.NewInvader(300, 150)
	dead := object.NewInvader(s.cfg.FieldWidth-object.InvaderWidth-1, 150)
	dead.MarkDestroyed()
	s.invaders = []*object.Invader{alive, dead}

	require.NoError(t, s.stepFormation(ctxMs(s, 500)))
	assert.Equal(t, 1, s.direction)
	assert.InDelta(t, 310, alive.X, 1e-9)
}

func TestFormationSpeedUpIsFloorClamped(t *testing.T) {
	s := newTestSession(t)
	startPlaying(t, s)
	s.moveInterval = 110
	s.shootInterval = 310
	s.invaders = []*object.Invader{object.NewInvader(s.cfg.FieldWidth-object.InvaderWidth, 150)}

	require.NoError(t, s.stepFormation(ctxMs(s, 110)))
	assert.InDelta(t, 100, s.moveInterval, 1e-9)
	assert.InDelta(t, 300, s.shootInterval, 1e-9)

	s.invaders = []*object.Invader{object.NewInvader(0, 150)}
	require.NoError(t, s.stepFormation(ctxMs(s, 100)))
	assert.InDelta(t, 100, s.moveInterval, 1e-9)
	assert.InDelta(t, 300, s.shootInterval, 1e-9)
}

func TestSpeedUpNeverSlowsDown(t *testing.T) {
	assert.InDelta(t, 80, speedUp(100, 0.8, 50), 1e-9)
	assert.InDelta(t, 100, speedUp(110, 0.8, 100), 1e-9)
	assert.InDelta(t, 90, speedUp(90, 0.8, 100), 1e-9, "below the floor stays put")
}

func TestFormationReachingPlayerEndsGame(t *testing.T) {
	audio := &recordingAudio{}
	s := newTestSession(t, WithAudio(audio))
	startPlaying(t, s)
	// Bottom edge after one descent: y + 32 + 30 >= player y (548).
	s.invaders = []*object.Invader{object.NewInvader(s.cfg.FieldWidth-object.InvaderWidth, 490)}

	require.NoError(t, s.stepFormation(ctxMs(s, 500)))
	assert.Equal(t, StateGameOver, s.State())
	assert.Equal(t, 1, audio.count(CueGameOver))
}

func TestFormationWithNoLiveInvadersDoesNothing(t *testing.T) {
	audio := &recordingAudio{}
	s := newTestSession(t, WithAudio(audio))
	startPlaying(t, s)
	killAll(s)

	require.NoError(t, s.stepFormation(ctxMs(s, 500)))
	assert.Equal(t, 1, s.direction)
	assert.Zero(t, audio.count(CueInvaderStep))
}
