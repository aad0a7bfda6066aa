package object

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/invaders/internal/physics"
)

var testField = physics.Rect{X: 0, Y: 0, W: 720, H: 600}

func ctxFor(ms float64) UpdateContext {
	return UpdateContext{Delta: ms, Field: testField}
}

func TestBrickHealthNeverNegative(t *testing.T) {
	b := NewBrick(10, 20)
	require.True(t, b.Alive())

	b.TakeDamage()
	b.TakeDamage()
	assert.Equal(t, 0, b.Health)
	assert.False(t, b.Visible())
	assert.True(t, b.IsDestroyed())

	b.MarkDestroyed()
	assert.Equal(t, 0, b.Health)
}

func TestBarrierLayout(t *testing.T) {
	b := NewBarrier(100, 400, 4, 5)
	bricks := b.Bricks()
	require.Len(t, bricks, 20)

	assert.Equal(t, physics.Rect{X: 100, Y: 400, W: 15, H: 10}, bricks[0].Bounds())
	assert.Equal(t, physics.Rect{X: 160, Y: 430, W: 15, H: 10}, bricks[19].Bounds())
	assert.Equal(t, physics.Rect{X: 100, Y: 400, W: 75, H: 40}, b.Bounds())

	bricks[3].MarkDestroyed()
	assert.Equal(t, 19, b.Intact())
}

func TestInvaderExplosionLifecycle(t *testing.T) {
	inv := NewInvader(0, 0)
	require.True(t, inv.StartExplosion())
	assert.True(t, inv.Alive)
	assert.False(t, inv.Hittable())
	assert.False(t, inv.StartExplosion(), "an exploding invader cannot be hit again")

	require.NoError(t, inv.Update(ctxFor(ExplosionDuration/2)))
	assert.True(t, inv.Alive)

	require.NoError(t, inv.Update(ctxFor(ExplosionDuration/2)))
	assert.False(t, inv.Alive)
	assert.False(t, inv.Exploding)
	assert.False(t, inv.StartExplosion())
}

func TestInvaderToggleFrame(t *testing.T) {
	inv := NewInvader(0, 0)
	inv.ToggleFrame()
	assert.Equal(t, 1, inv.Frame)
	inv.ToggleFrame()
	assert.Equal(t, 0, inv.Frame)
}

func TestProjectileMovesAndLeavesField(t *testing.T) {
	up := NewPlayerShot(100, 20)
	require.NoError(t, up.Update(ctxFor(FrameMillis)))
	assert.InDelta(t, 10, up.Y, 1e-9)
	assert.True(t, up.Active)
	assert.False(t, up.Escaped)

	require.NoError(t, up.Update(ctxFor(2*FrameMillis)))
	assert.False(t, up.Active, "shot above the field deactivates")
	assert.True(t, up.Escaped)

	down := NewInvaderShot(100, 598)
	require.NoError(t, down.Update(ctxFor(FrameMillis)))
	assert.False(t, down.Active, "shot below the field deactivates")
	assert.Equal(t, KindInvaderShot, down.Kind())
	assert.Equal(t, ColorRed, down.Color())
}

func TestProjectileRejectsNaN(t *testing.T) {
	p := NewPlayerShot(100, 300)
	p.Y = math.NaN()
	assert.ErrorIs(t, p.Update(ctxFor(FrameMillis)), ErrInvalidGeometry)
	assert.False(t, p.Active)
}

func TestPlayerMovementIsClamped(t *testing.T) {
	p := NewPlayer(5, 500, 3)
	p.MovingLeft = true
	require.NoError(t, p.Update(ctxFor(FrameMillis)))
	assert.Equal(t, 0.0, p.X)

	p.MovingLeft = false
	p.MovingRight = true
	p.X = 700
	require.NoError(t, p.Update(ctxFor(FrameMillis)))
	assert.Equal(t, 720.0-PlayerWidth, p.X)

	p.MovingLeft = true
	x := p.X
	require.NoError(t, p.Update(ctxFor(FrameMillis)))
	assert.InDelta(t, x, p.X, 1e-9, "opposite intents cancel out")
}

func TestPlayerShootingLatch(t *testing.T) {
	p := NewPlayer(100, 500, 3)
	shot := p.TryShoot(0)
	require.NotNil(t, shot)
	assert.Equal(t, 100.0+PlayerWidth/2-PlayerShotWidth/2, shot.X)
	assert.Equal(t, 1, p.TotalShotsFired)

	assert.Nil(t, p.TryShoot(1), "latch is closed until reset")
	p.ResetShot()
	assert.NotNil(t, p.TryShoot(1))
	p.ResetShot()
	assert.Nil(t, p.TryShoot(3), "limited by MaxProjectiles")
}

func TestPlayerLoseLife(t *testing.T) {
	tests := []struct {
		name      string
		lives     int
		wantLives int
		wantMax   int
	}{
		{"from three", 3, 2, 2},
		{"from two", 2, 1, 1},
		{"last life", 1, 0, 1},
		{"already zero", 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(0, 0, tt.lives)
			p.LoseLife()
			assert.Equal(t, tt.wantLives, p.Lives)
			assert.Equal(t, tt.wantMax, p.MaxProjectiles)
			assert.True(t, p.Blinking)
			assert.False(t, p.Vulnerable())
		})
	}
}

func TestPlayerBlinkWindowEnds(t *testing.T) {
	p := NewPlayer(0, 0, 3)
	p.LoseLife()
	require.NoError(t, p.Update(ctxFor(BlinkDuration-1)))
	assert.True(t, p.Blinking)
	require.NoError(t, p.Update(ctxFor(1)))
	assert.False(t, p.Blinking)
	assert.True(t, p.Visible())
}

func TestPlayerGainLifeIsCapped(t *testing.T) {
	p := NewPlayer(0, 0, 4)
	assert.True(t, p.GainLife(5))
	assert.False(t, p.GainLife(5))
	assert.Equal(t, 5, p.Lives)
	assert.Equal(t, 5, p.MaxProjectiles)
}

func TestShouldRenderBlink(t *testing.T) {
	assert.True(t, ShouldRenderBlink(0, 0))
	assert.False(t, ShouldRenderBlink(0, 200))
	assert.True(t, ShouldRenderBlink(150, 200))
	assert.False(t, ShouldRenderBlink(250, 200))
}

func TestReleaseDeactivatesShot(t *testing.T) {
	p := NewInvaderShot(1, 2)
	p.Release()
	assert.False(t, p.Active)
	assert.True(t, p.IsDestroyed())
}
