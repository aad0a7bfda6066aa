package object

import (
	"math"

	"github.com/tomz197/invaders/internal/physics"
)

// Player geometry and timings.
const (
	PlayerWidth   = 40
	PlayerHeight  = 48
	PlayerSpeed   = 8.0    // Field units per 60 Hz frame
	BlinkDuration = 3000.0 // ms of invulnerability after losing a life
	BlinkInterval = 200.0  // ms per on/off blink cycle
)

// Player is the laser cannon at the bottom of the field.
type Player struct {
	X, Y  float64
	Speed float64

	Lives           int
	MaxProjectiles  int // Always max(1, Lives)
	TotalShotsFired int

	// Continuous movement intents, set on key-down and cleared on key-up.
	MovingLeft  bool
	MovingRight bool

	// Shooting is the edge-trigger latch: while set, no new shot is created.
	Shooting bool

	Blinking   bool
	BlinkTimer float64 // ms spent in the current blink window
}

// NewPlayer creates a player with its top-left corner at (x, y).
func NewPlayer(x, y float64, lives int) *Player {
	p := &Player{X: x, Y: y, Speed: PlayerSpeed, Lives: lives}
	p.syncMaxProjectiles()
	return p
}

func (p *Player) Kind() Kind { return KindPlayer }

// Bounds returns the player's bounding box.
func (p *Player) Bounds() physics.Rect {
	return physics.Rect{X: p.X, Y: p.Y, W: PlayerWidth, H: PlayerHeight}
}

// Update applies the movement intents, clamped to the field, and advances
// the blink window.
func (p *Player) Update(ctx UpdateContext) error {
	step := ctx.Steps(p.Speed)
	if p.MovingLeft {
		p.X -= step
	}
	if p.MovingRight {
		p.X += step
	}
	if math.IsNaN(p.X) || math.IsInf(p.X, 0) {
		p.X = ctx.Field.CenterX() - PlayerWidth/2
		return ErrInvalidGeometry
	}
	p.X = max(ctx.Field.X, min(p.X, ctx.Field.Right()-PlayerWidth))

	if p.Blinking {
		p.BlinkTimer += ctx.Delta
		if p.BlinkTimer >= BlinkDuration {
			p.Blinking = false
			p.BlinkTimer = 0
		}
	}
	return nil
}

// TryShoot creates a shot from the cannon tip when the latch is open and
// fewer than MaxProjectiles of the player's shots are active. It returns nil
// when no shot is fired.
func (p *Player) TryShoot(active int) *Projectile {
	if p.Shooting || active >= p.MaxProjectiles {
		return nil
	}
	p.Shooting = true
	p.TotalShotsFired++
	return NewPlayerShot(p.X+PlayerWidth/2-PlayerShotWidth/2, p.Y)
}

// ResetShot opens the shooting latch.
func (p *Player) ResetShot() {
	p.Shooting = false
}

// LoseLife takes a life and starts the blink window.
func (p *Player) LoseLife() {
	if p.Lives > 0 {
		p.Lives--
	}
	p.syncMaxProjectiles()
	p.Blinking = true
	p.BlinkTimer = 0
}

// GainLife adds a life unless the player already has limit lives.
// It reports whether a life was added.
func (p *Player) GainLife(limit int) bool {
	if p.Lives >= limit {
		return false
	}
	p.Lives++
	p.syncMaxProjectiles()
	return true
}

func (p *Player) syncMaxProjectiles() {
	p.MaxProjectiles = max(1, p.Lives)
}

// Vulnerable reports whether incoming shots can hurt the player.
func (p *Player) Vulnerable() bool {
	return !p.Blinking
}

// Visible implements the blink effect: while blinking the cannon is hidden
// every other half cycle.
func (p *Player) Visible() bool {
	if !p.Blinking {
		return true
	}
	return ShouldRenderBlink(p.BlinkTimer, BlinkInterval)
}

func (p *Player) Color() Color {
	if p.Blinking {
		return ColorRed
	}
	return ColorGreen
}
