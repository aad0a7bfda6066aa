package object

import "github.com/tomz197/invaders/internal/physics"

// Invader dimensions and timings.
const (
	InvaderWidth      = 32
	InvaderHeight     = 32
	ExplosionDuration = 300.0 // ms an invader stays on screen after a hit
)

// Invader is one member of the marching formation.
//
// A hit invader first explodes: it stays Alive but becomes collision-inert
// until ExplosionTimer runs out, then Alive turns false for good.
type Invader struct {
	X, Y           float64
	Alive          bool
	Frame          int // Animation frame, 0 or 1
	Exploding      bool
	ExplosionTimer float64 // ms remaining
}

// NewInvader creates a live invader at (x, y).
func NewInvader(x, y float64) *Invader {
	return &Invader{X: x, Y: y, Alive: true}
}

func (i *Invader) Kind() Kind { return KindInvader }

// Bounds returns the invader's bounding box.
func (i *Invader) Bounds() physics.Rect {
	return physics.Rect{X: i.X, Y: i.Y, W: InvaderWidth, H: InvaderHeight}
}

// Hittable reports whether the invader can still be hit or collide.
func (i *Invader) Hittable() bool {
	return i.Alive && !i.Exploding
}

// StartExplosion begins the explosion sub-state. It returns false, and changes
// nothing, if the invader is already exploding or dead.
func (i *Invader) StartExplosion() bool {
	if !i.Hittable() {
		return false
	}
	i.Exploding = true
	i.ExplosionTimer = ExplosionDuration
	return true
}

// ToggleFrame flips the animation frame.
func (i *Invader) ToggleFrame() {
	i.Frame ^= 1
}

// Update counts down an active explosion and finalizes the kill on expiry.
func (i *Invader) Update(ctx UpdateContext) error {
	if !i.Bounds().Valid() {
		return ErrInvalidGeometry
	}
	if !i.Exploding {
		return nil
	}
	i.ExplosionTimer -= ctx.Delta
	if i.ExplosionTimer <= 0 {
		i.ExplosionTimer = 0
		i.Exploding = false
		i.Alive = false
	}
	return nil
}

func (i *Invader) MarkDestroyed() {
	i.Alive = false
	i.Exploding = false
	i.ExplosionTimer = 0
}

func (i *Invader) IsDestroyed() bool { return !i.Alive }

func (i *Invader) Visible() bool { return i.Alive }

func (i *Invader) Color() Color {
	if i.Exploding {
		return ColorOrange
	}
	return ColorWhite
}
