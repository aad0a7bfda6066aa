package object

import "github.com/tomz197/invaders/internal/physics"

// Brick dimensions.
const (
	BrickWidth  = 15
	BrickHeight = 10
)

// Brick is one destructible cell of a barrier.
// A brick with Health <= 0 stays in memory but takes no further part in play.
type Brick struct {
	X, Y   float64
	Health int
}

// NewBrick creates a brick with full health at (x, y).
func NewBrick(x, y float64) *Brick {
	return &Brick{X: x, Y: y, Health: 1}
}

func (b *Brick) Kind() Kind { return KindBrick }

// Bounds returns the brick's bounding box.
func (b *Brick) Bounds() physics.Rect {
	return physics.Rect{X: b.X, Y: b.Y, W: BrickWidth, H: BrickHeight}
}

// Alive reports whether the brick still blocks shots.
func (b *Brick) Alive() bool {
	return b.Health > 0
}

// TakeDamage removes one point of health. Health never drops below zero.
func (b *Brick) TakeDamage() {
	if b.Health > 0 {
		b.Health--
	}
}

// MarkDestroyed sets health to zero in one go (invaders plough through barriers).
func (b *Brick) MarkDestroyed() {
	b.Health = 0
}

func (b *Brick) IsDestroyed() bool { return !b.Alive() }

func (b *Brick) Visible() bool { return b.Alive() }

func (b *Brick) Color() Color { return ColorBrown }
