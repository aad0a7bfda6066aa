package object

import "github.com/tomz197/invaders/internal/physics"

// Barrier is a fixed grid of bricks shielding the player.
type Barrier struct {
	X, Y   float64
	Rows   int
	Cols   int
	bricks []*Brick
}

// NewBarrier builds a rows x cols barrier with its top-left corner at (x, y).
// Bricks are stored row by row.
func NewBarrier(x, y float64, rows, cols int) *Barrier {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	b := &Barrier{X: x, Y: y, Rows: rows, Cols: cols}
	b.bricks = make([]*Brick, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.bricks = append(b.bricks, NewBrick(
				x+float64(c*BrickWidth),
				y+float64(r*BrickHeight),
			))
		}
	}
	return b
}

// Bricks returns the barrier's bricks, including destroyed ones.
func (b *Barrier) Bricks() []*Brick {
	return b.bricks
}

// Intact returns the number of bricks that are still standing.
func (b *Barrier) Intact() int {
	n := 0
	for _, brick := range b.bricks {
		if brick.Alive() {
			n++
		}
	}
	return n
}

// Bounds returns the area covered by the full barrier grid.
func (b *Barrier) Bounds() physics.Rect {
	return physics.Rect{
		X: b.X,
		Y: b.Y,
		W: float64(b.Cols * BrickWidth),
		H: float64(b.Rows * BrickHeight),
	}
}
