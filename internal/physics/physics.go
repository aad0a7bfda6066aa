// Package physics provides axis-aligned collision detection.
package physics

import "math"

// Rect is an axis-aligned bounding box. X and Y are the top-left corner.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 {
	return r.X + r.W/2
}

// Valid reports whether every component of the rectangle is a finite number.
func (r Rect) Valid() bool {
	return finite(r.X) && finite(r.Y) && finite(r.W) && finite(r.H)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Intersects reports whether a and b overlap on both axes.
// Rectangles that only share an edge do not overlap. Any NaN or infinite
// component makes the result false.
func Intersects(a, b Rect) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return a.X < b.Right() && b.X < a.Right() &&
		a.Y < b.Bottom() && b.Y < a.Bottom()
}
