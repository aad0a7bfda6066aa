package object

import (
	"errors"

	"github.com/tomz197/invaders/internal/physics"
)

// ErrInvalidGeometry is returned by Update when an entity's position or size
// is no longer a finite number.
var ErrInvalidGeometry = errors.New("entity has invalid geometry")

// Kind tags each entity variant so the simulation can dispatch on it
// without type assertions.
type Kind uint8

const (
	KindBrick Kind = iota
	KindInvader
	KindPlayerShot
	KindInvaderShot
	KindPlayer
)

func (k Kind) String() string {
	switch k {
	case KindBrick:
		return "brick"
	case KindInvader:
		return "invader"
	case KindPlayerShot:
		return "player-shot"
	case KindInvaderShot:
		return "invader-shot"
	case KindPlayer:
		return "player"
	}
	return "unknown"
}

// Color is a render hint. Sinks map it to whatever palette they support.
type Color uint8

const (
	ColorNone Color = iota
	ColorWhite
	ColorGreen
	ColorRed
	ColorBrown
	ColorGray
	ColorYellow
	ColorOrange
	ColorCyan
)

// UpdateContext provides all the information an entity needs during update.
type UpdateContext struct {
	Delta float64      // Elapsed time in milliseconds
	Field physics.Rect // Play field bounds
}

// Steps converts a per-frame speed into the distance covered during Delta,
// using a 60 Hz reference frame.
func (ctx UpdateContext) Steps(speed float64) float64 {
	return speed * ctx.Delta / FrameMillis
}

// FrameMillis is the reference frame length that per-frame speeds are expressed in.
const FrameMillis = 1000.0 / 60.0

// Collidable is implemented by every entity that takes part in collision tests.
type Collidable interface {
	Kind() Kind
	Bounds() physics.Rect
}

// Tickable is implemented by entities that advance on their own every tick.
type Tickable interface {
	// Update advances the entity by ctx.Delta.
	Update(ctx UpdateContext) error
}

// Visual is the per-entity render surface.
type Visual interface {
	Visible() bool
	Color() Color
}

// Destructible is implemented by entities that can leave play.
type Destructible interface {
	// MarkDestroyed takes the entity out of play.
	MarkDestroyed()
	// IsDestroyed returns true if the entity no longer takes part in play.
	IsDestroyed() bool
}

// Releasable is implemented by pooled objects that can be returned to a pool.
type Releasable interface {
	// Release returns the object to its pool for reuse.
	Release()
}

// Compile-time checks for the entity variants.
var (
	_ Tickable     = (*Invader)(nil)
	_ Tickable     = (*Projectile)(nil)
	_ Tickable     = (*Player)(nil)
	_ Destructible = (*Brick)(nil)
	_ Destructible = (*Invader)(nil)
	_ Destructible = (*Projectile)(nil)
	_ Releasable   = (*Projectile)(nil)
)

// ShouldRenderBlink returns true if an object blinking for elapsed
// milliseconds should be drawn this frame. interval is the length of one
// on/off cycle in milliseconds.
func ShouldRenderBlink(elapsed, interval float64) bool {
	if interval <= 0 {
		return true
	}
	phase := int(elapsed / (interval / 2))
	return phase%2 != 0
}
