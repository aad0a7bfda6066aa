package object

import (
	"sync"

	"github.com/tomz197/invaders/internal/physics"
)

// Shot geometry. Speeds are in field units per 60 Hz frame.
const (
	PlayerShotWidth   = 4
	PlayerShotHeight  = 10
	PlayerShotSpeed   = 10.0
	InvaderShotWidth  = 4
	InvaderShotHeight = 5
	InvaderShotSpeed  = 3.0
)

// Shot directions.
const (
	DirectionUp   = 1
	DirectionDown = -1
)

// projectilePool is a sync.Pool for reusing Projectile objects to reduce allocations.
var projectilePool = sync.Pool{
	New: func() any {
		return &Projectile{}
	},
}

// Projectile is a shot fired by the player (up) or an invader (down).
// It moves along y only and deactivates on leaving the field or on any hit.
type Projectile struct {
	X, Y      float64
	W, H      float64
	Speed     float64
	Direction int // DirectionUp or DirectionDown
	Active    bool
	Escaped   bool // Left the field rather than hitting something
	kind      Kind
}

func newProjectile(kind Kind, x, y, w, h, speed float64, dir int) *Projectile {
	p := projectilePool.Get().(*Projectile)
	*p = Projectile{
		X:         x,
		Y:         y,
		W:         w,
		H:         h,
		Speed:     speed,
		Direction: dir,
		Active:    true,
		kind:      kind,
	}
	return p
}

// NewPlayerShot creates an upward shot with its top-left corner at (x, y).
func NewPlayerShot(x, y float64) *Projectile {
	return newProjectile(KindPlayerShot, x, y, PlayerShotWidth, PlayerShotHeight, PlayerShotSpeed, DirectionUp)
}

// NewInvaderShot creates a downward shot with its top-left corner at (x, y).
func NewInvaderShot(x, y float64) *Projectile {
	return newProjectile(KindInvaderShot, x, y, InvaderShotWidth, InvaderShotHeight, InvaderShotSpeed, DirectionDown)
}

// Release returns the projectile to the pool for reuse.
// Should be called once the projectile has been removed from the session.
func (p *Projectile) Release() {
	*p = Projectile{}
	projectilePool.Put(p)
}

func (p *Projectile) Kind() Kind { return p.kind }

// Bounds returns the projectile's bounding box.
func (p *Projectile) Bounds() physics.Rect {
	return physics.Rect{X: p.X, Y: p.Y, W: p.W, H: p.H}
}

// Update moves the projectile and deactivates it once it leaves the field vertically.
func (p *Projectile) Update(ctx UpdateContext) error {
	if !p.Active {
		return nil
	}
	p.Y -= float64(p.Direction) * ctx.Steps(p.Speed)
	if !p.Bounds().Valid() {
		p.Active = false
		return ErrInvalidGeometry
	}
	if p.Y < ctx.Field.Y || p.Y > ctx.Field.Bottom() {
		p.Active = false
		p.Escaped = true
	}
	return nil
}

func (p *Projectile) MarkDestroyed() { p.Active = false }

func (p *Projectile) IsDestroyed() bool { return !p.Active }

func (p *Projectile) Visible() bool { return p.Active }

func (p *Projectile) Color() Color {
	if p.kind == KindInvaderShot {
		return ColorRed
	}
	return ColorGreen
}
