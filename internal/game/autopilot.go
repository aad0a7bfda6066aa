package game

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/tomz197/invaders/internal/object"
)

// Autopilot plays a session on its own for attract mode. It only talks to
// the session through HandleKey, like a player would.
type Autopilot struct {
	rng          *rand.Rand
	RestartDelay time.Duration

	jitter    float64
	shootDown bool
	idle      time.Duration
}

// NewAutopilot returns an autopilot that restarts finished games after
// restartDelay.
func NewAutopilot(rng *rand.Rand, restartDelay time.Duration) *Autopilot {
	return &Autopilot{rng: rng, RestartDelay: restartDelay}
}

// Step issues the key edges for one frame.
func (a *Autopilot) Step(s *Session, dt time.Duration) {
	switch {
	case s.State() == StateIdle:
		s.HandleKey(ActionStart, true)
		s.HandleKey(ActionStart, false)
		return
	case s.State().Terminal():
		a.idle += dt
		if a.idle >= a.RestartDelay {
			a.idle = 0
			s.HandleKey(ActionStart, true)
			s.HandleKey(ActionStart, false)
		}
		return
	case s.Paused():
		return
	}

	player := s.Player().Bounds()
	target, ok := a.pickTarget(s)
	if !ok {
		s.HandleKey(ActionMoveLeft, false)
		s.HandleKey(ActionMoveRight, false)
		return
	}

	const deadZone = 4
	dx := target - player.CenterX()
	s.HandleKey(ActionMoveLeft, dx < -deadZone)
	s.HandleKey(ActionMoveRight, dx > deadZone)

	// Alternate shoot edges while lined up.
	aligned := math.Abs(dx) < object.InvaderWidth/2
	a.shootDown = aligned && !a.shootDown
	s.HandleKey(ActionShoot, a.shootDown)
}

// pickTarget aims below the lowest hittable invader, nudged a little so
// the demo does not look mechanical.
func (a *Autopilot) pickTarget(s *Session) (float64, bool) {
	var best *object.Invader
	for _, inv := range s.invaders {
		if !inv.Hittable() {
			continue
		}
		if best == nil || inv.Y > best.Y || (inv.Y == best.Y && inv.X < best.X) {
			best = inv
		}
	}
	if best == nil {
		return 0, false
	}
	if a.rng != nil && a.rng.IntN(30) == 0 {
		a.jitter = float64(a.rng.IntN(9) - 4)
	}
	return best.Bounds().CenterX() + a.jitter, true
}
