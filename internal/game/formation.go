package game

import (
	"fmt"

	"github.com/tomz197/invaders/internal/object"
)

// stepFormation accumulates time and, once moveInterval is reached, moves the
// whole formation one step: sideways, or down with a direction reversal when
// the next step would cross the field edge.
func (s *Session) stepFormation(ctx object.UpdateContext) error {
	if !validInterval(s.moveInterval) {
		return fmt.Errorf("%w: move interval %v", ErrInvalidInterval, s.moveInterval)
	}
	s.moveAcc += ctx.Delta
	if s.moveAcc < s.moveInterval {
		return nil
	}
	s.moveAcc = 0

	left, right, ok := s.formationExtents()
	if !ok {
		return nil
	}
	s.steps++
	s.audio.Play(CueInvaderStep)

	step := s.cfg.HorizontalStep
	hitRight := right+step >= s.cfg.FieldWidth
	hitLeft := left-step <= 0
	if (s.direction > 0 && hitRight) || (s.direction < 0 && hitLeft) {
		s.reverseFormation()
		return nil
	}

	dx := step * float64(s.direction)
	for _, inv := range s.invaders {
		if inv.Alive {
			inv.X += dx
			inv.ToggleFrame()
		}
	}
	return nil
}

// reverseFormation flips the direction, drops every live invader by one
// descent step and speeds the march up.
func (s *Session) reverseFormation() {
	s.direction = -s.direction

	reached := false
	for _, inv := range s.invaders {
		if !inv.Alive {
			continue
		}
		inv.Y += s.cfg.DescentStep
		inv.ToggleFrame()
		if inv.Bounds().Bottom() >= s.player.Y {
			reached = true
		}
	}

	s.moveInterval = speedUp(s.moveInterval, s.cfg.MoveSpeedUp, s.cfg.MinMoveInterval)
	s.shootInterval = speedUp(s.shootInterval, s.cfg.ShootSpeedUp, s.cfg.MinShootInterval)
	s.audioSpeed *= s.cfg.AudioSpeedUp
	s.audio.SetSpeed(s.audioSpeed)

	if reached {
		s.setGameOver()
	}
}

// speedUp scales an interval down by factor, never below floor and never
// above its current value.
func speedUp(interval, factor, floor float64) float64 {
	return min(interval, max(interval*factor, floor))
}

// formationExtents returns the left edge of the leftmost and the right edge
// of the rightmost live invader. ok is false when none is alive.
func (s *Session) formationExtents() (left, right float64, ok bool) {
	for _, inv := range s.invaders {
		if !inv.Alive {
			continue
		}
		b := inv.Bounds()
		if !ok {
			left, right, ok = b.X, b.Right(), true
			continue
		}
		left = min(left, b.X)
		right = max(right, b.Right())
	}
	return left, right, ok
}
