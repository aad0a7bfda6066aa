package game

import (
	"github.com/tomz197/invaders/internal/object"
	"github.com/tomz197/invaders/internal/physics"
)

// resolveInvaderBricks lets invaders plough through barriers: any brick a
// hittable invader overlaps is destroyed outright.
func (s *Session) resolveInvaderBricks(object.UpdateContext) error {
	for _, inv := range s.invaders {
		if !inv.Hittable() {
			continue
		}
		box := inv.Bounds()
		s.grid.QueryRect(box, func(i int) bool {
			if brick := s.bricks[i]; brick.Alive() && physics.Intersects(box, brick.Bounds()) {
				brick.MarkDestroyed()
			}
			return false
		})
	}
	return nil
}

// resolvePlayerShots resolves each active player shot against, in order, a
// barrier brick, a hittable invader and the top line. The first match wins.
func (s *Session) resolvePlayerShots(object.UpdateContext) error {
	topLine := s.cfg.TopLineY + s.cfg.TopLineHeight
	for _, p := range s.playerShots {
		if !p.Active {
			if p.Escaped && p.Direction == object.DirectionUp {
				// Flew past the top line within a single tick.
				p.Escaped = false
				s.missShot()
			}
			continue
		}
		if brick := s.brickHit(p.Bounds()); brick != nil {
			brick.TakeDamage()
			p.Active = false
			s.audio.Play(CueBarrierHit)
			continue
		}
		if inv := s.invaderHit(p.Bounds()); inv != nil {
			inv.StartExplosion()
			p.Active = false
			s.score += s.cfg.ScoreKill
			s.audio.Play(CueInvaderHit)
			continue
		}
		if p.Y < topLine {
			p.Active = false
			s.missShot()
		}
	}

	// Reopen the shooting latch once a slot is free again.
	active := activeCount(s.playerShots)
	if active == 0 || (active < s.player.MaxProjectiles && s.player.Shooting) {
		s.player.ResetShot()
	}
	return nil
}

func (s *Session) missShot() {
	s.missedShots++
	s.score += s.cfg.ScoreMiss
	s.audio.Play(CueBoundaryHit)

	s.topLineFlash = true
	s.events.Schedule(s.clock+s.cfg.TopLineFlash, s.gen, func() {
		s.topLineFlash = false
	})
}

// resolveInvaderShots resolves invader shots against the player, unless it
// is blinking, and then against barrier bricks.
func (s *Session) resolveInvaderShots(object.UpdateContext) error {
	playerBox := s.player.Bounds()
	for _, p := range s.invaderShots {
		if !p.Active {
			continue
		}
		box := p.Bounds()
		if s.player.Vulnerable() && physics.Intersects(box, playerBox) {
			p.Active = false
			s.hitPlayer()
			if s.state != StatePlaying {
				return nil
			}
			continue
		}
		if brick := s.brickHit(box); brick != nil {
			brick.TakeDamage()
			p.Active = false
		}
	}
	return nil
}

func (s *Session) hitPlayer() {
	s.player.LoseLife()
	s.score += s.cfg.ScoreLifeLost
	s.livesLost++
	s.audio.Play(CuePlayerHit)
	if s.player.Lives <= 0 {
		s.setGameOver()
	}
}

// brickHit returns the first live brick overlapping box, or nil.
func (s *Session) brickHit(box physics.Rect) *object.Brick {
	var hit *object.Brick
	s.grid.QueryRect(box, func(i int) bool {
		brick := s.bricks[i]
		if brick.Alive() && physics.Intersects(box, brick.Bounds()) {
			hit = brick
			return true
		}
		return false
	})
	return hit
}

// invaderHit returns the first hittable invader overlapping box, or nil.
func (s *Session) invaderHit(box physics.Rect) *object.Invader {
	for _, inv := range s.invaders {
		if inv.Hittable() && physics.Intersects(box, inv.Bounds()) {
			return inv
		}
	}
	return nil
}
