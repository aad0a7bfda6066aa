package game

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tomz197/invaders/internal/object"
)

// phase is one ordered step of a tick.
type phase struct {
	name string
	run  func(ctx object.UpdateContext) error
	// always phases also run after an earlier phase ended the game.
	always bool
}

func (s *Session) buildPhases() []phase {
	return []phase{
		{name: "player", run: s.updatePlayer},
		{name: "projectile-cap", run: s.capProjectiles},
		{name: "projectiles", run: s.moveProjectiles},
		{name: "explosions", run: s.updateExplosions},
		{name: "formation", run: s.stepFormation},
		{name: "invader-barrier", run: s.resolveInvaderBricks},
		{name: "player-shots", run: s.resolvePlayerShots},
		{name: "invader-shots", run: s.resolveInvaderShots},
		{name: "invader-fire", run: s.spawnInvaderShot},
		{name: "level", run: s.updateLevel},
		{name: "prune", run: s.prune, always: true},
	}
}

// Update advances the session by dt.
//
// Deferred events run even while paused, since the session clock keeps
// going. A faulted phase does not stop the tick: its error is collected as
// a *PhaseError, the accumulators are reset and the joined errors are
// returned.
func (s *Session) Update(dt time.Duration) error {
	if dt < 0 {
		s.RecoverAccumulators()
		return fmt.Errorf("%w: %v", ErrInvalidDelta, dt)
	}
	delta := float64(dt) / float64(time.Millisecond)
	s.clock += delta
	s.events.RunDue(s.clock, s.gen)

	if s.paused {
		return nil
	}
	switch s.state {
	case StateCountdown:
		s.tickCountdown(delta)
		return nil
	case StatePlaying:
	default:
		return nil
	}

	ctx := object.UpdateContext{Delta: delta, Field: s.field()}
	var errs []error
	for _, ph := range s.phases {
		if s.state != StatePlaying && !ph.always {
			continue
		}
		if err := ph.run(ctx); err != nil {
			errs = append(errs, &PhaseError{Phase: ph.name, Err: err})
			s.log.Warn("phase fault", "phase", ph.name, "err", err, "recovery", "accumulators reset")
		}
	}
	if len(errs) == 0 {
		return nil
	}
	s.RecoverAccumulators()
	return errors.Join(errs...)
}

func (s *Session) tickCountdown(delta float64) {
	s.countdownTimer += delta
	for s.countdownLeft > 0 && s.countdownTimer >= s.cfg.CountdownStep {
		s.countdownTimer -= s.cfg.CountdownStep
		s.countdownLeft--
	}
	if s.countdownLeft <= 0 {
		s.countdownTimer = 0
		s.state = StatePlaying
	}
}

func (s *Session) updatePlayer(ctx object.UpdateContext) error {
	err := s.player.Update(ctx)
	if s.shootPending {
		s.shootPending = false
		if shot := s.player.TryShoot(activeCount(s.playerShots)); shot != nil {
			s.playerShots = append(s.playerShots, shot)
			s.audio.Play(CueShoot)
		}
	}
	return err
}

// capProjectiles evicts the oldest shots beyond the configured caps.
func (s *Session) capProjectiles(object.UpdateContext) error {
	s.playerShots = capShots(s.playerShots, s.cfg.MaxPlayerProjectiles)
	s.invaderShots = capShots(s.invaderShots, s.cfg.MaxInvaderProjectiles)
	return nil
}

func capShots(shots []*object.Projectile, limit int) []*object.Projectile {
	excess := len(shots) - limit
	if excess <= 0 {
		return shots
	}
	for _, p := range shots[:excess] {
		p.Release()
	}
	n := copy(shots, shots[excess:])
	clear(shots[n:])
	return shots[:n]
}

func (s *Session) moveProjectiles(ctx object.UpdateContext) error {
	var errs []error
	for _, p := range s.playerShots {
		if err := p.Update(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range s.invaderShots {
		if err := p.Update(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) updateExplosions(ctx object.UpdateContext) error {
	var errs []error
	for _, inv := range s.invaders {
		if !inv.Alive {
			continue
		}
		if err := inv.Update(ctx); err != nil {
			inv.MarkDestroyed()
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) spawnInvaderShot(ctx object.UpdateContext) error {
	if !validInterval(s.shootInterval) {
		return fmt.Errorf("%w: shoot interval %v", ErrInvalidInterval, s.shootInterval)
	}
	s.shootAcc += ctx.Delta
	if s.shootAcc < s.shootInterval {
		return nil
	}
	s.shootAcc = 0

	var shooters []*object.Invader
	for _, inv := range s.invaders {
		if inv.Hittable() {
			shooters = append(shooters, inv)
		}
	}
	if len(shooters) == 0 {
		return nil
	}
	shooter := shooters[s.rng.IntN(len(shooters))]
	s.invaderShots = append(s.invaderShots, object.NewInvaderShot(
		shooter.X+object.InvaderWidth/2-object.InvaderShotWidth/2,
		shooter.Y+object.InvaderHeight,
	))
	return nil
}

// prune drops inactive shots and archives dead invaders once the slice
// outgrows MaxInvaders.
func (s *Session) prune(object.UpdateContext) error {
	s.playerShots = pruneShots(s.playerShots)
	s.invaderShots = pruneShots(s.invaderShots)

	if len(s.invaders) > s.cfg.MaxInvaders {
		s.archiveDeadInvaders()
	}
	return nil
}

func pruneShots(shots []*object.Projectile) []*object.Projectile {
	kept := shots[:0]
	for _, p := range shots {
		if p.Active {
			kept = append(kept, p)
		} else {
			p.Release()
		}
	}
	clear(shots[len(kept):])
	return kept
}

func (s *Session) archiveDeadInvaders() {
	kept := s.invaders[:0]
	for _, inv := range s.invaders {
		if inv.Alive {
			kept = append(kept, inv)
		} else {
			s.archivedKills++
		}
	}
	clear(s.invaders[len(kept):])
	s.invaders = kept
}

func activeCount(shots []*object.Projectile) int {
	n := 0
	for _, p := range shots {
		if p.Active {
			n++
		}
	}
	return n
}

func validMillis(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func validInterval(v float64) bool {
	return validMillis(v) && v > 0
}
