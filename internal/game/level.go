package game

import (
	"context"

	gc "github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/object"
	"github.com/tomz197/invaders/internal/scores"
)

// Layout names the formation shape of a level.
type Layout uint8

const (
	LayoutGrid Layout = iota
	LayoutW
	LayoutDiamond
)

// LayoutFor returns the formation shape used by level. Levels past the
// third cycle through the shapes again.
func LayoutFor(level int) Layout {
	if level < 1 {
		return LayoutGrid
	}
	return Layout((level - 1) % 3)
}

// rowOffset returns the vertical offset, in layout units, of column col in
// row row.
func (l Layout) rowOffset(row, col, rows, cols int) int {
	switch l {
	case LayoutW:
		switch col {
		case 1, 9, 3, 7, 5:
			return 1
		case 2, 8:
			return 2
		}
	case LayoutDiamond:
		dist := col - cols/2
		if dist < 0 {
			dist = -dist
		}
		if row < 2 {
			return dist
		}
		return rows - 1 - dist
	}
	return 0
}

func (s *Session) buildLayout(level int) []*object.Invader {
	layout := LayoutFor(level)
	rows, cols := s.cfg.InvaderRows, s.cfg.InvaderCols
	invaders := make([]*object.Invader, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			offset := float64(layout.rowOffset(r, c, rows, cols)) * s.cfg.LayoutOffset
			invaders = append(invaders, object.NewInvader(
				s.cfg.InvaderOriginX+float64(c)*s.cfg.InvaderSpacingX,
				s.cfg.InvaderOriginY+float64(r)*s.cfg.InvaderSpacingY+offset,
			))
		}
	}
	s.spawned += len(invaders)
	return invaders
}

func (s *Session) updateLevel(ctx object.UpdateContext) error {
	s.checkVictory()
	if s.transitionActive {
		s.transitionTimer += ctx.Delta
		if s.transitionTimer >= s.cfg.LevelTransition {
			s.transitionActive = false
			s.transitionTimer = 0
			s.level++
			s.startNextLevel()
		}
	}
	return nil
}

// checkVictory starts a level transition, or ends the game as won on the
// last level, once no invader is alive. Repeated calls in the same state
// have no further effect.
func (s *Session) checkVictory() {
	if s.state != StatePlaying || s.transitionActive || s.preventVictoryCheck {
		return
	}
	if s.aliveInvaders() > 0 {
		return
	}
	if s.level < s.cfg.MaxLevel {
		s.transitionActive = true
		s.transitionTimer = 0
		s.audio.Play(CueVictory)
		return
	}
	s.setWon()
}

func (s *Session) aliveInvaders() int {
	n := 0
	for _, inv := range s.invaders {
		if inv.Alive {
			n++
		}
	}
	return n
}

// startNextLevel builds the formation for s.level. Barriers keep their
// damage.
func (s *Session) startNextLevel() {
	s.archiveDeadInvaders()
	s.releaseShots()
	s.shootPending = false

	s.invaders = s.buildLayout(s.level)
	s.moveInterval, s.shootInterval = s.cfg.levelIntervals(s.level)
	s.moveAcc = 0
	s.shootAcc = 0
	s.direction = 1

	s.player.GainLife(s.cfg.MaxLives)
	s.player.ResetShot()
	s.player.X = s.cfg.FieldWidth/2 - object.PlayerWidth/2

	s.preventVictoryCheck = true
	s.events.Schedule(s.clock+s.cfg.VictoryGuard, s.gen, func() {
		s.preventVictoryCheck = false
	})
	s.log.Debug("level started", "level", s.level, "move_interval", s.moveInterval)
}

func (s *Session) setGameOver() {
	if s.state.Terminal() {
		return
	}
	s.state = StateGameOver
	s.audio.Play(CueGameOver)
	s.finish()
}

func (s *Session) setWon() {
	if s.state.Terminal() {
		return
	}
	s.state = StateWon
	s.audio.Play(CueVictory)
	s.finish()
}

func (s *Session) finish() {
	s.transitionActive = false
	r := s.Report()
	s.report = &r
	s.processHighScore()
	s.log.Info("game finished", "state", s.state, "score", s.score, "level", s.level)
}

// processHighScore submits the final score. It runs at most once per game.
func (s *Session) processHighScore() {
	if s.highScoreProcessed {
		return
	}
	s.highScoreProcessed = true
	if s.scores == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), gc.HighScoreSaveTimeout)
	defer cancel()
	list, err := s.scores.Record(ctx, scores.Entry{
		Name:      s.name,
		Score:     s.score,
		Timestamp: s.now(),
	})
	if err != nil {
		s.log.Error("save high score", "err", err)
		return
	}
	s.highScores = list
}
