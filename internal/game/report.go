package game

// Report is the end-of-game breakdown. Every figure is counted directly
// from session state; Total equals the running score.
type Report struct {
	Eliminated       int `json:"eliminated" msgpack:"eliminated"`
	EliminatedPoints int `json:"eliminated_points" msgpack:"eliminated_points"`
	Missed           int `json:"missed" msgpack:"missed"`
	MissedPoints     int `json:"missed_points" msgpack:"missed_points"`
	LivesLost        int `json:"lives_lost" msgpack:"lives_lost"`
	LivesLostPoints  int `json:"lives_lost_points" msgpack:"lives_lost_points"`
	Total            int `json:"total" msgpack:"total"`
}

// Report computes the breakdown for the current state of the game.
func (s *Session) Report() Report {
	eliminated := s.eliminated()
	return Report{
		Eliminated:       eliminated,
		EliminatedPoints: eliminated * s.cfg.ScoreKill,
		Missed:           s.missedShots,
		MissedPoints:     s.missedShots * s.cfg.ScoreMiss,
		LivesLost:        s.livesLost,
		LivesLostPoints:  s.livesLost * s.cfg.ScoreLifeLost,
		Total:            s.score,
	}
}

// eliminated counts every invader hit so far, including archived ones and
// those still exploding.
func (s *Session) eliminated() int {
	n := s.archivedKills
	for _, inv := range s.invaders {
		if !inv.Alive || inv.Exploding {
			n++
		}
	}
	return n
}

// FinalReport returns the report frozen at the terminal state, or nil
// while the game is still running.
func (s *Session) FinalReport() *Report {
	return s.report
}
