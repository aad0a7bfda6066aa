package game

// Action is a logical game control. Hosts map their keys onto actions and
// report key-down and key-up edges through HandleKey.
type Action uint8

const (
	ActionNone Action = iota
	ActionMoveLeft
	ActionMoveRight
	ActionShoot
	ActionStart
	ActionPause
	ActionRestart
	ActionMute
	ActionVolumeUp
	ActionVolumeDown
	ActionClearScores
)

func (a Action) String() string {
	switch a {
	case ActionMoveLeft:
		return "move-left"
	case ActionMoveRight:
		return "move-right"
	case ActionShoot:
		return "shoot"
	case ActionStart:
		return "start"
	case ActionPause:
		return "pause"
	case ActionRestart:
		return "restart"
	case ActionMute:
		return "mute"
	case ActionVolumeUp:
		return "volume-up"
	case ActionVolumeDown:
		return "volume-down"
	case ActionClearScores:
		return "clear-scores"
	}
	return "none"
}

// HandleKey applies one key edge. Movement follows the key state; every
// other action triggers on key-down only.
func (s *Session) HandleKey(a Action, down bool) {
	switch a {
	case ActionMoveLeft:
		s.player.MovingLeft = down && s.acceptsMovement()
		return
	case ActionMoveRight:
		s.player.MovingRight = down && s.acceptsMovement()
		return
	}
	if !down {
		return
	}

	switch a {
	case ActionShoot:
		switch {
		case s.state == StateIdle:
			s.Start()
		case s.state == StatePlaying && !s.paused:
			s.shootPending = true
		}
	case ActionStart:
		switch {
		case s.state == StateIdle:
			s.Start()
		case s.state.Terminal():
			s.Reset()
			s.Start()
		}
	case ActionPause:
		s.TogglePause()
	case ActionRestart:
		s.Reset()
	case ActionMute:
		if vc, ok := s.audio.(VolumeControl); ok {
			muted := vc.ToggleMute()
			s.log.Debug("audio mute toggled", "muted", muted)
		}
	case ActionVolumeUp:
		if vc, ok := s.audio.(VolumeControl); ok {
			vc.VolumeUp()
		}
	case ActionVolumeDown:
		if vc, ok := s.audio.(VolumeControl); ok {
			vc.VolumeDown()
		}
	case ActionClearScores:
		s.ClearHighScores()
	}
}

func (s *Session) acceptsMovement() bool {
	return !s.paused && (s.state == StatePlaying || s.state == StateCountdown)
}
