package client

import (
	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/input"
)

// ActionFor maps a terminal key onto a game action. Quit has no action:
// the connection handles it.
func ActionFor(k input.Key) (game.Action, bool) {
	switch k {
	case input.KeyLeft:
		return game.ActionMoveLeft, true
	case input.KeyRight:
		return game.ActionMoveRight, true
	case input.KeySpace:
		return game.ActionShoot, true
	case input.KeyEnter:
		return game.ActionStart, true
	case input.KeyEscape, input.KeyPause:
		return game.ActionPause, true
	case input.KeyRestart:
		return game.ActionRestart, true
	case input.KeyMute:
		return game.ActionMute, true
	case input.KeyUp:
		return game.ActionVolumeUp, true
	case input.KeyDown:
		return game.ActionVolumeDown, true
	case input.KeyDelete:
		return game.ActionClearScores, true
	}
	return game.ActionNone, false
}

// controlLines is the control table on the start screen.
var controlLines = []string{
	"A D / < >  . . . . .  Move",
	"SPACE  . . . . . . .  Shoot",
	"ESC / P  . . . . . .  Pause",
	"R  . . . . . . . . .  Restart",
	"M  . . . . . . . . .  Mute",
	"+ -  . . . . . . . .  Volume",
	"DEL  . . . . . . . .  Clear scores",
	"Q  . . . . . . . . .  Quit",
}
