package game

// Cue is a discrete sound trigger raised by the simulation.
type Cue uint8

const (
	CueShoot Cue = iota
	CueInvaderStep
	CueInvaderHit
	CuePlayerHit
	CueBarrierHit
	CueBoundaryHit
	CueVictory
	CueGameOver
)

func (c Cue) String() string {
	switch c {
	case CueShoot:
		return "shoot"
	case CueInvaderStep:
		return "invader-step"
	case CueInvaderHit:
		return "invader-hit"
	case CuePlayerHit:
		return "player-hit"
	case CueBarrierHit:
		return "barrier-hit"
	case CueBoundaryHit:
		return "boundary-hit"
	case CueVictory:
		return "victory"
	case CueGameOver:
		return "game-over"
	}
	return "unknown"
}

// AudioSink receives cues. Implementations must not block the caller.
type AudioSink interface {
	Play(c Cue)
	// SetSpeed sets the tempo multiplier of the invader march.
	SetSpeed(speed float64)
}

// VolumeControl is implemented by sinks that support the volume keys.
type VolumeControl interface {
	ToggleMute() bool
	VolumeUp() float64
	VolumeDown() float64
}

type nopAudio struct{}

func (nopAudio) Play(Cue)         {}
func (nopAudio) SetSpeed(float64) {}
