package audio

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/tomz197/invaders/internal/game"
)

// Invader march tones, alternated on every audible step.
var stepFrequencies = [2]float64{150, 120}

var (
	victoryTones  = []float64{261.63, 329.63, 392.00, 523.25}
	gameOverTones = []float64{523.25, 392.00, 329.63, 261.63}
)

const (
	stepDuration = 150 * time.Millisecond
	noteDuration = 200 * time.Millisecond
	clickFade    = 5 * time.Millisecond
)

// shaped returns a tone with short fades at both ends to avoid clicks.
func shaped(osc beep.Streamer, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(osc, d, clickFade, min(d/2, 40*time.Millisecond), rate)
}

// decaying returns a tone that fades out over its whole length.
func decaying(osc beep.Streamer, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(osc, d, clickFade, d-clickFade, rate)
}

func notes(tones []float64, rate beep.SampleRate) beep.Streamer {
	seq := make([]beep.Streamer, 0, len(tones))
	for _, f := range tones {
		seq = append(seq, shaped(NewTone(f, noteDuration, WaveSquare, rate), noteDuration, rate))
	}
	return beep.Seq(seq...)
}

// Synth builds the stream for one cue. stepFreq is only used by the
// invader step and speed shortens it.
func Synth(cue game.Cue, rate beep.SampleRate, speed, stepFreq float64) beep.Streamer {
	switch cue {
	case game.CueShoot:
		d := 200 * time.Millisecond
		return beep.Mix(
			newVolume(decaying(NewSweep(1200, 500, d, WaveSaw, rate), d, rate), 0.6),
			newVolume(decaying(NewTone(1800, d, WaveSine, rate), d, rate), 0.2),
		)
	case game.CueInvaderStep:
		if speed <= 0 {
			speed = 1
		}
		d := time.Duration(float64(stepDuration) / speed)
		return shaped(NewTone(stepFreq, d, WaveSaw, rate), d, rate)
	case game.CueInvaderHit:
		d := 200 * time.Millisecond
		return decaying(NewTone(80, d, WaveSaw, rate), d, rate)
	case game.CuePlayerHit:
		d := 500 * time.Millisecond
		return decaying(NewSweep(200, 50, d, WaveTriangle, rate), d, rate)
	case game.CueBarrierHit:
		d := 100 * time.Millisecond
		return decaying(NewTone(100, d, WaveSaw, rate), d, rate)
	case game.CueBoundaryHit:
		d := 150 * time.Millisecond
		return decaying(NewTone(300, d, WaveTriangle, rate), d, rate)
	case game.CueVictory:
		return notes(victoryTones, rate)
	case game.CueGameOver:
		return notes(gameOverTones, rate)
	}
	return nil
}
