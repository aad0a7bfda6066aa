// Package audio synthesises the game's sound cues with beep.
package audio

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/tomz197/invaders/internal/game"
)

// Defaults for the volume controls and voice limits.
const (
	DefaultSampleRate = beep.SampleRate(44100)
	DefaultVolume     = 0.3
	VolumeStep        = 0.05
	StepModulo        = 2 // Only every n-th formation step is audible
	MaxVoices         = 5
)

// Player mixes cue sounds into one output stream. It implements
// game.AudioSink and game.VolumeControl and is safe for concurrent use.
type Player struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	master *effects.Volume
	live   bool // Output is driven by the speaker goroutine

	volume float64
	muted  bool
	speed  float64

	stepCounter int
	stepIndex   int
}

// New returns a Player that is not connected to any output. Its stream can
// be pulled through Streamer.
func New(rate beep.SampleRate) *Player {
	mixer := &beep.Mixer{}
	p := &Player{
		rate:   rate,
		mixer:  mixer,
		volume: DefaultVolume,
		speed:  1,
	}
	p.master = newVolume(mixer, DefaultVolume)
	return p
}

// Open initialises the speaker and starts playback. When no audio backend
// is available the returned Player stays silent and the error is logged.
func Open(logger *log.Logger) *Player {
	p := New(DefaultSampleRate)
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		logger.Warn("audio unavailable, running silent", "err", err)
		return p
	}
	p.live = true
	speaker.Play(p.master)
	return p
}

// Close stops playback.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live {
		speaker.Clear()
		speaker.Close()
		p.live = false
	}
}

// Streamer returns the mixed output.
func (p *Player) Streamer() beep.Streamer {
	return p.master
}

// Live reports whether the player drives a real output device.
func (p *Player) Live() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

func (p *Player) lockOutput() func() {
	if p.live {
		speaker.Lock()
		return speaker.Unlock
	}
	return func() {}
}

// Play starts the sound for cue. Muted players and a full mixer drop it.
func (p *Player) Play(cue game.Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.muted {
		return
	}

	stepFreq := 0.0
	if cue == game.CueInvaderStep {
		p.stepCounter = (p.stepCounter + 1) % StepModulo
		if p.stepCounter != 0 {
			return
		}
		stepFreq = stepFrequencies[p.stepIndex]
		p.stepIndex = (p.stepIndex + 1) % len(stepFrequencies)
	}

	s := Synth(cue, p.rate, p.speed, stepFreq)
	if s == nil {
		return
	}

	unlock := p.lockOutput()
	defer unlock()
	if p.mixer.Len() >= MaxVoices {
		return
	}
	p.mixer.Add(s)
}

// SetSpeed sets the invader march tempo. Non-positive values reset it.
func (p *Player) SetSpeed(speed float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if speed <= 0 {
		speed = 1
	}
	p.speed = speed
}

// ToggleMute flips the mute flag and returns the new state.
func (p *Player) ToggleMute() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = !p.muted
	p.applyGain()
	return p.muted
}

// VolumeUp raises the volume by one step, up to 1.
func (p *Player) VolumeUp() float64 {
	return p.adjust(VolumeStep)
}

// VolumeDown lowers the volume by one step, down to 0.
func (p *Player) VolumeDown() float64 {
	return p.adjust(-VolumeStep)
}

func (p *Player) adjust(delta float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	// Round to whole steps so repeated presses land exactly on 0 and 1.
	v := float64(int((p.volume+delta)/VolumeStep+0.5)) * VolumeStep
	p.volume = max(0, min(1, v))
	p.applyGain()
	return p.volume
}

// Volume returns the current volume in [0, 1].
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *Player) applyGain() {
	unlock := p.lockOutput()
	defer unlock()
	if p.muted {
		setGain(p.master, 0)
		return
	}
	setGain(p.master, p.volume)
}

var (
	_ game.AudioSink     = (*Player)(nil)
	_ game.VolumeControl = (*Player)(nil)
)
