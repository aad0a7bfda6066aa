package game

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tomz197/invaders/internal/object"
	"github.com/tomz197/invaders/internal/scores"
)

const frame = 16 * time.Millisecond

type recordingAudio struct {
	cues  []Cue
	speed float64

	muted  bool
	volume float64
}

func (a *recordingAudio) Play(c Cue)             { a.cues = append(a.cues, c) }
func (a *recordingAudio) SetSpeed(speed float64) { a.speed = speed }
func (a *recordingAudio) ToggleMute() bool       { a.muted = !a.muted; return a.muted }
func (a *recordingAudio) VolumeUp() float64      { a.volume += 0.05; return a.volume }
func (a *recordingAudio) VolumeDown() float64    { a.volume -= 0.05; return a.volume }

func (a *recordingAudio) count(c Cue) int {
	n := 0
	for _, got := range a.cues {
		if got == c {
			n++
		}
	}
	return n
}

type countingStore struct {
	*scores.MemoryStore
	records int
}

func (c *countingStore) Record(ctx context.Context, e scores.Entry) ([]scores.Entry, error) {
	c.records++
	return c.MemoryStore.Record(ctx, e)
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	base := []Option{WithRand(rand.New(rand.NewPCG(1, 2)))}
	s, err := NewSession(DefaultConfig(), append(base, opts...)...)
	require.NoError(t, err)
	return s
}

// startPlaying skips the countdown.
func startPlaying(t *testing.T, s *Session) {
	t.Helper()
	s.HandleKey(ActionStart, true)
	s.HandleKey(ActionStart, false)
	require.NoError(t, s.Update(time.Duration(s.cfg.CountdownSteps)*time.Duration(s.cfg.CountdownStep)*time.Millisecond))
	require.Equal(t, StatePlaying, s.State())
}

func killAll(s *Session) {
	for _, inv := range s.invaders {
		inv.MarkDestroyed()
	}
}

func ctxMs(s *Session, ms float64) object.UpdateContext {
	return object.UpdateContext{Delta: ms, Field: s.field()}
}
