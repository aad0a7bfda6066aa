package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/invaders/internal/object"
)

func TestSnapshotSkipsInvisibleEntities(t *testing.T) {
	s := newTestSession(t)
	startPlaying(t, s)
	s.bricks[0].MarkDestroyed()
	s.invaders[0].MarkDestroyed()

	snap := s.Snapshot()
	counts := map[object.Kind]int{}
	for _, sp := range snap.Sprites {
		counts[sp.Kind]++
	}
	assert.Equal(t, 79, counts[object.KindBrick])
	assert.Equal(t, 54, counts[object.KindInvader])
	assert.Equal(t, 1, counts[object.KindPlayer])

	player, ok := snap.Player()
	require.True(t, ok)
	assert.InDelta(t, 340, player.X, 1e-9)
	assert.Equal(t, object.ColorGreen, player.Color)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestSession(t)
	startPlaying(t, s)
	s.invaders[3].StartExplosion()
	s.score = 17

	data, err := EncodeSnapshot(s.Snapshot())
	require.NoError(t, err)
	got, err := DecodeSnapshot(data)
	require.NoError(t, err)

	want := s.Snapshot()
	assert.Equal(t, want.State, got.State)
	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, want.Killed, got.Killed)
	require.Len(t, got.Sprites, len(want.Sprites))
	assert.Equal(t, want.Sprites[80+3], got.Sprites[80+3])
	assert.Equal(t, object.ColorOrange, got.Sprites[80+3].Color)

	_, err = DecodeSnapshot([]byte{0xc1})
	assert.Error(t, err)
}
