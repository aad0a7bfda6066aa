package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/invaders/internal/game"
)

func TestRegisterAndUnregister(t *testing.T) {
	var counts []int
	lb := NewLobby(WithCountHook(func(n int) { counts = append(counts, n) }))

	a := lb.Register("alice")
	b := lb.Register("bob")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, lb.Count())

	got, ok := lb.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	lb.Unregister(a.ID)
	lb.Unregister(a.ID)
	lb.Unregister(999)
	assert.Equal(t, 1, lb.Count())
	assert.Equal(t, []int{1, 2, 1}, counts)
}

func TestPublishAndLatest(t *testing.T) {
	lb := NewLobby()
	h := lb.Register("alice")

	_, _, ok := h.Latest()
	assert.False(t, ok)

	h.Publish(game.Snapshot{Score: 10, State: game.StatePlaying})
	h.Publish(game.Snapshot{Score: 12, State: game.StatePlaying})
	snap, version, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 12, snap.Score)
	assert.Equal(t, uint64(2), version)
}

func TestSessionsListing(t *testing.T) {
	lb := NewLobby()
	a := lb.Register("alice")
	b := lb.Register("bob")
	lb.Register("carol")

	a.Publish(game.Snapshot{State: game.StatePlaying, Score: 4, Level: 1, Lives: 3})
	b.Publish(game.Snapshot{State: game.StatePlaying, Score: 9, Level: 2, Lives: 2})

	infos := lb.Sessions()
	require.Len(t, infos, 3)
	assert.Equal(t, "alice", infos[0].Name)
	assert.Equal(t, "playing", infos[0].State)
	assert.Equal(t, 9, infos[1].Score)
	assert.Equal(t, "idle", infos[2].State)

	id, ok := lb.Playing()
	require.True(t, ok)
	assert.Equal(t, b.ID, id)
}

func TestPlayingWithNobody(t *testing.T) {
	lb := NewLobby()
	lb.Register("idle")
	_, ok := lb.Playing()
	assert.False(t, ok)
}

func TestShutdownNotifiesAndWaits(t *testing.T) {
	lb := NewLobby()
	h := lb.Register("alice")

	go func() {
		ev := <-h.Events
		if ev.Type == EventServerShutdown {
			lb.Unregister(h.ID)
		}
	}()

	done := make(chan struct{})
	go func() {
		lb.Shutdown(5 * time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not return after the last session left")
	}
	assert.Zero(t, lb.Count())

	late := lb.Register("late")
	select {
	case ev := <-late.Events:
		assert.Equal(t, EventServerShutdown, ev.Type)
	default:
		t.Fatal("late session was not told about the shutdown")
	}
}

func TestShutdownTimesOut(t *testing.T) {
	lb := NewLobby()
	lb.Register("stuck")

	start := time.Now()
	lb.Shutdown(150 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.Equal(t, 1, lb.Count())
}
