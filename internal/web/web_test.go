package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/logging"
	"github.com/tomz197/invaders/internal/loop/server"
	"github.com/tomz197/invaders/internal/scores"
)

type fixture struct {
	lobby  *server.Lobby
	store  *scores.MemoryStore
	server *httptest.Server
}

func newFixture(t *testing.T, mutate ...func(*RouterConfig)) *fixture {
	t.Helper()
	f := &fixture{
		lobby: server.NewLobby(),
		store: scores.NewMemoryStore(5),
	}
	limiter := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000})
	t.Cleanup(limiter.Stop)

	cfg := RouterConfig{
		Lobby:          f.lobby,
		Scores:         f.store,
		SSHCommand:     "ssh -p 2222 play.example.com",
		RateLimiter:    limiter,
		Logger:         logging.Discard(),
		DisableLogging: true,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	f.server = httptest.NewServer(NewRouter(cfg))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// join registers a session and publishes its first frame.
func (f *fixture) join(t *testing.T, name string, playing bool) (*server.Handle, *game.Session) {
	t.Helper()
	s, err := game.NewSession(game.DefaultConfig(),
		game.WithRand(rand.New(rand.NewPCG(3, 4))),
		game.WithPlayerName(name),
	)
	require.NoError(t, err)
	if playing {
		cfg := s.Config()
		s.Start()
		require.NoError(t, s.Update(time.Duration(cfg.CountdownSteps)*time.Duration(cfg.CountdownStep)*time.Millisecond))
		require.Equal(t, game.StatePlaying, s.State())
	}
	h := f.lobby.Register(name)
	h.Publish(s.Snapshot())
	return h, s
}

func TestSessionsListing(t *testing.T) {
	f := newFixture(t)
	f.join(t, "alice", false)
	f.join(t, "bob", true)

	resp := f.get(t, "/api/sessions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var infos []server.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "alice", infos[0].Name)
	assert.Equal(t, "idle", infos[0].State)
	assert.Equal(t, "bob", infos[1].Name)
	assert.Equal(t, "playing", infos[1].State)
	assert.Equal(t, 3, infos[1].Lives)
}

func TestSessionsListingEmpty(t *testing.T) {
	f := newFixture(t)
	resp := f.get(t, "/api/sessions")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(body))
}

func TestSessionDetail(t *testing.T) {
	f := newFixture(t)
	h, _ := f.join(t, "alice", false)

	resp := f.get(t, "/api/sessions/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info server.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, h.ID, info.ID)
	assert.Equal(t, "alice", info.Name)
}

func TestSessionLookupErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"unknown id", "/api/sessions/42", http.StatusNotFound},
		{"invalid id", "/api/sessions/abc/frame.png", http.StatusBadRequest},
		{"nobody live", "/api/sessions/live", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.get(t, tt.path)
			assert.Equal(t, tt.code, resp.StatusCode)
			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestLiveResolvesPlayingSession(t *testing.T) {
	f := newFixture(t)
	f.join(t, "idler", false)
	playing, _ := f.join(t, "player", true)

	resp := f.get(t, "/api/sessions/live")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info server.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, playing.ID, info.ID)
}

func TestScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Record(ctx, scores.Entry{Name: "alice", Score: 40, Timestamp: time.Now()})
	require.NoError(t, err)
	_, err = f.store.Record(ctx, scores.Entry{Name: "bob", Score: 90, Timestamp: time.Now()})
	require.NoError(t, err)

	resp := f.get(t, "/api/scores")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []scores.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Name)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "alice", entries[1].Name)
}

func TestScoresWithoutStore(t *testing.T) {
	f := newFixture(t, func(cfg *RouterConfig) { cfg.Scores = nil })
	resp := f.get(t, "/api/scores")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(body))
}

func TestFramePNG(t *testing.T) {
	f := newFixture(t)
	f.join(t, "alice", true)

	resp := f.get(t, "/api/sessions/1/frame.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 720, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())

	resp = f.get(t, "/api/sessions/live/frame.png?scale=0.5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	img, err = png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 360, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestFrameRejectsBadScale(t *testing.T) {
	f := newFixture(t)
	f.join(t, "alice", false)

	for _, scale := range []string{"0", "3", "big", "NaN", "nan", "Inf", "-Inf"} {
		resp := f.get(t, "/api/sessions/1/frame.png?scale="+scale)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, scale)
	}
}

func TestFrameBeforeFirstPublish(t *testing.T) {
	f := newFixture(t)
	f.lobby.Register("late")

	resp := f.get(t, "/api/sessions/1/frame.png")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestEncodeFrameFallsBackOnNonFiniteScale(t *testing.T) {
	snap := game.Snapshot{Width: 40, Height: 30}
	for _, scale := range []float64{math.NaN(), math.Inf(1), -2} {
		var buf bytes.Buffer
		require.NoError(t, EncodeFrame(&buf, snap, scale))
		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 40, img.Bounds().Dx())
	}
}

func TestEncodeFrameEmptySnapshot(t *testing.T) {
	err := EncodeFrame(io.Discard, game.Snapshot{}, 1)
	assert.ErrorIs(t, err, ErrEmptySnapshot)
}

func TestFrameStatus(t *testing.T) {
	assert.Equal(t, "WAITING TO START", frameStatus(game.Snapshot{State: game.StateIdle}))
	assert.Equal(t, "GET READY 2", frameStatus(game.Snapshot{State: game.StateCountdown, Countdown: 2}))
	assert.Equal(t, "GAME OVER - 12 POINTS", frameStatus(game.Snapshot{State: game.StateGameOver, Score: 12}))
	assert.Equal(t, "VICTORY - 80 POINTS", frameStatus(game.Snapshot{State: game.StateWon, Score: 80}))
	assert.Equal(t, "PAUSED", frameStatus(game.Snapshot{State: game.StatePlaying, Paused: true}))
	assert.Equal(t, "LEVEL 2 CLEARED", frameStatus(game.Snapshot{State: game.StatePlaying, Level: 2, TransitionActive: true}))
	assert.Empty(t, frameStatus(game.Snapshot{State: game.StatePlaying}))
}

func TestIndexPage(t *testing.T) {
	f := newFixture(t)
	f.join(t, "alice", false)

	resp := f.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ssh -p 2222 play.example.com")
	assert.Contains(t, string(body), "alice")
	assert.Contains(t, string(body), "No high scores yet")
}

func TestQRCode(t *testing.T) {
	f := newFixture(t)
	resp := f.get(t, "/qr.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestQRCodeWithoutCommand(t *testing.T) {
	f := newFixture(t, func(cfg *RouterConfig) { cfg.SSHCommand = "" })
	resp := f.get(t, "/qr.png")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	f.join(t, "alice", false)

	resp := f.get(t, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(1), health["sessions"])

	resp = f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "invaders_")
}

func wsURL(f *fixture, path string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + path
}

func TestSpectateStreamsSnapshots(t *testing.T) {
	f := newFixture(t)
	h, s := f.join(t, "alice", true)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(f, "/api/sessions/1/ws"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, msgType)
	snap, err := game.DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, "alice", snap.Name)
	assert.Equal(t, game.StatePlaying, snap.State)
	assert.NotEmpty(t, snap.Sprites)

	require.NoError(t, s.Update(50*time.Millisecond))
	h.Publish(s.Snapshot())
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	_, err = game.DecodeSnapshot(data)
	require.NoError(t, err)

	f.lobby.Unregister(h.ID)
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
}

func TestSpectateRejectsForeignOrigin(t *testing.T) {
	f := newFixture(t)
	f.join(t, "alice", false)

	header := http.Header{"Origin": []string{"http://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(f, "/api/sessions/1/ws"), header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSpectateLimit(t *testing.T) {
	limiter := NewSpectatorLimiter(0)
	f := newFixture(t, func(cfg *RouterConfig) { cfg.Spectators = limiter })
	f.join(t, "alice", false)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(f, "/api/sessions/1/ws"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, 0, limiter.Active())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, "nope", http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
	assert.True(t, bytes.HasSuffix(rec.Body.Bytes(), []byte("\n")))
}
