package client

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/input"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/object"
	"github.com/tomz197/invaders/internal/scores"
)

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

// epoch keeps blinking prompts visible.
func epoch() time.Time { return time.UnixMilli(0) }

func newTestRenderer(buf *bytes.Buffer, w, h int) *Renderer {
	return NewRenderer(buf, Options{TermSizeFunc: fixedSize(w, h), Now: epoch})
}

func playingSnapshot() game.Snapshot {
	return game.Snapshot{
		State:         game.StatePlaying,
		Width:         config.FieldWidth,
		Height:        config.FieldHeight,
		TopLineY:      config.TopLineY,
		TopLineHeight: config.TopLineHeight,
		Level:         1,
		MaxLevel:      3,
		Score:         10,
		Lives:         3,
		Killed:        5,
		Total:         55,
		Sprites: []game.Sprite{
			{Kind: object.KindBrick, X: 90, Y: 471, W: 15, H: 10, Color: object.ColorBrown},
			{Kind: object.KindInvader, X: 35, Y: 112, W: 32, H: 32, Color: object.ColorWhite},
			{Kind: object.KindPlayer, X: 340, Y: 548, W: 40, H: 20, Color: object.ColorGreen},
		},
	}
}

func TestRenderPlayingDrawsHUDAndSprites(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 144, 60)

	require.NoError(t, r.Render(playingSnapshot()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "\033[H\033[2J"), "first frame clears the screen")
	assert.Contains(t, out, "Score: 10")
	assert.Contains(t, out, "Level 1/3")
	assert.Contains(t, out, "Killed:   5/55")
	assert.Contains(t, out, "38;5;130", "brown bricks")
	assert.Contains(t, out, "38;5;46", "green player")
}

func TestRenderOnlyClearsOnScreenChange(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 144, 60)
	snap := playingSnapshot()

	require.NoError(t, r.Render(snap))
	buf.Reset()
	require.NoError(t, r.Render(snap))
	assert.NotContains(t, buf.String(), "\033[2J")

	snap.Paused = true
	buf.Reset()
	require.NoError(t, r.Render(snap))
	assert.Contains(t, buf.String(), "\033[2J")
	assert.Contains(t, buf.String(), "PAUSED")
}

func TestPauseOverlayCentresOnField(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 144, 60)
	snap := playingSnapshot()
	snap.Paused = true

	require.NoError(t, r.Render(snap))

	col, row := r.canvas.LogicalToTerminal(config.FieldWidth/2, (config.TopLineY+config.FieldHeight)/2)
	at := fmt.Sprintf("\033[%d;%dH\033[38;5;226m  PAUSED  ",
		row-1+r.canvas.OffsetRow(), col-5+r.canvas.OffsetCol())
	assert.Contains(t, buf.String(), at)
}

func TestReducedGraphicsDropsColour(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 144, 60)
	r.SetReduced(true)
	assert.True(t, r.Reduced())

	require.NoError(t, r.Render(playingSnapshot()))
	out := buf.String()
	assert.NotContains(t, out, "38;5;")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "Score: 10")
}

func TestStartScreen(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 144, 60)

	snap := game.Snapshot{
		State: game.StateIdle,
		Name:  "alice",
		HighScores: []scores.Entry{
			{Rank: 1, Name: "alice", Score: 42, Timestamp: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
	}
	require.NoError(t, r.Render(snap))
	out := buf.String()

	assert.Contains(t, out, "Press SPACE to Start")
	assert.Contains(t, out, "Controls")
	assert.Contains(t, out, "High Scores")
	assert.Contains(t, out, "2026-01-02")
	assert.NotContains(t, out, "▀", "no field on the start screen")
}

func TestEndScreenShowsReport(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 144, 60)

	snap := game.Snapshot{
		State: game.StateGameOver,
		Report: &game.Report{
			Eliminated: 10, EliminatedPoints: 20,
			Missed: 3, MissedPoints: -3,
			LivesLost: 3, LivesLostPoints: -30,
			Total: -13,
		},
	}
	require.NoError(t, r.Render(snap))
	out := buf.String()

	assert.Contains(t, out, "Invaders eliminated    10     +20")
	assert.Contains(t, out, "Lives lost              3     -30")
	assert.Contains(t, out, "Total score                   -13")
	assert.Contains(t, out, "No high scores yet")
	assert.Contains(t, out, "Press ENTER to Play Again")
}

func TestNoticeReplacesGame(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 144, 60)
	r.SetNotice(Notice{Kind: NoticeShutdown, Seconds: 7})

	require.NoError(t, r.Render(playingSnapshot()))
	out := buf.String()
	assert.Contains(t, out, "SERVER SHUTTING DOWN")
	assert.Contains(t, out, "Disconnecting in 7 seconds")
	assert.NotContains(t, out, "Score: 10")
}

func TestTooSmallTerminal(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRenderer(&buf, 30, 10)

	require.NoError(t, r.Render(playingSnapshot()))
	assert.Contains(t, buf.String(), "Terminal too small")
}

func TestFitTermSizeKeepsAspect(t *testing.T) {
	tests := []struct {
		name                   string
		termW, termH           int
		wantW, wantH           int
		wantOffCol, wantOffRow int
	}{
		{"exact max", 144, 60, 144, 60, 0, 0},
		{"larger terminal is centred", 200, 80, 144, 60, 28, 10},
		{"wide terminal limited by height", 144, 30, 72, 30, 36, 0},
		{"tall terminal limited by width", 72, 60, 72, 30, 0, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, oc, or := fitTermSize(tt.termW, tt.termH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.Equal(t, tt.wantOffCol, oc)
			assert.Equal(t, tt.wantOffRow, or)
		})
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		key  input.Key
		want game.Action
		ok   bool
	}{
		{input.KeyLeft, game.ActionMoveLeft, true},
		{input.KeyRight, game.ActionMoveRight, true},
		{input.KeySpace, game.ActionShoot, true},
		{input.KeyEnter, game.ActionStart, true},
		{input.KeyEscape, game.ActionPause, true},
		{input.KeyPause, game.ActionPause, true},
		{input.KeyRestart, game.ActionRestart, true},
		{input.KeyMute, game.ActionMute, true},
		{input.KeyUp, game.ActionVolumeUp, true},
		{input.KeyDown, game.ActionVolumeDown, true},
		{input.KeyDelete, game.ActionClearScores, true},
		{input.KeyQuit, game.ActionNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			got, ok := ActionFor(tt.key)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
