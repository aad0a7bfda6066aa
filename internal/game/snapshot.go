package game

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomz197/invaders/internal/object"
	"github.com/tomz197/invaders/internal/scores"
)

// Sprite is the render view of one visible entity.
type Sprite struct {
	Kind  object.Kind  `msgpack:"k"`
	X     float64      `msgpack:"x"`
	Y     float64      `msgpack:"y"`
	W     float64      `msgpack:"w"`
	H     float64      `msgpack:"h"`
	Color object.Color `msgpack:"c"`
	Frame int          `msgpack:"f,omitempty"`
}

// Snapshot is a read-only copy of everything a renderer or HUD needs.
type Snapshot struct {
	Name   string `msgpack:"name"`
	State  State  `msgpack:"state"`
	Paused bool   `msgpack:"paused"`

	Width         float64 `msgpack:"width"`
	Height        float64 `msgpack:"height"`
	HeaderHeight  float64 `msgpack:"header"`
	TopLineY      float64 `msgpack:"top_y"`
	TopLineHeight float64 `msgpack:"top_h"`
	TopLineFlash  bool    `msgpack:"top_flash"`

	Level      int `msgpack:"level"`
	MaxLevel   int `msgpack:"max_level"`
	Score      int `msgpack:"score"`
	Lives      int `msgpack:"lives"`
	ShotsFired int `msgpack:"shots"`
	Missed     int `msgpack:"missed"`
	LivesLost  int `msgpack:"lives_lost"`
	Killed     int `msgpack:"killed"`
	Total      int `msgpack:"total"`

	TransitionActive   bool    `msgpack:"transition"`
	TransitionProgress float64 `msgpack:"transition_progress"`
	Countdown          int     `msgpack:"countdown"`

	Direction     int     `msgpack:"dir"`
	MoveInterval  float64 `msgpack:"move_interval"`
	ShootInterval float64 `msgpack:"shoot_interval"`

	Sprites    []Sprite       `msgpack:"sprites"`
	HighScores []scores.Entry `msgpack:"high_scores,omitempty"`
	Report     *Report        `msgpack:"report,omitempty"`
}

// Snapshot copies the current state. Only visible entities are included,
// barriers first, then invaders, shots and the player.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Name:   s.name,
		State:  s.state,
		Paused: s.paused,

		Width:         s.cfg.FieldWidth,
		Height:        s.cfg.FieldHeight,
		HeaderHeight:  s.cfg.HeaderHeight,
		TopLineY:      s.cfg.TopLineY,
		TopLineHeight: s.cfg.TopLineHeight,
		TopLineFlash:  s.topLineFlash,

		Level:      s.level,
		MaxLevel:   s.cfg.MaxLevel,
		Score:      s.score,
		Lives:      s.player.Lives,
		ShotsFired: s.player.TotalShotsFired,
		Missed:     s.missedShots,
		LivesLost:  s.livesLost,
		Killed:     s.eliminated(),
		Total:      s.spawned,

		TransitionActive: s.transitionActive,
		Countdown:        s.countdownLeft,

		Direction:     s.direction,
		MoveInterval:  s.moveInterval,
		ShootInterval: s.shootInterval,

		HighScores: s.highScores,
		Report:     s.report,
	}
	if s.transitionActive && s.cfg.LevelTransition > 0 {
		snap.TransitionProgress = min(1, s.transitionTimer/s.cfg.LevelTransition)
	}

	snap.Sprites = make([]Sprite, 0, len(s.bricks)+len(s.invaders)+len(s.playerShots)+len(s.invaderShots)+1)
	for _, b := range s.bricks {
		snap.Sprites = appendSprite(snap.Sprites, b, 0)
	}
	for _, inv := range s.invaders {
		snap.Sprites = appendSprite(snap.Sprites, inv, inv.Frame)
	}
	for _, p := range s.playerShots {
		snap.Sprites = appendSprite(snap.Sprites, p, 0)
	}
	for _, p := range s.invaderShots {
		snap.Sprites = appendSprite(snap.Sprites, p, 0)
	}
	snap.Sprites = appendSprite(snap.Sprites, s.player, 0)
	return snap
}

type renderable interface {
	object.Collidable
	object.Visual
}

func appendSprite(sprites []Sprite, e renderable, frame int) []Sprite {
	if !e.Visible() {
		return sprites
	}
	b := e.Bounds()
	return append(sprites, Sprite{
		Kind:  e.Kind(),
		X:     b.X,
		Y:     b.Y,
		W:     b.W,
		H:     b.H,
		Color: e.Color(),
		Frame: frame,
	})
}

// Player returns the player sprite, if visible.
func (s Snapshot) Player() (Sprite, bool) {
	for i := len(s.Sprites) - 1; i >= 0; i-- {
		if s.Sprites[i].Kind == object.KindPlayer {
			return s.Sprites[i], true
		}
	}
	return Sprite{}, false
}

// EncodeSnapshot serializes a snapshot with msgpack.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(&snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
