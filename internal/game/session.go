// Package game implements the invaders simulation: one Session per player,
// advanced by Update and read through Snapshot.
package game

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/invaders/internal/logging"
	gc "github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/object"
	"github.com/tomz197/invaders/internal/physics"
	"github.com/tomz197/invaders/internal/scores"
)

// State is the top-level session state.
type State uint8

const (
	StateIdle State = iota
	StateCountdown
	StatePlaying
	StateGameOver
	StateWon
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCountdown:
		return "countdown"
	case StatePlaying:
		return "playing"
	case StateGameOver:
		return "game-over"
	case StateWon:
		return "won"
	}
	return "unknown"
}

// Terminal reports whether the game has ended.
func (s State) Terminal() bool {
	return s == StateGameOver || s == StateWon
}

const gridCellSize = 32

// Session owns every entity of one game and all of its counters.
// It is not safe for concurrent use: the driver calls HandleKey, Update and
// Snapshot from a single goroutine.
type Session struct {
	cfg    Config
	log    *log.Logger
	audio  AudioSink
	scores scores.Store
	rng    *rand.Rand
	now    func() time.Time
	name   string

	state  State
	paused bool
	gen    uint64
	clock  float64 // ms since creation, advances while paused
	events EventQueue

	player       *object.Player
	invaders     []*object.Invader
	barriers     []*object.Barrier
	bricks       []*object.Brick
	grid         *physics.SpatialGrid
	playerShots  []*object.Projectile
	invaderShots []*object.Projectile
	shootPending bool

	score         int
	missedShots   int
	livesLost     int
	archivedKills int
	spawned       int

	level         int
	direction     int
	moveInterval  float64
	shootInterval float64
	moveAcc       float64
	shootAcc      float64
	audioSpeed    float64
	steps         int

	transitionActive    bool
	transitionTimer     float64
	preventVictoryCheck bool
	countdownLeft       int
	countdownTimer      float64
	topLineFlash        bool

	highScoreProcessed bool
	highScores         []scores.Entry
	report             *Report

	phases []phase
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger phase faults are reported to.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithAudio sets the sink cues are sent to.
func WithAudio(a AudioSink) Option {
	return func(s *Session) { s.audio = a }
}

// WithScores sets the high-score store used on terminal states.
func WithScores(st scores.Store) Option {
	return func(s *Session) { s.scores = st }
}

// WithRand sets the random source used to pick shooting invaders.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithClock sets the wall clock used for high-score timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithPlayerName sets the name recorded with the final score.
func WithPlayerName(name string) Option {
	return func(s *Session) { s.name = name }
}

// NewSession validates cfg and returns a session in the idle state.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:   cfg,
		log:   logging.Discard(),
		audio: nopAudio{},
		rng:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.audio == nil {
		s.audio = nopAudio{}
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	s.name = scores.CleanName(s.name)
	s.phases = s.buildPhases()
	s.grid = physics.NewSpatialGrid(cfg.FieldWidth, cfg.FieldHeight, gridCellSize)

	s.Reset()
	return s, nil
}

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// State returns the current top-level state.
func (s *Session) State() State { return s.state }

// Paused reports whether updates are suspended.
func (s *Session) Paused() bool { return s.paused }

// Generation returns the reset counter deferred events are keyed by.
func (s *Session) Generation() uint64 { return s.gen }

// Score returns the current score. It may be negative.
func (s *Session) Score() int { return s.score }

// Level returns the current level, starting at 1.
func (s *Session) Level() int { return s.level }

// Player returns the player avatar.
func (s *Session) Player() *object.Player { return s.player }

// PlayerName returns the name used for high scores.
func (s *Session) PlayerName() string { return s.name }

// Reset tears down every entity and counter and returns to the idle state.
// Pending deferred events are dropped and the high-score list is reloaded
// from the store, which other sessions may have changed.
func (s *Session) Reset() {
	s.gen++
	s.events.Clear()

	s.releaseShots()
	s.state = StateIdle
	s.paused = false
	s.shootPending = false

	s.player = object.NewPlayer(
		s.cfg.FieldWidth/2-object.PlayerWidth/2,
		s.playerY(),
		s.cfg.InitialLives,
	)

	s.score = 0
	s.missedShots = 0
	s.livesLost = 0
	s.archivedKills = 0
	s.spawned = 0

	s.level = 1
	s.direction = 1
	s.moveInterval, s.shootInterval = s.cfg.levelIntervals(1)
	s.moveAcc = 0
	s.shootAcc = 0
	s.steps = 0
	s.audioSpeed = 1
	s.audio.SetSpeed(1)

	s.transitionActive = false
	s.transitionTimer = 0
	s.preventVictoryCheck = false
	s.countdownLeft = 0
	s.countdownTimer = 0
	s.topLineFlash = false

	s.highScoreProcessed = false
	s.report = nil

	s.buildBarriers()
	s.invaders = s.buildLayout(1)
	s.loadHighScores()
}

// Start leaves the idle screen and begins the countdown.
// It has no effect in any other state.
func (s *Session) Start() {
	if s.state != StateIdle {
		return
	}
	if s.cfg.CountdownSteps <= 0 {
		s.state = StatePlaying
		return
	}
	s.state = StateCountdown
	s.countdownLeft = s.cfg.CountdownSteps
	s.countdownTimer = 0
}

// TogglePause suspends or resumes updates. Pause is ignored outside play.
func (s *Session) TogglePause() {
	if s.state != StatePlaying && s.state != StateCountdown {
		return
	}
	s.paused = !s.paused
	if s.paused {
		s.player.MovingLeft = false
		s.player.MovingRight = false
		s.shootPending = false
	}
}

// RecoverAccumulators is the fallback after a faulted tick: formation and
// shot timers restart and invalid intervals return to the level defaults.
func (s *Session) RecoverAccumulators() {
	s.moveAcc = 0
	s.shootAcc = 0
	if !validMillis(s.transitionTimer) {
		s.transitionTimer = 0
	}
	move, shoot := s.cfg.levelIntervals(s.level)
	if !validInterval(s.moveInterval) {
		s.moveInterval = move
	}
	if !validInterval(s.shootInterval) {
		s.shootInterval = shoot
	}
}

func (s *Session) field() physics.Rect {
	return physics.Rect{X: 0, Y: 0, W: s.cfg.FieldWidth, H: s.cfg.FieldHeight}
}

func (s *Session) playerY() float64 {
	return s.cfg.FieldHeight - object.PlayerHeight - s.cfg.PlayerBottomMargin
}

func (s *Session) buildBarriers() {
	s.barriers = s.barriers[:0]
	s.bricks = s.bricks[:0]
	n := float64(s.cfg.BarrierCount)
	totalW := n*s.cfg.BarrierWidth + (n-1)*s.cfg.BarrierSpacing
	startX := (s.cfg.FieldWidth - totalW) / 2
	for i := 0; i < s.cfg.BarrierCount; i++ {
		b := object.NewBarrier(
			startX+float64(i)*(s.cfg.BarrierWidth+s.cfg.BarrierSpacing),
			s.cfg.BarrierY,
			s.cfg.BarrierRows, s.cfg.BarrierCols,
		)
		s.barriers = append(s.barriers, b)
		s.bricks = append(s.bricks, b.Bricks()...)
	}

	s.grid.Clear()
	for i, brick := range s.bricks {
		s.grid.InsertRect(brick.Bounds(), i)
	}
}

func (s *Session) releaseShots() {
	for _, p := range s.playerShots {
		p.Release()
	}
	for _, p := range s.invaderShots {
		p.Release()
	}
	s.playerShots = s.playerShots[:0]
	s.invaderShots = s.invaderShots[:0]
}

func (s *Session) loadHighScores() {
	if s.scores == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), gc.HighScoreSaveTimeout)
	defer cancel()
	list, err := s.scores.Top(ctx)
	if err != nil {
		s.log.Warn("load high scores", "err", err)
		return
	}
	s.highScores = list
}

// HighScores returns the last known ranked list.
func (s *Session) HighScores() []scores.Entry {
	return s.highScores
}

// ClearHighScores empties the store and the cached list.
func (s *Session) ClearHighScores() {
	s.highScores = nil
	if s.scores == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), gc.HighScoreSaveTimeout)
	defer cancel()
	if err := s.scores.Clear(ctx); err != nil {
		s.log.Error("clear high scores", "err", err)
	}
}
