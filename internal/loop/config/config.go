// Package config centralizes all tunable game parameters.
package config

import "time"

// Play field - the logical resolution the simulation runs in.
// Actual rendering scales to fit terminal size.
const (
	FieldWidth   = 720
	FieldHeight  = 600
	HeaderHeight = 42 // HUD strip above the top line
)

// Top boundary line. Player shots reaching it count as misses.
const (
	TopLineY       = 52
	TopLineHeight  = 5
	TopLineFlashMs = 100.0
)

// Invader formation
const (
	InvaderRows     = 5
	InvaderCols     = 11
	InvaderSpacingX = 45
	InvaderSpacingY = 33
	InvaderOriginX  = 35
	InvaderOriginY  = 112
	MaxInvaders     = 100 // Dead invaders beyond this are archived

	HorizontalStep = 10
	DescentStep    = 30
)

// Formation timing, in milliseconds.
const (
	MoveIntervalMs        = 500.0
	MinMoveIntervalMs     = 100.0
	MoveSpeedUp           = 0.8
	ShootIntervalMs       = 750.0
	MinShootIntervalMs    = 300.0
	ShootSpeedUp          = 0.9
	AudioSpeedUp          = 1.2
	InvaderStepSoundEvery = 2
)

// Barriers
const (
	BarrierCount   = 4
	BarrierRows    = 4
	BarrierCols    = 5
	BarrierWidth   = 60
	BarrierSpacing = 100
	BarrierY       = 471
)

// Player
const (
	InitialLives          = 3
	MaxLives              = 5
	PlayerBottomMargin    = 4
	MaxUsernameLength     = 16 // Maximum display length for player usernames
	MaxPlayerProjectiles  = 10
	MaxInvaderProjectiles = 15
)

// Scoring
const (
	ScoreInvaderKill = 2
	ScoreMissedShot  = -1
	ScoreLifeLost    = -10
)

// Levels
const (
	MaxLevel             = 3
	LevelTransitionMs    = 3000.0
	VictoryCheckGuardMs  = 500.0
	CountdownSteps       = 3
	CountdownStepMs      = 500.0
	LayoutOffsetUnit     = 15
	HighScoreSaveTimeout = 2 * time.Second
)

// Level speed factors applied to the base intervals, indexed by level-1.
// Levels past the end reuse the last entry.
var (
	LevelMoveFactors  = []float64{1, 0.75, 0.5625}
	LevelShootFactors = []float64{1, 0.75, 0.75}
)

// Driver
const (
	RenderFaultLimit = 3 // Consecutive render faults before reduced graphics
	MaxFrameDelta    = 250 * time.Millisecond
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS

	// Max render resolution (terminal columns x rows). Larger terminals get
	// a centred, bordered play area.
	MaxTermWidth  = 144
	MaxTermHeight = 60
	MinTermWidth  = 48
	MinTermHeight = 20

	PromptBlinkMs = 600
)

// Spectating
const (
	SpectatorFPS       = 15
	SpectatorFrameTime = time.Second / SpectatorFPS
	MaxSpectators      = 64
)
