package game

import (
	"fmt"
	"math"

	"github.com/tomz197/invaders/internal/config"
	gc "github.com/tomz197/invaders/internal/loop/config"
)

// Config holds every tunable the simulation reads. Times are in milliseconds,
// distances in field units.
type Config struct {
	FieldWidth   float64
	FieldHeight  float64
	HeaderHeight float64

	TopLineY      float64
	TopLineHeight float64
	TopLineFlash  float64

	InvaderRows     int
	InvaderCols     int
	InvaderSpacingX float64
	InvaderSpacingY float64
	InvaderOriginX  float64
	InvaderOriginY  float64
	MaxInvaders     int

	HorizontalStep float64
	DescentStep    float64

	MoveInterval     float64
	MinMoveInterval  float64
	MoveSpeedUp      float64
	ShootInterval    float64
	MinShootInterval float64
	ShootSpeedUp     float64
	AudioSpeedUp     float64

	BarrierCount   int
	BarrierRows    int
	BarrierCols    int
	BarrierWidth   float64
	BarrierSpacing float64
	BarrierY       float64

	InitialLives          int
	MaxLives              int
	PlayerBottomMargin    float64
	MaxPlayerProjectiles  int
	MaxInvaderProjectiles int

	ScoreKill     int
	ScoreMiss     int
	ScoreLifeLost int

	MaxLevel          int
	LevelTransition   float64
	VictoryGuard      float64
	CountdownSteps    int
	CountdownStep     float64
	LayoutOffset      float64
	LevelMoveFactors  []float64
	LevelShootFactors []float64
}

// DefaultConfig returns the arcade defaults.
func DefaultConfig() Config {
	return Config{
		FieldWidth:   gc.FieldWidth,
		FieldHeight:  gc.FieldHeight,
		HeaderHeight: gc.HeaderHeight,

		TopLineY:      gc.TopLineY,
		TopLineHeight: gc.TopLineHeight,
		TopLineFlash:  gc.TopLineFlashMs,

		InvaderRows:     gc.InvaderRows,
		InvaderCols:     gc.InvaderCols,
		InvaderSpacingX: gc.InvaderSpacingX,
		InvaderSpacingY: gc.InvaderSpacingY,
		InvaderOriginX:  gc.InvaderOriginX,
		InvaderOriginY:  gc.InvaderOriginY,
		MaxInvaders:     gc.MaxInvaders,

		HorizontalStep: gc.HorizontalStep,
		DescentStep:    gc.DescentStep,

		MoveInterval:     gc.MoveIntervalMs,
		MinMoveInterval:  gc.MinMoveIntervalMs,
		MoveSpeedUp:      gc.MoveSpeedUp,
		ShootInterval:    gc.ShootIntervalMs,
		MinShootInterval: gc.MinShootIntervalMs,
		ShootSpeedUp:     gc.ShootSpeedUp,
		AudioSpeedUp:     gc.AudioSpeedUp,

		BarrierCount:   gc.BarrierCount,
		BarrierRows:    gc.BarrierRows,
		BarrierCols:    gc.BarrierCols,
		BarrierWidth:   gc.BarrierWidth,
		BarrierSpacing: gc.BarrierSpacing,
		BarrierY:       gc.BarrierY,

		InitialLives:          gc.InitialLives,
		MaxLives:              gc.MaxLives,
		PlayerBottomMargin:    gc.PlayerBottomMargin,
		MaxPlayerProjectiles:  gc.MaxPlayerProjectiles,
		MaxInvaderProjectiles: gc.MaxInvaderProjectiles,

		ScoreKill:     gc.ScoreInvaderKill,
		ScoreMiss:     gc.ScoreMissedShot,
		ScoreLifeLost: gc.ScoreLifeLost,

		MaxLevel:          gc.MaxLevel,
		LevelTransition:   gc.LevelTransitionMs,
		VictoryGuard:      gc.VictoryCheckGuardMs,
		CountdownSteps:    gc.CountdownSteps,
		CountdownStep:     gc.CountdownStepMs,
		LayoutOffset:      gc.LayoutOffsetUnit,
		LevelMoveFactors:  gc.LevelMoveFactors,
		LevelShootFactors: gc.LevelShootFactors,
	}
}

// ConfigFromEnv returns DefaultConfig with selected fields overridden from
// the environment.
func ConfigFromEnv() Config {
	c := DefaultConfig()
	c.MaxLevel = config.GetEnvInt("INVADERS_MAX_LEVEL", c.MaxLevel)
	c.InitialLives = config.GetEnvInt("INVADERS_LIVES", c.InitialLives)
	c.MaxLives = config.GetEnvInt("INVADERS_MAX_LIVES", c.MaxLives)
	c.MoveInterval = config.GetEnvFloat("INVADERS_MOVE_INTERVAL_MS", c.MoveInterval)
	c.ShootInterval = config.GetEnvFloat("INVADERS_SHOOT_INTERVAL_MS", c.ShootInterval)
	c.LevelTransition = config.GetEnvFloat("INVADERS_LEVEL_TRANSITION_MS", c.LevelTransition)
	c.CountdownSteps = config.GetEnvInt("INVADERS_COUNTDOWN_STEPS", c.CountdownSteps)
	return c
}

// Validate reports the first setting that would make the simulation misbehave.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"field width", c.FieldWidth},
		{"field height", c.FieldHeight},
		{"move interval", c.MoveInterval},
		{"min move interval", c.MinMoveInterval},
		{"shoot interval", c.ShootInterval},
		{"min shoot interval", c.MinShootInterval},
		{"horizontal step", c.HorizontalStep},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("invalid config: %s must be positive, got %v", p.name, p.v)
		}
	}
	switch {
	case c.InitialLives < 1:
		return fmt.Errorf("invalid config: initial lives must be at least 1, got %d", c.InitialLives)
	case c.MaxLives < c.InitialLives:
		return fmt.Errorf("invalid config: max lives %d below initial lives %d", c.MaxLives, c.InitialLives)
	case c.MaxLevel < 1:
		return fmt.Errorf("invalid config: max level must be at least 1, got %d", c.MaxLevel)
	case c.MaxPlayerProjectiles < 1 || c.MaxInvaderProjectiles < 1:
		return fmt.Errorf("invalid config: projectile caps must be at least 1")
	case c.MoveSpeedUp <= 0 || c.MoveSpeedUp > 1 || c.ShootSpeedUp <= 0 || c.ShootSpeedUp > 1:
		return fmt.Errorf("invalid config: speed-up factors must be in (0, 1]")
	}
	return nil
}

// levelIntervals returns the move and shoot intervals a level starts with.
func (c Config) levelIntervals(level int) (move, shoot float64) {
	return c.MoveInterval * levelFactor(c.LevelMoveFactors, level),
		c.ShootInterval * levelFactor(c.LevelShootFactors, level)
}

func levelFactor(factors []float64, level int) float64 {
	if len(factors) == 0 || level < 1 {
		return 1
	}
	return factors[min(level, len(factors))-1]
}
