package web

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/object"
)

// ErrEmptySnapshot is returned when a snapshot has no field to draw.
var ErrEmptySnapshot = errors.New("snapshot has no field")

var (
	backgroundColor = color.RGBA{8, 8, 20, 255}
	hudColor        = color.RGBA{230, 230, 230, 255}
)

var spriteColors = map[object.Color]color.RGBA{
	object.ColorWhite:  {240, 240, 240, 255},
	object.ColorGreen:  {60, 220, 60, 255},
	object.ColorRed:    {230, 50, 50, 255},
	object.ColorBrown:  {150, 90, 40, 255},
	object.ColorGray:   {120, 120, 120, 255},
	object.ColorYellow: {240, 220, 40, 255},
	object.ColorOrange: {250, 140, 30, 255},
	object.ColorCyan:   {60, 220, 230, 255},
}

func spriteColor(c object.Color) color.RGBA {
	if rgba, ok := spriteColors[c]; ok {
		return rgba
	}
	return hudColor
}

// EncodeFrame draws snap as a PNG at the given scale.
func EncodeFrame(w io.Writer, snap game.Snapshot, scale float64) error {
	if snap.Width <= 0 || snap.Height <= 0 {
		return ErrEmptySnapshot
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		scale = 1
	}

	dc := gg.NewContext(int(snap.Width*scale), int(snap.Height*scale))
	dc.SetColor(backgroundColor)
	dc.Clear()
	dc.Scale(scale, scale)

	lineColor := spriteColors[object.ColorWhite]
	if snap.TopLineFlash {
		lineColor = spriteColors[object.ColorRed]
	}
	dc.SetColor(lineColor)
	dc.DrawRectangle(0, snap.TopLineY, snap.Width, snap.TopLineHeight)
	dc.Fill()

	for _, s := range snap.Sprites {
		dc.SetColor(spriteColor(s.Color))
		dc.DrawRectangle(s.X, s.Y, s.W, s.H)
		dc.Fill()
	}

	dc.SetColor(hudColor)
	hud := fmt.Sprintf("%s  Level %d/%d  Lives %d  Score %d  Killed %d/%d",
		snap.Name, snap.Level, snap.MaxLevel, snap.Lives, snap.Score, snap.Killed, snap.Total)
	dc.DrawString(hud, 10, 24)
	if status := frameStatus(snap); status != "" {
		dc.DrawStringAnchored(status, snap.Width/2, snap.Height/2, 0.5, 0.5)
	}

	return dc.EncodePNG(w)
}

// frameStatus is the banner shown over non-playing states.
func frameStatus(snap game.Snapshot) string {
	switch {
	case snap.State == game.StateIdle:
		return "WAITING TO START"
	case snap.State == game.StateCountdown:
		return fmt.Sprintf("GET READY %d", snap.Countdown)
	case snap.State == game.StateGameOver:
		return fmt.Sprintf("GAME OVER - %d POINTS", snap.Score)
	case snap.State == game.StateWon:
		return fmt.Sprintf("VICTORY - %d POINTS", snap.Score)
	case snap.Paused:
		return "PAUSED"
	case snap.TransitionActive:
		return fmt.Sprintf("LEVEL %d CLEARED", snap.Level)
	}
	return ""
}
