package client

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/object"
	"github.com/tomz197/invaders/internal/scores"
)

// paletteFor maps a render hint onto the terminal palette.
func paletteFor(c object.Color) draw.Color {
	switch c {
	case object.ColorWhite:
		return draw.ColorWhite
	case object.ColorGreen:
		return draw.ColorGreen
	case object.ColorRed:
		return draw.ColorRed
	case object.ColorBrown:
		return draw.ColorBrown
	case object.ColorGray:
		return draw.ColorGray
	case object.ColorYellow:
		return draw.ColorYellow
	case object.ColorOrange:
		return draw.ColorOrange
	case object.ColorCyan:
		return draw.ColorCyan
	}
	return draw.ColorNone
}

// drawField paints the top line and every sprite onto the canvas.
func (r *Renderer) drawField(snap game.Snapshot) {
	lineColor := draw.ColorWhite
	if snap.TopLineFlash {
		lineColor = draw.ColorRed
	}
	r.canvas.FillRect(0, snap.TopLineY, snap.Width, snap.TopLineHeight, lineColor)

	for _, s := range snap.Sprites {
		col := paletteFor(s.Color)
		switch {
		case r.reduced:
			r.canvas.FillRect(s.X, s.Y, s.W, s.H, col)
		case s.Kind == object.KindInvader:
			r.drawInvader(s, col)
		case s.Kind == object.KindPlayer:
			r.drawPlayer(s, col)
		default:
			r.canvas.FillRect(s.X, s.Y, s.W, s.H, col)
		}
	}
}

// drawInvader draws a two-frame invader: antennae, body and legs that
// spread or tuck depending on the animation frame.
func (r *Renderer) drawInvader(s game.Sprite, col draw.Color) {
	c := r.canvas
	c.FillRect(s.X+s.W*0.25, s.Y, s.W*0.125, s.H*0.2, col)
	c.FillRect(s.X+s.W*0.625, s.Y, s.W*0.125, s.H*0.2, col)
	c.FillRect(s.X+s.W*0.125, s.Y+s.H*0.2, s.W*0.75, s.H*0.45, col)

	legY, legH := s.Y+s.H*0.65, s.H*0.3
	if s.Frame == 0 {
		c.FillRect(s.X, legY, s.W*0.25, legH, col)
		c.FillRect(s.X+s.W*0.75, legY, s.W*0.25, legH, col)
	} else {
		c.FillRect(s.X+s.W*0.2, legY, s.W*0.2, legH, col)
		c.FillRect(s.X+s.W*0.6, legY, s.W*0.2, legH, col)
	}
}

// drawPlayer draws the cannon: a wide base with a turret on top.
func (r *Renderer) drawPlayer(s game.Sprite, col draw.Color) {
	r.canvas.FillRect(s.X, s.Y+s.H*0.4, s.W, s.H*0.6, col)
	r.canvas.FillRect(s.X+s.W*0.4, s.Y, s.W*0.2, s.H*0.4, col)
}

// drawUI draws the text overlay for the current screen.
func (r *Renderer) drawUI(snap game.Snapshot) {
	termWidth := r.canvas.TerminalWidth()
	termHeight := r.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if r.tooSmall {
		r.drawTooSmall(centerX, centerY)
		return
	}

	switch r.notice.Kind {
	case NoticeShutdown:
		r.drawShutdownScreen(centerX, centerY)
		return
	case NoticeInactive:
		r.drawInactivityScreen(centerX, centerY)
		return
	}

	// Overlays on the field centre on the area below the top line.
	fieldX, fieldY := r.canvas.LogicalToTerminal(snap.Width/2, (snap.TopLineY+snap.Height)/2)

	switch snap.State {
	case game.StateIdle:
		r.drawStartScreen(centerX, centerY, snap)
	case game.StateCountdown:
		r.drawHUD(termWidth, snap)
		r.drawCountdown(fieldX, fieldY, snap)
	case game.StatePlaying:
		r.drawHUD(termWidth, snap)
		switch {
		case snap.Paused:
			r.drawPauseOverlay(fieldX, fieldY)
		case snap.TransitionActive:
			r.drawTransition(fieldX, fieldY, snap)
		}
	case game.StateGameOver, game.StateWon:
		r.drawEndScreen(centerX, centerY, snap)
	}
}

// text writes s at a canvas position and marks the covered cells so the
// canvas repaints them next frame.
func (r *Renderer) text(col, row int, c draw.Color, s string) {
	col = max(col, 1)
	r.chunkWriter.WriteStyled(col, row, c, s)
	r.canvas.MarkTextDirty(col, row, utf8.RuneCountInString(s))
}

// centered writes s centred on centerX.
func (r *Renderer) centered(centerX, row int, c draw.Color, s string) {
	r.text(centerX-utf8.RuneCountInString(s)/2, row, c, s)
}

func (r *Renderer) blinkOn() bool {
	return r.now().UnixMilli()/config.PromptBlinkMs%2 == 0
}

// drawHUD draws the status line.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen (the terminal is not cleared every frame).
func (r *Renderer) drawHUD(termWidth int, snap game.Snapshot) {
	left := fmt.Sprintf("Lives: %-2d Shots: %-5d", snap.Lives, snap.ShotsFired)
	r.text(2, 1, draw.ColorGreen, left)

	level := fmt.Sprintf("Level %d/%d", snap.Level, snap.MaxLevel)
	r.centered(termWidth/2, 1, draw.ColorCyan, level)

	right := fmt.Sprintf("Killed: %3d/%-3d Score: %-6d", snap.Killed, snap.Total, snap.Score)
	r.text(termWidth-utf8.RuneCountInString(right), 1, draw.ColorYellow, right)
}

var titleArt = []string{
	` ___ _  ___   ___   ___  ___ ___  ___ `,
	`|_ _| \| \ \ / /_\ |   \| __| _ \/ __|`,
	" | || .` |\\ V / _ \\| |) | _||   /\\__ \\",
	`|___|_|\_| \_/_/ \_\___/|___|_|_\|___/`,
}

var gameOverArt = []string{
	`  ___   _   __  __ ___    _____   _____ ___ `,
	` / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \`,
	`| (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   /`,
	` \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\`,
}

var victoryArt = []string{
	`__   _____ ___ _____ ___  _____   __`,
	`\ \ / /_ _/ __|_   _/ _ \| _ \ \ / /`,
	` \ V / | | (__  | || (_) |   /\ V / `,
	`  \_/ |___\___| |_| \___/|_|_\ |_|  `,
}

// drawArt writes lines centred, starting at row, and returns the next free row.
func (r *Renderer) drawArt(centerX, row int, c draw.Color, lines []string) int {
	width := 0
	for _, line := range lines {
		width = max(width, utf8.RuneCountInString(line))
	}
	for i, line := range lines {
		r.text(centerX-width/2, row+i, c, line)
	}
	return row + len(lines)
}

// drawStartScreen draws the title, control table, prompt and high scores.
func (r *Renderer) drawStartScreen(centerX, centerY int, snap game.Snapshot) {
	row := max(centerY-12, 1)
	row = r.drawArt(centerX, row, draw.ColorGreen, titleArt) + 1

	r.centered(centerX, row, draw.ColorWhite, "~ Space Invaders over SSH ~")
	row += 2

	r.centered(centerX, row, draw.ColorCyan, "Controls")
	width := 0
	for _, line := range controlLines {
		width = max(width, len(line))
	}
	for i, line := range controlLines {
		r.text(centerX-width/2, row+1+i, draw.ColorWhite, line)
	}
	row += len(controlLines) + 2

	if r.blinkOn() {
		r.centered(centerX, row, draw.ColorYellow, ">>  Press SPACE to Start  <<")
	}
	row += 2

	r.drawHighScores(centerX, row, snap.HighScores, snap.Name)
}

// drawHighScores draws the top-N table starting at row.
func (r *Renderer) drawHighScores(centerX, row int, entries []scores.Entry, name string) {
	if row > r.canvas.TerminalHeight() {
		return
	}
	r.centered(centerX, row, draw.ColorCyan, "High Scores")
	if len(entries) == 0 {
		r.centered(centerX, row+1, draw.ColorGray, "No high scores yet")
		return
	}
	for i, e := range entries {
		line := fmt.Sprintf("%d. %-16s %6d  %s", e.Rank, e.Name, e.Score, e.Timestamp.Format("2006-01-02"))
		c := draw.ColorWhite
		if e.Name == name {
			c = draw.ColorYellow
		}
		r.centered(centerX, row+1+i, c, line)
	}
}

// drawCountdown draws the number of steps left before play starts.
func (r *Renderer) drawCountdown(centerX, centerY int, snap game.Snapshot) {
	r.centered(centerX, centerY-1, draw.ColorWhite, "Get ready!")
	r.centered(centerX, centerY+1, draw.ColorYellow, fmt.Sprintf("%d", snap.Countdown))
}

// drawPauseOverlay draws the pause box over the frozen field.
func (r *Renderer) drawPauseOverlay(centerX, centerY int) {
	r.centered(centerX, centerY-1, draw.ColorYellow, "  PAUSED  ")
	r.centered(centerX, centerY+1, draw.ColorWhite, " Press ESC to resume ")
}

// drawTransition shows the cleared level and a progress bar to the next one.
func (r *Renderer) drawTransition(centerX, centerY int, snap game.Snapshot) {
	r.centered(centerX, centerY-2, draw.ColorGreen, fmt.Sprintf("LEVEL %d CLEARED", snap.Level))
	r.centered(centerX, centerY, draw.ColorWhite, fmt.Sprintf("Get ready for level %d", snap.Level+1))

	const barWidth = 20
	filled := int(snap.TransitionProgress * barWidth)
	filled = min(max(filled, 0), barWidth)
	bar := "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
	r.centered(centerX, centerY+2, draw.ColorCyan, bar)
}

// drawEndScreen draws the final report and the high-score table.
func (r *Renderer) drawEndScreen(centerX, centerY int, snap game.Snapshot) {
	art, c := gameOverArt, draw.ColorRed
	if snap.State == game.StateWon {
		art, c = victoryArt, draw.ColorGreen
	}
	row := max(centerY-11, 1)
	row = r.drawArt(centerX, row, c, art) + 1

	if rep := snap.Report; rep != nil {
		lines := []string{
			fmt.Sprintf("Invaders eliminated  %4d  %+6d", rep.Eliminated, rep.EliminatedPoints),
			fmt.Sprintf("Missed shots         %4d  %+6d", rep.Missed, rep.MissedPoints),
			fmt.Sprintf("Lives lost           %4d  %+6d", rep.LivesLost, rep.LivesLostPoints),
			fmt.Sprintf("Total score                %6d", rep.Total),
		}
		width := len(lines[0])
		for i, line := range lines {
			r.text(centerX-width/2, row+i, draw.ColorWhite, line)
		}
		row += len(lines) + 1
	}

	r.drawHighScores(centerX, row, snap.HighScores, snap.Name)
	row += len(snap.HighScores) + 3

	if r.blinkOn() {
		r.centered(centerX, row, draw.ColorYellow, ">>  Press ENTER to Play Again  <<")
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (r *Renderer) drawInactivityScreen(centerX, centerY int) {
	r.centered(centerX, centerY-2, draw.ColorYellow, "INACTIVITY WARNING")
	msg := fmt.Sprintf("You will be disconnected in %d seconds.", r.notice.Seconds)
	r.centered(centerX, centerY, draw.ColorWhite, msg)
	r.centered(centerX, centerY+2, draw.ColorWhite, "Press any key to continue")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (r *Renderer) drawShutdownScreen(centerX, centerY int) {
	r.centered(centerX, centerY-3, draw.ColorRed, "SERVER SHUTTING DOWN")
	r.centered(centerX, centerY-1, draw.ColorWhite, "The server is restarting for maintenance.")
	r.centered(centerX, centerY, draw.ColorWhite, "Please reconnect in a moment.")
	r.centered(centerX, centerY+2, draw.ColorWhite, fmt.Sprintf("Disconnecting in %d seconds...", r.notice.Seconds))
	r.centered(centerX, centerY+4, draw.ColorGray, "Press Q to disconnect now")
}

// drawTooSmall asks for a bigger terminal.
func (r *Renderer) drawTooSmall(centerX, centerY int) {
	r.centered(centerX, centerY-1, draw.ColorYellow, "Terminal too small")
	r.centered(centerX, centerY+1, draw.ColorWhite,
		fmt.Sprintf("Need at least %dx%d", config.MinTermWidth, config.MinTermHeight))
}
