// Package client draws game snapshots to an ANSI terminal and maps terminal
// keys onto game actions.
package client

import (
	"io"
	"time"

	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/loop/config"
)

// NoticeKind selects a full-screen message that replaces the game view.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeInactive
	NoticeShutdown
)

// Notice is a host message shown instead of the game, with a countdown.
type Notice struct {
	Kind    NoticeKind
	Seconds int
}

// Options configures a Renderer.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Now          func() time.Time // Drives blinking prompts
}

// Renderer draws snapshots for a single terminal connection.
type Renderer struct {
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	termSizeFunc draw.TermSizeFunc
	now          func() time.Time

	reduced  bool
	notice   Notice
	screen   screenKey // Screen drawn last frame
	tooSmall bool
	drawn    bool // False until the first frame, forcing a full clear
}

// screenKey identifies what is on screen. Any change triggers a full clear
// so text from the previous screen does not persist.
type screenKey struct {
	state      game.State
	paused     bool
	transition bool
	notice     NoticeKind
	reduced    bool
	tooSmall   bool
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, opts Options) *Renderer {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := fitTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.FieldWidth, config.FieldHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Renderer{
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		termSizeFunc: termSizeFunc,
		now:          now,
	}
}

// Begin prepares the terminal for drawing.
func (r *Renderer) Begin() {
	draw.HideCursor(r.writer)
	draw.ClearScreen(r.writer)
}

// End clears the screen and restores the cursor.
func (r *Renderer) End() {
	draw.ClearScreen(r.writer)
	draw.ShowCursor(r.writer)
}

// SetReduced switches reduced graphics: monochrome blocks, plain shapes.
func (r *Renderer) SetReduced(on bool) {
	r.reduced = on
	r.canvas.SetMonochrome(on)
	r.chunkWriter.SetMonochrome(on)
}

// Reduced reports whether reduced graphics are on.
func (r *Renderer) Reduced() bool { return r.reduced }

// SetNotice shows a host message instead of the game. Pass a zero Notice to
// clear it.
func (r *Renderer) SetNotice(n Notice) { r.notice = n }

// Render draws one snapshot.
func (r *Renderer) Render(snap game.Snapshot) error {
	r.updateScreen()

	key := screenKey{
		state:      snap.State,
		paused:     snap.Paused,
		transition: snap.TransitionActive,
		notice:     r.notice.Kind,
		reduced:    r.reduced,
		tooSmall:   r.tooSmall,
	}
	if !r.drawn || key != r.screen {
		r.chunkWriter.WriteString("\033[H\033[2J")
		r.canvas.ForceRedraw()
		r.screen = key
		r.drawn = true
	}

	r.canvas.Clear()
	if r.showsField(snap) {
		r.drawField(snap)
	}
	if err := r.canvas.Render(r.chunkWriter); err != nil {
		r.chunkWriter.Reset()
		return err
	}
	r.canvas.RenderBorder(r.chunkWriter)
	r.drawUI(snap)

	return r.chunkWriter.Flush()
}

// showsField reports whether the play field is drawn under the text.
func (r *Renderer) showsField(snap game.Snapshot) bool {
	if r.notice.Kind != NoticeNone || r.tooSmall {
		return false
	}
	return snap.State == game.StateCountdown || snap.State == game.StatePlaying
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area.
func (r *Renderer) updateScreen() {
	termWidth, termHeight, err := r.termSizeFunc()
	if err != nil {
		return
	}
	r.tooSmall = termWidth < config.MinTermWidth || termHeight < config.MinTermHeight
	renderWidth, renderHeight, offsetCol, offsetRow := fitTermSize(termWidth, termHeight)

	if renderWidth != r.canvas.TerminalWidth() || renderHeight != r.canvas.TerminalHeight() ||
		offsetCol != r.canvas.OffsetCol() || offsetRow != r.canvas.OffsetRow() {
		r.chunkWriter.WriteString("\033[H\033[2J")
		r.canvas.ForceRedraw()
	}

	r.canvas.Resize(renderWidth, renderHeight)
	r.canvas.SetOffset(offsetCol, offsetRow)
	r.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// fitTermSize clamps terminal dimensions to the max render resolution, keeps
// the field's aspect ratio and computes the centering offset.
func fitTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = max(min(termWidth, config.MaxTermWidth), 1)
	renderHeight = max(min(termHeight, config.MaxTermHeight), 1)

	// Two sub-pixels per row.
	if byHeight := renderHeight * 2 * config.FieldWidth / config.FieldHeight; byHeight <= renderWidth {
		renderWidth = max(byHeight, 1)
	} else {
		renderHeight = max(renderWidth*config.FieldHeight/(2*config.FieldWidth), 1)
	}

	offsetCol = max((termWidth-renderWidth)/2, 0)
	offsetRow = max((termHeight-renderHeight)/2, 0)
	return
}
