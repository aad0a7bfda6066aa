package draw

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Color is a palette entry. ColorNone marks an empty pixel.
type Color uint8

const (
	ColorNone Color = iota
	ColorWhite
	ColorGreen
	ColorRed
	ColorBrown
	ColorGray
	ColorYellow
	ColorOrange
	ColorCyan
)

// ansi256 maps palette entries to xterm-256 colour codes.
var ansi256 = [...]int{
	ColorNone:   0,
	ColorWhite:  255,
	ColorGreen:  46,
	ColorRed:    196,
	ColorBrown:  130,
	ColorGray:   240,
	ColorYellow: 226,
	ColorOrange: 208,
	ColorCyan:   51,
}

// ANSI returns the xterm-256 code of c.
func (c Color) ANSI() int {
	if int(c) < len(ansi256) {
		return ansi256[c]
	}
	return ansi256[ColorWhite]
}

// Canvas is a colour drawing buffer with 2x vertical resolution using
// half-block characters. Supports scaling from logical coordinates to
// actual terminal pixels.
type Canvas struct {
	termWidth      int     // Actual terminal columns
	termHeight     int     // Actual terminal rows
	subPixelHeight int     // termHeight * 2
	pixels         []Color // Flat slice: [y * termWidth + x]
	prev           []Color // Pixels as last rendered, for differential output
	prevValid      bool    // False until the first full render, or after ForceRedraw

	// Scaling from logical to pixel coordinates
	logicalWidth  float64 // Target/logical width
	logicalHeight float64 // Target/logical height
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	// Monochrome drops colour escapes (reduced graphics).
	monochrome bool

	renderBuf strings.Builder // Buffer for batching render output
	numBuf    [20]byte
}

// NewCanvas creates a canvas for the given terminal dimensions.
// No scaling is applied (1:1 mapping).
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by game objects.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{logicalWidth: logicalWidth, logicalHeight: logicalHeight}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 1)
	termHeight = max(termHeight, 1)
	subPixelHeight := termHeight * 2

	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]Color, subPixelHeight*termWidth)
		c.prev = make([]Color, subPixelHeight*termWidth)
		c.prevValid = false
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
	}

	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int { return c.offsetCol }

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// SetMonochrome switches colour output off or on.
// Changing the mode forces a full redraw.
func (c *Canvas) SetMonochrome(on bool) {
	if c.monochrome != on {
		c.monochrome = on
		c.prevValid = false
	}
}

// Monochrome reports whether colour output is off.
func (c *Canvas) Monochrome() bool { return c.monochrome }

// colorDirty never matches a real pixel, so cells holding it are redrawn.
const colorDirty Color = 255

// ForceRedraw makes the next Render repaint every non-empty cell. Call it
// after the terminal has been cleared.
func (c *Canvas) ForceRedraw() {
	c.prevValid = false
}

// MarkTextDirty marks cells covered by a text overlay so the next Render
// repaints them. col and row are 1-based canvas positions.
func (c *Canvas) MarkTextDirty(col, row, width int) {
	r := row - 1
	if r < 0 || r >= c.termHeight {
		return
	}
	top := c.prev[r*2*c.termWidth : (r*2+1)*c.termWidth]
	bottom := c.prev[(r*2+1)*c.termWidth : (r*2+2)*c.termWidth]
	for x := max(col-1, 0); x < min(col-1+width, c.termWidth); x++ {
		top[x] = colorDirty
		bottom[x] = colorDirty
	}
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, col Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = col
	}
}

// Pixel returns the colour at terminal pixel coordinates.
func (c *Canvas) Pixel(x, y int) Color {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return ColorNone
	}
	return c.pixels[y*c.termWidth+x]
}

// Set sets a pixel at logical coordinates (applies scaling).
func (c *Canvas) Set(x, y float64, col Color) {
	c.setPixel(int(math.Floor(x*c.scaleX)), int(math.Floor(y*c.scaleY)), col)
}

// FillRect fills a logical rectangle. Every rectangle covers at least one
// pixel so small objects (shots) never vanish at low resolutions.
func (c *Canvas) FillRect(x, y, w, h float64, col Color) {
	if math.IsNaN(x+y+w+h) || w <= 0 || h <= 0 {
		return
	}
	x0 := int(math.Floor(x * c.scaleX))
	y0 := int(math.Floor(y * c.scaleY))
	x1 := max(x0+1, int(math.Ceil((x+w)*c.scaleX)))
	y1 := max(y0+1, int(math.Ceil((y+h)*c.scaleY)))

	x0, x1 = max(x0, 0), min(x1, c.termWidth)
	y0, y1 = max(y0, 0), min(y1, c.subPixelHeight)
	for py := y0; py < y1; py++ {
		row := c.pixels[py*c.termWidth : (py+1)*c.termWidth]
		for px := x0; px < x1; px++ {
			row[px] = col
		}
	}
}

// Render outputs the canvas to the writer using half-block characters.
// The first render after a resize or ForceRedraw skips empty cells, so the
// screen must be cleared beforehand. Later renders only emit changed cells.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 8)

	var fg, bg Color
	styled := false
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth
		lastCol := -2

		for col := 0; col < c.termWidth; col++ {
			top := c.pixels[topOffset+col]
			bottom := c.pixels[bottomOffset+col]
			if c.prevValid && top == c.prev[topOffset+col] && bottom == c.prev[bottomOffset+col] {
				continue
			}
			empty := top == ColorNone && bottom == ColorNone
			if empty && !c.prevValid {
				continue
			}

			if col != lastCol+1 {
				c.moveCursor(col+1+c.offsetCol, row+1+c.offsetRow)
			}
			lastCol = col

			if empty {
				if styled && bg != ColorNone {
					c.renderBuf.WriteString("\033[0m")
					styled = false
				}
				c.renderBuf.WriteByte(' ')
				continue
			}

			ch, wantFg, wantBg := cell(top, bottom)
			if c.monochrome && top != ColorNone && bottom != ColorNone {
				ch = BlockFull
			}
			if !c.monochrome && (!styled || wantFg != fg || wantBg != bg) {
				c.style(wantFg, wantBg)
				fg, bg, styled = wantFg, wantBg, true
			}
			c.renderBuf.WriteRune(ch)
		}
	}
	if styled {
		c.renderBuf.WriteString("\033[0m")
	}
	copy(c.prev, c.pixels)
	c.prevValid = true

	if c.renderBuf.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(w, c.renderBuf.String())
	return err
}

// cell picks the glyph and colours for one terminal cell.
func cell(top, bottom Color) (ch rune, fg, bg Color) {
	switch {
	case bottom == ColorNone:
		return BlockUpperHalf, top, ColorNone
	case top == ColorNone:
		return BlockLowerHalf, bottom, ColorNone
	case top == bottom:
		return BlockFull, top, ColorNone
	}
	return BlockUpperHalf, top, bottom
}

func (c *Canvas) moveCursor(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

func (c *Canvas) style(fg, bg Color) {
	c.renderBuf.WriteString("\033[0;38;5;")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(fg.ANSI()), 10))
	if bg != ColorNone {
		c.renderBuf.WriteString(";48;5;")
		c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(bg.ANSI()), 10))
	}
	c.renderBuf.WriteByte('m')
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
// Draws horizontal borders when there is vertical offset, vertical borders
// when there is horizontal offset, and corners when both are present.
func (c *Canvas) RenderBorder(cw *ChunkWriter) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	// Border positions (1-based terminal coordinates, before the writer offset)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	line := strings.Repeat("─", c.termWidth)

	if hasV {
		if hasH {
			cw.WriteRawAt(left, top, "┌"+line+"┐")
			cw.WriteRawAt(left, bottom, "└"+line+"┘")
		} else {
			cw.WriteRawAt(c.offsetCol+1, top, line)
			cw.WriteRawAt(c.offsetCol+1, bottom, line)
		}
	}

	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			cw.WriteRawAt(left, row, "│")
			cw.WriteRawAt(right, row, "│")
		}
	}
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int { return c.termWidth }

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int { return c.termHeight }

// LogicalToTerminal converts logical coordinates to 1-based canvas position (col, row).
// This is useful for placing text overlays at positions matching canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Floor(x * c.scaleX))
	py := int(math.Floor(y * c.scaleY))
	return px + 1, py/2 + 1
}
