package physics

import "math"

// SpatialGrid is a uniform grid for broad-phase collision detection over a
// bounded play field. Items are inserted by bounding box and index, and a
// query visits every item whose cells overlap the query box.
//
// The grid holds static geometry well (barrier bricks). Items spanning
// several cells are reported once per query.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64 // 1 / cellSize (precomputed to avoid division)
	cols        int
	rows        int
	cells       []gridCell

	// Per-item query stamps used to report each index once per query.
	seen  []uint32
	stamp uint32
}

// gridCell stores the indices of items whose bounds touch the cell.
// The slice is reused between rebuilds (reset to [:0]) to avoid allocations.
type gridCell struct {
	items []int
}

// NewSpatialGrid creates a spatial grid covering a width x height field.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make([]gridCell, cols*rows),
	}
}

// Clear removes all items from the grid without deallocating cell memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i].items = g.cells[i].items[:0]
	}
	g.seen = g.seen[:0]
}

// InsertRect adds an item (identified by index) to every cell its bounds cover.
// Invalid rectangles are ignored.
func (g *SpatialGrid) InsertRect(r Rect, index int) {
	if !r.Valid() || index < 0 {
		return
	}
	if index >= len(g.seen) {
		g.seen = append(g.seen, make([]uint32, index+1-len(g.seen))...)
	}

	c0, r0 := g.posToCell(r.X, r.Y)
	c1, r1 := g.posToCell(r.Right(), r.Bottom())
	for row := r0; row <= r1; row++ {
		rowOffset := row * g.cols
		for col := c0; col <= c1; col++ {
			cell := &g.cells[rowOffset+col]
			cell.items = append(cell.items, index)
		}
	}
}

// QueryRect calls fn for each item index whose cells overlap r.
// Candidates still need an exact Intersects check.
// If fn returns true, iteration stops early (useful for "find first" queries).
func (g *SpatialGrid) QueryRect(r Rect, fn func(index int) bool) {
	if !r.Valid() {
		return
	}

	g.stamp++
	if g.stamp == 0 {
		// Wrapped around: old stamps could collide with new ones.
		clear(g.seen)
		g.stamp = 1
	}

	c0, r0 := g.posToCell(r.X, r.Y)
	c1, r1 := g.posToCell(r.Right(), r.Bottom())
	for row := r0; row <= r1; row++ {
		rowOffset := row * g.cols
		for col := c0; col <= c1; col++ {
			for _, itemIdx := range g.cells[rowOffset+col].items {
				if g.seen[itemIdx] == g.stamp {
					continue
				}
				g.seen[itemIdx] = g.stamp
				if fn(itemIdx) {
					return
				}
			}
		}
	}
}

// posToCell converts field coordinates to grid cell coordinates.
// Clamps to valid range so boxes partly outside the field still query edge cells.
func (g *SpatialGrid) posToCell(x, y float64) (col, row int) {
	col = int(math.Floor(x * g.invCellSize))
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}

	row = int(math.Floor(y * g.invCellSize))
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}
