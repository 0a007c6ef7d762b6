package runekit

import (
	"hash/fnv"

	"github.com/rivo/uniseg"
)

// Rect is an inclusive dirty rectangle within a grid, expressed in rows and
// columns. Height is always 1 in the current implementation: the reconciler
// only ever needs line-granularity dirty tracking, so DirtyRectangles
// reports one full-width rectangle per changed row rather than attempting
// sub-row column diffing.
type Rect struct {
	Row, Col, Width, Height int
}

// TerminalGrid is a fixed-size, row-major matrix of cells with a maintained
// per-row hash used to answer ChangedLines in O(H) instead of O(H*W).
type TerminalGrid struct {
	width, height int
	cells         []TerminalCell
	rowHashes     []uint64
}

// NewGrid creates a width x height grid filled with empty cells.
func NewGrid(width, height int) *TerminalGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &TerminalGrid{
		width:     width,
		height:    height,
		cells:     make([]TerminalCell, width*height),
		rowHashes: make([]uint64, height),
	}
	empty := EmptyCell()
	for i := range g.cells {
		g.cells[i] = empty
	}
	for y := 0; y < height; y++ {
		g.rowHashes[y] = g.hashRow(g.row(y))
	}
	return g
}

// Width returns the grid's column count.
func (g *TerminalGrid) Width() int { return g.width }

// Height returns the grid's row count.
func (g *TerminalGrid) Height() int { return g.height }

func (g *TerminalGrid) inBounds(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

func (g *TerminalGrid) index(row, col int) int { return row*g.width + col }

// CellAt returns the cell at (row, col), or the zero cell and false if out
// of bounds.
func (g *TerminalGrid) CellAt(row, col int) (TerminalCell, bool) {
	if !g.inBounds(row, col) {
		return TerminalCell{}, false
	}
	return g.cells[g.index(row, col)], true
}

// SetCell sets the cell at (row, col) and recomputes that row's hash.
// Out-of-bounds coordinates are silently ignored.
func (g *TerminalGrid) SetCell(row, col int, c TerminalCell) {
	if !g.inBounds(row, col) {
		return
	}
	g.cells[g.index(row, col)] = c
	g.rowHashes[row] = g.hashRow(g.row(row))
}

// row returns the raw cell slice backing a row (no copy).
func (g *TerminalGrid) row(y int) []TerminalCell {
	start := y * g.width
	return g.cells[start : start+g.width]
}

// GetRow returns a copy of the cells in row y, or nil if out of bounds.
func (g *TerminalGrid) GetRow(y int) []TerminalCell {
	if y < 0 || y >= g.height {
		return nil
	}
	out := make([]TerminalCell, g.width)
	copy(out, g.row(y))
	return out
}

// SetRow replaces row y's contents. Shorter sequences are padded with empty
// cells; longer sequences are truncated to the grid width. The row's hash
// is recomputed atomically with the write.
func (g *TerminalGrid) SetRow(y int, cells []TerminalCell) {
	if y < 0 || y >= g.height {
		return
	}
	dst := g.row(y)
	empty := EmptyCell()
	for x := 0; x < g.width; x++ {
		if x < len(cells) {
			dst[x] = cells[x]
		} else {
			dst[x] = empty
		}
	}
	g.rowHashes[y] = g.hashRow(dst)
}

// FillRegion fills the rectangle starting at (row, col) with width w and
// height h using c, clamped to the grid bounds.
func (g *TerminalGrid) FillRegion(row, col, w, h int, c TerminalCell) {
	for dy := 0; dy < h; dy++ {
		y := row + dy
		if y < 0 || y >= g.height {
			continue
		}
		changed := false
		dst := g.row(y)
		for dx := 0; dx < w; dx++ {
			x := col + dx
			if x < 0 || x >= g.width {
				continue
			}
			dst[x] = c
			changed = true
		}
		if changed {
			g.rowHashes[y] = g.hashRow(dst)
		}
	}
}

// Clear resets every cell to an empty cell.
func (g *TerminalGrid) Clear() {
	empty := EmptyCell()
	for i := range g.cells {
		g.cells[i] = empty
	}
	for y := 0; y < g.height; y++ {
		g.rowHashes[y] = g.hashRow(g.row(y))
	}
}

func (g *TerminalGrid) hashRow(row []TerminalCell) uint64 {
	h := fnv.New64a()
	var scratch [16]byte
	for _, c := range row {
		h.Write([]byte(c.Content))
		scratch[0] = byte(c.Foreground.Mode)
		scratch[1] = c.Foreground.R
		scratch[2] = c.Foreground.G
		scratch[3] = c.Foreground.B
		scratch[4] = c.Foreground.Index
		scratch[5] = byte(c.Background.Mode)
		scratch[6] = c.Background.R
		scratch[7] = c.Background.G
		scratch[8] = c.Background.B
		scratch[9] = c.Background.Index
		scratch[10] = byte(c.Attributes)
		scratch[11] = byte(c.Width)
		h.Write(scratch[:12])
	}
	return h.Sum64()
}

// ChangedLines compares g against other and returns the row indices whose
// content differs. When both grids share dimensions this is a hash
// comparison (O(H)); otherwise rows are compared up to the shared
// dimensions and any extra rows in either grid are reported as changed.
func (g *TerminalGrid) ChangedLines(other *TerminalGrid) []int {
	if other == nil {
		out := make([]int, g.height)
		for i := range out {
			out[i] = i
		}
		return out
	}

	var changed []int
	if g.width == other.width && g.height == other.height {
		for y := 0; y < g.height; y++ {
			if g.rowHashes[y] != other.rowHashes[y] {
				changed = append(changed, y)
			}
		}
		return changed
	}

	minW := min(g.width, other.width)
	minH := min(g.height, other.height)
	maxH := max(g.height, other.height)

	for y := 0; y < minH; y++ {
		a, b := g.row(y)[:minW], other.row(y)[:minW]
		equal := true
		for x := 0; x < minW; x++ {
			if a[x] != b[x] {
				equal = false
				break
			}
		}
		if !equal {
			changed = append(changed, y)
		}
	}
	for y := minH; y < maxH; y++ {
		changed = append(changed, y)
	}
	return changed
}

// DirtyRectangles returns one full-width rectangle per row reported by
// ChangedLines.
func (g *TerminalGrid) DirtyRectangles(other *TerminalGrid) []Rect {
	lines := g.ChangedLines(other)
	rects := make([]Rect, len(lines))
	for i, y := range lines {
		rects[i] = Rect{Row: y, Col: 0, Width: g.width, Height: 1}
	}
	return rects
}

// Lines renders the grid back to plain strings, one per row. Empty cells
// come out as spaces (trailing ones are not trimmed) and continuation
// cells are skipped. Used by the Grid -> lines -> Grid round trip and by
// diagnostics.
func (g *TerminalGrid) Lines() []string {
	lines := make([]string, g.height)
	for y := 0; y < g.height; y++ {
		var b []byte
		for _, c := range g.row(y) {
			if c.Content == "" {
				continue // continuation half of a wide glyph
			}
			b = append(b, c.Content...)
		}
		lines[y] = string(b)
	}
	return lines
}

// GridFromLines builds a width x height grid from plain text lines, one
// grapheme cluster per cell. Short rows are padded with empty cells; rows
// that overflow width are truncated. A wide glyph (width 2) that would
// cross the right edge is dropped rather than split.
func GridFromLines(lines []string, width, height int) *TerminalGrid {
	g := NewGrid(width, height)
	style := DefaultStyle()
	for y := 0; y < height && y < len(lines); y++ {
		g.SetRow(y, cellsFromLine(lines[y], style, width))
	}
	return g
}

// cellsFromLine splits line into one cell per grapheme cluster (plus a
// continuation cell for each wide glyph), stopping at width columns. A wide
// glyph that would cross the right edge is dropped rather than split.
func cellsFromLine(line string, style Style, width int) []TerminalCell {
	row := make([]TerminalCell, 0, width)
	col := 0
	gr := uniseg.NewGraphemes(line)
	for gr.Next() && col < width {
		cluster := gr.Str()
		w := displayWidth(cluster)
		if col+w > width {
			break
		}
		row = append(row, NewCell(cluster, style))
		if w == 2 {
			row = append(row, continuationCell(style))
		}
		col += w
	}
	return row
}
