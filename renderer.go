package runekit

import (
	"strconv"
	"time"
)

// Strategy is the method used to turn a frame into control sequences.
type Strategy int

const (
	FullRedraw Strategy = iota
	DeltaUpdate
	ScrollOptimized
)

func (s Strategy) String() string {
	switch s {
	case FullRedraw:
		return "full_redraw"
	case DeltaUpdate:
		return "delta_update"
	case ScrollOptimized:
		return "scroll_optimized"
	default:
		return "unknown"
	}
}

// RenderStats summarizes a single render call.
type RenderStats struct {
	Strategy     Strategy
	LinesChanged int
	BytesWritten int
	Duration     time.Duration
	TotalLines   int
}

// strategyEfficiencyHeuristic is used when TotalLines is zero and the ratio
// of changed to total lines can't be computed directly.
var strategyEfficiencyHeuristic = map[Strategy]float64{
	FullRedraw:      0.0,
	DeltaUpdate:     0.5,
	ScrollOptimized: 0.8,
}

// Efficiency reports the fraction of the frame that didn't need to be
// rewritten: 1 - linesChanged/totalLines, or a per-strategy heuristic when
// TotalLines is zero.
func (s RenderStats) Efficiency() float64 {
	if s.TotalLines > 0 {
		return 1 - float64(s.LinesChanged)/float64(s.TotalLines)
	}
	return strategyEfficiencyHeuristic[s.Strategy]
}

// CursorShape selects the terminal cursor's rendered shape, set via
// "ESC[N q". This is an optional extra beyond the spec's minimum
// hide/show/move surface, carried over from the teacher's cursor styling.
type CursorShape int

const (
	CursorDefault        CursorShape = 0
	CursorBlockBlink     CursorShape = 1
	CursorBlock          CursorShape = 2
	CursorUnderlineBlink CursorShape = 3
	CursorUnderline      CursorShape = 4
	CursorBarBlink       CursorShape = 5
	CursorBar            CursorShape = 6
)

// TerminalRenderer emits control sequences for the full/delta/scroll
// strategies and tracks the believed terminal state, cursor visibility, and
// previous frame line count needed to do so correctly.
type TerminalRenderer struct {
	writer *OutputWriter

	state             TerminalState
	cursorHidden      bool
	autowrapDisabled  bool
	previousLineCount int
	hasRendered       bool
	currentGrid       *TerminalGrid

	hideCursorDuringRender      bool
	disableAutowrapDuringRender bool
}

// NewTerminalRenderer creates a renderer writing through w.
func NewTerminalRenderer(w *OutputWriter, hideCursorDuringRender, disableAutowrapDuringRender bool) *TerminalRenderer {
	return &TerminalRenderer{
		writer:                      w,
		state:                       DefaultTerminalState(),
		hideCursorDuringRender:      hideCursorDuringRender,
		disableAutowrapDuringRender: disableAutowrapDuringRender,
	}
}

// Render emits the control sequences for grid using strategy, diffing
// against previous (or the renderer's own tracked current grid if previous
// is nil). Strategy infeasibility (no previous grid, or a dimension
// mismatch for a non-full strategy) falls back to FullRedraw without
// signaling an error, per the rendering core's error-handling policy.
func (r *TerminalRenderer) Render(grid *TerminalGrid, strategy Strategy, previous *TerminalGrid) RenderStats {
	start := time.Now()
	bytesBefore := r.writer.BytesWritten()

	if previous == nil {
		previous = r.currentGrid
	}

	if r.hideCursorDuringRender {
		r.hideCursor()
		defer r.showCursor()
	}
	if r.disableAutowrapDuringRender && !r.autowrapDisabled {
		r.setAutowrap(false)
		defer r.setAutowrap(true)
	}

	var stats RenderStats
	switch {
	case strategy == FullRedraw || previous == nil || grid == nil:
		stats = r.renderFull(grid)
	case strategy == DeltaUpdate:
		if previous.Width() != grid.Width() || previous.Height() != grid.Height() {
			stats = r.renderFull(grid)
		} else {
			stats = r.renderDelta(grid, previous)
		}
	case strategy == ScrollOptimized:
		if previous.Width() != grid.Width() || previous.Height() != grid.Height() {
			stats = r.renderFull(grid)
		} else if n, up, ok := detectScroll(grid, previous); ok {
			stats = r.renderScroll(grid, previous, n, up)
		} else {
			stats = r.renderDelta(grid, previous)
		}
	default:
		stats = r.renderFull(grid)
	}

	r.currentGrid = grid
	if grid != nil {
		r.previousLineCount = grid.Height()
	}
	r.hasRendered = true

	stats.Duration = time.Since(start)
	stats.BytesWritten = int(r.writer.BytesWritten() - bytesBefore)
	return stats
}

func (r *TerminalRenderer) renderFull(grid *TerminalGrid) RenderStats {
	var buf []byte

	if !r.hasRendered {
		buf = append(buf, "\x1b[2J"...)
		buf = append(buf, "\x1b[H"...)
	} else if r.previousLineCount > 0 {
		if r.previousLineCount > 1 {
			buf = appendMoveUp(buf, r.previousLineCount-1)
		}
		for i := 0; i < r.previousLineCount; i++ {
			buf = append(buf, "\x1b[2K"...)
			if i < r.previousLineCount-1 {
				buf = appendMoveDown(buf, 1)
			}
		}
		buf = append(buf, "\x1b[H"...)
	}

	buf = append(buf, "\x1b[0m"...)
	r.state = DefaultTerminalState()

	height := 0
	if grid != nil {
		height = grid.Height()
	}
	for row := 0; row < height; row++ {
		buf = appendMoveCursor(buf, row+1, 1)
		buf = append(buf, "\x1b[2K"...)
		buf, r.state = appendSGRRow(buf, grid.row(row), r.state)
		buf = append(buf, "\x1b[0m"...)
		r.state = DefaultTerminalState()
	}
	buf = appendMoveCursor(buf, height+1, 1)

	r.writer.Write(buf)
	r.previousLineCount = height
	return RenderStats{Strategy: FullRedraw, LinesChanged: height, TotalLines: height}
}

func (r *TerminalRenderer) renderDelta(grid, previous *TerminalGrid) RenderStats {
	var buf []byte
	changed := grid.ChangedLines(previous)

	for _, row := range changed {
		buf = appendMoveCursor(buf, row+1, 1)
		buf = append(buf, "\x1b[2K"...)
		buf = append(buf, "\x1b[G"...)
		buf, r.state = appendSGRRow(buf, grid.row(row), r.state)
		buf = append(buf, "\x1b[0m"...)
		r.state = DefaultTerminalState()
	}

	if grid.Height() < previous.Height() {
		for row := grid.Height(); row < previous.Height(); row++ {
			buf = appendMoveCursor(buf, row+1, 1)
			buf = append(buf, "\x1b[2K"...)
		}
	}

	buf = appendMoveCursor(buf, grid.Height()+1, 1)
	r.writer.Write(buf)
	return RenderStats{Strategy: DeltaUpdate, LinesChanged: len(changed), TotalLines: grid.Height()}
}

func (r *TerminalRenderer) renderScroll(grid, previous *TerminalGrid, n int, up bool) RenderStats {
	var buf []byte
	height := grid.Height()

	if up {
		buf = append(buf, "\x1b["...)
		buf = strconv.AppendInt(buf, int64(n), 10)
		buf = append(buf, 'S')
		for row := height - n; row < height; row++ {
			buf = appendMoveCursor(buf, row+1, 1)
			buf = append(buf, "\x1b[2K"...)
			buf = append(buf, "\x1b[G"...)
			buf, r.state = appendSGRRow(buf, grid.row(row), r.state)
			buf = append(buf, "\x1b[0m"...)
			r.state = DefaultTerminalState()
		}
	} else {
		buf = append(buf, "\x1b["...)
		buf = strconv.AppendInt(buf, int64(n), 10)
		buf = append(buf, 'T')
		for row := 0; row < n; row++ {
			buf = appendMoveCursor(buf, row+1, 1)
			buf = append(buf, "\x1b[2K"...)
			buf = append(buf, "\x1b[G"...)
			buf, r.state = appendSGRRow(buf, grid.row(row), r.state)
			buf = append(buf, "\x1b[0m"...)
			r.state = DefaultTerminalState()
		}
	}

	buf = appendMoveCursor(buf, height+1, 1)
	r.writer.Write(buf)
	return RenderStats{Strategy: ScrollOptimized, LinesChanged: n, TotalLines: height}
}

// Clear resets render tracking so the next Render performs a first render
// (clear screen + home), and flushes the output buffer.
func (r *TerminalRenderer) Clear() {
	r.hasRendered = false
	r.previousLineCount = 0
	r.currentGrid = nil
	r.state = DefaultTerminalState()
	r.writer.Flush()
}

// HideCursor hides the cursor unconditionally (independent of
// hideCursorDuringRender).
func (r *TerminalRenderer) HideCursor() { r.hideCursor() }

// ShowCursor shows the cursor unconditionally.
func (r *TerminalRenderer) ShowCursor() { r.showCursor() }

func (r *TerminalRenderer) hideCursor() {
	r.cursorHidden = true
	r.writer.Write([]byte("\x1b[?25l"))
}

func (r *TerminalRenderer) showCursor() {
	r.cursorHidden = false
	r.writer.Write([]byte("\x1b[?25h"))
}

// CursorHidden reports the renderer's believed cursor-visibility flag.
func (r *TerminalRenderer) CursorHidden() bool { return r.cursorHidden }

// MoveCursor moves the cursor to (row, col), both 1-based.
func (r *TerminalRenderer) MoveCursor(row, col int) {
	r.writer.Write(appendMoveCursor(nil, row, col))
}

func (r *TerminalRenderer) setAutowrap(enabled bool) {
	r.autowrapDisabled = !enabled
	if enabled {
		r.writer.Write([]byte("\x1b[?7h"))
	} else {
		r.writer.Write([]byte("\x1b[?7l"))
	}
}

// SetCursorShape changes the cursor's rendered shape.
func (r *TerminalRenderer) SetCursorShape(shape CursorShape) {
	buf := append([]byte("\x1b["), strconv.Itoa(int(shape))...)
	buf = append(buf, " q"...)
	r.writer.Write(buf)
}

// SetCursorColor sets the cursor color via OSC 12. Only RGB colors are
// representable in OSC 12; other color modes are ignored.
func (r *TerminalRenderer) SetCursorColor(c Color) {
	if c.Mode != ColorRGB {
		return
	}
	buf := []byte("\x1b]12;#")
	buf = appendHexByte(buf, c.R)
	buf = appendHexByte(buf, c.G)
	buf = appendHexByte(buf, c.B)
	buf = append(buf, '\a')
	r.writer.Write(buf)
}

func appendHexByte(buf []byte, b uint8) []byte {
	const hex = "0123456789abcdef"
	return append(buf, hex[b>>4], hex[b&0xF])
}

// Shutdown flushes any buffered output. The renderer may not be used again
// afterward.
func (r *TerminalRenderer) Shutdown() {
	r.writer.Flush()
}

func appendMoveCursor(buf []byte, row, col int) []byte {
	buf = append(buf, "\x1b["...)
	buf = strconv.AppendInt(buf, int64(row), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(col), 10)
	buf = append(buf, 'H')
	return buf
}

func appendMoveUp(buf []byte, n int) []byte {
	buf = append(buf, "\x1b["...)
	buf = strconv.AppendInt(buf, int64(n), 10)
	return append(buf, 'A')
}

func appendMoveDown(buf []byte, n int) []byte {
	buf = append(buf, "\x1b["...)
	buf = strconv.AppendInt(buf, int64(n), 10)
	return append(buf, 'B')
}

// rowsEqual reports whether two equal-length cell slices are identical.
func rowsEqual(a, b []TerminalCell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// detectScroll finds the smallest n > 0 in [1, H) such that the new grid's
// content matches the previous grid shifted up (or down) by n rows. Per the
// spec's resolution of the scroll-detection open question, the smallest
// such n is preferred, checking "scroll up" before "scroll down" at each n.
func detectScroll(grid, previous *TerminalGrid) (n int, up bool, ok bool) {
	h := grid.Height()
	if h == 0 || h != previous.Height() || grid.Width() != previous.Width() {
		return 0, false, false
	}
	for candidate := 1; candidate < h; candidate++ {
		if scrollUpMatches(grid, previous, candidate) {
			return candidate, true, true
		}
		if scrollDownMatches(grid, previous, candidate) {
			return candidate, false, true
		}
	}
	return 0, false, false
}

func scrollUpMatches(grid, previous *TerminalGrid, n int) bool {
	h := grid.Height()
	for r := 0; r < h-n; r++ {
		if !rowsEqual(grid.row(r), previous.row(r+n)) {
			return false
		}
	}
	return true
}

func scrollDownMatches(grid, previous *TerminalGrid, n int) bool {
	h := grid.Height()
	for r := n; r < h; r++ {
		if !rowsEqual(grid.row(r), previous.row(r-n)) {
			return false
		}
	}
	return true
}
