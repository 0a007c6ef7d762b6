package runekit

import (
	"io"
	"sync"
)

// FrameBuffer is the public front door to the rendering pipeline: it owns
// the alternate screen buffer, console capture, the log lane printed above
// the live region, and the hybrid reconciler, and composes them into a
// single combined grid on every render.
type FrameBuffer struct {
	mu sync.Mutex

	cfg        Config
	width      int
	writer     *OutputWriter
	renderer   *TerminalRenderer
	reconciler *HybridReconciler
	altScreen  *AlternateScreenBuffer
	capture    *ConsoleCapture
	pool       *GridPool

	started bool
}

// NewFrameBuffer creates a FrameBuffer writing to sink at a fixed terminal
// width. Height is supplied per call to RenderFrame via the live grid.
func NewFrameBuffer(sink io.Writer, width int, cfg Config) *FrameBuffer {
	cfg = cfg.normalized()
	w := NewOutputWriter(sink, cfg.WriteBufferSize)
	renderer := NewTerminalRenderer(w, cfg.HideCursorDuringRender, cfg.DisableAutowrapDuringRender)
	reconciler := NewHybridReconciler(renderer, cfg.MaxFrameRate)
	reconciler.Configure(cfg.RenderMode, cfg.MaxLinesForDiff, cfg.MinEfficiencyThreshold)

	fb := &FrameBuffer{
		cfg:        cfg,
		width:      width,
		writer:     w,
		renderer:   renderer,
		reconciler: reconciler,
		altScreen:  NewAlternateScreenBuffer(w),
	}
	reconciler.SetReleaseFunc(fb.releaseCombined)
	return fb
}

// releaseCombined returns a combined grid the reconciler has proven it will
// never reference again to the pool it was drawn from. GridPool.Put
// discards grids of the wrong size, so this stays safe across a pool swap
// triggered by SetWidth or a log lane line-count change between when the
// grid was built and when it is released.
func (f *FrameBuffer) releaseCombined(g *TerminalGrid) {
	f.mu.Lock()
	pool := f.pool
	f.mu.Unlock()
	if pool != nil {
		pool.Put(g)
	}
}

// ensureStarted enters the alternate screen (if configured) and begins
// console capture (if configured), the first time any render call reaches
// it. Per §7's error policy, a capture start failure is swallowed: it
// leaves f.capture nil and the frame renders without a log lane, rather
// than surfacing an error to the caller. Must be called with f.mu held.
func (f *FrameBuffer) ensureStarted() {
	if f.started {
		return
	}
	f.started = true

	if f.cfg.AltScreen {
		f.altScreen.Enter()
	}
	if f.cfg.ConsoleCapture {
		capture := NewConsoleCapture(f.cfg.ConsoleCaptureBufferSize, nil)
		if err := capture.StartCapture(); err == nil {
			f.capture = capture
			if f.cfg.Debug {
				f.reconciler.SetDebugf(f.capture.Debugf)
			}
		}
	}
}

// Frame is a grid paired with the dimensions it was produced at. It exists
// as a distinct type from *TerminalGrid so that a caller holding a
// higher-level frame (grid plus whatever metadata its producer attached)
// and a caller holding a bare grid both have a direct entry point.
type Frame struct {
	Grid *TerminalGrid
}

// NewFrame wraps grid as a Frame.
func NewFrame(grid *TerminalGrid) Frame { return Frame{Grid: grid} }

// SetWidth updates the terminal width used for the log lane and the
// combined-grid floor, without touching anything already rendered. Callers
// that track real terminal geometry (e.g. a SIGWINCH handler feeding
// StdoutSize) call this on resize rather than RuneKit polling the
// descriptor on every frame.
func (f *FrameBuffer) SetWidth(width int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width = width
}

// combine builds the single grid handed to the reconciler: captured
// console lines rendered through the log lane on top, the caller's live
// grid below. The combined grid's width is max(terminal cols, live
// width): a live grid wider than the terminal widens the combined grid
// rather than having its overflowing columns clamped, so content is never
// silently dropped. Rows narrower than the combined width are padded.
func (f *FrameBuffer) combine(live *TerminalGrid) *TerminalGrid {
	f.ensureStarted()

	var logRows []LogLaneRow
	if f.capture != nil {
		lines := f.capture.Lines()
		laneCfg := NewLogLaneConfig(f.width)
		laneCfg.MaxDisplayLines = f.cfg.LogLaneMaxLines
		laneCfg.Color = f.cfg.LogLaneColor
		laneCfg.Separator = f.cfg.LogLaneSeparator
		logRows = RenderLogLaneRows(lines, laneCfg)
	}

	width := f.width
	if live.Width() > width {
		width = live.Width()
	}

	height := len(logRows) + live.Height()
	if f.pool == nil || f.pool.width != width || f.pool.height != height {
		f.pool = NewGridPool(width, height)
	}
	combined := f.pool.Get()
	for i, row := range logRows {
		combined.SetRow(i, cellsFromLine(row.Text, row.Style, width))
	}
	for y := 0; y < live.Height(); y++ {
		combined.SetRow(len(logRows)+y, live.GetRow(y))
	}
	return combined
}

// RenderGrid queues live for rendering, coalescing with any other frame
// queued within the current window. Returns immediately; use
// WaitForPendingUpdates to block until it has actually been drawn.
func (f *FrameBuffer) RenderGrid(live *TerminalGrid) {
	f.mu.Lock()
	combined := f.combine(live)
	f.mu.Unlock()
	f.reconciler.Render(combined)
}

// RenderFrame is RenderGrid for callers holding a Frame rather than a bare
// grid.
func (f *FrameBuffer) RenderFrame(frame Frame) {
	f.RenderGrid(frame.Grid)
}

// RenderGridImmediate renders live synchronously, bypassing coalescing,
// and returns its stats.
func (f *FrameBuffer) RenderGridImmediate(live *TerminalGrid) RenderStats {
	f.mu.Lock()
	combined := f.combine(live)
	f.mu.Unlock()
	return f.reconciler.RenderImmediate(combined)
}

// RenderFrameImmediate is RenderGridImmediate for callers holding a Frame.
func (f *FrameBuffer) RenderFrameImmediate(frame Frame) RenderStats {
	return f.RenderGridImmediate(frame.Grid)
}

// WaitForPendingUpdates blocks until any coalesced-but-not-yet-rendered
// frame has been drawn.
func (f *FrameBuffer) WaitForPendingUpdates() {
	f.reconciler.Flush()
}

// Clear clears the renderer and all diff state, forcing the next frame to
// be drawn as if nothing had ever been rendered.
func (f *FrameBuffer) Clear() {
	f.reconciler.Clear()
}

// RestoreCursor shows the cursor and moves it below the last rendered
// frame, leaving the terminal in a normal interactive state without
// leaving the alternate screen or stopping capture.
func (f *FrameBuffer) RestoreCursor() {
	if g := f.reconciler.GetCurrentFrame(); g != nil {
		f.renderer.MoveCursor(g.Height()+1, 1)
	}
	f.renderer.ShowCursor()
}

// Shutdown flushes any pending frame, stops console capture, leaves the
// alternate screen, and shows the cursor. The FrameBuffer may not be used
// again afterward.
func (f *FrameBuffer) Shutdown() {
	f.reconciler.Flush()
	f.renderer.ShowCursor()

	f.mu.Lock()
	capture := f.capture
	f.capture = nil
	f.mu.Unlock()

	if capture != nil && capture.Active() {
		_ = capture.StopCapture()
	}

	if f.cfg.AltScreen {
		f.altScreen.Leave()
	}
	f.reconciler.Shutdown()
}

// PerformanceMetrics returns the reconciler's current adaptive state.
func (f *FrameBuffer) PerformanceMetrics() PerformanceMetrics {
	return f.reconciler.GetPerformanceMetrics()
}

// CurrentFrame returns the most recently rendered combined grid, or nil.
func (f *FrameBuffer) CurrentFrame() *TerminalGrid {
	return f.reconciler.GetCurrentFrame()
}
