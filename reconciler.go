package runekit

import (
	"sync"
	"time"
)

const reconcilerQueueCap = 5

// HybridReconciler is the coalescing front door to TerminalRenderer: it
// accepts frames at whatever rate the caller produces them, coalesces
// bursts down to the latest frame within a short window, picks a rendering
// Strategy per frame via StrategyDeterminer, and degrades adaptive quality
// under sustained backpressure (frames arriving faster than they can be
// flushed). Once quality drops below the determiner's floor, frames are
// drawn with a full redraw until a full redraw restores full quality.
type HybridReconciler struct {
	mu sync.Mutex

	renderer   *TerminalRenderer
	determiner *StrategyDeterminer
	metrics    *MetricsRecorder
	quality    *AdaptiveQualityController

	coalescingWindow time.Duration

	pending       *TerminalGrid
	queueDepth    int
	droppedFrames int
	timer         *time.Timer
	rendering     bool // guards the idle->immediate-render transition in Render

	currentGrid *TerminalGrid
	closed      bool

	debugf  func(format string, args ...any)
	release func(*TerminalGrid)
}

// NewHybridReconciler creates a reconciler driving renderer at the given
// target frame rate (frames per second). The coalescing window is half a
// frame interval; fps <= 0 falls back to 30.
func NewHybridReconciler(renderer *TerminalRenderer, fps float64) *HybridReconciler {
	if fps <= 0 {
		fps = 30
	}
	return &HybridReconciler{
		renderer:         renderer,
		determiner:       NewStrategyDeterminer(OptimizationAutomatic),
		metrics:          NewMetricsRecorder(),
		quality:          NewAdaptiveQualityController(),
		coalescingWindow: time.Duration(0.5 / fps * float64(time.Second)),
	}
}

// SetReleaseFunc installs a callback invoked with every grid this
// reconciler is definitively done with: a pending frame coalesced away by
// a newer submission, a pending frame dropped outright by RenderImmediate,
// Clear or Shutdown, the previous currentGrid once a render supersedes it,
// or the currentGrid dropped by Clear or ResetDiffState. The
// reconciler never touches a released grid again, so a caller may safely
// recycle it (e.g. back into a GridPool). Pass nil to disable.
func (h *HybridReconciler) SetReleaseFunc(release func(*TerminalGrid)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.release = release
}

func (h *HybridReconciler) releaseGrid(g *TerminalGrid) {
	if g == nil {
		return
	}
	h.mu.Lock()
	release := h.release
	h.mu.Unlock()
	if release != nil {
		release(g)
	}
}

// Render submits grid for rendering. If the reconciler is idle (no
// coalescing window currently open), grid renders immediately and a new
// window opens for its duration; any further frame arriving before the
// window closes replaces whatever is already queued (the latest frame
// always wins) rather than getting its own render. queueDepth counts the
// submissions queued in the open window and is capped at
// reconcilerQueueCap; each submission past the cap is counted against
// droppedFrames with one step of adaptive-quality decay. pending always
// tracks the newest submission regardless of how deep the queue has
// gotten, so the frame that eventually renders is always the most recent
// one submitted. A replaced pending frame is released via SetReleaseFunc
// once it can never be rendered.
func (h *HybridReconciler) Render(grid *TerminalGrid) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}

	if h.timer == nil && h.pending == nil && !h.rendering {
		h.rendering = true
		h.mu.Unlock()
		h.renderFrame(grid)
		h.mu.Lock()
		h.rendering = false
		if !h.closed {
			h.timer = time.AfterFunc(h.coalescingWindow, h.flush)
		}
		h.mu.Unlock()
		return
	}

	h.queueDepth++
	if h.queueDepth > reconcilerQueueCap {
		h.queueDepth = reconcilerQueueCap
		h.droppedFrames++
		h.quality.Decay()
	}
	superseded := h.pending
	h.pending = grid
	if h.timer == nil {
		h.timer = time.AfterFunc(h.coalescingWindow, h.flush)
	}
	h.mu.Unlock()

	h.releaseGrid(superseded)
}

func (h *HybridReconciler) flush() {
	h.mu.Lock()
	grid := h.pending
	h.pending = nil
	h.queueDepth = 0
	h.timer = nil
	closed := h.closed
	h.mu.Unlock()

	if closed || grid == nil {
		return
	}
	h.renderFrame(grid)
}

// RenderImmediate cancels any pending coalesced frame and renders grid
// synchronously, returning its stats. A canceled pending frame is
// released via SetReleaseFunc since it will now never be rendered.
func (h *HybridReconciler) RenderImmediate(grid *TerminalGrid) RenderStats {
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	dropped := h.pending
	h.pending = nil
	h.queueDepth = 0
	h.mu.Unlock()

	h.releaseGrid(dropped)
	return h.renderFrame(grid)
}

func (h *HybridReconciler) renderFrame(grid *TerminalGrid) RenderStats {
	h.mu.Lock()
	previous := h.currentGrid
	now := time.Now()
	strategy := h.determiner.Determine(grid, previous, h.quality.Quality(), now)
	h.mu.Unlock()

	stats := h.renderer.Render(grid, strategy, previous)

	h.mu.Lock()
	h.currentGrid = grid
	h.metrics.Record(stats)
	h.determiner.SetThresholds(h.metrics.Thresholds())
	if strategy == FullRedraw {
		h.quality.Reset()
	}
	debugf := h.debugf
	h.mu.Unlock()

	if debugf != nil {
		debugf("runekit: strategy=%v totalLines=%d changedLines=%d quality=%.2f\n",
			stats.Strategy, stats.TotalLines, stats.LinesChanged, h.quality.Quality())
	}

	if previous != grid {
		h.releaseGrid(previous)
	}

	return stats
}

// Flush synchronously renders any coalesced-but-not-yet-rendered frame
// right now, canceling the pending timer. A no-op if no frame is queued.
func (h *HybridReconciler) Flush() {
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	grid := h.pending
	h.pending = nil
	h.queueDepth = 0
	h.mu.Unlock()

	if grid != nil {
		h.renderFrame(grid)
	}
}

// Configure applies the strategy policy's pinned mode and limits. Called
// once by FrameBuffer after construction; safe to call again to retune.
func (h *HybridReconciler) Configure(mode OptimizationMode, maxLinesForDiff int, minEfficiencyThreshold float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.determiner.mode = mode
	h.determiner.SetLimits(maxLinesForDiff, minEfficiencyThreshold)
}

// SetDebugf installs a diagnostic sink invoked after every render with the
// chosen strategy and line counts. Pass nil to silence it again. A nil sink
// is the default, matching debug logging being opt-in.
func (h *HybridReconciler) SetDebugf(debugf func(format string, args ...any)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.debugf = debugf
}

// ForceFullRedraw makes the next queued or immediate render a full redraw
// regardless of the periodic safety valve's timing.
func (h *HybridReconciler) ForceFullRedraw() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.determiner.ForceFullRedraw()
}

// Clear clears the renderer and drops all reconciler-side diff state, as
// if rendering were starting fresh. Any pending or current grid is
// released via SetReleaseFunc since neither will be touched again.
func (h *HybridReconciler) Clear() {
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	pending := h.pending
	current := h.currentGrid
	h.pending = nil
	h.queueDepth = 0
	h.currentGrid = nil
	h.mu.Unlock()

	h.releaseGrid(pending)
	if current != pending {
		h.releaseGrid(current)
	}
	h.renderer.Clear()
}

// ResetDiffState discards the tracked previous grid without touching the
// renderer's own cursor/screen state, forcing the next render to treat
// its target as entirely new content for diffing purposes. The discarded
// grid is released via SetReleaseFunc.
func (h *HybridReconciler) ResetDiffState() {
	h.mu.Lock()
	current := h.currentGrid
	h.currentGrid = nil
	h.determiner.ForceFullRedraw()
	h.mu.Unlock()

	h.releaseGrid(current)
}

// Shutdown stops the coalescing timer and flushes the renderer. No further
// frames are accepted afterward. A pending frame that never got to render
// is released via SetReleaseFunc.
func (h *HybridReconciler) Shutdown() {
	h.mu.Lock()
	h.closed = true
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	h.releaseGrid(pending)
	h.renderer.Shutdown()
}

// PerformanceMetrics is a snapshot of the reconciler's adaptive state.
type PerformanceMetrics struct {
	History       []RenderStats
	Thresholds    AdaptiveThresholds
	Quality       float64
	DroppedFrames int
	QueueDepth    int
}

// GetPerformanceMetrics returns a snapshot of the reconciler's adaptive
// state for diagnostics.
func (h *HybridReconciler) GetPerformanceMetrics() PerformanceMetrics {
	h.mu.Lock()
	dropped := h.droppedFrames
	depth := h.queueDepth
	quality := h.quality.Quality()
	h.mu.Unlock()

	return PerformanceMetrics{
		History:       h.metrics.History(),
		Thresholds:    h.metrics.Thresholds(),
		Quality:       quality,
		DroppedFrames: dropped,
		QueueDepth:    depth,
	}
}

// GetCurrentFrame returns the most recently rendered grid, or nil if none
// has been rendered yet.
func (h *HybridReconciler) GetCurrentFrame() *TerminalGrid {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentGrid
}
