package runekit

import (
	"bytes"
	"testing"
	"time"
)

func newTestReconciler(fps float64) (*HybridReconciler, *bytes.Buffer) {
	var sink bytes.Buffer
	w := NewOutputWriter(&sink, 0)
	r := NewTerminalRenderer(w, false, false)
	return NewHybridReconciler(r, fps), &sink
}

func TestReconcilerRendersFirstFrameImmediately(t *testing.T) {
	h, _ := newTestReconciler(5) // long window, so only an immediate render would show up this fast
	g := GridFromLines([]string{"first"}, 5, 1)
	h.Render(g)
	if got := h.GetCurrentFrame(); got != g {
		t.Fatal("expected the leading frame to render immediately when the reconciler is idle")
	}
}

func TestReconcilerCoalescesBurstToLatestFrame(t *testing.T) {
	h, _ := newTestReconciler(200) // ~2.5ms coalescing window
	g1 := GridFromLines([]string{"first"}, 5, 1)
	g2 := GridFromLines([]string{"second"}, 5, 1)
	g3 := GridFromLines([]string{"third"}, 5, 1)

	h.Render(g1) // idle: renders immediately, opens the coalescing window
	h.Render(g2) // queued
	h.Render(g3) // replaces g2 in the queue; still under the queue cap
	time.Sleep(40 * time.Millisecond)

	if got := h.GetCurrentFrame(); got != g3 {
		t.Fatalf("expected the latest queued frame to win coalescing")
	}
	if m := h.GetPerformanceMetrics(); m.DroppedFrames != 0 {
		t.Fatalf("expected no dropped frames while under the queue cap, got %d", m.DroppedFrames)
	}
}

func TestReconcilerRenderImmediateBypassesCoalescing(t *testing.T) {
	h, _ := newTestReconciler(5) // long window so a queued frame would linger
	g1 := GridFromLines([]string{"queued"}, 6, 1)
	g2 := GridFromLines([]string{"immediate"}, 9, 1)

	h.Render(g1)
	stats := h.RenderImmediate(g2)

	if stats.TotalLines != g2.Height() {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if h.GetCurrentFrame() != g2 {
		t.Fatal("RenderImmediate should render and track its own frame right away")
	}
}

func TestReconcilerFlushRendersQueuedFrameNow(t *testing.T) {
	h, _ := newTestReconciler(1) // 0.5s window, long enough that only Flush forces it
	g1 := GridFromLines([]string{"x"}, 1, 1)
	g2 := GridFromLines([]string{"y"}, 1, 1)
	h.Render(g1) // idle: renders immediately, opens the window
	h.Render(g2) // queued behind the open window
	h.Flush()
	if h.GetCurrentFrame() != g2 {
		t.Fatal("Flush should synchronously render the queued frame")
	}
}

func TestReconcilerFlushIsNoOpWithNothingQueued(t *testing.T) {
	h, _ := newTestReconciler(30)
	h.Flush() // must not panic
	if h.GetCurrentFrame() != nil {
		t.Fatal("expected no current frame")
	}
}

func TestReconcilerShutdownStopsAcceptingFrames(t *testing.T) {
	h, _ := newTestReconciler(200)
	h.Shutdown()
	g := GridFromLines([]string{"ignored"}, 8, 1)
	h.Render(g)
	time.Sleep(20 * time.Millisecond)
	if h.GetCurrentFrame() != nil {
		t.Fatal("frames queued after Shutdown should be ignored")
	}
}

func TestReconcilerClearResetsTrackedFrame(t *testing.T) {
	h, _ := newTestReconciler(30)
	g := GridFromLines([]string{"x"}, 1, 1)
	h.RenderImmediate(g)
	if h.GetCurrentFrame() == nil {
		t.Fatal("setup: expected a current frame before Clear")
	}
	h.Clear()
	if h.GetCurrentFrame() != nil {
		t.Fatal("Clear should drop the tracked previous frame")
	}
}

func TestReconcilerQueueCapLimitsDroppedFrames(t *testing.T) {
	h, _ := newTestReconciler(200) // ~2.5ms coalescing window
	g0 := GridFromLines([]string{"0"}, 4, 1)
	h.Render(g0) // idle: renders immediately, opens the window

	grids := make([]*TerminalGrid, 8)
	for i := range grids {
		grids[i] = GridFromLines([]string{string(rune('a' + i))}, 4, 1)
		h.Render(grids[i])
	}

	m := h.GetPerformanceMetrics()
	if m.QueueDepth != reconcilerQueueCap {
		t.Fatalf("expected queue depth to clamp at the cap %d, got %d", reconcilerQueueCap, m.QueueDepth)
	}
	// The first 5 submissions fill the queue slots; only the 3 submitted
	// once the cap is already full count as dropped.
	if want := 3; m.DroppedFrames != want {
		t.Fatalf("expected %d dropped frames, got %d", want, m.DroppedFrames)
	}

	h.Flush()
	if h.GetCurrentFrame() != grids[len(grids)-1] {
		t.Fatal("expected the last submitted frame to win once the window flushes")
	}
}

func TestReconcilerReleasesSupersededPendingFrame(t *testing.T) {
	h, _ := newTestReconciler(200) // ~2.5ms coalescing window
	var released []*TerminalGrid
	h.SetReleaseFunc(func(g *TerminalGrid) { released = append(released, g) })

	g1 := GridFromLines([]string{"first"}, 5, 1)
	g2 := GridFromLines([]string{"second"}, 5, 1)
	g3 := GridFromLines([]string{"third"}, 5, 1)

	h.Render(g1) // idle: renders immediately, opens the window
	h.Render(g2) // queued as pending
	h.Render(g3) // supersedes g2 in the queue; g2 must be released

	if len(released) != 1 || released[0] != g2 {
		t.Fatalf("expected g2 released once it was superseded as pending, got %v", released)
	}

	h.Flush()
	// g1 was the currentGrid until g3's flush superseded it.
	found := false
	for _, g := range released {
		if g == g1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected g1 released once g3 became the new currentGrid, got %v", released)
	}
}

func TestReconcilerReleasesDroppedPendingOnShutdown(t *testing.T) {
	h, _ := newTestReconciler(5) // long window
	var released []*TerminalGrid
	h.SetReleaseFunc(func(g *TerminalGrid) { released = append(released, g) })

	g1 := GridFromLines([]string{"first"}, 5, 1)
	g2 := GridFromLines([]string{"second"}, 5, 1)
	h.Render(g1) // renders immediately
	h.Render(g2) // queued

	h.Shutdown()
	if len(released) != 1 || released[0] != g2 {
		t.Fatalf("expected the never-flushed pending frame released on shutdown, got %v", released)
	}
	// currentGrid (g1) must NOT be released by Shutdown: GetCurrentFrame
	// stays valid for callers reading it afterward.
	if h.GetCurrentFrame() != g1 {
		t.Fatal("expected currentGrid to survive Shutdown")
	}
}

func TestReconcilerForceFullRedraw(t *testing.T) {
	h, sink := newTestReconciler(30)
	g := GridFromLines([]string{"same"}, 4, 1)
	h.RenderImmediate(g)
	sink.Reset()

	h.ForceFullRedraw()
	stats := h.RenderImmediate(g)
	if stats.Strategy != FullRedraw {
		t.Fatalf("expected forced full redraw even for an unchanged grid, got %v", stats.Strategy)
	}
}
