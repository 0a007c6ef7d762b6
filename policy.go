package runekit

import "time"

// OptimizationMode pins the strategy decision, or leaves it to the
// automatic heuristic.
type OptimizationMode int

const (
	OptimizationAutomatic OptimizationMode = iota
	OptimizationFullRedraw
	OptimizationLineDiff
)

// AdaptiveThresholds bounds the automatic strategy heuristic. DeltaThreshold
// is clamped to [0.2, 0.6] by MetricsRecorder as it adapts; it starts at
// 0.3. MaxChangePercentage (default 0.5) is the fraction of changed lines
// above which a delta update is abandoned in favor of a full redraw.
type AdaptiveThresholds struct {
	DeltaThreshold      float64
	MaxChangePercentage float64
}

// DefaultAdaptiveThresholds returns the starting threshold values.
func DefaultAdaptiveThresholds() AdaptiveThresholds {
	return AdaptiveThresholds{DeltaThreshold: 0.3, MaxChangePercentage: 0.5}
}

const (
	deltaThresholdMin = 0.2
	deltaThresholdMax = 0.6
)

func clampDeltaThreshold(v float64) float64 {
	if v < deltaThresholdMin {
		return deltaThresholdMin
	}
	if v > deltaThresholdMax {
		return deltaThresholdMax
	}
	return v
}

// FullRedrawPolicy forces a full redraw periodically regardless of how
// small the diff is, as a safety valve against accumulated drift between
// the renderer's believed terminal state and reality.
type FullRedrawPolicy struct {
	maxFrames      int
	maxInterval    time.Duration
	framesSince    int
	lastFullRedraw time.Time
	haveBaseline   bool
}

// NewFullRedrawPolicy creates a policy with the default bounds: a full
// redraw at least every 100 frames, or every 30 seconds, whichever comes
// first.
func NewFullRedrawPolicy() *FullRedrawPolicy {
	return &FullRedrawPolicy{maxFrames: 100, maxInterval: 30 * time.Second}
}

// ShouldForce reports whether a full redraw is due at time now.
func (p *FullRedrawPolicy) ShouldForce(now time.Time) bool {
	if !p.haveBaseline {
		return true
	}
	if p.framesSince >= p.maxFrames {
		return true
	}
	return now.Sub(p.lastFullRedraw) >= p.maxInterval
}

// RecordFullRedraw resets the policy's counters after a full redraw at
// time now.
func (p *FullRedrawPolicy) RecordFullRedraw(now time.Time) {
	p.framesSince = 0
	p.lastFullRedraw = now
	p.haveBaseline = true
}

// RecordFrame records a non-full-redraw frame.
func (p *FullRedrawPolicy) RecordFrame() {
	p.framesSince++
}

// ForceNext makes the next ShouldForce call return true regardless of
// frame count or elapsed time.
func (p *FullRedrawPolicy) ForceNext() {
	p.haveBaseline = false
}

const (
	adaptiveQualityMin   = 0.3
	adaptiveQualityMax   = 1.0
	adaptiveQualityDecay = 0.9
)

// AdaptiveQualityController tracks a [0.3, 1.0] quality score that decays
// under sustained backpressure (queued frames being dropped) and resets
// once the pipeline catches up.
type AdaptiveQualityController struct {
	quality float64
}

// NewAdaptiveQualityController creates a controller at full quality.
func NewAdaptiveQualityController() *AdaptiveQualityController {
	return &AdaptiveQualityController{quality: adaptiveQualityMax}
}

// Quality returns the current quality score.
func (a *AdaptiveQualityController) Quality() float64 { return a.quality }

// Decay multiplies the quality score by 0.9, floored at 0.3.
func (a *AdaptiveQualityController) Decay() {
	a.quality *= adaptiveQualityDecay
	if a.quality < adaptiveQualityMin {
		a.quality = adaptiveQualityMin
	}
}

// Reset restores full quality.
func (a *AdaptiveQualityController) Reset() {
	a.quality = adaptiveQualityMax
}

// defaultMaxLinesForDiff and defaultMinEfficiencyThreshold are the
// StrategyDeterminer's out-of-the-box config values, matching Config's
// MaxLinesForDiff and MinEfficiencyThreshold defaults.
const (
	defaultMaxLinesForDiff        = 1000
	defaultMinEfficiencyThreshold = 0.7
)

// StrategyDeterminer picks a rendering Strategy for a frame, honoring a
// pinned OptimizationMode, the periodic full-redraw safety valve, and
// (in automatic mode) the changed-line ratio against AdaptiveThresholds.
type StrategyDeterminer struct {
	mode                   OptimizationMode
	thresholds             AdaptiveThresholds
	fullRedraw             *FullRedrawPolicy
	maxLinesForDiff        int
	minEfficiencyThreshold float64
}

// NewStrategyDeterminer creates a determiner in the given mode with default
// thresholds and full-redraw policy.
func NewStrategyDeterminer(mode OptimizationMode) *StrategyDeterminer {
	return &StrategyDeterminer{
		mode:                   mode,
		thresholds:             DefaultAdaptiveThresholds(),
		fullRedraw:             NewFullRedrawPolicy(),
		maxLinesForDiff:        defaultMaxLinesForDiff,
		minEfficiencyThreshold: defaultMinEfficiencyThreshold,
	}
}

// SetThresholds replaces the adaptive thresholds, e.g. with the values
// MetricsRecorder has adapted toward.
func (d *StrategyDeterminer) SetThresholds(t AdaptiveThresholds) {
	d.thresholds = t
}

// SetLimits replaces the line-count cap above which a diff is abandoned for
// a full redraw, and the quality floor below which the same happens.
// Non-positive values are ignored, leaving the prior value in place.
func (d *StrategyDeterminer) SetLimits(maxLinesForDiff int, minEfficiencyThreshold float64) {
	if maxLinesForDiff > 0 {
		d.maxLinesForDiff = maxLinesForDiff
	}
	if minEfficiencyThreshold > 0 {
		d.minEfficiencyThreshold = minEfficiencyThreshold
	}
}

// ForceFullRedraw makes the next Determine call return FullRedraw
// regardless of frame count, elapsed time, or quality.
func (d *StrategyDeterminer) ForceFullRedraw() {
	d.fullRedraw.ForceNext()
}

// Determine picks a strategy for rendering grid against previous at time
// now, given the reconciler's current adaptive quality score.
func (d *StrategyDeterminer) Determine(grid, previous *TerminalGrid, quality float64, now time.Time) Strategy {
	if d.fullRedraw.ShouldForce(now) || quality < d.minEfficiencyThreshold {
		d.fullRedraw.RecordFullRedraw(now)
		return FullRedraw
	}
	if grid.Height() > d.maxLinesForDiff {
		d.fullRedraw.RecordFullRedraw(now)
		return FullRedraw
	}

	switch d.mode {
	case OptimizationFullRedraw:
		d.fullRedraw.RecordFullRedraw(now)
		return FullRedraw
	case OptimizationLineDiff:
		if previous == nil || previous.Width() != grid.Width() || previous.Height() != grid.Height() {
			d.fullRedraw.RecordFullRedraw(now)
			return FullRedraw
		}
		d.fullRedraw.RecordFrame()
		return DeltaUpdate
	default:
		if previous == nil || previous.Width() != grid.Width() || previous.Height() != grid.Height() {
			d.fullRedraw.RecordFullRedraw(now)
			return FullRedraw
		}
		total := grid.Height()
		width := grid.Width()
		changed := len(grid.ChangedLines(previous))
		changePct := 0.0
		if total > 0 {
			changePct = float64(changed) / float64(total)
		}
		if changePct > d.thresholds.MaxChangePercentage {
			d.fullRedraw.RecordFullRedraw(now)
			return FullRedraw
		}

		// Estimate the byte cost of a full repaint against a delta update to
		// decide whether the savings clear the adaptive threshold: roughly 2
		// bytes/cell for a full row rewrite, versus ~10 bytes of control
		// sequence overhead plus 2 bytes/cell per changed row for a delta.
		fullBytes := 2.0 * float64(width) * float64(total)
		deltaBytes := 10.0*float64(changed) + 2.0*float64(width)*float64(changed)
		bytesSaved := 1.0
		if fullBytes > 0 {
			bytesSaved = (fullBytes - deltaBytes) / fullBytes
		}
		if bytesSaved < d.thresholds.DeltaThreshold {
			d.fullRedraw.RecordFullRedraw(now)
			return FullRedraw
		}

		d.fullRedraw.RecordFrame()
		if n, _, ok := detectScroll(grid, previous); ok && n > 0 {
			return ScrollOptimized
		}
		return DeltaUpdate
	}
}
