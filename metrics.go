package runekit

import "sync"

const metricsHistoryCap = 10

// MetricsRecorder keeps a short rolling history of RenderStats and adapts
// AdaptiveThresholds.DeltaThreshold toward whatever ratio recent frames
// have actually needed: a low mean efficiency (lots of lines changing)
// raises the threshold so more frames fall back to full redraw instead of
// thrashing on a near-total delta; a high mean efficiency lowers it so
// marginal frames keep using the cheaper delta path.
type MetricsRecorder struct {
	mu         sync.Mutex
	history    []RenderStats
	thresholds AdaptiveThresholds
}

// NewMetricsRecorder creates a recorder with the default thresholds.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{thresholds: DefaultAdaptiveThresholds()}
}

// Record appends stats to the rolling history (capped at the last 10
// frames) and re-adapts the thresholds from the mean efficiency of the
// last 5.
func (m *MetricsRecorder) Record(stats RenderStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, stats)
	if len(m.history) > metricsHistoryCap {
		m.history = m.history[len(m.history)-metricsHistoryCap:]
	}
	m.adaptLocked()
}

func (m *MetricsRecorder) adaptLocked() {
	n := len(m.history)
	if n == 0 {
		return
	}
	start := 0
	if n > 5 {
		start = n - 5
	}
	sample := m.history[start:]
	sum := 0.0
	for _, s := range sample {
		sum += s.Efficiency()
	}
	mean := sum / float64(len(sample))

	switch {
	case mean < 0.3:
		m.thresholds.DeltaThreshold = clampDeltaThreshold(m.thresholds.DeltaThreshold + 0.05)
	case mean > 0.7:
		m.thresholds.DeltaThreshold = clampDeltaThreshold(m.thresholds.DeltaThreshold - 0.05)
	}
}

// Thresholds returns a snapshot of the current adaptive thresholds.
func (m *MetricsRecorder) Thresholds() AdaptiveThresholds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thresholds
}

// History returns a copy of the recorded frames, oldest first.
func (m *MetricsRecorder) History() []RenderStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RenderStats, len(m.history))
	copy(out, m.history)
	return out
}

// Last returns the most recently recorded frame, if any.
func (m *MetricsRecorder) Last() (RenderStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return RenderStats{}, false
	}
	return m.history[len(m.history)-1], true
}
