package runekit

import (
	"strings"
	"testing"
	"time"
)

func TestRenderLogLaneEmptyWithNoLines(t *testing.T) {
	out := RenderLogLane(nil, NewLogLaneConfig(40))
	if out != nil {
		t.Fatalf("expected nil for no lines, got %v", out)
	}
}

func TestRenderLogLanePrefixesByStream(t *testing.T) {
	lines := []CapturedLine{
		{Stream: "stdout", Text: "normal output"},
		{Stream: "stderr", Text: "warning!"},
	}
	out := RenderLogLane(lines, NewLogLaneConfig(40))
	if len(out) < 3 {
		t.Fatalf("expected 2 lines + separator, got %v", out)
	}
	if !strings.HasPrefix(out[0], "  ") {
		t.Fatalf("stdout line should use the blank prefix, got %q", out[0])
	}
	if !strings.HasPrefix(out[1], "! ") {
		t.Fatalf("stderr line should use the ! prefix, got %q", out[1])
	}
}

func TestRenderLogLaneCapsDisplayLines(t *testing.T) {
	var lines []CapturedLine
	for i := 0; i < 20; i++ {
		lines = append(lines, CapturedLine{Stream: "stdout", Text: "line"})
	}
	cfg := LogLaneConfig{Width: 20, MaxDisplayLines: 5}
	out := RenderLogLane(lines, cfg)
	// 1 separator + at most 5 content rows.
	if len(out) > 6 {
		t.Fatalf("expected at most 6 rows (separator + 5), got %d", len(out))
	}
}

func TestRenderLogLaneWrapsAndIndentsContinuations(t *testing.T) {
	long := strings.Repeat("word ", 20)
	lines := []CapturedLine{{Stream: "stdout", Text: long}}
	cfg := LogLaneConfig{Width: 20, MaxDisplayLines: 50}
	out := RenderLogLane(lines, cfg)
	if len(out) < 3 {
		t.Fatalf("expected the long line to wrap across multiple rows, got %v", out)
	}
	// continuation rows should be indented by the prefix width (2 spaces).
	if !strings.HasPrefix(out[1], "  ") {
		t.Fatalf("continuation row should be indented, got %q", out[1])
	}
}

func TestRenderLogLaneTimestampPrefixOptIn(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	lines := []CapturedLine{{Stream: "stdout", Text: "hi", At: now}}

	without := RenderLogLane(lines, LogLaneConfig{Width: 40, MaxDisplayLines: 10})
	if strings.Contains(without[0], "15:04:05") {
		t.Fatalf("timestamp should be omitted by default, got %q", without[0])
	}

	with := RenderLogLane(lines, LogLaneConfig{Width: 40, MaxDisplayLines: 10, ShowTimestamps: true})
	if !strings.Contains(with[0], "15:04:05") {
		t.Fatalf("expected timestamp in prefix when enabled, got %q", with[0])
	}
}

func TestRenderLogLaneZeroWidth(t *testing.T) {
	out := RenderLogLane([]CapturedLine{{Stream: "stdout", Text: "x"}}, LogLaneConfig{Width: 0})
	if out != nil {
		t.Fatalf("zero width should produce no output, got %v", out)
	}
}

func TestRenderLogLaneRowsUncoloredByDefault(t *testing.T) {
	lines := []CapturedLine{{Stream: "stderr", Text: "oops"}}
	rows := RenderLogLaneRows(lines, NewLogLaneConfig(40))
	if len(rows) < 2 {
		t.Fatalf("expected content row + separator, got %v", rows)
	}
	if rows[0].Style != DefaultStyle() {
		t.Fatalf("expected no color without cfg.Color, got %+v", rows[0].Style)
	}
}

func TestRenderLogLaneRowsColorsBySource(t *testing.T) {
	lines := []CapturedLine{
		{Stream: "stdout", Text: "out"},
		{Stream: "stderr", Text: "err"},
	}
	cfg := NewLogLaneConfig(40)
	cfg.Color = true
	rows := RenderLogLaneRows(lines, cfg)
	if rows[0].Style.FG != cfg.StdoutColor {
		t.Fatalf("expected stdout row colored with StdoutColor, got %+v", rows[0].Style)
	}
	if rows[1].Style.FG != cfg.StderrColor {
		t.Fatalf("expected stderr row colored with StderrColor, got %+v", rows[1].Style)
	}
	separator := rows[len(rows)-1]
	if !separator.Style.Attr.Has(AttrDim) {
		t.Fatalf("expected separator row dimmed when color is enabled, got %+v", separator.Style)
	}
}

func TestRenderLogLaneCustomSeparatorChar(t *testing.T) {
	lines := []CapturedLine{{Stream: "stdout", Text: "x"}}
	cfg := NewLogLaneConfig(5)
	cfg.Separator = '='
	out := RenderLogLane(lines, cfg)
	if out[len(out)-1] != "=====" {
		t.Fatalf("expected custom separator character, got %q", out[len(out)-1])
	}
}
