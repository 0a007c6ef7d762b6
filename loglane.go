package runekit

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const defaultLogLaneMaxLines = 10
const defaultSeparatorChar = '─'

// logLanePrefix returns the per-stream, optionally timestamped, label
// prepended to a captured line. stderr is marked so it stands out among
// interleaved stdout noise.
func logLanePrefix(line CapturedLine, showTimestamps bool) string {
	marker := "  "
	if line.Stream == "stderr" {
		marker = "! "
	}
	if !showTimestamps || line.At.IsZero() {
		return marker
	}
	return line.At.Format("15:04:05") + " " + marker
}

// logLaneStyle returns the style a captured line's row should render with:
// uncolored unless cfg.Color is set, in which case stdout and stderr rows
// get their own configured foreground color.
func logLaneStyle(cfg LogLaneConfig, stream string) Style {
	if !cfg.Color {
		return DefaultStyle()
	}
	if stream == "stderr" {
		return DefaultStyle().Foreground(cfg.StderrColor)
	}
	return DefaultStyle().Foreground(cfg.StdoutColor)
}

// LogLaneConfig controls how captured console output is formatted into the
// scrollback region printed above the live render.
type LogLaneConfig struct {
	Width           int
	MaxDisplayLines int
	ShowTimestamps  bool

	// Color enables per-source foreground coloring of log lane rows and
	// dims the separator row. Off by default: a caller writing to a plain
	// pipe or a dumb terminal should see uncolored text.
	Color       bool
	StdoutColor Color
	StderrColor Color

	// Separator is the rune repeated to build the rule drawn under the log
	// lane. Zero falls back to '─'.
	Separator rune
}

// NewLogLaneConfig creates a config for the given terminal width with the
// default display-line cap, separator rule, and source colors (used only
// when Color is set to true).
func NewLogLaneConfig(width int) LogLaneConfig {
	return LogLaneConfig{
		Width:           width,
		MaxDisplayLines: defaultLogLaneMaxLines,
		Separator:       defaultSeparatorChar,
		StdoutColor:     BasicColor(6), // cyan
		StderrColor:     BasicColor(1), // red
	}
}

// LogLaneRow is one formatted row of the log lane: the text to draw and the
// style to draw it with.
type LogLaneRow struct {
	Text  string
	Style Style
}

// RenderLogLaneRows formats the tail of lines into at most
// cfg.MaxDisplayLines terminal rows: each captured line is prefixed per its
// stream, wrapped (ANSI-aware, so SGR sequences survive a wrap point) to
// cfg.Width, and wrapped continuations are hanging-indented to align under
// the first line's content. A single separator row follows the log rows
// when there is anything to show, marking the boundary with the live
// region below it. This is a pure function: it does no I/O and holds no
// state between calls.
func RenderLogLaneRows(lines []CapturedLine, cfg LogLaneConfig) []LogLaneRow {
	if len(lines) == 0 || cfg.Width <= 0 {
		return nil
	}
	maxLines := cfg.MaxDisplayLines
	if maxLines <= 0 {
		maxLines = defaultLogLaneMaxLines
	}

	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	var wrapped []LogLaneRow
	for _, line := range lines {
		style := logLaneStyle(cfg, line.Stream)
		prefix := logLanePrefix(line, cfg.ShowTimestamps)
		for _, row := range wrapPrefixed(prefix, line.Text, cfg.Width) {
			wrapped = append(wrapped, LogLaneRow{Text: row, Style: style})
		}
	}

	if len(wrapped) > maxLines {
		wrapped = wrapped[len(wrapped)-maxLines:]
	}

	sep := cfg.Separator
	if sep == 0 {
		sep = defaultSeparatorChar
	}
	sepStyle := DefaultStyle()
	if cfg.Color {
		sepStyle = sepStyle.Dim()
	}

	out := make([]LogLaneRow, 0, len(wrapped)+1)
	out = append(out, wrapped...)
	out = append(out, LogLaneRow{Text: strings.Repeat(string(sep), cfg.Width), Style: sepStyle})
	return out
}

// RenderLogLane is RenderLogLaneRows with the per-row styles discarded, for
// callers that only need the text (plain-text sinks, tests).
func RenderLogLane(lines []CapturedLine, cfg LogLaneConfig) []string {
	rows := RenderLogLaneRows(lines, cfg)
	if rows == nil {
		return nil
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Text
	}
	return out
}

// wrapPrefixed wraps text to width-len(prefix) columns, puts prefix before
// the first resulting row, and hanging-indents every subsequent row by
// len(prefix) spaces.
func wrapPrefixed(prefix, text string, width int) []string {
	avail := width - len(prefix)
	if avail < 1 {
		avail = 1
	}
	body := ansi.Wrap(text, avail, "")
	rows := strings.Split(body, "\n")

	indent := strings.Repeat(" ", len(prefix))
	out := make([]string, len(rows))
	for i, row := range rows {
		if i == 0 {
			out[i] = prefix + row
		} else {
			out[i] = indent + row
		}
	}
	return out
}
