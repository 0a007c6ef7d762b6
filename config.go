package runekit

import (
	"os"
	"strconv"
)

// Config bundles every tunable knob of the rendering pipeline. Zero-value
// Config is not valid; start from DefaultConfig.
type Config struct {
	MaxFrameRate float64
	RenderMode   OptimizationMode

	MaxLinesForDiff        int
	MinEfficiencyThreshold float64
	WriteBufferSize        int

	AltScreen      bool
	ConsoleCapture bool
	Debug          bool

	ConsoleCaptureBufferSize int
	LogLaneMaxLines          int
	LogLaneColor             bool
	LogLaneSeparator         rune

	HideCursorDuringRender      bool
	DisableAutowrapDuringRender bool
}

// DefaultConfig returns the rendering core's default configuration: line-diff
// strategy at up to 60fps, alternate screen and console capture both off
// until a caller opts in, cursor hidden and autowrap left alone while a
// frame is in flight.
func DefaultConfig() Config {
	return Config{
		MaxFrameRate:                60,
		RenderMode:                  OptimizationLineDiff,
		MaxLinesForDiff:             defaultMaxLinesForDiff,
		MinEfficiencyThreshold:      defaultMinEfficiencyThreshold,
		WriteBufferSize:             defaultWriteBufferSize,
		AltScreen:                   false,
		ConsoleCapture:              false,
		Debug:                       false,
		ConsoleCaptureBufferSize:    1000,
		LogLaneMaxLines:             defaultLogLaneMaxLines,
		LogLaneColor:                false,
		LogLaneSeparator:            defaultSeparatorChar,
		HideCursorDuringRender:      true,
		DisableAutowrapDuringRender: false,
	}
}

// LoadConfigFromEnv returns DefaultConfig with RUNE_RENDER_MODE,
// RUNE_ALT_SCREEN, RUNE_CONSOLE_CAPTURE, RUNE_DEBUG, and
// RUNE_LOG_LANE_COLOR applied on top where set. Unparseable or unrecognized values are ignored, leaving the
// default in place.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	switch os.Getenv("RUNE_RENDER_MODE") {
	case "full_redraw":
		cfg.RenderMode = OptimizationFullRedraw
	case "line_diff":
		cfg.RenderMode = OptimizationLineDiff
	case "automatic":
		cfg.RenderMode = OptimizationAutomatic
	}

	if v, ok := parseBoolEnv("RUNE_ALT_SCREEN"); ok {
		cfg.AltScreen = v
	}
	if v, ok := parseBoolEnv("RUNE_CONSOLE_CAPTURE"); ok {
		cfg.ConsoleCapture = v
	}
	if v, ok := parseBoolEnv("RUNE_DEBUG"); ok {
		cfg.Debug = v
	}
	if v, ok := parseBoolEnv("RUNE_LOG_LANE_COLOR"); ok {
		cfg.LogLaneColor = v
	}

	return cfg.normalized()
}

func parseBoolEnv(key string) (bool, bool) {
	raw, set := os.LookupEnv(key)
	if !set {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// normalized clamps invalid values to safe defaults: a non-positive frame
// rate falls back to 1fps rather than producing a zero or negative
// coalescing window.
func (c Config) normalized() Config {
	if c.MaxFrameRate <= 0 {
		c.MaxFrameRate = 1.0
	}
	if c.LogLaneMaxLines <= 0 {
		c.LogLaneMaxLines = defaultLogLaneMaxLines
	}
	if c.LogLaneSeparator == 0 {
		c.LogLaneSeparator = defaultSeparatorChar
	}
	if c.ConsoleCaptureBufferSize <= 0 {
		c.ConsoleCaptureBufferSize = 1000
	}
	if c.MaxLinesForDiff <= 0 {
		c.MaxLinesForDiff = defaultMaxLinesForDiff
	}
	if c.MinEfficiencyThreshold <= 0 {
		c.MinEfficiencyThreshold = defaultMinEfficiencyThreshold
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = defaultWriteBufferSize
	}
	return c
}
