package runekit

import (
	"os"

	"golang.org/x/term"
)

const (
	fallbackTermWidth  = 80
	fallbackTermHeight = 24
)

// TerminalSize returns the current width and height of fd (typically
// os.Stdout.Fd()) in columns and rows. When the size can't be queried
// (fd isn't a terminal, as in tests and piped output), it falls back to
// 80x24.
func TerminalSize(fd uintptr) (width, height int) {
	w, h, err := term.GetSize(int(fd))
	if err != nil || w <= 0 || h <= 0 {
		return fallbackTermWidth, fallbackTermHeight
	}
	return w, h
}

// StdoutSize is a convenience wrapper around TerminalSize for os.Stdout.
func StdoutSize() (width, height int) {
	return TerminalSize(os.Stdout.Fd())
}
