package runekit

// AlternateScreenBuffer manages entry to and exit from the terminal's
// alternate screen buffer (DEC private mode 1049), tracking whether it is
// currently active so enter/leave are idempotent no-ops when called out of
// turn.
type AlternateScreenBuffer struct {
	writer *OutputWriter
	active bool
}

// NewAlternateScreenBuffer creates a manager writing through w.
func NewAlternateScreenBuffer(w *OutputWriter) *AlternateScreenBuffer {
	return &AlternateScreenBuffer{writer: w}
}

// Enter switches to the alternate screen buffer and clears it. A no-op if
// already active.
func (a *AlternateScreenBuffer) Enter() {
	if a.active {
		return
	}
	a.writer.WriteAtomic([]byte("\x1b[?1049h\x1b[2J\x1b[H"))
	a.active = true
}

// Leave switches back to the primary screen buffer. A no-op if not active.
func (a *AlternateScreenBuffer) Leave() {
	if !a.active {
		return
	}
	a.writer.WriteAtomic([]byte("\x1b[?1049l"))
	a.active = false
}

// IsActive reports whether the alternate screen buffer is currently
// entered.
func (a *AlternateScreenBuffer) IsActive() bool { return a.active }

// ClearScreen clears the currently active screen (whichever buffer that is)
// and homes the cursor, for terminals that lack alternate-screen support
// and need a direct fallback.
func (a *AlternateScreenBuffer) ClearScreen() {
	a.writer.WriteAtomic([]byte("\x1b[2J\x1b[H"))
}
