package runekit

import "strconv"

// TerminalState is an SGR snapshot: the terminal's believed foreground,
// background, and attribute set. It is mutated only by the renderer that
// owns it (see TerminalRenderer).
type TerminalState struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultTerminalState returns the state of a freshly reset terminal.
func DefaultTerminalState() TerminalState {
	return TerminalState{Foreground: DefaultColor(), Background: DefaultColor()}
}

// Equal reports whether two states are identical.
func (s TerminalState) Equal(other TerminalState) bool { return s == other }

// appendSGRTransition appends the minimal SGR control sequence that moves
// the cumulative state from "from" to "to", per the transition rules in
// the rendering core's SGR-optimized row encoding:
//
//   - foreground/background changes emit a set-or-reset code for that
//     channel only;
//   - if any attribute is being removed, a full reset (ESC[0m) is emitted
//     followed by codes for every attribute the target state requires;
//   - otherwise only the codes for newly added attributes are emitted;
//   - no bytes are emitted when the target already equals the current
//     state.
func appendSGRTransition(buf []byte, from, to TerminalState) []byte {
	if from.Equal(to) {
		return buf
	}

	removedAttrs := from.Attributes&^to.Attributes != 0
	if removedAttrs {
		buf = append(buf, "\x1b[0m"...)
		buf = appendAttributeCodes(buf, to.Attributes, to.Attributes)
		if !to.Foreground.Equal(DefaultColor()) {
			buf = appendColorCode(buf, to.Foreground, true)
		}
		if !to.Background.Equal(DefaultColor()) {
			buf = appendColorCode(buf, to.Background, false)
		}
		return buf
	}

	addedAttrs := to.Attributes &^ from.Attributes
	buf = appendAttributeCodes(buf, addedAttrs, addedAttrs)

	if !from.Foreground.Equal(to.Foreground) {
		buf = appendColorCode(buf, to.Foreground, true)
	}
	if !from.Background.Equal(to.Background) {
		buf = appendColorCode(buf, to.Background, false)
	}
	return buf
}

// appendAttributeCodes appends one ESC[Nm sequence per attribute bit set in
// "want" that is also set in "mask" (mask lets the full-reset path and the
// incremental path share the same bit-to-code table).
func appendAttributeCodes(buf []byte, want, mask Attribute) []byte {
	type code struct {
		attr Attribute
		n    string
	}
	codes := [...]code{
		{AttrBold, "1"},
		{AttrDim, "2"},
		{AttrItalic, "3"},
		{AttrUnderline, "4"},
		{AttrBlink, "5"},
		{AttrReverse, "7"},
		{AttrStrikethrough, "9"},
	}
	for _, c := range codes {
		if mask.Has(c.attr) && want.Has(c.attr) {
			buf = append(buf, "\x1b["...)
			buf = append(buf, c.n...)
			buf = append(buf, 'm')
		}
	}
	return buf
}

// appendColorCode appends the SGR sequence that sets (or resets, for
// DefaultColor) the foreground or background color.
func appendColorCode(buf []byte, c Color, fg bool) []byte {
	switch c.Mode {
	case ColorDefault:
		if fg {
			return append(buf, "\x1b[39m"...)
		}
		return append(buf, "\x1b[49m"...)
	case Color16:
		base := 30
		if !fg {
			base = 40
		}
		idx := int(c.Index)
		if idx >= 8 {
			base += 60
			idx -= 8
		}
		buf = append(buf, "\x1b["...)
		buf = strconv.AppendInt(buf, int64(base+idx), 10)
		return append(buf, 'm')
	case Color256:
		if fg {
			buf = append(buf, "\x1b[38;5;"...)
		} else {
			buf = append(buf, "\x1b[48;5;"...)
		}
		buf = strconv.AppendInt(buf, int64(c.Index), 10)
		return append(buf, 'm')
	case ColorRGB:
		if fg {
			buf = append(buf, "\x1b[38;2;"...)
		} else {
			buf = append(buf, "\x1b[48;2;"...)
		}
		buf = strconv.AppendInt(buf, int64(c.R), 10)
		buf = append(buf, ';')
		buf = strconv.AppendInt(buf, int64(c.G), 10)
		buf = append(buf, ';')
		buf = strconv.AppendInt(buf, int64(c.B), 10)
		return append(buf, 'm')
	}
	return buf
}

// appendSGRRow appends the SGR-optimized encoding of row, starting from
// cumulative state s0, to buf. It returns the extended buffer and the
// resulting terminal state (the state after the row's final cell).
func appendSGRRow(buf []byte, row []TerminalCell, s0 TerminalState) ([]byte, TerminalState) {
	state := s0
	for _, cell := range row {
		if cell.Content == "" {
			continue // continuation half of a wide glyph
		}
		target := TerminalState{Foreground: cell.Foreground, Background: cell.Background, Attributes: cell.Attributes}
		buf = appendSGRTransition(buf, state, target)
		state = target
		buf = append(buf, cell.Content...)
	}
	return buf, state
}
