package runekit

import (
	"github.com/mattn/go-runewidth"
)

// Attribute represents a set of text styling attributes that can be combined.
type Attribute uint8

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrStrikethrough
)

// Has returns true if the attribute set contains attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// With returns a new attribute set with attr added.
func (a Attribute) With(attr Attribute) Attribute {
	return a | attr
}

// Without returns a new attribute set with attr removed.
func (a Attribute) Without(attr Attribute) Attribute {
	return a &^ attr
}

// ColorMode selects how a Color's value should be interpreted.
type ColorMode uint8

const (
	ColorDefault ColorMode = iota // terminal default, no SGR color code
	Color16                      // basic/bright 16 colors (0-15)
	Color256                    // 256-color palette (0-255)
	ColorRGB                    // 24-bit true color
)

// Color is an optional terminal color: either an 8-bit palette index
// (Color16/Color256) or a 24-bit RGB triple (ColorRGB).
type Color struct {
	Mode    ColorMode
	R, G, B uint8
	Index   uint8
}

// DefaultColor returns the terminal's default (unset) color.
func DefaultColor() Color { return Color{Mode: ColorDefault} }

// BasicColor returns one of the 16 basic terminal colors (0-15).
func BasicColor(index uint8) Color { return Color{Mode: Color16, Index: index} }

// PaletteColor returns one of the 256 palette colors (0-255).
func PaletteColor(index uint8) Color { return Color{Mode: Color256, Index: index} }

// RGB returns a 24-bit true color.
func RGB(r, g, b uint8) Color { return Color{Mode: ColorRGB, R: r, G: g, B: b} }

// Equal reports whether two colors are identical.
func (c Color) Equal(other Color) bool { return c == other }

// Style is an SGR-relevant style: foreground/background color plus a set of
// text attributes. Styles are value types and comparable with ==.
type Style struct {
	FG   Color
	BG   Color
	Attr Attribute
}

// DefaultStyle returns a style with default colors and no attributes.
func DefaultStyle() Style {
	return Style{FG: DefaultColor(), BG: DefaultColor()}
}

// Equal reports whether two styles are identical.
func (s Style) Equal(other Style) bool { return s == other }

// Foreground returns a copy of s with the foreground color set.
func (s Style) Foreground(c Color) Style { s.FG = c; return s }

// Background returns a copy of s with the background color set.
func (s Style) Background(c Color) Style { s.BG = c; return s }

// Bold returns a copy of s with bold enabled.
func (s Style) Bold() Style { s.Attr = s.Attr.With(AttrBold); return s }

// Dim returns a copy of s with dim enabled.
func (s Style) Dim() Style { s.Attr = s.Attr.With(AttrDim); return s }

// Italic returns a copy of s with italic enabled.
func (s Style) Italic() Style { s.Attr = s.Attr.With(AttrItalic); return s }

// Underline returns a copy of s with underline enabled.
func (s Style) Underline() Style { s.Attr = s.Attr.With(AttrUnderline); return s }

// Blink returns a copy of s with blink enabled.
func (s Style) Blink() Style { s.Attr = s.Attr.With(AttrBlink); return s }

// Reverse returns a copy of s with reverse video enabled.
func (s Style) Reverse() Style { s.Attr = s.Attr.With(AttrReverse); return s }

// Strikethrough returns a copy of s with strikethrough enabled.
func (s Style) Strikethrough() Style { s.Attr = s.Attr.With(AttrStrikethrough); return s }

// TerminalCell is a single grid position: a grapheme cluster, its optional
// foreground/background color, a set of attributes, and its derived display
// width. An empty Content represents the continuation half of a wide glyph,
// or a zero-width mark attached to the prior cell.
type TerminalCell struct {
	Content    string
	Foreground Color
	Background Color
	Attributes Attribute
	Width      int
}

// EmptyCell returns a single blank-space cell with default style.
func EmptyCell() TerminalCell {
	return TerminalCell{Content: " ", Foreground: DefaultColor(), Background: DefaultColor(), Width: 1}
}

// NewCell builds a cell from its grapheme content and style, deriving Width
// from content via Unicode width rules.
func NewCell(content string, style Style) TerminalCell {
	return TerminalCell{
		Content:    content,
		Foreground: style.FG,
		Background: style.BG,
		Attributes: style.Attr,
		Width:      displayWidth(content),
	}
}

// Equal reports whether two cells are identical.
func (c TerminalCell) Equal(other TerminalCell) bool { return c == other }

// Style returns the cell's style as a Style value.
func (c TerminalCell) Style() Style {
	return Style{FG: c.Foreground, BG: c.Background, Attr: c.Attributes}
}

// continuationCell is the zero-width placeholder occupying the second column
// of a wide glyph.
func continuationCell(style Style) TerminalCell {
	return TerminalCell{Content: "", Foreground: style.FG, Background: style.BG, Attributes: style.Attr, Width: 0}
}

// displayWidth returns the terminal column width of a grapheme cluster: 0
// for empty/zero-width content, 1 or 2 for ordinary and wide glyphs.
func displayWidth(content string) int {
	if content == "" {
		return 0
	}
	w := runewidth.StringWidth(content)
	if w < 0 {
		return 0
	}
	if w > 2 {
		return 2
	}
	return w
}
