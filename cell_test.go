package runekit

import "testing"

func TestStyleBuilders(t *testing.T) {
	s := DefaultStyle().Bold().Underline().Foreground(RGB(10, 20, 30))
	if !s.Attr.Has(AttrBold) || !s.Attr.Has(AttrUnderline) {
		t.Fatalf("expected bold+underline, got %v", s.Attr)
	}
	if s.Attr.Has(AttrItalic) {
		t.Fatalf("did not expect italic")
	}
	if !s.FG.Equal(RGB(10, 20, 30)) {
		t.Fatalf("foreground not applied: %+v", s.FG)
	}
}

func TestAttributeWithWithout(t *testing.T) {
	a := AttrNone.With(AttrBold).With(AttrDim)
	if !a.Has(AttrBold) || !a.Has(AttrDim) {
		t.Fatalf("expected bold+dim set, got %v", a)
	}
	a = a.Without(AttrBold)
	if a.Has(AttrBold) {
		t.Fatalf("bold should have been removed")
	}
	if !a.Has(AttrDim) {
		t.Fatalf("dim should remain")
	}
}

func TestDisplayWidth(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"a", 1},
		{"世", 2},
		{"界", 2},
	}
	for _, c := range cases {
		if got := displayWidth(c.content); got != c.want {
			t.Errorf("displayWidth(%q) = %d, want %d", c.content, got, c.want)
		}
	}
}

func TestNewCellDerivesWidth(t *testing.T) {
	c := NewCell("世", DefaultStyle())
	if c.Width != 2 {
		t.Fatalf("want width 2, got %d", c.Width)
	}
	if c.Content != "世" {
		t.Fatalf("content mismatch: %q", c.Content)
	}
}

func TestContinuationCellIsZeroWidth(t *testing.T) {
	c := continuationCell(DefaultStyle())
	if c.Content != "" || c.Width != 0 {
		t.Fatalf("continuation cell should be empty/zero-width, got %+v", c)
	}
}

func TestColorEqual(t *testing.T) {
	if !DefaultColor().Equal(DefaultColor()) {
		t.Fatal("default colors should be equal")
	}
	if RGB(1, 2, 3).Equal(RGB(1, 2, 4)) {
		t.Fatal("different RGB colors should not be equal")
	}
	if BasicColor(3).Equal(PaletteColor(3)) {
		t.Fatal("colors in different modes with same index should not be equal")
	}
}
