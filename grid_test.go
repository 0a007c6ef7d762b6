package runekit

import (
	"reflect"
	"testing"
)

func TestNewGridFilledWithEmptyCells(t *testing.T) {
	g := NewGrid(3, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			c, ok := g.CellAt(y, x)
			if !ok {
				t.Fatalf("(%d,%d) should be in bounds", y, x)
			}
			if c != EmptyCell() {
				t.Fatalf("(%d,%d) = %+v, want empty cell", y, x, c)
			}
		}
	}
}

func TestCellAtOutOfBounds(t *testing.T) {
	g := NewGrid(2, 2)
	if _, ok := g.CellAt(-1, 0); ok {
		t.Fatal("negative row should be out of bounds")
	}
	if _, ok := g.CellAt(0, 5); ok {
		t.Fatal("col past width should be out of bounds")
	}
}

func TestSetCellAndChangedLines(t *testing.T) {
	a := NewGrid(4, 3)
	b := NewGrid(4, 3)
	if changed := a.ChangedLines(b); len(changed) != 0 {
		t.Fatalf("two fresh grids should have no changed lines, got %v", changed)
	}

	a.SetCell(1, 2, NewCell("x", DefaultStyle()))
	changed := a.ChangedLines(b)
	if !reflect.DeepEqual(changed, []int{1}) {
		t.Fatalf("expected only row 1 changed, got %v", changed)
	}
}

func TestChangedLinesNilPrevious(t *testing.T) {
	g := NewGrid(2, 3)
	changed := g.ChangedLines(nil)
	if !reflect.DeepEqual(changed, []int{0, 1, 2}) {
		t.Fatalf("nil previous should report every row changed, got %v", changed)
	}
}

func TestChangedLinesDimensionMismatch(t *testing.T) {
	a := NewGrid(3, 2)
	b := NewGrid(2, 3)
	a.SetRow(0, []TerminalCell{NewCell("a", DefaultStyle())})

	changed := a.ChangedLines(b)
	if len(changed) == 0 {
		t.Fatal("mismatched dimensions should still report differing rows")
	}
	// row 2 of b (out of range for a's height) must show up as changed.
	found := false
	for _, y := range changed {
		if y == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected row 2 (out of range in a) to be reported, got %v", changed)
	}
}

func TestSetRowPadsAndTruncates(t *testing.T) {
	g := NewGrid(3, 1)
	g.SetRow(0, []TerminalCell{NewCell("a", DefaultStyle())})
	row := g.GetRow(0)
	if row[0].Content != "a" || row[1] != EmptyCell() || row[2] != EmptyCell() {
		t.Fatalf("short row should pad with empty cells: %+v", row)
	}

	g.SetRow(0, []TerminalCell{
		NewCell("a", DefaultStyle()), NewCell("b", DefaultStyle()),
		NewCell("c", DefaultStyle()), NewCell("d", DefaultStyle()),
	})
	row = g.GetRow(0)
	if len(row) != 3 || row[2].Content != "c" {
		t.Fatalf("long row should truncate to grid width: %+v", row)
	}
}

func TestFillRegionClampsToBounds(t *testing.T) {
	g := NewGrid(3, 3)
	fill := NewCell("#", DefaultStyle())
	g.FillRegion(-1, -1, 10, 10, fill)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			c, _ := g.CellAt(y, x)
			if c != fill {
				t.Fatalf("(%d,%d) not filled: %+v", y, x, c)
			}
		}
	}
}

func TestClearResetsAllCells(t *testing.T) {
	g := NewGrid(2, 2)
	g.SetCell(0, 0, NewCell("x", DefaultStyle()))
	g.Clear()
	c, _ := g.CellAt(0, 0)
	if c != EmptyCell() {
		t.Fatalf("expected empty cell after Clear, got %+v", c)
	}
	if len(g.ChangedLines(NewGrid(2, 2))) != 0 {
		t.Fatal("cleared grid should hash-equal a fresh grid")
	}
}

func TestLinesAndGridFromLinesRoundTrip(t *testing.T) {
	lines := []string{"hello", "世界!"}
	g := GridFromLines(lines, 10, 2)
	got := g.Lines()
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0] != "hello     " {
		t.Fatalf("row 0 = %q", got[0])
	}
	if got[1] != "世界!     " {
		t.Fatalf("row 1 = %q", got[1])
	}
}

func TestGridFromLinesWideGlyphColumnAccounting(t *testing.T) {
	// "世" is width 2, "界" is width 2: two wide glyphs occupy exactly 4
	// columns (plus two continuation cells), not more.
	g := GridFromLines([]string{"世界"}, 4, 1)
	row := g.GetRow(0)
	if len(row) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(row))
	}
	if row[0].Content != "世" || row[1].Content != "" {
		t.Fatalf("expected glyph then continuation at 0,1: %+v", row[:2])
	}
	if row[2].Content != "界" || row[3].Content != "" {
		t.Fatalf("expected glyph then continuation at 2,3: %+v", row[2:])
	}
}

func TestGridFromLinesDropsWideGlyphCrossingEdge(t *testing.T) {
	// width 3 can't fit "ab世" (1+1+2=4 columns): the wide glyph is dropped.
	g := GridFromLines([]string{"ab世"}, 3, 1)
	row := g.GetRow(0)
	if row[0].Content != "a" || row[1].Content != "b" || row[2] != EmptyCell() {
		t.Fatalf("expected wide glyph dropped at edge, got %+v", row)
	}
}

func TestDirtyRectanglesOneRowPerChangedLine(t *testing.T) {
	a := NewGrid(5, 4)
	b := NewGrid(5, 4)
	a.SetCell(2, 0, NewCell("x", DefaultStyle()))
	rects := a.DirtyRectangles(b)
	if len(rects) != 1 || rects[0].Row != 2 || rects[0].Width != 5 || rects[0].Height != 1 {
		t.Fatalf("unexpected rects: %+v", rects)
	}
}
