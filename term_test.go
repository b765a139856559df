package wtmux

import (
	"strings"
	"testing"
)

func TestAutowrapAtLastColumn(t *testing.T) {
	term := NewTerm(5, 3, 0)
	feed(t, term, "abcdef")
	if got := LineText(term.Line(0)); got != "abcde" {
		t.Errorf("row 0 = %q, want %q", got, "abcde")
	}
	if term.Line(1)[0].Char != 'f' {
		t.Errorf("row 1 cell 0 = %q, want 'f'", term.Line(1)[0].Char)
	}
}

func TestAutowrapDeferredAtEdge(t *testing.T) {
	// The cursor parks on the last column until the next print; a CR
	// at that point must not leave a phantom wrap.
	term := NewTerm(5, 3, 0)
	feed(t, term, "abcde\rX")
	if term.Line(0)[0].Char != 'X' {
		t.Errorf("row 0 cell 0 = %q, want 'X'", term.Line(0)[0].Char)
	}
	if _, y := term.Cursor(); y != 0 {
		t.Errorf("cursor row = %d, want 0", y)
	}
}

func TestWideCharWrapsWholeAtEdge(t *testing.T) {
	// A width-2 glyph at the last column wraps whole, never split.
	term := NewTerm(4, 3, 0)
	feed(t, term, "abc日")
	if !strings.HasPrefix(LineText(term.Line(0)), "abc") {
		t.Errorf("row 0 = %q, want abc prefix", LineText(term.Line(0)))
	}
	if term.Line(0)[3].Char == '日' {
		t.Error("wide char must not be split across the margin")
	}
	if term.Line(1)[0].Char != '日' || !term.Line(1)[1].IsContinuation() {
		t.Errorf("row 1 should start with the wrapped wide char, got %q", term.Line(1)[0].Char)
	}
}

func TestWideCharNoAutowrapReplacesInPlace(t *testing.T) {
	term := NewTerm(4, 3, 0)
	feed(t, term, "\x1b[?7labc日")
	if _, y := term.Cursor(); y != 0 {
		t.Errorf("cursor should stay on row 0 with autowrap off, got row %d", y)
	}
	if term.Line(0)[3].Char != '日' {
		t.Errorf("last column = %q, want narrow-rendered 日 in place", term.Line(0)[3].Char)
	}
}

func TestCarriageReturnMarksRowDirtyAtColumnZero(t *testing.T) {
	term := NewTerm(10, 3, 0)
	feed(t, term, "x\r")
	for y := 0; y < 3; y++ {
		term.ClearRowDirty(y)
	}
	// Cursor is already at column 0; a bare CR must still dirty the row.
	feed(t, term, "\r")
	dirty := term.DirtyRows()
	if len(dirty) != 1 || dirty[0] != 0 {
		t.Errorf("dirty rows after bare CR = %v, want [0]", dirty)
	}
}

func TestCombiningMarkAttaches(t *testing.T) {
	term := NewTerm(10, 3, 0)
	feed(t, term, "éx")
	c := term.Line(0)[0]
	if c.Char != 'e' || c.Combining != "\u0301" {
		t.Errorf("cell 0 = %q+%q, want e+combining acute", c.Char, c.Combining)
	}
	if term.Line(0)[1].Char != 'x' {
		t.Error("combining mark must not advance the cursor")
	}
}

func TestEraseOpsKeepCursor(t *testing.T) {
	term := NewTerm(10, 3, 0)
	feed(t, term, "abcdefgh\x1b[2;3H")
	x0, y0 := term.Cursor()
	feed(t, term, "\x1b[J\x1b[K\x1b[2J")
	x1, y1 := term.Cursor()
	if x0 != x1 || y0 != y1 {
		t.Errorf("ED/EL moved the cursor: (%d,%d) -> (%d,%d)", x0, y0, x1, y1)
	}
}

func TestEraseLineVariants(t *testing.T) {
	term := NewTerm(8, 2, 0)
	feed(t, term, "abcdefgh\x1b[1;4H\x1b[1K")
	if got := LineText(term.Line(0)); got != "    efgh" {
		t.Errorf("EL 1 = %q, want %q", got, "    efgh")
	}
	feed(t, term, "\x1b[1;4H\x1b[0K")
	if got := LineText(term.Line(0)); got != "        " {
		t.Errorf("EL 0 = %q, want all blank", got)
	}
}

func TestInsertDeleteChars(t *testing.T) {
	term := NewTerm(8, 2, 0)
	feed(t, term, "abcdef\x1b[1;2H\x1b[2@")
	if got := LineText(term.Line(0)); got != "a  bcdef" {
		t.Errorf("ICH = %q, want %q", got, "a  bcdef")
	}
	feed(t, term, "\x1b[1;2H\x1b[2P")
	if got := LineText(term.Line(0)); got != "abcdef  " {
		t.Errorf("DCH = %q, want %q", got, "abcdef  ")
	}
}

func TestInsertDeleteLinesWithinRegion(t *testing.T) {
	term := NewTerm(4, 5, 0)
	feed(t, term, "aa\r\nbb\r\ncc\r\ndd\r\nee")
	feed(t, term, "\x1b[2;4r\x1b[2;1H\x1b[1L")
	if LineText(term.Line(1)) != "    " {
		t.Errorf("IL should blank row 1, got %q", LineText(term.Line(1)))
	}
	if got := LineText(term.Line(2)); got != "bb  " {
		t.Errorf("IL should shift row down, got %q", got)
	}
	if got := LineText(term.Line(4)); got != "ee  " {
		t.Errorf("IL must not disturb rows below the region, got %q", got)
	}
	feed(t, term, "\x1b[2;1H\x1b[1M")
	if got := LineText(term.Line(1)); got != "bb  " {
		t.Errorf("DL should pull rows up, got %q", got)
	}
}

func TestScrollRegionEviction(t *testing.T) {
	term := NewTerm(4, 3, 100)
	feed(t, term, "aa\r\nbb\r\ncc")
	// Full-screen region: scrolling evicts into scrollback.
	feed(t, term, "\x1b[1S")
	if term.ScrollbackLen() != 1 {
		t.Fatalf("scrollback = %d, want 1", term.ScrollbackLen())
	}
	if got := LineText(term.AbsoluteLine(0)); got != "aa  " {
		t.Errorf("evicted row = %q, want %q", got, "aa  ")
	}
	// Partial region: no eviction.
	feed(t, term, "\x1b[1;2r\x1b[1S")
	if term.ScrollbackLen() != 1 {
		t.Errorf("partial-region scroll must not evict, scrollback = %d", term.ScrollbackLen())
	}
}

func TestAlternateScreenHasNoScrollback(t *testing.T) {
	term := NewTerm(4, 2, 100)
	feed(t, term, "\x1b[?1049h")
	feed(t, term, "1\r\n2\r\n3\r\n4\r\n5")
	if term.ScrollbackLen() != 0 {
		t.Errorf("alternate screen fed scrollback: %d rows", term.ScrollbackLen())
	}
}

func TestScrollbackCapFIFO(t *testing.T) {
	term := NewTerm(4, 2, 3)
	for i := 0; i < 8; i++ {
		feed(t, term, string(rune('a'+i))+"\r\n")
	}
	if term.ScrollbackLen() != 3 {
		t.Fatalf("scrollback = %d, want cap 3", term.ScrollbackLen())
	}
	// Strictly FIFO: the oldest retained rows are the most recent
	// evictions in order.
	first := LineText(term.AbsoluteLine(0))
	second := LineText(term.AbsoluteLine(1))
	if first[0] >= second[0] {
		t.Errorf("eviction order broken: %q then %q", first, second)
	}
}

func TestDECSTBMClamping(t *testing.T) {
	term := NewTerm(10, 5, 0)
	feed(t, term, "\x1b[4;99r")
	top, bottom := term.Margins()
	if top != 3 || bottom != 4 {
		t.Errorf("margins = (%d,%d), want (3,4)", top, bottom)
	}
	// Degenerate region resets to full screen.
	feed(t, term, "\x1b[5;2r")
	top, bottom = term.Margins()
	if top != 0 || bottom != 4 {
		t.Errorf("invalid range should reset margins, got (%d,%d)", top, bottom)
	}
}

func TestOriginMode(t *testing.T) {
	term := NewTerm(10, 10, 0)
	feed(t, term, "\x1b[3;8r\x1b[?6h\x1b[1;1H")
	if _, y := term.Cursor(); y != 2 {
		t.Errorf("origin-mode home row = %d, want region top 2", y)
	}
	feed(t, term, "\x1b[99;1H")
	if _, y := term.Cursor(); y != 7 {
		t.Errorf("origin-mode CUP clamps to region bottom, got %d", y)
	}
}

func TestResizePreservesContent(t *testing.T) {
	term := NewTerm(10, 4, 0)
	feed(t, term, "hello")
	term.Resize(20, 6)
	if got := LineText(term.Line(0))[:5]; got != "hello" {
		t.Errorf("content after grow = %q, want hello", got)
	}
	term.Resize(3, 2)
	if got := LineText(term.Line(0)); got != "hel" {
		t.Errorf("content after shrink = %q, want hel", got)
	}
}

func TestResizeRepairsWideEdge(t *testing.T) {
	term := NewTerm(6, 2, 0)
	feed(t, term, "ab日")
	term.Resize(3, 2)
	line := term.Line(0)
	if line[2].Width == 2 {
		t.Error("resize must not leave a wide cell hanging off the right edge")
	}
	for x, c := range line {
		if c.IsContinuation() && (x == 0 || line[x-1].Width != 2) {
			t.Errorf("orphan continuation at %d", x)
		}
	}
}

func TestGridInvariants(t *testing.T) {
	term := NewTerm(12, 5, 50)
	feed(t, term, "日本語テスト\r\nmixed 文字 here\x1b[2;3H\x1b[1@\x1b[1P")
	_, rows := term.Size()
	cols, _ := term.Size()
	for y := 0; y < rows; y++ {
		line := term.Line(y)
		if len(line) != cols {
			t.Fatalf("row %d has %d cells, want %d", y, len(line), cols)
		}
		for x, c := range line {
			if c.Width == 2 {
				if x+1 >= cols || !line[x+1].IsContinuation() {
					t.Errorf("wide cell at (%d,%d) lacks continuation", x, y)
				}
			}
			if c.IsContinuation() && (x == 0 || line[x-1].Width != 2) {
				t.Errorf("continuation at (%d,%d) without wide predecessor", x, y)
			}
		}
	}
}

func TestSelectionExtract(t *testing.T) {
	term := NewTerm(10, 3, 0)
	feed(t, term, "hello    \r\nworld")
	term.StartSelection(0, 0)
	term.UpdateSelection(4, 1)
	got := term.SelectedText()
	want := "hello\nworld"
	if got != want {
		t.Errorf("selection = %q, want %q", got, want)
	}
}

func TestViewScrollAnchoring(t *testing.T) {
	term := NewTerm(4, 2, 10)
	feed(t, term, "a\r\nb\r\nc\r\nd")
	if !term.ScrollView(2) {
		t.Fatal("scroll into scrollback should succeed")
	}
	top := LineText(term.ViewLine(0))
	feed(t, term, "\r\ne")
	if LineText(term.ViewLine(0)) != top {
		t.Errorf("scrolled view should stay anchored while output arrives")
	}
	term.ScrollToLive()
	if term.ViewOffset() != 0 {
		t.Error("ScrollToLive should reset the offset")
	}
}

func TestSaveRestoreCursorPen(t *testing.T) {
	term := NewTerm(10, 4, 0)
	feed(t, term, "\x1b[1;31m\x1b[2;3H\x1b7\x1b[0m\x1b[1;1H\x1b8X")
	c := term.Line(1)[2]
	if c.Char != 'X' {
		t.Fatalf("restored cursor should write at (2,1), got %q", c.Char)
	}
	if !c.Bold || c.Foreground != StandardColor(1) {
		t.Error("DECRC should restore the saved pen")
	}
}
