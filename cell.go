package wtmux

import (
	"github.com/mattn/go-runewidth"
)

// Cell represents a single character cell in a terminal grid.
// A width-2 cell occupies two columns; the column after it holds a
// continuation placeholder that must never be addressed directly.
type Cell struct {
	Char          rune   // Base character (0 for continuation cells)
	Combining     string // Combining marks attached to the base character
	Width         int    // Display width: 1 or 2; 0 for continuation cells
	Foreground    Color
	Background    Color
	Bold          bool
	Faint         bool
	Italic        bool
	Underline     bool
	Blink         bool
	Reverse       bool
	Hidden        bool
	Strikethrough bool
	Hyperlink     string // OSC 8 hyperlink URI, empty if none
	Dirty         bool   // Set on modification, cleared by the renderer
}

// String returns the full character including any combining marks.
func (c *Cell) String() string {
	if c.Combining == "" {
		return string(c.Char)
	}
	return string(c.Char) + c.Combining
}

// IsContinuation returns true if this cell is the second column of a
// width-2 character.
func (c *Cell) IsContinuation() bool {
	return c.Width == 0 && c.Char == 0
}

// SameDisplay reports whether two cells render identically. The dirty
// flag is excluded from the comparison.
func (c *Cell) SameDisplay(o *Cell) bool {
	return c.Char == o.Char &&
		c.Combining == o.Combining &&
		c.Width == o.Width &&
		c.Foreground == o.Foreground &&
		c.Background == o.Background &&
		c.Bold == o.Bold &&
		c.Faint == o.Faint &&
		c.Italic == o.Italic &&
		c.Underline == o.Underline &&
		c.Blink == o.Blink &&
		c.Reverse == o.Reverse &&
		c.Hidden == o.Hidden &&
		c.Strikethrough == o.Strikethrough
}

// RuneDisplayWidth returns the display width of a rune in cells.
// This is the single width authority for the whole program: the terminal
// state and the renderer must agree on widths or the grid silently
// corrupts on CJK output.
func RuneDisplayWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// IsCombiningMark returns true if the rune occupies no cell of its own
// and attaches to the preceding base character.
func IsCombiningMark(r rune) bool {
	if r == 0x200C || r == 0x200D {
		// Zero-width joiner and non-joiner
		return true
	}
	return r >= 0x20 && runewidth.RuneWidth(r) == 0
}

// EmptyCell returns an empty cell with default attributes.
func EmptyCell() Cell {
	return Cell{
		Char:       ' ',
		Width:      1,
		Foreground: DefaultForeground,
		Background: DefaultBackground,
	}
}

// continuationCell returns the placeholder stored after a width-2 cell.
func continuationCell(fg, bg Color) Cell {
	return Cell{Width: 0, Foreground: fg, Background: bg}
}
