package wtmux

// WriteChar inserts a printable character at the cursor, honoring
// autowrap and wide-character placement. Combining marks attach to the
// previously written base cell without advancing the cursor.
func (t *Term) WriteChar(r rune) {
	if IsCombiningMark(r) {
		t.attachCombining(r)
		return
	}

	width := RuneDisplayWidth(r)
	if width <= 0 {
		return
	}

	if t.pendingWrap {
		if t.modes.AutoWrap {
			t.wrapCursor()
		} else {
			t.pendingWrap = false
		}
	}

	// A wide character that does not fit at the end of the row either
	// wraps whole (autowrap on) or overwrites the last column in place.
	if width == 2 && t.cursorX == t.cols-1 {
		if t.modes.AutoWrap {
			t.clearCell(t.cursorX, t.cursorY)
			t.wrapCursor()
		} else {
			t.setCell(t.cursorX, t.cursorY, r, 1)
			return
		}
	}

	t.setCell(t.cursorX, t.cursorY, r, width)

	if t.cursorX+width >= t.cols {
		t.cursorX = t.cols - 1
		t.pendingWrap = true
	} else {
		t.cursorX += width
	}
}

// setCell writes a base character with the current pen, maintaining the
// continuation invariant on both the written cells and any wide
// neighbors they overwrite.
func (t *Term) setCell(x, y int, r rune, width int) {
	if x < 0 || x >= t.cols || y < 0 || y >= t.rows {
		return
	}
	line := t.active.lines[y]

	// Overwriting half of an existing wide character clears the whole
	// character so no orphan continuation remains.
	t.breakWideAt(line, x)
	if width == 2 && x+1 < t.cols {
		t.breakWideAt(line, x+1)
	}

	fg, bg := t.cur.fg, t.cur.bg
	line[x] = Cell{
		Char:          r,
		Width:         width,
		Foreground:    fg,
		Background:    bg,
		Bold:          t.cur.bold,
		Faint:         t.cur.faint,
		Italic:        t.cur.italic,
		Underline:     t.cur.underline,
		Blink:         t.cur.blink,
		Reverse:       t.cur.reverse,
		Hidden:        t.cur.hidden,
		Strikethrough: t.cur.strikethrough,
		Hyperlink:     t.cur.hyperlink,
		Dirty:         true,
	}
	if width == 2 && x+1 < t.cols {
		cont := continuationCell(fg, bg)
		cont.Dirty = true
		line[x+1] = cont
	}
	t.rowDirty[y] = true
}

// breakWideAt clears a wide character that covers column x, if any.
func (t *Term) breakWideAt(line []Cell, x int) {
	if x < 0 || x >= len(line) {
		return
	}
	if line[x].IsContinuation() && x > 0 && line[x-1].Width == 2 {
		line[x-1] = EmptyCell()
		line[x-1].Dirty = true
	}
	if line[x].Width == 2 && x+1 < len(line) && line[x+1].IsContinuation() {
		line[x+1] = EmptyCell()
		line[x+1].Dirty = true
	}
}

func (t *Term) clearCell(x, y int) {
	if x < 0 || x >= t.cols || y < 0 || y >= t.rows {
		return
	}
	line := t.active.lines[y]
	t.breakWideAt(line, x)
	line[x] = t.eraseCell()
	line[x].Dirty = true
	t.rowDirty[y] = true
}

// eraseCell is the fill used by erase operations: a blank with the
// current background but default other attributes.
func (t *Term) eraseCell() Cell {
	c := EmptyCell()
	c.Background = t.cur.bg
	return c
}

// attachCombining appends a combining mark to the most recently written
// base cell.
func (t *Term) attachCombining(r rune) {
	x, y := t.cursorX, t.cursorY
	if !t.pendingWrap {
		x--
	}
	if x < 0 {
		return
	}
	line := t.active.lines[y]
	if line[x].IsContinuation() && x > 0 {
		x--
	}
	if line[x].Char == 0 {
		return
	}
	line[x].Combining += string(r)
	line[x].Dirty = true
	t.rowDirty[y] = true
}

// wrapCursor moves to column 0 of the next row, scrolling if at the
// bottom margin.
func (t *Term) wrapCursor() {
	t.pendingWrap = false
	t.cursorX = 0
	if t.cursorY == t.scrollBottom {
		t.scrollUpRegion(1)
	} else if t.cursorY < t.rows-1 {
		t.cursorY++
	}
}

// LineFeed moves the cursor to the start of the next row, scrolling at
// the bottom margin (LF, VT, FF). Line feed always implies carriage
// return here: the hosted shells emit CRLF pairs and the bare-LF
// producers expect a fresh line, so the column resets unconditionally.
func (t *Term) LineFeed() {
	t.pendingWrap = false
	if t.cursorY == t.scrollBottom {
		t.scrollUpRegion(1)
	} else if t.cursorY < t.rows-1 {
		t.cursorY++
	}
	t.cursorX = 0
	t.rowDirty[t.cursorY] = true
}

// Index moves the cursor down one row without changing the column,
// scrolling at the bottom margin (IND).
func (t *Term) Index() {
	t.pendingWrap = false
	if t.cursorY == t.scrollBottom {
		t.scrollUpRegion(1)
	} else if t.cursorY < t.rows-1 {
		t.cursorY++
	}
}

// ReverseIndex moves the cursor up one row, scrolling down at the top
// margin (RI).
func (t *Term) ReverseIndex() {
	t.pendingWrap = false
	if t.cursorY == t.scrollTop {
		t.scrollDownRegion(1)
	} else if t.cursorY > 0 {
		t.cursorY--
	}
}

// CarriageReturn moves the cursor to column 0. The row is marked dirty
// even when the cursor is already there: shells redraw prompts with a
// bare CR and the repaint must not be skipped.
func (t *Term) CarriageReturn() {
	t.pendingWrap = false
	t.cursorX = 0
	t.rowDirty[t.cursorY] = true
}

// Backspace moves the cursor left one column, stopping at the margin.
func (t *Term) Backspace() {
	t.pendingWrap = false
	if t.cursorX > 0 {
		t.cursorX--
	}
}

// Tab advances the cursor to the next 8-column tab stop.
func (t *Term) Tab() {
	t.pendingWrap = false
	next := (t.cursorX/8 + 1) * 8
	if next >= t.cols {
		next = t.cols - 1
	}
	t.cursorX = next
}

// Bell is a no-op hook for BEL.
func (t *Term) Bell() {}

// FillAlignmentPattern fills the screen with 'E' (DECALN).
func (t *Term) FillAlignmentPattern() {
	t.scrollTop = 0
	t.scrollBottom = t.rows - 1
	saved := t.cur
	t.cur = defaultPen()
	for y := 0; y < t.rows; y++ {
		for x := 0; x < t.cols; x++ {
			t.setCell(x, y, 'E', 1)
		}
	}
	t.cur = saved
	t.cursorX, t.cursorY = 0, 0
	t.pendingWrap = false
}
