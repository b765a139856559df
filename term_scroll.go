package wtmux

// SetMargins sets the scroll region (DECSTBM). Parameters are 0-based
// inclusive rows; invalid ranges are silently clamped. The cursor homes
// per the DEC contract.
func (t *Term) SetMargins(top, bottom int) {
	if bottom <= 0 || bottom >= t.rows {
		bottom = t.rows - 1
	}
	if top < 0 {
		top = 0
	}
	if top >= bottom {
		// A degenerate region resets to the full screen.
		top = 0
		bottom = t.rows - 1
	}
	t.scrollTop = top
	t.scrollBottom = bottom
	t.SetCursor(0, 0)
}

// Margins returns the scroll region as 0-based inclusive rows.
func (t *Term) Margins() (top, bottom int) {
	return t.scrollTop, t.scrollBottom
}

// ScrollUp scrolls the region up n rows (SU). Rows leaving the top are
// evicted into scrollback only when the region spans the full screen
// and the primary grid is active.
func (t *Term) ScrollUp(n int) {
	if n < 1 {
		n = 1
	}
	t.scrollUpRegion(n)
}

// ScrollDown scrolls the region down n rows, filling the top with
// blanks (SD).
func (t *Term) ScrollDown(n int) {
	if n < 1 {
		n = 1
	}
	t.scrollDownRegion(n)
}

func (t *Term) scrollUpRegion(n int) {
	span := t.scrollBottom - t.scrollTop + 1
	if n > span {
		n = span
	}
	lines := t.active.lines
	fullScreen := t.scrollTop == 0 && t.scrollBottom == t.rows-1
	for i := 0; i < n; i++ {
		if fullScreen && !t.modes.AltScreen {
			t.pushScrollback(lines[t.scrollTop])
		}
		copy(lines[t.scrollTop:t.scrollBottom], lines[t.scrollTop+1:t.scrollBottom+1])
		lines[t.scrollBottom] = t.eraseLine()
	}
	t.markRegionDirty(t.scrollTop, t.scrollBottom)
}

func (t *Term) scrollDownRegion(n int) {
	span := t.scrollBottom - t.scrollTop + 1
	if n > span {
		n = span
	}
	lines := t.active.lines
	for i := 0; i < n; i++ {
		copy2down(lines, t.scrollTop, t.scrollBottom)
		lines[t.scrollTop] = t.eraseLine()
	}
	t.markRegionDirty(t.scrollTop, t.scrollBottom)
}

func copy2down(lines [][]Cell, top, bottom int) {
	for y := bottom; y > top; y-- {
		lines[y] = lines[y-1]
	}
}

// pushScrollback appends an evicted row to the scrollback FIFO,
// dropping the oldest row when the cap is reached.
func (t *Term) pushScrollback(line []Cell) {
	if t.maxScrollback <= 0 {
		return
	}
	if len(t.scrollback) >= t.maxScrollback {
		t.scrollback = t.scrollback[1:]
		t.evicted++
	}
	t.scrollback = append(t.scrollback, line)
	// Keep a scrolled view anchored on the same content.
	if t.viewOffset > 0 && t.viewOffset < len(t.scrollback) {
		t.viewOffset++
	}
}

// ClearScrollback drops all scrollback rows.
func (t *Term) ClearScrollback() {
	t.scrollback = nil
	t.viewOffset = 0
}

// ViewOffset returns the wheel-scroll offset into scrollback;
// 0 means the live view.
func (t *Term) ViewOffset() int {
	return t.viewOffset
}

// ScrollView moves the wheel-scroll view by delta rows (positive =
// further into history) and returns true if the offset changed.
func (t *Term) ScrollView(delta int) bool {
	if t.modes.AltScreen {
		return false
	}
	off := t.viewOffset + delta
	if off < 0 {
		off = 0
	}
	if off > len(t.scrollback) {
		off = len(t.scrollback)
	}
	if off == t.viewOffset {
		return false
	}
	t.viewOffset = off
	t.markAllDirty()
	return true
}

// ScrollToLive returns the view to the live screen.
func (t *Term) ScrollToLive() {
	if t.viewOffset != 0 {
		t.viewOffset = 0
		t.markAllDirty()
	}
}

// ViewLine returns the cells of a visible row under the current view
// offset: rows from scrollback when scrolled, live rows otherwise.
func (t *Term) ViewLine(y int) []Cell {
	if t.viewOffset == 0 || t.modes.AltScreen {
		return t.Line(y)
	}
	idx := len(t.scrollback) - t.viewOffset + y
	if idx < len(t.scrollback) {
		if idx < 0 {
			return nil
		}
		return t.scrollback[idx]
	}
	return t.Line(idx - len(t.scrollback))
}
