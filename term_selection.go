package wtmux

// Host-side mouse selection over the visible grid, adapted from the
// selection tracking the GUI widget frontends use. Coordinates are
// pane-local 0-based cells.

// StartSelection anchors a selection at (x, y).
func (t *Term) StartSelection(x, y int) {
	t.selActive = true
	t.selStartX = clamp(x, 0, t.cols-1)
	t.selStartY = clamp(y, 0, t.rows-1)
	t.selEndX = t.selStartX
	t.selEndY = t.selStartY
	t.markAllDirty()
}

// UpdateSelection extends the selection to (x, y).
func (t *Term) UpdateSelection(x, y int) {
	if !t.selActive {
		return
	}
	t.selEndX = clamp(x, 0, t.cols-1)
	t.selEndY = clamp(y, 0, t.rows-1)
	t.markAllDirty()
}

// ClearSelection drops the selection.
func (t *Term) ClearSelection() {
	if t.selActive {
		t.selActive = false
		t.markAllDirty()
	}
}

// HasSelection reports whether a selection is active.
func (t *Term) HasSelection() bool {
	return t.selActive
}

// selectionBounds orders the selection endpoints top-left first.
func (t *Term) selectionBounds() (x0, y0, x1, y1 int) {
	x0, y0 = t.selStartX, t.selStartY
	x1, y1 = t.selEndX, t.selEndY
	if y1 < y0 || (y1 == y0 && x1 < x0) {
		x0, y0, x1, y1 = x1, y1, x0, y0
	}
	return
}

// IsSelected reports whether the visible cell at (x, y) lies inside
// the selection.
func (t *Term) IsSelected(x, y int) bool {
	if !t.selActive {
		return false
	}
	x0, y0, x1, y1 := t.selectionBounds()
	if y < y0 || y > y1 {
		return false
	}
	if y == y0 && y == y1 {
		return x >= x0 && x <= x1
	}
	if y == y0 {
		return x >= x0
	}
	if y == y1 {
		return x <= x1
	}
	return true
}

// SelectedText extracts the selected region as text, one line per row
// with trailing spaces trimmed.
func (t *Term) SelectedText() string {
	if !t.selActive {
		return ""
	}
	x0, y0, x1, y1 := t.selectionBounds()
	var out []byte
	for y := y0; y <= y1; y++ {
		line := t.Line(y)
		if line == nil {
			continue
		}
		start, end := 0, t.cols-1
		if y == y0 {
			start = x0
		}
		if y == y1 {
			end = x1
		}
		var row []rune
		for x := start; x <= end && x < len(line); x++ {
			c := &line[x]
			if c.IsContinuation() {
				continue
			}
			if c.Char == 0 {
				row = append(row, ' ')
			} else {
				row = append(row, []rune(c.String())...)
			}
		}
		out = append(out, []byte(trimTrailingSpaces(string(row)))...)
		if y < y1 {
			out = append(out, '\n')
		}
	}
	return string(out)
}

func trimTrailingSpaces(s string) string {
	end := len(s)
	for end > 0 && s[end-1] == ' ' {
		end--
	}
	return s[:end]
}
