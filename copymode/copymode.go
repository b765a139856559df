// Package copymode implements vim-like scrollback navigation, text
// selection, and search over a pane's terminal state. The copy-mode
// cursor is an overlay independent of the child cursor; the pane keeps
// receiving output while the mode is active.
package copymode

import (
	"strconv"
	"strings"
	"unicode"

	wtmux "github.com/phroun/wtmux"
)

// State is the copy-mode substate. The inactive state is represented
// by the absence of a Mode on the pane.
type State int

const (
	StateNavigate State = iota
	StateSelecting
	StateSearchPrompt
	StateSearchResults
)

// Match is one search hit: [X0, X1) on an absolute row.
type Match struct {
	Row    int
	X0, X1 int
}

// Mode is the per-pane copy-mode state: a read-only cursor over
// (scrollback ∪ visible grid) with a selection anchor.
type Mode struct {
	term *wtmux.Term

	State State

	// Cursor position: column and absolute row (0 = oldest scrollback).
	CursorX   int
	CursorRow int

	anchorX   int
	anchorRow int

	// ScrollOffset is rows scrolled back from the live bottom.
	ScrollOffset int

	Query         string
	searchForward bool
	matches       []Match
	current       int
}

// Enter starts copy mode positioned at the pane's current cursor.
func Enter(term *wtmux.Term) *Mode {
	x, y := term.Cursor()
	return &Mode{
		term:      term,
		State:     StateNavigate,
		CursorX:   x,
		CursorRow: term.ScrollbackLen() + y,
	}
}

func (m *Mode) maxRow() int {
	return m.term.TotalLines() - 1
}

func (m *Mode) lineWidth() int {
	cols, _ := m.term.Size()
	return cols
}

func (m *Mode) pageSize() int {
	_, rows := m.term.Size()
	return rows
}

// adjustScroll keeps the cursor inside the visible window.
func (m *Mode) adjustScroll() {
	rows := m.pageSize()
	bottom := m.maxRow()
	visStart := bottom - m.ScrollOffset - rows + 1
	visEnd := bottom - m.ScrollOffset
	if m.CursorRow < visStart {
		m.ScrollOffset = bottom - m.CursorRow - rows + 1
	} else if m.CursorRow > visEnd {
		m.ScrollOffset = bottom - m.CursorRow
	}
	if m.ScrollOffset < 0 {
		m.ScrollOffset = 0
	}
}

// VisibleRow converts an absolute row to a pane-local row under the
// current scroll, reporting whether it is on screen.
func (m *Mode) VisibleRow(abs int) (int, bool) {
	rows := m.pageSize()
	bottom := m.maxRow()
	visStart := bottom - m.ScrollOffset - rows + 1
	if visStart < 0 {
		visStart = 0
	}
	visEnd := bottom - m.ScrollOffset
	if abs < visStart || abs > visEnd {
		return 0, false
	}
	return abs - visStart, true
}

// AbsoluteRowAt converts a pane-local row to an absolute row under the
// current scroll.
func (m *Mode) AbsoluteRowAt(local int) int {
	rows := m.pageSize()
	bottom := m.maxRow()
	visStart := bottom - m.ScrollOffset - rows + 1
	if visStart < 0 {
		visStart = 0
	}
	return visStart + local
}

// Cursor motions

func (m *Mode) CursorUp() {
	if m.CursorRow > 0 {
		m.CursorRow--
		m.adjustScroll()
	}
}

func (m *Mode) CursorDown() {
	if m.CursorRow < m.maxRow() {
		m.CursorRow++
		m.adjustScroll()
	}
}

func (m *Mode) CursorLeft() {
	if m.CursorX > 0 {
		m.CursorX--
	} else if m.CursorRow > 0 {
		m.CursorRow--
		m.CursorX = m.lineWidth() - 1
		m.adjustScroll()
	}
}

func (m *Mode) CursorRight() {
	if m.CursorX+1 < m.lineWidth() {
		m.CursorX++
	} else if m.CursorRow < m.maxRow() {
		m.CursorRow++
		m.CursorX = 0
		m.adjustScroll()
	}
}

func (m *Mode) LineStart() { m.CursorX = 0 }

func (m *Mode) LineEnd() { m.CursorX = m.lineWidth() - 1 }

func (m *Mode) PageUp()   { m.moveRows(-m.pageSize()) }
func (m *Mode) PageDown() { m.moveRows(m.pageSize()) }

func (m *Mode) HalfPageUp()   { m.moveRows(-m.pageSize() / 2) }
func (m *Mode) HalfPageDown() { m.moveRows(m.pageSize() / 2) }

func (m *Mode) moveRows(delta int) {
	m.CursorRow += delta
	if m.CursorRow < 0 {
		m.CursorRow = 0
	}
	if m.CursorRow > m.maxRow() {
		m.CursorRow = m.maxRow()
	}
	m.adjustScroll()
}

func (m *Mode) GotoTop() {
	m.CursorRow = 0
	m.CursorX = 0
	m.adjustScroll()
}

func (m *Mode) GotoBottom() {
	m.CursorRow = m.maxRow()
	m.CursorX = 0
	m.adjustScroll()
}

// Selection

// ToggleSelection anchors or drops the selection at the cursor.
func (m *Mode) ToggleSelection() {
	if m.State == StateSelecting {
		m.State = StateNavigate
		return
	}
	m.anchorX = m.CursorX
	m.anchorRow = m.CursorRow
	m.State = StateSelecting
}

// Selecting reports whether a selection is live.
func (m *Mode) Selecting() bool {
	return m.State == StateSelecting
}

func (m *Mode) bounds() (fromRow, fromX, toRow, toX int) {
	if m.anchorRow < m.CursorRow || (m.anchorRow == m.CursorRow && m.anchorX <= m.CursorX) {
		return m.anchorRow, m.anchorX, m.CursorRow, m.CursorX
	}
	return m.CursorRow, m.CursorX, m.anchorRow, m.anchorX
}

// IsSelected reports whether an absolute cell is inside the selection.
func (m *Mode) IsSelected(row, x int) bool {
	if m.State != StateSelecting {
		return false
	}
	fromRow, fromX, toRow, toX := m.bounds()
	if row < fromRow || row > toRow {
		return false
	}
	if row == fromRow && row == toRow {
		return x >= fromX && x <= toX
	}
	if row == fromRow {
		return x >= fromX
	}
	if row == toRow {
		return x <= toX
	}
	return true
}

// Yank extracts the selected region: rows joined with newlines,
// trailing spaces trimmed per line. Returns false with no selection.
func (m *Mode) Yank() (string, bool) {
	if m.State != StateSelecting {
		return "", false
	}
	fromRow, fromX, toRow, toX := m.bounds()
	var lines []string
	for row := fromRow; row <= toRow; row++ {
		cells := m.term.AbsoluteLine(row)
		start, end := 0, len(cells)-1
		if row == fromRow {
			start = fromX
		}
		if row == toRow {
			end = toX
		}
		var sb strings.Builder
		for x := start; x <= end && x < len(cells); x++ {
			c := &cells[x]
			if c.IsContinuation() {
				continue
			}
			if c.Char == 0 {
				sb.WriteByte(' ')
			} else {
				sb.WriteString(c.String())
			}
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	m.State = StateNavigate
	return strings.Join(lines, "\n"), true
}

// Search

// StartSearch opens the search prompt in the given direction.
func (m *Mode) StartSearch(forward bool) {
	m.State = StateSearchPrompt
	m.searchForward = forward
	m.Query = ""
	m.matches = nil
}

// SearchInput appends a rune to the query.
func (m *Mode) SearchInput(r rune) {
	if m.State == StateSearchPrompt {
		m.Query += string(r)
	}
}

// SearchBackspace removes the last query rune.
func (m *Mode) SearchBackspace() {
	if m.State != StateSearchPrompt || m.Query == "" {
		return
	}
	rs := []rune(m.Query)
	m.Query = string(rs[:len(rs)-1])
}

// CancelSearch abandons the prompt.
func (m *Mode) CancelSearch() {
	m.State = StateNavigate
	m.Query = ""
}

// ExecuteSearch commits the query: all matches across the buffer are
// collected and the cursor jumps to the nearest one in the search
// direction. Matching is case-insensitive unless the query contains an
// uppercase rune.
func (m *Mode) ExecuteSearch() {
	m.matches = nil
	if m.Query == "" {
		m.State = StateNavigate
		return
	}
	m.State = StateSearchResults

	query := m.Query
	fold := !strings.ContainsFunc(query, unicode.IsUpper)
	if fold {
		query = strings.ToLower(query)
	}

	total := m.term.TotalLines()
	for row := 0; row < total; row++ {
		text := wtmux.LineText(m.term.AbsoluteLine(row))
		if fold {
			text = strings.ToLower(text)
		}
		start := 0
		for {
			pos := strings.Index(text[start:], query)
			if pos < 0 {
				break
			}
			x0 := start + pos
			m.matches = append(m.matches, Match{Row: row, X0: x0, X1: x0 + len(query)})
			start = x0 + 1
		}
	}

	if len(m.matches) > 0 {
		m.jumpToNearest()
	}
}

// jumpToNearest selects the first match at or past the cursor in the
// search direction, wrapping around.
func (m *Mode) jumpToNearest() {
	if m.searchForward {
		for i, mt := range m.matches {
			if mt.Row > m.CursorRow || (mt.Row == m.CursorRow && mt.X0 >= m.CursorX) {
				m.current = i
				m.jump()
				return
			}
		}
		m.current = 0
	} else {
		m.current = len(m.matches) - 1
		for i := len(m.matches) - 1; i >= 0; i-- {
			mt := m.matches[i]
			if mt.Row < m.CursorRow || (mt.Row == m.CursorRow && mt.X0 <= m.CursorX) {
				m.current = i
				break
			}
		}
	}
	m.jump()
}

// NextMatch steps to the following match in the search direction.
func (m *Mode) NextMatch() {
	if len(m.matches) == 0 {
		return
	}
	if m.searchForward {
		m.current = (m.current + 1) % len(m.matches)
	} else {
		m.current = (m.current - 1 + len(m.matches)) % len(m.matches)
	}
	m.jump()
}

// PrevMatch steps to the preceding match in the search direction.
func (m *Mode) PrevMatch() {
	if len(m.matches) == 0 {
		return
	}
	if m.searchForward {
		m.current = (m.current - 1 + len(m.matches)) % len(m.matches)
	} else {
		m.current = (m.current + 1) % len(m.matches)
	}
	m.jump()
}

func (m *Mode) jump() {
	mt := m.matches[m.current]
	m.CursorRow = mt.Row
	m.CursorX = mt.X0
	m.adjustScroll()
}

// IsMatch reports whether an absolute cell lies inside any match.
func (m *Mode) IsMatch(row, x int) bool {
	for _, mt := range m.matches {
		if mt.Row == row && x >= mt.X0 && x < mt.X1 {
			return true
		}
	}
	return false
}

// IsCurrentMatch reports whether an absolute cell lies inside the
// selected match.
func (m *Mode) IsCurrentMatch(row, x int) bool {
	if m.current >= len(m.matches) {
		return false
	}
	mt := m.matches[m.current]
	return mt.Row == row && x >= mt.X0 && x < mt.X1
}

// MatchCount returns how many matches the last search found.
func (m *Mode) MatchCount() int {
	return len(m.matches)
}

// Status renders the copy-mode status line fragment.
func (m *Mode) Status() string {
	switch {
	case m.State == StateSearchPrompt:
		prefix := "/"
		if !m.searchForward {
			prefix = "?"
		}
		return prefix + m.Query
	case len(m.matches) > 0:
		return "[" + strconv.Itoa(m.current+1) + "/" + strconv.Itoa(len(m.matches)) + "] " + m.Query
	case m.State == StateSearchResults && m.Query != "":
		return "pattern not found: " + m.Query
	default:
		return "copy"
	}
}
