package wtmux

// CursorShape is the rendered cursor form set by DECSCUSR.
type CursorShape int

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)

// Modes records the DECSET/DECRST state of a terminal.
type Modes struct {
	CursorVisible   bool // DECTCEM (25)
	AutoWrap        bool // DECAWM (7)
	Origin          bool // DECOM (6)
	AppCursor       bool // DECCKM (1)
	AltScreen       bool // 1049 (and legacy 47/1047/1048)
	BracketedPaste  bool // 2004
	MouseClick      bool // 1000
	MouseDrag       bool // 1002
	MouseMotion     bool // 1003
	MouseSGR        bool // 1006
	MouseURXVT      bool // 1015
	SyncUpdate      bool // 2026
	LinefeedNewline bool // LNM (ANSI mode 20)
	CursorShape     CursorShape
	CursorBlink     bool
}

// MouseEnabled returns true iff any mouse tracking mode is set.
func (m Modes) MouseEnabled() bool {
	return m.MouseClick || m.MouseDrag || m.MouseMotion
}

// pen holds the attributes applied to newly written cells.
type pen struct {
	fg, bg        Color
	bold          bool
	faint         bool
	italic        bool
	underline     bool
	blink         bool
	reverse       bool
	hidden        bool
	strikethrough bool
	hyperlink     string
}

func defaultPen() pen {
	return pen{fg: DefaultForeground, bg: DefaultBackground}
}

// savedCursor is the DECSC / alternate-screen save slot. Each saved
// attribute is distinct: cursor position, pen, and origin mode.
type savedCursor struct {
	x, y   int
	pen    pen
	origin bool
}

// grid is one screen of cells. The primary and alternate screens each
// have their own grid and save slot; only the primary feeds scrollback.
type grid struct {
	lines [][]Cell
	saved savedCursor
}

func newGrid(cols, rows int) *grid {
	g := &grid{lines: make([][]Cell, rows)}
	for i := range g.lines {
		g.lines[i] = emptyLine(cols)
	}
	return g
}

func emptyLine(cols int) []Cell {
	line := make([]Cell, cols)
	for i := range line {
		line[i] = EmptyCell()
	}
	return line
}

// Term is the terminal screen state for one pane. It implements the
// parser's dispatch surface and is read by the renderer and copy mode.
//
// Term is confined to the event-loop goroutine: the parser mutates it
// and the renderer reads it from the same thread, so it carries no lock.
type Term struct {
	cols, rows int

	primary *grid
	alt     *grid
	active  *grid

	cursorX, cursorY int
	pendingWrap      bool

	// Scroll region, inclusive rows. Reset to full screen on resize,
	// grid switch, and DECSTBM without parameters.
	scrollTop    int
	scrollBottom int

	cur   pen
	modes Modes

	scrollback    [][]Cell
	maxScrollback int

	// View offset into scrollback for wheel scrolling: 0 = live view.
	viewOffset int

	title string

	// OSC 133 semantic prompt marks, recorded by absolute line index.
	promptMarks map[int]struct{}
	evicted     int // Total lines ever evicted from scrollback front

	// Host-side mouse selection over the visible grid.
	selActive            bool
	selStartX, selStartY int
	selEndX, selEndY     int

	rowDirty []bool

	// OnTitle is invoked when the child sets the window title.
	OnTitle func(string)
	// OnClipboard is invoked for OSC 52 clipboard writes from the child.
	OnClipboard func(string)
}

// NewTerm creates a terminal state of the given size with the given
// scrollback cap (rows; primary grid only).
func NewTerm(cols, rows, maxScrollback int) *Term {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	t := &Term{
		cols:          cols,
		rows:          rows,
		primary:       newGrid(cols, rows),
		alt:           newGrid(cols, rows),
		cur:           defaultPen(),
		maxScrollback: maxScrollback,
		scrollBottom:  rows - 1,
		promptMarks:   make(map[int]struct{}),
		rowDirty:      make([]bool, rows),
	}
	t.active = t.primary
	t.modes.CursorVisible = true
	t.modes.AutoWrap = true
	t.modes.CursorBlink = true
	t.markAllDirty()
	return t
}

// Size returns the grid dimensions.
func (t *Term) Size() (cols, rows int) {
	return t.cols, t.rows
}

// Cursor returns the cursor position, clamped to the grid.
func (t *Term) Cursor() (x, y int) {
	return t.cursorX, t.cursorY
}

// Modes returns a copy of the current mode flags.
func (t *Term) Modes() Modes {
	return t.modes
}

// Title returns the window title set via OSC 0/2.
func (t *Term) Title() string {
	return t.title
}

// UsingAlternate returns true while the alternate screen is active.
func (t *Term) UsingAlternate() bool {
	return t.modes.AltScreen
}

// Line returns the cells of a visible row. The slice is live state;
// callers must not hold it across mutations.
func (t *Term) Line(y int) []Cell {
	if y < 0 || y >= t.rows {
		return nil
	}
	return t.active.lines[y]
}

// ScrollbackLen returns the number of rows held in scrollback.
func (t *Term) ScrollbackLen() int {
	return len(t.scrollback)
}

// TotalLines returns scrollback length plus visible rows, the address
// space used by copy mode. Only the primary grid has scrollback.
func (t *Term) TotalLines() int {
	if t.modes.AltScreen {
		return t.rows
	}
	return len(t.scrollback) + t.rows
}

// AbsoluteLine returns the cells at an absolute index into
// (scrollback ∪ visible grid), oldest first.
func (t *Term) AbsoluteLine(i int) []Cell {
	if t.modes.AltScreen {
		return t.Line(i)
	}
	if i < 0 {
		return nil
	}
	if i < len(t.scrollback) {
		return t.scrollback[i]
	}
	return t.Line(i - len(t.scrollback))
}

// LineText flattens a row to its plain text with trailing spaces kept.
func LineText(line []Cell) string {
	var out []rune
	for i := range line {
		c := &line[i]
		if c.IsContinuation() {
			continue
		}
		if c.Char == 0 {
			out = append(out, ' ')
			continue
		}
		out = append(out, c.Char)
		for _, r := range c.Combining {
			out = append(out, r)
		}
	}
	return string(out)
}

// markDirty flags one cell and its row as needing a repaint.
func (t *Term) markDirty(x, y int) {
	if y < 0 || y >= t.rows || x < 0 || x >= t.cols {
		return
	}
	t.active.lines[y][x].Dirty = true
	t.rowDirty[y] = true
}

func (t *Term) markRowDirty(y int) {
	if y < 0 || y >= t.rows {
		return
	}
	line := t.active.lines[y]
	for i := range line {
		line[i].Dirty = true
	}
	t.rowDirty[y] = true
}

func (t *Term) markAllDirty() {
	for y := 0; y < t.rows; y++ {
		t.markRowDirty(y)
	}
}

// DirtyRows returns the indices of rows touched since the last clear.
func (t *Term) DirtyRows() []int {
	var rows []int
	for y, d := range t.rowDirty {
		if d {
			rows = append(rows, y)
		}
	}
	return rows
}

// HasDirty reports whether any row needs a repaint.
func (t *Term) HasDirty() bool {
	for _, d := range t.rowDirty {
		if d {
			return true
		}
	}
	return false
}

// ClearRowDirty resets the dirty state of one row after the renderer
// has emitted it.
func (t *Term) ClearRowDirty(y int) {
	if y < 0 || y >= t.rows {
		return
	}
	line := t.active.lines[y]
	for i := range line {
		line[i].Dirty = false
	}
	t.rowDirty[y] = false
}

// Resize changes the grid dimensions, preserving the top-left content
// of both screens. The scroll region resets to the full screen.
func (t *Term) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == t.cols && rows == t.rows {
		return
	}
	resizeGrid(t.primary, t.cols, t.rows, cols, rows)
	resizeGrid(t.alt, t.cols, t.rows, cols, rows)
	t.cols = cols
	t.rows = rows
	t.scrollTop = 0
	t.scrollBottom = rows - 1
	if t.cursorX >= cols {
		t.cursorX = cols - 1
	}
	if t.cursorY >= rows {
		t.cursorY = rows - 1
	}
	t.pendingWrap = false
	t.rowDirty = make([]bool, rows)
	t.markAllDirty()
}

func resizeGrid(g *grid, oldCols, oldRows, cols, rows int) {
	lines := make([][]Cell, rows)
	for y := 0; y < rows; y++ {
		line := emptyLine(cols)
		if y < oldRows {
			n := oldCols
			if cols < n {
				n = cols
			}
			copy(line, g.lines[y][:n])
			// Never leave a dangling continuation at the right edge.
			if n > 0 && line[n-1].Width == 2 {
				line[n-1] = EmptyCell()
			}
		}
		lines[y] = line
	}
	g.lines = lines
	if g.saved.x >= cols {
		g.saved.x = cols - 1
	}
	if g.saved.y >= rows {
		g.saved.y = rows - 1
	}
}

// Reset returns the terminal to its initial state (RIS).
func (t *Term) Reset() {
	t.primary = newGrid(t.cols, t.rows)
	t.alt = newGrid(t.cols, t.rows)
	t.active = t.primary
	t.cursorX, t.cursorY = 0, 0
	t.pendingWrap = false
	t.scrollTop = 0
	t.scrollBottom = t.rows - 1
	t.cur = defaultPen()
	t.modes = Modes{CursorVisible: true, AutoWrap: true, CursorBlink: true}
	t.viewOffset = 0
	t.markAllDirty()
}
