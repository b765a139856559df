// Package cli hosts wtmux inside a real terminal: raw-mode setup, the
// compositing renderer, the input router, and the event loop.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	wtmux "github.com/phroun/wtmux"
	"github.com/phroun/wtmux/config"
	"github.com/phroun/wtmux/wm"
)

// BorderStyle selects the pane frame glyphs.
type BorderStyle int

const (
	BorderSingle BorderStyle = iota
	BorderDouble
	BorderRounded
	BorderNone
)

// ParseBorderStyle maps the config key to a style.
func ParseBorderStyle(name string) BorderStyle {
	switch name {
	case "double":
		return BorderDouble
	case "rounded":
		return BorderRounded
	case "none":
		return BorderNone
	default:
		return BorderSingle
	}
}

// borderCharSet contains the characters for drawing borders.
type borderCharSet struct {
	topLeft     rune
	topRight    rune
	bottomLeft  rune
	bottomRight rune
	horizontal  rune
	vertical    rune
	titleLeft   rune
	titleRight  rune
}

var borderStyles = map[BorderStyle]borderCharSet{
	BorderSingle: {
		topLeft: '┌', topRight: '┐', bottomLeft: '└', bottomRight: '┘',
		horizontal: '─', vertical: '│', titleLeft: '┤', titleRight: '├',
	},
	BorderDouble: {
		topLeft: '╔', topRight: '╗', bottomLeft: '╚', bottomRight: '╝',
		horizontal: '═', vertical: '║', titleLeft: '╡', titleRight: '╞',
	},
	BorderRounded: {
		topLeft: '╭', topRight: '╮', bottomLeft: '╰', bottomRight: '╯',
		horizontal: '─', vertical: '│', titleLeft: '┤', titleRight: '├',
	},
}

// tabRange records the clickable column span of one tab label.
type tabRange struct {
	id         wm.TabID
	start, end int // [start, end)
}

// Renderer composes the tab bar, panes, status bar, and overlays into
// synchronized frames on the host output. One lock guards the writer;
// interleaved output from other goroutines is forbidden.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer

	scheme      config.Scheme
	borderStyle BorderStyle
	borderChars borderCharSet
	showTime    bool

	// Frame buffer, rebuilt per frame and flushed in one write so the
	// synchronized-update begin and end always travel together.
	buf strings.Builder

	lastGeneration uint64
	havePrevFrame  bool

	tabRanges []tabRange

	// clock is swappable for tests.
	clock func() time.Time
}

// NewRenderer creates a renderer on the host writer.
func NewRenderer(out io.Writer, scheme config.Scheme, style BorderStyle, showTime bool) *Renderer {
	r := &Renderer{
		out:         out,
		scheme:      scheme,
		borderStyle: style,
		showTime:    showTime,
		clock:       time.Now,
	}
	if style != BorderNone {
		r.borderChars = borderStyles[style]
	}
	return r
}

// SetScheme switches the color scheme at runtime.
func (r *Renderer) SetScheme(s config.Scheme) {
	r.mu.Lock()
	r.scheme = s
	r.mu.Unlock()
}

// Scheme returns the active scheme.
func (r *Renderer) Scheme() config.Scheme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scheme
}

// withFrame wraps one render in the frame protocol: exclusive writer
// lock, synchronized-update begin, cursor hidden and host autowrap off
// for the duration, teardown and a single flush on every exit path
// including panics. A begin is never flushed without its end.
func (r *Renderer) withFrame(fn func() error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf.Reset()
	r.buf.WriteString("\x1b[?2026h") // Begin synchronized update
	r.buf.WriteString("\x1b[?25l")   // Hide cursor
	r.buf.WriteString("\x1b[?7l")    // Disable host autowrap

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("render panic: %v", p)
			r.buf.WriteString("\x1b[0m\x1b[?25h")
		}
		r.buf.WriteString("\x1b[?7h")    // Restore autowrap
		r.buf.WriteString("\x1b[?2026l") // End synchronized update
		if _, werr := io.WriteString(r.out, r.buf.String()); werr != nil && err == nil {
			err = werr
		}
	}()

	if err = fn(); err != nil {
		r.buf.WriteString("\x1b[0m\x1b[?25h")
	}
	return err
}

// Render draws one frame. A generation change (or first frame) forces
// a full redraw; otherwise only dirty pane rows are emitted. Dirty
// bits are cleared only for the rows actually emitted.
func (r *Renderer) Render(m *wm.Manager, ui *UIState) error {
	return r.withFrame(func() error {
		full := !r.havePrevFrame || m.Generation != r.lastGeneration || ui.OverlayVisible()
		r.lastGeneration = m.Generation
		r.havePrevFrame = true

		tab := m.ActiveTab()
		if tab == nil {
			return nil
		}

		if m.TabBarHeight > 0 {
			r.renderTabBar(m)
		}

		panes := r.visiblePanes(tab)
		for _, p := range panes {
			if p.Border && (full || p.Term.HasDirty()) {
				r.renderBorder(m, p)
			}
			r.renderPaneContent(m, p, full)
		}

		if m.StatusBarHeight > 0 {
			r.renderStatusBar(m, ui)
		}

		r.renderOverlays(m, ui)
		r.placeCursor(m, ui)
		return nil
	})
}

// visiblePanes returns the panes to draw: only the zoom target while
// zoomed, every pane otherwise.
func (r *Renderer) visiblePanes(tab *wm.Tab) []*wm.Pane {
	if tab.Zoomed != 0 {
		if p, ok := tab.Panes[tab.Zoomed]; ok {
			return []*wm.Pane{p}
		}
	}
	out := make([]*wm.Pane, 0, len(tab.PaneOrder))
	for _, id := range tab.PaneOrder {
		out = append(out, tab.Panes[id])
	}
	return out
}

func (r *Renderer) moveTo(x, y int) {
	r.buf.WriteString("\x1b[")
	r.buf.WriteString(strconv.Itoa(y + 1))
	r.buf.WriteByte(';')
	r.buf.WriteString(strconv.Itoa(x + 1))
	r.buf.WriteByte('H')
}

func (r *Renderer) chromeColors(fg, bg config.RGB) {
	fmt.Fprintf(&r.buf, "\x1b[38;2;%d;%d;%d;48;2;%d;%d;%dm", fg.R, fg.G, fg.B, bg.R, bg.G, bg.B)
}

// renderTabBar draws the clickable tab row and records label ranges.
func (r *Renderer) renderTabBar(m *wm.Manager) {
	cs := r.scheme
	r.moveTo(0, 0)
	r.chromeColors(cs.TabBarFg, cs.TabBarBg)
	r.buf.WriteString("\x1b[K")

	r.tabRanges = r.tabRanges[:0]
	col := 0
	r.moveTo(0, 0)
	for _, id := range m.TabOrder {
		tab := m.Tabs[id]
		label := " " + tab.Name + " "
		width := displayWidth(label)
		if col+width > m.Width {
			break
		}
		if id == m.Active {
			r.chromeColors(cs.TabActiveFg, cs.TabActiveBg)
		} else {
			r.chromeColors(cs.TabInactiveFg, cs.TabInactiveBg)
		}
		r.buf.WriteString(label)
		r.tabRanges = append(r.tabRanges, tabRange{id: id, start: col, end: col + width})
		col += width
		r.chromeColors(cs.TabBarFg, cs.TabBarBg)
		r.buf.WriteByte(' ')
		col++
	}
	r.buf.WriteString("\x1b[0m")
}

// TabHit returns the tab whose label covers the given tab-bar column.
func (r *Renderer) TabHit(x int) (wm.TabID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tr := range r.tabRanges {
		if x >= tr.start && x < tr.end {
			return tr.id, true
		}
	}
	return 0, false
}

// renderBorder draws a pane's frame with its title inline in the top
// border. The focused pane gets the active border color.
func (r *Renderer) renderBorder(m *wm.Manager, p *wm.Pane) {
	bc := r.borderChars
	cs := r.scheme
	yOff := m.TabBarHeight

	color := cs.PaneBorder
	if p.Focused {
		color = cs.PaneBorderActive
	}
	fmt.Fprintf(&r.buf, "\x1b[0m\x1b[38;2;%d;%d;%dm", color.R, color.G, color.B)

	innerW := p.W - 2
	if innerW < 0 {
		innerW = 0
	}

	// Top border with inline title
	r.moveTo(p.X, p.Y+yOff)
	r.buf.WriteRune(bc.topLeft)
	title := p.Title()
	if p.Dead {
		title += " [dead]"
	}
	tw := displayWidth(title)
	if tw > 0 && tw+4 <= innerW {
		r.buf.WriteRune(bc.titleRight)
		r.buf.WriteByte(' ')
		r.buf.WriteString(title)
		r.buf.WriteByte(' ')
		r.buf.WriteRune(bc.titleLeft)
		for i := tw + 4; i < innerW; i++ {
			r.buf.WriteRune(bc.horizontal)
		}
	} else {
		for i := 0; i < innerW; i++ {
			r.buf.WriteRune(bc.horizontal)
		}
	}
	r.buf.WriteRune(bc.topRight)

	// Side borders
	for row := 1; row < p.H-1; row++ {
		r.moveTo(p.X, p.Y+row+yOff)
		r.buf.WriteRune(bc.vertical)
		r.moveTo(p.X+p.W-1, p.Y+row+yOff)
		r.buf.WriteRune(bc.vertical)
	}

	// Bottom border
	r.moveTo(p.X, p.Y+p.H-1+yOff)
	r.buf.WriteRune(bc.bottomLeft)
	for i := 0; i < innerW; i++ {
		r.buf.WriteRune(bc.horizontal)
	}
	r.buf.WriteRune(bc.bottomRight)
	r.buf.WriteString("\x1b[0m")
}

// renderPaneContent draws a pane's grid. Full mode repaints every row;
// partial mode walks only dirty rows. Rows are snapshotted cell by
// cell as they are written; no terminal lock is held across the final
// host write because the frame buffer defers it.
func (r *Renderer) renderPaneContent(m *wm.Manager, p *wm.Pane, full bool) {
	if p.Copy != nil {
		r.renderCopyModePane(m, p)
		return
	}

	ix, iy := p.InnerPos()
	iw, ih := p.InnerSize()
	yOff := m.TabBarHeight

	for y := 0; y < ih; y++ {
		if !full && !rowDirty(p, y) {
			continue
		}
		line := p.Term.ViewLine(y)
		r.renderRow(ix, iy+y+yOff, iw, line, func(x int) highlight {
			if p.Term.IsSelected(x, y) {
				return highlightSelection
			}
			return highlightNone
		})
		p.Term.ClearRowDirty(y)
	}
}

func rowDirty(p *wm.Pane, y int) bool {
	for _, dy := range p.Term.DirtyRows() {
		if dy == y {
			return true
		}
	}
	return false
}

type highlight int

const (
	highlightNone highlight = iota
	highlightSelection
	highlightMatch
	highlightCurrentMatch
	highlightCursor
)

// renderRow emits one pane row, batching SGR changes across runs of
// identically-attributed cells.
func (r *Renderer) renderRow(hostX, hostY, width int, line []wtmux.Cell, hl func(x int) highlight) {
	r.moveTo(hostX, hostY)
	var last string
	first := true
	for x := 0; x < width; x++ {
		var cell wtmux.Cell
		if x < len(line) {
			cell = line[x]
		} else {
			cell = wtmux.EmptyCell()
		}
		if cell.IsContinuation() {
			continue
		}
		sgr := r.cellSGR(&cell, hl(x))
		if first || sgr != last {
			r.buf.WriteString("\x1b[0m")
			r.buf.WriteString(sgr)
			last = sgr
			first = false
		}
		if cell.Char == 0 || cell.Hidden {
			r.buf.WriteByte(' ')
			if cell.Width == 2 {
				r.buf.WriteByte(' ')
			}
		} else {
			r.buf.WriteString(cell.String())
		}
	}
	r.buf.WriteString("\x1b[0m")
}

// cellSGR builds the SGR prefix for a cell, the same width authority
// and attribute set the terminal state records.
func (r *Renderer) cellSGR(c *wtmux.Cell, hl highlight) string {
	var sb strings.Builder
	sb.WriteString("\x1b[")
	wrote := false
	put := func(code string) {
		if wrote {
			sb.WriteByte(';')
		}
		sb.WriteString(code)
		wrote = true
	}

	switch hl {
	case highlightSelection:
		cs := r.scheme
		put("38;2;" + rgbJoin(cs.SelectionFg))
		put("48;2;" + rgbJoin(cs.SelectionBg))
	case highlightMatch:
		put("48;2;80;80;0")
		put("38;2;255;255;255")
	case highlightCurrentMatch:
		put("48;2;160;120;0")
		put("38;2;0;0;0")
	case highlightCursor:
		put("7")
	default:
		fg, bg := c.Foreground, c.Background
		if c.Reverse {
			fg, bg = bg, fg
		}
		put(fg.ToSGRCode(true))
		put(bg.ToSGRCode(false))
	}

	if c.Bold {
		put("1")
	}
	if c.Faint {
		put("2")
	}
	if c.Italic {
		put("3")
	}
	if c.Underline {
		put("4")
	}
	if c.Blink {
		put("5")
	}
	if c.Strikethrough {
		put("9")
	}
	sb.WriteByte('m')
	return sb.String()
}

func rgbJoin(c config.RGB) string {
	return strconv.Itoa(int(c.R)) + ";" + strconv.Itoa(int(c.G)) + ";" + strconv.Itoa(int(c.B))
}

// renderCopyModePane draws the focused pane under copy mode: the view
// window over (scrollback ∪ grid) with selection, search matches, and
// the overlay cursor.
func (r *Renderer) renderCopyModePane(m *wm.Manager, p *wm.Pane) {
	cm := p.Copy
	ix, iy := p.InnerPos()
	iw, ih := p.InnerSize()
	yOff := m.TabBarHeight

	for y := 0; y < ih; y++ {
		abs := cm.AbsoluteRowAt(y)
		line := p.Term.AbsoluteLine(abs)
		r.renderRow(ix, iy+y+yOff, iw, line, func(x int) highlight {
			switch {
			case abs == cm.CursorRow && x == cm.CursorX:
				return highlightCursor
			case cm.IsCurrentMatch(abs, x):
				return highlightCurrentMatch
			case cm.IsMatch(abs, x):
				return highlightMatch
			case cm.IsSelected(abs, x):
				return highlightSelection
			}
			return highlightNone
		})
		p.Term.ClearRowDirty(y)
	}
}

// renderStatusBar draws the bottom row: mode indicator, active tab,
// pane position, zoom flag, and the optional clock.
func (r *Renderer) renderStatusBar(m *wm.Manager, ui *UIState) {
	cs := r.scheme
	row := m.Height - 1
	r.moveTo(0, row)

	if ui.Router != nil && ui.Router.PrefixPending() {
		r.chromeColors(cs.StatusPrefixFg, cs.StatusPrefixBg)
	} else {
		r.chromeColors(cs.StatusBarFg, cs.StatusBarBg)
	}
	r.buf.WriteString("\x1b[K")

	var sb strings.Builder
	tab := m.ActiveTab()
	if tab != nil {
		fmt.Fprintf(&sb, " [%d] %s", tab.ID, tab.Name)
		if p := tab.FocusedPane(); p != nil {
			idx := 0
			for i, id := range tab.PaneOrder {
				if id == tab.Focused {
					idx = i
				}
			}
			fmt.Fprintf(&sb, " | pane %d/%d", idx+1, len(tab.PaneOrder))
		}
		if tab.IsZoomed() {
			sb.WriteString(" [Z]")
		}
		if p := tab.FocusedPane(); p != nil && p.Copy != nil {
			sb.WriteString(" | ")
			sb.WriteString(p.Copy.Status())
		}
	}
	if ui.Router != nil {
		if note := ui.Router.StatusNote(); note != "" {
			sb.WriteString(" | ")
			sb.WriteString(note)
		}
	}

	status := sb.String()
	right := ""
	if r.showTime {
		right = r.clock().Format("15:04") + " "
	}
	pad := m.Width - displayWidth(status) - displayWidth(right)
	if pad < 0 {
		pad = 0
	}
	r.buf.WriteString(status)
	r.buf.WriteString(strings.Repeat(" ", pad))
	r.buf.WriteString(right)
	r.buf.WriteString("\x1b[0m")
}

// placeCursor positions and reveals the host cursor over the focused
// pane's child cursor when it should be visible.
func (r *Renderer) placeCursor(m *wm.Manager, ui *UIState) {
	if ui.OverlayVisible() {
		return
	}
	tab := m.ActiveTab()
	if tab == nil {
		return
	}
	p := tab.FocusedPane()
	if p == nil || p.Copy != nil || p.Dead {
		return
	}
	modes := p.Term.Modes()
	if !modes.CursorVisible || p.Term.ViewOffset() > 0 {
		return
	}
	cx, cy := p.Term.Cursor()
	iw, ih := p.InnerSize()
	if cx >= iw || cy >= ih {
		return
	}
	ix, iy := p.InnerPos()
	r.moveTo(ix+cx, iy+cy+m.TabBarHeight)

	// DECSCUSR forwarding so the host cursor matches the child's shape.
	style := 1
	switch modes.CursorShape {
	case wtmux.CursorBlock:
		style = 1
	case wtmux.CursorUnderline:
		style = 3
	case wtmux.CursorBar:
		style = 5
	}
	if !modes.CursorBlink {
		style++
	}
	fmt.Fprintf(&r.buf, "\x1b[%d q", style)
	r.buf.WriteString("\x1b[?25h")
}

// displayWidth measures a string with the shared width authority.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		w += wtmux.RuneDisplayWidth(r)
	}
	return w
}
