package cli

import (
	"fmt"
	"strings"

	"github.com/phroun/wtmux/history"
	"github.com/phroun/wtmux/wm"
)

// UIState collects the modal overlay state the renderer composes on
// top of the panes. The router mutates it; the renderer only reads.
type UIState struct {
	Router *Router

	Selector *history.Selector

	ThemeVisible bool
	ThemeIndex   int
	ThemeList    []string

	PaneNumbersVisible bool

	RenameActive bool
	RenameBuffer string

	Menu *ContextMenu
}

// OverlayVisible reports whether any modal overlay is on screen,
// which forces full redraws while it lasts.
func (u *UIState) OverlayVisible() bool {
	return (u.Selector != nil && u.Selector.Visible) ||
		u.ThemeVisible ||
		u.PaneNumbersVisible ||
		u.RenameActive ||
		(u.Menu != nil && u.Menu.Visible)
}

// renderOverlays draws whichever modal surfaces are active, centered
// boxes over the pane area.
func (r *Renderer) renderOverlays(m *wm.Manager, ui *UIState) {
	if ui.Selector != nil && ui.Selector.Visible {
		r.renderSelector(m, ui.Selector)
	}
	if ui.ThemeVisible {
		r.renderThemePicker(m, ui.ThemeList, ui.ThemeIndex)
	}
	if ui.PaneNumbersVisible {
		r.renderPaneNumbers(m)
	}
	if ui.RenameActive {
		r.renderRenamePopup(m, ui.RenameBuffer)
	}
	if ui.Menu != nil && ui.Menu.Visible {
		r.renderContextMenu(ui.Menu)
	}
}

// overlayBox draws a bordered box with an optional title in its top
// edge. Callers place the content inside at (x+1, y+1) or further in.
func (r *Renderer) overlayBox(x, y, w, h int, title string) {
	cs := r.scheme
	fmt.Fprintf(&r.buf, "\x1b[0m\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm",
		cs.SelectorBorder.R, cs.SelectorBorder.G, cs.SelectorBorder.B,
		cs.SelectorBg.R, cs.SelectorBg.G, cs.SelectorBg.B)

	for row := 0; row < h; row++ {
		r.moveTo(x, y+row)
		switch row {
		case 0:
			r.buf.WriteRune('┌')
			label := ""
			if title != "" {
				label = " " + title + " "
			}
			lw := displayWidth(label)
			r.buf.WriteString(label)
			for i := lw; i < w-2; i++ {
				r.buf.WriteRune('─')
			}
			r.buf.WriteRune('┐')
		case h - 1:
			r.buf.WriteRune('└')
			r.buf.WriteString(strings.Repeat("─", w-2))
			r.buf.WriteRune('┘')
		default:
			r.buf.WriteRune('│')
			r.buf.WriteString(strings.Repeat(" ", w-2))
			r.buf.WriteRune('│')
		}
	}
}

// renderSelector draws the history-search overlay.
func (r *Renderer) renderSelector(m *wm.Manager, sel *history.Selector) {
	cs := r.scheme
	w := m.Width * 3 / 4
	if w < 30 {
		w = m.Width
	}
	items := sel.VisibleItems()
	h := len(items) + 4
	x := (m.Width - w) / 2
	y := (m.Height - h) / 3
	if y < m.TabBarHeight {
		y = m.TabBarHeight
	}

	r.overlayBox(x, y, w, h, "history")

	r.moveTo(x+2, y+1)
	r.chromeColors(cs.SelectorFg, cs.SelectorBg)
	r.buf.WriteString("> " + sel.Query)

	for i, item := range items {
		r.moveTo(x+2, y+2+i)
		if item.Selected {
			r.chromeColors(cs.SelectorSelectedFg, cs.SelectorSelectedBg)
		} else {
			r.chromeColors(cs.SelectorFg, cs.SelectorBg)
		}
		label := fmt.Sprintf("%d. %s", item.Index+1, item.Command)
		r.buf.WriteString(truncateDisplay(label, w-4))
	}
	r.buf.WriteString("\x1b[0m")
}

// renderThemePicker draws the theme list overlay.
func (r *Renderer) renderThemePicker(m *wm.Manager, themes []string, selected int) {
	cs := r.scheme
	w := 32
	h := len(themes) + 2
	x := (m.Width - w) / 2
	y := (m.Height - h) / 3
	if y < m.TabBarHeight {
		y = m.TabBarHeight
	}

	r.overlayBox(x, y, w, h, "color scheme")
	for i, name := range themes {
		r.moveTo(x+2, y+1+i)
		if i == selected {
			r.chromeColors(cs.SelectorSelectedFg, cs.SelectorSelectedBg)
		} else {
			r.chromeColors(cs.SelectorFg, cs.SelectorBg)
		}
		r.buf.WriteString(truncateDisplay(fmt.Sprintf("%d. %s", i+1, name), w-4))
	}
	r.buf.WriteString("\x1b[0m")
}

// renderPaneNumbers paints each pane's index at its center for the
// prefix-q quick-focus overlay.
func (r *Renderer) renderPaneNumbers(m *wm.Manager) {
	tab := m.ActiveTab()
	if tab == nil {
		return
	}
	for i, id := range tab.PaneOrder {
		p := tab.Panes[id]
		label := fmt.Sprintf(" %d ", i)
		cx := p.X + p.W/2 - displayWidth(label)/2
		cy := p.Y + p.H/2 + m.TabBarHeight
		r.moveTo(cx, cy)
		r.buf.WriteString("\x1b[0m\x1b[7m\x1b[1m")
		r.buf.WriteString(label)
		r.buf.WriteString("\x1b[0m")
	}
}

// renderRenamePopup draws the one-line tab rename editor.
func (r *Renderer) renderRenamePopup(m *wm.Manager, buffer string) {
	cs := r.scheme
	w := 40
	if w > m.Width {
		w = m.Width
	}
	x := (m.Width - w) / 2
	y := m.Height / 3
	r.overlayBox(x, y, w, 3, "rename tab")
	r.moveTo(x+2, y+1)
	r.chromeColors(cs.SelectorFg, cs.SelectorBg)
	r.buf.WriteString(truncateDisplay(buffer+"▏", w-4))
	r.buf.WriteString("\x1b[0m")
}

// renderContextMenu draws the right-click menu at its anchor.
func (r *Renderer) renderContextMenu(menu *ContextMenu) {
	cs := r.scheme
	w := menu.Width()
	items := menu.Items()
	r.overlayBox(menu.X, menu.Y, w, len(items)+2, "")
	for i, item := range items {
		r.moveTo(menu.X+1, menu.Y+1+i)
		if i == menu.Hover {
			r.chromeColors(cs.SelectorSelectedFg, cs.SelectorSelectedBg)
		} else {
			r.chromeColors(cs.SelectorFg, cs.SelectorBg)
		}
		label := " " + item + strings.Repeat(" ", w-2-displayWidth(item)-1)
		r.buf.WriteString(label)
	}
	r.buf.WriteString("\x1b[0m")
}

// truncateDisplay cuts a string to a display width, using the shared
// width authority.
func truncateDisplay(s string, max int) string {
	if max <= 0 {
		return ""
	}
	w := 0
	for i, r := range s {
		rw := displayWidth(string(r))
		if w+rw > max {
			return s[:i]
		}
		w += rw
	}
	return s
}
