package cli

import "github.com/phroun/wtmux/wm"

// MenuAction is a context-menu command.
type MenuAction int

const (
	MenuNone MenuAction = iota
	MenuPaste
	MenuKillPane
	MenuSplitHorizontal
	MenuSplitVertical
	MenuToggleZoom
)

var menuItems = []struct {
	label  string
	action MenuAction
}{
	{"Paste", MenuPaste},
	{"Kill Pane", MenuKillPane},
	{"Split Horizontal", MenuSplitHorizontal},
	{"Split Vertical", MenuSplitVertical},
	{"Toggle Zoom", MenuToggleZoom},
}

// ContextMenu is the right-click menu overlay. It anchors at the click
// position, clamped to stay on screen.
type ContextMenu struct {
	Visible bool
	X, Y    int
	Hover   int
	Pane    wm.PaneID
}

// Show opens the menu for a pane at the click position.
func (c *ContextMenu) Show(pane wm.PaneID, x, y, screenW, screenH int) {
	c.Pane = pane
	w := c.Width()
	h := len(menuItems) + 2
	if x+w > screenW {
		x = screenW - w
	}
	if y+h > screenH {
		y = screenH - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	c.X, c.Y = x, y
	c.Hover = 0
	c.Visible = true
}

// Hide closes the menu.
func (c *ContextMenu) Hide() {
	c.Visible = false
}

// Items returns the menu labels.
func (c *ContextMenu) Items() []string {
	out := make([]string, len(menuItems))
	for i, it := range menuItems {
		out[i] = it.label
	}
	return out
}

// Width returns the box width fitting the widest label.
func (c *ContextMenu) Width() int {
	w := 0
	for _, it := range menuItems {
		if lw := displayWidth(it.label); lw > w {
			w = lw
		}
	}
	return w + 4
}

// Up moves the hover highlight up.
func (c *ContextMenu) Up() {
	if c.Hover > 0 {
		c.Hover--
	}
}

// Down moves the hover highlight down.
func (c *ContextMenu) Down() {
	if c.Hover+1 < len(menuItems) {
		c.Hover++
	}
}

// SelectedAction returns the hovered action.
func (c *ContextMenu) SelectedAction() MenuAction {
	if c.Hover < len(menuItems) {
		return menuItems[c.Hover].action
	}
	return MenuNone
}

// HitTest resolves a click to a menu action; MenuNone means the click
// landed outside the menu.
func (c *ContextMenu) HitTest(x, y int) (MenuAction, bool) {
	if x < c.X || x >= c.X+c.Width() {
		return MenuNone, false
	}
	row := y - c.Y - 1
	if row < 0 || row >= len(menuItems) {
		return MenuNone, false
	}
	return menuItems[row].action, true
}

// UpdateHover tracks the pointer; returns true when the highlight
// moved.
func (c *ContextMenu) UpdateHover(x, y int) bool {
	if x < c.X || x >= c.X+c.Width() {
		return false
	}
	row := y - c.Y - 1
	if row < 0 || row >= len(menuItems) || row == c.Hover {
		return false
	}
	c.Hover = row
	return true
}
