package wm

import (
	"strings"

	wtmux "github.com/phroun/wtmux"
)

// perPaneFrameBudget caps how many bytes of one pane's output are
// parsed per event-loop tick, so a flooding child cannot starve input
// handling. A tunable, deliberately not raised dynamically.
const perPaneFrameBudget = 64 * 1024

// Manager is the top-level session state: an ordered list of tabs, the
// active and last-active tab, bar visibility, and a generation counter
// that forces a full redraw after structural changes.
type Manager struct {
	Tabs      map[TabID]*Tab
	TabOrder  []TabID
	Active    TabID
	LastTabID TabID // Last active tab, for toggle

	Width, Height   int
	TabBarHeight    int
	StatusBarHeight int

	// Generation forces a full redraw when bumped.
	Generation uint64

	// ClipSink receives OSC 52 clipboard payloads from children.
	ClipSink func(string)

	scrollback int
	spawn      wtmux.SpawnOptions
	nextTab    TabID
}

// New creates a manager with one tab running the default shell.
func New(width, height, scrollback int, spawn wtmux.SpawnOptions, tabBar, statusBar bool) *Manager {
	m := &Manager{
		Tabs:       make(map[TabID]*Tab),
		Width:      width,
		Height:     height,
		scrollback: scrollback,
		spawn:      spawn,
		nextTab:    1,
	}
	if tabBar {
		m.TabBarHeight = 1
	}
	if statusBar {
		m.StatusBarHeight = 1
	}
	m.NewTab()
	return m
}

// ContentSize returns the pane area excluding the bars.
func (m *Manager) ContentSize() (w, h int) {
	h = m.Height - m.TabBarHeight - m.StatusBarHeight
	if h < 1 {
		h = 1
	}
	return m.Width, h
}

// Bump invalidates all cached frame state.
func (m *Manager) Bump() {
	m.Generation++
}

// NewTab creates a tab with the default shell and activates it.
func (m *Manager) NewTab() TabID {
	id := m.nextTab
	m.nextTab++
	w, h := m.ContentSize()
	tab := NewTab(id, DefaultTabName(id, m.spawn.Shell), w, h, m.scrollback, m.spawn)
	m.Tabs[id] = tab
	m.TabOrder = append(m.TabOrder, id)
	m.activate(id)
	m.Bump()
	return id
}

func (m *Manager) activate(id TabID) {
	if id == m.Active {
		return
	}
	if _, ok := m.Tabs[m.Active]; ok {
		m.LastTabID = m.Active
	}
	m.Active = id
	m.Bump()
}

// ActiveTab returns the active tab, or nil when the session is empty.
func (m *Manager) ActiveTab() *Tab {
	return m.Tabs[m.Active]
}

// CloseTab tears down the active tab's panes and removes it. The last
// remaining tab cannot be closed.
func (m *Manager) CloseTab() bool {
	if len(m.TabOrder) <= 1 {
		return false
	}
	id := m.Active
	if tab, ok := m.Tabs[id]; ok {
		tab.Kill()
	}
	m.removeTab(id)
	return true
}

func (m *Manager) removeTab(id TabID) {
	delete(m.Tabs, id)
	order := m.TabOrder[:0]
	for _, v := range m.TabOrder {
		if v != id {
			order = append(order, v)
		}
	}
	m.TabOrder = order
	if m.LastTabID == id {
		m.LastTabID = 0
	}
	if m.Active == id && len(m.TabOrder) > 0 {
		m.Active = m.TabOrder[0]
	}
	m.Bump()
}

// NextTab cycles forward through tabs.
func (m *Manager) NextTab() {
	m.stepTab(1)
}

// PrevTab cycles backward through tabs.
func (m *Manager) PrevTab() {
	m.stepTab(-1)
}

func (m *Manager) stepTab(delta int) {
	n := len(m.TabOrder)
	if n == 0 {
		return
	}
	for i, id := range m.TabOrder {
		if id == m.Active {
			m.activate(m.TabOrder[(i+delta+n)%n])
			return
		}
	}
}

// GotoTab activates a tab by 1-based position.
func (m *Manager) GotoTab(num int) {
	if num >= 1 && num <= len(m.TabOrder) {
		m.activate(m.TabOrder[num-1])
	}
}

// ToggleLastTab swaps the active and last-active tabs.
func (m *Manager) ToggleLastTab() {
	if _, ok := m.Tabs[m.LastTabID]; ok && m.LastTabID != 0 {
		m.activate(m.LastTabID)
	}
}

// RenameActiveTab mutates only the display name.
func (m *Manager) RenameActiveTab(name string) {
	if tab := m.ActiveTab(); tab != nil {
		tab.Name = name
		m.Bump()
	}
}

// Split splits the focused pane of the active tab.
func (m *Manager) Split(o Orientation) {
	if tab := m.ActiveTab(); tab != nil {
		tab.Split(o)
		m.Bump()
	}
}

// CloseFocusedPane closes the focused pane; closing the last pane of a
// tab closes the tab.
func (m *Manager) CloseFocusedPane() {
	tab := m.ActiveTab()
	if tab == nil {
		return
	}
	if len(tab.Panes) <= 1 {
		if len(m.TabOrder) > 1 {
			m.CloseTab()
		} else {
			// Last pane of the last tab ends the session.
			tab.ClosePane(tab.Focused)
			m.removeTab(tab.ID)
		}
		return
	}
	tab.ClosePane(tab.Focused)
	m.Bump()
}

// Resize propagates a new host size through every tab.
func (m *Manager) Resize(w, h int) {
	m.Width, m.Height = w, h
	cw, ch := m.ContentSize()
	for _, tab := range m.Tabs {
		tab.Resize(cw, ch)
	}
	m.Bump()
}

// DrainOutput pulls queued child output through each pane's parser
// under the per-pane frame budget, and transitions panes whose child
// exited into the dead state. Returns true when anything changed.
func (m *Manager) DrainOutput() bool {
	changed := false
	for _, tab := range m.Tabs {
		for _, id := range tab.PaneOrder {
			p := tab.Panes[id]
			if p.Term.OnClipboard == nil && m.ClipSink != nil {
				p.Term.OnClipboard = m.ClipSink
			}
			if p.Session == nil {
				continue
			}
			if data := p.Session.Drain(perPaneFrameBudget); len(data) > 0 {
				p.Feed(data)
				changed = true
			}
			if !p.Dead {
				if code, exited := p.Session.ExitStatus(); exited && !p.Session.HasOutput() {
					p.MarkDead(code)
					changed = true
				}
			}
		}
	}
	return changed
}

// PendingOutput reports whether any pane still has queued output,
// used by the event loop to skip sleeping.
func (m *Manager) PendingOutput() bool {
	for _, tab := range m.Tabs {
		for _, p := range tab.Panes {
			if p.Session != nil && p.Session.HasOutput() {
				return true
			}
		}
	}
	return false
}

// Running reports whether the session should stay alive.
func (m *Manager) Running() bool {
	return len(m.Tabs) > 0
}

// WriteFocused sends bytes to the focused pane's child.
func (m *Manager) WriteFocused(data []byte) error {
	tab := m.ActiveTab()
	if tab == nil {
		return nil
	}
	p := tab.FocusedPane()
	if p == nil {
		return nil
	}
	return p.Write(data)
}

// FocusedPane returns the focused pane of the active tab, or nil.
func (m *Manager) FocusedPane() *Pane {
	if tab := m.ActiveTab(); tab != nil {
		return tab.FocusedPane()
	}
	return nil
}

// InAlternateScreen reports whether the focused pane runs a
// full-screen application.
func (m *Manager) InAlternateScreen() bool {
	if p := m.FocusedPane(); p != nil {
		return p.Term.UsingAlternate()
	}
	return false
}

// ScreenToPane translates host screen coordinates into the content
// area of the pane under them, returning pane-local 0-based cells.
func (m *Manager) ScreenToPane(x, y int) (*Pane, int, int, bool) {
	tab := m.ActiveTab()
	if tab == nil {
		return nil, 0, 0, false
	}
	cy := y - m.TabBarHeight
	if cy < 0 {
		return nil, 0, 0, false
	}
	_, ch := m.ContentSize()
	if cy >= ch {
		return nil, 0, 0, false
	}
	p, ok := tab.PaneAt(x, cy)
	if !ok || !p.ContainsInner(x, cy) {
		return nil, 0, 0, false
	}
	ix, iy := p.InnerPos()
	return p, x - ix, cy - iy, true
}

// CurrentLine returns the focused pane's cursor row as text with the
// trailing spaces removed, for command-history capture.
func (m *Manager) CurrentLine() (string, bool) {
	p := m.FocusedPane()
	if p == nil {
		return "", false
	}
	_, y := p.Term.Cursor()
	line := p.Term.Line(y)
	if line == nil {
		return "", false
	}
	return strings.TrimRight(wtmux.LineText(line), " "), true
}

// ScrollFocused scrolls the focused pane's view by delta rows.
func (m *Manager) ScrollFocused(delta int) {
	if p := m.FocusedPane(); p != nil {
		p.Term.ScrollView(delta)
	}
}

// ScrollToLive returns the focused pane to the live view.
func (m *Manager) ScrollToLive() {
	if p := m.FocusedPane(); p != nil {
		p.Term.ScrollToLive()
	}
}
