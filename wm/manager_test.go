package wm

import (
	"testing"

	wtmux "github.com/phroun/wtmux"
)

// testSpawn uses a shell path that cannot exist, so panes come up dead
// with no child process; grids stay fully functional for feeding.
func testSpawn() wtmux.SpawnOptions {
	return wtmux.SpawnOptions{
		Shell: wtmux.Shell{Kind: wtmux.CustomShell, Path: "/nonexistent/wtmux-test-shell"},
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return New(80, 24, 100, testSpawn(), true, true)
}

// clearPane resets a test pane's grid after the spawn-error banner.
func clearPane(p *Pane) {
	p.Feed([]byte("\x1b[2J\x1b[H"))
}

func TestManagerInitialTab(t *testing.T) {
	m := newTestManager(t)
	if len(m.TabOrder) != 1 {
		t.Fatalf("tabs = %d, want 1", len(m.TabOrder))
	}
	tab := m.ActiveTab()
	if tab == nil || tab.FocusedPane() == nil {
		t.Fatal("initial tab should have a focused pane")
	}
	w, h := m.ContentSize()
	if w != 80 || h != 22 {
		t.Errorf("content size = (%d,%d), want (80,22) with both bars", w, h)
	}
	iw, ih := tab.FocusedPane().InnerSize()
	if iw != 80 || ih != 22 {
		t.Errorf("single pane inner = (%d,%d), want full content", iw, ih)
	}
}

func TestTabLifecycle(t *testing.T) {
	m := newTestManager(t)
	first := m.Active
	second := m.NewTab()
	if m.Active != second {
		t.Error("new tab should become active")
	}
	m.ToggleLastTab()
	if m.Active != first {
		t.Error("toggle-last should return to the first tab")
	}
	m.ToggleLastTab()
	if m.Active != second {
		t.Error("toggle-last should swap back")
	}
	m.NextTab()
	if m.Active != first {
		t.Error("next tab should wrap around")
	}
	m.PrevTab()
	if m.Active != second {
		t.Error("prev tab should wrap back")
	}
	m.GotoTab(1)
	if m.Active != first {
		t.Error("goto 1 should select the first tab")
	}
	m.RenameActiveTab("work")
	if m.ActiveTab().Name != "work" {
		t.Error("rename should change only the display name")
	}
	if !m.CloseTab() {
		t.Error("closing one of two tabs should succeed")
	}
	if m.CloseTab() {
		t.Error("the last tab must not close via CloseTab")
	}
}

func TestSplitAssignsBordersAndGeometry(t *testing.T) {
	m := newTestManager(t)
	tab := m.ActiveTab()
	m.Split(SplitVertical)
	if len(tab.Panes) != 2 {
		t.Fatalf("panes = %d, want 2", len(tab.Panes))
	}
	for _, p := range tab.Panes {
		if !p.Border {
			t.Error("all panes should be bordered once split")
		}
		iw, ih := p.InnerSize()
		if iw < 1 || ih < 1 {
			t.Errorf("pane %d inner size (%d,%d)", p.ID, iw, ih)
		}
	}
	if tab.FocusedPane().ID != tab.PaneOrder[1] {
		t.Error("the fresh pane should take focus")
	}
}

func TestClosePaneCollapsesLayout(t *testing.T) {
	m := newTestManager(t)
	tab := m.ActiveTab()
	before := tab.Layout.Equal(NewLeaf(tab.Focused))
	if !before {
		t.Fatal("initial layout should be a single leaf")
	}
	m.Split(SplitHorizontal)
	m.CloseFocusedPane()
	if len(tab.Panes) != 1 {
		t.Fatalf("panes after close = %d, want 1", len(tab.Panes))
	}
	if !tab.Layout.IsLeaf() {
		t.Error("layout should collapse back to a leaf")
	}
	if tab.FocusedPane().Border {
		t.Error("a single pane carries no border")
	}
}

func TestZoomPreservesContent(t *testing.T) {
	m := newTestManager(t)
	tab := m.ActiveTab()
	m.Split(SplitVertical)

	left := tab.Panes[tab.PaneOrder[0]]
	clearPane(left)
	left.Feed([]byte("hello\r\n"))
	if got := wtmux.LineText(left.Term.Line(0))[:5]; got != "hello" {
		t.Fatalf("left pane row 0 = %q before zoom", got)
	}

	tab.FocusPane(left.ID)
	tab.ToggleZoom()
	if !tab.IsZoomed() {
		t.Fatal("tab should be zoomed")
	}
	if left.W != tab.W || left.H != tab.H {
		t.Error("zoom target should cover the whole tab area")
	}

	tab.ToggleZoom()
	if tab.IsZoomed() {
		t.Fatal("tab should be unzoomed")
	}
	if got := wtmux.LineText(left.Term.Line(0))[:5]; got != "hello" {
		t.Errorf("left pane row 0 = %q after unzoom, want hello preserved", got)
	}
}

func TestReflowIdempotent(t *testing.T) {
	m := newTestManager(t)
	tab := m.ActiveTab()
	m.Split(SplitVertical)
	m.Split(SplitHorizontal)

	type geom struct{ x, y, w, h int }
	snapshot := func() map[PaneID]geom {
		out := make(map[PaneID]geom)
		for id, p := range tab.Panes {
			out[id] = geom{p.X, p.Y, p.W, p.H}
		}
		return out
	}
	before := snapshot()
	tab.Reflow()
	after := snapshot()
	for id, g := range before {
		if after[id] != g {
			t.Errorf("reflow without mutation moved pane %d: %+v -> %+v", id, g, after[id])
		}
	}
}

func TestScreenToPane(t *testing.T) {
	m := newTestManager(t)
	tab := m.ActiveTab()
	p := tab.FocusedPane()

	// Tab bar row is outside any pane.
	if _, _, _, ok := m.ScreenToPane(5, 0); ok {
		t.Error("tab bar row should not map to a pane")
	}
	// Status bar row is outside the content area.
	if _, _, _, ok := m.ScreenToPane(5, 23); ok {
		t.Error("status bar row should not map to a pane")
	}
	got, px, py, ok := m.ScreenToPane(5, 3)
	if !ok || got != p {
		t.Fatal("content cell should map to the single pane")
	}
	if px != 5 || py != 2 {
		t.Errorf("pane-local coords = (%d,%d), want (5,2)", px, py)
	}
}

func TestDeadPaneRetained(t *testing.T) {
	m := newTestManager(t)
	tab := m.ActiveTab()
	p := tab.FocusedPane()
	if p.Session != nil {
		t.Skip("test shell unexpectedly spawned")
	}
	if !p.Dead {
		t.Fatal("spawn failure should leave the pane dead")
	}
	// The dead pane still participates in layout and keeps its grid.
	m.Split(SplitVertical)
	if len(tab.Panes) != 2 {
		t.Error("splitting next to a dead pane should work")
	}
	if p.W == 0 || p.H == 0 {
		t.Error("dead pane should keep geometry")
	}
}

func TestCurrentLine(t *testing.T) {
	m := newTestManager(t)
	p := m.FocusedPane()
	clearPane(p)
	p.Feed([]byte("$ echo hi"))
	line, ok := m.CurrentLine()
	if !ok || line != "$ echo hi" {
		t.Errorf("current line = %q, want %q", line, "$ echo hi")
	}
}
