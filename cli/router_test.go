package cli

import (
	"testing"
	"time"

	"github.com/phroun/wtmux/history"
	"github.com/phroun/wtmux/wm"
)

func testHistory(t *testing.T) *history.Store {
	t.Helper()
	return history.Open(t.TempDir())
}

// fakeClipboard captures writes so tests never touch the system
// clipboard.
type fakeClipboard struct {
	text string
}

func (f *fakeClipboard) WriteAll(text string) error { f.text = text; return nil }
func (f *fakeClipboard) ReadAll() (string, error)   { return f.text, nil }

func newTestRouter(t *testing.T) (*Router, *wm.Manager, *Renderer, *fakeClipboard) {
	t.Helper()
	out := &recordingWriter{}
	ren := newTestRenderer(out)
	m := wm.New(80, 24, 100, testSpawn(), true, true)
	ui := &UIState{}
	router := NewRouter(m, ren, ui, defaultTestConfig(), testHistory(t))
	clip := &fakeClipboard{}
	router.clip = clip
	return router, m, ren, clip
}

func ctrl(r rune) KeyEvent {
	return KeyEvent{Type: KeyRune, Rune: r, Mods: ModCtrl}
}

func key(r rune) KeyEvent {
	return KeyEvent{Type: KeyRune, Rune: r}
}

func TestPrefixSplitCommands(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	tab := m.ActiveTab()

	router.HandleEvent(ctrl('b'))
	if !router.PrefixPending() {
		t.Fatal("prefix key should arm the FSM")
	}
	router.HandleEvent(key('"'))
	if len(tab.Panes) != 2 {
		t.Fatalf("panes after prefix-\" = %d, want 2", len(tab.Panes))
	}
	if router.PrefixPending() {
		t.Error("command should disarm the prefix")
	}

	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('%'))
	if len(tab.Panes) != 3 {
		t.Errorf("panes after prefix-%% = %d, want 3", len(tab.Panes))
	}
}

func TestPrefixEscCancels(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(KeyEvent{Type: KeyEsc})
	if router.PrefixPending() {
		t.Error("Esc should cancel the prefix")
	}
	if len(m.ActiveTab().Panes) != 1 {
		t.Error("Esc must not execute a command")
	}
}

func TestPrefixUnknownKeyCancelsSilently(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('#'))
	if router.PrefixPending() {
		t.Error("unknown command should cancel the prefix")
	}
	if len(m.ActiveTab().Panes) != 1 || len(m.TabOrder) != 1 {
		t.Error("unknown command must not mutate the session")
	}
}

func TestPrefixTabCommands(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('c'))
	if len(m.TabOrder) != 2 {
		t.Fatalf("tabs = %d, want 2 after prefix-c", len(m.TabOrder))
	}
	second := m.Active
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('p'))
	if m.Active == second {
		t.Error("prefix-p should change tabs")
	}
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('l'))
	if m.Active != second {
		t.Error("prefix-l should toggle to the last tab")
	}
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('2'))
	if m.Active != m.TabOrder[1] {
		t.Error("prefix-digit should select the tab by position")
	}
}

func TestPrefixZoomToggle(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	tab := m.ActiveTab()
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('"'))
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('z'))
	if !tab.IsZoomed() {
		t.Fatal("prefix-z should zoom")
	}
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('z'))
	if tab.IsZoomed() {
		t.Error("prefix-z again should unzoom")
	}
}

func TestPrefixPrefixSendsLiteral(t *testing.T) {
	router, _, _, _ := newTestRouter(t)
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('b'))
	// The focused pane is dead (no child), so the write is dropped;
	// the FSM must still disarm without treating 'b' as a command.
	if router.PrefixPending() {
		t.Error("literal prefix send should disarm the FSM")
	}
}

func TestRenameFlow(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key(','))
	for _, r := range "dev" {
		router.HandleEvent(key(r))
	}
	// The editor pre-fills with the current name; wipe it first.
	name := m.ActiveTab().Name
	for i := 0; i < len(name)+3; i++ {
		router.HandleEvent(KeyEvent{Type: KeyBackspace})
	}
	for _, r := range "dev" {
		router.HandleEvent(key(r))
	}
	router.HandleEvent(KeyEvent{Type: KeyEnter})
	if m.ActiveTab().Name != "dev" {
		t.Errorf("tab name = %q, want %q", m.ActiveTab().Name, "dev")
	}
}

func TestRenameEscKeepsName(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	original := m.ActiveTab().Name
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key(','))
	router.HandleEvent(key('x'))
	router.HandleEvent(KeyEvent{Type: KeyEsc})
	if m.ActiveTab().Name != original {
		t.Error("Esc should abandon the rename")
	}
}

func TestNumberSelectFocusesPane(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	tab := m.ActiveTab()
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('"'))
	first := tab.PaneOrder[0]

	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('q'))
	router.HandleEvent(key('0'))
	if tab.Focused != first {
		t.Errorf("digit 0 should focus the first pane")
	}
}

func TestNumberSelectTimesOut(t *testing.T) {
	router, _, _, _ := newTestRouter(t)
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('q'))
	if !router.PrefixPending() {
		t.Fatal("number select should be pending")
	}
	router.Tick(time.Now().Add(3 * time.Second))
	if router.PrefixPending() {
		t.Error("number select should expire after the digit wait")
	}
}

func TestCopyModeLifecycle(t *testing.T) {
	router, m, _, clip := newTestRouter(t)
	p := m.FocusedPane()
	p.Feed([]byte("\x1b[2J\x1b[Hgrab me\r\n"))

	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('['))
	if p.Copy == nil {
		t.Fatal("prefix-[ should enter copy mode")
	}

	router.HandleEvent(key('g'))
	router.HandleEvent(key('v'))
	router.HandleEvent(key('$'))
	router.HandleEvent(key('y'))
	if p.Copy != nil {
		t.Fatal("yank should leave copy mode")
	}
	if clip.text != "grab me" {
		t.Errorf("clipboard = %q, want %q", clip.text, "grab me")
	}
}

func TestCopyModeQuitWithoutYank(t *testing.T) {
	router, m, _, clip := newTestRouter(t)
	p := m.FocusedPane()
	router.HandleEvent(ctrl('b'))
	router.HandleEvent(key('['))
	router.HandleEvent(key('q'))
	if p.Copy != nil {
		t.Error("q should exit copy mode")
	}
	if clip.text != "" {
		t.Error("exiting without yank must not touch the clipboard")
	}
}

func TestTabBarClickSwitchesTab(t *testing.T) {
	router, m, ren, _ := newTestRouter(t)
	second := m.NewTab()
	m.GotoTab(1)
	first := m.Active

	if err := ren.Render(m, router.ui); err != nil {
		t.Fatal(err)
	}
	mid := (ren.tabRanges[1].start + ren.tabRanges[1].end) / 2
	router.HandleEvent(MouseEvent{Kind: MousePress, Button: 0, X: mid, Y: 0})
	if m.Active != second {
		t.Errorf("click on tab 2 label should activate it (was %d)", first)
	}
}

func TestShiftDragSelectsHostSide(t *testing.T) {
	router, m, _, clip := newTestRouter(t)
	p := m.FocusedPane()
	p.Feed([]byte("\x1b[2J\x1b[Hselect this text"))
	// Child requests mouse tracking; Shift must still win for wtmux.
	p.Feed([]byte("\x1b[?1000h\x1b[?1006h"))

	router.HandleEvent(MouseEvent{Kind: MousePress, Button: 0, X: 0, Y: 1, Mods: ModShift})
	if !p.Term.HasSelection() {
		t.Fatal("shift-press should start a host-side selection")
	}
	router.HandleEvent(MouseEvent{Kind: MouseDrag, Button: 0, X: 10, Y: 1, Mods: ModShift})
	router.HandleEvent(MouseEvent{Kind: MouseRelease, Button: 0, X: 10, Y: 1, Mods: ModShift})
	if clip.text != "select this" {
		t.Errorf("clipboard = %q, want %q", clip.text, "select this")
	}
	if p.Term.HasSelection() {
		t.Error("release should clear the selection")
	}
}

func TestMousePassthroughConsumedByChildMode(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	p := m.FocusedPane()
	p.Feed([]byte("\x1b[?1000h\x1b[?1006h"))

	// Without Shift the event is routed to the child, so no host
	// selection may appear even though the write itself is dropped on
	// the dead test pane.
	router.HandleEvent(MouseEvent{Kind: MousePress, Button: 0, X: 5, Y: 5})
	if p.Term.HasSelection() {
		t.Error("tracked mouse press must not start a host selection")
	}
}

func TestWheelScrollsPaneScrollback(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	p := m.FocusedPane()
	for i := 0; i < 40; i++ {
		p.Feed([]byte("line\r\n"))
	}
	router.HandleEvent(MouseEvent{Kind: MouseWheelUp, X: 2, Y: 2})
	if p.Term.ViewOffset() == 0 {
		t.Error("wheel up over a pane should scroll its scrollback")
	}
	router.HandleEvent(key('x'))
	if p.Term.ViewOffset() != 0 {
		t.Error("typing should snap back to the live view")
	}
}

func TestContextMenuOpensOnRightClick(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	router.HandleEvent(MouseEvent{Kind: MousePress, Button: 2, X: 5, Y: 5})
	if !router.ui.Menu.Visible {
		t.Fatal("right click should open the context menu")
	}
	// Esc closes it without side effects.
	router.HandleEvent(KeyEvent{Type: KeyEsc})
	if router.ui.Menu.Visible {
		t.Error("Esc should close the menu")
	}
	if len(m.ActiveTab().Panes) != 1 {
		t.Error("opening and closing the menu must not mutate panes")
	}
}

func TestContextMenuSplitAction(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	router.HandleEvent(MouseEvent{Kind: MousePress, Button: 2, X: 5, Y: 5})
	menu := router.ui.Menu
	// Navigate to "Split Horizontal" and confirm.
	router.HandleEvent(key('j'))
	router.HandleEvent(key('j'))
	if menu.SelectedAction() != MenuSplitHorizontal {
		t.Fatalf("hover action = %v, want split horizontal", menu.SelectedAction())
	}
	router.HandleEvent(KeyEvent{Type: KeyEnter})
	if len(m.ActiveTab().Panes) != 2 {
		t.Error("menu split action should create a pane")
	}
	if menu.Visible {
		t.Error("executing an action should close the menu")
	}
}

func TestHistorySelectorOpensOnCtrlR(t *testing.T) {
	router, _, _, _ := newTestRouter(t)
	router.HandleEvent(ctrl('r'))
	if !router.ui.Selector.Visible {
		t.Fatal("Ctrl+R should open the history selector")
	}
	router.HandleEvent(KeyEvent{Type: KeyEsc})
	if router.ui.Selector.Visible {
		t.Error("Esc should close the selector")
	}
}

func TestOSC52ReachesClipboard(t *testing.T) {
	_, m, _, clip := newTestRouter(t)
	m.DrainOutput() // Wires the clipboard sink onto existing panes.
	p := m.FocusedPane()
	p.Feed([]byte("\x1b]52;c;aGk=\x07"))
	if clip.text != "hi" {
		t.Errorf("clipboard = %q, want %q from OSC 52", clip.text, "hi")
	}
}

func TestResizeEventPropagates(t *testing.T) {
	router, m, _, _ := newTestRouter(t)
	router.HandleEvent(ResizeEvent{Cols: 100, Rows: 40})
	if m.Width != 100 || m.Height != 40 {
		t.Errorf("size = (%d,%d), want (100,40)", m.Width, m.Height)
	}
	w, h := m.ContentSize()
	if w != 100 || h != 38 {
		t.Errorf("content = (%d,%d), want (100,38)", w, h)
	}
}
