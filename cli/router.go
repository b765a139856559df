package cli

import (
	"encoding/base64"
	"time"

	"github.com/atotto/clipboard"
	"github.com/phroun/wtmux/config"
	"github.com/phroun/wtmux/copymode"
	"github.com/phroun/wtmux/history"
	"github.com/phroun/wtmux/wm"
)

// routerState is the outer prefix FSM.
type routerState int

const (
	stateNormal routerState = iota
	statePrefix              // Prefix key seen, awaiting a command
	stateNumberSelect        // prefix-q: waiting for a pane digit
	stateRename              // prefix-,: one-line tab name editor
)

// numberSelectTimeout bounds the pane-digit wait.
const numberSelectTimeout = 2 * time.Second

// paneNumbersDisplay is how long the overlay stays after prefix-q.
const paneNumbersDisplay = 2 * time.Second

// Clipboard abstracts the system clipboard so tests can capture it.
// All clipboard access in the program funnels through one Router.
type Clipboard interface {
	WriteAll(text string) error
	ReadAll() (string, error)
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }
func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }

// Router demultiplexes host input between the window manager, copy
// mode, modal overlays, and the focused child, per the child's
// declared modes.
type Router struct {
	m   *wm.Manager
	ren *Renderer
	ui  *UIState
	cfg *config.Config

	state          routerState
	numberDeadline time.Time
	overlayExpiry  time.Time

	pendingKillTab bool
	statusNote     string

	clip Clipboard

	needsRender bool
	quit        bool
}

// NewRouter wires the router to the session, renderer, overlay state,
// and configuration.
func NewRouter(m *wm.Manager, ren *Renderer, ui *UIState, cfg *config.Config, hist *history.Store) *Router {
	r := &Router{
		m:    m,
		ren:  ren,
		ui:   ui,
		cfg:  cfg,
		clip: systemClipboard{},
	}
	ui.Router = r
	ui.Selector = history.NewSelector(hist)
	ui.Menu = &ContextMenu{}
	ui.ThemeList = config.SchemeNames()

	// OSC 52 clipboard writes from children arrive base64-encoded.
	m.ClipSink = func(payload string) {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return
		}
		_ = r.clip.WriteAll(string(data))
	}
	return r
}

// PrefixPending reports whether the prefix indicator should light up.
func (r *Router) PrefixPending() bool {
	return r.state == statePrefix || r.state == stateNumberSelect
}

// StatusNote returns a transient status-bar message.
func (r *Router) StatusNote() string {
	return r.statusNote
}

// Quit reports whether the user asked to exit.
func (r *Router) Quit() bool {
	return r.quit
}

// TakeRender consumes the pending-render flag.
func (r *Router) TakeRender() bool {
	v := r.needsRender
	r.needsRender = false
	return v
}

func (r *Router) render() {
	r.needsRender = true
}

// Tick expires the number-select wait and the pane-number overlay.
// Called from the event loop on every iteration.
func (r *Router) Tick(now time.Time) {
	if r.state == stateNumberSelect && now.After(r.numberDeadline) {
		r.state = stateNormal
		r.render()
	}
	if r.ui.PaneNumbersVisible && now.After(r.overlayExpiry) {
		r.ui.PaneNumbersVisible = false
		r.render()
	}
}

// HandleEvent routes one decoded host event.
func (r *Router) HandleEvent(ev Event) {
	switch e := ev.(type) {
	case KeyEvent:
		r.handleKey(e)
	case MouseEvent:
		r.handleMouse(e)
	case PasteEvent:
		r.handlePaste(e)
	case ResizeEvent:
		r.m.Resize(e.Cols, e.Rows)
		r.render()
	}
}

func (r *Router) handleKey(ev KeyEvent) {
	r.statusNote = ""

	// Modal overlays consume keys first.
	if r.ui.Menu.Visible {
		r.menuKey(ev)
		return
	}
	if p := r.m.FocusedPane(); p != nil && p.Copy != nil {
		r.copyModeKey(p, ev)
		return
	}
	switch r.state {
	case stateRename:
		r.renameKey(ev)
		return
	case stateNumberSelect:
		r.numberSelectKey(ev)
		return
	}
	if r.ui.ThemeVisible {
		r.themeKey(ev)
		return
	}
	if r.ui.Selector.Visible {
		r.selectorKey(ev)
		return
	}
	if r.state == statePrefix {
		r.prefixKey(ev)
		return
	}

	// NORMAL state.
	prefixLetter := rune(r.cfg.PrefixLetter())
	if ev.Type == KeyRune && ev.Mods == ModCtrl && ev.Rune == prefixLetter {
		r.state = statePrefix
		r.render()
		return
	}

	// Ctrl+R opens history search outside full-screen apps.
	if ev.Type == KeyRune && ev.Mods == ModCtrl && ev.Rune == 'r' && !r.m.InAlternateScreen() {
		r.ui.Selector.Show()
		r.render()
		return
	}

	// Record the command line on Enter before the child consumes it.
	if ev.Type == KeyEnter && !r.m.InAlternateScreen() {
		if line, ok := r.m.CurrentLine(); ok {
			if stripped := history.StripPrompt(line); stripped != "" {
				r.ui.Selector.Store.Add(stripped)
			}
		}
	}

	// Any typed key returns the view to the live screen.
	r.m.ScrollToLive()

	p := r.m.FocusedPane()
	if p == nil {
		return
	}
	if bytes := MapKey(ev, p.Term.Modes()); len(bytes) > 0 {
		_ = p.Write(bytes)
	}
}

// prefixKey dispatches the command alphabet after the prefix key.
// Unrecognized keys cancel silently.
func (r *Router) prefixKey(ev KeyEvent) {
	r.state = stateNormal
	defer r.render()

	if ev.Type == KeyEsc {
		return
	}

	// Arrows: focus move, or resize with Ctrl held.
	switch ev.Type {
	case KeyLeft:
		r.arrowCommand(wm.SplitVertical, false, ev.Mods)
		return
	case KeyRight:
		r.arrowCommand(wm.SplitVertical, true, ev.Mods)
		return
	case KeyUp:
		r.arrowCommand(wm.SplitHorizontal, false, ev.Mods)
		return
	case KeyDown:
		r.arrowCommand(wm.SplitHorizontal, true, ev.Mods)
		return
	}

	if ev.Type != KeyRune {
		return
	}

	tab := r.m.ActiveTab()

	// Prefix-prefix (Ctrl+B Ctrl+B or Ctrl+B b) sends a literal prefix
	// byte to the child.
	if ev.Rune == rune(r.cfg.PrefixLetter()) {
		if b, err := r.cfg.PrefixByte(); err == nil {
			_ = r.m.WriteFocused([]byte{b})
		}
		return
	}

	if ev.Rune != '&' {
		r.pendingKillTab = false
	}

	switch ev.Rune {
	case 'c':
		r.m.NewTab()
	case 'x':
		r.m.CloseFocusedPane()
		if !r.m.Running() {
			r.quit = true
		}
	case '&':
		if tab != nil && tab.AnyAlive() && !r.pendingKillTab {
			r.pendingKillTab = true
			r.statusNote = "pane(s) still running, prefix & again to kill tab"
			return
		}
		r.pendingKillTab = false
		r.m.CloseTab()
	case '"':
		r.m.Split(wm.SplitHorizontal)
	case '%':
		r.m.Split(wm.SplitVertical)
	case 'n':
		r.m.NextTab()
	case 'p':
		r.m.PrevTab()
	case 'l':
		r.m.ToggleLastTab()
	case 'o':
		if tab != nil {
			tab.FocusNext()
			r.m.Bump()
		}
	case ';':
		if tab != nil {
			tab.FocusPrev()
			r.m.Bump()
		}
	case 'z':
		if tab != nil {
			tab.ToggleZoom()
			r.m.Bump()
		}
	case ',':
		r.state = stateRename
		r.ui.RenameActive = true
		r.ui.RenameBuffer = ""
		if tab != nil {
			r.ui.RenameBuffer = tab.Name
		}
	case ' ':
		if tab != nil {
			tab.NextLayout()
			r.m.Bump()
		}
	case '[':
		r.enterCopyMode(false)
	case '/':
		r.enterCopyMode(true)
	case 't':
		r.ui.ThemeVisible = true
		r.ui.ThemeIndex = 0
	case '+', '=':
		if tab != nil && tab.ResizePaneDirection(wm.SplitVertical, false) {
			r.m.Bump()
		}
	case '-':
		if tab != nil && tab.ResizePaneDirection(wm.SplitVertical, true) {
			r.m.Bump()
		}
	case '}':
		if tab != nil {
			tab.SwapNext()
			r.m.Bump()
		}
	case '{':
		if tab != nil {
			tab.SwapPrev()
			r.m.Bump()
		}
	case 'q':
		r.state = stateNumberSelect
		r.numberDeadline = time.Now().Add(numberSelectTimeout)
		r.ui.PaneNumbersVisible = true
		r.overlayExpiry = time.Now().Add(paneNumbersDisplay)
	case 'd':
		// Detach is a non-goal; swallow the key like the original.
	default:
		if ev.Rune >= '0' && ev.Rune <= '9' {
			r.m.GotoTab(int(ev.Rune - '0'))
		}
	}
}

func (r *Router) arrowCommand(o wm.Orientation, forward bool, mods KeyMods) {
	tab := r.m.ActiveTab()
	if tab == nil {
		return
	}
	if mods&ModCtrl != 0 {
		if tab.ResizePaneDirection(o, !forward) {
			r.m.Bump()
		}
		return
	}
	tab.FocusDirection(o, forward)
	r.m.Bump()
}

func (r *Router) enterCopyMode(search bool) {
	p := r.m.FocusedPane()
	if p == nil {
		return
	}
	p.Copy = copymode.Enter(p.Term)
	if search {
		p.Copy.StartSearch(true)
	}
	r.m.Bump()
}

func (r *Router) numberSelectKey(ev KeyEvent) {
	r.state = stateNormal
	r.ui.PaneNumbersVisible = false
	defer r.render()
	if ev.Type != KeyRune || ev.Rune < '0' || ev.Rune > '9' {
		return
	}
	tab := r.m.ActiveTab()
	if tab == nil {
		return
	}
	idx := int(ev.Rune - '0')
	if idx < len(tab.PaneOrder) {
		tab.FocusPane(tab.PaneOrder[idx])
		r.m.Bump()
	}
}

func (r *Router) renameKey(ev KeyEvent) {
	defer r.render()
	switch ev.Type {
	case KeyEsc:
		r.state = stateNormal
		r.ui.RenameActive = false
	case KeyEnter:
		if r.ui.RenameBuffer != "" {
			r.m.RenameActiveTab(r.ui.RenameBuffer)
		}
		r.state = stateNormal
		r.ui.RenameActive = false
	case KeyBackspace:
		if rs := []rune(r.ui.RenameBuffer); len(rs) > 0 {
			r.ui.RenameBuffer = string(rs[:len(rs)-1])
		}
	case KeyRune:
		if len([]rune(r.ui.RenameBuffer)) < 30 && ev.Mods&ModCtrl == 0 {
			r.ui.RenameBuffer += string(ev.Rune)
		}
	}
}

func (r *Router) themeKey(ev KeyEvent) {
	defer r.render()
	switch ev.Type {
	case KeyEsc:
		r.ui.ThemeVisible = false
	case KeyUp:
		if r.ui.ThemeIndex > 0 {
			r.ui.ThemeIndex--
		}
	case KeyDown:
		if r.ui.ThemeIndex+1 < len(r.ui.ThemeList) {
			r.ui.ThemeIndex++
		}
	case KeyEnter:
		r.applyTheme(r.ui.ThemeIndex)
	case KeyRune:
		if ev.Rune >= '1' && ev.Rune <= '9' {
			if idx := int(ev.Rune - '1'); idx < len(r.ui.ThemeList) {
				r.applyTheme(idx)
			}
		}
	}
}

func (r *Router) applyTheme(idx int) {
	r.ren.SetScheme(config.SchemeByName(r.ui.ThemeList[idx]))
	r.ui.ThemeVisible = false
	r.m.Bump()
}

func (r *Router) selectorKey(ev KeyEvent) {
	sel := r.ui.Selector
	defer r.render()
	switch ev.Type {
	case KeyEsc:
		sel.Hide()
	case KeyEnter:
		if cmd, ok := sel.Confirm(); ok {
			switch {
			case ev.Mods&ModShift != 0:
				_ = r.m.WriteFocused([]byte(" && " + cmd))
			case ev.Mods&ModCtrl != 0:
				_ = r.m.WriteFocused([]byte(" & " + cmd))
			default:
				r.clearCurrentInput()
				_ = r.m.WriteFocused([]byte(cmd))
			}
		}
	case KeyUp:
		sel.Up()
	case KeyDown:
		sel.Down()
	case KeyBackspace:
		sel.Backspace()
	case KeyRune:
		if sel.Query == "" && ev.Rune >= '1' && ev.Rune <= '9' {
			if cmd, ok := sel.SelectNumber(int(ev.Rune - '0')); ok {
				r.clearCurrentInput()
				_ = r.m.WriteFocused([]byte(cmd))
			}
			return
		}
		if ev.Mods&ModCtrl == 0 {
			sel.Input(ev.Rune)
		}
	}
}

// clearCurrentInput backspaces over the focused pane's pending input
// line before injecting a history command.
func (r *Router) clearCurrentInput() {
	line, ok := r.m.CurrentLine()
	if !ok {
		return
	}
	stripped := history.StripPrompt(line)
	for range stripped {
		_ = r.m.WriteFocused([]byte{0x08})
	}
}

func (r *Router) copyModeKey(p *wm.Pane, ev KeyEvent) {
	cm := p.Copy
	defer r.render()

	if cm.State == copymode.StateSearchPrompt {
		switch ev.Type {
		case KeyEsc:
			cm.CancelSearch()
		case KeyEnter:
			cm.ExecuteSearch()
		case KeyBackspace:
			cm.SearchBackspace()
		case KeyRune:
			if ev.Mods&ModCtrl == 0 {
				cm.SearchInput(ev.Rune)
			}
		}
		return
	}

	if ev.Mods&ModCtrl != 0 && ev.Type == KeyRune {
		switch ev.Rune {
		case 'u':
			cm.HalfPageUp()
		case 'd':
			cm.HalfPageDown()
		case 'b':
			cm.PageUp()
		case 'f':
			cm.PageDown()
		}
		return
	}

	switch ev.Type {
	case KeyEsc:
		p.Copy = nil
		r.m.Bump()
		return
	case KeyUp:
		cm.CursorUp()
		return
	case KeyDown:
		cm.CursorDown()
		return
	case KeyLeft:
		cm.CursorLeft()
		return
	case KeyRight:
		cm.CursorRight()
		return
	case KeyPageUp:
		cm.PageUp()
		return
	case KeyPageDown:
		cm.PageDown()
		return
	case KeyEnter:
		r.yank(p)
		return
	}

	if ev.Type != KeyRune {
		return
	}
	switch ev.Rune {
	case 'q':
		p.Copy = nil
		r.m.Bump()
	case 'h':
		cm.CursorLeft()
	case 'j':
		cm.CursorDown()
	case 'k':
		cm.CursorUp()
	case 'l':
		cm.CursorRight()
	case '0':
		cm.LineStart()
	case '$':
		cm.LineEnd()
	case 'g':
		cm.GotoTop()
	case 'G':
		cm.GotoBottom()
	case ' ', 'v':
		cm.ToggleSelection()
	case 'y':
		r.yank(p)
	case '/':
		cm.StartSearch(true)
	case '?':
		cm.StartSearch(false)
	case 'n':
		cm.NextMatch()
	case 'N':
		cm.PrevMatch()
	}
}

func (r *Router) yank(p *wm.Pane) {
	text, ok := p.Copy.Yank()
	if !ok {
		return
	}
	if err := r.clip.WriteAll(text); err != nil {
		r.statusNote = "clipboard write failed"
	}
	p.Copy = nil
	r.m.Bump()
}

func (r *Router) menuKey(ev KeyEvent) {
	menu := r.ui.Menu
	defer r.render()
	switch ev.Type {
	case KeyEsc:
		menu.Hide()
	case KeyUp:
		menu.Up()
	case KeyDown:
		menu.Down()
	case KeyEnter:
		r.executeMenuAction(menu.SelectedAction())
		menu.Hide()
	case KeyRune:
		switch ev.Rune {
		case 'k':
			menu.Up()
		case 'j':
			menu.Down()
		case ' ':
			r.executeMenuAction(menu.SelectedAction())
			menu.Hide()
		}
	}
}

func (r *Router) executeMenuAction(action MenuAction) {
	switch action {
	case MenuPaste:
		text, err := r.clip.ReadAll()
		if err != nil || text == "" {
			return
		}
		r.sendPaste(text)
	case MenuKillPane:
		r.m.CloseFocusedPane()
		if !r.m.Running() {
			r.quit = true
		}
	case MenuSplitHorizontal:
		r.m.Split(wm.SplitHorizontal)
	case MenuSplitVertical:
		r.m.Split(wm.SplitVertical)
	case MenuToggleZoom:
		if tab := r.m.ActiveTab(); tab != nil {
			tab.ToggleZoom()
			r.m.Bump()
		}
	}
}

func (r *Router) handlePaste(ev PasteEvent) {
	r.sendPaste(ev.Text)
}

// sendPaste forwards pasted text, bracketed when the focused child has
// requested bracketed paste, raw with newlines preserved otherwise.
func (r *Router) sendPaste(text string) {
	p := r.m.FocusedPane()
	if p == nil {
		return
	}
	if p.Term.Modes().BracketedPaste {
		_ = p.Write([]byte("\x1b[200~"))
		_ = p.Write([]byte(text))
		_ = p.Write([]byte("\x1b[201~"))
		return
	}
	_ = p.Write([]byte(text))
}

// handleMouse applies the passthrough decision ladder: overlays first,
// Shift forces host handling, then child mouse tracking, then wtmux's
// own gestures.
func (r *Router) handleMouse(ev MouseEvent) {
	// 1. A visible overlay consumes the event.
	if r.ui.Selector.Visible {
		r.ui.Selector.Hide()
		r.render()
		return
	}
	if r.ui.Menu.Visible {
		r.menuMouse(ev)
		return
	}

	// 2. Shift bypasses passthrough for wtmux's own selection.
	shift := ev.Mods&ModShift != 0

	// 3. Child mouse tracking, inside the focused pane's content area.
	if !shift {
		if p := r.m.FocusedPane(); p != nil && p.Copy == nil && p.Term.Modes().MouseEnabled() {
			if tp, px, py, ok := r.m.ScreenToPane(ev.X, ev.Y); ok && tp == p {
				modes := p.Term.Modes()
				local := ev
				local.X, local.Y = px, py
				if bytes := EncodeMouse(local, modes.MouseSGR, modes.MouseURXVT); len(bytes) > 0 {
					_ = p.Write(bytes)
				}
				return
			}
		}
	}

	// 4. wtmux handling.
	if ev.Y < r.m.TabBarHeight {
		if ev.Kind == MousePress && ev.Button == 0 {
			if id, ok := r.ren.TabHit(ev.X); ok {
				r.m.GotoTab(r.tabPosition(id))
				r.render()
			}
		}
		return
	}

	switch ev.Kind {
	case MousePress:
		switch ev.Button {
		case 0:
			r.leftPress(ev)
		case 2:
			r.rightPress(ev)
		}
	case MouseDrag:
		if ev.Button == 0 {
			if p := r.m.FocusedPane(); p != nil {
				if _, px, py, ok := r.m.ScreenToPane(ev.X, ev.Y); ok {
					p.Term.UpdateSelection(px, py)
				}
			}
			r.render()
		}
	case MouseRelease:
		if p := r.m.FocusedPane(); p != nil && p.Term.HasSelection() {
			if text := p.Term.SelectedText(); text != "" {
				if err := r.clip.WriteAll(text); err != nil {
					r.statusNote = "clipboard write failed"
				}
			}
			p.Term.ClearSelection()
			r.render()
		}
	case MouseWheelUp:
		r.wheelScroll(ev, 3)
	case MouseWheelDown:
		r.wheelScroll(ev, -3)
	}
}

func (r *Router) tabPosition(id wm.TabID) int {
	for i, v := range r.m.TabOrder {
		if v == id {
			return i + 1
		}
	}
	return 1
}

func (r *Router) leftPress(ev MouseEvent) {
	tab := r.m.ActiveTab()
	if tab == nil {
		return
	}
	p, px, py, ok := r.m.ScreenToPane(ev.X, ev.Y)
	if !ok {
		return
	}
	if p.ID != tab.Focused {
		tab.FocusPane(p.ID)
		r.m.Bump()
	}
	p.Term.StartSelection(px, py)
	r.render()
}

func (r *Router) rightPress(ev MouseEvent) {
	p, _, _, ok := r.m.ScreenToPane(ev.X, ev.Y)
	if !ok {
		return
	}
	r.ui.Menu.Show(p.ID, ev.X, ev.Y, r.m.Width, r.m.Height)
	r.render()
}

func (r *Router) wheelScroll(ev MouseEvent, delta int) {
	if p, _, _, ok := r.m.ScreenToPane(ev.X, ev.Y); ok {
		p.Term.ScrollView(delta)
		r.render()
		return
	}
	r.m.ScrollFocused(delta)
	r.render()
}

func (r *Router) menuMouse(ev MouseEvent) {
	menu := r.ui.Menu
	switch ev.Kind {
	case MousePress:
		if ev.Button == 0 {
			if action, hit := menu.HitTest(ev.X, ev.Y); hit {
				r.executeMenuAction(action)
			}
			menu.Hide()
			r.render()
			return
		}
		if ev.Button == 2 {
			menu.Hide()
			r.render()
		}
	case MouseMotion, MouseDrag:
		if menu.UpdateHover(ev.X, ev.Y) {
			r.render()
		}
	}
}
