package wm

import (
	"fmt"

	wtmux "github.com/phroun/wtmux"
	"github.com/phroun/wtmux/copymode"
)

// Pane is one terminal-emulating subwindow. It exclusively owns its
// PTY session and terminal state; geometry is assigned by the layout
// engine through reflow and never self-set.
type Pane struct {
	ID   PaneID
	Term *wtmux.Term

	// Session is nil when the spawn failed; the error is shown in the
	// grid and the pane is dead from birth.
	Session *wtmux.Session
	parser  *wtmux.Parser

	// Geometry of the full pane rectangle, including the border frame
	// when Border is set.
	X, Y, W, H int
	Border     bool

	Focused  bool
	Dead     bool
	ExitCode int

	// Copy is non-nil while copy mode is active on this pane.
	Copy *copymode.Mode
}

// newPane creates a pane of the given inner size and spawns its child.
// A spawn failure produces a live Pane in the dead state with the error
// visible in its grid.
func newPane(id PaneID, cols, rows, scrollback int, spawn wtmux.SpawnOptions) *Pane {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	term := wtmux.NewTerm(cols, rows, scrollback)
	term.SetCursorStyle(spawn.CursorShape, spawn.CursorBlink)
	p := &Pane{
		ID:   id,
		Term: term,
	}
	p.parser = wtmux.NewParser(term)

	spawn.Cols = cols
	spawn.Rows = rows
	sess, err := wtmux.Spawn(spawn)
	if err != nil {
		p.Dead = true
		p.ExitCode = 1
		p.parser.ParseString(fmt.Sprintf("wtmux: %s\r\npress x to close this pane\r\n", err))
		return p
	}
	p.Session = sess
	return p
}

// Feed parses a chunk of child output into the terminal state.
func (p *Pane) Feed(data []byte) {
	p.parser.Parse(data)
}

// InnerPos returns the top-left of the content area inside the border.
func (p *Pane) InnerPos() (x, y int) {
	if p.Border {
		return p.X + 1, p.Y + 1
	}
	return p.X, p.Y
}

// InnerSize returns the content area dimensions inside the border.
func (p *Pane) InnerSize() (w, h int) {
	if p.Border {
		w, h = p.W-2, p.H-2
	} else {
		w, h = p.W, p.H
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return
}

// Contains reports whether a screen-space cell lies inside the pane
// rectangle.
func (p *Pane) Contains(x, y int) bool {
	return x >= p.X && x < p.X+p.W && y >= p.Y && y < p.Y+p.H
}

// ContainsInner reports whether a screen-space cell lies inside the
// content area.
func (p *Pane) ContainsInner(x, y int) bool {
	ix, iy := p.InnerPos()
	iw, ih := p.InnerSize()
	return x >= ix && x < ix+iw && y >= iy && y < iy+ih
}

// applyGeometry moves and sizes the pane, resizing its terminal and
// child only when the inner size actually changed.
func (p *Pane) applyGeometry(g Geometry, border bool) {
	p.X, p.Y = g.X, g.Y
	oldW, oldH := p.InnerSize()
	p.W, p.H = g.W, g.H
	p.Border = border
	w, h := p.InnerSize()
	if w == oldW && h == oldH {
		return
	}
	p.Term.Resize(w, h)
	if p.Session != nil && !p.Dead {
		_ = p.Session.Resize(w, h)
	}
}

// MarkDead freezes the pane after its child exited. The grid stays
// readable until the pane is explicitly closed.
func (p *Pane) MarkDead(exitCode int) {
	if p.Dead {
		return
	}
	p.Dead = true
	p.ExitCode = exitCode
	p.parser.ParseString(fmt.Sprintf("\r\n\x1b[7m[exited: %d, press x to close]\x1b[0m\r\n", exitCode))
}

// Title returns the pane's display title: the child-set window title,
// falling back to the pane number.
func (p *Pane) Title() string {
	if t := p.Term.Title(); t != "" {
		return t
	}
	return fmt.Sprintf("pane %d", p.ID)
}

// Write sends input bytes to the pane's child.
func (p *Pane) Write(data []byte) error {
	if p.Session == nil || p.Dead {
		return wtmux.ErrSessionClosed
	}
	_, err := p.Session.Write(data)
	return err
}

// Kill terminates the pane's child and releases the session.
func (p *Pane) Kill() {
	if p.Session != nil {
		p.Session.Kill()
	}
}
