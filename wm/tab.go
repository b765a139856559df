package wm

import (
	"strconv"

	wtmux "github.com/phroun/wtmux"
)

// TabID is a stable tab identifier.
type TabID uint64

// Tab owns one split tree and the panes it references, a focused-pane
// pointer, a last-focused pointer for toggling, and an optional zoom
// target. Zoom is a rendering override only; the tree is not mutated.
type Tab struct {
	ID   TabID
	Name string

	Layout      *Node
	Panes       map[PaneID]*Pane
	PaneOrder   []PaneID
	Focused     PaneID
	LastFocused PaneID

	W, H int

	Zoomed    PaneID // 0 = not zoomed
	preset    LayoutPreset
	nextPane  PaneID
	scrollbak int
	spawn     wtmux.SpawnOptions
}

// NewTab creates a tab with a single spawned pane filling it.
func NewTab(id TabID, name string, w, h, scrollback int, spawn wtmux.SpawnOptions) *Tab {
	t := &Tab{
		ID:        id,
		Name:      name,
		Panes:     make(map[PaneID]*Pane),
		W:         w,
		H:         h,
		preset:    PresetCustom,
		nextPane:  1,
		scrollbak: scrollback,
		spawn:     spawn,
	}
	pid := t.allocPane()
	p := newPane(pid, w, h, scrollback, spawn)
	p.Focused = true
	t.Panes[pid] = p
	t.PaneOrder = []PaneID{pid}
	t.Focused = pid
	t.Layout = NewLeaf(pid)
	t.Reflow()
	return t
}

func (t *Tab) allocPane() PaneID {
	id := t.nextPane
	t.nextPane++
	return id
}

// Reflow is the single geometry entry point: it recomputes every
// pane's rectangle from the split tree, applies the zoom override, and
// resizes terminals and children whose size changed. It must be called
// exactly once per structural change; with no intervening mutation it
// is a no-op on pane contents.
func (t *Tab) Reflow() {
	if len(t.Panes) == 0 {
		return
	}
	border := len(t.Panes) > 1

	if z, ok := t.Panes[t.Zoomed]; ok && t.Zoomed != 0 {
		// Zoom override: the target gets the whole tab area, every
		// other pane keeps its previous geometry untouched.
		z.applyGeometry(Geometry{ID: z.ID, X: 0, Y: 0, W: t.W, H: t.H}, false)
		return
	}

	for _, g := range t.Layout.Positions(0, 0, t.W, t.H) {
		if p, ok := t.Panes[g.ID]; ok {
			p.applyGeometry(g, border)
		}
	}
}

// Split replaces the focused leaf with a split and spawns a pane in
// the fresh half. Splitting while zoomed unzooms first.
func (t *Tab) Split(o Orientation) (PaneID, bool) {
	t.Zoomed = 0

	fresh := t.allocPane()
	if !t.Layout.Split(t.Focused, fresh, o) {
		t.nextPane--
		return 0, false
	}

	// Geometry for the new pane is derived from the mutated tree; the
	// pane spawns at approximately its final size and reflow corrects
	// the rest.
	var g Geometry
	for _, pos := range t.Layout.Positions(0, 0, t.W, t.H) {
		if pos.ID == fresh {
			g = pos
			break
		}
	}
	// After a split every pane is bordered, so the child spawns at the
	// inner size.
	p := newPane(fresh, g.W-2, g.H-2, t.scrollbak, t.spawn)
	t.Panes[fresh] = p
	t.PaneOrder = append(t.PaneOrder, fresh)
	t.FocusPane(fresh)
	t.Reflow()
	return fresh, true
}

// ClosePane kills and removes a pane; the sibling collapses up. The
// tab reports empty through Empty() once its last pane closes.
func (t *Tab) ClosePane(id PaneID) bool {
	p, ok := t.Panes[id]
	if !ok {
		return false
	}
	p.Kill()
	t.Layout = t.Layout.Remove(id)
	delete(t.Panes, id)
	t.PaneOrder = removeID(t.PaneOrder, id)
	if t.Zoomed == id {
		t.Zoomed = 0
	}
	if t.LastFocused == id {
		t.LastFocused = 0
	}
	if t.Focused == id && len(t.PaneOrder) > 0 {
		t.Focused = 0
		t.FocusPane(t.PaneOrder[0])
	}
	if t.Layout == nil {
		t.Layout = NewLeaf(0)
		return true
	}
	t.Reflow()
	return true
}

func removeID(ids []PaneID, id PaneID) []PaneID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Empty reports whether the tab has no panes left.
func (t *Tab) Empty() bool {
	return len(t.Panes) == 0
}

// FocusPane moves focus, tracking the previous pane for toggling.
func (t *Tab) FocusPane(id PaneID) {
	if id == t.Focused {
		return
	}
	if cur, ok := t.Panes[t.Focused]; ok {
		cur.Focused = false
		t.LastFocused = t.Focused
	}
	if p, ok := t.Panes[id]; ok {
		p.Focused = true
		t.Focused = id
	}
}

// FocusedPane returns the focused pane, or nil.
func (t *Tab) FocusedPane() *Pane {
	return t.Panes[t.Focused]
}

// FocusDirection moves focus to the geometric neighbor.
func (t *Tab) FocusDirection(o Orientation, forward bool) {
	if id, ok := t.Layout.FindNeighbor(t.Focused, o, forward, t.W, t.H); ok {
		t.FocusPane(id)
	}
}

// FocusNext cycles focus forward in pane order.
func (t *Tab) FocusNext() {
	t.focusStep(1)
}

// FocusPrev cycles focus backward in pane order.
func (t *Tab) FocusPrev() {
	t.focusStep(-1)
}

func (t *Tab) focusStep(delta int) {
	n := len(t.PaneOrder)
	if n == 0 {
		return
	}
	for i, id := range t.PaneOrder {
		if id == t.Focused {
			t.FocusPane(t.PaneOrder[(i+delta+n)%n])
			return
		}
	}
}

// Resize updates the tab's area and reflows.
func (t *Tab) Resize(w, h int) {
	if w == t.W && h == t.H {
		return
	}
	t.W, t.H = w, h
	t.Reflow()
}

// ResizePaneDirection grows or shrinks the focused pane against the
// nearest matching split boundary. Ignored while zoomed.
func (t *Tab) ResizePaneDirection(o Orientation, shrink bool) bool {
	if t.Zoomed != 0 {
		return false
	}
	if !t.Layout.ResizeInDirection(t.Focused, o, shrink, t.W, t.H) {
		return false
	}
	t.Reflow()
	return true
}

// SwapNext exchanges the focused pane with the next in order.
func (t *Tab) SwapNext() {
	t.swapStep(1)
}

// SwapPrev exchanges the focused pane with the previous in order.
func (t *Tab) SwapPrev() {
	t.swapStep(-1)
}

func (t *Tab) swapStep(delta int) {
	n := len(t.PaneOrder)
	if n <= 1 {
		return
	}
	for i, id := range t.PaneOrder {
		if id == t.Focused {
			j := (i + delta + n) % n
			t.Layout.SwapPanes(id, t.PaneOrder[j])
			t.PaneOrder[i], t.PaneOrder[j] = t.PaneOrder[j], t.PaneOrder[i]
			t.Reflow()
			return
		}
	}
}

// ToggleZoom zooms the focused pane or restores the layout. The tree
// is untouched either way; unzooming reflows the saved tree so the
// prior grid contents reappear without clearing.
func (t *Tab) ToggleZoom() {
	if len(t.Panes) <= 1 {
		return
	}
	if t.Zoomed != 0 {
		t.Zoomed = 0
	} else {
		t.Zoomed = t.Focused
	}
	t.Reflow()
}

// IsZoomed reports whether a zoom override is active.
func (t *Tab) IsZoomed() bool {
	return t.Zoomed != 0
}

// ApplyPreset rebuilds the tree with the given arrangement, keeping
// pane IDs.
func (t *Tab) ApplyPreset(preset LayoutPreset) {
	if len(t.Panes) <= 1 {
		return
	}
	t.Zoomed = 0
	t.preset = preset
	t.Layout = FromPreset(preset, t.PaneOrder)
	t.Reflow()
}

// NextLayout cycles to the following preset.
func (t *Tab) NextLayout() {
	t.ApplyPreset(t.preset.Next())
}

// PaneAt returns the pane covering a tab-local cell. While zoomed only
// the zoom target is visible.
func (t *Tab) PaneAt(x, y int) (*Pane, bool) {
	if t.Zoomed != 0 {
		if p, ok := t.Panes[t.Zoomed]; ok {
			return p, true
		}
	}
	for _, id := range t.PaneOrder {
		p := t.Panes[id]
		if p.Contains(x, y) {
			return p, true
		}
	}
	return nil, false
}

// AnyAlive reports whether any pane's child is still running.
func (t *Tab) AnyAlive() bool {
	for _, p := range t.Panes {
		if p.Session != nil && !p.Dead && p.Session.Alive() {
			return true
		}
	}
	return false
}

// Kill terminates every pane in the tab.
func (t *Tab) Kill() {
	for _, p := range t.Panes {
		p.Kill()
	}
	t.Panes = make(map[PaneID]*Pane)
	t.PaneOrder = nil
}

// DefaultTabName builds the id:shell display name.
func DefaultTabName(id TabID, shell wtmux.Shell) string {
	label := "shell"
	switch shell.Kind {
	case wtmux.PowerShell:
		label = "powershell"
	case wtmux.Pwsh:
		label = "pwsh"
	case wtmux.Wsl:
		label = "wsl"
	case wtmux.CustomShell:
		if shell.Path != "" {
			label = shell.Path
		}
	case wtmux.CmdShell:
		label = "cmd"
	}
	return strconv.FormatUint(uint64(id), 10) + ":" + label
}
