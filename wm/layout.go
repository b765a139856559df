// Package wm arranges panes into tabs with a binary split-tree layout
// and manages tab and pane lifecycle for the multiplexer.
package wm

import "math"

// PaneID is a stable pane identifier. The layout tree holds IDs, not
// owning references; the pane table is the owner.
type PaneID uint64

// Orientation is the direction of a split.
type Orientation int

const (
	// SplitHorizontal stacks the two children top/bottom
	// (a horizontal divider, tmux prefix-").
	SplitHorizontal Orientation = iota
	// SplitVertical places the two children side by side
	// (a vertical divider, tmux prefix-%).
	SplitVertical
)

// LayoutPreset names the rebuildable arrangements.
type LayoutPreset int

const (
	PresetCustom LayoutPreset = iota
	PresetEvenHorizontal
	PresetEvenVertical
	PresetMainHorizontal
	PresetMainVertical
	PresetTiled
)

// Next cycles to the following preset.
func (p LayoutPreset) Next() LayoutPreset {
	switch p {
	case PresetCustom, PresetTiled:
		return PresetEvenHorizontal
	case PresetEvenHorizontal:
		return PresetEvenVertical
	case PresetEvenVertical:
		return PresetMainHorizontal
	case PresetMainHorizontal:
		return PresetMainVertical
	default:
		return PresetTiled
	}
}

// minPaneSpan is the smallest width or height a resize may leave a pane.
const minPaneSpan = 3

// Node is a layout tree node: either a leaf holding a pane ID or a
// split with two children and a ratio for the first.
type Node struct {
	Pane        PaneID // Leaf payload; valid when First == nil
	Orientation Orientation
	Ratio       float64
	First       *Node
	Second      *Node
}

// Geometry is a pane's assigned rectangle.
type Geometry struct {
	ID         PaneID
	X, Y, W, H int
}

// NewLeaf creates a single-pane layout.
func NewLeaf(id PaneID) *Node {
	return &Node{Pane: id}
}

// IsLeaf reports whether the node holds a pane.
func (n *Node) IsLeaf() bool {
	return n.First == nil
}

// Split replaces the target leaf with a split whose children are the
// original leaf and a fresh leaf at ratio 0.5. Returns false if the
// target is not in this subtree.
func (n *Node) Split(target, fresh PaneID, o Orientation) bool {
	if n.IsLeaf() {
		if n.Pane != target {
			return false
		}
		n.First = NewLeaf(target)
		n.Second = NewLeaf(fresh)
		n.Orientation = o
		n.Ratio = 0.5
		n.Pane = 0
		return true
	}
	return n.First.Split(target, fresh, o) || n.Second.Split(target, fresh, o)
}

// Remove deletes a leaf; its sibling collapses up to replace the parent
// split. Returns the new subtree root, or nil if the subtree emptied.
func (n *Node) Remove(id PaneID) *Node {
	if n.IsLeaf() {
		if n.Pane == id {
			return nil
		}
		return n
	}
	first := n.First.Remove(id)
	second := n.Second.Remove(id)
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	default:
		n.First = first
		n.Second = second
		return n
	}
}

// PaneIDs returns all leaf IDs in tree order.
func (n *Node) PaneIDs() []PaneID {
	if n.IsLeaf() {
		return []PaneID{n.Pane}
	}
	return append(n.First.PaneIDs(), n.Second.PaneIDs()...)
}

// Contains reports whether the pane is in this subtree.
func (n *Node) Contains(id PaneID) bool {
	if n.IsLeaf() {
		return n.Pane == id
	}
	return n.First.Contains(id) || n.Second.Contains(id)
}

// Positions walks the tree and allocates integer rectangles. The first
// child of a split gets round(ratio*span); the remainder goes to the
// second.
func (n *Node) Positions(x, y, w, h int) []Geometry {
	if n.IsLeaf() {
		return []Geometry{{ID: n.Pane, X: x, Y: y, W: w, H: h}}
	}
	if n.Orientation == SplitVertical {
		firstW := int(math.Round(n.Ratio * float64(w)))
		if firstW < 0 {
			firstW = 0
		}
		if firstW > w {
			firstW = w
		}
		out := n.First.Positions(x, y, firstW, h)
		return append(out, n.Second.Positions(x+firstW, y, w-firstW, h)...)
	}
	firstH := int(math.Round(n.Ratio * float64(h)))
	if firstH < 0 {
		firstH = 0
	}
	if firstH > h {
		firstH = h
	}
	out := n.First.Positions(x, y, w, firstH)
	return append(out, n.Second.Positions(x, y+firstH, w, h-firstH)...)
}

// FindNeighbor returns the geometrically nearest pane in the given
// direction, preferring overlap on the perpendicular axis.
func (n *Node) FindNeighbor(from PaneID, o Orientation, forward bool, w, h int) (PaneID, bool) {
	positions := n.Positions(0, 0, w, h)
	var cur *Geometry
	for i := range positions {
		if positions[i].ID == from {
			cur = &positions[i]
			break
		}
	}
	if cur == nil {
		return 0, false
	}

	overlap := func(a0, al, b0, bl int) bool {
		return a0 < b0+bl && b0 < a0+al
	}

	var best *Geometry
	for i := range positions {
		g := &positions[i]
		if g.ID == from {
			continue
		}
		if o == SplitVertical {
			// Left / right: Y ranges must overlap.
			if !overlap(cur.Y, cur.H, g.Y, g.H) {
				continue
			}
			if forward && g.X > cur.X && (best == nil || g.X < best.X) {
				best = g
			}
			if !forward && g.X < cur.X && (best == nil || g.X > best.X) {
				best = g
			}
		} else {
			// Up / down: X ranges must overlap.
			if !overlap(cur.X, cur.W, g.X, g.W) {
				continue
			}
			if forward && g.Y > cur.Y && (best == nil || g.Y < best.Y) {
				best = g
			}
			if !forward && g.Y < cur.Y && (best == nil || g.Y > best.Y) {
				best = g
			}
		}
	}
	if best == nil {
		return 0, false
	}
	return best.ID, true
}

// ResizeInDirection adjusts the nearest ancestor split of the matching
// orientation by a 5% step, tmux style: the boundary on the second side
// (bottom/right) moves first; failing that, the first side. The change
// is rejected, not clamped, when it would shrink any pane below
// minPaneSpan in either dimension.
func (n *Node) ResizeInDirection(id PaneID, o Orientation, shrink bool, w, h int) bool {
	if n.tryMoveBoundary(id, o, true, shrink) || n.tryMoveBoundary(id, o, false, shrink) {
		if n.minSpan(w, h) < minPaneSpan {
			// Revert: apply the opposite step to the same boundary.
			if !n.tryMoveBoundary(id, o, true, !shrink) {
				n.tryMoveBoundary(id, o, false, !shrink)
			}
			return false
		}
		return true
	}
	return false
}

const resizeStep = 0.05

func (n *Node) tryMoveBoundary(id PaneID, o Orientation, secondSide, shrink bool) bool {
	if n.IsLeaf() {
		return false
	}
	if n.Orientation == o {
		if secondSide {
			if n.First.IsLeaf() && n.First.Pane == id {
				n.adjust(shrink)
				return true
			}
		} else {
			if n.Second.IsLeaf() && n.Second.Pane == id {
				n.adjust(shrink)
				return true
			}
		}
	}
	if n.First.Contains(id) {
		return n.First.tryMoveBoundary(id, o, secondSide, shrink)
	}
	if n.Second.Contains(id) {
		return n.Second.tryMoveBoundary(id, o, secondSide, shrink)
	}
	return false
}

func (n *Node) adjust(shrink bool) {
	if shrink {
		n.Ratio -= resizeStep
	} else {
		n.Ratio += resizeStep
	}
	if n.Ratio < 0.1 {
		n.Ratio = 0.1
	}
	if n.Ratio > 0.9 {
		n.Ratio = 0.9
	}
}

// minSpan returns the smallest width or height any leaf would get.
func (n *Node) minSpan(w, h int) int {
	min := w
	if h < min {
		min = h
	}
	for _, g := range n.Positions(0, 0, w, h) {
		if g.W < min {
			min = g.W
		}
		if g.H < min {
			min = g.H
		}
	}
	return min
}

// SwapPanes exchanges two leaf IDs in place; geometry is re-derived by
// the next reflow.
func (n *Node) SwapPanes(a, b PaneID) {
	n.replacePane(a, 0)
	n.replacePane(b, a)
	n.replacePane(0, b)
}

func (n *Node) replacePane(from, to PaneID) {
	if n.IsLeaf() {
		if n.Pane == from {
			n.Pane = to
		}
		return
	}
	n.First.replacePane(from, to)
	n.Second.replacePane(from, to)
}

// FromPreset rebuilds a layout for the given pane set, preserving IDs.
func FromPreset(preset LayoutPreset, ids []PaneID) *Node {
	if len(ids) == 0 {
		return NewLeaf(0)
	}
	if len(ids) == 1 {
		return NewLeaf(ids[0])
	}
	switch preset {
	case PresetEvenVertical:
		return buildEven(ids, SplitHorizontal)
	case PresetMainHorizontal:
		return mainSplit(ids, SplitHorizontal)
	case PresetMainVertical:
		return mainSplit(ids, SplitVertical)
	case PresetTiled:
		return tiled(ids)
	default:
		return buildEven(ids, SplitVertical)
	}
}

// buildEven divides the panes evenly along one axis.
func buildEven(ids []PaneID, o Orientation) *Node {
	if len(ids) == 1 {
		return NewLeaf(ids[0])
	}
	mid := len(ids) / 2
	return &Node{
		Orientation: o,
		Ratio:       float64(mid) / float64(len(ids)),
		First:       buildEven(ids[:mid], o),
		Second:      buildEven(ids[mid:], o),
	}
}

// mainSplit gives the first pane 60% along the main axis and spreads
// the rest evenly across the other.
func mainSplit(ids []PaneID, o Orientation) *Node {
	if len(ids) <= 2 {
		return buildEven(ids, o)
	}
	rest := SplitVertical
	if o == SplitVertical {
		rest = SplitHorizontal
	}
	return &Node{
		Orientation: o,
		Ratio:       0.6,
		First:       NewLeaf(ids[0]),
		Second:      buildEven(ids[1:], rest),
	}
}

// tiled arranges the panes into a near-square grid.
func tiled(ids []PaneID) *Node {
	if len(ids) <= 2 {
		return buildEven(ids, SplitVertical)
	}
	cols := int(math.Ceil(math.Sqrt(float64(len(ids)))))
	var rows []*Node
	for start := 0; start < len(ids); start += cols {
		end := start + cols
		if end > len(ids) {
			end = len(ids)
		}
		rows = append(rows, buildEven(ids[start:end], SplitVertical))
	}
	return stack(rows)
}

func stack(nodes []*Node) *Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	mid := len(nodes) / 2
	return &Node{
		Orientation: SplitHorizontal,
		Ratio:       float64(mid) / float64(len(nodes)),
		First:       stack(nodes[:mid]),
		Second:      stack(nodes[mid:]),
	}
}

// Equal reports structural equality of two layouts.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.IsLeaf() != o.IsLeaf() {
		return false
	}
	if n.IsLeaf() {
		return n.Pane == o.Pane
	}
	return n.Orientation == o.Orientation &&
		n.First.Equal(o.First) &&
		n.Second.Equal(o.Second)
}
