// Package layout arranges widgets inside the surface by recursively
// splitting an offered region among stacked children. Leaves refer to
// widgets by index so the tree stays decoupled from the widget table it
// arranges.
package layout

import (
	"github.com/waydash/waydash"
)

// Table is the widget collection a layout tree arranges. GeometryUpdate
// offers a region to the widget at index; the widget claims a
// sub-rectangle of it and returns the claim.
type Table interface {
	GeometryUpdate(index int, offered waydash.Geometry) waydash.Geometry
}

type kind int

const (
	kindLeaf kind = iota
	kindVertical
	kindHorizontal
	kindInvertedHorizontal
	kindMargin
)

// Node is one element of the layout tree: a widget leaf, a directional
// stack, or a margin wrapper. The tree is rebuilt only when the widget
// set changes; Update re-runs on every configure.
type Node struct {
	kind     kind
	index    int
	children []*Node
	insets   waydash.Insets

	geometry waydash.Geometry
}

// Leaf returns a node occupying the slot of the widget at index in the
// table.
func Leaf(index int) *Node {
	return &Node{kind: kindLeaf, index: index}
}

// Vertical stacks children top to bottom. The stack is as wide as its
// widest child and as tall as the sum of child heights.
func Vertical(children ...*Node) *Node {
	return &Node{kind: kindVertical, children: children}
}

// Horizontal stacks children left to right.
func Horizontal(children ...*Node) *Node {
	return &Node{kind: kindHorizontal, children: children}
}

// InvertedHorizontal stacks children left to right but packs the run
// against the right edge of the offered region, for right-aligned rows.
func InvertedHorizontal(children ...*Node) *Node {
	return &Node{kind: kindInvertedHorizontal, children: children}
}

// Margin reserves fixed insets around its child. The insets count toward
// the node's own footprint, so a parent stacks subsequent children below
// the margin, not inside it.
func Margin(insets waydash.Insets, child *Node) *Node {
	return &Node{kind: kindMargin, insets: insets, children: []*Node{child}}
}

// Geometry returns the region claimed by the last Update.
func (n *Node) Geometry() waydash.Geometry { return n.geometry }

// Update offers a region to the subtree and returns the claimed
// geometry. Claims never exceed the offer: children are given the space
// remaining after their siblings, down to an empty region when the stack
// overflows the offer.
func (n *Node) Update(offered waydash.Geometry, table Table) waydash.Geometry {
	switch n.kind {
	case kindLeaf:
		n.geometry = table.GeometryUpdate(n.index, offered)
	case kindVertical:
		n.geometry = n.updateVertical(offered, table)
	case kindHorizontal:
		n.geometry = n.updateHorizontal(offered, table)
	case kindInvertedHorizontal:
		n.geometry = n.updateInvertedHorizontal(offered, table)
	case kindMargin:
		inner := n.children[0].Update(n.insets.Shrink(offered), table)
		n.geometry = n.insets.Grow(inner)
	}
	return n.geometry
}

func (n *Node) updateVertical(offered waydash.Geometry, table Table) waydash.Geometry {
	var used, width uint32
	for _, child := range n.children {
		remaining := waydash.Geometry{
			X:     offered.X,
			Y:     offered.Y + used,
			Width: offered.Width,
		}
		if used < offered.Height {
			remaining.Height = offered.Height - used
		}
		g := child.Update(remaining, table)
		used += g.Height
		width = max(width, g.Width)
	}
	return waydash.Rect(offered.X, offered.Y, width, used)
}

func (n *Node) updateHorizontal(offered waydash.Geometry, table Table) waydash.Geometry {
	var used, height uint32
	for _, child := range n.children {
		remaining := waydash.Geometry{
			X:      offered.X + used,
			Y:      offered.Y,
			Height: offered.Height,
		}
		if used < offered.Width {
			remaining.Width = offered.Width - used
		}
		g := child.Update(remaining, table)
		used += g.Width
		height = max(height, g.Height)
	}
	return waydash.Rect(offered.X, offered.Y, used, height)
}

func (n *Node) updateInvertedHorizontal(offered waydash.Geometry, table Table) waydash.Geometry {
	// Measure first: children cannot be placed until the width of the
	// whole run is known.
	var total uint32
	for _, child := range n.children {
		remaining := offered
		if total < offered.Width {
			remaining.Width = offered.Width - total
		} else {
			remaining.Width = 0
		}
		g := child.Update(remaining, table)
		total += g.Width
	}
	if total > offered.Width {
		total = offered.Width
	}

	// Place the run flush against the right edge.
	var used, height uint32
	start := offered.X + offered.Width - total
	for _, child := range n.children {
		remaining := waydash.Geometry{
			X:      start + used,
			Y:      offered.Y,
			Height: offered.Height,
		}
		if used < total {
			remaining.Width = total - used
		}
		g := child.Update(remaining, table)
		used += g.Width
		height = max(height, g.Height)
	}
	return waydash.Rect(start, offered.Y, used, height)
}

// Walk visits every leaf of the subtree in layout order with its widget
// index and claimed geometry.
func (n *Node) Walk(fn func(index int, g waydash.Geometry)) {
	if n.kind == kindLeaf {
		fn(n.index, n.geometry)
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}
