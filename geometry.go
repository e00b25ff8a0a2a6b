package waydash

import "fmt"

// Geometry is an axis-aligned rectangle in surface-pixel units.
//
// During layout negotiation a child's geometry is always contained within
// the region offered by its parent; Contains and Expand are the primitives
// the layout engine and input router build on.
type Geometry struct {
	X, Y          uint32
	Width, Height uint32
}

// Rect is shorthand for constructing a Geometry.
func Rect(x, y, width, height uint32) Geometry {
	return Geometry{X: x, Y: y, Width: width, Height: height}
}

func (g Geometry) String() string {
	return fmt.Sprintf("(x: %d, y: %d, width: %d, height: %d)", g.X, g.Y, g.Width, g.Height)
}

// Empty reports whether the rectangle covers no pixels.
func (g Geometry) Empty() bool {
	return g.Width == 0 || g.Height == 0
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (g Geometry) Contains(x, y uint32) bool {
	return x >= g.X && x < g.X+g.Width && y >= g.Y && y < g.Y+g.Height
}

// ContainsRect reports whether other lies entirely inside g.
func (g Geometry) ContainsRect(other Geometry) bool {
	if other.Empty() {
		return true
	}
	return other.X >= g.X && other.Y >= g.Y &&
		other.X+other.Width <= g.X+g.Width &&
		other.Y+other.Height <= g.Y+g.Height
}

// Expand returns the smallest rectangle covering both g and other.
func (g Geometry) Expand(other Geometry) Geometry {
	if g.Empty() {
		return other
	}
	if other.Empty() {
		return g
	}
	x := min(g.X, other.X)
	y := min(g.Y, other.Y)
	return Geometry{
		X:      x,
		Y:      y,
		Width:  max(g.X+g.Width, other.X+other.Width) - x,
		Height: max(g.Y+g.Height, other.Y+other.Height) - y,
	}
}

// Translate returns g moved by (dx, dy).
func (g Geometry) Translate(dx, dy uint32) Geometry {
	return Geometry{X: g.X + dx, Y: g.Y + dy, Width: g.Width, Height: g.Height}
}

// Intersect returns the overlap of g and other, or a zero Geometry when
// they do not overlap.
func (g Geometry) Intersect(other Geometry) Geometry {
	x := max(g.X, other.X)
	y := max(g.Y, other.Y)
	x2 := min(g.X+g.Width, other.X+other.Width)
	y2 := min(g.Y+g.Height, other.Y+other.Height)
	if x2 <= x || y2 <= y {
		return Geometry{}
	}
	return Geometry{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Insets are fixed reductions applied to each side of a rectangle by the
// margin layout node.
type Insets struct {
	Left, Top, Right, Bottom uint32
}

// Shrink applies the insets to g. The result is clamped to an empty
// rectangle when the insets exceed the available space.
func (in Insets) Shrink(g Geometry) Geometry {
	if in.Left+in.Right >= g.Width || in.Top+in.Bottom >= g.Height {
		return Geometry{X: g.X + in.Left, Y: g.Y + in.Top}
	}
	return Geometry{
		X:      g.X + in.Left,
		Y:      g.Y + in.Top,
		Width:  g.Width - in.Left - in.Right,
		Height: g.Height - in.Top - in.Bottom,
	}
}

// Grow re-adds the insets around g, so a parent sees the margin as part
// of the child's footprint.
func (in Insets) Grow(g Geometry) Geometry {
	return Geometry{
		X:      g.X - in.Left,
		Y:      g.Y - in.Top,
		Width:  g.Width + in.Left + in.Right,
		Height: g.Height + in.Top + in.Bottom,
	}
}
