package waydash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometry_Contains(t *testing.T) {
	g := Rect(10, 20, 30, 40)

	tests := []struct {
		name string
		x, y uint32
		want bool
	}{
		{"top-left corner", 10, 20, true},
		{"interior", 25, 45, true},
		{"right edge exclusive", 40, 20, false},
		{"bottom edge exclusive", 10, 60, false},
		{"outside left", 9, 20, false},
		{"outside above", 10, 19, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Contains(tt.x, tt.y))
		})
	}
}

func TestGeometry_ContainsRect(t *testing.T) {
	g := Rect(0, 0, 100, 100)

	assert.True(t, g.ContainsRect(Rect(0, 0, 100, 100)))
	assert.True(t, g.ContainsRect(Rect(10, 10, 20, 20)))
	assert.True(t, g.ContainsRect(Rect(50, 50, 0, 0)), "empty rect is always contained")
	assert.False(t, g.ContainsRect(Rect(90, 90, 20, 20)))
	assert.False(t, g.ContainsRect(Rect(0, 0, 101, 1)))
}

func TestGeometry_Expand(t *testing.T) {
	tests := []struct {
		name string
		a, b Geometry
		want Geometry
	}{
		{"disjoint", Rect(0, 0, 10, 10), Rect(20, 20, 10, 10), Rect(0, 0, 30, 30)},
		{"overlapping", Rect(0, 0, 10, 10), Rect(5, 5, 10, 10), Rect(0, 0, 15, 15)},
		{"contained", Rect(0, 0, 30, 30), Rect(5, 5, 10, 10), Rect(0, 0, 30, 30)},
		{"empty left operand", Geometry{}, Rect(5, 5, 10, 10), Rect(5, 5, 10, 10)},
		{"empty right operand", Rect(5, 5, 10, 10), Geometry{}, Rect(5, 5, 10, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Expand(tt.b))
		})
	}
}

func TestGeometry_Intersect(t *testing.T) {
	assert.Equal(t, Rect(5, 5, 5, 5), Rect(0, 0, 10, 10).Intersect(Rect(5, 5, 10, 10)))
	assert.Equal(t, Geometry{}, Rect(0, 0, 10, 10).Intersect(Rect(10, 0, 10, 10)), "touching edges do not overlap")
	assert.Equal(t, Geometry{}, Rect(0, 0, 10, 10).Intersect(Rect(20, 20, 5, 5)))
}

func TestInsets_ShrinkGrow(t *testing.T) {
	in := Insets{Left: 5, Top: 10, Right: 15, Bottom: 20}
	g := Rect(100, 100, 200, 300)

	shrunk := in.Shrink(g)
	assert.Equal(t, Rect(105, 110, 180, 270), shrunk)
	assert.Equal(t, g, in.Grow(shrunk), "grow undoes shrink")

	// Insets larger than the rect clamp to empty rather than wrapping.
	tiny := in.Shrink(Rect(0, 0, 10, 10))
	assert.True(t, tiny.Empty())
}
