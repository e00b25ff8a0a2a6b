package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waydash/waydash"
)

// sizeTable hands each widget index a fixed intrinsic size, clamped to
// the offer the way real widgets claim space.
type sizeTable struct {
	sizes  []waydash.Geometry
	offers []waydash.Geometry
}

func (t *sizeTable) GeometryUpdate(index int, offered waydash.Geometry) waydash.Geometry {
	t.offers = append(t.offers, offered)
	want := t.sizes[index]
	return waydash.Geometry{
		X:      offered.X,
		Y:      offered.Y,
		Width:  min(want.Width, offered.Width),
		Height: min(want.Height, offered.Height),
	}
}

func TestVerticalStack(t *testing.T) {
	table := &sizeTable{sizes: []waydash.Geometry{
		{Width: 120, Height: 40},
		{Width: 80, Height: 20},
	}}
	root := Vertical(Leaf(0), Leaf(1))

	got := root.Update(waydash.Rect(0, 0, 300, 100), table)

	assert.Equal(t, waydash.Rect(0, 0, 120, 60), got)
	assert.Equal(t, waydash.Rect(0, 0, 120, 40), root.children[0].Geometry())
	assert.Equal(t, waydash.Rect(0, 40, 80, 20), root.children[1].Geometry())
}

func TestVerticalStack_Overflow(t *testing.T) {
	table := &sizeTable{sizes: []waydash.Geometry{
		{Width: 50, Height: 80},
		{Width: 50, Height: 80},
	}}
	root := Vertical(Leaf(0), Leaf(1))

	got := root.Update(waydash.Rect(0, 0, 100, 100), table)

	// The second child only gets the leftover 20 rows; nothing is ever
	// placed outside the offer.
	assert.Equal(t, waydash.Rect(0, 0, 50, 100), got)
	assert.Equal(t, waydash.Rect(0, 80, 50, 20), root.children[1].Geometry())
}

func TestHorizontalStack(t *testing.T) {
	table := &sizeTable{sizes: []waydash.Geometry{
		{Width: 30, Height: 50},
		{Width: 20, Height: 10},
	}}
	root := Horizontal(Leaf(0), Leaf(1))

	got := root.Update(waydash.Rect(10, 5, 200, 60), table)

	assert.Equal(t, waydash.Rect(10, 5, 50, 50), got)
	assert.Equal(t, waydash.Rect(10, 5, 30, 50), root.children[0].Geometry())
	assert.Equal(t, waydash.Rect(40, 5, 20, 10), root.children[1].Geometry())
}

func TestInvertedHorizontalStack(t *testing.T) {
	table := &sizeTable{sizes: []waydash.Geometry{
		{Width: 30, Height: 20},
		{Width: 50, Height: 40},
	}}
	root := InvertedHorizontal(Leaf(0), Leaf(1))

	got := root.Update(waydash.Rect(0, 0, 200, 50), table)

	// The run is packed against x=200: 80 wide, so it starts at 120.
	assert.Equal(t, waydash.Rect(120, 0, 80, 40), got)
	assert.Equal(t, waydash.Rect(120, 0, 30, 20), root.children[0].Geometry())
	assert.Equal(t, waydash.Rect(150, 0, 50, 40), root.children[1].Geometry())
}

func TestMargin(t *testing.T) {
	table := &sizeTable{sizes: []waydash.Geometry{
		{Width: 500, Height: 40},
	}}
	insets := waydash.Insets{Left: 10, Top: 5, Right: 10, Bottom: 5}
	root := Vertical(Margin(insets, Leaf(0)), Margin(insets, Leaf(0)))

	got := root.Update(waydash.Rect(0, 0, 100, 100), table)

	// The child fills the shrunken region; the margin's footprint grows
	// back to the full offer so the second margin stacks below it.
	require.Equal(t, waydash.Rect(10, 5, 80, 40), root.children[0].children[0].Geometry())
	assert.Equal(t, waydash.Rect(0, 0, 100, 50), root.children[0].Geometry())
	assert.Equal(t, waydash.Rect(10, 55, 80, 40), root.children[1].children[0].Geometry())
	assert.Equal(t, waydash.Rect(0, 0, 100, 100), got)
}

func TestNestedStacks(t *testing.T) {
	table := &sizeTable{sizes: []waydash.Geometry{
		{Width: 40, Height: 10},
		{Width: 30, Height: 25},
		{Width: 200, Height: 30},
	}}
	root := Vertical(
		Horizontal(Leaf(0), Leaf(1)),
		Leaf(2),
	)

	got := root.Update(waydash.Rect(0, 0, 100, 100), table)

	assert.Equal(t, waydash.Rect(0, 0, 100, 55), got)
	assert.Equal(t, waydash.Rect(0, 0, 70, 25), root.children[0].Geometry())
	assert.Equal(t, waydash.Rect(0, 25, 100, 30), root.children[1].Geometry())
}

func TestWalkVisitsLeavesInOrder(t *testing.T) {
	table := &sizeTable{sizes: []waydash.Geometry{
		{Width: 10, Height: 10},
		{Width: 10, Height: 10},
		{Width: 10, Height: 10},
	}}
	root := Vertical(Leaf(2), Horizontal(Leaf(0), Leaf(1)))
	root.Update(waydash.Rect(0, 0, 100, 100), table)

	var order []int
	root.Walk(func(index int, g waydash.Geometry) {
		order = append(order, index)
		assert.False(t, g.Empty())
	})
	assert.Equal(t, []int{2, 0, 1}, order)
}
