package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waydash/waydash"
	"github.com/waydash/waydash/buffer"
)

func TestSwatch_DrawAndCycle(t *testing.T) {
	red := waydash.RGB(1, 0, 0)
	blue := waydash.RGB(0, 0, 1)
	s := NewSwatch(4, 4, red, blue)
	require.True(t, s.Dirty())

	view := buffer.NewView(make([]byte, 4*4*4), 4, 4)
	report, err := s.Draw(view)
	require.NoError(t, err)
	assert.True(t, report.Full)
	assert.False(t, s.Dirty(), "draw clears the dirty flag")
	assert.Equal(t, red.ARGB8888(), view.Pixel(2, 2).ARGB8888())

	s.Pointer(PointerEvent{Button: ButtonLeft, Pressed: true})
	assert.True(t, s.Dirty())
	assert.Equal(t, blue, s.Color())

	// Releases and other buttons do not cycle.
	s.ClearDirty()
	s.Pointer(PointerEvent{Button: ButtonLeft, Pressed: false})
	s.Pointer(PointerEvent{Button: ButtonRight, Pressed: true})
	assert.False(t, s.Dirty())
	assert.Equal(t, blue, s.Color())
}

func TestSwatch_GeometryUpdateClampsAndDirties(t *testing.T) {
	s := NewSwatch(50, 30, waydash.RGB(0, 0, 0))

	g := s.GeometryUpdate(waydash.Rect(5, 5, 40, 100))
	assert.Equal(t, waydash.Rect(5, 5, 40, 30), g)
	assert.Equal(t, g, s.Geometry())

	s.ClearDirty()
	s.GeometryUpdate(waydash.Rect(5, 5, 40, 100))
	assert.False(t, s.Dirty(), "unchanged geometry must not force a redraw")

	s.GeometryUpdate(waydash.Rect(0, 0, 40, 100))
	assert.True(t, s.Dirty(), "moved widget needs repainting")
}

func TestTable_WidgetAt(t *testing.T) {
	a := NewSwatch(10, 10, waydash.RGB(1, 0, 0))
	b := NewSwatch(10, 10, waydash.RGB(0, 1, 0))
	table := NewTable(a, b)

	a.GeometryUpdate(waydash.Rect(0, 0, 10, 10))
	b.GeometryUpdate(waydash.Rect(10, 0, 10, 10))

	got, ok := table.WidgetAt(5, 5)
	require.True(t, ok)
	assert.Same(t, Widget(a), got)

	got, ok = table.WidgetAt(15, 5)
	require.True(t, ok)
	assert.Same(t, Widget(b), got)

	_, ok = table.WidgetAt(25, 5)
	assert.False(t, ok)
}

func TestTable_AnyDirty(t *testing.T) {
	a := NewSwatch(10, 10, waydash.RGB(1, 0, 0))
	b := NewSwatch(10, 10, waydash.RGB(0, 1, 0))
	table := NewTable(a, b)
	require.True(t, table.AnyDirty())

	a.ClearDirty()
	b.ClearDirty()
	assert.False(t, table.AnyDirty())

	b.MarkDirty()
	assert.True(t, table.AnyDirty())
}
