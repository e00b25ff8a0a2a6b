package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waydash/waydash"
)

func newTestView(width, height uint32) *View {
	return NewView(make([]byte, 4*width*height), width, height)
}

func TestView_FillRespectsSubview(t *testing.T) {
	v := newTestView(8, 8)
	red := waydash.RGB(1, 0, 0)

	sub := v.Subview(waydash.Rect(2, 2, 4, 4))
	sub.Fill(red)

	// Inside the subview.
	assert.Equal(t, red.ARGB8888(), v.Pixel(2, 2).ARGB8888())
	assert.Equal(t, red.ARGB8888(), v.Pixel(5, 5).ARGB8888())
	// Outside rows and columns are untouched, so Fill is not a flat
	// memset over the backing array.
	assert.Equal(t, uint32(0), v.Pixel(1, 2).ARGB8888())
	assert.Equal(t, uint32(0), v.Pixel(6, 5).ARGB8888())
	assert.Equal(t, uint32(0), v.Pixel(2, 1).ARGB8888())
	assert.Equal(t, uint32(0), v.Pixel(2, 6).ARGB8888())
}

func TestView_SubviewNesting(t *testing.T) {
	v := newTestView(10, 10)
	inner := v.Subview(waydash.Rect(2, 2, 6, 6)).Subview(waydash.Rect(1, 1, 3, 3))

	assert.Equal(t, waydash.Rect(3, 3, 3, 3), inner.Bounds())

	inner.PutPixel(0, 0, waydash.RGB(0, 1, 0))
	assert.Equal(t, waydash.RGB(0, 1, 0).ARGB8888(), v.Pixel(3, 3).ARGB8888())
}

func TestView_SubviewOutOfBoundsPanics(t *testing.T) {
	v := newTestView(10, 10)

	assert.Panics(t, func() { v.Subview(waydash.Rect(5, 5, 6, 6)) })
	assert.Panics(t, func() { v.Subview(waydash.Rect(0, 0, 11, 1)) })
	assert.NotPanics(t, func() { v.Subview(waydash.Rect(0, 0, 10, 10)) })
}

func TestView_Offset(t *testing.T) {
	v := newTestView(10, 10)

	off := v.Offset(3, 4)
	assert.Equal(t, waydash.Rect(3, 4, 7, 6), off.Bounds())

	// Offsetting a subview compounds.
	assert.Equal(t, waydash.Rect(5, 6, 5, 4), v.Subview(waydash.Rect(2, 2, 8, 8)).Offset(3, 4).Bounds())

	assert.Panics(t, func() { v.Offset(11, 0) })
}

func TestView_PutRunClips(t *testing.T) {
	v := newTestView(8, 4)
	c := waydash.RGB(0, 0, 1)

	v.PutRun(6, 1, 10, c)

	assert.Equal(t, c.ARGB8888(), v.Pixel(6, 1).ARGB8888())
	assert.Equal(t, c.ARGB8888(), v.Pixel(7, 1).ARGB8888())
	// The row below is untouched: the run clipped rather than wrapped.
	assert.Equal(t, uint32(0), v.Pixel(0, 2).ARGB8888())
}

func TestView_PutMask(t *testing.T) {
	v := newTestView(4, 4)
	bg := waydash.RGB(0, 0, 0)
	fg := waydash.RGB(1, 1, 1)

	v.PutMask(1, 1, 2, []float32{1, 0, 0.5, 1}, bg, fg)

	assert.Equal(t, fg.ARGB8888(), v.Pixel(1, 1).ARGB8888())
	assert.Equal(t, uint32(0), v.Pixel(2, 1).ARGB8888(), "zero coverage leaves pixel alone")
	assert.Equal(t, bg.Blend(fg, 0.5).ARGB8888(), v.Pixel(1, 2).ARGB8888())
	assert.Equal(t, fg.ARGB8888(), v.Pixel(2, 2).ARGB8888())
}

func TestView_CopyRect(t *testing.T) {
	src := newTestView(6, 6)
	dst := newTestView(6, 6)
	src.Fill(waydash.RGB(1, 0, 0))

	dst.CopyRect(src, waydash.Rect(1, 1, 3, 2))

	assert.Equal(t, waydash.RGB(1, 0, 0).ARGB8888(), dst.Pixel(1, 1).ARGB8888())
	assert.Equal(t, waydash.RGB(1, 0, 0).ARGB8888(), dst.Pixel(3, 2).ARGB8888())
	assert.Equal(t, uint32(0), dst.Pixel(0, 0).ARGB8888())
	assert.Equal(t, uint32(0), dst.Pixel(4, 1).ARGB8888())
}

func TestView_Snapshot(t *testing.T) {
	v := newTestView(3, 2)
	v.PutPixel(1, 0, waydash.RGB(1, 0, 0))

	img := v.Snapshot()
	require.Equal(t, 3, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())
	r, _, _, a := img.At(1, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}
