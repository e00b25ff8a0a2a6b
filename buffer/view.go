// Package buffer manages the shared-memory pixel buffers displayed by the
// compositor: bounds-checked views for drawing, the tracked buffer pool,
// and the double-buffer swap scheduler with damage replay.
package buffer

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/waydash/waydash"
)

// View is a rectangular window onto a flat packed-ARGB pixel buffer,
// addressed with local coordinates. Subviews share the backing memory of
// their parent; drawing mutates it in place without allocating.
//
// Subview and Offset treat out-of-bounds requests as programming errors
// and panic. The raw writers (PutPixel, PutRun, PutMask) clamp to the
// view instead, so a rasterizer overshooting by a pixel never touches
// memory outside the view.
type View struct {
	data   []byte
	stride uint32 // width of the backing buffer in pixels
	bounds waydash.Geometry
}

// NewView binds a view covering a width×height pixel buffer. The slice
// must hold at least 4*width*height bytes.
func NewView(data []byte, width, height uint32) *View {
	if uint32(len(data)) < 4*width*height {
		panic(fmt.Sprintf("buffer: %d bytes cannot back a %dx%d view", len(data), width, height))
	}
	return &View{
		data:   data,
		stride: width,
		bounds: waydash.Rect(0, 0, width, height),
	}
}

// Bounds returns the region of the backing buffer this view addresses,
// in backing-buffer coordinates.
func (v *View) Bounds() waydash.Geometry { return v.bounds }

// Size returns the view's width and height.
func (v *View) Size() (width, height uint32) { return v.bounds.Width, v.bounds.Height }

// Subview returns a view over the given view-local rectangle. The
// rectangle must lie within the current view; a request outside the
// bounds panics.
func (v *View) Subview(r waydash.Geometry) *View {
	if r.X+r.Width > v.bounds.Width || r.Y+r.Height > v.bounds.Height {
		panic(fmt.Sprintf("buffer: subview %v exceeds view bounds %v", r, v.bounds))
	}
	return &View{
		data:   v.data,
		stride: v.stride,
		bounds: waydash.Rect(v.bounds.X+r.X, v.bounds.Y+r.Y, r.Width, r.Height),
	}
}

// Offset shrinks the view to start at the internal point (dx, dy),
// preserving the far edge. Offsetting past the view bounds panics.
func (v *View) Offset(dx, dy uint32) *View {
	if dx > v.bounds.Width || dy > v.bounds.Height {
		panic(fmt.Sprintf("buffer: offset (%d, %d) exceeds view bounds %v", dx, dy, v.bounds))
	}
	return &View{
		data:   v.data,
		stride: v.stride,
		bounds: waydash.Rect(v.bounds.X+dx, v.bounds.Y+dy, v.bounds.Width-dx, v.bounds.Height-dy),
	}
}

func (v *View) pixelOffset(x, y uint32) int {
	return 4 * int((v.bounds.Y+y)*v.stride+v.bounds.X+x)
}

// Fill writes a solid color to every pixel of the view, touching only
// the rows and columns the view actually covers.
func (v *View) Fill(c waydash.Color) {
	p := c.ARGB8888()
	for y := uint32(0); y < v.bounds.Height; y++ {
		i := v.pixelOffset(0, y)
		for x := uint32(0); x < v.bounds.Width; x++ {
			binary.LittleEndian.PutUint32(v.data[i:], p)
			i += 4
		}
	}
}

// PutPixel writes one pixel at view-local (x, y). Writes outside the
// view are dropped.
func (v *View) PutPixel(x, y uint32, c waydash.Color) {
	if x >= v.bounds.Width || y >= v.bounds.Height {
		return
	}
	binary.LittleEndian.PutUint32(v.data[v.pixelOffset(x, y):], c.ARGB8888())
}

// Pixel reads the pixel at view-local (x, y). Out-of-bounds reads return
// the zero color.
func (v *View) Pixel(x, y uint32) waydash.Color {
	if x >= v.bounds.Width || y >= v.bounds.Height {
		return waydash.Color{}
	}
	return waydash.FromARGB8888(binary.LittleEndian.Uint32(v.data[v.pixelOffset(x, y):]))
}

// PutRun writes a horizontal run of length pixels starting at view-local
// (x, y). The run is clipped to the view.
func (v *View) PutRun(x, y, length uint32, c waydash.Color) {
	if x >= v.bounds.Width || y >= v.bounds.Height {
		return
	}
	if x+length > v.bounds.Width {
		length = v.bounds.Width - x
	}
	p := c.ARGB8888()
	i := v.pixelOffset(x, y)
	for n := uint32(0); n < length; n++ {
		binary.LittleEndian.PutUint32(v.data[i:], p)
		i += 4
	}
}

// PutMask composites a coverage map at view-local (x, y): each coverage
// value in [0, 1] blends fg over bg for one pixel, row-major with the
// given width. External glyph rasterizers feed their output through this
// entry point. The mask is clipped to the view.
func (v *View) PutMask(x, y, width uint32, coverage []float32, bg, fg waydash.Color) {
	if width == 0 {
		return
	}
	height := uint32(len(coverage)) / width
	for my := uint32(0); my < height; my++ {
		if y+my >= v.bounds.Height {
			break
		}
		for mx := uint32(0); mx < width; mx++ {
			if x+mx >= v.bounds.Width {
				break
			}
			cov := float64(coverage[my*width+mx])
			if cov <= 0 {
				continue
			}
			i := v.pixelOffset(x+mx, y+my)
			binary.LittleEndian.PutUint32(v.data[i:], bg.Blend(fg, cov).ARGB8888())
		}
	}
}

// CopyRect copies the view-local rectangle r from src into this view.
// Both views must cover the rectangle; the source and destination may
// belong to different backing buffers. This is the damage replay
// primitive.
func (v *View) CopyRect(src *View, r waydash.Geometry) {
	if r.X+r.Width > v.bounds.Width || r.Y+r.Height > v.bounds.Height {
		panic(fmt.Sprintf("buffer: copy %v exceeds destination bounds %v", r, v.bounds))
	}
	if r.X+r.Width > src.bounds.Width || r.Y+r.Height > src.bounds.Height {
		panic(fmt.Sprintf("buffer: copy %v exceeds source bounds %v", r, src.bounds))
	}
	rowLen := int(4 * r.Width)
	for y := uint32(0); y < r.Height; y++ {
		di := v.pixelOffset(r.X, r.Y+y)
		si := src.pixelOffset(r.X, r.Y+y)
		copy(v.data[di:di+rowLen], src.data[si:si+rowLen])
	}
}

// Snapshot copies the view's pixels into a standalone image.RGBA.
// Intended for tests and debug dumps, not the frame path.
func (v *View) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(v.bounds.Width), int(v.bounds.Height)))
	xdraw.Draw(img, img.Bounds(), v.Image(), image.Point{}, xdraw.Src)
	return img
}

// Image adapts the view to image.Image in view-local coordinates. The
// adapter reads the live backing memory; use Snapshot for a copy.
func (v *View) Image() image.Image { return viewImage{v} }

type viewImage struct{ v *View }

func (vi viewImage) At(x, y int) color.Color {
	return vi.v.Pixel(uint32(x), uint32(y)).Color()
}

func (vi viewImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(vi.v.bounds.Width), int(vi.v.bounds.Height))
}

func (vi viewImage) ColorModel() color.Model { return color.NRGBAModel }
