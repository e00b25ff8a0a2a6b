package widget

import (
	"github.com/waydash/waydash"
	"github.com/waydash/waydash/buffer"
)

// Swatch is a solid color block that cycles through its palette on
// click. It mostly exists to exercise the frame pipeline, but it also
// makes a serviceable status indicator when driven through SetColor.
type Swatch struct {
	Base
	palette []waydash.Color
	current int

	width, height uint32
}

// NewSwatch creates a width×height swatch showing the first palette
// entry. At least one color is required.
func NewSwatch(width, height uint32, palette ...waydash.Color) *Swatch {
	if len(palette) == 0 {
		palette = []waydash.Color{waydash.RGB(0, 0, 0)}
	}
	s := &Swatch{palette: palette, width: width, height: height}
	s.MarkDirty()
	return s
}

// Color returns the currently displayed color.
func (s *Swatch) Color() waydash.Color { return s.palette[s.current] }

// SetColor switches to the palette entry at index, if it exists.
func (s *Swatch) SetColor(index int) {
	if index < 0 || index >= len(s.palette) || index == s.current {
		return
	}
	s.current = index
	s.MarkDirty()
}

func (s *Swatch) GeometryUpdate(offered waydash.Geometry) waydash.Geometry {
	g := waydash.Geometry{
		X:      offered.X,
		Y:      offered.Y,
		Width:  min(s.width, offered.Width),
		Height: min(s.height, offered.Height),
	}
	if g != s.Geometry() {
		s.MarkDirty()
	}
	s.SetGeometry(g)
	return g
}

func (s *Swatch) Draw(view *buffer.View) (DrawReport, error) {
	view.Fill(s.palette[s.current])
	s.ClearDirty()
	return DrawReport{Full: true}, nil
}

func (s *Swatch) Pointer(ev PointerEvent) {
	if ev.Button == ButtonLeft && ev.Pressed {
		s.current = (s.current + 1) % len(s.palette)
		s.MarkDirty()
	}
}

// Spacer claims a fixed region and never draws anything but the
// background, for padding between widgets when a margin node is too
// rigid.
type Spacer struct {
	Base
	width, height uint32
	background    waydash.Color
}

func NewSpacer(width, height uint32, background waydash.Color) *Spacer {
	sp := &Spacer{width: width, height: height, background: background}
	sp.MarkDirty()
	return sp
}

func (sp *Spacer) GeometryUpdate(offered waydash.Geometry) waydash.Geometry {
	g := waydash.Geometry{
		X:      offered.X,
		Y:      offered.Y,
		Width:  min(sp.width, offered.Width),
		Height: min(sp.height, offered.Height),
	}
	if g != sp.Geometry() {
		sp.MarkDirty()
	}
	sp.SetGeometry(g)
	return g
}

func (sp *Spacer) Draw(view *buffer.View) (DrawReport, error) {
	view.Fill(sp.background)
	sp.ClearDirty()
	return DrawReport{Full: true}, nil
}

var _ Widget = (*Swatch)(nil)
var _ Widget = (*Spacer)(nil)
