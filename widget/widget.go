// Package widget defines the drawing and input contract between the
// redraw orchestrator and the things it renders, plus the indexed table
// the layout engine arranges.
package widget

import (
	"github.com/waydash/waydash"
	"github.com/waydash/waydash/buffer"
	"github.com/waydash/waydash/keyboard"
)

// DrawReport is what a widget tells the orchestrator about a finished
// draw. Damage rectangles are view-local: relative to the view the
// widget drew into, not the surface. The orchestrator translates them.
type DrawReport struct {
	Damage []waydash.Geometry
	// Full means the widget repainted its entire view and Damage can be
	// ignored.
	Full bool
}

// PointerButton identifies a pointer button in linux input codes.
type PointerButton uint32

const (
	ButtonLeft   PointerButton = 0x110
	ButtonRight  PointerButton = 0x111
	ButtonMiddle PointerButton = 0x112
)

// PointerEvent is a button event in widget-local coordinates.
type PointerEvent struct {
	X, Y    uint32
	Button  PointerButton
	Pressed bool
}

// Widget is one rectangular element of the dashboard.
//
// GeometryUpdate offers a region during layout; the widget claims a
// sub-rectangle and must remember the claim for Geometry. Draw receives
// a view clipped to exactly the claimed geometry.
type Widget interface {
	GeometryUpdate(offered waydash.Geometry) waydash.Geometry
	Geometry() waydash.Geometry

	// Dirty reports whether the widget needs a redraw. The orchestrator
	// only calls Draw on dirty widgets (or all widgets on a full
	// redraw); Draw clears the flag.
	Dirty() bool
	MarkDirty()
	Draw(view *buffer.View) (DrawReport, error)

	Keyboard(ev keyboard.Event)
	Pointer(ev PointerEvent)
}

// TokenSink is implemented by widgets that launch other clients and need
// an activation token from the compositor.
type TokenSink interface {
	TokenUpdate(token string)
}

// FocusSink is implemented by widgets that react when the surface gains
// or loses compositor focus.
type FocusSink interface {
	FocusChanged(focused bool)
}

// Base carries the geometry and dirty bookkeeping every widget needs.
// Embed it and implement the rest.
type Base struct {
	geometry waydash.Geometry
	dirty    bool
}

func (b *Base) Geometry() waydash.Geometry     { return b.geometry }
func (b *Base) SetGeometry(g waydash.Geometry) { b.geometry = g }

func (b *Base) Dirty() bool { return b.dirty }

// MarkDirty requests a redraw on the next frame.
func (b *Base) MarkDirty() { b.dirty = true }

// ClearDirty is called from Draw implementations once the widget has
// painted.
func (b *Base) ClearDirty() { b.dirty = false }

func (b *Base) Keyboard(keyboard.Event) {}
func (b *Base) Pointer(PointerEvent)    {}

// Table is the ordered widget collection the layout tree indexes into.
type Table struct {
	widgets []Widget
}

func NewTable(widgets ...Widget) *Table {
	return &Table{widgets: widgets}
}

// Len returns the number of widgets.
func (t *Table) Len() int { return len(t.widgets) }

// At returns the widget at index.
func (t *Table) At(index int) Widget { return t.widgets[index] }

// GeometryUpdate satisfies the layout engine's table contract.
func (t *Table) GeometryUpdate(index int, offered waydash.Geometry) waydash.Geometry {
	return t.widgets[index].GeometryUpdate(offered)
}

// MarkAllDirty schedules a repaint of every widget.
func (t *Table) MarkAllDirty() {
	for _, w := range t.widgets {
		w.MarkDirty()
	}
}

// AnyDirty reports whether any widget wants a redraw.
func (t *Table) AnyDirty() bool {
	for _, w := range t.widgets {
		if w.Dirty() {
			return true
		}
	}
	return false
}

// WidgetAt returns the topmost widget whose claimed geometry contains
// the surface point (x, y).
func (t *Table) WidgetAt(x, y uint32) (Widget, bool) {
	for _, w := range t.widgets {
		if w.Geometry().Contains(x, y) {
			return w, true
		}
	}
	return nil, false
}
