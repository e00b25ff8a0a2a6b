// Copyright 2026 The waydash Authors
// SPDX-License-Identifier: MIT

// Package render drives frames: it decides when a redraw is needed,
// acquires a buffer from the swap scheduler, runs widget draws, and
// submits the result to the surface with minimal damage.
package render

import (
	"fmt"

	"github.com/waydash/waydash"
	"github.com/waydash/waydash/buffer"
	"github.com/waydash/waydash/keyboard"
	"github.com/waydash/waydash/layout"
	"github.com/waydash/waydash/widget"
)

// Surface is the compositor-facing side of frame submission. The
// wayland package implements it over a wl_surface; tests use fakes.
type Surface interface {
	Attach(h buffer.Handle)
	Damage(g waydash.Geometry)
	Commit()
}

// FrameResult describes the outcome of one Frame call.
type FrameResult int

const (
	// FrameNoop means nothing needed drawing or nothing changed; no
	// buffer was attached and no commit was issued.
	FrameNoop FrameResult = iota
	// FrameSkipped means a redraw was needed but no buffer was
	// available; retry on the next scheduling opportunity.
	FrameSkipped
	// FrameCommitted means a buffer was submitted.
	FrameCommitted
)

// Orchestrator owns the frame loop for one surface: the swap scheduler,
// the widget table, and the layout tree arranging it.
type Orchestrator struct {
	surface    Surface
	swap       *buffer.Swap
	table      *widget.Table
	root       *layout.Node
	background waydash.Color

	pointerX, pointerY uint32
	pointerIn          bool
}

func New(surface Surface, swap *buffer.Swap, table *widget.Table, root *layout.Node, background waydash.Color) *Orchestrator {
	return &Orchestrator{
		surface:    surface,
		swap:       swap,
		table:      table,
		root:       root,
		background: background,
	}
}

// Resize adopts a new surface size: buffers are discarded, the layout
// tree re-runs over the new region, and the next frame repaints
// everything. Every widget is re-dirtied explicitly: a size change that
// leaves all widget geometries in place must still produce a frame, or
// the compositor has no buffer at the new size.
func (o *Orchestrator) Resize(width, height uint32) {
	o.swap.Resize(width, height)
	o.root.Update(waydash.Rect(0, 0, width, height), o.table)
	o.table.MarkAllDirty()
	waydash.Logger().Debug("surface resized", "width", width, "height", height)
}

// Dirty reports whether a frame is pending.
func (o *Orchestrator) Dirty() bool { return o.table.AnyDirty() }

// SetBackground swaps the clear color and schedules a full repaint.
func (o *Orchestrator) SetBackground(c waydash.Color) {
	if c == o.background {
		return
	}
	o.background = c
	o.ForceRedraw()
}

// ForceRedraw invalidates replay state and re-dirties every widget so
// the next frame repaints the whole surface, for events that obsolete
// the displayed content without touching any widget (surface
// recreation, background changes).
func (o *Orchestrator) ForceRedraw() {
	o.swap.Invalidate()
	o.table.MarkAllDirty()
}

// Frame renders one frame if anything is dirty.
//
// A frame with no dirty widgets, or whose draws produce no damage, is a
// no-op: nothing is attached or committed and the swap scheduler's
// alternation stays put. A widget draw error aborts the frame before
// submission and invalidates the half-written buffer.
func (o *Orchestrator) Frame() (FrameResult, error) {
	if !o.table.AnyDirty() {
		return FrameNoop, nil
	}

	slot, full, err := o.swap.Acquire()
	if err != nil {
		return FrameNoop, err
	}
	if slot == nil {
		return FrameSkipped, nil
	}

	damage, err := o.draw(slot.View(), full)
	if err != nil {
		o.swap.Invalidate()
		return FrameNoop, err
	}
	if len(damage) == 0 {
		return FrameNoop, nil
	}

	o.surface.Attach(slot.Handle())
	for _, r := range damage {
		o.surface.Damage(r)
	}
	slot.MarkAttached()
	o.surface.Commit()
	o.swap.Commit(damage)
	return FrameCommitted, nil
}

// draw paints widgets into the frame's view and returns the damaged
// surface regions.
func (o *Orchestrator) draw(view *buffer.View, full bool) ([]waydash.Geometry, error) {
	if full {
		view.Fill(o.background)
	}

	var damage []waydash.Geometry
	for i := 0; i < o.table.Len(); i++ {
		w := o.table.At(i)
		if !full && !w.Dirty() {
			continue
		}
		g := w.Geometry()
		if g.Empty() {
			continue
		}
		report, err := w.Draw(view.Subview(g))
		if err != nil {
			return nil, fmt.Errorf("render: widget %d: %w", i, err)
		}
		if full {
			continue
		}
		if report.Full {
			damage = append(damage, g)
			continue
		}
		// Widget damage is local to the view it drew into.
		for _, r := range report.Damage {
			damage = append(damage, r.Translate(g.X, g.Y))
		}
	}

	if full {
		width, height := o.swap.Size()
		return []waydash.Geometry{waydash.Rect(0, 0, width, height)}, nil
	}
	return damage, nil
}

// Keyboard broadcasts a key event to every widget.
func (o *Orchestrator) Keyboard(ev keyboard.Event) {
	for i := 0; i < o.table.Len(); i++ {
		o.table.At(i).Keyboard(ev)
	}
}

// PointerMotion tracks the pointer in surface coordinates.
func (o *Orchestrator) PointerMotion(x, y uint32) {
	o.pointerX, o.pointerY = x, y
	o.pointerIn = true
}

// PointerLeave forgets the tracked position so stale coordinates never
// route a button press.
func (o *Orchestrator) PointerLeave() { o.pointerIn = false }

// PointerButton routes a button event to the widget under the pointer,
// in widget-local coordinates. It reports whether the widget accepts
// activation tokens, so the caller can request one for a press.
func (o *Orchestrator) PointerButton(button widget.PointerButton, pressed bool) bool {
	if !o.pointerIn {
		return false
	}
	w, ok := o.table.WidgetAt(o.pointerX, o.pointerY)
	if !ok {
		return false
	}
	g := w.Geometry()
	w.Pointer(widget.PointerEvent{
		X:       o.pointerX - g.X,
		Y:       o.pointerY - g.Y,
		Button:  button,
		Pressed: pressed,
	})
	_, wantsToken := w.(widget.TokenSink)
	return pressed && wantsToken
}

// TokenUpdate forwards an activation token to every widget that wants
// one.
func (o *Orchestrator) TokenUpdate(token string) {
	for i := 0; i < o.table.Len(); i++ {
		if sink, ok := o.table.At(i).(widget.TokenSink); ok {
			sink.TokenUpdate(token)
		}
	}
}

// FocusChanged tells focus-aware widgets that the surface gained or
// lost compositor focus.
func (o *Orchestrator) FocusChanged(focused bool) {
	for i := 0; i < o.table.Len(); i++ {
		if sink, ok := o.table.At(i).(widget.FocusSink); ok {
			sink.FocusChanged(focused)
		}
	}
}
