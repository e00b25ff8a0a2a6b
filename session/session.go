// Copyright 2026 The waydash Authors
// SPDX-License-Identifier: MIT

// Package session runs the dashboard's single-threaded event loop: it
// translates compositor events into orchestrator calls, drives key
// repeat and keymap state, and owns the configure/running lifecycle.
package session

import (
	"context"
	"errors"

	"github.com/waydash/waydash"
	"github.com/waydash/waydash/buffer"
	"github.com/waydash/waydash/keyboard"
	"github.com/waydash/waydash/render"
	"github.com/waydash/waydash/wayland"
	"github.com/waydash/waydash/widget"
)

// ErrClosed is returned by Run when the compositor closed the surface.
var ErrClosed = errors.New("session: surface closed by compositor")

// Compositor is the slice of the wayland client the session drives
// directly. Frame submission goes through the orchestrator's Surface
// instead.
type Compositor interface {
	Events() <-chan wayland.Event
	AckConfigure(serial uint32) error
	RequestToken(serial uint32) error
	Close() error
}

// Session serializes all state onto one goroutine. Everything below is
// only touched from Run's loop.
type Session struct {
	comp Compositor
	orch *render.Orchestrator
	swap *buffer.Swap

	keys     *keyboard.State
	repeater *keyboard.Repeater
	repeats  chan keyboard.Event

	commands chan func()

	width, height uint32
	configured    bool
	framePending  bool
	quit          bool
	err           error
}

// New wires a session over a connected compositor client.
func New(comp Compositor, orch *render.Orchestrator, swap *buffer.Swap) *Session {
	s := &Session{
		comp:     comp,
		orch:     orch,
		swap:     swap,
		keys:     keyboard.NewState(),
		commands: make(chan func(), 8),
		repeats:  make(chan keyboard.Event, 16),
	}
	s.repeater = keyboard.NewRepeater(func(ev keyboard.Event) { s.repeats <- ev })
	return s
}

// Do schedules fn on the session loop, for config reloads and other
// outside requests. It must not be called after Run returns.
func (s *Session) Do(fn func()) {
	s.commands <- fn
}

// Run processes events until the context is canceled, the compositor
// closes the surface, or the connection fails.
func (s *Session) Run(ctx context.Context) error {
	defer s.repeater.Stop()

	for !s.quit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-s.comp.Events():
			if !ok {
				return errors.New("session: event stream closed")
			}
			s.handle(ev)
		case ev := <-s.repeats:
			s.deliverKey(ev)
			s.renderIfNeeded()
		case fn := <-s.commands:
			fn()
			s.renderIfNeeded()
		}
	}
	return s.err
}

func (s *Session) handle(ev wayland.Event) {
	switch ev := ev.(type) {
	case wayland.ConfigureEvent:
		s.configure(ev)
	case wayland.ClosedEvent:
		s.quit = true
		s.err = ErrClosed
	case wayland.ErrorEvent:
		s.quit = true
		s.err = ev.Err
	case wayland.KeymapEvent:
		if err := s.keys.LoadKeymap(ev.Data); err != nil {
			waydash.Logger().Warn("keymap rejected, raw keycodes only", "error", err)
		}
	case wayland.ModifiersEvent:
		s.keys.UpdateModifiers(ev.Depressed, ev.Latched, ev.Locked, ev.Group)
	case wayland.RepeatInfoEvent:
		s.repeater.SetInfo(ev.Rate, ev.Delay)
	case wayland.KeyEvent:
		resolved := s.keys.Resolve(ev.Code, ev.Pressed)
		if ev.Pressed {
			s.repeater.KeyPressed(resolved)
		} else {
			s.repeater.KeyReleased(ev.Code)
		}
		s.deliverKey(resolved)
		s.renderIfNeeded()
	case wayland.KeyboardLeaveEvent:
		s.repeater.Clear()
	case wayland.FocusEvent:
		s.orch.FocusChanged(ev.Focused)
		s.renderIfNeeded()
	case wayland.PointerEnterEvent:
		s.orch.PointerMotion(ev.X, ev.Y)
	case wayland.PointerMotionEvent:
		s.orch.PointerMotion(ev.X, ev.Y)
	case wayland.PointerLeaveEvent:
		s.orch.PointerLeave()
	case wayland.PointerButtonEvent:
		if s.orch.PointerButton(widget.PointerButton(ev.Button), ev.Pressed) {
			if err := s.comp.RequestToken(ev.Serial); err != nil {
				waydash.Logger().Debug("no activation token", "error", err)
			}
		}
		s.renderIfNeeded()
	case wayland.BufferReleasedEvent:
		if !s.swap.Release(ev.Handle) {
			waydash.Logger().Debug("release for untracked buffer")
		}
		s.renderIfNeeded()
	case wayland.FrameDoneEvent:
		s.framePending = false
		s.renderIfNeeded()
	case wayland.TokenEvent:
		s.orch.TokenUpdate(ev.Token)
	case wayland.OutputsChangedEvent:
		waydash.Logger().Debug("outputs changed", "count", ev.Count, "recreated", ev.Recreated)
		if ev.Recreated {
			// Fresh surfaces carry no content and may not be committed
			// to until their first configure arrives.
			s.configured = false
			s.orch.ForceRedraw()
		}
	}
}

func (s *Session) configure(ev wayland.ConfigureEvent) {
	if err := s.comp.AckConfigure(ev.Serial); err != nil {
		waydash.Logger().Error("ack_configure failed", "error", err)
	}
	if s.configured && ev.Width == s.width && ev.Height == s.height {
		return
	}
	s.width, s.height = ev.Width, ev.Height
	s.configured = true
	s.orch.Resize(ev.Width, ev.Height)
	s.renderIfNeeded()
}

// deliverKey broadcasts a resolved key event; Escape exits the
// dashboard.
func (s *Session) deliverKey(ev keyboard.Event) {
	if ev.Pressed && ev.Keysym == keyboard.KeyEscape {
		s.quit = true
		return
	}
	s.orch.Keyboard(ev)
}

// renderIfNeeded submits a frame when widgets are dirty and the
// compositor is ready for one. A skipped frame stays pending until a
// buffer release re-triggers this path.
func (s *Session) renderIfNeeded() {
	if !s.configured || s.framePending || !s.orch.Dirty() {
		return
	}
	result, err := s.orch.Frame()
	if err != nil {
		waydash.Logger().Error("frame aborted", "error", err)
		return
	}
	if result == render.FrameCommitted {
		s.framePending = true
	}
}
