// Copyright 2026 The waydash Authors
// SPDX-License-Identifier: MIT

package wayland

import "encoding/binary"

// Surface role protocols: wlr-layer-shell for the overlay mode,
// xdg-shell for the windowed fallback, and xdg-activation for handing
// focus to clients the dashboard launches.

// Layer shell layers.
const (
	LayerBackground uint32 = 0
	LayerBottom     uint32 = 1
	LayerTop        uint32 = 2
	LayerOverlay    uint32 = 3
)

// Layer surface anchors, combinable as a bitfield.
const (
	AnchorTop    uint32 = 1
	AnchorBottom uint32 = 2
	AnchorLeft   uint32 = 4
	AnchorRight  uint32 = 8
)

// Keyboard interactivity modes for layer surfaces.
const (
	KeyboardInteractivityNone      uint32 = 0
	KeyboardInteractivityExclusive uint32 = 1
	KeyboardInteractivityOnDemand  uint32 = 2
)

type layerShell struct {
	conn *conn
	id   uint32
}

func (ls *layerShell) handleEvent(uint16, *reader) {}

// getLayerSurface assigns the layer role to surface, optionally pinned
// to one output (nil means the compositor picks).
func (ls *layerShell) getLayerSurface(surface *surfaceProxy, out *output, layer uint32, namespace string) (*layerSurface, error) {
	s := &layerSurface{conn: ls.conn}
	s.id = ls.conn.allocate(s)
	m := newMessage(ls.id, 0)
	m.putUint(s.id)
	m.putUint(surface.id)
	if out != nil {
		m.putUint(out.id)
	} else {
		m.putUint(0)
	}
	m.putUint(layer)
	m.putString(namespace)
	return s, ls.conn.send(m)
}

type layerSurface struct {
	conn *conn
	id   uint32

	onConfigure func(serial, width, height uint32)
	onClosed    func()
}

func (s *layerSurface) handleEvent(opcode uint16, r *reader) {
	switch opcode {
	case 0: // configure
		serial := r.uint()
		width := r.uint()
		height := r.uint()
		if s.onConfigure != nil {
			s.onConfigure(serial, width, height)
		}
	case 1: // closed
		if s.onClosed != nil {
			s.onClosed()
		}
	}
}

func (s *layerSurface) setSize(width, height uint32) error {
	m := newMessage(s.id, 0)
	m.putUint(width)
	m.putUint(height)
	return s.conn.send(m)
}

func (s *layerSurface) setAnchor(anchor uint32) error {
	m := newMessage(s.id, 1)
	m.putUint(anchor)
	return s.conn.send(m)
}

func (s *layerSurface) setExclusiveZone(zone int32) error {
	m := newMessage(s.id, 2)
	m.putInt(zone)
	return s.conn.send(m)
}

func (s *layerSurface) setMargin(top, right, bottom, left int32) error {
	m := newMessage(s.id, 3)
	m.putInt(top)
	m.putInt(right)
	m.putInt(bottom)
	m.putInt(left)
	return s.conn.send(m)
}

func (s *layerSurface) setKeyboardInteractivity(mode uint32) error {
	m := newMessage(s.id, 4)
	m.putUint(mode)
	return s.conn.send(m)
}

func (s *layerSurface) ackConfigure(serial uint32) error {
	m := newMessage(s.id, 6)
	m.putUint(serial)
	return s.conn.send(m)
}

func (s *layerSurface) destroy() error {
	defer s.conn.forget(s.id)
	return s.conn.send(newMessage(s.id, 7))
}

type xdgWmBase struct {
	conn *conn
	id   uint32
}

// handleEvent answers pings inline; an unanswered ping gets the client
// killed as unresponsive.
func (w *xdgWmBase) handleEvent(opcode uint16, r *reader) {
	if opcode == 0 { // ping
		serial := r.uint()
		m := newMessage(w.id, 3) // pong
		m.putUint(serial)
		_ = w.conn.send(m)
	}
}

func (w *xdgWmBase) getXdgSurface(surface *surfaceProxy) (*xdgSurface, error) {
	s := &xdgSurface{conn: w.conn}
	s.id = w.conn.allocate(s)
	m := newMessage(w.id, 2)
	m.putUint(s.id)
	m.putUint(surface.id)
	return s, w.conn.send(m)
}

type xdgSurface struct {
	conn *conn
	id   uint32

	onConfigure func(serial uint32)
}

func (s *xdgSurface) handleEvent(opcode uint16, r *reader) {
	if opcode == 0 && s.onConfigure != nil { // configure
		s.onConfigure(r.uint())
	}
}

func (s *xdgSurface) getToplevel() (*xdgToplevel, error) {
	tl := &xdgToplevel{conn: s.conn}
	tl.id = s.conn.allocate(tl)
	m := newMessage(s.id, 1)
	m.putUint(tl.id)
	return tl, s.conn.send(m)
}

func (s *xdgSurface) ackConfigure(serial uint32) error {
	m := newMessage(s.id, 4)
	m.putUint(serial)
	return s.conn.send(m)
}

func (s *xdgSurface) destroy() error {
	defer s.conn.forget(s.id)
	return s.conn.send(newMessage(s.id, 0))
}

// toplevelStateActivated marks the toplevel as the focused window in
// the xdg_toplevel configure states array.
const toplevelStateActivated uint32 = 4

type xdgToplevel struct {
	conn *conn
	id   uint32

	onConfigure func(width, height int32, states []uint32)
	onClose     func()
}

func (tl *xdgToplevel) handleEvent(opcode uint16, r *reader) {
	switch opcode {
	case 0: // configure
		width := r.int()
		height := r.int()
		states := decodeStates(r.array())
		if tl.onConfigure != nil {
			tl.onConfigure(width, height, states)
		}
	case 1: // close
		if tl.onClose != nil {
			tl.onClose()
		}
	}
}

func decodeStates(b []byte) []uint32 {
	states := make([]uint32, 0, len(b)/4)
	for len(b) >= 4 {
		states = append(states, binary.LittleEndian.Uint32(b))
		b = b[4:]
	}
	return states
}

func hasState(states []uint32, state uint32) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func (tl *xdgToplevel) setTitle(title string) error {
	m := newMessage(tl.id, 2)
	m.putString(title)
	return tl.conn.send(m)
}

func (tl *xdgToplevel) setAppID(appID string) error {
	m := newMessage(tl.id, 3)
	m.putString(appID)
	return tl.conn.send(m)
}

func (tl *xdgToplevel) destroy() error {
	defer tl.conn.forget(tl.id)
	return tl.conn.send(newMessage(tl.id, 0))
}

type activation struct {
	conn *conn
	id   uint32
}

func (a *activation) handleEvent(uint16, *reader) {}

func (a *activation) getActivationToken() (*activationToken, error) {
	tok := &activationToken{conn: a.conn}
	tok.id = a.conn.allocate(tok)
	m := newMessage(a.id, 1)
	m.putUint(tok.id)
	return tok, a.conn.send(m)
}

// activate asks the compositor to hand focus to the surface that will
// present the token.
func (a *activation) activate(token string, surface *surfaceProxy) error {
	m := newMessage(a.id, 2)
	m.putString(token)
	m.putUint(surface.id)
	return a.conn.send(m)
}

type activationToken struct {
	conn *conn
	id   uint32

	onDone func(token string)
}

func (tok *activationToken) handleEvent(opcode uint16, r *reader) {
	if opcode == 0 && tok.onDone != nil { // done
		tok.onDone(r.string())
	}
}

func (tok *activationToken) setSerial(serial uint32, s *seat) error {
	m := newMessage(tok.id, 0)
	m.putUint(serial)
	m.putUint(s.id)
	return tok.conn.send(m)
}

func (tok *activationToken) setSurface(surface *surfaceProxy) error {
	m := newMessage(tok.id, 2)
	m.putUint(surface.id)
	return tok.conn.send(m)
}

func (tok *activationToken) commit() error {
	return tok.conn.send(newMessage(tok.id, 3))
}

func (tok *activationToken) destroy() error {
	defer tok.conn.forget(tok.id)
	return tok.conn.send(newMessage(tok.id, 4))
}
