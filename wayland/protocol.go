// Copyright 2026 The waydash Authors
// SPDX-License-Identifier: MIT

package wayland

import "github.com/waydash/waydash"

// Core protocol proxies. Request opcodes and event numbering follow the
// stable wayland.xml; only the requests and events the dashboard uses
// are implemented, unknown events are logged and dropped.

type display struct {
	conn *conn

	onError    func(object, code uint32, text string)
	onDeleteID func(id uint32)
}

func newDisplay(c *conn) *display {
	d := &display{conn: c}
	c.bindObject(1, d)
	return d
}

func (d *display) sync(cb *callback) error {
	m := newMessage(1, 0)
	m.putUint(cb.id)
	return d.conn.send(m)
}

func (d *display) getRegistry(reg *registry) error {
	m := newMessage(1, 1)
	m.putUint(reg.id)
	return d.conn.send(m)
}

func (d *display) handleEvent(opcode uint16, r *reader) {
	switch opcode {
	case 0: // error
		object := r.uint()
		code := r.uint()
		text := r.string()
		if d.onError != nil {
			d.onError(object, code, text)
		}
	case 1: // delete_id
		id := r.uint()
		d.conn.forget(id)
		if d.onDeleteID != nil {
			d.onDeleteID(id)
		}
	}
}

type registry struct {
	conn *conn
	id   uint32

	onGlobal       func(name uint32, iface string, version uint32)
	onGlobalRemove func(name uint32)
}

func newRegistry(c *conn) *registry {
	reg := &registry{conn: c}
	reg.id = c.allocate(reg)
	return reg
}

// bind attaches a fresh object ID to the named global. The new_id in
// wl_registry.bind is untyped on the wire, so interface and version
// travel with it.
func (reg *registry) bind(name uint32, iface string, version, newID uint32) error {
	m := newMessage(reg.id, 0)
	m.putUint(name)
	m.putString(iface)
	m.putUint(version)
	m.putUint(newID)
	return reg.conn.send(m)
}

func (reg *registry) handleEvent(opcode uint16, r *reader) {
	switch opcode {
	case 0: // global
		name := r.uint()
		iface := r.string()
		version := r.uint()
		if reg.onGlobal != nil {
			reg.onGlobal(name, iface, version)
		}
	case 1: // global_remove
		if reg.onGlobalRemove != nil {
			reg.onGlobalRemove(r.uint())
		}
	}
}

type callback struct {
	conn *conn
	id   uint32

	onDone func(data uint32)
}

func newCallback(c *conn, onDone func(uint32)) *callback {
	cb := &callback{conn: c, onDone: onDone}
	cb.id = c.allocate(cb)
	return cb
}

func (cb *callback) handleEvent(opcode uint16, r *reader) {
	if opcode == 0 && cb.onDone != nil {
		cb.onDone(r.uint())
	}
}

type compositor struct {
	conn *conn
	id   uint32
}

func (cp *compositor) handleEvent(uint16, *reader) {}

func (cp *compositor) createSurface() (*surfaceProxy, error) {
	s := &surfaceProxy{conn: cp.conn}
	s.id = cp.conn.allocate(s)
	m := newMessage(cp.id, 0)
	m.putUint(s.id)
	return s, cp.conn.send(m)
}

type surfaceProxy struct {
	conn *conn
	id   uint32

	onEnter func(outputID uint32)
	onLeave func(outputID uint32)
}

func (s *surfaceProxy) handleEvent(opcode uint16, r *reader) {
	switch opcode {
	case 0: // enter
		if s.onEnter != nil {
			s.onEnter(r.uint())
		}
	case 1: // leave
		if s.onLeave != nil {
			s.onLeave(r.uint())
		}
	}
}

func (s *surfaceProxy) attach(b *bufferProxy) error {
	m := newMessage(s.id, 1)
	if b != nil {
		m.putUint(b.id)
	} else {
		m.putUint(0)
	}
	m.putInt(0)
	m.putInt(0)
	return s.conn.send(m)
}

func (s *surfaceProxy) damage(g waydash.Geometry) error {
	m := newMessage(s.id, 2)
	m.putInt(int32(g.X))
	m.putInt(int32(g.Y))
	m.putInt(int32(g.Width))
	m.putInt(int32(g.Height))
	return s.conn.send(m)
}

func (s *surfaceProxy) frame(cb *callback) error {
	m := newMessage(s.id, 3)
	m.putUint(cb.id)
	return s.conn.send(m)
}

func (s *surfaceProxy) commit() error {
	return s.conn.send(newMessage(s.id, 6))
}

func (s *surfaceProxy) destroy() error {
	defer s.conn.forget(s.id)
	return s.conn.send(newMessage(s.id, 0))
}

// argb8888 is the wl_shm format the whole pipeline renders in.
const argb8888 uint32 = 0

type shm struct {
	conn *conn
	id   uint32

	formats []uint32
}

func (s *shm) handleEvent(opcode uint16, r *reader) {
	if opcode == 0 { // format
		s.formats = append(s.formats, r.uint())
	}
}

func (s *shm) createPool(fd int, size int32) (*shmPool, error) {
	p := &shmPool{conn: s.conn}
	p.id = s.conn.allocate(p)
	m := newMessage(s.id, 0)
	m.putUint(p.id)
	m.putFd(fd)
	m.putInt(size)
	return p, s.conn.send(m)
}

type shmPool struct {
	conn *conn
	id   uint32
}

func (p *shmPool) handleEvent(uint16, *reader) {}

func (p *shmPool) createBuffer(offset, width, height, stride int32, format uint32) (*bufferProxy, error) {
	b := &bufferProxy{conn: p.conn}
	b.id = p.conn.allocate(b)
	m := newMessage(p.id, 0)
	m.putUint(b.id)
	m.putInt(offset)
	m.putInt(width)
	m.putInt(height)
	m.putInt(stride)
	m.putUint(format)
	return b, p.conn.send(m)
}

func (p *shmPool) destroy() error {
	defer p.conn.forget(p.id)
	return p.conn.send(newMessage(p.id, 1))
}

// bufferProxy is a wl_buffer. It satisfies buffer.Handle so the pool
// can destroy compositor state without knowing about the wire.
type bufferProxy struct {
	conn *conn
	id   uint32

	onRelease func(b *bufferProxy)
}

func (b *bufferProxy) handleEvent(opcode uint16, _ *reader) {
	if opcode == 0 && b.onRelease != nil {
		b.onRelease(b)
	}
}

// Destroy revokes the compositor-side buffer.
func (b *bufferProxy) Destroy() {
	b.conn.forget(b.id)
	if err := b.conn.send(newMessage(b.id, 0)); err != nil {
		waydash.Logger().Warn("buffer destroy failed", "error", err)
	}
}

const (
	seatCapabilityPointer  uint32 = 1
	seatCapabilityKeyboard uint32 = 2
)

type seat struct {
	conn *conn
	id   uint32

	onCapabilities func(caps uint32)
}

func (s *seat) handleEvent(opcode uint16, r *reader) {
	if opcode == 0 && s.onCapabilities != nil {
		s.onCapabilities(r.uint())
	}
}

func (s *seat) getPointer() (*pointer, error) {
	p := &pointer{conn: s.conn}
	p.id = s.conn.allocate(p)
	m := newMessage(s.id, 0)
	m.putUint(p.id)
	return p, s.conn.send(m)
}

func (s *seat) getKeyboard() (*keyboardProxy, error) {
	k := &keyboardProxy{conn: s.conn}
	k.id = s.conn.allocate(k)
	m := newMessage(s.id, 1)
	m.putUint(k.id)
	return k, s.conn.send(m)
}

type keyboardProxy struct {
	conn *conn
	id   uint32

	onKeymap     func(format uint32, fd int, size uint32)
	onKey        func(serial, time, key, state uint32)
	onModifiers  func(serial, depressed, latched, locked, group uint32)
	onRepeatInfo func(rate, delay int32)
	onLeave      func()
}

func (k *keyboardProxy) handleEvent(opcode uint16, r *reader) {
	switch opcode {
	case 0: // keymap
		format := r.uint()
		fd := r.fd()
		size := r.uint()
		if k.onKeymap != nil {
			k.onKeymap(format, fd, size)
		}
	case 2: // leave
		if k.onLeave != nil {
			k.onLeave()
		}
	case 3: // key
		serial := r.uint()
		time := r.uint()
		key := r.uint()
		state := r.uint()
		if k.onKey != nil {
			k.onKey(serial, time, key, state)
		}
	case 4: // modifiers
		serial := r.uint()
		dep := r.uint()
		lat := r.uint()
		lock := r.uint()
		group := r.uint()
		if k.onModifiers != nil {
			k.onModifiers(serial, dep, lat, lock, group)
		}
	case 5: // repeat_info
		rate := r.int()
		delay := r.int()
		if k.onRepeatInfo != nil {
			k.onRepeatInfo(rate, delay)
		}
	}
}

type pointer struct {
	conn *conn
	id   uint32

	onEnter  func(serial uint32, x, y int32)
	onLeave  func(serial uint32)
	onMotion func(x, y int32)
	onButton func(serial, button, state uint32)
}

func (p *pointer) handleEvent(opcode uint16, r *reader) {
	switch opcode {
	case 0: // enter
		serial := r.uint()
		r.uint() // surface
		x := r.fixed()
		y := r.fixed()
		if p.onEnter != nil {
			p.onEnter(serial, x, y)
		}
	case 1: // leave
		serial := r.uint()
		if p.onLeave != nil {
			p.onLeave(serial)
		}
	case 2: // motion
		r.uint() // time
		x := r.fixed()
		y := r.fixed()
		if p.onMotion != nil {
			p.onMotion(x, y)
		}
	case 3: // button
		serial := r.uint()
		r.uint() // time
		button := r.uint()
		state := r.uint()
		if p.onButton != nil {
			p.onButton(serial, button, state)
		}
	}
}

type output struct {
	conn      *conn
	id        uint32
	name      uint32 // registry name, for global_remove matching
	announced bool   // first done event seen

	onDone func(o *output)
}

func (o *output) handleEvent(opcode uint16, r *reader) {
	if opcode == 2 && o.onDone != nil { // done
		o.onDone(o)
	}
}

func (o *output) release() error {
	defer o.conn.forget(o.id)
	return o.conn.send(newMessage(o.id, 0))
}
