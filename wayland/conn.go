// Copyright 2026 The waydash Authors
// SPDX-License-Identifier: MIT

// Package wayland is a from-scratch client for the small slice of the
// protocol the dashboard needs: core globals, shared-memory buffers,
// seat input, the layer-shell and xdg-shell surface roles, and
// activation tokens. No C library is involved; messages are marshaled
// directly onto the compositor socket.
package wayland

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/waydash/waydash"
)

// ErrNoCompositor is returned by dial when no compositor socket can be
// located from the environment.
var ErrNoCompositor = errors.New("wayland: no compositor socket found")

// conn owns the compositor socket: request marshaling on one side, the
// read loop feeding object handlers on the other.
//
// Requests may be issued from any goroutine; writes are serialized by a
// mutex. Event handlers always run on the read loop goroutine.
type conn struct {
	sock *net.UnixConn

	writeMu sync.Mutex

	mu      sync.Mutex
	objects map[uint32]handler
	nextID  uint32

	fds []int // received descriptors, consumed in order
}

// handler dispatches one object's events.
type handler interface {
	handleEvent(opcode uint16, r *reader)
}

// dial connects to the compositor named by WAYLAND_DISPLAY inside
// XDG_RUNTIME_DIR, following the usual defaulting rules.
func dial() (*conn, error) {
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	path := display
	if !filepath.IsAbs(path) {
		runtime := os.Getenv("XDG_RUNTIME_DIR")
		if runtime == "" {
			return nil, fmt.Errorf("%w: XDG_RUNTIME_DIR not set", ErrNoCompositor)
		}
		path = filepath.Join(runtime, display)
	}
	sock, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCompositor, err)
	}
	return &conn{
		sock:    sock,
		objects: make(map[uint32]handler),
		nextID:  1, // the display is object 1
	}, nil
}

// allocate reserves a fresh object ID bound to h.
func (c *conn) allocate(h handler) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.objects[c.nextID] = h
	return c.nextID
}

// bindObject registers a handler under a fixed ID, used for the display.
func (c *conn) bindObject(id uint32, h handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[id] = h
}

// forget drops a destroyed object. Events already in flight for the ID
// are discarded by the read loop.
func (c *conn) forget(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, id)
}

func (c *conn) lookup(id uint32) handler {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.objects[id]
}

func (c *conn) close() error {
	return c.sock.Close()
}

// message accumulates one request before it hits the socket.
type message struct {
	buf []byte
	fds []int
}

func newMessage(object uint32, opcode uint16) *message {
	m := &message{buf: make([]byte, 8, 32)}
	binary.LittleEndian.PutUint32(m.buf, object)
	binary.LittleEndian.PutUint16(m.buf[4:], opcode)
	return m
}

func (m *message) putUint(v uint32) {
	m.buf = binary.LittleEndian.AppendUint32(m.buf, v)
}

func (m *message) putInt(v int32) { m.putUint(uint32(v)) }

// putString appends a NUL-terminated string padded to 32 bits.
func (m *message) putString(s string) {
	m.putUint(uint32(len(s) + 1))
	m.buf = append(m.buf, s...)
	m.buf = append(m.buf, 0)
	for len(m.buf)%4 != 0 {
		m.buf = append(m.buf, 0)
	}
}

// putFd queues a descriptor for the ancillary data of this message.
func (m *message) putFd(fd int) {
	m.fds = append(m.fds, fd)
}

// send patches the message size into the header and writes it with any
// queued descriptors.
func (c *conn) send(m *message) error {
	binary.LittleEndian.PutUint16(m.buf[6:], uint16(len(m.buf)))
	var oob []byte
	if len(m.fds) > 0 {
		oob = unix.UnixRights(m.fds...)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, _, err := c.sock.WriteMsgUnix(m.buf, oob, nil)
	if err != nil {
		return fmt.Errorf("wayland: send failed: %w", err)
	}
	return nil
}

// reader decodes one event's arguments.
type reader struct {
	data []byte
	off  int
	conn *conn
}

func (r *reader) uint() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) int() int32 { return int32(r.uint()) }

// fixed decodes a wl_fixed 24.8 value, truncated to whole pixels.
func (r *reader) fixed() int32 { return r.int() >> 8 }

func (r *reader) string() string {
	n := int(r.uint())
	s := string(r.data[r.off : r.off+n-1]) // drop the NUL
	r.off += (n + 3) &^ 3
	return s
}

func (r *reader) array() []byte {
	n := int(r.uint())
	b := r.data[r.off : r.off+n]
	r.off += (n + 3) &^ 3
	return b
}

// fd pops the next received descriptor. Descriptors arrive in request
// order on the ancillary channel, decoupled from message framing.
func (r *reader) fd() int {
	c := r.conn
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.fds) == 0 {
		return -1
	}
	fd := c.fds[0]
	c.fds = c.fds[1:]
	return fd
}

// readLoop parses events off the socket and dispatches them until the
// connection fails or closes. The error is delivered to fail, nil on
// orderly shutdown.
func (c *conn) readLoop(fail func(error)) {
	var pending []byte
	buf := make([]byte, 4096)
	oob := make([]byte, 256)

	for {
		n, oobn, _, _, err := c.sock.ReadMsgUnix(buf, oob)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				fail(nil)
			} else {
				fail(fmt.Errorf("wayland: read failed: %w", err))
			}
			return
		}
		if oobn > 0 {
			c.queueFds(oob[:oobn])
		}
		pending = append(pending, buf[:n]...)

		for len(pending) >= 8 {
			size := int(binary.LittleEndian.Uint16(pending[6:]))
			if size < 8 {
				// A header that cannot hold itself means the stream is
				// corrupt; there is no way to resynchronize.
				fail(fmt.Errorf("wayland: malformed event header: size %d", size))
				return
			}
			if len(pending) < size {
				break
			}
			object := binary.LittleEndian.Uint32(pending)
			opcode := binary.LittleEndian.Uint16(pending[4:])
			if h := c.lookup(object); h != nil {
				h.handleEvent(opcode, &reader{data: pending[8:size], conn: c})
			} else {
				waydash.Logger().Debug("event for unknown object",
					"object", object, "opcode", opcode)
			}
			pending = pending[size:]
		}
	}
}

func (c *conn) queueFds(oob []byte) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		waydash.Logger().Warn("bad control message", "error", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, msg := range msgs {
		fds, err := unix.ParseUnixRights(&msg)
		if err != nil {
			continue
		}
		c.fds = append(c.fds, fds...)
	}
}
