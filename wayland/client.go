// Copyright 2026 The waydash Authors
// SPDX-License-Identifier: MIT

package wayland

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/waydash/waydash"
	"github.com/waydash/waydash/buffer"
)

// Mode selects the surface role the dashboard presents as.
type Mode int

const (
	// ModeLayerShell overlays the dashboard via wlr-layer-shell.
	ModeLayerShell Mode = iota
	// ModeWindow falls back to an ordinary xdg-toplevel window for
	// compositors without layer shell.
	ModeWindow
)

// OutputMode selects which outputs the dashboard appears on in
// layer-shell mode.
type OutputMode int

const (
	// OutputModeActive presents one surface and lets the compositor
	// place it.
	OutputModeActive OutputMode = iota
	// OutputModeAll presents one surface per connected output; the
	// surface set is destroyed and recreated when outputs come or go.
	OutputModeAll
)

// Options configure the surface created by Connect.
type Options struct {
	Mode          Mode
	OutputMode    OutputMode
	Width, Height uint32

	// Layer shell parameters.
	Layer                 uint32
	Anchor                uint32
	ExclusiveZone         int32
	KeyboardInteractivity uint32
	Namespace             string

	// Window parameters.
	Title string
	AppID string
}

// Event is the discriminated union delivered on the client's event
// channel. All events are emitted from the read loop goroutine.
type Event interface{}

// ConfigureEvent reports a size the compositor wants acknowledged with
// AckConfigure before the next commit.
type ConfigureEvent struct {
	Serial        uint32
	Width, Height uint32
}

// ClosedEvent means the compositor discarded the surface; the session
// must exit.
type ClosedEvent struct{}

// KeymapEvent carries the keymap blob shared by the compositor.
type KeymapEvent struct{ Data []byte }

// KeyEvent is a raw key state change.
type KeyEvent struct {
	Serial  uint32
	Code    uint32
	Pressed bool
}

// ModifiersEvent carries serialized modifier masks.
type ModifiersEvent struct {
	Depressed, Latched, Locked, Group uint32
}

// RepeatInfoEvent carries the compositor's key repeat parameters.
type RepeatInfoEvent struct{ Rate, Delay int32 }

// KeyboardLeaveEvent reports loss of keyboard focus.
type KeyboardLeaveEvent struct{}

// FocusEvent reports the toplevel gaining or losing compositor focus,
// from the activated state of the xdg_toplevel configure.
type FocusEvent struct{ Focused bool }

// PointerEnterEvent through PointerButtonEvent report pointer activity
// in surface coordinates.
type PointerEnterEvent struct{ X, Y uint32 }
type PointerMotionEvent struct{ X, Y uint32 }
type PointerLeaveEvent struct{}
type PointerButtonEvent struct {
	Serial  uint32
	Button  uint32
	Pressed bool
}

// BufferReleasedEvent reports that the compositor is done reading a
// buffer; forward it to the swap scheduler.
type BufferReleasedEvent struct{ Handle buffer.Handle }

// FrameDoneEvent fires when the compositor is ready for the next frame.
type FrameDoneEvent struct{}

// TokenEvent delivers a requested activation token.
type TokenEvent struct{ Token string }

// OutputsChangedEvent reports a change in the connected output set.
// Recreated means the surface set was rebuilt: the new surfaces must
// not be committed to until their first ConfigureEvent arrives.
type OutputsChangedEvent struct {
	Count     int
	Recreated bool
}

// ErrorEvent reports a fatal connection failure; no further events
// follow.
type ErrorEvent struct{ Err error }

// Client is a connected dashboard surface. It implements
// buffer.Registrar for the pool and render.Surface for the
// orchestrator, and feeds everything the compositor says into Events.
type Client struct {
	conn     *conn
	display  *display
	registry *registry
	opts     Options

	compositor *compositor
	shm        *shm
	seat       *seat
	layerSh    *layerShell
	wmBase     *xdgWmBase
	activation *activation

	// roleMu guards the surface set: the read loop rebuilds it on
	// output hotplug while the session goroutine submits frames.
	roleMu    sync.Mutex
	outputs   []*output
	surface   *surfaceProxy
	layerSurf *layerSurface
	xdgSurf   *xdgSurface
	toplevel  *xdgToplevel
	mirrors   []*mirror

	// pending xdg toplevel size, flushed by the xdg_surface configure
	pendingW, pendingH uint32
	focused            bool

	events chan Event
	dead   chan struct{}
}

// mirror is a secondary per-output surface in all-outputs mode. It is
// attached and committed in lockstep with the primary surface; only the
// primary drives configure events and frame callbacks.
type mirror struct {
	out     *output
	surface *surfaceProxy
	ls      *layerSurface
}

// Connect dials the compositor, binds the globals, and creates the
// dashboard surface in the requested mode. The first ConfigureEvent on
// Events carries the negotiated size.
func Connect(opts Options) (*Client, error) {
	cn, err := dial()
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:   cn,
		opts:   opts,
		events: make(chan Event, 64),
		dead:   make(chan struct{}),
	}
	c.display = newDisplay(cn)
	c.display.onError = func(object, code uint32, text string) {
		waydash.Logger().Error("protocol error",
			"object", object, "code", code, "message", text)
	}

	c.registry = newRegistry(cn)
	c.registry.onGlobal = c.bindGlobal
	c.registry.onGlobalRemove = c.removeGlobal
	go cn.readLoop(c.fail)

	if err := c.display.getRegistry(c.registry); err != nil {
		cn.close()
		return nil, err
	}
	if err := c.roundtrip(); err != nil {
		cn.close()
		return nil, err
	}
	c.roleMu.Lock()
	err = c.createRole()
	c.roleMu.Unlock()
	if err != nil {
		cn.close()
		return nil, err
	}
	return c, nil
}

// Events returns the compositor event stream.
func (c *Client) Events() <-chan Event { return c.events }

func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.dead:
	}
}

func (c *Client) fail(err error) {
	select {
	case <-c.dead:
		return
	default:
	}
	if err != nil {
		c.emit(ErrorEvent{Err: err})
	}
	close(c.dead)
}

// roundtrip blocks until the compositor has processed everything sent
// so far.
func (c *Client) roundtrip() error {
	done := make(chan struct{})
	cb := newCallback(c.conn, func(uint32) { close(done) })
	if err := c.display.sync(cb); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-c.dead:
		return errors.New("wayland: connection lost during roundtrip")
	}
}

func (c *Client) bindGlobal(name uint32, iface string, version uint32) {
	bind := func(h handler, wanted uint32) uint32 {
		id := c.conn.allocate(h)
		if err := c.registry.bind(name, iface, min(version, wanted), id); err != nil {
			waydash.Logger().Error("bind failed", "interface", iface, "error", err)
		}
		return id
	}

	switch iface {
	case "wl_compositor":
		c.compositor = &compositor{conn: c.conn}
		c.compositor.id = bind(c.compositor, 4)
	case "wl_shm":
		c.shm = &shm{conn: c.conn}
		c.shm.id = bind(c.shm, 1)
	case "wl_seat":
		c.seat = &seat{conn: c.conn}
		c.seat.onCapabilities = c.seatCapabilities
		c.seat.id = bind(c.seat, 5)
	case "wl_output":
		o := &output{conn: c.conn, name: name}
		o.onDone = func(o *output) {
			if o.announced {
				return
			}
			o.announced = true
			recreated := c.outputsChanged()
			c.emit(OutputsChangedEvent{Count: c.Outputs(), Recreated: recreated})
		}
		o.id = bind(o, 3)
		c.roleMu.Lock()
		c.outputs = append(c.outputs, o)
		c.roleMu.Unlock()
	case "zwlr_layer_shell_v1":
		c.layerSh = &layerShell{conn: c.conn}
		c.layerSh.id = bind(c.layerSh, 1)
	case "xdg_wm_base":
		c.wmBase = &xdgWmBase{conn: c.conn}
		c.wmBase.id = bind(c.wmBase, 1)
	case "xdg_activation_v1":
		c.activation = &activation{conn: c.conn}
		c.activation.id = bind(c.activation, 1)
	}
}

func (c *Client) removeGlobal(name uint32) {
	c.roleMu.Lock()
	removed := false
	for i, o := range c.outputs {
		if o.name == name {
			if err := o.release(); err != nil {
				waydash.Logger().Warn("output release failed", "error", err)
			}
			c.outputs = append(c.outputs[:i], c.outputs[i+1:]...)
			removed = true
			break
		}
	}
	c.roleMu.Unlock()
	if removed {
		recreated := c.outputsChanged()
		c.emit(OutputsChangedEvent{Count: c.Outputs(), Recreated: recreated})
	}
}

// outputsChanged rebuilds the surface set after an output came or went,
// reporting whether a rebuild happened. The session learns of the
// change through OutputsChangedEvent and repaints into the fresh
// surfaces once they are configured.
func (c *Client) outputsChanged() bool {
	c.roleMu.Lock()
	if c.surface == nil || c.opts.Mode != ModeLayerShell || c.opts.OutputMode != OutputModeAll {
		c.roleMu.Unlock()
		return false
	}
	c.destroyRole()
	err := c.createRole()
	c.roleMu.Unlock()
	if err != nil {
		c.fail(fmt.Errorf("wayland: surface recreation failed: %w", err))
	}
	return true
}

func (c *Client) seatCapabilities(caps uint32) {
	if caps&seatCapabilityKeyboard != 0 {
		kb, err := c.seat.getKeyboard()
		if err != nil {
			waydash.Logger().Error("get_keyboard failed", "error", err)
			return
		}
		kb.onKeymap = c.keymap
		kb.onKey = func(serial, _, key, state uint32) {
			c.emit(KeyEvent{Serial: serial, Code: key, Pressed: state == 1})
		}
		kb.onModifiers = func(_, dep, lat, lock, group uint32) {
			c.emit(ModifiersEvent{Depressed: dep, Latched: lat, Locked: lock, Group: group})
		}
		kb.onRepeatInfo = func(rate, delay int32) {
			c.emit(RepeatInfoEvent{Rate: rate, Delay: delay})
		}
		kb.onLeave = func() { c.emit(KeyboardLeaveEvent{}) }
	}
	if caps&seatCapabilityPointer != 0 {
		pt, err := c.seat.getPointer()
		if err != nil {
			waydash.Logger().Error("get_pointer failed", "error", err)
			return
		}
		pt.onEnter = func(_ uint32, x, y int32) {
			c.emit(PointerEnterEvent{X: clampCoord(x), Y: clampCoord(y)})
		}
		pt.onMotion = func(x, y int32) {
			c.emit(PointerMotionEvent{X: clampCoord(x), Y: clampCoord(y)})
		}
		pt.onLeave = func(uint32) { c.emit(PointerLeaveEvent{}) }
		pt.onButton = func(serial, button, state uint32) {
			c.emit(PointerButtonEvent{Serial: serial, Button: button, Pressed: state == 1})
		}
	}
}

func clampCoord(v int32) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// keymap copies the shared keymap blob out of the compositor's mapping
// and hands it to the session.
func (c *Client) keymap(format uint32, fd int, size uint32) {
	defer unix.Close(fd)
	if format != 1 { // xkb_v1
		waydash.Logger().Warn("unsupported keymap format", "format", format)
		return
	}
	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		waydash.Logger().Warn("keymap mmap failed", "error", err)
		return
	}
	blob := make([]byte, size)
	copy(blob, data)
	if err := unix.Munmap(data); err != nil {
		waydash.Logger().Warn("keymap munmap failed", "error", err)
	}
	c.emit(KeymapEvent{Data: blob})
}

// createRole builds the surface set for the configured mode. The caller
// holds roleMu.
func (c *Client) createRole() error {
	if c.compositor == nil || c.shm == nil {
		return errors.New("wayland: compositor lacks wl_compositor or wl_shm")
	}
	surface, err := c.compositor.createSurface()
	if err != nil {
		return err
	}
	c.surface = surface

	switch c.opts.Mode {
	case ModeLayerShell:
		if c.layerSh == nil {
			return errors.New("wayland: compositor lacks zwlr_layer_shell_v1")
		}
		// In all-outputs mode the primary surface is pinned to the
		// first output and every further output gets a mirror.
		var out *output
		if c.opts.OutputMode == OutputModeAll && len(c.outputs) > 0 {
			out = c.outputs[0]
		}
		ls, err := c.layerSh.getLayerSurface(surface, out, c.opts.Layer, c.opts.Namespace)
		if err != nil {
			return err
		}
		c.layerSurf = ls
		ls.onConfigure = func(serial, width, height uint32) {
			if width == 0 {
				width = c.opts.Width
			}
			if height == 0 {
				height = c.opts.Height
			}
			c.emit(ConfigureEvent{Serial: serial, Width: width, Height: height})
		}
		ls.onClosed = func() { c.emit(ClosedEvent{}) }
		if err := ls.setSize(c.opts.Width, c.opts.Height); err != nil {
			return err
		}
		if err := ls.setAnchor(c.opts.Anchor); err != nil {
			return err
		}
		if err := ls.setExclusiveZone(c.opts.ExclusiveZone); err != nil {
			return err
		}
		if err := ls.setKeyboardInteractivity(c.opts.KeyboardInteractivity); err != nil {
			return err
		}
		if c.opts.OutputMode == OutputModeAll {
			for i := 1; i < len(c.outputs); i++ {
				if err := c.addMirror(c.outputs[i]); err != nil {
					return err
				}
			}
		}
	case ModeWindow:
		if c.wmBase == nil {
			return errors.New("wayland: compositor lacks xdg_wm_base")
		}
		xs, err := c.wmBase.getXdgSurface(surface)
		if err != nil {
			return err
		}
		tl, err := xs.getToplevel()
		if err != nil {
			return err
		}
		c.xdgSurf, c.toplevel = xs, tl
		tl.onConfigure = func(width, height int32, states []uint32) {
			c.pendingW, c.pendingH = clampCoord(width), clampCoord(height)
			if focused := hasState(states, toplevelStateActivated); focused != c.focused {
				c.focused = focused
				c.emit(FocusEvent{Focused: focused})
			}
		}
		tl.onClose = func() { c.emit(ClosedEvent{}) }
		xs.onConfigure = func(serial uint32) {
			width, height := c.pendingW, c.pendingH
			if width == 0 {
				width = c.opts.Width
			}
			if height == 0 {
				height = c.opts.Height
			}
			c.emit(ConfigureEvent{Serial: serial, Width: width, Height: height})
		}
		if err := tl.setTitle(c.opts.Title); err != nil {
			return err
		}
		if err := tl.setAppID(c.opts.AppID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("wayland: unknown mode %d", c.opts.Mode)
	}

	// The first commit has no buffer; it asks the compositor to
	// configure the surface.
	return surface.commit()
}

// addMirror creates a secondary surface pinned to out, configured like
// the primary. The caller holds roleMu.
func (c *Client) addMirror(out *output) error {
	surface, err := c.compositor.createSurface()
	if err != nil {
		return err
	}
	ls, err := c.layerSh.getLayerSurface(surface, out, c.opts.Layer, c.opts.Namespace)
	if err != nil {
		return err
	}
	m := &mirror{out: out, surface: surface, ls: ls}
	// Mirrors show whatever the primary shows; their configures are
	// acknowledged inline and their sizes never reach the session.
	ls.onConfigure = func(serial, _, _ uint32) {
		if err := ls.ackConfigure(serial); err != nil {
			waydash.Logger().Warn("mirror ack_configure failed", "error", err)
		}
	}
	ls.onClosed = func() { c.dropMirror(m) }
	if err := ls.setSize(c.opts.Width, c.opts.Height); err != nil {
		return err
	}
	if err := ls.setAnchor(c.opts.Anchor); err != nil {
		return err
	}
	if err := ls.setExclusiveZone(c.opts.ExclusiveZone); err != nil {
		return err
	}
	if err := ls.setKeyboardInteractivity(c.opts.KeyboardInteractivity); err != nil {
		return err
	}
	c.mirrors = append(c.mirrors, m)
	return surface.commit()
}

func (c *Client) dropMirror(m *mirror) {
	c.roleMu.Lock()
	defer c.roleMu.Unlock()
	for i, cur := range c.mirrors {
		if cur == m {
			c.mirrors = append(c.mirrors[:i], c.mirrors[i+1:]...)
			break
		}
	}
	if err := m.ls.destroy(); err != nil {
		waydash.Logger().Warn("mirror destroy failed", "error", err)
	}
	if err := m.surface.destroy(); err != nil {
		waydash.Logger().Warn("mirror surface destroy failed", "error", err)
	}
}

// destroyRole tears down every surface in the set. The caller holds
// roleMu.
func (c *Client) destroyRole() {
	for _, m := range c.mirrors {
		if err := m.ls.destroy(); err != nil {
			waydash.Logger().Warn("mirror destroy failed", "error", err)
		}
		if err := m.surface.destroy(); err != nil {
			waydash.Logger().Warn("mirror surface destroy failed", "error", err)
		}
	}
	c.mirrors = nil
	if c.layerSurf != nil {
		if err := c.layerSurf.destroy(); err != nil {
			waydash.Logger().Warn("layer surface destroy failed", "error", err)
		}
		c.layerSurf = nil
	}
	if c.toplevel != nil {
		if err := c.toplevel.destroy(); err != nil {
			waydash.Logger().Warn("toplevel destroy failed", "error", err)
		}
		c.toplevel = nil
	}
	if c.xdgSurf != nil {
		if err := c.xdgSurf.destroy(); err != nil {
			waydash.Logger().Warn("xdg surface destroy failed", "error", err)
		}
		c.xdgSurf = nil
	}
	if c.surface != nil {
		if err := c.surface.destroy(); err != nil {
			waydash.Logger().Warn("surface destroy failed", "error", err)
		}
		c.surface = nil
	}
}

// AckConfigure acknowledges a ConfigureEvent's serial.
func (c *Client) AckConfigure(serial uint32) error {
	c.roleMu.Lock()
	defer c.roleMu.Unlock()
	if c.layerSurf != nil {
		return c.layerSurf.ackConfigure(serial)
	}
	if c.xdgSurf != nil {
		return c.xdgSurf.ackConfigure(serial)
	}
	return nil
}

// Register implements buffer.Registrar: wrap shared memory in a
// single-buffer wl_shm_pool. The pool object is destroyed immediately,
// the buffer keeps the server-side mapping alive.
func (c *Client) Register(fd int, size int, width, height, stride uint32) (buffer.Handle, error) {
	pool, err := c.shm.createPool(fd, int32(size))
	if err != nil {
		return nil, err
	}
	b, err := pool.createBuffer(0, int32(width), int32(height), int32(stride), argb8888)
	if err != nil {
		return nil, err
	}
	if err := pool.destroy(); err != nil {
		return nil, err
	}
	b.onRelease = func(b *bufferProxy) { c.emit(BufferReleasedEvent{Handle: b}) }
	return b, nil
}

// Attach, Damage, and Commit implement the frame submission surface for
// the orchestrator. Mirrors receive the same buffer and damage as the
// primary surface. Send failures surface through the read loop, which
// sees the broken socket first.
func (c *Client) Attach(h buffer.Handle) {
	b := h.(*bufferProxy)
	c.roleMu.Lock()
	defer c.roleMu.Unlock()
	if c.surface == nil {
		return
	}
	if err := c.surface.attach(b); err != nil {
		waydash.Logger().Error("attach failed", "error", err)
	}
	for _, m := range c.mirrors {
		if err := m.surface.attach(b); err != nil {
			waydash.Logger().Error("mirror attach failed", "error", err)
		}
	}
}

func (c *Client) Damage(g waydash.Geometry) {
	c.roleMu.Lock()
	defer c.roleMu.Unlock()
	if c.surface == nil {
		return
	}
	if err := c.surface.damage(g); err != nil {
		waydash.Logger().Error("damage failed", "error", err)
	}
	for _, m := range c.mirrors {
		if err := m.surface.damage(g); err != nil {
			waydash.Logger().Error("mirror damage failed", "error", err)
		}
	}
}

// Commit submits the pending frame. A frame callback is requested with
// every commit of the primary surface, so each submitted frame produces
// exactly one FrameDoneEvent when the compositor is ready for the next.
func (c *Client) Commit() {
	c.roleMu.Lock()
	defer c.roleMu.Unlock()
	if c.surface == nil {
		return
	}
	cb := newCallback(c.conn, func(uint32) { c.emit(FrameDoneEvent{}) })
	if err := c.surface.frame(cb); err != nil {
		waydash.Logger().Error("frame request failed", "error", err)
	}
	if err := c.surface.commit(); err != nil {
		waydash.Logger().Error("commit failed", "error", err)
	}
	for _, m := range c.mirrors {
		if err := m.surface.commit(); err != nil {
			waydash.Logger().Error("mirror commit failed", "error", err)
		}
	}
}

// HasActivation reports whether the compositor supports activation
// tokens.
func (c *Client) HasActivation() bool { return c.activation != nil }

// RequestToken asks for an activation token tied to the given input
// serial; the token arrives as a TokenEvent.
func (c *Client) RequestToken(serial uint32) error {
	if c.activation == nil {
		return errors.New("wayland: compositor lacks xdg_activation_v1")
	}
	tok, err := c.activation.getActivationToken()
	if err != nil {
		return err
	}
	tok.onDone = func(token string) {
		c.emit(TokenEvent{Token: token})
		if err := tok.destroy(); err != nil {
			waydash.Logger().Warn("token destroy failed", "error", err)
		}
	}
	if c.seat != nil {
		if err := tok.setSerial(serial, c.seat); err != nil {
			return err
		}
	}
	c.roleMu.Lock()
	surface := c.surface
	c.roleMu.Unlock()
	if surface == nil {
		return errors.New("wayland: no surface to tie the token to")
	}
	if err := tok.setSurface(surface); err != nil {
		return err
	}
	return tok.commit()
}

// Activate asks the compositor to focus this client's surface using a
// token obtained externally.
func (c *Client) Activate(token string) error {
	if c.activation == nil {
		return errors.New("wayland: compositor lacks xdg_activation_v1")
	}
	c.roleMu.Lock()
	surface := c.surface
	c.roleMu.Unlock()
	if surface == nil {
		return errors.New("wayland: no surface to activate")
	}
	return c.activation.activate(token, surface)
}

// Outputs returns the number of connected outputs.
func (c *Client) Outputs() int {
	c.roleMu.Lock()
	defer c.roleMu.Unlock()
	return len(c.outputs)
}

// Close tears the surface set and connection down.
func (c *Client) Close() error {
	c.roleMu.Lock()
	c.destroyRole()
	c.roleMu.Unlock()
	return c.conn.close()
}
