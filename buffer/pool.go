package buffer

import (
	"errors"
	"fmt"

	"github.com/waydash/waydash"
	"github.com/waydash/waydash/internal/shm"
)

// ErrNoMemory is wrapped by Allocate when the platform cannot provide
// anonymous shared memory. This is fatal for the process: without shared
// buffers no further rendering is possible.
var ErrNoMemory = errors.New("buffer: shared memory allocation failed")

// Handle is the compositor-side identity of a registered buffer. The
// wayland package returns wl_buffer proxies; tests use lightweight fakes.
type Handle interface {
	// Destroy revokes the compositor registration.
	Destroy()
}

// Registrar registers shared pixel memory with the compositor, keyed by
// file descriptor, size, and stride.
type Registrar interface {
	Register(fd int, size int, width, height, stride uint32) (Handle, error)
}

// Slot is one tracked buffer: its backing memory, its compositor handle,
// and a reference count. The count rises when the buffer is attached to
// a surface for display and falls on the compositor's release
// notification; while it is nonzero the compositor may still be reading
// the memory and the application must not write to it.
type Slot struct {
	region *shm.Region
	view   *View
	handle Handle
	refs   int
	id     uint32

	width, height uint32
}

// View returns the zero-offset pixel view bound over the slot's memory.
func (s *Slot) View() *View { return s.view }

// Handle returns the compositor registration for attach calls.
func (s *Slot) Handle() Handle { return s.handle }

// ID returns the slot's stable identity within its pool.
func (s *Slot) ID() uint32 { return s.id }

// InUse reports whether the compositor may still be reading the slot.
func (s *Slot) InUse() bool { return s.refs > 0 }

// MarkAttached records that the buffer was attached to a surface for
// display. Each attach must be balanced by one compositor release.
func (s *Slot) MarkAttached() { s.refs++ }

// Pool owns the memory-mapped buffers registered with the compositor
// for one half of the swap pair. Slots are created lazily on first need
// and destroyed en masse when the surface dimensions change.
type Pool struct {
	reg    Registrar
	slots  []*Slot
	nextID uint32
}

// NewPool creates an empty pool that registers buffers through reg.
func NewPool(reg Registrar) *Pool {
	return &Pool{reg: reg}
}

// Allocate creates a new width×height buffer: an anonymous shared memory
// region, its compositor registration, and a zero pixel view over it.
// Allocation failure wraps ErrNoMemory.
func (p *Pool) Allocate(width, height uint32) (*Slot, error) {
	size := int(4 * width * height)
	region, err := shm.Create(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoMemory, err)
	}
	handle, err := p.reg.Register(region.FD(), size, width, height, 4*width)
	if err != nil {
		region.Close()
		return nil, fmt.Errorf("buffer: compositor registration failed: %w", err)
	}
	p.nextID++
	slot := &Slot{
		region: region,
		view:   NewView(region.Data(), width, height),
		handle: handle,
		id:     p.nextID,
		width:  width,
		height: height,
	}
	p.slots = append(p.slots, slot)
	waydash.Logger().Debug("buffer allocated",
		"id", slot.id, "width", width, "height", height)
	return slot, nil
}

// AcquireReusable returns the first tracked buffer the compositor has
// released, or nil when every slot is still displayed or in flight.
func (p *Pool) AcquireReusable() *Slot {
	for _, s := range p.slots {
		if !s.InUse() {
			return s
		}
	}
	return nil
}

// Release decrements the reference count of the slot matching handle.
// Called only in response to the compositor's buffer-release event. A
// handle that matches no slot (already cleared by a resize) is ignored.
func (p *Pool) Release(handle Handle) bool {
	for _, s := range p.slots {
		if s.handle == handle {
			if s.refs == 0 {
				waydash.Logger().Warn("release for buffer not in use", "id", s.id)
				return true
			}
			s.refs--
			return true
		}
	}
	return false
}

// newest returns the most recently allocated slot, or nil for an empty
// pool.
func (p *Pool) newest() *Slot {
	if len(p.slots) == 0 {
		return nil
	}
	return p.slots[len(p.slots)-1]
}

// Len returns the number of tracked slots.
func (p *Pool) Len() int { return len(p.slots) }

// ClearAll destroys every tracked buffer and its compositor
// registration. Used when the surface dimensions change: buffer contents
// are tied to a specific size and stride.
func (p *Pool) ClearAll() {
	for _, s := range p.slots {
		s.handle.Destroy()
		if err := s.region.Close(); err != nil {
			waydash.Logger().Warn("unmap failed", "id", s.id, "error", err)
		}
	}
	p.slots = nil
}
