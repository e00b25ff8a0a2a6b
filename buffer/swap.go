package buffer

import (
	"errors"

	"github.com/waydash/waydash"
)

// ErrNoSize is returned by Acquire before the surface has a negotiated
// size.
var ErrNoSize = errors.New("buffer: swap has no surface size")

// Swap alternates between two independent buffer pools so the
// application writes one frame while the compositor reads the previous
// one, without repainting the whole surface every frame.
//
// The trick is damage replay: the buffer selected as this frame's write
// target is the one written two frames ago, stale by exactly one frame
// relative to the last-written buffer. Copying the previous frame's
// damage rectangles from the read source into the write target brings it
// up to date, leaving only this frame's changes to render.
//
// Alternation advances only on Commit, i.e. on successful frames. A
// frame that is skipped (pool exhausted) or aborted leaves the toggle
// where it was, and a skipped frame additionally invalidates the replay
// set: the next successful frame is a forced full redraw rather than a
// replay against a buffer more than one frame stale.
type Swap struct {
	pools [2]*Pool
	cur   int // pool holding the last committed frame

	width, height uint32

	prevDamage []waydash.Geometry
	havePrev   bool
	forceFull  bool
}

// NewSwap creates a swap scheduler whose pools register buffers through
// reg.
func NewSwap(reg Registrar) *Swap {
	return &Swap{pools: [2]*Pool{NewPool(reg), NewPool(reg)}}
}

// Resize discards every pooled buffer and adopts the new surface size.
// Old pixel data is meaningless at any other size, so the next frame is
// a full redraw from scratch.
func (s *Swap) Resize(width, height uint32) {
	s.pools[0].ClearAll()
	s.pools[1].ClearAll()
	s.width = width
	s.height = height
	s.prevDamage = nil
	s.havePrev = false
	s.forceFull = false
}

// Acquire selects this frame's write target and replays the previous
// frame's damage into it from the read source.
//
// A nil slot with a nil error means the compositor has not released the
// write target yet; the caller must skip the frame and retry on the next
// scheduling opportunity, never block. fullRedraw reports that replay
// was not possible (first frame, resize, or a prior skipped frame) and
// the caller must clear and repaint the whole surface.
func (s *Swap) Acquire() (slot *Slot, fullRedraw bool, err error) {
	if s.width == 0 || s.height == 0 {
		return nil, false, ErrNoSize
	}

	writePool := s.pools[1-s.cur]
	slot = writePool.AcquireReusable()
	if slot == nil {
		if writePool.Len() > 0 {
			// Compositor still holds the buffer we need. Skip this
			// frame and force a full redraw on the next one: the
			// write target will then be more than one frame stale.
			s.forceFull = true
			waydash.Logger().Warn("buffer pool exhausted, skipping frame")
			return nil, false, nil
		}
		slot, err = writePool.Allocate(s.width, s.height)
		if err != nil {
			return nil, false, err
		}
	}

	// The read source is whatever the compositor is displaying; reading
	// it is safe, only writes are forbidden while it is referenced.
	read := s.pools[s.cur].newest()
	fullRedraw = s.forceFull || !s.havePrev || read == nil
	if !fullRedraw {
		full := waydash.Rect(0, 0, s.width, s.height)
		for _, r := range s.prevDamage {
			if clipped := r.Intersect(full); !clipped.Empty() {
				slot.View().CopyRect(read.View(), clipped)
			}
		}
	}
	return slot, fullRedraw, nil
}

// Commit records a successful frame: alternation advances and damage
// becomes the replay set for the next frame. Call it after the buffer
// was attached and committed to the surface.
func (s *Swap) Commit(damage []waydash.Geometry) {
	s.cur = 1 - s.cur
	s.prevDamage = append(s.prevDamage[:0:0], damage...)
	s.havePrev = true
	s.forceFull = false
}

// Invalidate forces the next successful frame to be a full redraw.
// Called when an acquired buffer was partially written and then
// abandoned, leaving its contents untrustworthy for replay.
func (s *Swap) Invalidate() { s.forceFull = true }

// PrevDamage returns the damage rectangles that will be replayed into
// the next acquired buffer.
func (s *Swap) PrevDamage() []waydash.Geometry { return s.prevDamage }

// Size returns the current surface size.
func (s *Swap) Size() (width, height uint32) { return s.width, s.height }

// Release forwards a compositor buffer-release notification to
// whichever pool tracks the handle.
func (s *Swap) Release(handle Handle) bool {
	return s.pools[0].Release(handle) || s.pools[1].Release(handle)
}
