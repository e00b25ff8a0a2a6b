package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waydash/waydash"
)

func acquireFrame(t *testing.T, s *Swap) (*Slot, bool) {
	t.Helper()
	slot, full, err := s.Acquire()
	require.NoError(t, err)
	require.NotNil(t, slot)
	return slot, full
}

// commitFrame plays the orchestrator's part: attach then commit.
func commitFrame(s *Swap, slot *Slot, damage []waydash.Geometry) {
	slot.MarkAttached()
	s.Commit(damage)
}

func TestSwap_FirstFrameIsFullRedraw(t *testing.T) {
	s := NewSwap(&fakeRegistrar{})
	s.Resize(8, 8)

	_, full := acquireFrame(t, s)
	assert.True(t, full)
}

func TestSwap_AcquireWithoutSize(t *testing.T) {
	s := NewSwap(&fakeRegistrar{})

	_, _, err := s.Acquire()
	assert.ErrorIs(t, err, ErrNoSize)
}

func TestSwap_AlternationAndReplay(t *testing.T) {
	s := NewSwap(&fakeRegistrar{})
	s.Resize(8, 8)

	red := waydash.RGB(1, 0, 0)
	green := waydash.RGB(0, 1, 0)

	// Frame 1: full redraw into buffer A.
	a, full := acquireFrame(t, s)
	require.True(t, full)
	a.View().Fill(waydash.RGB(0, 0, 0))
	a.View().Subview(waydash.Rect(0, 0, 2, 2)).Fill(red)
	commitFrame(s, a, []waydash.Geometry{waydash.Rect(0, 0, 8, 8)})

	// Frame 2: buffer B, replay brings it up to frame 1's state.
	b, full := acquireFrame(t, s)
	require.False(t, full)
	require.NotSame(t, a, b, "strict alternation")
	assert.Equal(t, red.ARGB8888(), b.View().Pixel(1, 1).ARGB8888(),
		"replayed pixels inside the previous damage")
	b.View().Subview(waydash.Rect(4, 4, 2, 2)).Fill(green)
	commitFrame(s, b, []waydash.Geometry{waydash.Rect(4, 4, 2, 2)})

	// Frame 3: back to buffer A; only {4,4,2,2} needs replay, and after
	// it A is pixel-identical to B.
	s.Release(a.Handle())
	c, full := acquireFrame(t, s)
	require.False(t, full)
	require.Same(t, a, c)
	assert.Equal(t, green.ARGB8888(), c.View().Pixel(5, 5).ARGB8888())
	assert.Equal(t, red.ARGB8888(), c.View().Pixel(1, 1).ARGB8888(),
		"pixels outside the replay set were already correct from two frames ago")
}

func TestSwap_PoolExhaustionSkipsAndForcesFull(t *testing.T) {
	s := NewSwap(&fakeRegistrar{})
	s.Resize(4, 4)

	a, _ := acquireFrame(t, s)
	commitFrame(s, a, []waydash.Geometry{waydash.Rect(0, 0, 1, 1)})
	b, _ := acquireFrame(t, s)
	commitFrame(s, b, []waydash.Geometry{waydash.Rect(1, 1, 1, 1)})

	// Both buffers are now attached and unreleased: the write target
	// (a) is still held, so the frame must be skipped, not blocked on.
	slot, full, err := s.Acquire()
	require.NoError(t, err)
	assert.Nil(t, slot)
	assert.False(t, full)

	// Once the compositor releases it, the next frame is forced full:
	// the write target is two frames stale and replay would be unsound.
	s.Release(a.Handle())
	_, full = acquireFrame(t, s)
	assert.True(t, full)
}

func TestSwap_NoOpFrameKeepsPrevDamage(t *testing.T) {
	s := NewSwap(&fakeRegistrar{})
	s.Resize(16, 16)

	a, _ := acquireFrame(t, s)
	commitFrame(s, a, []waydash.Geometry{waydash.Rect(0, 0, 10, 10)})
	s.Release(a.Handle())

	b, _ := acquireFrame(t, s)
	commitFrame(s, b, []waydash.Geometry{waydash.Rect(5, 5, 10, 10)})
	s.Release(b.Handle())

	// Frame 3 turns out to be a no-op: acquired but never committed.
	_, full := acquireFrame(t, s)
	require.False(t, full)

	assert.Equal(t, []waydash.Geometry{waydash.Rect(5, 5, 10, 10)}, s.PrevDamage(),
		"damage entering frame 4 is unchanged by the no-op frame")

	// Frame 4 reuses the same write target and replays again.
	slot, full := acquireFrame(t, s)
	assert.False(t, full)
	assert.NotNil(t, slot)
}

func TestSwap_ResizeDiscardsBuffers(t *testing.T) {
	reg := &fakeRegistrar{}
	s := NewSwap(reg)
	s.Resize(8, 8)

	a, _ := acquireFrame(t, s)
	commitFrame(s, a, []waydash.Geometry{waydash.Rect(0, 0, 8, 8)})

	s.Resize(12, 10)

	for _, h := range reg.handles {
		assert.True(t, h.destroyed)
	}
	assert.Empty(t, s.PrevDamage())

	slot, full := acquireFrame(t, s)
	assert.True(t, full, "first frame after resize is a full redraw")
	w, h := slot.View().Size()
	assert.Equal(t, uint32(12), w)
	assert.Equal(t, uint32(10), h)
}
