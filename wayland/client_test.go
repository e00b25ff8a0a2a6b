// Copyright 2026 The waydash Authors
// SPDX-License-Identifier: MIT

package wayland

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient wires a Client over a socketpair peer. Globals are fed
// in by calling bindGlobal directly; no read loop runs, so the peer
// just buffers whatever the client sends.
func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	cn, _ := connPair(t)
	c := &Client{
		conn:   cn,
		opts:   opts,
		events: make(chan Event, 64),
		dead:   make(chan struct{}),
	}
	c.display = newDisplay(cn)
	c.registry = newRegistry(cn)
	c.registry.onGlobal = c.bindGlobal
	c.registry.onGlobalRemove = c.removeGlobal
	return c
}

func (c *Client) createRoleForTest(t *testing.T) {
	t.Helper()
	c.roleMu.Lock()
	err := c.createRole()
	c.roleMu.Unlock()
	require.NoError(t, err)
}

// drainEvents empties the event channel and returns what was queued.
func drainEvents(c *Client) []Event {
	var evs []Event
	for {
		select {
		case ev := <-c.events:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func TestClient_AllOutputsSurfacePerOutput(t *testing.T) {
	c := newTestClient(t, Options{
		Mode:       ModeLayerShell,
		OutputMode: OutputModeAll,
		Width:      100,
		Height:     50,
		Layer:      LayerOverlay,
		Namespace:  "test",
	})
	c.bindGlobal(1, "wl_compositor", 4)
	c.bindGlobal(2, "wl_shm", 1)
	c.bindGlobal(3, "zwlr_layer_shell_v1", 1)
	c.bindGlobal(10, "wl_output", 3)
	c.bindGlobal(11, "wl_output", 3)

	c.createRoleForTest(t)

	require.NotNil(t, c.layerSurf)
	assert.Len(t, c.mirrors, 1, "second output gets a mirror surface")
	assert.Same(t, c.outputs[1], c.mirrors[0].out)
}

func TestClient_OutputHotplugRebuildsSurfaces(t *testing.T) {
	c := newTestClient(t, Options{
		Mode:       ModeLayerShell,
		OutputMode: OutputModeAll,
		Width:      100,
		Height:     50,
	})
	c.bindGlobal(1, "wl_compositor", 4)
	c.bindGlobal(2, "wl_shm", 1)
	c.bindGlobal(3, "zwlr_layer_shell_v1", 1)
	c.bindGlobal(10, "wl_output", 3)
	c.createRoleForTest(t)
	require.Empty(t, c.mirrors)
	drainEvents(c)

	// A new output announcing itself rebuilds the surface set with a
	// mirror for it.
	c.bindGlobal(11, "wl_output", 3)
	c.outputs[1].handleEvent(2, &reader{conn: c.conn}) // done
	assert.Len(t, c.mirrors, 1)
	assert.Equal(t, []Event{OutputsChangedEvent{Count: 2, Recreated: true}}, drainEvents(c))

	// Repeated done events for the same output change nothing.
	c.outputs[1].handleEvent(2, &reader{conn: c.conn})
	assert.Len(t, c.mirrors, 1)
	assert.Empty(t, drainEvents(c))

	// Removing an output rebuilds again without the mirror.
	c.removeGlobal(11)
	assert.Empty(t, c.mirrors)
	assert.NotNil(t, c.layerSurf)
	assert.Equal(t, 1, c.Outputs())
	assert.Equal(t, []Event{OutputsChangedEvent{Count: 1, Recreated: true}}, drainEvents(c))
}

func TestClient_ActiveModeIgnoresHotplug(t *testing.T) {
	c := newTestClient(t, Options{Mode: ModeLayerShell, Width: 100, Height: 50})
	c.bindGlobal(1, "wl_compositor", 4)
	c.bindGlobal(2, "wl_shm", 1)
	c.bindGlobal(3, "zwlr_layer_shell_v1", 1)
	c.bindGlobal(10, "wl_output", 3)
	c.createRoleForTest(t)
	drainEvents(c)
	primary := c.layerSurf

	c.bindGlobal(11, "wl_output", 3)
	c.outputs[1].handleEvent(2, &reader{conn: c.conn})
	assert.Same(t, primary, c.layerSurf, "compositor placement keeps the surface")
	assert.Empty(t, c.mirrors)
	assert.Equal(t, []Event{OutputsChangedEvent{Count: 2}}, drainEvents(c))
}

func TestClient_ToplevelFocusTracking(t *testing.T) {
	c := newTestClient(t, Options{Mode: ModeWindow, Width: 100, Height: 50, Title: "t", AppID: "t"})
	c.bindGlobal(1, "wl_compositor", 4)
	c.bindGlobal(2, "wl_shm", 1)
	c.bindGlobal(3, "xdg_wm_base", 1)
	c.createRoleForTest(t)

	configure := func(states ...uint32) {
		var payload []byte
		payload = binary.LittleEndian.AppendUint32(payload, 0) // width
		payload = binary.LittleEndian.AppendUint32(payload, 0) // height
		payload = binary.LittleEndian.AppendUint32(payload, uint32(4*len(states)))
		for _, s := range states {
			payload = binary.LittleEndian.AppendUint32(payload, s)
		}
		c.toplevel.handleEvent(0, &reader{data: payload, conn: c.conn})
	}

	configure(toplevelStateActivated)
	assert.Equal(t, []Event{FocusEvent{Focused: true}}, drainEvents(c))

	// Unchanged focus is not re-announced.
	configure(toplevelStateActivated, 1)
	assert.Empty(t, drainEvents(c))

	configure()
	assert.Equal(t, []Event{FocusEvent{Focused: false}}, drainEvents(c))
}
