// Package waydash holds the shared primitives of the waydash compositing
// core: surface-pixel geometry, ARGB color, damage bookkeeping, and the
// library-wide logger.
//
// # Overview
//
// waydash is the client-side compositing core of a desktop dashboard. It
// owns the shared-memory pixel buffers displayed by a Wayland compositor,
// decides what must be redrawn each frame, and arranges a tree of
// rectangular widgets inside the surface.
//
// The module is organized into:
//   - waydash (this package): geometry, color, damage, logging
//   - buffer: bounds-checked pixel views, the shared buffer pool, and the
//     double-buffer swap scheduler with damage replay
//   - layout: recursive geometry negotiation over the widget table
//   - widget: the widget contract consumed by the renderer
//   - render: the per-frame redraw orchestrator
//   - keyboard: xkb keymap parsing, modifier state, and key repeat
//   - wayland: the wire-level compositor client
//   - session: the protocol state machine and single-threaded event loop
//   - config: TOML configuration with live reload
//
// Individual widget content, font rasterization, and desktop-environment
// glue live outside this module; they interact with the core only through
// the widget contract and the pixel view's coverage-map writer.
package waydash
