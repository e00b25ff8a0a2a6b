// Package keyboard translates raw compositor key events into resolved
// events: keycode to keysym via the shared keymap, modifier tracking,
// UTF-8 interpretation, and key repeat.
package keyboard

// Real modifier bit positions in the serialized modifier masks. Compiled
// keymaps order the core modifiers this way.
const (
	maskShift   uint32 = 1 << 0
	maskLock    uint32 = 1 << 1
	maskControl uint32 = 1 << 2
	maskMod1    uint32 = 1 << 3 // alt
	maskMod2    uint32 = 1 << 4 // num lock
	maskMod4    uint32 = 1 << 6 // logo
)

// evdevOffset converts evdev keycodes, as delivered in key events, to
// the xkb keycode space the keymap is indexed by.
const evdevOffset = 8

// Modifiers is the decoded modifier state attached to key events.
type Modifiers struct {
	Shift    bool
	Ctrl     bool
	Alt      bool
	Logo     bool
	CapsLock bool
	NumLock  bool
}

// Event is a fully resolved key event as delivered to widgets.
type Event struct {
	// Code is the raw evdev keycode.
	Code uint32
	// Keysym is the resolved symbol, KeyNone when the keymap does not
	// bind the code.
	Keysym uint32
	// Text is the UTF-8 interpretation, empty for non-printing keys.
	Text      string
	Pressed   bool
	Modifiers Modifiers
	// Repeated marks events synthesized by the repeat timer.
	Repeated bool
}

// State resolves keycodes against the current keymap and modifier masks.
// Without a keymap it degrades to raw keycode passthrough with zero
// keysyms, so input keeps flowing while the compositor's keymap is in
// transit or unparseable.
type State struct {
	keymap    *Keymap
	depressed uint32
	latched   uint32
	locked    uint32
	group     uint32
}

func NewState() *State { return &State{} }

// LoadKeymap parses and installs a keymap blob. The compositor may send
// a new keymap mid-session; modifier masks are reset because their bit
// assignments belong to the old map.
func (s *State) LoadKeymap(src []byte) error {
	km, err := ParseKeymap(src)
	if err != nil {
		return err
	}
	s.keymap = km
	s.depressed, s.latched, s.locked, s.group = 0, 0, 0, 0
	return nil
}

// HasKeymap reports whether a keymap is installed.
func (s *State) HasKeymap() bool { return s.keymap != nil }

// UpdateModifiers adopts the serialized modifier masks from the
// compositor's modifiers event.
func (s *State) UpdateModifiers(depressed, latched, locked, group uint32) {
	s.depressed = depressed
	s.latched = latched
	s.locked = locked
	s.group = group
}

func (s *State) effectiveMask() uint32 {
	return s.depressed | s.latched | s.locked
}

// Modifiers decodes the current effective modifier state.
func (s *State) Modifiers() Modifiers {
	m := s.effectiveMask()
	return Modifiers{
		Shift:    m&maskShift != 0,
		Ctrl:     m&maskControl != 0,
		Alt:      m&maskMod1 != 0,
		Logo:     m&maskMod4 != 0,
		CapsLock: m&maskLock != 0,
		NumLock:  m&maskMod2 != 0,
	}
}

// Resolve turns a raw key event into a delivered Event.
func (s *State) Resolve(code uint32, pressed bool) Event {
	ev := Event{Code: code, Pressed: pressed, Modifiers: s.Modifiers()}
	if s.keymap == nil {
		return ev
	}
	syms := s.keymap.Lookup(code + evdevOffset)
	if len(syms) == 0 {
		return ev
	}

	level := 0
	if ev.Modifiers.Shift {
		level = 1
	}
	// Caps lock inverts the shift level for letter keys only, so
	// shift+letter under caps lock is lowercase again.
	if ev.Modifiers.CapsLock && syms[0] >= 'a' && syms[0] <= 'z' {
		level = 1 - level
	}
	if level >= len(syms) {
		level = 0
	}
	ev.Keysym = syms[level]
	ev.Text = keysymText(ev.Keysym)
	return ev
}
