package keyboard

// Keysym values for the keys the dashboard core and its widgets care
// about, matching the X11 keysym encoding used by compiled keymaps.
const (
	KeyNone      uint32 = 0
	KeySpace     uint32 = 0x0020
	KeyBackSpace uint32 = 0xff08
	KeyTab       uint32 = 0xff09
	KeyReturn    uint32 = 0xff0d
	KeyEscape    uint32 = 0xff1b
	KeyDelete    uint32 = 0xffff
	KeyHome      uint32 = 0xff50
	KeyLeft      uint32 = 0xff51
	KeyUp        uint32 = 0xff52
	KeyRight     uint32 = 0xff53
	KeyDown      uint32 = 0xff54
	KeyPageUp    uint32 = 0xff55
	KeyPageDown  uint32 = 0xff56
	KeyEnd       uint32 = 0xff57
	KeyInsert    uint32 = 0xff63
)

// unicodeKeysymBase offsets Unicode codepoints in the keysym space.
const unicodeKeysymBase uint32 = 0x01000000

// keysymNames resolves the symbolic names that appear in the symbols
// section of a compiled keymap. Single-character alphanumerics resolve
// directly and are not listed.
var keysymNames = map[string]uint32{
	"space":        0x0020,
	"exclam":       0x0021,
	"quotedbl":     0x0022,
	"numbersign":   0x0023,
	"dollar":       0x0024,
	"percent":      0x0025,
	"ampersand":    0x0026,
	"apostrophe":   0x0027,
	"parenleft":    0x0028,
	"parenright":   0x0029,
	"asterisk":     0x002a,
	"plus":         0x002b,
	"comma":        0x002c,
	"minus":        0x002d,
	"period":       0x002e,
	"slash":        0x002f,
	"colon":        0x003a,
	"semicolon":    0x003b,
	"less":         0x003c,
	"equal":        0x003d,
	"greater":      0x003e,
	"question":     0x003f,
	"at":           0x0040,
	"bracketleft":  0x005b,
	"backslash":    0x005c,
	"bracketright": 0x005d,
	"asciicircum":  0x005e,
	"underscore":   0x005f,
	"grave":        0x0060,
	"braceleft":    0x007b,
	"bar":          0x007c,
	"braceright":   0x007d,
	"asciitilde":   0x007e,

	"BackSpace": KeyBackSpace,
	"Tab":       KeyTab,
	"Return":    KeyReturn,
	"Escape":    KeyEscape,
	"Delete":    KeyDelete,
	"Home":      KeyHome,
	"Left":      KeyLeft,
	"Up":        KeyUp,
	"Right":     KeyRight,
	"Down":      KeyDown,
	"Prior":     KeyPageUp,
	"Next":      KeyPageDown,
	"End":       KeyEnd,
	"Insert":    KeyInsert,
	"Menu":      0xff67,
	"Pause":     0xff13,
	"Print":     0xff61,

	"F1":  0xffbe,
	"F2":  0xffbf,
	"F3":  0xffc0,
	"F4":  0xffc1,
	"F5":  0xffc2,
	"F6":  0xffc3,
	"F7":  0xffc4,
	"F8":  0xffc5,
	"F9":  0xffc6,
	"F10": 0xffc7,
	"F11": 0xffc8,
	"F12": 0xffc9,

	"Shift_L":   0xffe1,
	"Shift_R":   0xffe2,
	"Control_L": 0xffe3,
	"Control_R": 0xffe4,
	"Caps_Lock": 0xffe5,
	"Meta_L":    0xffe7,
	"Meta_R":    0xffe8,
	"Alt_L":     0xffe9,
	"Alt_R":     0xffea,
	"Super_L":   0xffeb,
	"Super_R":   0xffec,
	"Hyper_L":   0xffed,
	"Hyper_R":   0xffee,
	"Num_Lock":  0xff7f,

	"ISO_Level3_Shift": 0xfe03,
	"ISO_Left_Tab":     0xfe20,
	"Mode_switch":      0xff7e,

	"KP_Enter":    0xff8d,
	"KP_Home":     0xff95,
	"KP_Left":     0xff96,
	"KP_Up":       0xff97,
	"KP_Right":    0xff98,
	"KP_Down":     0xff99,
	"KP_Add":      0xffab,
	"KP_Subtract": 0xffad,
	"KP_Multiply": 0xffaa,
	"KP_Divide":   0xffaf,
	"KP_Decimal":  0xffae,
	"KP_0":        0xffb0,
	"KP_1":        0xffb1,
	"KP_2":        0xffb2,
	"KP_3":        0xffb3,
	"KP_4":        0xffb4,
	"KP_5":        0xffb5,
	"KP_6":        0xffb6,
	"KP_7":        0xffb7,
	"KP_8":        0xffb8,
	"KP_9":        0xffb9,

	"NoSymbol":  0,
	"VoidSymbol": 0xffffff,
}

// keysymFromName resolves a keysym name from a keymap's symbols section.
// Unknown names resolve to KeyNone rather than failing the whole keymap.
func keysymFromName(name string) uint32 {
	if len(name) == 1 {
		ch := name[0]
		if ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' {
			return uint32(ch)
		}
	}
	if sym, ok := keysymNames[name]; ok {
		return sym
	}
	// Unicode keysyms: U<hex codepoint>.
	if len(name) > 1 && name[0] == 'U' {
		if cp, ok := parseHexU32(name[1:]); ok {
			return unicodeKeysymBase + cp
		}
	}
	// Raw hex keysyms.
	if len(name) > 2 && name[0] == '0' && (name[1] == 'x' || name[1] == 'X') {
		if v, ok := parseHexU32(name[2:]); ok {
			return v
		}
	}
	return KeyNone
}

func parseHexU32(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	var v uint32
	for i := 0; i < len(s); i++ {
		v <<= 4
		switch ch := s[i]; {
		case ch >= '0' && ch <= '9':
			v |= uint32(ch - '0')
		case ch >= 'a' && ch <= 'f':
			v |= uint32(ch-'a') + 10
		case ch >= 'A' && ch <= 'F':
			v |= uint32(ch-'A') + 10
		default:
			return 0, false
		}
	}
	return v, true
}

// keysymText returns the UTF-8 interpretation of a keysym, or "" when
// the keysym has none.
func keysymText(sym uint32) string {
	switch {
	case sym == KeyReturn || sym == 0xff8d:
		return "\r"
	case sym == KeyTab:
		return "\t"
	case sym >= 0x20 && sym <= 0x7e, sym >= 0xa0 && sym <= 0xff:
		return string(rune(sym))
	case sym >= unicodeKeysymBase:
		return string(rune(sym - unicodeKeysymBase))
	case sym >= 0xffb0 && sym <= 0xffb9: // keypad digits
		return string(rune('0' + sym - 0xffb0))
	}
	return ""
}

// keysymRepeats reports whether holding the key should repeat it.
// Modifier and lock keys do not repeat.
func keysymRepeats(sym uint32) bool {
	switch {
	case sym >= 0xffe1 && sym <= 0xffee: // modifiers
		return false
	case sym == 0xff7f || sym == 0xff7e || sym == 0xfe03: // locks, mode switch
		return false
	case sym == KeyNone:
		return false
	}
	return true
}
