package keyboard

import (
	"errors"
	"fmt"
	"strconv"
)

// Keymap maps xkb keycodes to per-level keysyms, built from the
// xkb_keymap text blob the compositor shares over the keyboard's keymap
// event. Only the keycodes and symbols sections are consumed: types,
// compat, and actions are the compositor's business, and the fixed real
// modifier order covers the modifier mapping.
type Keymap struct {
	syms map[uint32][]uint32
}

// ErrKeymapFormat is returned when the blob is not an xkb_keymap text.
var ErrKeymapFormat = errors.New("keyboard: malformed keymap")

// Lookup returns the keysyms bound to an xkb keycode, one per shift
// level, or nil for an unbound code.
func (km *Keymap) Lookup(code uint32) []uint32 {
	return km.syms[code]
}

// ParseKeymap parses an xkb_keymap v1 text blob.
func ParseKeymap(src []byte) (*Keymap, error) {
	toks := tokenize(src)
	if len(toks) == 0 || toks[0] != "xkb_keymap" {
		return nil, fmt.Errorf("%w: missing xkb_keymap header", ErrKeymapFormat)
	}

	codes := map[string]uint32{}   // <NAME> → keycode
	aliases := map[string]string{} // <ALIAS> → <NAME>
	symsByName := map[string][]uint32{}

	for i := 0; i < len(toks); i++ {
		switch toks[i] {
		case "xkb_keycodes":
			body, next, err := balancedBlock(toks, i)
			if err != nil {
				return nil, err
			}
			parseKeycodes(body, codes, aliases)
			i = next
		case "xkb_symbols":
			body, next, err := balancedBlock(toks, i)
			if err != nil {
				return nil, err
			}
			parseSymbols(body, symsByName)
			i = next
		}
	}
	if len(codes) == 0 || len(symsByName) == 0 {
		return nil, fmt.Errorf("%w: missing keycodes or symbols section", ErrKeymapFormat)
	}

	km := &Keymap{syms: make(map[uint32][]uint32, len(symsByName))}
	for name, syms := range symsByName {
		target := name
		if t, ok := aliases[name]; ok {
			target = t
		}
		if code, ok := codes[target]; ok {
			km.syms[code] = syms
		}
	}
	return km, nil
}

// balancedBlock returns the tokens inside the brace block opened after
// position i, and the index of its closing brace.
func balancedBlock(toks []string, i int) ([]string, int, error) {
	for ; i < len(toks) && toks[i] != "{"; i++ {
	}
	if i == len(toks) {
		return nil, 0, fmt.Errorf("%w: unterminated section", ErrKeymapFormat)
	}
	depth := 1
	start := i + 1
	for j := start; j < len(toks); j++ {
		switch toks[j] {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return toks[start:j], j, nil
			}
		}
	}
	return nil, 0, fmt.Errorf("%w: unterminated section", ErrKeymapFormat)
}

// parseKeycodes collects "<NAME> = 9;" bindings and "alias <A> = <B>;"
// entries from a keycodes section body.
func parseKeycodes(toks []string, codes map[string]uint32, aliases map[string]string) {
	for i := 0; i+2 < len(toks); i++ {
		switch {
		case toks[i] == "alias" && i+3 < len(toks) && toks[i+2] == "=":
			aliases[toks[i+1]] = toks[i+3]
			i += 3
		case isKeyName(toks[i]) && toks[i+1] == "=":
			if n, err := strconv.ParseUint(toks[i+2], 10, 32); err == nil {
				codes[toks[i]] = uint32(n)
			}
			i += 2
		}
	}
}

// parseSymbols collects the first group's keysym list of every
// "key <NAME> { ... [ sym, sym ] ... };" statement.
func parseSymbols(toks []string, out map[string][]uint32) {
	for i := 0; i < len(toks); i++ {
		if toks[i] != "key" || i+2 >= len(toks) || !isKeyName(toks[i+1]) || toks[i+2] != "{" {
			continue
		}
		name := toks[i+1]
		depth := 1
		// Within the key block, the symbol list is the first bracket
		// group not owned by actions and not used as an index (an index
		// bracket is immediately followed by "=", as in symbols[Group1]=).
		owner := "symbols"
		var syms []uint32
		j := i + 3
		for ; j < len(toks) && depth > 0; j++ {
			switch tok := toks[j]; tok {
			case "{":
				depth++
			case "}":
				depth--
			case "actions", "type", "repeat", "vmods", "virtualMods":
				owner = tok
			case "symbols":
				owner = "symbols"
			case "[":
				items, end := bracketList(toks, j)
				if end+1 < len(toks) && toks[end+1] == "=" {
					j = end // index bracket, list follows after "="
					continue
				}
				if owner == "symbols" && syms == nil {
					syms = make([]uint32, 0, len(items))
					for _, it := range items {
						syms = append(syms, keysymFromName(it))
					}
				}
				// A bare list after this one belongs to symbols again,
				// as in "actions[Group1]= [...], [ Shift_L ]".
				owner = "symbols"
				j = end
			}
		}
		if len(syms) > 0 {
			out[name] = syms
		}
		i = j - 1
	}
}

// bracketList returns the comma-separated tokens inside the bracket at
// position i and the index of the closing bracket.
func bracketList(toks []string, i int) (items []string, end int) {
	for j := i + 1; j < len(toks); j++ {
		switch toks[j] {
		case "]":
			return items, j
		case ",":
		default:
			items = append(items, toks[j])
		}
	}
	return items, len(toks) - 1
}

func isKeyName(tok string) bool {
	return len(tok) > 2 && tok[0] == '<' && tok[len(tok)-1] == '>'
}

// tokenize splits a keymap text into identifiers, <KEY> names, numbers,
// and single-character punctuation. Comments and quoted strings carry no
// information we need and are dropped.
func tokenize(src []byte) []string {
	var toks []string
	for i := 0; i < len(src); {
		ch := src[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case ch == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case ch == '"':
			i++
			for i < len(src) && src[i] != '"' {
				i++
			}
			i++
		case ch == '<':
			j := i + 1
			for j < len(src) && src[j] != '>' && src[j] != '\n' {
				j++
			}
			if j < len(src) && src[j] == '>' {
				toks = append(toks, string(src[i:j+1]))
				i = j + 1
			} else {
				i++
			}
		case isWordByte(ch):
			j := i + 1
			for j < len(src) && isWordByte(src[j]) {
				j++
			}
			toks = append(toks, string(src[i:j]))
			i = j
		default:
			toks = append(toks, string(ch))
			i++
		}
	}
	return toks
}

func isWordByte(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' ||
		ch >= '0' && ch <= '9' || ch == '_' || ch == '+' || ch == '-' || ch == '.'
}
