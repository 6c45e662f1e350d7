package reader

import "smartkiosk/swipe"

// Linux input key codes used by keyboard-wedge card readers.
const (
	codeEsc        = 1
	codeMinus      = 12
	codeEqual      = 13
	codeBackspace  = 14
	codeTab        = 15
	codeEnter      = 28
	codeLeftCtrl   = 29
	codeLeftShift  = 42
	codeRightShift = 54
	codeLeftAlt    = 56
	codeSpace      = 57
	codeCapsLock   = 58
	codeKPEnter    = 96
	codeRightCtrl  = 97
	codeRightAlt   = 100
	codeLeftMeta   = 125
	codeRightMeta  = 126
)

type keyPair struct {
	plain, shifted rune
}

// US layout, the only one magstripe wedges emit in practice.
var printable = map[uint16]keyPair{
	2: {'1', '!'}, 3: {'2', '@'}, 4: {'3', '#'}, 5: {'4', '$'}, 6: {'5', '%'},
	7: {'6', '^'}, 8: {'7', '&'}, 9: {'8', '*'}, 10: {'9', '('}, 11: {'0', ')'},
	codeMinus: {'-', '_'}, codeEqual: {'=', '+'},
	16: {'q', 'Q'}, 17: {'w', 'W'}, 18: {'e', 'E'}, 19: {'r', 'R'}, 20: {'t', 'T'},
	21: {'y', 'Y'}, 22: {'u', 'U'}, 23: {'i', 'I'}, 24: {'o', 'O'}, 25: {'p', 'P'},
	26: {'[', '{'}, 27: {']', '}'},
	30: {'a', 'A'}, 31: {'s', 'S'}, 32: {'d', 'D'}, 33: {'f', 'F'}, 34: {'g', 'G'},
	35: {'h', 'H'}, 36: {'j', 'J'}, 37: {'k', 'K'}, 38: {'l', 'L'},
	39: {';', ':'}, 40: {'\'', '"'}, 41: {'`', '~'}, 43: {'\\', '|'},
	44: {'z', 'Z'}, 45: {'x', 'X'}, 46: {'c', 'C'}, 47: {'v', 'V'}, 48: {'b', 'B'},
	49: {'n', 'N'}, 50: {'m', 'M'},
	51: {',', '<'}, 52: {'.', '>'}, 53: {'/', '?'},
	codeSpace: {' ', ' '},
}

var named = map[uint16]swipe.Key{
	codeEnter:      swipe.KeyEnter,
	codeKPEnter:    swipe.KeyEnter,
	codeTab:        swipe.KeyTab,
	codeLeftShift:  swipe.KeyShift,
	codeRightShift: swipe.KeyShift,
	codeLeftCtrl:   swipe.KeyControl,
	codeRightCtrl:  swipe.KeyControl,
	codeLeftAlt:    swipe.KeyAlt,
	codeRightAlt:   swipe.KeyAlt,
	codeLeftMeta:   swipe.KeyMeta,
	codeRightMeta:  swipe.KeyMeta,
	codeCapsLock:   swipe.KeyCapsLock,
}

// Keymap turns raw key codes into key symbols, tracking shift and caps
// lock. It is not safe for concurrent use.
type Keymap struct {
	shift int
	caps  bool
}

// Press translates a key-down. ok is false for codes with no symbol
// (Escape, Backspace, function keys); those are dropped.
func (m *Keymap) Press(code uint16) (k swipe.Key, ok bool) {
	switch code {
	case codeLeftShift, codeRightShift:
		m.shift++
	case codeCapsLock:
		m.caps = !m.caps
	}
	if k, ok := named[code]; ok {
		return k, true
	}

	p, ok := printable[code]
	if !ok {
		return "", false
	}
	upper := m.shift > 0
	if m.caps && p.plain >= 'a' && p.plain <= 'z' {
		upper = !upper
	}
	if upper {
		return swipe.Key(p.shifted), true
	}
	return swipe.Key(p.plain), true
}

// Release records a key-up. Only shift state depends on it.
func (m *Keymap) Release(code uint16) {
	if (code == codeLeftShift || code == codeRightShift) && m.shift > 0 {
		m.shift--
	}
}

// RuneKeys maps bytes from a serial reader onto key symbols. CR and LF
// become Enter; other control bytes are dropped.
func RuneKeys(b []byte) []swipe.Key {
	keys := make([]swipe.Key, 0, len(b))
	for _, c := range b {
		switch {
		case c == '\r' || c == '\n':
			keys = append(keys, swipe.KeyEnter)
		case c == '\t':
			keys = append(keys, swipe.KeyTab)
		case c < 0x20 || c >= 0x7f:
		default:
			keys = append(keys, swipe.Key(string(rune(c))))
		}
	}
	return keys
}
