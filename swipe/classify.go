package swipe

import "strings"

// Key is a single key-press symbol as a keyboard reports it: either one
// printable character ("%", "B", "1") or a key name ("Shift", "Enter").
type Key string

// Named keys the capture engine cares about.
const (
	KeyEnter    Key = "Enter"
	KeyShift    Key = "Shift"
	KeyControl  Key = "Control"
	KeyAlt      Key = "Alt"
	KeyMeta     Key = "Meta"
	KeyCapsLock Key = "CapsLock"
	KeyTab      Key = "Tab"
)

// cardDelimiters are the magstripe track framing characters:
// '%' track 1 start, ';' track 2 start, '?' end sentinel.
const cardDelimiters = "%?;"

// LooksLikeCard reports whether payload carries magstripe track framing.
func LooksLikeCard(payload string) bool {
	return strings.ContainsAny(payload, cardDelimiters)
}

// IsModifier reports whether k is a modifier key that never reaches the buffer.
func IsModifier(k Key) bool {
	switch k {
	case KeyShift, KeyControl, KeyAlt, KeyMeta, KeyCapsLock, KeyTab:
		return true
	}
	return false
}
