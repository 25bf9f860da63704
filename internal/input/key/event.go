package key

import (
	"fmt"
	"strings"
	"unicode"
)

// Event represents a single decoded key press.
//
// Event is a comparable value type: two events with the same key, rune
// and modifiers compare equal, which lets dispatch tables use Event
// directly as a map key.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// NewRune creates a key event for a character.
func NewRune(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// NewSpecial creates a key event for a special key.
func NewSpecial(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// Ctrl creates an event for Ctrl plus a character.
func Ctrl(r rune) Event {
	return NewRune(unicode.ToLower(r), ModCtrl)
}

// Alt creates an event for Alt plus a character.
func Alt(r rune) Event {
	return NewRune(r, ModAlt)
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if Ctrl or Alt is pressed.
// Shift alone does not count for character events, since Shift
// changes the character itself.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt) != 0
	}
	return e.Modifiers != ModNone
}

// IsControlChar returns true if the event's character is an ASCII
// control character (including DEL).
func (e Event) IsControlChar() bool {
	return e.Key == KeyRune && (e.Rune < 0x20 || e.Rune == 0x7f)
}

// WithoutShift returns the event with the Shift modifier stripped.
// Used as the normalized second-lookup form when the literal event
// has no binding.
func (e Event) WithoutShift() Event {
	e.Modifiers = e.Modifiers.Without(ModShift)
	return e
}

// IsEscape returns true if this is the Escape key with no modifiers.
func (e Event) IsEscape() bool {
	return e.Key == KeyEscape && e.Modifiers == ModNone
}

// IsEnter returns true if this is the Enter key with no modifiers.
func (e Event) IsEnter() bool {
	return e.Key == KeyEnter && e.Modifiers == ModNone
}

// String returns a canonical string representation.
// Examples: "a", "C-s", "A-f", "Enter", "C-S-Left"
func (e Event) String() string {
	var parts []string

	if e.Modifiers.HasCtrl() {
		parts = append(parts, "C")
	}
	if e.Modifiers.HasAlt() {
		parts = append(parts, "A")
	}
	// Only show Shift for non-character keys.
	if e.Modifiers.HasShift() && e.Key != KeyRune {
		parts = append(parts, "S")
	}

	var keyName string
	switch e.Key {
	case KeyRune:
		if e.Rune == ' ' {
			keyName = "Space"
		} else {
			keyName = string(e.Rune)
		}
	default:
		keyName = e.Key.String()
	}
	parts = append(parts, keyName)

	return strings.Join(parts, "-")
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Rune: %q, Modifiers: %s}",
		e.Key.String(), e.Rune, e.Modifiers.String())
}
