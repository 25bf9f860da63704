package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Special keys: "Enter", "Escape", "Tab", "Backspace", "Space"
//   - With modifiers: "Ctrl+S", "Alt+F4", "Ctrl+Shift+P"
//   - Short style: "C-s", "A-f", "C-S-p"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	// Modifier+key format (Ctrl+S, Alt+F4)
	if strings.Contains(spec, "+") {
		return parseParts(strings.Split(spec, "+"))
	}

	// Short C-s style. A single "-" or a leading "-" is a literal dash.
	if strings.Contains(spec, "-") && len(spec) > 1 && spec[0] != '-' {
		return parseParts(strings.Split(spec, "-"))
	}

	return parseKeyWithModifiers(spec, ModNone)
}

// parseParts parses a split spec where all but the last element are
// modifier names.
func parseParts(parts []string) (Event, error) {
	if len(parts) < 2 {
		return Event{}, ErrInvalidSpec
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimSpace(p)
		mod := ModifierFromName(strings.ToLower(p))
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}

	return parseKeyWithModifiers(strings.TrimSpace(parts[len(parts)-1]), mods)
}

// parseKeyWithModifiers parses a key part with already-known modifiers.
func parseKeyWithModifiers(keyPart string, mods Modifier) (Event, error) {
	if keyPart == "" {
		return Event{}, ErrInvalidSpec
	}

	lower := strings.ToLower(keyPart)
	switch lower {
	case "space":
		return NewRune(' ', mods), nil
	case "minus":
		return NewRune('-', mods), nil
	case "plus":
		return NewRune('+', mods), nil
	}
	if k := KeyFromName(lower); k != KeyNone {
		return NewSpecial(k, mods), nil
	}

	runes := []rune(keyPart)
	if len(runes) == 1 {
		r := runes[0]
		// Ctrl combinations are canonically lowercase.
		if mods.HasCtrl() {
			r = unicode.ToLower(r)
		} else if unicode.IsUpper(r) {
			mods = mods.With(ModShift)
		}
		return NewRune(r, mods), nil
	}

	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}
