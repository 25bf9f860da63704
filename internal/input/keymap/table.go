// Package keymap holds the dispatch tables mapping key events to
// bound actions. Tables are keyed by key.Event values directly, so
// lookup is structural equality over {key, rune, modifiers}.
package keymap

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/keyline/internal/input/key"
)

// Table maps key events to bindings for one mode or chord prefix.
type Table struct {
	mu sync.RWMutex

	// Name is the table identifier ("emacs", "vi-insert", "vi-command").
	Name string

	bindings map[key.Event]Binding

	// chords holds secondary tables keyed by the chord's first key.
	chords map[key.Event]*Table
}

// NewTable creates an empty table with the given name.
func NewTable(name string) *Table {
	return &Table{
		Name:     name,
		bindings: make(map[key.Event]Binding),
		chords:   make(map[key.Event]*Table),
	}
}

// Bind maps an event to a binding, replacing any previous mapping.
func (t *Table) Bind(ev key.Event, b Binding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bindings[ev] = b
}

// BindSpec parses a key spec and binds it to an action.
// Panics on invalid specs; use only in initialization code.
func (t *Table) BindSpec(spec, action, description string) *Table {
	t.Bind(key.MustParse(spec), NewBinding(action, description))
	return t
}

// Unbind removes the mapping for an event.
func (t *Table) Unbind(ev key.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.bindings, ev)
}

// Lookup finds the binding for an event.
func (t *Table) Lookup(ev key.Event) (Binding, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.bindings[ev]
	return b, ok
}

// BindChord installs a secondary table for a chord's first key.
// The first key must also be bound to the "chord" action so the
// dispatcher knows to fetch a second key.
func (t *Table) BindChord(first key.Event, sub *Table) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chords[first] = sub
	t.bindings[first] = NewBinding(ActionChord, "chord prefix "+first.String())
}

// Chord returns the secondary table for a chord's first key.
func (t *Table) Chord(first key.Event) (*Table, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sub, ok := t.chords[first]
	return sub, ok
}

// Len returns the number of direct bindings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.bindings)
}

// Describe returns "key: description" lines sorted by key, for
// diagnostics and a show-bindings command.
func (t *Table) Describe() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lines := make([]string, 0, len(t.bindings))
	for ev, b := range t.bindings {
		desc := b.Description
		if desc == "" {
			desc = b.Action
		}
		lines = append(lines, fmt.Sprintf("%s: %s", ev.String(), desc))
	}
	sort.Strings(lines)
	return lines
}

// Clone creates a deep copy of the table, sharing chord sub-tables.
func (t *Table) Clone() *Table {
	t.mu.RLock()
	defer t.mu.RUnlock()

	clone := NewTable(t.Name)
	for ev, b := range t.bindings {
		clone.bindings[ev] = b
	}
	for ev, sub := range t.chords {
		clone.chords[ev] = sub
	}
	return clone
}
