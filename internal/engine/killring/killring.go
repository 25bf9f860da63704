// Package killring implements the bounded kill ring: a history of
// killed (cut) text spans, cyclable on yank.
package killring

import (
	"sync"

	"github.com/atotto/clipboard"
)

// DefaultCapacity bounds the ring when no capacity is given.
const DefaultCapacity = 10

// Ring is a bounded ring of killed text spans.
type Ring struct {
	mu sync.Mutex

	entries []string
	// index is the current yank position, cycled by YankPop.
	index int

	capacity int

	// mirrorClipboard mirrors the most recent kill into the system
	// clipboard when enabled.
	mirrorClipboard bool
}

// New creates a ring with the given capacity (<= 0 uses the default).
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{capacity: capacity}
}

// SetMirrorClipboard enables or disables mirroring kills into the
// system clipboard. Clipboard failures are ignored; the ring is the
// source of truth.
func (r *Ring) SetMirrorClipboard(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mirrorClipboard = on
}

// Kill adds text to the ring and makes it the current yank entry.
func (r *Ring) Kill(text string) {
	if text == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, text)
	if len(r.entries) > r.capacity {
		r.entries = r.entries[len(r.entries)-r.capacity:]
	}
	r.index = len(r.entries) - 1

	if r.mirrorClipboard {
		_ = clipboard.WriteAll(text)
	}
}

// Append extends the most recent kill in place, used when
// consecutive kill commands accumulate one span.
func (r *Ring) Append(text string) {
	if text == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		r.entries = append(r.entries, text)
		r.index = 0
	} else {
		r.entries[len(r.entries)-1] += text
		r.index = len(r.entries) - 1
	}

	if r.mirrorClipboard {
		_ = clipboard.WriteAll(r.entries[len(r.entries)-1])
	}
}

// Prepend extends the most recent kill at the front, used by
// backward kill commands.
func (r *Ring) Prepend(text string) {
	if text == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		r.entries = append(r.entries, text)
		r.index = 0
	} else {
		r.entries[len(r.entries)-1] = text + r.entries[len(r.entries)-1]
		r.index = len(r.entries) - 1
	}

	if r.mirrorClipboard {
		_ = clipboard.WriteAll(r.entries[len(r.entries)-1])
	}
}

// Yank returns the current entry, or "" if the ring is empty.
func (r *Ring) Yank() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		return ""
	}
	return r.entries[r.index]
}

// YankPop cycles to the previous entry and returns it.
// Returns "" if the ring is empty.
func (r *Ring) YankPop() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		return ""
	}
	r.index--
	if r.index < 0 {
		r.index = len(r.entries) - 1
	}
	return r.entries[r.index]
}

// Len returns the number of entries.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
