// Package buffer implements the editable line buffer.
//
// The buffer stores the line as runes so all offsets are character
// offsets. Mutation happens through low-level splices used by the
// history package; handlers never splice directly.
package buffer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidRange is returned for out-of-bounds positions or lengths.
var ErrInvalidRange = errors.New("invalid range")

// Buffer is an editable line of text with a cursor.
type Buffer struct {
	text   []rune
	cursor int

	// parse is the cached parse result, nil until requested and
	// invalidated by any mutation.
	parse *Parse
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// NewFromString creates a buffer holding text with the cursor at the end.
func NewFromString(text string) *Buffer {
	runes := []rune(text)
	return &Buffer{text: runes, cursor: len(runes)}
}

// Len returns the buffer length in runes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// String returns the buffer contents.
func (b *Buffer) String() string {
	return string(b.text)
}

// Runes returns the underlying runes. The slice must not be mutated.
func (b *Buffer) Runes() []rune {
	return b.text
}

// Cursor returns the cursor offset.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// SetCursor moves the cursor, clamping to [0, Len()+slack].
// Negative slack holds the cursor short of the end, as vi command
// mode requires.
func (b *Buffer) SetCursor(pos, slack int) {
	maxPos := len(b.text) + slack
	if maxPos < 0 {
		maxPos = 0
	}
	if pos > maxPos {
		pos = maxPos
	}
	if pos < 0 {
		pos = 0
	}
	b.cursor = pos
}

// Rune returns the rune at pos, or 0 if out of range.
func (b *Buffer) Rune(pos int) rune {
	if pos < 0 || pos >= len(b.text) {
		return 0
	}
	return b.text[pos]
}

// Substring returns the text in [start, start+length).
// The range must be valid.
func (b *Buffer) Substring(start, length int) string {
	return string(b.text[start : start+length])
}

// ValidateRange checks that start and length describe a range inside
// the buffer.
func (b *Buffer) ValidateRange(start, length int) error {
	if start < 0 || start > len(b.text) {
		return fmt.Errorf("%w: start %d not in [0, %d]", ErrInvalidRange, start, len(b.text))
	}
	if length < 0 || length > len(b.text)-start {
		return fmt.Errorf("%w: length %d not in [0, %d]", ErrInvalidRange, length, len(b.text)-start)
	}
	return nil
}

// SpliceInsert inserts text at pos and moves the cursor past it.
// Used by the history package; callers go through history.Log.
func (b *Buffer) SpliceInsert(pos int, text string) {
	runes := []rune(text)
	b.text = append(b.text[:pos], append(runes, b.text[pos:]...)...)
	b.cursor = pos + len(runes)
	b.parse = nil
}

// SpliceDelete removes length runes at start, returns the removed
// text and leaves the cursor at start.
func (b *Buffer) SpliceDelete(start, length int) string {
	removed := string(b.text[start : start+length])
	b.text = append(b.text[:start], b.text[start+length:]...)
	b.cursor = start
	b.parse = nil
	return removed
}

// Clear empties the buffer and resets the cursor.
func (b *Buffer) Clear() {
	b.text = b.text[:0]
	b.cursor = 0
	b.parse = nil
}

// WordBoundaryLeft returns the offset of the start of the word at or
// before pos.
func (b *Buffer) WordBoundaryLeft(pos int) int {
	if pos > len(b.text) {
		pos = len(b.text)
	}
	for pos > 0 && unicode.IsSpace(b.text[pos-1]) {
		pos--
	}
	for pos > 0 && !unicode.IsSpace(b.text[pos-1]) {
		pos--
	}
	return pos
}

// WordBoundaryRight returns the offset just past the end of the word
// at or after pos.
func (b *Buffer) WordBoundaryRight(pos int) int {
	n := len(b.text)
	if pos < 0 {
		pos = 0
	}
	for pos < n && unicode.IsSpace(b.text[pos]) {
		pos++
	}
	for pos < n && !unicode.IsSpace(b.text[pos]) {
		pos++
	}
	return pos
}

// LastArg returns the final whitespace-separated word, or "" for an
// empty buffer.
func (b *Buffer) LastArg() string {
	s := strings.TrimRight(string(b.text), " \t")
	if s == "" {
		return ""
	}
	if i := strings.LastIndexAny(s, " \t"); i >= 0 {
		return s[i+1:]
	}
	return s
}
