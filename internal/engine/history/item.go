// Package history records inverse operations for every buffer
// mutation and replays them for undo and redo.
//
// The log is a flat sequence of tagged edit records with explicit
// group-boundary markers. An index points one past the last applied
// record; undo walks it backward one group at a time and a fresh edit
// after an undo discards the redo tail.
package history

import "fmt"

// Kind tags an edit record.
type Kind uint8

const (
	// KindInsertChar records insertion of a single character.
	KindInsertChar Kind = iota
	// KindInsertString records insertion of a string.
	KindInsertString
	// KindDeleteRange records deletion of a range, holding the
	// removed text so it can be restored.
	KindDeleteRange
	// KindGroupStart marks the start of an edit group.
	KindGroupStart
	// KindGroupEnd marks the end of an edit group.
	KindGroupEnd
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInsertChar:
		return "insert-char"
	case KindInsertString:
		return "insert-string"
	case KindDeleteRange:
		return "delete-range"
	case KindGroupStart:
		return "group-start"
	case KindGroupEnd:
		return "group-end"
	default:
		return "unknown"
	}
}

// Item is one record in the edit log. Every edit item stores enough
// to invert itself: position plus the inserted or removed text.
type Item struct {
	Kind Kind

	// Pos is the rune offset of the edit.
	Pos int

	// Text is the inserted text (insert kinds) or the removed text
	// (delete kind).
	Text string

	// CursorBefore is the cursor position before this item applied.
	// On group markers it is the cursor before the whole group.
	CursorBefore int

	// Instigator names the command that produced a group, for
	// repeat/undo granularity. Set on group markers only.
	Instigator string
}

// IsMarker returns true for group boundary records.
func (it Item) IsMarker() bool {
	return it.Kind == KindGroupStart || it.Kind == KindGroupEnd
}

// String returns a compact description for diagnostics.
func (it Item) String() string {
	switch it.Kind {
	case KindInsertChar, KindInsertString:
		return fmt.Sprintf("Insert(%d, %q)", it.Pos, it.Text)
	case KindDeleteRange:
		return fmt.Sprintf("Delete(%d, %q)", it.Pos, it.Text)
	case KindGroupStart:
		return fmt.Sprintf("GroupStart(%s)", it.Instigator)
	case KindGroupEnd:
		return fmt.Sprintf("GroupEnd(%s)", it.Instigator)
	default:
		return "Unknown"
	}
}
