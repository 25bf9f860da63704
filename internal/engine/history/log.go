package history

import (
	"errors"
	"unicode/utf8"

	"github.com/dshills/keyline/internal/engine/buffer"
)

// Common errors for log operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Log is the transactional edit log for one buffer.
// It is not safe for concurrent use; only the foreground task
// mutates the buffer.
type Log struct {
	buf *buffer.Buffer

	items []Item

	// index points one past the last applied item.
	index int

	// groupDepth tracks open groups; nested opens are ignored.
	groupDepth int
}

// NewLog creates an edit log bound to a buffer.
func NewLog(buf *buffer.Buffer) *Log {
	return &Log{buf: buf}
}

// Buffer returns the bound buffer.
func (l *Log) Buffer() *buffer.Buffer {
	return l.buf
}

// Clear discards all recorded edits and closes any open group.
func (l *Log) Clear() {
	l.items = l.items[:0]
	l.index = 0
	l.groupDepth = 0
}

// record truncates the redo tail and appends an item.
func (l *Log) record(it Item) {
	l.items = append(l.items[:l.index], it)
	l.index = len(l.items)
}

// Insert logs and applies an insertion at pos.
// The cursor ends just past the inserted text.
func (l *Log) Insert(pos int, text string) error {
	if err := l.buf.ValidateRange(pos, 0); err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	kind := KindInsertString
	if utf8.RuneCountInString(text) == 1 {
		kind = KindInsertChar
	}
	l.record(Item{Kind: kind, Pos: pos, Text: text, CursorBefore: l.buf.Cursor()})
	l.buf.SpliceInsert(pos, text)
	return nil
}

// Delete logs and applies removal of length runes at start.
// The cursor ends at start.
func (l *Log) Delete(start, length int) error {
	if err := l.buf.ValidateRange(start, length); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}

	removed := l.buf.Substring(start, length)
	l.record(Item{Kind: KindDeleteRange, Pos: start, Text: removed, CursorBefore: l.buf.Cursor()})
	l.buf.SpliceDelete(start, length)
	return nil
}

// Replace atomically replaces a range with new text as one undo step.
// The instigating command tag is attached to the group. The cursor
// ends at start+len(replacement), or start when replacement is empty.
func (l *Log) Replace(start, length int, replacement, instigator string) error {
	if err := l.buf.ValidateRange(start, length); err != nil {
		return err
	}

	opened := false
	if l.groupDepth == 0 {
		l.BeginGroup(instigator)
		opened = true
	}

	if length > 0 {
		if err := l.Delete(start, length); err != nil {
			if opened {
				l.EndGroup()
			}
			return err
		}
	}
	if replacement != "" {
		if err := l.Insert(start, replacement); err != nil {
			if opened {
				l.EndGroup()
			}
			return err
		}
	}

	if opened {
		l.EndGroup()
	}

	end := start
	if replacement != "" {
		end = start + utf8.RuneCountInString(replacement)
	}
	l.buf.SetCursor(end, 0)
	return nil
}

// BeginGroup opens an edit group. Nested opens are ignored so a
// compound command stays one undo step.
func (l *Log) BeginGroup(instigator string) {
	l.groupDepth++
	if l.groupDepth > 1 {
		return
	}
	l.record(Item{Kind: KindGroupStart, CursorBefore: l.buf.Cursor(), Instigator: instigator})
}

// EndGroup closes the current edit group.
func (l *Log) EndGroup() {
	if l.groupDepth == 0 {
		return
	}
	l.groupDepth--
	if l.groupDepth > 0 {
		return
	}

	// Drop empty groups entirely.
	if l.index > 0 && l.items[l.index-1].Kind == KindGroupStart {
		l.items = l.items[:l.index-1]
		l.index = len(l.items)
		return
	}

	start := l.lastGroupStart()
	instigator := ""
	if start >= 0 {
		instigator = l.items[start].Instigator
	}
	l.record(Item{Kind: KindGroupEnd, CursorBefore: l.buf.Cursor(), Instigator: instigator})
}

// lastGroupStart finds the open group's start marker index.
func (l *Log) lastGroupStart() int {
	depth := 0
	for i := l.index - 1; i >= 0; i-- {
		switch l.items[i].Kind {
		case KindGroupEnd:
			depth++
		case KindGroupStart:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// CanUndo returns true if undo is available.
func (l *Log) CanUndo() bool {
	return l.index > 0
}

// CanRedo returns true if redo is available.
func (l *Log) CanRedo() bool {
	return l.index < len(l.items)
}

// Undo steps back one group (or one ungrouped item), replaying each
// item's inverse in reverse order and restoring the pre-edit cursor.
func (l *Log) Undo() error {
	if l.index == 0 {
		return ErrNothingToUndo
	}

	if l.items[l.index-1].Kind == KindGroupEnd {
		depth := 0
		i := l.index - 1
		for i >= 0 {
			it := l.items[i]
			if it.Kind == KindGroupEnd {
				depth++
			} else if it.Kind == KindGroupStart {
				depth--
				if depth == 0 {
					break
				}
			} else {
				l.invert(it)
			}
			i--
		}
		// Restore the cursor from before the group.
		if i >= 0 {
			l.buf.SetCursor(l.items[i].CursorBefore, 0)
			l.index = i
		} else {
			l.index = 0
		}
		return nil
	}

	it := l.items[l.index-1]
	l.invert(it)
	l.buf.SetCursor(it.CursorBefore, 0)
	l.index--
	return nil
}

// Redo replays the next group (or single item) forward.
func (l *Log) Redo() error {
	if l.index >= len(l.items) {
		return ErrNothingToRedo
	}

	if l.items[l.index].Kind == KindGroupStart {
		depth := 0
		i := l.index
		for i < len(l.items) {
			it := l.items[i]
			if it.Kind == KindGroupStart {
				depth++
			} else if it.Kind == KindGroupEnd {
				depth--
				if depth == 0 {
					break
				}
			} else {
				l.apply(it)
			}
			i++
		}
		l.index = i + 1
		if l.index > len(l.items) {
			l.index = len(l.items)
		}
		return nil
	}

	l.apply(l.items[l.index])
	l.index++
	return nil
}

// apply replays an item forward without re-logging.
func (l *Log) apply(it Item) {
	switch it.Kind {
	case KindInsertChar, KindInsertString:
		l.buf.SpliceInsert(it.Pos, it.Text)
	case KindDeleteRange:
		l.buf.SpliceDelete(it.Pos, utf8.RuneCountInString(it.Text))
	}
}

// invert replays an item's inverse without re-logging.
func (l *Log) invert(it Item) {
	switch it.Kind {
	case KindInsertChar, KindInsertString:
		l.buf.SpliceDelete(it.Pos, utf8.RuneCountInString(it.Text))
	case KindDeleteRange:
		l.buf.SpliceInsert(it.Pos, it.Text)
	}
}

// Len returns the number of records in the log.
func (l *Log) Len() int {
	return len(l.items)
}

// Index returns the undo index, one past the last applied record.
func (l *Log) Index() int {
	return l.index
}

// Items returns a copy of the log for diagnostics.
func (l *Log) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}
