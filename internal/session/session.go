// Package session holds the mutable state of a single ReadLine call:
// the line buffer and its edit log, the editing mode, queued keys,
// per-command counters, and the navigation state of history search
// and tab completion. The session is confined to the foreground task;
// none of it is safe for concurrent use.
package session

import (
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/keyline/internal/engine/buffer"
	"github.com/dshills/keyline/internal/engine/history"
	"github.com/dshills/keyline/internal/engine/killring"
	"github.com/dshills/keyline/internal/input/key"
	"github.com/dshills/keyline/internal/input/mode"
	"github.com/dshills/keyline/internal/linehistory"
	"github.com/dshills/keyline/internal/render"
)

// NavState tracks history navigation within one read.
type NavState struct {
	// Index is the history position; Manager.Len() means the live
	// (not yet accepted) line.
	Index int
	// Saved holds the live line stashed when navigation began.
	Saved      string
	SavedValid bool
	// SearchPrefix is the prefix being matched by history search.
	SearchPrefix string
	// EmphasisLen is the highlighted prefix length shown during
	// history search, 0 when inactive.
	EmphasisLen int
}

// TabState tracks completion cycling within one read.
type TabState struct {
	Candidates []string
	Index      int
	// WordStart/WordLen locate the span the current candidate
	// occupies in the buffer.
	WordStart int
	WordLen   int
}

// YankState tracks the regions the yank commands may replace.
type YankState struct {
	// Start/Len locate the text inserted by the last yank.
	Start int
	Len   int
	// ArgBack counts how many history lines back yank-last-arg has
	// cycled; ArgStart/ArgLen locate its inserted text.
	ArgBack  int
	ArgStart int
	ArgLen   int
}

// Session is the per-read editor state.
type Session struct {
	buf *buffer.Buffer
	log *history.Log

	mode mode.Mode

	kill *killring.Ring
	hist *linehistory.Manager

	prompt string

	// normalize applies NFC to inserted text.
	normalize bool

	// queue holds keys to be consumed before asking the reader;
	// it survives across reads so type-ahead is not lost.
	queue []key.Event

	Counters Counters
	Nav      NavState
	Tab      TabState
	Yank     YankState

	// DesiredColumn is the sticky column for vertical movement in
	// vi command mode, -1 when unset.
	DesiredColumn int

	mark            int
	selectionActive bool

	accepted      bool
	exitRequested bool
}

// New creates a session bound to the shared history manager and kill
// ring. Reset must be called before the first read.
func New(hist *linehistory.Manager, kill *killring.Ring, m mode.Mode, normalize bool) *Session {
	s := &Session{
		kill:      kill,
		hist:      hist,
		mode:      m,
		normalize: normalize,
	}
	s.Reset("")
	return s
}

// Reset prepares the session for a new read: fresh buffer and edit
// log, counters and navigation state cleared. Queued keys are kept.
func (s *Session) Reset(prompt string) {
	s.buf = buffer.New()
	s.log = history.NewLog(s.buf)
	s.prompt = prompt

	s.Counters = Counters{}
	s.Nav = NavState{Index: s.hist.Len()}
	s.Tab = TabState{}
	s.Yank = YankState{}
	s.DesiredColumn = -1

	s.mark = 0
	s.selectionActive = false
	s.accepted = false
}

// Buffer returns the line buffer.
func (s *Session) Buffer() *buffer.Buffer { return s.buf }

// Log returns the edit log.
func (s *Session) Log() *history.Log { return s.log }

// KillRing returns the shared kill ring.
func (s *Session) KillRing() *killring.Ring { return s.kill }

// History returns the shared line history.
func (s *Session) History() *linehistory.Manager { return s.hist }

// Prompt returns the prompt issued for this read.
func (s *Session) Prompt() string { return s.prompt }

// Mode returns the current editing mode.
func (s *Session) Mode() mode.Mode { return s.mode }

// SetMode switches mode, re-clamping the cursor to the new mode's
// end-of-line slack.
func (s *Session) SetMode(m mode.Mode) {
	s.mode = m
	s.buf.SetCursor(s.buf.Cursor(), m.EndOfLineSlack())
}

// Text returns the buffer contents.
func (s *Session) Text() string { return s.buf.String() }

// Cursor returns the cursor offset.
func (s *Session) Cursor() int { return s.buf.Cursor() }

// SetCursor moves the cursor, honoring the mode's end-of-line slack.
func (s *Session) SetCursor(pos int) {
	s.buf.SetCursor(pos, s.mode.EndOfLineSlack())
}

// Insert inserts text at pos through the edit log. Text is NFC
// normalized when the session is configured for it.
func (s *Session) Insert(pos int, text string) error {
	if s.normalize {
		text = norm.NFC.String(text)
	}
	return s.log.Insert(pos, text)
}

// InsertAtCursor inserts text at the cursor.
func (s *Session) InsertAtCursor(text string) error {
	return s.Insert(s.buf.Cursor(), text)
}

// Delete removes length runes at start through the edit log.
func (s *Session) Delete(start, length int) error {
	return s.log.Delete(start, length)
}

// Replace replaces a range as a single undo step tagged with the
// instigating command.
func (s *Session) Replace(start, length int, replacement, instigator string) error {
	if s.normalize {
		replacement = norm.NFC.String(replacement)
	}
	return s.log.Replace(start, length, replacement, instigator)
}

// ReplaceAll swaps the whole buffer contents as one undo step.
func (s *Session) ReplaceAll(text, instigator string) error {
	return s.Replace(0, s.buf.Len(), text, instigator)
}

// Undo steps the edit log back one group.
func (s *Session) Undo() error { return s.log.Undo() }

// Redo replays the next edit group.
func (s *Session) Redo() error { return s.log.Redo() }

// SetMark places the mark at the cursor and activates the selection.
func (s *Session) SetMark() {
	s.mark = s.buf.Cursor()
	s.selectionActive = true
}

// ExchangeMark swaps the mark and the cursor.
func (s *Session) ExchangeMark() {
	if !s.selectionActive {
		return
	}
	cur := s.buf.Cursor()
	s.SetCursor(s.mark)
	s.mark = cur
}

// ClearSelection deactivates the selection.
func (s *Session) ClearSelection() {
	s.selectionActive = false
}

// Selection returns the active selection as start and rune length.
func (s *Session) Selection() (start, length int, ok bool) {
	if !s.selectionActive {
		return 0, 0, false
	}
	a, b := s.mark, s.buf.Cursor()
	if a > b {
		a, b = b, a
	}
	return a, b - a, true
}

// SelectionActive reports whether a selection is active.
func (s *Session) SelectionActive() bool { return s.selectionActive }

// PushKey queues a key behind any already queued keys.
func (s *Session) PushKey(ev key.Event) {
	s.queue = append(s.queue, ev)
}

// PushKeyFront queues a key ahead of any already queued keys, used
// when a consumed key must be handed back for redispatch.
func (s *Session) PushKeyFront(ev key.Event) {
	s.queue = append([]key.Event{ev}, s.queue...)
}

// PopKey removes and returns the oldest queued key.
func (s *Session) PopKey() (key.Event, bool) {
	if len(s.queue) == 0 {
		return key.Event{}, false
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, true
}

// QueuedKeys returns the number of queued keys.
func (s *Session) QueuedKeys() int { return len(s.queue) }

// MarkAccepted flags the line as accepted; the dispatch loop
// finalizes the read when it observes the flag.
func (s *Session) MarkAccepted() { s.accepted = true }

// Accepted reports whether the line has been accepted.
func (s *Session) Accepted() bool { return s.accepted }

// RequestExit flags that the host should terminate after this read.
func (s *Session) RequestExit() { s.exitRequested = true }

// ExitRequested reports whether exit was requested.
func (s *Session) ExitRequested() bool { return s.exitRequested }

// RenderState assembles the renderer snapshot for the current state.
func (s *Session) RenderState() render.State {
	st := render.State{
		Prompt: s.prompt,
		Text:   s.buf.String(),
		Cursor: s.buf.Cursor(),
	}
	if start, length, ok := s.Selection(); ok {
		st.SelStart, st.SelLen = start, length
	}
	if s.Nav.EmphasisLen > 0 {
		st.EmphasisLen = s.Nav.EmphasisLen
	}
	return st
}
