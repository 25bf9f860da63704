// Package render draws the edit line. The dispatch loop and editor
// talk to the Renderer interface; the default implementation writes
// ANSI sequences to the controlling terminal.
package render

// State is a snapshot of everything the renderer needs to draw the
// edit line.
type State struct {
	// Prompt is the text preceding the edit line.
	Prompt string
	// Text is the current buffer contents.
	Text string
	// Cursor is the rune offset of the cursor within Text.
	Cursor int

	// SelStart/SelLen mark the active selection in rune offsets.
	// SelLen == 0 means no selection.
	SelStart int
	SelLen   int

	// EmphasisStart/EmphasisLen mark the highlighted span used by
	// history search. EmphasisLen == 0 means no emphasis.
	EmphasisStart int
	EmphasisLen   int
}

// Renderer draws edit-line state to the display.
type Renderer interface {
	// Redraw repaints the whole line from the anchor position.
	Redraw(st State)
	// SetStatus shows transient text below the edit line.
	SetStatus(msg string)
	// ClearStatus removes the status text.
	ClearStatus()
	// Ding signals an invalid operation.
	Ding()
	// Clear clears the screen and repaints at the top.
	Clear(st State)
	// CursorRow returns the screen row the edit line is anchored on.
	CursorRow() int
	// ResyncAnchor re-establishes the anchor at the current cursor
	// position after external output moved it.
	ResyncAnchor()
	// Finish moves the cursor past the line and starts a new row,
	// called once when a line is accepted or abandoned.
	Finish(st State)
}
