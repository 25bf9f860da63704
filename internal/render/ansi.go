package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rivo/uniseg"
)

// ANSI escape fragments used by the terminal renderer.
const (
	seqClearLine   = "\x1b[K"
	seqClearScreen = "\x1b[2J\x1b[H"
	seqInverse     = "\x1b[7m"
	seqUnderline   = "\x1b[4m"
	seqReset       = "\x1b[0m"
	seqBell        = "\a"
)

// Terminal renders the edit line with ANSI sequences. It assumes the
// cursor sits on the anchor row when Redraw is called, which holds as
// long as nothing else writes to the terminal between draws; hosts
// that emit output during the idle callback advance the anchor via
// AdvanceRow.
type Terminal struct {
	mu sync.Mutex

	w     io.Writer
	width int

	// anchorRow tracks the screen row the prompt starts on, relative
	// to where the session began.
	anchorRow int

	// rowsDrawn is how many wrapped rows the last Redraw produced,
	// needed to walk back to the anchor before repainting.
	rowsDrawn int

	status    string
	hasStatus bool
}

// NewTerminal creates a renderer writing to w, wrapping at width
// columns (width <= 0 defaults to 80).
func NewTerminal(w io.Writer, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{w: w, width: width}
}

// SetWidth updates the wrap width, e.g. after SIGWINCH.
func (t *Terminal) SetWidth(width int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if width > 0 {
		t.width = width
	}
}

// Redraw repaints the prompt and edit line from the anchor.
func (t *Terminal) Redraw(st State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.redrawLocked(st)
}

func (t *Terminal) redrawLocked(st State) {
	var sb strings.Builder

	// Return to the anchor row, clearing everything below it.
	sb.WriteString("\r")
	if t.rowsDrawn > 0 {
		fmt.Fprintf(&sb, "\x1b[%dA", t.rowsDrawn)
	}
	sb.WriteString("\x1b[J")

	sb.WriteString(st.Prompt)
	writeStyled(&sb, st)

	if t.hasStatus {
		sb.WriteString("\n" + seqClearLine + t.status)
	}

	// Park the cursor at its buffer position.
	total := t.rowCount(st, len([]rune(st.Text)))
	curRow := t.rowCount(st, st.Cursor)
	curCol := t.column(st, st.Cursor)

	endRow := total
	if t.hasStatus {
		endRow++
	}
	if up := endRow - curRow; up > 0 {
		fmt.Fprintf(&sb, "\x1b[%dA", up)
	}
	fmt.Fprintf(&sb, "\r\x1b[%dC", curCol)

	io.WriteString(t.w, sb.String())
	t.rowsDrawn = curRow
}

// writeStyled emits the buffer text with selection and emphasis spans.
func writeStyled(sb *strings.Builder, st State) {
	runes := []rune(st.Text)
	for i, r := range runes {
		open := ""
		if st.SelLen > 0 && i >= st.SelStart && i < st.SelStart+st.SelLen {
			open += seqInverse
		}
		if st.EmphasisLen > 0 && i >= st.EmphasisStart && i < st.EmphasisStart+st.EmphasisLen {
			open += seqUnderline
		}
		if open != "" {
			sb.WriteString(open)
		}
		sb.WriteRune(r)
		if open != "" {
			sb.WriteString(seqReset)
		}
	}
}

// rowCount returns the wrapped row index of the given rune offset.
func (t *Terminal) rowCount(st State, offset int) int {
	w := uniseg.StringWidth(st.Prompt) + uniseg.StringWidth(string([]rune(st.Text)[:offset]))
	return w / t.width
}

// column returns the screen column of the given rune offset.
func (t *Terminal) column(st State, offset int) int {
	w := uniseg.StringWidth(st.Prompt) + uniseg.StringWidth(string([]rune(st.Text)[:offset]))
	return w % t.width
}

// SetStatus shows msg on the row below the edit line.
func (t *Terminal) SetStatus(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = msg
	t.hasStatus = true
}

// ClearStatus removes the status row on the next redraw.
func (t *Terminal) ClearStatus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = ""
	t.hasStatus = false
}

// Ding rings the terminal bell.
func (t *Terminal) Ding() {
	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.w, seqBell)
}

// Clear wipes the screen and repaints the line at the top.
func (t *Terminal) Clear(st State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.w, seqClearScreen)
	t.anchorRow = 0
	t.rowsDrawn = 0
	t.redrawLocked(st)
}

// CursorRow returns the anchor row of the edit line.
func (t *Terminal) CursorRow() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.anchorRow
}

// AdvanceRow records that external output consumed n rows, moving the
// anchor down. Hosts call this from the idle callback when they print.
func (t *Terminal) AdvanceRow(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.anchorRow += n
}

// ResyncAnchor accepts the current cursor position as the new anchor.
func (t *Terminal) ResyncAnchor() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rowsDrawn = 0
}

// Finish moves past the drawn line and starts a fresh row.
func (t *Terminal) Finish(st State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := t.rowCount(st, len([]rune(st.Text)))
	if down := total - t.rowsDrawn; down > 0 {
		fmt.Fprintf(t.w, "\x1b[%dB", down)
	}
	if t.hasStatus {
		io.WriteString(t.w, "\n\r"+seqClearLine)
		t.hasStatus = false
		t.status = ""
	}
	io.WriteString(t.w, "\r\n")
	t.anchorRow += total + 1
	t.rowsDrawn = 0
}
