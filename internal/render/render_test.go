package render

import (
	"strings"
	"testing"
)

func TestRedrawPaintsPromptAndText(t *testing.T) {
	var buf strings.Builder
	term := NewTerminal(&buf, 80)

	term.Redraw(State{Prompt: "> ", Text: "hello", Cursor: 5})

	out := buf.String()
	if !strings.Contains(out, "> hello") {
		t.Errorf("output %q missing prompt+text", out)
	}
	if !strings.Contains(out, "\x1b[J") {
		t.Errorf("output %q does not clear below the anchor", out)
	}
}

func TestRedrawStylesSelectionAndEmphasis(t *testing.T) {
	var buf strings.Builder
	term := NewTerminal(&buf, 80)

	term.Redraw(State{
		Prompt: "> ", Text: "abcd", Cursor: 4,
		SelStart: 1, SelLen: 2,
		EmphasisStart: 0, EmphasisLen: 1,
	})

	out := buf.String()
	if !strings.Contains(out, seqInverse+"b"+seqReset) {
		t.Errorf("selection not inverted: %q", out)
	}
	if !strings.Contains(out, seqUnderline+"a"+seqReset) {
		t.Errorf("emphasis not underlined: %q", out)
	}
}

func TestRedrawWalksBackOverWrappedRows(t *testing.T) {
	var buf strings.Builder
	term := NewTerminal(&buf, 10)

	// 2 prompt cols + 18 text cols = 20 cols = rows 0..2 at width 10.
	st := State{Prompt: "> ", Text: strings.Repeat("x", 18), Cursor: 18}
	term.Redraw(st)

	buf.Reset()
	term.Redraw(st)
	if !strings.Contains(buf.String(), "\x1b[2A") {
		t.Errorf("second redraw should move up two rows: %q", buf.String())
	}
}

func TestStatusRow(t *testing.T) {
	var buf strings.Builder
	term := NewTerminal(&buf, 80)

	term.SetStatus("digit-argument: 4")
	term.Redraw(State{Prompt: "> "})
	if !strings.Contains(buf.String(), "digit-argument: 4") {
		t.Errorf("status missing: %q", buf.String())
	}

	buf.Reset()
	term.ClearStatus()
	term.Redraw(State{Prompt: "> "})
	if strings.Contains(buf.String(), "digit-argument") {
		t.Errorf("status survived clear: %q", buf.String())
	}
}

func TestCursorColumn(t *testing.T) {
	var buf strings.Builder
	term := NewTerminal(&buf, 80)

	term.Redraw(State{Prompt: "> ", Text: "abc", Cursor: 1})
	// Prompt is 2 cols, cursor after 1 rune lands at column 3.
	if !strings.HasSuffix(buf.String(), "\r\x1b[3C") {
		t.Errorf("cursor not parked at column 3: %q", buf.String())
	}
}

func TestDingRingsBell(t *testing.T) {
	var buf strings.Builder
	term := NewTerminal(&buf, 80)
	term.Ding()
	if buf.String() != "\a" {
		t.Errorf("got %q", buf.String())
	}
}

func TestClearWipesScreen(t *testing.T) {
	var buf strings.Builder
	term := NewTerminal(&buf, 80)
	term.Clear(State{Prompt: "> ", Text: "x", Cursor: 1})
	if !strings.Contains(buf.String(), seqClearScreen) {
		t.Errorf("got %q", buf.String())
	}
}

func TestFinishAdvancesAnchor(t *testing.T) {
	var buf strings.Builder
	term := NewTerminal(&buf, 80)

	st := State{Prompt: "> ", Text: "done", Cursor: 4}
	term.Redraw(st)
	term.Finish(st)

	if !strings.HasSuffix(buf.String(), "\r\n") {
		t.Errorf("Finish should end the line: %q", buf.String())
	}
	if term.CursorRow() != 1 {
		t.Errorf("anchor row = %d", term.CursorRow())
	}
}

func TestAdvanceRowMovesAnchor(t *testing.T) {
	term := NewTerminal(&strings.Builder{}, 80)
	term.AdvanceRow(3)
	if term.CursorRow() != 3 {
		t.Errorf("anchor row = %d", term.CursorRow())
	}
}

func TestDefaultWidth(t *testing.T) {
	var buf strings.Builder
	term := NewTerminal(&buf, 0)
	if term.width != 80 {
		t.Errorf("width = %d", term.width)
	}
}

func TestRecordingCapturesCalls(t *testing.T) {
	r := NewRecording()

	r.Redraw(State{Text: "a"})
	r.Redraw(State{Text: "ab"})
	r.SetStatus("msg")
	r.Ding()
	r.Finish(State{Text: "ab"})

	if r.Last().Text != "ab" {
		t.Errorf("Last = %+v", r.Last())
	}
	if len(r.States) != 3 || r.Dings != 1 || r.Finishes != 1 {
		t.Errorf("recording = %+v", r)
	}
	if r.Statuses[0] != "msg" {
		t.Errorf("statuses = %q", r.Statuses)
	}
}
