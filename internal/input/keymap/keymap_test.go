package keymap

import (
	"testing"

	"github.com/dshills/keyline/internal/input/key"
)

func TestBindAndLookup(t *testing.T) {
	tbl := NewTable("test")
	tbl.Bind(key.Ctrl('a'), NewBinding(ActionHome, "home"))

	b, ok := tbl.Lookup(key.Ctrl('a'))
	if !ok {
		t.Fatal("expected binding for C-a")
	}
	if b.Action != ActionHome {
		t.Errorf("action = %q, want %q", b.Action, ActionHome)
	}

	if _, ok := tbl.Lookup(key.Ctrl('b')); ok {
		t.Error("unexpected binding for C-b")
	}

	tbl.Unbind(key.Ctrl('a'))
	if _, ok := tbl.Lookup(key.Ctrl('a')); ok {
		t.Error("binding survived Unbind")
	}
}

func TestBindSpec(t *testing.T) {
	tbl := NewTable("test").
		BindSpec("C-k", ActionKillToEnd, "kill").
		BindSpec("Enter", ActionAcceptLine, "accept")

	if _, ok := tbl.Lookup(key.Ctrl('k')); !ok {
		t.Error("C-k not bound")
	}
	if _, ok := tbl.Lookup(key.NewSpecial(key.KeyEnter, key.ModNone)); !ok {
		t.Error("Enter not bound")
	}
}

func TestChord(t *testing.T) {
	tbl := NewTable("test")
	sub := NewTable("test C-x")
	sub.BindSpec("C-u", ActionUndo, "undo")
	tbl.BindChord(key.Ctrl('x'), sub)

	b, ok := tbl.Lookup(key.Ctrl('x'))
	if !ok || b.Action != ActionChord {
		t.Fatalf("chord prefix binding = %+v, %v", b, ok)
	}

	got, ok := tbl.Chord(key.Ctrl('x'))
	if !ok || got != sub {
		t.Fatal("chord sub-table not returned")
	}
	if _, ok := tbl.Chord(key.Ctrl('y')); ok {
		t.Error("unexpected chord table for C-y")
	}
}

func TestDefaultTables(t *testing.T) {
	tests := []struct {
		table  *Table
		ev     key.Event
		action string
	}{
		{Emacs(), key.NewSpecial(key.KeyEnter, key.ModNone), ActionAcceptLine},
		{Emacs(), key.Ctrl('k'), ActionKillToEnd},
		{Emacs(), key.Alt('y'), ActionYankPop},
		{Emacs(), key.Alt('.'), ActionYankLastArg},
		{Emacs(), key.NewSpecial(key.KeyF8, key.ModNone), ActionHistorySearchBack},
		{Emacs(), key.Alt('5'), ActionDigitArgument},
		{Emacs(), key.Alt('-'), ActionDigitArgument},
		{Emacs(), key.Ctrl('x'), ActionChord},
		{ViInsert(), key.NewSpecial(key.KeyEscape, key.ModNone), ActionViCommandMode},
		{ViCommand(), key.NewRune('h', key.ModNone), ActionBackwardChar},
		{ViCommand(), key.NewRune('$', key.ModNone), ActionViEndOfLine},
		{ViCommand(), key.NewRune('7', key.ModNone), ActionDigitArgument},
		{ViCommand(), key.NewRune('g', key.ModNone), ActionChord},
	}

	for _, tt := range tests {
		b, ok := tt.table.Lookup(tt.ev)
		if !ok {
			t.Errorf("%s: %s not bound", tt.table.Name, tt.ev)
			continue
		}
		if b.Action != tt.action {
			t.Errorf("%s: %s = %q, want %q", tt.table.Name, tt.ev, b.Action, tt.action)
		}
	}
}

func TestViCommandDigitZeroIsMotion(t *testing.T) {
	b, ok := ViCommand().Lookup(key.NewRune('0', key.ModNone))
	if !ok || b.Action != ActionHome {
		t.Fatalf("0 = %+v, want %q", b, ActionHome)
	}
}

func TestClone(t *testing.T) {
	tbl := Emacs()
	clone := tbl.Clone()

	clone.Bind(key.Ctrl('t'), NewBinding("custom", ""))
	if _, ok := tbl.Lookup(key.Ctrl('t')); ok {
		t.Error("binding on clone leaked into original")
	}
	if _, ok := clone.Lookup(key.Ctrl('k')); !ok {
		t.Error("clone lost original binding")
	}
}

func TestDescribe(t *testing.T) {
	tbl := NewTable("test")
	tbl.BindSpec("C-a", ActionHome, "move to start")
	tbl.BindSpec("C-e", ActionEnd, "move to end")

	lines := tbl.Describe()
	if len(lines) != 2 {
		t.Fatalf("Describe returned %d lines", len(lines))
	}
	if lines[0] != "C-a: move to start" {
		t.Errorf("lines[0] = %q", lines[0])
	}
}
