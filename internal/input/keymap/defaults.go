package keymap

import (
	"github.com/dshills/keyline/internal/input/key"
)

// Emacs builds the default emacs-style table.
func Emacs() *Table {
	t := NewTable("emacs")

	t.BindSpec("Enter", ActionAcceptLine, "accept the input line")
	t.BindSpec("C-g", ActionAbort, "abort the current operation")
	t.BindSpec("C-c", ActionCancelLine, "cancel the input line")
	t.BindSpec("C-l", ActionClearView, "clear the screen and redraw")

	t.BindSpec("C-a", ActionHome, "move to start of line")
	t.BindSpec("Home", ActionHome, "move to start of line")
	t.BindSpec("C-e", ActionEnd, "move to end of line")
	t.BindSpec("End", ActionEnd, "move to end of line")
	t.BindSpec("C-b", ActionBackwardChar, "move left one character")
	t.BindSpec("Left", ActionBackwardChar, "move left one character")
	t.BindSpec("C-f", ActionForwardChar, "move right one character")
	t.BindSpec("Right", ActionForwardChar, "move right one character")
	t.BindSpec("A-b", ActionBackwardWord, "move left one word")
	t.BindSpec("A-f", ActionForwardWord, "move right one word")

	t.BindSpec("Backspace", ActionBackspace, "delete character before cursor")
	t.BindSpec("Delete", ActionDeleteChar, "delete character under cursor")
	t.BindSpec("C-d", ActionDeleteCharOrExit, "delete character or signal exit")
	t.BindSpec("C-_", ActionUndo, "undo the last edit")

	t.BindSpec("C-k", ActionKillToEnd, "kill to end of line")
	t.BindSpec("C-u", ActionKillToStart, "kill to start of line")
	t.BindSpec("A-d", ActionKillWord, "kill next word")
	t.BindSpec("C-w", ActionBackwardKillWord, "kill previous word")
	t.BindSpec("C-y", ActionYank, "yank most recent kill")
	t.BindSpec("A-y", ActionYankPop, "cycle the kill ring after yank")
	t.Bind(key.Alt('.'), NewBinding(ActionYankLastArg, "yank last argument of previous line"))

	t.Bind(key.Ctrl('@'), NewBinding(ActionSetMark, "set the mark at cursor"))
	t.Bind(key.NewRune(' ', key.ModCtrl), NewBinding(ActionSetMark, "set the mark at cursor"))

	t.BindSpec("Up", ActionHistoryPrev, "previous history line")
	t.BindSpec("C-p", ActionHistoryPrev, "previous history line")
	t.BindSpec("Down", ActionHistoryNext, "next history line")
	t.BindSpec("C-n", ActionHistoryNext, "next history line")
	t.Bind(key.Alt('<'), NewBinding(ActionHistoryFirst, "first history line"))
	t.Bind(key.Alt('>'), NewBinding(ActionHistoryLast, "last history line"))
	t.BindSpec("F8", ActionHistorySearchBack, "search history backward by prefix")
	t.BindSpec("S-F8", ActionHistorySearchFwd, "search history forward by prefix")
	t.Bind(key.Alt('r'), NewBinding(ActionHistoryRecall, "recall history line by number"))

	t.BindSpec("Tab", ActionCompleteNext, "cycle completions forward")
	t.BindSpec("S-Tab", ActionCompletePrev, "cycle completions backward")

	// Alt+digits and Alt+minus start a numeric argument.
	for r := '0'; r <= '9'; r++ {
		t.Bind(key.Alt(r), NewBinding(ActionDigitArgument, "digit argument"))
	}
	t.Bind(key.Alt('-'), NewBinding(ActionDigitArgument, "digit argument"))

	// C-x chord prefix.
	cx := NewTable("emacs C-x")
	cx.BindSpec("C-u", ActionUndo, "undo the last edit")
	cx.BindSpec("C-x", ActionExchangeMark, "exchange cursor and mark")
	cx.BindSpec("C-k", ActionKillRegion, "kill the region between mark and cursor")
	t.BindChord(key.Ctrl('x'), cx)

	return t
}

// ViInsert builds the default vi insert-mode table.
func ViInsert() *Table {
	t := NewTable("vi-insert")

	t.BindSpec("Enter", ActionAcceptLine, "accept the input line")
	t.BindSpec("Escape", ActionViCommandMode, "switch to vi command mode")
	t.BindSpec("C-g", ActionAbort, "abort the current operation")
	t.BindSpec("C-c", ActionCancelLine, "cancel the input line")
	t.BindSpec("C-l", ActionClearView, "clear the screen and redraw")

	t.BindSpec("Home", ActionHome, "move to start of line")
	t.BindSpec("End", ActionEnd, "move to end of line")
	t.BindSpec("Left", ActionBackwardChar, "move left one character")
	t.BindSpec("Right", ActionForwardChar, "move right one character")

	t.BindSpec("Backspace", ActionBackspace, "delete character before cursor")
	t.BindSpec("Delete", ActionDeleteChar, "delete character under cursor")
	t.BindSpec("C-d", ActionDeleteCharOrExit, "delete character or signal exit")
	t.BindSpec("C-u", ActionKillToStart, "kill to start of line")
	t.BindSpec("C-w", ActionBackwardKillWord, "kill previous word")
	t.BindSpec("C-y", ActionYank, "yank most recent kill")

	t.BindSpec("Up", ActionHistoryPrev, "previous history line")
	t.BindSpec("Down", ActionHistoryNext, "next history line")

	t.BindSpec("Tab", ActionCompleteNext, "cycle completions forward")
	t.BindSpec("S-Tab", ActionCompletePrev, "cycle completions backward")

	return t
}

// ViCommand builds the default vi command-mode table.
// Only mode switching and simple motions are bound; unresolved keys
// are suppressed rather than self-inserted.
func ViCommand() *Table {
	t := NewTable("vi-command")

	t.BindSpec("Enter", ActionAcceptLine, "accept the input line")
	t.BindSpec("C-g", ActionAbort, "abort the current operation")
	t.BindSpec("C-c", ActionCancelLine, "cancel the input line")
	t.BindSpec("C-l", ActionClearView, "clear the screen and redraw")

	t.BindSpec("i", ActionViInsertMode, "insert before cursor")
	t.BindSpec("a", ActionViAppend, "insert after cursor")
	t.BindSpec("I", ActionViInsertBOL, "insert at start of line")
	t.BindSpec("A", ActionViAppendEOL, "insert at end of line")

	t.BindSpec("h", ActionBackwardChar, "move left one character")
	t.BindSpec("Left", ActionBackwardChar, "move left one character")
	t.BindSpec("l", ActionForwardChar, "move right one character")
	t.BindSpec("Right", ActionForwardChar, "move right one character")
	t.BindSpec("Space", ActionForwardChar, "move right one character")
	t.BindSpec("b", ActionBackwardWord, "move left one word")
	t.BindSpec("w", ActionForwardWord, "move right one word")
	t.BindSpec("0", ActionHome, "move to start of line")
	t.BindSpec("Home", ActionHome, "move to start of line")
	t.BindSpec("$", ActionViEndOfLine, "move to end of line")
	t.BindSpec("End", ActionViEndOfLine, "move to end of line")
	t.BindSpec("G", ActionViGotoLine, "go to history line")

	t.BindSpec("x", ActionDeleteChar, "delete character under cursor")
	t.BindSpec("X", ActionBackspace, "delete character before cursor")
	t.BindSpec("D", ActionKillToEnd, "kill to end of line")
	t.BindSpec("u", ActionUndo, "undo the last edit")
	t.BindSpec("C-r", ActionRedo, "redo the last undone edit")
	t.BindSpec("p", ActionYank, "put most recent kill")
	t.BindSpec("v", ActionViVisual, "toggle visual selection")

	t.BindSpec("k", ActionHistoryPrev, "previous history line")
	t.BindSpec("Up", ActionHistoryPrev, "previous history line")
	t.BindSpec("j", ActionHistoryNext, "next history line")
	t.BindSpec("Down", ActionHistoryNext, "next history line")

	// Counts: 1-9 start a numeric argument (0 is a motion).
	for r := '1'; r <= '9'; r++ {
		t.Bind(key.NewRune(r, key.ModNone), NewBinding(ActionDigitArgument, "digit argument"))
	}

	// g chord prefix: gg goes to the first history line.
	g := NewTable("vi-command g")
	g.BindSpec("g", ActionViGotoFirst, "go to first history line")
	t.BindChord(key.NewRune('g', key.ModNone), g)

	return t
}
