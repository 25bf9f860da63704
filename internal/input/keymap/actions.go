package keymap

// Built-in action names. A Binding's Action field names one of these
// or a user-registered handler.
const (
	// ActionChord marks a chord prefix; the dispatcher fetches a
	// second key and resolves it against the prefix's sub-table.
	ActionChord = "chord"

	ActionSelfInsert = "edit.self-insert"

	// Line lifecycle
	ActionAcceptLine = "line.accept"
	ActionAbort      = "line.abort"
	ActionCancelLine = "line.cancel"
	ActionClearView  = "view.clear"

	// Cursor motion
	ActionBackwardChar = "cursor.left"
	ActionForwardChar  = "cursor.right"
	ActionBackwardWord = "cursor.word-left"
	ActionForwardWord  = "cursor.word-right"
	ActionHome         = "cursor.home"
	ActionEnd          = "cursor.end"

	// Editing
	ActionBackspace        = "edit.backspace"
	ActionDeleteChar       = "edit.delete"
	ActionDeleteCharOrExit = "edit.delete-or-exit"
	ActionUndo             = "edit.undo"
	ActionRedo             = "edit.redo"

	// Kill ring
	ActionKillToEnd        = "kill.to-end"
	ActionKillToStart      = "kill.to-start"
	ActionKillWord         = "kill.word"
	ActionBackwardKillWord = "kill.word-back"
	ActionKillRegion       = "kill.region"
	ActionYank             = "kill.yank"
	ActionYankPop          = "kill.yank-pop"
	ActionYankLastArg      = "kill.yank-last-arg"

	// Mark and selection
	ActionSetMark      = "mark.set"
	ActionExchangeMark = "mark.exchange"

	// History
	ActionHistoryPrev       = "history.prev"
	ActionHistoryNext       = "history.next"
	ActionHistoryFirst      = "history.first"
	ActionHistoryLast       = "history.last"
	ActionHistorySearchBack = "history.search-back"
	ActionHistorySearchFwd  = "history.search-forward"
	ActionHistoryRecall     = "history.recall"

	// Completion
	ActionCompleteNext = "complete.next"
	ActionCompletePrev = "complete.prev"

	// Numeric argument
	ActionDigitArgument = "arg.digit"

	// Mode switching
	ActionViCommandMode = "mode.vi-command"
	ActionViInsertMode  = "mode.vi-insert"
	ActionViAppend      = "mode.vi-append"
	ActionViInsertBOL   = "mode.vi-insert-bol"
	ActionViAppendEOL   = "mode.vi-append-eol"

	// Vi motions with dedicated transient state
	ActionViGotoLine  = "vi.goto-line"
	ActionViGotoFirst = "vi.goto-first"
	ActionViEndOfLine = "vi.end-of-line"
	ActionViVisual    = "vi.visual"
)
