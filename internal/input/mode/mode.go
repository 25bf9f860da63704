// Package mode defines the editing modes of the line editor.
package mode

// Mode identifies the active editing mode.
type Mode uint8

const (
	// Emacs is the default emacs-style editing mode.
	Emacs Mode = iota

	// ViInsert is vi insert mode.
	ViInsert

	// ViCommand is vi command mode.
	ViCommand
)

// String returns the mode name, which doubles as its keymap table name.
func (m Mode) String() string {
	switch m {
	case Emacs:
		return "emacs"
	case ViInsert:
		return "vi-insert"
	case ViCommand:
		return "vi-command"
	default:
		return "unknown"
	}
}

// EndOfLineSlack adjusts the maximum cursor position relative to the
// buffer length. Vi command mode keeps the cursor on the last
// character rather than past it.
func (m Mode) EndOfLineSlack() int {
	if m == ViCommand {
		return -1
	}
	return 0
}

// SelfInserts returns true if unbound printable keys insert themselves.
// Vi command mode suppresses self-insertion.
func (m Mode) SelfInserts() bool {
	return m != ViCommand
}
