package session

// Counters tracks per-command invocation counts within one read.
// The dispatch loop snapshots them before each key and resets the
// transient state of any command whose counter did not advance,
// which is how "the previous command was X" chains (yank-pop after
// yank, consecutive kills accumulating) are detected.
type Counters struct {
	Kill          int
	Yank          int
	YankLastArg   int
	Tab           int
	SearchHistory int
	RecallHistory int
	AnyHistory    int
	Visual        int
	MoveToLine    int
	MoveToEnd     int
}
