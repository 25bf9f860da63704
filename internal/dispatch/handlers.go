package dispatch

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/keyline/internal/engine/buffer"
	"github.com/dshills/keyline/internal/input/key"
	"github.com/dshills/keyline/internal/input/keymap"
	"github.com/dshills/keyline/internal/input/mode"
	"github.com/dshills/keyline/internal/session"
)

// Context carries everything a handler may need for one invocation.
type Context struct {
	Loop    *Loop
	Sess    *session.Session
	Key     key.Event
	Binding keymap.Binding

	// Arg is the numeric argument accumulated before the key, nil
	// when none was given.
	Arg any
}

// HandlerFunc executes one bound action.
type HandlerFunc func(*Context) error

// ArgInt coerces the numeric argument to an int, falling back to the
// binding's fixed "count" argument and then to def. A malformed
// argument rings the bell so a broken binding is audible, not silent.
func (c *Context) ArgInt(def int) int {
	switch v := c.Arg.(type) {
	case nil:
	case int:
		return v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			c.Ding()
			return def
		}
		return n
	default:
		c.Ding()
		return def
	}
	switch v := c.Binding.Args["count"].(type) {
	case nil:
	case int:
		return v
	case float64:
		return int(v)
	default:
		c.Ding()
	}
	return def
}

// Ding signals an invalid operation.
func (c *Context) Ding() {
	c.Loop.renderer.Ding()
}

// registerBuiltins installs the handlers for every built-in action.
func (l *Loop) registerBuiltins() {
	builtins := map[string]HandlerFunc{
		keymap.ActionSelfInsert: handleSelfInsert,

		keymap.ActionAcceptLine: handleAcceptLine,
		keymap.ActionAbort:      handleAbort,
		keymap.ActionCancelLine: handleCancelLine,
		keymap.ActionClearView:  handleClearView,

		keymap.ActionBackwardChar: handleBackwardChar,
		keymap.ActionForwardChar:  handleForwardChar,
		keymap.ActionBackwardWord: handleBackwardWord,
		keymap.ActionForwardWord:  handleForwardWord,
		keymap.ActionHome:         handleHome,
		keymap.ActionEnd:          handleEnd,

		keymap.ActionBackspace:        handleBackspace,
		keymap.ActionDeleteChar:       handleDeleteChar,
		keymap.ActionDeleteCharOrExit: handleDeleteCharOrExit,
		keymap.ActionUndo:             handleUndo,
		keymap.ActionRedo:             handleRedo,

		keymap.ActionKillToEnd:        handleKillToEnd,
		keymap.ActionKillToStart:      handleKillToStart,
		keymap.ActionKillWord:         handleKillWord,
		keymap.ActionBackwardKillWord: handleBackwardKillWord,
		keymap.ActionKillRegion:       handleKillRegion,
		keymap.ActionYank:             handleYank,
		keymap.ActionYankPop:          handleYankPop,
		keymap.ActionYankLastArg:      handleYankLastArg,

		keymap.ActionSetMark:      handleSetMark,
		keymap.ActionExchangeMark: handleExchangeMark,

		keymap.ActionHistoryPrev:        handleHistoryPrev,
		keymap.ActionHistoryNext:        handleHistoryNext,
		keymap.ActionHistoryFirst:       handleHistoryFirst,
		keymap.ActionHistoryLast:        handleHistoryLast,
		keymap.ActionHistorySearchBack:  handleHistorySearchBack,
		keymap.ActionHistorySearchFwd:   handleHistorySearchFwd,
		keymap.ActionHistoryRecall:      handleHistoryRecall,

		keymap.ActionCompleteNext: handleCompleteNext,
		keymap.ActionCompletePrev: handleCompletePrev,

		keymap.ActionViCommandMode: handleViCommandMode,
		keymap.ActionViInsertMode:  handleViInsertMode,
		keymap.ActionViAppend:      handleViAppend,
		keymap.ActionViInsertBOL:   handleViInsertBOL,
		keymap.ActionViAppendEOL:   handleViAppendEOL,

		keymap.ActionViGotoLine:  handleViGotoLine,
		keymap.ActionViGotoFirst: handleViGotoFirst,
		keymap.ActionViEndOfLine: handleViEndOfLine,
		keymap.ActionViVisual:    handleViVisual,
	}
	for action, fn := range builtins {
		l.handlers[action] = fn
	}
}

func handleSelfInsert(c *Context) error {
	n := c.ArgInt(1)
	if n < 1 || !c.Key.IsChar() {
		c.Ding()
		return nil
	}
	return c.Sess.InsertAtCursor(strings.Repeat(string(c.Key.Rune), n))
}

func handleAcceptLine(c *Context) error {
	c.Sess.MarkAccepted()
	return nil
}

// Abort backs out of whatever is in flight: selection, status text,
// then rings the bell.
func handleAbort(c *Context) error {
	c.Sess.ClearSelection()
	c.Loop.renderer.ClearStatus()
	c.Ding()
	return nil
}

// CancelLine abandons the line: the buffer is emptied and the read
// completes with an empty result that never reaches history.
func handleCancelLine(c *Context) error {
	if err := c.Sess.ReplaceAll("", "cancel"); err != nil {
		return err
	}
	c.Sess.Log().Clear()
	c.Sess.MarkAccepted()
	return nil
}

func handleClearView(c *Context) error {
	c.Loop.renderer.Clear(c.Sess.RenderState())
	return nil
}

func handleBackwardChar(c *Context) error {
	n := c.ArgInt(1)
	c.Sess.SetCursor(c.Sess.Cursor() - n)
	return nil
}

func handleForwardChar(c *Context) error {
	n := c.ArgInt(1)
	c.Sess.SetCursor(c.Sess.Cursor() + n)
	return nil
}

func handleBackwardWord(c *Context) error {
	pos := c.Sess.Cursor()
	for i := 0; i < c.ArgInt(1); i++ {
		pos = c.Sess.Buffer().WordBoundaryLeft(pos)
	}
	c.Sess.SetCursor(pos)
	return nil
}

func handleForwardWord(c *Context) error {
	pos := c.Sess.Cursor()
	for i := 0; i < c.ArgInt(1); i++ {
		pos = c.Sess.Buffer().WordBoundaryRight(pos)
	}
	c.Sess.SetCursor(pos)
	return nil
}

func handleHome(c *Context) error {
	c.Sess.SetCursor(0)
	return nil
}

func handleEnd(c *Context) error {
	c.Sess.SetCursor(c.Sess.Buffer().Len())
	return nil
}

func handleBackspace(c *Context) error {
	cur := c.Sess.Cursor()
	if cur == 0 {
		c.Ding()
		return nil
	}
	start := cur - c.ArgInt(1)
	if start < 0 {
		start = 0
	}
	return c.Sess.Delete(start, cur-start)
}

func handleDeleteChar(c *Context) error {
	buf := c.Sess.Buffer()
	cur := buf.Cursor()
	length := c.ArgInt(1)
	if cur >= buf.Len() || length < 1 {
		c.Ding()
		return nil
	}
	if length > buf.Len()-cur {
		length = buf.Len() - cur
	}
	if err := c.Sess.Delete(cur, length); err != nil {
		return err
	}
	c.Sess.SetCursor(cur)
	return nil
}

// DeleteCharOrExit deletes under the cursor; on an empty line it asks
// the host to exit instead.
func handleDeleteCharOrExit(c *Context) error {
	if c.Sess.Buffer().Len() == 0 {
		c.Sess.RequestExit()
		c.Sess.MarkAccepted()
		return nil
	}
	return handleDeleteChar(c)
}

func handleUndo(c *Context) error {
	for i := 0; i < c.ArgInt(1); i++ {
		if err := c.Sess.Undo(); err != nil {
			c.Ding()
			break
		}
	}
	c.Sess.SetCursor(c.Sess.Cursor())
	return nil
}

func handleRedo(c *Context) error {
	for i := 0; i < c.ArgInt(1); i++ {
		if err := c.Sess.Redo(); err != nil {
			c.Ding()
			break
		}
	}
	c.Sess.SetCursor(c.Sess.Cursor())
	return nil
}

// kill removes a span into the kill ring. A kill immediately after
// another kill extends the ring's top entry instead of pushing a new
// one; prepend selects which end backward kills extend.
func kill(c *Context, start, length int, prepend bool) error {
	if length <= 0 {
		c.Ding()
		return nil
	}

	text := c.Sess.Buffer().Substring(start, length)
	ring := c.Sess.KillRing()
	if c.Sess.Counters.Kill > 0 {
		if prepend {
			ring.Prepend(text)
		} else {
			ring.Append(text)
		}
	} else {
		ring.Kill(text)
	}
	c.Sess.Counters.Kill++

	return c.Sess.Delete(start, length)
}

func handleKillToEnd(c *Context) error {
	cur := c.Sess.Cursor()
	return kill(c, cur, c.Sess.Buffer().Len()-cur, false)
}

func handleKillToStart(c *Context) error {
	return kill(c, 0, c.Sess.Cursor(), true)
}

func handleKillWord(c *Context) error {
	cur := c.Sess.Cursor()
	end := c.Sess.Buffer().WordBoundaryRight(cur)
	return kill(c, cur, end-cur, false)
}

func handleBackwardKillWord(c *Context) error {
	cur := c.Sess.Cursor()
	start := c.Sess.Buffer().WordBoundaryLeft(cur)
	return kill(c, start, cur-start, true)
}

func handleKillRegion(c *Context) error {
	start, length, ok := c.Sess.Selection()
	if !ok {
		c.Ding()
		return nil
	}
	c.Sess.ClearSelection()
	return kill(c, start, length, false)
}

func handleYank(c *Context) error {
	text := c.Sess.KillRing().Yank()
	if text == "" {
		c.Ding()
		return nil
	}

	start := c.Sess.Cursor()
	if err := c.Sess.InsertAtCursor(text); err != nil {
		return err
	}
	c.Sess.Yank.Start = start
	c.Sess.Yank.Len = utf8.RuneCountInString(text)
	c.Sess.Counters.Yank++
	return nil
}

// YankPop replaces the just-yanked text with the next ring entry.
// Valid only while the yank chain is unbroken.
func handleYankPop(c *Context) error {
	if c.Sess.Counters.Yank == 0 {
		c.Ding()
		return nil
	}
	text := c.Sess.KillRing().YankPop()
	if text == "" {
		c.Ding()
		return nil
	}

	if err := c.Sess.Replace(c.Sess.Yank.Start, c.Sess.Yank.Len, text, "yank-pop"); err != nil {
		return err
	}
	c.Sess.Yank.Len = utf8.RuneCountInString(text)
	c.Sess.Counters.Yank++
	return nil
}

// YankLastArg inserts the final argument of the previous history
// line; repeating walks further back, replacing the inserted text.
func handleYankLastArg(c *Context) error {
	s := c.Sess
	h := s.History()

	if s.Counters.YankLastArg == 0 {
		if h.Len() == 0 {
			c.Ding()
			return nil
		}
		arg := lastArgOf(h.At(h.Len() - 1))
		if arg == "" {
			c.Ding()
			return nil
		}
		start := s.Cursor()
		if err := s.InsertAtCursor(arg); err != nil {
			return err
		}
		s.Yank.ArgBack = 1
		s.Yank.ArgStart = start
		s.Yank.ArgLen = utf8.RuneCountInString(arg)
		s.Counters.YankLastArg++
		return nil
	}

	back := s.Yank.ArgBack + 1
	if back > h.Len() {
		c.Ding()
		s.Counters.YankLastArg++
		return nil
	}
	arg := lastArgOf(h.At(h.Len() - back))
	if err := s.Replace(s.Yank.ArgStart, s.Yank.ArgLen, arg, "yank-last-arg"); err != nil {
		return err
	}
	s.Yank.ArgBack = back
	s.Yank.ArgLen = utf8.RuneCountInString(arg)
	s.Counters.YankLastArg++
	return nil
}

func lastArgOf(line string) string {
	return buffer.NewFromString(line).LastArg()
}

func handleSetMark(c *Context) error {
	c.Sess.SetMark()
	return nil
}

func handleExchangeMark(c *Context) error {
	c.Sess.ExchangeMark()
	return nil
}

// historyGoto replaces the buffer with the history entry at target
// (Manager.Len() restores the stashed live line). In vi command mode
// the cursor keeps its column across lines, or sticks to the end
// while an end-of-line motion chain is active.
func historyGoto(c *Context, target, delta int) error {
	s := c.Sess
	h := s.History()

	if target < 0 || target > h.Len() {
		c.Ding()
		return nil
	}
	if !s.Nav.SavedValid {
		s.Nav.Saved = s.Text()
		s.Nav.SavedValid = true
	}

	text := s.Nav.Saved
	if target < h.Len() {
		text = h.At(target)
	}

	colBefore := s.Cursor()
	if err := s.ReplaceAll(text, "history"); err != nil {
		return err
	}
	s.Nav.Index = target

	if s.Mode() == mode.ViCommand && delta != 0 {
		if s.Counters.MoveToEnd > 0 {
			s.SetCursor(s.Buffer().Len())
			s.Counters.MoveToEnd++
		} else {
			if s.DesiredColumn < 0 {
				s.DesiredColumn = colBefore
			}
			s.SetCursor(s.DesiredColumn)
		}
	}

	s.Counters.AnyHistory++
	return nil
}

func handleHistoryPrev(c *Context) error {
	n := c.ArgInt(1)
	return historyGoto(c, c.Sess.Nav.Index-n, -n)
}

func handleHistoryNext(c *Context) error {
	n := c.ArgInt(1)
	return historyGoto(c, c.Sess.Nav.Index+n, n)
}

func handleHistoryFirst(c *Context) error {
	if c.Sess.History().Len() == 0 {
		c.Ding()
		return nil
	}
	return historyGoto(c, 0, 0)
}

func handleHistoryLast(c *Context) error {
	h := c.Sess.History()
	if h.Len() == 0 {
		c.Ding()
		return nil
	}
	return historyGoto(c, h.Len()-1, 0)
}

// historySearch finds the next entry matching the prefix captured
// when the search began. The matched prefix stays emphasized until a
// non-search command breaks the chain.
func historySearch(c *Context, backward bool) error {
	s := c.Sess
	h := s.History()

	if s.Counters.SearchHistory == 0 {
		s.Nav.SearchPrefix = string(s.Buffer().Runes()[:s.Cursor()])
		if !s.Nav.SavedValid {
			s.Nav.Saved = s.Text()
			s.Nav.SavedValid = true
		}
	}
	prefix := s.Nav.SearchPrefix
	prefixLen := utf8.RuneCountInString(prefix)

	var idx int
	if backward {
		idx = h.SearchBackward(prefix, s.Nav.Index)
	} else {
		idx = h.SearchForward(prefix, s.Nav.Index)
	}

	if idx < 0 {
		if !backward && s.Nav.Index < h.Len() {
			// Walked forward past the newest match: restore the
			// stashed live line.
			if err := s.ReplaceAll(s.Nav.Saved, "history-search"); err != nil {
				return err
			}
			s.Nav.Index = h.Len()
			s.SetCursor(prefixLen)
			s.Nav.EmphasisLen = prefixLen
			s.Counters.SearchHistory++
			return nil
		}
		c.Ding()
		s.Counters.SearchHistory++
		return nil
	}

	if err := s.ReplaceAll(h.At(idx), "history-search"); err != nil {
		return err
	}
	s.Nav.Index = idx
	s.SetCursor(prefixLen)
	s.Nav.EmphasisLen = prefixLen
	s.Counters.SearchHistory++
	return nil
}

func handleHistorySearchBack(c *Context) error {
	return historySearch(c, true)
}

func handleHistorySearchFwd(c *Context) error {
	return historySearch(c, false)
}

// HistoryRecall loads a history entry by its 1-based number, given as
// the numeric argument; without one it recalls the newest entry.
func handleHistoryRecall(c *Context) error {
	s := c.Sess
	h := s.History()

	n := c.ArgInt(h.Len())
	if n < 1 || n > h.Len() {
		c.Ding()
		return nil
	}
	if err := s.ReplaceAll(h.At(n-1), "history-recall"); err != nil {
		return err
	}
	s.Nav.Index = n - 1
	s.Counters.RecallHistory++
	return nil
}

// complete cycles through completion candidates for the word before
// the cursor. The candidate set is computed once per chain; the
// counter keeps the chain alive across repeats.
func complete(c *Context, forward bool) error {
	s := c.Sess

	if s.Counters.Tab == 0 || len(s.Tab.Candidates) == 0 {
		if c.Loop.completion == nil {
			c.Ding()
			return nil
		}
		start := s.Buffer().WordBoundaryLeft(s.Cursor())
		cands := c.Loop.completion.Complete(s.Text(), s.Cursor())
		if len(cands) == 0 {
			c.Ding()
			return nil
		}
		s.Tab.Candidates = cands
		s.Tab.WordStart = start
		s.Tab.WordLen = s.Cursor() - start
		if forward {
			s.Tab.Index = -1
		} else {
			s.Tab.Index = len(cands)
		}
	}

	n := len(s.Tab.Candidates)
	if forward {
		s.Tab.Index = (s.Tab.Index + 1) % n
	} else {
		s.Tab.Index = (s.Tab.Index - 1 + n) % n
	}

	cand := s.Tab.Candidates[s.Tab.Index]
	if err := s.Replace(s.Tab.WordStart, s.Tab.WordLen, cand, "complete"); err != nil {
		return err
	}
	s.Tab.WordLen = utf8.RuneCountInString(cand)
	s.Counters.Tab++
	return nil
}

func handleCompleteNext(c *Context) error {
	return complete(c, true)
}

func handleCompletePrev(c *Context) error {
	return complete(c, false)
}

func handleViCommandMode(c *Context) error {
	cur := c.Sess.Cursor()
	c.Sess.SetMode(mode.ViCommand)
	c.Sess.SetCursor(cur - 1)
	return nil
}

func handleViInsertMode(c *Context) error {
	c.Sess.SetMode(mode.ViInsert)
	return nil
}

func handleViAppend(c *Context) error {
	cur := c.Sess.Cursor()
	c.Sess.SetMode(mode.ViInsert)
	c.Sess.SetCursor(cur + 1)
	return nil
}

func handleViInsertBOL(c *Context) error {
	c.Sess.SetMode(mode.ViInsert)
	c.Sess.SetCursor(0)
	return nil
}

func handleViAppendEOL(c *Context) error {
	c.Sess.SetMode(mode.ViInsert)
	c.Sess.SetCursor(c.Sess.Buffer().Len())
	return nil
}

// ViGotoLine jumps to history entry n (1-based count), or the newest
// entry without a count.
func handleViGotoLine(c *Context) error {
	h := c.Sess.History()
	if h.Len() == 0 {
		c.Ding()
		return nil
	}
	n := c.ArgInt(h.Len())
	if n < 1 || n > h.Len() {
		c.Ding()
		return nil
	}
	c.Sess.Counters.MoveToLine++
	return historyGoto(c, n-1, 0)
}

func handleViGotoFirst(c *Context) error {
	if c.Sess.History().Len() == 0 {
		c.Ding()
		return nil
	}
	c.Sess.Counters.MoveToLine++
	return historyGoto(c, 0, 0)
}

func handleViEndOfLine(c *Context) error {
	c.Sess.SetCursor(c.Sess.Buffer().Len())
	c.Sess.Counters.MoveToEnd++
	return nil
}

func handleViVisual(c *Context) error {
	if c.Sess.SelectionActive() {
		c.Sess.ClearSelection()
	} else {
		c.Sess.SetMark()
	}
	c.Sess.Counters.Visual++
	return nil
}
