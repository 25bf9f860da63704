// Package dispatch implements the foreground input loop: it pulls
// decoded keys from the acquisition service (or the session's own
// queue), resolves them against the active keymap table, executes the
// bound handler and maintains the per-command counter discipline that
// detects command chains like consecutive kills or yank then yank-pop.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/dshills/keyline/internal/input/key"
	"github.com/dshills/keyline/internal/input/keymap"
	"github.com/dshills/keyline/internal/input/mode"
	"github.com/dshills/keyline/internal/input/reader"
	"github.com/dshills/keyline/internal/provider"
	"github.com/dshills/keyline/internal/render"
	"github.com/dshills/keyline/internal/session"
)

// DefaultIdleTimeout is how long a key wait blocks before the idle
// callback runs.
const DefaultIdleTimeout = 300 * time.Millisecond

// Loop errors.
var (
	// ErrInterrupted is returned when the read was canceled.
	ErrInterrupted = errors.New("read interrupted")
	// ErrClosed is returned when the input stream closed.
	ErrClosed = errors.New("input closed")
	// ErrUnknownAction is returned for a binding naming no handler.
	ErrUnknownAction = errors.New("unknown action")
)

// Internal fetch outcomes.
var (
	errCanceled     = errors.New("canceled")
	errAcceptedIdle = errors.New("accepted while idle")
)

// HandlerFault reports a panicking key handler. The loop converts the
// panic into this error so the editor can recover the session.
type HandlerFault struct {
	Action string
	Value  any
	Stack  []byte
	// Keys is the recent-key report from the acquisition service.
	Keys string
}

// Error implements error.
func (f *HandlerFault) Error() string {
	return fmt.Sprintf("handler %q panicked: %v", f.Action, f.Value)
}

// Result is the outcome of one completed read.
type Result struct {
	// Text is the accepted line.
	Text string
	// AcceptedWhileIdle is set when acceptance happened inside the
	// idle callback rather than from a key.
	AcceptedWhileIdle bool
	// ExitRequested is set when a handler asked the host to exit.
	ExitRequested bool
}

// Loop drives one session through keys until a line is produced.
type Loop struct {
	rd   *reader.Reader
	sess *session.Session

	tables map[mode.Mode]*keymap.Table

	renderer render.Renderer

	completion provider.CompletionProvider
	predictor  provider.PredictionEngine

	handlers map[string]HandlerFunc

	// onIdle runs when a key wait exceeds idleTimeout.
	onIdle      func()
	idleTimeout time.Duration

	// persist is called for each line the history manager stored,
	// when incremental saving is enabled.
	persist func(line string)
}

// Option configures a Loop.
type Option func(*Loop)

// WithIdleCallback installs the callback run during idle key waits.
func WithIdleCallback(fn func()) Option {
	return func(l *Loop) { l.onIdle = fn }
}

// WithIdleTimeout overrides the idle timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.idleTimeout = d
		}
	}
}

// WithCompletion installs the completion provider.
func WithCompletion(p provider.CompletionProvider) Option {
	return func(l *Loop) { l.completion = p }
}

// WithPrediction installs the prediction engine.
func WithPrediction(p provider.PredictionEngine) Option {
	return func(l *Loop) { l.predictor = p }
}

// WithPersist installs the incremental history persist hook.
func WithPersist(fn func(line string)) Option {
	return func(l *Loop) { l.persist = fn }
}

// WithTable replaces the dispatch table for one mode.
func WithTable(m mode.Mode, t *keymap.Table) Option {
	return func(l *Loop) { l.tables[m] = t }
}

// NewLoop creates a loop over the given reader, session and renderer
// with the default tables and built-in handlers installed.
func NewLoop(rd *reader.Reader, sess *session.Session, r render.Renderer, opts ...Option) *Loop {
	l := &Loop{
		rd:       rd,
		sess:     sess,
		renderer: r,
		tables: map[mode.Mode]*keymap.Table{
			mode.Emacs:     keymap.Emacs(),
			mode.ViInsert:  keymap.ViInsert(),
			mode.ViCommand: keymap.ViCommand(),
		},
		handlers:    make(map[string]HandlerFunc),
		idleTimeout: DefaultIdleTimeout,
	}
	l.registerBuiltins()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Table returns the dispatch table for a mode.
func (l *Loop) Table(m mode.Mode) *keymap.Table {
	return l.tables[m]
}

// Session returns the session the loop drives.
func (l *Loop) Session() *session.Session {
	return l.sess
}

// RegisterHandler installs (or replaces) a named action handler.
func (l *Loop) RegisterHandler(action string, fn HandlerFunc) {
	l.handlers[action] = fn
}

// SetStatus shows transient status text below the edit line.
func (l *Loop) SetStatus(msg string) {
	l.renderer.SetStatus(msg)
}

// Run consumes keys until the line is accepted, the read is canceled
// or the input stream closes.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	l.renderer.Redraw(l.sess.RenderState())

	for {
		snap := l.sess.Counters

		ev, err := l.fetchKey(ctx)
		if err != nil {
			switch {
			case errors.Is(err, errAcceptedIdle):
				return l.finalize(true)
			case errors.Is(err, errCanceled):
				l.cancelRead()
				return nil, ErrInterrupted
			default:
				return nil, err
			}
		}

		if err := l.dispatchKey(ctx, ev); err != nil {
			return nil, err
		}

		if l.sess.Accepted() {
			return l.finalize(false)
		}

		l.resetStale(snap)
		l.renderer.Redraw(l.sess.RenderState())
	}
}

// fetchKey produces the next key. The session queue is checked first,
// then the reader's queue (the fast path that skips a request), and
// only then is a request posted and the wait entered.
func (l *Loop) fetchKey(ctx context.Context) (key.Event, error) {
	if ev, ok := l.sess.PopKey(); ok {
		return ev, nil
	}
	if ev, ok := l.rd.TryPop(); ok {
		return ev, nil
	}
	// A reader that already failed never signals again; report it
	// instead of waiting on a wakeup that cannot come.
	if err := l.rd.Err(); err != nil {
		return key.Event{}, errors.Join(ErrClosed, err)
	}

	l.rd.Request()

	idle := time.NewTimer(l.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return key.Event{}, errCanceled

		case <-l.rd.Closing():
			return key.Event{}, ErrClosed

		case <-l.rd.Available():
			if ev, ok := l.rd.TryPop(); ok {
				return ev, nil
			}
			if err := l.rd.Err(); err != nil {
				return key.Event{}, errors.Join(ErrClosed, err)
			}
			// Spurious wakeup; keep waiting.

		case <-idle.C:
			l.runIdle()
			if l.sess.Accepted() {
				return key.Event{}, errAcceptedIdle
			}
			idle.Reset(l.idleTimeout)
		}
	}
}

// runIdle invokes the host idle callback, then resynchronizes the
// display if the callback's output moved the cursor row while the
// buffer stayed the same length.
func (l *Loop) runIdle() {
	if l.onIdle == nil {
		return
	}

	rowBefore := l.renderer.CursorRow()
	lenBefore := l.sess.Buffer().Len()

	l.onIdle()

	if l.renderer.CursorRow() != rowBefore && l.sess.Buffer().Len() == lenBefore {
		l.renderer.ResyncAnchor()
		l.renderer.Redraw(l.sess.RenderState())
	}
}

// dispatchKey resolves and executes one key.
func (l *Loop) dispatchKey(ctx context.Context, ev key.Event) error {
	table := l.tables[l.sess.Mode()]

	b, ok := lookup(table, ev)
	if ok {
		switch b.Action {
		case keymap.ActionChord:
			return l.dispatchChord(ctx, table, ev, nil)
		case keymap.ActionDigitArgument:
			return l.digitArgument(ctx, ev)
		}
		return l.execute(b, ev, nil)
	}

	if l.sess.Mode().SelfInserts() && ev.IsChar() {
		return l.execute(keymap.NewBinding(keymap.ActionSelfInsert, ""), ev, nil)
	}

	l.renderer.Ding()
	return nil
}

// dispatchChord fetches the chord's second key and resolves it in the
// prefix's sub-table, carrying any numeric argument accumulated before
// the prefix. An unbound second key falls through silently.
func (l *Loop) dispatchChord(ctx context.Context, table *keymap.Table, first key.Event, arg any) error {
	sub, ok := table.Chord(first)
	if !ok {
		return nil
	}

	second, err := l.fetchKey(ctx)
	if err != nil {
		if errors.Is(err, errAcceptedIdle) {
			return nil
		}
		return err
	}

	b, ok := lookup(sub, second)
	if !ok {
		return nil
	}
	return l.execute(b, second, arg)
}

// lookup resolves an event in a table: an exact match first, then a
// second attempt with Shift stripped so uppercase runes and shifted
// control characters reach their unshifted bindings.
func lookup(t *keymap.Table, ev key.Event) (keymap.Binding, bool) {
	if b, ok := t.Lookup(ev); ok {
		return b, true
	}
	if ev.Modifiers.HasShift() {
		return t.Lookup(ev.WithoutShift())
	}
	return keymap.Binding{}, false
}

// execute runs a handler, converting a panic into a HandlerFault.
func (l *Loop) execute(b keymap.Binding, ev key.Event, arg any) (err error) {
	fn, ok := l.handlers[b.Action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, b.Action)
	}

	defer func() {
		if v := recover(); v != nil {
			err = &HandlerFault{
				Action: b.Action,
				Value:  v,
				Stack:  debug.Stack(),
				Keys:   l.rd.Diagnostics().Report(),
			}
		}
	}()

	return fn(&Context{Loop: l, Sess: l.sess, Key: ev, Binding: b, Arg: arg})
}

// resetStale clears the transient state of every command whose counter
// did not advance during the key that just executed.
func (l *Loop) resetStale(prev session.Counters) {
	s := l.sess
	c := &s.Counters

	if c.Kill == prev.Kill {
		c.Kill = 0
	}
	if c.Yank == prev.Yank {
		c.Yank = 0
		s.Yank.Start, s.Yank.Len = 0, 0
	}
	if c.YankLastArg == prev.YankLastArg {
		c.YankLastArg = 0
		s.Yank.ArgBack, s.Yank.ArgStart, s.Yank.ArgLen = 0, 0, 0
	}
	if c.Tab == prev.Tab {
		c.Tab = 0
		s.Tab = session.TabState{}
	}
	if c.SearchHistory == prev.SearchHistory {
		if c.SearchHistory > 0 {
			// Search deactivated: drop the emphasis and repaint.
			s.Nav.EmphasisLen = 0
			s.Nav.SearchPrefix = ""
			l.renderer.Redraw(s.RenderState())
		}
		c.SearchHistory = 0
	}
	if c.RecallHistory == prev.RecallHistory {
		c.RecallHistory = 0
	}
	if c.AnyHistory == prev.AnyHistory {
		if c.AnyHistory > 0 {
			// Navigation deactivated: forget the walk position.
			s.Nav.Index = s.History().Len()
			s.Nav.Saved, s.Nav.SavedValid = "", false
		}
		c.AnyHistory = 0
	}
	if c.Visual == prev.Visual {
		if c.Visual > 0 {
			s.ClearSelection()
			l.renderer.Redraw(s.RenderState())
		}
		c.Visual = 0
	}

	moveStale := c.MoveToLine == prev.MoveToLine && c.MoveToEnd == prev.MoveToEnd
	if c.MoveToLine == prev.MoveToLine {
		c.MoveToLine = 0
	}
	if c.MoveToEnd == prev.MoveToEnd {
		c.MoveToEnd = 0
	}
	if moveStale && s.Mode() == mode.ViCommand {
		s.DesiredColumn = -1
	}
}

// cancelRead handles external cancellation observed during a key
// wait: any key the service already decoded is discarded, the
// in-progress line is parked for the next read, and the display is
// cleared with a single repaint.
func (l *Loop) cancelRead() {
	l.rd.TryPop()

	s := l.sess
	if text := s.Text(); text != "" {
		s.History().SetPending(text)
	}
	s.Nav.Index = s.History().Len()

	s.Log().Clear()
	s.Buffer().Clear()

	l.renderer.Finish(s.RenderState())
}

// finalize completes an accepted read: the display moves past the
// line, the line is committed to history (subject to the duplicate
// policy) and the prediction engine is notified.
func (l *Loop) finalize(idle bool) (*Result, error) {
	s := l.sess
	text := s.Text()

	st := s.RenderState()
	st.SelLen, st.EmphasisLen = 0, 0
	st.Cursor = s.Buffer().Len()
	l.renderer.Finish(st)

	if s.History().Add(text) && l.persist != nil {
		l.persist(text)
	}
	if l.predictor != nil {
		l.predictor.OnAccepted(text)
	}

	return &Result{
		Text:              text,
		AcceptedWhileIdle: idle,
		ExitRequested:     s.ExitRequested(),
	}, nil
}
