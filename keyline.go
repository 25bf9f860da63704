// Package keyline is an interactive command-line editor for embedding
// in a host shell. A background acquisition service performs the
// blocking terminal reads and decodes escape sequences into key
// events; the foreground ReadLine call dispatches those events
// through mode-specific key tables onto an edit buffer with a
// transactional undo log, shared line history, a kill ring, tab
// completion and optional Lua-scripted handlers.
package keyline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/term"

	"github.com/dshills/keyline/internal/dispatch"
	"github.com/dshills/keyline/internal/engine/killring"
	"github.com/dshills/keyline/internal/input/keymap"
	"github.com/dshills/keyline/internal/input/mode"
	"github.com/dshills/keyline/internal/input/reader"
	"github.com/dshills/keyline/internal/linehistory"
	"github.com/dshills/keyline/internal/provider"
	"github.com/dshills/keyline/internal/render"
	"github.com/dshills/keyline/internal/script"
	"github.com/dshills/keyline/internal/session"
)

// Editor errors.
var (
	// ErrInterrupted is returned when a read was canceled through the
	// context.
	ErrInterrupted = dispatch.ErrInterrupted
	// ErrClosed is returned when the input stream has closed.
	ErrClosed = dispatch.ErrClosed
	// ErrExitRequested accompanies the final line when a handler
	// asked the host to exit.
	ErrExitRequested = errors.New("exit requested")
	// ErrNotInteractive is returned when standard input is not an
	// interactive console.
	ErrNotInteractive = errors.New("input is not an interactive console")
)

// Editor reads edited lines from the terminal. Create one per process
// with New; it owns the acquisition service, history and kill ring
// shared by all reads.
type Editor struct {
	cfg Config

	hist  *linehistory.Manager
	store linehistory.Store
	kill  *killring.Ring

	sess     *session.Session
	rd       *reader.Reader
	renderer render.Renderer
	loop     *dispatch.Loop
	engine   *script.Engine
	watcher  *keymap.Watcher

	// initOnce defers the expensive setup (console validation, raw
	// terminal plumbing, history load, script load) to the first read.
	initOnce sync.Once
	initErr  error

	mu     sync.Mutex
	closed bool

	// lastFailed remembers a failed Executed report until the next
	// read surfaces it.
	lastFailed bool
}

// New creates an editor. Setup that can fail is deferred to the first
// ReadLine call.
func New(cfg Config) *Editor {
	return &Editor{cfg: cfg}
}

// ReadLine edits and returns one line. It blocks until the line is
// accepted, the context is canceled (ErrInterrupted) or input closes
// (ErrClosed). ErrExitRequested accompanies a line whose handler
// asked the host to terminate.
func (e *Editor) ReadLine(ctx context.Context) (string, error) {
	e.initOnce.Do(e.initialize)
	if e.initErr != nil {
		return "", e.initErr
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", ErrClosed
	}
	e.mu.Unlock()

	prompt := provider.GetPrompt(e.cfg.Prompt, e.cfg.PromptContext)
	e.sess.Reset(prompt)
	if pending, ok := e.hist.TakePending(); ok {
		if err := e.sess.InsertAtCursor(pending); err != nil {
			return "", err
		}
	}

	e.mu.Lock()
	failed := e.lastFailed
	e.lastFailed = false
	e.mu.Unlock()
	if failed {
		e.renderer.SetStatus("previous command failed")
	}

	restore, err := e.enterRaw()
	if err != nil {
		return "", err
	}
	defer restore()

	for {
		res, err := e.loop.Run(ctx)
		if err != nil {
			var fault *dispatch.HandlerFault
			if errors.As(err, &fault) {
				e.recoverFault(prompt, fault)
				continue
			}
			return "", err
		}

		if res.ExitRequested {
			return res.Text, ErrExitRequested
		}
		return res.Text, nil
	}
}

// recoverFault restores an editable state after a handler panic: the
// pre-fault text is captured, the session is rebuilt, the prompt is
// reissued and the text reinserted so nothing typed is lost.
func (e *Editor) recoverFault(prompt string, fault *dispatch.HandlerFault) {
	text := e.sess.Text()

	e.sess.Reset(prompt)
	if text != "" {
		// The rebuilt log treats the reinsert as the first edit.
		_ = e.sess.InsertAtCursor(text)
	}
	e.renderer.SetStatus(fmt.Sprintf("recovered from error in %s", fault.Action))
}

// Executed reports the host's execution result for an accepted line.
// A failure is surfaced on the next read's status row; the result is
// also forwarded to the prediction engine.
func (e *Editor) Executed(line string, success bool) {
	e.mu.Lock()
	e.lastFailed = !success
	e.mu.Unlock()

	if e.cfg.Prediction != nil {
		e.cfg.Prediction.OnExecuted(line, success)
	}
}

// History returns the shared line history.
func (e *Editor) History() *linehistory.Manager {
	return e.hist
}

// RegisterHandler installs a named action handler usable from keymap
// files.
func (e *Editor) RegisterHandler(action string, fn HandlerFunc) {
	e.initOnce.Do(e.initialize)
	if e.initErr == nil {
		e.loop.RegisterHandler(action, fn)
	}
}

// Close releases the editor: the acquisition service stops, history
// is flushed per the save policy and the script engine shuts down.
func (e *Editor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	var errs []error

	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	if e.engine != nil {
		e.engine.Close()
	}
	if e.rd != nil {
		errs = append(errs, e.rd.Close())
	}
	if e.store != nil {
		if e.cfg.SavePolicy == linehistory.SaveAtExit {
			errs = append(errs, e.store.Save(e.hist.All()))
		}
		errs = append(errs, e.store.Close())
	}

	return errors.Join(errs...)
}

// initialize performs the one-time setup on first use.
func (e *Editor) initialize() {
	cfg := e.cfg

	if cfg.Source == nil {
		if cfg.Input == nil || !term.IsTerminal(int(cfg.Input.Fd())) {
			e.initErr = ErrNotInteractive
			return
		}
	}

	e.renderer = cfg.Renderer
	if e.renderer == nil {
		width := 0
		if cfg.Input != nil {
			if w, _, err := term.GetSize(int(cfg.Input.Fd())); err == nil {
				width = w
			}
		}
		e.renderer = render.NewTerminal(cfg.Output, width)
	}

	e.hist = linehistory.NewManager(cfg.HistorySize, cfg.HistoryDups)
	if cfg.HistoryFile != "" && cfg.SavePolicy != linehistory.SaveNever {
		store, err := linehistory.NewFileStore(cfg.HistoryFile)
		if err != nil {
			e.initErr = err
			return
		}
		e.store = store

		lines, err := store.Load()
		if err != nil {
			e.initErr = err
			return
		}
		e.hist.Replace(lines)
	}

	e.kill = killring.New(0)
	e.kill.SetMirrorClipboard(cfg.MirrorClipboard)

	m := mode.Emacs
	if cfg.Mode == EditModeVi {
		m = mode.ViInsert
	}
	e.sess = session.New(e.hist, e.kill, m, cfg.NormalizeInput)

	src := cfg.Source
	if src == nil {
		src = reader.NewTTYSource(cfg.Input)
	}
	e.rd = reader.New(src)
	e.rd.Start()

	opts := []dispatch.Option{
		dispatch.WithCompletion(cfg.Completion),
		dispatch.WithPrediction(cfg.Prediction),
	}
	if cfg.OnIdle != nil {
		opts = append(opts, dispatch.WithIdleCallback(cfg.OnIdle))
	}
	if e.store != nil && cfg.SavePolicy == linehistory.SaveIncrementally {
		store := e.store
		opts = append(opts, dispatch.WithPersist(func(line string) {
			_ = store.Append(line)
		}))
	}
	e.loop = dispatch.NewLoop(e.rd, e.sess, e.renderer, opts...)

	if cfg.KeymapFile != "" {
		if err := e.loadKeymap(cfg.KeymapFile, cfg.WatchKeymap); err != nil {
			e.initErr = err
			return
		}
	}

	if cfg.ScriptFile != "" {
		e.engine = script.New(e.loop)
		if err := e.engine.LoadFile(cfg.ScriptFile); err != nil {
			e.initErr = err
			return
		}
	}
}

// loadKeymap applies a user keymap file and optionally watches it for
// changes. A reload failure keeps the previous bindings and surfaces
// in the status row.
func (e *Editor) loadKeymap(path string, watch bool) error {
	tables := map[string]*keymap.Table{
		mode.Emacs.String():     e.loop.Table(mode.Emacs),
		mode.ViInsert.String():  e.loop.Table(mode.ViInsert),
		mode.ViCommand.String(): e.loop.Table(mode.ViCommand),
	}

	bindings, err := keymap.LoadFile(path)
	if err != nil {
		return err
	}
	if bindings != nil {
		if err := keymap.Apply(bindings, tables); err != nil {
			return err
		}
	}

	if !watch {
		return nil
	}
	w, err := keymap.NewWatcher(path, tables, func(p string, err error) {
		if err != nil {
			e.renderer.SetStatus("keymap reload failed: " + err.Error())
		}
	})
	if err != nil {
		return err
	}
	e.watcher = w
	return nil
}

// enterRaw puts the terminal into raw mode, returning a restore
// function that is safe to call more than once. With an injected
// byte source there is no terminal to configure.
func (e *Editor) enterRaw() (func(), error) {
	if e.cfg.Source != nil {
		return func() {}, nil
	}

	fd := int(e.cfg.Input.Fd())
	st, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = term.Restore(fd, st)
		})
	}, nil
}
