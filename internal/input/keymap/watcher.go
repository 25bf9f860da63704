package keymap

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadHandler is called after the watched keymap file changes.
// err is non-nil when the changed file failed to load or apply.
type ReloadHandler func(path string, err error)

// Watcher reloads a user keymap file when it changes on disk.
//
// Editors often replace config files via rename, so the parent
// directory is watched and events are filtered by name.
type Watcher struct {
	mu sync.Mutex

	path    string
	tables  map[string]*Table
	handler ReloadHandler

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup

	// debounce collapses bursts of events from a single save.
	debounce time.Duration
}

// NewWatcher creates a watcher for the given keymap file.
// The handler may be nil.
func NewWatcher(path string, tables map[string]*Table, handler ReloadHandler) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving keymap path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		tables:   tables,
		handler:  handler,
		fsw:      fsw,
		done:     make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.reload()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	bindings, err := LoadFile(w.path)
	if err == nil && bindings != nil {
		err = Apply(bindings, w.tables)
	}
	if w.handler != nil {
		w.handler(w.path, err)
	}
}
