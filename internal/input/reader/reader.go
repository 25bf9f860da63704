// Package reader implements the key acquisition service: a long-lived
// background task that performs blocking raw reads, decodes them into
// key events and hands them to the foreground on request.
//
// The handoff uses a single-slot request signal and a single-slot
// available signal; at most one request is outstanding at a time.
// Events surface in exactly the order the terminal produced them, and
// a multi-byte escape sequence is always delivered as one event.
package reader

import (
	"sync"
	"time"

	"github.com/dshills/keyline/internal/input/key"
)

// burstBudget bounds how long one request cycle keeps draining
// immediately-available input, so heavy paste cannot starve the
// foreground.
const burstBudget = 30 * time.Millisecond

// Reader is the key acquisition service.
type Reader struct {
	src ByteSource

	requestCh   chan struct{}
	availableCh chan struct{}
	closing     chan struct{}

	mu    sync.Mutex
	queue []key.Event
	err   error

	diag *Diagnostics

	startOnce sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a reader over the given byte source.
func New(src ByteSource) *Reader {
	return &Reader{
		src:         src,
		requestCh:   make(chan struct{}, 1),
		availableCh: make(chan struct{}, 1),
		closing:     make(chan struct{}),
		diag:        NewDiagnostics(DefaultDiagnosticsSize),
	}
}

// Start launches the background task. Subsequent calls are no-ops.
func (r *Reader) Start() {
	r.startOnce.Do(func() {
		r.wg.Add(1)
		go r.run()
	})
}

// Close wakes both tasks and stops the service. The byte source is
// closed so a blocked read unwinds.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		close(r.closing)
	})
	err := r.src.Close()
	r.wg.Wait()
	return err
}

// Closing returns the shared closing signal.
func (r *Reader) Closing() <-chan struct{} {
	return r.closing
}

// Available signals that at least one key is queued.
func (r *Reader) Available() <-chan struct{} {
	return r.availableCh
}

// Request asks the service for one key cycle. Only one request may be
// outstanding; extra requests coalesce into the single slot.
func (r *Reader) Request() {
	select {
	case r.requestCh <- struct{}{}:
	default:
	}
}

// TryPop removes and returns the oldest queued key.
func (r *Reader) TryPop() (key.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return key.Event{}, false
	}
	ev := r.queue[0]
	r.queue = r.queue[1:]
	return ev, true
}

// Pending returns the number of queued keys.
func (r *Reader) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Err returns the terminal read error, if any. io.EOF means the
// input stream ended.
func (r *Reader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Diagnostics returns the bounded recent-key history.
func (r *Reader) Diagnostics() *Diagnostics {
	return r.diag
}

// run is the background task: park on a request, decode at least one
// key, drain the current burst, signal availability and re-park.
func (r *Reader) run() {
	defer r.wg.Done()

	for {
		select {
		case <-r.closing:
			return
		case <-r.requestCh:
		}

		if !r.fill() {
			return
		}

		select {
		case r.availableCh <- struct{}{}:
		default:
		}
	}
}

// fill blocks for one key, then keeps decoding while input is
// immediately available within the burst budget. Returns false when
// the service should exit.
func (r *Reader) fill() bool {
	ev, ok, err := r.decodeOne(-1)
	if err != nil {
		r.fail(err)
		return false
	}
	if !ok {
		// Unbounded wait only returns without a byte when closing.
		return false
	}
	r.push(ev)

	deadline := time.Now().Add(burstBudget)
	for time.Now().Before(deadline) {
		ev, ok, err := r.decodeOne(0)
		if err != nil {
			r.fail(err)
			return false
		}
		if !ok {
			break
		}
		r.push(ev)
	}
	return true
}

func (r *Reader) push(ev key.Event) {
	if ev.Key == key.KeyNone && ev.Rune == 0 {
		// Unrecognized sequence; nothing to deliver.
		return
	}
	r.mu.Lock()
	r.queue = append(r.queue, ev)
	r.mu.Unlock()
	r.diag.Record(ev)
}

// fail records the read error and signals availability so the
// foreground wakes and observes it.
func (r *Reader) fail(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()

	select {
	case r.availableCh <- struct{}{}:
	default:
	}
}
