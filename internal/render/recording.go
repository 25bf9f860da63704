package render

import "sync"

// Recording is a test renderer that remembers every call.
type Recording struct {
	mu sync.Mutex

	States   []State
	Statuses []string
	Dings    int
	Clears   int
	Finishes int
	Resyncs  int

	// Row is returned by CursorRow; tests mutate it to simulate
	// external output moving the cursor.
	Row int
}

// NewRecording creates an empty recording renderer.
func NewRecording() *Recording { return &Recording{} }

// Last returns the most recent state passed to Redraw.
func (r *Recording) Last() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.States) == 0 {
		return State{}
	}
	return r.States[len(r.States)-1]
}

// Redraw implements Renderer.
func (r *Recording) Redraw(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.States = append(r.States, st)
}

// SetStatus implements Renderer.
func (r *Recording) SetStatus(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Statuses = append(r.Statuses, msg)
}

// ClearStatus implements Renderer.
func (r *Recording) ClearStatus() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Statuses = append(r.Statuses, "")
}

// Ding implements Renderer.
func (r *Recording) Ding() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Dings++
}

// Clear implements Renderer.
func (r *Recording) Clear(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Clears++
	r.States = append(r.States, st)
}

// CursorRow implements Renderer.
func (r *Recording) CursorRow() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Row
}

// ResyncAnchor implements Renderer.
func (r *Recording) ResyncAnchor() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Resyncs++
}

// Finish implements Renderer.
func (r *Recording) Finish(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Finishes++
	r.States = append(r.States, st)
}
