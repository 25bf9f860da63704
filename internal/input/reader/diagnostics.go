package reader

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/keyline/internal/input/key"
)

// DefaultDiagnosticsSize bounds the recent-key ring.
const DefaultDiagnosticsSize = 32

// RecordedKey is one entry in the diagnostics ring.
type RecordedKey struct {
	Event key.Event
	Time  time.Time
}

// Diagnostics retains the last N decoded keys for crash reports,
// independent of the edit log.
type Diagnostics struct {
	mu sync.Mutex

	// sessionID ties a crash report to one process lifetime.
	sessionID string

	ring  []RecordedKey
	next  int
	count int
}

// NewDiagnostics creates a ring holding up to size keys.
func NewDiagnostics(size int) *Diagnostics {
	if size <= 0 {
		size = DefaultDiagnosticsSize
	}
	return &Diagnostics{
		sessionID: uuid.NewString(),
		ring:      make([]RecordedKey, size),
	}
}

// SessionID returns the process session identifier.
func (d *Diagnostics) SessionID() string {
	return d.sessionID
}

// Record adds a key to the ring, evicting the oldest when full.
func (d *Diagnostics) Record(ev key.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ring[d.next] = RecordedKey{Event: ev, Time: time.Now()}
	d.next = (d.next + 1) % len(d.ring)
	if d.count < len(d.ring) {
		d.count++
	}
}

// Recent returns the recorded keys, oldest first.
func (d *Diagnostics) Recent() []RecordedKey {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]RecordedKey, 0, d.count)
	start := d.next - d.count
	if start < 0 {
		start += len(d.ring)
	}
	for i := 0; i < d.count; i++ {
		out = append(out, d.ring[(start+i)%len(d.ring)])
	}
	return out
}

// Report formats the ring for a crash report.
func (d *Diagnostics) Report() string {
	recent := d.Recent()

	s := fmt.Sprintf("session %s, last %d keys:\n", d.SessionID(), len(recent))
	for _, rk := range recent {
		s += fmt.Sprintf("  %s %s\n", rk.Time.Format("15:04:05.000"), rk.Event.String())
	}
	return s
}
