// Package linehistory manages accepted command lines: bounded
// in-memory storage, navigation, prefix search, and optional
// file-backed persistence guarded by a cross-process lock.
package linehistory

import (
	"strings"
	"sync"
)

const (
	// DefaultMaxEntries is the default history capacity.
	DefaultMaxEntries = 1000
	// MaxEntries is the absolute capacity ceiling.
	MaxEntries = 100000
)

// DuplicatePolicy controls how repeated lines are stored.
type DuplicatePolicy uint8

const (
	// DupsKeepAll stores every accepted line.
	DupsKeepAll DuplicatePolicy = iota
	// DupsIgnoreConsecutive drops a line equal to the previous one.
	DupsIgnoreConsecutive
)

// SavePolicy controls when history is persisted.
type SavePolicy uint8

const (
	// SaveIncrementally appends each accepted line to the file.
	SaveIncrementally SavePolicy = iota
	// SaveAtExit writes the file once during shutdown.
	SaveAtExit
	// SaveNever disables persistence.
	SaveNever
)

// Manager holds the in-memory history and the navigation cursor.
type Manager struct {
	mu sync.RWMutex

	entries []string
	maxSize int

	dups DuplicatePolicy

	// pending is an in-progress line saved when a read was
	// interrupted, restored on the next session initialize.
	pending    string
	hasPending bool
}

// NewManager creates a manager with the given capacity
// (<= 0 uses DefaultMaxEntries).
func NewManager(maxSize int, dups DuplicatePolicy) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultMaxEntries
	}
	if maxSize > MaxEntries {
		maxSize = MaxEntries
	}
	return &Manager{
		entries: make([]string, 0, min(maxSize, 256)),
		maxSize: maxSize,
		dups:    dups,
	}
}

// Add appends an accepted line, subject to the duplicate policy.
// Returns true if the line was stored.
func (m *Manager) Add(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dups == DupsIgnoreConsecutive &&
		len(m.entries) > 0 && m.entries[len(m.entries)-1] == line {
		return false
	}

	if len(m.entries) >= m.maxSize {
		copy(m.entries, m.entries[1:])
		m.entries[len(m.entries)-1] = line
	} else {
		m.entries = append(m.entries, line)
	}
	return true
}

// Len returns the number of stored lines.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// At returns the line at index, or "" if out of range.
func (m *Manager) At(index int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.entries) {
		return ""
	}
	return m.entries[index]
}

// All returns a copy of the stored lines, oldest first.
func (m *Manager) All() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.entries))
	copy(out, m.entries)
	return out
}

// SearchBackward finds the nearest index before from whose line
// starts with prefix. Returns -1 when there is no match.
func (m *Manager) SearchBackward(prefix string, from int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if from > len(m.entries) {
		from = len(m.entries)
	}
	for i := from - 1; i >= 0; i-- {
		if strings.HasPrefix(m.entries[i], prefix) {
			return i
		}
	}
	return -1
}

// SearchForward finds the nearest index after from whose line starts
// with prefix. Returns -1 when there is no match.
func (m *Manager) SearchForward(prefix string, from int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := from + 1; i < len(m.entries); i++ {
		if strings.HasPrefix(m.entries[i], prefix) {
			return i
		}
	}
	return -1
}

// SetPending saves an in-progress line for restoration by the next
// session initialize.
func (m *Manager) SetPending(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = line
	m.hasPending = true
}

// TakePending returns and clears the saved in-progress line.
func (m *Manager) TakePending() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasPending {
		return "", false
	}
	line := m.pending
	m.pending = ""
	m.hasPending = false
	return line, true
}

// Replace swaps the stored lines, used when loading from a file.
func (m *Manager) Replace(lines []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(lines) > m.maxSize {
		lines = lines[len(lines)-m.maxSize:]
	}
	m.entries = append(m.entries[:0], lines...)
}
