package linehistory

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists accepted lines.
type Store interface {
	// Append records one accepted line.
	Append(line string) error
	// Load returns all persisted lines, oldest first.
	Load() ([]string, error)
	// Save writes the full line set, replacing previous contents.
	Save(lines []string) error
	// Close releases any held resources.
	Close() error
}

// MemoryStore keeps lines in memory only; used when persistence is
// disabled.
type MemoryStore struct {
	mu    sync.Mutex
	lines []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records one line.
func (s *MemoryStore) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	return nil
}

// Load returns the recorded lines.
func (s *MemoryStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

// Save replaces the recorded lines.
func (s *MemoryStore) Save(lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines[:0], lines...)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// FileStore persists lines to a plain text file, one line per entry,
// guarded by a named cross-process lock so concurrent shells sharing
// the file do not interleave writes.
type FileStore struct {
	mu   sync.Mutex
	path string
	lock *FileLock
}

// NewFileStore creates a store for the given path, acquiring the
// cross-process lock. The directory is created if missing.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("empty history path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	lock, err := OpenFileLock(path + ".lock")
	if err != nil {
		return nil, err
	}

	return &FileStore{path: path, lock: lock}, nil
}

// Append records one line at the end of the file.
func (s *FileStore) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(escapeLine(line) + "\n"); err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

// Load returns all persisted lines.
func (s *FileStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return nil, err
	}
	defer s.lock.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, unescapeLine(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	return lines, nil
}

// Save rewrites the file with the given lines via temp file + rename.
func (s *FileStore) Save(lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(escapeLine(line) + "\n"); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing history: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp history file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing history file: %w", err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("setting history permissions: %w", err)
	}
	return nil
}

// Close releases the cross-process lock.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lock == nil {
		return nil
	}
	err := s.lock.Close()
	s.lock = nil
	return err
}

// Multi-line entries are stored escaped so the file stays one entry
// per line.
func escapeLine(line string) string {
	line = strings.ReplaceAll(line, `\`, `\\`)
	return strings.ReplaceAll(line, "\n", `\n`)
}

func unescapeLine(line string) string {
	var sb strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' && i+1 < len(line) {
			switch line[i+1] {
			case 'n':
				sb.WriteByte('\n')
				i++
				continue
			case '\\':
				sb.WriteByte('\\')
				i++
				continue
			}
		}
		sb.WriteByte(line[i])
	}
	return sb.String()
}
