package linehistory

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileLock is a named cross-process advisory lock guarding the shared
// history file. The lock file is opened once per process; the flock
// itself is held only around individual file operations so concurrent
// shells sharing a history file never block each other for a whole
// session.
type FileLock struct {
	f *os.File
}

// OpenFileLock opens (creating if needed) the named lock file.
func OpenFileLock(path string) (*FileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	return &FileLock{f: f}, nil
}

// Lock takes the exclusive flock, blocking until other holders
// release it.
func (l *FileLock) Lock() error {
	if l.f == nil {
		return fmt.Errorf("lock file closed")
	}
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("locking history: %w", err)
	}
	return nil
}

// Unlock drops the flock.
func (l *FileLock) Unlock() error {
	if l.f == nil {
		return nil
	}
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("unlocking history: %w", err)
	}
	return nil
}

// Close releases the lock file. Safe to call once.
func (l *FileLock) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
