package reader

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// ErrSourceClosed is returned once a byte source is closed.
var ErrSourceClosed = errors.New("byte source closed")

// ByteSource yields raw terminal bytes with bounded waits.
//
// ReadByte blocks for at most the given timeout. A negative timeout
// blocks until a byte arrives or the source closes. ok is false when
// the wait timed out.
type ByteSource interface {
	ReadByte(timeout time.Duration) (b byte, ok bool, err error)
	Close() error
}

// ttySource reads from a terminal file descriptor using poll(2) so
// waits are bounded without busy-spinning.
type ttySource struct {
	f      *os.File
	closed chan struct{}
	once   sync.Once
}

// NewTTYSource creates a ByteSource over an open terminal.
func NewTTYSource(f *os.File) ByteSource {
	return &ttySource{f: f, closed: make(chan struct{})}
}

func (s *ttySource) ReadByte(timeout time.Duration) (byte, bool, error) {
	deadline := time.Time{}
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		select {
		case <-s.closed:
			return 0, false, ErrSourceClosed
		default:
		}

		// Poll in slices so Close is observed promptly even with an
		// unbounded timeout.
		slice := 100 * time.Millisecond
		if !deadline.IsZero() {
			remain := time.Until(deadline)
			if remain <= 0 {
				return 0, false, nil
			}
			if remain < slice {
				slice = remain
			}
		}

		fds := []unix.PollFd{{Fd: int32(s.f.Fd()), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(slice.Milliseconds()))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return 0, false, err
		}
		if n == 0 {
			if deadline.IsZero() {
				continue
			}
			if !time.Now().Before(deadline) {
				return 0, false, nil
			}
			continue
		}

		var buf [1]byte
		nr, err := s.f.Read(buf[:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return 0, false, io.EOF
			}
			return 0, false, err
		}
		if nr == 0 {
			return 0, false, io.EOF
		}
		return buf[0], true, nil
	}
}

func (s *ttySource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// chanSource is an in-memory ByteSource for tests and scripted input.
type chanSource struct {
	ch     chan byte
	closed chan struct{}
	once   sync.Once
}

// NewChanSource creates a ByteSource fed through a channel.
func NewChanSource(buffer int) (ByteSource, chan<- byte) {
	s := &chanSource{
		ch:     make(chan byte, buffer),
		closed: make(chan struct{}),
	}
	return s, s.ch
}

func (s *chanSource) ReadByte(timeout time.Duration) (byte, bool, error) {
	if timeout < 0 {
		select {
		case b, ok := <-s.ch:
			if !ok {
				return 0, false, io.EOF
			}
			return b, true, nil
		case <-s.closed:
			return 0, false, ErrSourceClosed
		}
	}

	// A zero timeout still gives an already-buffered byte a chance.
	if timeout == 0 {
		select {
		case b, ok := <-s.ch:
			if !ok {
				return 0, false, io.EOF
			}
			return b, true, nil
		case <-s.closed:
			return 0, false, ErrSourceClosed
		default:
			return 0, false, nil
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case b, ok := <-s.ch:
		if !ok {
			return 0, false, io.EOF
		}
		return b, true, nil
	case <-s.closed:
		return 0, false, ErrSourceClosed
	case <-timer.C:
		return 0, false, nil
	}
}

func (s *chanSource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}
