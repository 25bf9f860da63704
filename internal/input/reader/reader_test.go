package reader

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dshills/keyline/internal/input/key"
)

func feedBytes(ch chan<- byte, bs ...byte) {
	for _, b := range bs {
		ch <- b
	}
}

// nextEvent requests one cycle and waits for a key.
func nextEvent(t *testing.T, r *Reader) key.Event {
	t.Helper()

	if ev, ok := r.TryPop(); ok {
		return ev
	}
	r.Request()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-r.Available():
			if ev, ok := r.TryPop(); ok {
				return ev
			}
			if err := r.Err(); err != nil {
				t.Fatalf("reader error: %v", err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for key")
		}
	}
}

func newTestReader(t *testing.T) (*Reader, chan<- byte) {
	t.Helper()
	src, ch := NewChanSource(64)
	r := New(src)
	r.Start()
	t.Cleanup(func() { r.Close() })
	return r, ch
}

func TestPlainRunes(t *testing.T) {
	r, ch := newTestReader(t)
	feedBytes(ch, 'h', 'i')

	if ev := nextEvent(t, r); ev != key.NewRune('h', key.ModNone) {
		t.Errorf("got %#v", ev)
	}
	if ev := nextEvent(t, r); ev != key.NewRune('i', key.ModNone) {
		t.Errorf("got %#v", ev)
	}
}

func TestUppercaseCarriesShift(t *testing.T) {
	r, ch := newTestReader(t)
	feedBytes(ch, 'A')

	if ev := nextEvent(t, r); ev != key.NewRune('A', key.ModShift) {
		t.Errorf("got %#v", ev)
	}
}

func TestControlBytes(t *testing.T) {
	r, ch := newTestReader(t)
	feedBytes(ch, 0x01, '\r', '\t', 0x7f)

	want := []key.Event{
		key.Ctrl('a'),
		key.NewSpecial(key.KeyEnter, key.ModNone),
		key.NewSpecial(key.KeyTab, key.ModNone),
		key.NewSpecial(key.KeyBackspace, key.ModNone),
	}
	for i, w := range want {
		if ev := nextEvent(t, r); ev != w {
			t.Errorf("event %d = %#v, want %#v", i, ev, w)
		}
	}
}

func TestUTF8Rune(t *testing.T) {
	r, ch := newTestReader(t)
	feedBytes(ch, []byte("é")...)

	if ev := nextEvent(t, r); ev.Rune != 'é' {
		t.Errorf("got %#v", ev)
	}
}

func TestEscapeSequenceIsOneEvent(t *testing.T) {
	r, ch := newTestReader(t)
	feedBytes(ch, 0x1b, '[', 'A')

	if ev := nextEvent(t, r); ev != key.NewSpecial(key.KeyUp, key.ModNone) {
		t.Errorf("got %#v", ev)
	}
}

func TestOrderPreservedAcrossBurst(t *testing.T) {
	r, ch := newTestReader(t)
	// A burst mixing plain runes and a multi-byte sequence must come
	// out in terminal order with the sequence as one event.
	feedBytes(ch, 'a', 0x1b, '[', 'B', 'b')

	want := []key.Event{
		key.NewRune('a', key.ModNone),
		key.NewSpecial(key.KeyDown, key.ModNone),
		key.NewRune('b', key.ModNone),
	}
	for i, w := range want {
		if ev := nextEvent(t, r); ev != w {
			t.Errorf("event %d = %#v, want %#v", i, ev, w)
		}
	}
}

func TestAltPrefix(t *testing.T) {
	r, ch := newTestReader(t)
	feedBytes(ch, 0x1b, 'f')

	if ev := nextEvent(t, r); ev != key.Alt('f') {
		t.Errorf("got %#v", ev)
	}
}

func TestBareEscape(t *testing.T) {
	r, ch := newTestReader(t)
	feedBytes(ch, 0x1b)

	if ev := nextEvent(t, r); ev != key.NewSpecial(key.KeyEscape, key.ModNone) {
		t.Errorf("got %#v", ev)
	}
}

func TestModifiedCSI(t *testing.T) {
	r, ch := newTestReader(t)
	// ESC [ 1 ; 5 C is Ctrl+Right in xterm encoding.
	feedBytes(ch, 0x1b, '[', '1', ';', '5', 'C')

	if ev := nextEvent(t, r); ev != key.NewSpecial(key.KeyRight, key.ModCtrl) {
		t.Errorf("got %#v", ev)
	}
}

func TestShiftTab(t *testing.T) {
	r, ch := newTestReader(t)
	feedBytes(ch, 0x1b, '[', 'Z')

	if ev := nextEvent(t, r); ev != key.NewSpecial(key.KeyTab, key.ModShift) {
		t.Errorf("got %#v", ev)
	}
}

func TestInputEOF(t *testing.T) {
	src, ch := NewChanSource(1)
	r := New(src)
	r.Start()
	defer r.Close()

	close(ch)
	r.Request()

	select {
	case <-r.Available():
	case <-time.After(2 * time.Second):
		t.Fatal("no wakeup after EOF")
	}
	if _, ok := r.TryPop(); ok {
		t.Fatal("unexpected key after EOF")
	}
	if err := r.Err(); !errors.Is(err, io.EOF) {
		t.Errorf("Err = %v, want io.EOF", err)
	}
}

func TestCloseUnblocksService(t *testing.T) {
	src, _ := NewChanSource(1)
	r := New(src)
	r.Start()
	r.Request()

	done := make(chan error, 1)
	go func() { done <- r.Close() }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not unblock the service")
	}

	select {
	case <-r.Closing():
	default:
		t.Error("Closing channel not closed")
	}
}

func TestDiagnosticsRecordsKeys(t *testing.T) {
	r, ch := newTestReader(t)
	feedBytes(ch, 'x', 'y')
	nextEvent(t, r)
	nextEvent(t, r)

	recent := r.Diagnostics().Recent()
	if len(recent) != 2 {
		t.Fatalf("recorded %d keys", len(recent))
	}
	if recent[0].Event.Rune != 'x' || recent[1].Event.Rune != 'y' {
		t.Errorf("recent = %#v", recent)
	}
	if r.Diagnostics().SessionID() == "" {
		t.Error("empty session id")
	}
}
