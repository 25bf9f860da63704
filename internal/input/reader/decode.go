package reader

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/keyline/internal/input/key"
)

// Decode timing policy. Escape disambiguation waits escTimeout for a
// continuation byte; mid-sequence gaps retry in seqRetry slices up to
// seqDeadline so a torn sequence cannot stall the service.
const (
	escTimeout  = 50 * time.Millisecond
	seqRetry    = 10 * time.Millisecond
	seqDeadline = 250 * time.Millisecond
)

// decodeOne reads and decodes exactly one logical key.
// The first byte is awaited with the given timeout; ok is false when
// that wait timed out.
func (r *Reader) decodeOne(timeout time.Duration) (key.Event, bool, error) {
	b, ok, err := r.src.ReadByte(timeout)
	if err != nil || !ok {
		return key.Event{}, false, err
	}
	ev, err := r.decodeFrom(b)
	if err != nil {
		return key.Event{}, false, err
	}
	return ev, true, nil
}

// decodeFrom decodes a logical key starting from an already-read byte.
func (r *Reader) decodeFrom(b byte) (key.Event, error) {
	switch {
	case b == 0x1b:
		return r.decodeEscape()
	case b == 0x00:
		return key.NewRune('@', key.ModCtrl), nil
	case b == '\t':
		return key.NewSpecial(key.KeyTab, key.ModNone), nil
	case b == '\r' || b == '\n':
		return key.NewSpecial(key.KeyEnter, key.ModNone), nil
	case b == 0x08 || b == 0x7f:
		return key.NewSpecial(key.KeyBackspace, key.ModNone), nil
	case b < 0x1b:
		return key.NewRune(rune('a'+b-1), key.ModCtrl), nil
	case b < 0x20:
		// 0x1c..0x1f: Ctrl+\ Ctrl+] Ctrl+^ Ctrl+_
		return key.NewRune('\\'+rune(b-0x1c), key.ModCtrl), nil
	default:
		return r.decodeRune(b)
	}
}

// decodeRune completes a UTF-8 sequence whose first byte is b.
func (r *Reader) decodeRune(b byte) (key.Event, error) {
	buf := []byte{b}
	want := utf8ByteCount(b)
	for len(buf) < want {
		nb, ok, err := r.src.ReadByte(seqRetry)
		if err != nil {
			return key.Event{}, err
		}
		if !ok {
			break
		}
		buf = append(buf, nb)
	}

	ru, _ := utf8.DecodeRune(buf)
	if ru == utf8.RuneError {
		ru = rune(b)
	}

	var mods key.Modifier
	if unicode.IsUpper(ru) {
		mods = key.ModShift
	}
	return key.NewRune(ru, mods), nil
}

// utf8ByteCount returns the expected sequence length for a leading byte.
func utf8ByteCount(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xe0 == 0xc0:
		return 2
	case b&0xf0 == 0xe0:
		return 3
	case b&0xf8 == 0xf0:
		return 4
	default:
		return 1
	}
}

// decodeEscape decodes what follows an ESC byte: a bare Escape, an
// Alt-modified key, a CSI sequence or an SS3 sequence.
func (r *Reader) decodeEscape() (key.Event, error) {
	b, ok, err := r.src.ReadByte(escTimeout)
	if err != nil {
		return key.Event{}, err
	}
	if !ok {
		return key.NewSpecial(key.KeyEscape, key.ModNone), nil
	}

	switch b {
	case '[':
		return r.decodeCSI()
	case 'O':
		return r.decodeSS3()
	case 0x1b:
		return key.NewSpecial(key.KeyEscape, key.ModAlt), nil
	default:
		ev, err := r.decodeFrom(b)
		if err != nil {
			return key.Event{}, err
		}
		ev.Modifiers = ev.Modifiers.With(key.ModAlt)
		return ev, nil
	}
}

// readSeqByte reads one mid-sequence byte, retrying in bounded slices
// until the burst deadline.
func (r *Reader) readSeqByte(deadline time.Time) (byte, bool, error) {
	for {
		b, ok, err := r.src.ReadByte(seqRetry)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return b, true, nil
		}
		if !time.Now().Before(deadline) {
			return 0, false, nil
		}
	}
}

// decodeCSI decodes an ESC [ sequence: parameter bytes then a final
// byte in the range 0x40..0x7e.
func (r *Reader) decodeCSI() (key.Event, error) {
	deadline := time.Now().Add(seqDeadline)
	var params []byte
	for {
		b, ok, err := r.readSeqByte(deadline)
		if err != nil {
			return key.Event{}, err
		}
		if !ok {
			// Torn sequence: surface the Escape rather than stalling.
			return key.NewSpecial(key.KeyEscape, key.ModNone), nil
		}
		if b >= 0x40 && b <= 0x7e {
			return csiEvent(params, b), nil
		}
		params = append(params, b)
		if len(params) > 16 {
			return key.NewSpecial(key.KeyEscape, key.ModNone), nil
		}
	}
}

// csiEvent maps a complete CSI sequence to a key event.
func csiEvent(params []byte, final byte) key.Event {
	num, mods := csiParams(params)

	switch final {
	case 'A':
		return key.NewSpecial(key.KeyUp, mods)
	case 'B':
		return key.NewSpecial(key.KeyDown, mods)
	case 'C':
		return key.NewSpecial(key.KeyRight, mods)
	case 'D':
		return key.NewSpecial(key.KeyLeft, mods)
	case 'H':
		return key.NewSpecial(key.KeyHome, mods)
	case 'F':
		return key.NewSpecial(key.KeyEnd, mods)
	case 'Z':
		return key.NewSpecial(key.KeyTab, mods.With(key.ModShift))
	case 'P', 'Q', 'R', 'S':
		return key.NewSpecial(key.KeyF1+key.Key(final-'P'), mods)
	case '~':
		return tildeEvent(num, mods)
	default:
		return key.NewSpecial(key.KeyNone, key.ModNone)
	}
}

// csiParams splits "5;3" style parameters into the leading number and
// the xterm modifier mask.
func csiParams(params []byte) (int, key.Modifier) {
	num := 0
	modCode := 0
	field := &num
	for _, b := range params {
		if b == ';' {
			field = &modCode
			continue
		}
		if b >= '0' && b <= '9' {
			*field = *field*10 + int(b-'0')
		}
	}

	var mods key.Modifier
	if modCode > 1 {
		bits := modCode - 1
		if bits&1 != 0 {
			mods = mods.With(key.ModShift)
		}
		if bits&2 != 0 {
			mods = mods.With(key.ModAlt)
		}
		if bits&4 != 0 {
			mods = mods.With(key.ModCtrl)
		}
	}
	return num, mods
}

// tildeEvent maps CSI n ~ sequences.
func tildeEvent(num int, mods key.Modifier) key.Event {
	switch num {
	case 1, 7:
		return key.NewSpecial(key.KeyHome, mods)
	case 2:
		return key.NewSpecial(key.KeyInsert, mods)
	case 3:
		return key.NewSpecial(key.KeyDelete, mods)
	case 4, 8:
		return key.NewSpecial(key.KeyEnd, mods)
	case 5:
		return key.NewSpecial(key.KeyPageUp, mods)
	case 6:
		return key.NewSpecial(key.KeyPageDown, mods)
	case 11, 12, 13, 14, 15:
		return key.NewSpecial(key.KeyF1+key.Key(num-11), mods)
	case 17, 18, 19, 20, 21:
		return key.NewSpecial(key.KeyF6+key.Key(num-17), mods)
	case 23, 24:
		return key.NewSpecial(key.KeyF11+key.Key(num-23), mods)
	default:
		return key.NewSpecial(key.KeyNone, mods)
	}
}

// decodeSS3 decodes an ESC O sequence (application keypad mode).
func (r *Reader) decodeSS3() (key.Event, error) {
	deadline := time.Now().Add(seqDeadline)
	b, ok, err := r.readSeqByte(deadline)
	if err != nil {
		return key.Event{}, err
	}
	if !ok {
		return key.NewSpecial(key.KeyEscape, key.ModNone), nil
	}

	switch b {
	case 'A':
		return key.NewSpecial(key.KeyUp, key.ModNone), nil
	case 'B':
		return key.NewSpecial(key.KeyDown, key.ModNone), nil
	case 'C':
		return key.NewSpecial(key.KeyRight, key.ModNone), nil
	case 'D':
		return key.NewSpecial(key.KeyLeft, key.ModNone), nil
	case 'H':
		return key.NewSpecial(key.KeyHome, key.ModNone), nil
	case 'F':
		return key.NewSpecial(key.KeyEnd, key.ModNone), nil
	case 'P', 'Q', 'R', 'S':
		return key.NewSpecial(key.KeyF1+key.Key(b-'P'), key.ModNone), nil
	default:
		return key.NewSpecial(key.KeyNone, key.ModNone), nil
	}
}
