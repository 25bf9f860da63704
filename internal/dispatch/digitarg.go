package dispatch

import (
	"context"
	"errors"
	"strconv"

	"github.com/dshills/keyline/internal/input/key"
	"github.com/dshills/keyline/internal/input/keymap"
)

// digitArgument accumulates a numeric argument and dispatches the
// terminating key with it. The first key has already been consumed
// and was bound to the digit-argument action.
//
// The negation key toggles the sign and seeds a default magnitude of
// 1, which the first explicit digit replaces. Abort and cancel end
// the accumulation without dispatching the terminating key. A key
// that is neither digit nor sign terminates: the accumulated value is
// parsed and the key redispatched with it, or the bell rings if the
// value does not parse.
func (l *Loop) digitArgument(ctx context.Context, first key.Event) error {
	neg := false
	digits := ""
	seeded := false

	if first.Rune == '-' {
		neg = true
		digits = "1"
		seeded = true
	} else {
		digits = string(first.Rune)
	}

	show := func() {
		acc := digits
		if neg {
			acc = "-" + acc
		}
		l.renderer.SetStatus("digit-argument: " + acc)
	}
	show()
	defer l.renderer.ClearStatus()

	for {
		ev, err := l.fetchKey(ctx)
		if err != nil {
			if errors.Is(err, errAcceptedIdle) {
				return nil
			}
			return err
		}

		table := l.tables[l.sess.Mode()]
		b, bound := lookup(table, ev)

		// A bound negation key toggles the sign; any plain digit
		// extends the magnitude, bound or not, so vi's "20" works
		// even though 0 is a motion.
		if bound && b.Action == keymap.ActionDigitArgument && ev.Rune == '-' {
			neg = !neg
			show()
			continue
		}
		if ev.Key == key.KeyRune && !ev.Modifiers.HasCtrl() &&
			ev.Rune >= '0' && ev.Rune <= '9' {
			if seeded {
				digits = ""
				seeded = false
			}
			digits += string(ev.Rune)
			show()
			continue
		}

		if bound && (b.Action == keymap.ActionAbort || b.Action == keymap.ActionCancelLine) {
			// Consumed: the argument is discarded and the key is
			// not redispatched.
			return nil
		}

		n, perr := strconv.Atoi(digits)
		if perr != nil {
			l.renderer.Ding()
			return nil
		}
		if neg {
			n = -n
		}
		l.renderer.ClearStatus()

		if bound {
			if b.Action == keymap.ActionChord {
				return l.dispatchChord(ctx, table, ev, n)
			}
			return l.execute(b, ev, n)
		}
		if l.sess.Mode().SelfInserts() && ev.IsChar() {
			return l.execute(keymap.NewBinding(keymap.ActionSelfInsert, ""), ev, n)
		}
		l.renderer.Ding()
		return nil
	}
}
