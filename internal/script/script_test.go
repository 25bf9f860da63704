package script

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/keyline/internal/dispatch"
	"github.com/dshills/keyline/internal/engine/killring"
	"github.com/dshills/keyline/internal/input/key"
	"github.com/dshills/keyline/internal/input/mode"
	"github.com/dshills/keyline/internal/input/reader"
	"github.com/dshills/keyline/internal/linehistory"
	"github.com/dshills/keyline/internal/render"
	"github.com/dshills/keyline/internal/session"
)

func testLoop(t *testing.T) (*dispatch.Loop, *session.Session, *render.Recording) {
	t.Helper()

	src, _ := reader.NewChanSource(8)
	rd := reader.New(src)
	rd.Start()
	t.Cleanup(func() { rd.Close() })

	hist := linehistory.NewManager(0, linehistory.DupsKeepAll)
	sess := session.New(hist, killring.New(0), mode.Emacs, false)
	rec := render.NewRecording()
	return dispatch.NewLoop(rd, sess, rec), sess, rec
}

func newEngine(t *testing.T, loop *dispatch.Loop) *Engine {
	t.Helper()
	e := New(loop)
	t.Cleanup(e.Close)
	return e
}

func runKeys(t *testing.T, l *dispatch.Loop, sess *session.Session, evs ...key.Event) *dispatch.Result {
	t.Helper()
	for _, ev := range evs {
		sess.PushKey(ev)
	}
	sess.PushKey(key.NewSpecial(key.KeyEnter, key.ModNone))
	res, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestBindInstallsHandler(t *testing.T) {
	l, sess, _ := testLoop(t)
	e := newEngine(t, l)

	err := e.LoadString(`
		keyline.bind("emacs", "C-t", function(ctx)
			ctx:insert("~")
		end)
	`)
	if err != nil {
		t.Fatal(err)
	}

	res := runKeys(t, l, sess, key.Ctrl('t'), key.Ctrl('t'))
	if res.Text != "~~" {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestContextAccessors(t *testing.T) {
	l, sess, _ := testLoop(t)
	e := newEngine(t, l)

	// Wrap the line in brackets using text/cursor/set_cursor.
	err := e.LoadString(`
		keyline.bind("emacs", "C-t", function(ctx)
			local line = ctx:text()
			ctx:replace(0, #line, "[" .. line .. "]")
			ctx:set_cursor(#line + 2)
		end)
	`)
	if err != nil {
		t.Fatal(err)
	}

	sess.PushKey(key.NewRune('h', key.ModNone))
	sess.PushKey(key.NewRune('i', key.ModNone))
	res := runKeys(t, l, sess, key.Ctrl('t'))
	if res.Text != "[hi]" {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestScriptAccept(t *testing.T) {
	l, sess, _ := testLoop(t)
	e := newEngine(t, l)

	err := e.LoadString(`
		keyline.bind("emacs", "C-t", function(ctx)
			ctx:insert("done")
			ctx:accept()
		end)
	`)
	if err != nil {
		t.Fatal(err)
	}

	sess.PushKey(key.Ctrl('t'))
	res, runErr := l.Run(context.Background())
	if runErr != nil {
		t.Fatalf("Run: %v", runErr)
	}
	if res.Text != "done" {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestScriptReceivesKeyAndArg(t *testing.T) {
	l, sess, _ := testLoop(t)
	e := newEngine(t, l)

	err := e.LoadString(`
		keyline.bind("emacs", "C-t", function(ctx)
			ctx:insert(ctx.key .. "/" .. tostring(ctx.arg))
		end)
	`)
	if err != nil {
		t.Fatal(err)
	}

	res := runKeys(t, l, sess, key.Alt('3'), key.Ctrl('t'))
	if res.Text != "C-t/3" {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestScriptErrorDingsNotAborts(t *testing.T) {
	l, sess, rec := testLoop(t)
	e := newEngine(t, l)

	err := e.LoadString(`
		keyline.bind("emacs", "C-t", function(ctx)
			error("kaboom")
		end)
	`)
	if err != nil {
		t.Fatal(err)
	}

	sess.PushKey(key.NewRune('a', key.ModNone))
	res := runKeys(t, l, sess, key.Ctrl('t'))

	// The read survives: typed text is intact and accepted.
	if res.Text != "a" {
		t.Errorf("Text = %q", res.Text)
	}
	if rec.Dings == 0 {
		t.Error("script error should ding")
	}

	found := false
	for _, st := range rec.Statuses {
		if strings.Contains(st, "script error:") && strings.Contains(st, "kaboom") {
			found = true
		}
	}
	if !found {
		t.Errorf("status rows = %q", rec.Statuses)
	}
}

func TestBindRejectsUnknownTable(t *testing.T) {
	l, _, _ := testLoop(t)
	e := newEngine(t, l)

	err := e.LoadString(`keyline.bind("teco", "C-t", function() end)`)
	if err == nil || !strings.Contains(err.Error(), "unknown keymap table") {
		t.Errorf("err = %v", err)
	}
}

func TestBindRejectsBadKeySpec(t *testing.T) {
	l, _, _ := testLoop(t)
	e := newEngine(t, l)

	err := e.LoadString(`keyline.bind("emacs", "C-", function() end)`)
	if err == nil || !strings.Contains(err.Error(), "bad key spec") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadStringReportsSyntaxError(t *testing.T) {
	l, _, _ := testLoop(t)
	e := newEngine(t, l)

	if err := e.LoadString(`this is not lua`); err == nil {
		t.Error("syntax error not reported")
	}
}
