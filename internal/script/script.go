// Package script embeds a Lua interpreter so hosts can bind keys to
// user-written handlers without recompiling. A script calls
// keyline.bind(table, keyspec, fn); fn receives a context table with
// accessors and edit operations for the live session, invoked
// colon-style:
//
//	keyline.bind("emacs", "A-u", function(ctx)
//	    ctx:insert("~")
//	end)
package script

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keyline/internal/dispatch"
	"github.com/dshills/keyline/internal/input/key"
	"github.com/dshills/keyline/internal/input/keymap"
	"github.com/dshills/keyline/internal/input/mode"
)

// Engine hosts one Lua state bound to a dispatch loop. The state is
// only ever touched from the foreground task.
type Engine struct {
	mu   sync.Mutex
	L    *lua.LState
	loop *dispatch.Loop

	// seq numbers generated action names.
	seq int
}

// New creates an engine bound to the loop and installs the keyline
// module into the Lua state.
func New(loop *dispatch.Loop) *Engine {
	e := &Engine{
		L:    lua.NewState(),
		loop: loop,
	}
	e.install()
	return e
}

// Close shuts the Lua state down.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.L.Close()
}

// LoadFile runs a script file, letting it install bindings.
func (e *Engine) LoadFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.L.DoFile(path); err != nil {
		return fmt.Errorf("loading script %s: %w", path, err)
	}
	return nil
}

// LoadString runs script source, used by tests and inline config.
func (e *Engine) LoadString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.L.DoString(src); err != nil {
		return fmt.Errorf("loading script: %w", err)
	}
	return nil
}

var tableModes = map[string]mode.Mode{
	"emacs":      mode.Emacs,
	"vi-insert":  mode.ViInsert,
	"vi-command": mode.ViCommand,
}

// install registers the keyline module.
func (e *Engine) install() {
	mod := e.L.NewTable()
	e.L.SetGlobal("keyline", mod)
	e.L.SetField(mod, "bind", e.L.NewFunction(e.luaBind))
}

// luaBind implements keyline.bind(table, keyspec, fn).
func (e *Engine) luaBind(L *lua.LState) int {
	tableName := L.CheckString(1)
	spec := L.CheckString(2)
	fn := L.CheckFunction(3)

	m, ok := tableModes[tableName]
	if !ok {
		L.RaiseError("unknown keymap table %q", tableName)
		return 0
	}
	ev, err := key.Parse(spec)
	if err != nil {
		L.RaiseError("bad key spec %q: %s", spec, err)
		return 0
	}

	e.seq++
	action := fmt.Sprintf("lua.%s.%d", tableName, e.seq)

	e.loop.RegisterHandler(action, e.handler(fn))
	e.loop.Table(m).Bind(ev, keymap.NewBinding(action, "script "+spec))
	return 0
}

// handler wraps a Lua function as a dispatch handler. Script errors
// ring the bell and surface in the status row instead of aborting
// the read.
func (e *Engine) handler(fn *lua.LFunction) dispatch.HandlerFunc {
	return func(c *dispatch.Context) error {
		e.mu.Lock()
		defer e.mu.Unlock()

		ctx := e.contextTable(c)
		err := e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, ctx)
		if err != nil {
			c.Ding()
			e.reportError(c, err)
		}
		return nil
	}
}

func (e *Engine) reportError(c *dispatch.Context, err error) {
	msg := err.Error()
	if len(msg) > 120 {
		msg = msg[:120]
	}
	c.Loop.SetStatus("script error: " + msg)
}

// contextTable builds the per-invocation context passed to scripts.
func (e *Engine) contextTable(c *dispatch.Context) *lua.LTable {
	L := e.L
	t := L.NewTable()

	L.SetField(t, "key", lua.LString(c.Key.String()))
	L.SetField(t, "arg", lua.LNumber(c.ArgInt(1)))

	L.SetField(t, "text", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(c.Sess.Text()))
		return 1
	}))
	L.SetField(t, "cursor", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(c.Sess.Cursor()))
		return 1
	}))
	L.SetField(t, "set_cursor", L.NewFunction(func(L *lua.LState) int {
		c.Sess.SetCursor(L.CheckInt(2))
		return 0
	}))
	L.SetField(t, "insert", L.NewFunction(func(L *lua.LState) int {
		if err := c.Sess.InsertAtCursor(L.CheckString(2)); err != nil {
			L.RaiseError("insert: %s", err)
		}
		return 0
	}))
	L.SetField(t, "delete", L.NewFunction(func(L *lua.LState) int {
		if err := c.Sess.Delete(L.CheckInt(2), L.CheckInt(3)); err != nil {
			L.RaiseError("delete: %s", err)
		}
		return 0
	}))
	L.SetField(t, "replace", L.NewFunction(func(L *lua.LState) int {
		if err := c.Sess.Replace(L.CheckInt(2), L.CheckInt(3), L.CheckString(4), "script"); err != nil {
			L.RaiseError("replace: %s", err)
		}
		return 0
	}))
	L.SetField(t, "accept", L.NewFunction(func(L *lua.LState) int {
		c.Sess.MarkAccepted()
		return 0
	}))
	L.SetField(t, "ding", L.NewFunction(func(L *lua.LState) int {
		c.Ding()
		return 0
	}))

	return t
}
