package keyline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/keyline"
	"github.com/dshills/keyline/internal/input/reader"
	"github.com/dshills/keyline/internal/render"
)

// TestHostRegisteredHandler exercises the editor exactly as an
// embedding host does: only names exported from the root package, with
// a custom handler bound through a keymap file.
func TestHostRegisteredHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.toml")
	km := `
[[bindings]]
keys = "C-t"
action = "host.stamp"
description = "insert a marker"
`
	if err := os.WriteFile(path, []byte(km), 0o644); err != nil {
		t.Fatal(err)
	}

	src, ch := reader.NewChanSource(64)
	cfg := keyline.DefaultConfig()
	cfg.Input = nil
	cfg.HistoryFile = ""
	cfg.KeymapFile = path
	cfg.Source = src
	cfg.Renderer = render.NewRecording()

	ed := keyline.New(cfg)
	defer ed.Close()

	var stamp keyline.HandlerFunc = func(c *keyline.HandlerContext) error {
		return c.Sess.InsertAtCursor("<host>")
	}
	ed.RegisterHandler("host.stamp", stamp)

	for _, b := range []byte("a\x14\r") {
		ch <- b
	}

	line, err := ed.ReadLine(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if line != "a<host>" {
		t.Errorf("line = %q", line)
	}
}
