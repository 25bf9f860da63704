// Package main is a small host shell demonstrating the keyline
// editor: it reads lines, runs them through /bin/sh and feeds the
// results back to the editor's prediction hook.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/dshills/keyline"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := keyline.DefaultConfig()

	var vi bool
	var showVersion bool
	flag.BoolVar(&vi, "vi", false, "start in vi editing mode")
	flag.StringVar(&cfg.HistoryFile, "history", defaultHistoryPath(), "history file path")
	flag.StringVar(&cfg.KeymapFile, "keymap", "", "user keymap file (toml, yaml or json)")
	flag.BoolVar(&cfg.WatchKeymap, "watch-keymap", false, "reload the keymap file on change")
	flag.StringVar(&cfg.ScriptFile, "script", "", "lua script installing key handlers")
	flag.BoolVar(&cfg.MirrorClipboard, "clipboard", false, "mirror kills into the system clipboard")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("kldemo %s (%s)\n", version, commit)
		return 0
	}

	if vi {
		cfg.Mode = keyline.EditModeVi
	}
	cfg.NormalizeInput = true
	cfg.HistoryDups = keyline.DupsIgnoreConsecutive
	if cfg.Prompt == nil {
		cfg.Prompt = keyline.StaticPrompt("kldemo> ")
	}
	cfg.Completion = keyline.CompletionFunc(completeCommand)

	ed := keyline.New(cfg)
	defer ed.Close()

	// Ctrl-C during a read cancels it through the context; the
	// in-progress line is parked and restored on the next read.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT)
	defer func() { stop() }()

	for {
		line, err := ed.ReadLine(ctx)
		switch {
		case errors.Is(err, keyline.ErrInterrupted):
			stop()
			ctx, stop = signal.NotifyContext(context.Background(), syscall.SIGINT)
			continue
		case errors.Is(err, keyline.ErrClosed):
			return 0
		case errors.Is(err, keyline.ErrExitRequested):
			execute(ed, line)
			return 0
		case err != nil:
			fmt.Fprintf(os.Stderr, "kldemo: %v\n", err)
			return 1
		}

		if strings.TrimSpace(line) == "exit" {
			return 0
		}
		execute(ed, line)
	}
}

func execute(ed *keyline.Editor, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	cmd := exec.Command("/bin/sh", "-c", line)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()

	ed.Executed(line, err == nil)
}

// completeCommand offers executables from PATH matching the word
// before the cursor.
func completeCommand(text string, cursor int) []string {
	runes := []rune(text)
	if cursor > len(runes) {
		cursor = len(runes)
	}
	start := cursor
	for start > 0 && runes[start-1] != ' ' {
		start--
	}
	word := string(runes[start:cursor])
	if word == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, ent := range entries {
			name := ent.Name()
			if strings.HasPrefix(name, word) && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	if len(out) > 50 {
		out = out[:50]
	}
	return out
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kldemo_history")
}
