package keyline

import (
	"io"
	"os"
	"strconv"

	"github.com/dshills/keyline/internal/dispatch"
	"github.com/dshills/keyline/internal/input/reader"
	"github.com/dshills/keyline/internal/linehistory"
	"github.com/dshills/keyline/internal/provider"
	"github.com/dshills/keyline/internal/render"
)

// Re-exported collaborator types so hosts can configure the editor
// without reaching into internal packages.
type (
	// PromptProvider supplies prompt text.
	PromptProvider = provider.PromptProvider
	// PromptContext selects the prompt variant.
	PromptContext = provider.PromptContext
	// StaticPrompt is a fixed prompt string.
	StaticPrompt = provider.StaticPrompt
	// CompletionProvider produces completion candidates.
	CompletionProvider = provider.CompletionProvider
	// CompletionFunc adapts a function to CompletionProvider.
	CompletionFunc = provider.CompletionFunc
	// PredictionEngine observes accepted and executed lines.
	PredictionEngine = provider.PredictionEngine

	// DuplicatePolicy controls history duplicate handling.
	DuplicatePolicy = linehistory.DuplicatePolicy
	// SavePolicy controls when history is persisted.
	SavePolicy = linehistory.SavePolicy

	// HandlerContext carries the state passed to a key handler.
	HandlerContext = dispatch.Context
	// HandlerFunc executes one bound action; hosts register these with
	// Editor.RegisterHandler and bind them through a keymap file.
	HandlerFunc = dispatch.HandlerFunc
)

// Re-exported policy values.
const (
	DupsKeepAll           = linehistory.DupsKeepAll
	DupsIgnoreConsecutive = linehistory.DupsIgnoreConsecutive

	SaveIncrementally = linehistory.SaveIncrementally
	SaveAtExit        = linehistory.SaveAtExit
	SaveNever         = linehistory.SaveNever

	PromptLocal  = provider.PromptLocal
	PromptRemote = provider.PromptRemote
	PromptDebug  = provider.PromptDebug
)

// EditMode selects the initial key table family.
type EditMode string

const (
	// EditModeEmacs uses emacs-style bindings.
	EditModeEmacs EditMode = "emacs"
	// EditModeVi starts in vi insert mode.
	EditModeVi EditMode = "vi"
)

// Environment variable overrides.
const (
	envHistoryFile = "KEYLINE_HISTORY_FILE"
	envHistorySize = "KEYLINE_HISTORY_SIZE"
	envPrompt      = "KEYLINE_PROMPT"
)

// Config controls an Editor. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// Mode is the initial editing mode.
	Mode EditMode

	// HistoryFile is the persistence path; empty disables file
	// persistence.
	HistoryFile string
	// HistorySize bounds the in-memory history.
	HistorySize int
	// HistoryDups controls duplicate handling.
	HistoryDups linehistory.DuplicatePolicy
	// SavePolicy controls when history reaches the file.
	SavePolicy linehistory.SavePolicy

	// MirrorClipboard mirrors kills into the system clipboard.
	MirrorClipboard bool
	// NormalizeInput applies NFC to inserted text.
	NormalizeInput bool

	// Prompt supplies prompt text; nil uses the default prompt.
	Prompt provider.PromptProvider
	// PromptContext selects the prompt variant for this host.
	PromptContext provider.PromptContext

	// Completion supplies tab-completion candidates.
	Completion provider.CompletionProvider
	// Prediction observes accepted and executed lines.
	Prediction provider.PredictionEngine

	// OnIdle runs when a key wait exceeds the idle timeout, letting
	// the host pump background events.
	OnIdle func()

	// KeymapFile is an optional user keymap (TOML, YAML or JSON).
	KeymapFile string
	// WatchKeymap reloads KeymapFile when it changes.
	WatchKeymap bool
	// ScriptFile is an optional Lua script installing handlers.
	ScriptFile string

	// Input and Output default to the process terminal.
	Input  *os.File
	Output io.Writer

	// Source replaces the terminal byte source; when set the
	// interactive-console check is skipped. Tests use this.
	Source reader.ByteSource
	// Renderer replaces the ANSI renderer. Tests use this.
	Renderer render.Renderer
}

// DefaultConfig returns the standard configuration with environment
// overrides applied.
func DefaultConfig() Config {
	cfg := Config{
		Mode:        EditModeEmacs,
		HistorySize: linehistory.DefaultMaxEntries,
		HistoryDups: linehistory.DupsIgnoreConsecutive,
		SavePolicy:  linehistory.SaveIncrementally,
		Input:       os.Stdin,
		Output:      os.Stdout,
	}

	if v := os.Getenv(envHistoryFile); v != "" {
		cfg.HistoryFile = v
	}
	if v := os.Getenv(envHistorySize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistorySize = n
		}
	}
	if v := os.Getenv(envPrompt); v != "" {
		cfg.Prompt = provider.StaticPrompt(v)
	}

	return cfg
}
