// Package provider defines the external collaborators of the line
// editor: completion, prediction and prompt text. The core only calls
// these interfaces; generation lives with the host.
package provider

// CompletionProvider produces completion candidates for tab cycling.
type CompletionProvider interface {
	// Complete returns candidates for the word ending at cursor.
	Complete(text string, cursor int) []string
}

// CompletionFunc adapts a function to CompletionProvider.
type CompletionFunc func(text string, cursor int) []string

// Complete implements CompletionProvider.
func (f CompletionFunc) Complete(text string, cursor int) []string {
	return f(text, cursor)
}

// NoCompletion returns no candidates.
type NoCompletion struct{}

// Complete implements CompletionProvider.
func (NoCompletion) Complete(string, int) []string { return nil }

// PredictionEngine observes accepted and executed lines.
type PredictionEngine interface {
	// OnAccepted is called when a line is accepted.
	OnAccepted(line string)
	// OnExecuted is called after the host ran the line.
	OnExecuted(line string, success bool)
}

// NoPrediction ignores all notifications.
type NoPrediction struct{}

// OnAccepted implements PredictionEngine.
func (NoPrediction) OnAccepted(string) {}

// OnExecuted implements PredictionEngine.
func (NoPrediction) OnExecuted(string, bool) {}

// PromptContext selects the prompt variant.
type PromptContext uint8

const (
	// PromptLocal is the ordinary local prompt.
	PromptLocal PromptContext = iota
	// PromptRemote is used inside a remote session.
	PromptRemote
	// PromptDebug is used at a debugger breakpoint.
	PromptDebug
)

// PromptProvider supplies the prompt text for a context.
type PromptProvider interface {
	Prompt(ctx PromptContext) (string, error)
}

// PromptFunc adapts a function to PromptProvider.
type PromptFunc func(ctx PromptContext) (string, error)

// Prompt implements PromptProvider.
func (f PromptFunc) Prompt(ctx PromptContext) (string, error) {
	return f(ctx)
}

// DefaultPrompt is used when no provider is set or a provider fails.
const DefaultPrompt = "> "

// StaticPrompt always returns the same text.
type StaticPrompt string

// Prompt implements PromptProvider.
func (s StaticPrompt) Prompt(PromptContext) (string, error) {
	return string(s), nil
}

// GetPrompt resolves the prompt, falling back to DefaultPrompt on a
// nil provider, an error, or a panicking provider.
func GetPrompt(p PromptProvider, ctx PromptContext) (prompt string) {
	prompt = DefaultPrompt
	if p == nil {
		return prompt
	}
	defer func() {
		if recover() != nil {
			prompt = DefaultPrompt
		}
	}()

	got, err := p.Prompt(ctx)
	if err != nil || got == "" {
		return DefaultPrompt
	}
	return got
}
