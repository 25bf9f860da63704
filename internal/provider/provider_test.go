package provider

import (
	"errors"
	"testing"
)

func TestGetPrompt(t *testing.T) {
	tests := []struct {
		name string
		p    PromptProvider
		want string
	}{
		{"nil provider", nil, DefaultPrompt},
		{"static", StaticPrompt("$ "), "$ "},
		{"empty result", StaticPrompt(""), DefaultPrompt},
		{"error", PromptFunc(func(PromptContext) (string, error) {
			return "ignored", errors.New("nope")
		}), DefaultPrompt},
		{"panic", PromptFunc(func(PromptContext) (string, error) {
			panic("bad provider")
		}), DefaultPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetPrompt(tt.p, PromptLocal); got != tt.want {
				t.Errorf("GetPrompt = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPromptFuncSeesContext(t *testing.T) {
	p := PromptFunc(func(ctx PromptContext) (string, error) {
		if ctx == PromptDebug {
			return "(dbg) ", nil
		}
		return "% ", nil
	})

	if got := GetPrompt(p, PromptDebug); got != "(dbg) " {
		t.Errorf("debug prompt = %q", got)
	}
	if got := GetPrompt(p, PromptRemote); got != "% " {
		t.Errorf("remote prompt = %q", got)
	}
}

func TestNoCompletion(t *testing.T) {
	if got := (NoCompletion{}).Complete("ab", 2); got != nil {
		t.Errorf("got %v", got)
	}
}

func TestCompletionFunc(t *testing.T) {
	f := CompletionFunc(func(text string, cursor int) []string {
		return []string{text[:cursor]}
	})
	got := f.Complete("abcd", 2)
	if len(got) != 1 || got[0] != "ab" {
		t.Errorf("got %v", got)
	}
}
