package buffer

import (
	"errors"
	"testing"
)

func TestSpliceInsert(t *testing.T) {
	b := New()
	b.SpliceInsert(0, "hello")
	if b.String() != "hello" || b.Cursor() != 5 {
		t.Fatalf("got %q cursor %d", b.String(), b.Cursor())
	}

	b.SpliceInsert(0, "ab ")
	if b.String() != "ab hello" || b.Cursor() != 3 {
		t.Fatalf("got %q cursor %d", b.String(), b.Cursor())
	}
}

func TestSpliceDelete(t *testing.T) {
	b := NewFromString("hello world")
	removed := b.SpliceDelete(5, 6)
	if removed != " world" {
		t.Errorf("removed %q", removed)
	}
	if b.String() != "hello" || b.Cursor() != 5 {
		t.Errorf("got %q cursor %d", b.String(), b.Cursor())
	}
}

func TestRuneOffsets(t *testing.T) {
	b := NewFromString("héllo")
	if b.Len() != 5 {
		t.Fatalf("Len = %d, want rune count 5", b.Len())
	}
	if b.Rune(1) != 'é' {
		t.Errorf("Rune(1) = %q", b.Rune(1))
	}
	if got := b.Substring(1, 2); got != "él" {
		t.Errorf("Substring = %q", got)
	}
}

func TestSetCursorClamping(t *testing.T) {
	b := NewFromString("abc")

	b.SetCursor(-5, 0)
	if b.Cursor() != 0 {
		t.Errorf("negative pos: cursor = %d", b.Cursor())
	}
	b.SetCursor(99, 0)
	if b.Cursor() != 3 {
		t.Errorf("past end: cursor = %d", b.Cursor())
	}

	// Negative slack keeps the cursor on the last character.
	b.SetCursor(99, -1)
	if b.Cursor() != 2 {
		t.Errorf("slack -1: cursor = %d", b.Cursor())
	}

	// An empty buffer pins the cursor at 0 regardless of slack.
	e := New()
	e.SetCursor(5, -1)
	if e.Cursor() != 0 {
		t.Errorf("empty buffer: cursor = %d", e.Cursor())
	}
}

func TestValidateRange(t *testing.T) {
	b := NewFromString("abcde")

	tests := []struct {
		start, length int
		ok            bool
	}{
		{0, 0, true},
		{0, 5, true},
		{5, 0, true},
		{2, 3, true},
		{-1, 0, false},
		{6, 0, false},
		{0, 6, false},
		{4, 2, false},
		{0, -1, false},
	}
	for _, tt := range tests {
		err := b.ValidateRange(tt.start, tt.length)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateRange(%d, %d) err = %v, want ok=%v", tt.start, tt.length, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidRange) {
			t.Errorf("error %v should wrap ErrInvalidRange", err)
		}
	}
}

func TestWordBoundaries(t *testing.T) {
	b := NewFromString("foo  bar baz")

	tests := []struct {
		pos, left, right int
	}{
		{0, 0, 3},
		{3, 0, 8},
		{5, 0, 8},
		{8, 5, 12},
		{12, 9, 12},
	}
	for _, tt := range tests {
		if got := b.WordBoundaryLeft(tt.pos); got != tt.left {
			t.Errorf("WordBoundaryLeft(%d) = %d, want %d", tt.pos, got, tt.left)
		}
		if got := b.WordBoundaryRight(tt.pos); got != tt.right {
			t.Errorf("WordBoundaryRight(%d) = %d, want %d", tt.pos, got, tt.right)
		}
	}
}

func TestLastArg(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"", ""},
		{"ls", "ls"},
		{"ls -la /tmp", "/tmp"},
		{"ls -la /tmp  ", "/tmp"},
		{"  git commit -m msg", "msg"},
	}
	for _, tt := range tests {
		if got := NewFromString(tt.line).LastArg(); got != tt.want {
			t.Errorf("LastArg(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestParseCaching(t *testing.T) {
	b := NewFromString("ls -l")
	p1 := b.Parse()
	p2 := b.Parse()
	if p1 != p2 {
		t.Error("parse result not cached across calls")
	}

	b.SpliceInsert(0, "x")
	if b.Parse() == p1 {
		t.Error("mutation did not invalidate the cached parse")
	}
}

func TestParseTokens(t *testing.T) {
	p := NewFromString(`ls -l "my file" | grep foo # note`).Parse()

	kinds := []TokenKind{TokenWord, TokenWord, TokenString, TokenOperator, TokenWord, TokenWord, TokenComment}
	if len(p.Tokens) != len(kinds) {
		t.Fatalf("got %d tokens: %+v", len(p.Tokens), p.Tokens)
	}
	for i, k := range kinds {
		if p.Tokens[i].Kind != k {
			t.Errorf("token %d kind = %s, want %s", i, p.Tokens[i].Kind, k)
		}
	}

	if len(p.Commands) != 2 {
		t.Fatalf("got %d commands", len(p.Commands))
	}
	if p.Commands[0].Tokens[0].Text != "ls" || p.Commands[1].Tokens[0].Text != "grep" {
		t.Errorf("commands = %+v", p.Commands)
	}
	if len(p.Errors) != 0 {
		t.Errorf("unexpected errors: %+v", p.Errors)
	}
}

func TestParseUnterminatedQuote(t *testing.T) {
	p := NewFromString(`echo "oops`).Parse()
	if len(p.Errors) != 1 {
		t.Fatalf("got %d errors", len(p.Errors))
	}
	if p.Errors[0].Pos != 5 {
		t.Errorf("error pos = %d", p.Errors[0].Pos)
	}
}
