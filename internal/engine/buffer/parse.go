package buffer

import "unicode"

// TokenKind classifies a lexed token.
type TokenKind uint8

const (
	// TokenWord is a bare word.
	TokenWord TokenKind = iota
	// TokenString is a quoted string, quotes included.
	TokenString
	// TokenOperator is a shell operator (|, ;, &, <, >).
	TokenOperator
	// TokenComment runs from # to end of line.
	TokenComment
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	case TokenComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Token is one lexed span of the line.
type Token struct {
	Kind  TokenKind
	Start int // rune offset, inclusive
	End   int // rune offset, exclusive
	Text  string
}

// ParseError describes a problem found while lexing.
type ParseError struct {
	Pos     int
	Message string
}

// Command is one pipeline segment: the tokens between operators.
// The command list is the line's syntax tree.
type Command struct {
	Tokens []Token
}

// Parse is the cached result of lexing the buffer.
type Parse struct {
	Tokens   []Token
	Errors   []ParseError
	Commands []Command
}

// Parse lexes the buffer, returning a cached result until the next
// mutation.
func (b *Buffer) Parse() *Parse {
	if b.parse != nil {
		return b.parse
	}
	b.parse = lex(b.text)
	return b.parse
}

func lex(text []rune) *Parse {
	p := &Parse{}
	n := len(text)
	i := 0

	flushCommand := func(from int) int {
		var cmd Command
		for _, t := range p.Tokens[from:] {
			if t.Kind != TokenOperator {
				cmd.Tokens = append(cmd.Tokens, t)
			}
		}
		if len(cmd.Tokens) > 0 {
			p.Commands = append(p.Commands, cmd)
		}
		return len(p.Tokens)
	}
	segStart := 0

	for i < n {
		r := text[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '#':
			p.Tokens = append(p.Tokens, Token{
				Kind: TokenComment, Start: i, End: n, Text: string(text[i:n]),
			})
			i = n

		case r == '\'' || r == '"':
			quote := r
			start := i
			i++
			closed := false
			for i < n {
				if text[i] == '\\' && quote == '"' && i+1 < n {
					i += 2
					continue
				}
				if text[i] == quote {
					i++
					closed = true
					break
				}
				i++
			}
			p.Tokens = append(p.Tokens, Token{
				Kind: TokenString, Start: start, End: i, Text: string(text[start:i]),
			})
			if !closed {
				p.Errors = append(p.Errors, ParseError{
					Pos:     start,
					Message: "unterminated " + string(quote) + " quote",
				})
			}

		case r == '|' || r == ';' || r == '&' || r == '<' || r == '>':
			p.Tokens = append(p.Tokens, Token{
				Kind: TokenOperator, Start: i, End: i + 1, Text: string(r),
			})
			i++
			segStart = flushCommand(segStart)

		default:
			start := i
			for i < n && !unicode.IsSpace(text[i]) && !isMeta(text[i]) {
				if text[i] == '\\' && i+1 < n {
					i++
				}
				i++
			}
			p.Tokens = append(p.Tokens, Token{
				Kind: TokenWord, Start: start, End: i, Text: string(text[start:i]),
			})
		}
	}
	flushCommand(segStart)

	return p
}

func isMeta(r rune) bool {
	switch r {
	case '|', ';', '&', '<', '>', '\'', '"', '#':
		return true
	}
	return false
}
