package highlight

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// ChromaEngine highlights with chroma's regex lexers.
type ChromaEngine struct {
	theme *Theme
}

// NewChromaEngine creates a chroma-backed engine.
func NewChromaEngine(theme *Theme) *ChromaEngine {
	return &ChromaEngine{theme: theme}
}

// Name implements Engine.
func (e *ChromaEngine) Name() string {
	return "chroma"
}

// Highlighter returns a highlighter for the lexer registered for files with
// the extension tag.
func (e *ChromaEngine) Highlighter(tag string) (Highlighter, error) {
	if tag == "" {
		return nil, fmt.Errorf("chroma: empty tag: %w", ErrGrammarUnavailable)
	}
	lexer := lexers.Match("cell." + tag)
	if lexer == nil {
		return nil, fmt.Errorf("chroma: %q: %w", tag, ErrGrammarUnavailable)
	}
	return &chromaHighlighter{tag: tag, lexer: lexer, theme: e.theme}, nil
}

type chromaHighlighter struct {
	tag   string
	lexer chroma.Lexer
	theme *Theme
}

func (h *chromaHighlighter) Grammar() string {
	return h.tag
}

// HighlightLine lexes the carried context plus line, so multi-line
// constructs opened on earlier lines color this one correctly. When line
// lexes the same on its own, the lexer was back at its root state where
// line starts and the context restarts from line.
func (h *chromaHighlighter) HighlightLine(line string, prev State) ([]Span, State) {
	if !utf8.ValidString(line) {
		return []Span{{Text: line}}, prev.Advance()
	}

	context := prev.text()
	tokens, err := h.tokenise(context + line)
	if err != nil {
		return []Span{{Text: line}}, prev.Advance()
	}
	own := clip(tokens, len(context), len(context)+len(line))
	if covered(own) != len(line) {
		return []Span{{Text: line}}, prev.Advance()
	}

	next := prev.Next(line)
	if context != "" {
		if alone, err := h.tokenise(line); err == nil && slices.Equal(coalesce(own), coalesce(alone)) {
			next = prev.restart(line)
		}
	}

	spans := make([]Span, len(own))
	for i, tok := range own {
		spans[i] = Span{Text: tok.Value, Style: h.theme.StyleFor(tok.Type)}
	}
	return spans, next
}

func (h *chromaHighlighter) tokenise(text string) ([]chroma.Token, error) {
	it, err := h.lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, text)
	if err != nil {
		return nil, err
	}
	var tokens []chroma.Token
	for tok := it(); tok != chroma.EOF; tok = it() {
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// clip returns the parts of tokens that fall inside [start, end) of the
// concatenated token text.
func clip(tokens []chroma.Token, start, end int) []chroma.Token {
	var out []chroma.Token
	offset := 0
	for _, tok := range tokens {
		tokStart, tokEnd := offset, offset+len(tok.Value)
		offset = tokEnd
		if tokEnd <= start {
			continue
		}
		if tokStart >= end {
			break
		}
		a, b := max(tokStart, start), min(tokEnd, end)
		out = append(out, chroma.Token{Type: tok.Type, Value: tok.Value[a-tokStart : b-tokStart]})
	}
	return out
}

// coalesce merges adjacent tokens of the same type.
func coalesce(tokens []chroma.Token) []chroma.Token {
	var out []chroma.Token
	for _, tok := range tokens {
		if n := len(out); n > 0 && out[n-1].Type == tok.Type {
			out[n-1].Value += tok.Value
			continue
		}
		out = append(out, tok)
	}
	return out
}

func covered(tokens []chroma.Token) int {
	n := 0
	for _, tok := range tokens {
		n += len(tok.Value)
	}
	return n
}
