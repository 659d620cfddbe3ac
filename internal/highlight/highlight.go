// Package highlight provides line-oriented syntax highlighting with lexer
// state carried from one line to the next.
package highlight

import (
	"errors"
	"slices"
	"strings"
)

// Reset clears all terminal attributes.
const Reset = "\x1b[0m"

// Grammar tags that are not tied to a notebook language.
const (
	TagMarkdown = "md"
	TagText     = "txt"
)

// ErrGrammarUnavailable is returned by an Engine that has no grammar for a tag.
var ErrGrammarUnavailable = errors.New("grammar unavailable")

// Style is the resolved appearance of a span.
type Style struct {
	Color     string // "#rrggbb", or "" for the terminal default
	Bold      bool
	Italic    bool
	Underline bool
}

// Span is a run of text sharing one style.
type Span struct {
	Text  string
	Style Style
}

// maxContext bounds how many lines a State carries.
const maxContext = 16

// State is the context carried between lines of one cell. It holds the lines
// since the last point a highlighter could restart from, never more than
// maxContext of them. The zero value is a fresh state. States are
// immutable; every method returns a new one.
type State struct {
	context []string
	lines   int
}

// Next returns the state after line, carrying line as context. When the
// context is full the oldest lines after the first are dropped: the first
// line is where the open construct started.
func (s State) Next(line string) State {
	context := append(slices.Clip(s.context), line)
	if len(context) > maxContext {
		context = append([]string{context[0]}, context[len(context)-maxContext+1:]...)
	}
	return State{context: context, lines: s.lines + 1}
}

// Advance returns the state after line without carrying any context.
func (s State) Advance() State {
	return State{lines: s.lines + 1}
}

// restart returns the state after line with line as the only context.
func (s State) restart(line string) State {
	return State{context: []string{line}, lines: s.lines + 1}
}

// Lines reports how many lines the state has absorbed.
func (s State) Lines() int {
	return s.lines
}

func (s State) text() string {
	return strings.Join(s.context, "")
}

// Highlighter colors one line at a time.
type Highlighter interface {
	// Grammar returns the grammar tag this highlighter applies.
	Grammar() string

	// HighlightLine tokenizes a single line given the state left by the
	// previous line, and returns the spans and the state after this line.
	// The spans' texts concatenate to line.
	HighlightLine(line string, prev State) ([]Span, State)
}

// Engine produces highlighters for grammar tags.
type Engine interface {
	Name() string
	Highlighter(tag string) (Highlighter, error)
}
