package highlight

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/ipyprev/internal/lang"
)

// captureTokens maps highlight query capture names to chroma token types so
// tree-sitter output is colored by the same theme as chroma output.
var captureTokens = map[string]chroma.TokenType{
	"comment":       chroma.Comment,
	"string":        chroma.LiteralString,
	"number":        chroma.LiteralNumber,
	"constant":      chroma.KeywordConstant,
	"attribute":     chroma.NameDecorator,
	"function":      chroma.NameFunction,
	"function.call": chroma.NameFunction,
	"type":          chroma.NameClass,
	"keyword":       chroma.Keyword,
}

// TreeSitterEngine highlights grammars registered in lang.Grammars.
type TreeSitterEngine struct {
	theme *Theme
}

// NewTreeSitterEngine creates a tree-sitter-backed engine.
func NewTreeSitterEngine(theme *Theme) *TreeSitterEngine {
	return &TreeSitterEngine{theme: theme}
}

// Name implements Engine.
func (e *TreeSitterEngine) Name() string {
	return "treesitter"
}

// Highlighter implements Engine.
func (e *TreeSitterEngine) Highlighter(tag string) (Highlighter, error) {
	g := lang.ForTag(tag)
	if g == nil {
		return nil, fmt.Errorf("treesitter: %q: %w", tag, ErrGrammarUnavailable)
	}
	q, err := g.HighlightQuery()
	if err != nil {
		return nil, fmt.Errorf("treesitter: %s: %w: %v", g.Name, ErrGrammarUnavailable, err)
	}
	return &treeSitterHighlighter{
		tag:    tag,
		parser: g.NewParser(),
		query:  q,
		theme:  e.theme,
	}, nil
}

// treeSitterHighlighter keeps the cell's source and syntax tree between
// calls and reparses incrementally, so each line costs about its own length.
// The State it is handed only tells it whether the call continues the cell
// it holds; anything else starts over.
type treeSitterHighlighter struct {
	tag    string
	parser *sitter.Parser
	query  *sitter.Query
	theme  *Theme

	src   []byte
	end   sitter.Point
	tree  *sitter.Tree
	lines int
}

func (h *treeSitterHighlighter) Grammar() string {
	return h.tag
}

// HighlightLine appends line to the held source, reparses it against the
// previous tree and colors the bytes of line by the first capture that
// covers them.
func (h *treeSitterHighlighter) HighlightLine(line string, prev State) ([]Span, State) {
	next := prev.Advance()
	if prev.Lines() != h.lines {
		h.reset()
	}
	if line == "" {
		h.lines = next.Lines()
		return []Span{{Text: line}}, next
	}
	valid := utf8.ValidString(line)
	text := line
	if !valid {
		text = strings.ToValidUTF8(line, "\uFFFD")
	}

	start, startPoint := len(h.src), h.end
	h.src = append(h.src, text...)
	h.end = advance(startPoint, text)
	h.lines = next.Lines()

	if h.tree != nil {
		h.tree.Edit(sitter.EditInput{
			StartIndex:  uint32(start),
			OldEndIndex: uint32(start),
			NewEndIndex: uint32(len(h.src)),
			StartPoint:  startPoint,
			OldEndPoint: startPoint,
			NewEndPoint: h.end,
		})
	}
	tree, err := h.parser.ParseCtx(context.Background(), h.tree, h.src)
	if h.tree != nil {
		h.tree.Close()
	}
	h.tree = tree
	if err != nil {
		h.reset()
		h.lines = next.Lines()
		return []Span{{Text: line}}, next
	}
	if !valid {
		return []Span{{Text: line}}, next
	}

	end := len(h.src)
	captures := make([]string, end-start)

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.SetPointRange(startPoint, h.end)
	qc.Exec(h.query, tree.RootNode())

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			a := max(int(c.Node.StartByte()), start)
			b := min(int(c.Node.EndByte()), end)
			if a >= b {
				continue
			}
			name := h.query.CaptureNameForId(c.Index)
			for i := a; i < b; i++ {
				if captures[i-start] == "" {
					captures[i-start] = name
				}
			}
		}
	}

	return h.group(line, captures), next
}

func (h *treeSitterHighlighter) reset() {
	if h.tree != nil {
		h.tree.Close()
	}
	h.src, h.end, h.tree, h.lines = nil, sitter.Point{}, nil, 0
}

// advance returns the point reached after text starting at p.
func advance(p sitter.Point, text string) sitter.Point {
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return sitter.Point{
			Row:    p.Row + uint32(strings.Count(text, "\n")),
			Column: uint32(len(text) - i - 1),
		}
	}
	return sitter.Point{Row: p.Row, Column: p.Column + uint32(len(text))}
}

// group merges runs of bytes sharing a capture into spans.
func (h *treeSitterHighlighter) group(line string, captures []string) []Span {
	var spans []Span
	runStart := 0
	for i := 1; i <= len(line); i++ {
		if i < len(line) && captures[i] == captures[runStart] {
			continue
		}
		tt, ok := captureTokens[captures[runStart]]
		if !ok {
			tt = chroma.Text
		}
		spans = append(spans, Span{Text: line[runStart:i], Style: h.theme.StyleFor(tt)})
		runStart = i
	}
	return spans
}
