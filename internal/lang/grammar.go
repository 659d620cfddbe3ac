package lang

import (
	"embed"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

//go:embed queries/*.scm
var queryFS embed.FS

// Grammar holds tree-sitter configuration for one highlighting grammar.
type Grammar struct {
	Name string
	// Tag is the grammar tag this grammar serves (see Language.GrammarTag).
	Tag       string
	lang      *sitter.Language
	queryOnce sync.Once
	query     *sitter.Query
	queryErr  error
}

// NewParser creates a fresh tree-sitter parser for this grammar.
// Parsers are not safe for concurrent use.
func (g *Grammar) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(g.lang)
	return p
}

// HighlightQuery returns the compiled highlight query (safe to share).
func (g *Grammar) HighlightQuery() (*sitter.Query, error) {
	g.queryOnce.Do(func() {
		data, err := queryFS.ReadFile(fmt.Sprintf("queries/%s.scm", g.Name))
		if err != nil {
			g.queryErr = fmt.Errorf("reading query file: %w", err)
			return
		}
		q, err := sitter.NewQuery(data, g.lang)
		if err != nil {
			g.queryErr = fmt.Errorf("compiling query: %w", err)
			return
		}
		g.query = q
	})
	return g.query, g.queryErr
}

// Grammars maps grammar tags to their tree-sitter configuration.
// Populated by init() functions in per-grammar files.
var Grammars = map[string]*Grammar{}

// ForTag returns the grammar registered for tag, or nil.
func ForTag(tag string) *Grammar {
	return Grammars[tag]
}
