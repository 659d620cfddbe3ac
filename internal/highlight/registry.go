package highlight

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"

	"github.com/phobologic/ipyprev/internal/logger"
)

// Engine names accepted by NewRegistry.
const (
	EngineChroma     = "chroma"
	EngineTreeSitter = "treesitter"
)

// Registry picks a highlighter for a grammar tag from an ordered list of
// engines, falling back to plain text when none can serve it.
type Registry struct {
	engines []Engine
	theme   *Theme
}

// NewRegistry builds the engine chain for the preferred engine. Chroma is
// always last in the chain since it covers every grammar tag in use.
func NewRegistry(preferred string, theme *Theme) (*Registry, error) {
	var engines []Engine
	switch preferred {
	case EngineChroma, "":
	case EngineTreeSitter:
		engines = append(engines, NewTreeSitterEngine(theme))
	default:
		return nil, fmt.Errorf("unknown highlighting engine %q", preferred)
	}
	engines = append(engines, NewChromaEngine(theme))
	return &Registry{engines: engines, theme: theme}, nil
}

// NewRegistryWith builds a registry over explicit engines.
func NewRegistryWith(theme *Theme, engines ...Engine) *Registry {
	return &Registry{engines: engines, theme: theme}
}

// Lookup returns a fresh highlighter for tag. It never fails: an
// unavailable grammar degrades to plain text.
func (r *Registry) Lookup(tag string) Highlighter {
	for _, e := range r.engines {
		h, err := e.Highlighter(tag)
		if err == nil {
			return h
		}
		logger.Debug("grammar unavailable", "engine", e.Name(), "tag", tag, "error", err)
	}
	return &plainHighlighter{style: r.theme.StyleFor(chroma.Text)}
}

// plainHighlighter colors every line with the theme's text style.
type plainHighlighter struct {
	style Style
}

func (h *plainHighlighter) Grammar() string {
	return TagText
}

func (h *plainHighlighter) HighlightLine(line string, prev State) ([]Span, State) {
	return []Span{{Text: line, Style: h.style}}, prev.Advance()
}
