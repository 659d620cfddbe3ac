package highlight

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultTheme is the chroma style used when none is configured.
const DefaultTheme = "github"

// Theme maps token types to styles.
type Theme struct {
	name  string
	style *chroma.Style
}

// LoadTheme returns the named chroma style.
func LoadTheme(name string) (*Theme, error) {
	style, ok := styles.Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q", name)
	}
	return &Theme{name: name, style: style}, nil
}

// Name returns the theme name.
func (t *Theme) Name() string {
	return t.name
}

// StyleFor returns the style for a token type.
func (t *Theme) StyleFor(tt chroma.TokenType) Style {
	entry := t.style.Get(tt)
	s := Style{
		Bold:      entry.Bold == chroma.Yes,
		Italic:    entry.Italic == chroma.Yes,
		Underline: entry.Underline == chroma.Yes,
	}
	if entry.Colour.IsSet() {
		s.Color = entry.Colour.String()
	}
	return s
}
