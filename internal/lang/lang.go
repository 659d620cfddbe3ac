// Package lang resolves a notebook's declared kernel language to a known
// Language and provides the tree-sitter grammars used for highlighting.
package lang

import (
	"golang.org/x/text/cases"
	textlang "golang.org/x/text/language"
)

// Language is a closed set of notebook languages.
type Language int

const (
	Unknown Language = iota
	Python
	Julia
)

// languages maps each variant to its canonical identifier and grammar tag.
// A new language needs one constant above and one row here.
var languages = [...]struct {
	id  string
	tag string
}{
	Unknown: {"unknown", ""},
	Python:  {"python", "py"},
	Julia:   {"julia", "jl"},
}

var titleCaser = cases.Title(textlang.English)

// Resolve maps a declared language string to a Language. The match is exact
// and case-sensitive; nil and unrecognized names resolve to Unknown.
func Resolve(name *string) Language {
	if name == nil {
		return Unknown
	}
	for l, row := range languages {
		if Language(l) != Unknown && row.id == *name {
			return Language(l)
		}
	}
	return Unknown
}

// String returns the canonical lowercase identifier.
func (l Language) String() string {
	if l < 0 || int(l) >= len(languages) {
		return languages[Unknown].id
	}
	return languages[l].id
}

// GrammarTag returns the extension-like tag used to select a highlighting
// grammar, or "" for Unknown.
func (l Language) GrammarTag() string {
	if l < 0 || int(l) >= len(languages) {
		return ""
	}
	return languages[l].tag
}

// Label returns the capitalized display name used in cell footers.
func (l Language) Label() string {
	return titleCaser.String(l.String())
}
