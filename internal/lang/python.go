package lang

import (
	"github.com/smacker/go-tree-sitter/python"
)

func init() {
	Grammars["py"] = &Grammar{
		Name: "python",
		Tag:  "py",
		lang: python.GetLanguage(),
	}
}
