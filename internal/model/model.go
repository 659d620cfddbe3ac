// Package model defines core data structures for ipyprev.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Recognized cell types. Any other value renders as plain text.
const (
	CellCode     = "code"
	CellMarkdown = "markdown"
)

// OutputStream is the only output type that is interleaved with source.
const OutputStream = "stream"

// Notebook is a parsed notebook document. Cells keep document order.
type Notebook struct {
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
	Cells         []Cell   `json:"cells"`
}

// Metadata holds the kernel and language declarations of a notebook.
// Every field is optional because real files disagree on which are present.
type Metadata struct {
	KernelSpec   *KernelSpec   `json:"kernelspec,omitempty"`
	LanguageInfo *LanguageInfo `json:"language_info,omitempty"`
}

// KernelSpec describes the kernel a notebook was written against.
type KernelSpec struct {
	DisplayName *string `json:"display_name,omitempty"`
	Language    *string `json:"language,omitempty"`
	Name        *string `json:"name,omitempty"`
}

// LanguageInfo is the kernel-reported language block.
type LanguageInfo struct {
	Name    *string `json:"name,omitempty"`
	Version *string `json:"version,omitempty"`
	// CodemirrorMode is a string in some files and an object in others.
	CodemirrorMode json.RawMessage `json:"codemirror_mode,omitempty"`
}

// DeclaredLanguage returns the notebook's declared language, checking
// kernelspec.language first and language_info.name second. It returns nil
// when neither is present.
func (m Metadata) DeclaredLanguage() *string {
	if m.KernelSpec != nil && m.KernelSpec.Language != nil {
		return m.KernelSpec.Language
	}
	if m.LanguageInfo != nil && m.LanguageInfo.Name != nil {
		return m.LanguageInfo.Name
	}
	return nil
}

// Cell is one notebook cell.
type Cell struct {
	CellType       string          `json:"cell_type"`
	ExecutionCount *int            `json:"execution_count,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Outputs        []Output        `json:"outputs,omitempty"`
	Source         Lines           `json:"source"`
}

// IsCode reports whether the cell holds executable code.
func (c Cell) IsCode() bool {
	return c.CellType == CellCode
}

// Output is one captured execution result attached to a code cell.
type Output struct {
	Name       *string `json:"name,omitempty"`
	OutputType string  `json:"output_type"`
	Text       Lines   `json:"text,omitempty"`
}

// IsStream reports whether the output is captured stdout/stderr text.
func (o Output) IsStream() bool {
	return o.OutputType == OutputStream
}

// Lines is an ordered list of text lines, each normally ending in "\n".
// It decodes from a JSON array of strings or from a single string, which is
// split after every newline.
type Lines []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *Lines) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var blob string
	if err := json.Unmarshal(data, &blob); err != nil {
		return fmt.Errorf("lines: expected string or array of strings, got %s", describeJSON(data))
	}
	*l = SplitLines(blob)
	return nil
}

// SplitLines splits s after each newline, keeping the newlines. A trailing
// newline does not produce an empty final line.
func SplitLines(s string) Lines {
	if s == "" {
		return Lines{}
	}
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return Lines(parts)
}

func describeJSON(data []byte) string {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "nothing"
	}
	switch s[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
