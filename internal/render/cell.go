package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phobologic/ipyprev/internal/highlight"
	"github.com/phobologic/ipyprev/internal/lang"
	"github.com/phobologic/ipyprev/internal/logger"
	"github.com/phobologic/ipyprev/internal/model"
)

// Grammars hands out a fresh highlighter per cell.
type Grammars interface {
	Lookup(tag string) highlight.Highlighter
}

// Highlighting bundles what highlighted rendering needs.
type Highlighting struct {
	Grammars  Grammars
	Formatter *highlight.Formatter
}

// Plain renders a cell's source with 0-based line numbers and no color.
// Each line keeps its own trailing newline. Outputs are never included.
func Plain(cell model.Cell) string {
	var b strings.Builder
	width := indexWidth(len(cell.Source))
	for i, line := range cell.Source {
		fmt.Fprintf(&b, "%*d| %s", width, i, line)
	}
	return b.String()
}

// Highlighted renders a cell's source colorized by the grammar for its
// type, resetting terminal attributes at the end of every line. When
// includeOutput is set, the text of the cell's stream outputs follows the
// source verbatim.
func Highlighted(cell model.Cell, language lang.Language, includeOutput bool, hl *Highlighting) string {
	h := hl.Grammars.Lookup(grammarTag(cell, language))

	var b strings.Builder
	var state highlight.State
	width := indexWidth(len(cell.Source))
	for i, line := range cell.Source {
		var spans []highlight.Span
		spans, state = h.HighlightLine(line, state)
		eol := lineEnding(line)
		fmt.Fprintf(&b, "%*d| %s%s%s", width, i, hl.Formatter.Format(trimEnd(spans, len(eol))), highlight.Reset, eol)
	}

	if includeOutput {
		writeStreams(&b, cell.Outputs)
	}
	return b.String()
}

// grammarTag picks the grammar for a cell: the notebook language for code,
// markdown for markdown, plain text otherwise.
func grammarTag(cell model.Cell, language lang.Language) string {
	switch cell.CellType {
	case model.CellCode:
		return language.GrammarTag()
	case model.CellMarkdown:
		return highlight.TagMarkdown
	default:
		return highlight.TagText
	}
}

func writeStreams(b *strings.Builder, outputs []model.Output) {
	separated := b.Len() == 0 || strings.HasSuffix(b.String(), "\n")
	for _, out := range outputs {
		if !out.IsStream() {
			logger.Debug("skipping output", "output_type", out.OutputType)
			continue
		}
		for _, line := range out.Text {
			if !separated {
				b.WriteByte('\n')
				separated = true
			}
			b.WriteString(line)
		}
	}
}

// indexWidth is the number of digits in the largest 0-based index of n lines.
func indexWidth(n int) int {
	if n <= 1 {
		return 1
	}
	return len(strconv.Itoa(n - 1))
}

func lineEnding(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	default:
		return ""
	}
}

// trimEnd drops the last n bytes of text from spans.
func trimEnd(spans []highlight.Span, n int) []highlight.Span {
	for n > 0 && len(spans) > 0 {
		last := spans[len(spans)-1]
		if len(last.Text) > n {
			spans = append(spans[:len(spans)-1:len(spans)-1], highlight.Span{
				Text:  last.Text[:len(last.Text)-n],
				Style: last.Style,
			})
			return spans
		}
		n -= len(last.Text)
		spans = spans[:len(spans)-1]
	}
	return spans
}
