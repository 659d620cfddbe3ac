// Package render formats notebooks for the terminal.
package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/phobologic/ipyprev/internal/lang"
	"github.com/phobologic/ipyprev/internal/logger"
	"github.com/phobologic/ipyprev/internal/model"
)

// Mode selects plain or highlighted rendering.
type Mode int

const (
	ModePlain Mode = iota
	ModeHighlighted
)

// DefaultWidth is the column width of the separator lines.
const DefaultWidth = 64

// minFill is the fewest dashes a separator keeps however long its label is.
const minFill = 3

// Options control Notebook.
type Options struct {
	Mode          Mode
	IncludeOutput bool
	// Width of every separator line; DefaultWidth when zero.
	Width int
	// Highlighting is required in ModeHighlighted.
	Highlighting *Highlighting
}

// Notebook writes every cell of nb to w in document order, each framed by a
// numbered header and a footer labeled with the cell type, or with the
// notebook language for code cells.
func Notebook(w io.Writer, nb *model.Notebook, opts Options) error {
	if opts.Mode == ModeHighlighted && (opts.Highlighting == nil || opts.Highlighting.Grammars == nil || opts.Highlighting.Formatter == nil) {
		return errors.New("render: highlighted mode needs highlighting")
	}
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}

	language := lang.Resolve(nb.Metadata.DeclaredLanguage())
	logger.Debug("resolved language", "language", language)

	digits := len(strconv.Itoa(len(nb.Cells)))
	bw := bufio.NewWriter(w)
	for i, cell := range nb.Cells {
		var body string
		if opts.Mode == ModeHighlighted {
			body = Highlighted(cell, language, opts.IncludeOutput, opts.Highlighting)
		} else {
			body = Plain(cell)
		}

		_, _ = fmt.Fprintln(bw, Header(i+1, digits, width))
		_, _ = bw.WriteString(body)
		if body != "" && !strings.HasSuffix(body, "\n") {
			_ = bw.WriteByte('\n')
		}
		_, _ = fmt.Fprintln(bw, Footer(Label(cell, language), width))
		_ = bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Header returns the separator opening a cell: its 1-based position padded
// to digits, filled with dashes to width columns.
func Header(pos, digits, width int) string {
	prefix := fmt.Sprintf("---[%*d]", digits, pos)
	return prefix + fill(width-ansi.StringWidth(prefix))
}

// Footer returns the separator closing a cell. The dash fill shrinks as the
// label grows so the line stays width columns wide.
func Footer(label string, width int) string {
	suffix := "<" + label + ">--"
	return fill(width-ansi.StringWidth(suffix)) + suffix
}

// Label is the footer label of a cell: the capitalized notebook language
// for code cells, the raw cell type otherwise.
func Label(cell model.Cell, language lang.Language) string {
	if cell.IsCode() {
		return language.Label()
	}
	return cell.CellType
}

func fill(n int) string {
	return strings.Repeat("-", max(n, minFill))
}
