package render

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/ipyprev/internal/highlight"
	"github.com/phobologic/ipyprev/internal/lang"
	"github.com/phobologic/ipyprev/internal/model"
)

// recordingHighlighter echoes lines back and records the state it was given.
type recordingHighlighter struct {
	prevLines []int
}

func (r *recordingHighlighter) Grammar() string { return "rec" }

func (r *recordingHighlighter) HighlightLine(line string, prev highlight.State) ([]highlight.Span, highlight.State) {
	r.prevLines = append(r.prevLines, prev.Lines())
	return []highlight.Span{{Text: line, Style: highlight.Style{Color: "#ff0000"}}}, prev.Next(line)
}

type recordingGrammars struct {
	tags []string
	made []*recordingHighlighter
}

func (g *recordingGrammars) Lookup(tag string) highlight.Highlighter {
	h := &recordingHighlighter{}
	g.tags = append(g.tags, tag)
	g.made = append(g.made, h)
	return h
}

func asciiHighlighting(g Grammars) *Highlighting {
	return &Highlighting{Grammars: g, Formatter: highlight.NewFormatter(termenv.Ascii)}
}

func chromaHighlighting(t *testing.T) *Highlighting {
	t.Helper()
	return engineHighlighting(t, highlight.EngineChroma)
}

func engineHighlighting(t *testing.T, engine string) *Highlighting {
	t.Helper()
	theme, err := highlight.LoadTheme(highlight.DefaultTheme)
	require.NoError(t, err)
	reg, err := highlight.NewRegistry(engine, theme)
	require.NoError(t, err)
	return &Highlighting{Grammars: reg, Formatter: highlight.NewFormatter(termenv.TrueColor)}
}

func stdout(text ...string) model.Output {
	name := "stdout"
	return model.Output{Name: &name, OutputType: "stream", Text: text}
}

func TestPlain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source model.Lines
		want   string
	}{
		{"empty", nil, ""},
		{"one line", model.Lines{"print(1)\n"}, "0| print(1)\n"},
		{"no trailing newline", model.Lines{"a\n", "b"}, "0| a\n1| b"},
		{
			"pads to widest index",
			model.Lines{"0\n", "1\n", "2\n", "3\n", "4\n", "5\n", "6\n", "7\n", "8\n", "9\n", "10\n"},
			" 0| 0\n 1| 1\n 2| 2\n 3| 3\n 4| 4\n 5| 5\n 6| 6\n 7| 7\n 8| 8\n 9| 9\n10| 10\n",
		},
		{
			"ten lines stay single width",
			model.Lines{"a\n", "a\n", "a\n", "a\n", "a\n", "a\n", "a\n", "a\n", "a\n", "a\n"},
			"0| a\n1| a\n2| a\n3| a\n4| a\n5| a\n6| a\n7| a\n8| a\n9| a\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Plain(model.Cell{CellType: "code", Source: tt.source})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlainNeverIncludesOutput(t *testing.T) {
	t.Parallel()

	cell := model.Cell{CellType: "code", Source: model.Lines{"print(3)\n"}, Outputs: []model.Output{stdout("3\n")}}
	assert.Equal(t, "0| print(3)\n", Plain(cell))
}

func TestPlainIsDeterministic(t *testing.T) {
	t.Parallel()

	cell := model.Cell{CellType: "markdown", Source: model.Lines{"# A\n", "b\n"}}
	assert.Equal(t, Plain(cell), Plain(cell))
}

func TestHighlightedCarriesStateWithinCell(t *testing.T) {
	t.Parallel()

	g := &recordingGrammars{}
	hl := asciiHighlighting(g)

	cell := model.Cell{CellType: "code", Source: model.Lines{"x = \"\"\"a\n", "end\"\"\"\n", "y = 1\n"}}
	got := Highlighted(cell, lang.Python, false, hl)

	require.Len(t, g.made, 1)
	assert.Equal(t, []int{0, 1, 2}, g.made[0].prevLines, "each line sees the state left by the previous one")
	assert.Equal(t, "0| x = \"\"\"a\x1b[0m\n1| end\"\"\"\x1b[0m\n2| y = 1\x1b[0m\n", got)

	Highlighted(cell, lang.Python, false, hl)
	require.Len(t, g.made, 2)
	assert.Equal(t, []int{0, 1, 2}, g.made[1].prevLines, "state is fresh for every cell")
}

func TestHighlightedGrammarSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cellType string
		language lang.Language
		want     string
	}{
		{"code", lang.Python, "py"},
		{"code", lang.Julia, "jl"},
		{"code", lang.Unknown, ""},
		{"markdown", lang.Python, "md"},
		{"raw", lang.Python, "txt"},
		{"heading", lang.Julia, "txt"},
	}

	for _, tt := range tests {
		t.Run(tt.cellType+"/"+tt.language.String(), func(t *testing.T) {
			t.Parallel()
			g := &recordingGrammars{}
			Highlighted(model.Cell{CellType: tt.cellType, Source: model.Lines{"x\n"}}, tt.language, false, asciiHighlighting(g))
			assert.Equal(t, []string{tt.want}, g.tags)
		})
	}
}

func TestHighlightedResetsEveryLine(t *testing.T) {
	t.Parallel()

	hl := chromaHighlighting(t)
	cell := model.Cell{CellType: "code", Source: model.Lines{"print(1)\n", "x = 'a'"}}
	got := Highlighted(cell, lang.Python, false, hl)

	lines := strings.SplitAfter(got, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "0| "))
	assert.True(t, strings.HasSuffix(lines[0], highlight.Reset+"\n"))
	assert.True(t, strings.HasPrefix(lines[1], "1| "))
	assert.True(t, strings.HasSuffix(lines[1], highlight.Reset))
	assert.Contains(t, got, "\x1b[38;2;", "source is colorized")
	assert.Equal(t, "0| print(1)\n1| x = 'a'", ansi.Strip(got))
}

func TestHighlightedUnknownLanguageStillRenders(t *testing.T) {
	t.Parallel()

	hl := chromaHighlighting(t)
	cobol := "cobol"
	cell := model.Cell{CellType: "code", Source: model.Lines{"DISPLAY 'HI'.\n"}}
	got := Highlighted(cell, lang.Resolve(&cobol), true, hl)
	assert.Equal(t, "0| DISPLAY 'HI'.\n", ansi.Strip(got))
}

func TestHighlightedOutputToggle(t *testing.T) {
	t.Parallel()

	cell := model.Cell{
		CellType: "code",
		Source:   model.Lines{"print(3)\n"},
		Outputs:  []model.Output{stdout("3\n")},
	}
	hl := asciiHighlighting(&recordingGrammars{})

	with := Highlighted(cell, lang.Python, true, hl)
	assert.Equal(t, "0| print(3)\x1b[0m\n3\n", with)

	without := Highlighted(cell, lang.Python, false, hl)
	assert.Equal(t, "0| print(3)\x1b[0m\n", without)
}

func TestHighlightedOnlyStreamOutputs(t *testing.T) {
	t.Parallel()

	stderr := "stderr"
	cell := model.Cell{
		CellType: "code",
		Source:   model.Lines{"f()"},
		Outputs: []model.Output{
			stdout("a\n", "b\n"),
			{OutputType: "execute_result"},
			{OutputType: "error"},
			{Name: &stderr, OutputType: "stream", Text: model.Lines{"warn\n"}},
		},
	}
	got := Highlighted(cell, lang.Python, true, asciiHighlighting(&recordingGrammars{}))
	assert.Equal(t, "0| f()\x1b[0m\na\nb\nwarn\n", got, "outputs follow source on their own line, in stored order")
}

func TestHighlightedInvalidUTF8(t *testing.T) {
	t.Parallel()

	hl := chromaHighlighting(t)
	cell := model.Cell{CellType: "code", Source: model.Lines{"s = '\xfe'\n", "t = 1\n"}}
	got := Highlighted(cell, lang.Python, false, hl)
	assert.Contains(t, got, "0| s = '\xfe'"+highlight.Reset+"\n")
	assert.Contains(t, got, "\n1| ")
	assert.True(t, strings.HasSuffix(got, highlight.Reset+"\n"))
}

func TestTrimEnd(t *testing.T) {
	t.Parallel()

	spans := []highlight.Span{{Text: "ab"}, {Text: "c\r"}, {Text: "\n"}}
	assert.Equal(t, []highlight.Span{{Text: "ab"}, {Text: "c"}}, trimEnd(spans, 2))
	assert.Equal(t, []highlight.Span{{Text: "ab"}, {Text: "c\r"}}, trimEnd(spans, 1))
	assert.Equal(t, spans, trimEnd(spans, 0))
	assert.Len(t, spans, 3, "input is not modified")
}

func TestHighlightedLargeCell(t *testing.T) {
	t.Parallel()

	source := make(model.Lines, 2000)
	for i := range source {
		source[i] = fmt.Sprintf("x_%d = foo(%d, 'bar') + 1  # comment\n", i, i)
	}
	cell := model.Cell{CellType: "code", Source: source}

	for _, engine := range []string{highlight.EngineChroma, highlight.EngineTreeSitter} {
		hl := engineHighlighting(t, engine)
		began := time.Now()
		got := Highlighted(cell, lang.Python, false, hl)
		assert.Less(t, time.Since(began), 20*time.Second, engine)
		assert.Equal(t, Plain(cell), ansi.Strip(got), engine)
		assert.Equal(t, len(source), strings.Count(got, highlight.Reset+"\n"), engine)
	}
}
