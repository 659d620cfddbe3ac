// ipyprev prints Jupyter notebooks to the terminal, one framed block per
// cell, with optional syntax highlighting and stream output.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/phobologic/ipyprev/internal/config"
	"github.com/phobologic/ipyprev/internal/highlight"
	"github.com/phobologic/ipyprev/internal/logger"
	"github.com/phobologic/ipyprev/internal/parse"
	"github.com/phobologic/ipyprev/internal/render"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.Execute()
}

type rootOptions struct {
	plain       bool
	noOutput    bool
	configPath  string
	showVersion bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "ipyprev [flags] <notebook.ipynb>",
		Short: "Preview a Jupyter notebook in the terminal",
		Long: `Print every cell of a Jupyter notebook between numbered separators.

Code is highlighted for the notebook's kernel language and the text of
stream outputs follows each code cell. Use --plain for uncolored output.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				_, _ = fmt.Fprintf(stdout, "ipyprev %s\n", version)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("missing notebook path")
			}
			return preview(cmd, args[0], opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.BoolVar(&opts.plain, "plain", false, "render without color and without outputs")
	f.BoolVar(&opts.noOutput, "no-output", false, "omit stream output after code cells")
	f.StringVar(&opts.configPath, "config", "", "config file (default .ipyprev.yaml in . or $HOME)")
	f.BoolVarP(&opts.showVersion, "version", "V", false, "show version and exit")
	f.String("theme", config.DefaultTheme, "chroma style for highlighted output")
	f.String("engine", config.DefaultEngine, "preferred highlighting engine: chroma or treesitter")
	f.String("color", config.DefaultColor, "color profile: auto, truecolor, ansi256, ansi or ascii")
	f.Int("width", config.DefaultWidth, "width of the separator lines")
	f.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")

	cmd.AddCommand(newInitCommand(stdout, stderr))
	return cmd
}

func preview(cmd *cobra.Command, path string, opts rootOptions, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := logger.Configure(stderr, cfg.LogLevel); err != nil {
		return err
	}

	nb, err := parse.File(path)
	if err != nil {
		return err
	}

	renderOpts := render.Options{
		Mode:          render.ModePlain,
		IncludeOutput: !opts.noOutput,
		Width:         cfg.Width,
	}
	if !opts.plain {
		hl, err := newHighlighting(cfg, stdout)
		if err != nil {
			return err
		}
		renderOpts.Mode = render.ModeHighlighted
		renderOpts.Highlighting = hl
	}

	return render.Notebook(stdout, nb, renderOpts)
}

func newHighlighting(cfg *config.Config, stdout io.Writer) (*render.Highlighting, error) {
	theme, err := highlight.LoadTheme(cfg.Theme)
	if err != nil {
		return nil, err
	}
	registry, err := highlight.NewRegistry(cfg.Engine, theme)
	if err != nil {
		return nil, err
	}
	profile, err := highlight.ParseProfile(cfg.Color, stdout)
	if err != nil {
		return nil, err
	}
	return &render.Highlighting{
		Grammars:  registry,
		Formatter: highlight.NewFormatter(profile),
	}, nil
}
