package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/phobologic/ipyprev/internal/config"
)

const defaultConfigFile = ".ipyprev.yaml"

// newInitCommand builds `ipyprev init`, which writes a commented config file
// holding the defaults.
func newInitCommand(stdout, stderr io.Writer) *cobra.Command {
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Long: `Write a commented ipyprev config file holding the default settings.

path defaults to ./` + defaultConfigFile + `. An existing file is left alone
unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) > 0 {
				path = args[0]
			}
			return writeConfig(path, dryRun, force, stdout, stderr)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the file instead of writing it")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func writeConfig(path string, dryRun, force bool, stdout, stderr io.Writer) error {
	content := config.Template()

	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && string(existing) == content:
		_, _ = fmt.Fprintf(stderr, "%s is up to date\n", path)
		return nil
	case err == nil && !force:
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote config to %s\n", path)
	return nil
}
