package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/getmockd/omnisend/internal/config"
	"github.com/getmockd/omnisend/pkg/cli/templates"
	"github.com/spf13/cobra"
)

func newInitCmd(_ *app) *cobra.Command {
	var (
		force    bool
		out      string
		template string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter config file",
		Long: `Create a starter omnisend configuration file from a template.

The file is checked by loading it before it is written.`,
		Example: `  # Create .omnisend.yaml in the current directory
  omnisend init

  # List available templates
  omnisend init --template list

  # Local development settings under a custom name
  omnisend init -t local-dev -o dev.yaml

  # Overwrite an existing file
  omnisend init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if template == "list" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), templates.FormatList())
				return err
			}
			if !templates.Exists(template) {
				return fmt.Errorf("unknown template %q\n\n%s", template, templates.FormatList())
			}

			if !force {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", out)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			content, err := templates.Get(template)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			cfg := config.Default()
			if err := config.LoadFile(out, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("template %s produced an invalid config: %w", template, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %s from template %q\n", out, template)
			return err
		},
	}

	f := cmd.Flags()
	f.BoolVar(&force, "force", false, "Overwrite an existing file")
	f.StringVarP(&out, "output", "o", config.LocalConfigFileName, "Output filename")
	f.StringVarP(&template, "template", "t", "default", "Template to use (use 'list' to see available templates)")
	return cmd
}
