package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/smog/internal/cli"
	"github.com/toyz/smog/internal/logging"
	"github.com/toyz/smog/internal/templates"
	"github.com/toyz/smog/internal/utils"
)

func (a *app) inspectCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect [patterns...]",
		Short: "Show the matcher types smog would generate",
		Long: `Inspect plans every annotated contract and prints the generated type of
each one with its methods, without writing any file.`,
		Example: `  smog inspect ./...
  smog inspect --format yaml ./contracts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := utils.IsOneOf("format", templates.FormatText, templates.FormatYAML)(format); err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"./..."}
			}

			gen := cli.NewGenerator(a.config, a.diagnostics, logging.Logger)
			report, err := gen.Inspect(cmd.Context(), args)
			if err != nil {
				return err
			}
			return templates.NewRenderer(nil).Render(cmd.OutOrStdout(), format, report)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", templates.FormatText, "output format: text or yaml")
	return cmd
}
