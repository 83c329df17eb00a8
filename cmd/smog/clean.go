package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/smog/internal/cli"
)

func (a *app) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [dirs...]",
		Short: "Remove generated matcher files",
		Long: `Clean removes the generated file from the given directories (./... by
default). A directory ending in /... is cleaned recursively. Files that do
not carry the generated header are never removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"./..."}
			}
			dirs := make([]string, len(args))
			for i, dir := range args {
				dirs[i] = a.resolve(dir)
			}

			removed, err := cli.NewCleaner(a.config.OutputFile).CleanGeneratedFiles(dirs)
			for _, file := range removed {
				a.diagnostics.PhaseItem("Removed " + file)
			}
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				a.diagnostics.Info("No generated files found")
				return nil
			}
			a.diagnostics.Success("Removed %d generated files", len(removed))
			return nil
		},
	}
}
