package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toyz/smog/internal/cli"
	"github.com/toyz/smog/internal/logging"
)

func (a *app) generateCommand() *cobra.Command {
	var (
		watch  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "generate [patterns...]",
		Short: "Generate matchers for annotated contracts",
		Long: `Generate loads the packages matching the patterns (./... by default),
synthesizes every //smog::matcher contract and writes one file per package.
Nothing is written for a package with a broken contract.`,
		Example: `  smog generate ./...
  smog generate --dry-run ./contracts
  smog generate --watch --tags integration ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config
			cfg.DryRun = dryRun
			if len(args) == 0 {
				args = []string{"./..."}
			}

			gen := cli.NewGenerator(cfg, a.diagnostics, logging.Logger)
			gen.SetOutput(cmd.OutOrStdout())
			generate := func(ctx context.Context) error {
				summary, err := gen.Generate(ctx, args)
				if err != nil {
					return err
				}
				gen.Report(summary)
				return nil
			}

			if !watch {
				return generate(cmd.Context())
			}

			if err := generate(cmd.Context()); err != nil {
				a.reporter.ReportError(err)
			}
			a.diagnostics.Info("watching %s for changes (ctrl-c to stop)", cfg.Dir)
			w := cli.NewWatcher(cfg.Dir, cfg.OutputFile, cfg.Debounce, func(ctx context.Context) error {
				err := generate(ctx)
				if err != nil {
					a.reporter.ReportError(err)
				}
				return err
			}, logging.Logger.With(zap.String("mode", "watch")))
			return w.Watch(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&watch, "watch", "w", false, "regenerate whenever Go sources change")
	flags.BoolVar(&dryRun, "dry-run", false, "print generated files instead of writing them")
	flags.StringSlice("tags", nil, "build tags used when loading packages")
	flags.StringP("output", "o", "", "name of the generated file in every package")
	flags.Int("concurrency", 0, "number of packages generated in parallel")
	mustBind(a.viper, cli.KeyBuildTags, flags.Lookup("tags"))
	mustBind(a.viper, cli.KeyOutputFile, flags.Lookup("output"))
	mustBind(a.viper, cli.KeyConcurrency, flags.Lookup("concurrency"))
	return cmd
}
