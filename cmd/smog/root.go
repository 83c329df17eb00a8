package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toyz/smog/internal/cli"
	"github.com/toyz/smog/internal/logging"
	"github.com/toyz/smog/internal/utils"
)

// app holds the state shared by all commands of one invocation
type app struct {
	viper       *viper.Viper
	configFile  string
	dir         string
	config      *cli.Config
	diagnostics *utils.DiagnosticSystem
	reporter    *cli.DiagnosticReporter
	stdout      io.Writer
	stderr      io.Writer
}

func newApp(stdout, stderr io.Writer) *app {
	reporter := cli.NewDiagnosticReporter(false)
	reporter.SetOutput(stderr)
	return &app{
		viper:    cli.NewViper(),
		reporter: reporter,
		stdout:   stdout,
		stderr:   stderr,
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "smog",
		Short: "smog - matcher synthesis for Go contracts",
		Long: `smog generates property matchers from contract interfaces.

Annotate an interface with //smog::matcher -target=Type and smog writes an
implementation of it into autogen_smog.go, registered with smog.Register so
smog.Create returns it at run time.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { logging.Sync() },
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: smog.yaml or .smog.yaml in --dir)")
	flags.StringVarP(&a.dir, "dir", "C", ".", "directory to run in; patterns are relative to it")
	flags.BoolP("verbose", "v", false, "enable verbose output and debug logs")
	flags.BoolP("quiet", "q", false, "only show errors")
	flags.Bool("log-json", false, "write structured logs as JSON to stderr")
	mustBind(a.viper, cli.KeyVerbose, flags.Lookup("verbose"))
	mustBind(a.viper, cli.KeyQuiet, flags.Lookup("quiet"))
	mustBind(a.viper, cli.KeyLogJSON, flags.Lookup("log-json"))

	root.AddCommand(a.generateCommand(), a.inspectCommand(), a.cleanCommand())
	return root
}

// setup loads the configuration and initializes output for every command
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := cli.LoadConfig(a.viper, a.configFile, a.dir)
	if err != nil {
		return err
	}
	a.config = cfg

	a.reporter = cli.NewDiagnosticReporter(cfg.Verbose)
	a.reporter.SetOutput(a.stderr)

	a.diagnostics = utils.NewDiagnosticSystem(cfg.DiagnosticLevel())
	if a.stdout != os.Stdout || a.stderr != os.Stderr {
		a.diagnostics.SetOutput(a.stdout, a.stderr)
	}

	if cfg.Verbose || cfg.LogJSON {
		if err := logging.Initialize(logging.Options{Verbose: cfg.Verbose, JSON: cfg.LogJSON}); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
	}
	if cfg.File != "" {
		a.diagnostics.Verbose("using config file %s", cfg.File)
	}
	return nil
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// resolve interprets path relative to --dir, keeping a trailing /...
func (a *app) resolve(path string) string {
	if base, ok := strings.CutSuffix(path, "/..."); ok {
		return a.resolve(base) + "/..."
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.config.Dir, path)
}
