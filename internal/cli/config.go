package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/toyz/smog/internal/contract"
	smogerrors "github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/internal/naming"
	"github.com/toyz/smog/internal/parser"
	"github.com/toyz/smog/internal/utils"
)

// Configuration keys
const (
	KeyPrefix      = "prefix"
	KeySeedMethod  = "seed_method"
	KeyOutputFile  = "output_file"
	KeyConcurrency = "concurrency"
	KeyBuildTags   = "build_tags"
	KeyDebounce    = "debounce"
	KeyVerbose     = "verbose"
	KeyQuiet       = "quiet"
	KeyLogJSON     = "log_json"
)

// EnvPrefix prefixes the environment variables read by the CLI, e.g.
// SMOG_OUTPUT_FILE.
const EnvPrefix = "SMOG"

// ConfigFileNames are searched, in order, in the working directory when no
// config file is given
var ConfigFileNames = []string{"smog.yaml", "smog.yml", ".smog.yaml", ".smog.yml"}

// Config holds the configuration for the CLI generator
type Config struct {
	// Dir is the directory patterns are resolved against
	Dir string `mapstructure:"-"`

	PropertyPrefix string        `mapstructure:"prefix"`
	SeedMethod     string        `mapstructure:"seed_method"`
	OutputFile     string        `mapstructure:"output_file"`
	Concurrency    int           `mapstructure:"concurrency"`
	BuildTags      []string      `mapstructure:"build_tags"`
	Debounce       time.Duration `mapstructure:"debounce"`

	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet"`
	LogJSON bool `mapstructure:"log_json"`

	// DryRun prints generated files instead of writing them
	DryRun bool `mapstructure:"-"`

	// File is the config file that was read, if any
	File string `mapstructure:"-"`
}

// SetDefaults sets the default value of every configuration key
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPrefix, naming.DefaultPrefix)
	v.SetDefault(KeySeedMethod, contract.DefaultSeedMethod)
	v.SetDefault(KeyOutputFile, parser.DefaultOutputFile)
	v.SetDefault(KeyConcurrency, 4)
	v.SetDefault(KeyBuildTags, []string{})
	v.SetDefault(KeyDebounce, 300*time.Millisecond)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyQuiet, false)
	v.SetDefault(KeyLogJSON, false)
}

// NewViper returns a viper instance with defaults and SMOG_ environment
// variables bound. Flags are bound by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// LoadConfig reads configFile, or the first of ConfigFileNames found in dir,
// into v and returns the merged, validated configuration. Precedence is
// flags, then environment, then file, then defaults.
func LoadConfig(v *viper.Viper, configFile, dir string) (*Config, error) {
	if dir == "" {
		dir = "."
	}
	if configFile == "" {
		configFile = findConfigFile(dir)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithHint(
				smogerrors.WrapConfigurationError(configFile, "read", err),
				"config files are YAML, e.g. `output_file: autogen_smog.go`")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	config.Dir = dir
	config.File = configFile

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks every configuration value
func (c *Config) Validate() error {
	checks := []error{
		utils.NewValidatorChain(
			utils.NotEmpty(KeyOutputFile),
			utils.HasSuffix(KeyOutputFile, ".go"),
			utils.Validator[string](func(name string) error {
				if filepath.Base(name) != name {
					return utils.ValidationError{Field: KeyOutputFile, Value: name, Message: "must be a file name, not a path"}
				}
				return nil
			}),
		).Validate(c.OutputFile),
		utils.IsValidGoIdentifier(KeyPrefix)(c.PropertyPrefix),
		utils.IsValidGoIdentifier(KeySeedMethod)(c.SeedMethod),
		utils.AtLeast(KeyConcurrency, 1)(c.Concurrency),
		utils.AtLeast(KeyDebounce, time.Duration(0))(c.Debounce),
		utils.ValidateEach(KeyBuildTags, utils.MatchesRegex("tag", `^[A-Za-z0-9_.]+$`))(c.BuildTags),
	}
	for _, err := range checks {
		if err != nil {
			return errors.WithHint(
				errors.Wrap(err, "invalid configuration"),
				"check the config file and the "+EnvPrefix+"_* environment variables")
		}
	}
	if c.Verbose && c.Quiet {
		return errors.WithHint(errors.New("invalid configuration: verbose and quiet are mutually exclusive"),
			"pass only one of --verbose and --quiet")
	}
	return nil
}

// DiagnosticLevel returns the console output level for the configuration
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Verbose:
		return utils.DiagnosticDebug
	default:
		return utils.DiagnosticInfo
	}
}

func findConfigFile(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
