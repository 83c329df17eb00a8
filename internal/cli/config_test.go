package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/smog/internal/utils"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(NewViper(), "", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "Has", cfg.PropertyPrefix)
	assert.Equal(t, "Like", cfg.SeedMethod)
	assert.Equal(t, "autogen_smog.go", cfg.OutputFile)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Empty(t, cfg.BuildTags)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce)
	assert.Empty(t, cfg.File)
	assert.Equal(t, utils.DiagnosticInfo, cfg.DiagnosticLevel())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := "prefix: With\noutput_file: matchers_gen.go\nconcurrency: 8\nbuild_tags: [integration, e2e]\ndebounce: 1s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".smog.yaml"), []byte(content), 0644))

	cfg, err := LoadConfig(NewViper(), "", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ".smog.yaml"), cfg.File)
	assert.Equal(t, "With", cfg.PropertyPrefix)
	assert.Equal(t, "Like", cfg.SeedMethod)
	assert.Equal(t, "matchers_gen.go", cfg.OutputFile)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, []string{"integration", "e2e"}, cfg.BuildTags)
	assert.Equal(t, time.Second, cfg.Debounce)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "smog.yaml"), []byte("concurrency: 8\n"), 0644))
	t.Setenv("SMOG_CONCURRENCY", "2")
	t.Setenv("SMOG_SEED_METHOD", "Resembling")

	cfg, err := LoadConfig(NewViper(), "", dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "Resembling", cfg.SeedMethod)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quiet: true\n"), 0644))

	cfg, err := LoadConfig(NewViper(), path, ".")
	require.NoError(t, err)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, utils.DiagnosticError, cfg.DiagnosticLevel())

	_, err = LoadConfig(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"), ".")
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty output file", func(c *Config) { c.OutputFile = "" }},
		{"output file without .go", func(c *Config) { c.OutputFile = "autogen_smog.txt" }},
		{"output file with directory", func(c *Config) { c.OutputFile = "gen/autogen_smog.go" }},
		{"invalid prefix", func(c *Config) { c.PropertyPrefix = "has-" }},
		{"empty seed method", func(c *Config) { c.SeedMethod = "" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Second }},
		{"bad build tag", func(c *Config) { c.BuildTags = []string{"ok", "not ok"} }},
		{"verbose and quiet", func(c *Config) { c.Verbose, c.Quiet = true, true }},
	}

	require.NoError(t, testConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.NotEmpty(t, errors.GetAllHints(err))
		})
	}
}
