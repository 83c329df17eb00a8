package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/naming"
	"github.com/toyz/smog/internal/parser"
)

const widgetsSource = `package widgets

import "github.com/toyz/smog/pkg/core"

type Widget struct {
	Size int
	Name string
}

//smog::matcher -target=Widget -description="a Widget"
type WidgetMatcher interface {
	core.TypedMatcher[Widget]
	HasSize(size int) WidgetMatcher
	HasName(name string) WidgetMatcher
}
`

const brokenSource = `package broken

import "github.com/toyz/smog/pkg/core"

type Gadget struct {
	Size int
}

//smog::matcher -target=Gadget
type GadgetMatcher interface {
	core.TypedMatcher[Gadget]
	Frobnicate(size int) GadgetMatcher
}
`

// fixture writes files, keyed by slash-separated relative path, into a
// fresh directory inside this module so the packages load with the module's
// own dependencies. It returns the directory relative to the package.
func fixture(t *testing.T, files map[string]string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll("testdata", 0755))
	dir, err := os.MkdirTemp("testdata", "fixture")
	require.NoError(t, err)
	t.Cleanup(func() {
		os.RemoveAll(dir)
		os.Remove("testdata")
	})

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return "./" + filepath.ToSlash(dir)
}

func testConfig() *Config {
	return &Config{
		Dir:            ".",
		PropertyPrefix: naming.DefaultPrefix,
		SeedMethod:     contract.DefaultSeedMethod,
		OutputFile:     parser.DefaultOutputFile,
		Concurrency:    2,
	}
}
