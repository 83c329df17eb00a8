package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/smog/internal/generator"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCleaner(t *testing.T) {
	root := t.TempDir()
	generated := "// " + generator.Header + "\n\npackage p\n"

	writeFile(t, filepath.Join(root, "autogen_smog.go"), generated)
	writeFile(t, filepath.Join(root, "a", "autogen_smog.go"), generated)
	writeFile(t, filepath.Join(root, "a", "b", "autogen_smog.go"), "\n"+generated)
	writeFile(t, filepath.Join(root, "a", "a.go"), "package a\n")
	writeFile(t, filepath.Join(root, "own", "autogen_smog.go"), "package own\n")
	writeFile(t, filepath.Join(root, "testdata", "autogen_smog.go"), generated)
	writeFile(t, filepath.Join(root, ".hidden", "autogen_smog.go"), generated)

	t.Run("single directory", func(t *testing.T) {
		removed, err := NewCleaner("").CleanGeneratedFiles([]string{filepath.Join(root, "a")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "a", "autogen_smog.go")}, removed)
		assert.FileExists(t, filepath.Join(root, "a", "b", "autogen_smog.go"))
	})

	t.Run("recursive", func(t *testing.T) {
		removed, err := NewCleaner("").CleanGeneratedFiles([]string{root + "/..."})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(root, "autogen_smog.go"),
			filepath.Join(root, "a", "b", "autogen_smog.go"),
		}, removed)

		assert.FileExists(t, filepath.Join(root, "a", "a.go"))
		assert.FileExists(t, filepath.Join(root, "own", "autogen_smog.go"))
		assert.FileExists(t, filepath.Join(root, "testdata", "autogen_smog.go"))
		assert.FileExists(t, filepath.Join(root, ".hidden", "autogen_smog.go"))
	})

	t.Run("missing directory", func(t *testing.T) {
		removed, err := NewCleaner("").CleanGeneratedFiles([]string{filepath.Join(root, "missing")})
		assert.NoError(t, err)
		assert.Empty(t, removed)

		_, err = NewCleaner("").CleanGeneratedFiles([]string{filepath.Join(root, "missing") + "/..."})
		assert.Error(t, err)
	})
}

func TestCleaner_CustomOutputFile(t *testing.T) {
	root := t.TempDir()
	generated := "// " + generator.Header + "\n\npackage p\n"
	writeFile(t, filepath.Join(root, "matchers_gen.go"), generated)
	writeFile(t, filepath.Join(root, "autogen_smog.go"), generated)

	removed, err := NewCleaner("matchers_gen.go").CleanGeneratedFiles([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "matchers_gen.go")}, removed)
	assert.FileExists(t, filepath.Join(root, "autogen_smog.go"))
}
