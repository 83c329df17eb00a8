package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoModParser(t *testing.T) {
	root := t.TempDir()
	goMod := filepath.Join(root, "go.mod")
	require.NoError(t, os.WriteFile(goMod, []byte("module example.com/people\n\ngo 1.22\n"), 0644))
	nested := filepath.Join(root, "contracts", "internal")
	require.NoError(t, os.MkdirAll(nested, 0755))

	p := NewGoModParser()

	found, err := p.FindGoModFile(nested)
	require.NoError(t, err)
	assert.Equal(t, goMod, found)

	name, err := p.ParseModuleName(found)
	require.NoError(t, err)
	assert.Equal(t, "example.com/people", name)

	// Cached by path.
	require.NoError(t, os.WriteFile(goMod, []byte("module example.com/other\n"), 0644))
	name, err = p.ParseModuleName(found)
	require.NoError(t, err)
	assert.Equal(t, "example.com/people", name)
}

func TestGoModParser_Errors(t *testing.T) {
	p := NewGoModParser()

	_, err := p.ParseModuleName(filepath.Join(t.TempDir(), "go.sum"))
	assert.ErrorContains(t, err, "not a go.mod file")

	_, err = p.ParseModuleName(filepath.Join(t.TempDir(), "go.mod"))
	assert.ErrorContains(t, err, "failed to read")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("go 1.22\n"), 0644))
	_, err = p.ParseModuleName(filepath.Join(dir, "go.mod"))
	assert.ErrorContains(t, err, "no module declaration")
}
