package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// GoModParser provides utilities for parsing go.mod files
type GoModParser struct {
	cache *Cache[string, string]
}

// NewGoModParser creates a new go.mod parser. Module names are cached by
// go.mod path.
func NewGoModParser() *GoModParser {
	return &GoModParser{cache: NewCache[string, string]()}
}

// ParseModuleName extracts the module name from a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	name, _, err := p.cache.GetOrCreate(cleanPath, func() (string, error) {
		content, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read go.mod file: %w", err)
		}
		modFile, err := modfile.ParseLax(cleanPath, content, nil)
		if err != nil {
			return "", fmt.Errorf("failed to parse go.mod file: %w", err)
		}
		if modFile.Module == nil {
			return "", fmt.Errorf("no module declaration found in go.mod")
		}
		return modFile.Module.Mod.Path, nil
	})
	return name, err
}

// FindGoModFile searches for go.mod file starting from the given directory and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if info, err := os.Stat(goModPath); err == nil && !info.IsDir() {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found")
}
