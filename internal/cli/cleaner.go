package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	smogerrors "github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/internal/generator"
	"github.com/toyz/smog/internal/parser"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	outputFile string
}

// NewCleaner creates a cleaner removing outputFile, autogen_smog.go by
// default
func NewCleaner(outputFile string) *Cleaner {
	if outputFile == "" {
		outputFile = parser.DefaultOutputFile
	}
	return &Cleaner{outputFile: outputFile}
}

// CleanGeneratedFiles removes the generated files of the given directories
// and returns their paths. A directory ending in /... is cleaned
// recursively. Files of that name not written by smog are left alone.
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	var removedFiles []string

	for _, dir := range directories {
		if err := c.cleanDirectory(dir, &removedFiles); err != nil {
			return removedFiles, errors.Wrapf(err, "failed to clean directory %s", dir)
		}
	}

	return removedFiles, nil
}

// cleanDirectory handles Go-style patterns like ./...
func (c *Cleaner) cleanDirectory(dir string, removedFiles *[]string) error {
	if base, ok := strings.CutSuffix(dir, "/..."); ok {
		if base == "" {
			base = "."
		}
		return c.cleanRecursively(base, removedFiles)
	}
	return c.cleanSingleDirectory(dir, removedFiles)
}

// cleanRecursively cleans directories recursively, skipping the ones the go
// tool ignores
func (c *Cleaner) cleanRecursively(baseDir string, removedFiles *[]string) error {
	return filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == baseDir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != baseDir && ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return c.cleanSingleDirectory(path, removedFiles)
	})
}

// cleanSingleDirectory cleans a single directory
func (c *Cleaner) cleanSingleDirectory(dir string, removedFiles *[]string) error {
	generatedFile := filepath.Join(dir, c.outputFile)

	ok, err := isGenerated(generatedFile)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := os.Remove(generatedFile); err != nil {
		return smogerrors.WrapFileSystemError("remove", generatedFile, err)
	}

	*removedFiles = append(*removedFiles, generatedFile)
	return nil
}

// isGenerated reports whether path exists and carries the generated header
func isGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, smogerrors.WrapFileSystemError("read", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return line == "// "+generator.Header, nil
	}
	return false, scanner.Err()
}

// ignoredDir reports whether the go tool skips a directory in ./... patterns
func ignoredDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
