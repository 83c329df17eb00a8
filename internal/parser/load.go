package parser

import (
	"context"
	"fmt"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/smog/internal/contract/gosource"
	"github.com/toyz/smog/internal/models"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

// Package is a loaded, type-checked package with its annotations
type Package struct {
	Metadata *models.PackageMetadata
	Fset     *token.FileSet
	Types    *types.Package
}

// LoadResult holds the packages matched by a load and the property
// overrides declared in any of them
type LoadResult struct {
	Packages  []*Package
	Overrides gosource.Overrides
}

// Load loads the packages matching patterns relative to dir, type checks
// them and extracts their annotations.
func (p *Parser) Load(ctx context.Context, dir string, patterns ...string) (*LoadResult, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	fset := token.NewFileSet()
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     dir,
		Fset:    fset,
	}
	if len(p.buildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(p.buildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages %v: %w", patterns, err)
	}

	result := &LoadResult{Overrides: make(gosource.Overrides)}
	reporter := NewErrorReporter(p.outputFile)
	for _, pkg := range pkgs {
		if err := reporter.Check(pkg); err != nil {
			return nil, err
		}
		if pkg.Types == nil {
			continue
		}

		metadata := &models.PackageMetadata{
			PackageName: pkg.Name,
			PackagePath: pkg.PkgPath,
			Overrides:   make(map[string]string),
		}
		if len(pkg.GoFiles) > 0 {
			metadata.Dir = filepath.Dir(pkg.GoFiles[0])
		}

		for _, file := range pkg.Syntax {
			fileName := fset.Position(file.Package).Filename
			if filepath.Base(fileName) == p.outputFile {
				continue
			}
			if err := p.extractInto(metadata, fset, file, fileName); err != nil {
				return nil, err
			}
		}

		for key, property := range metadata.Overrides {
			iface, method, _ := strings.Cut(key, ".")
			result.Overrides[gosource.OverrideKey(pkg.PkgPath, iface, method)] = property
		}
		sort.Slice(metadata.Contracts, func(i, j int) bool {
			a, b := metadata.Contracts[i], metadata.Contracts[j]
			if a.FileName != b.FileName {
				return a.FileName < b.FileName
			}
			return a.Line < b.Line
		})

		result.Packages = append(result.Packages, &Package{
			Metadata: metadata,
			Fset:     fset,
			Types:    pkg.Types,
		})
	}

	sort.Slice(result.Packages, func(i, j int) bool {
		return result.Packages[i].Metadata.PackagePath < result.Packages[j].Metadata.PackagePath
	})
	return result, nil
}

// Source returns the contract source of the package.
func (pkg *Package) Source(overrides gosource.Overrides) (*gosource.Source, error) {
	return gosource.NewSource(pkg.Fset, pkg.Types, overrides)
}

// Annotation converts contract metadata to a gosource annotation.
func Annotation(c models.ContractMetadata) *gosource.Annotation {
	a := &gosource.Annotation{
		Target:         c.Target,
		Description:    c.Description,
		HasDescription: c.HasDescription,
	}
	a.Location.File = c.FileName
	a.Location.Line = c.Line
	a.Location.Column = c.Column
	return a
}
