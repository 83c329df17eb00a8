package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	smogerrors "github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/internal/generator"
	"github.com/toyz/smog/internal/logging"
	"github.com/toyz/smog/internal/models"
	"github.com/toyz/smog/internal/parser"
	"github.com/toyz/smog/internal/templates"
	"github.com/toyz/smog/internal/utils"
)

// Generator coordinates the CLI generation process: resolve the module,
// load and type check the packages, synthesize every contract and write one
// file per package.
type Generator struct {
	config      *Config
	modules     *ModuleResolver
	diagnostics *utils.DiagnosticSystem
	logger      *zap.Logger
	out         io.Writer
	summary     GenerationSummary
}

// NewGenerator creates a new CLI generator. A nil logger or diagnostics
// system discards output.
func NewGenerator(config *Config, diagnostics *utils.DiagnosticSystem, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return &Generator{
		config:      config,
		modules:     NewModuleResolver(),
		diagnostics: diagnostics,
		logger:      logger,
		out:         os.Stdout,
	}
}

// SetOutput sets where dry runs print generated files
func (g *Generator) SetOutput(w io.Writer) {
	g.out = w
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Generate runs generation for the packages matching patterns, ./... by
// default.
func (g *Generator) Generate(ctx context.Context, patterns []string) (*GenerationSummary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := g.logger.With(zap.String(logging.FieldRunID, runID))
	g.summary = GenerationSummary{RunID: runID}

	module, result, err := g.load(ctx, logger, patterns)
	if err != nil {
		return nil, err
	}
	g.summary.Module = module.Path
	g.summary.PackagesLoaded = len(result.Packages)

	gen := generator.NewGenerator(generator.Options{
		PropertyPrefix: g.config.PropertyPrefix,
		SeedMethod:     g.config.SeedMethod,
		OutputFile:     g.config.OutputFile,
		Logger:         logger,
	})

	g.diagnostics.PhaseHeader("Generating")
	files := make([]*models.GeneratedFile, len(result.Packages))
	failures := make([]error, len(result.Packages))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Concurrency)
	for i, pkg := range result.Packages {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			file, err := gen.GeneratePackage(pkg, result.Overrides)
			if err != nil {
				logger.Debug("package generation failed",
					zap.String(logging.FieldPackage, pkg.Metadata.PackagePath),
					zap.Error(err))
				failures[i] = err
				return nil
			}
			files[i] = file
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "generation cancelled")
	}
	if err := errors.Join(failures...); err != nil {
		return nil, errors.WithHint(err, "fix the contracts above; no file is written for a package with errors")
	}

	for i, file := range files {
		pkg := result.Packages[i]
		if file == nil {
			if err := g.removeStale(pkg, logger); err != nil {
				return nil, err
			}
			continue
		}
		if err := g.write(file, logger); err != nil {
			return nil, err
		}
		g.summary.PackagesGenerated++
		g.summary.TypesGenerated += len(file.Types)
		g.diagnostics.PhaseItem(fmt.Sprintf("%s (%d types)", file.PackagePath, len(file.Types)))
	}

	stats := gen.Stats()
	logger.Info("generation finished",
		zap.Int("packages", g.summary.PackagesGenerated),
		zap.Int("types", g.summary.TypesGenerated),
		zap.Int64("syntheses", stats.Creates),
		zap.Duration(logging.FieldDuration, time.Since(start)))

	summary := g.summary
	return &summary, nil
}

// Inspect plans every contract of the packages matching patterns without
// generating code
func (g *Generator) Inspect(ctx context.Context, patterns []string) (*templates.Report, error) {
	logger := g.logger.With(zap.String(logging.FieldRunID, uuid.NewString()))

	_, result, err := g.load(ctx, logger, patterns)
	if err != nil {
		return nil, err
	}

	gen := generator.NewGenerator(generator.Options{
		PropertyPrefix: g.config.PropertyPrefix,
		SeedMethod:     g.config.SeedMethod,
		OutputFile:     g.config.OutputFile,
		Logger:         logger,
	})

	report := &templates.Report{}
	var failures []error
	for _, pkg := range result.Packages {
		types, err := gen.InspectPackage(pkg, result.Overrides)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if len(types) == 0 {
			continue
		}
		report.Packages = append(report.Packages, templates.PackageReport{
			Path:  pkg.Metadata.PackagePath,
			File:  filepath.Join(pkg.Metadata.Dir, g.config.OutputFile),
			Types: types,
		})
	}
	if err := errors.Join(failures...); err != nil {
		return nil, err
	}
	return report, nil
}

func (g *Generator) load(ctx context.Context, logger *zap.Logger, patterns []string) (*Module, *parser.LoadResult, error) {
	g.diagnostics.PhaseHeader("Loading")

	module, err := g.modules.Resolve(g.config.Dir)
	if err != nil {
		return nil, nil, err
	}
	g.diagnostics.PhaseItem("Module " + module.Path)

	p := parser.NewParser()
	p.SetBuildTags(g.config.BuildTags)
	p.SetOutputFile(g.config.OutputFile)

	start := time.Now()
	result, err := p.Load(ctx, g.config.Dir, patterns...)
	if err != nil {
		return nil, nil, errors.WithHint(err, "the packages must compile apart from the generated file; run `go build` to see all errors")
	}
	logger.Debug("loaded packages",
		zap.Strings("patterns", patterns),
		zap.Int("packages", len(result.Packages)),
		zap.Duration(logging.FieldDuration, time.Since(start)))

	contracts := 0
	for _, pkg := range result.Packages {
		contracts += len(pkg.Metadata.Contracts)
	}
	g.diagnostics.PhaseItem(fmt.Sprintf("%d packages, %d contracts", len(result.Packages), contracts))
	return module, result, nil
}

// write writes file unless its content is unchanged. Dry runs print it
// instead.
func (g *Generator) write(file *models.GeneratedFile, logger *zap.Logger) error {
	if g.config.DryRun {
		fmt.Fprintf(g.out, "// %s\n%s\n", file.FilePath, file.Content)
		g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.FilePath)
		return nil
	}

	if existing, err := os.ReadFile(file.FilePath); err == nil && bytes.Equal(existing, file.Content) {
		logger.Debug("generated file unchanged", zap.String(logging.FieldFile, file.FilePath))
		g.summary.UnchangedFiles = append(g.summary.UnchangedFiles, file.FilePath)
		return nil
	}

	g.diagnostics.PhaseProgress("Writing " + file.FilePath)
	if err := os.WriteFile(file.FilePath, file.Content, 0644); err != nil {
		return smogerrors.WrapFileSystemError("write", file.FilePath, err)
	}
	g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.FilePath)
	return nil
}

// removeStale deletes the generated file of a package that no longer
// declares any contract
func (g *Generator) removeStale(pkg *parser.Package, logger *zap.Logger) error {
	if pkg.Metadata.Dir == "" {
		return nil
	}
	path := filepath.Join(pkg.Metadata.Dir, g.config.OutputFile)
	ok, err := isGenerated(path)
	if err != nil || !ok {
		return err
	}
	if g.config.DryRun {
		fmt.Fprintf(g.out, "// %s would be removed\n", path)
		return nil
	}
	if err := os.Remove(path); err != nil {
		return smogerrors.WrapFileSystemError("remove stale", path, err)
	}
	logger.Info("removed stale generated file", zap.String(logging.FieldFile, path))
	g.summary.RemovedFiles = append(g.summary.RemovedFiles, path)
	return nil
}

// Report prints the summary of a run
func (g *Generator) Report(summary *GenerationSummary) {
	stats := map[string]interface{}{
		"packages loaded":    summary.PackagesLoaded,
		"packages generated": summary.PackagesGenerated,
		"types generated":    summary.TypesGenerated,
	}
	if len(summary.RemovedFiles) > 0 {
		stats["stale files removed"] = len(summary.RemovedFiles)
	}
	g.diagnostics.Summary("Summary", stats)

	files := append([]string{}, summary.GeneratedFiles...)
	sort.Strings(files)
	for _, file := range files {
		g.diagnostics.List("%s", file)
	}
	g.diagnostics.Verbose("run %s", summary.RunID)
	g.diagnostics.GenerationComplete()
}
