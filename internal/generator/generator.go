package generator

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dave/jennifer/jen"
	"go.uber.org/zap"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/contract/gosource"
	"github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/internal/logging"
	"github.com/toyz/smog/internal/models"
	"github.com/toyz/smog/internal/naming"
	"github.com/toyz/smog/internal/parser"
	"github.com/toyz/smog/internal/synth"
	"github.com/toyz/smog/internal/synth/source"
	"github.com/toyz/smog/internal/utils"
)

// Header is the first line of every generated file.
const Header = "Code generated by smog. DO NOT EDIT."

// Options configures a Generator
type Options struct {
	PropertyPrefix string
	SeedMethod     string
	OutputFile     string
	Logger         *zap.Logger
}

var _ CodeGenerator = (*Generator)(nil)

// Generator synthesizes and renders the matcher types of loaded packages
type Generator struct {
	model       *contract.Model
	synthesizer *synth.Synthesizer
	cache       *utils.Cache[string, *source.Type]
	outputFile  string
	logger      *zap.Logger
}

// NewGenerator creates a new code generator instance. Each contract is
// synthesized at most once per generator.
func NewGenerator(opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := opts.OutputFile
	if output == "" {
		output = parser.DefaultOutputFile
	}
	return &Generator{
		model:       contract.NewModel(opts.PropertyPrefix, opts.SeedMethod),
		synthesizer: synth.New(gosource.Locator{}, logger),
		cache:       utils.NewCache[string, *source.Type](),
		outputFile:  output,
		logger:      logger,
	}
}

// Stats reports cache activity
func (g *Generator) Stats() utils.CacheStats {
	return g.cache.GetStats()
}

// GeneratePackage generates the implementations of every annotated contract
// of pkg. It returns nil when pkg declares no contract. Every failing
// contract is reported; nothing is generated unless all succeed.
func (g *Generator) GeneratePackage(pkg *parser.Package, overrides gosource.Overrides) (*models.GeneratedFile, error) {
	if pkg == nil || pkg.Metadata == nil {
		return nil, fmt.Errorf("package cannot be nil")
	}
	if !pkg.Metadata.HasContracts() {
		return nil, nil
	}
	start := time.Now()

	plans, err := g.plan(pkg, overrides)
	if err != nil {
		return nil, err
	}

	backend := source.New()
	errs := errors.NewMultipleErrors()
	built := make([]*source.Type, 0, len(plans))
	summaries := make([]models.GeneratedType, 0, len(plans))
	for _, p := range plans {
		t, created, err := g.cache.GetOrCreate(p.Key, func() (*source.Type, error) {
			gt, err := g.synthesizer.BuildPlan(p, backend)
			if err != nil {
				return nil, err
			}
			return gt.(*source.Type), nil
		})
		if err != nil {
			errs.Add(smogError(err, p.Contract.Location()))
			continue
		}
		if created {
			g.logger.Debug("generated matcher type",
				zap.String(logging.FieldContract, p.Contract.FullName()),
				zap.String(logging.FieldKey, p.Key),
				zap.String("type", t.Ident()))
		}
		built = append(built, t)
		summaries = append(summaries, summarize(p))
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	path := filepath.Join(pkg.Metadata.Dir, g.outputFile)
	content, err := g.render(pkg, path, built)
	if err != nil {
		return nil, errors.WrapGenerateError(pkg.Metadata.PackagePath, err)
	}

	g.logger.Debug("generated package",
		zap.String(logging.FieldPackage, pkg.Metadata.PackagePath),
		zap.String(logging.FieldFile, path),
		zap.Int("types", len(built)),
		zap.Duration(logging.FieldDuration, time.Since(start)))

	return &models.GeneratedFile{
		PackageName: pkg.Metadata.PackageName,
		PackagePath: pkg.Metadata.PackagePath,
		FilePath:    path,
		Content:     content,
		Types:       summaries,
	}, nil
}

// InspectPackage plans every contract of pkg without generating code.
func (g *Generator) InspectPackage(pkg *parser.Package, overrides gosource.Overrides) ([]models.GeneratedType, error) {
	if pkg == nil || pkg.Metadata == nil {
		return nil, fmt.Errorf("package cannot be nil")
	}
	if !pkg.Metadata.HasContracts() {
		return nil, nil
	}
	plans, err := g.plan(pkg, overrides)
	if err != nil {
		return nil, err
	}
	out := make([]models.GeneratedType, len(plans))
	for i, p := range plans {
		out[i] = summarize(p)
	}
	return out, nil
}

// plan analyzes and plans every contract of pkg, collecting all failures.
func (g *Generator) plan(pkg *parser.Package, overrides gosource.Overrides) ([]*synth.Plan, error) {
	src, err := pkg.Source(overrides)
	if err != nil {
		return nil, err
	}

	errs := errors.NewMultipleErrors()
	var plans []*synth.Plan
	for _, meta := range pkg.Metadata.Contracts {
		loc := errors.SourceLocation{File: meta.FileName, Line: meta.Line, Column: meta.Column}

		c, err := src.Contract(meta.Name, parser.Annotation(meta))
		if err != nil {
			errs.Add(smogError(err, loc))
			continue
		}
		d, err := g.model.Analyze(c)
		if err != nil {
			errs.Add(smogError(err, loc))
			continue
		}
		p, err := g.synthesizer.Plan(d)
		if err != nil {
			errs.Add(smogError(err, loc))
			continue
		}
		plans = append(plans, p)
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return plans, nil
}

func (g *Generator) render(pkg *parser.Package, path string, types []*source.Type) ([]byte, error) {
	f := jen.NewFilePathName(pkg.Metadata.PackagePath, pkg.Metadata.PackageName)
	f.HeaderComment(Header)
	for _, imp := range pkg.Types.Imports() {
		f.ImportName(imp.Path(), imp.Name())
	}
	f.ImportName(gosource.CorePath, "core")
	f.ImportName(source.SmogPath, "smog")

	registrations := make([]jen.Code, 0, len(types))
	for _, t := range types {
		for _, decl := range t.Decls() {
			f.Add(decl)
			f.Line()
		}
		registrations = append(registrations, t.Registration())
	}
	f.Func().Id("init").Params().Block(registrations...)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", path, err)
	}
	return utils.FormatGoCode(path, buf.Bytes())
}

// summarize describes a plan for reports.
func summarize(p *synth.Plan) models.GeneratedType {
	out := models.GeneratedType{
		Contract:    p.Contract.FullName(),
		Type:        p.Name.Ident,
		Constructor: "new" + naming.Capitalize(p.Name.Ident),
		Target:      p.Target.String(),
		Description: p.Description,
	}
	for _, f := range p.Fields {
		out.Properties = append(out.Properties, f.Property)
	}
	methods := append(append(append([]synth.MethodPlan{}, p.Methods...), p.Seeds...), p.Override)
	for _, m := range methods {
		out.Methods = append(out.Methods, models.Method{Name: m.Name, Kind: m.Kind.String(), Body: m.Body.String()})
	}
	return out
}

// smogError keeps engine errors as they are and attaches loc when they
// carry no location of their own.
func smogError(err error, loc errors.SourceLocation) errors.SmogError {
	se, ok := err.(errors.SmogError)
	if !ok {
		return errors.WrapGenerateError(loc.File, err).WithLocation(loc)
	}
	if be, ok := se.(*errors.BaseError); ok && be.Location().IsEmpty() {
		return be.WithLocation(loc)
	}
	return se
}
