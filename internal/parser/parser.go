package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/toyz/smog/internal/annotations"
	"github.com/toyz/smog/internal/models"
)

// Parser extracts smog annotations from Go source files
type Parser struct {
	fileSet     *token.FileSet
	annotations *annotations.ParticipleParser
	buildTags   []string
	outputFile  string
}

// NewParser creates a new annotation parser
func NewParser() *Parser {
	return &Parser{
		fileSet:     token.NewFileSet(),
		annotations: annotations.NewParticipleParser(annotations.DefaultRegistry()),
		outputFile:  DefaultOutputFile,
	}
}

// SetBuildTags sets the build tags used when loading packages
func (p *Parser) SetBuildTags(tags []string) {
	p.buildTags = tags
}

// SetOutputFile sets the name of the generated file. Type errors reported
// in that file are ignored while loading, since it is about to be replaced.
func (p *Parser) SetOutputFile(name string) {
	if name != "" {
		p.outputFile = name
	}
}

// ParseSource parses source code from a string for testing purposes
func (p *Parser) ParseSource(filename, source string) (*models.PackageMetadata, error) {
	file, err := parser.ParseFile(p.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	metadata := &models.PackageMetadata{
		PackageName: file.Name.Name,
		PackagePath: "./",
		Overrides:   make(map[string]string),
	}
	if err := p.extractInto(metadata, p.fileSet, file, filename); err != nil {
		return nil, err
	}
	return metadata, nil
}

// FileAnnotations holds the annotations of one file
type FileAnnotations struct {
	Contracts []models.ContractMetadata
	// Overrides maps "Interface.Method" to the property name
	Overrides map[string]string
}

// ExtractAnnotations traverses the AST and extracts smog:: annotations from
// the doc comments of interface declarations and their methods. Every
// malformed annotation is reported in a single MultipleAnnotationErrors.
func (p *Parser) ExtractAnnotations(fset *token.FileSet, file *ast.File, fileName string) (*FileAnnotations, error) {
	result := &FileAnnotations{Overrides: make(map[string]string)}
	errs := &annotations.MultipleAnnotationErrors{}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			if fn, ok := decl.(*ast.FuncDecl); ok {
				p.rejectAnnotations(fset, fn.Doc, fileName, "functions", errs)
			}
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			doc := typeSpec.Doc
			if doc == nil && len(genDecl.Specs) == 1 {
				doc = genDecl.Doc
			}

			iface, ok := typeSpec.Type.(*ast.InterfaceType)
			if !ok {
				p.rejectAnnotations(fset, doc, fileName, "non-interface types; struct contracts use field tags", errs)
				continue
			}

			p.extractContract(fset, typeSpec, doc, fileName, result, errs)
			p.extractOverrides(fset, typeSpec.Name.Name, iface, fileName, result, errs)
		}
	}

	if len(errs.Errors) > 0 {
		return result, errs
	}
	return result, nil
}

func (p *Parser) extractContract(fset *token.FileSet, spec *ast.TypeSpec, doc *ast.CommentGroup, fileName string, result *FileAnnotations, errs *annotations.MultipleAnnotationErrors) {
	var found *annotations.ParsedAnnotation
	for _, parsed := range p.parseGroup(fset, doc, fileName, errs) {
		switch {
		case parsed.Type != annotations.MatcherAnnotation:
			errs.Errors = append(errs.Errors, annotations.NewSchemaErrorWithContext(
				fmt.Sprintf("%s annotations belong on interface methods", parsed.Type), parsed.Location, parsed.Type))
		case found != nil:
			errs.Errors = append(errs.Errors, annotations.NewSchemaErrorWithContext(
				fmt.Sprintf("interface %s has more than one matcher annotation", spec.Name.Name), parsed.Location, parsed.Type))
		default:
			found = parsed
		}
	}
	if found == nil {
		return
	}

	if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
		errs.Errors = append(errs.Errors, annotations.NewSchemaErrorWithContext(
			fmt.Sprintf("generic interface %s cannot be generated", spec.Name.Name), found.Location, found.Type))
		return
	}

	result.Contracts = append(result.Contracts, models.ContractMetadata{
		Name:           spec.Name.Name,
		Target:         found.GetString(ParamTarget),
		Description:    found.GetString(ParamDescription),
		HasDescription: found.HasParameter(ParamDescription),
		FileName:       fileName,
		Line:           found.Location.Line,
		Column:         found.Location.Column,
	})
}

func (p *Parser) extractOverrides(fset *token.FileSet, ifaceName string, iface *ast.InterfaceType, fileName string, result *FileAnnotations, errs *annotations.MultipleAnnotationErrors) {
	if iface.Methods == nil {
		return
	}
	for _, field := range iface.Methods.List {
		parsed := p.parseGroup(fset, field.Doc, fileName, errs)
		if len(parsed) == 0 {
			continue
		}
		if _, ok := field.Type.(*ast.FuncType); !ok || len(field.Names) != 1 {
			errs.Errors = append(errs.Errors, annotations.NewSchemaErrorWithContext(
				"annotations on embedded interfaces are not supported", parsed[0].Location, parsed[0].Type))
			continue
		}

		key := ifaceName + "." + field.Names[0].Name
		for _, a := range parsed {
			switch {
			case a.Type != annotations.PropertyAnnotation:
				errs.Errors = append(errs.Errors, annotations.NewSchemaErrorWithContext(
					fmt.Sprintf("%s annotations belong on interface declarations", a.Type), a.Location, a.Type))
			case result.Overrides[key] != "":
				errs.Errors = append(errs.Errors, annotations.NewSchemaErrorWithContext(
					fmt.Sprintf("method %s has more than one property annotation", key), a.Location, a.Type))
			default:
				result.Overrides[key] = a.Target
			}
		}
	}
}

// rejectAnnotations reports smog annotations found where none are allowed.
func (p *Parser) rejectAnnotations(fset *token.FileSet, doc *ast.CommentGroup, fileName, what string, errs *annotations.MultipleAnnotationErrors) {
	for _, parsed := range p.parseGroup(fset, doc, fileName, errs) {
		errs.Errors = append(errs.Errors, annotations.NewSchemaErrorWithContext(
			fmt.Sprintf("%s annotations are not supported on %s", parsed.Type, what), parsed.Location, parsed.Type))
	}
}

// parseGroup parses every annotation comment of doc.
func (p *Parser) parseGroup(fset *token.FileSet, doc *ast.CommentGroup, fileName string, errs *annotations.MultipleAnnotationErrors) []*annotations.ParsedAnnotation {
	if doc == nil {
		return nil
	}
	var out []*annotations.ParsedAnnotation
	for _, comment := range doc.List {
		if !annotations.IsAnnotation(comment.Text) {
			continue
		}
		pos := fset.Position(comment.Slash)
		loc := annotations.SourceLocation{File: fileName, Line: pos.Line, Column: pos.Column}

		parsed, err := p.annotations.ParseAnnotation(comment.Text, loc)
		if err != nil {
			if annErr, ok := err.(annotations.AnnotationError); ok {
				errs.Errors = append(errs.Errors, annErr)
			} else {
				errs.Errors = append(errs.Errors, annotations.NewSyntaxErrorWithContext(err.Error(), loc, comment.Text))
			}
			continue
		}
		out = append(out, parsed)
	}
	return out
}

func (p *Parser) extractInto(metadata *models.PackageMetadata, fset *token.FileSet, file *ast.File, fileName string) error {
	found, err := p.ExtractAnnotations(fset, file, fileName)
	if err != nil {
		return err
	}
	metadata.Contracts = append(metadata.Contracts, found.Contracts...)
	for k, v := range found.Overrides {
		metadata.Overrides[k] = v
	}
	return nil
}
