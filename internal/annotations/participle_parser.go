package annotations

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Prefix starts every smog annotation after the comment marker.
const Prefix = "smog::"

// ParticipleParser represents a parser using alecthomas/participle
type ParticipleParser struct {
	parser   *participle.Parser[Annotation]
	registry AnnotationRegistry
}

// Annotation is the grammar of one annotation comment:
//
//	//smog::<kind> [positional...] [-key[=value]...]
type Annotation struct {
	Kind       string       `parser:"Comment Prefix @Ident"`
	Positional []string     `parser:"@(Ident | String | Number)*"`
	Params     []*Parameter `parser:"@@*"`
}

// Parameter represents a -key or -key=value parameter
type Parameter struct {
	Pos   lexer.Position
	Key   string  `parser:"Dash @Ident"`
	Value *string `parser:"(Equals @(String | Ident | Number))?"`
}

// NewParticipleParser creates a new parser using participle. A nil
// registry skips schema validation.
func NewParticipleParser(registry AnnotationRegistry) *ParticipleParser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `//`},
		{Name: "Prefix", Pattern: `smog::`},
		{Name: "String", Pattern: `"(\\"|[^"])*"`},
		{Name: "Ident", Pattern: `\*?[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?`},
		{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
		{Name: "Dash", Pattern: `-`},
		{Name: "Equals", Pattern: `=`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	parser := participle.MustBuild[Annotation](
		participle.Lexer(lex),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)

	return &ParticipleParser{
		parser:   parser,
		registry: registry,
	}
}

// IsAnnotation reports whether comment is a smog annotation.
func IsAnnotation(comment string) bool {
	text := strings.TrimSpace(comment)
	if !strings.HasPrefix(text, "//") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(text, "//")), Prefix)
}

// ParseAnnotation parses an annotation string
func (p *ParticipleParser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	text := strings.TrimSpace(comment)
	if !IsAnnotation(text) {
		return nil, NewSyntaxErrorWithContext("annotation must start with '//"+Prefix+"' prefix", location, text)
	}

	ast, err := p.parser.ParseString(location.File, text)
	if err != nil {
		loc := location
		msg := err.Error()
		var perr participle.Error
		if errors.As(err, &perr) {
			loc.Column = location.Column + perr.Position().Column - 1
			msg = perr.Message()
		}
		return nil, NewSyntaxErrorWithContext(msg, loc, text)
	}

	annotationType, err := ParseAnnotationType(ast.Kind)
	if err != nil {
		return nil, NewSyntaxErrorWithContext(err.Error(), location, text)
	}
	if p.registry != nil && !p.registry.IsRegistered(annotationType) {
		return nil, NewSchemaErrorWithContext(
			fmt.Sprintf("annotation type '%s' is not registered in schema registry", ast.Kind), location, annotationType)
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        text,
	}
	if len(ast.Positional) > 0 {
		parsed.Target = ast.Positional[0]
	}

	if p.registry == nil {
		for _, param := range ast.Params {
			if param.Value != nil {
				parsed.Parameters[param.Key] = *param.Value
			} else {
				parsed.Parameters[param.Key] = true
			}
		}
		return parsed, nil
	}

	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		return nil, NewSchemaErrorWithContext(err.Error(), location, annotationType)
	}
	if err := p.applySchema(parsed, ast, schema); err != nil {
		return nil, err
	}
	return parsed, nil
}

// applySchema converts parameters to their declared types and validates
// positional arguments, parameters and custom rules. Defaults are applied
// only to parameters written without a value.
func (p *ParticipleParser) applySchema(parsed *ParsedAnnotation, ast *Annotation, schema AnnotationSchema) error {
	loc := parsed.Location

	switch {
	case schema.Positional == nil && len(ast.Positional) > 0:
		return NewSchemaErrorWithContext(
			fmt.Sprintf("unexpected argument '%s' for annotation type %s", ast.Positional[0], parsed.Type), loc, parsed.Type)
	case schema.Positional != nil && len(ast.Positional) > 1:
		return NewSchemaErrorWithContext(
			fmt.Sprintf("unexpected argument '%s' for annotation type %s", ast.Positional[1], parsed.Type), loc, parsed.Type)
	case schema.Positional != nil && len(ast.Positional) == 0 && schema.Positional.Required:
		return NewSchemaErrorWithContext(
			fmt.Sprintf("missing %s for annotation type %s", schema.Positional.Name, parsed.Type), loc, parsed.Type)
	}
	if schema.Positional != nil && parsed.Target != "" && schema.Positional.Validator != nil {
		if err := schema.Positional.Validator(parsed.Target); err != nil {
			return NewValidationErrorWithContext(schema.Positional.Name, err.Error(), parsed.Target, loc, parsed.Type)
		}
	}

	for _, param := range ast.Params {
		spec, ok := schema.Parameters[param.Key]
		if !ok {
			return NewSchemaErrorWithContext(
				fmt.Sprintf("unknown parameter '%s' for annotation type %s", param.Key, parsed.Type), loc, parsed.Type)
		}
		if parsed.HasParameter(param.Key) {
			return NewSchemaErrorWithContext(
				fmt.Sprintf("parameter '%s' is given more than once", param.Key), loc, parsed.Type)
		}

		value, err := convertParameterValue(param, spec)
		if err != nil {
			raw := ""
			if param.Value != nil {
				raw = *param.Value
			}
			return NewValidationErrorWithContext(param.Key, err.Error(), raw, loc, parsed.Type)
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				return NewValidationErrorWithContext(param.Key, err.Error(), fmt.Sprint(value), loc, parsed.Type)
			}
		}
		parsed.Parameters[param.Key] = value
	}

	for name, spec := range schema.Parameters {
		if spec.Required && !parsed.HasParameter(name) {
			return NewSchemaErrorWithContext(
				fmt.Sprintf("missing required parameter '%s' for annotation type %s", name, parsed.Type), loc, parsed.Type)
		}
	}

	for _, validate := range schema.Validators {
		if err := validate(parsed); err != nil {
			return NewSchemaErrorWithContext(err.Error(), loc, parsed.Type)
		}
	}
	return nil
}

func convertParameterValue(param *Parameter, spec ParameterSpec) (interface{}, error) {
	if param.Value == nil {
		switch {
		case spec.Type == BoolType:
			return true, nil
		case spec.DefaultValue != nil:
			return spec.DefaultValue, nil
		default:
			return nil, fmt.Errorf("a %s value", spec.Type)
		}
	}

	switch spec.Type {
	case BoolType:
		b, err := strconv.ParseBool(*param.Value)
		if err != nil {
			return nil, fmt.Errorf("a bool value")
		}
		return b, nil
	default:
		return *param.Value, nil
	}
}
