package annotations

import "fmt"

// Built-in annotation schemas

// MatcherAnnotationSchema defines the schema for //smog::matcher annotations
var MatcherAnnotationSchema = AnnotationSchema{
	Type:        MatcherAnnotation,
	Description: "Marks an interface as a matcher contract for the target type",
	Parameters: map[string]ParameterSpec{
		"target":      TargetParameterSpec(),
		"description": DescriptionParameterSpec(),
	},
	Examples: []string{
		"//smog::matcher -target=Person",
		"//smog::matcher -target=Person -description=\"a Person\"",
		"//smog::matcher -target=*models.Address",
	},
}

// PropertyAnnotationSchema defines the schema for //smog::property annotations
var PropertyAnnotationSchema = AnnotationSchema{
	Type:        PropertyAnnotation,
	Description: "Names the property a contract method constrains",
	Positional: &PositionalSpec{
		Name:      "property",
		Required:  true,
		Validator: ValidateIdentifier,
	},
	Parameters: map[string]ParameterSpec{},
	Examples: []string{
		"//smog::property age",
	},
}

// RegisterBuiltinSchemas registers all built-in annotation schemas with the given registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range GetBuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Type.String(), err)
		}
	}
	return nil
}

// GetBuiltinSchemas returns all built-in annotation schemas
func GetBuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		MatcherAnnotationSchema,
		PropertyAnnotationSchema,
	}
}
