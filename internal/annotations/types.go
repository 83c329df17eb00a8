package annotations

import "fmt"

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	// MatcherAnnotation marks an interface as a matcher contract.
	MatcherAnnotation AnnotationType = iota
	// PropertyAnnotation overrides the property of one contract method.
	PropertyAnnotation
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case MatcherAnnotation:
		return "matcher"
	case PropertyAnnotation:
		return "property"
	default:
		return "unknown"
	}
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "matcher":
		return MatcherAnnotation, nil
	case "property":
		return PropertyAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// ParsedAnnotation represents a fully parsed annotation with type-safe parameters
type ParsedAnnotation struct {
	Type       AnnotationType         // Annotation type enum
	Target     string                 // Positional argument, e.g. the property name
	Parameters map[string]interface{} // Typed parameters
	Location   SourceLocation         // Source location
	Raw        string                 // Original annotation text
}

// HasParameter reports whether the annotation sets paramName.
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, ok := p.Parameters[paramName]
	return ok
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType           // Parameter type
	Required     bool                    // Whether parameter is required
	DefaultValue interface{}             // Default value if not provided
	Description  string                  // Parameter description
	Validator    func(interface{}) error // Custom validator function
}

// PositionalSpec defines the positional argument of an annotation.
type PositionalSpec struct {
	Name      string
	Required  bool
	Validator func(interface{}) error
}

// CustomValidator represents a custom validation function for annotations
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType           // Annotation type enum
	Description string                   // Human-readable description
	Positional  *PositionalSpec          // Positional argument, if any
	Parameters  map[string]ParameterSpec // Parameter specifications
	Validators  []CustomValidator        // Custom validation functions
	Examples    []string                 // Usage examples
}
