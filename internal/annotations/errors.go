package annotations

import (
	"fmt"
	"strings"
)

// AnnotationError defines the interface for annotation-related errors
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode represents different types of annotation errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
	SchemaErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	case SchemaErrorCode:
		return "SchemaError"
	default:
		return "UnknownError"
	}
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string         // Parameter name that failed validation
	Expected  string         // What was expected
	Actual    string         // What was provided
	Loc       SourceLocation // Where the error occurred
	Hint      string         // Suggested fix
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: parameter '%s' validation failed: expected %s, got %s. %s",
		e.Loc.File, e.Loc.Line, e.Loc.Column,
		e.Parameter, e.Expected, e.Actual, e.Hint)
}

func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
func (e *ValidationError) Code() ErrorCode          { return ValidationErrorCode }

// SyntaxError represents a syntax parsing error
type SyntaxError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s. %s",
		e.Loc.File, e.Loc.Line, e.Loc.Column, e.Msg, e.Hint)
}

func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }
func (e *SyntaxError) Code() ErrorCode          { return SyntaxErrorCode }

// SchemaError represents a schema-related error
type SchemaError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s:%d:%d: schema error: %s. %s",
		e.Loc.File, e.Loc.Line, e.Loc.Column, e.Msg, e.Hint)
}

func (e *SchemaError) Location() SourceLocation { return e.Loc }
func (e *SchemaError) Suggestion() string       { return e.Hint }
func (e *SchemaError) Code() ErrorCode          { return SchemaErrorCode }

// MultipleAnnotationErrors represents multiple annotation errors collected together
type MultipleAnnotationErrors struct {
	Errors []AnnotationError
}

func (e *MultipleAnnotationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("multiple annotation errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap returns the underlying errors for error inspection
func (e *MultipleAnnotationErrors) Unwrap() []error {
	errors := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errors[i] = err
	}
	return errors
}

// HasType returns true if any error of the specified type exists
func (e *MultipleAnnotationErrors) HasType(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.Code() == code {
			return true
		}
	}
	return false
}

// NewSyntaxErrorWithContext creates a syntax error with context-aware suggestions
func NewSyntaxErrorWithContext(msg string, loc SourceLocation, context string) *SyntaxError {
	return &SyntaxError{
		Msg:  msg,
		Loc:  loc,
		Hint: generateSyntaxSuggestion(msg, context),
	}
}

// NewValidationErrorWithContext creates a validation error with context-aware suggestions
func NewValidationErrorWithContext(parameter, expected, actual string, loc SourceLocation, annotationType AnnotationType) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Expected:  expected,
		Actual:    actual,
		Loc:       loc,
		Hint:      generateValidationSuggestion(parameter, annotationType),
	}
}

// NewSchemaErrorWithContext creates a schema error with context-aware suggestions
func NewSchemaErrorWithContext(msg string, loc SourceLocation, annotationType AnnotationType) *SchemaError {
	return &SchemaError{
		Msg:  msg,
		Loc:  loc,
		Hint: generateSchemaSuggestion(msg, annotationType),
	}
}

func generateSyntaxSuggestion(msg, context string) string {
	msg = strings.ToLower(msg)
	context = strings.ToLower(context)

	switch {
	case strings.Contains(msg, "prefix"):
		return "Annotations start with '//smog::' (note the double colon)"
	case strings.Contains(msg, "unknown annotation type"):
		return "Try: //smog::matcher -target=Person or //smog::property age"
	case strings.Contains(msg, "unexpected token"), strings.Contains(msg, "unexpected"):
		if strings.Contains(context, "matcher") {
			return "Matcher format: //smog::matcher -target=Type [-description=\"text\"]"
		}
		if strings.Contains(context, "property") {
			return "Property format: //smog::property name"
		}
		return "Parameters are written '-name=value'; quote values containing spaces"
	default:
		return "Check annotation syntax"
	}
}

func generateValidationSuggestion(parameter string, annotationType AnnotationType) string {
	switch {
	case annotationType == MatcherAnnotation && parameter == "target":
		return "target names the matched type, e.g. -target=Person or -target=models.Person"
	case annotationType == MatcherAnnotation && parameter == "description":
		return "Quote descriptions containing spaces: -description=\"a Person\""
	case annotationType == PropertyAnnotation:
		return "The property is a Go identifier, e.g. //smog::property age"
	default:
		return fmt.Sprintf("Check the value of '%s'", parameter)
	}
}

func generateSchemaSuggestion(msg string, annotationType AnnotationType) string {
	msg = strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "unknown parameter"):
		switch annotationType {
		case MatcherAnnotation:
			return "Matcher annotations support: -target, -description"
		case PropertyAnnotation:
			return "Property annotations take only the property name"
		}
	case strings.Contains(msg, "missing"):
		switch annotationType {
		case MatcherAnnotation:
			return "Add the matched type: -target=Person"
		case PropertyAnnotation:
			return "Name the property: //smog::property age"
		}
	}
	return "Check annotation schema and parameter definitions"
}
