package models

// ErrorType represents different types of generator errors
type ErrorType int

const (
	ErrorTypeAnnotationSyntax ErrorType = iota
	ErrorTypeValidation
	ErrorTypeGeneration
	ErrorTypeFileSystem
)

// String returns the string representation of the error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeAnnotationSyntax:
		return "annotation syntax"
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeGeneration:
		return "generation"
	case ErrorTypeFileSystem:
		return "file system"
	default:
		return "unknown"
	}
}
