package utils

import (
	"cmp"
	"fmt"
	"go/token"
	"regexp"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Validator represents a validation function
type Validator[T any] func(T) error

// ValidatorChain allows chaining multiple validators
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a new validator chain
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add adds a validator to the chain
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs all validators in the chain and stops at the first failure
func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validator := range vc.validators {
		if err := validator(value); err != nil {
			return err
		}
	}
	return nil
}

// NotEmpty validates that a string is not empty
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if value == "" {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: "cannot be empty",
			}
		}
		return nil
	}
}

// HasSuffix validates that a string ends with suffix
func HasSuffix(field, suffix string) Validator[string] {
	return func(value string) error {
		if !strings.HasSuffix(value, suffix) {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("must end with '%s'", suffix),
			}
		}
		return nil
	}
}

// MatchesRegex validates that a string matches pattern
func MatchesRegex(field, pattern string) Validator[string] {
	re := regexp.MustCompile(pattern)
	return func(value string) error {
		if !re.MatchString(value) {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("must match pattern '%s'", pattern),
			}
		}
		return nil
	}
}

// IsValidGoIdentifier validates that a string is a valid Go identifier
func IsValidGoIdentifier(field string) Validator[string] {
	return func(value string) error {
		if value == "" {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: "cannot be empty",
			}
		}
		if !token.IsIdentifier(value) {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: "must be a valid Go identifier",
			}
		}
		return nil
	}
}

// IsOneOf validates that a value is one of the allowed values
func IsOneOf[T comparable](field string, allowed ...T) Validator[T] {
	return func(value T) error {
		for _, allowedValue := range allowed {
			if value == allowedValue {
				return nil
			}
		}
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("must be one of: %v", allowed),
		}
	}
}

// AtLeast validates that a value is not below min
func AtLeast[T cmp.Ordered](field string, min T) Validator[T] {
	return func(value T) error {
		if value < min {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("must be at least %v", min),
			}
		}
		return nil
	}
}

// ValidateEach validates each item of a slice
func ValidateEach[T any](field string, itemValidator Validator[T]) Validator[[]T] {
	return func(values []T) error {
		for i, value := range values {
			if err := itemValidator(value); err != nil {
				return ValidationError{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Value:   value,
					Message: err.Error(),
				}
			}
		}
		return nil
	}
}
