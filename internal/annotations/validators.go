package annotations

import (
	"fmt"
	"go/token"
	"strings"
)

// ValidateIdentifier accepts Go identifiers.
func ValidateIdentifier(v interface{}) error {
	s, ok := v.(string)
	if !ok || !token.IsIdentifier(s) {
		return fmt.Errorf("must be an identifier, got '%v'", v)
	}
	return nil
}

// ValidateTypeExpr accepts Ident, pkg.Ident and a leading '*'.
func ValidateTypeExpr(v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a type name, got %T", v)
	}
	name := strings.TrimPrefix(s, "*")
	qual, ident, qualified := strings.Cut(name, ".")
	if !qualified {
		ident, qual = qual, ""
	}
	if (qualified && !token.IsIdentifier(qual)) || !token.IsIdentifier(ident) {
		return fmt.Errorf("must be a type name such as Person or models.Person, got '%s'", s)
	}
	return nil
}

// TargetParameterSpec returns the -target parameter specification
func TargetParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Required:    true,
		Description: "The matched type, resolved from the contract's package",
		Validator:   ValidateTypeExpr,
	}
}

// DescriptionParameterSpec returns the -description parameter specification
func DescriptionParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Required:    false,
		Description: "Text describing the expected value; defaults to \"a <Target>\"",
	}
}
