// Package synth turns contract descriptors into synthesis plans and drives
// a backend through building the generated type.
package synth

import (
	"strings"
	"unicode"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/naming"
)

// OverrideMethod is the aggregator method every generated type re-exposes.
const OverrideMethod = "MatchesSafely"

// TypeName identifies a generated type. Ident is a valid Go identifier;
// String is unique per contract.
type TypeName struct {
	Package string
	Ident   string
}

func (n TypeName) String() string {
	if n.Package == "" {
		return n.Ident
	}
	return n.Package + "." + n.Ident
}

// FieldPlan is one property holder field.
type FieldPlan struct {
	Name     string
	Property string
}

// MethodKind tells the backend which kind of operation a method implements.
type MethodKind int

const (
	PropertyMethod MethodKind = iota
	SeedMethod
	Override
)

func (k MethodKind) String() string {
	switch k {
	case SeedMethod:
		return "seed"
	case Override:
		return "override"
	default:
		return "property"
	}
}

// MethodPlan is one method of the generated type.
type MethodPlan struct {
	Name string
	Kind MethodKind
	// Method is the contract method implemented. It is nil for the override.
	Method contract.Method
	Params []contract.Type
	Return contract.Type
	Body   Body
}

// Plan is the full, backend independent recipe for a generated type.
type Plan struct {
	Name        TypeName
	Key         string
	Contract    contract.Contract
	Target      contract.Type
	Description string
	Fields      []FieldPlan
	Constructor Body
	Methods     []MethodPlan
	Seeds       []MethodPlan
	Override    MethodPlan
}

// NameFor returns the generated type name of a contract.
func NameFor(c contract.Contract) TypeName {
	full := c.FullName()
	pkg := ""
	if i := strings.LastIndex(full, "."+c.SimpleName()); i > 0 {
		pkg = full[:i]
	}
	return TypeName{Package: pkg, Ident: naming.Decapitalize(identifier(c.SimpleName())) + "Smog"}
}

// FieldName returns the holder field of a property.
func FieldName(property string) string {
	return identifier(property) + "Matcher"
}

// identifier replaces every rune that cannot appear in a Go identifier.
func identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
