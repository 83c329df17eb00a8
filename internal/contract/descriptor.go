package contract

import "fmt"

// GeneratedSuffix is appended to a contract name to form its cache key.
const GeneratedSuffix = ":generated"

// Key returns the generated-type identity for a contract name.
func Key(fullName string) string {
	return fullName + GeneratedSuffix
}

// ParamKind separates literal operations from predicate operations.
type ParamKind int

const (
	Literal ParamKind = iota
	Predicate
)

func (k ParamKind) String() string {
	if k == Predicate {
		return "predicate"
	}
	return "literal"
}

// PropertyOperation is an operation constraining one property.
type PropertyOperation struct {
	Method   Method
	Name     string
	Property string
	Kind     ParamKind
	Param    Type
	// Value is the property value type: the parameter itself for literals,
	// the matcher's element type for predicates.
	Value  Type
	Return Type
	Origin string
}

func (op PropertyOperation) String() string {
	return fmt.Sprintf("%s(%s) -> %s [%s %s]", op.Name, op.Param, op.Return, op.Kind, op.Property)
}

// SeedOperation populates literal operations from a sample value.
type SeedOperation struct {
	Method Method
	Name   string
	Param  Type
	Return Type
	Origin string
}

// Descriptor is the analyzed form of a contract.
type Descriptor struct {
	Name        string
	Key         string
	SimpleName  string
	Target      Type
	Description string
	Properties  []PropertyOperation
	Seeds       []SeedOperation
	Contract    Contract
}

// PropertyNames returns the distinct properties in analysis order.
func (d *Descriptor) PropertyNames() []string {
	seen := make(map[string]bool, len(d.Properties))
	var names []string
	for _, op := range d.Properties {
		if !seen[op.Property] {
			seen[op.Property] = true
			names = append(names, op.Property)
		}
	}
	return names
}

// LiteralFor returns the first literal operation on property whose value
// type is identical to t.
func (d *Descriptor) LiteralFor(property string, t Type) (PropertyOperation, bool) {
	for _, op := range d.Properties {
		if op.Property == property && op.Kind == Literal && op.Value.Identical(t) {
			return op, true
		}
	}
	return PropertyOperation{}, false
}
