// Package contract analyzes matcher contracts into descriptors. Contracts
// come from one of two sources: Go structs of func fields inspected with
// reflect, or annotated interfaces inspected with go/types. Both sources
// implement the interfaces in this file.
package contract

import "github.com/toyz/smog/internal/errors"

// Type is a type as seen by a contract source.
type Type interface {
	// Name is the unqualified type name, e.g. "Person".
	Name() string
	String() string
	Identical(other Type) bool
	AssignableTo(other Type) bool
	// IsMatcher reports whether the type satisfies the base matcher capability.
	IsMatcher() bool
	// MatcherElem returns T for typed matchers.
	MatcherElem() (Type, bool)
	IsEmptyInterface() bool
}

// Method is one operation declared by a contract.
type Method interface {
	Name() string
	// ID identifies the method across the contract hierarchy. Two methods
	// with the same ID are the same operation reached twice.
	ID() string
	Params() []Type
	Results() []Type
	// Override returns the property override attached to the method.
	Override() (string, bool)
	Location() errors.SourceLocation
}

// Declaration is the target/description pair a contract must carry.
type Declaration struct {
	Target         Type
	Description    string
	HasDescription bool
}

// Contract is a matcher contract and its parent contracts.
type Contract interface {
	FullName() string
	SimpleName() string
	// Declaration returns nil when the contract carries none.
	Declaration() (*Declaration, error)
	Parents() []Contract
	Methods() []Method
	// Generated is the type the synthesized implementation will have, used
	// to check return types.
	Generated() Type
	// Any is the universal value type, used for untyped predicates.
	Any() Type
	Location() errors.SourceLocation
}

// Accessor is a located property accessor.
type Accessor interface {
	Property() string
	Member() string
	// Type is the declared type of the value the accessor returns.
	Type() Type
}

// Locator finds property accessors on types of one source.
type Locator interface {
	FindAccessor(t Type, property string) (Accessor, bool)
}
