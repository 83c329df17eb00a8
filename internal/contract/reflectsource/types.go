// Package reflectsource reads matcher contracts declared as Go structs of
// func fields:
//
//	type PersonMatcher struct {
//		*core.Composite[Person] `smog:"description=a Person"`
//		AddresseeOps[*PersonMatcher]
//		HasAge     func(age int) *PersonMatcher
//		HasAgeThat func(m core.TypedMatcher[int]) *PersonMatcher `smog:"property=age"`
//		Like       func(p Person) *PersonMatcher
//	}
//
// The embedded composite is the declaration, other embedded structs are
// parent contracts and exported func fields are operations.
package reflectsource

import (
	"reflect"

	"github.com/toyz/smog/internal/accessor"
	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/pkg/core"
)

var (
	matcherType    = reflect.TypeFor[core.Matcher]()
	aggregatorType = reflect.TypeFor[core.Aggregator]()
	anyType        = reflect.TypeFor[any]()
)

// Type adapts a reflect.Type.
type Type struct {
	t reflect.Type
}

// TypeOf wraps t.
func TypeOf(t reflect.Type) Type {
	return Type{t: t}
}

// Reflect returns the wrapped type.
func (t Type) Reflect() reflect.Type {
	return t.t
}

func (t Type) Name() string {
	rt := t.t
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Name() != "" {
		return rt.Name()
	}
	return rt.String()
}

func (t Type) String() string {
	return t.t.String()
}

func (t Type) Identical(other contract.Type) bool {
	o, ok := other.(Type)
	return ok && o.t == t.t
}

func (t Type) AssignableTo(other contract.Type) bool {
	o, ok := other.(Type)
	return ok && t.t.AssignableTo(o.t)
}

func (t Type) IsMatcher() bool {
	return t.t.Implements(matcherType)
}

// MatcherElem returns T when the type has a MatchesTyped(T) method.
func (t Type) MatcherElem() (contract.Type, bool) {
	m, ok := t.t.MethodByName("MatchesTyped")
	if !ok {
		return nil, false
	}
	in := 0
	if t.t.Kind() != reflect.Interface {
		in = 1
	}
	if m.Type.NumIn() != in+1 {
		return nil, false
	}
	return Type{t: m.Type.In(in)}, true
}

func (t Type) IsEmptyInterface() bool {
	return t.t.Kind() == reflect.Interface && t.t.NumMethod() == 0
}

// Accessor adapts accessor.Accessor.
type Accessor struct {
	a accessor.Accessor
}

func (a Accessor) Property() string    { return a.a.Property }
func (a Accessor) Member() string      { return a.a.Member }
func (a Accessor) Type() contract.Type { return Type{t: a.a.Type} }

// Raw returns the underlying accessor.
func (a Accessor) Raw() accessor.Accessor {
	return a.a
}

// Locator finds accessors with the reflect-based lookup.
type Locator struct{}

func (Locator) FindAccessor(t contract.Type, property string) (contract.Accessor, bool) {
	rt, ok := t.(Type)
	if !ok {
		return nil, false
	}
	a, found := accessor.Find(rt.t, property)
	if !found {
		return nil, false
	}
	return Accessor{a: a}, true
}
