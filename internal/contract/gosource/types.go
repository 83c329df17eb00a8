package gosource

import (
	"go/types"

	"github.com/toyz/smog/internal/accessor"
	"github.com/toyz/smog/internal/contract"
)

// Type adapts a go/types type. The matcher interface of the core package
// travels with it so that IsMatcher can be answered without a lookup.
type Type struct {
	t       types.Type
	matcher *types.Interface
}

// Types returns the wrapped type.
func (t Type) Types() types.Type {
	return t.t
}

func (t Type) Name() string {
	u := types.Unalias(t.t)
	for {
		p, ok := u.(*types.Pointer)
		if !ok {
			break
		}
		u = types.Unalias(p.Elem())
	}
	if n, ok := u.(*types.Named); ok {
		return n.Obj().Name()
	}
	return types.TypeString(u, func(*types.Package) string { return "" })
}

func (t Type) String() string {
	return types.TypeString(t.t, nil)
}

func (t Type) Identical(other contract.Type) bool {
	o, ok := other.(Type)
	return ok && types.Identical(t.t, o.t)
}

func (t Type) AssignableTo(other contract.Type) bool {
	o, ok := other.(Type)
	return ok && types.AssignableTo(t.t, o.t)
}

func (t Type) IsMatcher() bool {
	return t.matcher != nil && types.Implements(t.t, t.matcher)
}

// MatcherElem returns T when the type has a MatchesTyped(T) method.
func (t Type) MatcherElem() (contract.Type, bool) {
	obj, _, _ := types.LookupFieldOrMethod(t.t, true, nil, "MatchesTyped")
	fn, ok := obj.(*types.Func)
	if !ok {
		return nil, false
	}
	sig := fn.Type().(*types.Signature)
	if sig.Params().Len() != 1 {
		return nil, false
	}
	return Type{t: sig.Params().At(0).Type(), matcher: t.matcher}, true
}

func (t Type) IsEmptyInterface() bool {
	iface, ok := types.Unalias(t.t).Underlying().(*types.Interface)
	return ok && iface.Empty()
}

// generated stands for the struct that will implement the contract
// interface. It is assignable wherever the interface itself is.
type generated struct {
	Type
}

func (g generated) AssignableTo(other contract.Type) bool {
	o, ok := other.(Type)
	if !ok {
		return false
	}
	if _, isIface := o.t.Underlying().(*types.Interface); !isIface {
		return false
	}
	return types.AssignableTo(g.t, o.t)
}

func (g generated) IsMatcher() bool {
	return true
}

// Accessor adapts accessor.StaticAccessor.
type Accessor struct {
	a       accessor.StaticAccessor
	matcher *types.Interface
}

func (a Accessor) Property() string    { return a.a.Property }
func (a Accessor) Member() string      { return a.a.Member }
func (a Accessor) Type() contract.Type { return Type{t: a.a.Type, matcher: a.matcher} }

// Raw returns the underlying accessor.
func (a Accessor) Raw() accessor.StaticAccessor {
	return a.a
}

// Locator finds accessors with the go/types lookup.
type Locator struct{}

func (Locator) FindAccessor(t contract.Type, property string) (contract.Accessor, bool) {
	st, ok := t.(Type)
	if !ok {
		return nil, false
	}
	a, found := accessor.FindStatic(st.t, property)
	if !found {
		return nil, false
	}
	return Accessor{a: a, matcher: st.matcher}, true
}
