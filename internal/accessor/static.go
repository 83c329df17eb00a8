package accessor

import (
	"go/types"

	"github.com/toyz/smog/internal/naming"
)

// StaticAccessor is the go/types counterpart of Accessor, used when the
// reading code is emitted as source.
type StaticAccessor struct {
	Property string
	Member   string
	Kind     Kind
	Type     types.Type
}

// Expr renders the access on receiver, e.g. "p.Name()" or "p.Name".
func (a StaticAccessor) Expr(receiver string) string {
	if a.Kind == MethodAccessor {
		return receiver + "." + a.Member + "()"
	}
	return receiver + "." + a.Member
}

// FindStatic locates property on t following the same precedence as Find.
func FindStatic(t types.Type, property string) (StaticAccessor, bool) {
	if t == nil || property == "" {
		return StaticAccessor{}, false
	}

	var field *types.Var
	for _, name := range Candidates(property) {
		obj, _, _ := types.LookupFieldOrMethod(t, true, nil, name)
		switch o := obj.(type) {
		case *types.Func:
			sig, ok := o.Type().(*types.Signature)
			if ok && sig.Params().Len() == 0 && sig.Results().Len() == 1 {
				return StaticAccessor{Property: property, Member: name, Kind: MethodAccessor, Type: sig.Results().At(0).Type()}, true
			}
		case *types.Var:
			if field == nil && o.IsField() && o.Exported() && name == naming.Capitalize(property) {
				field = o
			}
		}
	}

	if field != nil {
		return StaticAccessor{Property: property, Member: field.Name(), Kind: FieldAccessor, Type: field.Type()}, true
	}
	return StaticAccessor{}, false
}
