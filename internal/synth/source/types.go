package source

import (
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"
)

// typeCode renders t as jennifer code. Types of the package being
// generated are qualified too; the file omits its own qualifier.
func typeCode(t types.Type) (jen.Code, error) {
	switch tt := t.(type) {
	case *types.Alias:
		obj := tt.Obj()
		if obj.Pkg() == nil {
			return jen.Id(obj.Name()), nil
		}
		return jen.Qual(obj.Pkg().Path(), obj.Name()), nil

	case *types.Named:
		obj := tt.Obj()
		var s *jen.Statement
		if obj.Pkg() == nil {
			s = jen.Id(obj.Name())
		} else {
			s = jen.Qual(obj.Pkg().Path(), obj.Name())
		}
		if args := tt.TypeArgs(); args.Len() > 0 {
			codes, err := typeList(args)
			if err != nil {
				return nil, err
			}
			s = s.Types(codes...)
		}
		return s, nil

	case *types.Basic:
		return jen.Id(tt.Name()), nil

	case *types.Pointer:
		elem, err := typeCode(tt.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(elem), nil

	case *types.Slice:
		elem, err := typeCode(tt.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index().Add(elem), nil

	case *types.Array:
		elem, err := typeCode(tt.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Index(jen.Lit(int(tt.Len()))).Add(elem), nil

	case *types.Map:
		key, err := typeCode(tt.Key())
		if err != nil {
			return nil, err
		}
		elem, err := typeCode(tt.Elem())
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(elem), nil

	case *types.Chan:
		elem, err := typeCode(tt.Elem())
		if err != nil {
			return nil, err
		}
		switch tt.Dir() {
		case types.SendOnly:
			return jen.Chan().Op("<-").Add(elem), nil
		case types.RecvOnly:
			return jen.Op("<-").Chan().Add(elem), nil
		}
		return jen.Chan().Add(elem), nil

	case *types.Signature:
		params, err := tupleTypes(tt.Params(), tt.Variadic())
		if err != nil {
			return nil, err
		}
		results, err := tupleTypes(tt.Results(), false)
		if err != nil {
			return nil, err
		}
		return jen.Func().Params(params...).Params(results...), nil

	case *types.Interface:
		if tt.Empty() {
			return jen.Id("any"), nil
		}
	}
	return nil, fmt.Errorf("type %s cannot be written in generated code", t)
}

func typeList(list *types.TypeList) ([]jen.Code, error) {
	out := make([]jen.Code, list.Len())
	for i := range out {
		c, err := typeCode(list.At(i))
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func tupleTypes(tuple *types.Tuple, variadic bool) ([]jen.Code, error) {
	out := make([]jen.Code, tuple.Len())
	for i := range out {
		t := tuple.At(i).Type()
		if variadic && i == tuple.Len()-1 {
			c, err := typeCode(t.(*types.Slice).Elem())
			if err != nil {
				return nil, err
			}
			out[i] = jen.Op("...").Add(c)
			continue
		}
		c, err := typeCode(t)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
