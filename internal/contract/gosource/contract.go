// Package gosource reads matcher contracts declared as annotated Go
// interfaces of a type-checked package:
//
//	//smog::matcher -target=Person -description="a Person"
//	type PersonMatcher interface {
//		core.Matcher
//		AddresseeMatcher
//		HasAge(age int) PersonMatcher
//		//smog::property age
//		HavingYearsOld(m core.TypedMatcher[int]) PersonMatcher
//	}
//
// Embedded interfaces outside the core package are parent contracts.
// Annotations are parsed elsewhere and handed in as Annotation and
// Overrides.
package gosource

import (
	"fmt"
	"go/token"
	"go/types"
	"path"
	"sort"
	"strings"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/errors"
)

// CorePath is the import path of the matcher core package.
const CorePath = "github.com/toyz/smog/pkg/core"

// Annotation is the matcher annotation of a contract.
type Annotation struct {
	Target         string
	Description    string
	HasDescription bool
	Location       errors.SourceLocation
}

// Overrides maps OverrideKey values to property names.
type Overrides map[string]string

// OverrideKey identifies an interface method for property overrides.
func OverrideKey(pkgPath, iface, method string) string {
	return pkgPath + "." + iface + "." + method
}

// Source reads contracts from one type-checked package.
type Source struct {
	fset      *token.FileSet
	pkg       *types.Package
	overrides Overrides
	matcher   *types.Interface
	built     map[*types.Named]*Contract
}

// NewSource prepares pkg for contract reading. The package must import
// the core package, directly or not.
func NewSource(fset *token.FileSet, pkg *types.Package, overrides Overrides) (*Source, error) {
	core := findImport(pkg, CorePath, make(map[*types.Package]bool))
	if core == nil {
		return nil, errors.ContractError(pkg.Path(), "package does not import "+CorePath)
	}
	obj, ok := core.Scope().Lookup("Matcher").(*types.TypeName)
	if !ok {
		return nil, errors.ContractError(pkg.Path(), CorePath+".Matcher not found")
	}
	matcher, ok := obj.Type().Underlying().(*types.Interface)
	if !ok {
		return nil, errors.ContractError(pkg.Path(), CorePath+".Matcher is not an interface")
	}
	if overrides == nil {
		overrides = Overrides{}
	}
	return &Source{
		fset:      fset,
		pkg:       pkg,
		overrides: overrides,
		matcher:   matcher,
		built:     make(map[*types.Named]*Contract),
	}, nil
}

func findImport(pkg *types.Package, path string, seen map[*types.Package]bool) *types.Package {
	if pkg.Path() == path {
		return pkg
	}
	if seen[pkg] {
		return nil
	}
	seen[pkg] = true
	for _, imp := range pkg.Imports() {
		if found := findImport(imp, path, seen); found != nil {
			return found
		}
	}
	return nil
}

// Package returns the package contracts are read from.
func (s *Source) Package() *types.Package {
	return s.pkg
}

// Contract reads the interface called name. ann is the matcher annotation
// of the interface, nil when it carries none.
func (s *Source) Contract(name string, ann *Annotation) (*Contract, error) {
	full := s.pkg.Path() + "." + name
	obj, ok := s.pkg.Scope().Lookup(name).(*types.TypeName)
	if !ok {
		return nil, errors.ContractError(full, "no such type")
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, errors.ContractError(full, "contract must be a defined interface type")
	}
	if named.TypeParams().Len() > 0 {
		return nil, errors.ContractError(full, "generic contracts cannot be generated").
			WithLocation(s.position(obj.Pos()))
	}

	c, err := s.build(named, named)
	if err != nil {
		return nil, err
	}
	if ann == nil {
		return c, nil
	}

	target, err := s.resolveTarget(ann.Target)
	if err != nil {
		return nil, errors.ContractError(full, err.Error()).WithLocation(ann.Location)
	}
	root := *c
	root.decl = &contract.Declaration{
		Target:         Type{t: target, matcher: s.matcher},
		Description:    ann.Description,
		HasDescription: ann.HasDescription,
	}
	return &root, nil
}

func (s *Source) build(named, root *types.Named) (*Contract, error) {
	if c, ok := s.built[named]; ok && c.root == root {
		return c, nil
	}

	c := &Contract{src: s, named: named, root: root}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return nil, errors.ContractError(c.FullName(), "contract must be an interface").
			WithLocation(c.Location())
	}

	for i := 0; i < iface.NumEmbeddeds(); i++ {
		embedded, ok := types.Unalias(iface.EmbeddedType(i)).(*types.Named)
		if !ok {
			return nil, errors.ContractError(c.FullName(), fmt.Sprintf("embedded %s is not a named interface", iface.EmbeddedType(i))).
				WithLocation(c.Location())
		}
		if pkg := embedded.Obj().Pkg(); pkg != nil && pkg.Path() == CorePath {
			continue
		}
		parent, err := s.build(embedded, root)
		if err != nil {
			return nil, err
		}
		c.parents = append(c.parents, parent)
	}

	fns := make([]*types.Func, iface.NumExplicitMethods())
	for i := range fns {
		fns[i] = iface.ExplicitMethod(i)
	}
	sort.SliceStable(fns, func(i, j int) bool { return fns[i].Pos() < fns[j].Pos() })

	origin := named.Origin().Obj()
	for _, fn := range fns {
		m := &Method{fn: fn, owner: c.FullName(), src: s}
		key := OverrideKey(origin.Pkg().Path(), origin.Name(), fn.Name())
		if p, ok := s.overrides[key]; ok {
			m.override, m.hasOverride = p, true
		}
		c.methods = append(c.methods, m)
	}

	s.built[named] = c
	return c, nil
}

// resolveTarget finds the type named by expr: an identifier of the
// package or the universe, or pkg.Ident for an imported package, with an
// optional leading '*'.
func (s *Source) resolveTarget(expr string) (types.Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("matcher annotation has no target")
	}
	pointer := strings.HasPrefix(expr, "*")
	name := strings.TrimPrefix(expr, "*")

	var obj types.Object
	if qual, ident, ok := strings.Cut(name, "."); ok {
		for _, imp := range s.pkg.Imports() {
			if imp.Name() == qual || path.Base(imp.Path()) == qual {
				obj = imp.Scope().Lookup(ident)
				break
			}
		}
	} else {
		obj = s.pkg.Scope().Lookup(name)
		if obj == nil {
			obj = types.Universe.Lookup(name)
		}
	}

	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("target %s is not a type visible from package %s", expr, s.pkg.Name())
	}
	t := tn.Type()
	if pointer {
		t = types.NewPointer(t)
	}
	return t, nil
}

func (s *Source) position(pos token.Pos) errors.SourceLocation {
	if s.fset == nil || !pos.IsValid() {
		return errors.SourceLocation{}
	}
	p := s.fset.Position(pos)
	return errors.SourceLocation{File: p.Filename, Line: p.Line, Column: p.Column}
}

// Contract is an interface contract or one of its parents.
type Contract struct {
	src     *Source
	named   *types.Named
	root    *types.Named
	decl    *contract.Declaration
	parents []contract.Contract
	methods []contract.Method
}

// Named returns the contract interface type.
func (c *Contract) Named() *types.Named {
	return c.named
}

func (c *Contract) FullName() string {
	obj := c.named.Obj()
	name := obj.Name()
	if args := c.named.TypeArgs(); args.Len() > 0 {
		parts := make([]string, args.Len())
		for i := range parts {
			parts[i] = types.TypeString(args.At(i), nil)
		}
		name += "[" + strings.Join(parts, ",") + "]"
	}
	if obj.Pkg() == nil {
		return name
	}
	return obj.Pkg().Path() + "." + name
}

func (c *Contract) SimpleName() string {
	return c.named.Obj().Name()
}

func (c *Contract) Declaration() (*contract.Declaration, error) {
	return c.decl, nil
}

func (c *Contract) Parents() []contract.Contract {
	return c.parents
}

func (c *Contract) Methods() []contract.Method {
	return c.methods
}

// Generated stands for the struct emitted for the root contract.
func (c *Contract) Generated() contract.Type {
	return generated{Type{t: c.root, matcher: c.src.matcher}}
}

func (c *Contract) Any() contract.Type {
	return Type{t: types.Universe.Lookup("any").Type(), matcher: c.src.matcher}
}

func (c *Contract) Location() errors.SourceLocation {
	return c.src.position(c.named.Obj().Pos())
}

// Method is an explicitly declared interface method.
type Method struct {
	fn          *types.Func
	owner       string
	override    string
	hasOverride bool
	src         *Source
}

// Func returns the method object.
func (m *Method) Func() *types.Func {
	return m.fn
}

// Signature returns the method signature.
func (m *Method) Signature() *types.Signature {
	return m.fn.Type().(*types.Signature)
}

func (m *Method) Name() string {
	return m.fn.Name()
}

func (m *Method) ID() string {
	return m.owner + "." + m.fn.Name()
}

func (m *Method) Params() []contract.Type {
	return m.wrap(m.Signature().Params())
}

func (m *Method) Results() []contract.Type {
	return m.wrap(m.Signature().Results())
}

func (m *Method) wrap(vars *types.Tuple) []contract.Type {
	out := make([]contract.Type, vars.Len())
	for i := range out {
		out[i] = Type{t: vars.At(i).Type(), matcher: m.src.matcher}
	}
	return out
}

func (m *Method) Override() (string, bool) {
	return m.override, m.hasOverride
}

func (m *Method) Location() errors.SourceLocation {
	return m.src.position(m.fn.Pos())
}
