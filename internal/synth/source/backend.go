// Package source is the synthesis backend for interface contracts. It
// emits the generated type as Go source with jennifer; the smog generate
// command writes the code next to the contracts.
package source

import (
	"fmt"
	"go/types"
	"sync"

	"github.com/dave/jennifer/jen"

	"github.com/toyz/smog/internal/accessor"
	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/contract/gosource"
	"github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/internal/naming"
	"github.com/toyz/smog/internal/synth"
)

// SmogPath is the import path of the package generated files register with.
const SmogPath = "github.com/toyz/smog/pkg/smog"

const receiver = "g"

// reserved names cannot be used for parameters in generated methods.
var reserved = map[string]bool{
	receiver: true,
	"core":   true,
	"smog":   true,
	"_":      true,
	"":       true,
}

// Backend collects generated declarations. Names are unique per backend.
type Backend struct {
	mu      sync.Mutex
	defined map[string]bool
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{defined: make(map[string]bool)}
}

// Defined reports whether name has been finalized.
func (b *Backend) Defined(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.defined[name]
}

type builder struct {
	name     synth.TypeName
	contract *gosource.Contract
	target   jen.Code
	ctor     []jen.Code
	fields   []jen.Code
	methods  []jen.Code
	known    map[string]bool
	override bool
}

func (b *Backend) builder(h synth.Handle) (*builder, error) {
	tb, ok := h.(*builder)
	if !ok {
		return nil, fmt.Errorf("handle %T does not belong to the source backend", h)
	}
	return tb, nil
}

// DefineType starts a type. It fails when name was already generated.
func (b *Backend) DefineType(name synth.TypeName, target contract.Type, c contract.Contract) (synth.Handle, error) {
	gc, ok := c.(*gosource.Contract)
	if !ok {
		return nil, fmt.Errorf("contract %s is not an interface contract", c.FullName())
	}
	if b.Defined(name.String()) {
		return nil, fmt.Errorf("type %s is already defined", name)
	}
	gt, ok := target.(gosource.Type)
	if !ok {
		return nil, fmt.Errorf("target %s was not read from source", target)
	}
	tc, err := typeCode(gt.Types())
	if err != nil {
		return nil, err
	}
	return &builder{
		name:     name,
		contract: gc,
		target:   tc,
		known:    make(map[string]bool),
	}, nil
}

// AddConstructor records the composite initialization. Holder
// initializers are appended as fields arrive.
func (b *Backend) AddConstructor(h synth.Handle, body synth.Body) error {
	tb, err := b.builder(h)
	if err != nil {
		return err
	}
	for _, s := range body {
		sc, ok := s.(synth.SuperCall)
		if !ok {
			return fmt.Errorf("unsupported constructor statement %T", s)
		}
		tb.ctor = append(tb.ctor, jen.Id(receiver).Op(":=").Op("&").Id(tb.name.Ident).Values(jen.Dict{
			jen.Id("Composite"): jen.Qual(gosource.CorePath, "NewComposite").Types(tb.target).Call(jen.Lit(sc.Description)),
		}))
	}
	if len(tb.ctor) != 1 {
		return fmt.Errorf("constructor must initialize the composite exactly once")
	}
	return nil
}

func (b *Backend) AddField(h synth.Handle, f synth.FieldPlan) error {
	tb, err := b.builder(h)
	if err != nil {
		return err
	}
	if tb.known[f.Name] {
		return fmt.Errorf("field %s already added", f.Name)
	}
	tb.known[f.Name] = true
	tb.fields = append(tb.fields, jen.Id(f.Name).Op("*").Qual(gosource.CorePath, "PropertyMatcher"))
	tb.ctor = append(tb.ctor, jen.Id(receiver).Dot(f.Name).Op("=").
		Qual(gosource.CorePath, "NewPropertyMatcher").Call(jen.Lit(f.Property), jen.Id(receiver)))
	return nil
}

func (b *Backend) AddMethod(h synth.Handle, m synth.MethodPlan) error {
	tb, err := b.builder(h)
	if err != nil {
		return err
	}

	if m.Kind == synth.Override {
		return tb.addOverride(m)
	}

	gm, ok := m.Method.(*gosource.Method)
	if !ok {
		return fmt.Errorf("method %s was not read from source", m.Name)
	}
	sig := gm.Signature()
	if sig.Params().Len() != 1 || sig.Results().Len() != 1 {
		return fmt.Errorf("method %s: signature does not match plan", m.Name)
	}

	param := sig.Params().At(0)
	pname := paramName(param, 0)
	ptype, err := typeCode(param.Type())
	if err != nil {
		return fmt.Errorf("method %s: %w", m.Name, err)
	}
	if sig.Variadic() {
		elem, err := typeCode(param.Type().(*types.Slice).Elem())
		if err != nil {
			return fmt.Errorf("method %s: %w", m.Name, err)
		}
		ptype = jen.Op("...").Add(elem)
	}
	rtype, err := typeCode(sig.Results().At(0).Type())
	if err != nil {
		return fmt.Errorf("method %s: %w", m.Name, err)
	}

	var stmts []jen.Code
	for _, s := range m.Body {
		switch st := s.(type) {
		case synth.SetEqual:
			if !tb.known[st.Field] {
				return fmt.Errorf("method %s: unknown field %s", m.Name, st.Field)
			}
			stmts = append(stmts, jen.Id(receiver).Dot(st.Field).Dot("Set").Call(
				jen.Qual(gosource.CorePath, "EqualTo").Call(jen.Id(pname))))
		case synth.SetPredicate:
			if !tb.known[st.Field] {
				return fmt.Errorf("method %s: unknown field %s", m.Name, st.Field)
			}
			stmts = append(stmts, jen.Id(receiver).Dot(st.Field).Dot("Set").Call(jen.Id(pname)))
		case synth.SeedFrom:
			seed, err := seedCode(st, pname, param.Type())
			if err != nil {
				return fmt.Errorf("method %s: %w", m.Name, err)
			}
			stmts = append(stmts, seed...)
		case synth.ReturnSelf:
			stmts = append(stmts, jen.Return(jen.Id(receiver)))
		default:
			return fmt.Errorf("method %s: unsupported statement %T", m.Name, s)
		}
	}

	tb.methods = append(tb.methods, jen.Func().
		Params(jen.Id(receiver).Op("*").Id(tb.name.Ident)).
		Id(m.Name).
		Params(jen.Id(pname).Add(ptype)).
		Add(rtype).
		Block(stmts...))
	return nil
}

func (tb *builder) addOverride(m synth.MethodPlan) error {
	if len(m.Body) != 1 {
		return fmt.Errorf("override %s must delegate and do nothing else", m.Name)
	}
	ds, ok := m.Body[0].(synth.DelegateSuper)
	if !ok {
		return fmt.Errorf("override %s: unsupported statement %T", m.Name, m.Body[0])
	}
	tb.methods = append(tb.methods, jen.Func().
		Params(jen.Id(receiver).Op("*").Id(tb.name.Ident)).
		Id(m.Name).
		Params(
			jen.Id("actual").Add(tb.target),
			jen.Id("acc").Op("*").Qual(gosource.CorePath, "MatchAccumulator"),
		).
		Block(jen.Id(receiver).Dot("Composite").Dot(ds.Method).Call(jen.Id("actual"), jen.Id("acc"))))
	tb.override = true
	return nil
}

// seedCode reads every assigned property from the sample and calls the
// literal operation with it. Nillable samples are guarded.
func seedCode(st synth.SeedFrom, sample string, t types.Type) ([]jen.Code, error) {
	var calls []jen.Code
	for _, a := range st.Assignments {
		acc, ok := a.Accessor.Handle.(gosource.Accessor)
		if !ok {
			return nil, fmt.Errorf("accessor for %s was not read from source", a.Property)
		}
		read := jen.Id(sample).Dot(acc.Raw().Member)
		if acc.Raw().Kind == accessor.MethodAccessor {
			read = read.Call()
		}
		calls = append(calls, jen.Id(receiver).Dot(a.Method.Name()).Call(read))
	}
	if len(calls) == 0 {
		return nil, nil
	}
	if !nillable(t) {
		return calls, nil
	}
	return []jen.Code{jen.If(jen.Id(sample).Op("!=").Nil()).Block(calls...)}, nil
}

func nillable(t types.Type) bool {
	switch types.Unalias(t).Underlying().(type) {
	case *types.Pointer, *types.Interface, *types.Map, *types.Slice, *types.Signature, *types.Chan:
		return true
	}
	return false
}

func paramName(v *types.Var, i int) string {
	if reserved[v.Name()] {
		return fmt.Sprintf("arg%d", i)
	}
	return v.Name()
}

// Finalize assembles the declarations of the type.
func (b *Backend) Finalize(h synth.Handle) (synth.GeneratedType, error) {
	tb, err := b.builder(h)
	if err != nil {
		return nil, err
	}
	if len(tb.ctor) == 0 {
		return nil, fmt.Errorf("type %s has no constructor", tb.name)
	}
	if !tb.override {
		return nil, fmt.Errorf("type %s does not expose %s", tb.name, synth.OverrideMethod)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.defined[tb.name.String()] {
		return nil, fmt.Errorf("type %s is already defined", tb.name)
	}
	b.defined[tb.name.String()] = true

	ctorName := "new" + naming.Capitalize(tb.name.Ident)
	fields := append([]jen.Code{jen.Op("*").Qual(gosource.CorePath, "Composite").Types(tb.target)}, tb.fields...)
	ctor := append(tb.ctor, jen.Return(jen.Id(receiver)))

	decls := []jen.Code{
		jen.Type().Id(tb.name.Ident).Struct(fields...),
		jen.Func().Id(ctorName).Params().Op("*").Id(tb.name.Ident).Block(ctor...),
	}
	decls = append(decls, tb.methods...)

	iface := tb.contract.SimpleName()
	return &Type{
		name:        tb.name,
		contract:    iface,
		constructor: ctorName,
		decls:       decls,
	}, nil
}

// Type is a generated type held as source declarations.
type Type struct {
	name        synth.TypeName
	contract    string
	constructor string
	decls       []jen.Code
}

func (t *Type) Name() string {
	return t.name.String()
}

// Ident is the unqualified type name.
func (t *Type) Ident() string {
	return t.name.Ident
}

// Package is the import path the type is generated into.
func (t *Type) Package() string {
	return t.name.Package
}

// Contract is the contract interface name.
func (t *Type) Contract() string {
	return t.contract
}

// Constructor is the name of the generated constructor function.
func (t *Type) Constructor() string {
	return t.constructor
}

// Decls returns the type, constructor and method declarations.
func (t *Type) Decls() []jen.Code {
	return t.decls
}

// Registration is the init statement registering the constructor.
func (t *Type) Registration() jen.Code {
	return jen.Qual(SmogPath, "Register").Call(
		jen.Func().Params().Id(t.contract).Block(jen.Return(jen.Id(t.constructor).Call())),
	)
}

// New always fails: source types exist only once the generated file is
// compiled into the program.
func (t *Type) New() (any, error) {
	return nil, errors.InstantiationError(t.Name(),
		fmt.Errorf("generated source is instantiated by the compiled program, not by the generator"))
}
