package synth

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/errors"
)

// Handle is a backend specific reference to a type under construction.
type Handle any

// GeneratedType is a finalized generated type.
type GeneratedType interface {
	Name() string
	// New constructs an instance. Backends whose types live in source code
	// report an instantiation error.
	New() (any, error)
}

// Backend builds and loads generated types. Calls arrive in the order
// DefineType, AddConstructor, AddField..., AddMethod..., Finalize.
type Backend interface {
	DefineType(name TypeName, target contract.Type, c contract.Contract) (Handle, error)
	AddConstructor(h Handle, body Body) error
	AddField(h Handle, f FieldPlan) error
	AddMethod(h Handle, m MethodPlan) error
	Finalize(h Handle) (GeneratedType, error)
}

// Synthesizer plans generated types and builds them through a backend.
type Synthesizer struct {
	locator contract.Locator
	logger  *zap.Logger
}

// New returns a synthesizer that resolves seed accessors with locator.
func New(locator contract.Locator, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{locator: locator, logger: logger}
}

// Plan derives the synthesis plan of d.
func (s *Synthesizer) Plan(d *contract.Descriptor) (*Plan, error) {
	p := &Plan{
		Name:        NameFor(d.Contract),
		Key:         d.Key,
		Contract:    d.Contract,
		Target:      d.Target,
		Description: d.Description,
		Constructor: Body{SuperCall{Description: d.Description}},
	}

	fields := make(map[string]string)
	for _, property := range d.PropertyNames() {
		name := FieldName(property)
		if other, ok := fields[name]; ok {
			return nil, errors.SynthesisError(p.Name.String(), "plan",
				fmt.Errorf("properties %q and %q map to the same field %s", other, property, name))
		}
		fields[name] = property
		p.Fields = append(p.Fields, FieldPlan{Name: name, Property: property})
	}

	for _, op := range d.Properties {
		set := Stmt(SetEqual{Field: FieldName(op.Property)})
		if op.Kind == contract.Predicate {
			set = SetPredicate{Field: FieldName(op.Property)}
		}
		p.Methods = append(p.Methods, MethodPlan{
			Name:   op.Name,
			Kind:   PropertyMethod,
			Method: op.Method,
			Params: []contract.Type{op.Param},
			Return: op.Return,
			Body:   Body{set, ReturnSelf{}},
		})
	}

	for _, seed := range d.Seeds {
		p.Seeds = append(p.Seeds, MethodPlan{
			Name:   seed.Name,
			Kind:   SeedMethod,
			Method: seed.Method,
			Params: []contract.Type{seed.Param},
			Return: seed.Return,
			Body:   Body{s.seedFrom(d, seed), ReturnSelf{}},
		})
	}

	p.Override = MethodPlan{
		Name: OverrideMethod,
		Kind: Override,
		Body: Body{DelegateSuper{Method: OverrideMethod}},
	}
	return p, nil
}

// seedFrom resolves, once per seed, which properties the sample can feed.
// A property is populated at most once, through the first literal
// operation whose value type is identical to the accessor's type.
// Properties without an accessor or a matching literal are skipped.
func (s *Synthesizer) seedFrom(d *contract.Descriptor, seed contract.SeedOperation) SeedFrom {
	var from SeedFrom
	for _, property := range d.PropertyNames() {
		acc, ok := s.locator.FindAccessor(seed.Param, property)
		if !ok {
			continue
		}
		op, ok := d.LiteralFor(property, acc.Type())
		if !ok {
			continue
		}
		from.Assignments = append(from.Assignments, SeedAssignment{
			Property: property,
			Field:    FieldName(property),
			Accessor: AccessorRef{Member: acc.Member(), Handle: acc},
			Method:   op.Method,
		})
	}
	return from
}

// Build plans d and drives b through creating the generated type. Any
// backend failure aborts the build and nothing is returned.
func (s *Synthesizer) Build(d *contract.Descriptor, b Backend) (GeneratedType, error) {
	p, err := s.Plan(d)
	if err != nil {
		return nil, err
	}
	return s.BuildPlan(p, b)
}

// BuildPlan drives b through an existing plan.
func (s *Synthesizer) BuildPlan(p *Plan, b Backend) (GeneratedType, error) {
	name := p.Name.String()
	s.logger.Debug("building generated type",
		zap.String("type", name),
		zap.String("key", p.Key),
		zap.Int("fields", len(p.Fields)),
		zap.Int("methods", len(p.Methods)),
		zap.Int("seeds", len(p.Seeds)))

	h, err := b.DefineType(p.Name, p.Target, p.Contract)
	if err != nil {
		return nil, errors.SynthesisError(name, "define type", err)
	}
	if err := b.AddConstructor(h, p.Constructor); err != nil {
		return nil, errors.SynthesisError(name, "add constructor", err)
	}
	for _, f := range p.Fields {
		if err := b.AddField(h, f); err != nil {
			return nil, errors.SynthesisError(name, "add field "+f.Name, err)
		}
	}
	for _, m := range p.Methods {
		if err := b.AddMethod(h, m); err != nil {
			return nil, errors.SynthesisError(name, "add method "+m.Name, err)
		}
	}
	for _, m := range p.Seeds {
		if err := b.AddMethod(h, m); err != nil {
			return nil, errors.SynthesisError(name, "add seed "+m.Name, err)
		}
	}
	if err := b.AddMethod(h, p.Override); err != nil {
		return nil, errors.SynthesisError(name, "add method "+p.Override.Name, err)
	}

	gt, err := b.Finalize(h)
	if err != nil {
		return nil, errors.SynthesisError(name, "finalize", err)
	}
	return gt, nil
}
