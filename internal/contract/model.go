package contract

import (
	"fmt"

	"github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/internal/naming"
)

// DefaultSeedMethod is the name of the operation that seeds literal
// operations from a sample value.
const DefaultSeedMethod = "Like"

// Model analyzes contracts.
type Model struct {
	Names      naming.Resolver
	SeedMethod string
}

// NewModel returns a model using prefix for property operations and seed
// for seed operations. Empty values select the defaults.
func NewModel(prefix, seed string) *Model {
	if seed == "" {
		seed = DefaultSeedMethod
	}
	return &Model{Names: naming.NewResolver(prefix), SeedMethod: seed}
}

type declared struct {
	method Method
	origin Contract
}

// Analyze derives the descriptor of c. The contract's declaration is
// required; its methods, and those of every ancestor, are classified as
// property operations or seed operations in ancestor-first order.
func (m *Model) Analyze(c Contract) (*Descriptor, error) {
	decl, err := c.Declaration()
	if err != nil {
		return nil, err
	}
	if decl == nil {
		return nil, errors.ContractError(c.FullName(), "missing matcher declaration").
			WithLocation(c.Location()).
			WithSuggestion("declare the matched type on the contract")
	}
	if decl.Target == nil || decl.Target.IsEmptyInterface() {
		return nil, errors.ContractError(c.FullName(), "declared target type is absent").
			WithLocation(c.Location())
	}

	d := &Descriptor{
		Name:        c.FullName(),
		Key:         Key(c.FullName()),
		SimpleName:  c.SimpleName(),
		Target:      decl.Target,
		Description: decl.Description,
		Contract:    c,
	}
	if !decl.HasDescription {
		d.Description = "a " + decl.Target.Name()
	}

	generated := c.Generated()
	for _, dm := range collect(c) {
		if err := m.classify(d, dm, generated); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// collect walks the hierarchy ancestor-first. A contract reached twice is
// visited once and a method ID seen before is skipped.
func collect(root Contract) []declared {
	visited := make(map[string]bool)
	seen := make(map[string]bool)
	var out []declared

	var walk func(c Contract)
	walk = func(c Contract) {
		if visited[c.FullName()] {
			return
		}
		visited[c.FullName()] = true

		for _, parent := range c.Parents() {
			walk(parent)
		}
		for _, method := range c.Methods() {
			if seen[method.ID()] {
				continue
			}
			seen[method.ID()] = true
			out = append(out, declared{method: method, origin: c})
		}
	}
	walk(root)
	return out
}

func (m *Model) classify(d *Descriptor, dm declared, generated Type) error {
	method := dm.method
	name := method.Name()
	params := method.Params()
	results := method.Results()
	override, hasOverride := method.Override()

	if name == m.seedMethod() && !hasOverride {
		if len(params) != 1 || !d.Target.AssignableTo(params[0]) || !inBounds(results, generated) {
			return errors.SignatureError(d.Name, name,
				fmt.Sprintf("seed operation must accept one value that %s is assignable to and return the matcher", d.Target)).
				WithLocation(method.Location())
		}
		d.Seeds = append(d.Seeds, SeedOperation{
			Method: method,
			Name:   name,
			Param:  params[0],
			Return: results[0],
			Origin: dm.origin.FullName(),
		})
		return nil
	}

	if !hasOverride && !m.Names.Matches(name) {
		return errors.SignatureError(d.Name, name, "not a property operation or seed operation").
			WithLocation(method.Location()).
			WithSuggestion(fmt.Sprintf("prefix the method with %q or declare a property override", m.Names.Prefix))
	}

	if len(params) != 1 {
		return errors.SignatureError(d.Name, name, fmt.Sprintf("expected exactly one parameter, got %d", len(params))).
			WithLocation(method.Location())
	}

	property, err := m.Names.Resolve(name, override, hasOverride)
	if err != nil {
		if be, ok := err.(*errors.BaseError); ok {
			be.WithLocation(method.Location())
		}
		return err
	}

	if !inBounds(results, generated) {
		return errors.SignatureError(d.Name, name, "return type must be a matcher the generated type is assignable to").
			WithLocation(method.Location())
	}

	op := PropertyOperation{
		Method:   method,
		Name:     name,
		Property: property,
		Kind:     Literal,
		Param:    params[0],
		Value:    params[0],
		Return:   results[0],
		Origin:   dm.origin.FullName(),
	}
	if params[0].IsMatcher() {
		op.Kind = Predicate
		op.Value = dm.origin.Any()
		if elem, ok := params[0].MatcherElem(); ok {
			op.Value = elem
		}
	}
	d.Properties = append(d.Properties, op)
	return nil
}

func (m *Model) seedMethod() string {
	if m.SeedMethod == "" {
		return DefaultSeedMethod
	}
	return m.SeedMethod
}

// inBounds checks the single result R: the generated type must be
// assignable to R and R must be a matcher.
func inBounds(results []Type, generated Type) bool {
	if len(results) != 1 {
		return false
	}
	return generated.AssignableTo(results[0]) && results[0].IsMatcher()
}
