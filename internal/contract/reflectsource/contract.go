package reflectsource

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/pkg/core"
)

// TagName is the struct tag key carrying contract options.
const TagName = "smog"

// Contract is a struct contract, or one of its embedded parents.
type Contract struct {
	t    reflect.Type
	root reflect.Type
	path []int

	decl     *contract.Declaration
	declPath []int
	parents  []contract.Contract
	methods  []contract.Method
}

// New reads the contract declared by t, a struct type or a pointer to one.
func New(t reflect.Type) (*Contract, error) {
	if t == nil {
		return nil, errors.ContractError("<nil>", "contract type is nil")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.ContractError(t.String(), "contract must be a struct of func fields")
	}
	return build(t, t, nil, make(map[reflect.Type]bool))
}

func build(t, root reflect.Type, path []int, seen map[reflect.Type]bool) (*Contract, error) {
	if seen[t] {
		return nil, errors.ContractError(root.String(), fmt.Sprintf("parent %s is embedded more than once", t)).
			WithSuggestion("embed each parent contract once")
	}
	seen[t] = true

	c := &Contract{t: t, root: root, path: path}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(append([]int(nil), path...), i)
		tag, err := parseTag(f.Tag.Get(TagName))
		if err != nil {
			return nil, errors.ContractError(root.String(), fmt.Sprintf("field %s: %v", f.Name, err))
		}

		switch {
		case f.Anonymous && (f.Type.Implements(aggregatorType) || reflect.PointerTo(f.Type).Implements(aggregatorType)):
			if f.Type.Kind() != reflect.Pointer || !f.IsExported() {
				return nil, errors.ContractError(root.String(), "the composite must be embedded as an exported pointer, e.g. *core.Composite[T]")
			}
			if len(path) > 0 {
				continue
			}
			if c.decl != nil {
				return nil, errors.ContractError(root.String(), "more than one embedded composite")
			}
			target := reflect.New(f.Type.Elem()).Interface().(core.Aggregator).Target()
			description, ok := tag["description"]
			c.decl = &contract.Declaration{Target: Type{t: target}, Description: description, HasDescription: ok}
			c.declPath = index

		case f.Anonymous && f.Type.Kind() == reflect.Struct:
			parent, err := build(f.Type, root, index, seen)
			if err != nil {
				return nil, err
			}
			c.parents = append(c.parents, parent)

		case f.Anonymous:
			if f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.Struct {
				return nil, errors.ContractError(root.String(), fmt.Sprintf("parent %s must be embedded by value", f.Type.Elem()))
			}

		case f.IsExported() && f.Type.Kind() == reflect.Func:
			m := &Method{field: f, owner: t, index: index}
			if p, ok := tag["property"]; ok {
				m.override, m.hasOverride = p, true
			}
			c.methods = append(c.methods, m)
		}
	}
	return c, nil
}

// parseTag reads `key=value` from a smog tag. The value runs to the end of
// the tag so that descriptions may contain any character.
func parseTag(tag string) (map[string]string, error) {
	out := make(map[string]string)
	if tag == "" {
		return out, nil
	}
	key, value, ok := strings.Cut(tag, "=")
	key = strings.TrimSpace(key)
	if !ok {
		return nil, fmt.Errorf("tag %q: expected key=value", tag)
	}
	switch key {
	case "property", "description":
		out[key] = value
	default:
		return nil, fmt.Errorf("tag %q: unknown key %q", tag, key)
	}
	return out, nil
}

// Reflect returns the contract struct type.
func (c *Contract) Reflect() reflect.Type {
	return c.t
}

// DeclarationIndex returns the field path of the embedded composite.
func (c *Contract) DeclarationIndex() []int {
	return c.declPath
}

func (c *Contract) FullName() string {
	if c.t.PkgPath() == "" {
		return c.t.String()
	}
	return c.t.PkgPath() + "." + c.t.Name()
}

func (c *Contract) SimpleName() string {
	return c.t.Name()
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

// Generated is a pointer to the root contract struct: the dynamic backend
// fills the contract in place.
func (c *Contract) Generated() contract.Type {
	return Type{t: reflect.PointerTo(c.root)}
}

func (c *Contract) Any() contract.Type {
	return Type{t: anyType}
}

func (c *Contract) Location() errors.SourceLocation {
	return errors.SourceLocation{File: c.t.String()}
}

// Method is an exported func field.
type Method struct {
	field       reflect.StructField
	owner       reflect.Type
	index       []int
	override    string
	hasOverride bool
}

func (m *Method) Name() string {
	return m.field.Name
}

func (m *Method) ID() string {
	return m.owner.String() + "." + m.field.Name
}

// Index is the field path from the root contract struct.
func (m *Method) Index() []int {
	return m.index
}

// FuncType is the type of the func field.
func (m *Method) FuncType() reflect.Type {
	return m.field.Type
}

func (m *Method) Params() []contract.Type {
	ft := m.field.Type
	out := make([]contract.Type, ft.NumIn())
	for i := range out {
		out[i] = Type{t: ft.In(i)}
	}
	return out
}

func (m *Method) Results() []contract.Type {
	ft := m.field.Type
	out := make([]contract.Type, ft.NumOut())
	for i := range out {
		out[i] = Type{t: ft.Out(i)}
	}
	return out
}

func (m *Method) Override() (string, bool) {
	return m.override, m.hasOverride
}

func (m *Method) Location() errors.SourceLocation {
	return errors.SourceLocation{File: m.owner.String() + "." + m.field.Name}
}
