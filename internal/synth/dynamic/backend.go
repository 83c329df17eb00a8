// Package dynamic is the synthesis backend for struct contracts. A
// generated type is a compiled recipe that allocates the contract struct,
// installs its composite and binds every operation field with
// reflect.MakeFunc.
package dynamic

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/contract/reflectsource"
	"github.com/toyz/smog/internal/synth"
	"github.com/toyz/smog/pkg/core"
)

// Backend owns a namespace of loaded type names.
type Backend struct {
	mu     sync.Mutex
	loaded map[string]bool
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{loaded: make(map[string]bool)}
}

// Defined reports whether name has been loaded.
func (b *Backend) Defined(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded[name]
}

type builder struct {
	name        synth.TypeName
	root        reflect.Type
	declIndex   []int
	composite   reflect.Type
	description string
	constructed bool
	fields      []synth.FieldPlan
	fieldNames  map[string]bool
	methods     []synth.MethodPlan
	override    bool
}

func (b *Backend) builder(h synth.Handle) (*builder, error) {
	tb, ok := h.(*builder)
	if !ok {
		return nil, fmt.Errorf("handle %T does not belong to the dynamic backend", h)
	}
	return tb, nil
}

// DefineType starts a type. It fails when name is already loaded.
func (b *Backend) DefineType(name synth.TypeName, target contract.Type, c contract.Contract) (synth.Handle, error) {
	rc, ok := c.(*reflectsource.Contract)
	if !ok {
		return nil, fmt.Errorf("contract %s is not a struct contract", c.FullName())
	}
	if b.Defined(name.String()) {
		return nil, fmt.Errorf("type %s is already defined", name)
	}

	root := rc.Reflect()
	declIndex := rc.DeclarationIndex()
	if declIndex == nil {
		return nil, fmt.Errorf("contract %s has no embedded composite", c.FullName())
	}
	composite := root.FieldByIndex(declIndex).Type
	agg, ok := reflect.New(composite.Elem()).Interface().(core.Aggregator)
	if !ok {
		return nil, fmt.Errorf("%s is not an aggregator", composite)
	}
	if tt, ok := target.(reflectsource.Type); !ok || tt.Reflect() != agg.Target() {
		return nil, fmt.Errorf("target %s does not match composite %s", target, composite)
	}

	return &builder{
		name:       name,
		root:       root,
		declIndex:  declIndex,
		composite:  composite,
		fieldNames: make(map[string]bool),
	}, nil
}

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
		tb.description = sc.Description
		tb.constructed = true
	}
	if !tb.constructed {
		return fmt.Errorf("constructor does not initialize the composite")
	}
	return nil
}

func (b *Backend) AddField(h synth.Handle, f synth.FieldPlan) error {
	tb, err := b.builder(h)
	if err != nil {
		return err
	}
	if tb.fieldNames[f.Name] {
		return fmt.Errorf("field %s already added", f.Name)
	}
	tb.fieldNames[f.Name] = true
	tb.fields = append(tb.fields, f)
	return nil
}

func (b *Backend) AddMethod(h synth.Handle, m synth.MethodPlan) error {
	tb, err := b.builder(h)
	if err != nil {
		return err
	}

	if m.Kind == synth.Override {
		// The composite embedded in the contract already provides it.
		if _, ok := reflect.PointerTo(tb.root).MethodByName(m.Name); !ok {
			return fmt.Errorf("%s is not promoted from the composite", m.Name)
		}
		tb.override = true
		return nil
	}

	rm, ok := m.Method.(*reflectsource.Method)
	if !ok {
		return fmt.Errorf("method %s is not a func field", m.Name)
	}
	ft := rm.FuncType()
	if ft.NumIn() != len(m.Params) || ft.NumOut() != 1 {
		return fmt.Errorf("method %s: signature does not match plan", m.Name)
	}
	for _, s := range m.Body {
		switch st := s.(type) {
		case synth.SetEqual:
			if !tb.fieldNames[st.Field] {
				return fmt.Errorf("method %s: unknown field %s", m.Name, st.Field)
			}
		case synth.SetPredicate:
			if !tb.fieldNames[st.Field] {
				return fmt.Errorf("method %s: unknown field %s", m.Name, st.Field)
			}
		case synth.SeedFrom:
			for _, a := range st.Assignments {
				if _, ok := a.Accessor.Handle.(reflectsource.Accessor); !ok {
					return fmt.Errorf("method %s: accessor for %s is not reflect based", m.Name, a.Property)
				}
				if _, ok := a.Method.(*reflectsource.Method); !ok {
					return fmt.Errorf("method %s: seed target %s is not a func field", m.Name, a.Method.Name())
				}
			}
		case synth.ReturnSelf:
		default:
			return fmt.Errorf("method %s: unsupported statement %T", m.Name, s)
		}
	}
	tb.methods = append(tb.methods, m)
	return nil
}

// Finalize loads the type into the namespace.
func (b *Backend) Finalize(h synth.Handle) (synth.GeneratedType, error) {
	tb, err := b.builder(h)
	if err != nil {
		return nil, err
	}
	if !tb.constructed {
		return nil, fmt.Errorf("type %s has no constructor", tb.name)
	}
	if !tb.override {
		return nil, fmt.Errorf("type %s does not expose %s", tb.name, synth.OverrideMethod)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loaded[tb.name.String()] {
		return nil, fmt.Errorf("type %s is already defined", tb.name)
	}
	b.loaded[tb.name.String()] = true

	return &generatedType{
		name:        tb.name.String(),
		root:        tb.root,
		declIndex:   tb.declIndex,
		composite:   tb.composite,
		description: tb.description,
		fields:      tb.fields,
		methods:     tb.methods,
	}, nil
}
