package dynamic

import (
	"fmt"
	"reflect"

	"github.com/toyz/smog/internal/contract/reflectsource"
	"github.com/toyz/smog/internal/synth"
	"github.com/toyz/smog/pkg/core"
)

type generatedType struct {
	name        string
	root        reflect.Type
	declIndex   []int
	composite   reflect.Type
	description string
	fields      []synth.FieldPlan
	methods     []synth.MethodPlan
}

func (g *generatedType) Name() string {
	return g.name
}

// instance is the per-object state the bound closures share.
type instance struct {
	ptr     reflect.Value
	self    reflect.Value
	holders map[string]*core.PropertyMatcher
}

// New allocates the contract struct and binds every operation. The
// returned value is a pointer to the contract struct.
func (g *generatedType) New() (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("constructing %s: %v", g.name, r)
		}
	}()

	ptr := reflect.New(g.root)
	inst := &instance{
		ptr:     ptr,
		self:    ptr.Elem(),
		holders: make(map[string]*core.PropertyMatcher, len(g.fields)),
	}

	comp := reflect.New(g.composite.Elem())
	agg := comp.Interface().(core.Aggregator)
	agg.Initialize(g.description)
	inst.self.FieldByIndex(g.declIndex).Set(comp)

	for _, f := range g.fields {
		inst.holders[f.Name] = core.NewPropertyMatcher(f.Property, agg)
	}

	for _, m := range g.methods {
		rm := m.Method.(*reflectsource.Method)
		fv := inst.self.FieldByIndex(rm.Index())
		fv.Set(reflect.MakeFunc(fv.Type(), g.bind(inst, m, fv.Type())))
	}
	return ptr.Interface(), nil
}

func (g *generatedType) bind(inst *instance, m synth.MethodPlan, ft reflect.Type) func([]reflect.Value) []reflect.Value {
	ret := ft.Out(0)
	return func(args []reflect.Value) []reflect.Value {
		for _, s := range m.Body {
			switch st := s.(type) {
			case synth.SetEqual:
				inst.holders[st.Field].Set(core.EqualTo[any](args[0].Interface()))
			case synth.SetPredicate:
				inst.holders[st.Field].Set(asMatcher(args[0]))
			case synth.SeedFrom:
				seed(inst, st, args[0])
			case synth.ReturnSelf:
				return []reflect.Value{convert(inst.ptr, ret)}
			}
		}
		return []reflect.Value{reflect.Zero(ret)}
	}
}

func seed(inst *instance, from synth.SeedFrom, sample reflect.Value) {
	if isNil(sample) {
		return
	}
	for _, a := range from.Assignments {
		acc := a.Accessor.Handle.(reflectsource.Accessor).Raw()
		v, ok := acc.Get(sample)
		if !ok {
			continue
		}
		target := inst.self.FieldByIndex(a.Method.(*reflectsource.Method).Index())
		if target.IsNil() {
			continue
		}
		target.Call([]reflect.Value{convert(v, target.Type().In(0))})
	}
}

func asMatcher(v reflect.Value) core.Matcher {
	if isNil(v) {
		return nil
	}
	m, _ := v.Interface().(core.Matcher)
	return m
}

func convert(v reflect.Value, t reflect.Type) reflect.Value {
	if v.Type() == t {
		return v
	}
	out := reflect.New(t).Elem()
	out.Set(v)
	return out
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
