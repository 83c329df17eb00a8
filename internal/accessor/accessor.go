// Package accessor locates the member that exposes a named property on a
// type: a getter method P(), a GetP() method, or an exported field P.
package accessor

import (
	"reflect"
	"sync"

	"github.com/toyz/smog/internal/naming"
)

// Kind distinguishes method accessors from field accessors.
type Kind int

const (
	MethodAccessor Kind = iota
	FieldAccessor
)

func (k Kind) String() string {
	if k == FieldAccessor {
		return "field"
	}
	return "method"
}

// Candidates returns the member names probed for property, in order.
func Candidates(property string) []string {
	p := naming.Capitalize(property)
	return []string{p, "Get" + p}
}

// Accessor reads a property from values of one type.
type Accessor struct {
	Property string
	Member   string
	Kind     Kind
	Type     reflect.Type

	index       []int
	pointerRecv bool
}

// Get reads the property from v. It reports false when the value cannot
// be read, e.g. a nil pointer along the way.
func (a Accessor) Get(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return reflect.Value{}, false
	}

	switch a.Kind {
	case MethodAccessor:
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return reflect.Value{}, false
		}
		if a.pointerRecv && v.Kind() != reflect.Pointer {
			if v.CanAddr() {
				v = v.Addr()
			} else {
				p := reflect.New(v.Type())
				p.Elem().Set(v)
				v = p
			}
		}
		m := v.MethodByName(a.Member)
		if !m.IsValid() {
			return reflect.Value{}, false
		}
		return m.Call(nil)[0], true
	default:
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		f, err := v.FieldByIndexErr(a.index)
		if err != nil {
			return reflect.Value{}, false
		}
		return f, true
	}
}

type cacheKey struct {
	t        reflect.Type
	property string
}

type cacheEntry struct {
	accessor Accessor
	found    bool
}

// Locator finds accessors and memoizes the lookups.
type Locator struct {
	cache sync.Map
}

var defaultLocator = &Locator{}

// Find locates property on t using the process-wide locator.
func Find(t reflect.Type, property string) (Accessor, bool) {
	return defaultLocator.Find(t, property)
}

// Find locates property on t. The boolean is false when no member exposes it.
func (l *Locator) Find(t reflect.Type, property string) (Accessor, bool) {
	if t == nil || property == "" {
		return Accessor{}, false
	}
	key := cacheKey{t: t, property: property}
	if cached, ok := l.cache.Load(key); ok {
		e := cached.(cacheEntry)
		return e.accessor, e.found
	}

	a, found := lookup(t, property)
	l.cache.Store(key, cacheEntry{accessor: a, found: found})
	return a, found
}

func lookup(t reflect.Type, property string) (Accessor, bool) {
	for _, name := range Candidates(property) {
		if a, ok := lookupMethod(t, property, name); ok {
			return a, true
		}
	}
	return lookupField(t, property, naming.Capitalize(property))
}

func lookupMethod(t reflect.Type, property, name string) (Accessor, bool) {
	if m, ok := t.MethodByName(name); ok && isGetter(t, m.Type) {
		return Accessor{Property: property, Member: name, Kind: MethodAccessor, Type: m.Type.Out(0)}, true
	}
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return Accessor{}, false
	}
	pt := reflect.PointerTo(t)
	if m, ok := pt.MethodByName(name); ok && isGetter(pt, m.Type) {
		return Accessor{Property: property, Member: name, Kind: MethodAccessor, Type: m.Type.Out(0), pointerRecv: true}, true
	}
	return Accessor{}, false
}

// isGetter checks for no parameters and exactly one result. Method types
// of concrete types carry the receiver as their first input.
func isGetter(owner reflect.Type, ft reflect.Type) bool {
	in := ft.NumIn()
	if owner.Kind() != reflect.Interface {
		in--
	}
	return in == 0 && ft.NumOut() == 1
}

func lookupField(t reflect.Type, property, name string) (Accessor, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Accessor{}, false
	}
	f, ok := t.FieldByName(name)
	if !ok || !f.IsExported() {
		return Accessor{}, false
	}
	return Accessor{Property: property, Member: name, Kind: FieldAccessor, Type: f.Type, index: f.Index}, true
}
