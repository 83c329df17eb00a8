package core

import (
	"cmp"
	"reflect"
)

// Matcher is the erased matcher capability. Synthesized matchers and the
// matchers handed to predicate operations all satisfy it.
type Matcher interface {
	SelfDescribing
	Matches(actual any) bool
	DescribeMismatch(actual any, d *Description)
}

// TypedMatcher is a Matcher that knows the type of value it accepts.
type TypedMatcher[T any] interface {
	Matcher
	MatchesTyped(actual T) bool
}

type funcMatcher[T any] struct {
	match    func(T) bool
	describe func(*Description)
}

func (m *funcMatcher[T]) Matches(actual any) bool {
	v, ok := As[T](actual)
	if !ok {
		return false
	}
	return m.match(v)
}

func (m *funcMatcher[T]) MatchesTyped(actual T) bool {
	return m.match(actual)
}

func (m *funcMatcher[T]) DescribeTo(d *Description) {
	m.describe(d)
}

func (m *funcMatcher[T]) DescribeMismatch(actual any, d *Description) {
	d.AppendText("was ").AppendValue(actual)
}

// Func builds a matcher from a predicate and a fixed description.
func Func[T any](description string, pred func(T) bool) TypedMatcher[T] {
	return &funcMatcher[T]{
		match:    pred,
		describe: func(d *Description) { d.AppendText(description) },
	}
}

// As converts actual to T. A nil actual converts to the zero value when T
// itself can hold nil.
func As[T any](actual any) (T, bool) {
	if v, ok := actual.(T); ok {
		return v, true
	}
	var zero T
	if actual == nil {
		switch reflect.TypeFor[T]().Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return zero, true
		}
	}
	return zero, false
}

// EqualTo matches values deeply equal to expected.
func EqualTo[T any](expected T) TypedMatcher[T] {
	return &funcMatcher[T]{
		match: func(actual T) bool {
			return reflect.DeepEqual(any(actual), any(expected))
		},
		describe: func(d *Description) { d.AppendValue(expected) },
	}
}

// Anything matches every value.
func Anything[T any]() TypedMatcher[T] {
	return &funcMatcher[T]{
		match:    func(T) bool { return true },
		describe: func(d *Description) { d.AppendText("ANYTHING") },
	}
}

// Is decorates m for readability: "is <m>".
func Is[T any](m TypedMatcher[T]) TypedMatcher[T] {
	return &funcMatcher[T]{
		match:    m.MatchesTyped,
		describe: func(d *Description) { d.AppendText("is ").AppendDescriptionOf(m) },
	}
}

// Not inverts m.
func Not[T any](m TypedMatcher[T]) TypedMatcher[T] {
	return &funcMatcher[T]{
		match:    func(actual T) bool { return !m.MatchesTyped(actual) },
		describe: func(d *Description) { d.AppendText("not ").AppendDescriptionOf(m) },
	}
}

// AllOf matches when every matcher matches.
func AllOf[T any](ms ...TypedMatcher[T]) TypedMatcher[T] {
	items := make([]SelfDescribing, len(ms))
	for i, m := range ms {
		items[i] = m
	}
	return &funcMatcher[T]{
		match: func(actual T) bool {
			for _, m := range ms {
				if !m.MatchesTyped(actual) {
					return false
				}
			}
			return true
		},
		describe: func(d *Description) { d.AppendList("(", " and ", ")", items) },
	}
}

// GreaterThan matches ordered values strictly greater than bound.
func GreaterThan[T cmp.Ordered](bound T) TypedMatcher[T] {
	return &funcMatcher[T]{
		match:    func(actual T) bool { return actual > bound },
		describe: func(d *Description) { d.AppendText("a value greater than ").AppendValue(bound) },
	}
}

// LessThan matches ordered values strictly less than bound.
func LessThan[T cmp.Ordered](bound T) TypedMatcher[T] {
	return &funcMatcher[T]{
		match:    func(actual T) bool { return actual < bound },
		describe: func(d *Description) { d.AppendText("a value less than ").AppendValue(bound) },
	}
}

// Empty matches strings, slices, arrays, maps and channels of length zero.
func Empty[T any]() TypedMatcher[T] {
	return &funcMatcher[T]{
		match: func(actual T) bool {
			v := reflect.ValueOf(any(actual))
			switch v.Kind() {
			case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
				return v.Len() == 0
			}
			return false
		},
		describe: func(d *Description) { d.AppendText("an empty value") },
	}
}
