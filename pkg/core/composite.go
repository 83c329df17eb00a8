package core

import "reflect"

// Aggregator is the untyped view of Composite used by code that only knows
// the target type at run time.
type Aggregator interface {
	Matcher
	PropertyRegistrar
	Initialize(description string)
	Description() string
	Target() reflect.Type
	PropertyMatchers() []*PropertyMatcher
}

// Composite evaluates a set of property matchers against values of T. It
// is the base every synthesized matcher embeds.
type Composite[T any] struct {
	description string
	properties  []*PropertyMatcher
}

var _ Aggregator = (*Composite[any])(nil)

// NewComposite returns a composite with the given description.
func NewComposite[T any](description string) *Composite[T] {
	return &Composite[T]{description: description}
}

// Initialize sets the description on a composite allocated without
// NewComposite.
func (c *Composite[T]) Initialize(description string) {
	c.description = description
}

func (c *Composite[T]) Description() string {
	return c.description
}

// Target returns the matched type.
func (c *Composite[T]) Target() reflect.Type {
	return reflect.TypeFor[T]()
}

func (c *Composite[T]) RegisterPropertyMatcher(p *PropertyMatcher) {
	c.properties = append(c.properties, p)
}

// PropertyMatchers returns the registered holders in creation order.
func (c *Composite[T]) PropertyMatchers() []*PropertyMatcher {
	return c.properties
}

func (c *Composite[T]) Matches(actual any) bool {
	if isNil(actual) {
		return false
	}
	v, ok := As[T](actual)
	if !ok {
		return false
	}
	return c.MatchesTyped(v)
}

func (c *Composite[T]) MatchesTyped(actual T) bool {
	acc := NewMatchAccumulator()
	c.MatchesSafely(actual, acc)
	return acc.Matched()
}

// MatchesSafely evaluates every specified property against actual. All
// properties are evaluated so that every mismatch is reported.
func (c *Composite[T]) MatchesSafely(actual T, acc *MatchAccumulator) {
	for _, p := range c.properties {
		p.Evaluate(actual, acc)
	}
}

func (c *Composite[T]) DescribeTo(d *Description) {
	d.AppendText(c.description)

	var specified []SelfDescribing
	for _, p := range c.properties {
		if p.IsSpecified() {
			specified = append(specified, p)
		}
	}
	if len(specified) == 0 {
		return
	}
	d.AppendList(" that (", " and ", ")", specified)
}

func (c *Composite[T]) DescribeMismatch(actual any, d *Description) {
	if isNil(actual) {
		d.AppendText("was nil")
		return
	}
	v, ok := As[T](actual)
	if !ok {
		d.AppendText("was ").AppendValue(actual).AppendText(" (a " + typeName(actual) + ")")
		return
	}
	acc := NewMatchAccumulator()
	c.MatchesSafely(v, acc)
	acc.DescribeTo(d)
}
