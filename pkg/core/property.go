package core

import (
	"reflect"
	"strings"

	"github.com/toyz/smog/internal/accessor"
)

// PropertyRegistrar receives property holders as they are created.
type PropertyRegistrar interface {
	RegisterPropertyMatcher(p *PropertyMatcher)
}

// PropertyMatcher holds the matcher for one property of the target. Until
// Set is called it holds the default "anything" matcher and is skipped
// during evaluation.
type PropertyMatcher struct {
	property string
	matcher  Matcher
}

// NewPropertyMatcher creates a holder for property and registers it with owner.
func NewPropertyMatcher(property string, owner PropertyRegistrar) *PropertyMatcher {
	p := &PropertyMatcher{property: property}
	if owner != nil {
		owner.RegisterPropertyMatcher(p)
	}
	return p
}

// Property returns the property name.
func (p *PropertyMatcher) Property() string {
	return p.property
}

// Set replaces the held matcher. Passing nil restores the default.
func (p *PropertyMatcher) Set(m Matcher) {
	p.matcher = m
}

// IsSpecified reports whether a matcher was set.
func (p *PropertyMatcher) IsSpecified() bool {
	return p.matcher != nil
}

// Matcher returns the held matcher.
func (p *PropertyMatcher) Matcher() Matcher {
	if p.matcher == nil {
		return Anything[any]()
	}
	return p.matcher
}

func (p *PropertyMatcher) DescribeTo(d *Description) {
	d.AppendText("has ").AppendText(p.property).AppendText(" (").AppendDescriptionOf(p.Matcher()).AppendText(")")
}

// Evaluate reads the property from candidate and records the outcome in
// acc. Unspecified holders always pass.
func (p *PropertyMatcher) Evaluate(candidate any, acc *MatchAccumulator) bool {
	if !p.IsSpecified() {
		return true
	}
	a, ok := accessor.Find(reflect.TypeOf(candidate), p.property)
	if !ok {
		acc.unreadable(p, "has no accessor on "+typeName(candidate))
		return false
	}
	v, ok := a.Get(reflect.ValueOf(candidate))
	if !ok {
		acc.unreadable(p, "could not be read from "+typeName(candidate))
		return false
	}
	return acc.Record(p, v.Interface())
}

// MatchAccumulator collects per-property results of one evaluation.
type MatchAccumulator struct {
	mismatches []string
}

// NewMatchAccumulator returns an empty accumulator.
func NewMatchAccumulator() *MatchAccumulator {
	return &MatchAccumulator{}
}

// Record evaluates p's matcher against value and keeps a mismatch line of
// the form "name was 'dennis' (expected 'bob')" when it fails.
func (a *MatchAccumulator) Record(p *PropertyMatcher, value any) bool {
	m := p.Matcher()
	if m.Matches(value) {
		return true
	}
	d := NewDescription().AppendText(p.property).AppendText(" ")
	m.DescribeMismatch(value, d)
	d.AppendText(" (expected ").AppendDescriptionOf(m).AppendText(")")
	a.mismatches = append(a.mismatches, d.String())
	return false
}

func (a *MatchAccumulator) unreadable(p *PropertyMatcher, reason string) {
	a.mismatches = append(a.mismatches, p.property+" "+reason)
}

// Matched reports whether every recorded property matched.
func (a *MatchAccumulator) Matched() bool {
	return len(a.mismatches) == 0
}

// Mismatches returns the recorded mismatch lines in evaluation order.
func (a *MatchAccumulator) Mismatches() []string {
	return a.mismatches
}

func (a *MatchAccumulator) DescribeTo(d *Description) {
	d.AppendText(strings.Join(a.mismatches, " and "))
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
