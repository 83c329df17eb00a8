// Package core provides the matcher capability that synthesized matchers
// build on: descriptions, basic matchers, property holders and the
// composite aggregator that evaluates them.
package core

import (
	"fmt"
	"reflect"
	"strings"
)

// SelfDescribing is anything that can describe itself.
type SelfDescribing interface {
	DescribeTo(d *Description)
}

// Description accumulates human readable text about matchers and values.
type Description struct {
	b strings.Builder
}

// NewDescription returns an empty description.
func NewDescription() *Description {
	return &Description{}
}

// AppendText appends raw text.
func (d *Description) AppendText(text string) *Description {
	d.b.WriteString(text)
	return d
}

// AppendValue appends a value: strings are quoted 'like this', nil is
// rendered as nil and everything else as <value>.
func (d *Description) AppendValue(v any) *Description {
	switch val := v.(type) {
	case nil:
		d.b.WriteString("nil")
	case string:
		d.b.WriteString("'" + val + "'")
	case fmt.Stringer:
		if isNil(v) {
			d.b.WriteString("nil")
			return d
		}
		d.b.WriteString("<" + val.String() + ">")
	default:
		if isNil(v) {
			d.b.WriteString("nil")
			return d
		}
		fmt.Fprintf(&d.b, "<%v>", v)
	}
	return d
}

// AppendDescriptionOf appends the description of s.
func (d *Description) AppendDescriptionOf(s SelfDescribing) *Description {
	s.DescribeTo(d)
	return d
}

// AppendList appends each element, joined by separator and wrapped in
// start and end.
func (d *Description) AppendList(start, separator, end string, items []SelfDescribing) *Description {
	d.b.WriteString(start)
	for i, item := range items {
		if i > 0 {
			d.b.WriteString(separator)
		}
		item.DescribeTo(d)
	}
	d.b.WriteString(end)
	return d
}

// Len reports the number of bytes written so far.
func (d *Description) Len() int {
	return d.b.Len()
}

func (d *Description) String() string {
	return d.b.String()
}

// Describe renders s into a fresh string.
func Describe(s SelfDescribing) string {
	return NewDescription().AppendDescriptionOf(s).String()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
