package smog

import (
	"fmt"
	"reflect"

	"github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/internal/registry"
)

// Create returns a new matcher for contract C from the default factory.
func Create[C any]() (C, error) {
	return CreateWith[C](DefaultFactory)
}

// MustCreate is like Create but panics on error.
func MustCreate[C any]() C {
	m, err := Create[C]()
	if err != nil {
		panic(err)
	}
	return m
}

// CreateWith returns a new matcher for contract C from f.
func CreateWith[C any](f *Factory) (C, error) {
	var zero C
	t := reflect.TypeFor[C]()
	v, err := f.Create(t)
	if err != nil {
		return zero, err
	}
	m, ok := v.(C)
	if !ok {
		return zero, errors.InstantiationError(t.String(), fmt.Errorf("generated value %T is not a %s", v, t))
	}
	return m, nil
}

// Register records the constructor of a generated matcher for the
// interface contract C. Generated files call it from init.
func Register[C any](ctor func() C) {
	err := registry.Default.Register(reflect.TypeFor[C](), func() any { return ctor() })
	if err != nil {
		panic(err)
	}
}
