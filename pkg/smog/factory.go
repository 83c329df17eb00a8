// Package smog creates matcher objects from matcher contracts.
//
// A struct contract is requested as a pointer and synthesized at first use:
//
//	m := smog.MustCreate[*PersonMatcher]().HasName("bob")
//
// An interface contract is requested as itself and must have been
// generated ahead of time with `smog generate`:
//
//	m := smog.MustCreate[PersonMatcher]().HasName("bob")
package smog

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/contract/reflectsource"
	"github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/internal/registry"
	"github.com/toyz/smog/internal/synth"
	"github.com/toyz/smog/internal/synth/dynamic"
	"github.com/toyz/smog/internal/utils"
)

// Error sentinels; use errors.Is.
var (
	ErrContract      = errors.ErrContract
	ErrSignature     = errors.ErrSignature
	ErrNaming        = errors.ErrNaming
	ErrSynthesis     = errors.ErrSynthesis
	ErrInstantiation = errors.ErrInstantiation
)

// Factory analyzes, synthesizes, caches and instantiates matcher types.
// It is safe for concurrent use; each contract is synthesized at most once
// per factory.
type Factory struct {
	model       *contract.Model
	synthesizer *synth.Synthesizer
	backend     *dynamic.Backend
	cache       *utils.Cache[string, synth.GeneratedType]
	registry    *registry.Generated
	logger      *zap.Logger

	syntheses atomic.Int64
}

// Stats reports factory activity.
type Stats struct {
	Syntheses   int64
	Cached      int
	CacheHits   int64
	CacheMisses int64
}

// DefaultFactory serves the package level helpers.
var DefaultFactory = NewFactory()

// NewFactory returns a factory configured by opts.
func NewFactory(opts ...Option) *Factory {
	o := options{registry: registry.Default, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Factory{
		model:       contract.NewModel(o.prefix, o.seed),
		synthesizer: synth.New(reflectsource.Locator{}, o.logger),
		backend:     dynamic.New(),
		cache:       utils.NewCache[string, synth.GeneratedType](),
		registry:    o.registry,
		logger:      o.logger,
	}
}

// Create returns a new matcher for the contract type t: a pointer to a
// struct contract or a generated interface contract.
func (f *Factory) Create(t reflect.Type) (any, error) {
	if t == nil {
		return nil, errors.ContractError("<nil>", "contract type is nil")
	}

	var gt synth.GeneratedType
	var err error
	switch {
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		gt, err = f.synthesized(t)
	case t.Kind() == reflect.Interface:
		gt, err = f.registered(t)
	default:
		return nil, errors.ContractError(t.String(), "request a pointer to a struct contract or an interface contract")
	}
	if err != nil {
		return nil, err
	}

	v, err := gt.New()
	if err != nil {
		if errors.CodeOf(err) == errors.InstantiationErrorCode {
			return nil, err
		}
		return nil, errors.InstantiationError(gt.Name(), err)
	}
	return v, nil
}

func (f *Factory) synthesized(t reflect.Type) (synth.GeneratedType, error) {
	name := registry.ContractName(t.Elem())
	key := contract.Key(name)

	gt, created, err := f.cache.GetOrCreate(key, func() (synth.GeneratedType, error) {
		c, err := reflectsource.New(t)
		if err != nil {
			return nil, err
		}
		d, err := f.model.Analyze(c)
		if err != nil {
			return nil, err
		}
		gt, err := f.synthesizer.Build(d, f.backend)
		if err != nil {
			return nil, err
		}
		f.syntheses.Add(1)
		return gt, nil
	})
	if err != nil {
		f.logger.Debug("synthesis failed", zap.String("contract", name), zap.Error(err))
		return nil, err
	}
	if created {
		f.logger.Debug("synthesized matcher type",
			zap.String("contract", name),
			zap.String("key", key),
			zap.String("type", gt.Name()))
	}
	return gt, nil
}

func (f *Factory) registered(t reflect.Type) (synth.GeneratedType, error) {
	name := registry.ContractName(t)
	key := contract.Key(name)

	gt, _, err := f.cache.GetOrCreate(key, func() (synth.GeneratedType, error) {
		e, ok := f.registry.Lookup(key)
		if !ok {
			return nil, errors.InstantiationError(name, fmt.Errorf("no generated matcher is registered")).
				WithSuggestion("annotate the interface with //smog::matcher and run `smog generate`")
		}
		return registeredType{name: name, entry: e}, nil
	})
	return gt, err
}

// Stats returns a snapshot of the factory counters.
func (f *Factory) Stats() Stats {
	cs := f.cache.GetStats()
	return Stats{
		Syntheses:   f.syntheses.Load(),
		Cached:      cs.Size,
		CacheHits:   cs.Hits,
		CacheMisses: cs.Misses,
	}
}

// registeredType adapts a constructor registered by generated code.
type registeredType struct {
	name  string
	entry registry.Entry
}

func (r registeredType) Name() string {
	return r.name
}

func (r registeredType) New() (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("constructor panicked: %v", p)
		}
	}()
	v := r.entry.New()
	if v == nil || !reflect.TypeOf(v).Implements(r.entry.Contract) {
		return nil, fmt.Errorf("constructor returned %T, which does not implement %s", v, r.entry.Contract)
	}
	return v, nil
}
