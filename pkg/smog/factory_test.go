package smog

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/smog/internal/registry"
	"github.com/toyz/smog/pkg/core"
)

type Addressee interface {
	Name() string
}

type Person struct {
	name string
	Age  int
}

func (p Person) Name() string { return p.name }

type AddresseeOps[R any] struct {
	HasName func(string) R
	Like    func(Addressee) R
}

type PersonMatcher struct {
	*core.Composite[Person] `smog:"description=a Person"`
	AddresseeOps[*PersonMatcher]
	HasAge     func(int) *PersonMatcher
	HasAgeThat func(core.TypedMatcher[int]) *PersonMatcher `smog:"property=age"`
	Like       func(Person) *PersonMatcher
}

type UndescribedMatcher struct {
	*core.Composite[Person]
	HasAge func(int) *UndescribedMatcher
}

type UnsupportedMatcher struct {
	*core.Composite[Person]
	Frobnicate func(int) *UnsupportedMatcher
}

type BarePrefixMatcher struct {
	*core.Composite[Person]
	Has func(int) *BarePrefixMatcher
}

type UndeclaredMatcher struct {
	HasAge func(int) *UndeclaredMatcher
}

type Box[P any] struct {
	Contents P
}

type LabelledBox[P1, P2 any] struct {
	Box[P1]
	Label P2
}

type BoxOps[P, R any] struct {
	HasContents     func(P) R
	HasContentsThat func(core.TypedMatcher[P]) R `smog:"property=contents"`
}

type LabelledBoxMatcher[P1, P2 any] struct {
	*core.Composite[LabelledBox[P1, P2]] `smog:"description=a LabelledBox"`
	BoxOps[P1, *LabelledBoxMatcher[P1, P2]]
	HasLabel func(P2) *LabelledBoxMatcher[P1, P2]
	Like     func(LabelledBox[P1, P2]) *LabelledBoxMatcher[P1, P2]
}

func TestCreate_EndToEnd(t *testing.T) {
	m := MustCreate[*PersonMatcher]().HasName("bob").HasAge(36)

	assert.True(t, m.Matches(Person{name: "bob", Age: 36}))
	assert.False(t, m.Matches(Person{name: "dennis", Age: 36}))
	assert.Equal(t, "a Person that (has name ('bob') and has age (<36>))", core.Describe(m))

	d := core.NewDescription()
	m.DescribeMismatch(Person{name: "dennis", Age: 37}, d)
	assert.Equal(t, "name was 'dennis' (expected 'bob') and age was <37> (expected <36>)", d.String())
}

func TestCreate_PredicateAndSeed(t *testing.T) {
	m := MustCreate[*PersonMatcher]().HasAgeThat(core.GreaterThan(30))
	assert.True(t, m.Matches(Person{Age: 31}))
	assert.False(t, m.Matches(Person{Age: 30}))

	seeded := MustCreate[*PersonMatcher]().Like(Person{name: "bob", Age: 36})
	assert.Equal(t, "a Person that (has name ('bob') and has age (<36>))", core.Describe(seeded))
}

func TestCreate_SeedThenOverride(t *testing.T) {
	m := MustCreate[*PersonMatcher]().Like(Person{name: "alice", Age: 36}).HasName("bob")

	assert.True(t, m.Matches(Person{name: "bob", Age: 36}))
	d := core.NewDescription()
	m.DescribeMismatch(Person{name: "bob", Age: 40}, d)
	assert.Equal(t, "age was <40> (expected <36>)", d.String())
}

func TestCreate_GenericContracts(t *testing.T) {
	f := NewFactory()
	a, err := CreateWith[*LabelledBoxMatcher[int, string]](f)
	require.NoError(t, err)
	b, err := CreateWith[*LabelledBoxMatcher[string, int]](f)
	require.NoError(t, err)

	a.HasContents(3).HasLabel("three")
	assert.True(t, a.Matches(LabelledBox[int, string]{Box: Box[int]{Contents: 3}, Label: "three"}))
	assert.False(t, a.Matches(LabelledBox[int, string]{Box: Box[int]{Contents: 4}, Label: "three"}))
	assert.Equal(t, "a LabelledBox that (has contents (<3>) and has label ('three'))", core.Describe(a))

	b.HasContentsThat(core.Func("non-empty", func(s string) bool { return s != "" }))
	assert.True(t, b.Matches(LabelledBox[string, int]{Box: Box[string]{Contents: "hat"}}))
	assert.False(t, b.Matches(LabelledBox[string, int]{}))

	seeded, err := CreateWith[*LabelledBoxMatcher[int, string]](f)
	require.NoError(t, err)
	seeded.Like(LabelledBox[int, string]{Box: Box[int]{Contents: 3}, Label: "three"}).HasLabel("four")
	d := core.NewDescription()
	seeded.DescribeMismatch(LabelledBox[int, string]{Box: Box[int]{Contents: 3}, Label: "three"}, d)
	assert.Equal(t, "label was 'three' (expected 'four')", d.String())

	var idents []string
	for _, key := range f.cache.Keys() {
		gt, ok := f.cache.Get(key)
		require.True(t, ok)
		name := gt.Name()
		idents = append(idents, name[strings.LastIndex(name, ".")+1:])
	}
	assert.ElementsMatch(t, []string{
		"labelledBoxMatcher_int_string_Smog",
		"labelledBoxMatcher_string_int_Smog",
	}, idents)

	st := f.Stats()
	assert.Equal(t, int64(2), st.Syntheses)
	assert.Equal(t, 2, st.Cached)
	assert.Equal(t, int64(1), st.CacheHits)
}

func TestCreate_DefaultDescription(t *testing.T) {
	m, err := Create[*UndescribedMatcher]()
	require.NoError(t, err)
	assert.Equal(t, "a Person", core.Describe(m))
	assert.Equal(t, "a Person that (has age (<3>))", core.Describe(m.HasAge(3)))
}

func TestCreate_FreshInstances(t *testing.T) {
	f := NewFactory()
	a, err := CreateWith[*PersonMatcher](f)
	require.NoError(t, err)
	b, err := CreateWith[*PersonMatcher](f)
	require.NoError(t, err)

	a.HasName("bob")
	assert.Equal(t, "a Person", core.Describe(b))
	assert.NotSame(t, a, b)

	st := f.Stats()
	assert.Equal(t, int64(1), st.Syntheses)
	assert.Equal(t, 1, st.Cached)
	assert.Equal(t, int64(1), st.CacheHits)
}

func TestCreate_ConcurrentSynthesizesOnce(t *testing.T) {
	f := NewFactory()

	const workers = 64
	var wg sync.WaitGroup
	results := make([]*PersonMatcher, workers)
	errs := make([]error, workers)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = CreateWith[*PersonMatcher](f)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
	}
	assert.Equal(t, int64(1), f.Stats().Syntheses)
	assert.Equal(t, 1, f.Stats().Cached)
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		create   func(f *Factory) error
		sentinel error
		contains string
	}{
		{
			name: "missing declaration",
			create: func(f *Factory) error {
				_, err := CreateWith[*UndeclaredMatcher](f)
				return err
			},
			sentinel: ErrContract,
			contains: "declaration",
		},
		{
			name: "unsupported method",
			create: func(f *Factory) error {
				_, err := CreateWith[*UnsupportedMatcher](f)
				return err
			},
			sentinel: ErrSignature,
			contains: "Frobnicate",
		},
		{
			name: "bare prefix",
			create: func(f *Factory) error {
				_, err := CreateWith[*BarePrefixMatcher](f)
				return err
			},
			sentinel: ErrNaming,
		},
		{
			name: "not a contract",
			create: func(f *Factory) error {
				_, err := f.Create(reflect.TypeFor[int]())
				return err
			},
			sentinel: ErrContract,
		},
		{
			name: "nil type",
			create: func(f *Factory) error {
				_, err := f.Create(nil)
				return err
			},
			sentinel: ErrContract,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFactory()
			err := tt.create(f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
			assert.Equal(t, int64(0), f.Stats().Syntheses)
			assert.Equal(t, 0, f.Stats().Cached)
		})
	}
}

func TestCreate_FailuresAreRetried(t *testing.T) {
	f := NewFactory()
	for i := 0; i < 3; i++ {
		_, err := CreateWith[*UnsupportedMatcher](f)
		require.Error(t, err)
	}
	st := f.Stats()
	assert.Equal(t, int64(3), st.CacheMisses)
	assert.Equal(t, 0, st.Cached)
}

func TestOptions_PrefixAndSeed(t *testing.T) {
	type WithMatcher struct {
		*core.Composite[Person] `smog:"description=someone"`
		WithAge  func(int) *WithMatcher
		Resemble func(Person) *WithMatcher
	}

	f := NewFactory(WithPropertyPrefix("With"), WithSeedMethod("Resemble"))
	m, err := CreateWith[*WithMatcher](f)
	require.NoError(t, err)

	assert.Equal(t, "someone that (has age (<40>))", core.Describe(m.Resemble(Person{Age: 40})))
	assert.True(t, m.Matches(Person{Age: 40}))

	_, err = Create[*WithMatcher]()
	assert.True(t, errors.Is(err, ErrSignature), "default prefix rejects WithAge")
}

type NameMatcher interface {
	core.Matcher
	HasName(name string) NameMatcher
}

type nameMatcher struct {
	*core.Composite[Person]
	name *core.PropertyMatcher
}

func newNameMatcher() *nameMatcher {
	m := &nameMatcher{Composite: core.NewComposite[Person]("a named Person")}
	m.name = core.NewPropertyMatcher("name", m)
	return m
}

func (m *nameMatcher) HasName(name string) NameMatcher {
	m.name.Set(core.EqualTo(name))
	return m
}

func TestCreate_RegisteredInterface(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(reflect.TypeFor[NameMatcher](), func() any { return newNameMatcher() }))

	f := NewFactory(withRegistry(r))
	m, err := CreateWith[NameMatcher](f)
	require.NoError(t, err)

	m = m.HasName("bob")
	assert.True(t, m.Matches(Person{name: "bob"}))
	assert.Equal(t, "a named Person that (has name ('bob'))", core.Describe(m))
	assert.Equal(t, int64(0), f.Stats().Syntheses)
}

func TestCreate_UnregisteredInterface(t *testing.T) {
	f := NewFactory(withRegistry(registry.New()))
	_, err := CreateWith[NameMatcher](f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInstantiation))
	assert.Contains(t, err.Error(), "no generated matcher is registered")
}

func TestCreate_ConstructorPanics(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(reflect.TypeFor[NameMatcher](), func() any { panic("boom") }))

	_, err := CreateWith[NameMatcher](NewFactory(withRegistry(r)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInstantiation))
	assert.Contains(t, err.Error(), "boom")
}

func TestMustCreate_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCreate[*UnsupportedMatcher]() })
}
