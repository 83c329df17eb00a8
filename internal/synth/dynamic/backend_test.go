package dynamic

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/contract/reflectsource"
	"github.com/toyz/smog/internal/synth"
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

type Robot struct {
	Serial string
}

func (r *Robot) Name() string { return "robot-" + r.Serial }

type AddresseeOps[R any] struct {
	HasName func(string) R
	Like    func(Addressee) R
}

type PersonMatcher struct {
	*core.Composite[Person] `smog:"description=a Person"`
	AddresseeOps[*PersonMatcher]
	HasAge         func(int) *PersonMatcher
	HasAgeThat     func(core.TypedMatcher[int]) *PersonMatcher `smog:"property=age"`
	HavingYearsOld func(int) *PersonMatcher                    `smog:"property=age"`
	Like           func(Person) *PersonMatcher
}

func build(t *testing.T, b *Backend, v any) synth.GeneratedType {
	t.Helper()
	c, err := reflectsource.New(reflect.TypeOf(v))
	require.NoError(t, err)
	d, err := contract.NewModel("", "").Analyze(c)
	require.NoError(t, err)
	gt, err := synth.New(reflectsource.Locator{}, nil).Build(d, b)
	require.NoError(t, err)
	return gt
}

func newPersonMatcher(t *testing.T) *PersonMatcher {
	t.Helper()
	gt := build(t, New(), PersonMatcher{})
	v, err := gt.New()
	require.NoError(t, err)
	return v.(*PersonMatcher)
}

func mismatch(m core.Matcher, actual any) string {
	d := core.NewDescription()
	m.DescribeMismatch(actual, d)
	return d.String()
}

func TestGenerated_LiteralOperations(t *testing.T) {
	m := newPersonMatcher(t).HasName("bob").HasAge(36)

	assert.True(t, m.Matches(Person{name: "bob", Age: 36}))
	assert.False(t, m.Matches(Person{name: "dennis", Age: 36}))
	assert.Equal(t, "a Person that (has name ('bob') and has age (<36>))", core.Describe(m))
	assert.Equal(t, "name was 'dennis' (expected 'bob')", mismatch(m, Person{name: "dennis", Age: 36}))
}

func TestGenerated_PredicateAndOverride(t *testing.T) {
	m := newPersonMatcher(t).HasAgeThat(core.GreaterThan(30))
	assert.True(t, m.Matches(Person{Age: 36}))
	assert.False(t, m.Matches(Person{Age: 20}))

	m.HavingYearsOld(20)
	assert.True(t, m.Matches(Person{Age: 20}), "last operation on a property wins")
}

func TestGenerated_NothingSpecified(t *testing.T) {
	m := newPersonMatcher(t)
	assert.True(t, m.Matches(Person{name: "anyone"}))
	assert.Equal(t, "a Person", core.Describe(m))
	assert.False(t, m.Matches(nil))
}

func TestGenerated_Seeds(t *testing.T) {
	m := newPersonMatcher(t).Like(Person{name: "bob", Age: 36})
	assert.True(t, m.Matches(Person{name: "bob", Age: 36}))
	assert.False(t, m.Matches(Person{name: "bob", Age: 35}))

	// The ancestor seed only knows about names.
	m = newPersonMatcher(t)
	m.AddresseeOps.Like(&Robot{Serial: "7"})
	assert.Equal(t, "a Person that (has name ('robot-7'))", core.Describe(m))

	m = newPersonMatcher(t)
	m.AddresseeOps.Like(nil)
	assert.Equal(t, "a Person", core.Describe(m))
}

func TestGenerated_InstancesAreIndependent(t *testing.T) {
	gt := build(t, New(), PersonMatcher{})
	a, err := gt.New()
	require.NoError(t, err)
	b, err := gt.New()
	require.NoError(t, err)

	a.(*PersonMatcher).HasName("bob")
	assert.Equal(t, "a Person", core.Describe(b.(*PersonMatcher)))
}

func TestBackend_Collision(t *testing.T) {
	b := New()
	build(t, b, PersonMatcher{})

	c, err := reflectsource.New(reflect.TypeOf(PersonMatcher{}))
	require.NoError(t, err)
	d, err := contract.NewModel("", "").Analyze(c)
	require.NoError(t, err)

	_, err = synth.New(reflectsource.Locator{}, nil).Build(d, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
	assert.True(t, b.Defined("github.com/toyz/smog/internal/synth/dynamic.personMatcherSmog"))
}
