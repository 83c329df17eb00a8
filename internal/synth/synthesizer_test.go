package synth

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/contract/reflectsource"
	"github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/pkg/core"
)

type Person struct {
	name     string
	Age      int
	Nickname *string
}

func (p Person) Name() string { return p.name }

type PersonMatcher struct {
	*core.Composite[Person]
	HasName     func(string) *PersonMatcher
	HasAge      func(int) *PersonMatcher
	HasAgeThat  func(core.TypedMatcher[int]) *PersonMatcher `smog:"property=age"`
	HasNickname func(core.Matcher) *PersonMatcher
	HasHeight   func(int) *PersonMatcher
	Like        func(Person) *PersonMatcher
}

func describe(t *testing.T, v any) *contract.Descriptor {
	t.Helper()
	c, err := reflectsource.New(reflect.TypeOf(v))
	require.NoError(t, err)
	d, err := contract.NewModel("", "").Analyze(c)
	require.NoError(t, err)
	return d
}

func TestPlan(t *testing.T) {
	d := describe(t, PersonMatcher{})
	p, err := New(reflectsource.Locator{}, nil).Plan(d)
	require.NoError(t, err)

	assert.Equal(t, "personMatcherSmog", p.Name.Ident)
	assert.Equal(t, "github.com/toyz/smog/internal/synth", p.Name.Package)
	assert.Equal(t, d.Key, p.Key)
	assert.Equal(t, `{ super("a Person"); }`, p.Constructor.String())

	var fields []string
	for _, f := range p.Fields {
		fields = append(fields, f.Name)
	}
	assert.Equal(t, []string{"nameMatcher", "ageMatcher", "nicknameMatcher", "heightMatcher"}, fields)

	bodies := make(map[string]string)
	for _, m := range p.Methods {
		bodies[m.Name] = m.Body.String()
	}
	assert.Equal(t, "{ this.ageMatcher.set(equalTo($1)); return this; }", bodies["HasAge"])
	assert.Equal(t, "{ this.ageMatcher.set($1); return this; }", bodies["HasAgeThat"])
	assert.Equal(t, "{ this.nicknameMatcher.set($1); return this; }", bodies["HasNickname"])

	require.Len(t, p.Seeds, 1)
	// height has no accessor and nickname only has a predicate operation.
	assert.Equal(t, "{ if ($1 != nil) { this.HasName($1.Name); this.HasAge($1.Age); } return this; }", p.Seeds[0].Body.String())

	assert.Equal(t, OverrideMethod, p.Override.Name)
	assert.Equal(t, "{ super.MatchesSafely($$); }", p.Override.Body.String())
}

type recordingBackend struct {
	calls  []string
	failAt string
}

func (r *recordingBackend) record(call string) error {
	r.calls = append(r.calls, call)
	if call == r.failAt {
		return fmt.Errorf("boom at %s", call)
	}
	return nil
}

func (r *recordingBackend) DefineType(name TypeName, target contract.Type, c contract.Contract) (Handle, error) {
	return name, r.record("define " + name.Ident)
}

func (r *recordingBackend) AddConstructor(h Handle, body Body) error {
	return r.record("constructor")
}

func (r *recordingBackend) AddField(h Handle, f FieldPlan) error {
	return r.record("field " + f.Name)
}

func (r *recordingBackend) AddMethod(h Handle, m MethodPlan) error {
	return r.record(m.Kind.String() + " " + m.Name)
}

type fakeGenerated struct{ name string }

func (f fakeGenerated) Name() string      { return f.name }
func (f fakeGenerated) New() (any, error) { return nil, nil }

func (r *recordingBackend) Finalize(h Handle) (GeneratedType, error) {
	if err := r.record("finalize"); err != nil {
		return nil, err
	}
	return fakeGenerated{name: h.(TypeName).String()}, nil
}

type Small struct {
	*core.Composite[Person]
	HasAge func(int) *Small
	Like   func(Person) *Small
}

func TestBuild_CallOrder(t *testing.T) {
	d := describe(t, Small{})
	b := &recordingBackend{}

	gt, err := New(reflectsource.Locator{}, nil).Build(d, b)
	require.NoError(t, err)
	assert.Equal(t, "github.com/toyz/smog/internal/synth.smallSmog", gt.Name())
	assert.Equal(t, []string{
		"define smallSmog",
		"constructor",
		"field ageMatcher",
		"property HasAge",
		"seed Like",
		"override MatchesSafely",
		"finalize",
	}, b.calls)
}

func TestBuild_BackendFailure(t *testing.T) {
	d := describe(t, Small{})

	for _, failAt := range []string{"define smallSmog", "field ageMatcher", "seed Like", "finalize"} {
		t.Run(failAt, func(t *testing.T) {
			b := &recordingBackend{failAt: failAt}
			gt, err := New(reflectsource.Locator{}, nil).Build(d, b)
			require.Error(t, err)
			assert.Nil(t, gt)
			assert.True(t, stderrors.Is(err, errors.ErrSynthesis))
			assert.Equal(t, failAt, b.calls[len(b.calls)-1])
		})
	}
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "ageMatcher", FieldName("age"))
	assert.Equal(t, "first_nameMatcher", FieldName("first-name"))
}
