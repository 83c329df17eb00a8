package source_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/toyz/smog/internal/contract"
	"github.com/toyz/smog/internal/contract/gosource"
	"github.com/toyz/smog/internal/errors"
	"github.com/toyz/smog/internal/synth"
	"github.com/toyz/smog/internal/synth/source"
)

const contractsPath = "github.com/toyz/smog/examples/people/contracts"

func plan(t *testing.T, iface string, ann *gosource.Annotation) (*synth.Synthesizer, *synth.Plan) {
	t.Helper()
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
		Dir:  "../../..",
	}
	pkgs, err := packages.Load(cfg, contractsPath)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	src, err := gosource.NewSource(pkgs[0].Fset, pkgs[0].Types, gosource.Overrides{
		gosource.OverrideKey(contractsPath, "PersonMatcher", "HavingYearsOld"): "age",
	})
	require.NoError(t, err)

	c, err := src.Contract(iface, ann)
	require.NoError(t, err)
	d, err := contract.NewModel("", "").Analyze(c)
	require.NoError(t, err)

	s := synth.New(gosource.Locator{}, nil)
	p, err := s.Plan(d)
	require.NoError(t, err)
	return s, p
}

// render prints declarations outside any file, so references to the
// contracts package are qualified.
func render(t *testing.T, gt synth.GeneratedType) string {
	t.Helper()
	st, ok := gt.(*source.Type)
	require.True(t, ok)
	var b strings.Builder
	for _, d := range st.Decls() {
		fmt.Fprintf(&b, "%#v\n", d)
	}
	fmt.Fprintf(&b, "%#v\n", st.Registration())
	return b.String()
}

func TestBackend_PersonMatcher(t *testing.T) {
	s, p := plan(t, "PersonMatcher", &gosource.Annotation{Target: "people.Person"})

	gt, err := s.BuildPlan(p, source.New())
	require.NoError(t, err)

	st := gt.(*source.Type)
	assert.Equal(t, contractsPath+".personMatcherSmog", st.Name())
	assert.Equal(t, "personMatcherSmog", st.Ident())
	assert.Equal(t, contractsPath, st.Package())
	assert.Equal(t, "PersonMatcher", st.Contract())
	assert.Equal(t, "newPersonMatcherSmog", st.Constructor())

	code := render(t, gt)
	for _, want := range []string{
		"type personMatcherSmog struct",
		"*core.Composite[people.Person]",
		"addressMatcher *core.PropertyMatcher",
		`core.NewComposite[people.Person]("a Person")`,
		`g.ageMatcher = core.NewPropertyMatcher("age", g)`,
		"func (g *personMatcherSmog) HasName(name string) contracts.AddresseeMatcher",
		"g.nameMatcher.Set(core.EqualTo(name))",
		"func (g *personMatcherSmog) HavingYearsOld(m core.TypedMatcher[int]) contracts.PersonMatcher",
		"g.ageMatcher.Set(m)",
		"g.HasName(p.Name())",
		"g.HasAge(p.Age)",
		"func (g *personMatcherSmog) MatchesSafely(actual people.Person, acc *core.MatchAccumulator)",
		"g.Composite.MatchesSafely(actual, acc)",
		"smog.Register(func() PersonMatcher",
		"return newPersonMatcherSmog()",
	} {
		assert.Contains(t, code, want)
	}
	assert.NotContains(t, code, "p.Address", "predicate-only properties are not seeded")
}

func TestBackend_NillableSeedIsGuarded(t *testing.T) {
	s, p := plan(t, "AddressMatcher", &gosource.Annotation{
		Target:         "*people.Address",
		Description:    "an Address",
		HasDescription: true,
	})

	gt, err := s.BuildPlan(p, source.New())
	require.NoError(t, err)

	code := render(t, gt)
	assert.Contains(t, code, "if a != nil")
	assert.Contains(t, code, "g.HasStreet(a.Street)")
	assert.Contains(t, code, `core.NewComposite[*people.Address]("an Address")`)
}

func TestBackend_Collision(t *testing.T) {
	s, p := plan(t, "PersonMatcher", &gosource.Annotation{Target: "people.Person"})
	backend := source.New()

	_, err := s.BuildPlan(p, backend)
	require.NoError(t, err)
	assert.True(t, backend.Defined(p.Name.String()))

	_, err = s.BuildPlan(p, backend)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSynthesis)
}

func TestBackend_NewIsAnInstantiationError(t *testing.T) {
	s, p := plan(t, "PersonMatcher", &gosource.Annotation{Target: "people.Person"})

	gt, err := s.BuildPlan(p, source.New())
	require.NoError(t, err)

	_, err = gt.New()
	assert.ErrorIs(t, err, errors.ErrInstantiation)
}

func TestBackend_RejectsForeignHandles(t *testing.T) {
	backend := source.New()
	assert.Error(t, backend.AddField("not a handle", synth.FieldPlan{Name: "ageMatcher", Property: "age"}))
	_, err := backend.Finalize(42)
	assert.Error(t, err)
}
