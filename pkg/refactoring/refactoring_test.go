package refactoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	ct "github.com/Sumatoshi-tech/refmine/pkg/cst/csttest"
	"github.com/Sumatoshi-tech/refmine/pkg/refactoring"
)

func fixture() (*cst.Snapshot, *cst.Snapshot) {
	before := ct.Snapshot(
		ct.Class("p1", "Foo", ct.Members(
			ct.Attribute("count", "int"),
			ct.Method("m1", ct.Params("s String")),
		)),
		ct.Class("p1", "Base"),
	)
	after := ct.Snapshot(
		ct.Class("p2", "Bar", ct.Extends("Base"), ct.Members(
			ct.Attribute("total", "int"),
			ct.Method("m2", ct.Params("s String", "n int")),
		)),
		ct.Interface("p2", "Shape"),
	)

	return before, after
}

func TestRoundTripEveryRenderedType(t *testing.T) {
	t.Parallel()

	before, after := fixture()
	g := refactoring.Default()

	foo := ct.MustLookup(before, "p1.Foo")
	bar := ct.MustLookup(after, "p2.Bar")
	m1 := ct.MustLookup(before, "p1.Foo.m1(String)")
	m2 := ct.MustLookup(after, "p2.Bar.m2(String,int)")
	count := ct.MustLookup(before, "p1.Foo.count")
	total := ct.MustLookup(after, "p2.Bar.total")
	shape := ct.MustLookup(after, "p2.Shape")

	rels := []refactoring.Relationship{
		{Type: refactoring.Rename, Before: foo, After: bar},
		{Type: refactoring.Move, Before: foo, After: bar},
		{Type: refactoring.MoveRename, Before: foo, After: bar},
		{Type: refactoring.ExtractSuper, Before: foo, After: bar},
		{Type: refactoring.ExtractSuper, Before: foo, After: shape},
		{Type: refactoring.Rename, Before: m1, After: m2},
		{Type: refactoring.Move, Before: m1, After: m2},
		{Type: refactoring.MoveRename, Before: m1, After: m2},
		{Type: refactoring.PullUp, Before: m1, After: m2},
		{Type: refactoring.PushDown, Before: m1, After: m2},
		{Type: refactoring.Extract, Before: m1, After: m2},
		{Type: refactoring.ExtractMove, Before: m1, After: m2},
		{Type: refactoring.Inline, Before: m1, After: m2},
		{Type: refactoring.ChangeSignature, Before: m1, After: m2},
		{Type: refactoring.Rename, Before: count, After: total},
		{Type: refactoring.Move, Before: count, After: total},
		{Type: refactoring.MoveRename, Before: count, After: total},
		{Type: refactoring.PullUp, Before: count, After: total},
		{Type: refactoring.PushDown, Before: count, After: total},
	}

	for _, rel := range rels {
		desc, err := g.Render(&rel)
		require.NoError(t, err, rel.String())
		require.NotEmpty(t, desc)

		parsed, err := g.Parse(desc)
		require.NoError(t, err, desc)
		assert.Equal(t, rel.Type, parsed.Relationship(), desc)
	}
}

func TestRenderExamples(t *testing.T) {
	t.Parallel()

	before, after := fixture()
	g := refactoring.Default()

	rel := refactoring.Relationship{
		Type:   refactoring.Extract,
		Before: ct.MustLookup(before, "p1.Foo.m1(String)"),
		After:  ct.MustLookup(after, "p2.Bar.m2(String,int)"),
	}
	require.NoError(t, g.Describe(&rel))

	assert.Equal(t, "Extract Method m2(String, int) extracted from m1(String) in class p1.Foo", rel.Description)
	assert.Equal(t, "Extract Method", rel.DisplayName())

	iface := refactoring.Relationship{
		Type:   refactoring.ExtractSuper,
		Before: ct.MustLookup(before, "p1.Foo"),
		After:  ct.MustLookup(after, "p2.Shape"),
	}
	require.NoError(t, g.Describe(&iface))
	assert.Equal(t, "Extract Interface p2.Shape from classes [p1.Foo]", iface.Description)
}

func TestSameRendersEmpty(t *testing.T) {
	t.Parallel()

	before, _ := fixture()
	foo := ct.MustLookup(before, "p1.Foo")

	rel := refactoring.Relationship{Type: refactoring.Same, Before: foo, After: foo}
	require.NoError(t, refactoring.Default().Describe(&rel))

	assert.Empty(t, rel.Description)
	assert.Nil(t, rel.Refactoring)
	assert.Equal(t, "SAME", rel.DisplayName())
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	before, after := fixture()
	g := refactoring.Default()

	_, err := g.Render(&refactoring.Relationship{Type: refactoring.Rename, Before: ct.MustLookup(before, "p1.Foo")})
	require.ErrorIs(t, err, refactoring.ErrMissingSides)

	_, err = g.Render(&refactoring.Relationship{
		Type:   refactoring.Extract,
		Before: ct.MustLookup(before, "p1.Foo"),
		After:  ct.MustLookup(after, "p2.Bar"),
	})
	require.ErrorIs(t, err, refactoring.ErrNoTemplate)
}

func TestParseUnknownDescription(t *testing.T) {
	t.Parallel()

	_, err := refactoring.Default().Parse("Reticulate Splines in class Foo")
	require.ErrorIs(t, err, refactoring.ErrUnknownDescription)

	_, err = refactoring.Default().Parse("")
	require.ErrorIs(t, err, refactoring.ErrUnknownDescription)
}

func TestParseForeignDescriptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		id   string
	}{
		{"Rename Variable a to b in method run() from class p.A", "RENAME_VARIABLE"},
		{"Change Package org.old to org.new", "RENAME_PACKAGE"},
		{"Merge Method [a(), b()] to c() in class p.A", "MERGE_OPERATION"},
		{"Move And Rename Method run() from class p.A to go() from class p.B", refactoring.MoveAndRenameOperationID},
		{"Move Method run() from class p.A to run() from class p.B", refactoring.MoveOperationID},
	}

	for _, tt := range tests {
		p, err := refactoring.Default().Parse(tt.desc)
		require.NoError(t, err, tt.desc)
		assert.Equal(t, tt.id, p.Refactoring.ID, tt.desc)
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	got, err := refactoring.Default().Aggregate("Extract Method m2() extracted from m1(String) in class p.Foo")
	require.NoError(t, err)
	assert.Equal(t, "Extract Method m2() extracted from * in class p.Foo", got)

	got, err = refactoring.Default().Aggregate("Push Down Method m1() from class p.A to m1() from class p.A1")
	require.NoError(t, err)
	assert.Equal(t, "Push Down Method m1() from class p.A to * from class *", got)
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	g := refactoring.Default()
	assert.GreaterOrEqual(t, len(g.Entries()), 40)

	for _, r := range g.Entries() {
		byName, ok := g.ByDisplayName(r.DisplayName)
		require.True(t, ok)
		assert.Same(t, r, byName)

		byID, ok := g.ByID(r.ID)
		require.True(t, ok)
		assert.Same(t, r, byID)
	}
}

func TestRegistryRejectsInvalidDefinitions(t *testing.T) {
	t.Parallel()

	tests := []refactoring.Definition{
		{ID: "X", DisplayName: "Do X", Template: "Something %s"},
		{ID: "", DisplayName: "Do X", Template: "Do X %s"},
		{ID: "X", DisplayName: "Do X", Template: "Do X %s", Aggregate: []int{2}},
	}

	for _, def := range tests {
		_, err := refactoring.NewRegistry([]refactoring.Definition{def})
		require.ErrorIs(t, err, refactoring.ErrInvalidDefinition)
	}

	_, err := refactoring.NewRegistry([]refactoring.Definition{
		{ID: "X", DisplayName: "Do X", Template: "Do X %s"},
		{ID: "X", DisplayName: "Do Y", Template: "Do Y %s"},
	})
	require.ErrorIs(t, err, refactoring.ErrInvalidDefinition)
}

func TestFormatArity(t *testing.T) {
	t.Parallel()

	r, ok := refactoring.Default().ByID(refactoring.RenameClassID)
	require.True(t, ok)

	_, err := r.Format("only-one")
	require.ErrorIs(t, err, refactoring.ErrArgumentCount)
	assert.Equal(t, 2, r.Arity())
}

func TestSetCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	before, after := fixture()
	foo := ct.MustLookup(before, "p1.Foo")
	bar := ct.MustLookup(after, "p2.Bar")

	s := refactoring.NewSet()
	assert.True(t, s.Add(refactoring.Relationship{Type: refactoring.Rename, Before: foo, After: bar}))
	assert.False(t, s.Add(refactoring.Relationship{Type: refactoring.Rename, Before: foo, After: bar, Similarity: 0.9}))
	assert.True(t, s.Add(refactoring.Relationship{Type: refactoring.Move, Before: foo, After: bar}))

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(refactoring.Key{Type: refactoring.Move, Before: foo.ID(), After: bar.ID()}))
}

func TestRelationshipTypeText(t *testing.T) {
	t.Parallel()

	for _, rt := range refactoring.RelationshipTypes() {
		parsed, err := refactoring.ParseRelationshipType(rt.String())
		require.NoError(t, err)
		assert.Equal(t, rt, parsed)
	}

	_, err := refactoring.ParseRelationshipType("TELEPORT")
	require.ErrorIs(t, err, refactoring.ErrUnknownRelationshipType)
}
