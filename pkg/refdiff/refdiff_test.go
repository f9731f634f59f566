package refdiff_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	ct "github.com/Sumatoshi-tech/refmine/pkg/cst/csttest"
	"github.com/Sumatoshi-tech/refmine/pkg/frontend"
	"github.com/Sumatoshi-tech/refmine/pkg/refactoring"
	"github.com/Sumatoshi-tech/refmine/pkg/refdiff"
	"github.com/Sumatoshi-tech/refmine/pkg/similarity"
)

type triple struct {
	Type   refactoring.RelationshipType
	Before string
	After  string
}

func triples(rels []refactoring.Relationship) []triple {
	out := make([]triple, 0, len(rels))
	for _, r := range rels {
		out = append(out, triple{r.Type, r.Before.QualifiedName(), r.After.QualifiedName()})
	}

	return out
}

// extractFixture: m2 is extracted from both m1 and m3 of the same class.
func extractFixture() (*cst.Snapshot, *cst.Snapshot) {
	before := ct.Snapshot(ct.Class("p", "Foo", ct.Members(
		ct.Method("m1", ct.Params("s String"), ct.Body("String a = s . trim ( ) ; print ( a ) ; log ( a ) ;")),
		ct.Method("m3", ct.Params("s String"), ct.Body("int n = s . length ( ) ; check ( n ) ; report ( n ) ;")),
	)))
	after := ct.Snapshot(ct.Class("p", "Foo", ct.Members(
		ct.Method("m1", ct.Params("s String"), ct.Body("String a = s . trim ( ) ; m2 ( ) ;")),
		ct.Method("m3", ct.Params("s String"), ct.Body("int n = s . length ( ) ; m2 ( ) ;")),
		ct.Method("m2", ct.Body("print ( a ) ; log ( a ) ; check ( n ) ; report ( n ) ;")),
	)))

	return before, after
}

// hierarchyFixture: A.m1 is pushed down to A1 and A2, and m2 of both
// subclasses is pulled up to A.
func hierarchyFixture() (*cst.Snapshot, *cst.Snapshot) {
	const (
		m1 = "return compute ( x , y ) * 2 ;"
		m2 = "log ( s ) ; send ( s , channel ) ;"
	)

	before := ct.Snapshot(
		ct.Class("p", "A", ct.Members(ct.Method("m1", ct.Body(m1)))),
		ct.Class("p", "A1", ct.Extends("A"), ct.Members(ct.Method("m2", ct.Params("s String"), ct.Body(m2)))),
		ct.Class("p", "A2", ct.Extends("A"), ct.Members(ct.Method("m2", ct.Params("s String"), ct.Body(m2)))),
	)
	after := ct.Snapshot(
		ct.Class("p", "A", ct.Members(ct.Method("m2", ct.Params("s String"), ct.Body(m2)))),
		ct.Class("p", "A1", ct.Extends("A"), ct.Members(ct.Method("m1", ct.Body(m1)))),
		ct.Class("p", "A2", ct.Extends("A"), ct.Members(ct.Method("m1", ct.Body(m1)))),
	)

	return before, after
}

func TestCompareExtractFromTwoCallers(t *testing.T) {
	t.Parallel()

	res := refdiff.Compare(extractFixture())

	assert.Equal(t, []triple{
		{refactoring.Same, "p.Foo", "p.Foo"},
		{refactoring.Same, "p.Foo.m1(String)", "p.Foo.m1(String)"},
		{refactoring.Same, "p.Foo.m3(String)", "p.Foo.m3(String)"},
		{refactoring.Extract, "p.Foo.m1(String)", "p.Foo.m2()"},
		{refactoring.Extract, "p.Foo.m3(String)", "p.Foo.m2()"},
	}, triples(res.Relationships))

	assert.Empty(t, res.Additions)
	assert.Empty(t, res.Deletions)
	assert.Zero(t, res.Gaps)

	descriptions := make([]string, 0, 2)
	for _, r := range res.Refactorings() {
		descriptions = append(descriptions, r.Description)
	}

	assert.Equal(t, []string{
		"Extract Method m2() extracted from m1(String) in class p.Foo",
		"Extract Method m2() extracted from m3(String) in class p.Foo",
	}, descriptions)
}

func TestComparePushDownAndPullUp(t *testing.T) {
	t.Parallel()

	res := refdiff.Compare(hierarchyFixture())

	assert.ElementsMatch(t, []triple{
		{refactoring.Same, "p.A", "p.A"},
		{refactoring.Same, "p.A1", "p.A1"},
		{refactoring.Same, "p.A2", "p.A2"},
		{refactoring.PushDown, "p.A.m1()", "p.A1.m1()"},
		{refactoring.PushDown, "p.A.m1()", "p.A2.m1()"},
		{refactoring.PullUp, "p.A1.m2(String)", "p.A.m2(String)"},
		{refactoring.PullUp, "p.A2.m2(String)", "p.A.m2(String)"},
	}, triples(res.Relationships))

	assert.Empty(t, res.Additions)
	assert.Empty(t, res.Deletions)

	counts := res.CountByType()
	assert.Equal(t, 2, counts[refactoring.PushDown])
	assert.Equal(t, 2, counts[refactoring.PullUp])
}

func TestCompareTypeRenameAndMove(t *testing.T) {
	t.Parallel()

	body := ct.Body("int x ; void run ( ) { }")
	before := ct.Snapshot(ct.Class("p1", "B", body))

	renamed := refdiff.Compare(before, ct.Snapshot(ct.Class("p1", "C", body)))
	require.Len(t, renamed.Relationships, 1)
	assert.Equal(t, refactoring.Rename, renamed.Relationships[0].Type)
	assert.Equal(t, "Rename Class p1.B renamed to p1.C", renamed.Relationships[0].Description)

	moved := refdiff.Compare(before, ct.Snapshot(ct.Class("p2", "C", body)))
	require.Len(t, moved.Relationships, 1)
	assert.Equal(t, refactoring.MoveRename, moved.Relationships[0].Type)
	assert.Equal(t, "Move And Rename Class p1.B moved and renamed to p2.C", moved.Relationships[0].Description)
}

const counterSource = `package PKG;

public class NAME {
    private int size;

    public NAME(int size) {
        this.size = size;
        validate(size);
    }

    int size() {
        return size;
    }
}
`

func javaSnapshot(t *testing.T, pkg, name string) *cst.Snapshot {
	t.Helper()

	src := strings.NewReplacer("PKG", pkg, "NAME", name).Replace(counterSource)

	snap, err := frontend.NewRegistry().BuildSnapshot(context.Background(), []frontend.File{
		{Path: "src/" + pkg + "/" + name + ".java", Content: []byte(src)},
	})
	require.NoError(t, err)

	return snap
}

func TestCompareTypeRenameCarriesConstructor(t *testing.T) {
	t.Parallel()

	before := javaSnapshot(t, "p", "Foo")

	renamed := refdiff.Compare(before, javaSnapshot(t, "p", "Bar"))
	assert.Equal(t, []triple{{refactoring.Rename, "p.Foo", "p.Bar"}}, triples(renamed.Refactorings()))
	assert.Contains(t, triples(renamed.Relationships), triple{refactoring.Same, "p.Foo.Foo(int)", "p.Bar.Bar(int)"})

	moved := refdiff.Compare(before, javaSnapshot(t, "q", "Bar"))
	assert.Equal(t, []triple{{refactoring.MoveRename, "p.Foo", "q.Bar"}}, triples(moved.Refactorings()))
	assert.Contains(t, triples(moved.Relationships), triple{refactoring.Same, "p.Foo.Foo(int)", "q.Bar.Bar(int)"})
}

func TestCompareThresholdBoundary(t *testing.T) {
	t.Parallel()

	before := ct.Snapshot(ct.Class("p", "Foo", ct.Members(ct.Method("oldName", ct.Body("a b c")))))
	after := ct.Snapshot(ct.Class("p", "Foo", ct.Members(ct.Method("newName", ct.Body("a b d")))))

	res := refdiff.Compare(before, after)
	require.Len(t, res.Refactorings(), 1)
	assert.Equal(t, refactoring.Rename, res.Refactorings()[0].Type)
	assert.InDelta(t, 0.5, res.Refactorings()[0].Similarity, 1e-12)

	strict := similarity.DefaultThresholds()
	strict.Minimum = math.Nextafter(0.5, 1)

	res = refdiff.NewDiffer(refdiff.WithThresholds(strict)).Compare(before, after)
	assert.Empty(t, res.Refactorings())
	assert.Len(t, res.Additions, 1)
	assert.Len(t, res.Deletions, 1)
}

func TestCompareKeepsIdentityStable(t *testing.T) {
	t.Parallel()

	for _, fixture := range []func() (*cst.Snapshot, *cst.Snapshot){extractFixture, hierarchyFixture} {
		before, after := fixture()
		res := refdiff.Compare(before, after)

		for _, b := range before.Nodes() {
			a, ok := after.Lookup(b.QualifiedName())
			if !ok || a.Kind() != b.Kind() {
				continue
			}

			var oneToOne []refactoring.Relationship

			for _, r := range res.Relationships {
				if r.Before == b && oneToOneType(r.Type) {
					oneToOne = append(oneToOne, r)
				}
			}

			require.Len(t, oneToOne, 1, b.QualifiedName())
			assert.Equal(t, refactoring.Same, oneToOne[0].Type)
			assert.Same(t, a, oneToOne[0].After)
		}
	}
}

func oneToOneType(t refactoring.RelationshipType) bool {
	switch t {
	case refactoring.Extract, refactoring.ExtractMove, refactoring.Inline, refactoring.ExtractSuper:
		return false
	default:
		return true
	}
}

func TestCompareIsDeterministic(t *testing.T) {
	t.Parallel()

	before, after := hierarchyFixture()
	first := refdiff.Compare(before, after)

	for range 10 {
		next := refdiff.Compare(before, after)
		assert.Equal(t, triples(first.Relationships), triples(next.Relationships))

		for i := range first.Relationships {
			assert.Equal(t, first.Relationships[i].Description, next.Relationships[i].Description)
		}
	}
}

func TestDescriptionsParseBackToTheirType(t *testing.T) {
	t.Parallel()

	registry := refactoring.Default()

	for _, fixture := range []func() (*cst.Snapshot, *cst.Snapshot){extractFixture, hierarchyFixture} {
		for _, r := range refdiff.Compare(fixture()).Refactorings() {
			parsed, err := registry.Parse(r.Description)
			require.NoError(t, err, r.Description)
			assert.Equal(t, r.Type, parsed.Relationship(), r.Description)
		}
	}
}

func TestCompareEmptySnapshots(t *testing.T) {
	t.Parallel()

	after := ct.Snapshot(ct.Class("p", "Foo", ct.Members(ct.Method("run"))))

	res := refdiff.Compare(nil, after)
	assert.Empty(t, res.Relationships)
	assert.Len(t, res.Additions, 2)

	res = refdiff.Compare(after, nil)
	assert.Empty(t, res.Relationships)
	assert.Len(t, res.Deletions, 2)
}

func TestSuppressedAbstractRenameStaysInResidue(t *testing.T) {
	t.Parallel()

	before := ct.Snapshot(ct.Interface("p", "Shape", ct.Members(
		ct.Method("area", ct.Stereotypes("abstract"), ct.Body("double")),
	)))
	after := ct.Snapshot(ct.Interface("p", "Shape", ct.Members(
		ct.Method("surface", ct.Stereotypes("abstract"), ct.Body("double")),
	)))

	res := refdiff.Compare(before, after)
	assert.Empty(t, res.Refactorings())
	assert.Equal(t, 1, res.Suppressed)

	require.Len(t, res.Deletions, 1)
	assert.Equal(t, "p.Shape.area()", res.Deletions[0].QualifiedName())
	require.Len(t, res.Additions, 1)
	assert.Equal(t, "p.Shape.surface()", res.Additions[0].QualifiedName())
}
