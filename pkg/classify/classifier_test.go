package classify_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/refmine/pkg/classify"
	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	ct "github.com/Sumatoshi-tech/refmine/pkg/cst/csttest"
	"github.com/Sumatoshi-tech/refmine/pkg/matcher"
	"github.com/Sumatoshi-tech/refmine/pkg/refactoring"
)

func classifyPair(before, after *cst.Snapshot) classify.Outcome {
	return classify.New().Classify(matcher.New().Match(before, after))
}

func types(out classify.Outcome) []string {
	res := make([]string, 0, len(out.Relationships))
	for _, r := range out.Relationships {
		res = append(res, r.Type.String())
	}

	return res
}

func TestDecisionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		before *cst.Snapshot
		after  *cst.Snapshot
		want   []string
	}{
		{
			name:   "rename type",
			before: ct.Snapshot(ct.Class("p1", "B", ct.Body("int x ;"))),
			after:  ct.Snapshot(ct.Class("p1", "C", ct.Body("int x ;"))),
			want:   []string{"RENAME"},
		},
		{
			name:   "move type",
			before: ct.Snapshot(ct.Class("p1", "B", ct.Body("int x ;"))),
			after:  ct.Snapshot(ct.Class("p2", "B", ct.Body("int x ;"))),
			want:   []string{"MOVE"},
		},
		{
			name:   "move and rename type",
			before: ct.Snapshot(ct.Class("p1", "B", ct.Body("int x ;"))),
			after:  ct.Snapshot(ct.Class("p2", "C", ct.Body("int x ;"))),
			want:   []string{"MOVE_RENAME"},
		},
		{
			name: "rename type keeps its constructor",
			before: ct.Snapshot(ct.Class("p", "Foo", ct.Body("int size ;"), ct.Members(
				ct.Constructor("Foo", ct.Params("size int"), ct.Body("this . size = size ;")),
			))),
			after: ct.Snapshot(ct.Class("p", "Bar", ct.Body("int size ;"), ct.Members(
				ct.Constructor("Bar", ct.Params("size int"), ct.Body("this . size = size ;")),
			))),
			want: []string{"RENAME", "SAME"},
		},
		{
			name: "move and rename type keeps its constructor",
			before: ct.Snapshot(ct.Class("p1", "Foo", ct.Body("int size ;"), ct.Members(
				ct.Constructor("Foo", ct.Params("size int"), ct.Body("this . size = size ;")),
			))),
			after: ct.Snapshot(ct.Class("p2", "Bar", ct.Body("int size ;"), ct.Members(
				ct.Constructor("Bar", ct.Params("size int"), ct.Body("this . size = size ;")),
			))),
			want: []string{"MOVE_RENAME", "SAME"},
		},
		{
			name: "rename method",
			before: ct.Snapshot(ct.Class("p", "Foo", ct.Members(
				ct.Method("total", ct.Body("return a + b ;")),
			))),
			after: ct.Snapshot(ct.Class("p", "Foo", ct.Members(
				ct.Method("sum", ct.Body("return a + b ;")),
			))),
			want: []string{"SAME", "RENAME"},
		},
		{
			name: "change signature",
			before: ct.Snapshot(ct.Class("p", "Foo", ct.Members(
				ct.Method("sum", ct.Params("a int"), ct.Body("return a + b ;")),
			))),
			after: ct.Snapshot(ct.Class("p", "Foo", ct.Members(
				ct.Method("sum", ct.Params("a int", "b int"), ct.Body("return a + b ;")),
			))),
			want: []string{"SAME", "CHANGE_SIGNATURE"},
		},
		{
			name: "move attribute between unrelated classes",
			before: ct.Snapshot(
				ct.Class("p", "A", ct.Members(ct.Attribute("count", "int", ct.Body("int count = 0 ;")))),
				ct.Class("p", "B"),
			),
			after: ct.Snapshot(
				ct.Class("p", "A"),
				ct.Class("p", "B", ct.Members(ct.Attribute("count", "int", ct.Body("int count = 0 ;")))),
			),
			want: []string{"SAME", "SAME", "MOVE"},
		},
		{
			name: "pull up method",
			before: ct.Snapshot(
				ct.Class("p", "Base"),
				ct.Class("p", "Sub", ct.Extends("Base"), ct.Members(ct.Method("run", ct.Body("go ( ) ;")))),
			),
			after: ct.Snapshot(
				ct.Class("p", "Base", ct.Members(ct.Method("run", ct.Body("go ( ) ;")))),
				ct.Class("p", "Sub", ct.Extends("Base")),
			),
			want: []string{"SAME", "SAME", "PULL_UP"},
		},
		{
			name: "push down method",
			before: ct.Snapshot(
				ct.Class("p", "Base", ct.Members(ct.Method("run", ct.Body("go ( ) ;")))),
				ct.Class("p", "Sub", ct.Extends("Base")),
			),
			after: ct.Snapshot(
				ct.Class("p", "Base"),
				ct.Class("p", "Sub", ct.Extends("Base"), ct.Members(ct.Method("run", ct.Body("go ( ) ;")))),
			),
			want: []string{"SAME", "SAME", "PUSH_DOWN"},
		},
		{
			name: "extract and move",
			before: ct.Snapshot(
				ct.Class("p", "A", ct.Members(
					ct.Method("m1", ct.Body("x = load ( ) ; print ( x ) ; log ( x ) ;")),
				)),
				ct.Class("p", "Util"),
			),
			after: ct.Snapshot(
				ct.Class("p", "A", ct.Members(
					ct.Method("m1", ct.Body("x = load ( ) ; Util . show ( x ) ;")),
				)),
				ct.Class("p", "Util", ct.Members(
					ct.Method("show", ct.Body("print ( x ) ; log ( x ) ;")),
				)),
			),
			want: []string{"SAME", "SAME", "SAME", "EXTRACT_MOVE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := classifyPair(tt.before, tt.after)

			assert.Equal(t, tt.want, types(out))
			assert.Zero(t, out.Gaps)

			for _, r := range out.Relationships {
				if r.Type.IsRefactoring() {
					assert.NotEmpty(t, r.Description)
				}
			}
		})
	}
}

func TestAbstractRenameNeedsConcreteCounterpart(t *testing.T) {
	t.Parallel()

	before := ct.Snapshot(
		ct.Interface("p", "Shape", ct.Members(
			ct.Method("area", ct.Stereotypes("abstract"), ct.Body("double")),
		)),
		ct.Class("p", "Circle", ct.Extends("Shape"), ct.Members(
			ct.Method("area", ct.Body("return PI * r * r ;")),
		)),
	)
	after := ct.Snapshot(
		ct.Interface("p", "Shape", ct.Members(
			ct.Method("surface", ct.Stereotypes("abstract"), ct.Body("double")),
		)),
		ct.Class("p", "Circle", ct.Extends("Shape"), ct.Members(
			ct.Method("surface", ct.Body("return PI * r * r ;")),
		)),
	)

	out := classifyPair(before, after)
	assert.Equal(t, []string{"SAME", "SAME", "RENAME", "RENAME"}, types(out))
	assert.Empty(t, out.Suppressed)

	lonelyBefore := ct.Snapshot(ct.Interface("p", "Shape", ct.Members(
		ct.Method("area", ct.Stereotypes("abstract"), ct.Body("double")),
	)))
	lonelyAfter := ct.Snapshot(ct.Interface("p", "Shape", ct.Members(
		ct.Method("surface", ct.Stereotypes("abstract"), ct.Body("double")),
	)))

	out = classifyPair(lonelyBefore, lonelyAfter)
	assert.Equal(t, []string{"SAME"}, types(out))
	require.Len(t, out.Suppressed, 1)
	assert.Equal(t, "p.Shape.area()", out.Suppressed[0].Before.QualifiedName())
	assert.Equal(t, "p.Shape.surface()", out.Suppressed[0].After.QualifiedName())
}

func TestGapsAreCountedAndLogged(t *testing.T) {
	t.Parallel()

	snap := ct.Snapshot(ct.Class("p", "Foo", ct.Members(ct.Method("run"))))
	class := ct.MustLookup(snap, "p.Foo")
	method := ct.MustLookup(snap, "p.Foo.run()")

	res := &matcher.Result{
		Before: snap,
		After:  snap,
		Correspondences: []matcher.Correspondence{
			{Kind: matcher.Direct, Before: class, After: method, Score: 1, Scored: true},
			{Kind: matcher.Extract, Before: class, After: method, Score: 1, Scored: true},
			{Kind: matcher.Identity, Before: class, After: class},
		},
	}

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	out := classify.New(classify.WithLogger(logger)).Classify(res)

	assert.Equal(t, 2, out.Gaps)
	require.Len(t, out.Relationships, 1)
	assert.Equal(t, refactoring.Same, out.Relationships[0].Type)
	assert.Contains(t, buf.String(), "classification gap")
}

func TestEvidenceRoles(t *testing.T) {
	t.Parallel()

	before := ct.Snapshot(ct.Class("p", "Foo", ct.Members(
		ct.Method("m1", ct.Body("x = load ( ) ; print ( x ) ; log ( x ) ;")),
	)))
	after := ct.Snapshot(ct.Class("p", "Foo", ct.Members(
		ct.Method("m1", ct.Body("x = load ( ) ; m2 ( x ) ;")),
		ct.Method("m2", ct.Body("print ( x ) ; log ( x ) ;")),
	)))

	out := classifyPair(before, after)
	require.Equal(t, []string{"SAME", "SAME", "EXTRACT"}, types(out))

	extract := out.Relationships[2]
	require.Len(t, extract.LeftRanges, 1)
	require.Len(t, extract.RightRanges, 2)
	assert.Equal(t, "source method declaration before extraction", extract.LeftRanges[0].Description)
	assert.Equal(t, "extracted method declaration", extract.RightRanges[0].Description)
	assert.Equal(t, "source method declaration after extraction", extract.RightRanges[1].Description)
	assert.Equal(t, "Extract Method m2() extracted from m1() in class p.Foo", extract.Description)
}

func TestClassifyDeduplicates(t *testing.T) {
	t.Parallel()

	snap := ct.Snapshot(ct.Class("p", "Foo"))
	foo := ct.MustLookup(snap, "p.Foo")

	res := &matcher.Result{
		Before: snap,
		After:  snap,
		Correspondences: []matcher.Correspondence{
			{Kind: matcher.Identity, Before: foo, After: foo},
			{Kind: matcher.Identity, Before: foo, After: foo},
		},
	}

	out := classify.New().Classify(res)
	assert.Len(t, out.Relationships, 1)
}
