package similarity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	ct "github.com/Sumatoshi-tech/refmine/pkg/cst/csttest"
	"github.com/Sumatoshi-tech/refmine/pkg/multiset"
	"github.com/Sumatoshi-tech/refmine/pkg/similarity"
)

func TestJaccardMultiplicities(t *testing.T) {
	t.Parallel()

	a := multiset.Of("x", "x", "y")
	b := multiset.Of("x", "y", "y")

	// intersection {x:1, y:1} = 2, union {x:2, y:2} = 4.
	assert.InDelta(t, 0.5, similarity.Jaccard(a, b), 1e-9)
}

func TestJaccardEdgeCases(t *testing.T) {
	t.Parallel()

	empty := multiset.New[string]()

	assert.InDelta(t, 0.0, similarity.Jaccard(empty, multiset.New[string]()), 1e-9)
	assert.InDelta(t, 0.0, similarity.Jaccard(multiset.Of("a"), multiset.Of("b")), 1e-9)
	assert.InDelta(t, 0.0, similarity.Jaccard(empty, multiset.Of("a")), 1e-9)
}

func TestSimilarityProperties(t *testing.T) {
	t.Parallel()

	snap := ct.Snapshot(ct.Class("p", "C", ct.Members(
		ct.Method("a", ct.Body("int x = 1 ; return x + y ;")),
		ct.Method("b", ct.Body("int x = 2 ; return x * x ;")),
		ct.Method("c", ct.Body("foo ( ) ;")),
	)))

	nodes := snap.OfKind(cst.KindMethod)
	require.Len(t, nodes, 3)

	for _, a := range nodes {
		assert.InDelta(t, 1.0, similarity.Similarity(a, a), 1e-9, "self similarity of %s", a)

		for _, b := range nodes {
			assert.InDelta(t, similarity.Similarity(a, b), similarity.Similarity(b, a), 1e-9, "symmetry %s/%s", a, b)
		}
	}
}

func TestCoverage(t *testing.T) {
	t.Parallel()

	part := multiset.Of("a", "b", "c", "d")
	whole := multiset.Of("a", "b", "z")

	assert.InDelta(t, 0.5, similarity.Coverage(part, whole), 1e-9)
	assert.InDelta(t, 0.0, similarity.Coverage(multiset.New[string](), whole), 1e-9)
}

func TestScorerMemoizes(t *testing.T) {
	t.Parallel()

	before := ct.Snapshot(ct.Class("p", "C", ct.Body("a b c")))
	after := ct.Snapshot(ct.Class("p", "D", ct.Body("a b d")))

	s := similarity.NewScorer()
	b, a := before.Nodes()[0], after.Nodes()[0]

	first := s.Score(b, a)
	second := s.Score(b, a)

	assert.InDelta(t, 0.5, first, 1e-9)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.Evaluations())
}

func TestThresholds(t *testing.T) {
	t.Parallel()

	th := similarity.DefaultThresholds()
	require.NoError(t, th.Validate())

	assert.True(t, th.Accepts(0.5))
	assert.False(t, th.Accepts(0.4999999))
	assert.True(t, th.AcceptsCoverage(0.3))
	assert.False(t, th.AcceptsCoverage(0.29))

	bad := th
	bad.Minimum = 1.5
	require.ErrorIs(t, bad.Validate(), similarity.ErrThresholdRange)

	inverted := th
	inverted.ExtractMinimum = 0.8
	require.ErrorIs(t, inverted.Validate(), similarity.ErrExtractAboveMain)

	allBad := similarity.Thresholds{Minimum: -1, Ideal: 2, ExtractMinimum: 3}
	for range 20 {
		err := allBad.Validate()
		require.ErrorIs(t, err, similarity.ErrThresholdRange)
		assert.Contains(t, err.Error(), "minimum=-1")
	}
}
