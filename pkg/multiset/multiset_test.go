package multiset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/refmine/pkg/multiset"
)

func TestAddAndCount(t *testing.T) {
	t.Parallel()

	m := multiset.New[string]()
	m.Add("a", 2)
	m.Add("b", 1)
	m.Add("c", 0)
	m.Add("d", -3)

	assert.Equal(t, 2, m.Count("a"))
	assert.Equal(t, 1, m.Count("b"))
	assert.Equal(t, 0, m.Count("c"))
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 2, m.Distinct())
	assert.Equal(t, []string{"a", "b"}, m.Keys())
}

func TestMinusNeverNegative(t *testing.T) {
	t.Parallel()

	a := multiset.Of("x", "x", "y")
	b := multiset.Of("x", "y", "y", "z")

	diff := a.Minus(b)

	assert.Equal(t, 1, diff.Count("x"))
	assert.Equal(t, 0, diff.Count("y"))
	assert.Equal(t, 0, diff.Count("z"))
	assert.Equal(t, 1, diff.Len())
}

func TestPlusAddsCardinalities(t *testing.T) {
	t.Parallel()

	sum := multiset.Of("x", "y").Plus(multiset.Of("x", "z"))

	assert.Equal(t, 2, sum.Count("x"))
	assert.Equal(t, 1, sum.Count("y"))
	assert.Equal(t, 1, sum.Count("z"))
	assert.Equal(t, 4, sum.Len())
}

func TestMinusElementsRemovesAllOccurrences(t *testing.T) {
	t.Parallel()

	m := multiset.Of("call", "call", "(", ")", ";")
	out := m.MinusElements("call", "missing")

	assert.Equal(t, 0, out.Count("call"))
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, 5, m.Len(), "receiver must not change")
}

func TestIntersectAndUnion(t *testing.T) {
	t.Parallel()

	a := multiset.Of("a", "a", "b", "c")
	b := multiset.Of("a", "b", "b", "d")

	inter := a.Intersect(b)
	union := a.Union(b)

	assert.Equal(t, 2, inter.Len())
	assert.Equal(t, 1, inter.Count("a"))
	assert.Equal(t, 1, inter.Count("b"))
	assert.Equal(t, 6, union.Len())
	assert.Equal(t, 2, union.Count("a"))
	assert.Equal(t, 2, union.Count("b"))

	assert.Equal(t, inter.Len(), a.IntersectionSize(b))
	assert.Equal(t, union.Len(), a.UnionSize(b))
}

func TestEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, multiset.Of("a", "b", "a").Equal(multiset.Of("a", "a", "b")))
	assert.False(t, multiset.Of("a", "b").Equal(multiset.Of("a", "a")))
	assert.True(t, multiset.New[int]().IsEmpty())
}
