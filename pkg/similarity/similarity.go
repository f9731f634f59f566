// Package similarity scores content similarity between declarations and holds
// the threshold policy that decides when a score is good enough to match.
package similarity

import (
	"cmp"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/multiset"
)

// Jaccard returns |a ∩ b| / |a ∪ b| over multisets.
// Two empty multisets score 0: there is no evidence either way.
func Jaccard[T cmp.Ordered](a, b *multiset.Multiset[T]) float64 {
	union := a.UnionSize(b)
	if union == 0 {
		return 0
	}

	return float64(a.IntersectionSize(b)) / float64(union)
}

// Coverage returns the share of part that is also present in whole:
// |part ∩ whole| / |part|. An empty part scores 0.
func Coverage[T cmp.Ordered](part, whole *multiset.Multiset[T]) float64 {
	if part.IsEmpty() {
		return 0
	}

	return float64(part.IntersectionSize(whole)) / float64(part.Len())
}

// Similarity returns the content similarity of two declarations.
func Similarity(a, b *cst.Node) float64 {
	return Jaccard(a.Bag(), b.Bag())
}

// Scorer computes similarities and memoizes them per node pair for the
// lifetime of one diff. It is not safe for concurrent use.
type Scorer struct {
	memo map[pair]float64
}

type pair struct {
	before, after int
}

// NewScorer creates a scorer with an empty memo.
func NewScorer() *Scorer {
	return &Scorer{memo: make(map[pair]float64)}
}

// Score returns Similarity(before, after), computing it at most once per pair.
func (s *Scorer) Score(before, after *cst.Node) float64 {
	key := pair{before: before.ID(), after: after.ID()}
	if v, ok := s.memo[key]; ok {
		return v
	}

	v := Similarity(before, after)
	s.memo[key] = v

	return v
}

// Evaluations returns how many distinct pairs were scored.
func (s *Scorer) Evaluations() int {
	return len(s.memo)
}
