// Package matcher pairs the declarations of two snapshots.
//
// Matching runs in passes: identity (same qualified name), direct similarity
// (best candidate at or above the minimum threshold, ties to the earliest
// declared candidate), multiplicity resolution (hierarchy fan-out, extract,
// inline, split, merge, extract super type) and residue (additions and
// deletions). The output order is a function of snapshot node order only.
package matcher

import (
	"log/slog"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/similarity"
)

// Matcher computes correspondences between snapshots. A Matcher is immutable
// and may be shared by concurrent diffs.
type Matcher struct {
	thresholds similarity.Thresholds
	logger     *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThresholds sets the acceptance policy.
func WithThresholds(t similarity.Thresholds) Option {
	return func(m *Matcher) {
		m.thresholds = t
	}
}

// WithLogger sets the logger used for pass summaries.
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a matcher with the default thresholds.
func New(opts ...Option) *Matcher {
	m := &Matcher{thresholds: similarity.DefaultThresholds()}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Matcher) log() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}

	return m.logger
}

// Thresholds returns the acceptance policy.
func (m *Matcher) Thresholds() similarity.Thresholds {
	return m.thresholds
}

// state is the working set of one Match call.
type state struct {
	m      *Matcher
	result *Result
	scorer *similarity.Scorer

	// consumed holds declarations absorbed by multiplicity correspondences.
	consumedBefore map[*cst.Node]bool
	consumedAfter  map[*cst.Node]bool
}

// Match pairs the declarations of before and after.
func (m *Matcher) Match(before, after *cst.Snapshot) *Result {
	st := &state{
		m: m,
		result: &Result{
			Before:   before,
			After:    after,
			forward:  make(map[*cst.Node]*cst.Node),
			backward: make(map[*cst.Node]*cst.Node),
		},
		scorer:         similarity.NewScorer(),
		consumedBefore: make(map[*cst.Node]bool),
		consumedAfter:  make(map[*cst.Node]bool),
	}

	st.identityPass()
	identities := len(st.result.Correspondences)

	st.directPass()
	direct := len(st.result.Correspondences) - identities

	st.hierarchyPass()
	st.extractByCallersPass()
	st.inlineByCallersPass()
	st.splitPass()
	st.mergePass()
	st.extractSuperPass()
	st.residue()

	m.log().Debug("snapshots matched",
		"before", before.Len(),
		"after", after.Len(),
		"identity", identities,
		"direct", direct,
		"multiplicity", len(st.result.Correspondences)-identities-direct,
		"additions", len(st.result.Additions),
		"deletions", len(st.result.Deletions),
		"scored_pairs", st.scorer.Evaluations(),
	)

	return st.result
}

func (st *state) beforeTaken(n *cst.Node) bool {
	_, ok := st.result.forward[n]

	return ok || st.consumedBefore[n]
}

func (st *state) afterTaken(n *cst.Node) bool {
	_, ok := st.result.backward[n]

	return ok || st.consumedAfter[n]
}

func (st *state) pair(kind Kind, before, after *cst.Node, score float64, scored bool) {
	st.result.Correspondences = append(st.result.Correspondences, Correspondence{
		Kind:   kind,
		Before: before,
		After:  after,
		Score:  score,
		Scored: scored,
	})

	if kind.OneToOne() {
		st.result.forward[before] = after
		st.result.backward[after] = before
	}
}

// identityPass pairs declarations with equal qualified name, kind and container.
func (st *state) identityPass() {
	for _, b := range st.result.Before.Nodes() {
		a, ok := st.result.After.Lookup(b.QualifiedName())
		if !ok || a.Kind() != b.Kind() || a.ContainerName() != b.ContainerName() {
			continue
		}

		st.pair(Identity, b, a, 0, false)
	}
}

// directPass pairs each remaining before declaration with its best candidate.
// Before declarations are visited in pre-order so that containers are paired
// before their members.
func (st *state) directPass() {
	for _, b := range st.result.Before.Nodes() {
		if st.beforeTaken(b) {
			continue
		}

		best, score := st.best(b, st.candidates(b))
		if best == nil || !st.m.thresholds.Accepts(score) {
			continue
		}

		st.pair(Direct, b, best, score, true)
	}
}

// best returns the highest scoring candidate; candidates arrive in
// declaration order so the earliest wins ties.
func (st *state) best(b *cst.Node, candidates []*cst.Node) (*cst.Node, float64) {
	var (
		best      *cst.Node
		bestScore float64
	)

	for _, c := range candidates {
		score := st.scorer.Score(b, c)
		if best == nil || score > bestScore {
			best, bestScore = c, score
		}
	}

	return best, bestScore
}

// residue records every declaration left without a correspondence.
func (st *state) residue() {
	for _, b := range st.result.Before.Nodes() {
		if !st.beforeTaken(b) {
			st.result.Deletions = append(st.result.Deletions, b)
		}
	}

	for _, a := range st.result.After.Nodes() {
		if !st.afterTaken(a) {
			st.result.Additions = append(st.result.Additions, a)
		}
	}
}
