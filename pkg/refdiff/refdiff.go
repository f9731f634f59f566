// Package refdiff is the entry point of the diff engine: it matches two
// snapshots and classifies the correspondences into refactoring relationships.
package refdiff

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/Sumatoshi-tech/refmine/pkg/classify"
	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/matcher"
	"github.com/Sumatoshi-tech/refmine/pkg/refactoring"
	"github.com/Sumatoshi-tech/refmine/pkg/similarity"
)

// Result is the outcome of comparing two snapshots.
type Result struct {
	Before *cst.Snapshot
	After  *cst.Snapshot

	// Relationships in deterministic emission order, SAME included.
	Relationships []refactoring.Relationship
	// Additions and Deletions are declarations without any reported
	// relationship, in pre-order.
	Additions []*cst.Node
	Deletions []*cst.Node

	// Gaps counts correspondences that could not be classified.
	Gaps int
	// Suppressed counts relationships removed by the abstract-signature
	// guard. Their nodes are reported as Deletions and Additions.
	Suppressed int
}

// Refactorings returns every relationship except SAME.
func (r *Result) Refactorings() []refactoring.Relationship {
	out := make([]refactoring.Relationship, 0, len(r.Relationships))

	for _, rel := range r.Relationships {
		if rel.Type.IsRefactoring() {
			out = append(out, rel)
		}
	}

	return out
}

// CountByType returns the number of relationships per type.
func (r *Result) CountByType() map[refactoring.RelationshipType]int {
	out := make(map[refactoring.RelationshipType]int)
	for _, rel := range r.Relationships {
		out[rel.Type]++
	}

	return out
}

// Differ compares snapshots. A Differ is immutable and safe for concurrent use.
type Differ struct {
	matcher    *matcher.Matcher
	classifier *classify.Classifier
}

// Option configures a Differ.
type Option func(*options)

type options struct {
	thresholds similarity.Thresholds
	registry   *refactoring.Registry
	logger     *slog.Logger
}

// WithThresholds sets the similarity acceptance policy.
func WithThresholds(t similarity.Thresholds) Option {
	return func(o *options) {
		o.thresholds = t
	}
}

// WithRegistry sets the description grammar.
func WithRegistry(g *refactoring.Registry) Option {
	return func(o *options) {
		o.registry = g
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// NewDiffer creates a differ.
func NewDiffer(opts ...Option) *Differ {
	o := options{thresholds: similarity.DefaultThresholds()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Differ{
		matcher: matcher.New(
			matcher.WithThresholds(o.thresholds),
			matcher.WithLogger(o.logger),
		),
		classifier: classify.New(
			classify.WithRegistry(o.registry),
			classify.WithLogger(o.logger),
		),
	}
}

// Compare matches before against after and classifies the result.
// It is a pure computation: the snapshots are only read.
func (d *Differ) Compare(before, after *cst.Snapshot) *Result {
	if before == nil {
		before = cst.Empty()
	}

	if after == nil {
		after = cst.Empty()
	}

	matched := d.matcher.Match(before, after)
	outcome := d.classifier.Classify(matched)

	res := &Result{
		Before:        before,
		After:         after,
		Relationships: outcome.Relationships,
		Additions:     matched.Additions,
		Deletions:     matched.Deletions,
		Gaps:          outcome.Gaps,
		Suppressed:    len(outcome.Suppressed),
	}

	if len(outcome.Suppressed) > 0 {
		res.restoreResidue(outcome.Suppressed)
	}

	return res
}

// restoreResidue returns the nodes of dropped relationships to the residue
// unless another relationship still reports them.
func (r *Result) restoreResidue(dropped []refactoring.Relationship) {
	reported := make(map[*cst.Node]bool, 2*len(r.Relationships))

	for _, rel := range r.Relationships {
		reported[rel.Before] = true
		reported[rel.After] = true
	}

	for _, rel := range dropped {
		if rel.Before != nil && !reported[rel.Before] {
			reported[rel.Before] = true
			r.Deletions = append(r.Deletions, rel.Before)
		}

		if rel.After != nil && !reported[rel.After] {
			reported[rel.After] = true
			r.Additions = append(r.Additions, rel.After)
		}
	}

	byID := func(a, b *cst.Node) int { return cmp.Compare(a.ID(), b.ID()) }
	slices.SortFunc(r.Deletions, byID)
	slices.SortFunc(r.Additions, byID)
}

var defaultDiffer = NewDiffer()

// Compare compares two snapshots with the default thresholds.
func Compare(before, after *cst.Snapshot) *Result {
	return defaultDiffer.Compare(before, after)
}
