// Package classify turns matcher correspondences into typed refactoring
// relationships with descriptions and code range evidence.
package classify

import (
	"log/slog"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/matcher"
	"github.com/Sumatoshi-tech/refmine/pkg/refactoring"
)

// Classifier applies the decision table to correspondences.
// It is immutable and safe for concurrent use.
type Classifier struct {
	registry *refactoring.Registry
	logger   *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRegistry sets the description grammar.
func WithRegistry(g *refactoring.Registry) Option {
	return func(c *Classifier) {
		if g != nil {
			c.registry = g
		}
	}
}

// WithLogger sets the logger used for classification gaps.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a classifier using the built-in grammar.
func New(opts ...Option) *Classifier {
	c := &Classifier{registry: refactoring.Default()}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Classifier) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}

	return c.logger
}

// Outcome is the classification of one match result.
type Outcome struct {
	Relationships []refactoring.Relationship
	// Gaps counts correspondences that fit no row of the decision table.
	Gaps int
	// Suppressed holds the abstract-signature relationships dropped by the
	// guard.
	Suppressed []refactoring.Relationship
}

// Classify converts every correspondence of res into relationships, in
// correspondence order, without duplicates.
func (c *Classifier) Classify(res *matcher.Result) Outcome {
	var out Outcome

	set := refactoring.NewSet()

	for _, corr := range res.Correspondences {
		t, ok := c.decide(res, corr)
		if !ok {
			out.Gaps++

			c.log().Warn("classification gap",
				"correspondence", corr.Kind.String(),
				"before", describeNode(corr.Before),
				"after", describeNode(corr.After),
			)

			continue
		}

		rel := refactoring.Relationship{
			Type:       t,
			Before:     corr.Before,
			After:      corr.After,
			Similarity: corr.Score,
			Scored:     corr.Scored,
		}

		err := c.registry.Describe(&rel)
		if err != nil {
			out.Gaps++

			c.log().Warn("classification gap", "relationship", rel.String(), "error", err)

			continue
		}

		rel.LeftRanges, rel.RightRanges = evidence(res, &rel)

		set.Add(rel)
	}

	out.Relationships, out.Suppressed = suppressAbstract(set.Slice())

	return out
}

// decide implements the decision table.
func (c *Classifier) decide(res *matcher.Result, corr matcher.Correspondence) (refactoring.RelationshipType, bool) {
	b, a := corr.Before, corr.After
	if b == nil || a == nil {
		return 0, false
	}

	switch corr.Kind {
	case matcher.Identity:
		if b.Kind() != a.Kind() {
			return 0, false
		}

		return refactoring.Same, true
	case matcher.Direct, matcher.Hierarchy:
		if b.Kind() != a.Kind() {
			return 0, false
		}

		return c.decideOneToOne(res, b, a), true
	case matcher.Extract:
		if !b.Kind().IsMethodLike() || !a.Kind().IsMethodLike() {
			return 0, false
		}

		if res.ContainerChanged(b, a) {
			return refactoring.ExtractMove, true
		}

		return refactoring.Extract, true
	case matcher.Inline:
		if !b.Kind().IsMethodLike() || !a.Kind().IsMethodLike() {
			return 0, false
		}

		return refactoring.Inline, true
	case matcher.ExtractSuper:
		if !b.Kind().IsType() || !a.Kind().IsType() {
			return 0, false
		}

		return refactoring.ExtractSuper, true
	default:
		return 0, false
	}
}

func (c *Classifier) decideOneToOne(res *matcher.Result, b, a *cst.Node) refactoring.RelationshipType {
	renamed := isRenamed(b, a)
	moved := res.ContainerChanged(b, a)

	switch {
	case renamed && moved:
		return refactoring.MoveRename
	case renamed:
		return refactoring.Rename
	case moved && b.Kind().IsType():
		return refactoring.Move
	case moved:
		return hierarchyMove(res, b, a)
	case b.Kind().IsMethodLike() && !b.SameParameters(a):
		return refactoring.ChangeSignature
	default:
		return refactoring.Same
	}
}

// isRenamed compares simple names. A constructor named after its type
// follows the type and is never renamed on its own.
func isRenamed(b, a *cst.Node) bool {
	if b.Kind() == cst.KindConstructor && namedAfterContainer(b) && namedAfterContainer(a) {
		return false
	}

	return b.Name() != a.Name()
}

func namedAfterContainer(n *cst.Node) bool {
	c := n.Container()

	return c != nil && c.Name() == n.Name()
}

// hierarchyMove refines a member move along the inheritance axis of the
// after snapshot.
func hierarchyMove(res *matcher.Result, b, a *cst.Node) refactoring.RelationshipType {
	from := res.AfterType(b.Container())
	to := a.Container()

	if from == nil || to == nil {
		return refactoring.Move
	}

	switch {
	case res.After.IsSubtypeOf(from, to):
		return refactoring.PullUp
	case res.After.IsSubtypeOf(to, from):
		return refactoring.PushDown
	default:
		return refactoring.Move
	}
}

// suppressAbstract drops renames of abstract methods that have no concrete
// counterpart with the same before and after names in the batch.
func suppressAbstract(rels []refactoring.Relationship) (kept, dropped []refactoring.Relationship) {
	type names struct{ before, after string }

	concrete := make(map[names]bool)

	for _, r := range rels {
		if r.Before != nil && r.After != nil && r.Before.Kind().IsMethodLike() && !r.Before.IsAbstract() {
			concrete[names{r.Before.Name(), r.After.Name()}] = true
		}
	}

	kept = make([]refactoring.Relationship, 0, len(rels))

	for _, r := range rels {
		guarded := (r.Type == refactoring.Rename || r.Type == refactoring.MoveRename) &&
			r.Before.Kind().IsMethodLike() && r.Before.IsAbstract()

		if guarded && !concrete[names{r.Before.Name(), r.After.Name()}] {
			dropped = append(dropped, r)

			continue
		}

		kept = append(kept, r)
	}

	return kept, dropped
}

func describeNode(n *cst.Node) string {
	if n == nil {
		return ""
	}

	return n.String()
}
