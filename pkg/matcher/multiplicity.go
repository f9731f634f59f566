package matcher

import (
	"slices"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/multiset"
	"github.com/Sumatoshi-tech/refmine/pkg/similarity"
)

// minRun is the smallest number of fragments a split or merge involves.
const minRun = 2

// hierarchyPass adds the siblings of a push down or pull up: after a direct
// pair moved a member down to one subtype, same-signature members added to
// other subtypes of the same origin are further push-down targets, and
// symmetrically for pull ups.
func (st *state) hierarchyPass() {
	r := st.result
	direct := slices.Clone(r.Correspondences)

	for _, c := range direct {
		if c.Kind != Direct || c.Before.Kind().IsType() {
			continue
		}

		from := r.AfterType(c.Before.Container())
		to := c.After.Container()

		if from == nil || to == nil {
			continue
		}

		switch {
		case r.After.IsSubtypeOf(to, from):
			st.fanOutPushDown(c.Before, c.After, from)
		case r.After.IsSubtypeOf(from, to):
			st.fanInPullUp(c.Before, c.After, to)
		}
	}
}

func (st *state) fanOutPushDown(before, target, origin *cst.Node) {
	r := st.result

	for _, a := range r.After.OfKind(before.Kind()) {
		if a == target || st.afterTaken(a) || !sameSignature(a, target) {
			continue
		}

		c := a.Container()
		if c == nil || !r.After.IsSubtypeOf(c, origin) {
			continue
		}

		if score := st.scorer.Score(before, a); st.m.thresholds.AcceptsSecondary(score) {
			st.consumedAfter[a] = true
			st.pair(Hierarchy, before, a, score, true)
		}
	}
}

func (st *state) fanInPullUp(source, after, destination *cst.Node) {
	r := st.result

	for _, b := range r.Before.OfKind(source.Kind()) {
		if b == source || st.beforeTaken(b) || !sameSignature(b, source) {
			continue
		}

		c := r.AfterType(b.Container())
		if c == nil || !r.After.IsSubtypeOf(c, destination) {
			continue
		}

		if score := st.scorer.Score(b, after); st.m.thresholds.AcceptsSecondary(score) {
			st.consumedBefore[b] = true
			st.pair(Hierarchy, b, after, score, true)
		}
	}
}

func sameSignature(a, b *cst.Node) bool {
	return a.Name() == b.Name() && a.SameParameters(b)
}

// contribution is one source (or target) taking part in an extract or inline.
type contribution struct {
	node    *cst.Node
	overlap int
}

// extractByCallersPass resolves added methods invoked from matched methods:
// the content removed from the callers (before minus after) must cover the
// added method body.
func (st *state) extractByCallersPass() {
	r := st.result

	for _, x := range r.After.Nodes() {
		if !x.Kind().IsMethodLike() || st.afterTaken(x) {
			continue
		}

		part := body(x)
		if part.IsEmpty() {
			continue
		}

		var (
			sources  []contribution
			combined = multiset.New[string]()
		)

		for _, c := range r.Correspondences {
			if !c.Kind.OneToOne() || !c.After.Kind().IsMethodLike() || !invokes(c.After, x) {
				continue
			}

			removed := c.Before.Bag().Minus(c.After.Bag())
			combined = combined.Plus(removed)

			if overlap := part.IntersectionSize(removed); overlap > 0 {
				sources = append(sources, contribution{node: c.Before, overlap: overlap})
			}
		}

		for _, src := range st.accepted(part, combined, sources) {
			st.consumedAfter[x] = true
			st.pair(Extract, src.node, x, share(src.overlap, part), true)
		}
	}
}

// inlineByCallersPass resolves removed methods that were invoked from matched
// methods: the content added to the callers must cover the removed body.
func (st *state) inlineByCallersPass() {
	r := st.result

	for _, y := range r.Before.Nodes() {
		if !y.Kind().IsMethodLike() || st.beforeTaken(y) {
			continue
		}

		part := body(y)
		if part.IsEmpty() {
			continue
		}

		var (
			targets  []contribution
			combined = multiset.New[string]()
		)

		for _, c := range r.Correspondences {
			if !c.Kind.OneToOne() || !c.Before.Kind().IsMethodLike() || !invokes(c.Before, y) {
				continue
			}

			added := c.After.Bag().Minus(c.Before.Bag())
			combined = combined.Plus(added)

			if overlap := part.IntersectionSize(added); overlap > 0 {
				targets = append(targets, contribution{node: c.After, overlap: overlap})
			}
		}

		for _, dst := range st.accepted(part, combined, targets) {
			st.consumedBefore[y] = true
			st.pair(Inline, y, dst.node, share(dst.overlap, part), true)
		}
	}
}

// body is the content an extract or inline relocates. A recursive method's
// own invocations never existed in the callers, so its name is left out.
func body(n *cst.Node) *multiset.Multiset[string] {
	return n.Bag().MinusElements(n.Name())
}

// accepted applies the extract threshold: the combined content must cover
// part, and each participant must hold at least its even share of the threshold.
func (st *state) accepted(part, combined *multiset.Multiset[string], parts []contribution) []contribution {
	if len(parts) == 0 || !st.m.thresholds.AcceptsCoverage(similarity.Coverage(part, combined)) {
		return nil
	}

	minShare := st.m.thresholds.ExtractMinimum / float64(len(parts))

	var out []contribution

	for _, p := range parts {
		if share(p.overlap, part) >= minShare {
			out = append(out, p)
		}
	}

	return out
}

func share(overlap int, of *multiset.Multiset[string]) float64 {
	if of.IsEmpty() {
		return 0
	}

	return float64(overlap) / float64(of.Len())
}

// invokes reports whether caller calls a method named like callee, either
// through the recorded call names or a name token followed by "(".
func invokes(caller, callee *cst.Node) bool {
	if slices.Contains(caller.Calls(), callee.Name()) {
		return true
	}

	tokens := caller.Tokens()
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i] == callee.Name() && tokens[i+1] == "(" {
			return true
		}
	}

	return false
}

// splitPass resolves removed methods whose body was split into a run of
// adjacent added methods of the counterpart container.
func (st *state) splitPass() {
	r := st.result

	for _, y := range r.Before.Nodes() {
		if !y.Kind().IsMethodLike() || st.beforeTaken(y) || y.Bag().IsEmpty() {
			continue
		}

		siblings := st.unmatchedIn(r.After, y.Kind(), st.afterContainerName(y), st.afterTaken)

		run, coverage := st.bestRun(y, siblings)
		for _, f := range run {
			st.consumedAfter[f] = true
			st.consumedBefore[y] = true
			st.pair(Extract, y, f, coverage, true)
		}
	}
}

// mergePass resolves added methods whose body merges a run of adjacent
// removed methods of the counterpart container.
func (st *state) mergePass() {
	r := st.result

	for _, x := range r.After.Nodes() {
		if !x.Kind().IsMethodLike() || st.afterTaken(x) || x.Bag().IsEmpty() {
			continue
		}

		siblings := st.unmatchedIn(r.Before, x.Kind(), st.beforeContainerName(x), st.beforeTaken)

		run, coverage := st.bestRun(x, siblings)
		for _, s := range run {
			st.consumedBefore[s] = true
			st.consumedAfter[x] = true
			st.pair(Inline, s, x, coverage, true)
		}
	}
}

// bestRun finds the run of adjacent fragments, each made mostly of whole's
// content, whose combined content covers whole best. Ties go to the shorter,
// then the earlier run.
func (st *state) bestRun(whole *cst.Node, fragments []*cst.Node) ([]*cst.Node, float64) {
	var (
		best     []*cst.Node
		bestCov  float64
		run      []*cst.Node
		combined *multiset.Multiset[string]
	)

	consider := func() {
		if len(run) < minRun {
			return
		}

		cov := similarity.Coverage(whole.Bag(), combined)
		if !st.m.thresholds.AcceptsCoverage(cov) {
			return
		}

		if best == nil || cov > bestCov || (cov == bestCov && len(run) < len(best)) {
			best, bestCov = slices.Clone(run), cov
		}
	}

	for _, f := range fragments {
		if similarity.Coverage(f.Bag(), whole.Bag()) < st.m.thresholds.ExtractMinimum {
			consider()

			run, combined = nil, nil

			continue
		}

		if combined == nil {
			combined = multiset.New[string]()
		}

		run = append(run, f)
		combined = combined.Plus(f.Bag())
	}

	consider()

	return best, bestCov
}

// unmatchedIn lists the free declarations of kind whose container is named container.
func (st *state) unmatchedIn(s *cst.Snapshot, kind cst.Kind, container string, taken func(*cst.Node) bool) []*cst.Node {
	var out []*cst.Node

	for _, n := range s.OfKind(kind) {
		if !taken(n) && n.ContainerName() == container {
			out = append(out, n)
		}
	}

	return out
}

// afterContainerName names the after container that a before declaration
// would live in if it had not moved.
func (st *state) afterContainerName(b *cst.Node) string {
	if c := b.Container(); c != nil {
		if ac := st.result.AfterType(c); ac != nil {
			return ac.QualifiedName()
		}
	}

	return b.ContainerName()
}

func (st *state) beforeContainerName(a *cst.Node) string {
	if c := a.Container(); c != nil {
		if bc := st.result.BeforeType(c); bc != nil {
			return bc.QualifiedName()
		}
	}

	return a.ContainerName()
}

// extractSuperPass pairs matched types with super types that were added in
// the after snapshot.
func (st *state) extractSuperPass() {
	r := st.result

	for _, c := range slices.Clone(r.Correspondences) {
		if !c.Kind.OneToOne() || !c.After.Kind().IsType() {
			continue
		}

		for _, ref := range c.After.SuperTypes() {
			sup := r.After.ResolveType(ref, c.After)
			if sup == nil || sup == c.After {
				continue
			}

			if _, matched := r.backward[sup]; matched || st.hadSuperType(c.Before, sup) {
				continue
			}

			st.consumedAfter[sup] = true
			st.pair(ExtractSuper, c.Before, sup, 0, false)
		}
	}
}

// hadSuperType reports whether before already extended a type named like sup.
func (st *state) hadSuperType(before, sup *cst.Node) bool {
	for _, ref := range before.SuperTypes() {
		old := st.result.Before.ResolveType(ref, before)
		if old != nil && (old.QualifiedName() == sup.QualifiedName() || old.Name() == sup.Name()) {
			return true
		}
	}

	return false
}
