package matcher

import (
	"github.com/Sumatoshi-tech/refmine/pkg/cst"
)

// Candidates returns the unmatched after declarations worth scoring against
// before, in after pre-order. Every candidate has the same kind as before.
//
//   - types: every unmatched type of the same kind;
//   - method-like: same simple name, same container, or camel-case prefix
//     compatible names;
//   - attributes: same simple name or same container.
func (st *state) candidates(before *cst.Node) []*cst.Node {
	var out []*cst.Node

	for _, after := range st.result.After.OfKind(before.Kind()) {
		if st.afterTaken(after) {
			continue
		}

		if compatible(st.result, before, after) {
			out = append(out, after)
		}
	}

	return out
}

func compatible(r *Result, before, after *cst.Node) bool {
	kind := before.Kind()

	switch {
	case kind.IsType():
		return true
	case kind.IsMethodLike():
		return before.Name() == after.Name() ||
			sameContainer(r, before, after) ||
			cst.NamePrefixCompatible(before.Name(), after.Name())
	default:
		return before.Name() == after.Name() || sameContainer(r, before, after)
	}
}

func sameContainer(r *Result, before, after *cst.Node) bool {
	return !r.ContainerChanged(before, after)
}
