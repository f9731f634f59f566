package classify

import (
	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/matcher"
	"github.com/Sumatoshi-tech/refmine/pkg/refactoring"
)

// evidence returns the code ranges of both sides of rel, tagged with their role.
func evidence(res *matcher.Result, rel *refactoring.Relationship) ([]refactoring.CodeRange, []refactoring.CodeRange) {
	b, a := rel.Before, rel.After
	noun := nounOf(b)

	switch rel.Type {
	case refactoring.Same:
		return one(b, noun+" declaration"), one(a, noun+" declaration")
	case refactoring.Rename:
		return one(b, "original "+noun+" declaration"), one(a, "renamed "+noun+" declaration")
	case refactoring.Move:
		return one(b, "original "+noun+" declaration"), one(a, "moved "+noun+" declaration")
	case refactoring.MoveRename:
		return one(b, "original "+noun+" declaration"), one(a, "moved and renamed "+noun+" declaration")
	case refactoring.PullUp:
		return one(b, "original "+noun+" declaration"), one(a, "pulled up "+noun+" declaration")
	case refactoring.PushDown:
		return one(b, "original "+noun+" declaration"), one(a, "pushed down "+noun+" declaration")
	case refactoring.ChangeSignature:
		return one(b, "original method declaration"), one(a, "method declaration with changed signature")
	case refactoring.Extract, refactoring.ExtractMove:
		right := one(a, "extracted method declaration")
		if after, ok := res.CounterpartOf(b); ok {
			right = append(right, refactoring.RangeOf(after, "source method declaration after extraction"))
		}

		return one(b, "source method declaration before extraction"), right
	case refactoring.Inline:
		left := one(b, "inlined method declaration")
		if before, ok := res.OriginOf(a); ok {
			left = append(left, refactoring.RangeOf(before, "target method declaration before inline"))
		}

		return left, one(a, "target method declaration after inline")
	case refactoring.ExtractSuper:
		right := one(a, "extracted super type declaration")
		if after, ok := res.CounterpartOf(b); ok {
			right = append(right, refactoring.RangeOf(after, "sub-type declaration after extraction"))
		}

		return one(b, "original sub-type declaration"), right
	default:
		return nil, nil
	}
}

func one(n *cst.Node, role string) []refactoring.CodeRange {
	return []refactoring.CodeRange{refactoring.RangeOf(n, role)}
}

func nounOf(n *cst.Node) string {
	switch {
	case n.Kind().IsType():
		return "type"
	case n.Kind() == cst.KindAttribute:
		return "attribute"
	default:
		return "method"
	}
}
