package cst

import "slices"

// Snapshot is the declaration forest of one revision with lookup indexes.
type Snapshot struct {
	roots  []*Node
	nodes  []*Node
	byName map[string]*Node
	byKind map[Kind][]*Node
}

// Empty returns a snapshot without declarations.
func Empty() *Snapshot {
	s, _ := NewBuilder().Build() //nolint:errcheck // an empty build cannot fail.

	return s
}

func (s *Snapshot) index() {
	s.nodes = s.nodes[:0]

	var walk func(n *Node)

	walk = func(n *Node) {
		n.id = len(s.nodes)
		s.nodes = append(s.nodes, n)
		s.byKind[n.kind] = append(s.byKind[n.kind], n)

		for _, c := range n.children {
			walk(c)
		}
	}

	for _, r := range s.roots {
		walk(r)
	}
}

// Roots returns the top-level declarations.
func (s *Snapshot) Roots() []*Node { return s.roots }

// Nodes returns every declaration in pre-order.
func (s *Snapshot) Nodes() []*Node { return s.nodes }

// Len returns the number of declarations.
func (s *Snapshot) Len() int { return len(s.nodes) }

// Node returns the declaration with the given ID, or nil.
func (s *Snapshot) Node(id int) *Node {
	if id < 0 || id >= len(s.nodes) {
		return nil
	}

	return s.nodes[id]
}

// Lookup returns the declaration with the given qualified name.
func (s *Snapshot) Lookup(qualifiedName string) (*Node, bool) {
	n, ok := s.byName[qualifiedName]

	return n, ok
}

// OfKind returns the declarations of a kind in pre-order.
func (s *Snapshot) OfKind(kind Kind) []*Node { return s.byKind[kind] }

// Types returns every class, interface and enum in pre-order.
func (s *Snapshot) Types() []*Node {
	out := make([]*Node, 0, len(s.byKind[KindClass])+len(s.byKind[KindInterface])+len(s.byKind[KindEnum]))
	for _, n := range s.nodes {
		if n.kind.IsType() {
			out = append(out, n)
		}
	}

	return out
}

// Contains reports whether n belongs to this snapshot.
func (s *Snapshot) Contains(n *Node) bool {
	return n != nil && n.snapshot == s
}

// ResolveType finds a type by a possibly unqualified reference as written in
// source. Exact qualified names win; otherwise a type in the same namespace as
// from, then the first type in pre-order with a matching simple name.
func (s *Snapshot) ResolveType(ref string, from *Node) *Node {
	ref = normalizeType(ref)
	if n, ok := s.byName[ref]; ok && n.kind.IsType() {
		return n
	}

	simple := ref
	if i := lastDot(ref); i >= 0 {
		simple = ref[i+1:]
	}

	var fallback *Node

	for _, n := range s.nodes {
		if !n.kind.IsType() || n.name != simple {
			continue
		}

		if from != nil && n.namespace == from.namespace {
			return n
		}

		if fallback == nil {
			fallback = n
		}
	}

	return fallback
}

// Ancestors returns every type reachable through super type references from t,
// nearest first. Cycles are ignored.
func (s *Snapshot) Ancestors(t *Node) []*Node {
	var out []*Node

	seen := map[*Node]bool{t: true}
	queue := []*Node{t}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, ref := range cur.superTypes {
			sup := s.ResolveType(ref, cur)
			if sup == nil || seen[sup] {
				continue
			}

			seen[sup] = true
			out = append(out, sup)
			queue = append(queue, sup)
		}
	}

	return out
}

// IsSubtypeOf reports whether sub transitively extends or implements super.
func (s *Snapshot) IsSubtypeOf(sub, super *Node) bool {
	if sub == nil || super == nil || sub == super {
		return false
	}

	return slices.Contains(s.Ancestors(sub), super)
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}

	return -1
}
