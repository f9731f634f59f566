// Package cst holds the structural model compared by the diff engine: an
// immutable forest of declaration nodes (types, methods, constructors and
// attributes) for one code revision.
package cst

import (
	"strings"

	"github.com/Sumatoshi-tech/refmine/pkg/multiset"
)

// Node is one declared program element inside a Snapshot.
// Nodes are created by Builder and are read-only afterwards.
type Node struct {
	id          int
	kind        Kind
	name        string
	qname       string
	namespace   string
	location    Location
	stereotypes Stereotype
	params      []Parameter
	returnType  string
	superTypes  []string
	calls       []string
	tokens      []string
	bag         *multiset.Multiset[string]

	parent   *Node
	children []*Node
	snapshot *Snapshot
}

// ID returns the pre-order position of the node inside its snapshot.
func (n *Node) ID() int { return n.id }

// Kind returns the declaration kind.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the simple name.
func (n *Node) Name() string { return n.name }

// QualifiedName returns the snapshot-unique name.
func (n *Node) QualifiedName() string { return n.qname }

// Namespace returns the declaring namespace (package).
func (n *Node) Namespace() string { return n.namespace }

// Location returns the source span.
func (n *Node) Location() Location { return n.location }

// Stereotypes returns the modifier set.
func (n *Node) Stereotypes() Stereotype { return n.stereotypes }

// Parameters returns the formal parameters. The slice must not be modified.
func (n *Node) Parameters() []Parameter { return n.params }

// ReturnType returns the declared return type of a method, or the attribute type.
func (n *Node) ReturnType() string { return n.returnType }

// SuperTypes returns the names of the direct super types. The slice must not be modified.
func (n *Node) SuperTypes() []string { return n.superTypes }

// Calls returns the simple names of methods invoked from the node body.
func (n *Node) Calls() []string { return n.calls }

// Tokens returns the content token sequence. The slice must not be modified.
func (n *Node) Tokens() []string { return n.tokens }

// Bag returns the token multiset, computed once when the snapshot was built.
// The returned multiset is shared and must not be modified.
func (n *Node) Bag() *multiset.Multiset[string] { return n.bag }

// Parent returns the owning declaration, or nil for top-level nodes.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the owned declarations in source order.
func (n *Node) Children() []*Node { return n.children }

// Snapshot returns the snapshot the node belongs to.
func (n *Node) Snapshot() *Snapshot { return n.snapshot }

// IsAbstract reports whether the node carries the abstract stereotype.
func (n *Node) IsAbstract() bool { return n.stereotypes.Has(Abstract) }

// Container returns the enclosing type, or nil when the node is top-level
// or nested in a non-type declaration.
func (n *Node) Container() *Node {
	for p := n.parent; p != nil; p = p.parent {
		if p.kind.IsType() {
			return p
		}
	}

	return nil
}

// ContainerName returns the qualified name of the enclosing type, or the
// namespace for top-level declarations.
func (n *Node) ContainerName() string {
	if c := n.Container(); c != nil {
		return c.qname
	}

	return n.namespace
}

// Signature returns name(T1, T2) for method-like nodes and the bare name otherwise.
func (n *Node) Signature() string {
	if !n.kind.IsMethodLike() {
		return n.name
	}

	types := make([]string, len(n.params))
	for i, p := range n.params {
		types[i] = p.Type
	}

	return n.name + "(" + strings.Join(types, ", ") + ")"
}

// SameParameters reports whether both nodes declare the same parameter types.
func (n *Node) SameParameters(other *Node) bool {
	if len(n.params) != len(other.params) {
		return false
	}

	for i := range n.params {
		if normalizeType(n.params[i].Type) != normalizeType(other.params[i].Type) {
			return false
		}
	}

	return true
}

// String returns a short human-readable form.
func (n *Node) String() string {
	return n.kind.String() + " " + n.qname
}

// localName is the last segment of the qualified name.
func localName(kind Kind, name string, params []Parameter) string {
	if !kind.IsMethodLike() {
		return name
	}

	types := make([]string, len(params))
	for i, p := range params {
		types[i] = normalizeType(p.Type)
	}

	return name + "(" + strings.Join(types, ",") + ")"
}

// normalizeType drops whitespace and generic arguments so that List<String>
// and List<Integer> overloads do not produce distinct names for the same erasure.
func normalizeType(t string) string {
	t = strings.Join(strings.Fields(t), "")

	var b strings.Builder

	depth := 0

	for _, r := range t {
		switch r {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}

	return b.String()
}
