package matcher

import (
	"fmt"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
)

// Kind tells which matcher pass accepted a correspondence.
type Kind uint8

// Correspondence kinds.
const (
	// Identity pairs share qualified name, kind and container.
	Identity Kind = iota + 1
	// Direct pairs were accepted by the one-to-one similarity pass.
	Direct
	// Hierarchy pairs are extra push-down targets or pull-up sources of a direct pair.
	Hierarchy
	// Extract pairs a source declaration with one fragment extracted from it.
	Extract
	// Inline pairs an inlined declaration with the declaration that absorbed it.
	Inline
	// ExtractSuper pairs a type with a newly added super type.
	ExtractSuper
)

var kindNames = map[Kind]string{
	Identity:     "identity",
	Direct:       "direct",
	Hierarchy:    "hierarchy",
	Extract:      "extract",
	Inline:       "inline",
	ExtractSuper: "extract-super",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// OneToOne reports whether the kind pairs a declaration with its single counterpart.
func (k Kind) OneToOne() bool {
	return k == Identity || k == Direct
}

// Correspondence is one accepted pairing of a before and an after declaration.
type Correspondence struct {
	Kind   Kind
	Before *cst.Node
	After  *cst.Node
	// Score is the similarity or coverage that justified the pairing.
	Score float64
	// Scored is false for identity pairs, which are accepted without scoring.
	Scored bool
}

// Result is the outcome of matching two snapshots.
type Result struct {
	Before *cst.Snapshot
	After  *cst.Snapshot

	// Correspondences in emission order.
	Correspondences []Correspondence
	// Deletions are before declarations without any correspondence.
	Deletions []*cst.Node
	// Additions are after declarations without any correspondence.
	Additions []*cst.Node

	forward  map[*cst.Node]*cst.Node
	backward map[*cst.Node]*cst.Node
}

// CounterpartOf returns the after declaration matched one-to-one with before.
func (r *Result) CounterpartOf(before *cst.Node) (*cst.Node, bool) {
	n, ok := r.forward[before]

	return n, ok
}

// OriginOf returns the before declaration matched one-to-one with after.
func (r *Result) OriginOf(after *cst.Node) (*cst.Node, bool) {
	n, ok := r.backward[after]

	return n, ok
}

// AfterType maps a before type to its after version: the one-to-one
// counterpart when matched, otherwise the after type with the same qualified name.
func (r *Result) AfterType(before *cst.Node) *cst.Node {
	if before == nil {
		return nil
	}

	if n, ok := r.forward[before]; ok {
		return n
	}

	if n, ok := r.After.Lookup(before.QualifiedName()); ok && n.Kind().IsType() {
		return n
	}

	return nil
}

// BeforeType maps an after type back to its before version.
func (r *Result) BeforeType(after *cst.Node) *cst.Node {
	if after == nil {
		return nil
	}

	if n, ok := r.backward[after]; ok {
		return n
	}

	if n, ok := r.Before.Lookup(after.QualifiedName()); ok && n.Kind().IsType() {
		return n
	}

	return nil
}

// ContainerChanged reports whether a matched pair lives in different
// containers, comparing through the container correspondence.
func (r *Result) ContainerChanged(before, after *cst.Node) bool {
	bc, ac := before.Container(), after.Container()

	switch {
	case bc == nil && ac == nil:
		return before.Namespace() != after.Namespace()
	case bc == nil || ac == nil:
		return true
	}

	if cp, ok := r.forward[bc]; ok {
		return cp != ac
	}

	return bc.QualifiedName() != ac.QualifiedName()
}
