package cst

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/refmine/pkg/multiset"
)

// Builder errors.
var (
	ErrDuplicateQualifiedName = errors.New("duplicate qualified name")
	ErrInvalidKind            = errors.New("invalid node kind")
	ErrEmptyName              = errors.New("empty declaration name")
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// Lenient makes Build rename clashing qualified names with a "#n" suffix
// instead of failing. Front ends use it for sources where the same name can
// be declared twice (build-tag variants, broken code).
func Lenient() BuilderOption {
	return func(b *Builder) {
		b.lenient = true
	}
}

type attachment struct {
	owner string
	spec  *Spec
}

// Builder assembles a Snapshot from Spec trees.
type Builder struct {
	roots       []*Spec
	attachments []attachment
	lenient     bool
	renamed     []string
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Add queues a top-level declaration tree. A spec naming an Owner is
// queued as with AddTo.
func (b *Builder) Add(spec *Spec) *Builder {
	switch {
	case spec == nil:
	case spec.Owner != "":
		b.AddTo(spec.Owner, spec)
	default:
		b.roots = append(b.roots, spec)
	}

	return b
}

// AddTo queues a declaration owned by a type that may be declared in another
// file, identified by the owner's qualified name. When the owner is not part of
// the snapshot the declaration becomes top-level under that name.
func (b *Builder) AddTo(owner string, spec *Spec) *Builder {
	if spec != nil {
		b.attachments = append(b.attachments, attachment{owner: owner, spec: spec})
	}

	return b
}

// Renamed returns the qualified names that Build disambiguated in lenient mode.
func (b *Builder) Renamed() []string {
	return b.renamed
}

// Build creates the snapshot. Nodes are numbered in pre-order.
func (b *Builder) Build() (*Snapshot, error) {
	s := &Snapshot{
		byName: make(map[string]*Node),
		byKind: make(map[Kind][]*Node),
	}

	b.renamed = nil

	for _, spec := range b.roots {
		node, err := b.create(s, spec, nil, "")
		if err != nil {
			return nil, err
		}

		s.roots = append(s.roots, node)
	}

	for _, a := range b.attachments {
		owner, ok := s.byName[a.owner]
		if ok && owner.kind.IsType() {
			node, err := b.create(s, a.spec, owner, "")
			if err != nil {
				return nil, err
			}

			owner.children = append(owner.children, node)

			continue
		}

		node, err := b.create(s, a.spec, nil, a.owner)
		if err != nil {
			return nil, err
		}

		s.roots = append(s.roots, node)
	}

	s.index()

	return s, nil
}

func (b *Builder) create(s *Snapshot, spec *Spec, parent *Node, prefix string) (*Node, error) {
	if !spec.Kind.IsValid() {
		return nil, fmt.Errorf("%w: %d for %q", ErrInvalidKind, uint8(spec.Kind), spec.Name)
	}

	if spec.Name == "" {
		return nil, fmt.Errorf("%w: %s in %s", ErrEmptyName, spec.Kind, spec.Location.File)
	}

	n := &Node{
		kind:        spec.Kind,
		name:        spec.Name,
		namespace:   spec.Namespace,
		location:    spec.Location,
		stereotypes: ParseStereotypes(spec.Stereotypes),
		params:      append([]Parameter(nil), spec.Parameters...),
		returnType:  spec.ReturnType,
		superTypes:  append([]string(nil), spec.SuperTypes...),
		calls:       append([]string(nil), spec.Calls...),
		tokens:      append([]string(nil), spec.Tokens...),
		bag:         multiset.Of(spec.Tokens...),
		parent:      parent,
		snapshot:    s,
	}

	if parent != nil && n.namespace == "" {
		n.namespace = parent.namespace
	}

	n.qname = qualify(n, parent, prefix)

	if _, dup := s.byName[n.qname]; dup {
		if !b.lenient {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateQualifiedName, n.qname)
		}

		base := n.qname
		for i := 2; ; i++ {
			candidate := base + "#" + strconv.Itoa(i)
			if _, taken := s.byName[candidate]; !taken {
				n.qname = candidate

				break
			}
		}

		b.renamed = append(b.renamed, base)
	}

	s.byName[n.qname] = n

	for _, child := range spec.Children {
		c, err := b.create(s, child, n, "")
		if err != nil {
			return nil, err
		}

		n.children = append(n.children, c)
	}

	return n, nil
}

func qualify(n *Node, parent *Node, prefix string) string {
	local := localName(n.kind, n.name, n.params)

	switch {
	case parent != nil:
		return parent.qname + "." + local
	case prefix != "":
		return prefix + "." + local
	case n.namespace != "":
		return n.namespace + "." + local
	default:
		return local
	}
}
