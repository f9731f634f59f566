// Package refactoring defines classified relationships between declarations
// and the description grammar used to render and parse them.
package refactoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
)

// ErrUnknownRelationshipType is returned when a relationship type name is not recognized.
var ErrUnknownRelationshipType = errors.New("unknown relationship type")

// RelationshipType is the coarse classification of a correspondence.
type RelationshipType uint8

// Relationship types.
const (
	Same RelationshipType = iota + 1
	Rename
	Move
	MoveRename
	PullUp
	PushDown
	Extract
	ExtractMove
	Inline
	ExtractSuper
	ChangeSignature
)

var relationshipNames = []string{
	Same:            "SAME",
	Rename:          "RENAME",
	Move:            "MOVE",
	MoveRename:      "MOVE_RENAME",
	PullUp:          "PULL_UP",
	PushDown:        "PUSH_DOWN",
	Extract:         "EXTRACT",
	ExtractMove:     "EXTRACT_MOVE",
	Inline:          "INLINE",
	ExtractSuper:    "EXTRACT_SUPER",
	ChangeSignature: "CHANGE_SIGNATURE",
}

// RelationshipTypes lists every relationship type.
func RelationshipTypes() []RelationshipType {
	out := make([]RelationshipType, 0, len(relationshipNames)-1)
	for t := Same; int(t) < len(relationshipNames); t++ {
		out = append(out, t)
	}

	return out
}

func (t RelationshipType) String() string {
	if t > 0 && int(t) < len(relationshipNames) {
		return relationshipNames[t]
	}

	return fmt.Sprintf("RelationshipType(%d)", uint8(t))
}

// ParseRelationshipType converts a name such as MOVE_RENAME back to its type.
func ParseRelationshipType(name string) (RelationshipType, error) {
	for i, n := range relationshipNames {
		if i > 0 && strings.EqualFold(n, name) {
			return RelationshipType(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownRelationshipType, name)
}

// MarshalText implements encoding.TextMarshaler.
func (t RelationshipType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *RelationshipType) UnmarshalText(text []byte) error {
	parsed, err := ParseRelationshipType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// IsRefactoring reports whether the type describes a change (everything but SAME).
func (t RelationshipType) IsRefactoring() bool {
	return t != Same
}

// CodeRange is a tagged source span supporting a relationship side.
type CodeRange struct {
	File        string `json:"file"                   yaml:"file"`
	StartLine   int    `json:"start_line"             yaml:"start_line"`
	StartColumn int    `json:"start_column"           yaml:"start_column"`
	EndLine     int    `json:"end_line"               yaml:"end_line"`
	EndColumn   int    `json:"end_column"             yaml:"end_column"`
	Description string `json:"description"            yaml:"description"`
	CodeElement string `json:"code_element,omitempty" yaml:"code_element,omitempty"`
}

// RangeOf builds a code range covering a declaration.
func RangeOf(n *cst.Node, role string) CodeRange {
	loc := n.Location()

	element := n.QualifiedName()
	if !n.Kind().IsType() {
		element = n.Signature()
	}

	return CodeRange{
		File:        loc.File,
		StartLine:   loc.StartLine,
		StartColumn: loc.StartColumn,
		EndLine:     loc.EndLine,
		EndColumn:   loc.EndColumn,
		Description: role,
		CodeElement: element,
	}
}

// Relationship is a classified correspondence between declarations.
type Relationship struct {
	Type   RelationshipType
	Before *cst.Node
	After  *cst.Node
	// Similarity is meaningful only when Scored is true.
	Similarity float64
	Scored     bool

	// Refactoring is the grammar entry describing the relationship; nil for SAME.
	Refactoring *Refactoring
	Description string

	LeftRanges  []CodeRange
	RightRanges []CodeRange
}

// Key identifies a relationship: two relationships with equal keys are duplicates.
type Key struct {
	Type   RelationshipType
	Before int
	After  int
}

// Key returns the identity of the relationship. Missing sides use -1.
func (r *Relationship) Key() Key {
	k := Key{Type: r.Type, Before: -1, After: -1}
	if r.Before != nil {
		k.Before = r.Before.ID()
	}

	if r.After != nil {
		k.After = r.After.ID()
	}

	return k
}

// DisplayName returns the grammar display name, or the relationship type name.
func (r *Relationship) DisplayName() string {
	if r.Refactoring != nil {
		return r.Refactoring.DisplayName
	}

	return r.Type.String()
}

func (r *Relationship) String() string {
	var before, after string
	if r.Before != nil {
		before = r.Before.QualifiedName()
	}

	if r.After != nil {
		after = r.After.QualifiedName()
	}

	return fmt.Sprintf("%s(%s -> %s)", r.Type, before, after)
}

// Set is an insertion-ordered set of relationships keyed by Key.
type Set struct {
	items []Relationship
	index map[Key]int
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{index: make(map[Key]int)}
}

// Add inserts r unless an equal relationship is present. It reports whether r was added.
func (s *Set) Add(r Relationship) bool {
	k := r.Key()
	if _, ok := s.index[k]; ok {
		return false
	}

	s.index[k] = len(s.items)
	s.items = append(s.items, r)

	return true
}

// Contains reports whether a relationship with key k is present.
func (s *Set) Contains(k Key) bool {
	_, ok := s.index[k]

	return ok
}

// Len returns the number of relationships.
func (s *Set) Len() int {
	return len(s.items)
}

// Slice returns the relationships in insertion order.
func (s *Set) Slice() []Relationship {
	return s.items
}
