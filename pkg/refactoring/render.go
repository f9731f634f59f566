package refactoring

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
)

// Render errors.
var (
	ErrNoTemplate   = errors.New("no description template for relationship")
	ErrMissingSides = errors.New("relationship lacks a before or after declaration")
)

type subject uint8

const (
	subjectMethod subject = iota
	subjectAttribute
	subjectType
)

type renderKey struct {
	t RelationshipType
	s subject
}

// templates selects the grammar entry for a relationship type and declaration kind.
var templates = map[renderKey]string{
	{Rename, subjectMethod}:          RenameMethodID,
	{Move, subjectMethod}:            MoveOperationID,
	{MoveRename, subjectMethod}:      MoveAndRenameOperationID,
	{PullUp, subjectMethod}:          PullUpOperationID,
	{PushDown, subjectMethod}:        PushDownOperationID,
	{Extract, subjectMethod}:         ExtractOperationID,
	{ExtractMove, subjectMethod}:     ExtractAndMoveOperationID,
	{Inline, subjectMethod}:          InlineOperationID,
	{ChangeSignature, subjectMethod}: ChangeMethodSignatureID,
	{Rename, subjectAttribute}:       RenameAttributeID,
	{Move, subjectAttribute}:         MoveAttributeID,
	{MoveRename, subjectAttribute}:   MoveRenameAttributeID,
	{PullUp, subjectAttribute}:       PullUpAttributeID,
	{PushDown, subjectAttribute}:     PushDownAttributeID,
	{Rename, subjectType}:            RenameClassID,
	{Move, subjectType}:              MoveClassID,
	{MoveRename, subjectType}:        MoveRenameClassID,
}

func subjectOf(n *cst.Node) subject {
	switch {
	case n.Kind().IsType():
		return subjectType
	case n.Kind() == cst.KindAttribute:
		return subjectAttribute
	default:
		return subjectMethod
	}
}

// EntryFor returns the grammar entry describing rel, or nil for SAME.
func (g *Registry) EntryFor(rel *Relationship) (*Refactoring, error) {
	if rel.Type == Same {
		return nil, nil //nolint:nilnil // SAME has no description.
	}

	if rel.Before == nil || rel.After == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingSides, rel.Type)
	}

	id, ok := templates[renderKey{rel.Type, subjectOf(rel.Before)}]

	if rel.Type == ExtractSuper {
		ok = true
		id = ExtractSuperclassID

		if rel.After.Kind() == cst.KindInterface {
			id = ExtractInterfaceID
		}
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s of %s", ErrNoTemplate, rel.Type, rel.Before.Kind())
	}

	entry, ok := g.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s not registered", ErrNoTemplate, id)
	}

	return entry, nil
}

// Render returns the description of rel. SAME renders as the empty string.
func (g *Registry) Render(rel *Relationship) (string, error) {
	entry, err := g.EntryFor(rel)
	if err != nil || entry == nil {
		return "", err
	}

	return entry.Format(arguments(entry.ID, rel.Before, rel.After)...)
}

// Describe sets the Refactoring and Description fields of rel.
func (g *Registry) Describe(rel *Relationship) error {
	entry, err := g.EntryFor(rel)
	if err != nil {
		return err
	}

	rel.Refactoring = entry
	rel.Description = ""

	if entry == nil {
		return nil
	}

	desc, err := entry.Format(arguments(entry.ID, rel.Before, rel.After)...)
	if err != nil {
		return err
	}

	rel.Description = desc

	return nil
}

// arguments lists the template arguments for an entry in template order.
func arguments(id string, b, a *cst.Node) []string {
	switch id {
	case ExtractOperationID:
		return []string{a.Signature(), b.Signature(), b.ContainerName()}
	case ExtractAndMoveOperationID:
		return []string{a.Signature(), b.Signature(), b.ContainerName(), a.ContainerName()}
	case InlineOperationID:
		return []string{b.Signature(), a.Signature(), a.ContainerName()}
	case RenameMethodID, ChangeMethodSignatureID:
		return []string{b.Signature(), a.Signature(), a.ContainerName()}
	case MoveOperationID, MoveAndRenameOperationID, PullUpOperationID, PushDownOperationID:
		return []string{b.Signature(), b.ContainerName(), a.Signature(), a.ContainerName()}
	case RenameClassID, MoveClassID, MoveRenameClassID:
		return []string{b.QualifiedName(), a.QualifiedName()}
	case ExtractSuperclassID, ExtractInterfaceID:
		return []string{a.QualifiedName(), b.QualifiedName()}
	case RenameAttributeID:
		return []string{attribute(b), attribute(a), a.ContainerName()}
	case MoveRenameAttributeID:
		return []string{attribute(b), attribute(a), b.ContainerName(), a.ContainerName()}
	case MoveAttributeID, PullUpAttributeID, PushDownAttributeID:
		return []string{attribute(b), b.ContainerName(), attribute(a), a.ContainerName()}
	default:
		return nil
	}
}

func attribute(n *cst.Node) string {
	if n.ReturnType() == "" {
		return n.Name()
	}

	return n.Name() + " : " + n.ReturnType()
}
