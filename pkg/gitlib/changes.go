package gitlib

import (
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// ChangeAction represents the type of change in a diff.
type ChangeAction int

const (
	// Insert indicates a new file was added.
	Insert ChangeAction = iota
	// Delete indicates a file was removed.
	Delete
	// Modify indicates a file was modified in place.
	Modify
	// Rename indicates a file was moved, possibly with edits.
	Rename
)

// String returns the action name.
func (a ChangeAction) String() string {
	switch a {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Modify:
		return "modify"
	case Rename:
		return "rename"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Change represents a single file change between two trees.
type Change struct {
	Action ChangeAction
	From   ChangeEntry
	To     ChangeEntry
}

// ChangeEntry represents one side of a change (old or new file).
// It is the zero value on the missing side of an insert or delete.
type ChangeEntry struct {
	Name string
	Hash Hash
	Size int64
}

// Changes is a collection of Change objects in libgit2 delta order.
type Changes []*Change

// Before returns the old side entries of the changes that have one.
func (c Changes) Before() []ChangeEntry {
	out := make([]ChangeEntry, 0, len(c))

	for _, ch := range c {
		if ch.Action != Insert {
			out = append(out, ch.From)
		}
	}

	return out
}

// After returns the new side entries of the changes that have one.
func (c Changes) After() []ChangeEntry {
	out := make([]ChangeEntry, 0, len(c))

	for _, ch := range c {
		if ch.Action != Delete {
			out = append(out, ch.To)
		}
	}

	return out
}

// TreeDiff computes the changes between two trees using libgit2 with rename
// detection. A nil old tree reports every file of the new tree as inserted.
// Equal trees yield no changes without running a diff.
func TreeDiff(ctx context.Context, repo *Repository, oldTree, newTree *Tree) (Changes, error) {
	if oldTree != nil && newTree != nil && oldTree.Hash() == newTree.Hash() {
		return make(Changes, 0), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diff, err := repo.DiffTreeToTree(oldTree, newTree)
	if err != nil {
		return nil, err
	}

	defer func() { _ = diff.Free() }()

	findOpts, err := git2go.DefaultDiffFindOptions()
	if err != nil {
		return nil, fmt.Errorf("get find options: %w", err)
	}

	findOpts.Flags = git2go.DiffFindRenames

	err = diff.FindSimilar(&findOpts)
	if err != nil {
		return nil, fmt.Errorf("find renames: %w", err)
	}

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("get num deltas: %w", err)
	}

	changes := make(Changes, 0, numDeltas)

	for i := range numDeltas {
		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			return nil, fmt.Errorf("get delta %d: %w", i, deltaErr)
		}

		change, ok := changeOf(delta)
		if ok {
			changes = append(changes, change)
		}
	}

	return changes, nil
}

func changeOf(delta git2go.DiffDelta) (*Change, bool) {
	from := ChangeEntry{
		Name: delta.OldFile.Path,
		Hash: HashFromOid(delta.OldFile.Oid),
		Size: int64(delta.OldFile.Size),
	}
	to := ChangeEntry{
		Name: delta.NewFile.Path,
		Hash: HashFromOid(delta.NewFile.Oid),
		Size: int64(delta.NewFile.Size),
	}

	switch delta.Status {
	case git2go.DeltaAdded:
		return &Change{Action: Insert, To: to}, true
	case git2go.DeltaDeleted:
		return &Change{Action: Delete, From: from}, true
	case git2go.DeltaModified:
		return &Change{Action: Modify, From: from, To: to}, true
	case git2go.DeltaRenamed:
		return &Change{Action: Rename, From: from, To: to}, true
	case git2go.DeltaCopied:
		return &Change{Action: Insert, To: to}, true
	case git2go.DeltaUnmodified, git2go.DeltaIgnored, git2go.DeltaUntracked,
		git2go.DeltaTypeChange, git2go.DeltaUnreadable, git2go.DeltaConflicted:
		return nil, false
	default:
		return nil, false
	}
}
