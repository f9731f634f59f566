package gitlib

import (
	"errors"
	"fmt"
	"io"

	git2go "github.com/libgit2/git2go/v34"
)

// RevWalk wraps a libgit2 revision walker.
type RevWalk struct {
	walk *git2go.RevWalk
	repo *Repository
}

// Push adds a commit to start walking from.
func (w *RevWalk) Push(hash Hash) error {
	err := w.walk.Push(hash.ToOid())
	if err != nil {
		return fmt.Errorf("push %s to revwalk: %w", hash, err)
	}

	return nil
}

// PushHead adds HEAD to start walking from.
func (w *RevWalk) PushHead() error {
	head, err := w.repo.Head()
	if err != nil {
		return err
	}

	return w.Push(head)
}

// Hide excludes a commit and its ancestors from the walk.
func (w *RevWalk) Hide(hash Hash) error {
	err := w.walk.Hide(hash.ToOid())
	if err != nil {
		return fmt.Errorf("hide %s from revwalk: %w", hash, err)
	}

	return nil
}

// Sorting sets the sorting mode for the walker.
func (w *RevWalk) Sorting(mode git2go.SortType) {
	w.walk.Sorting(mode)
}

// Next returns the next commit hash in the walk, or io.EOF when it is over.
func (w *RevWalk) Next() (Hash, error) {
	oid := new(git2go.Oid)

	err := w.walk.Next(oid)
	if err != nil {
		var gitErr *git2go.GitError
		if errors.As(err, &gitErr) && gitErr.Code == git2go.ErrorCodeIterOver {
			return Hash{}, io.EOF
		}

		return Hash{}, fmt.Errorf("revwalk next: %w", err)
	}

	return HashFromOid(oid), nil
}

// Free releases the walker resources.
func (w *RevWalk) Free() {
	if w.walk != nil {
		w.walk.Free()
		w.walk = nil
	}
}
