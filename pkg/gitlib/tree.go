package gitlib

import (
	git2go "github.com/libgit2/git2go/v34"
)

// Tree wraps a libgit2 tree.
type Tree struct {
	tree *git2go.Tree
}

// Hash returns the tree hash.
func (t *Tree) Hash() Hash {
	return HashFromOid(t.tree.Id())
}

// EntryCount returns the number of top level entries.
func (t *Tree) EntryCount() uint64 {
	return t.tree.EntryCount()
}

// Free releases the tree resources.
func (t *Tree) Free() {
	if t != nil && t.tree != nil {
		t.tree.Free()
		t.tree = nil
	}
}

func (t *Tree) native() *git2go.Tree {
	if t == nil {
		return nil
	}

	return t.tree
}
