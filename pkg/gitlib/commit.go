package gitlib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/Sumatoshi-tech/refmine/pkg/safeconv"
)

// ErrParentNotFound is returned when the requested parent commit is not found.
var ErrParentNotFound = errors.New("parent commit not found")

// Commit wraps a libgit2 commit.
type Commit struct {
	commit *git2go.Commit
	repo   *Repository
}

// Hash returns the commit hash.
func (c *Commit) Hash() Hash {
	return HashFromOid(c.commit.Id())
}

// Author returns the commit author.
func (c *Commit) Author() Signature {
	return signatureOf(c.commit.Author())
}

// Committer returns the commit committer.
func (c *Commit) Committer() Signature {
	return signatureOf(c.commit.Committer())
}

// Message returns the commit message.
func (c *Commit) Message() string {
	return c.commit.Message()
}

// Summary returns the first line of the commit message.
func (c *Commit) Summary() string {
	line, _, _ := strings.Cut(c.commit.Message(), "\n")

	return strings.TrimSpace(line)
}

// NumParents returns the number of parent commits.
func (c *Commit) NumParents() int {
	return safeconv.MustUintToInt(c.commit.ParentCount())
}

// IsMerge reports whether the commit has more than one parent.
func (c *Commit) IsMerge() bool {
	return c.NumParents() > 1
}

// Parent returns the nth parent commit.
func (c *Commit) Parent(n int) (*Commit, error) {
	if n < 0 || n >= c.NumParents() {
		return nil, fmt.Errorf("%w: %s^%d", ErrParentNotFound, c.Hash().Short(), n+1)
	}

	parent := c.commit.Parent(safeconv.MustIntToUint(n))
	if parent == nil {
		return nil, fmt.Errorf("%w: %s^%d", ErrParentNotFound, c.Hash().Short(), n+1)
	}

	return &Commit{commit: parent, repo: c.repo}, nil
}

// ParentHash returns the hash of the nth parent.
func (c *Commit) ParentHash(n int) Hash {
	return HashFromOid(c.commit.ParentId(safeconv.MustIntToUint(n)))
}

// Tree returns the tree associated with this commit.
func (c *Commit) Tree() (*Tree, error) {
	tree, err := c.commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get commit tree: %w", err)
	}

	return &Tree{tree: tree}, nil
}

// Changes returns the files changed by the commit against its first parent.
// A root commit reports every file as inserted.
func (c *Commit) Changes(ctx context.Context) (Changes, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	defer tree.Free()

	if c.NumParents() == 0 {
		return TreeDiff(ctx, c.repo, nil, tree)
	}

	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	defer parent.Free()

	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}
	defer parentTree.Free()

	return TreeDiff(ctx, c.repo, parentTree, tree)
}

// Free releases the commit resources.
func (c *Commit) Free() {
	if c.commit != nil {
		c.commit.Free()
		c.commit = nil
	}
}

// Native returns the underlying libgit2 commit.
func (c *Commit) Native() *git2go.Commit {
	return c.commit
}

// CommitIter iterates over the commits of a walk.
type CommitIter struct {
	walk  *RevWalk
	limit int
	seen  int
}

// Next returns the next commit in the iteration, or io.EOF.
func (ci *CommitIter) Next() (*Commit, error) {
	if ci.walk == nil || (ci.limit > 0 && ci.seen >= ci.limit) {
		return nil, io.EOF
	}

	for {
		hash, err := ci.walk.Next()
		if err != nil {
			return nil, err
		}

		commit, err := ci.walk.repo.repo.LookupCommit(hash.ToOid())
		if err != nil {
			continue
		}

		ci.seen++

		return &Commit{commit: commit, repo: ci.walk.repo}, nil
	}
}

// Hashes drains the iterator and returns the commit ids in walk order.
func (ci *CommitIter) Hashes() ([]Hash, error) {
	var out []Hash

	err := ci.ForEach(func(c *Commit) error {
		out = append(out, c.Hash())

		return nil
	})

	return out, err
}

// ForEach calls the callback for each commit. The commit is freed after the
// callback returns.
func (ci *CommitIter) ForEach(cb func(*Commit) error) error {
	defer ci.Close()

	for {
		commit, err := ci.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		cbErr := cb(commit)
		commit.Free()

		if cbErr != nil {
			return cbErr
		}
	}
}

// Close releases resources.
func (ci *CommitIter) Close() {
	if ci.walk != nil {
		ci.walk.Free()
		ci.walk = nil
	}
}
