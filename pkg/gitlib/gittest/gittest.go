// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/refmine/pkg/gitlib"
)

// Repo is a non-bare repository in a temporary directory. Files are written
// to the work tree and staged on Commit.
type Repo struct {
	t       *testing.T
	Path    string
	native  *git2go.Repository
	removed []string
	clock   time.Time
}

// New initializes an empty repository freed on test cleanup.
func New(t *testing.T) *Repo {
	t.Helper()

	dir := t.TempDir()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	return &Repo{
		t:      t,
		Path:   dir,
		native: repo,
		clock:  time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Write creates or overwrites a file of the work tree.
func (r *Repo) Write(name, content string) *Repo {
	r.t.Helper()

	path := filepath.Join(r.Path, filepath.FromSlash(name))

	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o644))

	return r
}

// Remove deletes a file from the work tree and stages the removal.
func (r *Repo) Remove(name string) *Repo {
	r.t.Helper()

	require.NoError(r.t, os.Remove(filepath.Join(r.Path, filepath.FromSlash(name))))
	r.removed = append(r.removed, name)

	return r
}

// Move renames a file of the work tree.
func (r *Repo) Move(from, to string) *Repo {
	r.t.Helper()

	data, err := os.ReadFile(filepath.Join(r.Path, filepath.FromSlash(from)))
	require.NoError(r.t, err)

	r.Remove(from)

	return r.Write(to, string(data))
}

// Commit stages the work tree and commits it on HEAD.
func (r *Repo) Commit(message string) gitlib.Hash {
	r.t.Helper()

	var parents []gitlib.Hash

	head, err := r.native.Head()
	if err == nil {
		parents = append(parents, gitlib.HashFromOid(head.Target()))
		head.Free()
	}

	return r.CommitWithParents(message, parents...)
}

// Merge commits the work tree with HEAD and other as parents.
func (r *Repo) Merge(message string, other gitlib.Hash) gitlib.Hash {
	r.t.Helper()

	head, err := r.native.Head()
	require.NoError(r.t, err)

	defer head.Free()

	return r.CommitWithParents(message, gitlib.HashFromOid(head.Target()), other)
}

// CommitWithParents commits the work tree with explicit parents and moves
// HEAD to the new commit. The first parent must be the current HEAD.
func (r *Repo) CommitWithParents(message string, parentIDs ...gitlib.Hash) gitlib.Hash {
	r.t.Helper()

	index, err := r.native.Index()
	require.NoError(r.t, err)

	defer index.Free()

	for _, name := range r.removed {
		require.NoError(r.t, index.RemoveByPath(name))
	}

	r.removed = nil

	require.NoError(r.t, index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil))
	require.NoError(r.t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(r.t, err)

	tree, err := r.native.LookupTree(treeID)
	require.NoError(r.t, err)

	defer tree.Free()

	parents := make([]*git2go.Commit, 0, len(parentIDs))

	for _, id := range parentIDs {
		parent, lookupErr := r.native.LookupCommit(id.ToOid())
		require.NoError(r.t, lookupErr)

		parents = append(parents, parent)
	}

	defer func() {
		for _, p := range parents {
			p.Free()
		}
	}()

	r.clock = r.clock.Add(time.Minute)
	sig := &git2go.Signature{Name: "Test User", Email: "test@example.com", When: r.clock}

	oid, err := r.native.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(r.t, err)

	return gitlib.HashFromOid(oid)
}

// Checkout resets the current branch, index and work tree to a commit.
func (r *Repo) Checkout(id gitlib.Hash) {
	r.t.Helper()

	commit, err := r.native.LookupCommit(id.ToOid())
	require.NoError(r.t, err)

	defer commit.Free()

	require.NoError(r.t, r.native.ResetToCommit(commit, git2go.ResetHard, &git2go.CheckoutOptions{
		Strategy: git2go.CheckoutForce | git2go.CheckoutRemoveUntracked,
	}))

	r.removed = nil
}

// Tag creates a lightweight tag.
func (r *Repo) Tag(name string, id gitlib.Hash) {
	r.t.Helper()

	commit, err := r.native.LookupCommit(id.ToOid())
	require.NoError(r.t, err)

	defer commit.Free()

	_, err = r.native.Tags.CreateLightweight(name, commit, false)
	require.NoError(r.t, err)
}

// AnnotatedTag creates an annotated tag.
func (r *Repo) AnnotatedTag(name string, id gitlib.Hash) {
	r.t.Helper()

	commit, err := r.native.LookupCommit(id.ToOid())
	require.NoError(r.t, err)

	defer commit.Free()

	sig := &git2go.Signature{Name: "Test User", Email: "test@example.com", When: r.clock}

	_, err = r.native.Tags.Create(name, commit, sig, "release "+name)
	require.NoError(r.t, err)
}

// Branch points a branch at a commit.
func (r *Repo) Branch(name string, id gitlib.Hash) {
	r.t.Helper()

	commit, err := r.native.LookupCommit(id.ToOid())
	require.NoError(r.t, err)

	defer commit.Free()

	branch, err := r.native.CreateBranch(name, commit, true)
	require.NoError(r.t, err)

	branch.Free()
}

// Open opens a gitlib handle freed on test cleanup.
func (r *Repo) Open() *gitlib.Repository {
	r.t.Helper()

	repo, err := gitlib.OpenRepository(r.Path)
	require.NoError(r.t, err)

	r.t.Cleanup(repo.Free)

	return repo
}
