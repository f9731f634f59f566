package gitlib

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

var (
	// ErrRemoteNotSupported is returned when a remote repository URI is provided.
	ErrRemoteNotSupported = errors.New("remote repositories not supported")
	// ErrRevisionNotFound is returned when a revision does not name a commit.
	ErrRevisionNotFound = errors.New("revision not found")
)

var scpLikeURI = regexp.MustCompile(`^[A-Za-z]\w*@[A-Za-z0-9][\w.]*:`)

// Repository wraps a libgit2 repository. A Repository is not safe for
// concurrent use; open one handle per goroutine.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens a git repository at the given path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// LoadRepository opens a local repository given on the command line.
// Remote URIs are rejected.
func LoadRepository(uri string) (*Repository, error) {
	if strings.Contains(uri, "://") || scpLikeURI.MatchString(uri) {
		return nil, fmt.Errorf("%w: %s", ErrRemoteNotSupported, uri)
	}

	if len(uri) > 1 && uri[len(uri)-1] == os.PathSeparator {
		uri = uri[:len(uri)-1]
	}

	return OpenRepository(uri)
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Reopen opens an independent handle on the same repository.
func (r *Repository) Reopen() (*Repository, error) {
	return OpenRepository(r.path)
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the HEAD reference target.
func (r *Repository) Head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, fmt.Errorf("get HEAD: %w", err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// ResolveRevision resolves a branch, tag, abbreviated or full commit id to the
// commit it names. An empty revision resolves to HEAD.
func (r *Repository) ResolveRevision(rev string) (Hash, error) {
	if rev == "" {
		return r.Head()
	}

	obj, err := r.repo.RevparseSingle(rev)
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %s: %w", ErrRevisionNotFound, rev, err)
	}
	defer obj.Free()

	commit, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %s is not a commit: %w", ErrRevisionNotFound, rev, err)
	}
	defer commit.Free()

	return HashFromOid(commit.Id()), nil
}

// ResolveTag resolves a lightweight or annotated tag to its commit.
func (r *Repository) ResolveTag(name string) (Hash, error) {
	return r.ResolveRevision("refs/tags/" + strings.TrimPrefix(name, "refs/tags/"))
}

// LookupCommit returns the commit with the given hash.
func (r *Repository) LookupCommit(ctx context.Context, hash Hash) (*Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", hash, err)
	}

	return &Commit{commit: commit, repo: r}, nil
}

// LookupBlob returns the blob with the given hash.
func (r *Repository) LookupBlob(ctx context.Context, hash Hash) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blob, err := r.repo.LookupBlob(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup blob %s: %w", hash, err)
	}

	return &Blob{blob: blob}, nil
}

// ReadBlob returns a copy of the blob contents that outlives the blob.
func (r *Repository) ReadBlob(ctx context.Context, hash Hash) ([]byte, error) {
	blob, err := r.LookupBlob(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer blob.Free()

	return blob.Bytes(), nil
}

// LookupTree returns the tree with the given hash.
func (r *Repository) LookupTree(hash Hash) (*Tree, error) {
	tree, err := r.repo.LookupTree(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup tree: %w", err)
	}

	return &Tree{tree: tree}, nil
}

// Walk creates a new revision walker with no starting points.
func (r *Repository) Walk() (*RevWalk, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	return &RevWalk{walk: walk, repo: r}, nil
}

// LogOptions configures the commit log iteration.
type LogOptions struct {
	// From is the newest commit of the walk; zero means HEAD.
	From Hash
	// Hide excludes these commits and their ancestors.
	Hide []Hash
	// FirstParent follows only first parents (git log --first-parent).
	FirstParent bool
	// MaxCount stops the walk after this many commits; zero means unlimited.
	MaxCount int
}

// Log returns a commit iterator, newest first in topological order.
func (r *Repository) Log(opts LogOptions) (*CommitIter, error) {
	walk, err := r.Walk()
	if err != nil {
		return nil, err
	}

	if opts.From.IsZero() {
		err = walk.PushHead()
	} else {
		err = walk.Push(opts.From)
	}

	if err != nil {
		walk.Free()

		return nil, err
	}

	for _, h := range opts.Hide {
		err = walk.Hide(h)
		if err != nil {
			walk.Free()

			return nil, err
		}
	}

	// Topological order keeps every parent after its children even when
	// branches carry skewed timestamps.
	walk.Sorting(git2go.SortTime | git2go.SortTopological)

	if opts.FirstParent {
		walk.walk.SimplifyFirstParent()
	}

	return &CommitIter{walk: walk, limit: opts.MaxCount}, nil
}

// DiffTreeToTree computes the diff between two trees. Either side may be nil.
func (r *Repository) DiffTreeToTree(oldTree, newTree *Tree) (*git2go.Diff, error) {
	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff options: %w", err)
	}

	diff, err := r.repo.DiffTreeToTree(oldTree.native(), newTree.native(), &opts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	return diff, nil
}

// Native returns the underlying libgit2 repository for advanced operations.
func (r *Repository) Native() *git2go.Repository {
	return r.repo
}
