package mining

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/frontend"
	"github.com/Sumatoshi-tech/refmine/pkg/gitlib"
	"github.com/Sumatoshi-tech/refmine/pkg/refdiff"
)

// diffCommit compares the supported files a commit touches, as they were in
// its first parent and as the commit leaves them. It returns the number of
// files parsed.
func (m *Miner) diffCommit(ctx context.Context, repo *gitlib.Repository, hash gitlib.Hash) (*refdiff.Result, int, error) {
	commit, err := repo.LookupCommit(ctx, hash)
	if err != nil {
		return nil, 0, err
	}
	defer commit.Free()

	changes, err := commit.Changes(ctx)
	if err != nil {
		return nil, 0, err
	}

	beforeFiles, err := m.readFiles(ctx, repo, changes.Before())
	if err != nil {
		return nil, 0, err
	}

	afterFiles, err := m.readFiles(ctx, repo, changes.After())
	if err != nil {
		return nil, 0, err
	}

	before, err := m.registry.BuildSnapshot(ctx, beforeFiles)
	if err != nil {
		return nil, 0, fmt.Errorf("before %s: %w", hash.Short(), err)
	}

	after, err := m.registry.BuildSnapshot(ctx, afterFiles)
	if err != nil {
		return nil, 0, fmt.Errorf("after %s: %w", hash.Short(), err)
	}

	res, err := m.compare(ctx, before, after)
	if err != nil {
		return nil, 0, err
	}

	return res, len(beforeFiles) + len(afterFiles), nil
}

func (m *Miner) readFiles(ctx context.Context, repo *gitlib.Repository, entries []gitlib.ChangeEntry) ([]frontend.File, error) {
	files := make([]frontend.File, 0, len(entries))

	for _, e := range entries {
		if !m.registry.Supports(e.Name) {
			continue
		}

		data, err := repo.ReadBlob(ctx, e.Hash)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name, err)
		}

		files = append(files, frontend.File{Path: e.Name, Content: data, Hash: e.Hash.String()})
	}

	return files, nil
}

// compare runs the differ but gives up when ctx ends first. The abandoned
// comparison finishes in the background; it holds no repository resources.
func (m *Miner) compare(ctx context.Context, before, after *cst.Snapshot) (*refdiff.Result, error) {
	done := make(chan *refdiff.Result, 1)

	go func() {
		done <- m.differ.Compare(before, after)
	}()

	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
