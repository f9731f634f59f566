package mining

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/refmine/pkg/gitlib"
	"github.com/Sumatoshi-tech/refmine/pkg/observability"
	"github.com/Sumatoshi-tech/refmine/pkg/refdiff"
)

type job struct {
	seq  int
	hash gitlib.Hash
}

type outcome struct {
	seq int
	id  string
	res *refdiff.Result
	err error
}

// run diffs jobs on the worker pool and feeds the handler in job order.
func (m *Miner) run(ctx context.Context, repo *gitlib.Repository, jobs []job, h Handler) error {
	cacheBefore := m.registry.CacheStats()
	workers := max(1, min(m.workers, len(jobs)))

	queue := make(chan job)
	results := make(chan outcome, workers)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)

		for i, j := range jobs {
			j.seq = i

			select {
			case queue <- j:
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		return nil
	})

	for range workers {
		g.Go(func() error {
			return m.work(gctx, repo, queue, results)
		})
	}

	waitErr := make(chan error, 1)

	go func() {
		waitErr <- g.Wait()

		close(results)
	}()

	totals := deliver(results, h)

	cacheAfter := m.registry.CacheStats()
	m.metrics.RecordCache(ctx, observability.CacheStats{
		Hits:      cacheAfter.Hits - cacheBefore.Hits,
		Misses:    cacheAfter.Misses - cacheBefore.Misses,
		Evictions: cacheAfter.Evictions - cacheBefore.Evictions,
	})

	if err := <-waitErr; err != nil {
		return err
	}

	h.OnFinish(totals.Refactorings, totals.Commits, totals.ErrorCommits)

	m.log().Info("mining finished",
		"commits", totals.Commits,
		"refactorings", totals.Refactorings,
		"errors", totals.ErrorCommits,
	)

	return nil
}

// deliver reorders completions by sequence number so the handler sees
// commits in walk order.
func deliver(results <-chan outcome, h Handler) Totals {
	var (
		totals  Totals
		next    int
		pending = make(map[int]outcome)
	)

	for out := range results {
		pending[out.seq] = out

		for {
			ready, ok := pending[next]
			if !ok {
				break
			}

			delete(pending, next)
			next++

			totals.Commits++

			if ready.err != nil {
				totals.ErrorCommits++

				h.HandleException(ready.id, ready.err)

				continue
			}

			totals.Refactorings += len(ready.res.Refactorings())

			h.HandleCommit(ready.id, ready.res)
		}
	}

	return totals
}

// work processes jobs on one OS thread with a private repository handle, as
// libgit2 handles must not be shared across threads.
func (m *Miner) work(ctx context.Context, repo *gitlib.Repository, queue <-chan job, results chan<- outcome) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	local, err := repo.Reopen()
	if err != nil {
		return fmt.Errorf("open worker repository: %w", err)
	}
	defer local.Free()

	for j := range queue {
		out := m.process(ctx, local, j)

		if err = ctx.Err(); err != nil {
			return err
		}

		select {
		case results <- out:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (m *Miner) process(ctx context.Context, repo *gitlib.Repository, j job) outcome {
	id := j.hash.String()
	started := time.Now()

	cctx := ctx

	if m.timeout > 0 {
		var cancel context.CancelFunc

		cctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	cctx, span := m.tracer.Start(cctx, "mining.commit", trace.WithAttributes(attribute.String("commit.id", id)))
	defer span.End()

	defer m.metrics.TrackCommit(ctx)()

	res, files, err := m.diffCommit(cctx, repo, j.hash)
	if err != nil {
		status := observability.StatusError

		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			status = observability.StatusTimeout
			err = fmt.Errorf("%w: %s after %s: %w", ErrCommitTimeout, j.hash.Short(), m.timeout, err)
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.metrics.RecordCommit(ctx, status, time.Since(started), nil)
		m.log().WarnContext(cctx, "commit failed", "commit", id, "status", status, "error", err)

		return outcome{seq: j.seq, id: id, err: err}
	}

	byType := make(map[string]int)

	for t, n := range res.CountByType() {
		if t.IsRefactoring() {
			byType[t.String()] = n
		}
	}

	refactorings := len(res.Refactorings())

	span.SetAttributes(
		attribute.Int("commit.files", files),
		attribute.Int("refactorings", refactorings),
	)
	m.metrics.RecordCommit(ctx, observability.StatusOK, time.Since(started), byType)
	m.log().DebugContext(cctx, "commit diffed", "commit", id, "files", files, "refactorings", refactorings)

	return outcome{seq: j.seq, id: id, res: res}
}
