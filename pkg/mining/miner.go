// Package mining runs the diff engine over repository history. Commits are
// diffed in parallel against their first parent and delivered to a Handler in
// walk order.
package mining

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/refmine/pkg/frontend"
	"github.com/Sumatoshi-tech/refmine/pkg/gitlib"
	"github.com/Sumatoshi-tech/refmine/pkg/observability"
	"github.com/Sumatoshi-tech/refmine/pkg/refdiff"
)

// DefaultCommitTimeout bounds the load and diff of a single commit.
const DefaultCommitTimeout = 2 * time.Minute

// Sentinel errors.
var (
	ErrCommitTimeout = errors.New("commit processing timed out")
	ErrNilHandler    = errors.New("nil handler")
)

// Miner walks history and diffs commits. A Miner is safe for concurrent use;
// each run opens its own repository handles.
type Miner struct {
	registry    *frontend.Registry
	differ      *refdiff.Differ
	workers     int
	timeout     time.Duration
	firstParent bool
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *observability.Metrics
}

// Option configures a Miner.
type Option func(*Miner)

// WithRegistry sets the front end registry used to parse blobs.
func WithRegistry(r *frontend.Registry) Option {
	return func(m *Miner) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithDiffer sets the snapshot differ.
func WithDiffer(d *refdiff.Differ) Option {
	return func(m *Miner) {
		if d != nil {
			m.differ = d
		}
	}
}

// WithWorkers sets the number of parallel diff workers. Values below one
// select the number of CPUs.
func WithWorkers(n int) Option {
	return func(m *Miner) {
		m.workers = n
	}
}

// WithCommitTimeout sets the per-commit timeout. Zero disables it.
func WithCommitTimeout(d time.Duration) Option {
	return func(m *Miner) {
		m.timeout = d
	}
}

// WithFirstParent restricts history walks to first parents.
func WithFirstParent(on bool) Option {
	return func(m *Miner) {
		m.firstParent = on
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Miner) {
		m.logger = l
	}
}

// WithTracer sets the tracer for per-commit spans.
func WithTracer(t trace.Tracer) Option {
	return func(m *Miner) {
		if t != nil {
			m.tracer = t
		}
	}
}

// WithMetrics enables mining metrics.
func WithMetrics(mt *observability.Metrics) Option {
	return func(m *Miner) {
		m.metrics = mt
	}
}

// NewMiner creates a Miner.
func NewMiner(opts ...Option) *Miner {
	m := &Miner{
		timeout: DefaultCommitTimeout,
		tracer:  otel.Tracer("refmine/mining"),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = frontend.NewRegistry(frontend.WithLogger(m.logger))
	}

	if m.differ == nil {
		m.differ = refdiff.NewDiffer(refdiff.WithLogger(m.logger))
	}

	if m.workers < 1 {
		m.workers = runtime.NumCPU()
	}

	return m
}

func (m *Miner) log() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}

	return m.logger
}

// DetectAll mines every commit reachable from branch. An empty branch means
// HEAD.
func (m *Miner) DetectAll(ctx context.Context, repo *gitlib.Repository, branch string, h Handler) error {
	from, err := repo.ResolveRevision(branch)
	if err != nil {
		return err
	}

	return m.mine(ctx, repo, gitlib.LogOptions{From: from, FirstParent: m.firstParent}, h)
}

// BetweenCommits mines the commits reachable from end but not from start.
// An empty end means HEAD.
func (m *Miner) BetweenCommits(ctx context.Context, repo *gitlib.Repository, start, end string, h Handler) error {
	startHash, err := repo.ResolveRevision(start)
	if err != nil {
		return err
	}

	endHash, err := repo.ResolveRevision(end)
	if err != nil {
		return err
	}

	return m.mine(ctx, repo, gitlib.LogOptions{
		From:        endHash,
		Hide:        []gitlib.Hash{startHash},
		FirstParent: m.firstParent,
	}, h)
}

// BetweenTags mines the commits reachable from endTag but not from startTag.
// An empty endTag means HEAD.
func (m *Miner) BetweenTags(ctx context.Context, repo *gitlib.Repository, startTag, endTag string, h Handler) error {
	startHash, err := repo.ResolveTag(startTag)
	if err != nil {
		return err
	}

	endHash, err := repo.Head()
	if endTag != "" {
		endHash, err = repo.ResolveTag(endTag)
	}

	if err != nil {
		return err
	}

	return m.mine(ctx, repo, gitlib.LogOptions{
		From:        endHash,
		Hide:        []gitlib.Hash{startHash},
		FirstParent: m.firstParent,
	}, h)
}

// AtCommit mines a single commit against its first parent. Unlike history
// walks, a merge commit named explicitly is processed.
func (m *Miner) AtCommit(ctx context.Context, repo *gitlib.Repository, id string, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}

	hash, err := repo.ResolveRevision(id)
	if err != nil {
		return err
	}

	var jobs []job
	if !h.ShouldSkip(hash.String()) {
		jobs = append(jobs, job{hash: hash})
	}

	return m.run(ctx, repo, jobs, h)
}

// ForEachCommit calls fn with the diff of each commit reachable from
// startRef, newest first, stopping after maxDepth commits when maxDepth is
// positive. Failed commits are logged and skipped.
func (m *Miner) ForEachCommit(
	ctx context.Context, repo *gitlib.Repository, startRef string, maxDepth int,
	fn func(commitID string, result *refdiff.Result),
) error {
	from, err := repo.ResolveRevision(startRef)
	if err != nil {
		return err
	}

	h := funcHandler{
		fn: fn,
		onFail: func(commitID string, err error) {
			m.log().Warn("commit skipped", "commit", commitID, "error", err)
		},
	}

	return m.mine(ctx, repo, gitlib.LogOptions{From: from, FirstParent: m.firstParent, MaxCount: maxDepth}, h)
}

// ForEachCommit runs Miner.ForEachCommit with default options.
func ForEachCommit(
	ctx context.Context, repo *gitlib.Repository, startRef string, maxDepth int,
	fn func(commitID string, result *refdiff.Result),
) error {
	return NewMiner().ForEachCommit(ctx, repo, startRef, maxDepth, fn)
}

// Diff loads a commit and its first parent and compares them. Root commits are
// compared against an empty snapshot.
func (m *Miner) Diff(ctx context.Context, repo *gitlib.Repository, hash gitlib.Hash) (*refdiff.Result, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	res, _, err := m.diffCommit(ctx, repo, hash)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %s: %w", ErrCommitTimeout, hash.Short(), err)
	}

	return res, err
}

// mine walks the log and runs every non-merge commit the handler keeps.
func (m *Miner) mine(ctx context.Context, repo *gitlib.Repository, opts gitlib.LogOptions, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}

	jobs, err := m.plan(ctx, repo, opts, h)
	if err != nil {
		return err
	}

	return m.run(ctx, repo, jobs, h)
}

func (m *Miner) plan(ctx context.Context, repo *gitlib.Repository, opts gitlib.LogOptions, h Handler) ([]job, error) {
	iter, err := repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}
	defer iter.Close()

	var (
		jobs    []job
		merges  int
		skipped int
	)

	for {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		commit, nextErr := iter.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		if nextErr != nil {
			return nil, fmt.Errorf("walk history: %w", nextErr)
		}

		hash, merge := commit.Hash(), commit.IsMerge()
		commit.Free()

		switch {
		case merge:
			merges++
		case h.ShouldSkip(hash.String()):
			skipped++
		default:
			jobs = append(jobs, job{hash: hash})
		}
	}

	m.log().Debug("history planned", "commits", len(jobs), "merges", merges, "skipped", skipped)

	return jobs, nil
}
