package mining

import (
	"sync"

	"github.com/Sumatoshi-tech/refmine/pkg/refactoring"
	"github.com/Sumatoshi-tech/refmine/pkg/refdiff"
)

// Handler receives mining outcomes. A run calls its methods from a single
// goroutine in walk order, so implementations need no locking.
type Handler interface {
	// ShouldSkip is asked once per walked commit before any work is done.
	ShouldSkip(commitID string) bool
	// HandleCommit receives the diff of a processed commit.
	HandleCommit(commitID string, result *refdiff.Result)
	// HandleException receives a commit that failed or timed out.
	HandleException(commitID string, err error)
	// OnFinish is called once with the run totals.
	OnFinish(refactorings, commits, errorCommits int)
}

// BaseHandler implements Handler with no-ops, for embedding.
type BaseHandler struct{}

// ShouldSkip implements Handler.
func (BaseHandler) ShouldSkip(string) bool { return false }

// HandleCommit implements Handler.
func (BaseHandler) HandleCommit(string, *refdiff.Result) {}

// HandleException implements Handler.
func (BaseHandler) HandleException(string, error) {}

// OnFinish implements Handler.
func (BaseHandler) OnFinish(int, int, int) {}

// CommitResult is the refactorings of one commit.
type CommitResult struct {
	CommitID     string
	Refactorings []refactoring.Relationship
	Additions    int
	Deletions    int
}

// CommitError is a commit that could not be processed.
type CommitError struct {
	CommitID string
	Err      error
}

// Totals are the counters passed to OnFinish.
type Totals struct {
	Refactorings int
	Commits      int
	ErrorCommits int
}

// Collector is a Handler that keeps every outcome in memory. It is safe to
// read after the run returns.
type Collector struct {
	// Skip lists commit ids to skip.
	Skip map[string]bool
	// KeepEmpty records commits without refactorings too.
	KeepEmpty bool

	mu      sync.Mutex
	results []CommitResult
	errors  []CommitError
	totals  Totals
}

// ShouldSkip implements Handler.
func (c *Collector) ShouldSkip(commitID string) bool {
	return c.Skip[commitID]
}

// HandleCommit implements Handler.
func (c *Collector) HandleCommit(commitID string, result *refdiff.Result) {
	refs := result.Refactorings()
	if len(refs) == 0 && !c.KeepEmpty {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.results = append(c.results, CommitResult{
		CommitID:     commitID,
		Refactorings: refs,
		Additions:    len(result.Additions),
		Deletions:    len(result.Deletions),
	})
}

// HandleException implements Handler.
func (c *Collector) HandleException(commitID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors = append(c.errors, CommitError{CommitID: commitID, Err: err})
}

// OnFinish implements Handler.
func (c *Collector) OnFinish(refactorings, commits, errorCommits int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totals = Totals{Refactorings: refactorings, Commits: commits, ErrorCommits: errorCommits}
}

// Results returns the collected commits in walk order.
func (c *Collector) Results() []CommitResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.results
}

// Errors returns the failed commits in walk order.
func (c *Collector) Errors() []CommitError {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.errors
}

// Totals returns the counters reported by OnFinish.
func (c *Collector) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totals
}

// funcHandler adapts a ForEachCommit callback.
type funcHandler struct {
	BaseHandler

	fn     func(commitID string, result *refdiff.Result)
	onFail func(commitID string, err error)
}

func (h funcHandler) HandleCommit(commitID string, result *refdiff.Result) {
	h.fn(commitID, result)
}

func (h funcHandler) HandleException(commitID string, err error) {
	h.onFail(commitID, err)
}
