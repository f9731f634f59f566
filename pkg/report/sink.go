package report

import (
	"io"
	"log/slog"

	"github.com/Sumatoshi-tech/refmine/pkg/mining"
	"github.com/Sumatoshi-tech/refmine/pkg/refdiff"
)

// Sink is a mining.Handler that renders the run. CSV rows are streamed as
// commits arrive; the other formats are written when the run finishes.
type Sink struct {
	out        io.Writer
	format     Format
	repository string
	evidence   bool
	skip       map[string]bool
	logger     *slog.Logger

	report Report
	csv    *CSVWriter
	err    error
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithRepository sets the repository name reported with each commit.
func WithRepository(name string) SinkOption {
	return func(s *Sink) {
		s.repository = name
	}
}

// WithEvidence attaches token diffs to every refactoring.
func WithEvidence(on bool) SinkOption {
	return func(s *Sink) {
		s.evidence = on
	}
}

// WithSkip lists commits that should not be processed.
func WithSkip(ids ...string) SinkOption {
	return func(s *Sink) {
		for _, id := range ids {
			s.skip[id] = true
		}
	}
}

// WithLogger sets the logger used for failed commits.
func WithLogger(l *slog.Logger) SinkOption {
	return func(s *Sink) {
		s.logger = l
	}
}

// NewSink creates a Sink writing to out.
func NewSink(out io.Writer, format Format, opts ...SinkOption) *Sink {
	s := &Sink{out: out, format: format, skip: make(map[string]bool)}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	if format == FormatCSV {
		s.csv = NewCSVWriter(out)
	}

	return s
}

var _ mining.Handler = (*Sink)(nil)

// ShouldSkip implements mining.Handler.
func (s *Sink) ShouldSkip(commitID string) bool {
	return s.skip[commitID]
}

// HandleCommit implements mining.Handler.
func (s *Sink) HandleCommit(commitID string, result *refdiff.Result) {
	c := s.report.Add(s.repository, commitID, result, s.evidence)

	if s.csv != nil && s.err == nil && len(c.Refactorings) > 0 {
		s.err = s.csv.WriteCommit(c)
	}
}

// HandleException implements mining.Handler.
func (s *Sink) HandleException(commitID string, err error) {
	s.logger.Warn("commit failed", "commit", commitID, "error", err)
	s.report.Fail(commitID, err)
}

// OnFinish implements mining.Handler.
func (s *Sink) OnFinish(refactorings, commits, errorCommits int) {
	s.report.Summary.Refactorings = refactorings
	s.report.Summary.Commits = commits
	s.report.Summary.ErrorCommits = errorCommits

	if s.err != nil {
		return
	}

	switch s.format {
	case FormatCSV:
		s.err = s.csv.Flush()
	case FormatTable:
		s.err = WriteSummary(s.out, &s.report, s.evidence)
	default:
		s.err = Write(s.out, s.format, &s.report)
	}
}

// Report returns the accumulated report.
func (s *Sink) Report() *Report {
	return &s.report
}

// Err returns the first write error.
func (s *Sink) Err() error {
	return s.err
}
