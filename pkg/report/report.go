// Package report renders mining results as CSV, JSON, YAML, a terminal
// summary table or an HTML chart.
package report

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/refmine/pkg/refactoring"
	"github.com/Sumatoshi-tech/refmine/pkg/refdiff"
)

// Format is an output format.
type Format string

// Output formats.
const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatHTML  Format = "html"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatYAML, FormatTable, FormatHTML}
}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(Formats(), f) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Refactoring is the serialized form of one relationship.
type Refactoring struct {
	Type               string                  `json:"type"                 yaml:"type"`
	Description        string                  `json:"description"          yaml:"description"`
	Similarity         *float64                `json:"similarity,omitempty" yaml:"similarity,omitempty"`
	LeftSideLocations  []refactoring.CodeRange `json:"leftSideLocations"    yaml:"left_side_locations"`
	RightSideLocations []refactoring.CodeRange `json:"rightSideLocations"   yaml:"right_side_locations"`
	Evidence           *Evidence               `json:"evidence,omitempty"   yaml:"evidence,omitempty"`
}

// Commit is the refactorings of one commit.
type Commit struct {
	Repository   string        `json:"repository"   yaml:"repository"`
	SHA1         string        `json:"sha1"         yaml:"sha1"`
	Refactorings []Refactoring `json:"refactorings" yaml:"refactorings"`
}

// Failure is a commit that could not be processed.
type Failure struct {
	SHA1  string `json:"sha1"  yaml:"sha1"`
	Error string `json:"error" yaml:"error"`
}

// Summary holds the run totals.
type Summary struct {
	Commits      int            `json:"commits"       yaml:"commits"`
	ErrorCommits int            `json:"error_commits" yaml:"error_commits"`
	Refactorings int            `json:"refactorings"  yaml:"refactorings"`
	ByType       map[string]int `json:"by_type"       yaml:"by_type"`
}

// Report is a complete mining report.
type Report struct {
	Commits  []Commit  `json:"commits"            yaml:"commits"`
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Summary  Summary   `json:"summary"            yaml:"summary"`
}

// Add appends the refactorings of a commit. Commits without refactorings are
// counted but not listed.
func (r *Report) Add(repository, commitID string, res *refdiff.Result, evidence bool) *Commit {
	c := Commit{Repository: repository, SHA1: commitID}

	for _, rel := range res.Refactorings() {
		c.Refactorings = append(c.Refactorings, NewRefactoring(rel, evidence))
	}

	r.count(c.Refactorings)

	if len(c.Refactorings) == 0 {
		return &c
	}

	r.Commits = append(r.Commits, c)

	return &r.Commits[len(r.Commits)-1]
}

// Fail records a failed commit.
func (r *Report) Fail(commitID string, err error) {
	r.Failures = append(r.Failures, Failure{SHA1: commitID, Error: err.Error()})
}

func (r *Report) count(refs []Refactoring) {
	if r.Summary.ByType == nil {
		r.Summary.ByType = make(map[string]int)
	}

	for _, ref := range refs {
		r.Summary.ByType[ref.Type]++
	}
}

// NewRefactoring converts a relationship.
func NewRefactoring(rel refactoring.Relationship, evidence bool) Refactoring {
	out := Refactoring{
		Type:               rel.DisplayName(),
		Description:        rel.Description,
		LeftSideLocations:  rel.LeftRanges,
		RightSideLocations: rel.RightRanges,
	}

	if out.LeftSideLocations == nil {
		out.LeftSideLocations = []refactoring.CodeRange{}
	}

	if out.RightSideLocations == nil {
		out.RightSideLocations = []refactoring.CodeRange{}
	}

	if rel.Scored {
		s := rel.Similarity
		out.Similarity = &s
	}

	if evidence && rel.Before != nil && rel.After != nil {
		out.Evidence = Diff(rel.Before.Tokens(), rel.After.Tokens())
	}

	return out
}
