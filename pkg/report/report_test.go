package report_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	ct "github.com/Sumatoshi-tech/refmine/pkg/cst/csttest"
	"github.com/Sumatoshi-tech/refmine/pkg/refdiff"
	"github.com/Sumatoshi-tech/refmine/pkg/report"
)

func init() {
	color.NoColor = true
}

func renameClass() *refdiff.Result {
	body := ct.Body("int x ; void run ( ) { }")

	return refdiff.Compare(
		ct.Snapshot(ct.Class("p1", "B", body)),
		ct.Snapshot(ct.Class("p1", "C", body)),
	)
}

func renameMethod() *refdiff.Result {
	return refdiff.Compare(
		ct.Snapshot(ct.Class("p", "Foo", ct.Members(ct.Method("oldName", ct.Body("a b c"))))),
		ct.Snapshot(ct.Class("p", "Foo", ct.Members(ct.Method("newName", ct.Body("a b d"))))),
	)
}

func unchanged() *refdiff.Result {
	snap := ct.Snapshot(ct.Class("p", "Same", ct.Body("x")))

	return refdiff.Compare(snap, snap)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := report.ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, report.FormatJSON, f)

	_, err = report.ParseFormat("xml")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestSinkStreamsCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	s := report.NewSink(&buf, report.FormatCSV)
	s.HandleCommit("c3", renameClass())
	s.HandleCommit("c2", unchanged())
	s.HandleException("c1", errors.New("boom"))
	s.OnFinish(1, 3, 1)
	require.NoError(t, s.Err())

	assert.Equal(t,
		"CommitId;RefactoringType;RefactoringDetail\n"+
			"c3;Rename Class;Rename Class p1.B renamed to p1.C\n",
		buf.String())

	r := s.Report()
	assert.Len(t, r.Commits, 1)
	require.Len(t, r.Failures, 1)
	assert.Equal(t, "boom", r.Failures[0].Error)
	assert.Equal(t, report.Summary{
		Commits: 3, ErrorCommits: 1, Refactorings: 1,
		ByType: map[string]int{"Rename Class": 1},
	}, r.Summary)
}

func TestEmptyCSVHasHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	s := report.NewSink(&buf, report.FormatCSV)
	s.OnFinish(0, 0, 0)
	require.NoError(t, s.Err())
	assert.Equal(t, "CommitId;RefactoringType;RefactoringDetail\n", buf.String())
}

func TestSinkSkip(t *testing.T) {
	t.Parallel()

	s := report.NewSink(&bytes.Buffer{}, report.FormatCSV, report.WithSkip("abc"))
	assert.True(t, s.ShouldSkip("abc"))
	assert.False(t, s.ShouldSkip("def"))
}

func TestJSONReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	s := report.NewSink(&buf, report.FormatJSON, report.WithRepository("demo"))
	s.HandleCommit("c1", renameMethod())
	s.OnFinish(1, 1, 0)
	require.NoError(t, s.Err())

	var decoded struct {
		Commits []struct {
			Repository   string `json:"repository"`
			SHA1         string `json:"sha1"`
			Refactorings []struct {
				Type               string           `json:"type"`
				Description        string           `json:"description"`
				Similarity         *float64         `json:"similarity"`
				LeftSideLocations  []map[string]any `json:"leftSideLocations"`
				RightSideLocations []map[string]any `json:"rightSideLocations"`
			} `json:"refactorings"`
		} `json:"commits"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Commits, 1)

	c := decoded.Commits[0]
	assert.Equal(t, "demo", c.Repository)
	assert.Equal(t, "c1", c.SHA1)
	require.Len(t, c.Refactorings, 1)
	assert.Equal(t, "Rename Method", c.Refactorings[0].Type)
	assert.Contains(t, c.Refactorings[0].Description, "newName")
	require.NotNil(t, c.Refactorings[0].Similarity)
	assert.InDelta(t, 0.5, *c.Refactorings[0].Similarity, 1e-12)
	assert.NotNil(t, c.Refactorings[0].LeftSideLocations)
	assert.NotNil(t, c.Refactorings[0].RightSideLocations)
}

func TestYAMLReport(t *testing.T) {
	t.Parallel()

	r := &report.Report{}
	r.Add("demo", "c1", renameClass(), false)
	r.Summary.Commits = 1
	r.Summary.Refactorings = 1

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, report.FormatYAML, r))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, buf.String(), "description: Rename Class p1.B renamed to p1.C")
	assert.Contains(t, decoded, "summary")
}

func TestEvidence(t *testing.T) {
	t.Parallel()

	ev := report.Diff([]string{"a", "b", "c"}, []string{"a", "b", "d"})
	assert.Equal(t, 2, ev.Equal)
	assert.Equal(t, 1, ev.Deleted)
	assert.Equal(t, 1, ev.Inserted)
	assert.Equal(t, "a b [-c-] {+d+}", ev.Patch)

	r := &report.Report{}
	c := r.Add("", "c1", renameMethod(), true)
	require.Len(t, c.Refactorings, 1)
	require.NotNil(t, c.Refactorings[0].Evidence)
	assert.Equal(t, 1, c.Refactorings[0].Evidence.Inserted)
}

func TestSummaryTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	s := report.NewSink(&buf, report.FormatTable, report.WithEvidence(true))
	s.HandleCommit("c2", renameClass())
	s.HandleCommit("c1", renameMethod())
	s.HandleCommit("c0", renameMethod())
	s.OnFinish(3, 3, 0)
	require.NoError(t, s.Err())

	out := buf.String()
	assert.Contains(t, out, "Commits: 3  Refactorings: 3  Failed: 0")
	assert.Less(t, strings.Index(out, "Rename Method"), strings.Index(out, "Rename Class"))
	assert.Contains(t, out, "commit c1")
	assert.Contains(t, out, "{+d+}")

	counts := s.Report().CountsByType()
	assert.Equal(t, []report.TypeCount{{Type: "Rename Method", Count: 2}, {Type: "Rename Class", Count: 1}}, counts)
}

func TestHTMLChart(t *testing.T) {
	t.Parallel()

	r := &report.Report{}
	r.Add("", "c1", renameClass(), false)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, report.FormatHTML, r))
	assert.Contains(t, buf.String(), "<html")
	assert.Contains(t, buf.String(), "Rename Class")
}
