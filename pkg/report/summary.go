package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TypeCount is the number of refactorings of one type.
type TypeCount struct {
	Type  string
	Count int
}

// CountsByType returns the per-type counts, most frequent first, ties by name.
func (r *Report) CountsByType() []TypeCount {
	out := make([]TypeCount, 0, len(r.Summary.ByType))
	for t, n := range r.Summary.ByType {
		out = append(out, TypeCount{Type: t, Count: n})
	}

	slices.SortFunc(out, func(a, b TypeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}

		return cmp.Compare(a.Type, b.Type)
	})

	return out
}

// WriteSummary prints the totals and the per-type table. With details, each
// refactoring is listed with its evidence.
func WriteSummary(w io.Writer, r *Report, details bool) error {
	title := color.New(color.Bold)
	title.Fprintf(w, "Commits: %s  Refactorings: %s  Failed: %s\n",
		humanize.Comma(int64(r.Summary.Commits)),
		humanize.Comma(int64(r.Summary.Refactorings)),
		humanize.Comma(int64(r.Summary.ErrorCommits)),
	)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	tbl.AppendHeader(table.Row{"Refactoring", "Count"})

	for _, tc := range r.CountsByType() {
		tbl.AppendRow(table.Row{tc.Type, humanize.Comma(int64(tc.Count))})
	}

	tbl.AppendFooter(table.Row{"Total", humanize.Comma(int64(r.Summary.Refactorings))})
	tbl.Render()

	if !details {
		return nil
	}

	commitColor := color.New(color.FgYellow)
	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)

	for _, c := range r.Commits {
		commitColor.Fprintf(w, "\ncommit %s\n", c.SHA1)

		for _, ref := range c.Refactorings {
			fmt.Fprintf(w, "  %s\n", ref.Description)

			if ref.Evidence == nil {
				continue
			}

			removed.Fprintf(w, "    -%d", ref.Evidence.Deleted)
			added.Fprintf(w, " +%d", ref.Evidence.Inserted)
			fmt.Fprintf(w, " tokens: %s\n", ref.Evidence.Patch)
		}
	}

	for _, f := range r.Failures {
		removed.Fprintf(w, "\nfailed %s: %s\n", f.SHA1, f.Error)
	}

	return nil
}
