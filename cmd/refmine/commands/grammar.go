package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/refmine/pkg/refactoring"
)

func newGrammarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Inspect the refactoring description grammar",
	}

	cmd.AddCommand(newGrammarListCommand(), newGrammarParseCommand())

	return cmd
}

func newGrammarListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every refactoring description template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl := table.NewWriter()
			tbl.SetOutputMirror(cmd.OutOrStdout())
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"ID", "Name", "Type", "Template"})

			entries := refactoring.Default().Entries()
			for _, e := range entries {
				typ := "-"
				if e.Relationship != 0 {
					typ = e.Relationship.String()
				}

				tbl.AppendRow(table.Row{e.ID, e.DisplayName, typ, e.Template})
			}

			tbl.AppendFooter(table.Row{"", fmt.Sprintf("%d entries", len(entries))})
			tbl.Render()

			return nil
		},
	}
}

func newGrammarParseCommand() *cobra.Command {
	var aggregate bool

	cmd := &cobra.Command{
		Use:   "parse <description>",
		Short: "Match a description against the grammar",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := strings.Join(args, " ")
			grammar := refactoring.Default()
			out := cmd.OutOrStdout()

			if aggregate {
				agg, err := grammar.Aggregate(desc)
				if err != nil {
					return err
				}

				fmt.Fprintln(out, agg)

				return nil
			}

			parsed, err := grammar.Parse(desc)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "id: %s\nname: %s\ntype: %s\n",
				parsed.Refactoring.ID, parsed.Refactoring.DisplayName, parsed.Relationship())

			for i, g := range parsed.Groups {
				fmt.Fprintf(out, "arg %d: %s\n", i+1, g)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&aggregate, "aggregate", false, "Print the description with aggregate arguments masked")

	return cmd
}
