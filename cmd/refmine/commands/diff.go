package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/refmine/pkg/cst"
	"github.com/Sumatoshi-tech/refmine/pkg/frontend"
	"github.com/Sumatoshi-tech/refmine/pkg/observability"
	"github.com/Sumatoshi-tech/refmine/pkg/persist"
	"github.com/Sumatoshi-tech/refmine/pkg/refdiff"
	"github.com/Sumatoshi-tech/refmine/pkg/report"
)

// DiffCommand compares two source trees or snapshot documents.
type DiffCommand struct {
	app      *App
	format   string
	output   string
	evidence bool
}

func newDiffCommand(app *App) *cobra.Command {
	dc := &DiffCommand{app: app}

	cmd := &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "Compare two directories or snapshot documents",
		Long: `Compare two source directories, parsed with the built-in front ends, or two
snapshot documents written by "refmine snapshot" (.json, .gob, optionally .lz4).`,
		Args: cobra.ExactArgs(2),
		RunE: dc.run,
	}

	cmd.Flags().StringVarP(&dc.format, "format", "f", "", "Output format: csv, json, yaml, table, html (default from config: csv)")
	cmd.Flags().StringVarP(&dc.output, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&dc.evidence, "evidence", false, "Attach token diffs to every refactoring")

	return cmd
}

func (dc *DiffCommand) run(cmd *cobra.Command, args []string) error {
	app := dc.app
	started := time.Now()
	ctx := cmd.Context()

	status := observability.StatusError
	defer func() {
		app.metrics.RecordRun(ctx, "diff", status, time.Since(started))
	}()

	name := app.cfg.Output.Format
	if cmd.Flags().Changed("format") {
		name = dc.format
	}

	format, err := report.ParseFormat(name)
	if err != nil {
		return err
	}

	maxSize, err := app.cfg.MaxFileSizeBytes()
	if err != nil {
		return err
	}

	registry := app.newRegistry(maxSize)

	before, err := loadSnapshot(ctx, registry, args[0])
	if err != nil {
		return err
	}

	after, err := loadSnapshot(ctx, registry, args[1])
	if err != nil {
		return err
	}

	res := refdiff.NewDiffer(
		refdiff.WithThresholds(app.cfg.Thresholds),
		refdiff.WithLogger(app.logger),
	).Compare(before, after)

	r := &report.Report{}
	r.Add("", args[0]+".."+args[1], res, dc.evidence || app.cfg.Output.Evidence)
	r.Summary.Commits = 1
	r.Summary.Refactorings = len(res.Refactorings())

	out, closeOut, err := openOutput(cmd.OutOrStdout(), dc.output)
	if err != nil {
		return err
	}

	if format == report.FormatTable {
		err = report.WriteSummary(out, r, dc.evidence)
	} else {
		err = report.Write(out, format, r)
	}

	if closeErr := closeOut(); err == nil {
		err = closeErr
	}

	if err == nil {
		status = observability.StatusOK
	}

	return err
}

// loadSnapshot parses a directory or reads a snapshot document.
func loadSnapshot(ctx context.Context, registry *frontend.Registry, path string) (*cst.Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if !info.IsDir() {
		return persist.LoadSnapshot(path)
	}

	files, err := registry.LoadDir(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return registry.BuildSnapshot(ctx, files)
}

func newSnapshotCommand(app *App) *cobra.Command {
	var revision string

	cmd := &cobra.Command{
		Use:   "snapshot <dir> <out>",
		Short: "Parse a directory into a snapshot document",
		Long: `Parse the supported files of a directory and write their declarations as a
snapshot document. The codec follows the extension: .json, .gob, .json.lz4 or .gob.lz4.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxSize, err := app.cfg.MaxFileSizeBytes()
			if err != nil {
				return err
			}

			registry := app.newRegistry(maxSize)

			files, err := registry.LoadDir(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}

			doc, err := registry.Document(cmd.Context(), revision, files)
			if err != nil {
				return err
			}

			if err = persist.SaveDocument(args[1], doc); err != nil {
				return err
			}

			app.logger.Info("snapshot written", "path", args[1], "files", len(files), "roots", len(doc.Roots))

			return nil
		},
	}

	cmd.Flags().StringVar(&revision, "revision", "", "Revision label stored in the document")

	return cmd
}
