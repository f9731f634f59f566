package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/refmine/pkg/frontend"
	"github.com/Sumatoshi-tech/refmine/pkg/gitlib"
	"github.com/Sumatoshi-tech/refmine/pkg/mining"
	"github.com/Sumatoshi-tech/refmine/pkg/observability"
	"github.com/Sumatoshi-tech/refmine/pkg/refdiff"
	"github.com/Sumatoshi-tech/refmine/pkg/report"
)

// mineFunc runs one mining mode against an opened repository.
type mineFunc func(ctx context.Context, m *mining.Miner, repo *gitlib.Repository, h mining.Handler) error

// MineCommand holds the flags shared by the mining commands.
type MineCommand struct {
	app *App
	op  string

	format      string
	output      string
	workers     int
	timeout     time.Duration
	evidence    bool
	firstParent bool
	skip        []string
}

func newMineCommand(app *App, op string, cmd *cobra.Command) (*MineCommand, *cobra.Command) {
	mc := &MineCommand{app: app, op: op}

	cmd.Annotations = map[string]string{annotationMode: string(observability.ModeMine)}

	flags := cmd.Flags()
	flags.StringVarP(&mc.format, "format", "f", "", "Output format: csv, json, yaml, table, html (default from config: csv)")
	flags.StringVarP(&mc.output, "output", "o", "", "Write the report to this file instead of stdout")
	flags.IntVar(&mc.workers, "workers", 0, "Number of parallel diff workers (0 = use CPU count)")
	flags.DurationVar(&mc.timeout, "timeout", 0, "Per-commit timeout, e.g. 90s (0 = no timeout)")
	flags.BoolVar(&mc.evidence, "evidence", false, "Attach token diffs to every refactoring")
	flags.BoolVar(&mc.firstParent, "first-parent", false, "Follow only the first parent of merge commits")
	flags.StringSliceVar(&mc.skip, "skip", nil, "Commit ids to skip")

	return mc, cmd
}

func newAllCommand(app *App) *cobra.Command {
	mc, cmd := newMineCommand(app, "all", &cobra.Command{
		Use:   "all <repo> [branch]",
		Short: "Detect refactorings in every commit of a branch",
		Args:  cobra.RangeArgs(1, 2),
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		branch := optionalArg(args, 1)

		return mc.run(cmd, args[0], func(ctx context.Context, m *mining.Miner, repo *gitlib.Repository, h mining.Handler) error {
			return m.DetectAll(ctx, repo, branch, h)
		})
	}

	return cmd
}

func newBetweenCommitsCommand(app *App) *cobra.Command {
	mc, cmd := newMineCommand(app, "between-commits", &cobra.Command{
		Use:   "between-commits <repo> <start-commit> [end-commit]",
		Short: "Detect refactorings in the commits after start up to end (default HEAD)",
		Args:  cobra.RangeArgs(2, 3),
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		start, end := args[1], optionalArg(args, 2)

		return mc.run(cmd, args[0], func(ctx context.Context, m *mining.Miner, repo *gitlib.Repository, h mining.Handler) error {
			return m.BetweenCommits(ctx, repo, start, end, h)
		})
	}

	return cmd
}

func newBetweenTagsCommand(app *App) *cobra.Command {
	mc, cmd := newMineCommand(app, "between-tags", &cobra.Command{
		Use:   "between-tags <repo> <start-tag> [end-tag]",
		Short: "Detect refactorings in the commits after a tag up to another (default HEAD)",
		Args:  cobra.RangeArgs(2, 3),
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		start, end := args[1], optionalArg(args, 2)

		return mc.run(cmd, args[0], func(ctx context.Context, m *mining.Miner, repo *gitlib.Repository, h mining.Handler) error {
			return m.BetweenTags(ctx, repo, start, end, h)
		})
	}

	return cmd
}

func newCommitCommand(app *App) *cobra.Command {
	mc, cmd := newMineCommand(app, "commit", &cobra.Command{
		Use:   "commit <repo> <commit>",
		Short: "Detect refactorings in a single commit",
		Args:  cobra.ExactArgs(2),
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		id := args[1]

		return mc.run(cmd, args[0], func(ctx context.Context, m *mining.Miner, repo *gitlib.Repository, h mining.Handler) error {
			return m.AtCommit(ctx, repo, id, h)
		})
	}

	return cmd
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}

	return ""
}

func (mc *MineCommand) run(cmd *cobra.Command, repoPath string, mine mineFunc) (err error) {
	app := mc.app
	started := time.Now()

	ctx, span := app.providers.Tracer.Start(cmd.Context(), "refmine."+mc.op,
		trace.WithAttributes(attribute.String("refmine.repository", repoPath)))

	defer func() {
		status := observability.StatusOK

		if err != nil {
			status = observability.StatusError

			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		app.metrics.RecordRun(ctx, mc.op, status, time.Since(started))
		span.End()
	}()

	format, err := mc.resolveFormat(cmd)
	if err != nil {
		return err
	}

	repo, err := gitlib.LoadRepository(repoPath)
	if err != nil {
		return err
	}
	defer repo.Free()

	miner, err := mc.newMiner(cmd)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), mc.output)
	if err != nil {
		return err
	}

	sink := report.NewSink(out, format,
		report.WithRepository(repoPath),
		report.WithEvidence(mc.evidence || app.cfg.Output.Evidence),
		report.WithSkip(mc.skip...),
		report.WithLogger(app.logger),
	)

	err = errors.Join(mine(ctx, miner, repo, sink), sink.Err(), closeOut())
	if err != nil {
		return err
	}

	summary := sink.Report().Summary
	span.SetAttributes(
		attribute.Int("mining.commits", summary.Commits),
		attribute.Int("refactorings", summary.Refactorings),
	)

	return nil
}

func (mc *MineCommand) resolveFormat(cmd *cobra.Command) (report.Format, error) {
	name := mc.app.cfg.Output.Format
	if cmd.Flags().Changed("format") {
		name = mc.format
	}

	return report.ParseFormat(name)
}

func (mc *MineCommand) newMiner(cmd *cobra.Command) (*mining.Miner, error) {
	cfg := mc.app.cfg
	flags := cmd.Flags()

	maxSize, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}

	workers := cfg.Mining.Workers
	if flags.Changed("workers") {
		workers = mc.workers
	}

	timeout := cfg.Mining.CommitTimeout
	if flags.Changed("timeout") {
		timeout = mc.timeout
	}

	firstParent := cfg.Mining.FirstParent || mc.firstParent

	return mining.NewMiner(
		mining.WithRegistry(mc.app.newRegistry(maxSize)),
		mining.WithDiffer(refdiff.NewDiffer(
			refdiff.WithThresholds(cfg.Thresholds),
			refdiff.WithLogger(mc.app.logger),
		)),
		mining.WithWorkers(workers),
		mining.WithCommitTimeout(timeout),
		mining.WithFirstParent(firstParent),
		mining.WithLogger(mc.app.logger),
		mining.WithTracer(mc.app.providers.Tracer),
		mining.WithMetrics(mc.app.metrics),
	), nil
}

func (a *App) newRegistry(maxSize int64) *frontend.Registry {
	return frontend.NewRegistry(
		frontend.WithMaxFileSize(maxSize),
		frontend.WithCacheEntries(a.cfg.Mining.ParseCacheEntries),
		frontend.WithLanguages(a.cfg.Mining.Languages...),
		frontend.WithLogger(a.logger),
	)
}

// openOutput returns stdout, or a created file when path is set.
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}

	return f, f.Close, nil
}
