// Package commands implements the refmine CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/refmine/pkg/config"
	"github.com/Sumatoshi-tech/refmine/pkg/observability"
	"github.com/Sumatoshi-tech/refmine/pkg/version"
)

const (
	metricsPath            = "/metrics"
	metricsShutdownTimeout = 5 * time.Second
	metricsReadTimeout     = 10 * time.Second
)

// annotationMode marks commands that mine repositories.
const annotationMode = "refmine.mode"

// App holds the state shared by all commands of one invocation.
type App struct {
	configPath  string
	logLevel    string
	logJSON     bool
	metricsAddr string

	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.Metrics
	logger    *slog.Logger
	server    *http.Server
}

// Execute translates legacy arguments, runs the command line and returns the
// process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &App{}
	defer app.close()

	root := NewRootCommand(app)
	root.SetArgs(TranslateLegacyArgs(args))
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}

// NewRootCommand creates the refmine command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "refmine",
		Short: "Detect refactorings in source code history",
		Long: `refmine compares declaration snapshots of Java and Go code and reports
the refactorings between them, for a single commit, a commit range or a whole branch.

Legacy form:
  refmine -a <repo> [branch]
  refmine -bc <repo> <start-commit> [end-commit]
  refmine -bt <repo> <start-tag> [end-tag]
  refmine -c <repo> <commit>`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "Config file (default: .refmine.yaml in the working or home directory)")
	flags.StringVar(&app.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&app.logJSON, "log-json", false, "Log as JSON")
	flags.StringVar(&app.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9464")

	root.AddCommand(
		newAllCommand(app),
		newBetweenCommitsCommand(app),
		newBetweenTagsCommand(app),
		newCommitCommand(app),
		newDiffCommand(app),
		newSnapshotCommand(app),
		newGrammarCommand(),
		newVersionCommand(),
	)

	return root
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()

	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}

	if flags.Changed("log-json") {
		cfg.Logging.JSON = a.logJSON
	}

	if flags.Changed("metrics-addr") {
		cfg.Observability.MetricsAddr = a.metricsAddr
	}

	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Get().Version
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.Prometheus = cfg.Observability.MetricsAddr != ""
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogOutput = cmd.ErrOrStderr()

	if cmd.Annotations[annotationMode] == string(observability.ModeMine) {
		obsCfg.Mode = observability.ModeMine
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	a.cfg = cfg
	a.providers = providers
	a.logger = providers.Logger
	slog.SetDefault(providers.Logger)

	a.metrics, err = observability.NewMetrics(providers.Meter)
	if err != nil {
		return err
	}

	if providers.MetricsHandler != nil {
		return a.serveMetrics(cfg.Observability.MetricsAddr)
	}

	return nil
}

func (a *App) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen metrics %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, observability.ScrapeHandler(a.providers.Tracer, a.providers.MetricsHandler))

	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: metricsReadTimeout}

	go func() {
		serveErr := a.server.Serve(ln)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", serveErr)
		}
	}()

	a.logger.Info("serving metrics", "addr", ln.Addr().String(), "path", metricsPath)

	return nil
}

func (a *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()

	if a.server != nil {
		_ = a.server.Shutdown(ctx)
	}

	if a.providers.Shutdown != nil {
		if err := a.providers.Shutdown(ctx); err != nil && a.logger != nil {
			a.logger.Warn("telemetry shutdown", "error", err)
		}
	}
}

// Config returns the configuration loaded for the running command.
func (a *App) Config() *config.Config {
	return a.cfg
}
