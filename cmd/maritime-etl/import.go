package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/maritime-aerosol-etl/internal/adapter/archive"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/maritime-aerosol-etl/internal/adapter/kafka"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/config"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/observability"
	"github.com/couchcryptid/maritime-aerosol-etl/internal/pipeline"
)

func newImportCommand(overrides *config.Overrides) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Ingest every classified file of the archive",
		Long: `
Walks the source directory, classifies every file and writes its rows into the
matching dataset table. Rows already stored are left untouched, so the command
can be re-run over the same archive. The archive is downloaded first when the
source directory does not exist.
`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(overrides)
			if err != nil {
				return err
			}
			return runImport(c.Context(), cfg, c.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&overrides.Workers, "workers", 0, "files processed concurrently (overrides WORKERS)")
	flags.StringVar(&overrides.IntermediateDir, "intermediate", "", "normalized CSV directory (overrides INTERMEDIATE_DIR)")
	return cmd
}

func runImport(parent context.Context, cfg *config.Config, out io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	if _, err := os.Stat(cfg.SourceDir); errors.Is(err, os.ErrNotExist) {
		fetcher := archive.NewFetcher(cfg.ArchiveURL, cfg.ArchiveRetries, logger)
		if _, err := fetcher.Fetch(ctx, cfg.SourceDir); err != nil {
			return fmt.Errorf("bootstrap archive: %w", err)
		}
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var notifier pipeline.Notifier
	if cfg.NotificationsEnabled() {
		n := kafkaadapter.NewNotifier(cfg, logger)
		defer func() {
			if err := n.Close(); err != nil {
				logger.Error("kafka notifier close error", "error", err)
			}
		}()
		notifier = n
		logger.Info("kafka notifications enabled", "topic", cfg.KafkaTopic)
	}

	writer := pipeline.NewDatasetWriter(store, cfg.BatchSize, logger, metrics)
	sites := pipeline.NewSiteIndex(store, newGeocoder(cfg, metrics, logger), logger, metrics)
	scheduler := pipeline.NewScheduler(pipeline.Options{
		SourceDir:       cfg.SourceDir,
		IntermediateDir: cfg.IntermediateDir,
		Workers:         cfg.Workers,
	}, writer, sites, pipeline.NewCatalog(store, logger, metrics), notifier, logger, metrics, clockwork.NewRealClock())

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Readiness{scheduler, store}, scheduler, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	report, runErr := scheduler.Run(ctx)
	printReport(out, report)
	return runErr
}

func printReport(out io.Writer, r pipeline.Report) {
	t := r.Totals()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "files\t%d\n", t.Files)
	fmt.Fprintf(tw, "failed files\t%d\n", t.FailedFiles)
	fmt.Fprintf(tw, "unclassified\t%d\n", len(r.Unclassified))
	if r.NotDispatched > 0 {
		fmt.Fprintf(tw, "not dispatched\t%d\n", r.NotDispatched)
	}
	fmt.Fprintf(tw, "rows\t%d\n", t.Rows)
	fmt.Fprintf(tw, "created\t%d\n", t.Created)
	fmt.Fprintf(tw, "existing\t%d\n", t.Existing)
	fmt.Fprintf(tw, "failed\t%d\n", t.Failed)
	fmt.Fprintf(tw, "header entries created\t%d\n", r.HeadersCreated)
	for _, reason := range t.Reasons() {
		fmt.Fprintf(tw, "  %s\t%d\n", reason, t.Failures[reason])
	}
	fmt.Fprintf(tw, "duration\t%s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	_ = tw.Flush()
}
