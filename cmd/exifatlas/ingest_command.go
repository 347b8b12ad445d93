package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"exifatlas/internal/catalog"
	"exifatlas/internal/config"
	"exifatlas/internal/gazetteer"
	"exifatlas/internal/ingest"
	"exifatlas/internal/preflight"
	"exifatlas/internal/services"
)

type ingestFlags struct {
	force        bool
	skipLocation bool
	batchSize    int
	maxDistance  float64
	fileTimeout  time.Duration
	noProgress   bool
	json         bool
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var flags ingestFlags

	cmd := &cobra.Command{
		Use:     "ingest <folder>",
		Aliases: []string{"process"},
		Short:   "Extract metadata from every photo under a folder",
		Long: `Walk a folder, extract EXIF metadata from each JPEG, PNG and TIFF, resolve
GPS coordinates to places, and record the results in the catalog.

Unchanged files are skipped. "Processed" counts every file extracted
successfully in this run; "of which updated" is the part that already had a
catalog row. An interrupted run (Ctrl+C) keeps everything
committed so far; run the same command again to resume.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, ctx, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Reprocess every file, even unchanged ones")
	cmd.Flags().BoolVar(&flags.skipLocation, "skip-location", false, "Do not resolve GPS coordinates to places")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "Files per catalog transaction (default from config)")
	cmd.Flags().Float64Var(&flags.maxDistance, "max-distance", 0, "Maximum distance in km to the nearest place (default from config)")
	cmd.Flags().DurationVar(&flags.fileTimeout, "file-timeout", 0, "Per-file extraction deadline (default from config)")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the run summary as JSON")
	return cmd
}

func runIngest(cmd *cobra.Command, ctx *commandContext, folder string, flags ingestFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := flags.validate(cmd); err != nil {
		return err
	}

	root, err := config.ExpandPath(folder)
	if err != nil {
		return fmt.Errorf("resolve folder: %w", err)
	}
	if blocking := preflight.Blocking(preflight.RunAll(cfg, root)); len(blocking) > 0 {
		return preflightError(blocking)
	}

	dbPath, err := ctx.dbPath(root)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	lock, err := catalog.AcquireWriterLock(dbPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	logger, err := ctx.newLogger(cmd)
	if err != nil {
		return err
	}
	store, err := catalog.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var resolver ingest.Resolver
	if !flags.skipLocation {
		geo := gazetteer.OptionsFromConfig(cfg)
		if flags.maxDistance > 0 {
			geo.MaxDistanceKm = flags.maxDistance
		}
		resolver = gazetteer.NewResolver(store, geo, logger)
	}

	opts := ingest.OptionsFromConfig(cfg, root)
	opts.Force = flags.force
	opts.SkipLocation = flags.skipLocation
	if flags.batchSize > 0 {
		opts.BatchSize = flags.batchSize
	}
	if flags.fileTimeout > 0 {
		opts.FileTimeout = flags.fileTimeout
	}

	progress := newProgressReporter(cmd.ErrOrStderr(), flags.noProgress || flags.json, logger)
	coordinator := ingest.NewCoordinator(store, resolver, logger, ingest.WithProgressSink(progress))
	summary, runErr := coordinator.Run(signalCtx, opts)
	progress.Finish()
	if runErr != nil {
		return runErr
	}

	if flags.json {
		return writeJSON(cmd, newIngestSummaryView(summary, dbPath))
	}
	printIngestSummary(cmd.OutOrStdout(), summary, dbPath)
	return nil
}

func (f ingestFlags) validate(cmd *cobra.Command) error {
	changed := cmd.Flags().Changed
	switch {
	case changed("batch-size") && f.batchSize <= 0:
		return services.Wrap(services.ErrValidation, "cli", "ingest", "--batch-size must be positive", nil)
	case changed("max-distance") && f.maxDistance <= 0:
		return services.Wrap(services.ErrValidation, "cli", "ingest", "--max-distance must be positive", nil)
	case changed("file-timeout") && f.fileTimeout <= 0:
		return services.Wrap(services.ErrValidation, "cli", "ingest", "--file-timeout must be positive", nil)
	}
	return nil
}

func preflightError(blocking []preflight.Result) error {
	parts := make([]string, 0, len(blocking))
	for _, r := range blocking {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "cli", "preflight", strings.Join(parts, "; "), nil)
}

type ingestSummaryView struct {
	RunID       string `json:"runId"`
	Root        string `json:"root"`
	Database    string `json:"database"`
	Seen        int    `json:"seen"`
	Skipped     int    `json:"skipped"`
	Processed   int    `json:"processed"`
	Updated     int    `json:"updated"`
	Failed      int    `json:"failed"`
	WithGPS     int    `json:"withGps"`
	Located     int    `json:"located"`
	BytesHashed int64  `json:"bytesHashed"`
	Batches     int    `json:"batches"`
	DurationMs  int64  `json:"durationMs"`
	Interrupted bool   `json:"interrupted"`
}

func newIngestSummaryView(s ingest.Summary, dbPath string) ingestSummaryView {
	return ingestSummaryView{
		RunID:       s.RunID,
		Root:        s.Root,
		Database:    dbPath,
		Seen:        s.Seen,
		Skipped:     s.Skipped,
		Processed:   s.Processed,
		Updated:     s.Updated,
		Failed:      s.Failed,
		WithGPS:     s.WithGPS,
		Located:     s.Located,
		BytesHashed: s.BytesHashed,
		Batches:     s.Batches,
		DurationMs:  s.Duration().Milliseconds(),
		Interrupted: s.Interrupted,
	}
}

func printIngestSummary(out io.Writer, s ingest.Summary, dbPath string) {
	if s.Interrupted {
		fmt.Fprintf(out, "Ingest interrupted: %s\n", s.Root)
	} else {
		fmt.Fprintf(out, "Ingest complete: %s\n", s.Root)
	}
	fmt.Fprintf(out, "Catalog: %s\n", dbPath)
	rows := [][]string{
		{"Seen", humanize.Comma(int64(s.Seen))},
		{"Skipped", humanize.Comma(int64(s.Skipped))},
		{"Processed", humanize.Comma(int64(s.Processed))},
		{"  of which updated", humanize.Comma(int64(s.Updated))},
		{"Failed", humanize.Comma(int64(s.Failed))},
		{"With GPS", humanize.Comma(int64(s.WithGPS))},
		{"Located", humanize.Comma(int64(s.Located))},
		{"Hashed", humanize.Bytes(uint64(s.BytesHashed))},
		{"Duration", s.Duration().Round(time.Millisecond).String()},
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	if s.Interrupted {
		fmt.Fprintln(out, "Run the same command again to resume.")
	}
}
