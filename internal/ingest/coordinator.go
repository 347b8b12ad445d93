package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"exifatlas/internal/catalog"
	"exifatlas/internal/changedetect"
	"exifatlas/internal/exifmeta"
	"exifatlas/internal/gazetteer"
	"exifatlas/internal/logging"
	"exifatlas/internal/services"
)

// Extractor reads metadata from one file.
type Extractor interface {
	Extract(ctx context.Context, path string) exifmeta.Result
}

// Resolver maps a coordinate to a place label or gazetteer.Unknown.
type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64) (string, error)
}

// preparer is implemented by resolvers whose first use writes to the
// catalog. Run prepares them before any batch transaction is opened.
type preparer interface {
	Prepare(ctx context.Context) error
}

// Coordinator runs ingestion against one catalog. It is not safe for
// concurrent Runs.
type Coordinator struct {
	store     *catalog.Store
	extractor Extractor
	resolver  Resolver
	sink      ProgressSink
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithProgressSink injects a progress sink.
func WithProgressSink(sink ProgressSink) Option {
	return func(c *Coordinator) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithExtractor replaces the metadata extractor.
func WithExtractor(extractor Extractor) Option {
	return func(c *Coordinator) {
		if extractor != nil {
			c.extractor = extractor
		}
	}
}

// NewCoordinator wires a coordinator. resolver may be nil when locations are
// never resolved.
func NewCoordinator(store *catalog.Store, resolver Resolver, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ingest")
	c := &Coordinator{
		store:     store,
		extractor: exifmeta.New(logger),
		resolver:  resolver,
		sink:      NopSink{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run ingests opts.Root. Cancelling ctx stops the walk between files; the
// returned summary then has Interrupted set and the error is nil. A non-nil
// error means the catalog could not be written.
func (c *Coordinator) Run(ctx context.Context, opts Options) (Summary, error) {
	opts = opts.withDefaults()
	root, err := validateRoot(opts.Root)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		RunID:     uuid.NewString(),
		Root:      root,
		StartedAt: c.now(),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	// Writes and in-flight work must outlive an interrupt.
	writeCtx := context.WithoutCancel(ctx)
	logger := logging.WithContext(ctx, c.logger)

	if err := c.store.RecordRun(writeCtx, summary.record("")); err != nil {
		return summary, services.Wrap(services.ErrStore, "ingest", "record run", "", err)
	}
	logger.Info("ingest started",
		logging.String("root", root),
		logging.Bool("force", opts.Force),
		logging.Bool("skip_location", opts.SkipLocation),
		logging.Int("batch_size", opts.BatchSize),
	)

	files, err := Enumerate(ctx, root, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		return c.finish(writeCtx, logger, &summary, services.Wrap(services.ErrValidation, "ingest", "walk", root, err))
	}
	summary.Total = len(files)

	snapshots, err := c.store.Snapshots(writeCtx, root)
	if err != nil {
		return c.finish(writeCtx, logger, &summary, services.Wrap(services.ErrStore, "ingest", "load snapshots", "", err))
	}

	detector := changedetect.New(opts.VerifyContent)
	run := &runContext{
		Coordinator: c,
		opts:        opts,
		detector:    detector,
		summary:     &summary,
		logger:      logger,
		ctx:         writeCtx,
		locationErr: c.prepareResolver(ctx, opts, logger),
	}
	runErr := run.processAll(ctx, files, snapshots)
	if ctx.Err() != nil {
		summary.Interrupted = true
	}
	return c.finish(writeCtx, logger, &summary, runErr)
}

// prepareResolver builds the gazetteer index up front. A failure is kept
// for the run: GPS photos are then recorded as geocode-unavailable without
// retrying the build inside an open batch.
func (c *Coordinator) prepareResolver(ctx context.Context, opts Options, logger *slog.Logger) error {
	if opts.SkipLocation || c.resolver == nil {
		return nil
	}
	p, ok := c.resolver.(preparer)
	if !ok {
		return nil
	}
	if err := p.Prepare(ctx); err != nil {
		logging.WarnWithContext(logger, "gazetteer unavailable for this run", "gazetteer_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "photos with GPS are recorded as failed"),
		)
		return services.Wrap(services.ErrGeocodeUnavailable, "ingest", "prepare gazetteer", "", err)
	}
	return nil
}

func validateRoot(root string) (string, error) {
	if root == "" {
		return "", services.Wrap(services.ErrValidation, "ingest", "root", "folder is required", nil)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "ingest", "root", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "ingest", "root", abs, err)
	}
	if !info.IsDir() {
		return "", services.Wrap(services.ErrValidation, "ingest", "root", abs+" is not a directory", nil)
	}
	return filepath.Clean(abs), nil
}

func (c *Coordinator) finish(ctx context.Context, logger *slog.Logger, summary *Summary, runErr error) (Summary, error) {
	summary.FinishedAt = c.now()
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	if err := c.store.RecordRun(ctx, summary.record(message)); err != nil && runErr == nil {
		runErr = services.Wrap(services.ErrStore, "ingest", "record run", "", err)
	}

	attrs := []logging.Attr{
		logging.Int("seen", summary.Seen),
		logging.Int("skipped", summary.Skipped),
		logging.Int("processed", summary.Processed),
		logging.Int("updated", summary.Updated),
		logging.Int("failed", summary.Failed),
		logging.Int("located", summary.Located),
		logging.Int64("hashed_bytes", summary.BytesHashed),
		logging.Duration("duration", summary.Duration()),
	}
	switch {
	case runErr != nil:
		attrs = append(attrs, logging.Error(runErr))
		logging.ErrorWithContext(logger, "ingest aborted", "ingest_aborted", attrs...)
	case summary.Interrupted:
		attrs = append(attrs, logging.Alert("interrupted"))
		logger.Info("ingest interrupted", logging.Args(attrs...)...)
	default:
		logger.Info("ingest finished", logging.Args(attrs...)...)
	}
	return *summary, runErr
}

// runContext carries per-run state through the file loop.
type runContext struct {
	*Coordinator
	opts     Options
	detector *changedetect.Detector
	summary  *Summary
	logger   *slog.Logger
	ctx      context.Context

	batch      *catalog.Batch
	batchFiles int

	// locationErr is set when the resolver could not be prepared.
	locationErr error
}

func (r *runContext) processAll(cancel context.Context, files []string, snapshots map[string]catalog.Snapshot) error {
	for _, path := range files {
		if cancel.Err() != nil {
			break
		}
		if err := r.processOne(path, snapshots); err != nil {
			// Keep whatever was staged before the failure.
			if commitErr := r.commit(); commitErr != nil {
				r.logger.Error("commit after store failure failed", logging.Error(commitErr))
			}
			return err
		}
		r.sink.Report(r.summary.progress(path))
	}
	return r.commit()
}

func (r *runContext) processOne(path string, snapshots map[string]catalog.Snapshot) error {
	r.summary.Seen++

	var stored *changedetect.Stored
	if snap, ok := snapshots[path]; ok {
		stored = changedetect.FromSnapshot(snap)
	}

	info, statErr := os.Stat(path)
	var mtime time.Time
	var size int64
	if statErr == nil {
		mtime, size = info.ModTime(), info.Size()
	}

	var (
		decision changedetect.Decision
		failure  error
	)
	if statErr != nil {
		decision = changedetect.Decision{Process: true, Reason: changedetect.ReasonModified}
		failure = services.Wrap(services.ErrUnreadable, "ingest", "stat", "", statErr)
	} else {
		var err error
		decision, err = r.detector.Decide(path, stored, mtime, r.opts.Force)
		r.summary.BytesHashed += decision.Bytes
		if err != nil {
			decision.Process = true
			failure = services.Wrap(services.ErrUnreadable, "ingest", "fingerprint", "", err)
		}
	}

	if !decision.Process {
		r.summary.Skipped++
		r.logger.Debug("file unchanged", logging.Args(append(
			[]logging.Attr{logging.String(logging.FieldPath, path)},
			logging.DecisionAttrs("change_detection", "skip", string(decision.Reason))...,
		)...)...)
		return nil
	}

	if err := r.ensureBatch(); err != nil {
		return err
	}
	if err := r.batch.MarkPending(r.ctx, path, mtime, size); err != nil {
		return err
	}

	rec := &catalog.PhotoRecord{
		Path:        path,
		Filename:    filepath.Base(path),
		Fingerprint: decision.Fingerprint,
		FileMtime:   mtime,
		FileSize:    size,
	}
	if failure == nil {
		failure = r.populate(path, rec)
	}
	processedAt := r.now().UTC()
	rec.ProcessedAt = &processedAt

	if failure != nil {
		r.markFailed(rec, failure)
	} else {
		rec.Status = catalog.StatusProcessed
		r.summary.Processed++
		if stored != nil {
			r.summary.Updated++
		}
		if rec.HasGPS() {
			r.summary.WithGPS++
		}
		if rec.Location != "" {
			r.summary.Located++
		}
		r.logger.Debug("photo processed",
			logging.String(logging.FieldPath, path),
			logging.String("reason", string(decision.Reason)),
			logging.String("location", rec.Location),
		)
	}

	if err := r.batch.Upsert(r.ctx, rec); err != nil {
		return err
	}
	r.batchFiles++
	if r.batchFiles >= r.opts.BatchSize {
		return r.commit()
	}
	return nil
}

// populate extracts metadata into rec and resolves its location. It returns
// the per-file failure, if any.
func (r *runContext) populate(path string, rec *catalog.PhotoRecord) error {
	result := r.extract(path)
	if !result.OK() {
		return result.Err()
	}
	applyMetadata(rec, result.Metadata)

	if r.opts.SkipLocation || r.resolver == nil || !rec.HasGPS() {
		return nil
	}
	if r.locationErr != nil {
		return r.locationErr
	}
	label, err := r.resolver.Resolve(r.ctx, *rec.GPSLat, *rec.GPSLon)
	if err != nil {
		return services.Wrap(services.ErrGeocodeUnavailable, "ingest", "resolve location", "", err)
	}
	if label != gazetteer.Unknown {
		rec.Location = label
	}
	return nil
}

// extract runs the extractor under the per-file deadline. Interrupts do not
// reach the extractor; a timed-out extraction is abandoned.
func (r *runContext) extract(path string) exifmeta.Result {
	ctx, cancel := context.WithTimeout(services.WithPath(r.ctx, path), r.opts.FileTimeout)
	defer cancel()

	done := make(chan exifmeta.Result, 1)
	go func() {
		done <- r.extractor.Extract(ctx, path)
	}()
	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return exifmeta.Result{Failure: &exifmeta.Failure{
			Kind: services.KindUnreadable,
			Err:  services.Wrap(services.ErrUnreadable, "ingest", "extract", fmt.Sprintf("timed out after %s", r.opts.FileTimeout), ctx.Err()),
		}}
	}
}

func (r *runContext) markFailed(rec *catalog.PhotoRecord, failure error) {
	kind, ok := services.KindOf(failure)
	if !ok {
		kind = services.KindCorruptMetadata
	}
	rec.Status = catalog.StatusFailed
	rec.ErrorKind = string(kind)
	rec.ErrorMessage = failure.Error()
	r.summary.Failed++
	logging.WarnWithContext(r.logger, "photo failed", "photo_failed",
		logging.Path(rec.Path),
		logging.Kind(kind),
		logging.Error(failure),
		logging.String(logging.FieldErrorHint, "inspect the file; it is retried when it changes or with --force"),
		logging.String(logging.FieldImpact, "photo recorded as failed"),
	)
}

func applyMetadata(rec *catalog.PhotoRecord, meta *exifmeta.Metadata) {
	if meta == nil {
		return
	}
	rec.CaptureTime = meta.CaptureTime
	rec.CaptureSource = catalog.CaptureSource(meta.CaptureSource)
	rec.CameraModel = meta.CameraModel
	rec.LensModel = meta.LensModel
	rec.ISO = meta.ISO
	rec.Orientation = meta.Orientation
	rec.Aperture = meta.Aperture
	rec.FocalLength = meta.FocalLength
	rec.ExposureTime = meta.ExposureTime
	if meta.GPS != nil {
		lat, lon := meta.GPS.Lat, meta.GPS.Lon
		rec.GPSLat, rec.GPSLon = &lat, &lon
	}
}

func (r *runContext) ensureBatch() error {
	if r.batch != nil {
		return nil
	}
	batch, err := r.store.BeginBatch(r.ctx)
	if err != nil {
		return err
	}
	r.batch = batch
	r.batchFiles = 0
	return nil
}

func (r *runContext) commit() error {
	if r.batch == nil {
		return nil
	}
	batch, files := r.batch, r.batchFiles
	r.batch, r.batchFiles = nil, 0
	if err := batch.Commit(); err != nil {
		_ = batch.Rollback()
		return err
	}
	r.summary.Batches++
	r.logger.Debug("batch committed",
		logging.Int("files", files),
		logging.Int("batch", r.summary.Batches),
	)
	return nil
}
