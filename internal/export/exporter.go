package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"mixport/internal/config"
	"mixport/internal/deps"
	"mixport/internal/fileutil"
	"mixport/internal/keys"
	"mixport/internal/logging"
	"mixport/internal/mixxx"
	"mixport/internal/offset"
	"mixport/internal/pipeline"
	"mixport/internal/preflight"
	"mixport/internal/rekordbox"
	"mixport/internal/services"
	"mixport/internal/track"
	"mixport/internal/transcode"
)

const (
	lockRetryDelay = 100 * time.Millisecond
	// Partial encodes older than this belong to a run that no longer exists.
	staleAfter = time.Hour
)

// OffsetReporter supplies offsets and hands back the lookups that failed
// since the last Flush.
type OffsetReporter interface {
	track.OffsetSource
	Flush() []offset.Failure
}

// ProgressFactory returns the progress callback for one collection, or nil.
type ProgressFactory func(collection string, total int) pipeline.ProgressFunc

// Options carries the collaborators of an Exporter.
type Options struct {
	// Confirmer is required unless the config exports everything.
	Confirmer Confirmer
	// Offsets overrides the ffprobe detector.
	Offsets  OffsetReporter
	Progress ProgressFactory
	Logger   *slog.Logger
	// Version is written to the document's PRODUCT element.
	Version string
}

// Exporter runs exports for one configuration.
type Exporter struct {
	cfg       *config.Config
	kind      mixxx.Kind
	notation  keys.Notation
	confirmer Confirmer
	offsets   OffsetReporter
	relocator *transcode.Transcoder
	progress  ProgressFactory
	logger    *slog.Logger
	version   string
}

// New validates the run settings in cfg and wires the collaborators.
func New(cfg *config.Config, opts Options) (*Exporter, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "export", "configure", "config is required", nil)
	}
	kind, err := mixxx.ParseKind(cfg.Export.CollectionType)
	if err != nil {
		return nil, err
	}
	notation, err := keys.ParseNotation(cfg.Export.KeyType)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	confirmer := opts.Confirmer
	if cfg.Export.ExportAll {
		confirmer = ConfirmAll
	}
	if confirmer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "export", "configure",
			"a confirmation prompt is required unless export_all is set", nil)
	}

	exporter := &Exporter{
		cfg:       cfg,
		kind:      kind,
		notation:  notation,
		confirmer: confirmer,
		offsets:   opts.Offsets,
		progress:  opts.Progress,
		logger:    logging.NewComponentLogger(logger, "export"),
		version:   opts.Version,
	}
	if cfg.Relocating() {
		exporter.relocator, err = transcode.New(transcode.Options{
			OutDir:        cfg.Export.OutDir,
			VirtualOutDir: cfg.Export.VirtualOutDir,
			Format:        cfg.Export.Format,
			FFmpeg:        cfg.FFmpegBinary(),
			FFprobe:       cfg.FFprobeBinary(),
			Limiter:       transcode.NewLimiter(cfg.Export.TranscodeLimit),
			Logger:        logger,
		})
		if err != nil {
			return nil, err
		}
	}
	return exporter, nil
}

// Run exports every confirmed collection and writes the document. The
// returned error joins the failures of individual collections; the summary
// is valid either way.
func (e *Exporter) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	summary := Summary{OutputPath: e.cfg.Export.OutputPath}
	logger := logging.WithContext(ctx, e.logger)

	if err := e.cfg.EnsureDirectories(); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "export", "prepare", "output directory", err)
	}
	if failed := preflight.Failed(preflight.RunAll(ctx, e.cfg)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, result := range failed {
			details = append(details, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
		return summary, services.Wrap(services.ErrConfiguration, "export", "preflight", strings.Join(details, "; "), nil)
	}

	if e.relocator != nil {
		e.relocator.CleanStale(staleAfter)
	}

	source, err := mixxx.Open(ctx, e.cfg.Mixxx.Database)
	if err != nil {
		return summary, err
	}
	defer source.Close()

	listing, err := source.Session(ctx)
	if err != nil {
		return summary, err
	}
	defer listing.Close()

	collections, err := listing.Collections(ctx, e.kind)
	if err != nil {
		return summary, err
	}
	logger.Info("preparing export",
		logging.Int("collections", len(collections)),
		logging.String("collection_type", string(e.kind)),
		logging.String("database", source.Path()),
	)

	offsets := e.offsetSource(ctx, logger)
	run := e.newPipeline(source, offsets)
	doc := rekordbox.NewDocument(e.version)

	var errs []error
	for _, collection := range collections {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := e.exportCollection(ctx, listing, run, doc, offsets, collection)
		summary.Collections = append(summary.Collections, result)
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("collection %q: %w", collection.Name, result.Err))
		}
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	if err := e.writeDocument(ctx, doc); err != nil {
		return summary, errors.Join(append(errs, err)...)
	}
	summary.Written = true
	summary.Tracks = doc.TrackCount()
	summary.Elapsed = time.Since(started)
	logger.Info("export complete",
		logging.String(logging.FieldEventType, "export_complete"),
		logging.String("output", e.cfg.Export.OutputPath),
		logging.Int("collections", summary.Exported()),
		logging.Int("tracks", summary.Tracks),
		logging.Int("failed", len(errs)),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, errors.Join(errs...)
}

func (e *Exporter) exportCollection(
	ctx context.Context,
	listing *mixxx.Session,
	run *pipeline.Pipeline,
	doc *rekordbox.Document,
	offsets OffsetReporter,
	collection mixxx.Collection,
) CollectionSummary {
	started := time.Now()
	ctx = services.WithCollection(ctx, collection.Name)
	logger := logging.WithContext(ctx, e.logger)
	result := CollectionSummary{Name: collection.Name}
	fail := func(err error) CollectionSummary {
		result.Status = StatusFailed
		result.Err = err
		result.Elapsed = time.Since(started)
		logging.ErrorWithContext(logger, "collection export failed", "collection_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the failing track and rerun; the collection was left out of the document"),
		)
		return result
	}

	confirmed, err := e.confirmer.Confirm(ctx, collection.Name)
	if err != nil {
		return fail(fmt.Errorf("confirm: %w", err))
	}
	if !confirmed {
		logger.Info("collection skipped by user")
		result.Status = StatusDeclined
		return result
	}

	ids, err := listing.CollectionTracks(ctx, e.kind, collection.ID)
	if err != nil {
		return fail(err)
	}
	logger.Info("exporting collection", logging.Int("tracks", len(ids)))

	var progress pipeline.ProgressFunc
	if e.progress != nil {
		progress = e.progress(collection.Name, len(ids))
	}
	run.SetProgress(progress)

	extracted, err := run.Extract(services.WithStage(ctx, "extract"), ids)
	result.Warnings = e.flushOffsets(logger, offsets)
	if err != nil {
		return fail(err)
	}

	doc.AddCollection(collection.Name, extracted.Tracks)
	result.Status = StatusExported
	result.Tracks = len(extracted.Tracks)
	result.Skipped = extracted.Skipped
	result.Elapsed = time.Since(started)
	logger.Info("collection exported",
		logging.String(logging.FieldEventType, "collection_exported"),
		logging.Int("tracks", result.Tracks),
		logging.Int("skipped", result.Skipped),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result
}

func (e *Exporter) newPipeline(source *mixxx.Source, offsets OffsetReporter) *pipeline.Pipeline {
	opts := track.Options{Notation: e.notation, Logger: e.logger}
	if e.relocator != nil {
		opts.Relocator = e.relocator
	}
	if offsets != nil {
		opts.Offsets = offsets
		if formats, ok := offsets.(track.FormatSource); ok {
			opts.Formats = formats
		}
	}
	opener := pipeline.OpenerFunc(func(ctx context.Context) (pipeline.Session, error) {
		session, err := source.Session(ctx)
		if err != nil {
			return nil, err
		}
		return session, nil
	})

	workers := e.cfg.Export.Workers
	if workers < 1 {
		workers = pipeline.DefaultWorkers(e.cfg.Export.Format != "")
	}
	return pipeline.New(opener, track.NewExtractor(opts), pipeline.Options{
		Workers: workers,
		Cache:   pipeline.NewCache(),
		Logger:  e.logger,
	})
}

// offsetSource falls back to no correction when ffprobe is unavailable.
func (e *Exporter) offsetSource(ctx context.Context, logger *slog.Logger) OffsetReporter {
	if e.offsets != nil {
		return e.offsets
	}
	probe, ok := deps.Find(preflight.CheckSystemDeps(ctx, e.cfg, false), deps.FFprobe)
	if ok && probe.Available() {
		return offset.NewDetector(probe.Path, e.logger)
	}
	logging.WarnWithContext(logger, "ffprobe unavailable, exporting without offset correction", "offsets_disabled",
		logging.String("binary", probe.Command),
		logging.String(logging.FieldErrorHint, "install ffprobe or set tools.ffprobe"),
		logging.String(logging.FieldImpact, "cues and beat grids may be shifted for encoder-padded files"),
	)
	return nil
}

func (e *Exporter) flushOffsets(logger *slog.Logger, offsets OffsetReporter) int {
	if offsets == nil {
		return 0
	}
	failures := offsets.Flush()
	if len(failures) == 0 {
		return 0
	}
	paths := make([]string, 0, len(failures))
	for _, failure := range failures {
		paths = append(paths, failure.Path)
	}
	logging.WarnWithContext(logger, "could not read playback offset", "offset_unavailable",
		logging.Int("files", len(failures)),
		logging.String("paths", strings.Join(paths, ", ")),
		logging.Error(failures[0].Err),
		logging.String(logging.FieldErrorHint, "check that ffprobe can read these files"),
		logging.String(logging.FieldImpact, "cues and beat grids of these tracks were not offset"),
	)
	return len(failures)
}

func (e *Exporter) writeDocument(ctx context.Context, doc *rekordbox.Document) error {
	path := e.cfg.Export.OutputPath
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: held by another process", path)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
