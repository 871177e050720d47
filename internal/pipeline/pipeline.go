package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mixport/internal/logging"
	"mixport/internal/services"
	"mixport/internal/track"
)

// Session is one worker's handle on the library.
type Session interface {
	track.Lookup
	Close() error
}

// Opener hands out sessions, one per worker.
type Opener interface {
	Session(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Session, error)

// Session calls f.
func (f OpenerFunc) Session(ctx context.Context) (Session, error) {
	return f(ctx)
}

// Extractor turns a track id into an exported track, or nil for a skip.
type Extractor interface {
	Extract(ctx context.Context, lookup track.Lookup, id int64) (*track.ExportedTrack, error)
}

// ProgressFunc is called once per completed id. Calls are serialized and
// done increases by one each time.
type ProgressFunc func(done, total int)

// Options configures a Pipeline.
type Options struct {
	// Workers is the pool size; values below one use DefaultWorkers(false).
	Workers  int
	Cache    *Cache
	Progress ProgressFunc
	Logger   *slog.Logger
}

// Result is the outcome of one Extract call.
type Result struct {
	// Tracks holds the exported tracks in input order.
	Tracks  []*track.ExportedTrack
	Skipped int
}

// Pipeline runs extractions. A Pipeline may be reused for several
// collections but Extract must not be called concurrently.
type Pipeline struct {
	opener    Opener
	extractor Extractor
	workers   int
	cache     *Cache
	progress  ProgressFunc
	logger    *slog.Logger
}

// DefaultWorkers is the CPU count, halved when files are being transcoded so
// the encoders keep the other half.
func DefaultWorkers(transcoding bool) int {
	n := runtime.NumCPU()
	if transcoding {
		n /= 2
	}
	return max(1, n)
}

// New constructs a Pipeline.
func New(opener Opener, extractor Extractor, opts Options) *Pipeline {
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers(false)
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		opener:    opener,
		extractor: extractor,
		workers:   workers,
		cache:     cache,
		progress:  opts.Progress,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
}

// SetProgress replaces the progress callback for subsequent runs.
func (p *Pipeline) SetProgress(fn ProgressFunc) {
	p.progress = fn
}

// Extract processes ids and returns the exported tracks in input order.
// The first error stops the run and names the track that caused it.
func (p *Pipeline) Extract(ctx context.Context, ids []int64) (Result, error) {
	total := len(ids)
	if total == 0 {
		return Result{}, nil
	}
	logger := logging.WithContext(ctx, p.logger)
	started := time.Now()

	results := make([]*track.ExportedTrack, total)
	jobs := make(chan int)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(jobs)
		for i := range ids {
			select {
			case jobs <- i:
			case <-groupCtx.Done():
				return nil
			}
		}
		return nil
	})

	var (
		progressMu sync.Mutex
		done       int
	)
	completed := func() {
		progressMu.Lock()
		defer progressMu.Unlock()
		done++
		if p.progress != nil {
			p.progress(done, total)
		}
	}

	workers := min(p.workers, total)
	for range workers {
		group.Go(func() error {
			session, err := p.opener.Session(groupCtx)
			if err != nil {
				return fmt.Errorf("open library session: %w", err)
			}
			defer session.Close()

			for i := range jobs {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				exported, err := p.extractOne(groupCtx, session, ids[i])
				if err != nil {
					return fmt.Errorf("track %d: %w", ids[i], err)
				}
				results[i] = exported
				completed()
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	result := Result{Tracks: make([]*track.ExportedTrack, 0, total)}
	for _, exported := range results {
		if exported == nil {
			result.Skipped++
			continue
		}
		result.Tracks = append(result.Tracks, exported)
	}
	logger.Debug("collection extracted",
		logging.Int("tracks", len(result.Tracks)),
		logging.Int("skipped", result.Skipped),
		logging.Int("workers", workers),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (p *Pipeline) extractOne(ctx context.Context, lookup track.Lookup, id int64) (*track.ExportedTrack, error) {
	if cached, ok := p.cache.Load(id); ok {
		return cached, nil
	}
	exported, err := p.extractor.Extract(services.WithTrackID(ctx, id), lookup, id)
	if err != nil {
		return nil, err
	}
	// Work finished after a cancellation may rest on interrupted lookups
	// and must not outlive this run.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.cache.Store(id, exported), nil
}
