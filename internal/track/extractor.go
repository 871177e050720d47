package track

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mixport/internal/beatgrid"
	"mixport/internal/cues"
	"mixport/internal/keys"
	"mixport/internal/logging"
	"mixport/internal/services"
)

// Options configures an Extractor.
type Options struct {
	Notation keys.Notation
	// Relocator is nil when tracks keep their original location.
	Relocator Relocator
	// Offsets is nil when no offset correction is wanted.
	Offsets OffsetSource
	// Formats is consulted when a row lacks its sample rate or channel
	// count. It may be nil.
	Formats FormatSource
	Logger  *slog.Logger
}

// Extractor builds ExportedTracks. It holds no per-track state and is safe
// for concurrent use as long as its collaborators are.
type Extractor struct {
	notation  keys.Notation
	relocator Relocator
	offsets   OffsetSource
	formats   FormatSource
	logger    *slog.Logger
}

// NewExtractor constructs an Extractor. An empty notation means Lancelot.
func NewExtractor(opts Options) *Extractor {
	notation := opts.Notation
	if notation == "" {
		notation = keys.Lancelot
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{
		notation:  notation,
		relocator: opts.Relocator,
		offsets:   opts.Offsets,
		formats:   opts.Formats,
		logger:    logging.NewComponentLogger(logger, "extract"),
	}
}

// Extract produces the track for id. It returns (nil, nil) when the id has
// no library row. A malformed beat payload drops the grid for this track
// only. Any other failure is returned and should stop the collection; the
// caller adds the track id.
func (e *Extractor) Extract(ctx context.Context, lookup Lookup, id int64) (*ExportedTrack, error) {
	ctx = services.WithTrackID(ctx, id)
	logger := logging.WithContext(ctx, e.logger)

	ctx = services.WithStage(ctx, "fetch")
	row, err := lookup.Track(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrLookupMiss) {
			logger.Debug("track not found, skipping",
				logging.String(logging.FieldEventType, "track_skipped"),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("fetch: %w", err)
	}
	rawCues, err := lookup.Cues(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch cues: %w", err)
	}

	row = e.fillStreamFormat(ctx, logger, row)
	grid := e.decodeGrid(logger, row)

	location := row.Location
	probePath := row.Location
	if e.relocator != nil {
		ctx = services.WithStage(ctx, "relocate")
		relocated, err := e.relocator.Relocate(ctx, row.Location)
		if err != nil {
			return nil, err
		}
		location = relocated.Location
		probePath = relocated.Path
	}

	key, err := keys.Resolve(row.KeyID, e.notation)
	if err != nil {
		return nil, err
	}

	points := make([]cues.CuePoint, 0, len(rawCues))
	for ordinal, raw := range rawCues {
		points = append(points, cues.Normalize(raw, row.SampleRate, row.Channels, ordinal))
	}

	trackCtx := Context{
		ID:         id,
		Title:      row.Title,
		Artist:     row.Artist,
		Album:      row.Album,
		Genre:      row.Genre,
		Duration:   int(row.Duration),
		SampleRate: row.SampleRate,
		Channels:   row.Channels,
		BPM:        row.BPM,
		Key:        key,
		Rating:     QuantizeRating(row.Rating),
		Colour:     cues.Colour(row.Colour & 0xffffff),
		HasColour:  row.HasColour,
		Location:   location,
	}

	offset := 0.0
	if e.offsets != nil {
		offset = e.offsets.OffsetSeconds(services.WithStage(ctx, "offset"), probePath)
	}
	// A lookup cut short by cancellation reports 0; that track must not
	// leave here uncorrected.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewPending(trackCtx, grid, points).Finalize(offset)
}

func (e *Extractor) fillStreamFormat(ctx context.Context, logger *slog.Logger, row Row) Row {
	if e.formats == nil || (row.SampleRate > 0 && row.Channels > 0) {
		return row
	}
	sampleRate, channels, err := e.formats.StreamFormat(services.WithStage(ctx, "probe"), row.Location)
	if err != nil {
		if ctx.Err() == nil {
			logging.WarnWithContext(logger, "stream format unknown, cue positions may be wrong", "stream_format_unknown",
				logging.String("path", row.Location),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "analyse the track in Mixxx"),
				logging.String(logging.FieldImpact, "cues exported at zero and beat grid dropped"),
			)
		}
		return row
	}
	if row.SampleRate <= 0 {
		row.SampleRate = sampleRate
	}
	if row.Channels <= 0 {
		row.Channels = channels
	}
	return row
}

func (e *Extractor) decodeGrid(logger *slog.Logger, row Row) *beatgrid.Info {
	if len(row.Beats) == 0 {
		return nil
	}
	format, err := beatgrid.ParseFormat(row.BeatsVersion)
	if err == nil {
		var info beatgrid.Info
		if info, err = beatgrid.Decode(row.Beats, format, row.SampleRate); err == nil {
			return &info
		}
	}
	logging.WarnWithContext(logger, "beat grid unreadable, exporting without tempo marker", "beatgrid_skipped",
		logging.String("beats_version", row.BeatsVersion),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "re-analyse the track in Mixxx to rebuild its beats"),
		logging.String(logging.FieldImpact, "track exported without beat grid"),
	)
	return nil
}
