package mixxx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mixport/internal/cues"
	"mixport/internal/services"
	"mixport/internal/track"
)

// Kind selects where collections come from.
type Kind string

const (
	Playlists Kind = "playlists"
	Crates    Kind = "crates"
)

// ParseKind converts a configuration value into a Kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case Playlists:
		return Playlists, nil
	case Crates:
		return Crates, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "mixxx", "parse kind",
			fmt.Sprintf("unknown collection type %q", value), nil)
	}
}

// Collection is a playlist or crate.
type Collection struct {
	ID   int64
	Name string
}

// Session is a single connection to the library. It is not safe for
// concurrent use; give every worker its own.
type Session struct {
	conn *sql.Conn
}

// Close returns the connection to the pool.
func (s *Session) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Track fetches the library row for id.
func (s *Session) Track(ctx context.Context, id int64) (track.Row, error) {
	var row track.Row
	err := retryOnBusy(ctx, func() error {
		var scanErr error
		row, scanErr = scanTrack(s.conn.QueryRowContext(ctx, trackQuery, id))
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return track.Row{}, services.Wrap(services.ErrLookupMiss, "mixxx", "track", fmt.Sprintf("track %d not in library", id), nil)
	}
	if err != nil {
		return track.Row{}, fmt.Errorf("get track %d: %w", id, err)
	}
	row.ID = id
	return row, nil
}

// Cues returns the hot cues of a track ordered by slot.
func (s *Session) Cues(ctx context.Context, id int64) ([]cues.Raw, error) {
	var raws []cues.Raw
	err := retryOnBusy(ctx, func() error {
		raws = raws[:0]
		rows, err := s.conn.QueryContext(ctx, cueQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				hotcue   int64
				position sql.NullFloat64
				color    sql.NullInt64
			)
			if err := rows.Scan(&hotcue, &position, &color); err != nil {
				return err
			}
			raws = append(raws, cues.Raw{
				Index:    int(hotcue),
				Position: position.Float64,
				Colour:   color.Int64,
			})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list cues for track %d: %w", id, err)
	}
	return raws, nil
}

// Collections lists the visible playlists or crates ordered by name.
func (s *Session) Collections(ctx context.Context, kind Kind) ([]Collection, error) {
	query, ok := collectionQueries[kind]
	if !ok {
		return nil, fmt.Errorf("list collections: unknown kind %q", kind)
	}
	var collections []Collection
	err := retryOnBusy(ctx, func() error {
		collections = collections[:0]
		rows, err := s.conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				c    Collection
				name sql.NullString
			)
			if err := rows.Scan(&c.ID, &name); err != nil {
				return err
			}
			c.Name = name.String
			collections = append(collections, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return collections, nil
}

// CollectionTracks returns the track ids of a collection in display order.
func (s *Session) CollectionTracks(ctx context.Context, kind Kind, id int64) ([]int64, error) {
	query, ok := collectionTrackQueries[kind]
	if !ok {
		return nil, fmt.Errorf("list collection tracks: unknown kind %q", kind)
	}
	var ids []int64
	err := retryOnBusy(ctx, func() error {
		ids = ids[:0]
		rows, err := s.conn.QueryContext(ctx, query, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var trackID int64
			if err := rows.Scan(&trackID); err != nil {
				return err
			}
			ids = append(ids, trackID)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list tracks of %s %d: %w", strings.TrimSuffix(string(kind), "s"), id, err)
	}
	return ids, nil
}

func scanTrack(scanner interface{ Scan(dest ...any) error }) (track.Row, error) {
	var (
		sampleRate   sql.NullFloat64
		channels     sql.NullInt64
		duration     sql.NullFloat64
		title        sql.NullString
		artist       sql.NullString
		album        sql.NullString
		genre        sql.NullString
		bpm          sql.NullFloat64
		beats        []byte
		beatsVersion sql.NullString
		keyID        sql.NullInt64
		rating       sql.NullInt64
		color        sql.NullInt64
		location     sql.NullString
	)
	if err := scanner.Scan(
		&sampleRate,
		&channels,
		&duration,
		&title,
		&artist,
		&album,
		&genre,
		&bpm,
		&beats,
		&beatsVersion,
		&keyID,
		&rating,
		&color,
		&location,
	); err != nil {
		return track.Row{}, err
	}
	return track.Row{
		SampleRate:   sampleRate.Float64,
		Channels:     int(channels.Int64),
		Duration:     duration.Float64,
		Title:        title.String,
		Artist:       artist.String,
		Album:        album.String,
		Genre:        genre.String,
		BPM:          bpm.Float64,
		Beats:        beats,
		BeatsVersion: beatsVersion.String,
		KeyID:        int(keyID.Int64),
		Rating:       int(rating.Int64),
		Colour:       color.Int64,
		HasColour:    color.Valid,
		Location:     location.String,
	}, nil
}
