package testsupport

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"mixport/internal/mixxx"
	"mixport/internal/track"
)

const mixxxSchema = `
CREATE TABLE track_locations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    location VARCHAR(512) UNIQUE,
    filename VARCHAR(512),
    directory VARCHAR(512),
    filesize INTEGER,
    fs_deleted INTEGER,
    needs_verification INTEGER
);
CREATE TABLE library (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    artist VARCHAR(64),
    title VARCHAR(64),
    album VARCHAR(64),
    genre VARCHAR(64),
    duration INTEGER,
    location INTEGER REFERENCES track_locations(location),
    samplerate INTEGER,
    channels INTEGER,
    bpm FLOAT,
    key_id INTEGER DEFAULT 0,
    rating INTEGER DEFAULT 0,
    color INTEGER,
    beats BLOB,
    beats_version TEXT,
    mixxx_deleted INTEGER DEFAULT 0
);
CREATE TABLE cues (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    track_id INTEGER NOT NULL REFERENCES library(id),
    type INTEGER DEFAULT 0 NOT NULL,
    position INTEGER DEFAULT -1 NOT NULL,
    length INTEGER DEFAULT 0 NOT NULL,
    hotcue INTEGER DEFAULT -1 NOT NULL,
    label TEXT DEFAULT '' NOT NULL,
    color INTEGER DEFAULT 4294901760 NOT NULL
);
CREATE TABLE Playlists (
    id INTEGER PRIMARY KEY,
    name VARCHAR(48),
    position INTEGER,
    hidden INTEGER DEFAULT 0 NOT NULL,
    date_created DATETIME,
    date_modified DATETIME,
    locked INTEGER DEFAULT 0
);
CREATE TABLE PlaylistTracks (
    id INTEGER PRIMARY KEY,
    playlist_id INTEGER REFERENCES Playlists(id),
    track_id INTEGER REFERENCES library(id),
    position INTEGER,
    pl_datetime_added
);
CREATE TABLE crates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR(48) UNIQUE NOT NULL,
    count INTEGER DEFAULT 0,
    show INTEGER DEFAULT 1,
    locked INTEGER DEFAULT 0,
    autodj_source INTEGER DEFAULT 0
);
CREATE TABLE crate_tracks (
    crate_id INTEGER NOT NULL REFERENCES crates(id),
    track_id INTEGER NOT NULL REFERENCES library(id),
    UNIQUE (crate_id, track_id)
);`

// MixxxLibrary builds a Mixxx database fixture with the tables mixport reads.
type MixxxLibrary struct {
	t    testing.TB
	db   *sql.DB
	Path string
}

// NewMixxxLibrary creates an empty library in a temp directory. The writable
// handle is closed automatically at the end of the test.
func NewMixxxLibrary(t testing.TB) *MixxxLibrary {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mixxxdb.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if _, err := db.Exec(mixxxSchema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}
	return &MixxxLibrary{t: t, db: db, Path: path}
}

// AddTrack inserts a library row and its location. row.ID must be set.
func (l *MixxxLibrary) AddTrack(row track.Row) {
	l.t.Helper()

	res, err := l.db.Exec(`INSERT INTO track_locations (location, filename) VALUES (?, ?)`,
		row.Location, filepath.Base(row.Location))
	if err != nil {
		l.t.Fatalf("insert track location: %v", err)
	}
	locationID, err := res.LastInsertId()
	if err != nil {
		l.t.Fatalf("location id: %v", err)
	}

	var color any
	if row.HasColour {
		color = row.Colour
	}
	var beats any
	if len(row.Beats) > 0 {
		beats = row.Beats
	}
	_, err = l.db.Exec(`INSERT INTO library (
            id, artist, title, album, genre, duration, location, samplerate, channels,
            bpm, key_id, rating, color, beats, beats_version
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Artist, row.Title, row.Album, row.Genre, row.Duration, locationID,
		row.SampleRate, row.Channels, row.BPM, row.KeyID, row.Rating, color, beats, row.BeatsVersion,
	)
	if err != nil {
		l.t.Fatalf("insert library row %d: %v", row.ID, err)
	}
}

// AddCue inserts a cue. cueType 1 is a hot cue.
func (l *MixxxLibrary) AddCue(trackID int64, cueType, hotcue int, position float64, color int64) {
	l.t.Helper()

	if _, err := l.db.Exec(`INSERT INTO cues (track_id, type, position, hotcue, color) VALUES (?, ?, ?, ?, ?)`,
		trackID, cueType, position, hotcue, color); err != nil {
		l.t.Fatalf("insert cue: %v", err)
	}
}

// AddPlaylist inserts a playlist holding trackIDs in order.
func (l *MixxxLibrary) AddPlaylist(id int64, name string, hidden bool, trackIDs ...int64) {
	l.t.Helper()

	hiddenValue := 0
	if hidden {
		hiddenValue = 1
	}
	if _, err := l.db.Exec(`INSERT INTO Playlists (id, name, hidden) VALUES (?, ?, ?)`, id, name, hiddenValue); err != nil {
		l.t.Fatalf("insert playlist: %v", err)
	}
	// Row ids run backwards so that position order differs from rowid order.
	for i, trackID := range trackIDs {
		if _, err := l.db.Exec(`INSERT INTO PlaylistTracks (id, playlist_id, track_id, position) VALUES (?, ?, ?, ?)`,
			id*1000+int64(len(trackIDs)-i), id, trackID, i+1); err != nil {
			l.t.Fatalf("insert playlist track: %v", err)
		}
	}
}

// AddCrate inserts a crate holding trackIDs.
func (l *MixxxLibrary) AddCrate(id int64, name string, show bool, trackIDs ...int64) {
	l.t.Helper()

	showValue := 0
	if show {
		showValue = 1
	}
	if _, err := l.db.Exec(`INSERT INTO crates (id, name, show) VALUES (?, ?, ?)`, id, name, showValue); err != nil {
		l.t.Fatalf("insert crate: %v", err)
	}
	for _, trackID := range trackIDs {
		if _, err := l.db.Exec(`INSERT INTO crate_tracks (crate_id, track_id) VALUES (?, ?)`, id, trackID); err != nil {
			l.t.Fatalf("insert crate track: %v", err)
		}
	}
}

// MustOpenSource opens the fixture read-only through mixxx.Open and registers cleanup.
func MustOpenSource(t testing.TB, path string) *mixxx.Source {
	t.Helper()

	source, err := mixxx.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("mixxx.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = source.Close()
	})
	return source
}

// MustSession reserves a session on source and registers cleanup.
func MustSession(t testing.TB, source *mixxx.Source) *mixxx.Session {
	t.Helper()

	session, err := source.Session(context.Background())
	if err != nil {
		t.Fatalf("source.Session: %v", err)
	}
	t.Cleanup(func() {
		_ = session.Close()
	})
	return session
}
