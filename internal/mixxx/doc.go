// Package mixxx reads tracks, hot cues, playlists, and crates from a Mixxx
// library database.
//
// The database is opened read-only through modernc.org/sqlite so an export
// can run while Mixxx itself is open. Source owns the pool; each extraction
// worker takes its own Session, a dedicated connection, which satisfies
// track.Lookup. Reads that hit SQLITE_BUSY are retried with backoff.
package mixxx
