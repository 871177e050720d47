package mixxx

const trackQuery = `
SELECT
    l.samplerate,
    l.channels,
    l.duration,
    l.title,
    l.artist,
    l.album,
    l.genre,
    l.bpm,
    l.beats,
    l.beats_version,
    l.key_id,
    l.rating,
    l.color,
    tl.location
FROM library l
INNER JOIN track_locations tl ON tl.id = l.location
WHERE l.id = ?`

const cueQuery = `
SELECT hotcue, position, color
FROM cues
WHERE type = 1 AND hotcue >= 0 AND track_id = ?
ORDER BY hotcue`

var collectionQueries = map[Kind]string{
	Playlists: `SELECT id, name FROM Playlists WHERE hidden = 0 ORDER BY name`,
	Crates:    `SELECT id, name FROM crates WHERE show = 1 ORDER BY name`,
}

var collectionTrackQueries = map[Kind]string{
	Playlists: `SELECT track_id FROM PlaylistTracks WHERE playlist_id = ? ORDER BY position`,
	Crates:    `SELECT track_id FROM crate_tracks WHERE crate_id = ? ORDER BY rowid`,
}
