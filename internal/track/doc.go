// Package track turns one Mixxx library row into an ExportedTrack.
//
// An Extractor fetches the row and its hot cues through a Lookup, decodes the
// beat payload, optionally relocates the audio file, resolves the key and
// rating, and normalizes every cue. The result is held as a Pending record
// until the file's playback offset is known; Pending.Finalize applies that
// offset to the beat grid and the cues and can only succeed once.
package track
