// Package offset reports the playback start offset of audio files.
//
// Encoders such as LAME prepend priming samples that some players skip and
// others do not. The Detector asks ffprobe for the first audio stream's
// start_time so cue and beat positions can be shifted to match. Lookup
// failures never stop an export: they are recorded, a zero offset is used,
// and Flush hands the recorded failures to the caller once per collection.
package offset
