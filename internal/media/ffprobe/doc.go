// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties (codec, sample rate, start time)
//   - Format: container-level metadata (duration, size, bitrate, start time)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result locate the primary audio stream and parse the
// numeric strings ffprobe reports.
package ffprobe
