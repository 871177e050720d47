// Package preflight provides readiness checks for the files, directories,
// and tools an export depends on.
//
// These checks run in two contexts:
//   - The export command calls RunAll before opening the library. If any
//     check fails the run stops before a single track is copied.
//   - The CLI "mixport check" command renders every result, including the
//     versions reported by ffmpeg and ffprobe.
//
// Checks for optional features are skipped when the feature is not configured.
package preflight
