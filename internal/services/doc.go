// Package services defines shared utilities consumed by the export stages and
// their external collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, collection names, and track
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     recoverable per-track conditions (lookup misses, malformed beat grids)
//     or fatal ones (unknown keys, transcode failures, configuration errors).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
