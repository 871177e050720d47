// Package export drives a complete Mixxx to Rekordbox run.
//
// An Exporter lists the configured collections, asks a Confirmer which of
// them to include, extracts each accepted collection through the worker
// pipeline, and writes a single Rekordbox XML document. A collection that
// fails is left out of the document and reported; the others still export.
package export
