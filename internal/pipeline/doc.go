// Package pipeline extracts the tracks of one collection on a fixed pool of
// workers.
//
// Each worker owns its own library session for the duration of a run. The
// first fatal error cancels the remaining work; missing tracks are skipped.
// Results come back in input order regardless of which worker produced them,
// and a Cache shared across runs keeps a track that appears in several
// collections from being extracted (and relocated) more than once.
package pipeline
