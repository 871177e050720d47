package export

import "time"

// Status is the outcome of one collection.
type Status string

const (
	StatusExported Status = "exported"
	StatusDeclined Status = "declined"
	StatusFailed   Status = "failed"
)

// CollectionSummary reports one collection of a run.
type CollectionSummary struct {
	Name     string
	Tracks   int
	Skipped  int
	Status   Status
	Err      error
	Elapsed  time.Duration
	Warnings int
}

// Summary reports a whole run.
type Summary struct {
	Collections []CollectionSummary
	// Tracks is the number of distinct tracks written.
	Tracks     int
	OutputPath string
	// Written is false when the run stopped before the document was saved.
	Written bool
	Elapsed time.Duration
}

// Failed returns the collections that did not export.
func (s Summary) Failed() []CollectionSummary {
	var failed []CollectionSummary
	for _, c := range s.Collections {
		if c.Status == StatusFailed {
			failed = append(failed, c)
		}
	}
	return failed
}

// Exported counts the collections written to the document.
func (s Summary) Exported() int {
	n := 0
	for _, c := range s.Collections {
		if c.Status == StatusExported {
			n++
		}
	}
	return n
}
