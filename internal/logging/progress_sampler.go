package logging

import "strings"

// ProgressSampler suppresses repetitive per-track progress logs while keeping
// a line whenever the collection changes or the completion percentage crosses
// a bucket boundary.
type ProgressSampler struct {
	bucketSize     float64
	lastCollection string
	lastBucket     int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 10%) or when the collection changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether progress for done/total items should be logged.
// The final item of a collection always logs.
func (s *ProgressSampler) ShouldLog(collection string, done, total int) bool {
	if s == nil {
		return true
	}
	collection = strings.TrimSpace(collection)
	emit := false
	if collection != s.lastCollection {
		s.lastCollection = collection
		s.lastBucket = -1
		emit = true
	}
	if total <= 0 {
		return emit
	}
	if done >= total {
		s.lastBucket = int(100 / s.bucketSize)
		return true
	}
	percent := float64(done) * 100 / float64(total)
	bucket := int(percent / s.bucketSize)
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		emit = true
	}
	return emit
}

// Reset clears the sampler state (e.g. when a new run starts).
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastCollection = ""
	s.lastBucket = -1
}
