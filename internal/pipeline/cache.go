package pipeline

import (
	"sync"

	"mixport/internal/track"
)

// Cache holds extraction results by track id. A nil track marks an id that
// was skipped. The first stored result for an id wins.
type Cache struct {
	entries sync.Map // int64 -> *track.ExportedTrack
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Load returns the cached result for id.
func (c *Cache) Load(id int64) (*track.ExportedTrack, bool) {
	value, ok := c.entries.Load(id)
	if !ok {
		return nil, false
	}
	return value.(*track.ExportedTrack), true
}

// Store records t for id unless a result is already present, and returns
// the result that is cached afterwards.
func (c *Cache) Store(id int64, t *track.ExportedTrack) *track.ExportedTrack {
	actual, _ := c.entries.LoadOrStore(id, t)
	return actual.(*track.ExportedTrack)
}

// Len reports the number of cached ids.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
