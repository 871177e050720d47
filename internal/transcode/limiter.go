package transcode

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds concurrent transcodes. Every successful Acquire must be
// paired with exactly one Release.
type Limiter interface {
	Acquire(ctx context.Context) error
	Release()
}

// DefaultLimit is half the CPU count, never less than one.
func DefaultLimit() int {
	return max(1, runtime.NumCPU()/2)
}

type weightedLimiter struct {
	sem *semaphore.Weighted
}

// NewLimiter returns a Limiter with n slots. n < 1 uses DefaultLimit.
func NewLimiter(n int) Limiter {
	if n < 1 {
		n = DefaultLimit()
	}
	return &weightedLimiter{sem: semaphore.NewWeighted(int64(n))}
}

func (l *weightedLimiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l *weightedLimiter) Release() {
	l.sem.Release(1)
}
