package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter is the single-process counterpart of RedisLimiter. Counters
// live in a go-cache whose items expire with their window.
type MemoryLimiter struct {
	c    *gocache.Cache
	max  int64
	size time.Duration
	now  func() time.Time
}

func NewMemoryLimiter(max int, size time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:    gocache.New(size, time.Minute),
		max:  int64(max),
		size: size,
		now:  time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	now := l.now()
	w := windowAt(now, l.size)
	k := w.bucket("", key)
	ttl := w.end.Sub(now)

	// Add is a no-op when the window is already open.
	_ = l.c.Add(k, int64(0), ttl)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// expired between Add and Increment: this hit opens a new window
		l.c.Set(k, int64(1), ttl)
		hits = 1
	}
	return decide(l.max, hits, ttl), nil
}
