package rate

import (
	"context"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// RedisLimiter keeps its counters in Redis so every replica shares one budget.
type RedisLimiter struct {
	client rdb.Cmdable
	prefix string
	max    int64
	size   time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rdb.Cmdable, prefix string, max int, size time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		max:    int64(max),
		size:   size,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	w := windowAt(now, l.size)
	k := w.bucket(l.prefix, key)

	// Every hit pins the same absolute expiry, so the counter dies with its
	// window even when the first INCR raced another replica.
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireAt(ctx, k, w.end)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate: redis: %w", err)
	}
	return decide(l.max, incr.Val(), w.end.Sub(now)), nil
}
