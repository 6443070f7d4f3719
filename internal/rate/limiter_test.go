package rate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *rdb.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	_, client := newRedis(t)
	l := NewRedisLimiter(client, "test:", 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "login:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d", i)
		assert.Equal(t, int64(3-i), res.Remaining)
		assert.Equal(t, int64(i), res.CurrentHits)
	}

	res, err := l.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)

	other, err := l.Allow(ctx, "login:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")
}

func TestRedisLimiterSetsExpiry(t *testing.T) {
	mr, client := newRedis(t)
	l := NewRedisLimiter(client, "", 10, time.Minute)

	_, err := l.Allow(context.Background(), "api key")
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "rl:api_key:")
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestRedisLimiterPinsWindowEnd(t *testing.T) {
	mr, client := newRedis(t)
	now := time.Date(2024, 3, 1, 12, 0, 10, 0, time.UTC)
	mr.SetTime(now)
	l := NewRedisLimiter(client, "t:", 1, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	res, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 50*time.Second, res.WindowTTL)

	key := fmt.Sprintf("t:k:%d", now.Truncate(time.Minute).Unix())
	assert.Equal(t, 50*time.Second, mr.TTL(key))

	// a later hit keeps the same absolute expiry
	now = now.Add(20 * time.Second)
	mr.SetTime(now)
	res, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30*time.Second, res.RetryAfter)
	assert.Equal(t, 30*time.Second, mr.TTL(key))
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		hits    int64
		allowed bool
		remain  int64
		retry   time.Duration
	}{
		{"under", 1, true, 2, 0},
		{"at budget", 3, true, 0, 0},
		{"over", 5, false, 0, 40 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := decide(3, tt.hits, 40*time.Second)
			assert.Equal(t, tt.allowed, res.Allowed)
			assert.Equal(t, tt.remain, res.Remaining)
			assert.Equal(t, tt.retry, res.RetryAfter)
			assert.Equal(t, tt.hits, res.CurrentHits)
		})
	}
}

func TestWindowAt(t *testing.T) {
	w := windowAt(time.Date(2024, 3, 1, 12, 7, 59, 0, time.UTC), 5*time.Minute)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC), w.start)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 10, 0, 0, time.UTC), w.end)
	assert.Equal(t, fmt.Sprintf("p:a_b:%d", w.start.Unix()), w.bucket("p:", "a b"))
}

func TestRedisLimiterUnavailable(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	_, err := NewRedisLimiter(client, "", 1, time.Minute).Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	now := time.Date(2024, 3, 1, 12, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 50*time.Second, res.RetryAfter)

	// next window
	now = now.Add(time.Minute)
	res, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.CurrentHits)
}

func TestMemoryLimiterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryLimiter(1, time.Minute).Allow(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
