// Package rate implements fixed-window request limiters.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Result is the outcome of one hit.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// Limiter counts a hit against key and reports whether it fits the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// window is the fixed window [start, end) containing one instant.
type window struct {
	start time.Time
	end   time.Time
}

func windowAt(now time.Time, size time.Duration) window {
	start := now.UTC().Truncate(size)
	return window{start: start, end: start.Add(size)}
}

// bucket is the counter name of key inside w.
func (w window) bucket(prefix, key string) string {
	return fmt.Sprintf("%s%s:%d", prefix, strings.ReplaceAll(key, " ", "_"), w.start.Unix())
}

// decide turns the hit count of a window into a Result. ttl is what is left
// of the window.
func decide(max, hits int64, ttl time.Duration) Result {
	res := Result{
		Allowed:     hits <= max,
		Remaining:   max - hits,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res
}
