package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Counter is the subset of Client a Limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Decision is the outcome of one Limiter check.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// Limiter counts requests per key in fixed windows.
type Limiter struct {
	counter Counter
	limit   int64
	window  time.Duration
	prefix  string
	now     func() time.Time
}

// NewLimiter allows limit requests per key in each window.
func NewLimiter(counter Counter, prefix string, limit int, window time.Duration) *Limiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &Limiter{counter: counter, limit: int64(limit), window: window, prefix: prefix, now: time.Now}
}

// Allow records one request for key and reports whether it fits the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := Key(l.prefix, key)

	count, err := l.counter.Incr(ctx, redisKey)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if count == 1 {
		if err := l.counter.Expire(ctx, redisKey, l.window); err != nil {
			log.Warn().Err(err).Str("key", redisKey).Msg("failed to set rate limit window")
		}
	}

	ttl, err := l.counter.TTL(ctx, redisKey)
	if err != nil || ttl < 0 {
		// A key without expiry would never reset.
		if err == nil {
			_ = l.counter.Expire(ctx, redisKey, l.window)
		}
		ttl = l.window
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   l.now().Add(ttl),
	}, nil
}
