package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Checkout rate limit: 12 requests per client per sliding minute.
const (
	CheckoutRateLimit  = 12
	CheckoutRateWindow = time.Minute
)

// RateLimiter decides whether a keyed request is allowed under a sliding
// window. Failing open on backend errors is the caller's choice.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

var rateLimiterInstance RateLimiter

// InitRateLimiter initializes the rate limiter. When redisURL is empty the
// limiter is process-local.
func InitRateLimiter(redisURL string) (RateLimiter, error) {
	if redisURL == "" {
		rateLimiterInstance = NewMemoryRateLimiter(CheckoutRateLimit, CheckoutRateWindow)
		return rateLimiterInstance, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	rateLimiterInstance = NewRedisRateLimiter(redis.NewClient(opts), CheckoutRateLimit, CheckoutRateWindow)
	return rateLimiterInstance, nil
}

// GetRateLimiter returns the initialized rate limiter instance.
func GetRateLimiter() RateLimiter {
	return rateLimiterInstance
}

// SetRateLimiter sets the rate limiter instance (primarily for testing)
func SetRateLimiter(limiter RateLimiter) {
	rateLimiterInstance = limiter
}

// MemoryRateLimiter is a per-process sliding-window limiter. Suitable for a
// single instance or for tests.
type MemoryRateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.hits[key][:0]
	for _, hit := range l.hits[key] {
		if hit.After(cutoff) {
			kept = append(kept, hit)
		}
	}

	if len(kept) >= l.limit {
		l.hits[key] = kept
		return false, nil
	}

	l.hits[key] = append(kept, now)
	return true, nil
}

// RedisRateLimiter keeps the sliding window in a Redis sorted set so the
// limit holds across instances.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	redisKey := "ratelimit:" + key
	member := fmt.Sprintf("%d-%d", now.UnixNano(), now.UnixNano()%997)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", now.Add(-l.window).UnixMilli()))
	count := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	pipe.Expire(ctx, redisKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		log.WithError(err).Warn("Rate limit backend error")
		return false, err
	}

	if count.Val() >= int64(l.limit) {
		// Over the limit; drop the member we just added so rejected requests
		// do not extend the window.
		l.client.ZRem(ctx, redisKey, member)
		return false, nil
	}

	return true, nil
}
