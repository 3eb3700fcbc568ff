package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "orrisdesk:ratelimit:"

// RedisRateLimiter keeps one sorted set of request timestamps per key and
// window, shared by every process.
type RedisRateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, now: time.Now}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limits Limits) (bool, error) {
	now := l.now()
	for _, w := range limits.windows() {
		if w.limit <= 0 {
			continue
		}
		allowed, err := l.checkWindow(ctx, key, w, now)
		if err != nil {
			return false, err
		}
		if !allowed {
			return false, nil
		}
	}
	return true, nil
}

func (l *RedisRateLimiter) checkWindow(ctx context.Context, key string, w window, now time.Time) (bool, error) {
	redisKey := l.getKey(key, w.duration)
	windowStart := now.Add(-w.duration).UnixNano()
	nowNano := now.UnixNano()

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	zcard := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowNano), Member: nowNano})
	pipe.Expire(ctx, redisKey, w.duration+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}
	return zcard.Val() < int64(w.limit), nil
}

// Reset forgets every window of key.
func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	iter := l.client.Scan(ctx, 0, keyPrefix+key+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := l.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}
	return nil
}

func (l *RedisRateLimiter) getKey(identifier string, window time.Duration) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, identifier, window.String())
}
