package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func newLimiters(t *testing.T) map[string]func(*clock) RateLimiter {
	client := setupTestRedis(t)
	return map[string]func(*clock) RateLimiter{
		"redis": func(c *clock) RateLimiter {
			l := NewRedisRateLimiter(client)
			l.now = c.now
			return l
		},
		"memory": func(c *clock) RateLimiter {
			l := NewMemoryRateLimiter()
			l.now = c.now
			return l
		},
	}
}

func TestRateLimiter_PerMinute(t *testing.T) {
	for name, build := range newLimiters(t) {
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
			l := build(c)
			ctx := context.Background()
			limits := Limits{PerMinute: 3}

			for i := 0; i < 3; i++ {
				c.t = c.t.Add(time.Second)
				ok, err := l.Allow(ctx, name+"-minute", limits)
				require.NoError(t, err)
				assert.True(t, ok, "request %d should be allowed", i+1)
			}

			c.t = c.t.Add(time.Second)
			ok, err := l.Allow(ctx, name+"-minute", limits)
			require.NoError(t, err)
			assert.False(t, ok, "4th request should be denied")

			c.t = c.t.Add(2 * time.Minute)
			ok, err = l.Allow(ctx, name+"-minute", limits)
			require.NoError(t, err)
			assert.True(t, ok, "window should have slid past earlier requests")
		})
	}
}

func TestRateLimiter_HourWindowOutlastsMinute(t *testing.T) {
	for name, build := range newLimiters(t) {
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
			l := build(c)
			ctx := context.Background()
			limits := Limits{PerMinute: 10, PerHour: 2}

			for i := 0; i < 2; i++ {
				c.t = c.t.Add(2 * time.Minute)
				ok, err := l.Allow(ctx, name+"-hour", limits)
				require.NoError(t, err)
				assert.True(t, ok)
			}

			c.t = c.t.Add(2 * time.Minute)
			ok, err := l.Allow(ctx, name+"-hour", limits)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	for name, build := range newLimiters(t) {
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
			l := build(c)
			ctx := context.Background()
			limits := Limits{PerMinute: 1}

			c.t = c.t.Add(time.Millisecond)
			ok, _ := l.Allow(ctx, name+"-a", limits)
			assert.True(t, ok)
			c.t = c.t.Add(time.Millisecond)
			ok, _ = l.Allow(ctx, name+"-a", limits)
			assert.False(t, ok)
			c.t = c.t.Add(time.Millisecond)
			ok, _ = l.Allow(ctx, name+"-b", limits)
			assert.True(t, ok)
		})
	}
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	client := setupTestRedis(t)
	l := NewRedisRateLimiter(client)
	ctx := context.Background()
	limits := Limits{PerMinute: 1}

	ok, err := l.Allow(ctx, "reset", limits)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Reset(ctx, "reset"))

	ok, err = l.Allow(ctx, "reset", limits)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimits_Enabled(t *testing.T) {
	assert.False(t, Limits{}.Enabled())
	assert.True(t, Limits{PerHour: 1}.Enabled())
}
