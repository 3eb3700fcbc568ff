package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/orrisdesk/internal/shared/config"
)

// releaseScript deletes the key only while it still holds this owner's token.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisGuard is a set-if-absent key with a TTL. It serves as the panel open
// cooldown and as the sweep lock shared by every process.
type RedisGuard struct {
	client *redis.Client
	owner  string
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client, owner: uuid.NewString()}
}

// Acquire returns true when the key was free and is now held for ttl.
func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := g.client.SetNX(ctx, key, g.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire %s: %w", key, err)
	}
	return acquired, nil
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, g.client, []string{key}, g.owner).Err(); err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	return nil
}

// Remaining reports how long key stays held; zero when it is free.
func (g *RedisGuard) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := g.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read ttl of %s: %w", key, err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// NewRedisClient connects and pings the configured redis.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetAddr(), err)
	}
	return client, nil
}
