package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/mockmatch/internal/config"
)

const defaultQuotaTTL = 24 * time.Hour

// RedisCache backs the engine's quota count cache and publishes match
// notifications. Every engine-facing method swallows Redis failures after
// logging them; the relational store stays the source of truth.
type RedisCache struct {
	Client *redis.Client

	channel  string
	quotaTTL time.Duration
	log      *slog.Logger
}

// MatchEvent is the payload published when two users match.
type MatchEvent struct {
	UserA     uint64    `json:"user_a"`
	UserB     uint64    `json:"user_b"`
	MatchedAt time.Time `json:"matched_at"`
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config, log *slog.Logger) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	ttl := defaultQuotaTTL
	if cfg.Redis.QuotaCacheTTLH > 0 {
		ttl = time.Duration(cfg.Redis.QuotaCacheTTLH) * time.Hour
	}
	return &RedisCache{
		Client:   redis.NewClient(opts),
		channel:  cfg.Redis.MatchChannel,
		quotaTTL: ttl,
		log:      log.With("component", "redis"),
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForViewCount generates the Redis key for a user's view count on day.
func (c *RedisCache) KeyForViewCount(userID uint64, day string) string {
	return fmt.Sprintf("quota:views:%d:%s", userID, day)
}

// ViewCount returns the cached count; ok is false on a miss or any failure.
func (c *RedisCache) ViewCount(ctx context.Context, userID uint64, day string) (int64, bool) {
	key := c.KeyForViewCount(userID, day)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false // cache miss
	} else if err != nil {
		c.log.Warn("read view count", "key", key, "err", err)
		return 0, false
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		c.log.Warn("corrupt view count, dropping", "key", key, "value", val)
		_ = c.Client.Del(ctx, key).Err()
		return 0, false
	}
	return n, true
}

// raiseScript stores ARGV[1] with a TTL of ARGV[2] seconds unless the key
// already holds a number at least as large.
var raiseScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	cur = tonumber(cur)
end
if cur and cur >= tonumber(ARGV[1]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
return 1
`)

// RaiseViewCount caches n until the configured TTL runs out, unless a
// count at least as large is already cached.
func (c *RedisCache) RaiseViewCount(ctx context.Context, userID uint64, day string, n int64) {
	key := c.KeyForViewCount(userID, day)
	ttl := int64(c.quotaTTL / time.Second)
	if err := raiseScript.Run(ctx, c.Client, []string{key}, n, ttl).Err(); err != nil {
		c.log.Warn("write view count", "key", key, "err", err)
	}
}

// InvalidateViewCount drops the cached count.
func (c *RedisCache) InvalidateViewCount(ctx context.Context, userID uint64, day string) {
	key := c.KeyForViewCount(userID, day)
	if err := c.Client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("invalidate view count", "key", key, "err", err)
	}
}

// NotifyMatch publishes a MatchEvent on the match channel. With no channel
// configured it does nothing.
func (c *RedisCache) NotifyMatch(ctx context.Context, a, b uint64) error {
	if c.channel == "" {
		return nil
	}
	payload, err := json.Marshal(MatchEvent{UserA: a, UserB: b, MatchedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode match event: %w", err)
	}
	if err := c.Client.Publish(ctx, c.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish match event: %w", err)
	}
	return nil
}
