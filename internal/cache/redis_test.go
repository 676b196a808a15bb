package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/mockmatch/internal/cache"
	"github.com/oggyb/mockmatch/internal/config"
	"github.com/oggyb/mockmatch/internal/logger"
	"github.com/oggyb/mockmatch/internal/match"
	"github.com/oggyb/mockmatch/internal/testutil"
)

// RedisCache must satisfy the engine's collaborator contracts.
var (
	_ match.QuotaCache = (*cache.RedisCache)(nil)
	_ match.Notifier   = (*cache.RedisCache)(nil)
)

func newCache(t *testing.T, channel string) (*cache.RedisCache, func() []string) {
	t.Helper()
	mr := testutil.StartRedis(t)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.MatchChannel = channel
	cfg.Redis.QuotaCacheTTLH = 2

	c := cache.NewRedisCache(cfg, logger.Discard())
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.Ping(context.Background()))

	keys := func() []string { return mr.Keys() }
	return c, keys
}

func TestViewCount_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, keys := newCache(t, "")

	_, ok := c.ViewCount(ctx, 7, "2024-01-01")
	assert.False(t, ok)

	c.RaiseViewCount(ctx, 7, "2024-01-01", 3)
	n, ok := c.ViewCount(ctx, 7, "2024-01-01")
	assert.True(t, ok)
	assert.EqualValues(t, 3, n)
	assert.Equal(t, []string{"quota:views:7:2024-01-01"}, keys())

	ttl, err := c.Client.TTL(ctx, c.KeyForViewCount(7, "2024-01-01")).Result()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, ttl)

	c.InvalidateViewCount(ctx, 7, "2024-01-01")
	_, ok = c.ViewCount(ctx, 7, "2024-01-01")
	assert.False(t, ok)
}

func TestRaiseViewCount_NeverLowers(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, "")

	c.RaiseViewCount(ctx, 7, "2024-01-01", 2)
	// a reader that counted before the last view committed
	c.RaiseViewCount(ctx, 7, "2024-01-01", 1)

	n, ok := c.ViewCount(ctx, 7, "2024-01-01")
	require.True(t, ok)
	assert.EqualValues(t, 2, n)

	c.RaiseViewCount(ctx, 7, "2024-01-01", 3)
	n, _ = c.ViewCount(ctx, 7, "2024-01-01")
	assert.EqualValues(t, 3, n)
}

func TestRaiseViewCount_ReplacesCorruptValue(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, "")

	require.NoError(t, c.Client.Set(ctx, c.KeyForViewCount(1, "2024-01-01"), "nope", 0).Err())
	c.RaiseViewCount(ctx, 1, "2024-01-01", 4)

	n, ok := c.ViewCount(ctx, 1, "2024-01-01")
	require.True(t, ok)
	assert.EqualValues(t, 4, n)
}

func TestViewCount_CorruptValueIsAMiss(t *testing.T) {
	ctx := context.Background()
	c, keys := newCache(t, "")

	require.NoError(t, c.Client.Set(ctx, c.KeyForViewCount(1, "2024-01-01"), "nope", 0).Err())
	_, ok := c.ViewCount(ctx, 1, "2024-01-01")
	assert.False(t, ok)
	assert.Empty(t, keys())
}

func TestViewCount_RedisDown(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, "matches")
	require.NoError(t, c.Close())

	_, ok := c.ViewCount(ctx, 1, "2024-01-01")
	assert.False(t, ok)
	// best effort writes do not panic or block
	c.RaiseViewCount(ctx, 1, "2024-01-01", 1)
	c.InvalidateViewCount(ctx, 1, "2024-01-01")

	assert.Error(t, c.NotifyMatch(ctx, 1, 2))
}

func TestNotifyMatch_Publishes(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, "matches")

	sub := c.Client.Subscribe(ctx, "matches")
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, c.NotifyMatch(ctx, 3, 9))

	select {
	case msg := <-sub.Channel():
		var ev cache.MatchEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, uint64(3), ev.UserA)
		assert.Equal(t, uint64(9), ev.UserB)
		assert.False(t, ev.MatchedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("match event not delivered")
	}
}

func TestNotifyMatch_NoChannel(t *testing.T) {
	c, _ := newCache(t, "")
	assert.NoError(t, c.NotifyMatch(context.Background(), 1, 2))
}
