package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// LeaderboardCache caches rendered leaderboard responses in Redis so the hot
// top-N query doesn't hit Postgres on every request. Entries expire on a
// short TTL, a stale ranking for a few seconds is acceptable.
type LeaderboardCache struct {
	inner *redis.Client
	ttl   time.Duration
}

const LeaderboardCacheTTL = 60 * time.Second

var ctx = context.Background()

func GetLeaderboardCache() *LeaderboardCache {
	return &LeaderboardCache{
		inner: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
			Password: os.Getenv("REDIS_PASSWD"),
			DB:       0, // use default DB
		}),
		ttl: LeaderboardCacheTTL,
	}
}

func leaderboardKey(limit int) string {
	return fmt.Sprintf("leaderboard__%d", limit)
}

// GetLeaderboard returns the cached payload for the given limit, or ok=false
// on miss or any Redis error. Cache failures are never fatal to the caller.
func (c *LeaderboardCache) GetLeaderboard(limit int) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	res, err := c.inner.Get(ctx, leaderboardKey(limit)).Bytes()
	if err != nil {
		return nil, false
	}
	return res, true
}

// SetLeaderboard stores the rendered payload for the given limit. Errors are
// swallowed, the cache is best effort.
func (c *LeaderboardCache) SetLeaderboard(limit int, payload []byte) {
	if c == nil {
		return
	}
	c.inner.Set(ctx, leaderboardKey(limit), payload, c.ttl)
}

// InvalidateLeaderboard drops every cached leaderboard page. Called after a
// sync run lands fresh points.
func (c *LeaderboardCache) InvalidateLeaderboard() {
	if c == nil {
		return
	}
	keys, err := c.inner.Keys(ctx, "leaderboard__*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	c.inner.Del(ctx, keys...)
}
