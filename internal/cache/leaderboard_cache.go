package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache mirrors ledger totals into a Redis ZSET for rank lookups
type LeaderboardCache interface {
	UpdateScore(ctx context.Context, playerID string, score int) error
	GetRank(ctx context.Context, playerID string) (int64, error)
	Remove(ctx context.Context, playerID string) error
}

type leaderboardCache struct {
	client *redis.Client
	key    string
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
		key:    "leaderboard",
	}
}

func (c *leaderboardCache) UpdateScore(ctx context.Context, playerID string, score int) error {
	return c.client.ZAdd(ctx, c.key, redis.Z{
		Score:  float64(score),
		Member: playerID,
	}).Err()
}

func (c *leaderboardCache) GetRank(ctx context.Context, playerID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key, playerID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return rank + 1, nil // 1-indexed
}

func (c *leaderboardCache) Remove(ctx context.Context, playerID string) error {
	return c.client.ZRem(ctx, c.key, playerID).Err()
}
