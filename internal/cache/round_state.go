package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RoundStateCache holds each player's expected answer for the round in play.
// Entries have no expiry: an abandoned round lives until the next start overwrites it.
type RoundStateCache interface {
	Start(ctx context.Context, playerID, expected string) error
	Get(ctx context.Context, playerID string) (string, error)
	// Claim deletes the round only if it still expects the given answer.
	Claim(ctx context.Context, playerID, expected string) (bool, error)
	// Restore puts a claimed round back unless a newer round was started meanwhile.
	Restore(ctx context.Context, playerID, expected string) (bool, error)
	Clear(ctx context.Context, playerID string) error
}

// compare-and-delete so two devices can't both score the same round
var claimScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type roundStateCache struct {
	client *redis.Client
}

// NewRoundStateCache creates a new per-player round state cache
func NewRoundStateCache(client *redis.Client) RoundStateCache {
	return &roundStateCache{
		client: client,
	}
}

func (c *roundStateCache) key(playerID string) string {
	return fmt.Sprintf("player:%s:round", playerID)
}

func (c *roundStateCache) Start(ctx context.Context, playerID, expected string) error {
	return c.client.Set(ctx, c.key(playerID), expected, 0).Err()
}

// Get returns "" when the player has no active round
func (c *roundStateCache) Get(ctx context.Context, playerID string) (string, error) {
	val, err := c.client.Get(ctx, c.key(playerID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *roundStateCache) Claim(ctx context.Context, playerID, expected string) (bool, error) {
	n, err := claimScript.Run(ctx, c.client, []string{c.key(playerID)}, expected).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *roundStateCache) Restore(ctx context.Context, playerID, expected string) (bool, error) {
	return c.client.SetNX(ctx, c.key(playerID), expected, 0).Result()
}

func (c *roundStateCache) Clear(ctx context.Context, playerID string) error {
	return c.client.Del(ctx, c.key(playerID)).Err()
}
