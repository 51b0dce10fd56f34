package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pokeguess/internal/model"
)

// ErrCorruptEntry is returned by Pop when the dequeued entry can't be decoded.
// The entry is gone from the queue at that point.
var ErrCorruptEntry = errors.New("corrupt round queue entry")

// RoundQueue is the shared FIFO of ready-to-serve rounds
type RoundQueue interface {
	Push(ctx context.Context, rounds ...*model.RoundRecord) error
	Pop(ctx context.Context) (*model.RoundRecord, error)
	Len(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

type roundQueue struct {
	client *redis.Client
	key    string
}

// NewRoundQueue creates a round queue stored under the well-known queue key
func NewRoundQueue(client *redis.Client) RoundQueue {
	return &roundQueue{
		client: client,
		key:    "rounds:queue",
	}
}

func (c *roundQueue) Push(ctx context.Context, rounds ...*model.RoundRecord) error {
	if len(rounds) == 0 {
		return nil
	}
	args := make([]interface{}, len(rounds))
	for i, r := range rounds {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		args[i] = data
	}
	return c.client.RPush(ctx, c.key, args...).Err()
}

// Pop removes the head of the queue. Returns (nil, nil) when the queue is empty.
func (c *roundQueue) Pop(ctx context.Context) (*model.RoundRecord, error) {
	data, err := c.client.LPop(ctx, c.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var round model.RoundRecord
	if err := json.Unmarshal([]byte(data), &round); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	return &round, nil
}

func (c *roundQueue) Len(ctx context.Context) (int64, error) {
	return c.client.LLen(ctx, c.key).Result()
}

func (c *roundQueue) Reset(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
