package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CatalogCache keeps the catalog's name list for client autocomplete
type CatalogCache interface {
	SetNames(ctx context.Context, names []string) error
	GetNames(ctx context.Context) ([]string, error)
}

type catalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a new catalog cache
func NewCatalogCache(client *redis.Client) CatalogCache {
	return &catalogCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *catalogCache) key() string {
	return "catalog:names"
}

func (c *catalogCache) SetNames(ctx context.Context, names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(), data, c.ttl).Err()
}

func (c *catalogCache) GetNames(ctx context.Context) ([]string, error) {
	data, err := c.client.Get(ctx, c.key()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, err
	}
	return names, nil
}
