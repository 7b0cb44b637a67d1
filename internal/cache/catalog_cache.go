package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"govready/internal/model"
)

// CatalogCache holds assembled catalog snapshots keyed by catalog version
type CatalogCache interface {
	SetCatalog(ctx context.Context, c *model.Catalog) error
	GetCatalog(ctx context.Context, version string) (*model.Catalog, error)
	Invalidate(ctx context.Context, version string) error
}

type catalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a new catalog cache
func NewCatalogCache(client *redis.Client, ttl time.Duration) CatalogCache {
	return &catalogCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *catalogCache) key(version string) string {
	return fmt.Sprintf("catalog:%s", version)
}

func (c *catalogCache) SetCatalog(ctx context.Context, catalog *model.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(catalog.Version), data, c.ttl).Err()
}

func (c *catalogCache) GetCatalog(ctx context.Context, version string) (*model.Catalog, error) {
	data, err := c.client.Get(ctx, c.key(version)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var catalog model.Catalog
	if err := json.Unmarshal([]byte(data), &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *catalogCache) Invalidate(ctx context.Context, version string) error {
	return c.client.Del(ctx, c.key(version)).Err()
}
