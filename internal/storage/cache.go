package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
)

const (
	productsAllKey = "products:all"
	notFoundMarker = "notfound"
)

// CachedStorage is a read-through Redis cache in front of another Storage. Only product
// reads are cached; every product write drops the affected keys. Redis failures are
// logged and the call falls through to the wrapped store.
type CachedStorage struct {
	Storage
	redis       *redis.Client
	ttl         time.Duration
	notFoundTTL time.Duration
}

var _ Storage = (*CachedStorage)(nil)

func NewCachedStorage(next Storage, rdb *redis.Client) *CachedStorage {
	return &CachedStorage{
		Storage:     next,
		redis:       rdb,
		ttl:         5 * time.Minute,
		notFoundTTL: time.Minute,
	}
}

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *CachedStorage) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	l := logging.FromContext(ctx).With("component", "storage.cache")
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		var p models.Product
		if err := json.Unmarshal(data, &p); err != nil {
			l.Warn("cache_decode_failed", "key", key, "error", err)
			break
		}
		return &p, nil
	case errors.Is(err, redis.Nil):
	default:
		l.Warn("cache_get_failed", "key", key, "error", err)
	}

	p, err := c.Storage.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, c.notFoundTTL).Err(); setErr != nil {
				l.Warn("cache_set_failed", "key", key, "error", setErr)
			}
		}
		return nil, err
	}

	c.put(ctx, key, p)
	return p, nil
}

func (c *CachedStorage) GetProducts(ctx context.Context) ([]models.Product, error) {
	l := logging.FromContext(ctx).With("component", "storage.cache")

	data, err := c.redis.Get(ctx, productsAllKey).Bytes()
	switch {
	case err == nil:
		var items []models.Product
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
		l.Warn("cache_decode_failed", "key", productsAllKey, "error", err)
	case errors.Is(err, redis.Nil):
	default:
		l.Warn("cache_get_failed", "key", productsAllKey, "error", err)
	}

	items, err := c.Storage.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	c.put(ctx, productsAllKey, items)
	return items, nil
}

func (c *CachedStorage) CreateProduct(ctx context.Context, in models.InsertProduct) (*models.Product, error) {
	p, err := c.Storage.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	// the new id may carry a negative entry from an earlier miss
	c.invalidate(ctx, p.ID)
	return p, nil
}

func (c *CachedStorage) UpdateProduct(ctx context.Context, id int, patch models.ProductPatch) (*models.Product, error) {
	p, err := c.Storage.UpdateProduct(ctx, id, patch)
	c.invalidate(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *CachedStorage) DeleteProduct(ctx context.Context, id int) error {
	err := c.Storage.DeleteProduct(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *CachedStorage) put(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.FromContext(ctx).Warn("cache_encode_failed", "key", key, "error", err)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_set_failed", "key", key, "error", err)
	}
}

func (c *CachedStorage) invalidate(ctx context.Context, id int) {
	if err := c.redis.Del(ctx, productKey(id), productsAllKey).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_failed", "product_id", id, "error", err)
	}
}
