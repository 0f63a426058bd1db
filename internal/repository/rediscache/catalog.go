// Package rediscache decorates a CatalogStore with a Redis read-through
// cache for the lookup the cashier hammers: product by scanned code.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
	"github.com/thunkthsy/punto-de-venta/backend/internal/repository"
)

type catalogCache struct {
	repository.CatalogStore
	rdb *redis.Client
	ttl time.Duration
}

// NewCatalogCache wraps next with a per-code product cache. Cache
// failures fall back to the underlying store and are logged, never
// surfaced.
func NewCatalogCache(next repository.CatalogStore, rdb *redis.Client, ttl time.Duration) repository.CatalogStore {
	return &catalogCache{CatalogStore: next, rdb: rdb, ttl: ttl}
}

func productKey(code int64) string {
	return fmt.Sprintf("product:%d", code)
}

func (c *catalogCache) FindByCode(ctx context.Context, code int64) (*entity.Product, error) {
	key := productKey(code)

	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var p entity.Product
		if err := json.Unmarshal(payload, &p); err == nil {
			return &p, nil
		}
		slog.Warn("Discarding unreadable cache entry", "key", key)
	} else if err != redis.Nil {
		slog.Warn("Cache read failed", "key", key, "err", err)
	}

	p, err := c.CatalogStore.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(p); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			slog.Warn("Cache write failed", "key", key, "err", err)
		}
	}
	return p, nil
}

// DecrementStock invalidates the cached entry for every touched product
// so the next scan sees the new on-hand count.
func (c *catalogCache) DecrementStock(ctx context.Context, decs []entity.StockDeduction) ([]int64, error) {
	depleted, err := c.CatalogStore.DecrementStock(ctx, decs)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(decs))
	for _, d := range decs {
		keys = append(keys, productKey(d.Code))
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			slog.Warn("Cache invalidation failed", "keys", len(keys), "err", err)
		}
	}
	return depleted, nil
}
