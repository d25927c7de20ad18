// Package cache provides a Redis read-through decorator for the product
// repository. Catalogue reads are cached; stock writes pass through and
// invalidate the affected keys so reservations never see stale quantities.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"optika/internal/model"
	"optika/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	productTTL     = 5 * time.Minute
	productListKey = "products:all"
)

// CachedProductRepository decorates a ProductRepository with a Redis cache.
type CachedProductRepository struct {
	repo   repository.ProductRepository
	client *redis.Client
	logger zerolog.Logger
}

// NewCachedProductRepository wraps repo with a Redis cache.
func NewCachedProductRepository(repo repository.ProductRepository, client *redis.Client, logger zerolog.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		repo:   repo,
		client: client,
		logger: logger.With().Str("cache", "product").Logger(),
	}
}

// NewClient connects to Redis and verifies connectivity.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// GetAll serves the full catalogue page from cache when possible. Only the
// unpaginated first page is cached; other pages go straight to the store.
func (c *CachedProductRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if offset != 0 {
		return c.repo.GetAll(ctx, limit, offset)
	}

	key := fmt.Sprintf("%s:%d", productListKey, limit)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var products []model.Product
		unmarshalErr := json.Unmarshal(data, &products)
		if unmarshalErr == nil {
			return products, nil
		}
		c.logger.Warn().Err(unmarshalErr).Msg("failed to unmarshal cached product list, falling back to store")
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Msg("redis error, falling back to store")
	}

	products, err := c.repo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		if err := c.client.Set(ctx, key, data, productTTL).Err(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to cache product list")
		}
	}

	return products, nil
}

// GetByID serves a product from cache when possible.
func (c *CachedProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	key := productKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var p model.Product
		unmarshalErr := json.Unmarshal(data, &p)
		if unmarshalErr == nil {
			return &p, nil
		}
		c.logger.Warn().Err(unmarshalErr).Msg("failed to unmarshal cached product, falling back to store")
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Msg("redis error, falling back to store")
	}

	p, err := c.repo.GetByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, data, productTTL).Err(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to cache product")
		}
	}

	return p, nil
}

// GetForUpdate always reads from the store; a row lock cannot be cached.
func (c *CachedProductRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error) {
	return c.repo.GetForUpdate(ctx, tx, id)
}

// DecrementStock passes through and invalidates the product's cache entries.
// Invalidation happens before the write commits, so a racing read can still
// repopulate a pre-decrement quantity until the TTL expires; reservations
// never read through the cache, so correctness is unaffected.
func (c *CachedProductRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id int64, quantity int) error {
	if err := c.repo.DecrementStock(ctx, tx, id, quantity); err != nil {
		return err
	}

	c.invalidate(ctx, id)
	return nil
}

func (c *CachedProductRepository) invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		c.logger.Warn().Err(err).Int64("product_id", id).Msg("failed to invalidate product cache")
	}

	iter := c.client.Scan(ctx, 0, productListKey+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", iter.Val()).Msg("failed to invalidate product list cache")
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to scan product list cache keys")
	}
}
