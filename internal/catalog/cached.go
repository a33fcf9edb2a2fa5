package catalog

import (
	"context"
	"errors"
	"time"

	"checkout-service/internal/models"
	"checkout-service/internal/redisclient"
	"checkout-service/internal/util"

	"go.uber.org/zap"
)

// Cache stores a whole catalog under a single key
type Cache interface {
	GetCatalog(ctx context.Context) ([]models.Product, error)
	SetCatalog(ctx context.Context, products []models.Product, ttl time.Duration) error
}

// CachedSource is a read-through cache in front of another Source.
// Cache failures fall back to the origin.
type CachedSource struct {
	origin Source
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource wraps origin with cache
func NewCachedSource(origin Source, cache Cache, ttl time.Duration) *CachedSource {
	return &CachedSource{
		origin: origin,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// Fetch returns the cached catalog, loading it from the origin on a miss
func (c *CachedSource) Fetch(ctx context.Context) ([]models.Product, error) {
	products, err := c.cache.GetCatalog(ctx)
	switch {
	case err == nil:
		util.CatalogCacheResults.WithLabelValues("hit").Inc()
		return products, nil
	case errors.Is(err, redisclient.ErrCacheMiss):
		util.CatalogCacheResults.WithLabelValues("miss").Inc()
	default:
		util.CatalogCacheResults.WithLabelValues("error").Inc()
		c.logger.Warn("Catalog cache read failed, falling back to origin", zap.Error(err))
	}

	products, err = c.origin.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetCatalog(ctx, products, c.ttl); err != nil {
		c.logger.Warn("Failed to populate catalog cache", zap.Error(err))
	}
	return products, nil
}
