package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shop-inventory/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const cacheKeyPrefix = "product:"

// deletedMarker occupies the key of a deleted product for one TTL. Fills
// after a backend miss use SETNX, so a lookup that read the product before
// the delete cannot bring it back; refreshes from scans overwrite with SET.
const deletedMarker = "deleted"

// cachedProductRepository decorates a ProductRepository with a Redis
// read-through cache for single product lookups. Cache errors are logged and
// never returned; the wrapped repository stays the source of truth.
type cachedProductRepository struct {
	next   ProductRepository
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedProductRepository wraps next with a Redis cache.
func NewCachedProductRepository(next ProductRepository, client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) ProductRepository {
	return &cachedProductRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("repository", "product").Str("layer", "cache").Logger(),
	}
}

// CacheKey returns the Redis key for a product.
func CacheKey(productID string) string {
	return cacheKeyPrefix + productID
}

func (r *cachedProductRepository) Insert(ctx context.Context, product *model.Product) error {
	if err := r.next.Insert(ctx, product); err != nil {
		return err
	}
	// Clears a marker left by an earlier product with the same id.
	r.evict(ctx, product.ProductID)
	return nil
}

func (r *cachedProductRepository) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	if p, ok := r.get(ctx, productID); ok {
		return p, nil
	}

	p, err := r.next.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	r.fill(ctx, p)
	return p, nil
}

func (r *cachedProductRepository) ListRecent(ctx context.Context, limit int) ([]model.Product, error) {
	return r.next.ListRecent(ctx, limit)
}

func (r *cachedProductRepository) UpdateLastScanned(ctx context.Context, productID string, scannedAt time.Time) (*model.Product, error) {
	p, err := r.next.UpdateLastScanned(ctx, productID, scannedAt)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			r.evict(ctx, productID)
		}
		return nil, err
	}

	r.set(ctx, p)
	return p, nil
}

func (r *cachedProductRepository) Delete(ctx context.Context, productID string) (*model.Product, error) {
	p, err := r.next.Delete(ctx, productID)
	if err == nil || errors.Is(err, model.ErrProductNotFound) {
		r.markDeleted(ctx, productID)
	}
	return p, err
}

func (r *cachedProductRepository) get(ctx context.Context, productID string) (*model.Product, bool) {
	data, err := r.client.Get(ctx, CacheKey(productID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("product_id", productID).Msg("cache read failed")
		}
		return nil, false
	}

	if string(data) == deletedMarker {
		return nil, false
	}

	var p model.Product
	if err := json.Unmarshal(data, &p); err != nil {
		r.logger.Warn().Err(err).Str("product_id", productID).Msg("discarding undecodable cache entry")
		r.evict(ctx, productID)
		return nil, false
	}

	normaliseProduct(&p)
	r.logger.Debug().Str("product_id", productID).Msg("cache hit")
	return &p, true
}

// set stores p unconditionally. Used when p comes from a write.
func (r *cachedProductRepository) set(ctx context.Context, p *model.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Warn().Err(err).Str("product_id", p.ProductID).Msg("failed to encode cache entry")
		return
	}
	if err := r.client.Set(ctx, CacheKey(p.ProductID), data, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("product_id", p.ProductID).Msg("cache write failed")
	}
}

// fill stores p only if the key is empty, so it never replaces a newer
// entry or a delete marker written while p was being read.
func (r *cachedProductRepository) fill(ctx context.Context, p *model.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Warn().Err(err).Str("product_id", p.ProductID).Msg("failed to encode cache entry")
		return
	}
	if err := r.client.SetNX(ctx, CacheKey(p.ProductID), data, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("product_id", p.ProductID).Msg("cache write failed")
	}
}

func (r *cachedProductRepository) markDeleted(ctx context.Context, productID string) {
	if err := r.client.Set(ctx, CacheKey(productID), deletedMarker, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("product_id", productID).Msg("cache eviction failed")
	}
}

func (r *cachedProductRepository) evict(ctx context.Context, productID string) {
	if err := r.client.Del(ctx, CacheKey(productID)).Err(); err != nil {
		r.logger.Warn().Err(err).Str("product_id", productID).Msg("cache eviction failed")
	}
}
