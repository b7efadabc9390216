package services

import (
	"context"
	"strconv"
	"time"

	"brokerage/src/models"
	"brokerage/src/utils"
	redis_utils "brokerage/src/utils/redis"
)

// AssetCache holds catalog reads of single assets. Entries may be stale for
// up to their TTL; trades never read through it.
type AssetCache interface {
	Get(ctx context.Context, id int64) (*models.Asset, bool)
	Set(ctx context.Context, asset *models.Asset)
	Delete(ctx context.Context, id int64)
}

type redisAssetCache struct {
	redis *redis_utils.RedisHandler
	ttl   time.Duration
}

func NewRedisAssetCache(handler *redis_utils.RedisHandler, ttl time.Duration) AssetCache {
	return &redisAssetCache{redis: handler, ttl: ttl}
}

func assetKey(id int64) string {
	return "asset:" + strconv.FormatInt(id, 10)
}

// Redis failures degrade to cache misses.
func (c *redisAssetCache) Get(ctx context.Context, id int64) (*models.Asset, bool) {
	var asset models.Asset
	if err := c.redis.Get(ctx, assetKey(id), &asset); err != nil {
		return nil, false
	}
	return &asset, true
}

func (c *redisAssetCache) Set(ctx context.Context, asset *models.Asset) {
	if err := c.redis.Set(ctx, assetKey(asset.ID), asset, c.ttl); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).WithField("asset_id", asset.ID).Warn("failed to cache asset")
	}
}

func (c *redisAssetCache) Delete(ctx context.Context, id int64) {
	if err := c.redis.Delete(ctx, assetKey(id)); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).WithField("asset_id", id).Warn("failed to invalidate cached asset")
	}
}

type memoryAssetCache struct {
	cache *utils.Cache[int64, models.Asset]
	ttl   time.Duration
}

// NewMemoryAssetCache is used when Redis is not configured.
func NewMemoryAssetCache(ttl time.Duration) AssetCache {
	return &memoryAssetCache{cache: utils.NewCache[int64, models.Asset](), ttl: ttl}
}

func (c *memoryAssetCache) Get(_ context.Context, id int64) (*models.Asset, bool) {
	asset, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	return &asset, true
}

func (c *memoryAssetCache) Set(_ context.Context, asset *models.Asset) {
	c.cache.Set(asset.ID, *asset, c.ttl)
}

func (c *memoryAssetCache) Delete(_ context.Context, id int64) {
	c.cache.Delete(id)
}
