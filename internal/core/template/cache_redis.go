// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package template

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/khanhdoan/mailfold/internal/platform/constants"
	"github.com/khanhdoan/mailfold/internal/platform/ctxutil"
)

// RedisListingCache implements [ListingCache] on Redis with generation bumping.
//
// # Key Layout
//
//	catalog:version            -> monotonically increasing generation counter
//	catalog:page:<gen>:<sig>   -> JSON-encoded CachedPage, short TTL
//
// Invalidation is a single INCR of the generation counter: every previously
// written page key becomes unreachable and expires on its own TTL. No SCAN,
// no key enumeration.
type RedisListingCache struct {
	client *redis.Client
}

// NewListingCache creates a Redis-backed [ListingCache].
func NewListingCache(client *redis.Client) *RedisListingCache {
	return &RedisListingCache{client: client}
}

// generation reads the current cache generation, defaulting to 0.
func (cache *RedisListingCache) generation(context context.Context) (int64, error) {
	generation, err := cache.client.Get(context, constants.RedisKeyCatalogVersion).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	return generation, nil
}

// Get returns the cached page for a listing signature, if present.
func (cache *RedisListingCache) Get(context context.Context, signature string) (*CachedPage, bool) {
	generation, err := cache.generation(context)
	if err != nil {
		return nil, false
	}

	key := fmt.Sprintf("%s%d:%s", constants.RedisPrefixCatalog, generation, signature)

	payload, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		// redis.Nil and transport failures are both misses from the caller's view.
		return nil, false
	}

	page := &CachedPage{}
	if err := json.Unmarshal(payload, page); err != nil {
		return nil, false
	}

	return page, true
}

// Set stores a page snapshot under a listing signature.
func (cache *RedisListingCache) Set(context context.Context, signature string, page *CachedPage) {
	generation, err := cache.generation(context)
	if err != nil {
		return
	}

	payload, err := json.Marshal(page)
	if err != nil {
		return
	}

	key := fmt.Sprintf("%s%d:%s", constants.RedisPrefixCatalog, generation, signature)

	if err := cache.client.Set(context, key, payload, constants.RedisCatalogEntryTTL).Err(); err != nil {
		ctxutil.GetLogger(context).Warn("catalog_cache_set_failed", slog.Any("error", err))
	}
}

// Invalidate bumps the generation counter, orphaning all cached pages.
func (cache *RedisListingCache) Invalidate(context context.Context) {
	if err := cache.client.Incr(context, constants.RedisKeyCatalogVersion).Err(); err != nil {
		ctxutil.GetLogger(context).Warn("catalog_cache_invalidate_failed", slog.Any("error", err))
	}
}
