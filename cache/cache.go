// Package cache provides optional response caching for GET requests.
// Exchanges serve a lot of slow-moving data (market listings, asset
// metadata); caching it keeps clients inside their rate limits.
package cache

import (
	"context"
	"time"
)

// Cache stores raw response bodies keyed by request. A miss is
// (nil, false); implementations never return errors to the request
// path, a broken cache degrades to a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}
