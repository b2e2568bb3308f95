// Package cache stores registry lookups between runs.
//
// Four backends implement [Cache]: [FileCache] under the user cache
// directory, [MemoryCache] as an in-process LRU, [RedisCache] for sharing
// lookups between machines, and [NullCache] to disable caching. [Tiered]
// puts a fast cache in front of a slower one.
//
// Keys are built with a [Keyer] so every backend sees the same names.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero on Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
