package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/stackrun/pkg/observability"
)

// Tiered reads from front first and falls back to back, copying back hits
// into front for frontTTL. Writes and deletes go to both. Cache hooks are
// reported here, once per lookup.
type Tiered struct {
	front    Cache
	back     Cache
	frontTTL time.Duration
}

// NewTiered layers front over back.
func NewTiered(front, back Cache, frontTTL time.Duration) *Tiered {
	return &Tiered{front: front, back: back, frontTTL: frontTTL}
}

// Get checks front, then back.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	hooks := observability.Cache()
	if data, ok, err := t.front.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType(key))
		return data, true, nil
	}
	data, ok, err := t.back.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		hooks.OnCacheMiss(ctx, keyType(key))
		return nil, false, nil
	}
	hooks.OnCacheHit(ctx, keyType(key))
	_ = t.front.Set(ctx, key, data, t.frontTTL)
	return data, true, nil
}

// Set writes to both tiers.
func (t *Tiered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	frontTTL := t.frontTTL
	if ttl > 0 && (frontTTL <= 0 || ttl < frontTTL) {
		frontTTL = ttl
	}
	return errors.Join(
		t.front.Set(ctx, key, data, frontTTL),
		t.back.Set(ctx, key, data, ttl),
	)
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) error {
	return errors.Join(t.front.Delete(ctx, key), t.back.Delete(ctx, key))
}

// Close closes both tiers.
func (t *Tiered) Close() error {
	return errors.Join(t.front.Close(), t.back.Close())
}

var _ Cache = (*Tiered)(nil)
