// Package cache provides caching for segmentation results and rendered artifacts.
//
// # Overview
//
// Segmentation is deterministic for a given image, block size, option set
// and seed, so its result (a label map) can be cached and re-applied to a
// freshly built grid. Rendered artifacts (encoded images, DOT, SVG) are cached
// separately, keyed by the label map they were produced from.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for multiple server instances
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// A [Keyer] derives keys from content hashes plus the options that affect
// the cached value. [ScopedKeyer] adds a namespace prefix.
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.SegmentKey(cache.Hash(imageBytes), cache.SegmentKeyOpts{BlockHeight: 50, BlockWidth: 50})
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss with (nil, false, nil); errors are reserved for
// backend failures. A zero TTL means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default entry lifetimes.
const (
	TTLSegment  = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// NullCache is the Cache used when caching is disabled: every Get misses
// and writes are dropped.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
