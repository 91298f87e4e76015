// Package cache stores rendered artifacts keyed by a hash of their inputs.
//
// Three backends share the [Cache] interface: [FileCache] for the CLI,
// [RedisCache] for shared deployments, and [NullCache] when caching is off.
// Wrap any of them with [Instrument] to report hits and misses through the
// observability hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A missing or
	// expired key is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
