// Package cache defines the key/value store behind the words lookups.
package cache

import (
	"context"
	"time"
)

// Interface is one cache tier. A resolved location is stored once per
// identity (input, locationId, words), so writes take every key at once.
type Interface interface {
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	SetAll(ctx context.Context, keys []string, val []byte, ttl time.Duration) error
	// Del reports how many of keys were present.
	Del(ctx context.Context, keys ...string) (int, error)
}
