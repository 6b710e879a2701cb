// Package lrustore is an in-process, size bounded cache.Interface used in
// front of Redis, or alone when Redis is disabled.
package lrustore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mohammed-shakir/unl-locationid/internal/cache"
	"github.com/mohammed-shakir/unl-locationid/internal/core/observability"
)

const tier = "lru"

var _ cache.Interface = (*Store)(nil)

type Store struct {
	lru *expirable.LRU[string, []byte]
}

// New returns a store holding at most size entries, each for at most ttl.
// The ttl passed to Set cannot extend an entry beyond this store-wide ttl.
func New(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = 1024
	}
	return &Store{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (s *Store) MGet(_ context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := s.lru.Get(k); ok {
			out[k] = v
		}
	}
	observability.AddCacheHits(tier, len(out))
	observability.AddCacheMisses(tier, len(keys)-len(out))
	return out, nil
}

func (s *Store) SetAll(_ context.Context, keys []string, val []byte, _ time.Duration) error {
	for _, k := range keys {
		s.lru.Add(k, val)
	}
	return nil
}

func (s *Store) Del(_ context.Context, keys ...string) (int, error) {
	n := 0
	for _, k := range keys {
		if s.lru.Remove(k) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Len() int { return s.lru.Len() }
