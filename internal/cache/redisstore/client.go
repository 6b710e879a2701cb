// Package redisstore is the Redis backed cache.Interface shared by all
// service replicas.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	maintnotifications "github.com/redis/go-redis/v9/maintnotifications"

	"github.com/mohammed-shakir/unl-locationid/internal/cache"
	"github.com/mohammed-shakir/unl-locationid/internal/core/observability"
)

const tier = "redis"

var _ cache.Interface = (*Client)(nil)

type Option func(*redis.Options)

func WithDialTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.DialTimeout = d }
}

// WithOpTimeout bounds both reads and writes.
func WithOpTimeout(d time.Duration) Option {
	return func(o *redis.Options) {
		o.ReadTimeout = d
		o.WriteTimeout = d
	}
}

func WithAuth(username, password string) Option {
	return func(o *redis.Options) {
		o.Username = username
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *redis.Options) { o.DB = db }
}

type Client struct {
	rdb *redis.Client
}

// New connects to addr and fails unless the server answers a ping.
func New(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	if addr == "" {
		return nil, errors.New("redisstore: address is required")
	}

	ro := &redis.Options{
		Addr:         addr,
		PoolSize:     16,
		MinIdleConns: 1,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  250 * time.Millisecond,
		WriteTimeout: 250 * time.Millisecond,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	}
	for _, f := range opts {
		f(ro)
	}

	c := &Client{rdb: redis.NewClient(ro)}
	if err := c.Ping(ctx); err != nil {
		_ = c.rdb.Close()
		return nil, err
	}
	return c, nil
}

// Ping doubles as the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	err := c.observe("ping", func() error { return c.rdb.Ping(ctx).Err() })
	if err != nil {
		return fmt.Errorf("redisstore: ping: %w", err)
	}
	return nil
}

func (c *Client) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var vals []any
	err := c.observe("mget", func() (err error) {
		vals, err = c.rdb.MGet(ctx, keys...).Result()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("redisstore: mget %d keys: %w", len(keys), err)
	}

	for i, v := range vals {
		// nil is a missing key; go-redis hands back strings for bulk replies
		if s, ok := v.(string); ok {
			out[keys[i]] = []byte(s)
		}
	}
	observability.AddCacheHits(tier, len(out))
	observability.AddCacheMisses(tier, len(keys)-len(out))
	return out, nil
}

// SetAll writes val under every key in one MULTI/EXEC round trip.
func (c *Client) SetAll(ctx context.Context, keys []string, val []byte, ttl time.Duration) error {
	if len(keys) == 0 {
		return nil
	}
	err := c.observe("set", func() error {
		_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
			for _, k := range keys {
				p.Set(ctx, k, val, ttl)
			}
			return nil
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("redisstore: set %d keys: %w", len(keys), err)
	}
	return nil
}

func (c *Client) Del(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	var n int64
	err := c.observe("del", func() (err error) {
		n, err = c.rdb.Del(ctx, keys...).Result()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("redisstore: del %d keys: %w", len(keys), err)
	}
	return int(n), nil
}

func (c *Client) Close() error {
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("redisstore: close: %w", err)
	}
	return nil
}

func (c *Client) observe(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	observability.ObserveCacheOp(op, err, time.Since(start).Seconds())
	return err
}
