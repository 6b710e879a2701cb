// Package kafkaconsumer applies invalidation events from Kafka to the words
// cache.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/mohammed-shakir/unl-locationid/internal/cache/keys"
	obs "github.com/mohammed-shakir/unl-locationid/internal/core/observability"
	"github.com/mohammed-shakir/unl-locationid/internal/invalidation"
	mylog "github.com/mohammed-shakir/unl-locationid/internal/logger"
	"github.com/mohammed-shakir/unl-locationid/internal/mapper"
)

// Invalidator drops cache keys; *words.Resolver implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	zlog   *zerolog.Logger
	inv    Invalidator
	mapper mapper.Interface
	dedupe *versionDedupe
}

func New(cfg Config, logger *slog.Logger, zl *zerolog.Logger, inv Invalidator, m mapper.Interface) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		zlog:   zl,
		inv:    inv,
		mapper: m,
		dedupe: newVersionDedupe(cfg.DedupeSize),
	}
}

// Start consumes invalidation events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.inv == nil || c.mapper == nil {
		return errors.New("kafkaconsumer: missing dependencies (invalidator/mapper)")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.ClientID = "unl-locationid"
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{apply: c.ProcessOne, log: c.logger}
	ctx = mylog.WithComponent(ctx, "kafka_consumer")

	c.logger.InfoContext(ctx, "kafka invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID, "precisions", c.cfg.Precisions)

	backoff := c.cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	for {
		if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil && ctx.Err() == nil {
			mylog.FromContext(ctx, c.zlog).Error().Err(err).
				Strs("brokers", c.cfg.Brokers).
				Str("topic", c.cfg.Topic).
				Msg("kafka consumer error")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			c.logger.Info("kafka invalidation consumer shutting down")
			return nil
		}
	}
}

// ProcessOne applies a single event. Malformed events are logged and
// skipped; only cache failures are returned so the message is retried.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.reject(ctx, msg, "decode", err)
		return nil
	}
	if err := ev.Validate(); err != nil {
		c.reject(ctx, msg, "validate", err)
		return nil
	}

	version := ev.TS.UnixNano()
	if ev.ID != "" && c.dedupe.seen(ev.ID, version) {
		obs.IncInvalidation(ev.Op, "duplicate")
		c.logger.DebugContext(ctx, "duplicate invalidation event (skipping)", "id", ev.ID)
		return nil
	}

	delKeys, err := c.keysForEvent(ev)
	if err != nil {
		c.reject(ctx, msg, "map", err)
		return nil
	}

	if err := c.inv.Invalidate(ctx, delKeys...); err != nil {
		obs.IncInvalidation(ev.Op, "error")
		mylog.FromContext(ctx, c.zlog).Error().Err(err).
			Str("kind", "cache_del").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Int("keys", len(delKeys)).
			Msg("kafka error")
		return fmt.Errorf("invalidate %d keys: %w", len(delKeys), err)
	}

	if ev.ID != "" {
		c.dedupe.applied(ev.ID, version)
	}
	obs.IncInvalidation(ev.Op, "applied")
	obs.AddInvalidatedKeys(len(delKeys))

	mylog.FromContext(ctx, c.zlog).Info().
		Str("event", "invalidation").
		Str("id", ev.ID).
		Str("op", ev.Op).
		Int("keys", len(delKeys)).
		Msg("invalidated keys")
	return nil
}

func (c *Consumer) reject(ctx context.Context, msg *sarama.ConsumerMessage, kind string, err error) {
	obs.IncInvalidation("unknown", "rejected")
	mylog.FromContext(ctx, c.zlog).Warn().Err(err).
		Str("kind", kind).
		Str("topic", msg.Topic).
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("invalidation event rejected")
}

// keysForEvent expands an event into the cache keys of every lookup form it
// can affect. A bbox is covered with cells at each configured precision.
func (c *Consumer) keysForEvent(ev invalidation.Event) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}

	for _, id := range ev.LocationIDs {
		add(keys.LocationID(id))
	}
	for _, w := range ev.Words {
		add(keys.Words(w))
	}
	if ev.BBox != nil {
		for _, p := range c.cfg.Precisions {
			cells, err := c.mapper.CellsForBounds(ev.BBox.Bounds(), p)
			if err != nil {
				return nil, fmt.Errorf("cells for bbox at precision %d: %w", p, err)
			}
			for _, cell := range cells {
				add(keys.LocationID(cell))
			}
		}
	}
	return out, nil
}
