// Package kafka publishes words-cache invalidation events.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mohammed-shakir/unl-locationid/internal/invalidation"
)

type Options struct {
	Logger   *slog.Logger
	Register prometheus.Registerer
}

type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *slog.Logger
	ms       *metricSet
}

func New(cfg PublisherConfig, opts Options) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka publisher: no brokers")
	}
	scfg, err := cfg.saramaConfig()
	if err != nil {
		return nil, err
	}
	p, err := sarama.NewSyncProducer(cfg.Brokers, scfg)
	if err != nil {
		return nil, fmt.Errorf("sync producer: %w", err)
	}
	return NewWithProducer(p, cfg.Topic, opts), nil
}

// NewWithProducer wraps an existing producer; the Publisher takes ownership
// and closes it on Close.
func NewWithProducer(p sarama.SyncProducer, topic string, opts Options) *Publisher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Publisher{
		producer: p,
		topic:    topic,
		log:      opts.Logger,
		ms:       newMetricSet(opts.Register),
	}
}

// Publish fills in the version, id and timestamp when unset, validates the
// event and sends it keyed by id. The completed event is returned.
func (p *Publisher) Publish(ctx context.Context, ev invalidation.Event) (invalidation.Event, error) {
	if ev.Version == 0 {
		ev.Version = 1
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	if err := ev.Validate(); err != nil {
		p.ms.published.WithLabelValues(ev.Op, "invalid").Inc()
		return ev, fmt.Errorf("invalid event: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return ev, err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return ev, fmt.Errorf("encode event: %w", err)
	}

	start := time.Now()
	part, off, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(ev.ID),
		Value:     sarama.ByteEncoder(body),
		Timestamp: ev.TS,
	})
	p.ms.latency.Observe(time.Since(start).Seconds())
	if err != nil {
		p.ms.published.WithLabelValues(ev.Op, "error").Inc()
		return ev, fmt.Errorf("send invalidation %s: %w", ev.ID, err)
	}
	p.ms.published.WithLabelValues(ev.Op, "ok").Inc()

	p.log.InfoContext(ctx, "invalidation published",
		"id", ev.ID, "op", ev.Op, "topic", p.topic, "partition", part, "offset", off)
	return ev, nil
}

func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close producer: %w", err)
	}
	return nil
}
