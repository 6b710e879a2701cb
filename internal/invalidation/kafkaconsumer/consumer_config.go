package kafkaconsumer

import (
	"time"

	"github.com/mohammed-shakir/unl-locationid/internal/core/config"
)

type Config struct {
	Brokers             []string
	Topic               string
	GroupID             string
	Precisions          []int
	SessionTimeout      time.Duration
	Heartbeat           time.Duration
	RebalanceTimeout    time.Duration
	InitialOffsetOldest bool
	DedupeSize          int
	RetryBackoff        time.Duration
}

func ConfigFrom(c config.InvalidationCfg) Config {
	return Config{
		Brokers:             c.Brokers,
		Topic:               c.Topic,
		GroupID:             c.GroupID,
		Precisions:          c.Precisions,
		SessionTimeout:      30 * time.Second,
		Heartbeat:           3 * time.Second,
		RebalanceTimeout:    30 * time.Second,
		InitialOffsetOldest: true,
		DedupeSize:          4096,
		RetryBackoff:        2 * time.Second,
	}
}
