package kafkaconsumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

// groupHandler feeds one claim at a time through apply. An offset is marked
// only once its event reached the cache, so a failed delete is redelivered
// after the next rebalance.
type groupHandler struct {
	apply func(context.Context, *sarama.ConsumerMessage) error
	log   *slog.Logger
}

func (h *groupHandler) Setup(sess sarama.ConsumerGroupSession) error {
	h.logger().Info("invalidation partitions assigned", "claims", sess.Claims(), "generation", sess.GenerationID())
	return nil
}

func (h *groupHandler) Cleanup(sess sarama.ConsumerGroupSession) error {
	h.logger().Info("invalidation partitions released", "claims", sess.Claims())
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	msgs := claim.Messages()
	for {
		var msg *sarama.ConsumerMessage
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			msg = m
		}
		if err := h.apply(ctx, msg); err != nil {
			return fmt.Errorf("invalidation at %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}
		sess.MarkMessage(msg, "")
	}
}

func (h *groupHandler) logger() *slog.Logger {
	if h.log == nil {
		return slog.Default()
	}
	return h.log
}
