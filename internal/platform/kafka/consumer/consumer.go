// Package consumer wraps a franz-go consumer group. Delivery to handlers is
// at-least-once: offsets commit only after a handler returns nil, so a crash
// between handle and commit redelivers the message. Handlers must be
// idempotent.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is one consumed record, decoupled from the Kafka client so
// handlers stay unit-testable.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes one message. Returning nil commits the offset; returning
// an error leaves it uncommitted for redelivery. Handlers should return nil
// for malformed messages they have logged, so a poison message cannot block
// its partition.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Consumer runs a consumer group loop over the given topics.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger
}

// New joins the consumer group and subscribes to the topics.
func New(brokers []string, group string, topics []string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client, handler: handler, logger: logger}, nil
}

// Run polls until the context is cancelled. Records are handled one by one in
// partition order; successfully handled records are committed per poll.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Warn("fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		handled := c.handleRecords(ctx, fetches.Records())
		if len(handled) > 0 {
			if err := c.client.CommitRecords(ctx, handled...); err != nil {
				c.logger.Warn("offset commit failed, duplicates possible on rebalance",
					"error", err,
				)
			}
		}
	}
}

type topicPartition struct {
	topic     string
	partition int32
}

// handleRecords dispatches records in order and returns the ones safe to
// commit. Commits are high-watermarks: committing past a failed offset would
// mark it consumed forever. So on the first failure the rest of that
// partition is skipped for this poll, and only the contiguous successful
// prefix per partition is returned; the group resumes from the last
// committed offset on rebalance or restart, redelivering the tail.
func (c *Consumer) handleRecords(ctx context.Context, records []*kgo.Record) []*kgo.Record {
	halted := make(map[topicPartition]bool)
	var handled []*kgo.Record
	for _, record := range records {
		tp := topicPartition{topic: record.Topic, partition: record.Partition}
		if halted[tp] {
			continue
		}

		msg := &Message{
			Topic:     record.Topic,
			Key:       record.Key,
			Value:     record.Value,
			Headers:   headerMap(record.Headers),
			Timestamp: record.Timestamp,
		}
		if err := c.handler.Handle(ctx, msg); err != nil {
			c.logger.Warn("handler failed, partition parked until redelivery",
				"topic", record.Topic,
				"partition", record.Partition,
				"offset", record.Offset,
				"error", err,
			)
			halted[tp] = true
			continue
		}
		handled = append(handled, record)
	}
	return handled
}

func headerMap(headers []kgo.RecordHeader) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		m[h.Key] = string(h.Value)
	}
	return m
}
